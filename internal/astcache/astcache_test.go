package astcache

import (
	"testing"

	"github.com/codegraph-dev/codegraph/internal/lang"
)

func TestPutGet(t *testing.T) {
	c := New()
	e := &Entry{Source: []byte("x = 1"), Language: lang.Python, RelPath: "a.py"}
	c.Put("a.py", e)

	got, ok := c.Get("a.py")
	if !ok {
		t.Fatal("expected Get to find the entry")
	}
	if got != e {
		t.Error("Get returned a different entry than was Put")
	}

	if _, ok := c.Get("missing.py"); ok {
		t.Error("expected Get of an unparsed path to fail")
	}
}

func TestPutOverwrites(t *testing.T) {
	c := New()
	c.Put("a.py", &Entry{RelPath: "a.py", Language: lang.Python})
	c.Put("a.py", &Entry{RelPath: "a.py", Language: lang.Go})

	got, _ := c.Get("a.py")
	if got.Language != lang.Go {
		t.Errorf("Language = %s, want re-Put value %s", got.Language, lang.Go)
	}
}

func TestLinkModuleAndFileForModule(t *testing.T) {
	c := New()
	c.Put("pkg/service.py", &Entry{RelPath: "pkg/service.py", Language: lang.Python})
	c.LinkModule("myproject.pkg.service", "pkg/service.py")

	got, ok := c.FileForModule("myproject.pkg.service")
	if !ok {
		t.Fatal("expected FileForModule to resolve the linked module")
	}
	if got.RelPath != "pkg/service.py" {
		t.Errorf("RelPath = %s, want pkg/service.py", got.RelPath)
	}

	if _, ok := c.FileForModule("myproject.pkg.unknown"); ok {
		t.Error("expected FileForModule of an unlinked module to fail")
	}
}

func TestPaths(t *testing.T) {
	c := New()
	c.Put("a.py", &Entry{RelPath: "a.py"})
	c.Put("b.py", &Entry{RelPath: "b.py"})

	paths := c.Paths()
	if len(paths) != 2 {
		t.Fatalf("Paths() = %v, want 2 entries", paths)
	}
}

