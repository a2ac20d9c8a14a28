package structurewalk

import (
	"testing"

	"github.com/codegraph-dev/codegraph/internal/discover"
	"github.com/codegraph-dev/codegraph/internal/lang"
	"github.com/codegraph-dev/codegraph/internal/sink"
)

type fakeSink struct {
	nodes []sink.Node
	rels  []sink.Relationship
}

func (f *fakeSink) EnsureNode(n sink.Node)                 { f.nodes = append(f.nodes, n) }
func (f *fakeSink) EnsureRelationship(r sink.Relationship) { f.rels = append(f.rels, r) }
func (f *fakeSink) Flush(project string) (int, int, error) { return len(f.nodes), len(f.rels), nil }

func (f *fakeSink) nodeByQN(qn string) (sink.Node, bool) {
	for _, n := range f.nodes {
		if n.QualifiedName == qn {
			return n, true
		}
	}
	return sink.Node{}, false
}

func TestWalkEmitsProjectAndFileNodes(t *testing.T) {
	files := []discover.FileInfo{
		{RelPath: "pkg/service.py", Language: lang.Python},
		{RelPath: "main.py", Language: lang.Python},
	}
	sk := &fakeSink{}

	Walk(files, "myproject", t.TempDir(), sk)

	if _, ok := sk.nodeByQN("myproject"); !ok {
		t.Error("expected a Project node keyed by the project name")
	}

	fileQN := "myproject.pkg.service.__file__"
	n, ok := sk.nodeByQN(fileQN)
	if !ok {
		t.Fatalf("expected a File node for pkg/service.py, got none among %d nodes", len(sk.nodes))
	}
	if n.Label != "File" {
		t.Errorf("Label = %q, want File", n.Label)
	}
	if n.Properties["language"] != "python" {
		t.Errorf("language property = %v, want python", n.Properties["language"])
	}
}

func TestWalkEmitsFolderForDirectoryWithFile(t *testing.T) {
	files := []discover.FileInfo{
		{RelPath: "pkg/service.py", Language: lang.Python},
	}
	sk := &fakeSink{}

	Walk(files, "myproject", t.TempDir(), sk)

	folderQN := "myproject.pkg"
	n, ok := sk.nodeByQN(folderQN)
	if !ok {
		t.Fatalf("expected a Folder/Package node for pkg/, got none among %d nodes", len(sk.nodes))
	}
	if n.Label != "Folder" {
		t.Errorf("Label = %q, want Folder (no package indicator present in an empty temp dir)", n.Label)
	}
}

func TestIsTestFile(t *testing.T) {
	cases := []struct {
		path     string
		language lang.Language
		want     bool
	}{
		{"service_test.go", lang.Go, true},
		{"service.go", lang.Go, false},
		{"test_service.py", lang.Python, true},
		{"service.py", lang.Python, false},
		{"service.spec.ts", lang.TypeScript, true},
	}
	for _, c := range cases {
		if got := isTestFile(c.path, c.language); got != c.want {
			t.Errorf("isTestFile(%q, %s) = %v, want %v", c.path, c.language, got, c.want)
		}
	}
}
