package defext

import (
	"testing"

	"github.com/codegraph-dev/codegraph/internal/astcache"
	"github.com/codegraph-dev/codegraph/internal/inherit"
	"github.com/codegraph-dev/codegraph/internal/lang"
	"github.com/codegraph-dev/codegraph/internal/parser"
	"github.com/codegraph-dev/codegraph/internal/sink"
	"github.com/codegraph-dev/codegraph/internal/symtab"
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

func parseEntry(t *testing.T, relPath string, source string) *astcache.Entry {
	t.Helper()
	tree, err := parser.Parse(lang.Python, []byte(source))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return &astcache.Entry{Tree: tree, Source: []byte(source), Language: lang.Python, RelPath: relPath}
}

func TestExtractFileRegistersFunctionAndClass(t *testing.T) {
	entry := parseEntry(t, "greeter.py", `
class Greeter:
    def greet(self):
        return "hi"

def standalone():
    pass
`)
	sk := &fakeSink{}
	symbols := symtab.New()
	inh := inherit.New()

	result := ExtractFile(entry, "myproject", sk, symbols, inh)

	classQN := "myproject.greeter.Greeter"
	methodQN := classQN + ".greet"
	funcQN := "myproject.greeter.standalone"

	if _, ok := sk.nodeByQN(classQN); !ok {
		t.Errorf("expected a Class node for %s", classQN)
	}
	if kind, ok := symbols.Lookup(methodQN); !ok || kind != symtab.KindMethod {
		t.Errorf("Lookup(%s) = (%s, %v), want (Method, true)", methodQN, kind, ok)
	}
	if kind, ok := symbols.Lookup(funcQN); !ok || kind != symtab.KindFunction {
		t.Errorf("Lookup(%s) = (%s, %v), want (Function, true)", funcQN, kind, ok)
	}
	if _, ok := result.Classes[classQN]; !ok {
		t.Errorf("expected Classes[%s] to be recorded for the type-inference pass", classQN)
	}
	if _, ok := result.Funcs[methodQN]; !ok {
		t.Errorf("expected Funcs[%s] to be recorded for the type-inference pass", methodQN)
	}
}

func TestExtractFileRecordsInheritance(t *testing.T) {
	entry := parseEntry(t, "animals.py", `
class Animal:
    def speak(self):
        pass

class Dog(Animal):
    def bark(self):
        pass
`)
	sk := &fakeSink{}
	symbols := symtab.New()
	inh := inherit.New()

	ExtractFile(entry, "myproject", sk, symbols, inh)

	parents := inh.DirectParents("myproject.animals.Dog")
	if len(parents) != 1 || parents[0] != "myproject.animals.Animal" {
		t.Errorf("DirectParents(Dog) = %v, want [myproject.animals.Animal]", parents)
	}
}

func TestModuleName(t *testing.T) {
	cases := map[string]string{
		"greeter.py":      "greeter",
		"pkg/service.py":  "service",
		"pkg/__init__.py": "__init__",
	}
	for path, want := range cases {
		if got := moduleName(path); got != want {
			t.Errorf("moduleName(%q) = %q, want %q", path, got, want)
		}
	}
}
