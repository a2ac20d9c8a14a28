package typeinfer

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codegraph-dev/codegraph/internal/importmap"
	"github.com/codegraph-dev/codegraph/internal/lang"
	"github.com/codegraph-dev/codegraph/internal/symtab"
)

func TestResolveReturnTypeMemoizes(t *testing.T) {
	e := New()
	symbols := symtab.New()
	calls := 0
	lookup := func(funcQN string) (*tree_sitter.Node, []byte, lang.Language, importmap.Map, string, bool) {
		calls++
		return nil, nil, "", nil, "", true
	}

	first := e.ResolveReturnType("myproject.pkg.Helper", lookup, symbols)
	second := e.ResolveReturnType("myproject.pkg.Helper", lookup, symbols)

	if first != second {
		t.Errorf("ResolveReturnType not stable across calls: %q then %q", first, second)
	}
	if calls != 1 {
		t.Errorf("lookup invoked %d times, want 1 (second call should hit the memoized result)", calls)
	}
}

func TestResolveReturnTypeRecursionGuard(t *testing.T) {
	e := New()
	symbols := symtab.New()
	calls := 0
	var lookup FuncLookup
	lookup = func(funcQN string) (*tree_sitter.Node, []byte, lang.Language, importmap.Map, string, bool) {
		calls++
		// A function whose return type (if it depended on itself) would
		// recurse back into the same resolution in progress.
		if got := e.ResolveReturnType(funcQN, lookup, symbols); got != "" {
			t.Errorf("re-entrant ResolveReturnType = %q, want \"\" while resolution is in progress", got)
		}
		return nil, nil, "", nil, "", true
	}

	result := e.ResolveReturnType("myproject.pkg.Recursive", lookup, symbols)

	if result != "" {
		t.Errorf("ResolveReturnType = %q, want \"\"", result)
	}
	if calls != 1 {
		t.Errorf("lookup invoked %d times, want exactly 1 — recursion guard should block re-entry", calls)
	}
}

func TestScoreNameSimilarity(t *testing.T) {
	cases := []struct {
		param, class string
		wantAtLeast  int
	}{
		{"userrepository", "userrepository", 100},
		{"repo", "userrepository", 1},
		{"unrelated", "userrepository", 0},
	}
	for _, c := range cases {
		got := scoreNameSimilarity(c.param, c.class)
		if got < c.wantAtLeast {
			t.Errorf("scoreNameSimilarity(%q, %q) = %d, want >= %d", c.param, c.class, got, c.wantAtLeast)
		}
	}
}

func TestBestClassMatchThreshold(t *testing.T) {
	symbols := symtab.New()
	symbols.Insert("myproject.pkg.UserRepository", symtab.KindClass)

	if qn, ok := bestClassMatch("repository", symbols); !ok || qn != "myproject.pkg.UserRepository" {
		t.Errorf("bestClassMatch(repository) = (%q, %v), want UserRepository match above threshold", qn, ok)
	}
	if _, ok := bestClassMatch("xyz", symbols); ok {
		t.Error("bestClassMatch(xyz) matched, want no match below the similarity threshold")
	}
}
