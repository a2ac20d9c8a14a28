package resolver

import (
	"testing"

	"github.com/codegraph-dev/codegraph/internal/importmap"
	"github.com/codegraph-dev/codegraph/internal/inherit"
	"github.com/codegraph-dev/codegraph/internal/lang"
	"github.com/codegraph-dev/codegraph/internal/symtab"
	"github.com/codegraph-dev/codegraph/internal/typeinfer"
)

func newCtx(language lang.Language, symbols *symtab.Table) Context {
	return Context{
		ModuleQN:    "myproject.pkg.service",
		Language:    language,
		Imports:     importmap.Map{},
		Symbols:     symbols,
		Inheritance: inherit.New(),
		Types:       typeinfer.New(),
	}
}

func TestResolveSameModule(t *testing.T) {
	symbols := symtab.New()
	symbols.Insert("myproject.pkg.service.helper", symtab.KindFunction)
	ctx := newCtx(lang.Python, symbols)

	got := Resolve(Call{Callee: "helper"}, ctx)
	if got != "myproject.pkg.service.helper" {
		t.Errorf("Resolve = %q, want same-module match", got)
	}
}

func TestResolveUnresolvedCallProducesNoEdge(t *testing.T) {
	symbols := symtab.New()
	ctx := newCtx(lang.Python, symbols)

	got := Resolve(Call{Callee: "totallyUnknownFunction"}, ctx)
	if got != "" {
		t.Errorf("Resolve = %q, want \"\" for an unresolvable callee", got)
	}
}

func TestResolveDirectImport(t *testing.T) {
	symbols := symtab.New()
	symbols.Insert("myproject.pkg.other.Func", symtab.KindFunction)
	ctx := newCtx(lang.Python, symbols)
	ctx.Imports = importmap.Map{"other": "myproject.pkg.other"}

	got := Resolve(Call{Callee: "other.Func"}, ctx)
	if got != "myproject.pkg.other.Func" {
		t.Errorf("Resolve = %q, want direct-import match", got)
	}
}

func TestResolveWildcardImport(t *testing.T) {
	symbols := symtab.New()
	symbols.Insert("myproject.pkg.other.helper", symtab.KindFunction)
	ctx := newCtx(lang.Python, symbols)
	ctx.Imports = importmap.Map{importmap.WildcardKey + "myproject.pkg.other": "myproject.pkg.other"}

	got := Resolve(Call{Callee: "helper"}, ctx)
	if got != "myproject.pkg.other.helper" {
		t.Errorf("Resolve = %q, want wildcard-import match", got)
	}
}

func TestResolveSuper(t *testing.T) {
	symbols := symtab.New()
	symbols.Insert("myproject.pkg.Base.speak", symtab.KindMethod)
	ctx := newCtx(lang.Python, symbols)
	ctx.EnclosingClass = "myproject.pkg.Derived"
	ctx.Inheritance.AddParents("myproject.pkg.Derived", []string{"myproject.pkg.Base"})

	got := Resolve(Call{Callee: "super.speak", IsSuper: true}, ctx)
	if got != "myproject.pkg.Base.speak" {
		t.Errorf("Resolve = %q, want inherited super.speak match", got)
	}
}

func TestResolveNearestNameFallback(t *testing.T) {
	symbols := symtab.New()
	symbols.Insert("myproject.other.pkg.process", symtab.KindFunction)
	ctx := newCtx(lang.Python, symbols)

	// "process" isn't defined in the same module or imported, but exists
	// exactly once elsewhere in the project — the fallback should still
	// find it rather than leaving the call unresolved.
	got := Resolve(Call{Callee: "process"}, ctx)
	if got != "myproject.other.pkg.process" {
		t.Errorf("Resolve = %q, want nearest-name fallback match", got)
	}
}

func TestResolveBuiltinTableLeavesJSConsoleUnresolved(t *testing.T) {
	symbols := symtab.New()
	ctx := newCtx(lang.JavaScript, symbols)

	got := Resolve(Call{Callee: "console.log"}, ctx)
	if got != "" {
		t.Errorf("Resolve(console.log) = %q, want \"\" — builtin table should stop the cascade", got)
	}
}

func TestResolveIIFEStopsWithoutFallback(t *testing.T) {
	symbols := symtab.New()
	symbols.Insert("myproject.pkg.service.somethingElse", symtab.KindFunction)
	ctx := newCtx(lang.JavaScript, symbols)

	got := Resolve(Call{Callee: ""}, ctx)
	if got != "" {
		t.Errorf("Resolve(empty callee) = %q, want \"\" for an IIFE call site", got)
	}
}
