// Package resolver is the Call Resolver: given one call site's callee
// expression text, it returns the best-guess qualified name of the
// function/method being called, trying a fixed, ordered cascade of
// strategies and stopping at the first one that produces a candidate
// (SPEC_FULL.md §4.6). A call that no strategy resolves produces no CALLS
// edge — it is not an error, just an unresolved reference (dynamic
// dispatch through data the indexer cannot see statically, a third-party
// library call, ...).
package resolver

import (
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codegraph-dev/codegraph/internal/importmap"
	"github.com/codegraph-dev/codegraph/internal/inherit"
	"github.com/codegraph-dev/codegraph/internal/lang"
	"github.com/codegraph-dev/codegraph/internal/symtab"
	"github.com/codegraph-dev/codegraph/internal/typeinfer"
)

// jsBuiltins / cppOperators name callees that are language runtime/operator
// builtins rather than project-defined functions — resolving these would
// only ever produce a false edge into nothing, so the cascade stops at
// strategy 8 without emitting a candidate for them.
var jsBuiltins = toSet([]string{
	"console.log", "console.error", "console.warn", "console.info",
	"JSON.stringify", "JSON.parse", "Object.keys", "Object.values", "Object.entries",
	"Array.from", "Array.isArray", "Promise.all", "Promise.resolve", "Promise.reject",
	"setTimeout", "setInterval", "parseInt", "parseFloat",
})

var cppOperators = toSet([]string{
	"operator+", "operator-", "operator*", "operator/", "operator==", "operator!=",
	"operator<", "operator>", "operator<=", "operator>=", "operator<<", "operator>>",
	"operator=", "operator[]", "operator()", "operator++", "operator--",
})

// Call describes one call site as the Structure/Definition passes saw it.
type Call struct {
	Callee         string // raw callee text: "foo", "obj.method", "pkg.Func", "super.speak", ...
	IsSuper        bool   // syntactic super.method() call
	IsChained      bool   // object is itself a call expression: f().g()
	ChainInnerFunc string // qualified name of the inner call, if IsChained and resolvable
	ReceiverVar    string // local variable name the call is invoked on, if any ("obj" in obj.method())
}

// Context bundles everything the resolver needs about the call site's
// surrounding file and function to run the cascade.
type Context struct {
	ModuleQN       string
	EnclosingClass string // "" if the call isn't inside a method
	FuncQN         string // qualified name of the function/method containing the call
	Language       lang.Language
	Imports        importmap.Map
	Symbols        *symtab.Table
	Inheritance    *inherit.Map
	Types          *typeinfer.Engine
	Lookup         typeinfer.FuncLookup // resolves a funcQN to its body, for chained-call return-type resolution
}

// Resolve runs the fixed-priority cascade and returns the resolved callee
// qualified name, or "" if nothing resolved.
func Resolve(call Call, ctx Context) string {
	if strategies := []func(Call, Context) (string, bool){
		resolveIIFE,
		resolveSuper,
		resolveChainedCall,
		resolveDirectImport,
		resolveQualifiedObjectMethod,
		resolveWildcardImport,
		resolveSameModule,
		resolveBuiltinTable,
		resolveNearestNameFallback,
	}; true {
		for _, strategy := range strategies {
			if qn, ok := strategy(call, ctx); ok {
				return qn
			}
		}
	}
	return ""
}

// 1. IIFE: an immediately-invoked function expression has no stable name to
// resolve to — the cascade recognises it and stops rather than falling
// through to a misleading fallback match.
func resolveIIFE(call Call, ctx Context) (string, bool) {
	if call.Callee == "" && !call.IsChained {
		return "", true // matched (nothing to resolve), but not a candidate: caller gets ""
	}
	return "", false
}

// 2. super.method() resolves through the inheritance map starting at the
// enclosing class's direct parents; a bare super() call resolves to the
// parents' "constructor" method.
func resolveSuper(call Call, ctx Context) (string, bool) {
	methodName := lastSegment(call.Callee)
	if call.Callee == "super" {
		methodName = "constructor"
	} else if !call.IsSuper {
		return "", false
	}
	if ctx.EnclosingClass == "" || ctx.Inheritance == nil {
		return "", false
	}
	qn := ctx.Inheritance.ResolveInheritedMethod(ctx.EnclosingClass, methodName, func(candidate string) bool {
		_, ok := ctx.Symbols.Lookup(candidate)
		return ok
	})
	if qn == "" {
		return "", false
	}
	return qn, true
}

// 3. Chained call: `a().b()` resolves the inner call's return type first,
// then looks up b on that type, including inherited methods.
func resolveChainedCall(call Call, ctx Context) (string, bool) {
	if !call.IsChained || call.ChainInnerFunc == "" {
		return "", false
	}
	lookup := ctx.Lookup
	if lookup == nil {
		lookup = noLookup
	}
	classQN := ctx.Types.ResolveReturnType(call.ChainInnerFunc, lookup, ctx.Symbols)
	if classQN == "" {
		return "", false
	}
	return lookupMethodOnClass(classQN, lastSegment(call.Callee), ctx)
}

func noLookup(string) (*tree_sitter.Node, []byte, lang.Language, importmap.Map, string, bool) {
	return nil, nil, "", nil, "", false
}

// 4. Direct import: `alias()` or `alias.suffix()` where alias is a plain
// (non-wildcard) import-map key.
func resolveDirectImport(call Call, ctx Context) (string, bool) {
	if ctx.Imports == nil {
		return "", false
	}
	head, rest, hasDot := strings.Cut(call.Callee, ".")
	resolved, ok := ctx.Imports[head]
	if !ok {
		return "", false
	}
	// Without a dot, resolved is itself the callee: a from-import of a
	// single function or class, possibly bound under a different local alias.
	candidate := resolved
	if hasDot {
		candidate = resolved + "." + rest
	}
	if _, ok := ctx.Symbols.Lookup(candidate); ok {
		return candidate, true
	}
	return "", false
}

// 5. Qualified object.method(): four sub-strategies in order — local
// variable's inferred type, instance attribute's inferred type, same-module
// class, imported module member.
func resolveQualifiedObjectMethod(call Call, ctx Context) (string, bool) {
	// 5b. self/this instance attribute: `self.attr.method()`. Its receiver
	// is dotted, so ReceiverVar is never set for it; checked up front.
	if p := strings.Split(call.Callee, "."); len(p) == 3 && ctx.EnclosingClass != "" && isSelfReceiver(p[0], ctx.Language) {
		if classQN, ok := ctx.Types.SelfAttrType(ctx.EnclosingClass, p[1]); ok {
			if qn, ok := lookupMethodOnClass(classQN, p[2], ctx); ok {
				return qn, true
			}
		}
	}

	if call.ReceiverVar == "" {
		return "", false
	}
	methodName := lastSegment(call.Callee)

	// 5a. local variable type (typeinfer locals for the enclosing function)
	if locals, ok := ctx.Types.Locals(ctx.FuncQN); ok {
		if classQN, ok := locals[call.ReceiverVar]; ok {
			if qn, ok := lookupMethodOnClass(classQN, methodName, ctx); ok {
				return qn, true
			}
		}
	}

	// 5c. same-module class named exactly like the receiver (Type.Method()
	// static-call shape masquerading as qualified object.method).
	if qn, ok := lookupMethodOnClass(ctx.ModuleQN+"."+call.ReceiverVar, methodName, ctx); ok {
		return qn, true
	}

	// 5d. imported module member: `pkgAlias.helper()` where pkgAlias names
	// a module rather than a class.
	if ctx.Imports != nil {
		if resolved, ok := ctx.Imports[call.ReceiverVar]; ok {
			candidate := resolved + "." + methodName
			if _, ok := ctx.Symbols.Lookup(candidate); ok {
				return candidate, true
			}
		}
	}

	return "", false
}

func lookupMethodOnClass(classQN, methodName string, ctx Context) (string, bool) {
	candidate := classQN + "." + methodName
	if _, ok := ctx.Symbols.Lookup(candidate); ok {
		return candidate, true
	}
	if ctx.Inheritance != nil {
		qn := ctx.Inheritance.ResolveInheritedMethod(classQN, methodName, func(c string) bool {
			_, ok := ctx.Symbols.Lookup(c)
			return ok
		})
		if qn != "" {
			return qn, true
		}
	}
	return "", false
}

func isSelfReceiver(receiver string, language lang.Language) bool {
	switch language {
	case lang.Python:
		return receiver == "self"
	case lang.JavaScript, lang.TypeScript, lang.TSX, lang.Java:
		return receiver == "this"
	default:
		return receiver == "self" || receiver == "this"
	}
}

// 6. Wildcard import: `from pkg import *; foo()` resolves any wildcard
// import-map entry whose resolved module defines a matching simple name.
func resolveWildcardImport(call Call, ctx Context) (string, bool) {
	if strings.Contains(call.Callee, ".") || ctx.Imports == nil {
		return "", false
	}
	for key, resolved := range ctx.Imports {
		if !strings.HasPrefix(key, importmap.WildcardKey) {
			continue
		}
		candidate := resolved + "." + call.Callee
		if _, ok := ctx.Symbols.Lookup(candidate); ok {
			return candidate, true
		}
	}
	return "", false
}

// 7. Same-module: an unqualified call inside the same file/module.
func resolveSameModule(call Call, ctx Context) (string, bool) {
	if strings.Contains(call.Callee, ".") {
		return "", false
	}
	candidate := ctx.ModuleQN + "." + call.Callee
	if _, ok := ctx.Symbols.Lookup(candidate); ok {
		return candidate, true
	}
	if ctx.EnclosingClass != "" {
		candidate = ctx.EnclosingClass + "." + call.Callee
		if _, ok := ctx.Symbols.Lookup(candidate); ok {
			return candidate, true
		}
	}
	return "", false
}

// 8. Builtin tables: JS/TS runtime builtins and C++ operator names are
// recognised and intentionally left unresolved.
func resolveBuiltinTable(call Call, ctx Context) (string, bool) {
	switch ctx.Language {
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		if jsBuiltins[call.Callee] {
			return "", true
		}
	case lang.CPP:
		if cppOperators[call.Callee] {
			return "", true
		}
	}
	return "", false
}

// 9. Nearest-name fallback: every qualified name ending in ".simpleName",
// ranked by import/structural distance from the caller's module, then
// lexicographically to keep ties deterministic.
func resolveNearestNameFallback(call Call, ctx Context) (string, bool) {
	simple := lastSegment(call.Callee)
	if simple == "" {
		return "", false
	}
	candidates := ctx.Symbols.EndingWith(simple)
	if ctx.Language == lang.Java {
		candidates = append(candidates, javaSignatureCandidates(ctx.Symbols, simple)...)
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool {
		di := symtab.CommonPrefixLen(candidates[i], ctx.ModuleQN)
		dj := symtab.CommonPrefixLen(candidates[j], ctx.ModuleQN)
		if di != dj {
			return di > dj
		}
		return candidates[i] < candidates[j]
	})
	return candidates[0], true
}

// javaSignatureCandidates additionally matches Java method QNs that carry a
// parenthesized parameter signature, by simple name with the signature
// stripped.
func javaSignatureCandidates(symbols *symtab.Table, simple string) []string {
	var out []string
	for _, qn := range symbols.AllOfKind(symtab.KindMethod) {
		if symtab.SimpleName(symtab.StripSignature(qn)) == simple {
			out = append(out, qn)
		}
	}
	return out
}

func lastSegment(s string) string {
	if idx := strings.LastIndexByte(s, '.'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
