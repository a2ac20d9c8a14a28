// Package typeinfer is the Type-Inference Engine: it assigns a best-guess
// class/type qualified name to local variables, instance attributes, and
// function return values, purely from static structure (no type checker,
// no semantic analysis) so the Call Resolver can follow `obj.method()` to
// the method defined on obj's inferred type (SPEC_FULL.md §4.5).
//
// Every function body gets parameter typing by name-similarity against
// known class names, then assignment typing where the right-hand side
// constructs a class; instance-attribute typing from constructor scans runs
// per class (InferSelfAttrs). Assignments from other calls and loop
// variables are not typed. Python, Java and JavaScript/TypeScript get
// specialised assignment front-ends; Go, Rust and C++ share one generic
// front-end (construction call bound to a plain identifier). Lua is routed
// to the generic front-end, which matches none of Lua's node kinds, so Lua
// locals are typed from parameter names only.
package typeinfer

import (
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codegraph-dev/codegraph/internal/importmap"
	"github.com/codegraph-dev/codegraph/internal/lang"
	"github.com/codegraph-dev/codegraph/internal/parser"
	"github.com/codegraph-dev/codegraph/internal/symtab"
)

// nameSimilarityThreshold is the minimum score (of 100) a parameter name
// must reach against a known class's simple name before the engine accepts
// the match, e.g. "repository" against class "UserRepository" (a suffix
// match, scoring 90).
const nameSimilarityThreshold = 60

// LocalTypes maps a local variable name to the class/type qualified name
// the engine inferred for it.
type LocalTypes map[string]string

// Engine holds the project-wide inference state: the per-function local
// type maps built once Pass 1 is done, and the return-type cache (with recursion
// guard) built lazily during Pass 2 as the resolver asks about callees.
type Engine struct {
	mu         sync.RWMutex
	locals     map[string]LocalTypes    // funcQN -> varName -> classQN
	selfAttrs  map[string]LocalTypes    // classQN -> attrName -> classQN
	returns    map[string]string        // funcQN -> inferred return classQN ("" if none)
	resolving  map[string]bool          // recursion guard for ResolveReturnType
}

// New returns an empty engine.
func New() *Engine {
	return &Engine{
		locals:    make(map[string]LocalTypes),
		selfAttrs: make(map[string]LocalTypes),
		returns:   make(map[string]string),
		resolving: make(map[string]bool),
	}
}

// FuncLookup resolves a function/method qualified name to the AST node and
// source it was defined in, plus the import map and module QN of the file it
// lives in (needed to resolve a constructor call in its return statement), so
// ResolveReturnType can inspect its body. The driver supplies this, backed by
// the definitions recorded during Pass 1.
type FuncLookup func(funcQN string) (node *tree_sitter.Node, source []byte, language lang.Language, imports importmap.Map, moduleQN string, ok bool)

// InferLocals runs parameter and assignment typing over one function's AST node and records the
// resulting variable -> class-QN map under funcQN. paramNames lists the
// function's declared parameters in order, for the name-similarity phase.
func (e *Engine) InferLocals(
	funcNode *tree_sitter.Node, source []byte, language lang.Language,
	funcQN string, paramNames []string,
	symbols *symtab.Table, imports importmap.Map, moduleQN string,
) LocalTypes {
	types := make(LocalTypes)

	// Phase 1: parameter typing by name-similarity against known class names.
	for _, p := range paramNames {
		if qn, ok := bestClassMatch(p, symbols); ok {
			types[p] = qn
		}
	}

	// Phase 2: assignment typing, walking the body.
	parser.Walk(funcNode, func(n *tree_sitter.Node) bool {
		if n.Id() == funcNode.Id() {
			return true
		}
		switch language {
		case lang.Python:
			inferPythonAssignment(n, source, symbols, imports, moduleQN, types)
		case lang.JavaScript, lang.TypeScript, lang.TSX:
			inferJSAssignment(n, source, symbols, imports, moduleQN, types)
		case lang.Java:
			inferJavaAssignment(n, source, symbols, imports, moduleQN, types)
		case lang.Lua:
			inferLuaAssignment(n, source, symbols, imports, moduleQN, types)
		default:
			inferGenericAssignment(n, source, language, symbols, imports, moduleQN, types)
		}
		return true
	})

	e.mu.Lock()
	e.locals[funcQN] = types
	e.mu.Unlock()
	return types
}

// Locals returns the recorded local-variable type map for a function, if any.
func (e *Engine) Locals(funcQN string) (LocalTypes, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.locals[funcQN]
	return t, ok
}

// InferSelfAttrs scans a class's constructor (the language's conventional
// init/constructor method) for self.attr = ClassName(...) assignments and
// records attr -> classQN under classQN, for the resolver's object.method
// strategy when obj is an instance attribute rather than a local variable.
func (e *Engine) InferSelfAttrs(
	classNode *tree_sitter.Node, source []byte, language lang.Language,
	classQN string, constructorNames []string,
	symbols *symtab.Table, imports importmap.Map, moduleQN string,
) {
	ctor := toSet(constructorNames)
	attrs := make(LocalTypes)

	parser.Walk(classNode, func(n *tree_sitter.Node) bool {
		if n.Id() == classNode.Id() {
			return true
		}
		if !isFunctionLike(n.Kind(), language) {
			return true
		}
		name := funcSimpleName(n, source, language)
		if !ctor[name] {
			return true
		}
		parser.Walk(n, func(inner *tree_sitter.Node) bool {
			attr, qn, ok := selfAttrAssignment(inner, source, language, symbols, imports, moduleQN)
			if ok {
				attrs[attr] = qn
			}
			return true
		})
		return false
	})

	if len(attrs) == 0 {
		return
	}
	e.mu.Lock()
	e.selfAttrs[classQN] = attrs
	e.mu.Unlock()
}

// SelfAttrType looks up the inferred type of an instance attribute.
func (e *Engine) SelfAttrType(classQN, attr string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.selfAttrs[classQN]
	if !ok {
		return "", false
	}
	qn, ok := m[attr]
	return qn, ok
}

// ResolveReturnType infers the class/type a function's return value carries
// from the first return statement, in source order, whose expression is a
// construction call or a local variable with a recorded type; a returned
// call to another function is not followed. It memoizes the result and
// guards against recursive functions
// (a function whose return type depends on itself resolves to "" rather
// than looping forever).
func (e *Engine) ResolveReturnType(funcQN string, lookup FuncLookup, symbols *symtab.Table) string {
	e.mu.Lock()
	if qn, ok := e.returns[funcQN]; ok {
		e.mu.Unlock()
		return qn
	}
	if e.resolving[funcQN] {
		e.mu.Unlock()
		return ""
	}
	e.resolving[funcQN] = true
	e.mu.Unlock()

	result := e.computeReturnType(funcQN, lookup, symbols)

	e.mu.Lock()
	delete(e.resolving, funcQN)
	e.returns[funcQN] = result
	e.mu.Unlock()
	return result
}

func (e *Engine) computeReturnType(funcQN string, lookup FuncLookup, symbols *symtab.Table) string {
	node, source, language, imports, moduleQN, ok := lookup(funcQN)
	if !ok {
		return ""
	}
	locals, _ := e.Locals(funcQN)

	var result string
	parser.Walk(node, func(n *tree_sitter.Node) bool {
		if result != "" {
			return false
		}
		if n.Kind() != returnNodeKind(language) {
			return true
		}
		expr := returnExpr(n, source, language)
		if expr == nil {
			return true
		}
		if qn, ok := constructedClassQN(expr, source, symbols, imports, moduleQN); ok {
			result = qn
			return false
		}
		if expr.Kind() == "identifier" {
			if qn, ok := locals[parser.NodeText(expr, source)]; ok {
				result = qn
				return false
			}
		}
		return true
	})
	return result
}

func returnNodeKind(language lang.Language) string {
	switch language {
	case lang.Go:
		return "return_statement"
	case lang.Rust:
		return "return_expression"
	default:
		return "return_statement"
	}
}

func returnExpr(n *tree_sitter.Node, source []byte, language lang.Language) *tree_sitter.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c != nil {
			return c
		}
	}
	return nil
}

// --- phase 1: parameter name-similarity -----------------------------------

// bestClassMatch scores a parameter name against every registered class's
// simple name using exact/suffix/substring heuristics and returns the best
// match clearing the threshold.
func bestClassMatch(paramName string, symbols *symtab.Table) (string, bool) {
	norm := normalizeIdent(paramName)
	if norm == "" {
		return "", false
	}

	var classes []string
	classes = append(classes, symbols.AllOfKind(symtab.KindClass)...)
	classes = append(classes, symbols.AllOfKind(symtab.KindInterface)...)

	best := ""
	bestScore := 0
	for _, qn := range classes {
		score := scoreNameSimilarity(norm, normalizeIdent(symtab.SimpleName(qn)))
		if score > bestScore {
			bestScore = score
			best = qn
		}
	}
	if bestScore >= nameSimilarityThreshold {
		return best, true
	}
	return "", false
}

func normalizeIdent(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

func scoreNameSimilarity(paramNorm, classNorm string) int {
	switch {
	case paramNorm == classNorm:
		return 100
	case strings.HasSuffix(paramNorm, classNorm) || strings.HasSuffix(classNorm, paramNorm):
		return 90
	case strings.Contains(paramNorm, classNorm) || strings.Contains(classNorm, paramNorm):
		shorter, longer := paramNorm, classNorm
		if len(longer) < len(shorter) {
			shorter, longer = longer, shorter
		}
		if longer == "" {
			return 0
		}
		ratio := float64(len(shorter)) / float64(len(longer))
		return int(80 * ratio)
	default:
		return 0
	}
}

// --- phase 2: assignment typing, per language ------------------------------

func inferPythonAssignment(n *tree_sitter.Node, source []byte, symbols *symtab.Table, imports importmap.Map, moduleQN string, types LocalTypes) {
	switch n.Kind() {
	case "assignment":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left == nil || right == nil || left.Kind() != "identifier" {
			return
		}
		if qn, ok := constructedClassQN(right, source, symbols, imports, moduleQN); ok {
			types[parser.NodeText(left, source)] = qn
		}
	case "for_statement":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left == nil || right == nil || left.Kind() != "identifier" {
			return
		}
		// `for x in some_list_of_t:` — no element-type signal available
		// structurally beyond the iterable's own inferred type, which this
		// static pass does not track; left unresolved.
		_ = right
	}
}

func inferJSAssignment(n *tree_sitter.Node, source []byte, symbols *symtab.Table, imports importmap.Map, moduleQN string, types LocalTypes) {
	if n.Kind() != "variable_declarator" {
		return
	}
	name := n.ChildByFieldName("name")
	value := n.ChildByFieldName("value")
	if name == nil || value == nil || name.Kind() != "identifier" {
		return
	}
	if value.Kind() != "new_expression" {
		return
	}
	if qn, ok := constructedClassQN(value, source, symbols, imports, moduleQN); ok {
		types[parser.NodeText(name, source)] = qn
	}
}

func inferJavaAssignment(n *tree_sitter.Node, source []byte, symbols *symtab.Table, imports importmap.Map, moduleQN string, types LocalTypes) {
	if n.Kind() != "local_variable_declaration" && n.Kind() != "variable_declarator" {
		return
	}
	decl := n
	if n.Kind() == "local_variable_declaration" {
		decl = findChild(n, "variable_declarator")
		if decl == nil {
			return
		}
	}
	name := decl.ChildByFieldName("name")
	value := decl.ChildByFieldName("value")
	if name == nil || value == nil || value.Kind() != "object_creation_expression" {
		return
	}
	if qn, ok := constructedClassQN(value, source, symbols, imports, moduleQN); ok {
		types[parser.NodeText(name, source)] = qn
	}
}

func inferLuaAssignment(n *tree_sitter.Node, source []byte, symbols *symtab.Table, imports importmap.Map, moduleQN string, types LocalTypes) {
	inferGenericAssignment(n, source, lang.Lua, symbols, imports, moduleQN, types)
}

// inferGenericAssignment covers Go, Rust and C++: `x := pkg.New(...)`,
// `let x = Type::new(...)`, `Type* x = new Type(...)` all reduce to "an
// identifier bound to a call/construction whose callee name matches a
// known class". Lua is routed here too and matches none of these node kinds.
func inferGenericAssignment(n *tree_sitter.Node, source []byte, language lang.Language, symbols *symtab.Table, imports importmap.Map, moduleQN string, types LocalTypes) {
	switch n.Kind() {
	case "short_var_declaration": // Go
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		assignGenericPair(left, right, source, symbols, imports, moduleQN, types)
	case "let_declaration": // Rust
		pattern := n.ChildByFieldName("pattern")
		value := n.ChildByFieldName("value")
		assignGenericPair(pattern, value, source, symbols, imports, moduleQN, types)
	case "init_declarator": // C++
		declarator := n.ChildByFieldName("declarator")
		value := n.ChildByFieldName("value")
		assignGenericPair(declarator, value, source, symbols, imports, moduleQN, types)
	}
}

func assignGenericPair(left, right *tree_sitter.Node, source []byte, symbols *symtab.Table, imports importmap.Map, moduleQN string, types LocalTypes) {
	if left == nil || right == nil {
		return
	}
	name := parser.NodeText(left, source)
	if name == "" {
		return
	}
	if qn, ok := constructedClassQN(right, source, symbols, imports, moduleQN); ok {
		types[name] = qn
	}
}

// --- shared construction-call resolution -----------------------------------

// constructedClassQN recognises "ClassName(args)", "module.ClassName(args)",
// "new ClassName(args)" and "Type::new(args)" shapes and resolves the
// callee to a registered class, via the import map first, then same-module,
// then simple-name lookup.
func constructedClassQN(expr *tree_sitter.Node, source []byte, symbols *symtab.Table, imports importmap.Map, moduleQN string) (string, bool) {
	if expr == nil {
		return "", false
	}
	callee := calleeIdentifier(expr, source)
	if callee == "" {
		return "", false
	}

	head, rest, hasDot := strings.Cut(callee, ".")
	lookupName := callee
	if hasDot {
		if resolved, ok := imports[head]; ok {
			candidate := resolved + "." + rest
			if k, ok := symbols.Lookup(candidate); ok && isClassKind(k) {
				return candidate, true
			}
		}
		lookupName = rest
	} else if resolved, ok := imports[head]; ok {
		if k, ok := symbols.Lookup(resolved); ok && isClassKind(k) {
			return resolved, true
		}
	}

	if candidate := moduleQN + "." + lookupName; func() bool { k, ok := symbols.Lookup(candidate); return ok && isClassKind(k) }() {
		return candidate, true
	}

	candidates := symbols.ByName(lookupName)
	var match string
	for _, qn := range candidates {
		if k, ok := symbols.Lookup(qn); ok && isClassKind(k) {
			if match != "" {
				return "", false // ambiguous, no import/module signal to break the tie
			}
			match = qn
		}
	}
	if match != "" {
		return match, true
	}
	return "", false
}

func isClassKind(k symtab.EntityKind) bool {
	return k == symtab.KindClass || k == symtab.KindInterface || k == symtab.KindEnum
}

// calleeIdentifier extracts the dotted callee name from a construction
// expression across languages ("Foo", "pkg.Foo", "new Foo", "Foo::new").
func calleeIdentifier(expr *tree_sitter.Node, source []byte) string {
	switch expr.Kind() {
	case "call": // Python
		fn := expr.ChildByFieldName("function")
		return textIfSimple(fn, source)
	case "new_expression": // JS/TS
		fn := expr.ChildByFieldName("constructor")
		return textIfSimple(fn, source)
	case "object_creation_expression": // Java
		t := expr.ChildByFieldName("type")
		return textIfSimple(t, source)
	case "call_expression": // Go, Rust (also C++ constructor calls)
		fn := expr.ChildByFieldName("function")
		if fn == nil {
			return ""
		}
		text := parser.NodeText(fn, source)
		text = strings.TrimSuffix(text, "::new")
		text = strings.ReplaceAll(text, "::", ".")
		return text
	}
	return ""
}

func textIfSimple(n *tree_sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "identifier", "type_identifier", "scoped_identifier":
		return parser.NodeText(n, source)
	case "member_expression", "field_access":
		return parser.NodeText(n, source)
	default:
		return parser.NodeText(n, source)
	}
}

// --- self-attribute construction scan --------------------------------------

func selfAttrAssignment(n *tree_sitter.Node, source []byte, language lang.Language, symbols *symtab.Table, imports importmap.Map, moduleQN string) (attr, classQN string, ok bool) {
	switch language {
	case lang.Python:
		if n.Kind() != "assignment" {
			return "", "", false
		}
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left == nil || right == nil || left.Kind() != "attribute" {
			return "", "", false
		}
		obj := left.ChildByFieldName("object")
		attrNode := left.ChildByFieldName("attribute")
		if obj == nil || attrNode == nil || parser.NodeText(obj, source) != "self" {
			return "", "", false
		}
		if qn, ok := constructedClassQN(right, source, symbols, imports, moduleQN); ok {
			return parser.NodeText(attrNode, source), qn, true
		}
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		if n.Kind() != "assignment_expression" {
			return "", "", false
		}
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left == nil || right == nil || left.Kind() != "member_expression" {
			return "", "", false
		}
		obj := left.ChildByFieldName("object")
		prop := left.ChildByFieldName("property")
		if obj == nil || prop == nil || parser.NodeText(obj, source) != "this" {
			return "", "", false
		}
		if qn, ok := constructedClassQN(right, source, symbols, imports, moduleQN); ok {
			return parser.NodeText(prop, source), qn, true
		}
	case lang.Java:
		if n.Kind() != "assignment_expression" {
			return "", "", false
		}
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left == nil || right == nil {
			return "", "", false
		}
		text := parser.NodeText(left, source)
		if !strings.HasPrefix(text, "this.") {
			return "", "", false
		}
		if qn, ok := constructedClassQN(right, source, symbols, imports, moduleQN); ok {
			return strings.TrimPrefix(text, "this."), qn, true
		}
	}
	return "", "", false
}

// --- shared tree helpers ----------------------------------------------------

func isFunctionLike(kind string, language lang.Language) bool {
	spec := lang.ForLanguage(language)
	if spec == nil {
		return false
	}
	for _, t := range spec.FunctionNodeTypes {
		if t == kind {
			return true
		}
	}
	return false
}

func funcSimpleName(n *tree_sitter.Node, source []byte, language lang.Language) string {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return parser.NodeText(nameNode, source)
}

func findChild(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
