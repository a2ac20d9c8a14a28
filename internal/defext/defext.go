// Package defext is the Definition Extractor: given one file's parsed AST
// it emits Function/Method/Class/Interface/Enum nodes and DEFINES/IMPLEMENTS
// edges, and registers every qualified name into the project-wide symbol
// table, import map and inheritance map so the Call Resolver has something
// to search during Pass 2 (SPEC_FULL.md §4.4).
//
// Grounded in the teacher's extractFunctionDef/extractClassDef/
// extractRustImplBlock/extractClassMethodDefs, generalised to write through
// sink.Sink and to populate symtab.Table/inherit.Map directly instead of a
// one-shot DB pass.
package defext

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codegraph-dev/codegraph/internal/astcache"
	"github.com/codegraph-dev/codegraph/internal/fqn"
	"github.com/codegraph-dev/codegraph/internal/importmap"
	"github.com/codegraph-dev/codegraph/internal/inherit"
	"github.com/codegraph-dev/codegraph/internal/lang"
	"github.com/codegraph-dev/codegraph/internal/parser"
	"github.com/codegraph-dev/codegraph/internal/sink"
	"github.com/codegraph-dev/codegraph/internal/symtab"
)

// pythonConstructors / jsConstructors name the methods treated as a class's
// constructor for the self-attribute scan (a Java constructor shares its
// class's simple name, which the caller supplies).
var pythonConstructors = []string{"__init__"}
var jsConstructors = []string{"constructor"}

// FuncInfo records what the Type-Inference Engine needs about one extracted
// function: its parameter names (phase 1 of local-variable typing) and the
// class it is a method of, if any (for `self`/`this` resolution).
type FuncInfo struct {
	Node           *tree_sitter.Node
	ParamNames     []string
	EnclosingClass string
}

// ClassInfo records what the Type-Inference Engine needs about one
// extracted class: its AST node, so InferSelfAttrs can scan its
// constructor for self.attr = ClassName(...) assignments.
type ClassInfo struct {
	Node *tree_sitter.Node
}

// Result is everything one file's extraction pass produced that later
// stages (type inference, call resolution) need, beyond what went straight
// to the sink.
type Result struct {
	ModuleQN string
	Imports  importmap.Map
	Funcs    map[string]*FuncInfo   // funcQN -> info
	Classes  map[string]*ClassInfo // classQN -> info
}

// ExtractFile walks one cached file's AST, emitting definitions to sk and
// registering every qualified name into symbols and inheritance.
func ExtractFile(entry *astcache.Entry, projectName string, sk sink.Sink, symbols *symtab.Table, inh *inherit.Map) *Result {
	spec := lang.ForLanguage(entry.Language)
	hasSpec := spec != nil
	root := entry.Tree.RootNode()
	moduleQN := fqn.ModuleQN(projectName, entry.RelPath)

	result := &Result{
		ModuleQN: moduleQN,
		Imports:  importmap.Parse(root, entry.Source, entry.Language, projectName, entry.RelPath),
		Funcs:    make(map[string]*FuncInfo),
		Classes:  make(map[string]*ClassInfo),
	}

	sk.EnsureNode(sink.Node{
		Label:         "Module",
		Name:          moduleName(entry.RelPath),
		QualifiedName: moduleQN,
		FilePath:      entry.RelPath,
	})

	if !hasSpec {
		return result
	}

	funcTypes := toSet(spec.FunctionNodeTypes)
	classTypes := toSet(spec.ClassNodeTypes)

	parser.WalkIterative(root, func(n *tree_sitter.Node) bool {
		switch {
		case classTypes[n.Kind()]:
			extractClass(n, entry, projectName, moduleQN, moduleQN, spec, sk, symbols, inh, result)
			return false // methods/fields handled by extractClass's own walk
		case funcTypes[n.Kind()] && !insideClass(n, classTypes):
			extractFunction(n, entry, projectName, moduleQN, moduleQN, spec, sk, symbols, result)
			return false
		case entry.Language == lang.Rust && n.Kind() == "impl_item":
			extractRustImpl(n, entry, projectName, moduleQN, spec, sk, symbols, inh, result)
			return false
		}
		return true
	})

	return result
}

func insideClass(n *tree_sitter.Node, classTypes map[string]bool) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if classTypes[p.Kind()] {
			return true
		}
	}
	return false
}

func moduleName(relPath string) string {
	base := relPath
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	return base
}

// --- functions ---------------------------------------------------------

func extractFunction(
	n *tree_sitter.Node, entry *astcache.Entry, projectName, moduleQN, ownerQN string,
	spec *lang.LanguageSpec, sk sink.Sink, symbols *symtab.Table, result *Result,
) {
	nameNode := funcNameNode(n, entry.Language)
	if nameNode == nil {
		return
	}
	name := parser.NodeText(nameNode, entry.Source)
	if name == "" {
		return
	}

	label := "Function"
	qn := fqn.Compute(projectName, entry.RelPath, name)
	if ownerQN != moduleQN {
		label = "Method"
		qn = ownerQN + "." + name
	}
	if entry.Language == lang.Java {
		qn = qn + javaSignature(n, entry.Source)
	}

	params := paramNames(n, entry.Source, entry.Language)

	props := map[string]any{
		"is_exported": isExported(name, entry.Language),
	}
	if sig := signatureText(n, entry.Source); sig != "" {
		props["signature"] = sig
	}
	if decorators := extractDecorators(n, entry.Source, entry.Language, spec); len(decorators) > 0 {
		props["decorators"] = decorators
	}

	sk.EnsureNode(sink.Node{
		Label:         label,
		Name:          name,
		QualifiedName: qn,
		FilePath:      entry.RelPath,
		StartLine:     int(n.StartPosition().Row) + 1,
		EndLine:       int(n.EndPosition().Row) + 1,
		Properties:    props,
	})
	sk.EnsureRelationship(sink.Relationship{FromQN: ownerQN, Type: "DEFINES", ToQN: qn})

	kind := symtab.KindFunction
	if label == "Method" {
		kind = symtab.KindMethod
	}
	symbols.Insert(qn, kind)

	result.Funcs[qn] = &FuncInfo{Node: n, ParamNames: params, EnclosingClass: enclosingClassQN(ownerQN, moduleQN)}
}

func enclosingClassQN(ownerQN, moduleQN string) string {
	if ownerQN == moduleQN {
		return ""
	}
	return ownerQN
}

func funcNameNode(n *tree_sitter.Node, language lang.Language) *tree_sitter.Node {
	if name := n.ChildByFieldName("name"); name != nil {
		return name
	}
	switch language {
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		// Arrow function assigned to a variable: name lives on the parent.
		if n.Kind() == "arrow_function" {
			if p := n.Parent(); p != nil && p.Kind() == "variable_declarator" {
				return p.ChildByFieldName("name")
			}
		}
	}
	return nil
}

func paramNames(n *tree_sitter.Node, source []byte, language lang.Language) []string {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []string
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		if p == nil {
			continue
		}
		nameNode := p.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = p // plain identifier parameter (Python, JS)
		}
		if nameNode.Kind() == "identifier" || nameNode.Kind() == "self" {
			if text := parser.NodeText(nameNode, source); text != "" {
				out = append(out, text)
			}
		}
	}
	return out
}

func signatureText(n *tree_sitter.Node, source []byte) string {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return ""
	}
	return parser.NodeText(params, source)
}

func javaSignature(n *tree_sitter.Node, source []byte) string {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return "()"
	}
	var types []string
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		if p == nil {
			continue
		}
		if t := p.ChildByFieldName("type"); t != nil {
			types = append(types, parser.NodeText(t, source))
		}
	}
	return "(" + strings.Join(types, ",") + ")"
}

func isExported(name string, language lang.Language) bool {
	if name == "" {
		return false
	}
	switch language {
	case lang.Go:
		return name[0] >= 'A' && name[0] <= 'Z'
	case lang.Python:
		return !strings.HasPrefix(name, "_")
	default:
		return true
	}
}

func extractDecorators(n *tree_sitter.Node, source []byte, language lang.Language, spec *lang.LanguageSpec) []string {
	if spec == nil || len(spec.DecoratorNodeTypes) == 0 {
		return nil
	}
	decoratorTypes := toSet(spec.DecoratorNodeTypes)

	var out []string
	switch language {
	case lang.Python:
		// Decorators are preceding siblings under the same decorated_definition.
		parent := n.Parent()
		if parent == nil || parent.Kind() != "decorated_definition" {
			return nil
		}
		for i := uint(0); i < parent.NamedChildCount(); i++ {
			c := parent.NamedChild(i)
			if c != nil && decoratorTypes[c.Kind()] {
				out = append(out, strings.TrimPrefix(parser.NodeText(c, source), "@"))
			}
		}
	default:
		// Java annotations / TS decorators precede the node as siblings
		// under the same parent (modifiers wrapper or declaration list).
		parent := n.Parent()
		if parent == nil {
			return nil
		}
		var preceding []*tree_sitter.Node
		for i := uint(0); i < parent.NamedChildCount(); i++ {
			c := parent.NamedChild(i)
			if c == nil {
				continue
			}
			if c.Id() == n.Id() {
				break
			}
			if decoratorTypes[c.Kind()] {
				preceding = append(preceding, c)
			} else {
				preceding = nil // only the run immediately before n counts
			}
		}
		for _, c := range preceding {
			out = append(out, parser.NodeText(c, source))
		}
	}
	return out
}

// --- classes -------------------------------------------------------------

func extractClass(
	n *tree_sitter.Node, entry *astcache.Entry, projectName, moduleQN, containerQN string,
	spec *lang.LanguageSpec, sk sink.Sink, symbols *symtab.Table, inh *inherit.Map, result *Result,
) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.NodeText(nameNode, entry.Source)
	if name == "" {
		return
	}
	qn := fqn.Compute(projectName, entry.RelPath, name)
	label := classLabel(n.Kind(), entry.Language)

	sk.EnsureNode(sink.Node{
		Label:         label,
		Name:          name,
		QualifiedName: qn,
		FilePath:      entry.RelPath,
		StartLine:     int(n.StartPosition().Row) + 1,
		EndLine:       int(n.EndPosition().Row) + 1,
	})
	sk.EnsureRelationship(sink.Relationship{FromQN: containerQN, Type: "DEFINES", ToQN: qn})

	kind := symtab.KindClass
	switch label {
	case "Interface":
		kind = symtab.KindInterface
	case "Enum":
		kind = symtab.KindEnum
	}
	symbols.Insert(qn, kind)
	result.Classes[qn] = &ClassInfo{Node: n}

	if bases := extractBases(n, entry.Source, entry.Language, result.Imports, moduleQN); len(bases) > 0 {
		inh.AddParents(qn, bases)
	}

	funcTypes := toSet(spec.FunctionNodeTypes)
	parser.WalkIterative(n, func(child *tree_sitter.Node) bool {
		if child.Id() == n.Id() {
			return true
		}
		if funcTypes[child.Kind()] {
			extractFunction(child, entry, projectName, moduleQN, qn, spec, sk, symbols, result)
			return false
		}
		return true
	})
}

func classLabel(kind string, language lang.Language) string {
	switch kind {
	case "interface_declaration", "trait_item":
		return "Interface"
	case "enum_declaration", "enum_item":
		return "Enum"
	}
	if language == lang.Go && kind == "type_spec" {
		return "Class"
	}
	return "Class"
}

// extractBases reads a class's declared superclasses/interfaces and
// resolves each one to a registered qualified name via the import map,
// falling back to the same module.
func extractBases(n *tree_sitter.Node, source []byte, language lang.Language, imports importmap.Map, moduleQN string) []string {
	var raw []string
	switch language {
	case lang.Python:
		if args := findChild(n, "argument_list"); args != nil {
			for i := uint(0); i < args.NamedChildCount(); i++ {
				c := args.NamedChild(i)
				if c != nil && c.Kind() == "identifier" {
					raw = append(raw, parser.NodeText(c, source))
				}
			}
		}
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		if heritage := findChild(n, "class_heritage"); heritage != nil {
			if id := findDescendant(heritage, "identifier"); id != nil {
				raw = append(raw, parser.NodeText(id, source))
			}
		}
	case lang.Java:
		if super := n.ChildByFieldName("superclass"); super != nil {
			if id := findDescendant(super, "type_identifier"); id != nil {
				raw = append(raw, parser.NodeText(id, source))
			}
		}
		if ifaces := n.ChildByFieldName("interfaces"); ifaces != nil {
			for i := uint(0); i < ifaces.NamedChildCount(); i++ {
				if id := findDescendant(ifaces.NamedChild(i), "type_identifier"); id != nil {
					raw = append(raw, parser.NodeText(id, source))
				}
			}
		}
	}

	out := make([]string, 0, len(raw))
	for _, name := range raw {
		out = append(out, resolveTypeName(name, imports, moduleQN))
	}
	return out
}

// resolveTypeName maps a bare type name seen in source to its best-guess
// qualified name: import map first, then same module.
func resolveTypeName(name string, imports importmap.Map, moduleQN string) string {
	if qn, ok := imports[name]; ok {
		return qn
	}
	return moduleQN + "." + name
}

// --- Rust impl blocks ------------------------------------------------------

func extractRustImpl(
	n *tree_sitter.Node, entry *astcache.Entry, projectName, moduleQN string,
	spec *lang.LanguageSpec, sk sink.Sink, symbols *symtab.Table, inh *inherit.Map, result *Result,
) {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	typeName := parser.NodeText(typeNode, entry.Source)
	typeQN := fqn.Compute(projectName, entry.RelPath, typeName)

	if traitNode := n.ChildByFieldName("trait"); traitNode != nil {
		traitName := parser.NodeText(traitNode, entry.Source)
		traitQN := resolveTypeName(traitName, result.Imports, moduleQN)
		sk.EnsureRelationship(sink.Relationship{FromQN: typeQN, Type: "IMPLEMENTS", ToQN: traitQN})
	}

	funcTypes := toSet(spec.FunctionNodeTypes)
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	parser.WalkIterative(body, func(child *tree_sitter.Node) bool {
		if child.Id() == body.Id() {
			return true
		}
		if funcTypes[child.Kind()] {
			extractFunction(child, entry, projectName, moduleQN, typeQN, spec, sk, symbols, result)
			return false
		}
		return true
	})
}

// --- self-attribute constructor names --------------------------------------

// ConstructorNames returns the conventional constructor method name(s) for
// a language, used by the caller to drive typeinfer.Engine.InferSelfAttrs.
func ConstructorNames(language lang.Language) []string {
	switch language {
	case lang.Python:
		return pythonConstructors
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		return jsConstructors
	case lang.Java:
		return nil // constructor shares the class's simple name; caller supplies it
	default:
		return nil
	}
}

// --- shared tree helpers ----------------------------------------------------

func findChild(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func findDescendant(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	if n.Kind() == kind {
		return n
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if found := findDescendant(n.NamedChild(i), kind); found != nil {
			return found
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
