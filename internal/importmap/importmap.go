// Package importmap builds the per-module import map the Call Resolver
// consults first: a local alias (or wildcard marker) to qualified-name
// mapping, one map per source file, built during Pass 1 and read during
// Pass 2 (SPEC_FULL.md §4.2).
package importmap

import (
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codegraph-dev/codegraph/internal/fqn"
	"github.com/codegraph-dev/codegraph/internal/lang"
	"github.com/codegraph-dev/codegraph/internal/parser"
)

// WildcardKey prefixes the map key used for a wildcard import ("from x
// import *", "use foo::*", Java's "import foo.*"). The resolver's wildcard
// strategy scans for keys with this prefix rather than an exact alias.
const WildcardKey = "*wildcard*:"

// Map is a single file's local-alias -> qualified-name import map.
type Map map[string]string

// Parse extracts the import map for one file's AST root. Returns nil for
// languages without a specialised front-end, so the Call Resolver's
// import-map strategies fire only where a Map is available. No IMPORTS
// edges are derived from the map or from raw import nodes.
func Parse(root *tree_sitter.Node, source []byte, language lang.Language, projectName, relPath string) Map {
	switch language {
	case lang.Go:
		return parseGo(root, source, projectName)
	case lang.Python:
		return parsePython(root, source, projectName, relPath)
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		return parseJS(root, source, projectName, relPath)
	case lang.Java:
		return parseJava(root, source, projectName)
	case lang.Rust:
		return parseRust(root, source, projectName, relPath)
	case lang.Lua:
		return parseLua(root, source, projectName, relPath)
	default:
		return nil
	}
}

// --- Go ---------------------------------------------------------------

func parseGo(root *tree_sitter.Node, source []byte, projectName string) Map {
	imports := make(Map)

	parser.Walk(root, func(node *tree_sitter.Node) bool {
		if node.Kind() != "import_declaration" {
			return true
		}
		parser.Walk(node, func(child *tree_sitter.Node) bool {
			if child.Kind() != "import_spec" {
				return true
			}
			pathNode := child.ChildByFieldName("path")
			if pathNode == nil {
				return false
			}
			importPath := stripQuotes(parser.NodeText(pathNode, source))
			if importPath == "" {
				return false
			}
			localName := lastPathSegment(importPath)
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				if alias := parser.NodeText(nameNode, source); alias != "" && alias != "." && alias != "_" {
					localName = alias
				}
			}
			imports[localName] = resolveGoImportPath(importPath, projectName)
			return false
		})
		return false
	})

	return imports
}

func resolveGoImportPath(importPath, projectName string) string {
	parts := strings.Split(importPath, "/")
	for i, part := range parts {
		if part == projectName {
			return strings.Join(parts[i:], ".")
		}
	}
	return strings.Join(parts, ".")
}

// --- Python -------------------------------------------------------------

func parsePython(root *tree_sitter.Node, source []byte, projectName, relPath string) Map {
	imports := make(Map)

	parser.Walk(root, func(node *tree_sitter.Node) bool {
		switch node.Kind() {
		case "import_statement":
			processPythonImport(node, source, projectName, imports)
			return false
		case "import_from_statement":
			processPythonFromImport(node, source, projectName, relPath, imports)
			return false
		}
		return true
	})

	return imports
}

func processPythonImport(node *tree_sitter.Node, source []byte, projectName string, imports Map) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			name := parser.NodeText(child, source)
			imports[lastDotSegment(name)] = resolvePythonModule(name, projectName)
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil {
				continue
			}
			name := parser.NodeText(nameNode, source)
			localName := lastDotSegment(name)
			if aliasNode != nil {
				localName = parser.NodeText(aliasNode, source)
			}
			imports[localName] = resolvePythonModule(name, projectName)
		}
	}
}

func processPythonFromImport(node *tree_sitter.Node, source []byte, projectName, relPath string, imports Map) {
	moduleNode := node.ChildByFieldName("module_name")
	var modulePath string
	isRelative := false

	if moduleNode != nil {
		modulePath = parser.NodeText(moduleNode, source)
		isRelative = strings.HasPrefix(modulePath, ".")
	} else if strings.HasPrefix(parser.NodeText(node, source), "from .") {
		isRelative = true
		modulePath = "."
	}

	var baseModule string
	if isRelative {
		baseModule = resolveRelativePythonImport(modulePath, relPath, projectName)
	} else {
		baseModule = resolvePythonModule(modulePath, projectName)
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "wildcard_import":
			imports[WildcardKey+baseModule] = baseModule
		case "dotted_name":
			name := parser.NodeText(child, source)
			if name == modulePath {
				continue
			}
			localName := lastDotSegment(name)
			if baseModule != "" {
				imports[localName] = baseModule + "." + name
			} else {
				imports[localName] = name
			}
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil {
				continue
			}
			name := parser.NodeText(nameNode, source)
			localName := lastDotSegment(name)
			if aliasNode != nil {
				localName = parser.NodeText(aliasNode, source)
			}
			if baseModule != "" {
				imports[localName] = baseModule + "." + name
			} else {
				imports[localName] = name
			}
		}
	}
}

func resolvePythonModule(modulePath, projectName string) string {
	if modulePath == "" {
		return projectName
	}
	return projectName + "." + modulePath
}

func resolveRelativePythonImport(modulePath, relPath, projectName string) string {
	dots := 0
	for _, ch := range modulePath {
		if ch != '.' {
			break
		}
		dots++
	}
	remainder := strings.TrimLeft(modulePath, ".")

	dir := filepath.Dir(relPath)
	for i := 1; i < dots; i++ {
		dir = filepath.Dir(dir)
	}

	baseQN := fqn.FolderQN(projectName, dir)
	if dir == "." || dir == "" {
		baseQN = projectName
	}
	if remainder != "" {
		return baseQN + "." + remainder
	}
	return baseQN
}

// --- JavaScript / TypeScript / TSX --------------------------------------

// parseJS handles ES module import statements and CommonJS require() calls
// bound to a variable declarator, both common across the JS/TS/TSX trio.
func parseJS(root *tree_sitter.Node, source []byte, projectName, relPath string) Map {
	imports := make(Map)

	parser.Walk(root, func(node *tree_sitter.Node) bool {
		switch node.Kind() {
		case "import_statement":
			processJSImport(node, source, projectName, relPath, imports)
			return false
		case "variable_declarator":
			processJSRequire(node, source, projectName, relPath, imports)
			return true
		}
		return true
	})

	return imports
}

func processJSImport(node *tree_sitter.Node, source []byte, projectName, relPath string, imports Map) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	modulePath := stripQuotes(parser.NodeText(sourceNode, source))
	resolved := resolveJSModulePath(modulePath, projectName, relPath)

	clause := findChildByKind(node, "import_clause")
	if clause == nil {
		// Side-effect-only import: `import "./polyfill"` — nothing to alias.
		return
	}

	for i := uint(0); i < clause.NamedChildCount(); i++ {
		child := clause.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			// default import
			imports[parser.NodeText(child, source)] = resolved
		case "namespace_import":
			if id := findChildByKind(child, "identifier"); id != nil {
				imports[WildcardKey+resolved] = resolved
				imports[parser.NodeText(id, source)] = resolved
			}
		case "named_imports":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				spec := child.NamedChild(j)
				if spec == nil || spec.Kind() != "import_specifier" {
					continue
				}
				nameNode := spec.ChildByFieldName("name")
				aliasNode := spec.ChildByFieldName("alias")
				if nameNode == nil {
					continue
				}
				imported := parser.NodeText(nameNode, source)
				local := imported
				if aliasNode != nil {
					local = parser.NodeText(aliasNode, source)
				}
				imports[local] = resolved + "." + imported
			}
		}
	}
}

func processJSRequire(node *tree_sitter.Node, source []byte, projectName, relPath string, imports Map) {
	nameNode := node.ChildByFieldName("name")
	valueNode := node.ChildByFieldName("value")
	if nameNode == nil || valueNode == nil || valueNode.Kind() != "call_expression" {
		return
	}
	fnNode := valueNode.ChildByFieldName("function")
	if fnNode == nil || parser.NodeText(fnNode, source) != "require" {
		return
	}
	args := valueNode.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	modulePath := stripQuotes(parser.NodeText(args.NamedChild(0), source))
	resolved := resolveJSModulePath(modulePath, projectName, relPath)
	if nameNode.Kind() == "identifier" {
		imports[parser.NodeText(nameNode, source)] = resolved
	}
}

func resolveJSModulePath(modulePath, projectName, relPath string) string {
	if strings.HasPrefix(modulePath, ".") {
		dir := filepath.Dir(relPath)
		joined := filepath.ToSlash(filepath.Join(dir, modulePath))
		return fqn.ModuleQN(projectName, joined)
	}
	return strings.ReplaceAll(modulePath, "/", ".")
}

// --- Java -----------------------------------------------------------------

func parseJava(root *tree_sitter.Node, source []byte, projectName string) Map {
	imports := make(Map)

	parser.Walk(root, func(node *tree_sitter.Node) bool {
		if node.Kind() != "import_declaration" {
			return true
		}
		text := parser.NodeText(node, source)
		text = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(text), "import"), ";")
		text = strings.TrimPrefix(strings.TrimSpace(text), "static ")
		text = strings.TrimSpace(text)

		if strings.HasSuffix(text, ".*") {
			base := strings.TrimSuffix(text, ".*")
			resolved := resolveJavaPackage(base, projectName)
			imports[WildcardKey+resolved] = resolved
			return false
		}

		localName := lastDotSegment(text)
		imports[localName] = resolveJavaPackage(text, projectName)
		return false
	})

	return imports
}

func resolveJavaPackage(path, projectName string) string {
	parts := strings.Split(path, ".")
	for i, part := range parts {
		if part == projectName {
			return strings.Join(parts[i:], ".")
		}
	}
	return strings.Join(parts, ".")
}

// --- Rust -----------------------------------------------------------------

func parseRust(root *tree_sitter.Node, source []byte, projectName, relPath string) Map {
	imports := make(Map)

	parser.Walk(root, func(node *tree_sitter.Node) bool {
		if node.Kind() != "use_declaration" {
			return true
		}
		argNode := node.NamedChild(0)
		if argNode == nil {
			return false
		}
		collectRustUseTree(argNode, source, projectName, "", imports)
		return false
	})

	return imports
}

// collectRustUseTree walks a `use` path/tree, handling `use a::b::{c, d as e}`
// and `use a::b::*` shapes. prefix accumulates the crate/module path seen so far.
func collectRustUseTree(node *tree_sitter.Node, source []byte, projectName, prefix string, imports Map) {
	switch node.Kind() {
	case "scoped_use_list":
		pathNode := node.ChildByFieldName("path")
		listNode := node.ChildByFieldName("list")
		newPrefix := prefix
		if pathNode != nil {
			newPrefix = joinRustPath(prefix, parser.NodeText(pathNode, source))
		}
		if listNode != nil {
			for i := uint(0); i < listNode.NamedChildCount(); i++ {
				collectRustUseTree(listNode.NamedChild(i), source, projectName, newPrefix, imports)
			}
		}
	case "use_wildcard":
		resolved := resolveRustPath(prefix, projectName)
		imports[WildcardKey+resolved] = resolved
	case "use_as_clause":
		pathNode := node.ChildByFieldName("path")
		aliasNode := node.ChildByFieldName("alias")
		if pathNode == nil || aliasNode == nil {
			return
		}
		full := joinRustPath(prefix, parser.NodeText(pathNode, source))
		imports[parser.NodeText(aliasNode, source)] = resolveRustPath(full, projectName)
	case "scoped_identifier", "identifier":
		full := joinRustPath(prefix, parser.NodeText(node, source))
		local := lastRustSegment(parser.NodeText(node, source))
		imports[local] = resolveRustPath(full, projectName)
	default:
		full := joinRustPath(prefix, parser.NodeText(node, source))
		local := lastRustSegment(parser.NodeText(node, source))
		if local != "" {
			imports[local] = resolveRustPath(full, projectName)
		}
	}
}

func joinRustPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "::" + segment
}

func lastRustSegment(path string) string {
	parts := strings.Split(path, "::")
	return parts[len(parts)-1]
}

func resolveRustPath(path, projectName string) string {
	parts := strings.Split(path, "::")
	cleaned := parts[:0]
	for _, p := range parts {
		if p == "crate" || p == "self" || p == "super" {
			continue
		}
		cleaned = append(cleaned, p)
	}
	if len(cleaned) == 0 {
		return projectName
	}
	return projectName + "." + strings.Join(cleaned, ".")
}

// --- Lua --------------------------------------------------------------

// parseLua handles `local m = require("a.b.c")`, the conventional Lua
// module-import idiom (the grammar has no dedicated import node kind).
func parseLua(root *tree_sitter.Node, source []byte, projectName, relPath string) Map {
	imports := make(Map)

	parser.Walk(root, func(node *tree_sitter.Node) bool {
		if node.Kind() != "variable_declaration" && node.Kind() != "local_variable_declaration" {
			return true
		}
		nameNode := findChildByKind(node, "identifier")
		callNode := findDescendantByKind(node, "function_call")
		if nameNode == nil || callNode == nil {
			return true
		}
		fnNode := callNode.NamedChild(0)
		if fnNode == nil || parser.NodeText(fnNode, source) != "require" {
			return true
		}
		argsNode := findDescendantByKind(callNode, "string")
		if argsNode == nil {
			return true
		}
		modulePath := stripQuotes(parser.NodeText(argsNode, source))
		imports[parser.NodeText(nameNode, source)] = projectName + "." + strings.ReplaceAll(modulePath, ".", ".")
		return false
	})

	return imports
}

// --- shared helpers -------------------------------------------------------

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '`' && s[len(s)-1] == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func lastPathSegment(path string) string {
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}

func lastDotSegment(name string) string {
	parts := strings.Split(name, ".")
	return parts[len(parts)-1]
}

func findChildByKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if c := node.NamedChild(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func findDescendantByKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	var found *tree_sitter.Node
	parser.Walk(node, func(n *tree_sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Kind() == kind {
			found = n
			return false
		}
		return true
	})
	return found
}
