// Package driver is the indexing pipeline's orchestrator: it runs Pass 1
// (structure, definitions, imports, inheritance — everything the Call
// Resolver needs to already exist) to completion across every discovered
// file before Pass 2 (call resolution) reads any of it. The barrier between
// the two passes is the load-bearing invariant (SPEC_FULL.md §3): a call in
// file A to a function defined in file B must resolve correctly regardless
// of which file's AST was parsed first.
//
// Grounded in the teacher's Pipeline.Run/runFullPasses staging, generalised
// from a monolithic 20-pass sequence tied directly to *store.Store into two
// passes that write through the Graph Sink Protocol and delegate definition
// extraction, type inference and call resolution to their own packages.
package driver

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codegraph-dev/codegraph/internal/astcache"
	"github.com/codegraph-dev/codegraph/internal/defext"
	"github.com/codegraph-dev/codegraph/internal/discover"
	"github.com/codegraph-dev/codegraph/internal/importmap"
	"github.com/codegraph-dev/codegraph/internal/inherit"
	"github.com/codegraph-dev/codegraph/internal/lang"
	"github.com/codegraph-dev/codegraph/internal/parser"
	"github.com/codegraph-dev/codegraph/internal/resolver"
	"github.com/codegraph-dev/codegraph/internal/sink"
	"github.com/codegraph-dev/codegraph/internal/store"
	"github.com/codegraph-dev/codegraph/internal/structurewalk"
	"github.com/codegraph-dev/codegraph/internal/symtab"
	"github.com/codegraph-dev/codegraph/internal/typeinfer"
)

// Driver runs a full index of one repository.
type Driver struct {
	Store       *store.Store
	RepoPath    string
	ProjectName string
}

// New returns a Driver for a repository, deriving its project name from the
// repository's absolute path the same way the teacher's pipeline did.
func New(s *store.Store, repoPath string) *Driver {
	return &Driver{Store: s, RepoPath: repoPath, ProjectName: ProjectNameFromPath(repoPath)}
}

// ProjectNameFromPath derives a stable project name from an absolute path.
func ProjectNameFromPath(absPath string) string {
	name := strings.ReplaceAll(absPath, "/", "-")
	name = strings.TrimLeft(name, "-")
	if name == "" {
		return "root"
	}
	return name
}

// Stats reports what one Run produced.
type Stats struct {
	FilesIndexed int
	NodesWritten int
	EdgesWritten int
	Elapsed      time.Duration
}

// funcDef is everything the type-inference and call-resolution phases need
// to revisit a function defined anywhere in the project, keyed by its
// qualified name — the Driver's answer to typeinfer.FuncLookup.
type funcDef struct {
	node     *tree_sitter.Node
	source   []byte
	language lang.Language
	imports  importmap.Map
	moduleQN string
	entry    *defext.FuncInfo
}

// Run discovers, parses, and fully indexes one repository: Pass 1 builds the
// containment skeleton, definitions, import maps and inheritance map and
// flushes them to storage; Pass 2 then resolves every call site against that
// completed state and flushes the resulting CALLS edges.
func (d *Driver) Run(ctx context.Context) (Stats, error) {
	start := time.Now()

	files, err := discover.Discover(ctx, d.RepoPath, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("discover: %w", err)
	}

	d.Store.BeginBulkWrite()
	var stats Stats
	err = d.Store.WithTransaction(func(txStore *store.Store) error {
		origStore := d.Store
		d.Store = txStore
		defer func() { d.Store = origStore }()

		var runErr error
		stats, runErr = d.runFull(ctx, files)
		return runErr
	})
	d.Store.EndBulkWrite()
	if err != nil {
		return Stats{}, err
	}
	d.Store.Checkpoint()

	stats.FilesIndexed = len(files)
	stats.Elapsed = time.Since(start)
	return stats, nil
}

func (d *Driver) runFull(ctx context.Context, files []discover.FileInfo) (Stats, error) {
	if err := d.Store.UpsertProject(d.ProjectName, d.RepoPath); err != nil {
		return Stats{}, fmt.Errorf("upsert project: %w", err)
	}

	sk := sink.NewStoreSink(d.Store)
	symbols := symtab.New()
	inh := inherit.New()
	cache := astcache.New()
	defer cache.Close()

	structurewalk.Walk(files, d.ProjectName, d.RepoPath, sk)

	funcDefs := make(map[string]*funcDef)
	classDefs := make(map[string]*defext.ClassInfo)
	classLanguage := make(map[string]lang.Language)

	// --- Pass 1: structure + definitions + imports + inheritance ----------
	for _, f := range files {
		if ctx.Err() != nil {
			return Stats{}, ctx.Err()
		}
		source, err := os.ReadFile(f.Path)
		if err != nil {
			continue
		}
		tree, err := parser.Parse(f.Language, source)
		if err != nil {
			continue
		}
		entry := &astcache.Entry{Tree: tree, Source: source, Language: f.Language, RelPath: f.RelPath}
		cache.Put(f.RelPath, entry)

		result := defext.ExtractFile(entry, d.ProjectName, sk, symbols, inh)
		cache.LinkModule(result.ModuleQN, f.RelPath)

		for qn, info := range result.Funcs {
			funcDefs[qn] = &funcDef{
				node: info.Node, source: source, language: f.Language,
				imports: result.Imports, moduleQN: result.ModuleQN, entry: info,
			}
		}
		for qn, info := range result.Classes {
			classDefs[qn] = info
			classLanguage[qn] = f.Language
		}
	}

	// Pass 1 barrier: every definition, import and inheritance edge above is
	// now part of the symbol/import/inheritance tables before anything below
	// reads them.
	structNodes, structEdges, err := sk.Flush(d.ProjectName)
	if err != nil {
		return Stats{}, fmt.Errorf("flush pass 1: %w", err)
	}

	// --- Type-Inference Engine: local variables, self-attributes ----------
	types := typeinfer.New()
	for qn, fd := range funcDefs {
		types.InferLocals(fd.node, fd.source, fd.language, qn, fd.entry.ParamNames, symbols, fd.imports, fd.moduleQN)
	}
	for qn, info := range classDefs {
		language := classLanguage[qn]
		ctorNames := defext.ConstructorNames(language)
		if language == lang.Java {
			ctorNames = []string{symtab.SimpleName(qn)}
		}
		if len(ctorNames) == 0 {
			continue
		}
		classSource, ok := classSourceFor(qn, funcDefs, cache)
		if !ok {
			continue
		}
		moduleQN, imports := moduleContextFor(qn, funcDefs)
		types.InferSelfAttrs(info.Node, classSource, language, qn, ctorNames, symbols, imports, moduleQN)
	}

	lookup := func(funcQN string) (*tree_sitter.Node, []byte, lang.Language, importmap.Map, string, bool) {
		fd, ok := funcDefs[funcQN]
		if !ok {
			return nil, nil, "", nil, "", false
		}
		return fd.node, fd.source, fd.language, fd.imports, fd.moduleQN, true
	}

	// --- Pass 2: call resolution --------------------------------------------
	for qn, fd := range funcDefs {
		if ctx.Err() != nil {
			return Stats{}, ctx.Err()
		}
		spec := lang.ForLanguage(fd.language)
		if spec == nil {
			continue
		}
		callTypes := toSet(spec.CallNodeTypes)
		resolveCallsInFunction(qn, fd, callTypes, symbols, inh, types, lookup, sk)
	}

	callNodes, callEdges, err := sk.Flush(d.ProjectName)
	if err != nil {
		return Stats{}, fmt.Errorf("flush pass 2: %w", err)
	}

	return Stats{NodesWritten: structNodes + callNodes, EdgesWritten: structEdges + callEdges}, nil
}

// classSourceFor returns a class's file source, found via any method already
// recorded for it (a class with no methods has nothing for InferSelfAttrs to
// scan anyway).
func classSourceFor(classQN string, funcDefs map[string]*funcDef, cache *astcache.Cache) ([]byte, bool) {
	for _, fd := range funcDefs {
		if fd.entry.EnclosingClass == classQN {
			return fd.source, true
		}
	}
	moduleQN := strings.TrimSuffix(classQN, "."+symtab.SimpleName(classQN))
	if entry, ok := cache.FileForModule(moduleQN); ok {
		return entry.Source, true
	}
	return nil, false
}

func moduleContextFor(classQN string, funcDefs map[string]*funcDef) (moduleQN string, imports importmap.Map) {
	for _, fd := range funcDefs {
		if fd.entry.EnclosingClass == classQN {
			return fd.moduleQN, fd.imports
		}
	}
	return strings.TrimSuffix(classQN, "."+symtab.SimpleName(classQN)), nil
}

// resolveCallsInFunction walks one function's body for call sites and emits
// a resolved CALLS edge for each one the cascade can place.
func resolveCallsInFunction(
	funcQN string, fd *funcDef, callTypes map[string]bool,
	symbols *symtab.Table, inh *inherit.Map, types *typeinfer.Engine,
	lookup typeinfer.FuncLookup, sk sink.Sink,
) {
	ctx := resolver.Context{
		ModuleQN:       fd.moduleQN,
		EnclosingClass: fd.entry.EnclosingClass,
		FuncQN:         funcQN,
		Language:       fd.language,
		Imports:        fd.imports,
		Symbols:        symbols,
		Inheritance:    inh,
		Types:          types,
		Lookup:         lookup,
	}

	parser.Walk(fd.node, func(n *tree_sitter.Node) bool {
		if n.Id() == fd.node.Id() {
			return true
		}
		if !callTypes[n.Kind()] {
			return true
		}
		if target := resolveCallNode(n, fd.source, fd.language, callTypes, ctx); target != "" {
			sk.EnsureRelationship(sink.Relationship{FromQN: funcQN, Type: "CALLS", ToQN: target})
		}
		return true
	})
}

// resolveCallNode resolves one call expression node, recursing into its
// object sub-expression first when the call is chained (`a().b()`) so the
// inner call's own target QN is available to the outer resolution.
func resolveCallNode(n *tree_sitter.Node, source []byte, language lang.Language, callTypes map[string]bool, ctx resolver.Context) string {
	call, chainNode := buildCall(n, source, language, callTypes)
	if call.IsChained && chainNode != nil {
		call.ChainInnerFunc = resolveCallNode(chainNode, source, language, callTypes, ctx)
	}
	if call.Callee == "" {
		return ""
	}
	return resolver.Resolve(call, ctx)
}

// buildCall extracts the callee shape the resolver cascade needs from one
// call-expression AST node, grounded in the teacher's extractCalleeName /
// extractCalleeFromFunctionField (the "function" field holds the full
// dotted callee text for every core language except Java, whose
// method_invocation carries separate "object"/"name" fields).
func buildCall(n *tree_sitter.Node, source []byte, language lang.Language, callTypes map[string]bool) (resolver.Call, *tree_sitter.Node) {
	if language == lang.Java {
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return resolver.Call{}, nil
		}
		method := parser.NodeText(nameNode, source)
		objNode := n.ChildByFieldName("object")
		if objNode == nil {
			return resolver.Call{Callee: method}, nil
		}
		objText := parser.NodeText(objNode, source)
		call := resolver.Call{Callee: objText + "." + method}
		if objText == "super" {
			call.IsSuper = true
		}
		if callTypes[objNode.Kind()] {
			call.IsChained = true
			return call, objNode
		}
		if !strings.Contains(objText, ".") {
			call.ReceiverVar = objText
		}
		return call, nil
	}

	funcNode := n.ChildByFieldName("function")
	if funcNode == nil {
		return resolver.Call{}, nil
	}
	raw := parser.NodeText(funcNode, source)
	call := resolver.Call{Callee: raw}

	objNode := funcNode.ChildByFieldName("object")
	if objNode == nil {
		objNode = funcNode.ChildByFieldName("receiver")
	}
	if objNode != nil {
		objText := parser.NodeText(objNode, source)
		if objText == "super" {
			call.IsSuper = true
		}
		if callTypes[objNode.Kind()] {
			call.IsChained = true
			return call, objNode
		}
		if !strings.Contains(objText, ".") {
			call.ReceiverVar = objText
		}
		return call, nil
	}

	if idx := strings.LastIndex(raw, "."); idx >= 0 {
		head := raw[:idx]
		if head == "super" || strings.HasPrefix(head, "super(") {
			call.IsSuper = true
		}
		if !strings.Contains(head, ".") {
			call.ReceiverVar = head
		}
	}
	return call, nil
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
