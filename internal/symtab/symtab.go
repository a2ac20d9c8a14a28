// Package symtab is the project-wide symbol table: every Function, Method,
// Class, Interface, Enum and Module qualified name the Definition Extractor
// has seen so far, indexed for the three lookup shapes the Call Resolver and
// Type-Inference Engine need — exact, simple-name, and suffix.
package symtab

import (
	"strings"
	"sync"
)

// EntityKind is the node label a qualified name resolves to.
type EntityKind string

const (
	KindFunction  EntityKind = "Function"
	KindMethod    EntityKind = "Method"
	KindClass     EntityKind = "Class"
	KindInterface EntityKind = "Interface"
	KindEnum      EntityKind = "Enum"
	KindModule    EntityKind = "Module"
)

// trieNode is one level of the dot-segment prefix trie used to answer
// "does any qualified name start with this module path" without a linear
// scan over every entry.
type trieNode struct {
	children map[string]*trieNode
	terminal bool // a qualified name ends exactly here
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode)}
}

// Table is the symbol table. Safe for concurrent reads; writes are expected
// to happen only during Pass 1 (structure + definitions), before Pass 2
// (calls) starts reading — the two-pass barrier in the driver package
// enforces that ordering, so Table itself does not need to serialize
// readers against writers once Pass 1 has completed. The mutex still
// guards Pass 1's own concurrent writers (definition extraction can run
// per-file in parallel).
type Table struct {
	mu sync.RWMutex

	exact  map[string]EntityKind   // qualifiedName -> kind
	byName map[string][]string     // simpleName -> []qualifiedName
	root   *trieNode               // dot-segment prefix trie over qualified names
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{
		exact:  make(map[string]EntityKind),
		byName: make(map[string][]string),
		root:   newTrieNode(),
	}
}

// Insert registers a qualified name under the given kind. Re-inserting the
// same qualifiedName with a different kind overwrites the kind but never
// duplicates the simple-name index entry.
func (t *Table) Insert(qualifiedName string, kind EntityKind) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.exact[qualifiedName]; !exists {
		simple := SimpleName(qualifiedName)
		t.byName[simple] = append(t.byName[simple], qualifiedName)
		t.insertTrie(qualifiedName)
	}
	t.exact[qualifiedName] = kind
}

func (t *Table) insertTrie(qualifiedName string) {
	node := t.root
	for _, part := range strings.Split(qualifiedName, ".") {
		child, ok := node.children[part]
		if !ok {
			child = newTrieNode()
			node.children[part] = child
		}
		node = child
	}
	node.terminal = true
}

// Lookup returns the kind registered for an exact qualified name.
func (t *Table) Lookup(qualifiedName string) (EntityKind, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	k, ok := t.exact[qualifiedName]
	return k, ok
}

// ByName returns every qualified name whose simple (final-segment) name
// matches, in insertion order.
func (t *Table) ByName(simpleName string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.byName[simpleName]))
	copy(out, t.byName[simpleName])
	return out
}

// HasPrefix reports whether any qualified name starts with prefix followed
// by a dot boundary (i.e. prefix names a module/package/class that has at
// least one member registered).
func (t *Table) HasPrefix(prefix string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	node := t.root
	if prefix == "" {
		return len(node.children) > 0
	}
	for _, part := range strings.Split(prefix, ".") {
		child, ok := node.children[part]
		if !ok {
			return false
		}
		node = child
	}
	return len(node.children) > 0 || node.terminal
}

// EndingWith returns every qualified name ending in "."+suffix. Used by the
// Call Resolver's nearest-name fallback strategy (lowest priority).
func (t *Table) EndingWith(suffix string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	target := "." + suffix
	var out []string
	for qn := range t.exact {
		if strings.HasSuffix(qn, target) {
			out = append(out, qn)
		}
	}
	return out
}

// AllOfKind returns every qualified name registered under the given kind,
// in no particular order. Used by the Type-Inference Engine's parameter
// name-similarity phase, which scores a parameter name against every known
// class rather than an exact simple-name match.
func (t *Table) AllOfKind(kind EntityKind) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for qn, k := range t.exact {
		if k == kind {
			out = append(out, qn)
		}
	}
	return out
}

// Size returns the number of distinct qualified names registered.
func (t *Table) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.exact)
}

// SimpleName extracts the final dot-separated segment of a qualified name.
// For Java method QNs carrying a parenthesized parameter signature
// (pkg.Class.method(int,String)), the signature travels with the simple
// name so overload-aware lookups stay exact; callers that need the bare
// method name strip it with StripSignature first.
func SimpleName(qn string) string {
	if idx := strings.LastIndex(qn, "."); idx >= 0 {
		return qn[idx+1:]
	}
	return qn
}

// StripSignature removes a trailing "(...)" parameter signature from a
// Java method qualified name, e.g. "a.B.m(int,String)" -> "a.B.m".
func StripSignature(qn string) string {
	if idx := strings.IndexByte(qn, '('); idx >= 0 {
		return qn[:idx]
	}
	return qn
}

// CommonPrefixLen returns the number of leading dot-segments shared by a
// and b. Used to approximate "closest in project structure" when the
// resolver has to pick among several equally-valid candidates.
func CommonPrefixLen(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	n := 0
	for n < len(aParts) && n < len(bParts) && aParts[n] == bParts[n] {
		n++
	}
	return n
}

// Verify checks the table's internal consistency invariant: every qualified
// name in the simple-name index appears in the exact index exactly once,
// and vice versa. Exercised by the testable property in SPEC_FULL.md §8
// ("symbol-table consistency") — not called on the hot path.
func (t *Table) Verify() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var problems []string

	seen := make(map[string]int)
	for simple, qns := range t.byName {
		for _, qn := range qns {
			if SimpleName(qn) != simple {
				problems = append(problems, "byName entry "+qn+" filed under wrong simple name "+simple)
			}
			if _, ok := t.exact[qn]; !ok {
				problems = append(problems, "byName entry "+qn+" missing from exact index")
			}
			seen[qn]++
			if seen[qn] > 1 {
				problems = append(problems, "byName entry "+qn+" duplicated under "+simple)
			}
		}
	}
	for qn := range t.exact {
		if seen[qn] == 0 {
			problems = append(problems, "exact entry "+qn+" missing from byName index")
		}
	}
	return problems
}
