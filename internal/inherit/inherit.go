// Package inherit tracks class/interface inheritance as an in-memory graph
// (class qualified name -> ordered parent qualified names) and answers the
// method-lookup question the Call Resolver's inherited-method strategy
// needs: "does this class or one of its ancestors define this method".
//
// Grounded in the base_classes property walk of the teacher's inheritance
// pass, generalised from a one-shot DB edge emission into a queryable
// in-memory map so the resolver can do inherited-method lookups without a
// store round trip per call site.
package inherit

import "sync"

// Map is the project-wide inheritance map: class QN -> ordered list of
// direct parent QNs, in declaration order (first parent wins ties).
type Map struct {
	mu      sync.RWMutex
	parents map[string][]string
}

// New returns an empty inheritance map.
func New() *Map {
	return &Map{parents: make(map[string][]string)}
}

// AddParents records the direct base classes/interfaces for a class, in
// the order they appeared in the source (`class Foo(Base1, Base2):`,
// `class Foo extends Base implements I1, I2`, ...). Calling this again for
// the same class QN replaces the previous parent list.
func (m *Map) AddParents(classQN string, parentQNs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]string, len(parentQNs))
	copy(cp, parentQNs)
	m.parents[classQN] = cp
}

// DirectParents returns the direct parents of a class, in declaration order.
func (m *Map) DirectParents(classQN string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.parents[classQN]))
	copy(out, m.parents[classQN])
	return out
}

// MethodResolver looks up whether a qualified method name
// (parentQN + "." + methodSimpleName) is a registered Method. Supplied by
// the caller (backed by symtab.Table.Lookup) to keep this package free of
// a dependency on the symbol table's concrete type.
type MethodResolver func(methodQN string) bool

// ResolveInheritedMethod walks the ancestor chain of classQN breadth-first,
// starting from its direct parents, looking for a class that defines
// methodName. BFS with a visited set makes diamond inheritance
// (A extends B, C; B and C both extend D) terminate instead of looping,
// and visiting parents in declaration order before grandparents means the
// first parent named in the class header wins when more than one ancestor
// defines the same method name — matching single-dispatch MRO semantics
// closely enough for a cross-file static index.
func (m *Map) ResolveInheritedMethod(classQN, methodName string, resolved MethodResolver) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	visited := map[string]bool{classQN: true}
	queue := append([]string{}, m.parents[classQN]...)

	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		if visited[parent] {
			continue
		}
		visited[parent] = true

		candidate := parent + "." + methodName
		if resolved(candidate) {
			return candidate
		}

		for _, grandparent := range m.parents[parent] {
			if !visited[grandparent] {
				queue = append(queue, grandparent)
			}
		}
	}
	return ""
}

// Ancestors returns every ancestor QN reachable from classQN, BFS order,
// each appearing once. Used by diagnostics and by the testable diamond-
// inheritance property (SPEC_FULL.md §8): two different root classes that
// share a common ancestor must both report it exactly once.
func (m *Map) Ancestors(classQN string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	visited := map[string]bool{classQN: true}
	queue := append([]string{}, m.parents[classQN]...)
	var out []string

	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		if visited[parent] {
			continue
		}
		visited[parent] = true
		out = append(out, parent)
		queue = append(queue, m.parents[parent]...)
	}
	return out
}
