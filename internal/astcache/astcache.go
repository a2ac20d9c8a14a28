// Package astcache holds the parsed AST for every discovered file, keyed by
// project-relative path, plus the reverse Module-qualified-name -> file
// index the driver uses to find a class's source file.
// Each file is parsed exactly once for the lifetime of an index run
// (SPEC_FULL.md §3, testable property "AST parsed once").
package astcache

import (
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codegraph-dev/codegraph/internal/lang"
)

// Entry is one file's cached parse result.
type Entry struct {
	Tree     *tree_sitter.Tree
	Source   []byte
	Language lang.Language
	RelPath  string
}

// Cache is the project-wide AST cache. Safe for concurrent use: Pass 1
// populates it (one writer per file, files are independent), Pass 2 only
// reads.
type Cache struct {
	mu       sync.RWMutex
	byPath   map[string]*Entry
	byModule map[string]string // module qualified name -> relPath
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		byPath:   make(map[string]*Entry),
		byModule: make(map[string]string),
	}
}

// Put registers a parsed file. Overwrites any prior entry for the same path.
func (c *Cache) Put(relPath string, e *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byPath[relPath] = e
}

// Get returns the cached entry for a file path.
func (c *Cache) Get(relPath string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byPath[relPath]
	return e, ok
}

// LinkModule records which file a module qualified name was parsed from.
func (c *Cache) LinkModule(moduleQN, relPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byModule[moduleQN] = relPath
}

// FileForModule returns the cached entry a module qualified name resolves
// to, used by the driver to find the source of a class with no recorded
// methods for the constructor scan.
func (c *Cache) FileForModule(moduleQN string) (*Entry, bool) {
	c.mu.RLock()
	relPath, ok := c.byModule[moduleQN]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return c.Get(relPath)
}

// Paths returns every cached file path, in no particular order.
func (c *Cache) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.byPath))
	for p := range c.byPath {
		out = append(out, p)
	}
	return out
}

// Delete drops a file's entry, closing its tree.
func (c *Cache) Delete(relPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.byPath[relPath]; ok {
		e.Tree.Close()
		delete(c.byPath, relPath)
	}
}

// Close releases every cached tree-sitter tree.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.byPath {
		e.Tree.Close()
	}
	c.byPath = make(map[string]*Entry)
	c.byModule = make(map[string]string)
}
