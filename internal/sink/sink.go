// Package sink implements the Graph Sink Protocol: the write boundary
// between the indexing pipeline and graph storage. ensure_node is keyed by
// a label's fixed primary-key field (the qualified name, for every label
// this pipeline emits); ensure_relationship names its endpoints the same
// way, so callers never need a node's storage ID.
//
// Grounded in the teacher's batchWriteStructure two-stage write (buffer,
// then resolve qualified names to row IDs in one batched pass) generalised
// from a single pipeline pass into a reusable interface every pass writes
// through.
package sink

import (
	"fmt"

	"github.com/codegraph-dev/codegraph/internal/store"
)

// Node is a buffered ensure_node call.
type Node struct {
	Label         string
	Name          string
	QualifiedName string
	FilePath      string
	StartLine     int
	EndLine       int
	Properties    map[string]any
}

// Relationship is a buffered ensure_relationship call, named by the
// qualified names of its endpoints rather than storage IDs.
type Relationship struct {
	FromQN     string
	Type       string
	ToQN       string
	Properties map[string]any
}

// Sink is the write target a pass uses to build the graph. Implementations
// may batch, stream, or forward to a remote graph service; passes never see
// the difference.
type Sink interface {
	EnsureNode(n Node)
	EnsureRelationship(r Relationship)
	// Flush writes every buffered node and relationship, resolving
	// relationship endpoints by qualified name. Relationships whose
	// endpoint was never ensured (in this flush or an earlier one) are
	// dropped rather than erroring — an unresolved call produces no edge,
	// per the fixed resolver cascade's final fallback.
	Flush(project string) (nodesWritten, edgesWritten int, err error)
}

// StoreSink is the reference Sink backed by the SQLite store.
type StoreSink struct {
	store *store.Store
	nodes []Node
	rels  []Relationship
}

// NewStoreSink wraps a store for use as a Sink.
func NewStoreSink(s *store.Store) *StoreSink {
	return &StoreSink{store: s}
}

func (s *StoreSink) EnsureNode(n Node) {
	s.nodes = append(s.nodes, n)
}

func (s *StoreSink) EnsureRelationship(r Relationship) {
	s.rels = append(s.rels, r)
}

// Flush upserts every buffered node, then resolves relationship endpoints
// (first against this flush's own nodes, then against the store for
// endpoints ensured in an earlier flush) before inserting edges in batch.
func (s *StoreSink) Flush(project string) (int, int, error) {
	storeNodes := make([]*store.Node, len(s.nodes))
	for i, n := range s.nodes {
		storeNodes[i] = &store.Node{
			Project:       project,
			Label:         n.Label,
			Name:          n.Name,
			QualifiedName: n.QualifiedName,
			FilePath:      n.FilePath,
			StartLine:     n.StartLine,
			EndLine:       n.EndLine,
			Properties:    n.Properties,
		}
	}

	idMap := map[string]int64{}
	if len(storeNodes) > 0 {
		var err error
		idMap, err = s.store.UpsertNodeBatch(storeNodes)
		if err != nil {
			return 0, 0, fmt.Errorf("flush nodes: %w", err)
		}
	}

	var missing []string
	seen := map[string]bool{}
	for _, r := range s.rels {
		for _, qn := range [2]string{r.FromQN, r.ToQN} {
			if _, ok := idMap[qn]; !ok && !seen[qn] {
				seen[qn] = true
				missing = append(missing, qn)
			}
		}
	}
	if len(missing) > 0 {
		resolved, err := s.store.FindNodeIDsByQNs(project, missing)
		if err != nil {
			return 0, 0, fmt.Errorf("resolve relationship endpoints: %w", err)
		}
		for qn, id := range resolved {
			idMap[qn] = id
		}
	}

	var edges []*store.Edge
	for _, r := range s.rels {
		fromID, fromOK := idMap[r.FromQN]
		toID, toOK := idMap[r.ToQN]
		if !fromOK || !toOK {
			continue // unresolved endpoint: no edge, not an error
		}
		edges = append(edges, &store.Edge{
			Project:    project,
			SourceID:   fromID,
			TargetID:   toID,
			Type:       r.Type,
			Properties: r.Properties,
		})
	}
	if len(edges) > 0 {
		if err := s.store.InsertEdgeBatch(edges); err != nil {
			return 0, 0, fmt.Errorf("flush edges: %w", err)
		}
	}

	written := len(storeNodes)
	s.nodes = nil
	s.rels = nil
	return written, len(edges), nil
}
