package tools

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/codegraph-dev/codegraph/internal/driver"
	"github.com/codegraph-dev/codegraph/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleIndexRepository(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	repoPath := getStringArg(args, "repo_path")
	if repoPath == "" {
		return errResult("repo_path is required"), nil
	}

	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return errResult(fmt.Sprintf("invalid path: %v", err)), nil
	}

	// Lock to prevent concurrent reindexing of the shared store.
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	d := driver.New(s.store, absPath)
	stats, err := d.Run(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("indexing failed: %v", err)), nil
	}

	proj, _ := s.store.GetProject(d.ProjectName)
	indexedAt := store.Now()
	if proj != nil {
		indexedAt = proj.IndexedAt
	}

	return jsonResult(map[string]any{
		"project":       d.ProjectName,
		"files_indexed": stats.FilesIndexed,
		"nodes":         stats.NodesWritten,
		"edges":         stats.EdgesWritten,
		"elapsed_ms":    stats.Elapsed.Milliseconds(),
		"indexed_at":    indexedAt,
	}), nil
}
