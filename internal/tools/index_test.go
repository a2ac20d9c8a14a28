package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func writeFile(t *testing.T, dir, relPath, content string) {
	t.Helper()
	full := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", relPath, err)
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*mcp.TextContent); ok {
				t.Fatalf("tool returned an error: %s", tc.Text)
			}
		}
	}
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("result had no text content")
	return ""
}

func TestHandleIndexRepositoryThenTraceCallPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.py", `
def helper():
    return 1

def caller():
    return helper()
`)

	srv, _ := newTestServer(t)
	ctx := context.Background()

	indexArgs, _ := json.Marshal(map[string]string{"repo_path": dir})
	indexRes, err := srv.CallTool(ctx, "index_repository", indexArgs)
	if err != nil {
		t.Fatalf("CallTool(index_repository): %v", err)
	}
	var indexOut map[string]any
	if err := json.Unmarshal([]byte(resultText(t, indexRes)), &indexOut); err != nil {
		t.Fatalf("unmarshal index_repository result: %v", err)
	}
	if indexOut["edges"].(float64) == 0 {
		t.Error("expected at least one edge from indexing a file with a call")
	}

	traceArgs, _ := json.Marshal(map[string]string{"function_name": "caller"})
	traceRes, err := srv.CallTool(ctx, "trace_call_path", traceArgs)
	if err != nil {
		t.Fatalf("CallTool(trace_call_path): %v", err)
	}
	var traceOut map[string]any
	if err := json.Unmarshal([]byte(resultText(t, traceRes)), &traceOut); err != nil {
		t.Fatalf("unmarshal trace_call_path result: %v", err)
	}
	edges, _ := traceOut["edges"].([]any)
	if len(edges) == 0 {
		t.Error("expected trace_call_path to find the caller -> helper edge")
	}
}

func TestHandleIndexRepositoryRequiresRepoPath(t *testing.T) {
	srv, _ := newTestServer(t)
	res, err := srv.CallTool(context.Background(), "index_repository", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Error("expected an error result when repo_path is missing")
	}
}
