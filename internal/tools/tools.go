// Package tools exposes the code graph as a set of MCP tools: indexing,
// structured graph search, full-text code search, call-path tracing, schema
// introspection, source snippets, and plain file/directory browsing.
//
// Grounded in the teacher's internal/tools package, trimmed from its
// multi-project StoreRouter/session-auto-detection/file-watcher/
// update-checker design down to a single shared *store.Store (this module's
// store has no per-project router) with the project named explicitly on
// each call instead of auto-detected from an MCP "roots" handshake. The
// Cypher query tool and the git-history trace-ingestion tool are dropped
// along with their backing engines (see DESIGN.md).
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/codegraph-dev/codegraph/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported in the MCP handshake.
const Version = "0.1.0"

// Server wraps the MCP server with tool handlers bound to a single store.
type Server struct {
	mcp      *mcp.Server
	store    *store.Store
	indexMu  sync.Mutex
	handlers map[string]mcp.ToolHandler
}

// NewServer creates an MCP server with all tools registered against s.
func NewServer(s *store.Store) *Server {
	srv := &Server{
		store:    s,
		handlers: make(map[string]mcp.ToolHandler),
	}

	srv.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "codegraph-mcp",
			Version: Version,
		},
		nil,
	)

	srv.registerTools()
	return srv
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Store returns the underlying store (for direct access, e.g. CLI mode).
func (s *Server) Store() *store.Store {
	return s.store
}

func (s *Server) addTool(tool *mcp.Tool, handler mcp.ToolHandler) {
	s.mcp.AddTool(tool, handler)
	s.handlers[tool.Name] = handler
}

// CallTool invokes a tool handler directly by name, bypassing MCP transport.
func (s *Server) CallTool(ctx context.Context, name string, argsJSON json.RawMessage) (*mcp.CallToolResult, error) {
	handler, ok := s.handlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	if len(argsJSON) == 0 {
		argsJSON = json.RawMessage(`{}`)
	}
	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      name,
			Arguments: argsJSON,
		},
	}
	return handler(ctx, req)
}

// ToolNames returns all registered tool names in sorted order.
func (s *Server) ToolNames() []string {
	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Server) registerTools() {
	s.registerIndexAndTraceTool()
	s.registerSchemaAndSnippetTools()
	s.registerSearchTools()
	s.registerFileTools()
	s.registerProjectTools()
}

func (s *Server) registerIndexAndTraceTool() {
	s.addTool(&mcp.Tool{
		Name:        "index_repository",
		Description: "Index a repository into the code graph. Parses source files, builds the containment skeleton (Project/Folder/Package/File), extracts functions/classes/modules, and resolves cross-file call relationships (CALLS) via the two-pass call resolution cascade.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"repo_path": {
					"type": "string",
					"description": "Absolute path to the repository to index."
				}
			},
			"required": ["repo_path"]
		}`),
	}, s.handleIndexRepository)

	s.addTool(&mcp.Tool{
		Name:        "trace_call_path",
		Description: "Trace the call path of a function (who calls it, what it calls). Requires an exact function name — use search_graph first to find it. Returns hop-by-hop callees/callers over CALLS edges. If the function is not found, returns suggestions of similar names.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"function_name": {
					"type": "string",
					"description": "Name of the function to trace (e.g. 'processOrder')"
				},
				"depth": {
					"type": "integer",
					"description": "Maximum BFS depth (1-5, default 3)"
				},
				"direction": {
					"type": "string",
					"description": "Traversal direction: 'outbound' (what it calls), 'inbound' (what calls it), or 'both'",
					"enum": ["outbound", "inbound", "both"]
				},
				"project": {
					"type": "string",
					"description": "Project to trace in. Required unless exactly one project is indexed."
				}
			},
			"required": ["function_name"]
		}`),
	}, s.handleTraceCallPath)
}

func (s *Server) registerSchemaAndSnippetTools() {
	s.addTool(&mcp.Tool{
		Name:        "get_graph_schema",
		Description: "Return the schema of the indexed code graph: node label counts, edge type counts, relationship patterns, and sample function/class names. Use to understand what's in the graph before searching.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleGetGraphSchema)

	s.addTool(&mcp.Tool{
		Name:        "get_code_snippet",
		Description: "Retrieve source code for a function/class by qualified name. Reads directly from disk using the stored file path and line range.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"qualified_name": {
					"type": "string",
					"description": "Fully qualified name of the node"
				},
				"project": {
					"type": "string",
					"description": "Project to search in. Required unless exactly one project is indexed."
				}
			},
			"required": ["qualified_name"]
		}`),
	}, s.handleGetCodeSnippet)
}

func (s *Server) registerSearchTools() {
	s.addTool(&mcp.Tool{
		Name:        "search_graph",
		Description: "Search the code graph for functions, classes, modules, and other code elements. Returns nodes matching the criteria with their connectivity (in/out degree), sorted by relevance by default. Results are paginated — use offset, check has_more.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project": {"type": "string", "description": "Project to search in. Required unless exactly one project is indexed."},
				"label": {"type": "string", "description": "Node label filter: Function, Class, Module, Method, File, Package, Folder"},
				"name_pattern": {"type": "string", "description": "Regex pattern for node name"},
				"file_pattern": {"type": "string", "description": "Glob pattern for file path"},
				"relationship": {"type": "string", "description": "Relationship type to compute degree over (e.g. CALLS)"},
				"direction": {"type": "string", "enum": ["inbound", "outbound", "any"]},
				"min_degree": {"type": "integer"},
				"max_degree": {"type": "integer"},
				"exclude_entry_points": {"type": "boolean"},
				"limit": {"type": "integer", "description": "Max results per page (default 10)"},
				"offset": {"type": "integer"},
				"include_connected": {"type": "boolean"},
				"exclude_labels": {"type": "array", "items": {"type": "string"}},
				"sort_by": {"type": "string", "enum": ["relevance", "name", "degree"]}
			}
		}`),
	}, s.handleSearchGraph)

	s.addTool(&mcp.Tool{
		Name:        "search_code",
		Description: "Search for text in source code files (like grep, scoped to an indexed project). Paginated — use offset, check has_more.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"pattern": {"type": "string", "description": "Text to search for (literal, or regex if regex=true)"},
				"file_pattern": {"type": "string", "description": "Glob pattern to filter files"},
				"regex": {"type": "boolean"},
				"max_results": {"type": "integer"},
				"offset": {"type": "integer"},
				"project": {"type": "string", "description": "Project to search in. Required unless exactly one project is indexed."}
			},
			"required": ["pattern"]
		}`),
	}, s.handleSearchCode)
}

// registerFileTools registers tools for file and directory operations.
func (s *Server) registerFileTools() {
	s.addTool(&mcp.Tool{
		Name:        "read_file",
		Description: "Read a file from an indexed project. Supports line range selection for large files.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {"type": "string", "description": "File path (absolute, or relative to project root)"},
				"start_line": {"type": "integer"},
				"end_line": {"type": "integer"},
				"project": {"type": "string", "description": "Project name to resolve a relative path against"}
			},
			"required": ["path"]
		}`),
	}, s.handleReadFile)

	s.addTool(&mcp.Tool{
		Name:        "list_directory",
		Description: "List files and subdirectories in a directory of an indexed project. Supports glob patterns for filtering.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {"type": "string", "description": "Directory path (absolute, or relative to project root). Empty for project root."},
				"pattern": {"type": "string", "description": "Glob pattern to filter entries"},
				"project": {"type": "string", "description": "Project to resolve root from. Required unless exactly one project is indexed."}
			}
		}`),
	}, s.handleListDirectory)
}

// registerProjectTools registers tools for project management.
func (s *Server) registerProjectTools() {
	s.addTool(&mcp.Tool{
		Name:        "list_projects",
		Description: "List all indexed projects with their indexed_at timestamp, root path, and node/edge counts.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleListProjects)

	s.addTool(&mcp.Tool{
		Name:        "delete_project",
		Description: "Delete an indexed project and all its graph data (nodes, edges, file hashes). Irreversible.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project_name": {"type": "string", "description": "Name of the project to delete"}
			},
			"required": ["project_name"]
		}`),
	}, s.handleDeleteProject)
}

// --- Helpers ---

// jsonResult marshals data to JSON and returns it as a tool result.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

// errResult returns a tool result indicating an error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// parseArgs unmarshals the raw JSON arguments into a map.
func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

// getStringArg extracts a string argument from parsed args.
func getStringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	str, ok := v.(string)
	if !ok {
		return ""
	}
	return str
}

// getIntArg extracts an integer argument with a default value.
func getIntArg(args map[string]any, key string, defaultVal int) int {
	v, ok := args[key]
	if !ok {
		return defaultVal
	}
	f, ok := v.(float64) // JSON numbers decode as float64
	if !ok {
		return defaultVal
	}
	return int(f)
}

// getBoolArg extracts a boolean argument from parsed args.
func getBoolArg(args map[string]any, key string) bool {
	v, ok := args[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		return false
	}
	return b
}

// resolveProject resolves an explicit project name, or — when omitted —
// the sole indexed project. With more than one project indexed and none
// named explicitly, the caller must disambiguate.
func (s *Server) resolveProject(explicit string) (*store.Project, error) {
	if explicit != "" {
		p, err := s.store.GetProject(explicit)
		if err != nil {
			return nil, fmt.Errorf("project %q not found; use list_projects to see available projects", explicit)
		}
		return p, nil
	}
	projects, err := s.store.ListProjects()
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("no projects indexed; call index_repository first")
	}
	if len(projects) > 1 {
		return nil, fmt.Errorf("multiple projects indexed; specify the 'project' parameter")
	}
	return projects[0], nil
}

// findNodeByName looks up a node by simple name within a project.
func (s *Server) findNodeByName(project, name string) (*store.Node, error) {
	nodes, err := s.store.FindNodesByName(project, name)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("node not found: %s", name)
	}
	return nodes[0], nil
}
