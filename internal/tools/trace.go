package tools

import (
	"context"
	"fmt"
	"regexp"

	"github.com/codegraph-dev/codegraph/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleTraceCallPath(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	funcName := getStringArg(args, "function_name")
	if funcName == "" {
		return errResult("function_name is required"), nil
	}

	depth := getIntArg(args, "depth", 3)
	if depth < 1 {
		depth = 1
	}
	if depth > 5 {
		depth = 5
	}

	direction := getStringArg(args, "direction")
	if direction == "" {
		direction = "outbound"
	}

	proj, err := s.resolveProject(getStringArg(args, "project"))
	if err != nil {
		return errResult(err.Error()), nil
	}

	rootNode, findErr := s.findNodeByName(proj.Name, funcName)
	if findErr != nil {
		suggestions := s.findSimilarNodes(proj.Name, funcName, 5)
		if len(suggestions) > 0 {
			suggList := make([]map[string]string, len(suggestions))
			for i, n := range suggestions {
				suggList[i] = map[string]string{
					"name":           n.Name,
					"qualified_name": n.QualifiedName,
					"label":          n.Label,
				}
			}
			return jsonResult(map[string]any{
				"error":       fmt.Sprintf("function not found: %s", funcName),
				"suggestions": suggList,
			}), nil
		}
		return errResult(fmt.Sprintf("function not found: %s", funcName)), nil
	}

	root := buildNodeInfo(rootNode)
	moduleInfo := s.getModuleInfo(proj.Name, rootNode)

	const maxVisited = 200
	var allHops []nodeHop
	var allEdges []edgeInfo

	if direction == "both" || direction == "outbound" {
		hops, edges, bfsErr := s.bfsCalls(rootNode.ID, true, depth, maxVisited)
		if bfsErr != nil {
			return errResult(fmt.Sprintf("bfs err: %v", bfsErr)), nil
		}
		allHops = append(allHops, hops...)
		allEdges = append(allEdges, edges...)
	}
	if direction == "both" || direction == "inbound" {
		hops, edges, bfsErr := s.bfsCalls(rootNode.ID, false, depth, maxVisited)
		if bfsErr != nil {
			return errResult(fmt.Sprintf("bfs err: %v", bfsErr)), nil
		}
		allHops = append(allHops, hops...)
		allEdges = append(allEdges, edges...)
	}

	hops := buildHops(allHops)
	edges := buildEdgeList(allEdges)

	indexedAt := ""
	if p, _ := s.store.GetProject(proj.Name); p != nil {
		indexedAt = p.IndexedAt
	}

	return jsonResult(map[string]any{
		"root":          root,
		"module":        moduleInfo,
		"hops":          hops,
		"edges":         edges,
		"indexed_at":    indexedAt,
		"total_results": len(allHops),
	}), nil
}

func buildNodeInfo(n *store.Node) map[string]any {
	info := map[string]any{
		"name":           n.Name,
		"qualified_name": n.QualifiedName,
		"label":          n.Label,
		"file_path":      n.FilePath,
		"start_line":     n.StartLine,
		"end_line":       n.EndLine,
	}
	if sig, ok := n.Properties["signature"]; ok {
		info["signature"] = sig
	}
	if rt, ok := n.Properties["return_type"]; ok {
		info["return_type"] = rt
	}
	return info
}

func (s *Server) getModuleInfo(project string, funcNode *store.Node) map[string]any {
	if funcNode.FilePath == "" {
		return map[string]any{}
	}
	modules, err := s.store.FindNodesByLabel(project, "Module")
	if err != nil {
		return map[string]any{}
	}
	for _, m := range modules {
		if m.FilePath == funcNode.FilePath {
			return map[string]any{"name": m.Name}
		}
	}
	return map[string]any{}
}

// findSimilarNodes searches for nodes whose name resembles the input string.
func (s *Server) findSimilarNodes(project, name string, limit int) []*store.Node {
	params := &store.SearchParams{
		Project:       project,
		NamePattern:   "(?i)" + regexp.QuoteMeta(name),
		Limit:         limit,
		MinDegree:     -1,
		MaxDegree:     -1,
		ExcludeLabels: []string{"Community"},
	}
	out, err := s.store.Search(params)
	if err != nil {
		return nil
	}
	nodes := make([]*store.Node, len(out.Results))
	for i, r := range out.Results {
		nodes[i] = r.Node
	}
	return nodes
}

type nodeHop struct {
	node *store.Node
	hop  int
}

type edgeInfo struct {
	fromName string
	toName   string
	edgeType string
}

type hopEntry struct {
	Hop   int              `json:"hop"`
	Nodes []map[string]any `json:"nodes"`
}

func buildHops(visited []nodeHop) []hopEntry {
	hopMap := map[int][]map[string]any{}
	for _, nh := range visited {
		info := map[string]any{
			"name":           nh.node.Name,
			"qualified_name": nh.node.QualifiedName,
			"label":          nh.node.Label,
		}
		if sig, ok := nh.node.Properties["signature"]; ok {
			info["signature"] = sig
		}
		hopMap[nh.hop] = append(hopMap[nh.hop], info)
	}

	var hops []hopEntry
	for h := 1; h <= len(hopMap); h++ {
		if nodes, ok := hopMap[h]; ok {
			hops = append(hops, hopEntry{Hop: h, Nodes: nodes})
		}
	}
	return hops
}

func buildEdgeList(edges []edgeInfo) []map[string]any {
	result := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		result = append(result, map[string]any{
			"from": e.fromName,
			"to":   e.toName,
			"type": e.edgeType,
		})
	}
	return result
}

// bfsCalls walks CALLS edges breadth-first from rootID, in the direction
// given by outbound (true: follow source->target, false: follow
// target->source), batching node/edge lookups a level at a time via the
// store's ID-set edge queries.
func (s *Server) bfsCalls(rootID int64, outbound bool, depth, maxVisited int) ([]nodeHop, []edgeInfo, error) {
	visited := map[int64]bool{rootID: true}
	frontier := []int64{rootID}
	var hops []nodeHop
	var edges []edgeInfo

	for h := 1; h <= depth && len(frontier) > 0 && len(visited) < maxVisited; h++ {
		var edgeMap map[int64][]*store.Edge
		var err error
		if outbound {
			edgeMap, err = s.store.FindEdgesBySourceIDs(frontier, []string{"CALLS"})
		} else {
			edgeMap, err = s.store.FindEdgesByTargetIDs(frontier, []string{"CALLS"})
		}
		if err != nil {
			return nil, nil, err
		}

		var next []int64
		for _, id := range frontier {
			for _, e := range edgeMap[id] {
				fromNode, ferr := s.store.FindNodeByID(e.SourceID)
				toNode, terr := s.store.FindNodeByID(e.TargetID)
				if ferr == nil && terr == nil {
					edges = append(edges, edgeInfo{fromName: fromNode.Name, toName: toNode.Name, edgeType: e.Type})
				}

				neighborID := e.TargetID
				if !outbound {
					neighborID = e.SourceID
				}
				if visited[neighborID] {
					continue
				}
				visited[neighborID] = true

				neighborNode, nerr := s.store.FindNodeByID(neighborID)
				if nerr != nil {
					continue
				}
				hops = append(hops, nodeHop{node: neighborNode, hop: h})
				next = append(next, neighborID)

				if len(visited) >= maxVisited {
					break
				}
			}
			if len(visited) >= maxVisited {
				break
			}
		}
		frontier = next
	}

	return hops, edges, nil
}
