package flow

import (
	"fmt"

	"github.com/convoflow/convoflow/model"
)

// ResolveInitialNode returns the single node that is no edge's target. A graph
// with zero or more than one such node is rejected.
func ResolveInitialNode(graph model.FlowGraph) (*model.NodeDef, error) {
	targets := make(map[string]bool)
	for _, edge := range graph.Edges {
		targets[edge.Target] = true
	}
	var start *model.NodeDef
	for i := range graph.Nodes {
		if targets[graph.Nodes[i].Id] {
			continue
		}
		if start != nil {
			return nil, InvalidFlowError{Reason: "graph has more than one start node"}
		}
		start = &graph.Nodes[i]
	}
	if start == nil {
		return nil, InvalidFlowError{Reason: "graph has no start node"}
	}
	return start, nil
}

// OutgoingEdges preserves definition order; for menu nodes the i-th edge
// corresponds to the i-th button.
func OutgoingEdges(graph model.FlowGraph, nodeId string) []model.Edge {
	var out []model.Edge
	for _, edge := range graph.Edges {
		if edge.Source == nodeId {
			out = append(out, edge)
		}
	}
	return out
}

func FindNode(graph model.FlowGraph, nodeId string) (*model.NodeDef, error) {
	for i := range graph.Nodes {
		if graph.Nodes[i].Id == nodeId {
			return &graph.Nodes[i], nil
		}
	}
	return nil, fmt.Errorf("node %s not in graph", nodeId)
}

// NextNode computes the successor of currentNodeId. For MenuButtons nodes the
// supplied button index selects the edge at that ordinal position; anything
// out of range is an unrecognized response. A nil result with nil error means
// the current node is terminal.
func NextNode(graph model.FlowGraph, currentNodeId string, buttonIndex *int) (*model.NodeDef, error) {
	current, err := FindNode(graph, currentNodeId)
	if err != nil {
		return nil, err
	}
	edges := OutgoingEdges(graph, currentNodeId)
	if current.Type == model.NODE_TYPE_MENU_BUTTONS {
		if buttonIndex == nil || *buttonIndex < 0 || *buttonIndex >= len(edges) {
			return nil, UnrecognizedInputError{}
		}
		return FindNode(graph, edges[*buttonIndex].Target)
	}
	if len(edges) == 0 {
		return nil, nil
	}
	return FindNode(graph, edges[0].Target)
}
