package flow

import (
	"context"
	"fmt"

	"github.com/convoflow/convoflow/model"
)

// Flow is the executable form of a stored definition: every node converted to
// its typed handler, keyed by node id.
type Flow struct {
	Id          string
	Name        string
	Graph       model.FlowGraph
	StartNodeId string
	Nodes       map[string]Node
}

func Convert(def model.FlowDefinition, deps Dependencies) (*Flow, error) {
	start, err := ResolveInitialNode(def.Graph)
	if err != nil {
		return nil, err
	}
	nodes := make(map[string]Node)
	for _, nd := range def.Graph.Nodes {
		nodes[nd.Id] = buildNode(nd, deps)
	}
	return &Flow{
		Id:          def.Id,
		Name:        def.Name,
		Graph:       def.Graph,
		StartNodeId: start.Id,
		Nodes:       nodes,
	}, nil
}

func buildNode(nd model.NodeDef, deps Dependencies) Node {
	bNode := newBaseNode(nd.Id, nd.Type)
	switch nd.Type {
	case model.NODE_TYPE_START_MESSAGE:
		return NewStartMessageNode(stringData(nd.Data, "message"), *bNode)
	case model.NODE_TYPE_SEND_MESSAGE:
		return NewSendMessageNode(stringData(nd.Data, "message"), *bNode)
	case model.NODE_TYPE_MENU_BUTTONS:
		return NewMenuButtonsNode(stringData(nd.Data, "message"), stringSliceData(nd.Data, "buttons"), *bNode)
	case model.NODE_TYPE_COLLECT_INFO:
		return NewCollectInfoNode(stringData(nd.Data, "prompt"), stringData(nd.Data, "variable"),
			stringData(nd.Data, "inputType"), *bNode)
	case model.NODE_TYPE_INTEGRATION:
		return NewIntegrationNode(stringData(nd.Data, "action"), stringData(nd.Data, "input"),
			stringData(nd.Data, "inputType"), stringData(nd.Data, "prompt"), deps.Reader, *bNode)
	case model.NODE_TYPE_EXECUTE_WRITE_ACTION:
		return NewWriteActionNode(stringData(nd.Data, "writeAction"), stringData(nd.Data, "successMessage"),
			stringData(nd.Data, "failureMessage"), deps.Writer, *bNode)
	case model.NODE_TYPE_TRANSFER:
		return NewTransferNode(stringData(nd.Data, "queue"), *bNode)
	}
	// unknown types keep the base node: validation rejects them at publish
	// time, execution yields UnknownNodeTypeError for stored legacy graphs.
	return bNode
}

// Validate rejects a definition that could misbehave at runtime. It runs at
// publish time only.
func Validate(def model.FlowDefinition, deps Dependencies) error {
	nodeIds := make(map[string]bool)
	for _, nd := range def.Graph.Nodes {
		if nodeIds[nd.Id] {
			return InvalidFlowError{Reason: fmt.Sprintf("node id %s is duplicate", nd.Id)}
		}
		nodeIds[nd.Id] = true
	}
	for _, edge := range def.Graph.Edges {
		if !nodeIds[edge.Source] {
			return InvalidFlowError{Reason: fmt.Sprintf("edge source %s not defined", edge.Source)}
		}
		if !nodeIds[edge.Target] {
			return InvalidFlowError{Reason: fmt.Sprintf("edge target %s not defined", edge.Target)}
		}
	}
	if _, err := ResolveInitialNode(def.Graph); err != nil {
		return err
	}
	for _, nd := range def.Graph.Nodes {
		edges := OutgoingEdges(def.Graph, nd.Id)
		node := buildNode(nd, deps)
		if nd.Type == model.NODE_TYPE_MENU_BUTTONS {
			buttons := stringSliceData(nd.Data, "buttons")
			if len(edges) != len(buttons) {
				return InvalidFlowError{Reason: fmt.Sprintf("node %s has %d buttons but %d outgoing edges", nd.Id, len(buttons), len(edges))}
			}
		} else if len(edges) > 1 {
			return InvalidFlowError{Reason: fmt.Sprintf("node %s of type %s can have at most one outgoing edge", nd.Id, nd.Type)}
		}
		if err := node.Validate(); err != nil {
			return InvalidFlowError{Reason: err.Error()}
		}
	}
	return nil
}

func (f *Flow) Node(id string) (Node, bool) {
	node, ok := f.Nodes[id]
	return node, ok
}

// Next computes the successor of currentNodeId; see NextNode.
func (f *Flow) Next(currentNodeId string, buttonIndex *int) (*model.NodeDef, error) {
	return NextNode(f.Graph, currentNodeId, buttonIndex)
}

// Execute runs the node with the given id against the conversation state.
func (f *Flow) Execute(ctx context.Context, nodeId string, ectx ExecutionContext) (*model.BotResponse, error) {
	node, ok := f.Nodes[nodeId]
	if !ok {
		return nil, fmt.Errorf("node %s not in flow %s", nodeId, f.Id)
	}
	return node.Execute(ctx, ectx)
}
