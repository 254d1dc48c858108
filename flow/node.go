package flow

import (
	"context"
	"fmt"

	"github.com/convoflow/convoflow/model"
)

// IntegrationReader is the read only boundary to the back office system.
type IntegrationReader interface {
	Read(ctx context.Context, action string, params map[string]string) (map[string]any, error)
}

// WriteActionRunner executes a named operator configured write action with
// the conversation's collected variables.
type WriteActionRunner interface {
	Run(ctx context.Context, name string, variables map[string]string) error
}

type Dependencies struct {
	Reader IntegrationReader
	Writer WriteActionRunner
}

// ExecutionContext carries the per conversation state a node may read.
type ExecutionContext struct {
	ConversationId     string
	CustomerIdentifier string
	Variables          map[string]string
}

type Node interface {
	GetId() string
	GetType() model.NodeType
	Validate() error
	Execute(ctx context.Context, ectx ExecutionContext) (*model.BotResponse, error)
}

var _ Node = new(baseNode)

type baseNode struct {
	id       string
	nodeType model.NodeType
}

func newBaseNode(id string, nodeType model.NodeType) *baseNode {
	return &baseNode{
		id:       id,
		nodeType: nodeType,
	}
}

func (bn *baseNode) GetId() string {
	return bn.id
}

func (bn *baseNode) GetType() model.NodeType {
	return bn.nodeType
}

func (bn *baseNode) Execute(ctx context.Context, ectx ExecutionContext) (*model.BotResponse, error) {
	return nil, UnknownNodeTypeError{NodeType: bn.nodeType}
}

func (bn *baseNode) Validate() error {
	return fmt.Errorf("node %s: handler for type %s not found", bn.id, bn.nodeType)
}

func stringData(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

func stringSliceData(data map[string]any, key string) []string {
	v, ok := data[key]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return nil
	}
}
