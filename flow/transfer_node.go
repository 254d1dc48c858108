package flow

import (
	"context"
	"fmt"

	"github.com/convoflow/convoflow/model"
)

var _ Node = new(transferNode)

// transferNode hands the conversation off to a human queue; the caller is
// responsible for the BOT to QUEUED transition.
type transferNode struct {
	baseNode
	queue string
}

func NewTransferNode(queue string, bNode baseNode) *transferNode {
	return &transferNode{
		baseNode: bNode,
		queue:    queue,
	}
}

func (n *transferNode) Validate() error {
	if len(n.queue) == 0 {
		return fmt.Errorf("nodeId=%s, transfer requires a queue", n.id)
	}
	return nil
}

func (n *transferNode) Execute(ctx context.Context, ectx ExecutionContext) (*model.BotResponse, error) {
	return &model.BotResponse{
		Type:          model.RESPONSE_TYPE_TRANSFER,
		Content:       MSG_TRANSFER,
		TransferQueue: n.queue,
	}, nil
}
