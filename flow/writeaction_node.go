package flow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
)

var _ Node = new(writeActionNode)

// writeActionNode fires an operator configured write call; a failed write is
// logged and reported to the customer, never retried here.
type writeActionNode struct {
	baseNode
	actionName     string
	successMessage string
	failureMessage string
	runner         WriteActionRunner
}

func NewWriteActionNode(actionName string, successMessage string, failureMessage string, runner WriteActionRunner, bNode baseNode) *writeActionNode {
	if len(successMessage) == 0 {
		successMessage = MSG_WRITE_OK
	}
	if len(failureMessage) == 0 {
		failureMessage = MSG_WRITE_FAILED
	}
	return &writeActionNode{
		baseNode:       bNode,
		actionName:     actionName,
		successMessage: successMessage,
		failureMessage: failureMessage,
		runner:         runner,
	}
}

func (n *writeActionNode) Validate() error {
	if len(n.actionName) == 0 {
		return fmt.Errorf("nodeId=%s, write action name can not be empty", n.id)
	}
	return nil
}

func (n *writeActionNode) Execute(ctx context.Context, ectx ExecutionContext) (*model.BotResponse, error) {
	err := n.runner.Run(ctx, n.actionName, ectx.Variables)
	if err != nil {
		logger.Error("write action failed", zap.String("node", n.id), zap.String("action", n.actionName),
			zap.String("conversation", ectx.ConversationId), zap.Error(err))
		return &model.BotResponse{
			Type:    model.RESPONSE_TYPE_MESSAGE,
			Content: n.failureMessage,
		}, nil
	}
	return &model.BotResponse{
		Type:    model.RESPONSE_TYPE_MESSAGE,
		Content: n.successMessage,
	}, nil
}
