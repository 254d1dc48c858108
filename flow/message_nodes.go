package flow

import (
	"context"
	"fmt"

	"github.com/convoflow/convoflow/model"
)

var _ Node = new(startMessageNode)

type startMessageNode struct {
	baseNode
	message string
}

func NewStartMessageNode(message string, bNode baseNode) *startMessageNode {
	return &startMessageNode{
		baseNode: bNode,
		message:  message,
	}
}

func (n *startMessageNode) Validate() error {
	if len(n.message) == 0 {
		return fmt.Errorf("nodeId=%s, start message can not be empty", n.id)
	}
	return nil
}

func (n *startMessageNode) Execute(ctx context.Context, ectx ExecutionContext) (*model.BotResponse, error) {
	return &model.BotResponse{
		Type:    model.RESPONSE_TYPE_MESSAGE,
		Content: n.message,
	}, nil
}

var _ Node = new(sendMessageNode)

type sendMessageNode struct {
	baseNode
	message string
}

func NewSendMessageNode(message string, bNode baseNode) *sendMessageNode {
	return &sendMessageNode{
		baseNode: bNode,
		message:  message,
	}
}

func (n *sendMessageNode) Validate() error {
	if len(n.message) == 0 {
		return fmt.Errorf("nodeId=%s, message can not be empty", n.id)
	}
	return nil
}

func (n *sendMessageNode) Execute(ctx context.Context, ectx ExecutionContext) (*model.BotResponse, error) {
	return &model.BotResponse{
		Type:    model.RESPONSE_TYPE_MESSAGE,
		Content: n.message,
	}, nil
}

var _ Node = new(menuButtonsNode)

type menuButtonsNode struct {
	baseNode
	message string
	buttons []string
}

func NewMenuButtonsNode(message string, buttons []string, bNode baseNode) *menuButtonsNode {
	return &menuButtonsNode{
		baseNode: bNode,
		message:  message,
		buttons:  buttons,
	}
}

func (n *menuButtonsNode) Validate() error {
	if len(n.buttons) == 0 {
		return fmt.Errorf("nodeId=%s, menu should have at least one button", n.id)
	}
	return nil
}

func (n *menuButtonsNode) Execute(ctx context.Context, ectx ExecutionContext) (*model.BotResponse, error) {
	return &model.BotResponse{
		Type:    model.RESPONSE_TYPE_MENU,
		Content: n.message,
		Buttons: n.buttons,
	}, nil
}

var _ Node = new(collectInfoNode)

// collectInfoNode asks the customer for a value; the next customer message is
// stored under the configured variable name before the flow advances.
type collectInfoNode struct {
	baseNode
	prompt    string
	variable  string
	inputType string
}

func NewCollectInfoNode(prompt string, variable string, inputType string, bNode baseNode) *collectInfoNode {
	return &collectInfoNode{
		baseNode:  bNode,
		prompt:    prompt,
		variable:  variable,
		inputType: inputType,
	}
}

func (n *collectInfoNode) Validate() error {
	if len(n.variable) == 0 {
		return fmt.Errorf("nodeId=%s, collect info requires a variable name", n.id)
	}
	return nil
}

func (n *collectInfoNode) Variable() string {
	return n.variable
}

func (n *collectInfoNode) Execute(ctx context.Context, ectx ExecutionContext) (*model.BotResponse, error) {
	return &model.BotResponse{
		Type:      model.RESPONSE_TYPE_INPUT_REQUEST,
		Content:   n.prompt,
		InputType: n.inputType,
	}, nil
}
