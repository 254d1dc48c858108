package flow

import (
	"fmt"

	"github.com/convoflow/convoflow/model"
)

// InvalidFlowError is fatal at publish time; a stored active flow is assumed
// to have passed validation.
type InvalidFlowError struct {
	Reason string
}

func (e InvalidFlowError) Error() string {
	return fmt.Sprintf("invalid flow: %s", e.Reason)
}

type UnknownNodeTypeError struct {
	NodeType model.NodeType
}

func (e UnknownNodeTypeError) Error() string {
	return fmt.Sprintf("unknown node type %s", e.NodeType)
}

// UnrecognizedInputError is recovered locally with a generic "didn't
// understand" bot reply; it never aborts the conversation.
type UnrecognizedInputError struct{}

func (e UnrecognizedInputError) Error() string {
	return "input does not match any edge of the current node"
}
