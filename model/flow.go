package model

type NodeType string

const NODE_TYPE_START_MESSAGE NodeType = "StartMessage"
const NODE_TYPE_SEND_MESSAGE NodeType = "SendMessage"
const NODE_TYPE_MENU_BUTTONS NodeType = "MenuButtons"
const NODE_TYPE_INTEGRATION NodeType = "Integration"
const NODE_TYPE_COLLECT_INFO NodeType = "CollectInfo"
const NODE_TYPE_EXECUTE_WRITE_ACTION NodeType = "ExecuteWriteAction"
const NODE_TYPE_TRANSFER NodeType = "Transfer"

// FlowDefinition is the stored, versioned form of a flow graph. At most one
// definition is active system wide.
type FlowDefinition struct {
	Id       string    `json:"id"`
	Name     string    `json:"name"`
	IsActive bool      `json:"isActive"`
	Graph    FlowGraph `json:"graph"`
}

type FlowGraph struct {
	Nodes []NodeDef `json:"nodes"`
	Edges []Edge    `json:"edges"`
}

// NodeDef is the raw stored node; Data is interpreted by the handler selected
// by Type during conversion to an executable node.
type NodeDef struct {
	Id   string         `json:"id"`
	Type NodeType       `json:"type"`
	Data map[string]any `json:"data"`
}

// Edge ordering matters for MenuButtons nodes: the i-th outgoing edge of a
// menu node is the target of the i-th button.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type BotResponseType string

const RESPONSE_TYPE_MESSAGE BotResponseType = "message"
const RESPONSE_TYPE_MENU BotResponseType = "menu"
const RESPONSE_TYPE_INPUT_REQUEST BotResponseType = "input_request"
const RESPONSE_TYPE_TRANSFER BotResponseType = "transfer"

type BotResponse struct {
	Type          BotResponseType `json:"type"`
	Content       string          `json:"content"`
	Buttons       []string        `json:"buttons,omitempty"`
	InputType     string          `json:"inputType,omitempty"`
	TransferQueue string          `json:"transferQueue,omitempty"`
}
