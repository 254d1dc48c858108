package model

import "time"

type ConversationStatus string

const CONVERSATION_BOT ConversationStatus = "BOT"
const CONVERSATION_QUEUED ConversationStatus = "QUEUED"
const CONVERSATION_OPEN ConversationStatus = "OPEN"
const CONVERSATION_CLOSED ConversationStatus = "CLOSED"

type SenderType string

const SENDER_BOT SenderType = "BOT"
const SENDER_CUSTOMER SenderType = "CUSTOMER"
const SENDER_AGENT SenderType = "AGENT"

const CONTENT_TYPE_TEXT string = "text"
const CONTENT_TYPE_SYSTEM string = "system"

// Conversation is the unit of work of the whole system. CurrentNodeId is the
// persisted flow cursor; it is only meaningful while Status is BOT.
type Conversation struct {
	Id                 string             `json:"id"`
	CustomerIdentifier string             `json:"customerIdentifier"`
	ChannelId          string             `json:"channelId"`
	Status             ConversationStatus `json:"status"`
	Queue              string             `json:"queue,omitempty"`
	AssigneeId         string             `json:"assigneeId,omitempty"`
	ExternalProtocol   string             `json:"externalProtocol,omitempty"`
	CurrentNodeId      string             `json:"currentNodeId,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	ClosedAt           *time.Time         `json:"closedAt,omitempty"`
}

type Message struct {
	Id             string     `json:"id"`
	ConversationId string     `json:"conversationId"`
	SenderType     SenderType `json:"senderType"`
	SenderId       string     `json:"senderId,omitempty"`
	Content        string     `json:"content"`
	ContentType    string     `json:"contentType"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type ConversationVariable struct {
	ConversationId string `json:"conversationId"`
	Name           string `json:"name"`
	Value          string `json:"value"`
}

type StartConversationRequest struct {
	CustomerIdentifier string `json:"customerIdentifier"`
	ChannelId          string `json:"channelId"`
}

type SendMessageRequest struct {
	Content     string `json:"content"`
	ButtonIndex *int   `json:"buttonIndex,omitempty"`
}

type AssignRequest struct {
	AgentId string `json:"agentId"`
}

type CloseRequest struct {
	Reason string `json:"reason,omitempty"`
}
