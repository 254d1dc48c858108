package model

import "time"

type EventType string

const EVENT_NEW_CONVERSATION EventType = "NEW_CONVERSATION"
const EVENT_MESSAGE_RECEIVED EventType = "MESSAGE_RECEIVED"
const EVENT_CONVERSATION_ASSIGNED EventType = "CONVERSATION_ASSIGNED"
const EVENT_CONVERSATION_UPDATED EventType = "CONVERSATION_UPDATED"
const EVENT_CONVERSATION_CLOSED EventType = "CONVERSATION_CLOSED"

// Event is pushed to the notification fan-out; the core never depends on
// delivery.
type Event struct {
	Type           EventType      `json:"type"`
	ConversationId string         `json:"conversationId"`
	Data           map[string]any `json:"data,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}
