package persistence

import (
	"fmt"

	"github.com/convoflow/convoflow/model"
)

type ConversationDao interface {
	Save(conversation model.Conversation) error
	Get(id string) (*model.Conversation, error)
}

// MessageDao is append only; GetAll returns messages in creation order.
type MessageDao interface {
	Append(message model.Message) error
	GetAll(conversationId string) ([]model.Message, error)
}

type VariableDao interface {
	Upsert(conversationId string, name string, value string) error
	GetAll(conversationId string) (map[string]string, error)
}

type FlowDao interface {
	Save(def model.FlowDefinition) error
	Get(id string) (*model.FlowDefinition, error)
	GetAll() ([]model.FlowDefinition, error)
	// Activate marks the given definition active and every other definition
	// inactive in a single atomic step.
	Activate(id string) error
	GetActive() (*model.FlowDefinition, error)
	Delete(id string) error
}

type WriteActionDao interface {
	Save(action model.WriteAction) error
	Get(name string) (*model.WriteAction, error)
	Delete(name string) error
}

// Storage groups the DAOs of one backend implementation.
type Storage interface {
	Conversations() ConversationDao
	Messages() MessageDao
	Variables() VariableDao
	Flows() FlowDao
	WriteActions() WriteActionDao
}

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	if len(e.Message) == 0 {
		return "error in underline storage layer"
	}
	return e.Message
}

type NotFoundError struct {
	Kind string
	Id   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Id)
}
