package conversation

import (
	"fmt"

	"github.com/convoflow/convoflow/model"
)

type InvalidTransitionError struct {
	From model.ConversationStatus
	To   model.ConversationStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("conversation can not move from %s to %s", e.From, e.To)
}

// Lifecycle: BOT -> QUEUED -> OPEN -> CLOSED, with the shortcuts the
// operation set allows. A closed conversation reopens into QUEUED only,
// never back into BOT.
var allowedTransitions = map[model.ConversationStatus][]model.ConversationStatus{
	model.CONVERSATION_BOT:    {model.CONVERSATION_QUEUED, model.CONVERSATION_OPEN, model.CONVERSATION_CLOSED},
	model.CONVERSATION_QUEUED: {model.CONVERSATION_OPEN},
	model.CONVERSATION_OPEN:   {model.CONVERSATION_CLOSED},
	model.CONVERSATION_CLOSED: {model.CONVERSATION_QUEUED},
}

func CanTransition(from model.ConversationStatus, to model.ConversationStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func checkTransition(from model.ConversationStatus, to model.ConversationStatus) error {
	if !CanTransition(from, to) {
		return InvalidTransitionError{From: from, To: to}
	}
	return nil
}
