package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/convoflow/convoflow/model"
)

func TestCanTransition(t *testing.T) {
	type move struct {
		from model.ConversationStatus
		to   model.ConversationStatus
	}
	scenarios := map[move]bool{
		{model.CONVERSATION_BOT, model.CONVERSATION_QUEUED}:    true,
		{model.CONVERSATION_BOT, model.CONVERSATION_OPEN}:      true,
		{model.CONVERSATION_BOT, model.CONVERSATION_CLOSED}:    true,
		{model.CONVERSATION_QUEUED, model.CONVERSATION_OPEN}:   true,
		{model.CONVERSATION_QUEUED, model.CONVERSATION_CLOSED}: false,
		{model.CONVERSATION_QUEUED, model.CONVERSATION_BOT}:    false,
		{model.CONVERSATION_OPEN, model.CONVERSATION_CLOSED}:   true,
		{model.CONVERSATION_OPEN, model.CONVERSATION_QUEUED}:   false,
		{model.CONVERSATION_OPEN, model.CONVERSATION_BOT}:      false,
		{model.CONVERSATION_CLOSED, model.CONVERSATION_QUEUED}: true,
		{model.CONVERSATION_CLOSED, model.CONVERSATION_OPEN}:   false,
		{model.CONVERSATION_CLOSED, model.CONVERSATION_BOT}:    false,
	}
	for scenario, allowed := range scenarios {
		assert.Equal(t, allowed, CanTransition(scenario.from, scenario.to), "%s -> %s", scenario.from, scenario.to)
	}
}

func TestCheckTransitionError(t *testing.T) {
	err := checkTransition(model.CONVERSATION_CLOSED, model.CONVERSATION_OPEN)
	assert.Error(t, err)
	_, ok := err.(InvalidTransitionError)
	assert.True(t, ok)
}
