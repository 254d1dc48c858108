package closure

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoflow/convoflow/erp"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/notify"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/persistence/inmem"
)

type fakeRegistrar struct {
	mu       sync.Mutex
	protocol string
	err      error
	payloads []erp.RegistrationPayload
}

func (r *fakeRegistrar) RegisterConversation(ctx context.Context, payload erp.RegistrationPayload) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	if r.err != nil {
		return "", r.err
	}
	return r.protocol, nil
}

func closedConversation(t *testing.T, storage persistence.Storage, id string) model.Conversation {
	t.Helper()
	now := time.Now()
	conv := model.Conversation{
		Id:                 id,
		CustomerIdentifier: "52998224725",
		ChannelId:          "whatsapp",
		Status:             model.CONVERSATION_CLOSED,
		Queue:              "human",
		AssigneeId:         "agent-7",
		CreatedAt:          now.Add(-10 * time.Minute),
		ClosedAt:           &now,
	}
	require.NoError(t, storage.Conversations().Save(conv))
	require.NoError(t, storage.Messages().Append(model.Message{
		Id: "m1", ConversationId: id, SenderType: model.SENDER_CUSTOMER, Content: "oi", CreatedAt: now.Add(-9 * time.Minute),
	}))
	require.NoError(t, storage.Messages().Append(model.Message{
		Id: "m2", ConversationId: id, SenderType: model.SENDER_AGENT, SenderId: "agent-7", Content: "olá", CreatedAt: now.Add(-8 * time.Minute),
	}))
	return conv
}

func TestRegisterSetsProtocol(t *testing.T) {
	storage := inmem.NewInMemStorage()
	closedConversation(t, storage, "c1")
	registrar := &fakeRegistrar{protocol: "2026-000123"}
	var wg sync.WaitGroup
	p := NewPipeline(storage, registrar, notify.NewNoopNotifier(), &wg, 8)

	require.NoError(t, p.Register("c1"))

	conv, err := storage.Conversations().Get("c1")
	require.NoError(t, err)
	assert.Equal(t, "2026-000123", conv.ExternalProtocol)
	assert.Equal(t, model.CONVERSATION_CLOSED, conv.Status)

	require.Len(t, registrar.payloads, 1)
	payload := registrar.payloads[0]
	assert.Equal(t, "52998224725", payload.CustomerIdentifier)
	assert.Equal(t, 2, payload.TotalMessages)
	assert.True(t, payload.HadHumanIntervention)
	assert.Equal(t, "agent-7", payload.AssigneeId)
	require.Len(t, payload.Transcript, 2)
	assert.Equal(t, model.SENDER_CUSTOMER, payload.Transcript[0].Sender)
}

func TestRegisterFailureLeavesConversationClosed(t *testing.T) {
	storage := inmem.NewInMemStorage()
	closedConversation(t, storage, "c1")
	registrar := &fakeRegistrar{err: &erp.ServiceError{Kind: erp.ERROR_UNREACHABLE, Cause: errors.New("connection refused")}}
	var wg sync.WaitGroup
	p := NewPipeline(storage, registrar, notify.NewNoopNotifier(), &wg, 8)

	err := p.Register("c1")
	require.Error(t, err)
	var rerr RegistrationError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "c1", rerr.ConversationId)

	conv, gerr := storage.Conversations().Get("c1")
	require.NoError(t, gerr)
	assert.Empty(t, conv.ExternalProtocol)
	assert.Equal(t, model.CONVERSATION_CLOSED, conv.Status)
}

type reopeningRegistrar struct {
	conversations  persistence.ConversationDao
	conversationId string
}

func (r *reopeningRegistrar) RegisterConversation(ctx context.Context, payload erp.RegistrationPayload) (string, error) {
	conv, err := r.conversations.Get(r.conversationId)
	if err != nil {
		return "", err
	}
	conv.Status = model.CONVERSATION_QUEUED
	conv.ClosedAt = nil
	if err := r.conversations.Save(*conv); err != nil {
		return "", err
	}
	return "P-9", nil
}

func TestRegisterKeepsTransitionsCommittedDuringCall(t *testing.T) {
	storage := inmem.NewInMemStorage()
	closedConversation(t, storage, "c1")
	// the conversation is reopened while the registration call is in flight
	registrar := &reopeningRegistrar{conversations: storage.Conversations(), conversationId: "c1"}
	var wg sync.WaitGroup
	p := NewPipeline(storage, registrar, notify.NewNoopNotifier(), &wg, 8)

	require.NoError(t, p.Register("c1"))

	conv, err := storage.Conversations().Get("c1")
	require.NoError(t, err)
	assert.Equal(t, model.CONVERSATION_QUEUED, conv.Status)
	assert.Nil(t, conv.ClosedAt)
	assert.Equal(t, "P-9", conv.ExternalProtocol)
}

func TestRegisterIsIdempotent(t *testing.T) {
	storage := inmem.NewInMemStorage()
	conv := closedConversation(t, storage, "c1")
	conv.ExternalProtocol = "P-1"
	require.NoError(t, storage.Conversations().Save(conv))
	registrar := &fakeRegistrar{protocol: "P-2"}
	var wg sync.WaitGroup
	p := NewPipeline(storage, registrar, notify.NewNoopNotifier(), &wg, 8)

	require.NoError(t, p.Register("c1"))
	assert.Empty(t, registrar.payloads)

	saved, err := storage.Conversations().Get("c1")
	require.NoError(t, err)
	assert.Equal(t, "P-1", saved.ExternalProtocol)
}

func TestRegisterRequiresClosedConversation(t *testing.T) {
	storage := inmem.NewInMemStorage()
	require.NoError(t, storage.Conversations().Save(model.Conversation{
		Id: "c1", Status: model.CONVERSATION_OPEN,
	}))
	var wg sync.WaitGroup
	p := NewPipeline(storage, &fakeRegistrar{protocol: "P-1"}, notify.NewNoopNotifier(), &wg, 8)

	err := p.Register("c1")
	require.Error(t, err)
	var rerr RegistrationError
	require.ErrorAs(t, err, &rerr)
}

func TestRetryAfterFailure(t *testing.T) {
	storage := inmem.NewInMemStorage()
	closedConversation(t, storage, "c1")
	registrar := &fakeRegistrar{err: errors.New("erp down")}
	var wg sync.WaitGroup
	p := NewPipeline(storage, registrar, notify.NewNoopNotifier(), &wg, 8)
	p.Start()
	defer p.Stop()

	require.Error(t, p.Register("c1"))

	registrar.mu.Lock()
	registrar.err = nil
	registrar.protocol = "P-42"
	registrar.mu.Unlock()
	require.NoError(t, p.Retry("c1"))

	require.Eventually(t, func() bool {
		conv, err := storage.Conversations().Get("c1")
		return err == nil && conv.ExternalProtocol == "P-42"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRetryRequiresClosed(t *testing.T) {
	storage := inmem.NewInMemStorage()
	require.NoError(t, storage.Conversations().Save(model.Conversation{
		Id: "c1", Status: model.CONVERSATION_BOT,
	}))
	var wg sync.WaitGroup
	p := NewPipeline(storage, &fakeRegistrar{}, notify.NewNoopNotifier(), &wg, 8)

	require.Error(t, p.Retry("c1"))
}

func TestEnqueueFullQueue(t *testing.T) {
	storage := inmem.NewInMemStorage()
	var wg sync.WaitGroup
	// worker not started, so the single slot fills up immediately
	p := NewPipeline(storage, &fakeRegistrar{}, notify.NewNoopNotifier(), &wg, 1)

	require.NoError(t, p.Enqueue("c1"))
	err := p.Enqueue("c2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full")
}
