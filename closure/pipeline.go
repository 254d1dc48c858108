package closure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/convoflow/convoflow/erp"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/notify"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/util"
)

type RegistrationError struct {
	ConversationId string
	Cause          error
}

func (e RegistrationError) Error() string {
	return fmt.Sprintf("closure registration failed for conversation %s: %v", e.ConversationId, e.Cause)
}

func (e RegistrationError) Unwrap() error {
	return e.Cause
}

// Registrar is the ERP registration boundary.
type Registrar interface {
	RegisterConversation(ctx context.Context, payload erp.RegistrationPayload) (string, error)
}

// Pipeline reconciles closed conversations with the back office on a
// dedicated worker, detached from the request that closed them. Registration
// failure is terminal until an operator retries; it never rolls back a close.
type Pipeline struct {
	worker        *util.Worker
	conversations persistence.ConversationDao
	messages      persistence.MessageDao
	registrar     Registrar
	notifier      notify.Notifier
}

func NewPipeline(storage persistence.Storage, registrar Registrar, notifier notify.Notifier, wg *sync.WaitGroup, capacity int) *Pipeline {
	if capacity == 0 {
		capacity = 128
	}
	p := &Pipeline{
		conversations: storage.Conversations(),
		messages:      storage.Messages(),
		registrar:     registrar,
		notifier:      notifier,
	}
	p.worker = util.NewWorker("closure-registration", wg, p.handle, capacity)
	return p
}

func (p *Pipeline) Start() {
	p.worker.Start()
}

func (p *Pipeline) Stop() {
	p.worker.Stop()
}

// Enqueue never blocks the caller; a full queue is reported as an error and
// left to the manual retry path.
func (p *Pipeline) Enqueue(conversationId string) error {
	select {
	case p.worker.Sender() <- conversationId:
		return nil
	default:
		return fmt.Errorf("closure registration queue is full, conversation %s not enqueued", conversationId)
	}
}

// Retry re-runs the registration algorithm for a closed conversation.
func (p *Pipeline) Retry(conversationId string) error {
	conv, err := p.conversations.Get(conversationId)
	if err != nil {
		return err
	}
	if conv.Status != model.CONVERSATION_CLOSED {
		return fmt.Errorf("conversation %s is not closed", conversationId)
	}
	return p.Enqueue(conversationId)
}

func (p *Pipeline) handle(job util.Job) error {
	return p.Register(job.(string))
}

// Register builds the transcript payload and posts it to the ERP. A
// conversation that already carries a protocol is skipped: registration is
// idempotent.
func (p *Pipeline) Register(conversationId string) error {
	conv, err := p.conversations.Get(conversationId)
	if err != nil {
		return RegistrationError{ConversationId: conversationId, Cause: err}
	}
	if conv.Status != model.CONVERSATION_CLOSED {
		return RegistrationError{ConversationId: conversationId, Cause: fmt.Errorf("conversation is %s", conv.Status)}
	}
	if len(conv.ExternalProtocol) > 0 {
		logger.Debug("conversation already registered, skipping", zap.String("conversation", conversationId),
			zap.String("protocol", conv.ExternalProtocol))
		return nil
	}
	msgs, err := p.messages.GetAll(conversationId)
	if err != nil {
		return RegistrationError{ConversationId: conversationId, Cause: err}
	}
	payload := buildPayload(conv, msgs)
	protocol, err := p.registrar.RegisterConversation(context.Background(), payload)
	if err != nil {
		logger.Error("conversation registration failed", zap.String("conversation", conversationId), zap.Error(err))
		return RegistrationError{ConversationId: conversationId, Cause: err}
	}
	// the registration call can take seconds; re-fetch so a transition
	// committed in the meantime (a reopen, for one) is not overwritten by the
	// snapshot the payload was built from
	conv, err = p.conversations.Get(conversationId)
	if err != nil {
		return RegistrationError{ConversationId: conversationId, Cause: err}
	}
	conv.ExternalProtocol = protocol
	if err := p.conversations.Save(*conv); err != nil {
		return RegistrationError{ConversationId: conversationId, Cause: err}
	}
	logger.Info("conversation registered", zap.String("conversation", conversationId), zap.String("protocol", protocol))
	p.notifier.Publish(model.Event{
		Type:           model.EVENT_CONVERSATION_CLOSED,
		ConversationId: conversationId,
		Data:           map[string]any{"externalProtocol": protocol},
		Timestamp:      time.Now(),
	})
	return nil
}

func buildPayload(conv *model.Conversation, msgs []model.Message) erp.RegistrationPayload {
	transcript := make([]erp.TranscriptEntry, 0, len(msgs))
	hadHuman := len(conv.AssigneeId) > 0
	for _, msg := range msgs {
		if msg.SenderType == model.SENDER_AGENT {
			hadHuman = true
		}
		transcript = append(transcript, erp.TranscriptEntry{
			Sender:  msg.SenderType,
			Content: msg.Content,
			SentAt:  msg.CreatedAt,
		})
	}
	payload := erp.RegistrationPayload{
		CustomerIdentifier:   conv.CustomerIdentifier,
		ChannelId:            conv.ChannelId,
		Queue:                conv.Queue,
		Transcript:           transcript,
		StartedAt:            conv.CreatedAt,
		TotalMessages:        len(msgs),
		HadHumanIntervention: hadHuman,
		AssigneeId:           conv.AssigneeId,
	}
	if conv.ClosedAt != nil {
		payload.ClosedAt = *conv.ClosedAt
	}
	return payload
}
