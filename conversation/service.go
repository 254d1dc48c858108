package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/convoflow/convoflow/flow"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/metadata"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/notify"
	"github.com/convoflow/convoflow/persistence"
	"github.com/convoflow/convoflow/util"
)

const MSG_AGENT_JOINED string = "Você está falando com um de nossos atendentes agora."

// ClosureEnqueuer hands a closed conversation to the reconciliation worker.
// Enqueueing must never block the close path for long.
type ClosureEnqueuer interface {
	Enqueue(conversationId string) error
}

// Service owns the conversation lifecycle. Every flow advancing operation for
// a conversation runs under that conversation's lock; node resolution spans
// several reads and writes that must not interleave.
type Service struct {
	storage  persistence.Storage
	flows    metadata.FlowService
	notifier notify.Notifier
	closure  ClosureEnqueuer
	locks    *util.KeyedMutex
}

func NewService(storage persistence.Storage, flows metadata.FlowService, notifier notify.Notifier, closure ClosureEnqueuer) *Service {
	return &Service{
		storage:  storage,
		flows:    flows,
		notifier: notifier,
		closure:  closure,
		locks:    util.NewKeyedMutex(),
	}
}

// Start creates a conversation on first inbound contact and runs the active
// flow's initial node.
func (s *Service) Start(ctx context.Context, req model.StartConversationRequest) (*model.Conversation, *model.BotResponse, error) {
	fl, err := s.flows.GetActiveFlow()
	if err != nil {
		return nil, nil, err
	}
	conv := &model.Conversation{
		Id:                 uuid.New().String(),
		CustomerIdentifier: req.CustomerIdentifier,
		ChannelId:          req.ChannelId,
		Status:             model.CONVERSATION_BOT,
		CurrentNodeId:      fl.StartNodeId,
		CreatedAt:          time.Now(),
	}
	resp, err := s.executeNode(ctx, fl, conv, fl.StartNodeId, map[string]string{})
	if err != nil {
		logger.Error("error executing initial node", zap.String("conversation", conv.Id), zap.Error(err))
		resp = &model.BotResponse{Type: model.RESPONSE_TYPE_MESSAGE, Content: flow.MSG_GENERIC_ERROR}
	}
	if err := s.storage.Conversations().Save(*conv); err != nil {
		return nil, nil, err
	}
	if resp != nil {
		s.appendMessage(newMessage(conv.Id, model.SENDER_BOT, "", resp.Content, model.CONTENT_TYPE_TEXT))
	}
	s.publish(model.EVENT_NEW_CONVERSATION, conv.Id, map[string]any{"channelId": conv.ChannelId})
	return conv, resp, nil
}

// SendMessage handles one inbound customer message. While the conversation is
// in BOT the flow engine decides the reply; once a human owns it the message
// is only recorded and fanned out.
func (s *Service) SendMessage(ctx context.Context, conversationId string, req model.SendMessageRequest) (*model.BotResponse, error) {
	unlock := s.locks.Lock(conversationId)
	defer unlock()

	conv, err := s.storage.Conversations().Get(conversationId)
	if err != nil {
		return nil, err
	}
	if conv.Status == model.CONVERSATION_CLOSED {
		return nil, fmt.Errorf("conversation %s is closed", conversationId)
	}
	s.appendMessage(newMessage(conv.Id, model.SENDER_CUSTOMER, conv.CustomerIdentifier, req.Content, model.CONTENT_TYPE_TEXT))
	if conv.Status != model.CONVERSATION_BOT {
		return nil, nil
	}

	fl, err := s.flows.GetActiveFlow()
	if err != nil {
		return nil, err
	}
	vars, err := s.storage.Variables().GetAll(conversationId)
	if err != nil {
		return nil, err
	}
	if _, ok := fl.Node(conv.CurrentNodeId); !ok {
		// the active flow changed underneath the conversation; restart from
		// its initial node instead of failing
		conv.CurrentNodeId = fl.StartNodeId
	}

	var resp *model.BotResponse
	if name, ok := fl.CollectVariable(conv.CurrentNodeId); ok {
		// the cursor sits on a CollectInfo node, this message is its answer
		if err := s.storage.Variables().Upsert(conversationId, name, req.Content); err != nil {
			return nil, err
		}
		vars[name] = req.Content
		resp, err = s.advanceAndExecute(ctx, fl, conv, nil, vars)
	} else if name, ok := fl.RequiredInput(conv.CurrentNodeId); ok && len(vars[name]) == 0 {
		// an Integration node asked for its input; store it and round trip
		// back through the same node
		if err := s.storage.Variables().Upsert(conversationId, name, req.Content); err != nil {
			return nil, err
		}
		vars[name] = req.Content
		resp, err = s.executeNode(ctx, fl, conv, conv.CurrentNodeId, vars)
	} else {
		buttonIndex := req.ButtonIndex
		if buttonIndex == nil {
			// channels without button support send the label as plain text
			if buttons, ok := fl.MenuButtons(conv.CurrentNodeId); ok {
				buttonIndex = matchButton(buttons, req.Content)
			}
		}
		resp, err = s.advanceAndExecute(ctx, fl, conv, buttonIndex, vars)
	}
	if err != nil {
		var unrecognized flow.UnrecognizedInputError
		if errors.As(err, &unrecognized) {
			resp = &model.BotResponse{Type: model.RESPONSE_TYPE_MESSAGE, Content: flow.MSG_NOT_UNDERSTOOD}
		} else {
			logger.Error("error advancing flow", zap.String("conversation", conv.Id),
				zap.String("node", conv.CurrentNodeId), zap.Error(err))
			resp = &model.BotResponse{Type: model.RESPONSE_TYPE_MESSAGE, Content: flow.MSG_GENERIC_ERROR}
		}
	}
	if err := s.storage.Conversations().Save(*conv); err != nil {
		return nil, err
	}
	if resp != nil {
		s.appendMessage(newMessage(conv.Id, model.SENDER_BOT, "", resp.Content, model.CONTENT_TYPE_TEXT))
	}
	if conv.Status == model.CONVERSATION_QUEUED {
		s.publish(model.EVENT_CONVERSATION_UPDATED, conv.Id, map[string]any{"status": conv.Status, "queue": conv.Queue})
	}
	return resp, nil
}

// SendAgentMessage records a human reply on an open conversation.
func (s *Service) SendAgentMessage(ctx context.Context, conversationId string, agentId string, content string) error {
	unlock := s.locks.Lock(conversationId)
	defer unlock()

	conv, err := s.storage.Conversations().Get(conversationId)
	if err != nil {
		return err
	}
	if conv.Status != model.CONVERSATION_OPEN {
		return fmt.Errorf("conversation %s is not open", conversationId)
	}
	s.appendMessage(newMessage(conv.Id, model.SENDER_AGENT, agentId, content, model.CONTENT_TYPE_TEXT))
	return nil
}

// Assign gives the conversation to an agent; valid from QUEUED or BOT.
func (s *Service) Assign(ctx context.Context, conversationId string, agentId string) (*model.Conversation, error) {
	unlock := s.locks.Lock(conversationId)
	defer unlock()

	conv, err := s.storage.Conversations().Get(conversationId)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(conv.Status, model.CONVERSATION_OPEN); err != nil {
		return nil, err
	}
	conv.Status = model.CONVERSATION_OPEN
	conv.AssigneeId = agentId
	if err := s.storage.Conversations().Save(*conv); err != nil {
		return nil, err
	}
	s.appendMessage(newMessage(conv.Id, model.SENDER_BOT, "", MSG_AGENT_JOINED, model.CONTENT_TYPE_SYSTEM))
	s.publish(model.EVENT_CONVERSATION_ASSIGNED, conv.Id, map[string]any{"agentId": agentId})
	return conv, nil
}

// Close finishes the conversation and hands it to the reconciliation worker.
// The local status change commits and the call returns immediately; ERP
// registration happens on the worker with its own timeout.
func (s *Service) Close(ctx context.Context, conversationId string, reason string) (*model.Conversation, error) {
	unlock := s.locks.Lock(conversationId)
	defer unlock()

	conv, err := s.storage.Conversations().Get(conversationId)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(conv.Status, model.CONVERSATION_CLOSED); err != nil {
		return nil, err
	}
	now := time.Now()
	conv.Status = model.CONVERSATION_CLOSED
	conv.ClosedAt = &now
	if err := s.storage.Conversations().Save(*conv); err != nil {
		return nil, err
	}
	if len(reason) > 0 {
		s.appendMessage(newMessage(conv.Id, model.SENDER_BOT, "", "Conversa encerrada: "+reason, model.CONTENT_TYPE_SYSTEM))
	}
	if err := s.closure.Enqueue(conv.Id); err != nil {
		logger.Error("error enqueueing closure registration", zap.String("conversation", conv.Id), zap.Error(err))
	}
	s.publish(model.EVENT_CONVERSATION_UPDATED, conv.Id, map[string]any{"status": conv.Status})
	return conv, nil
}

// Reopen moves a closed conversation back into the human queue. Never back
// into BOT.
func (s *Service) Reopen(ctx context.Context, conversationId string) (*model.Conversation, error) {
	unlock := s.locks.Lock(conversationId)
	defer unlock()

	conv, err := s.storage.Conversations().Get(conversationId)
	if err != nil {
		return nil, err
	}
	if conv.Status != model.CONVERSATION_CLOSED {
		return nil, InvalidTransitionError{From: conv.Status, To: model.CONVERSATION_QUEUED}
	}
	conv.Status = model.CONVERSATION_QUEUED
	conv.ClosedAt = nil
	conv.AssigneeId = ""
	if len(conv.Queue) == 0 {
		conv.Queue = "default"
	}
	if err := s.storage.Conversations().Save(*conv); err != nil {
		return nil, err
	}
	s.publish(model.EVENT_CONVERSATION_UPDATED, conv.Id, map[string]any{"status": conv.Status, "queue": conv.Queue})
	return conv, nil
}

func (s *Service) Get(conversationId string) (*model.Conversation, error) {
	return s.storage.Conversations().Get(conversationId)
}

func (s *Service) Transcript(conversationId string) ([]model.Message, error) {
	return s.storage.Messages().GetAll(conversationId)
}

func (s *Service) advanceAndExecute(ctx context.Context, fl *flow.Flow, conv *model.Conversation, buttonIndex *int, vars map[string]string) (*model.BotResponse, error) {
	next, err := fl.Next(conv.CurrentNodeId, buttonIndex)
	if err != nil {
		return nil, err
	}
	if next == nil {
		// terminal node, nothing more to say
		return nil, nil
	}
	return s.executeNode(ctx, fl, conv, next.Id, vars)
}

func (s *Service) executeNode(ctx context.Context, fl *flow.Flow, conv *model.Conversation, nodeId string, vars map[string]string) (*model.BotResponse, error) {
	resp, err := fl.Execute(ctx, nodeId, flow.ExecutionContext{
		ConversationId:     conv.Id,
		CustomerIdentifier: conv.CustomerIdentifier,
		Variables:          vars,
	})
	if err != nil {
		return nil, err
	}
	conv.CurrentNodeId = nodeId
	if resp != nil && resp.Type == model.RESPONSE_TYPE_TRANSFER {
		conv.Status = model.CONVERSATION_QUEUED
		conv.Queue = resp.TransferQueue
	}
	return resp, nil
}

func (s *Service) appendMessage(msg model.Message) {
	if err := s.storage.Messages().Append(msg); err != nil {
		logger.Error("error appending message", zap.String("conversation", msg.ConversationId), zap.Error(err))
		return
	}
	s.publish(model.EVENT_MESSAGE_RECEIVED, msg.ConversationId, map[string]any{
		"senderType": msg.SenderType,
		"content":    msg.Content,
	})
}

func (s *Service) publish(eventType model.EventType, conversationId string, data map[string]any) {
	s.notifier.Publish(model.Event{
		Type:           eventType,
		ConversationId: conversationId,
		Data:           data,
		Timestamp:      time.Now(),
	})
}

// matchButton resolves a typed reply to a button ordinal by case insensitive
// label equality. No match means unrecognized input downstream.
func matchButton(buttons []string, content string) *int {
	text := strings.TrimSpace(content)
	for i, label := range buttons {
		if strings.EqualFold(strings.TrimSpace(label), text) {
			index := i
			return &index
		}
	}
	return nil
}

func newMessage(conversationId string, sender model.SenderType, senderId string, content string, contentType string) model.Message {
	return model.Message{
		Id:             uuid.New().String(),
		ConversationId: conversationId,
		SenderType:     sender,
		SenderId:       senderId,
		Content:        content,
		ContentType:    contentType,
		CreatedAt:      time.Now(),
	}
}
