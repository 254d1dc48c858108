package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/convoflow/convoflow/conversation"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/persistence"
)

func (s *Server) HandleStartConversation(w http.ResponseWriter, r *http.Request) {
	var req model.StartConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	conv, botResponse, err := s.conversationService.Start(r.Context(), req)
	if err != nil {
		logger.Error("error starting conversation", zap.Error(err))
		respondWithError(w, http.StatusBadRequest, "error starting conversation")
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]any{"conversation": conv, "botResponse": botResponse})
}

func (s *Server) HandleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	conv, err := s.conversationService.Get(id)
	if err != nil {
		respondNotFoundOrError(w, err, "conversation does not exist")
		return
	}
	respondWithJSON(w, http.StatusOK, conv)
}

func (s *Server) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	botResponse, err := s.conversationService.SendMessage(r.Context(), id, req)
	if err != nil {
		logger.Error("error processing message", zap.String("conversation", id), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, "error processing message")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"botResponse": botResponse})
}

func (s *Server) HandleGetTranscript(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	messages, err := s.conversationService.Transcript(id)
	if err != nil {
		respondNotFoundOrError(w, err, "conversation does not exist")
		return
	}
	respondWithJSON(w, http.StatusOK, messages)
}

func (s *Server) HandleSendAgentMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		AgentId string `json:"agentId"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	if err := s.conversationService.SendAgentMessage(r.Context(), id, req.AgentId, req.Content); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondOKWithoutBody(w)
}

func (s *Server) HandleAssign(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req model.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	conv, err := s.conversationService.Assign(r.Context(), id, req.AgentId)
	if err != nil {
		respondTransitionError(w, id, err, "error assigning conversation")
		return
	}
	respondWithJSON(w, http.StatusOK, conv)
}

func (s *Server) HandleClose(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req model.CloseRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	defer r.Body.Close()
	conv, err := s.conversationService.Close(r.Context(), id, req.Reason)
	if err != nil {
		respondTransitionError(w, id, err, "error closing conversation")
		return
	}
	respondWithJSON(w, http.StatusOK, conv)
}

func (s *Server) HandleReopen(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	conv, err := s.conversationService.Reopen(r.Context(), id)
	if err != nil {
		respondTransitionError(w, id, err, "error reopening conversation")
		return
	}
	respondWithJSON(w, http.StatusOK, conv)
}

func (s *Server) HandleRetryRegistration(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.closurePipeline.Retry(id); err != nil {
		logger.Error("error retrying registration", zap.String("conversation", id), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(w, map[string]any{"enqueued": true})
}

func respondNotFoundOrError(w http.ResponseWriter, err error, message string) {
	var notFound persistence.NotFoundError
	if errors.As(err, &notFound) {
		respondWithError(w, http.StatusNotFound, message)
		return
	}
	respondWithError(w, http.StatusInternalServerError, message)
}

func respondTransitionError(w http.ResponseWriter, id string, err error, message string) {
	var invalid conversation.InvalidTransitionError
	if errors.As(err, &invalid) {
		respondWithError(w, http.StatusConflict, invalid.Error())
		return
	}
	logger.Error(message, zap.String("conversation", id), zap.Error(err))
	respondNotFoundOrError(w, err, message)
}
