package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/convoflow/convoflow/closure"
	"github.com/convoflow/convoflow/conversation"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/metadata"
	"github.com/convoflow/convoflow/persistence"
)

type Server struct {
	http.Server
	Port                string
	conversationService *conversation.Service
	flowService         metadata.FlowService
	writeActions        persistence.WriteActionDao
	closurePipeline     *closure.Pipeline
}

func NewServer(httpPort int, conversationService *conversation.Service, flowService metadata.FlowService,
	writeActions persistence.WriteActionDao, closurePipeline *closure.Pipeline) (*Server, error) {

	s := &Server{
		Server: http.Server{
			Addr:        fmt.Sprintf(":%d", httpPort),
			IdleTimeout: 2 * time.Second,
		},
		conversationService: conversationService,
		flowService:         flowService,
		writeActions:        writeActions,
		closurePipeline:     closurePipeline,
	}

	router := mux.NewRouter()
	router.HandleFunc("/conversations", s.HandleStartConversation).Methods(http.MethodPost)
	router.HandleFunc("/conversations/{id}", s.HandleGetConversation).Methods(http.MethodGet)
	router.HandleFunc("/conversations/{id}/messages", s.HandleSendMessage).Methods(http.MethodPost)
	router.HandleFunc("/conversations/{id}/messages", s.HandleGetTranscript).Methods(http.MethodGet)
	router.HandleFunc("/conversations/{id}/agent-messages", s.HandleSendAgentMessage).Methods(http.MethodPost)
	router.HandleFunc("/conversations/{id}/assign", s.HandleAssign).Methods(http.MethodPost)
	router.HandleFunc("/conversations/{id}/close", s.HandleClose).Methods(http.MethodPost)
	router.HandleFunc("/conversations/{id}/reopen", s.HandleReopen).Methods(http.MethodPost)
	router.HandleFunc("/conversations/{id}/register/retry", s.HandleRetryRegistration).Methods(http.MethodPost)

	router.HandleFunc("/flows", s.HandleCreateFlow).Methods(http.MethodPost)
	router.HandleFunc("/flows", s.HandleListFlows).Methods(http.MethodGet)
	router.HandleFunc("/flows/{id}", s.HandleGetFlow).Methods(http.MethodGet)
	router.HandleFunc("/flows/{id}", s.HandleDeleteFlow).Methods(http.MethodDelete)
	router.HandleFunc("/flows/{id}/activate", s.HandleActivateFlow).Methods(http.MethodPost)

	router.HandleFunc("/writeactions", s.HandleCreateWriteAction).Methods(http.MethodPost)
	router.HandleFunc("/writeactions/validate", s.HandleValidateWriteAction).Methods(http.MethodPost)
	router.HandleFunc("/writeactions/variables", s.HandleExtractVariables).Methods(http.MethodPost)
	router.HandleFunc("/writeactions/{name}", s.HandleGetWriteAction).Methods(http.MethodGet)
	router.HandleFunc("/writeactions/{name}", s.HandleDeleteWriteAction).Methods(http.MethodDelete)

	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("starting http server on", zap.String("addr", s.Addr))
	if err := s.ListenAndServe(); err != nil {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down http server")
	}
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, message map[string]any) {
	respondWithJSON(w, http.StatusOK, message)
}

func respondOKWithoutBody(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
