package rest

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
	"github.com/convoflow/convoflow/writeaction"
)

func (s *Server) HandleCreateWriteAction(w http.ResponseWriter, r *http.Request) {
	var action model.WriteAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	if action.HttpMethod != model.HTTP_METHOD_POST && action.HttpMethod != model.HTTP_METHOD_PUT {
		respondWithError(w, http.StatusBadRequest, "httpMethod must be POST or PUT")
		return
	}
	// template problems surface to the operator now, never at runtime
	if err := writeaction.Validate(action.RequestBodyTemplate); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(action.Id) == 0 {
		action.Id = uuid.New().String()
	}
	if err := s.writeActions.Save(action); err != nil {
		logger.Error("error creating write action", zap.String("name", action.Name), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error creating write action")
		return
	}
	respondWithJSON(w, http.StatusCreated, action)
}

func (s *Server) HandleGetWriteAction(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	action, err := s.writeActions.Get(name)
	if err != nil {
		respondNotFoundOrError(w, err, "write action does not exist")
		return
	}
	respondWithJSON(w, http.StatusOK, action)
}

func (s *Server) HandleDeleteWriteAction(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.writeActions.Delete(name); err != nil {
		logger.Error("error deleting write action", zap.String("name", name), zap.Error(err))
		respondNotFoundOrError(w, err, "error deleting write action")
		return
	}
	respondOKWithoutBody(w)
}

func (s *Server) HandleValidateWriteAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Template string `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	if err := writeaction.Validate(req.Template); err != nil {
		respondOK(w, map[string]any{"valid": false, "error": err.Error()})
		return
	}
	respondOK(w, map[string]any{"valid": true})
}

func (s *Server) HandleExtractVariables(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Template string `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	respondOK(w, map[string]any{"variables": writeaction.ExtractVariables(req.Template)})
}
