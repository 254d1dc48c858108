package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/convoflow/convoflow/flow"
	"github.com/convoflow/convoflow/logger"
	"github.com/convoflow/convoflow/model"
)

func (s *Server) HandleCreateFlow(w http.ResponseWriter, r *http.Request) {
	var def model.FlowDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	saved, err := s.flowService.SaveFlow(def)
	if err != nil {
		var invalid flow.InvalidFlowError
		if errors.As(err, &invalid) {
			respondWithError(w, http.StatusBadRequest, invalid.Error())
			return
		}
		logger.Error("error creating flow", zap.Error(err))
		respondWithError(w, http.StatusBadRequest, "error creating flow")
		return
	}
	respondWithJSON(w, http.StatusCreated, saved)
}

func (s *Server) HandleListFlows(w http.ResponseWriter, r *http.Request) {
	defs, err := s.flowService.ListFlows()
	if err != nil {
		logger.Error("error listing flows", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "error listing flows")
		return
	}
	respondWithJSON(w, http.StatusOK, defs)
}

func (s *Server) HandleGetFlow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	def, err := s.flowService.GetFlow(id)
	if err != nil {
		respondNotFoundOrError(w, err, "flow does not exist")
		return
	}
	respondWithJSON(w, http.StatusOK, def)
}

func (s *Server) HandleDeleteFlow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.flowService.DeleteFlow(id); err != nil {
		logger.Error("error deleting flow", zap.String("id", id), zap.Error(err))
		respondNotFoundOrError(w, err, "error deleting flow")
		return
	}
	respondOKWithoutBody(w)
}

func (s *Server) HandleActivateFlow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.flowService.ActivateFlow(id); err != nil {
		logger.Error("error activating flow", zap.String("id", id), zap.Error(err))
		respondNotFoundOrError(w, err, "error activating flow")
		return
	}
	respondOK(w, map[string]any{"activated": true})
}
