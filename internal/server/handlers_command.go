package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kurobon/gitgraph/internal/state"
)

type CommandRequest struct {
	SessionID string `json:"sessionId"`
	Command   string `json:"command"`
}

// handleExecCommand runs a history operation. Command failures are reported
// in the body with status 200, the way a terminal shows them.
func (s *Server) handleExecCommand(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badRequest("decode body: %v", err))
		return
	}
	if req.SessionID == "" {
		writeError(w, badRequest("sessionId is required"))
		return
	}

	s.logger.Info("command received", "session", req.SessionID, "command", req.Command)

	output, err := s.SessionManager.Execute(r.Context(), req.SessionID, req.Command)
	if errors.Is(err, state.ErrSessionNotFound) {
		writeError(w, err)
		return
	}
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}

	s.refresh(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"output": output})
}
