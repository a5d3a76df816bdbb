package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kurobon/gitgraph/internal/graph"
	"github.com/kurobon/gitgraph/internal/state"
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
}

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, state.ErrSessionNotFound), errors.Is(err, graph.ErrRefNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "pong",
		"system":  "gitgraph",
	})
}

type openSessionRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req openSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, badRequest("decode body: %v", err))
			return
		}
	}
	if req.Path == "" {
		req.Path = s.SessionManager.Config().RepoPath
	}

	session, err := s.SessionManager.OpenSession(req.Path)
	if err != nil {
		writeError(w, badRequest("%v", err))
		return
	}
	if err := s.watchSession(session.ID, session.Repo.GitDir()); err != nil {
		s.logger.Warn("live refresh disabled", "session", session.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "session opened",
		"sessionId": session.ID,
		"path":      session.Repo.Path(),
	})
}

type sessionRequest struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badRequest("decode body: %v", err))
		return
	}
	if err := s.SessionManager.CloseSession(req.SessionID); err != nil {
		writeError(w, err)
		return
	}
	s.unwatchSession(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "session closed"})
}

// parseGraphQuery reads sessionId, scope, ref, skip and limit.
func (s *Server) parseGraphQuery(r *http.Request) (graphQuery, error) {
	q := r.URL.Query()
	query := graphQuery{SessionID: q.Get("sessionId")}
	if query.SessionID == "" {
		return query, badRequest("sessionId is required")
	}

	scope, err := graph.ParseScope(q.Get("scope"), q.Get("ref"))
	if err != nil {
		return query, badRequest("%v", err)
	}
	query.Scope = scope

	if query.Skip, err = intParam(q.Get("skip")); err != nil {
		return query, badRequest("skip: %v", err)
	}
	if query.Limit, err = intParam(q.Get("limit")); err != nil {
		return query, badRequest("limit: %v", err)
	}
	return query, nil
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	q, err := s.parseGraphQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	g, err := s.buildGraph(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

type scopedGraph struct {
	Scope string             `json:"scope"`
	Graph *graph.CommitGraph `json:"graph"`
}

// handleGraphs builds one window per branch= or start= parameter.
func (s *Server) handleGraphs(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	sessionID := q.Get("sessionId")
	if sessionID == "" {
		writeError(w, badRequest("sessionId is required"))
		return
	}
	skip, err := intParam(q.Get("skip"))
	if err != nil {
		writeError(w, badRequest("skip: %v", err))
		return
	}
	limit, err := intParam(q.Get("limit"))
	if err != nil {
		writeError(w, badRequest("limit: %v", err))
		return
	}

	var reqs []state.GraphRequest
	for _, name := range q["branch"] {
		reqs = append(reqs, state.GraphRequest{Scope: graph.Branch(name), Skip: skip, Limit: limit})
	}
	for _, id := range q["start"] {
		reqs = append(reqs, state.GraphRequest{Scope: graph.Start(id), Skip: skip, Limit: limit})
	}
	if len(reqs) == 0 {
		writeError(w, badRequest("at least one branch or start parameter is required"))
		return
	}

	graphs, err := s.SessionManager.BuildGraphs(r.Context(), sessionID, reqs)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]scopedGraph, len(graphs))
	for i, g := range graphs {
		out[i] = scopedGraph{Scope: reqs[i].Scope.String(), Graph: g}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"graphs": out})
}

type refView struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	TargetID string `json:"targetId"`
}

type headView struct {
	Attached      bool   `json:"attached"`
	TargetRefName string `json:"targetRefName,omitempty"`
	TargetID      string `json:"targetId,omitempty"`
}

func (s *Server) handleRefs(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeError(w, badRequest("sessionId is required"))
		return
	}
	refs, head, err := s.SessionManager.Refs(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]refView, len(refs))
	for i, ref := range refs {
		views[i] = refView{Name: ref.Name, Kind: ref.Kind.String(), TargetID: ref.TargetID}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"refs": views,
		"head": headView{Attached: head.Attached, TargetRefName: head.TargetRefName, TargetID: head.TargetID},
	})
}

func (s *Server) handleReflog(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	session, err := s.SessionManager.GetSession(r.URL.Query().Get("sessionId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": session.Reflog()})
}
