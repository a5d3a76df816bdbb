package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kurobon/gitgraph/internal/graph"
	"github.com/kurobon/gitgraph/internal/logging"
	"github.com/kurobon/gitgraph/internal/state"
)

// Server exposes sessions over HTTP and pushes graph updates over
// websockets.
type Server struct {
	SessionManager *state.SessionManager
	Mux            *http.ServeMux

	logger logging.Logger
	hub    *hub
	flight singleflight.Group

	watchMu  sync.Mutex
	watchers map[string]*watcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer creates a server and starts its broadcast loop. Close stops it.
func NewServer(sm *state.SessionManager, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		SessionManager: sm,
		Mux:            http.NewServeMux(),
		logger:         logger,
		watchers:       make(map[string]*watcher),
		ctx:            ctx,
		cancel:         cancel,
	}
	s.hub = newHub(s.buildGraph, logger)
	s.routes()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.hub.run(ctx)
	}()
	return s
}

func (s *Server) routes() {
	s.Mux.HandleFunc("/ping", s.handlePing)
	s.Mux.HandleFunc("/api/session/open", s.handleOpenSession)
	s.Mux.HandleFunc("/api/session/close", s.handleCloseSession)
	s.Mux.HandleFunc("/api/graph", s.handleGraph)
	s.Mux.HandleFunc("/api/graphs", s.handleGraphs)
	s.Mux.HandleFunc("/api/refs", s.handleRefs)
	s.Mux.HandleFunc("/api/reflog", s.handleReflog)
	s.Mux.HandleFunc("/api/command", s.handleExecCommand)
	s.Mux.HandleFunc("/api/ws", s.handleWebSocket)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Mux.ServeHTTP(w, r)
}

// Close stops the watchers and the broadcast loop and disconnects clients.
func (s *Server) Close() error {
	s.cancel()

	s.watchMu.Lock()
	for id, w := range s.watchers {
		w.close()
		delete(s.watchers, id)
	}
	s.watchMu.Unlock()

	s.wg.Wait()
	s.hub.closeAll()
	return nil
}

// graphQuery identifies one graph window of one session.
type graphQuery struct {
	SessionID string
	Scope     graph.Scope
	Skip      int
	Limit     int
}

func (q graphQuery) key() string {
	return fmt.Sprintf("%s|%s|%d|%d", q.SessionID, q.Scope, q.Skip, q.Limit)
}

// buildGraph collapses concurrent identical requests into one build. The
// shared build does not inherit any caller's cancellation; each caller stops
// waiting when its own context ends.
func (s *Server) buildGraph(ctx context.Context, q graphQuery) (*graph.CommitGraph, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(q.key(), func() (interface{}, error) {
		return s.SessionManager.BuildGraph(shared, q.SessionID, q.Scope, q.Skip, q.Limit)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("graph build shared", "key", q.key())
		}
		return res.Val.(*graph.CommitGraph), nil
	}
}

// refresh pushes fresh graphs to the websocket clients of a session.
func (s *Server) refresh(sessionID string) {
	s.hub.notify(sessionID)
}
