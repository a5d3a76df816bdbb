package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kurobon/gitgraph/internal/graph"
	"github.com/kurobon/gitgraph/internal/logging"
)

const (
	writeWait     = 10 * time.Second
	refreshBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type MessageType string

const (
	MessageTypeGraph MessageType = "graph"
	MessageTypeError MessageType = "error"
)

// UpdateMessage is the envelope of every websocket message.
type UpdateMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type graphFunc func(ctx context.Context, q graphQuery) (*graph.CommitGraph, error)

// client is one websocket connection following one graph query.
type client struct {
	conn  *websocket.Conn
	query graphQuery
	mu    sync.Mutex
}

func (c *client) send(msg UpdateMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}

// hub tracks websocket clients per session and rebuilds their graphs when
// a session changes.
type hub struct {
	build   graphFunc
	logger  logging.Logger
	refresh chan string

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

func newHub(build graphFunc, logger logging.Logger) *hub {
	return &hub{
		build:   build,
		logger:  logger,
		refresh: make(chan string, refreshBuffer),
		clients: make(map[string]map[*client]struct{}),
	}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.query.SessionID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.query.SessionID] = set
	}
	set[c] = struct{}{}
	h.logger.Info("websocket client connected", "session", c.query.SessionID, "clients", len(set))
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.query.SessionID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.query.SessionID)
	}
	c.conn.Close()
	h.logger.Info("websocket client disconnected", "session", c.query.SessionID, "clients", len(set))
}

func (h *hub) sessionClients(sessionID string) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*client, 0, len(h.clients[sessionID]))
	for c := range h.clients[sessionID] {
		out = append(out, c)
	}
	return out
}

// notify queues a refresh for a session without blocking.
func (h *hub) notify(sessionID string) {
	select {
	case h.refresh <- sessionID:
	default:
		h.logger.Warn("refresh queue full, dropping update", "session", sessionID)
	}
}

func (h *hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-h.refresh:
			h.push(ctx, id)
		}
	}
}

// push sends every client of the session its current graph.
func (h *hub) push(ctx context.Context, sessionID string) {
	for _, c := range h.sessionClients(sessionID) {
		if err := c.send(h.message(ctx, c.query)); err != nil {
			h.logger.Warn("websocket write failed", "session", sessionID, "error", err)
			h.remove(c)
		}
	}
}

func (h *hub) message(ctx context.Context, q graphQuery) UpdateMessage {
	g, err := h.build(ctx, q)
	if err != nil {
		return UpdateMessage{Type: string(MessageTypeError), Data: errorBody{Error: err.Error()}}
	}
	return UpdateMessage{Type: string(MessageTypeGraph), Data: g}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.clients {
		for c := range set {
			c.conn.Close()
		}
		delete(h.clients, id)
	}
}

// handleWebSocket streams the graph of one query: the current graph on
// connect, then a new one after every change to the session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseGraphQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.SessionManager.GetSession(q.SessionID); err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, query: q}
	s.hub.add(c)
	defer s.hub.remove(c)

	if err := c.send(s.hub.message(r.Context(), q)); err != nil {
		return
	}

	// Incoming messages are ignored; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
