package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kurobon/gitgraph/internal/config"
	"github.com/kurobon/gitgraph/internal/git"
	"github.com/kurobon/gitgraph/internal/graph"
	"github.com/kurobon/gitgraph/internal/logging"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// Session is one open repository and the history of commands run on it.
type Session struct {
	ID        string
	Repo      *git.Repository
	CreatedAt time.Time

	builder *graph.Builder
	reflog  []ReflogEntry
	mu      sync.RWMutex
}

// ReflogEntry records a command executed in the session.
type ReflogEntry struct {
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Reflog returns a copy of the commands run so far, oldest first.
func (s *Session) Reflog() []ReflogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ReflogEntry(nil), s.reflog...)
}

// GraphRequest describes one graph window.
type GraphRequest struct {
	Scope graph.Scope
	Skip  int
	Limit int
}

// SessionManager handles concurrent access to sessions.
type SessionManager struct {
	sessions map[string]*Session
	cfg      *config.Config
	logger   logging.Logger
	mu       sync.RWMutex
}

// NewSessionManager creates a session manager. A nil config means
// config.Global, a nil logger discards output.
func NewSessionManager(cfg *config.Config, logger logging.Logger) *SessionManager {
	if cfg == nil {
		cfg = config.Global
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		logger:   logger,
	}
}

// OpenSession opens the repository at path in a new session.
func (sm *SessionManager) OpenSession(path string) (*Session, error) {
	repo, err := git.Open(path,
		git.WithMaxWalk(sm.cfg.MaxWalk),
		git.WithCacheSize(sm.cfg.CacheSize),
		git.WithLogger(sm.logger),
	)
	if err != nil {
		return nil, err
	}
	return sm.AttachSession("", repo), nil
}

// AttachSession registers an already opened repository. An empty id gets a
// generated one; an existing id is replaced.
func (sm *SessionManager) AttachSession(id string, repo *git.Repository) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	s := &Session{
		ID:        id,
		Repo:      repo,
		CreatedAt: time.Now(),
		builder:   graph.NewBuilder(repo, repo, graph.WithLogger(sm.logger)),
	}

	sm.mu.Lock()
	sm.sessions[id] = s
	sm.mu.Unlock()

	sm.logger.Info("session opened", "session", id, "path", repo.Path())
	return s
}

// GetSession retrieves a session by ID.
func (sm *SessionManager) GetSession(id string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// CloseSession forgets a session.
func (sm *SessionManager) CloseSession(id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, ok := sm.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(sm.sessions, id)
	sm.logger.Info("session closed", "session", id)
	return nil
}

// SessionIDs lists the open sessions.
func (sm *SessionManager) SessionIDs() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Config returns the configuration the manager was built with.
func (sm *SessionManager) Config() *config.Config {
	return sm.cfg
}

// BuildGraph builds one window of the session's history. The limit is
// clamped to the configured bounds.
func (sm *SessionManager) BuildGraph(ctx context.Context, id string, scope graph.Scope, skip, limit int) (*graph.CommitGraph, error) {
	s, err := sm.GetSession(id)
	if err != nil {
		return nil, err
	}
	return s.builder.BuildGraph(ctx, scope, skip, sm.cfg.ClampLimit(limit))
}

// BuildGraphs builds several independent windows concurrently. Results are
// in request order; the first failure cancels the rest.
func (sm *SessionManager) BuildGraphs(ctx context.Context, id string, reqs []GraphRequest) ([]*graph.CommitGraph, error) {
	s, err := sm.GetSession(id)
	if err != nil {
		return nil, err
	}

	graphs := make([]*graph.CommitGraph, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			built, err := s.builder.BuildGraph(ctx, req.Scope, req.Skip, sm.cfg.ClampLimit(req.Limit))
			if err != nil {
				return fmt.Errorf("%s: %w", req.Scope, err)
			}
			graphs[i] = built
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return graphs, nil
}

// Refs returns the session's references and HEAD.
func (sm *SessionManager) Refs(ctx context.Context, id string) ([]graph.Ref, graph.Head, error) {
	s, err := sm.GetSession(id)
	if err != nil {
		return nil, graph.Head{}, err
	}
	refs, err := s.Repo.ListRefs(ctx)
	if err != nil {
		return nil, graph.Head{}, err
	}
	head, err := s.Repo.CurrentHead(ctx)
	if err != nil {
		return nil, graph.Head{}, err
	}
	return refs, head, nil
}

// Execute parses and runs a command in the session and records it.
func (sm *SessionManager) Execute(ctx context.Context, id, input string) (string, error) {
	s, err := sm.GetSession(id)
	if err != nil {
		return "", err
	}
	name, args := git.ParseCommand(input)
	if name == "" {
		return "", errors.New("empty command")
	}

	out, err := git.Dispatch(ctx, s.Repo, name, args)

	entry := ReflogEntry{Command: input, Timestamp: time.Now(), Output: out}
	if err != nil {
		entry.Error = err.Error()
		sm.logger.Warn("command failed", "session", id, "command", name, "error", err)
	} else {
		sm.logger.Info("command executed", "session", id, "command", name)
	}
	s.mu.Lock()
	s.reflog = append(s.reflog, entry)
	s.mu.Unlock()

	return out, err
}
