package git

import (
	"fmt"
	"path/filepath"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/kurobon/gitgraph/internal/logging"
)

const (
	// DefaultMaxWalk bounds how many commits a single traversal collects.
	DefaultMaxWalk = 20000

	// DefaultCacheSize is the number of commit metadata entries kept in memory.
	DefaultCacheSize = 4096
)

// Repository wraps a go-git repository and serves it to the graph engine as
// both commit provider and ref provider. go-git repositories are not safe
// for concurrent use, so every access goes through mu.
type Repository struct {
	repo    *gogit.Repository
	path    string
	mu      sync.Mutex
	cache   *metadataCache
	maxWalk int
	logger  logging.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithMaxWalk bounds the number of commits collected per traversal.
// Zero or a negative value removes the bound.
func WithMaxWalk(n int) Option {
	return func(r *Repository) { r.maxWalk = n }
}

// WithCacheSize sets the metadata cache size. Zero disables the cache.
func WithCacheSize(n int) Option {
	return func(r *Repository) { r.cache = newMetadataCache(n) }
}

// WithLogger sets the repository logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// Open opens the repository containing path, searching parent directories
// for the .git directory.
func Open(path string, opts ...Option) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", path, err)
	}
	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", abs, err)
	}
	r := New(repo, opts...)
	r.path = abs
	return r, nil
}

// New wraps an already opened go-git repository.
func New(repo *gogit.Repository, opts ...Option) *Repository {
	r := &Repository{
		repo:    repo,
		cache:   newMetadataCache(DefaultCacheSize),
		maxWalk: DefaultMaxWalk,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the path the repository was opened from, if any.
func (r *Repository) Path() string {
	return r.path
}

// GitDir returns the on-disk git directory, or "" for in-memory storage.
func (r *Repository) GitDir() string {
	if st, ok := r.repo.Storer.(*filesystem.Storage); ok {
		return st.Filesystem().Root()
	}
	return ""
}

// Lock gives a caller exclusive use of the underlying repository, for
// operations that mutate it.
func (r *Repository) Lock() {
	r.mu.Lock()
}

// Unlock releases the lock taken by Lock.
func (r *Repository) Unlock() {
	r.mu.Unlock()
}

// Raw returns the go-git repository. Callers must hold the lock.
func (r *Repository) Raw() *gogit.Repository {
	return r.repo
}

// Logger returns the repository logger.
func (r *Repository) Logger() logging.Logger {
	return r.logger
}
