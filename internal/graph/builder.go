package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/kurobon/gitgraph/internal/logging"
)

// Builder is the single entry point of the graph engine. It holds no state
// between calls; concurrent calls for different windows are independent.
type Builder struct {
	commits CommitProvider
	refs    RefProvider
	logger  logging.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used to report omitted commits.
func WithLogger(l logging.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder over the two collaborators.
func NewBuilder(commits CommitProvider, refs RefProvider, opts ...Option) *Builder {
	b := &Builder{
		commits: commits,
		refs:    refs,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildGraph fetches the window for scope and returns its lane-annotated graph.
// It fails with an error wrapping ErrRefNotFound before any graph work when
// the scope does not resolve. Unreadable commits are omitted.
func (b *Builder) BuildGraph(ctx context.Context, scope Scope, skip, limit int) (*CommitGraph, error) {
	if skip < 0 {
		skip = 0
	}

	// 1. Resolve where the traversal starts
	var (
		starts   []string
		refs     []Ref
		head     Head
		haveRefs bool
	)
	switch scope.Kind {
	case ScopeAllRefs:
		var err error
		refs, err = b.refs.ListRefs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list refs: %w", err)
		}
		haveRefs = true
		head, err = b.refs.CurrentHead(ctx)
		if err != nil {
			return nil, fmt.Errorf("read HEAD: %w", err)
		}
		starts = seedsFromRefs(refs, head)
	case ScopeBranch, ScopeStart:
		id, err := b.commits.ResolveStart(ctx, scope)
		if err != nil {
			if errors.Is(err, ErrRefNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("resolve %s: %w", scope, err)
		}
		starts = []string{id}
	default:
		return nil, fmt.Errorf("unknown scope kind %d", scope.Kind)
	}

	// 2. Fetch the window
	ids, err := b.commits.Traverse(ctx, starts, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("traverse %s: %w", scope, err)
	}
	window, err := b.loadWindow(ctx, ids)
	if err != nil {
		return nil, err
	}

	// 3. Ref annotations
	// An all-refs build reuses the refs and HEAD it was seeded from.
	if !haveRefs {
		refs, err = b.refs.ListRefs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list refs: %w", err)
		}
		head, err = b.refs.CurrentHead(ctx)
		if err != nil {
			return nil, fmt.Errorf("read HEAD: %w", err)
		}
	}

	g := Assemble(window, AnnotateRefs(refs, head))
	b.logger.Debug("graph built", "scope", scope.String(), "skip", skip, "limit", limit,
		"commits", g.TotalCommits, "maxLane", g.MaxLane)
	return g, nil
}

// loadWindow resolves metadata for every id. Commits that cannot be read and
// ids that repeat are dropped and reported.
func (b *Builder) loadWindow(ctx context.Context, ids []string) ([]WindowCommit, error) {
	window := make([]WindowCommit, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if seen[id] {
			b.logger.Warn("commit revisited in traversal, omitting", "id", id)
			continue
		}
		seen[id] = true

		meta, err := b.commits.MetadataOf(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			b.logger.Warn("omitting unreadable commit", "id", id, "error", err)
			continue
		}
		window = append(window, WindowCommit{ID: id, CommitMetadata: *meta})
	}
	return window, nil
}

// seedsFromRefs collects every ref target plus HEAD, in listing order,
// without duplicates. Internal refs do not seed the traversal.
func seedsFromRefs(refs []Ref, head Head) []string {
	var seeds []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		seeds = append(seeds, id)
	}

	add(head.TargetID)
	for _, ref := range refs {
		if isSkippedRef(ref) {
			continue
		}
		add(ref.TargetID)
	}
	return seeds
}
