package git

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/golang/groupcache/lru"

	"github.com/kurobon/gitgraph/internal/graph"
)

// metadataCache keeps converted commit metadata. Commits are content
// addressed, so entries never go stale. Callers hold Repository.mu.
type metadataCache struct {
	lru *lru.Cache
}

func newMetadataCache(size int) *metadataCache {
	if size <= 0 {
		return &metadataCache{}
	}
	return &metadataCache{lru: lru.New(size)}
}

func (c *metadataCache) get(id string) (graph.CommitMetadata, bool) {
	if c == nil || c.lru == nil {
		return graph.CommitMetadata{}, false
	}
	v, ok := c.lru.Get(id)
	if !ok {
		return graph.CommitMetadata{}, false
	}
	return v.(graph.CommitMetadata), true
}

func (c *metadataCache) add(id string, meta graph.CommitMetadata) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(id, meta)
}

// MetadataOf returns the parents, author and message of a commit.
func (r *Repository) MetadataOf(ctx context.Context, id string) (*graph.CommitMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !plumbing.IsHash(id) {
		return nil, fmt.Errorf("%w: %q is not a commit id", graph.ErrCommitNotFound, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if meta, ok := r.cache.get(id); ok {
		return cloneMetadata(meta), nil
	}

	c, err := r.repo.CommitObject(plumbing.NewHash(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", graph.ErrCommitNotFound, id, err)
	}
	meta := toMetadata(c)
	r.cache.add(id, meta)
	return cloneMetadata(meta), nil
}

func toMetadata(c *object.Commit) graph.CommitMetadata {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	return graph.CommitMetadata{
		Parents:         parents,
		AuthorName:      c.Author.Name,
		AuthorEmail:     c.Author.Email,
		AuthorTimestamp: c.Author.When.Unix(),
		Message:         c.Message,
	}
}

// cloneMetadata copies the parent list so callers cannot touch cached data.
func cloneMetadata(meta graph.CommitMetadata) *graph.CommitMetadata {
	meta.Parents = append([]string(nil), meta.Parents...)
	return &meta
}
