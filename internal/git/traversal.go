package git

import (
	"context"
	"time"

	"github.com/emirpasic/gods/queues/priorityqueue"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ctxCheckInterval is how many commits are visited between context checks.
const ctxCheckInterval = 256

// Traverse returns the ids of the commits reachable from starts, newest
// committer date first, with every commit placed after all of its reachable
// children. The first skip entries are dropped and at most limit entries are
// returned; limit <= 0 returns everything.
func (r *Repository) Traverse(ctx context.Context, starts []string, skip, limit int) ([]string, error) {
	if skip < 0 {
		skip = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	commits, err := r.collect(ctx, starts)
	if err != nil {
		return nil, err
	}

	// Kahn's algorithm: a commit becomes ready once all of its collected
	// children have been emitted.
	pending := make(map[plumbing.Hash]int, len(commits))
	for _, c := range commits {
		for _, p := range c.ParentHashes {
			if _, ok := commits[p]; ok {
				pending[p]++
			}
		}
	}

	ready := priorityqueue.NewWith(newestFirst)
	for h, c := range commits {
		if pending[h] == 0 {
			ready.Enqueue(c)
		}
	}

	want := -1
	if limit > 0 {
		want = skip + limit
	}

	ids := make([]string, 0, len(commits))
	emitted := 0
	for !ready.Empty() {
		if want >= 0 && emitted >= want {
			break
		}
		v, _ := ready.Dequeue()
		c := v.(*object.Commit)
		if emitted >= skip {
			ids = append(ids, c.Hash.String())
		}
		emitted++

		for _, p := range c.ParentHashes {
			if _, ok := commits[p]; !ok {
				continue
			}
			pending[p]--
			if pending[p] == 0 {
				ready.Enqueue(commits[p])
			}
		}
	}

	r.logger.Debug("traversed history", "starts", len(starts), "collected", len(commits), "returned", len(ids))
	return ids, nil
}

// collect walks the ancestry of starts breadth first. Unknown starts are
// ignored. Callers hold mu.
func (r *Repository) collect(ctx context.Context, starts []string) (map[plumbing.Hash]*object.Commit, error) {
	commits := make(map[plumbing.Hash]*object.Commit)
	var queue []plumbing.Hash
	for _, id := range starts {
		if !plumbing.IsHash(id) {
			r.logger.Warn("ignoring invalid start", "id", id)
			continue
		}
		queue = append(queue, plumbing.NewHash(id))
	}

	visited := 0
	for len(queue) > 0 {
		if r.maxWalk > 0 && len(commits) >= r.maxWalk {
			r.logger.Warn("traversal reached walk limit", "limit", r.maxWalk)
			break
		}
		if visited%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		visited++

		h := queue[0]
		queue = queue[1:]
		if _, seen := commits[h]; seen {
			continue
		}
		c, err := r.repo.CommitObject(h)
		if err != nil {
			r.logger.Debug("commit unreadable during walk", "id", h.String(), "error", err)
			continue
		}
		commits[h] = c
		queue = append(queue, c.ParentHashes...)
	}
	return commits, nil
}

// newestFirst orders commits by committer date, then author date, newest
// first, and falls back to the hash so the order is total.
func newestFirst(a, b interface{}) int {
	ca := a.(*object.Commit)
	cb := b.(*object.Commit)
	if c := compareTime(ca.Committer.When, cb.Committer.When); c != 0 {
		return c
	}
	if c := compareTime(ca.Author.When, cb.Author.When); c != 0 {
		return c
	}
	switch ha, hb := ca.Hash.String(), cb.Hash.String(); {
	case ha < hb:
		return -1
	case ha > hb:
		return 1
	}
	return 0
}

func compareTime(a, b time.Time) int {
	switch {
	case a.After(b):
		return -1
	case a.Before(b):
		return 1
	}
	return 0
}
