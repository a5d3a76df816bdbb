package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/kurobon/gitgraph/internal/graph"
)

// minShortHash is the shortest abbreviated commit id accepted.
const minShortHash = 4

// ErrAmbiguousRevision is returned when a short hash matches several commits.
var ErrAmbiguousRevision = errors.New("ambiguous revision")

// ResolveStart turns a branch or start scope into a commit id.
func (r *Repository) ResolveStart(ctx context.Context, scope graph.Scope) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch scope.Kind {
	case graph.ScopeBranch:
		candidates := []plumbing.ReferenceName{
			plumbing.NewBranchReferenceName(scope.Name),
			plumbing.ReferenceName("refs/remotes/" + scope.Name),
			plumbing.ReferenceName(scope.Name),
		}
		for _, name := range candidates {
			ref, err := r.repo.Reference(name, true)
			if err != nil {
				continue
			}
			target, err := r.peel(ref.Hash())
			if err != nil {
				return "", fmt.Errorf("%w: %s: %v", graph.ErrRefNotFound, scope.Name, err)
			}
			return target.String(), nil
		}
		return "", fmt.Errorf("%w: %s", graph.ErrRefNotFound, scope.Name)

	case graph.ScopeStart:
		h, err := ResolveRevision(r.repo, scope.Name)
		if err != nil {
			return "", fmt.Errorf("%w: %v", graph.ErrRefNotFound, err)
		}
		return h.String(), nil

	default:
		return "", fmt.Errorf("scope %s has no single start", scope)
	}
}

// ResolveRevision resolves a branch, tag, full hash or abbreviated hash to a
// commit hash.
func ResolveRevision(repo *gogit.Repository, rev string) (plumbing.Hash, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		return plumbing.ZeroHash, errors.New("empty revision")
	}
	if h, err := repo.ResolveRevision(plumbing.Revision(rev)); err == nil {
		return *h, nil
	}

	if len(rev) < minShortHash || len(rev) >= 40 || !isHex(rev) {
		return plumbing.ZeroHash, fmt.Errorf("revision %q not found", rev)
	}

	prefix := strings.ToLower(rev)
	iter, err := repo.CommitObjects()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	defer iter.Close()

	var match plumbing.Hash
	found, ambiguous := false, false
	err = iter.ForEach(func(c *object.Commit) error {
		if !strings.HasPrefix(c.Hash.String(), prefix) {
			return nil
		}
		if found {
			ambiguous = true
			return storer.ErrStop
		}
		match, found = c.Hash, true
		return nil
	})
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if ambiguous {
		return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrAmbiguousRevision, rev)
	}
	if !found {
		return plumbing.ZeroHash, fmt.Errorf("revision %q not found", rev)
	}
	return match, nil
}

func isHex(s string) bool {
	for _, c := range strings.ToLower(s) {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
