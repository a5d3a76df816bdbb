package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/kurobon/gitgraph/internal/graph"
)

// maxPeel bounds tag-of-tag chains.
const maxPeel = 16

// ListRefs returns every direct reference in the repository sorted by full
// name, with annotated tags peeled to the commit they point at. References
// that do not end at a commit are skipped.
func (r *Repository) ListRefs(ctx context.Context) ([]graph.Ref, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	iter, err := r.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer iter.Close()

	var refs []graph.Ref
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference || ref.Name() == plumbing.HEAD {
			return nil
		}
		target, err := r.peel(ref.Hash())
		if err != nil {
			r.logger.Debug("skipping reference", "ref", ref.Name().String(), "error", err)
			return nil
		}
		refs = append(refs, graph.Ref{
			Name:     ref.Name().String(),
			Kind:     providerKind(ref.Name()),
			TargetID: target.String(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// CurrentHead reports where HEAD points. An unborn branch yields an attached
// head with an empty target id, a repository without HEAD yields the zero Head.
func (r *Repository) CurrentHead(ctx context.Context) (graph.Head, error) {
	if err := ctx.Err(); err != nil {
		return graph.Head{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ref, err := r.repo.Storer.Reference(plumbing.HEAD)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return graph.Head{}, nil
	}
	if err != nil {
		return graph.Head{}, fmt.Errorf("read HEAD: %w", err)
	}

	if ref.Type() != plumbing.SymbolicReference {
		return graph.Head{TargetID: ref.Hash().String()}, nil
	}

	head := graph.Head{Attached: true, TargetRefName: ref.Target().String()}
	target, err := r.repo.Storer.Reference(ref.Target())
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound):
	case err != nil:
		return graph.Head{}, fmt.Errorf("read %s: %w", ref.Target(), err)
	default:
		head.TargetID = target.Hash().String()
	}
	return head, nil
}

func providerKind(name plumbing.ReferenceName) graph.ProviderRefKind {
	switch {
	case name.IsBranch():
		return graph.ProviderBranch
	case name.IsRemote():
		return graph.ProviderRemoteBranch
	case name.IsTag():
		return graph.ProviderTag
	case strings.HasPrefix(name.String(), "refs/pull/"), strings.HasPrefix(name.String(), "refs/merge-requests/"):
		return graph.ProviderRemoteBranch
	default:
		return graph.ProviderInternal
	}
}

// peel follows annotated tags until it reaches a commit. Callers hold mu.
func (r *Repository) peel(h plumbing.Hash) (plumbing.Hash, error) {
	for i := 0; i < maxPeel; i++ {
		tag, err := r.repo.TagObject(h)
		if err != nil {
			if _, err := r.repo.CommitObject(h); err != nil {
				return plumbing.ZeroHash, fmt.Errorf("%s is not a commit: %w", h, err)
			}
			return h, nil
		}
		h = tag.Target
	}
	return plumbing.ZeroHash, fmt.Errorf("tag chain at %s is too deep", h)
}
