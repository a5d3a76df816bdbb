package graph

import (
	"context"
	"fmt"
)

// fakeRepo is an in-memory commit and ref provider. order is the full
// traversal order of the history, newest first.
type fakeRepo struct {
	commits map[string]CommitMetadata
	order   []string
	refs    []Ref
	head    Head
	missing map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		commits: make(map[string]CommitMetadata),
		missing: make(map[string]bool),
	}
}

// add records a commit; commits must be added newest first.
func (f *fakeRepo) add(id string, parents ...string) *fakeRepo {
	f.commits[id] = CommitMetadata{
		Parents:         parents,
		AuthorName:      "Test User",
		AuthorEmail:     "test@example.com",
		AuthorTimestamp: int64(1700000000 - len(f.order)),
		Message:         "commit " + id,
	}
	f.order = append(f.order, id)
	return f
}

func (f *fakeRepo) branch(name, target string) *fakeRepo {
	f.refs = append(f.refs, Ref{Name: "refs/heads/" + name, Kind: ProviderBranch, TargetID: target})
	return f
}

func (f *fakeRepo) checkout(name string) *fakeRepo {
	for _, r := range f.refs {
		if r.Name == "refs/heads/"+name {
			f.head = Head{Attached: true, TargetRefName: r.Name, TargetID: r.TargetID}
		}
	}
	return f
}

func (f *fakeRepo) ResolveStart(_ context.Context, scope Scope) (string, error) {
	if scope.Kind == ScopeStart {
		if _, ok := f.commits[scope.Name]; ok {
			return scope.Name, nil
		}
		return "", fmt.Errorf("%w: %s", ErrRefNotFound, scope.Name)
	}
	for _, r := range f.refs {
		if r.Name == "refs/heads/"+scope.Name || r.Name == "refs/remotes/"+scope.Name {
			return r.TargetID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrRefNotFound, scope.Name)
}

func (f *fakeRepo) Traverse(_ context.Context, starts []string, skip, limit int) ([]string, error) {
	reachable := make(map[string]bool)
	queue := append([]string(nil), starts...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reachable[id] {
			continue
		}
		reachable[id] = true
		queue = append(queue, f.commits[id].Parents...)
	}

	var out []string
	for _, id := range f.order {
		if reachable[id] {
			out = append(out, id)
		}
	}
	if skip >= len(out) {
		return []string{}, nil
	}
	out = out[skip:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) MetadataOf(_ context.Context, id string) (*CommitMetadata, error) {
	meta, ok := f.commits[id]
	if !ok || f.missing[id] {
		return nil, fmt.Errorf("%w: %s", ErrCommitNotFound, id)
	}
	return &meta, nil
}

func (f *fakeRepo) ListRefs(context.Context) ([]Ref, error) { return f.refs, nil }

func (f *fakeRepo) CurrentHead(context.Context) (Head, error) { return f.head, nil }

func (f *fakeRepo) builder() *Builder { return NewBuilder(f, f) }

// window builds WindowCommits straight from the fake, in traversal order.
func (f *fakeRepo) window(ids ...string) []WindowCommit {
	out := make([]WindowCommit, 0, len(ids))
	for _, id := range ids {
		out = append(out, WindowCommit{ID: id, CommitMetadata: f.commits[id]})
	}
	return out
}
