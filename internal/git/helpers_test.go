package git

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// testRepo builds commit graphs directly in object storage, with full
// control over parents and dates.
type testRepo struct {
	t     *testing.T
	raw   *gogit.Repository
	tree  plumbing.Hash
	clock time.Time
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	raw, err := gogit.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)

	obj := raw.Storer.NewEncodedObject()
	require.NoError(t, (&object.Tree{}).Encode(obj))
	tree, err := raw.Storer.SetEncodedObject(obj)
	require.NoError(t, err)

	return &testRepo{t: t, raw: raw, tree: tree, clock: epoch}
}

// commit stores a commit one minute after the previous one.
func (r *testRepo) commit(msg string, parents ...plumbing.Hash) plumbing.Hash {
	r.clock = r.clock.Add(time.Minute)
	return r.commitAt(msg, r.clock, parents...)
}

func (r *testRepo) commitAt(msg string, when time.Time, parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()
	sig := object.Signature{Name: "Tester", Email: "tester@example.com", When: when}
	h, err := storeCommit(r.raw, &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      msg + "\n",
		TreeHash:     r.tree,
		ParentHashes: parents,
	})
	require.NoError(r.t, err)
	return h
}

func (r *testRepo) setRef(name string, h plumbing.Hash) {
	r.t.Helper()
	require.NoError(r.t, r.raw.Storer.SetReference(plumbing.NewHashReference(plumbing.ReferenceName(name), h)))
}

func (r *testRepo) branch(name string, h plumbing.Hash) {
	r.setRef("refs/heads/"+name, h)
}

func (r *testRepo) checkout(name string) {
	r.t.Helper()
	ref := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(name))
	require.NoError(r.t, r.raw.Storer.SetReference(ref))
}

func (r *testRepo) detach(h plumbing.Hash) {
	r.setRef("HEAD", h)
}

func (r *testRepo) repository(opts ...Option) *Repository {
	return New(r.raw, opts...)
}

func (r *testRepo) message(h plumbing.Hash) string {
	r.t.Helper()
	c, err := r.raw.CommitObject(h)
	require.NoError(r.t, err)
	return c.Message
}

func (r *testRepo) head() *object.Commit {
	r.t.Helper()
	c, err := headCommit(r.raw)
	require.NoError(r.t, err)
	return c
}

func hashes(hs ...plumbing.Hash) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.String()
	}
	return out
}
