package git

import (
	"context"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/gitgraph/internal/graph"
)

func linear(r *testRepo, n int) []plumbing.Hash {
	var out []plumbing.Hash
	var parents []plumbing.Hash
	for i := 0; i < n; i++ {
		h := r.commit("commit", parents...)
		out = append(out, h)
		parents = []plumbing.Hash{h}
	}
	return out
}

func TestTraverse(t *testing.T) {
	ctx := context.Background()

	t.Run("linear history newest first", func(t *testing.T) {
		r := newTestRepo(t)
		c := linear(r, 3)

		ids, err := r.repository().Traverse(ctx, hashes(c[2]), 0, 0)
		require.NoError(t, err)
		assert.Equal(t, hashes(c[2], c[1], c[0]), ids)
	})

	t.Run("children come before parents despite clock skew", func(t *testing.T) {
		r := newTestRepo(t)
		a := r.commitAt("a", epoch.Add(1*time.Hour))
		b := r.commitAt("b", epoch.Add(3*time.Hour), a)
		c := r.commitAt("c", epoch.Add(2*time.Hour), b)

		ids, err := r.repository().Traverse(ctx, hashes(c), 0, 0)
		require.NoError(t, err)
		assert.Equal(t, hashes(c, b, a), ids)
	})

	t.Run("branches interleave by date", func(t *testing.T) {
		r := newTestRepo(t)
		root := r.commit("root")
		x1 := r.commit("x1", root)
		y1 := r.commit("y1", root)
		x2 := r.commit("x2", x1)

		ids, err := r.repository().Traverse(ctx, hashes(x2, y1), 0, 0)
		require.NoError(t, err)
		assert.Equal(t, hashes(x2, y1, x1, root), ids)
	})

	t.Run("skip and limit", func(t *testing.T) {
		r := newTestRepo(t)
		c := linear(r, 5)
		repo := r.repository()

		ids, err := repo.Traverse(ctx, hashes(c[4]), 1, 2)
		require.NoError(t, err)
		assert.Equal(t, hashes(c[3], c[2]), ids)

		ids, err = repo.Traverse(ctx, hashes(c[4]), 10, 2)
		require.NoError(t, err)
		assert.Empty(t, ids)

		ids, err = repo.Traverse(ctx, hashes(c[4]), -3, 1)
		require.NoError(t, err)
		assert.Equal(t, hashes(c[4]), ids)
	})

	t.Run("walk limit bounds collection", func(t *testing.T) {
		r := newTestRepo(t)
		c := linear(r, 5)

		ids, err := r.repository(WithMaxWalk(2)).Traverse(ctx, hashes(c[4]), 0, 0)
		require.NoError(t, err)
		assert.Equal(t, hashes(c[4], c[3]), ids)
	})

	t.Run("unknown and invalid starts are ignored", func(t *testing.T) {
		r := newTestRepo(t)
		c := linear(r, 2)
		missing := plumbing.NewHash("1111111111111111111111111111111111111111")

		ids, err := r.repository().Traverse(ctx, []string{"nope", missing.String(), c[1].String()}, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, hashes(c[1], c[0]), ids)
	})

	t.Run("canceled context", func(t *testing.T) {
		r := newTestRepo(t)
		c := linear(r, 2)
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := r.repository().Traverse(canceled, hashes(c[1]), 0, 0)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMetadataOf(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	a := r.commit("first")
	b := r.commit("second", a)
	repo := r.repository()

	meta, err := repo.MetadataOf(ctx, b.String())
	require.NoError(t, err)
	assert.Equal(t, hashes(a), meta.Parents)
	assert.Equal(t, "Tester", meta.AuthorName)
	assert.Equal(t, "tester@example.com", meta.AuthorEmail)
	assert.Equal(t, epoch.Add(2*time.Minute).Unix(), meta.AuthorTimestamp)
	assert.Equal(t, "second\n", meta.Message)

	// Mutating a result must not leak into the cache.
	meta.Parents[0] = "changed"
	again, err := repo.MetadataOf(ctx, b.String())
	require.NoError(t, err)
	assert.Equal(t, hashes(a), again.Parents)

	_, err = repo.MetadataOf(ctx, "1111111111111111111111111111111111111111")
	assert.ErrorIs(t, err, graph.ErrCommitNotFound)

	_, err = repo.MetadataOf(ctx, "not-a-hash")
	assert.ErrorIs(t, err, graph.ErrCommitNotFound)
}

func TestMetadataOf_CacheDisabled(t *testing.T) {
	r := newTestRepo(t)
	a := r.commit("only")

	meta, err := r.repository(WithCacheSize(0)).MetadataOf(context.Background(), a.String())
	require.NoError(t, err)
	assert.Empty(t, meta.Parents)
}

func TestListRefs(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	a := r.commit("a")
	b := r.commit("b", a)
	r.branch("main", b)
	r.branch("feature", a)
	r.setRef("refs/remotes/origin/main", a)
	r.setRef("refs/stash", b)
	r.setRef("refs/tags/light", a)
	r.checkout("main")

	_, err := r.raw.CreateTag("v1.0", b, &gogit.CreateTagOptions{
		Tagger:  &object.Signature{Name: "Tester", Email: "tester@example.com", When: epoch},
		Message: "release",
	})
	require.NoError(t, err)
	r.setRef("refs/tags/tree-tag", r.tree)

	refs, err := r.repository().ListRefs(ctx)
	require.NoError(t, err)

	assert.Equal(t, []graph.Ref{
		{Name: "refs/heads/feature", Kind: graph.ProviderBranch, TargetID: a.String()},
		{Name: "refs/heads/main", Kind: graph.ProviderBranch, TargetID: b.String()},
		{Name: "refs/remotes/origin/main", Kind: graph.ProviderRemoteBranch, TargetID: a.String()},
		{Name: "refs/stash", Kind: graph.ProviderInternal, TargetID: b.String()},
		{Name: "refs/tags/light", Kind: graph.ProviderTag, TargetID: a.String()},
		{Name: "refs/tags/v1.0", Kind: graph.ProviderTag, TargetID: b.String()},
	}, refs)
}

func TestCurrentHead(t *testing.T) {
	ctx := context.Background()

	t.Run("unborn", func(t *testing.T) {
		r := newTestRepo(t)
		head, err := r.repository().CurrentHead(ctx)
		require.NoError(t, err)
		assert.True(t, head.Attached)
		assert.Equal(t, "refs/heads/master", head.TargetRefName)
		assert.Empty(t, head.TargetID)
	})

	t.Run("attached", func(t *testing.T) {
		r := newTestRepo(t)
		a := r.commit("a")
		r.branch("main", a)
		r.checkout("main")

		head, err := r.repository().CurrentHead(ctx)
		require.NoError(t, err)
		assert.Equal(t, graph.Head{Attached: true, TargetRefName: "refs/heads/main", TargetID: a.String()}, head)
	})

	t.Run("detached", func(t *testing.T) {
		r := newTestRepo(t)
		a := r.commit("a")
		r.detach(a)

		head, err := r.repository().CurrentHead(ctx)
		require.NoError(t, err)
		assert.Equal(t, graph.Head{TargetID: a.String()}, head)
	})
}

func TestResolveStart(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	a := r.commit("a")
	b := r.commit("b", a)
	r.branch("main", b)
	r.setRef("refs/remotes/origin/topic", a)
	repo := r.repository()

	tests := []struct {
		name     string
		scope    graph.Scope
		expected plumbing.Hash
	}{
		{"local branch", graph.Branch("main"), b},
		{"remote branch", graph.Branch("origin/topic"), a},
		{"full ref name", graph.Branch("refs/heads/main"), b},
		{"full hash", graph.Start(a.String()), a},
		{"short hash", graph.Start(a.String()[:7]), a},
		{"revision", graph.Start("main~1"), a},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := repo.ResolveStart(ctx, tt.scope)
			require.NoError(t, err)
			assert.Equal(t, tt.expected.String(), id)
		})
	}

	_, err := repo.ResolveStart(ctx, graph.Branch("missing"))
	assert.ErrorIs(t, err, graph.ErrRefNotFound)

	_, err = repo.ResolveStart(ctx, graph.Start("deadbeef"))
	assert.ErrorIs(t, err, graph.ErrRefNotFound)
}

func TestRepository_FeedsBuilder(t *testing.T) {
	r := newTestRepo(t)
	root := r.commit("root")
	a1 := r.commit("a1", root)
	b1 := r.commit("b1", root)
	m := r.commit("merge", a1, b1)
	r.branch("main", m)
	r.branch("topic", b1)
	r.checkout("main")
	repo := r.repository()

	g, err := graph.NewBuilder(repo, repo).BuildGraph(context.Background(), graph.AllRefs(), 0, 0)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 4)
	assert.Equal(t, m.String(), g.Nodes[0].ID)
	assert.True(t, g.Nodes[0].IsMerge)
	assert.Equal(t, root.String(), g.Nodes[3].ID)
	assert.True(t, g.Nodes[3].IsFork)
	assert.Equal(t, 1, g.MaxLane)

	top := g.Node(m.String())
	require.NotNil(t, top)
	require.Len(t, top.Refs, 2)
	assert.Equal(t, graph.RefHead, top.Refs[0].Kind)
	assert.Equal(t, "main", top.Refs[1].Name)
}
