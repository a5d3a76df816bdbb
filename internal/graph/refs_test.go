package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnotateRefs(t *testing.T) {
	refs := []Ref{
		{Name: "HEAD", Kind: ProviderBranch, TargetID: "c1"},
		{Name: "refs/heads/feature/login", Kind: ProviderBranch, TargetID: "c2"},
		{Name: "refs/heads/main", Kind: ProviderBranch, TargetID: "c1"},
		{Name: "refs/notes/commits", Kind: ProviderInternal, TargetID: "c1"},
		{Name: "refs/remotes/origin/HEAD", Kind: ProviderRemoteBranch, TargetID: "c1"},
		{Name: "refs/remotes/origin/main", Kind: ProviderRemoteBranch, TargetID: "c1"},
		{Name: "refs/stash", Kind: ProviderInternal, TargetID: "c3"},
		{Name: "refs/tags/v1.0", Kind: ProviderTag, TargetID: "c2"},
		{Name: "refs/heads/empty", Kind: ProviderBranch, TargetID: ""},
	}
	head := Head{Attached: true, TargetRefName: "refs/heads/main", TargetID: "c1"}

	got := AnnotateRefs(refs, head)

	assert.Equal(t, []RefAnnotation{
		{Name: "HEAD", Kind: RefHead, IsCurrentHead: true},
		{Name: "main", Kind: RefBranch, IsCurrentHead: true},
		{Name: "origin/main", Kind: RefRemoteBranch},
	}, got["c1"])
	assert.Equal(t, []RefAnnotation{
		{Name: "feature/login", Kind: RefBranch},
		{Name: "v1.0", Kind: RefTag},
	}, got["c2"])
	assert.NotContains(t, got, "c3")
	assert.Len(t, got, 2)
}

func TestAnnotateRefs_DetachedHead(t *testing.T) {
	refs := []Ref{
		{Name: "refs/heads/main", Kind: ProviderBranch, TargetID: "c2"},
	}
	head := Head{Attached: false, TargetID: "c1"}

	got := AnnotateRefs(refs, head)

	assert.Equal(t, []RefAnnotation{{Name: "HEAD", Kind: RefHead, IsCurrentHead: true}}, got["c1"])
	assert.Equal(t, []RefAnnotation{{Name: "main", Kind: RefBranch}}, got["c2"])
}

func TestAnnotateRefs_UnbornBranch(t *testing.T) {
	head := Head{Attached: true, TargetRefName: "refs/heads/main"}
	assert.Empty(t, AnnotateRefs(nil, head))
}

func TestAnnotateRefs_NonStandardNamespaceKeepsProviderKind(t *testing.T) {
	refs := []Ref{{Name: "refs/pull/12/head", Kind: ProviderRemoteBranch, TargetID: "c1"}}

	got := AnnotateRefs(refs, Head{})

	assert.Equal(t, []RefAnnotation{{Name: "refs/pull/12/head", Kind: RefRemoteBranch}}, got["c1"])
}

func TestRefKindString(t *testing.T) {
	assert.Equal(t, "branch", RefBranch.String())
	assert.Equal(t, "remoteBranch", RefRemoteBranch.String())
	assert.Equal(t, "tag", RefTag.String())
	assert.Equal(t, "head", RefHead.String())
	assert.Equal(t, "RefKind(9)", RefKind(9).String())
}
