package graph

import (
	"context"
	"fmt"
)

// ProviderRefKind is the provider-side classification of a ref. Internal refs
// such as the stash are listed so callers can see them, but never annotated.
type ProviderRefKind int

const (
	ProviderBranch ProviderRefKind = iota
	ProviderRemoteBranch
	ProviderTag
	ProviderInternal
)

var providerRefKindNames = map[ProviderRefKind]string{
	ProviderBranch:       "branch",
	ProviderRemoteBranch: "remoteBranch",
	ProviderTag:          "tag",
	ProviderInternal:     "internal",
}

func (k ProviderRefKind) String() string {
	if name, ok := providerRefKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ProviderRefKind(%d)", int(k))
}

// Ref is one named reference as listed by a RefProvider. Name is the full
// reference name (refs/heads/main) and TargetID the commit it resolves to;
// tags are already peeled.
type Ref struct {
	Name     string
	Kind     ProviderRefKind
	TargetID string
}

// Head describes HEAD. TargetRefName is the full name of the branch HEAD
// points at when attached; TargetID is empty for an unborn branch.
type Head struct {
	Attached      bool
	TargetRefName string
	TargetID      string
}

// CommitProvider supplies commit windows and commit metadata.
type CommitProvider interface {
	// ResolveStart resolves a branch or start scope. It returns an error
	// wrapping ErrRefNotFound when the name does not exist.
	ResolveStart(ctx context.Context, scope Scope) (string, error)

	// Traverse returns commit ids reachable from starts, descendants before
	// ancestors, after dropping skip items and keeping at most limit.
	// A limit <= 0 means no limit.
	Traverse(ctx context.Context, starts []string, skip, limit int) ([]string, error)

	// MetadataOf returns an error wrapping ErrCommitNotFound for commits that
	// cannot be read.
	MetadataOf(ctx context.Context, id string) (*CommitMetadata, error)
}

// RefProvider supplies the repository's named references.
type RefProvider interface {
	ListRefs(ctx context.Context) ([]Ref, error)
	CurrentHead(ctx context.Context) (Head, error)
}
