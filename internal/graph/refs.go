package graph

import "strings"

const (
	headName           = "HEAD"
	branchPrefix       = "refs/heads/"
	remoteBranchPrefix = "refs/remotes/"
	tagPrefix          = "refs/tags/"
)

// skippedRefs are internal refs that never show up as annotations.
var skippedRefs = map[string]bool{
	headName:           true,
	"ORIG_HEAD":        true,
	"FETCH_HEAD":       true,
	"MERGE_HEAD":       true,
	"CHERRY_PICK_HEAD": true,
	"REVERT_HEAD":      true,
	"refs/stash":       true,
}

var skippedRefPrefixes = []string{
	"refs/notes/",
	"refs/original/",
}

func isSkippedRef(ref Ref) bool {
	if ref.Kind == ProviderInternal || skippedRefs[ref.Name] {
		return true
	}
	for _, prefix := range skippedRefPrefixes {
		if strings.HasPrefix(ref.Name, prefix) {
			return true
		}
	}
	// refs/remotes/<remote>/HEAD mirrors another remote branch.
	return strings.HasPrefix(ref.Name, remoteBranchPrefix) && strings.HasSuffix(ref.Name, "/"+headName)
}

// classifyRef decides the annotation kind and display name of a ref by its
// namespace. Refs outside the standard namespaces keep the provider's kind.
func classifyRef(ref Ref) (RefKind, string) {
	switch {
	case strings.HasPrefix(ref.Name, branchPrefix):
		return RefBranch, strings.TrimPrefix(ref.Name, branchPrefix)
	case strings.HasPrefix(ref.Name, remoteBranchPrefix):
		return RefRemoteBranch, strings.TrimPrefix(ref.Name, remoteBranchPrefix)
	case strings.HasPrefix(ref.Name, tagPrefix):
		return RefTag, strings.TrimPrefix(ref.Name, tagPrefix)
	}
	switch ref.Kind {
	case ProviderRemoteBranch:
		return RefRemoteBranch, ref.Name
	case ProviderTag:
		return RefTag, ref.Name
	default:
		return RefBranch, ref.Name
	}
}

// AnnotateRefs groups refs by the commit they point at. When HEAD is attached
// to a listed branch, a synthetic head annotation precedes that branch's own
// annotation and both are marked current. A detached HEAD gets a lone head
// annotation at its target.
func AnnotateRefs(refs []Ref, head Head) map[string][]RefAnnotation {
	byCommit := make(map[string][]RefAnnotation)

	if !head.Attached && head.TargetID != "" {
		byCommit[head.TargetID] = append(byCommit[head.TargetID], RefAnnotation{
			Name:          headName,
			Kind:          RefHead,
			IsCurrentHead: true,
		})
	}

	for _, ref := range refs {
		if ref.TargetID == "" || isSkippedRef(ref) {
			continue
		}
		kind, name := classifyRef(ref)

		current := head.Attached && head.TargetRefName == ref.Name
		if current {
			byCommit[ref.TargetID] = append(byCommit[ref.TargetID], RefAnnotation{
				Name:          headName,
				Kind:          RefHead,
				IsCurrentHead: true,
			})
		}
		byCommit[ref.TargetID] = append(byCommit[ref.TargetID], RefAnnotation{
			Name:          name,
			Kind:          kind,
			IsCurrentHead: current,
		})
	}
	return byCommit
}
