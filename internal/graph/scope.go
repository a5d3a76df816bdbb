package graph

import (
	"fmt"
	"strings"
)

// ScopeKind selects where a traversal starts.
type ScopeKind int

const (
	ScopeAllRefs ScopeKind = iota
	ScopeBranch
	ScopeStart
)

// Scope is the requested history slice: every ref, one branch, or an explicit
// starting point.
type Scope struct {
	Kind ScopeKind
	Name string
}

// AllRefs seeds the traversal from every ref's target.
func AllRefs() Scope { return Scope{Kind: ScopeAllRefs} }

// Branch scopes the traversal to a local or remote branch.
func Branch(name string) Scope { return Scope{Kind: ScopeBranch, Name: name} }

// Start scopes the traversal to a commit identifier or revision.
func Start(id string) Scope { return Scope{Kind: ScopeStart, Name: id} }

func (s Scope) String() string {
	switch s.Kind {
	case ScopeBranch:
		return "branch:" + s.Name
	case ScopeStart:
		return "start:" + s.Name
	default:
		return "all"
	}
}

// ParseScope accepts "all", "branch" or "start" together with a ref name.
func ParseScope(kind, name string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "all":
		return AllRefs(), nil
	case "branch":
		if name == "" {
			return Scope{}, fmt.Errorf("branch scope requires a ref name")
		}
		return Branch(name), nil
	case "start":
		if name == "" {
			return Scope{}, fmt.Errorf("start scope requires a commit id")
		}
		return Start(name), nil
	}
	return Scope{}, fmt.Errorf("unknown scope %q", kind)
}
