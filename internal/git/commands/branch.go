package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/kurobon/gitgraph/internal/git"
)

func init() {
	git.RegisterCommand("branch", func() git.Command { return &BranchCommand{} })
}

// BranchCommand lists, creates, renames and deletes local branches.
type BranchCommand struct{}

var _ git.Command = (*BranchCommand)(nil)

func (c *BranchCommand) Execute(ctx context.Context, repo *git.Repository, args []string) (string, error) {
	var (
		deleteMode bool
		moveMode   bool
		force      bool
		names      []string
	)
	for _, arg := range args[1:] {
		switch arg {
		case "-h", "--help":
			return c.Help(), nil
		case "-d", "--delete":
			deleteMode = true
		case "-D":
			deleteMode = true
			force = true
		case "-m", "--move":
			moveMode = true
		case "-f", "--force":
			force = true
		default:
			if strings.HasPrefix(arg, "-") {
				return "", fmt.Errorf("unknown option: %s", arg)
			}
			names = append(names, arg)
		}
	}

	repo.Lock()
	defer repo.Unlock()
	b := branchOps{repo: repo}

	switch {
	case deleteMode:
		if len(names) != 1 {
			return "", fmt.Errorf("usage: branch -d <name>")
		}
		return b.delete(names[0], force)
	case moveMode:
		if len(names) != 2 {
			return "", fmt.Errorf("usage: branch -m <old> <new>")
		}
		return b.rename(names[0], names[1], force)
	case len(names) == 0:
		return b.list()
	case len(names) <= 2:
		start := "HEAD"
		if len(names) == 2 {
			start = names[1]
		}
		return b.create(names[0], start, force)
	default:
		return "", fmt.Errorf("too many arguments")
	}
}

// branchOps runs with the repository lock held.
type branchOps struct {
	repo *git.Repository
}

func (b branchOps) current() plumbing.ReferenceName {
	head, err := b.repo.Raw().Storer.Reference(plumbing.HEAD)
	if err != nil || head.Type() != plumbing.SymbolicReference {
		return ""
	}
	return head.Target()
}

func (b branchOps) list() (string, error) {
	iter, err := b.repo.Raw().Branches()
	if err != nil {
		return "", err
	}
	var names []plumbing.ReferenceName
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name())
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	current := b.current()
	var sb strings.Builder
	for _, n := range names {
		prefix := "  "
		if n == current {
			prefix = "* "
		}
		sb.WriteString(prefix + n.Short() + "\n")
	}
	return sb.String(), nil
}

func (b branchOps) create(name, start string, force bool) (string, error) {
	refName := plumbing.NewBranchReferenceName(name)
	if err := refName.Validate(); err != nil {
		return "", fmt.Errorf("'%s' is not a valid branch name", name)
	}
	raw := b.repo.Raw()
	if _, err := raw.Storer.Reference(refName); err == nil && !force {
		return "", fmt.Errorf("a branch named '%s' already exists", name)
	}
	if force && refName == b.current() {
		return "", fmt.Errorf("cannot force update the current branch")
	}

	target, err := resolveCommit(raw, start)
	if err != nil {
		return "", err
	}
	if err := raw.Storer.SetReference(plumbing.NewHashReference(refName, target.Hash)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Created branch %s at %s", name, short(target)), nil
}

func (b branchOps) delete(name string, force bool) (string, error) {
	refName := plumbing.NewBranchReferenceName(name)
	raw := b.repo.Raw()
	ref, err := raw.Storer.Reference(refName)
	if err != nil {
		return "", fmt.Errorf("branch '%s' not found", name)
	}
	if refName == b.current() {
		return "", fmt.Errorf("cannot delete branch '%s' checked out", name)
	}
	if !force {
		merged, err := b.mergedIntoHead(ref.Hash())
		if err != nil {
			return "", err
		}
		if !merged {
			return "", fmt.Errorf("the branch '%s' is not fully merged, use -D to delete it anyway", name)
		}
	}
	if err := raw.Storer.RemoveReference(refName); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted branch %s (was %s)", name, ref.Hash().String()[:7]), nil
}

func (b branchOps) mergedIntoHead(h plumbing.Hash) (bool, error) {
	raw := b.repo.Raw()
	headRef, err := raw.Head()
	if err != nil {
		return false, nil
	}
	if headRef.Hash() == h {
		return true, nil
	}
	tip, err := raw.CommitObject(h)
	if err != nil {
		return false, err
	}
	head, err := raw.CommitObject(headRef.Hash())
	if err != nil {
		return false, err
	}
	return tip.IsAncestor(head)
}

func (b branchOps) rename(oldName, newName string, force bool) (string, error) {
	raw := b.repo.Raw()
	oldRef := plumbing.NewBranchReferenceName(oldName)
	newRef := plumbing.NewBranchReferenceName(newName)
	if err := newRef.Validate(); err != nil {
		return "", fmt.Errorf("'%s' is not a valid branch name", newName)
	}
	ref, err := raw.Storer.Reference(oldRef)
	if err != nil {
		return "", fmt.Errorf("branch '%s' not found", oldName)
	}
	if _, err := raw.Storer.Reference(newRef); err == nil && !force {
		return "", fmt.Errorf("a branch named '%s' already exists", newName)
	}

	if err := raw.Storer.SetReference(plumbing.NewHashReference(newRef, ref.Hash())); err != nil {
		return "", err
	}
	if oldRef == b.current() {
		if err := raw.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, newRef)); err != nil {
			return "", err
		}
	}
	if err := raw.Storer.RemoveReference(oldRef); err != nil {
		return "", err
	}
	return fmt.Sprintf("Renamed branch %s to %s", oldName, newName), nil
}

func (c *BranchCommand) Help() string {
	return `usage: branch [-f] <name> [<start>]
       branch (-d | -D) <name>
       branch -m <old> <new>

List local branches, or create, delete or rename one. A branch that is
not merged into HEAD is only deleted with -D.`
}
