package git

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var (
	// ErrNotOnFirstParentHistory is returned when a rewrite target is not
	// reachable from HEAD through first parents.
	ErrNotOnFirstParentHistory = errors.New("commit is not on the first-parent history of HEAD")

	// ErrMergeInRange is returned when squashing would fold a merge commit.
	ErrMergeInRange = errors.New("range contains a merge commit")
)

// RewriteCommit replaces target, a first-parent ancestor of HEAD or HEAD
// itself, with a copy changed by edit, and replays every commit above it
// with the same trees. The current branch (or detached HEAD) moves to the
// new tip, which is returned.
func RewriteCommit(repo *gogit.Repository, target plumbing.Hash, edit func(*object.Commit)) (plumbing.Hash, error) {
	head, err := headCommit(repo)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	// chain runs from HEAD down to target.
	var chain []*object.Commit
	for c := head; ; {
		chain = append(chain, c)
		if c.Hash == target {
			break
		}
		if c.NumParents() == 0 {
			return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrNotOnFirstParentHistory, target.String()[:7])
		}
		if c, err = c.Parent(0); err != nil {
			return plumbing.ZeroHash, err
		}
	}

	committer := Signature(repo, time.Now())
	var tip plumbing.Hash
	for i := len(chain) - 1; i >= 0; i-- {
		old := chain[i]
		next := &object.Commit{
			Author:       old.Author,
			Committer:    *committer,
			Message:      old.Message,
			TreeHash:     old.TreeHash,
			ParentHashes: append([]plumbing.Hash(nil), old.ParentHashes...),
		}
		if i == len(chain)-1 {
			edit(next)
		} else {
			next.ParentHashes[0] = tip
		}
		if tip, err = storeCommit(repo, next); err != nil {
			return plumbing.ZeroHash, err
		}
	}

	if err := moveHead(repo, tip); err != nil {
		return plumbing.ZeroHash, err
	}
	return tip, nil
}

// Squash collapses the last n commits of HEAD into one carrying HEAD's tree
// and the oldest commit's author. An empty message joins the originals,
// oldest first.
func Squash(repo *gogit.Repository, n int, message string) (plumbing.Hash, error) {
	if n < 2 {
		return plumbing.ZeroHash, fmt.Errorf("squash needs at least 2 commits, got %d", n)
	}
	head, err := headCommit(repo)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	chain := make([]*object.Commit, 0, n)
	for c := head; len(chain) < n; {
		if c.NumParents() > 1 {
			return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrMergeInRange, c.Hash.String()[:7])
		}
		chain = append(chain, c)
		if len(chain) == n {
			break
		}
		if c.NumParents() == 0 {
			return plumbing.ZeroHash, fmt.Errorf("only %d commits in history, cannot squash %d", len(chain), n)
		}
		if c, err = c.Parent(0); err != nil {
			return plumbing.ZeroHash, err
		}
	}

	oldest := chain[len(chain)-1]
	if message == "" {
		msgs := make([]string, 0, len(chain))
		for i := len(chain) - 1; i >= 0; i-- {
			msgs = append(msgs, strings.TrimSpace(chain[i].Message))
		}
		message = strings.Join(msgs, "\n\n")
	}
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}

	squashed := &object.Commit{
		Author:       oldest.Author,
		Committer:    *Signature(repo, time.Now()),
		Message:      message,
		TreeHash:     head.TreeHash,
		ParentHashes: append([]plumbing.Hash(nil), oldest.ParentHashes...),
	}
	h, err := storeCommit(repo, squashed)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if err := moveHead(repo, h); err != nil {
		return plumbing.ZeroHash, err
	}
	return h, nil
}

func headCommit(repo *gogit.Repository) (*object.Commit, error) {
	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	c, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit: %w", err)
	}
	return c, nil
}

func storeCommit(repo *gogit.Repository, c *object.Commit) (plumbing.Hash, error) {
	obj := repo.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode commit: %w", err)
	}
	h, err := repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store commit: %w", err)
	}
	return h, nil
}

// moveHead points the checked out branch, or a detached HEAD, at h.
func moveHead(repo *gogit.Repository, h plumbing.Hash) error {
	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return fmt.Errorf("read HEAD: %w", err)
	}
	name := plumbing.HEAD
	if head.Type() == plumbing.SymbolicReference {
		name = head.Target()
	}
	if err := repo.Storer.SetReference(plumbing.NewHashReference(name, h)); err != nil {
		return fmt.Errorf("update %s: %w", name, err)
	}
	return nil
}
