package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"

	"github.com/kurobon/gitgraph/internal/git"
)

func init() {
	git.RegisterCommand("revert", func() git.Command { return &RevertCommand{} })
}

// RevertCommand records a new commit undoing an existing one.
type RevertCommand struct{}

var _ git.Command = (*RevertCommand)(nil)

func (c *RevertCommand) Execute(ctx context.Context, repo *git.Repository, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("usage: revert <commit>")
	}

	repo.Lock()
	defer repo.Unlock()
	raw := repo.Raw()

	target, err := resolveCommit(raw, args[1])
	if err != nil {
		return "", err
	}
	switch target.NumParents() {
	case 0:
		return "", fmt.Errorf("commit %s is a root commit and cannot be reverted", short(target))
	case 1:
	default:
		return "", fmt.Errorf("commit %s is a merge, revert of merges is not supported", short(target))
	}
	parent, err := target.Parent(0)
	if err != nil {
		return "", err
	}

	headRef, err := raw.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	head, err := raw.CommitObject(headRef.Hash())
	if err != nil {
		return "", err
	}

	w, err := raw.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree: %w", err)
	}

	// Undoing target means merging the change target -> parent onto HEAD.
	if err := git.Merge3Way(w, target, head, parent); err != nil {
		if errors.Is(err, git.ErrConflict) {
			return "", fmt.Errorf("could not revert %s: %w", short(target), err)
		}
		return "", fmt.Errorf("revert %s: %w", short(target), err)
	}

	msg := fmt.Sprintf("Revert \"%s\"\n\nThis reverts commit %s.\n", strings.TrimSpace(target.Message), target.Hash)
	sig := git.Signature(raw, time.Now())
	h, err := w.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig, AllowEmptyCommits: true})
	if err != nil {
		return "", fmt.Errorf("commit revert: %w", err)
	}
	return fmt.Sprintf("Reverted %s as %s", short(target), h.String()[:7]), nil
}

func (c *RevertCommand) Help() string {
	return `usage: revert <commit>

Create a new commit that undoes the changes of <commit>.
Merge and root commits are refused.`
}
