package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/kurobon/gitgraph/internal/git"
)

func init() {
	git.RegisterCommand("reword", func() git.Command { return &RewordCommand{} })
	git.RegisterCommand("redate", func() git.Command { return &RedateCommand{} })
	git.RegisterCommand("squash", func() git.Command { return &SquashCommand{} })
}

// RewordCommand changes the message of a commit on the current line of
// history.
type RewordCommand struct{}

func (c *RewordCommand) Execute(ctx context.Context, repo *git.Repository, args []string) (string, error) {
	if len(args) < 3 {
		return "", fmt.Errorf("usage: reword <commit> <message...>")
	}
	msg := joinMessage(args[2:])
	if msg == "" {
		return "", fmt.Errorf("empty commit message")
	}
	return rewrite(ctx, repo, args[1], func(commit *object.Commit) {
		commit.Message = msg
	})
}

func (c *RewordCommand) Help() string {
	return `usage: reword <commit> <message...>

Replace the message of <commit>, which must be HEAD or a first-parent
ancestor of it. Later commits are replayed with unchanged trees.`
}

// RedateCommand changes the author date of a commit on the current line of
// history.
type RedateCommand struct{}

func (c *RedateCommand) Execute(ctx context.Context, repo *git.Repository, args []string) (string, error) {
	if len(args) != 3 {
		return "", fmt.Errorf("usage: redate <commit> <RFC3339|unix>")
	}
	when, err := parseDate(args[2])
	if err != nil {
		return "", err
	}
	return rewrite(ctx, repo, args[1], func(commit *object.Commit) {
		commit.Author.When = when
	})
}

func (c *RedateCommand) Help() string {
	return `usage: redate <commit> <RFC3339|unix>

Set the author date of <commit>, which must be HEAD or a first-parent
ancestor of it. Later commits are replayed with unchanged trees.`
}

func rewrite(ctx context.Context, repo *git.Repository, rev string, edit func(*object.Commit)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo.Lock()
	defer repo.Unlock()
	raw := repo.Raw()

	target, err := resolveCommit(raw, rev)
	if err != nil {
		return "", err
	}
	tip, err := git.RewriteCommit(raw, target.Hash, edit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Rewrote %s, HEAD is now %s", short(target), tip.String()[:7]), nil
}

// SquashCommand folds the last n commits into one.
type SquashCommand struct{}

func (c *SquashCommand) Execute(ctx context.Context, repo *git.Repository, args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("usage: squash <n> [message...]")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("invalid count %q", args[1])
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo.Lock()
	defer repo.Unlock()

	h, err := git.Squash(repo.Raw(), n, joinMessage(args[2:]))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Squashed %d commits into %s", n, h.String()[:7]), nil
}

func (c *SquashCommand) Help() string {
	return `usage: squash <n> [message...]

Collapse the last <n> commits of HEAD into one with HEAD's tree and the
oldest commit's author. Without a message the original messages are
joined. Merge commits cannot be squashed.`
}
