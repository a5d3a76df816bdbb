package commands

import (
	"context"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/kurobon/gitgraph/internal/git"
)

func init() {
	git.RegisterCommand("checkout", func() git.Command { return &CheckoutCommand{} })
}

// CheckoutCommand switches branches or detaches HEAD at a commit.
type CheckoutCommand struct{}

var _ git.Command = (*CheckoutCommand)(nil)

func (c *CheckoutCommand) Execute(ctx context.Context, repo *git.Repository, args []string) (string, error) {
	var (
		newBranch string
		force     bool
		rest      []string
	)
	cmdArgs := args[1:]
	for i := 0; i < len(cmdArgs); i++ {
		switch arg := cmdArgs[i]; arg {
		case "-h", "--help":
			return c.Help(), nil
		case "-b":
			if i+1 >= len(cmdArgs) {
				return "", fmt.Errorf("option -b needs a value")
			}
			i++
			newBranch = cmdArgs[i]
		case "-f", "--force":
			force = true
		default:
			if strings.HasPrefix(arg, "-") {
				return "", fmt.Errorf("unknown option: %s", arg)
			}
			rest = append(rest, arg)
		}
	}
	if len(rest) > 1 || (newBranch == "" && len(rest) == 0) {
		return "", fmt.Errorf("usage: checkout <branch> | checkout <commit> | checkout -b <branch> [<start>]")
	}

	repo.Lock()
	defer repo.Unlock()
	raw := repo.Raw()

	w, err := raw.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree: %w", err)
	}

	if newBranch != "" {
		start := "HEAD"
		if len(rest) == 1 {
			start = rest[0]
		}
		commit, err := resolveCommit(raw, start)
		if err != nil {
			return "", err
		}
		err = w.Checkout(&gogit.CheckoutOptions{
			Branch: plumbing.NewBranchReferenceName(newBranch),
			Hash:   commit.Hash,
			Create: true,
			Force:  force,
		})
		if err != nil {
			return "", fmt.Errorf("checkout -b %s: %w", newBranch, err)
		}
		return fmt.Sprintf("Switched to a new branch '%s'", newBranch), nil
	}

	target := rest[0]
	branch := plumbing.NewBranchReferenceName(target)
	if _, err := raw.Storer.Reference(branch); err == nil {
		if err := w.Checkout(&gogit.CheckoutOptions{Branch: branch, Force: force}); err != nil {
			return "", fmt.Errorf("checkout %s: %w", target, err)
		}
		return fmt.Sprintf("Switched to branch '%s'", target), nil
	}

	commit, err := resolveCommit(raw, target)
	if err != nil {
		return "", err
	}
	if err := w.Checkout(&gogit.CheckoutOptions{Hash: commit.Hash, Force: force}); err != nil {
		return "", fmt.Errorf("checkout %s: %w", target, err)
	}
	return fmt.Sprintf("HEAD is now at %s %s", short(commit), firstLine(commit.Message)), nil
}

func (c *CheckoutCommand) Help() string {
	return `usage: checkout [-f] <branch>
       checkout [-f] <commit>
       checkout [-f] -b <branch> [<start>]

Switch to a branch, detach HEAD at a commit, or create a branch and
switch to it.`
}
