package commands

import (
	"context"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"github.com/kurobon/gitgraph/internal/git"
)

func init() {
	git.RegisterCommand("reset", func() git.Command { return &ResetCommand{} })
}

// ResetCommand moves the current branch to another commit.
type ResetCommand struct{}

var _ git.Command = (*ResetCommand)(nil)

func (c *ResetCommand) Execute(ctx context.Context, repo *git.Repository, args []string) (string, error) {
	mode := gogit.MixedReset
	target := ""
	for _, arg := range args[1:] {
		switch arg {
		case "--soft":
			mode = gogit.SoftReset
		case "--mixed":
			mode = gogit.MixedReset
		case "--hard":
			mode = gogit.HardReset
		case "-h", "--help":
			return c.Help(), nil
		default:
			if strings.HasPrefix(arg, "-") {
				return "", fmt.Errorf("unknown option: %s", arg)
			}
			if target != "" {
				return "", fmt.Errorf("usage: reset [--soft | --mixed | --hard] <commit>")
			}
			target = arg
		}
	}
	if target == "" {
		target = "HEAD"
	}

	repo.Lock()
	defer repo.Unlock()
	raw := repo.Raw()

	commit, err := resolveCommit(raw, target)
	if err != nil {
		return "", err
	}
	w, err := raw.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree: %w", err)
	}
	if err := w.Reset(&gogit.ResetOptions{Commit: commit.Hash, Mode: mode}); err != nil {
		return "", fmt.Errorf("reset to %s: %w", short(commit), err)
	}
	return fmt.Sprintf("HEAD is now at %s %s", short(commit), firstLine(commit.Message)), nil
}

func (c *ResetCommand) Help() string {
	return `usage: reset [--soft | --mixed | --hard] <commit>

Move the current branch to <commit>. --soft keeps index and worktree,
--mixed (default) resets the index, --hard resets both.`
}
