package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/kurobon/gitgraph/internal/git"
)

func init() {
	git.RegisterCommand("cherry-pick", func() git.Command { return &CherryPickCommand{} })
}

// CherryPickCommand applies existing commits on top of HEAD.
type CherryPickCommand struct{}

var _ git.Command = (*CherryPickCommand)(nil)

func (c *CherryPickCommand) Execute(ctx context.Context, repo *git.Repository, args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("usage: cherry-pick <commit>... | <start>..<end>")
	}

	repo.Lock()
	defer repo.Unlock()
	raw := repo.Raw()

	var picks []*object.Commit
	for _, arg := range args[1:] {
		if start, end, ok := strings.Cut(arg, ".."); ok {
			commits, err := commitRange(raw, start, end)
			if err != nil {
				return "", err
			}
			picks = append(picks, commits...)
			continue
		}
		commit, err := resolveCommit(raw, arg)
		if err != nil {
			return "", err
		}
		picks = append(picks, commit)
	}

	if len(picks) == 0 {
		return "Nothing to pick", nil
	}

	w, err := raw.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree: %w", err)
	}

	var last string
	for _, pick := range picks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if pick.NumParents() > 1 {
			return "", fmt.Errorf("commit %s is a merge, cherry-pick of merges is not supported", short(pick))
		}
		if err := git.ApplyCommitChanges(w, pick); err != nil {
			return "", fmt.Errorf("apply %s: %w", short(pick), err)
		}
		h, err := w.Commit(pick.Message, &gogit.CommitOptions{
			Author:            &pick.Author,
			Committer:         git.Signature(raw, time.Now()),
			AllowEmptyCommits: true,
		})
		if err != nil {
			return "", fmt.Errorf("commit %s: %w", short(pick), err)
		}
		last = h.String()[:7]
	}

	return fmt.Sprintf("Picked %d commit(s), HEAD is now %s", len(picks), last), nil
}

// commitRange returns the commits of start..end, oldest first. The range
// follows first parents from end until it reaches start.
func commitRange(raw *gogit.Repository, start, end string) ([]*object.Commit, error) {
	if start == "" || end == "" {
		return nil, fmt.Errorf("malformed range %s..%s", start, end)
	}
	from, err := resolveCommit(raw, start)
	if err != nil {
		return nil, err
	}
	to, err := resolveCommit(raw, end)
	if err != nil {
		return nil, err
	}

	var rev []*object.Commit
	for c := to; c.Hash != from.Hash; {
		rev = append(rev, c)
		if c.NumParents() == 0 {
			return nil, fmt.Errorf("%s is not a first-parent ancestor of %s", start, end)
		}
		if c, err = c.Parent(0); err != nil {
			return nil, err
		}
	}

	out := make([]*object.Commit, len(rev))
	for i, c := range rev {
		out[len(rev)-1-i] = c
	}
	return out, nil
}

func (c *CherryPickCommand) Help() string {
	return `usage: cherry-pick <commit>...
       cherry-pick <start>..<end>

Apply the changes introduced by existing commits on top of HEAD,
keeping their author and message.`
}
