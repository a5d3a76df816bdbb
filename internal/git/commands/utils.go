package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/kurobon/gitgraph/internal/git"
)

func resolveCommit(raw *gogit.Repository, rev string) (*object.Commit, error) {
	h, err := git.ResolveRevision(raw, rev)
	if err != nil {
		return nil, fmt.Errorf("bad revision '%s': %w", rev, err)
	}
	c, err := raw.CommitObject(h)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", h.String()[:7], err)
	}
	return c, nil
}

func short(c *object.Commit) string {
	return c.Hash.String()[:7]
}

// parseDate accepts RFC 3339 timestamps and unix seconds.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is neither RFC 3339 nor unix seconds", s)
	}
	return time.Unix(secs, 0).UTC(), nil
}

func joinMessage(words []string) string {
	msg := strings.TrimSpace(strings.Join(words, " "))
	if msg == "" {
		return ""
	}
	return msg + "\n"
}

func firstLine(msg string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(msg), "\n")
	return line
}
