package commands

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/gitgraph/internal/git"
)

// sandbox is an in-memory repository with a worktree.
type sandbox struct {
	t     *testing.T
	fs    billy.Filesystem
	raw   *gogit.Repository
	w     *gogit.Worktree
	repo  *git.Repository
	clock time.Time
}

func newSandbox(t *testing.T) *sandbox {
	t.Helper()
	fs := memfs.New()
	raw, err := gogit.Init(memory.NewStorage(), fs)
	require.NoError(t, err)
	w, err := raw.Worktree()
	require.NoError(t, err)
	return &sandbox{
		t:     t,
		fs:    fs,
		raw:   raw,
		w:     w,
		repo:  git.New(raw),
		clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *sandbox) commitFile(name, content, msg string) plumbing.Hash {
	s.t.Helper()
	require.NoError(s.t, util.WriteFile(s.fs, name, []byte(content), 0o644))
	_, err := s.w.Add(name)
	require.NoError(s.t, err)
	s.clock = s.clock.Add(time.Minute)
	h, err := s.w.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "User", Email: "user@test.com", When: s.clock},
	})
	require.NoError(s.t, err)
	return h
}

func (s *sandbox) read(name string) string {
	s.t.Helper()
	b, err := util.ReadFile(s.fs, name)
	require.NoError(s.t, err)
	return string(b)
}

func (s *sandbox) head() *object.Commit {
	s.t.Helper()
	ref, err := s.raw.Head()
	require.NoError(s.t, err)
	c, err := s.raw.CommitObject(ref.Hash())
	require.NoError(s.t, err)
	return c
}

func (s *sandbox) run(input string) (string, error) {
	name, args := git.ParseCommand(input)
	return git.Dispatch(context.Background(), s.repo, name, args)
}
