package commands

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/gitgraph/internal/git"
)

func TestRevertClean(t *testing.T) {
	s := newSandbox(t)
	s.commitFile("file.txt", "base\n", "Base")
	bad := s.commitFile("file.txt", "base\nchange\n", "Bad Commit")

	out, err := s.run("git revert HEAD")
	require.NoError(t, err)
	assert.Contains(t, out, "Reverted "+bad.String()[:7])

	assert.Equal(t, "base\n", s.read("file.txt"))

	head := s.head()
	assert.Contains(t, head.Message, `Revert "Bad Commit"`)
	assert.Contains(t, head.Message, bad.String())
	assert.Equal(t, []plumbing.Hash{bad}, head.ParentHashes)
}

func TestRevertOlderCommitKeepsLaterChanges(t *testing.T) {
	s := newSandbox(t)
	s.commitFile("a.txt", "a1\n", "Add a")
	added := s.commitFile("b.txt", "b1\n", "Add b")
	s.commitFile("a.txt", "a2\n", "Change a")

	_, err := s.run("revert " + added.String())
	require.NoError(t, err)

	assert.Equal(t, "a2\n", s.read("a.txt"))
	_, err = s.fs.Stat("b.txt")
	assert.Error(t, err, "b.txt was added by the reverted commit")
}

func TestRevertConflict(t *testing.T) {
	s := newSandbox(t)
	s.commitFile("file.txt", "one\n", "One")
	s.commitFile("file.txt", "two\n", "Two")
	s.commitFile("file.txt", "three\n", "Three")

	_, err := s.run("revert HEAD~1")
	assert.ErrorIs(t, err, git.ErrConflict)
	assert.Contains(t, s.read("file.txt"), "<<<<<<< HEAD")
}

func TestRevertRefusesRoot(t *testing.T) {
	s := newSandbox(t)
	s.commitFile("file.txt", "base\n", "Base")

	_, err := s.run("revert HEAD")
	assert.ErrorContains(t, err, "root commit")

	_, err = s.run("revert")
	assert.ErrorContains(t, err, "usage")
}
