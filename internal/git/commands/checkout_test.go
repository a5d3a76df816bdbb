package commands

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout(t *testing.T) {
	s := newSandbox(t)
	base := s.commitFile("a.txt", "1\n", "Base")
	s.commitFile("a.txt", "2\n", "Second")

	t.Run("new branch", func(t *testing.T) {
		out, err := s.run("checkout -b feature HEAD~1")
		require.NoError(t, err)
		assert.Equal(t, "Switched to a new branch 'feature'", out)
		assert.Equal(t, "1\n", s.read("a.txt"))

		head, err := s.raw.Storer.Reference(plumbing.HEAD)
		require.NoError(t, err)
		assert.Equal(t, plumbing.NewBranchReferenceName("feature"), head.Target())
	})

	t.Run("existing branch", func(t *testing.T) {
		out, err := s.run("checkout master")
		require.NoError(t, err)
		assert.Equal(t, "Switched to branch 'master'", out)
		assert.Equal(t, "2\n", s.read("a.txt"))
	})

	t.Run("detached", func(t *testing.T) {
		out, err := s.run("checkout " + base.String())
		require.NoError(t, err)
		assert.Contains(t, out, "HEAD is now at "+base.String()[:7])

		head, err := s.raw.Storer.Reference(plumbing.HEAD)
		require.NoError(t, err)
		assert.Equal(t, plumbing.HashReference, head.Type())
		assert.Equal(t, base, head.Hash())
	})

	t.Run("errors", func(t *testing.T) {
		_, err := s.run("checkout")
		assert.ErrorContains(t, err, "usage")

		_, err = s.run("checkout nowhere")
		assert.ErrorContains(t, err, "bad revision")
	})
}
