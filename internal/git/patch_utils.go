package git

import (
	"errors"
	"fmt"
	"os"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// ErrConflict is returned when a three-way merge leaves conflicted files.
var ErrConflict = errors.New("merge conflict")

// ApplyCommitChanges writes the changes a commit introduced over its first
// parent into the worktree and stages them. A root commit contributes every
// file it contains.
func ApplyCommitChanges(w *gogit.Worktree, commit *object.Commit) error {
	to, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("tree of %s: %w", commit.Hash, err)
	}

	from := &object.Tree{}
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return fmt.Errorf("parent of %s: %w", commit.Hash, err)
		}
		if from, err = parent.Tree(); err != nil {
			return fmt.Errorf("tree of %s: %w", parent.Hash, err)
		}
	}

	changes, err := object.DiffTree(from, to)
	if err != nil {
		return fmt.Errorf("diff %s: %w", commit.Hash, err)
	}

	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			return err
		}
		switch action {
		case merkletrie.Delete:
			if err := unstagePath(w, change.From.Name); err != nil {
				return err
			}
		default:
			file, err := to.File(change.To.Name)
			if err != nil {
				return fmt.Errorf("read %s: %w", change.To.Name, err)
			}
			content, err := file.Contents()
			if err != nil {
				return fmt.Errorf("read %s: %w", change.To.Name, err)
			}
			if err := stagePath(w, change.To.Name, content); err != nil {
				return err
			}
		}
	}
	return nil
}

// fileVersion is a path as seen by one side of a merge. A zero hash means
// the path does not exist on that side.
type fileVersion struct {
	hash    plumbing.Hash
	content string
}

func versionAt(c *object.Commit, path string) (fileVersion, error) {
	if c == nil {
		return fileVersion{}, nil
	}
	f, err := c.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return fileVersion{}, nil
	}
	if err != nil {
		return fileVersion{}, err
	}
	content, err := f.Contents()
	if err != nil {
		return fileVersion{}, err
	}
	return fileVersion{hash: f.Hash, content: content}, nil
}

// Merge3Way merges the change from base to theirs into the worktree, which
// holds ours. A path changed differently on both sides gets conflict
// markers and stays unstaged, and ErrConflict is returned.
func Merge3Way(w *gogit.Worktree, base, ours, theirs *object.Commit) error {
	paths := make(map[string]struct{})
	for _, c := range []*object.Commit{base, ours, theirs} {
		if c == nil {
			continue
		}
		files, err := c.Files()
		if err != nil {
			return err
		}
		err = files.ForEach(func(f *object.File) error {
			paths[f.Name] = struct{}{}
			return nil
		})
		if err != nil {
			return err
		}
	}

	conflicted := false
	for path := range paths {
		b, err := versionAt(base, path)
		if err != nil {
			return err
		}
		o, err := versionAt(ours, path)
		if err != nil {
			return err
		}
		t, err := versionAt(theirs, path)
		if err != nil {
			return err
		}

		switch {
		case o.hash == t.hash, b.hash == t.hash:
			// nothing to take from theirs
		case b.hash == o.hash && t.hash.IsZero():
			if err := unstagePath(w, path); err != nil {
				return err
			}
		case b.hash == o.hash:
			if err := stagePath(w, path, t.content); err != nil {
				return err
			}
		default:
			conflicted = true
			marked := fmt.Sprintf("<<<<<<< HEAD\n%s=======\n%s>>>>>>> %s\n", o.content, t.content, theirs.Hash.String()[:7])
			if err := writeFile(w, path, marked); err != nil {
				return err
			}
		}
	}

	if conflicted {
		return ErrConflict
	}
	return nil
}

func stagePath(w *gogit.Worktree, path, content string) error {
	if err := writeFile(w, path, content); err != nil {
		return err
	}
	if _, err := w.Add(path); err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}
	return nil
}

func unstagePath(w *gogit.Worktree, path string) error {
	if err := w.Filesystem.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	if _, err := w.Remove(path); err != nil && !errors.Is(err, index.ErrEntryNotFound) {
		return fmt.Errorf("stage removal of %s: %w", path, err)
	}
	return nil
}

func writeFile(w *gogit.Worktree, path, content string) error {
	f, err := w.Filesystem.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write([]byte(content)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
