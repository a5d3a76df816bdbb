package server

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcher follows one session's git directory.
type watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
	once sync.Once
}

func (w *watcher) close() {
	w.once.Do(func() {
		close(w.done)
		w.fs.Close()
	})
}

// WatchSession follows the repository of an open session on disk.
func (s *Server) WatchSession(sessionID string) error {
	session, err := s.SessionManager.GetSession(sessionID)
	if err != nil {
		return err
	}
	return s.watchSession(session.ID, session.Repo.GitDir())
}

// watchSession starts monitoring the git directory of a session and pushes
// a refresh to its websocket clients once changes settle. In-memory
// repositories have no directory and are not watched.
func (s *Server) watchSession(sessionID, gitDir string) error {
	if gitDir == "" {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := addTree(fw, gitDir); err != nil {
		fw.Close()
		return err
	}

	w := &watcher{fs: fw, done: make(chan struct{})}
	s.watchMu.Lock()
	if old, ok := s.watchers[sessionID]; ok {
		old.close()
	}
	s.watchers[sessionID] = w
	s.watchMu.Unlock()

	s.wg.Add(1)
	go s.watchLoop(sessionID, w, s.SessionManager.Config().WatchDebounce)

	s.logger.Info("watching repository", "session", sessionID, "gitDir", gitDir)
	return nil
}

// unwatchSession stops the watcher of a session, if any.
func (s *Server) unwatchSession(sessionID string) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if w, ok := s.watchers[sessionID]; ok {
		w.close()
		delete(s.watchers, sessionID)
	}
}

// addTree watches gitDir itself and every directory below refs/, since
// fsnotify does not recurse.
func addTree(fw *fsnotify.Watcher, gitDir string) error {
	if err := fw.Add(gitDir); err != nil {
		return err
	}
	refs := filepath.Join(gitDir, "refs")
	return filepath.WalkDir(refs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}

func (s *Server) watchLoop(sessionID string, w *watcher, debounce time.Duration) {
	defer s.wg.Done()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-w.done:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if shouldIgnoreEvent(event) {
				continue
			}
			if event.Has(fsnotify.Create) && strings.Contains(event.Name, string(filepath.Separator)+"refs") {
				// New ref namespaces (refs/heads/feature/...) are directories.
				s.watchDir(sessionID, w, event.Name)
			}

			s.logger.Debug("change detected", "session", sessionID, "file", filepath.Base(event.Name))

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				s.refresh(sessionID)
			})

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", "session", sessionID, "error", err)
		}
	}
}

// watchDir adds a directory created after the watcher started. A failure
// leaves that directory unwatched and is logged.
func (s *Server) watchDir(sessionID string, w *watcher, path string) {
	if err := w.fs.Add(path); err != nil {
		s.logger.Debug("watch new directory failed", "session", sessionID, "path", path, "error", err)
	}
}

func shouldIgnoreEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	path := filepath.ToSlash(event.Name)

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return true
	}
	if strings.HasSuffix(base, ".lock") {
		return true
	}
	if strings.Contains(path, "/logs/") {
		return true
	}
	switch base {
	case "config", "index", "COMMIT_EDITMSG":
		return true
	}
	return false
}
