package content

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reports page changes on disk until ctx is done. Writes are
// coalesced per page over a short window so an editor's
// write-then-rename sequence fires once. onChange receives the page
// name ("about" or a project slug).
func (s *Store) Watch(ctx context.Context, onChange func(page string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(s.root); err != nil {
		return fmt.Errorf("watch %s: %w", s.root, err)
	}
	// projects dir may not exist yet; that's fine
	_ = w.Add(filepath.Join(s.root, "projects"))

	const settle = 200 * time.Millisecond
	pending := map[string]struct{}{}
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			page, ok := s.pageFor(ev.Name)
			if !ok {
				continue
			}
			pending[page] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(settle)
			} else {
				timer.Reset(settle)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			for page := range pending {
				onChange(page)
			}
			pending = map[string]struct{}{}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", s.root, err)
		}
	}
}

func (s *Store) pageFor(path string) (string, bool) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".md") || strings.HasPrefix(name, ".") {
		return "", false
	}
	if path == s.aboutPath() || name == "about.md" && filepath.Dir(path) == s.root {
		return AboutSlug, true
	}
	slug := strings.TrimSuffix(name, ".md")
	if filepath.Dir(path) == filepath.Join(s.root, "projects") && ValidSlug(slug) {
		return slug, true
	}
	return "", false
}
