package extedit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// watcher watches one scratch file and reports its content on every
// save. Directories are watched rather than the file itself because
// editors replace files via rename.
type watcher struct {
	fs      *fsnotify.Watcher
	path    string
	blockID string
	onSave  func(blockID, content string)
}

func newWatcher(path, blockID string, onSave func(blockID, content string)) (*watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w := &watcher{fs: fs, path: abs, blockID: blockID, onSave: onSave}
	go w.loop()
	return w, nil
}

func (w *watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			abs, _ := filepath.Abs(ev.Name)
			if abs != w.path {
				continue
			}
			raw, err := os.ReadFile(w.path)
			if err != nil {
				continue
			}
			if w.onSave != nil {
				w.onSave(w.blockID, strings.TrimRight(string(raw), "\n"))
			}
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *watcher) stop() {
	w.fs.Close()
}
