// Package extedit hands a block's raw text to the operator's $EDITOR
// in a pty and feeds saved changes back into the editing session, both
// live (on every write) and finally (when the editor exits).
package extedit

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/creack/pty"
)

// Hooks are the bridge's callbacks. Data streams raw pty output for a
// host that renders the editor; Update fires on every save while the
// editor runs; Done fires once with the final content after exit.
type Hooks struct {
	Data   func(data []byte)
	Update func(blockID, content string)
	Done   func(blockID, content string)
}

// Manager runs one external editor session at a time.
type Manager struct {
	mu      sync.Mutex
	editor  string
	hooks   Hooks
	ptmx    *os.File
	cmd     *exec.Cmd
	running bool
	blockID string
	file    string
	watcher *watcher

	cols, rows uint16
}

// New builds a manager running the named editor. An empty name falls
// back to $EDITOR, then vi.
func New(editor string, hooks Hooks) *Manager {
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	return &Manager{
		editor: resolveEditor(editor),
		hooks:  hooks,
		cols:   80,
		rows:   24,
	}
}

// resolveEditor finds the binary for the configured editor, probing a
// few common install locations when it is not on PATH.
func resolveEditor(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	candidates := []string{
		filepath.Join("/opt/homebrew/bin", name),
		filepath.Join("/usr/local/bin", name),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".local/bin", name))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return name
}

// OpenBlock writes the block's text to a temp file, starts the editor
// on it at the given line and watches the file for saves. A session
// already running is closed first.
func (m *Manager) OpenBlock(blockID, content string, line int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		m.closeLocked()
	}

	f, err := os.CreateTemp("", "blockpad-*.md")
	if err != nil {
		return fmt.Errorf("create scratch file: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("write scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("write scratch file: %w", err)
	}
	m.file = f.Name()
	m.blockID = blockID

	var args []string
	if line > 0 {
		args = append(args, fmt.Sprintf("+%d", line))
	}
	args = append(args, m.file)

	cmd := exec.Command(m.editor, args...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: m.cols, Rows: m.rows})
	if err != nil {
		os.Remove(m.file)
		return fmt.Errorf("start editor pty: %w", err)
	}
	m.ptmx = ptmx
	m.cmd = cmd
	m.running = true

	w, err := newWatcher(m.file, blockID, m.hooks.Update)
	if err != nil {
		m.closeLocked()
		return err
	}
	m.watcher = w

	go m.pump(ptmx, blockID, m.file)
	return nil
}

// pump streams pty output until the editor exits, then delivers the
// final content and cleans up.
func (m *Manager) pump(ptmx *os.File, blockID, file string) {
	buf := make([]byte, 32768)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 && m.hooks.Data != nil {
			data := make([]byte, n)
			copy(data, buf[:n])
			m.hooks.Data(data)
		}
		if err != nil {
			break
		}
	}

	final := ""
	if raw, err := os.ReadFile(file); err == nil {
		final = strings.TrimRight(string(raw), "\n")
	}

	m.mu.Lock()
	m.closeLocked()
	m.mu.Unlock()

	if m.hooks.Done != nil {
		m.hooks.Done(blockID, final)
	}
}

// Write forwards keystrokes to the editor.
func (m *Manager) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running || m.ptmx == nil {
		return fmt.Errorf("no editor session")
	}
	_, err := m.ptmx.Write(data)
	return err
}

// Resize updates the pty size, also remembered for the next session.
func (m *Manager) Resize(cols, rows uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cols, m.rows = cols, rows
	if !m.running || m.ptmx == nil {
		return nil
	}
	return pty.Setsize(m.ptmx, &pty.Winsize{Cols: cols, Rows: rows})
}

// Running reports whether an editor session is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Close tears down the current session, if any.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *Manager) closeLocked() {
	if m.watcher != nil {
		m.watcher.stop()
		m.watcher = nil
	}
	if m.ptmx != nil {
		m.ptmx.Close()
		m.ptmx = nil
	}
	if m.cmd != nil && m.cmd.Process != nil {
		m.cmd.Process.Kill()
		m.cmd.Wait()
		m.cmd = nil
	}
	if m.file != "" {
		os.Remove(m.file)
		m.file = ""
	}
	m.running = false
}
