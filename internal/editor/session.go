package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"blockpad/internal/domain"
	"blockpad/internal/markdown"
	"blockpad/internal/slash"
)

// SaveState is the autosave indicator state.
type SaveState int

const (
	StateUnchanged SaveState = iota
	StatePending
	StateSaving
	StateSaved
	StateSaveError
)

func (s SaveState) String() string {
	switch s {
	case StateUnchanged:
		return "unchanged"
	case StatePending:
		return "pending"
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	case StateSaveError:
		return "error"
	default:
		return fmt.Sprintf("SaveState(%d)", int(s))
	}
}

// SavePayload is what a Saver persists: the serialized markdown for a
// page plus its metadata, passed through untouched.
type SavePayload struct {
	Page     string
	Markdown string
	Meta     map[string]any
}

// Saver persists a page. Implementations must honor ctx cancellation
// so an in-flight save can be abandoned when newer content supersedes
// it.
type Saver interface {
	Save(ctx context.Context, p SavePayload) error
}

// Journal optionally receives a draft copy of the content every time
// an autosave fires, so work survives a crash mid-save.
type Journal interface {
	Append(page, markdown string) error
}

// Config carries session timing and collaborators. Zero durations get
// the defaults below.
type Config struct {
	Saver        Saver
	Journal      Journal
	Emitter      EventEmitter
	Scheduler    Scheduler
	Debounce     time.Duration // edit quiet period before autosave
	Fade         time.Duration // how long the Saved state lingers
	Retry        time.Duration // delay before retrying a failed save
	HistoryDelay time.Duration // edit coalescing window for undo snapshots
	MaxHistory   int
}

const (
	DefaultDebounce     = 2 * time.Second
	DefaultFade         = 3 * time.Second
	DefaultRetry        = 5 * time.Second
	DefaultHistoryDelay = 500 * time.Millisecond
)

// Session owns one page's document during editing: block mutations,
// the autosave state machine, and undo history. All methods are safe
// for concurrent use.
type Session struct {
	mu   sync.Mutex
	page string
	meta map[string]any
	doc  domain.Document

	saver   Saver
	journal Journal
	emitter EventEmitter
	sched   Scheduler

	debounce     time.Duration
	fade         time.Duration
	retry        time.Duration
	historyDelay time.Duration

	state   SaveState
	dirty   bool
	editSeq uint64

	saveID         uint64
	inflightCancel context.CancelFunc

	autosaveTimer Timer
	fadeTimer     Timer
	retryTimer    Timer

	history        *History
	historyTimer   Timer
	historyPending bool
	restoring      bool

	closed bool
}

// ClosedPayload accompanies EventSessionClosed.
type ClosedPayload struct {
	Page   string
	Saved  bool
	Reload bool
}

// NewSession parses the page's markdown into a document and seeds the
// undo history with the loaded state.
func NewSession(page, content string, meta map[string]any, cfg Config) *Session {
	if cfg.Emitter == nil {
		cfg.Emitter = NoopEmitter{}
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = NewScheduler()
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Fade == 0 {
		cfg.Fade = DefaultFade
	}
	if cfg.Retry == 0 {
		cfg.Retry = DefaultRetry
	}
	if cfg.HistoryDelay == 0 {
		cfg.HistoryDelay = DefaultHistoryDelay
	}
	if cfg.MaxHistory == 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}
	doc := markdown.Parse(content)
	return &Session{
		page:         page,
		meta:         meta,
		doc:          doc,
		saver:        cfg.Saver,
		journal:      cfg.Journal,
		emitter:      cfg.Emitter,
		sched:        cfg.Scheduler,
		debounce:     cfg.Debounce,
		fade:         cfg.Fade,
		retry:        cfg.Retry,
		historyDelay: cfg.HistoryDelay,
		history:      NewHistory(cfg.MaxHistory, doc),
	}
}

func (s *Session) Page() string { return s.page }

// Document returns a deep copy of the current document.
func (s *Session) Document() domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneDocument(s.doc)
}

// Markdown serializes the current document.
func (s *Session) Markdown() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return markdown.Serialize(s.doc)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.doc)
}

// Block returns a copy of the block at index.
func (s *Session) Block(index int) (domain.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc) {
		return nil, false
	}
	return s.doc[index].Clone(), true
}

func (s *Session) State() SaveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// InsertBlock inserts a fresh block of the given type at index,
// clamped to the document bounds, and returns a copy of it.
func (s *Session) InsertBlock(index int, t domain.BlockType) domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.insertLocked(index, t)
	s.markDirtyLocked()
	return b.Clone()
}

// InsertBlockAfter inserts after the block with the given id. An
// unknown id is a no-op.
func (s *Session) InsertBlockAfter(id string, t domain.BlockType) (domain.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.doc.IndexOf(id)
	if idx < 0 {
		return nil, false
	}
	b := s.insertLocked(idx+1, t)
	s.markDirtyLocked()
	return b.Clone(), true
}

func (s *Session) insertLocked(index int, t domain.BlockType) domain.Block {
	if index < 0 {
		index = 0
	}
	if index > len(s.doc) {
		index = len(s.doc)
	}
	b := domain.New(t)
	s.doc = append(s.doc, nil)
	copy(s.doc[index+1:], s.doc[index:])
	s.doc[index] = b
	return b
}

// DeleteBlock removes the block at index. The last remaining block is
// not deleted; it is reset to an empty text block instead, so the
// document always has at least one block.
func (s *Session) DeleteBlock(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc) {
		return false
	}
	if len(s.doc) == 1 {
		s.doc[0] = domain.New(domain.BlockTypeText)
	} else {
		s.doc = append(s.doc[:index], s.doc[index+1:]...)
	}
	s.markDirtyLocked()
	return true
}

// UpdateBlock applies a partial update to the block at index.
func (s *Session) UpdateBlock(index int, p domain.Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc) {
		return false
	}
	domain.Apply(s.doc[index], p)
	s.markDirtyLocked()
	return true
}

// SetTextContent replaces the text content of a text or callout block.
func (s *Session) SetTextContent(index int, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc) {
		return false
	}
	switch b := s.doc[index].(type) {
	case *domain.TextBlock:
		b.Content = content
	case *domain.CalloutBlock:
		b.Content = content
	default:
		return false
	}
	s.markDirtyLocked()
	return true
}

// LoadMarkdown replaces the whole document with the parse of md. The
// previous contents stay reachable through undo. Used to recover a
// journaled draft after a crash.
func (s *Session) LoadMarkdown(md string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.doc = markdown.Parse(md)
	s.markDirtyLocked()
}

// MoveBlock moves the block at from to the insertion index to, where
// to is interpreted against the document before removal. Moving past
// the original position therefore lands exactly at the drop point.
func (s *Session) MoveBlock(from, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from < 0 || from >= len(s.doc) || to < 0 || to > len(s.doc) {
		return false
	}
	if to > from {
		to--
	}
	if to == from {
		return false
	}
	b := s.doc[from]
	s.doc = append(s.doc[:from], s.doc[from+1:]...)
	s.doc = append(s.doc, nil)
	copy(s.doc[to+1:], s.doc[to:])
	s.doc[to] = b
	s.markDirtyLocked()
	return true
}

// ExecuteSlash applies the menu's highlighted command: for a typed
// trigger the "/" and filter text are stripped from the source line,
// and the new block replaces the source block when that leaves it
// empty; otherwise the block is inserted after the source (or at the
// menu's insertion point for button-opened menus). The menu is closed
// either way.
func (s *Session) ExecuteSlash(m *slash.Menu) (domain.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !m.IsOpen() {
		return nil, false
	}
	cmd, ok := m.Selected()
	if !ok {
		m.Close()
		return nil, false
	}

	var created domain.Block
	switch m.Source() {
	case slash.SourceButton:
		created = s.insertLocked(m.InsertIndex(), cmd.Type)

	case slash.SourceTyping:
		idx := s.doc.IndexOf(m.BlockID())
		if idx < 0 {
			m.Close()
			return nil, false
		}
		txt, isText := s.doc[idx].(*domain.TextBlock)
		if !isText {
			m.Close()
			return nil, false
		}
		lines := strings.Split(txt.Content, "\n")
		trigger := "/" + m.Filter()
		if m.Line() >= 0 && m.Line() < len(lines) && strings.HasPrefix(lines[m.Line()], trigger) {
			lines[m.Line()] = lines[m.Line()][len(trigger):]
			txt.Content = strings.Join(lines, "\n")
		}
		if txt.Content == "" {
			created = domain.New(cmd.Type)
			s.doc[idx] = created
		} else {
			created = s.insertLocked(idx+1, cmd.Type)
		}
	}

	m.Close()
	s.markDirtyLocked()
	if created == nil {
		return nil, false
	}
	return created.Clone(), true
}

// Undo restores the previous snapshot. A pending coalesced edit is
// flushed first so the current state becomes redoable.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushHistoryLocked()
	doc, ok := s.history.Undo()
	if !ok {
		s.emitter.Emit(context.Background(), EventHistoryEdge, map[string]any{"edge": "oldest"})
		return false
	}
	s.restoreLocked(doc)
	return true
}

// Redo re-applies the next snapshot, if any.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushHistoryLocked()
	doc, ok := s.history.Redo()
	if !ok {
		s.emitter.Emit(context.Background(), EventHistoryEdge, map[string]any{"edge": "newest"})
		return false
	}
	s.restoreLocked(doc)
	return true
}

func (s *Session) restoreLocked(doc domain.Document) {
	s.restoring = true
	s.doc = doc
	s.markDirtyLocked()
	s.restoring = false
}

// HistoryLen reports the number of held snapshots.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

// markDirtyLocked is the single entry point for every content change:
// it schedules the undo snapshot, moves the indicator to Pending and
// restarts the autosave debounce.
func (s *Session) markDirtyLocked() {
	if s.closed {
		return
	}
	s.dirty = true
	s.editSeq++

	if !s.restoring {
		s.historyPending = true
		if s.historyTimer != nil {
			s.historyTimer.Stop()
		}
		s.historyTimer = s.sched.After(s.historyDelay, s.historyFire)
	}

	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	if s.fadeTimer != nil {
		s.fadeTimer.Stop()
		s.fadeTimer = nil
	}
	if s.state != StateSaving {
		s.setStateLocked(StatePending)
	}
	if s.autosaveTimer != nil {
		s.autosaveTimer.Stop()
	}
	s.autosaveTimer = s.sched.After(s.debounce, s.autosaveFire)

	s.emitter.Emit(context.Background(), EventDocumentChanged, map[string]any{"page": s.page})
}

func (s *Session) historyFire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushHistoryLocked()
}

func (s *Session) flushHistoryLocked() {
	if !s.historyPending {
		return
	}
	if s.historyTimer != nil {
		s.historyTimer.Stop()
		s.historyTimer = nil
	}
	s.historyPending = false
	s.history.Push(s.doc)
}

func (s *Session) setStateLocked(st SaveState) {
	if s.state == st {
		return
	}
	s.state = st
	s.emitter.Emit(context.Background(), EventSaveState, map[string]any{
		"page":  s.page,
		"state": st.String(),
	})
}

func (s *Session) autosaveFire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.saver == nil {
		return
	}
	if s.state == StateSaving {
		// completion handler reschedules if edits arrived meanwhile
		return
	}
	s.startSaveLocked()
}

// startSaveLocked snapshots the serialized content, aborts any save
// still in flight and launches a new one.
func (s *Session) startSaveLocked() {
	content := markdown.Serialize(s.doc)
	seq := s.editSeq

	if s.journal != nil {
		// drafts survive a crash mid-save; journal errors never block saving
		_ = s.journal.Append(s.page, content)
	}

	s.abortInflightLocked()
	ctx, cancel := context.WithCancel(context.Background())
	s.inflightCancel = cancel
	id := s.saveID
	payload := SavePayload{Page: s.page, Markdown: content, Meta: s.meta}

	s.setStateLocked(StateSaving)
	go func() {
		err := s.saver.Save(ctx, payload)
		s.onSaveDone(id, seq, err)
	}()
}

// abortInflightLocked cancels the running save, if any, and bumps the
// save id so its completion is discarded rather than treated as an
// error.
func (s *Session) abortInflightLocked() {
	if s.inflightCancel != nil {
		s.inflightCancel()
		s.inflightCancel = nil
	}
	s.saveID++
}

func (s *Session) onSaveDone(id, seq uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || id != s.saveID {
		return
	}
	s.inflightCancel = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.setStateLocked(StateSaveError)
		s.retryTimer = s.sched.After(s.retry, s.retryFire)
		return
	}

	if s.editSeq != seq {
		// edited while saving: still dirty, go around again
		s.setStateLocked(StatePending)
		if s.autosaveTimer != nil {
			s.autosaveTimer.Stop()
		}
		s.autosaveTimer = s.sched.After(s.debounce, s.autosaveFire)
		return
	}

	s.dirty = false
	s.setStateLocked(StateSaved)
	s.fadeTimer = s.sched.After(s.fade, s.fadeFire)
}

func (s *Session) retryFire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.dirty || s.state != StateSaveError {
		return
	}
	s.startSaveLocked()
}

func (s *Session) fadeFire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StateSaved {
		return
	}
	s.setStateLocked(StateUnchanged)
}

// ManualSave persists immediately, skipping the debounce, then tears
// the session down. With nothing dirty it only tears down. A failed
// manual save leaves the session open with the error state set.
func (s *Session) ManualSave(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("session closed")
	}
	if !s.dirty {
		s.teardownLocked()
		s.emitter.Emit(context.Background(), EventSessionClosed, ClosedPayload{Page: s.page, Reload: true})
		s.mu.Unlock()
		return nil
	}
	s.abortInflightLocked()
	s.stopTimersLocked()
	content := markdown.Serialize(s.doc)
	payload := SavePayload{Page: s.page, Markdown: content, Meta: s.meta}
	s.setStateLocked(StateSaving)
	s.mu.Unlock()

	err := s.saver.Save(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.setStateLocked(StateSaveError)
		return fmt.Errorf("save %s: %w", s.page, err)
	}
	s.dirty = false
	s.teardownLocked()
	s.emitter.Emit(context.Background(), EventSessionClosed, ClosedPayload{Page: s.page, Saved: true, Reload: true})
	return nil
}

// Cancel abandons the session without saving. When content is dirty
// the caller must pass confirmed=true, after asking the operator.
func (s *Session) Cancel(confirmed bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	if s.dirty && !confirmed {
		return false
	}
	s.teardownLocked()
	s.emitter.Emit(context.Background(), EventSessionClosed, ClosedPayload{Page: s.page, Reload: true})
	return true
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) teardownLocked() {
	s.abortInflightLocked()
	s.stopTimersLocked()
	s.closed = true
}

func (s *Session) stopTimersLocked() {
	for _, t := range []*Timer{&s.autosaveTimer, &s.fadeTimer, &s.retryTimer, &s.historyTimer} {
		if *t != nil {
			(*t).Stop()
			*t = nil
		}
	}
}
