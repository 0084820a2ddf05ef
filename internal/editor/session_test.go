package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"blockpad/internal/domain"
	"blockpad/internal/slash"
)

type fakeSaver struct {
	mu    sync.Mutex
	calls []SavePayload
	errs  []error
}

func (f *fakeSaver) Save(_ context.Context, p SavePayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSaver) last() SavePayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// blockingSaver parks every Save until the test releases it, so the
// in-flight window can be exercised deterministically.
type blockingSaver struct {
	fakeSaver
	started chan struct{}
	release chan error
}

func newBlockingSaver() *blockingSaver {
	return &blockingSaver{
		started: make(chan struct{}, 8),
		release: make(chan error, 8),
	}
}

func (b *blockingSaver) Save(ctx context.Context, p SavePayload) error {
	b.mu.Lock()
	b.calls = append(b.calls, p)
	b.mu.Unlock()
	b.started <- struct{}{}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-b.release:
		return err
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestSession(t *testing.T, content string, saver Saver) (*Session, *ManualScheduler, *MockEmitter) {
	t.Helper()
	sched := NewManualScheduler()
	emitter := &MockEmitter{}
	s := NewSession("demo", content, map[string]any{"title": "Demo"}, Config{
		Saver:     saver,
		Emitter:   emitter,
		Scheduler: sched,
	})
	return s, sched, emitter
}

func TestAutosaveDebounceTrailingEdge(t *testing.T) {
	saver := &fakeSaver{}
	s, sched, _ := newTestSession(t, "hello", saver)

	s.SetTextContent(0, "hello a")
	sched.Advance(time.Second)
	if got := saver.count(); got != 0 {
		t.Fatalf("saved %d times before quiet period, want 0", got)
	}

	// a second edit restarts the window
	s.SetTextContent(0, "hello ab")
	sched.Advance(1900 * time.Millisecond)
	if got := saver.count(); got != 0 {
		t.Fatalf("saved %d times at 1.9s after last edit, want 0", got)
	}

	sched.Advance(100 * time.Millisecond)
	waitFor(t, "single save", func() bool { return saver.count() == 1 })
	if md := saver.last().Markdown; md != "hello ab" {
		t.Fatalf("saved markdown = %q, want latest content", md)
	}
	if meta := saver.last().Meta; meta["title"] != "Demo" {
		t.Fatalf("metadata not passed through: %v", meta)
	}
}

func TestSavedFadesToUnchanged(t *testing.T) {
	saver := &fakeSaver{}
	s, sched, _ := newTestSession(t, "hello", saver)

	s.SetTextContent(0, "edited")
	if s.State() != StatePending {
		t.Fatalf("state after edit = %v, want pending", s.State())
	}
	sched.Advance(2 * time.Second)
	waitFor(t, "saved state", func() bool { return s.State() == StateSaved })
	if s.Dirty() {
		t.Fatal("dirty after successful save")
	}

	sched.Advance(3 * time.Second)
	if s.State() != StateUnchanged {
		t.Fatalf("state after fade = %v, want unchanged", s.State())
	}
}

func TestSaveErrorRetries(t *testing.T) {
	saver := &fakeSaver{errs: []error{errors.New("boom")}}
	s, sched, _ := newTestSession(t, "hello", saver)

	s.SetTextContent(0, "edited")
	sched.Advance(2 * time.Second)
	waitFor(t, "error state", func() bool { return s.State() == StateSaveError })
	if !s.Dirty() {
		t.Fatal("content must stay dirty after a failed save")
	}

	sched.Advance(5 * time.Second)
	waitFor(t, "retry success", func() bool { return s.State() == StateSaved })
	if got := saver.count(); got != 2 {
		t.Fatalf("save attempts = %d, want 2", got)
	}
}

func TestEditDuringInflightSaveTriggersFollowup(t *testing.T) {
	saver := newBlockingSaver()
	s, sched, _ := newTestSession(t, "hello", saver)

	s.SetTextContent(0, "first")
	sched.Advance(2 * time.Second)
	<-saver.started
	if s.State() != StateSaving {
		t.Fatalf("state = %v, want saving", s.State())
	}

	s.SetTextContent(0, "second")
	saver.release <- nil
	waitFor(t, "pending after stale save", func() bool { return s.State() == StatePending })
	if !s.Dirty() {
		t.Fatal("newer edit must keep the session dirty")
	}

	sched.Advance(2 * time.Second)
	<-saver.started
	saver.release <- nil
	waitFor(t, "second save lands", func() bool { return s.State() == StateSaved })
	if md := saver.last().Markdown; md != "second" {
		t.Fatalf("followup saved %q, want second", md)
	}
}

func TestManualSaveAbortsInflightWithoutError(t *testing.T) {
	saver := newBlockingSaver()
	s, sched, emitter := newTestSession(t, "hello", saver)

	s.SetTextContent(0, "draft")
	sched.Advance(2 * time.Second)
	<-saver.started // autosave now in flight

	s.SetTextContent(0, "final")
	done := make(chan error, 1)
	go func() { done <- s.ManualSave(context.Background()) }()
	<-saver.started // manual save in flight; autosave was cancelled
	saver.release <- nil

	if err := <-done; err != nil {
		t.Fatalf("ManualSave: %v", err)
	}
	if !s.Closed() {
		t.Fatal("manual save must tear the session down")
	}
	if md := saver.last().Markdown; md != "final" {
		t.Fatalf("manual save persisted %q, want final", md)
	}
	if ev, ok := emitter.Last(EventSaveState); ok {
		if st := ev.Data.(map[string]any)["state"]; st == "error" {
			t.Fatal("aborted in-flight save reported as error")
		}
	}
	closed, ok := emitter.Last(EventSessionClosed)
	if !ok || !closed.Data.(ClosedPayload).Saved {
		t.Fatalf("missing saved close event: %v", emitter.Names())
	}
}

func TestManualSaveCleanIsTeardownOnly(t *testing.T) {
	saver := &fakeSaver{}
	s, _, emitter := newTestSession(t, "hello", saver)

	if err := s.ManualSave(context.Background()); err != nil {
		t.Fatalf("ManualSave: %v", err)
	}
	if saver.count() != 0 {
		t.Fatal("clean manual save must not hit the backend")
	}
	if !s.Closed() {
		t.Fatal("session should be closed")
	}
	if _, ok := emitter.Last(EventSessionClosed); !ok {
		t.Fatal("missing close event")
	}
}

func TestCancelRequiresConfirmationWhenDirty(t *testing.T) {
	saver := &fakeSaver{}
	s, _, _ := newTestSession(t, "hello", saver)

	s.SetTextContent(0, "edited")
	if s.Cancel(false) {
		t.Fatal("dirty cancel must require confirmation")
	}
	if s.Closed() {
		t.Fatal("session closed without confirmation")
	}
	if !s.Cancel(true) {
		t.Fatal("confirmed cancel failed")
	}
	if saver.count() != 0 {
		t.Fatal("cancel must not save")
	}
}

func TestUndoRedoWithCoalescing(t *testing.T) {
	s, sched, _ := newTestSession(t, "", nil)

	// burst of edits inside the coalescing window collapses to one step
	s.SetTextContent(0, "h")
	s.SetTextContent(0, "he")
	s.SetTextContent(0, "hel")
	sched.Advance(500 * time.Millisecond)
	if got := s.HistoryLen(); got != 2 {
		t.Fatalf("snapshots = %d, want 2 (initial + burst)", got)
	}

	s.SetTextContent(0, "hello")
	// undo flushes the still-pending edit first so it is redoable
	if !s.Undo() {
		t.Fatal("undo failed")
	}
	if got := sessionText(t, s, 0); got != "hel" {
		t.Fatalf("after undo = %q, want hel", got)
	}
	if !s.Redo() {
		t.Fatal("redo failed")
	}
	if got := sessionText(t, s, 0); got != "hello" {
		t.Fatalf("after redo = %q, want hello", got)
	}
	if s.Redo() {
		t.Fatal("redo past the newest snapshot should fail")
	}
}

func TestUndoAtBottomEmitsEdge(t *testing.T) {
	s, _, emitter := newTestSession(t, "hello", nil)
	if s.Undo() {
		t.Fatal("undo with no edits should fail")
	}
	if emitter.Count(EventHistoryEdge) != 1 {
		t.Fatalf("edge events = %d, want 1", emitter.Count(EventHistoryEdge))
	}
}

func TestRestoreIsNotRecordedAsNewSnapshot(t *testing.T) {
	s, sched, _ := newTestSession(t, "", nil)
	s.SetTextContent(0, "one")
	sched.Advance(600 * time.Millisecond)
	s.SetTextContent(0, "two")
	sched.Advance(600 * time.Millisecond)

	before := s.HistoryLen()
	s.Undo()
	sched.Advance(time.Second)
	if got := s.HistoryLen(); got != before {
		t.Fatalf("snapshots after undo = %d, want %d", got, before)
	}
	// undo still counts as a content change for autosave purposes
	if !s.Dirty() {
		t.Fatal("restored content should be dirty")
	}
}

func TestHistoryBoundInSession(t *testing.T) {
	sched := NewManualScheduler()
	s := NewSession("demo", "", nil, Config{
		Scheduler:  sched,
		MaxHistory: 5,
	})
	for i := 0; i < 12; i++ {
		s.SetTextContent(0, strings.Repeat("x", i+1))
		sched.Advance(600 * time.Millisecond)
	}
	if got := s.HistoryLen(); got != 5 {
		t.Fatalf("snapshots = %d, want 5", got)
	}
	undos := 0
	for s.Undo() {
		undos++
	}
	if undos != 4 {
		t.Fatalf("undo steps = %d, want 4", undos)
	}
}

func TestLoadMarkdownReplacesDocumentUndoably(t *testing.T) {
	s, sched, _ := newTestSession(t, "original", nil)

	s.LoadMarkdown("recovered line\n\n<!-- block -->\n\n---\n")
	sched.Advance(600 * time.Millisecond)

	if got := s.Len(); got != 2 {
		t.Fatalf("blocks = %d, want 2", got)
	}
	if got := sessionText(t, s, 0); got != "recovered line" {
		t.Fatalf("content = %q", got)
	}
	if !s.Dirty() {
		t.Fatal("load should mark the session dirty")
	}
	if !s.Undo() {
		t.Fatal("undo after load")
	}
	if got := sessionText(t, s, 0); got != "original" {
		t.Fatalf("after undo = %q", got)
	}
}

func sessionText(t *testing.T, s *Session, index int) string {
	t.Helper()
	b, ok := s.Block(index)
	if !ok {
		t.Fatalf("no block at %d", index)
	}
	txt, ok := b.(*domain.TextBlock)
	if !ok {
		t.Fatalf("block %d is %T", index, b)
	}
	return txt.Content
}

func TestDeleteLastBlockResetsToEmptyText(t *testing.T) {
	s, _, _ := newTestSession(t, "only", nil)
	if !s.DeleteBlock(0) {
		t.Fatal("delete failed")
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	if got := sessionText(t, s, 0); got != "" {
		t.Fatalf("survivor content = %q, want empty", got)
	}
}

func TestMoveBlockDownCompensatesRemoval(t *testing.T) {
	s, _, _ := newTestSession(t, "a\n\n<!-- block -->\n\nb\n\n<!-- block -->\n\nc", nil)
	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	// drop block 0 below block 1: insertion index 2 in pre-removal terms
	if !s.MoveBlock(0, 2) {
		t.Fatal("move failed")
	}
	want := []string{"b", "a", "c"}
	for i, w := range want {
		if got := sessionText(t, s, i); got != w {
			t.Fatalf("block %d = %q, want %q", i, got, w)
		}
	}
}

func TestDropIndex(t *testing.T) {
	mids := []int{10, 30, 50}
	cases := []struct{ y, want int }{
		{0, 0}, {9, 0}, {10, 1}, {29, 1}, {40, 2}, {50, 3}, {99, 3},
	}
	for _, c := range cases {
		if got := DropIndex(mids, c.y); got != c.want {
			t.Errorf("DropIndex(%d) = %d, want %d", c.y, got, c.want)
		}
	}
}

func TestExecuteSlashReplacesEmptySourceBlock(t *testing.T) {
	s, _, _ := newTestSession(t, "", nil)
	b, _ := s.Block(0)

	var m slash.Menu
	m.OpenForTyping(b.BlockID(), 0)
	s.SetTextContent(0, "/div")
	m.SetFilter("div")

	created, ok := s.ExecuteSlash(&m)
	if !ok {
		t.Fatal("execute failed")
	}
	if created.Type() != domain.BlockTypeDivider {
		t.Fatalf("created %v, want divider", created.Type())
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1 (replaced, not inserted)", s.Len())
	}
	if m.IsOpen() {
		t.Fatal("menu should be closed")
	}
}

func TestExecuteSlashInsertsAfterNonEmptySource(t *testing.T) {
	s, _, _ := newTestSession(t, "intro text", nil)
	b, _ := s.Block(0)

	s.SetTextContent(0, "intro text\n/code")
	var m slash.Menu
	m.OpenForTyping(b.BlockID(), 1)
	m.SetFilter("code")

	created, ok := s.ExecuteSlash(&m)
	if !ok {
		t.Fatal("execute failed")
	}
	if created.Type() != domain.BlockTypeCode {
		t.Fatalf("created %v, want code", created.Type())
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	// the trigger line lost its / and filter but the intro stays
	if got := sessionText(t, s, 0); got != "intro text\n" {
		t.Fatalf("source content = %q", got)
	}
}

func TestExecuteSlashFromInsertButton(t *testing.T) {
	s, _, _ := newTestSession(t, "a\n\n<!-- block -->\n\nb", nil)
	var m slash.Menu
	m.OpenForInsert(1)
	m.SetFilter("callout")

	created, ok := s.ExecuteSlash(&m)
	if !ok || created.Type() != domain.BlockTypeCallout {
		t.Fatalf("created %v ok=%v, want callout", created, ok)
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	if _, isCallout := mustBlock(t, s, 1).(*domain.CalloutBlock); !isCallout {
		t.Fatalf("block 1 is %T, want callout", mustBlock(t, s, 1))
	}
}

func mustBlock(t *testing.T, s *Session, i int) domain.Block {
	t.Helper()
	b, ok := s.Block(i)
	if !ok {
		t.Fatalf("no block at %d", i)
	}
	return b
}
