// Package ui is the interactive terminal surface: a block list with
// live inline formatting, line-based text editing, a slash menu and
// the save-state indicator.
package ui

import (
	"context"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"blockpad/internal/app"
	"blockpad/internal/domain"
	"blockpad/internal/editor"
	"blockpad/internal/extedit"
	"blockpad/internal/lineedit"
	"blockpad/internal/markdown"
	"blockpad/internal/slash"
)

type mode int

const (
	modeBrowse mode = iota
	modeEdit
	modeConfirm
)

// UI drives one editing session in the terminal.
type UI struct {
	screen  tcell.Screen
	app     *app.App
	session *editor.Session
	page    string

	doc    domain.Document
	sel    int
	scroll int

	mode    mode
	ed      *lineedit.Editor
	editIdx int
	caret   lineedit.Caret

	menu      slash.Menu
	confirmFn func(yes bool)
	confirm   string
	status    string
}

// Run opens a session for page and blocks until the operator saves or
// cancels.
func Run(a *app.App, page string) error {
	session, err := a.Open(page)
	if err != nil {
		return err
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	u := &UI{screen: screen, app: a, session: session, page: page}
	u.refresh()
	u.offerDraft()
	a.AddListener(u)
	return u.loop()
}

// offerDraft checks the journal for an autosaved draft that never made
// it to the page file and asks whether to recover it.
func (u *UI) offerDraft() {
	d, ok, err := u.app.LatestDraft(u.page)
	if err != nil || !ok || !draftDiffers(d.Content, u.session.Markdown()) {
		return
	}
	msg := fmt.Sprintf("recover unsaved draft from %s? (y/n)", d.CreatedAt.Local().Format("Jan 2 15:04"))
	u.ask(msg, func(yes bool) {
		if yes {
			u.session.LoadMarkdown(d.Content)
			u.refresh()
		}
	})
}

// draftDiffers reports whether a journaled draft would change the
// current document. The session serialization is normalized, so the
// draft is normalized too before comparing; a page on disk in a legacy
// form must not prompt for recovery when the draft matches it.
func draftDiffers(draft, current string) bool {
	return markdown.Serialize(markdown.Parse(draft)) != current
}

// Emit wakes the event loop so session-driven changes (save state
// transitions, MCP edits) repaint promptly.
func (u *UI) Emit(_ context.Context, event string, _ any) {
	_ = u.screen.PostEvent(tcell.NewEventInterrupt(event))
}

func (u *UI) refresh() {
	u.doc = u.session.Document()
	if u.sel >= len(u.doc) {
		u.sel = len(u.doc) - 1
	}
	if u.sel < 0 {
		u.sel = 0
	}
}

func (u *UI) loop() error {
	for {
		u.draw()
		switch ev := u.screen.PollEvent().(type) {
		case *tcell.EventResize:
			u.screen.Sync()
		case *tcell.EventInterrupt:
			if u.session.Closed() {
				return nil
			}
			if u.mode != modeEdit {
				u.refresh()
			}
		case *tcell.EventKey:
			if quit := u.handleKey(ev); quit {
				return nil
			}
			if u.session.Closed() {
				return nil
			}
		}
	}
}

func (u *UI) handleKey(ev *tcell.EventKey) bool {
	switch u.mode {
	case modeConfirm:
		u.handleConfirmKey(ev)
		return false
	case modeEdit:
		return u.handleEditKey(ev)
	default:
		return u.handleBrowseKey(ev)
	}
}

func (u *UI) handleConfirmKey(ev *tcell.EventKey) {
	fn := u.confirmFn
	u.mode = modeBrowse
	u.confirmFn = nil
	u.confirm = ""
	if fn == nil {
		return
	}
	fn(ev.Rune() == 'y' || ev.Rune() == 'Y')
}

func (u *UI) ask(msg string, fn func(yes bool)) {
	u.mode = modeConfirm
	u.confirm = msg
	u.confirmFn = fn
}

func (u *UI) handleBrowseKey(ev *tcell.EventKey) bool {
	if u.menu.IsOpen() {
		u.handleMenuKey(ev)
		return false
	}
	switch ev.Key() {
	case tcell.KeyCtrlS:
		if err := u.session.ManualSave(context.Background()); err != nil {
			u.status = fmt.Sprintf("save failed: %v", err)
			return false
		}
		return true
	case tcell.KeyCtrlZ:
		u.session.Undo()
		u.refresh()
		return false
	case tcell.KeyCtrlY:
		u.session.Redo()
		u.refresh()
		return false
	case tcell.KeyEscape:
		u.requestQuit()
		return false
	case tcell.KeyUp:
		u.moveSel(-1)
		return false
	case tcell.KeyDown:
		u.moveSel(1)
		return false
	case tcell.KeyEnter:
		u.enterEdit()
		return false
	}
	switch ev.Rune() {
	case 'q':
		u.requestQuit()
	case 'k':
		u.moveSel(-1)
	case 'j':
		u.moveSel(1)
	case 'K':
		if u.session.MoveBlock(u.sel, u.sel-1) {
			u.sel--
			u.refresh()
		}
	case 'J':
		// insertion index counted before removal
		if u.session.MoveBlock(u.sel, u.sel+2) {
			u.sel++
			u.refresh()
		}
	case 'd':
		idx := u.sel
		u.ask(fmt.Sprintf("delete block %d? (y/n)", idx), func(yes bool) {
			if yes {
				u.session.DeleteBlock(idx)
				u.refresh()
			}
		})
	case 'o':
		u.menu.OpenForInsert(u.sel + 1)
	case 'u':
		u.session.Undo()
		u.refresh()
	case 'r':
		u.session.Redo()
		u.refresh()
	case 'e':
		u.externalEdit()
	}
	return false
}

func (u *UI) requestQuit() {
	if !u.session.Dirty() {
		u.session.Cancel(false)
		return
	}
	u.ask("discard unsaved changes? (y/n)", func(yes bool) {
		if yes {
			u.session.Cancel(true)
		}
	})
}

func (u *UI) moveSel(delta int) {
	next := u.sel + delta
	if next >= 0 && next < len(u.doc) {
		u.sel = next
	}
}

func (u *UI) enterEdit() {
	if u.sel >= len(u.doc) {
		return
	}
	var text string
	switch b := u.doc[u.sel].(type) {
	case *domain.TextBlock:
		text = b.Content
	case *domain.CalloutBlock:
		text = b.Content
	default:
		u.status = "only text and callout blocks are editable inline"
		return
	}
	u.ed = lineedit.New(text)
	u.editIdx = u.sel
	u.ed.Activate(0)
	u.caret = lineedit.Caret{}
	u.mode = modeEdit
}

func (u *UI) commitEdit() {
	u.session.SetTextContent(u.editIdx, u.ed.Content())
}

func (u *UI) exitEdit() {
	u.commitEdit()
	u.ed = nil
	u.menu.Close()
	u.mode = modeBrowse
	u.refresh()
}

func (u *UI) handleEditKey(ev *tcell.EventKey) bool {
	if u.menu.IsOpen() {
		u.handleMenuKey(ev)
		return false
	}
	line := u.ed.Line(u.caret.Line)

	switch ev.Key() {
	case tcell.KeyEscape:
		u.exitEdit()
	case tcell.KeyEnter:
		u.caret = u.ed.Enter(u.caret.Line, u.caret.Col)
		u.commitEdit()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if u.caret.Col > 0 {
			u.setLineRunes(deleteRune(line, u.caret.Col-1))
			u.caret.Col--
		} else if c, ok := u.ed.MergeWithPrevious(u.caret.Line); ok {
			u.caret = c
		}
		u.commitEdit()
	case tcell.KeyDelete:
		if u.caret.Col < runeLen(line) {
			u.setLineRunes(deleteRune(line, u.caret.Col))
		} else if c, ok := u.ed.MergeWithNext(u.caret.Line); ok {
			u.caret = c
		}
		u.commitEdit()
	case tcell.KeyLeft:
		if u.caret.Col > 0 {
			u.caret.Col--
		}
	case tcell.KeyRight:
		if u.caret.Col < runeLen(line) {
			u.caret.Col++
		}
	case tcell.KeyUp:
		if c, ok := u.ed.ActivatePrevious(u.caret.Line); ok {
			u.caret = c
			u.clampCaret()
		}
	case tcell.KeyDown:
		if c, ok := u.ed.ActivateNext(u.caret.Line); ok {
			u.caret = c
			u.clampCaret()
		}
	case tcell.KeyHome:
		u.caret.Col = 0
	case tcell.KeyEnd:
		u.caret.Col = runeLen(line)
	case tcell.KeyTab:
		u.setLineKeepCaret(lineedit.Indent(line))
	case tcell.KeyBacktab:
		u.setLineKeepCaret(lineedit.Outdent(line))
	case tcell.KeyCtrlB:
		u.toggleWrap("**")
	case tcell.KeyCtrlU:
		u.toggleWrap("<u>")
	case tcell.KeyCtrlK:
		u.insertLink()
	case tcell.KeyCtrlZ:
		u.exitEdit()
		u.session.Undo()
		u.refresh()
	case tcell.KeyRune:
		r := ev.Rune()
		if ev.Modifiers()&tcell.ModCtrl != 0 && (r == 'i' || r == 'I') {
			u.toggleWrap("*")
			return false
		}
		u.insertRune(r)
	}
	return false
}

func (u *UI) insertRune(r rune) {
	line := u.ed.Line(u.caret.Line)
	u.setLineRunes(insertRuneAt(line, u.caret.Col, r))
	u.caret.Col++
	if r == '/' && u.caret.Col == 1 {
		u.menu.OpenForTyping(u.doc[u.editIdx].BlockID(), u.caret.Line)
	}
	u.commitEdit()
}

func (u *UI) setLineRunes(text string) {
	u.ed.SetLine(u.caret.Line, text)
}

func (u *UI) setLineKeepCaret(text string) {
	old := u.ed.Line(u.caret.Line)
	u.ed.SetLine(u.caret.Line, text)
	u.caret.Col += runeLen(text) - runeLen(old)
	u.clampCaret()
	u.commitEdit()
}

func (u *UI) clampCaret() {
	n := runeLen(u.ed.Line(u.caret.Line))
	if u.caret.Col > n {
		u.caret.Col = n
	}
	if u.caret.Col < 0 {
		u.caret.Col = 0
	}
}

func (u *UI) toggleWrap(delim string) {
	line := u.ed.Line(u.caret.Line)
	out, _, end := lineedit.ToggleWrap(line, u.caret.Col, u.caret.Col, delim)
	u.ed.SetLine(u.caret.Line, out)
	u.caret.Col = end
	u.clampCaret()
	u.commitEdit()
}

func (u *UI) insertLink() {
	line := u.ed.Line(u.caret.Line)
	if l, ok := lineedit.FindLinkAt(line, u.caret.Col); ok {
		out, col := lineedit.RemoveLink(line, l)
		u.ed.SetLine(u.caret.Line, out)
		u.caret.Col = col
	} else {
		out, _, end := lineedit.InsertLink(line, u.caret.Col, u.caret.Col, "https://")
		u.ed.SetLine(u.caret.Line, out)
		u.caret.Col = end
	}
	u.clampCaret()
	u.commitEdit()
}

// handleMenuKey drives the slash menu. For a typed trigger the filter
// text also lives in the source line, so edits go to both.
func (u *UI) handleMenuKey(ev *tcell.EventKey) {
	typed := u.menu.Source() == slash.SourceTyping && u.mode == modeEdit

	switch ev.Key() {
	case tcell.KeyEscape:
		u.menu.Close()
	case tcell.KeyUp:
		u.menu.Move(-1)
	case tcell.KeyDown, tcell.KeyTab:
		u.menu.Move(1)
	case tcell.KeyEnter:
		if typed {
			u.commitEdit()
		}
		if _, ok := u.session.ExecuteSlash(&u.menu); ok {
			if u.mode == modeEdit {
				u.ed = nil
				u.mode = modeBrowse
			}
			u.refresh()
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		f := u.menu.Filter()
		if f == "" {
			u.menu.Close()
		} else {
			u.menu.SetFilter(f[:len(f)-1])
		}
		if typed {
			u.deleteBeforeCaret()
		}
	case tcell.KeyRune:
		r := ev.Rune()
		u.menu.SetFilter(u.menu.Filter() + string(r))
		if typed {
			line := u.ed.Line(u.caret.Line)
			u.ed.SetLine(u.caret.Line, insertRuneAt(line, u.caret.Col, r))
			u.caret.Col++
			u.commitEdit()
		}
	}
}

func (u *UI) deleteBeforeCaret() {
	line := u.ed.Line(u.caret.Line)
	if u.caret.Col > 0 {
		u.ed.SetLine(u.caret.Line, deleteRune(line, u.caret.Col-1))
		u.caret.Col--
	}
	u.commitEdit()
}

// externalEdit hands the selected block to $EDITOR through the pty
// bridge, streaming saves back into the session while it runs.
func (u *UI) externalEdit() {
	if u.sel >= len(u.doc) {
		return
	}
	var text string
	switch b := u.doc[u.sel].(type) {
	case *domain.TextBlock:
		text = b.Content
	case *domain.CalloutBlock:
		text = b.Content
	default:
		u.status = "external edit works on text and callout blocks"
		return
	}
	idx := u.sel
	id := u.doc[idx].BlockID()

	w, h := u.screen.Size()
	if err := u.screen.Suspend(); err != nil {
		u.status = fmt.Sprintf("suspend: %v", err)
		return
	}
	oldState, rawErr := term.MakeRaw(int(os.Stdin.Fd()))

	done := make(chan struct{})
	m := extedit.New(u.app.Config().Editor, extedit.Hooks{
		Data: func(d []byte) { os.Stdout.Write(d) },
		Update: func(_, content string) {
			u.session.SetTextContent(idx, content)
		},
		Done: func(_, content string) {
			u.session.SetTextContent(idx, content)
			close(done)
		},
	})
	m.Resize(uint16(w), uint16(h))
	if err := m.OpenBlock(id, text, 1); err != nil {
		if rawErr == nil {
			term.Restore(int(os.Stdin.Fd()), oldState)
		}
		u.screen.Resume()
		u.status = fmt.Sprintf("editor: %v", err)
		return
	}
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				if werr := m.Write(buf[:n]); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	<-done
	if rawErr == nil {
		term.Restore(int(os.Stdin.Fd()), oldState)
	}
	u.screen.Resume()
	u.refresh()
}

func insertRuneAt(s string, col int, r rune) string {
	rs := []rune(s)
	if col < 0 {
		col = 0
	}
	if col > len(rs) {
		col = len(rs)
	}
	out := make([]rune, 0, len(rs)+1)
	out = append(out, rs[:col]...)
	out = append(out, r)
	out = append(out, rs[col:]...)
	return string(out)
}

func deleteRune(s string, col int) string {
	rs := []rune(s)
	if col < 0 || col >= len(rs) {
		return s
	}
	return string(append(rs[:col:col], rs[col+1:]...))
}

func runeLen(s string) int { return len([]rune(s)) }
