package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"blockpad/internal/domain"
	"blockpad/internal/editor"
	"blockpad/internal/inline"
)

var (
	styleBase     = tcell.StyleDefault
	styleDim      = styleBase.Foreground(tcell.ColorGray)
	styleSelected = styleBase.Background(tcell.ColorDarkSlateGray)
	styleHeading  = styleBase.Bold(true).Foreground(tcell.ColorLightCyan)
	styleCode     = styleBase.Foreground(tcell.ColorLightGoldenrodYellow)
	styleCallout  = styleBase.Foreground(tcell.ColorLightGreen)
	styleLink     = styleBase.Foreground(tcell.ColorLightBlue).Underline(true)
	styleStatus   = styleBase.Reverse(true)
	styleMenuSel  = styleBase.Reverse(true).Bold(true)
)

func (u *UI) draw() {
	u.screen.Clear()
	u.screen.HideCursor()
	w, h := u.screen.Size()
	body := h - 1

	y := 0
	for i := 0; i < len(u.doc) && y < body; i++ {
		y = u.drawBlock(i, u.doc[i], y, w, body)
	}
	u.drawStatus(w, h-1)
	if u.menu.IsOpen() {
		u.drawMenu(w, h)
	}
	if u.mode == modeConfirm {
		u.print(0, h-1, styleStatus.Foreground(tcell.ColorYellow), padTo(u.confirm, w))
	}
	u.screen.Show()
}

func (u *UI) drawBlock(i int, b domain.Block, y, w, maxY int) int {
	selected := i == u.sel && u.mode != modeEdit
	gutter := "  "
	if selected {
		gutter = "> "
	}
	base := styleBase
	if selected {
		base = styleSelected
	}

	editing := u.mode == modeEdit && i == u.editIdx

	switch v := b.(type) {
	case *domain.TextBlock:
		if editing {
			return u.drawEditor(y, w, maxY)
		}
		return u.drawText(v.Content, gutter, base, y, w, maxY)
	case *domain.CalloutBlock:
		if editing {
			return u.drawEditor(y, w, maxY)
		}
		return u.drawText(v.Content, gutter+"│ ", styleCallout, y, w, maxY)
	case *domain.ImageBlock:
		label := v.Src
		if label == "" {
			label = "(empty image — set a source)"
		}
		u.print(0, y, base, gutter+"[image] "+label)
		return y + 1
	case *domain.VideoBlock:
		u.print(0, y, base, gutter+"[video] "+v.Src)
		return y + 1
	case *domain.CodeBlock:
		u.print(0, y, base, gutter+"[code:"+v.Language+"]")
		y++
		for _, line := range strings.Split(v.Code, "\n") {
			if y >= maxY {
				return y
			}
			u.print(0, y, styleCode, gutter+"  "+line)
			y++
		}
		return y
	case *domain.HTMLBlock:
		u.print(0, y, base, gutter+"[html] "+firstLine(v.HTML))
		return y + 1
	case *domain.RowBlock:
		u.print(0, y, base, gutter+"[row]")
		y++
		half := w / 2
		left := summary(v.Left)
		right := summary(v.Right)
		if y < maxY {
			u.print(0, y, styleDim, gutter+"  "+runewidth.Truncate(left, half-4, "…"))
			u.print(half, y, styleDim, runewidth.Truncate(right, half-2, "…"))
			y++
		}
		return y
	case *domain.DividerBlock:
		u.print(0, y, styleDim, gutter+strings.Repeat("─", max(0, w-4)))
		return y + 1
	default:
		u.print(0, y, base, gutter+"[?]")
		return y + 1
	}
}

func summary(b domain.Block) string {
	switch v := b.(type) {
	case *domain.TextBlock:
		return firstLine(v.Content)
	case *domain.ImageBlock:
		return "[image] " + v.Src
	case *domain.VideoBlock:
		return "[video] " + v.Src
	case *domain.CodeBlock:
		return "[code:" + v.Language + "]"
	case *domain.CalloutBlock:
		return "| " + firstLine(v.Content)
	case *domain.HTMLBlock:
		return "[html]"
	default:
		return ""
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// drawText renders formatted lines through the inline tokenizer.
func (u *UI) drawText(content, gutter string, base tcell.Style, y, w, maxY int) int {
	lines := strings.Split(content, "\n")
	if content == "" {
		u.print(0, y, styleDim, gutter+"(empty — press enter to write)")
		return y + 1
	}
	for _, raw := range lines {
		if y >= maxY {
			return y
		}
		u.drawFormattedLine(raw, gutter, base, y)
		y++
	}
	return y
}

func (u *UI) drawFormattedLine(raw, gutter string, base tcell.Style, y int) {
	ln := inline.RenderLine(raw)
	x := u.print(0, y, base, gutter)

	switch ln.Kind {
	case inline.LineDivider:
		u.print(x, y, styleDim, strings.Repeat("─", 20))
		return
	case inline.LineHeading:
		u.print(x, y, styleHeading, strings.Repeat("#", ln.Level)+" ")
		x += ln.Level + 1
		u.drawSpans(x, y, styleHeading, ln.Spans)
		return
	case inline.LineBlockquote:
		x = u.print(x, y, styleDim, "│ ")
		u.drawSpans(x, y, styleDim.Italic(true), ln.Spans)
		return
	case inline.LineListItem:
		marker := "• "
		if ln.Ordered {
			marker = fmt.Sprintf("%d. ", ln.Number)
		}
		x = u.print(x, y, base, marker)
		if ln.Task {
			box := "☐ "
			if ln.Checked {
				box = "☑ "
			}
			x = u.print(x, y, base, box)
		}
		u.drawSpans(x, y, base, ln.Spans)
		return
	default:
		u.drawSpans(x, y, base, ln.Spans)
	}
}

func (u *UI) drawSpans(x, y int, base tcell.Style, spans []inline.Span) int {
	for _, sp := range spans {
		x = u.drawSpan(x, y, base, sp)
	}
	return x
}

func (u *UI) drawSpan(x, y int, base tcell.Style, sp inline.Span) int {
	st := base
	switch sp.Kind {
	case inline.SpanCode:
		return u.print(x, y, styleCode, sp.Text)
	case inline.SpanText:
		return u.print(x, y, base, sp.Text)
	case inline.SpanBold:
		st = base.Bold(true)
	case inline.SpanItalic:
		st = base.Italic(true)
	case inline.SpanUnderline:
		st = base.Underline(true)
	case inline.SpanStrike:
		st = base.StrikeThrough(true)
	case inline.SpanLink:
		st = styleLink
	}
	for _, child := range sp.Children {
		x = u.drawSpan(x, y, st, child)
	}
	return x
}

// drawEditor renders the block under edit as raw lines with a caret.
func (u *UI) drawEditor(y, w, maxY int) int {
	for i, line := range u.ed.Lines() {
		if y >= maxY {
			return y
		}
		style := styleBase
		if i == u.caret.Line {
			style = styleBase.Bold(true)
		}
		u.print(0, y, style, "~ "+line)
		if i == u.caret.Line {
			cx := 2 + runewidth.StringWidth(string([]rune(line)[:min(u.caret.Col, runeLen(line))]))
			u.screen.ShowCursor(cx, y)
		}
		y++
	}
	return y
}

func (u *UI) drawStatus(w, y int) {
	state := u.session.State()
	label := map[editor.SaveState]string{
		editor.StateUnchanged: "",
		editor.StatePending:   "…",
		editor.StateSaving:    "saving",
		editor.StateSaved:     "saved ✓",
		editor.StateSaveError: "save failed — retrying",
	}[state]

	left := fmt.Sprintf(" %s  %s", u.page, label)
	hints := "^S save  ^Z undo  q quit"
	if u.mode == modeEdit {
		hints = "esc done  ^B bold  ^U underline  ^K link  tab indent"
	}
	if u.status != "" {
		hints = u.status
	}
	pad := w - runewidth.StringWidth(left) - runewidth.StringWidth(hints) - 1
	if pad < 1 {
		pad = 1
	}
	u.print(0, y, styleStatus, padTo(left+strings.Repeat(" ", pad)+hints, w))
}

func (u *UI) drawMenu(w, h int) {
	cmds := u.menu.Filtered()
	top := h - len(cmds) - 3
	if top < 0 {
		top = 0
	}
	u.print(2, top, styleStatus, padTo(" insert block: /"+u.menu.Filter(), 40))
	for i, c := range cmds {
		st := styleBase
		if i == u.menu.SelectedIndex() {
			st = styleMenuSel
		}
		u.print(2, top+1+i, st, padTo(fmt.Sprintf(" %s %-8s %s", c.Icon, c.Label, c.Description), 40))
	}
	if len(cmds) == 0 {
		u.print(2, top+1, styleDim, padTo(" no matching block type", 40))
	}
}

// print draws text at (x, y) and returns the x after the last cell.
func (u *UI) print(x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		u.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
	return x
}

func padTo(s string, w int) string {
	d := w - runewidth.StringWidth(s)
	if d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}
