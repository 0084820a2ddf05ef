// Package slash is the state machine behind the block-insertion menu,
// opened by typing "/" at the start of a line or by clicking an
// insertion point between blocks.
package slash

import (
	"strings"

	"blockpad/internal/domain"
)

// Source distinguishes how the menu was opened; execution semantics
// differ between the two.
type Source int

const (
	SourceTyping Source = iota
	SourceButton
)

// Command is one insertable block type with its menu presentation.
type Command struct {
	ID          string
	Label       string
	Icon        string
	Description string
	Type        domain.BlockType
}

var commands = []Command{
	{ID: "text", Label: "Text", Icon: "¶", Description: "Plain paragraph text", Type: domain.BlockTypeText},
	{ID: "image", Label: "Image", Icon: "🖼", Description: "Upload or embed an image", Type: domain.BlockTypeImage},
	{ID: "video", Label: "Video", Icon: "🎬", Description: "Upload or embed a video", Type: domain.BlockTypeVideo},
	{ID: "code", Label: "Code", Icon: "⌨", Description: "Code snippet with syntax highlighting", Type: domain.BlockTypeCode},
	{ID: "html", Label: "HTML", Icon: "<>", Description: "Raw HTML embed", Type: domain.BlockTypeHTML},
	{ID: "callout", Label: "Callout", Icon: "💡", Description: "Highlighted note box", Type: domain.BlockTypeCallout},
	{ID: "divider", Label: "Divider", Icon: "—", Description: "Horizontal rule", Type: domain.BlockTypeDivider},
}

// Commands returns the full candidate list in menu order.
func Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// Menu is the transient menu state. The zero value is a closed menu.
type Menu struct {
	open        bool
	source      Source
	blockID     string
	line        int
	insertIndex int
	filter      string
	selected    int
}

// OpenForTyping opens the menu anchored to the line of a text block
// where the operator typed "/".
func (m *Menu) OpenForTyping(blockID string, line int) {
	*m = Menu{open: true, source: SourceTyping, blockID: blockID, line: line}
}

// OpenForInsert opens the menu anchored to an insertion point.
func (m *Menu) OpenForInsert(index int) {
	*m = Menu{open: true, source: SourceButton, insertIndex: index}
}

func (m *Menu) Close() { *m = Menu{} }

func (m *Menu) IsOpen() bool     { return m.open }
func (m *Menu) Source() Source   { return m.source }
func (m *Menu) BlockID() string  { return m.blockID }
func (m *Menu) Line() int        { return m.line }
func (m *Menu) InsertIndex() int { return m.insertIndex }
func (m *Menu) Filter() string   { return m.filter }

// SetFilter replaces the filter text typed after the "/" and resets the
// selection to the first match.
func (m *Menu) SetFilter(f string) {
	m.filter = f
	m.selected = 0
}

// Filtered returns the commands matching the filter, case-insensitively
// against label, id and description.
func (m *Menu) Filtered() []Command {
	if m.filter == "" {
		return Commands()
	}
	needle := strings.ToLower(m.filter)
	var out []Command
	for _, c := range commands {
		if strings.Contains(strings.ToLower(c.Label), needle) ||
			strings.Contains(strings.ToLower(c.ID), needle) ||
			strings.Contains(strings.ToLower(c.Description), needle) {
			out = append(out, c)
		}
	}
	return out
}

// Move cycles the selection with wraparound.
func (m *Menu) Move(delta int) {
	n := len(m.Filtered())
	if n == 0 {
		m.selected = 0
		return
	}
	m.selected = ((m.selected+delta)%n + n) % n
}

// Selected returns the highlighted command, if any match the filter.
func (m *Menu) Selected() (Command, bool) {
	filtered := m.Filtered()
	if len(filtered) == 0 {
		return Command{}, false
	}
	if m.selected >= len(filtered) {
		return filtered[0], true
	}
	return filtered[m.selected], true
}

// SelectedIndex returns the highlight position within Filtered.
func (m *Menu) SelectedIndex() int { return m.selected }
