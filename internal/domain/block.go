package domain

import "github.com/google/uuid"

type BlockType string

const (
	BlockTypeText    BlockType = "text"
	BlockTypeImage   BlockType = "image"
	BlockTypeVideo   BlockType = "video"
	BlockTypeCode    BlockType = "code"
	BlockTypeHTML    BlockType = "html"
	BlockTypeCallout BlockType = "callout"
	BlockTypeRow     BlockType = "row"
	BlockTypeDivider BlockType = "divider"
)

// Alignment of a block within the page flow. Left is the default and is
// never written to the persisted form.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Block is one unit of page content. The concrete type carries the
// payload; a block never changes type in place (a type change is a
// delete plus an insert).
type Block interface {
	BlockID() string
	Type() BlockType
	// Clone returns a deep copy with the same id. Used for history
	// snapshots, never for inserting the copy next to the original.
	Clone() Block
}

// TextBlock holds multi-line markdown text. Empty content is valid and
// renders as a placeholder.
type TextBlock struct {
	ID      string
	Content string
	Align   Alignment
}

// ImageBlock with an empty Src renders as an upload zone, not an <img>.
// Style carries sizing declarations only (width, max-width); alignment
// lives in Align and is re-encoded on serialization.
type ImageBlock struct {
	ID    string
	Src   string
	Alt   string
	Style string
	Align Alignment
}

type VideoBlock struct {
	ID    string
	Src   string
	Style string
	Align Alignment
}

// CodeBlock has no alignment; code blocks are never aligned.
type CodeBlock struct {
	ID       string
	Language string
	Code     string
}

// HTMLBlock content is not sanitized. The trust boundary is the same
// operator who can already upload arbitrary files.
type HTMLBlock struct {
	ID    string
	HTML  string
	Align Alignment
}

// CalloutBlock content is plain text, no nested blocks.
type CalloutBlock struct {
	ID      string
	Content string
	Align   Alignment
}

// RowBlock holds exactly two children. Children may be any type except
// RowBlock; rows do not nest.
type RowBlock struct {
	ID    string
	Left  Block
	Right Block
}

type DividerBlock struct {
	ID string
}

func (b *TextBlock) BlockID() string    { return b.ID }
func (b *ImageBlock) BlockID() string   { return b.ID }
func (b *VideoBlock) BlockID() string   { return b.ID }
func (b *CodeBlock) BlockID() string    { return b.ID }
func (b *HTMLBlock) BlockID() string    { return b.ID }
func (b *CalloutBlock) BlockID() string { return b.ID }
func (b *RowBlock) BlockID() string     { return b.ID }
func (b *DividerBlock) BlockID() string { return b.ID }

func (b *TextBlock) Type() BlockType    { return BlockTypeText }
func (b *ImageBlock) Type() BlockType   { return BlockTypeImage }
func (b *VideoBlock) Type() BlockType   { return BlockTypeVideo }
func (b *CodeBlock) Type() BlockType    { return BlockTypeCode }
func (b *HTMLBlock) Type() BlockType    { return BlockTypeHTML }
func (b *CalloutBlock) Type() BlockType { return BlockTypeCallout }
func (b *RowBlock) Type() BlockType     { return BlockTypeRow }
func (b *DividerBlock) Type() BlockType { return BlockTypeDivider }

func (b *TextBlock) Clone() Block    { c := *b; return &c }
func (b *ImageBlock) Clone() Block   { c := *b; return &c }
func (b *VideoBlock) Clone() Block   { c := *b; return &c }
func (b *CodeBlock) Clone() Block    { c := *b; return &c }
func (b *HTMLBlock) Clone() Block    { c := *b; return &c }
func (b *CalloutBlock) Clone() Block { c := *b; return &c }
func (b *DividerBlock) Clone() Block { c := *b; return &c }

func (b *RowBlock) Clone() Block {
	c := &RowBlock{ID: b.ID}
	if b.Left != nil {
		c.Left = b.Left.Clone()
	}
	if b.Right != nil {
		c.Right = b.Right.Clone()
	}
	return c
}

// NewID returns a fresh opaque block id. Ids are stable for the life of
// a block and never reused.
func NewID() string {
	return uuid.New().String()
}

// New creates a block of the given type with its default payload. Row
// children get independently generated ids.
func New(t BlockType) Block {
	id := NewID()
	switch t {
	case BlockTypeText:
		return &TextBlock{ID: id, Align: AlignLeft}
	case BlockTypeImage:
		return &ImageBlock{ID: id, Align: AlignLeft}
	case BlockTypeVideo:
		return &VideoBlock{ID: id, Align: AlignLeft}
	case BlockTypeCode:
		return &CodeBlock{ID: id, Language: "text"}
	case BlockTypeHTML:
		return &HTMLBlock{ID: id, Align: AlignLeft}
	case BlockTypeCallout:
		return &CalloutBlock{ID: id, Align: AlignLeft}
	case BlockTypeRow:
		return &RowBlock{
			ID:    id,
			Left:  New(BlockTypeText),
			Right: New(BlockTypeText),
		}
	case BlockTypeDivider:
		return &DividerBlock{ID: id}
	default:
		return &TextBlock{ID: id, Align: AlignLeft}
	}
}
