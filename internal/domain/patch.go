package domain

// Patch is a partial block update. Nil fields are left untouched; fields
// that do not apply to the target block's type are ignored. This is the
// typed equivalent of merging a loose field map into a block.
type Patch struct {
	Content  *string
	Align    *Alignment
	Src      *string
	Alt      *string
	Style    *string
	Language *string
	Code     *string
	HTML     *string
}

// StringPtr is a convenience for building patches.
func StringPtr(s string) *string { return &s }

// AlignPtr is a convenience for building patches.
func AlignPtr(a Alignment) *Alignment { return &a }

// Apply merges the patch into the block in place.
func Apply(b Block, p Patch) {
	switch blk := b.(type) {
	case *TextBlock:
		if p.Content != nil {
			blk.Content = *p.Content
		}
		if p.Align != nil {
			blk.Align = *p.Align
		}
	case *ImageBlock:
		if p.Src != nil {
			blk.Src = *p.Src
		}
		if p.Alt != nil {
			blk.Alt = *p.Alt
		}
		if p.Style != nil {
			blk.Style = *p.Style
		}
		if p.Align != nil {
			blk.Align = *p.Align
		}
	case *VideoBlock:
		if p.Src != nil {
			blk.Src = *p.Src
		}
		if p.Style != nil {
			blk.Style = *p.Style
		}
		if p.Align != nil {
			blk.Align = *p.Align
		}
	case *CodeBlock:
		if p.Language != nil {
			blk.Language = *p.Language
		}
		if p.Code != nil {
			blk.Code = *p.Code
		}
	case *HTMLBlock:
		if p.HTML != nil {
			blk.HTML = *p.HTML
		}
		if p.Align != nil {
			blk.Align = *p.Align
		}
	case *CalloutBlock:
		if p.Content != nil {
			blk.Content = *p.Content
		}
		if p.Align != nil {
			blk.Align = *p.Align
		}
	case *RowBlock, *DividerBlock:
		// No patchable fields.
	}
}
