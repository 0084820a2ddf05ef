package domain

import "testing"

func TestApplyPatchOnlyTouchesSetFields(t *testing.T) {
	img := New(BlockTypeImage).(*ImageBlock)
	img.Src = "/media/a.png"
	img.Alt = "a"

	Apply(img, Patch{Alt: StringPtr("better alt")})
	if img.Src != "/media/a.png" || img.Alt != "better alt" {
		t.Fatalf("patched image = %+v", img)
	}

	Apply(img, Patch{Align: AlignPtr(AlignCenter), Style: StringPtr("width: 50%")})
	if img.Align != AlignCenter || img.Style != "width: 50%" {
		t.Fatalf("patched image = %+v", img)
	}
}

func TestApplyPatchIgnoresWrongType(t *testing.T) {
	d := New(BlockTypeDivider)
	Apply(d, Patch{Content: StringPtr("x")}) // no payload fields; must not panic

	code := New(BlockTypeCode).(*CodeBlock)
	Apply(code, Patch{Src: StringPtr("nope"), Language: StringPtr("go")})
	if code.Language != "go" {
		t.Fatalf("language = %q", code.Language)
	}
}

func TestCloneDocumentIsDeep(t *testing.T) {
	doc := Document{New(BlockTypeText), New(BlockTypeRow)}
	doc[0].(*TextBlock).Content = "original"

	cp := CloneDocument(doc)
	cp[0].(*TextBlock).Content = "changed"
	if doc[0].(*TextBlock).Content != "original" {
		t.Fatal("clone shares text block")
	}
	row := doc[1].(*RowBlock)
	cpRow := cp[1].(*RowBlock)
	if row.Left == cpRow.Left {
		t.Fatal("clone shares row children")
	}
	if row.Left.BlockID() != cpRow.Left.BlockID() {
		t.Fatal("clone changed ids")
	}
}
