package mcpserver

import (
	"strings"
	"testing"

	"blockpad/internal/domain"
)

func TestSummarize(t *testing.T) {
	txt := domain.New(domain.BlockTypeText).(*domain.TextBlock)
	txt.Content = "first line\nsecond line"
	sum := summarize(3, txt)
	if sum.Index != 3 || sum.Type != "text" {
		t.Errorf("summary = %+v", sum)
	}
	if strings.Contains(sum.Excerpt, "\n") {
		t.Errorf("excerpt kept newlines: %q", sum.Excerpt)
	}

	long := domain.New(domain.BlockTypeCallout).(*domain.CalloutBlock)
	long.Content = strings.Repeat("x", 200)
	if got := summarize(0, long).Excerpt; len(got) != 80 || !strings.HasSuffix(got, "...") {
		t.Errorf("long excerpt = %q (len %d)", got, len(got))
	}
}

func TestParseBlockType(t *testing.T) {
	if _, err := parseBlockType("image"); err != nil {
		t.Errorf("image rejected: %v", err)
	}
	if _, err := parseBlockType("canvas"); err == nil {
		t.Error("unknown type accepted")
	}
}
