package markdown_test

import (
	"strings"
	"testing"

	"bactrack/internal/platform/markdown"
)

type noteMeta struct {
	ID    string  `yaml:"id"`
	Peak  float64 `yaml:"peak_bac"`
	Count int     `yaml:"drink_count"`
}

func TestFrontmatterRoundTripIntoStruct(t *testing.T) {
	t.Parallel()
	rendered, err := markdown.RenderFrontmatter(noteMeta{ID: "s-1", Peak: 0.051, Count: 3}, "# Session\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(rendered, "---\n") || !strings.Contains(rendered, "peak_bac: 0.051") {
		t.Fatalf("unexpected rendering: %s", rendered)
	}
	var meta noteMeta
	body, err := markdown.DecodeFrontmatter(rendered, &meta)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.ID != "s-1" || meta.Count != 3 || body != "\n# Session\n" {
		t.Fatalf("unexpected decode: %+v body=%q", meta, body)
	}
}

func TestDecodeFrontmatterWithoutHeader(t *testing.T) {
	t.Parallel()
	var meta noteMeta
	body, err := markdown.DecodeFrontmatter("plain body", &meta)
	if err != nil || body != "plain body" || meta.ID != "" {
		t.Fatalf("expected passthrough, got body=%q meta=%+v err=%v", body, meta, err)
	}
	if _, err := markdown.DecodeFrontmatter("---\nid: x\n", &meta); err == nil {
		t.Fatalf("expected missing separator error")
	}
}
