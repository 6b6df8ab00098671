package markdown

import (
	"slices"
	"strings"
	"testing"

	"github.com/dshills/quire/internal/engine/buffer"
	"github.com/dshills/quire/internal/engine/format"
)

func mustImport(t *testing.T, src string) *buffer.Buffer {
	t.Helper()
	buf := buffer.NewBuffer()
	if err := Import([]byte(src), buf); err != nil {
		t.Fatalf("Import: %v", err)
	}
	return buf
}

func texts(buf *buffer.Buffer) []string {
	out := make([]string, buf.Count())
	for i := range out {
		out[i] = buf.Text(i)
	}
	return out
}

func TestImportParagraphsAndHeadings(t *testing.T) {
	buf := mustImport(t, "# Chapter One\n\nIt was a dark\nand stormy night.\n\nSecond paragraph.\n")

	want := []string{"Chapter One", "It was a dark and stormy night.", "Second paragraph."}
	if got := texts(buf); !slices.Equal(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	heading := []format.Range{{Start: 0, End: 11, Attrs: format.Bold()}}
	if got := buf.Formats(0); !slices.Equal(got, heading) {
		t.Errorf("expected bold heading %v, got %v", heading, got)
	}
	if len(buf.Formats(1)) != 0 {
		t.Errorf("expected plain body, got %v", buf.Formats(1))
	}
}

func TestImportEmphasis(t *testing.T) {
	buf := mustImport(t, "plain *it* **bold** ~~gone~~ ***both***")

	if buf.Text(0) != "plain it bold gone both" {
		t.Fatalf("unexpected text %q", buf.Text(0))
	}
	want := []format.Range{
		{Start: 6, End: 8, Attrs: format.Italic()},
		{Start: 9, End: 13, Attrs: format.Bold()},
		{Start: 14, End: 18, Attrs: format.Attributes{Strikethrough: true}},
		{Start: 19, End: 23, Attrs: format.Attributes{Weight: format.WeightBold, Italic: true}},
	}
	if got := buf.Formats(0); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestImportLists(t *testing.T) {
	buf := mustImport(t, "- one\n- two\n\n1. first\n2. second\n")
	want := []string{"• one", "• two", "1. first", "2. second"}
	if got := texts(buf); !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestImportTaskList(t *testing.T) {
	buf := mustImport(t, "- [x] done\n- [ ] open\n")
	want := []string{"• ☑ done", "• ☐ open"}
	if got := texts(buf); !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestImportCodeAndBreaks(t *testing.T) {
	buf := mustImport(t, "before\n\n```\nline one\nline two\n```\n\n---\n\nafter\n")
	want := []string{"before", "line one", "line two", SceneBreak, "after"}
	if got := texts(buf); !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestImportTable(t *testing.T) {
	buf := mustImport(t, "| a | b |\n|---|---|\n| 1 | 2 |\n")
	want := []string{"a\tb", "1\t2"}
	if got := texts(buf); !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestImportDropsHTML(t *testing.T) {
	buf := mustImport(t, "<div>\nraw\n</div>\n\nkept\n")
	if got := texts(buf); !slices.Equal(got, []string{"kept"}) {
		t.Errorf("expected only kept paragraph, got %q", got)
	}
}

func TestImportEmpty(t *testing.T) {
	buf := buffer.NewBufferFromString("old")
	if err := ImportReader(strings.NewReader(""), buf); err != nil {
		t.Fatal(err)
	}
	if buf.Count() != 1 || buf.Text(0) != "" {
		t.Errorf("expected a single empty paragraph, got %q", buf.PlainText())
	}
}
