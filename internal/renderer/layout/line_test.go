package layout

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/quire/internal/engine/format"
)

// unitMetrics measures every cluster as one unit wide and lines as 10 high.
type unitMetrics struct{}

func (unitMetrics) Advance(string, format.Attributes) float64 { return 1 }
func (unitMetrics) LineHeight(format.Attributes) float64     { return 10 }

func TestLayoutNoWrap(t *testing.T) {
	e := NewEngine(unitMetrics{})
	l := e.Layout("hello world", nil, 0)

	if l.LineCount() != 1 {
		t.Fatalf("expected 1 line, got %d", l.LineCount())
	}
	want := Line{Start: 0, End: 11, Top: 0, Height: 10, Width: 11}
	if l.Lines[0] != want {
		t.Errorf("expected %+v, got %+v", want, l.Lines[0])
	}
	if l.Height != 10 {
		t.Errorf("expected height 10, got %v", l.Height)
	}
}

func TestLayoutWrapsAtWords(t *testing.T) {
	e := NewEngine(unitMetrics{})

	tests := []struct {
		name  string
		width float64
		want  []Line
	}{
		{"wide enough", 11, []Line{{0, 11, 0, 10, 11}}},
		{"wraps after space", 8, []Line{{0, 6, 0, 10, 5}, {6, 11, 10, 10, 5}}},
		{"trailing space hangs", 5, []Line{{0, 6, 0, 10, 5}, {6, 11, 10, 10, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := e.Layout("hello world", nil, tt.width)
			if !reflect.DeepEqual(l.Lines, tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, l.Lines)
			}
		})
	}
}

func TestLayoutBreaksOverlongWord(t *testing.T) {
	e := NewEngine(unitMetrics{})
	l := e.Layout("abcdefghij", nil, 4)

	want := []Line{
		{Start: 0, End: 4, Top: 0, Height: 10, Width: 4},
		{Start: 4, End: 8, Top: 10, Height: 10, Width: 4},
		{Start: 8, End: 10, Top: 20, Height: 10, Width: 2},
	}
	if !reflect.DeepEqual(l.Lines, want) {
		t.Errorf("expected %+v, got %+v", want, l.Lines)
	}
	if l.Height != 30 {
		t.Errorf("expected height 30, got %v", l.Height)
	}
}

func TestLayoutEmptyParagraph(t *testing.T) {
	e := NewEngine(unitMetrics{})
	l := e.Layout("", nil, 100)

	if l.LineCount() != 1 {
		t.Fatalf("expected 1 line, got %d", l.LineCount())
	}
	if l.Lines[0].Start != 0 || l.Lines[0].End != 0 || l.Height != 10 {
		t.Errorf("unexpected empty layout %+v", l)
	}
	if e.EmptyHeight() != 10 {
		t.Errorf("expected empty height 10, got %v", e.EmptyHeight())
	}
}

func TestLayoutLineSeparator(t *testing.T) {
	e := NewEngine(unitMetrics{})

	l := e.Layout("ab\u2028cd", nil, 0)
	if l.LineCount() != 2 || l.Lines[0].End != 3 || l.Lines[1].Start != 3 || l.Lines[1].End != 5 {
		t.Errorf("unexpected lines %+v", l.Lines)
	}

	l = e.Layout("ab\u2028", nil, 0)
	if l.LineCount() != 2 || l.Lines[1].Start != 3 || l.Lines[1].End != 3 {
		t.Errorf("expected an empty last line, got %+v", l.Lines)
	}
}

func TestLayoutTabs(t *testing.T) {
	e := NewEngine(unitMetrics{})
	l := e.Layout("a\tb", nil, 0)
	if l.Lines[0].Width != 5 {
		t.Errorf("expected tab to advance to the stop at 4, width 5, got %v", l.Lines[0].Width)
	}

	e.SetTabWidth(8)
	l = e.Layout("a\tb", nil, 0)
	if l.Lines[0].Width != 9 {
		t.Errorf("expected width 9, got %v", l.Lines[0].Width)
	}
}

func TestLayoutLeadingTabsHang(t *testing.T) {
	e := NewEngine(unitMetrics{})
	tests := []struct {
		name  string
		text  string
		width float64
		lines [][2]int
	}{
		{"two tabs", "\t\tab", 3, [][2]int{{0, 2}, {2, 4}}},
		{"one tab", "\tab", 3, [][2]int{{0, 1}, {1, 3}}},
		{"tabs only", "\t\t\t", 3, [][2]int{{0, 3}}},
		{"tab fits", "\tab", 6, [][2]int{{0, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := e.Layout(tt.text, nil, tt.width)
			var got [][2]int
			for _, line := range l.Lines {
				got = append(got, [2]int{line.Start, line.End})
				if line.Width > tt.width {
					t.Errorf("expected width at most %v, got %+v", tt.width, line)
				}
			}
			if !reflect.DeepEqual(got, tt.lines) {
				t.Errorf("expected lines %v, got %v", tt.lines, got)
			}
		})
	}
	l := e.Layout("\t\tab", nil, 3)
	if l.Lines[0].Width != 0 || l.Lines[1].Width != 2 {
		t.Errorf("expected widths 0 and 2, got %+v", l.Lines)
	}
}

func TestLayoutParagraphSpacing(t *testing.T) {
	e := NewEngine(unitMetrics{})
	e.SetParagraphSpacing(6)

	l := e.Layout("x", nil, 0)
	if l.Height != 16 {
		t.Errorf("expected height 16, got %v", l.Height)
	}
	if e.EmptyHeight() != 16 {
		t.Errorf("expected empty height 16, got %v", e.EmptyHeight())
	}
}

func TestLayoutFormattedWidths(t *testing.T) {
	e := NewEngine(DefaultCellMetrics())

	plain := e.Layout("ab", nil, 0)
	if plain.Lines[0].Width != 16 {
		t.Errorf("expected plain width 16, got %v", plain.Lines[0].Width)
	}

	bold := e.Layout("ab", []format.Range{{Start: 0, End: 2, Attrs: format.Bold()}}, 0)
	if bold.Lines[0].Width != 18 {
		t.Errorf("expected bold width 18, got %v", bold.Lines[0].Width)
	}

	sup := format.Attributes{VerticalAlign: format.AlignSuperscript}
	script := e.Layout("ab", []format.Range{{Start: 1, End: 2, Attrs: sup}}, 0)
	if script.Lines[0].Width != 14 {
		t.Errorf("expected width 14, got %v", script.Lines[0].Width)
	}

	wide := e.Layout("日本", nil, 0)
	if wide.Lines[0].Width != 32 {
		t.Errorf("expected wide width 32, got %v", wide.Lines[0].Width)
	}
}

func TestLayoutOffsetsAreRunes(t *testing.T) {
	e := NewEngine(unitMetrics{})
	l := e.Layout("żółw ćma", nil, 5)
	if l.LineCount() != 2 || l.Lines[0].End != 5 || l.Lines[1].End != 8 {
		t.Errorf("unexpected lines %+v", l.Lines)
	}
}

func TestLayoutIdempotent(t *testing.T) {
	e := NewEngine(DefaultCellMetrics())
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 12)
	ranges := []format.Range{
		{Start: 4, End: 9, Attrs: format.Bold()},
		{Start: 40, End: 80, Attrs: format.Italic()},
	}

	first := e.Layout(text, ranges, 320)
	second := e.Layout(text, ranges, 320)
	if !reflect.DeepEqual(first, second) {
		t.Error("layout of unchanged paragraph differs between runs")
	}
	if first.LineCount() < 2 {
		t.Errorf("expected wrapping, got %d lines", first.LineCount())
	}
}

func TestLayoutCoversText(t *testing.T) {
	e := NewEngine(DefaultCellMetrics())
	text := "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor."
	for _, width := range []float64{40, 80, 120, 300, 1000} {
		l := e.Layout(text, nil, width)
		pos := 0
		var top float64
		for i, line := range l.Lines {
			if line.Start != pos {
				t.Fatalf("width %v line %d: starts at %d, expected %d", width, i, line.Start, pos)
			}
			if line.Top != top {
				t.Fatalf("width %v line %d: top %v, expected %v", width, i, line.Top, top)
			}
			if line.Width > width {
				t.Errorf("width %v line %d: content width %v overflows", width, i, line.Width)
			}
			pos = line.End
			top += line.Height
		}
		if pos != len([]rune(text)) {
			t.Errorf("width %v: lines end at %d", width, pos)
		}
	}
}

func TestLineAt(t *testing.T) {
	e := NewEngine(unitMetrics{})
	l := e.Layout("hello world", nil, 8)

	tests := []struct {
		offset, want int
	}{
		{0, 0}, {5, 0}, {6, 1}, {11, 1}, {99, 1},
	}
	for _, tt := range tests {
		if got := l.LineAt(tt.offset); got != tt.want {
			t.Errorf("LineAt(%d): expected %d, got %d", tt.offset, tt.want, got)
		}
	}

	if got := l.LineAtY(9.5); got != 0 {
		t.Errorf("LineAtY(9.5): expected 0, got %d", got)
	}
	if got := l.LineAtY(10); got != 1 {
		t.Errorf("LineAtY(10): expected 1, got %d", got)
	}
	if got := l.LineAtY(-3); got != 0 {
		t.Errorf("LineAtY(-3): expected 0, got %d", got)
	}
}

func TestTabStops(t *testing.T) {
	ts := NewTabStops(4, 2)
	tests := []struct{ x, next float64 }{
		{0, 8}, {1, 8}, {7.5, 8}, {8, 16},
	}
	for _, tt := range tests {
		if got := ts.Next(tt.x); got != tt.next {
			t.Errorf("Next(%v): expected %v, got %v", tt.x, tt.next, got)
		}
	}
	if ts.Offset(6) != 2 {
		t.Errorf("expected offset 2, got %v", ts.Offset(6))
	}
	if NewTabStops(0, 1).Interval != 4 {
		t.Error("expected default tab width 4")
	}
}

func TestCellWidth(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"a", 1}, {"日", 2}, {"é", 1}, {"👍", 2},
	}
	for _, tt := range tests {
		if got := CellWidth(tt.s); got != tt.want {
			t.Errorf("CellWidth(%q): expected %d, got %d", tt.s, tt.want, got)
		}
	}
}

func BenchmarkLayout(b *testing.B) {
	e := NewEngine(DefaultCellMetrics())
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Layout(text, nil, 640)
	}
}
