// Package layout computes paragraph line breaks and heights.
//
// Layout is a pure function of a paragraph's text, its format ranges and the
// wrap width. Lines break at Unicode line-break opportunities (UAX #14);
// a word wider than the wrap width breaks between grapheme clusters.
// Whitespace at the end of a line hangs past the wrap width and does not
// count toward the line's width.
package layout

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/quire/internal/engine/format"
)

// lineSeparator is U+2028, a forced line break inside a paragraph.
const lineSeparator = '\u2028'

// Line is one visual line of a paragraph.
type Line struct {
	Start  int     // first rune offset
	End    int     // rune offset after the last rune, trailing whitespace included
	Top    float64 // offset of the line's top edge from the paragraph's top
	Height float64
	Width  float64 // advance of the line's content, hanging whitespace excluded
}

// ParagraphLayout is the computed geometry of one paragraph. Layouts
// handed out by a Cache are shared and must not be modified.
type ParagraphLayout struct {
	Lines  []Line
	Height float64 // sum of line heights plus paragraph spacing
	Width  float64 // wrap width the layout was computed for
}

// LineCount returns the number of visual lines.
func (l *ParagraphLayout) LineCount() int {
	return len(l.Lines)
}

// LineAt returns the index of the line holding rune offset. An offset on a
// soft wrap belongs to the line that starts there.
func (l *ParagraphLayout) LineAt(offset int) int {
	i := sort.Search(len(l.Lines), func(i int) bool { return l.Lines[i].End > offset })
	return min(i, len(l.Lines)-1)
}

// LineAtY returns the index of the line covering vertical offset y,
// measured from the paragraph's top edge.
func (l *ParagraphLayout) LineAtY(y float64) int {
	i := sort.Search(len(l.Lines), func(i int) bool {
		return l.Lines[i].Top+l.Lines[i].Height > y
	})
	return max(0, min(i, len(l.Lines)-1))
}

// Engine computes paragraph layouts.
type Engine struct {
	metrics Metrics
	tabs    TabStops
	spacing float64
}

// NewEngine creates a layout engine. A nil metrics uses
// DefaultCellMetrics.
func NewEngine(metrics Metrics) *Engine {
	if metrics == nil {
		metrics = DefaultCellMetrics()
	}
	return &Engine{
		metrics: metrics,
		tabs:    NewTabStops(4, metrics.Advance(" ", format.Attributes{})),
	}
}

// Metrics returns the engine's metrics.
func (e *Engine) Metrics() Metrics {
	return e.metrics
}

// SetTabWidth sets the tab stop interval in narrow cells.
func (e *Engine) SetTabWidth(cells int) {
	e.tabs = NewTabStops(cells, e.metrics.Advance(" ", format.Attributes{}))
}

// SetParagraphSpacing sets the space added below every paragraph.
func (e *Engine) SetParagraphSpacing(spacing float64) {
	e.spacing = max(0, spacing)
}

// ParagraphSpacing returns the space added below every paragraph.
func (e *Engine) ParagraphSpacing() float64 {
	return e.spacing
}

// EmptyHeight returns the height of an empty paragraph.
func (e *Engine) EmptyHeight() float64 {
	return e.metrics.LineHeight(format.Attributes{}) + e.spacing
}

// Layout breaks text into lines no wider than width. ranges must be sorted
// and non-overlapping, as held by a format.Set. A width of zero or less
// disables wrapping.
func (e *Engine) Layout(text string, ranges []format.Range, width float64) *ParagraphLayout {
	pl := &ParagraphLayout{Width: width}
	clusters := e.measure(text, ranges)
	segs, trailingBreak := segmentize(text, clusters)

	b := &lineBuilder{engine: e, clusters: clusters, width: width, layout: pl}
	for _, s := range segs {
		b.place(s)
		if s.mustBreak {
			b.emit(s.last)
		}
	}
	if b.start < len(clusters) || len(pl.Lines) == 0 {
		b.emit(len(clusters))
	}
	if trailingBreak {
		b.emit(len(clusters))
	}
	pl.Height = b.top + e.spacing
	return pl
}

// cluster is one measured grapheme cluster.
type cluster struct {
	start, end int // rune offsets
	adv        float64
	height     float64
	space      bool
	tab        bool
}

func (e *Engine) measure(text string, ranges []format.Range) []cluster {
	if text == "" {
		return nil
	}
	clusters := make([]cluster, 0, len(text))
	g := uniseg.NewGraphemes(text)
	off, ri := 0, 0
	for g.Next() {
		s := g.Str()
		n := utf8.RuneCountInString(s)
		for ri < len(ranges) && ranges[ri].End <= off {
			ri++
		}
		var attrs format.Attributes
		if ri < len(ranges) && ranges[ri].Start <= off {
			attrs = ranges[ri].Attrs
		}
		c := cluster{start: off, end: off + n, height: e.metrics.LineHeight(attrs)}
		switch {
		case s == "\t":
			c.space, c.tab = true, true
		case isSpace(s):
			c.space = true
			c.adv = e.metrics.Advance(s, attrs)
		default:
			c.adv = e.metrics.Advance(s, attrs)
		}
		clusters = append(clusters, c)
		off += n
	}
	return clusters
}

func isSpace(cluster string) bool {
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// segment is the text between two line-break opportunities, as cluster
// indices: [first, body) is content, [body, last) trailing whitespace.
type segment struct {
	first, body, last int
	mustBreak         bool
}

// segmentize splits text at UAX #14 break opportunities. It reports
// whether the text ends with a forced break, which leaves an empty last
// line.
func segmentize(text string, clusters []cluster) ([]segment, bool) {
	var segs []segment
	state := -1
	rest := text
	off, ci := 0, 0
	for len(rest) > 0 {
		var seg string
		var must bool
		seg, rest, must, state = uniseg.FirstLineSegmentInString(rest, state)
		off += utf8.RuneCountInString(seg)
		must = must && len(rest) > 0

		s := segment{first: ci, mustBreak: must}
		for ci < len(clusters) && clusters[ci].start < off {
			ci++
		}
		s.last, s.body = ci, ci
		for s.body > s.first && clusters[s.body-1].space {
			s.body--
		}
		if s.last > s.first {
			segs = append(segs, s)
		} else if must && len(segs) > 0 {
			segs[len(segs)-1].mustBreak = true
		}
	}
	last, _ := utf8.DecodeLastRuneInString(text)
	return segs, last == lineSeparator
}

// lineBuilder fills lines greedily, one segment at a time.
type lineBuilder struct {
	engine   *Engine
	clusters []cluster
	width    float64
	layout   *ParagraphLayout

	start      int     // first cluster of the open line
	x          float64 // content width of the open line
	hasContent bool
	pendFrom   int // hanging whitespace [pendFrom, pendTo)
	pendTo     int
	top        float64
}

func (b *lineBuilder) wraps() bool {
	return b.width > 0
}

// advance returns the pen position after clusters [from, to) starting at x.
func (b *lineBuilder) advance(x float64, from, to int) float64 {
	for k := from; k < to; k++ {
		if b.clusters[k].tab {
			x = b.engine.tabs.Next(x)
		} else {
			x += b.clusters[k].adv
		}
	}
	return x
}

func (b *lineBuilder) place(s segment) {
	startX := b.advance(b.x, b.pendFrom, b.pendTo)
	end := b.advance(startX, s.first, s.body)

	if b.wraps() && b.hasContent && end > b.width {
		b.emit(s.first)
		startX = 0
		end = b.advance(0, s.first, s.body)
	}
	if b.wraps() && end > b.width {
		x := startX
		for k := s.first; k < s.body; k++ {
			next := b.advance(x, k, k+1)
			if next > b.width && k > b.start {
				// Breaking before the segment's first cluster leaves only
				// hanging whitespace from earlier segments on the line.
				if k > s.first {
					b.x = x
				}
				b.emit(k)
				next = b.advance(0, k, k+1)
			}
			x = next
		}
		end = x
	}

	if s.body > s.first {
		b.x = end
		b.hasContent = true
		b.pendFrom = s.body
	}
	b.pendTo = s.last
}

// emit closes the open line at cluster end.
func (b *lineBuilder) emit(end int) {
	line := Line{Top: b.top, Width: b.x}
	switch {
	case b.start < len(b.clusters):
		line.Start = b.clusters[b.start].start
	case len(b.clusters) > 0:
		line.Start = b.clusters[len(b.clusters)-1].end
	}
	line.End = line.Start
	if end > b.start {
		line.End = b.clusters[end-1].end
	}
	for k := b.start; k < end; k++ {
		line.Height = max(line.Height, b.clusters[k].height)
	}
	if line.Height == 0 {
		line.Height = b.engine.metrics.LineHeight(format.Attributes{})
	}
	b.layout.Lines = append(b.layout.Lines, line)

	b.top += line.Height
	b.start = end
	b.x = 0
	b.hasContent = false
	b.pendFrom, b.pendTo = end, end
}
