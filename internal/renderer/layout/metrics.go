package layout

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dshills/quire/internal/engine/format"
)

// Metrics measures text for layout. Implementations must be pure: the same
// cluster and attributes always measure the same.
type Metrics interface {
	// Advance returns the horizontal advance of one grapheme cluster.
	Advance(cluster string, attrs format.Attributes) float64

	// LineHeight returns the height of a line holding text with attrs.
	LineHeight(attrs format.Attributes) float64
}

// CellMetrics measures text on a fixed cell grid, scaled to pixels.
// Wide (East Asian) clusters take two cells.
type CellMetrics struct {
	CellWidth   float64 // advance of one narrow cell
	RowHeight   float64 // height of one line
	BoldScale   float64 // advance multiplier for bold text
	ScriptScale float64 // advance multiplier for superscript and subscript
}

// DefaultCellMetrics returns the metrics used when none are configured.
func DefaultCellMetrics() CellMetrics {
	return CellMetrics{
		CellWidth:   8,
		RowHeight:   20,
		BoldScale:   1.125,
		ScriptScale: 0.75,
	}
}

// Advance returns the scaled cell width of cluster.
func (m CellMetrics) Advance(cluster string, attrs format.Attributes) float64 {
	adv := float64(CellWidth(cluster)) * m.CellWidth
	if attrs.IsBold() && m.BoldScale > 0 {
		adv *= m.BoldScale
	}
	if attrs.VerticalAlign != format.AlignBaseline && m.ScriptScale > 0 {
		adv *= m.ScriptScale
	}
	return adv
}

// LineHeight returns the row height. Super and subscripts ride inside the
// row and do not grow it.
func (m CellMetrics) LineHeight(format.Attributes) float64 {
	return m.RowHeight
}

// CellWidth returns the number of terminal cells a grapheme cluster
// occupies, falling back to uniseg for clusters go-runewidth reports as
// zero-width.
func CellWidth(cluster string) int {
	w := runewidth.StringWidth(cluster)
	if w <= 0 {
		w = max(0, uniseg.StringWidth(cluster))
	}
	return w
}
