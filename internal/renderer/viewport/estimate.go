package viewport

import (
	"math"
	"unicode/utf8"

	"github.com/dshills/quire/internal/engine/buffer"
	"github.com/dshills/quire/internal/engine/format"
	"github.com/dshills/quire/internal/renderer/layout"
)

// Estimator guesses a paragraph's height from its length: the number of
// lines it would take at an average character advance, times the line
// height, plus paragraph spacing.
type Estimator struct {
	LineHeight   float64
	CharsPerLine int // zero or less means one line per paragraph
	Spacing      float64
}

// NewEstimator derives an estimator from the engine's metrics at width.
func NewEstimator(engine *layout.Engine, width float64) Estimator {
	metrics := engine.Metrics()
	e := Estimator{
		LineHeight: metrics.LineHeight(format.Attributes{}),
		Spacing:    engine.ParagraphSpacing(),
	}
	if adv := metrics.Advance("n", format.Attributes{}); width > 0 && adv > 0 {
		e.CharsPerLine = max(1, int(width/adv))
	}
	return e
}

// EstimateHeight implements buffer.Estimator.
func (e Estimator) EstimateHeight(text string) float64 {
	lines := 1
	if n := utf8.RuneCountInString(text); e.CharsPerLine > 0 && n > e.CharsPerLine {
		lines = int(math.Ceil(float64(n) / float64(e.CharsPerLine)))
	}
	return float64(lines)*e.LineHeight + e.Spacing
}

var _ buffer.Estimator = Estimator{}
