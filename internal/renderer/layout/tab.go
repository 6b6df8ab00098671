package layout

import "math"

// TabStops places tab characters on a regular grid.
type TabStops struct {
	Interval float64
}

// NewTabStops creates stops every tabWidth narrow cells of the given
// advance. A tab width below one defaults to 4.
func NewTabStops(tabWidth int, cellAdvance float64) TabStops {
	if tabWidth < 1 {
		tabWidth = 4
	}
	return TabStops{Interval: float64(tabWidth) * cellAdvance}
}

// Next returns the position of the first tab stop strictly after x.
func (t TabStops) Next(x float64) float64 {
	if t.Interval <= 0 {
		return x
	}
	return (math.Floor(x/t.Interval) + 1) * t.Interval
}

// Offset returns how far a tab at x advances.
func (t TabStops) Offset(x float64) float64 {
	return t.Next(x) - x
}
