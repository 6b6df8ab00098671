package viewport

import "github.com/dshills/quire/internal/engine/buffer"

// Margins holds scroll margins: space kept between the caret line and the
// viewport edges when revealing it.
type Margins struct {
	Top    float64
	Bottom float64
}

// DefaultMargins returns the margins used by the diagnostic tool: two
// 20-unit lines above and below.
func DefaultMargins() Margins {
	return Margins{Top: 40, Bottom: 40}
}

// maxMarginRatio limits each margin to 1/3 of the viewport height so there
// is always usable space in the center.
const maxMarginRatio = 3

// SetMargins sets the scroll margins.
func (m *Manager) SetMargins(margins Margins) {
	m.margins = margins
}

// EffectiveMargins returns the margins adjusted for the viewport height.
func (m *Manager) EffectiveMargins() Margins {
	limit := m.height / maxMarginRatio
	return Margins{
		Top:    max(0, min(m.margins.Top, limit)),
		Bottom: max(0, min(m.margins.Bottom, limit)),
	}
}

// ScrollToReveal scrolls minimally so the visual line holding pos sits
// inside the margins. It reports whether the scroll offset changed.
func (m *Manager) ScrollToReveal(pos buffer.Position) (bool, error) {
	top, height, err := m.CaretOffset(pos)
	if err != nil {
		return false, err
	}
	margins := m.EffectiveMargins()
	target := m.scroll
	switch {
	case top-margins.Top < m.scroll:
		target = top - margins.Top
	case top+height+margins.Bottom > m.scroll+m.height:
		target = top + height + margins.Bottom - m.height
	}
	target = m.ClampScroll(target)
	if target == m.scroll {
		return false, nil
	}
	m.scroll = target
	return true, nil
}

// CenterOn scrolls so the visual line holding pos is vertically centered.
func (m *Manager) CenterOn(pos buffer.Position) error {
	top, height, err := m.CaretOffset(pos)
	if err != nil {
		return err
	}
	m.ScrollTo(top + height/2 - m.height/2)
	return nil
}
