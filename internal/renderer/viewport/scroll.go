package viewport

// ScrollOffset returns the current scroll offset.
func (m *Manager) ScrollOffset() float64 {
	return m.scroll
}

// MaxScroll returns the largest scroll offset that still fills the
// viewport.
func (m *Manager) MaxScroll() float64 {
	return max(0, m.buf.TotalHeight()-m.height)
}

// ClampScroll limits offset to [0, MaxScroll()].
func (m *Manager) ClampScroll(offset float64) float64 {
	return max(0, min(offset, m.MaxScroll()))
}

// Visible returns the paragraphs intersecting the viewport at the current
// scroll offset.
func (m *Manager) Visible() Range {
	return m.VisibleRange(m.scroll, m.height)
}

// ScrollTo moves the viewport top to offset, clamped to the document.
func (m *Manager) ScrollTo(offset float64) {
	m.scroll = m.ClampScroll(offset)
}

// ScrollBy moves the viewport by delta.
func (m *Manager) ScrollBy(delta float64) {
	m.ScrollTo(m.scroll + delta)
}

// ScrollToParagraphTop scrolls so paragraph index sits at the top.
func (m *Manager) ScrollToParagraphTop(index int) {
	m.ScrollTo(m.ScrollToParagraph(index))
}

// PageDown scrolls down one viewport height.
func (m *Manager) PageDown() {
	m.ScrollBy(m.height)
}

// PageUp scrolls up one viewport height.
func (m *Manager) PageUp() {
	m.ScrollBy(-m.height)
}

// ScrollToTop scrolls to the document start.
func (m *Manager) ScrollToTop() {
	m.scroll = 0
}

// ScrollToBottom scrolls to the document end.
func (m *Manager) ScrollToBottom() {
	m.scroll = m.MaxScroll()
}

// ScrollPercent returns how far through the document we've scrolled (0.0 to 1.0).
func (m *Manager) ScrollPercent() float64 {
	maxScroll := m.MaxScroll()
	if maxScroll == 0 {
		return 0
	}
	return m.scroll / maxScroll
}

// ScrollToPercent scrolls to a fraction of the document.
func (m *Manager) ScrollToPercent(percent float64) {
	percent = max(0, min(percent, 1))
	m.ScrollTo(m.MaxScroll() * percent)
}
