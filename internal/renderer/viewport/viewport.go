// Package viewport maps a vertical scroll offset to the paragraphs that
// intersect the visible window, without laying out the whole document.
//
// Paragraph heights live in the buffer's height index. Paragraphs that have
// never been laid out carry a provisional estimate; the Manager lays out a
// paragraph only when it becomes visible (or sits within the lookahead
// window), pushes the measured height back with SetHeight, and notifies
// listeners when the total content height changes.
package viewport

import (
	"fmt"

	"github.com/dshills/quire/internal/engine/buffer"
	"github.com/dshills/quire/internal/renderer/layout"
)

// DefaultLookahead is the number of paragraphs laid out below the visible
// range so scrolling down finds them measured.
const DefaultLookahead = 50

// Range is the span of paragraphs intersecting a viewport.
type Range struct {
	First       int     // first visible paragraph
	Last        int     // last visible paragraph, inclusive
	FirstOffset float64 // how far the viewport top sits below First's top edge
}

// Contains reports whether paragraph index is in the range.
func (r Range) Contains(index int) bool {
	return index >= r.First && index <= r.Last
}

// TotalHeightListener is notified when the total content height changes.
type TotalHeightListener func(oldTotal, newTotal float64)

// Options configures a Manager.
type Options struct {
	Width     float64 // wrap width; zero or less disables wrapping
	Height    float64 // viewport height
	Lookahead int     // paragraphs laid out past the visible range; negative disables
	Margins   Margins
}

// Manager is the virtual-scroll controller for one buffer. It owns the
// scroll position and decides which paragraphs to lay out.
//
// Manager runs on the editing goroutine with the buffer and is not safe for
// concurrent use.
type Manager struct {
	buf   *buffer.Buffer
	cache *layout.Cache

	width     float64
	height    float64
	scroll    float64
	lookahead int
	margins   Margins

	listeners []TotalHeightListener
	lastTotal float64
	relayouts int
}

// NewManager creates a viewport over buf using cache for layouts. It
// installs a line-count estimator on buf for paragraphs created from now
// on.
func NewManager(buf *buffer.Buffer, cache *layout.Cache, opts Options) *Manager {
	if cache == nil {
		cache = layout.NewCache(nil, 0)
	}
	lookahead := opts.Lookahead
	if lookahead == 0 {
		lookahead = DefaultLookahead
	}
	m := &Manager{
		buf:       buf,
		cache:     cache,
		width:     opts.Width,
		height:    max(0, opts.Height),
		lookahead: max(0, lookahead),
		margins:   opts.Margins,
	}
	buf.SetEstimator(m.Estimator())
	m.lastTotal = buf.TotalHeight()
	return m
}

// Buffer returns the buffer the viewport shows.
func (m *Manager) Buffer() *buffer.Buffer {
	return m.buf
}

// Cache returns the layout cache.
func (m *Manager) Cache() *layout.Cache {
	return m.cache
}

// Estimator returns a provisional height estimator matching the current
// wrap width and metrics.
func (m *Manager) Estimator() buffer.Estimator {
	return NewEstimator(m.cache.Engine(), m.width)
}

// Width returns the wrap width.
func (m *Manager) Width() float64 {
	return m.width
}

// Height returns the viewport height.
func (m *Manager) Height() float64 {
	return m.height
}

// SetWidth changes the wrap width. Every paragraph becomes dirty and keeps
// its current height as a provisional value until it is laid out again, so
// a resize costs nothing until paragraphs come into view.
func (m *Manager) SetWidth(width float64) {
	if width == m.width {
		return
	}
	m.width = width
	m.buf.MarkAllDirty()
	m.buf.SetEstimator(m.Estimator())
}

// SetHeight changes the viewport height.
func (m *Manager) SetHeight(height float64) {
	m.height = max(0, height)
	m.scroll = m.ClampScroll(m.scroll)
}

// Resize changes both dimensions.
func (m *Manager) Resize(width, height float64) {
	m.SetWidth(width)
	m.SetHeight(height)
}

// SetLookahead sets how many paragraphs are laid out past the visible range.
func (m *Manager) SetLookahead(n int) {
	m.lookahead = max(0, n)
}

// OnTotalHeightChanged registers fn to be called whenever the total content
// height changes, for example to update a scrollbar range.
func (m *Manager) OnTotalHeightChanged(fn TotalHeightListener) {
	if fn != nil {
		m.listeners = append(m.listeners, fn)
	}
}

// Sync notifies listeners if the total height changed since the last
// notification. Call it after editing the buffer directly.
func (m *Manager) Sync() {
	total := m.buf.TotalHeight()
	if total == m.lastTotal {
		return
	}
	old := m.lastTotal
	m.lastTotal = total
	for _, fn := range m.listeners {
		fn(old, total)
	}
}

// Relayouts returns the number of paragraph layouts the manager has
// performed.
func (m *Manager) Relayouts() int {
	return m.relayouts
}

// ensure lays out paragraph index if its height is not current and stores
// the measured height. It reports whether the stored height changed.
func (m *Manager) ensure(index int) bool {
	if m.buf.HeightState(index) == buffer.HeightClean {
		return false
	}
	p, err := m.buf.Paragraph(index)
	if err != nil {
		return false
	}
	l := m.cache.Get(p, m.width)
	changed := l.Height != m.buf.Height(index)
	if err := m.buf.SetHeight(index, l.Height); err != nil {
		return false
	}
	m.relayouts++
	return changed
}

// VisibleRange returns the paragraphs intersecting the window
// [scrollOffset, scrollOffset+viewportHeight). It lays out each dirty
// paragraph it walks over, corrects the height index, and lays out the
// lookahead paragraphs below the range.
func (m *Manager) VisibleRange(scrollOffset, viewportHeight float64) Range {
	first, rem := m.anchor(scrollOffset)
	n := m.buf.Count()

	last := first
	covered := m.buf.Height(first) - rem
	for covered < viewportHeight && last+1 < n {
		last++
		m.ensure(last)
		covered += m.buf.Height(last)
	}
	for i := last + 1; i < n && i <= last+m.lookahead; i++ {
		m.ensure(i)
	}
	m.Sync()
	return Range{First: first, Last: last, FirstOffset: rem}
}

// anchor finds the paragraph under offset, laying it out first. A measured
// height can differ from the estimate, which moves the offset into another
// paragraph, so the lookup repeats until it lands on a clean paragraph.
func (m *Manager) anchor(offset float64) (int, float64) {
	for {
		i, rem := m.buf.FindByOffset(offset)
		if !m.ensure(i) {
			return i, rem
		}
	}
}

// ScrollToParagraph returns the scroll offset that puts paragraph index at
// the top of the viewport.
func (m *Manager) ScrollToParagraph(index int) float64 {
	index = max(0, min(index, m.buf.Count()-1))
	return m.buf.OffsetOf(index)
}

// TotalContentHeight returns the height of the whole document, measured
// and provisional heights combined.
func (m *Manager) TotalContentHeight() float64 {
	return m.buf.TotalHeight()
}

// LayoutAt returns the layout of paragraph index at the current width,
// storing its measured height.
func (m *Manager) LayoutAt(index int) (*layout.ParagraphLayout, error) {
	p, err := m.buf.Paragraph(index)
	if err != nil {
		return nil, err
	}
	m.ensure(index)
	m.Sync()
	return m.cache.Get(p, m.width), nil
}

// PositionAt returns the cursor position at the start of the visual line
// covering document offset y.
func (m *Manager) PositionAt(y float64) buffer.Position {
	i, rem := m.anchor(y)
	m.Sync()
	l, err := m.LayoutAt(i)
	if err != nil {
		return buffer.Position{}
	}
	line := l.Lines[l.LineAtY(rem)]
	return buffer.Pos(i, line.Start)
}

// CaretOffset returns the document offset of the top of the visual line
// holding pos, and that line's height.
func (m *Manager) CaretOffset(pos buffer.Position) (top, height float64, err error) {
	l, err := m.LayoutAt(pos.Paragraph)
	if err != nil {
		return 0, 0, fmt.Errorf("caret offset: %w", err)
	}
	if pos.Offset < 0 || pos.Offset > m.buf.Len(pos.Paragraph) {
		return 0, 0, fmt.Errorf("caret offset %s: %w", pos, buffer.ErrInvalidOffset)
	}
	line := l.Lines[l.LineAt(pos.Offset)]
	return m.buf.OffsetOf(pos.Paragraph) + line.Top, line.Height, nil
}
