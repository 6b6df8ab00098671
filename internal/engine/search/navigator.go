package search

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/dshills/quire/internal/engine/buffer"
	"github.com/dshills/quire/internal/engine/history"
)

// Navigator holds an active query over a buffer and steps through its
// matches. The match list is rebuilt lazily whenever the buffer revision
// changes, so edits made elsewhere never leave it stale.
//
// Replacements are recorded in hist when it is non-nil and applied to the
// buffer directly otherwise.
type Navigator struct {
	buf  *buffer.Buffer
	hist *history.History

	matcher     *Matcher
	replacement string

	matches  []buffer.Range
	current  int
	revision uint64
	built    bool
}

// NewNavigator creates a navigator over buf.
func NewNavigator(buf *buffer.Buffer, hist *history.History) *Navigator {
	return &Navigator{buf: buf, hist: hist, current: -1}
}

// SetQuery compiles pattern and makes it the active query. On error the
// previous query is cleared.
func (n *Navigator) SetQuery(pattern string, opts Options) error {
	n.matcher = nil
	n.invalidate()
	m, err := Compile(pattern, opts)
	if err != nil {
		return err
	}
	n.matcher = m
	return nil
}

// SetReplacement sets the text used by ReplaceCurrent and ReplaceAll.
func (n *Navigator) SetReplacement(text string) {
	n.replacement = text
}

// Replacement returns the replacement text.
func (n *Navigator) Replacement() string {
	return n.replacement
}

// Matcher returns the active matcher, or nil.
func (n *Navigator) Matcher() *Matcher {
	return n.matcher
}

// IsActive reports whether a query is set.
func (n *Navigator) IsActive() bool {
	return n.matcher != nil
}

// Clear drops the query, replacement and matches.
func (n *Navigator) Clear() {
	n.matcher = nil
	n.replacement = ""
	n.invalidate()
}

func (n *Navigator) invalidate() {
	n.matches = nil
	n.current = -1
	n.built = false
}

// refresh rebuilds the match list if the buffer changed since the last
// build. A rebuild forgets the current match.
func (n *Navigator) refresh() {
	if n.built && n.revision == n.buf.Revision() {
		return
	}
	n.matches = n.matches[:0]
	n.current = -1
	n.revision = n.buf.Revision()
	n.built = true
	if n.matcher == nil {
		return
	}
	for r := range n.matcher.All(n.buf) {
		n.matches = append(n.matches, r)
	}
}

// Count returns the number of matches of the active query.
func (n *Navigator) Count() int {
	n.refresh()
	return len(n.matches)
}

// Matches returns a copy of the current match list.
func (n *Navigator) Matches() []buffer.Range {
	n.refresh()
	return slices.Clone(n.matches)
}

// CurrentIndex returns the index of the current match, or -1.
func (n *Navigator) CurrentIndex() int {
	n.refresh()
	return n.current
}

// Current returns the current match.
func (n *Navigator) Current() (buffer.Range, bool) {
	n.refresh()
	if n.current < 0 || n.current >= len(n.matches) {
		return buffer.Range{}, false
	}
	return n.matches[n.current], true
}

// Select makes match index current.
func (n *Navigator) Select(index int) error {
	n.refresh()
	if index < 0 || index >= len(n.matches) {
		return fmt.Errorf("select match %d of %d: %w", index, len(n.matches), buffer.ErrOutOfRange)
	}
	n.current = index
	return nil
}

// SelectFrom makes current the first match starting at or after pos,
// wrapping to the first match if there is none.
func (n *Navigator) SelectFrom(pos buffer.Position) (buffer.Range, error) {
	n.refresh()
	if len(n.matches) == 0 {
		return buffer.Range{}, ErrNoMatch
	}
	i, _ := slices.BinarySearchFunc(n.matches, pos, func(r buffer.Range, p buffer.Position) int {
		return r.Start.Compare(p)
	})
	if i == len(n.matches) {
		i = 0
	}
	n.current = i
	return n.matches[i], nil
}

// Next advances to the following match. Past the last match it wraps to the
// first when WrapAround is set and returns ErrNoMatch otherwise, staying on
// the last match.
func (n *Navigator) Next() (buffer.Range, error) {
	n.refresh()
	if len(n.matches) == 0 {
		return buffer.Range{}, ErrNoMatch
	}
	switch {
	case n.current < 0:
		n.current = 0
	case n.current+1 < len(n.matches):
		n.current++
	case n.matcher.opts.WrapAround:
		n.current = 0
	default:
		return buffer.Range{}, ErrNoMatch
	}
	return n.matches[n.current], nil
}

// Previous steps back to the preceding match, wrapping like Next.
func (n *Navigator) Previous() (buffer.Range, error) {
	n.refresh()
	if len(n.matches) == 0 {
		return buffer.Range{}, ErrNoMatch
	}
	switch {
	case n.current < 0:
		n.current = len(n.matches) - 1
	case n.current > 0:
		n.current--
	case n.matcher.opts.WrapAround:
		n.current = len(n.matches) - 1
	default:
		return buffer.Range{}, ErrNoMatch
	}
	return n.matches[n.current], nil
}

// ReplaceCurrent replaces the current match and moves to the first match
// after the inserted text.
func (n *Navigator) ReplaceCurrent() error {
	cur, ok := n.Current()
	if !ok {
		return ErrNoMatch
	}
	repl := n.expand(cur)
	if err := n.replace("Replace", []buffer.Range{cur}, []string{repl}); err != nil {
		return err
	}

	n.refresh()
	after := buffer.Pos(cur.Start.Paragraph, cur.Start.Offset+utf8.RuneCountInString(repl))
	for i, r := range n.matches {
		if !r.Start.Before(after) {
			n.current = i
			return nil
		}
	}
	if n.matcher.opts.WrapAround && len(n.matches) > 0 {
		n.current = 0
	}
	return nil
}

// ReplaceAll replaces every match as one undoable operation and returns the
// number replaced. Matches are processed in reverse document order so each
// replacement leaves the offsets of the ones still pending untouched.
func (n *Navigator) ReplaceAll() (int, error) {
	if n.matcher == nil {
		return 0, ErrNoMatch
	}
	var ranges []buffer.Range
	var texts []string
	for i := 0; i < n.buf.Count(); i++ {
		text := n.buf.Text(i)
		for _, mt := range n.matcher.scan(text) {
			ranges = append(ranges, buffer.SpanIn(i, mt.start, mt.end))
			texts = append(texts, n.matcher.expand(n.replacement, text, mt))
		}
	}
	if len(ranges) == 0 {
		return 0, ErrNoMatch
	}
	slices.Reverse(ranges)
	slices.Reverse(texts)
	if err := n.replace("Replace all", ranges, texts); err != nil {
		return 0, err
	}
	n.refresh()
	return len(ranges), nil
}

// expand returns the replacement text for r.
func (n *Navigator) expand(r buffer.Range) string {
	text := n.buf.Text(r.Start.Paragraph)
	for _, mt := range n.matcher.scan(text) {
		if mt.start == r.Start.Offset && mt.end == r.End.Offset {
			return n.matcher.expand(n.replacement, text, mt)
		}
	}
	return n.replacement
}

// replace swaps each range for its text, in the given order.
func (n *Navigator) replace(name string, ranges []buffer.Range, texts []string) error {
	if n.hist == nil {
		for i, r := range ranges {
			if err := n.buf.ReplaceText(r, texts[i]); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		return nil
	}
	return n.hist.Transaction(n.buf, name, func() error {
		for i, r := range ranges {
			if err := n.hist.Execute(n.buf, history.DeleteText(r)); err != nil {
				return err
			}
			if texts[i] == "" {
				continue
			}
			if err := n.hist.Execute(n.buf, history.InsertText(r.Start, texts[i])); err != nil {
				return err
			}
		}
		return nil
	})
}
