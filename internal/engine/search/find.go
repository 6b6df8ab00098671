package search

import (
	"iter"

	"github.com/dshills/quire/internal/engine/buffer"
)

// All returns the matches in src in paragraph order, then offset order
// within a paragraph. The sequence is lazy and can be ranged over again;
// each pass reads the source afresh.
func (m *Matcher) All(src Source) iter.Seq[buffer.Range] {
	return func(yield func(buffer.Range) bool) {
		for i := 0; i < src.Count(); i++ {
			for _, mt := range m.scan(src.Text(i)) {
				if !yield(buffer.SpanIn(i, mt.start, mt.end)) {
					return
				}
			}
		}
	}
}

// InParagraph returns the matches in paragraph index.
func (m *Matcher) InParagraph(src Source, index int) []buffer.Range {
	found := m.scan(src.Text(index))
	out := make([]buffer.Range, len(found))
	for i, mt := range found {
		out[i] = buffer.SpanIn(index, mt.start, mt.end)
	}
	return out
}

// Count returns the number of matches in src.
func (m *Matcher) Count(src Source) int {
	n := 0
	for i := 0; i < src.Count(); i++ {
		n += len(m.scan(src.Text(i)))
	}
	return n
}

// Next returns the first match starting at or after from. When there is
// none before the end of the document it wraps to the start, once.
func (m *Matcher) Next(src Source, from buffer.Position) (buffer.Range, error) {
	n := src.Count()
	if n == 0 {
		return buffer.Range{}, ErrNoMatch
	}
	p := max(0, min(from.Paragraph, n-1))
	for _, mt := range m.scan(src.Text(p)) {
		if mt.start >= from.Offset {
			return buffer.SpanIn(p, mt.start, mt.end), nil
		}
	}
	for k := 1; k <= n; k++ {
		i := (p + k) % n
		found := m.scan(src.Text(i))
		if i == p {
			// Wrapped back to the starting paragraph.
			if len(found) > 0 && found[0].start < from.Offset {
				return buffer.SpanIn(i, found[0].start, found[0].end), nil
			}
			break
		}
		if len(found) > 0 {
			return buffer.SpanIn(i, found[0].start, found[0].end), nil
		}
	}
	return buffer.Range{}, ErrNoMatch
}

// Previous returns the last match starting before from. When there is none
// after the start of the document it wraps to the end, once.
func (m *Matcher) Previous(src Source, from buffer.Position) (buffer.Range, error) {
	n := src.Count()
	if n == 0 {
		return buffer.Range{}, ErrNoMatch
	}
	p := max(0, min(from.Paragraph, n-1))
	found := m.scan(src.Text(p))
	for j := len(found) - 1; j >= 0; j-- {
		if found[j].start < from.Offset {
			return buffer.SpanIn(p, found[j].start, found[j].end), nil
		}
	}
	for k := 1; k <= n; k++ {
		i := ((p-k)%n + n) % n
		found := m.scan(src.Text(i))
		if len(found) == 0 {
			if i == p {
				break
			}
			continue
		}
		last := found[len(found)-1]
		if i == p && last.start < from.Offset {
			break
		}
		return buffer.SpanIn(i, last.start, last.end), nil
	}
	return buffer.Range{}, ErrNoMatch
}

// FindAll compiles pattern and returns its matches in src.
func FindAll(src Source, pattern string, opts Options) (iter.Seq[buffer.Range], error) {
	m, err := Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	return m.All(src), nil
}

// FindNext compiles pattern and returns the next match from from.
func FindNext(src Source, pattern string, opts Options, from buffer.Position) (buffer.Range, error) {
	m, err := Compile(pattern, opts)
	if err != nil {
		return buffer.Range{}, err
	}
	return m.Next(src, from)
}

// FindPrevious compiles pattern and returns the previous match from from.
func FindPrevious(src Source, pattern string, opts Options, from buffer.Position) (buffer.Range, error) {
	m, err := Compile(pattern, opts)
	if err != nil {
		return buffer.Range{}, err
	}
	return m.Previous(src, from)
}
