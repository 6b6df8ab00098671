package buffer

import "fmt"

// Position is a cursor location: a paragraph index and a rune offset within
// that paragraph. Positions are ordered by paragraph, then offset.
type Position struct {
	Paragraph int
	Offset    int
}

// Pos is shorthand for Position{Paragraph: paragraph, Offset: offset}.
func Pos(paragraph, offset int) Position {
	return Position{Paragraph: paragraph, Offset: offset}
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Paragraph, p.Offset)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	if p.Paragraph < other.Paragraph {
		return -1
	}
	if p.Paragraph > other.Paragraph {
		return 1
	}
	if p.Offset < other.Offset {
		return -1
	}
	if p.Offset > other.Offset {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}

// Range is a selection between two positions: [Start, End).
// A Range produced by user interaction may be reversed (anchor after head);
// call Normalize before handing it to the buffer.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a range from start and end positions.
func NewRange(start, end Position) Range {
	return Range{Start: start, End: end}
}

// SpanIn returns the range [start, end) within one paragraph.
func SpanIn(paragraph, start, end int) Range {
	return Range{Start: Pos(paragraph, start), End: Pos(paragraph, end)}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s-%s)", r.Start, r.End)
}

// Normalize returns the range with Start <= End.
func (r Range) Normalize() Range {
	if r.Start.After(r.End) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// IsNormalized reports whether Start <= End.
func (r Range) IsNormalized() bool {
	return !r.Start.After(r.End)
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// SingleParagraph reports whether both ends lie in the same paragraph.
func (r Range) SingleParagraph() bool {
	return r.Start.Paragraph == r.End.Paragraph
}

// Len returns the rune length of a single-paragraph range, or -1 for a
// range that spans paragraphs.
func (r Range) Len() int {
	if !r.SingleParagraph() {
		return -1
	}
	return r.End.Offset - r.Start.Offset
}

// Contains returns true if pos lies in [Start, End).
func (r Range) Contains(pos Position) bool {
	return !pos.Before(r.Start) && pos.Before(r.End)
}
