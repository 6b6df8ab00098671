package format

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// ErrInvalidRange is returned when a range is empty, reversed, out of the
// paragraph bounds, or overlaps another range.
var ErrInvalidRange = errors.New("invalid format range")

// Range is a half-open rune interval [Start, End) with its attributes.
type Range struct {
	Start int
	End   int
	Attrs Attributes
}

// Len returns the number of runes covered.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty reports whether the range covers nothing.
func (r Range) IsEmpty() bool {
	return r.Start >= r.End
}

// Contains reports whether offset lies inside the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Overlaps reports whether r intersects [start, end).
func (r Range) Overlaps(start, end int) bool {
	return r.Start < end && start < r.End
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)%s", r.Start, r.End, r.Attrs)
}

// Set holds the format ranges of one paragraph.
//
// Ranges never overlap, are kept in ascending start order, are never empty,
// never carry zero attributes, and adjacent ranges with identical attributes
// are coalesced. Every mutating method restores these invariants before it
// returns.
type Set struct {
	ranges []Range
}

// NewSet builds a Set from ranges that must fit in a paragraph of the given
// length. Ranges may arrive unsorted but must not overlap.
func NewSet(length int, ranges ...Range) (Set, error) {
	sorted := slices.Clone(ranges)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i, r := range sorted {
		if r.IsEmpty() || r.Start < 0 || r.End > length {
			return Set{}, fmt.Errorf("%w: %s in paragraph of length %d", ErrInvalidRange, r, length)
		}
		if i > 0 && sorted[i-1].End > r.Start {
			return Set{}, fmt.Errorf("%w: %s overlaps %s", ErrInvalidRange, sorted[i-1], r)
		}
	}
	return Set{ranges: normalize(sorted)}, nil
}

// Len returns the number of stored ranges.
func (s Set) Len() int {
	return len(s.ranges)
}

// IsEmpty reports whether the set holds no ranges.
func (s Set) IsEmpty() bool {
	return len(s.ranges) == 0
}

// Ranges returns a copy of the stored ranges in ascending order.
func (s Set) Ranges() []Range {
	return slices.Clone(s.ranges)
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	return Set{ranges: slices.Clone(s.ranges)}
}

// Equal reports whether both sets hold the same ranges.
func (s Set) Equal(other Set) bool {
	return slices.Equal(s.ranges, other.ranges)
}

// At returns the attributes in effect at offset.
func (s Set) At(offset int) Attributes {
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].End > offset })
	if i < len(s.ranges) && s.ranges[i].Start <= offset {
		return s.ranges[i].Attrs
	}
	return Attributes{}
}

// Overlapping returns the ranges intersecting [start, end).
func (s Set) Overlapping(start, end int) []Range {
	var out []Range
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].End > start })
	for ; i < len(s.ranges) && s.ranges[i].Start < end; i++ {
		out = append(out, s.ranges[i])
	}
	return out
}

// Covers reports whether every offset of [start, end) carries all the fields
// in mask with the values in attrs.
func (s Set) Covers(start, end int, attrs Attributes, mask Mask) bool {
	if start >= end {
		return false
	}
	pos := start
	for _, r := range s.Overlapping(start, end) {
		if r.Start > pos {
			return false
		}
		if r.Attrs.Merge(attrs, mask) != r.Attrs {
			return false
		}
		pos = r.End
	}
	return pos >= end
}

// Apply sets the fields selected by mask to the values in attrs over
// [start, end), splitting ranges that straddle either edge.
func (s *Set) Apply(start, end int, attrs Attributes, mask Mask) {
	if start >= end || mask == 0 {
		return
	}
	s.transform(start, end, true, func(a Attributes) Attributes {
		return a.Merge(attrs, mask)
	})
}

// Remove resets the fields selected by mask over [start, end). Ranges left
// without any attribute are dropped.
func (s *Set) Remove(start, end int, mask Mask) {
	if start >= end || mask == 0 {
		return
	}
	s.transform(start, end, false, func(a Attributes) Attributes {
		return a.Clear(mask)
	})
}

// Clear removes all formatting from [start, end).
func (s *Set) Clear(start, end int) {
	s.Remove(start, end, MaskAll)
}

// transform rewrites the attributes covering [start, end) with fn. When
// fillGaps is set, unformatted gaps inside the interval are formatted too.
func (s *Set) transform(start, end int, fillGaps bool, fn func(Attributes) Attributes) {
	out := make([]Range, 0, len(s.ranges)+3)
	cursor := start
	for _, r := range s.ranges {
		if !r.Overlaps(start, end) {
			out = append(out, r)
			continue
		}
		if r.Start < start {
			out = append(out, Range{Start: r.Start, End: start, Attrs: r.Attrs})
		}
		lo, hi := max(r.Start, start), min(r.End, end)
		if fillGaps && cursor < lo {
			out = append(out, Range{Start: cursor, End: lo, Attrs: fn(Attributes{})})
		}
		out = append(out, Range{Start: lo, End: hi, Attrs: fn(r.Attrs)})
		cursor = hi
		if r.End > end {
			out = append(out, Range{Start: end, End: r.End, Attrs: r.Attrs})
		}
	}
	if fillGaps && cursor < end {
		out = append(out, Range{Start: cursor, End: end, Attrs: fn(Attributes{})})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	s.ranges = normalize(out)
}

// ShiftInsert accounts for n runes inserted at offset. Ranges starting at or
// after offset move right; a range straddling offset grows.
func (s *Set) ShiftInsert(offset, n int) {
	if n <= 0 {
		return
	}
	for i := range s.ranges {
		r := &s.ranges[i]
		switch {
		case r.Start >= offset:
			r.Start += n
			r.End += n
		case r.End > offset:
			r.End += n
		}
	}
}

// ShiftDelete accounts for the runes [start, end) being deleted. Ranges
// after the deletion move left, partially covered ranges are truncated to
// their surviving part, and ranges left empty are dropped.
func (s *Set) ShiftDelete(start, end int) {
	n := end - start
	if n <= 0 {
		return
	}
	out := s.ranges[:0]
	for _, r := range s.ranges {
		switch {
		case r.End <= start:
		case r.Start >= end:
			r.Start -= n
			r.End -= n
		default:
			if r.Start > start {
				r.Start = start
			}
			if r.End > end {
				r.End -= n
			} else {
				r.End = start
			}
		}
		out = append(out, r)
	}
	s.ranges = normalize(out)
}

// Split partitions the set at offset. Ranges before offset stay in the
// first set, ranges after it move to the second set re-based to zero, and a
// range straddling offset is cut in two.
func (s Set) Split(offset int) (Set, Set) {
	var left, right []Range
	for _, r := range s.ranges {
		if r.Start < offset {
			left = append(left, Range{Start: r.Start, End: min(r.End, offset), Attrs: r.Attrs})
		}
		if r.End > offset {
			right = append(right, Range{Start: max(r.Start, offset) - offset, End: r.End - offset, Attrs: r.Attrs})
		}
	}
	return Set{ranges: normalize(left)}, Set{ranges: normalize(right)}
}

// Append adds the ranges of other, shifted right by shift. Every range of
// other must start at or after the end of s's last range once shifted.
func (s *Set) Append(other Set, shift int) {
	merged := slices.Grow(s.ranges, len(other.ranges))
	for _, r := range other.ranges {
		merged = append(merged, Range{Start: r.Start + shift, End: r.End + shift, Attrs: r.Attrs})
	}
	s.ranges = normalize(merged)
}

// Validate checks the set invariants against a paragraph of the given length.
func (s Set) Validate(length int) error {
	for i, r := range s.ranges {
		if r.IsEmpty() || r.Start < 0 || r.End > length {
			return fmt.Errorf("%w: %s in paragraph of length %d", ErrInvalidRange, r, length)
		}
		if r.Attrs.IsZero() {
			return fmt.Errorf("%w: %s has no attributes", ErrInvalidRange, r)
		}
		if i > 0 {
			prev := s.ranges[i-1]
			if prev.End > r.Start {
				return fmt.Errorf("%w: %s overlaps %s", ErrInvalidRange, prev, r)
			}
			if prev.End == r.Start && prev.Attrs == r.Attrs {
				return fmt.Errorf("%w: %s and %s are not coalesced", ErrInvalidRange, prev, r)
			}
		}
	}
	return nil
}

// normalize drops degenerate ranges and coalesces adjacent ranges that carry
// identical attributes. The input must be sorted and non-overlapping.
func normalize(in []Range) []Range {
	out := in[:0]
	for _, r := range in {
		if r.IsEmpty() || r.Attrs.IsZero() {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End == r.Start && out[n-1].Attrs == r.Attrs {
			out[n-1].End = r.End
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
