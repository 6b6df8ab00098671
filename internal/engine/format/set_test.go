package format

import (
	"errors"
	"testing"
)

func mustSet(t *testing.T, length int, ranges ...Range) Set {
	t.Helper()
	s, err := NewSet(length, ranges...)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return s
}

func expectRanges(t *testing.T, s Set, want ...Range) {
	t.Helper()
	got := s.Ranges()
	if len(got) != len(want) {
		t.Fatalf("expected %d ranges %v, got %d %v", len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("range %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestNewSetRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		ranges []Range
	}{
		{"empty", []Range{{Start: 3, End: 3, Attrs: Bold()}}},
		{"reversed", []Range{{Start: 4, End: 2, Attrs: Bold()}}},
		{"past end", []Range{{Start: 0, End: 11, Attrs: Bold()}}},
		{"negative", []Range{{Start: -1, End: 2, Attrs: Bold()}}},
		{"overlap", []Range{{Start: 0, End: 5, Attrs: Bold()}, {Start: 4, End: 6, Attrs: Italic()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSet(10, tt.ranges...)
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestNewSetSortsAndCoalesces(t *testing.T) {
	s := mustSet(t, 10,
		Range{Start: 5, End: 8, Attrs: Bold()},
		Range{Start: 0, End: 5, Attrs: Bold()},
		Range{Start: 8, End: 9, Attrs: Attributes{}},
	)
	expectRanges(t, s, Range{Start: 0, End: 8, Attrs: Bold()})
}

func TestApplyOverlapping(t *testing.T) {
	var s Set
	s.Apply(0, 5, Bold(), MaskWeight)
	s.Apply(3, 9, Italic(), MaskItalic)

	boldItalic := Attributes{Weight: WeightBold, Italic: true}
	expectRanges(t, s,
		Range{Start: 0, End: 3, Attrs: Bold()},
		Range{Start: 3, End: 5, Attrs: boldItalic},
		Range{Start: 5, End: 9, Attrs: Italic()},
	)
	if err := s.Validate(9); err != nil {
		t.Fatal(err)
	}
}

func TestApplyFillsGaps(t *testing.T) {
	var s Set
	s.Apply(0, 2, Italic(), MaskItalic)
	s.Apply(4, 6, Italic(), MaskItalic)
	s.Apply(0, 6, Italic(), MaskItalic)
	expectRanges(t, s, Range{Start: 0, End: 6, Attrs: Italic()})
}

func TestApplyIgnoresDegenerate(t *testing.T) {
	var s Set
	s.Apply(4, 4, Bold(), MaskWeight)
	s.Apply(5, 2, Bold(), MaskWeight)
	s.Apply(0, 3, Bold(), 0)
	if !s.IsEmpty() {
		t.Errorf("expected empty set, got %v", s.Ranges())
	}
}

func TestRemove(t *testing.T) {
	var s Set
	s.Apply(0, 10, Attributes{Weight: WeightBold, Underline: true}, MaskWeight|MaskUnderline)
	s.Remove(2, 4, MaskWeight)
	s.Remove(8, 10, MaskAll)

	expectRanges(t, s,
		Range{Start: 0, End: 2, Attrs: Attributes{Weight: WeightBold, Underline: true}},
		Range{Start: 2, End: 4, Attrs: Attributes{Underline: true}},
		Range{Start: 4, End: 8, Attrs: Attributes{Weight: WeightBold, Underline: true}},
	)
}

func TestClearDropsRanges(t *testing.T) {
	var s Set
	s.Apply(2, 6, Bold(), MaskWeight)
	s.Clear(0, 10)
	if !s.IsEmpty() {
		t.Errorf("expected empty set, got %v", s.Ranges())
	}
}

func TestAt(t *testing.T) {
	var s Set
	s.Apply(2, 4, Bold(), MaskWeight)
	s.Apply(6, 8, Italic(), MaskItalic)

	tests := []struct {
		offset int
		want   Attributes
	}{
		{0, Attributes{}},
		{2, Bold()},
		{3, Bold()},
		{4, Attributes{}},
		{6, Italic()},
		{8, Attributes{}},
	}
	for _, tt := range tests {
		if got := s.At(tt.offset); got != tt.want {
			t.Errorf("At(%d): expected %s, got %s", tt.offset, tt.want, got)
		}
	}
}

func TestCovers(t *testing.T) {
	var s Set
	s.Apply(0, 4, Bold(), MaskWeight)
	s.Apply(4, 8, Attributes{Weight: WeightBold, Italic: true}, MaskWeight|MaskItalic)

	if !s.Covers(0, 8, Bold(), MaskWeight) {
		t.Error("expected bold to cover [0,8)")
	}
	if s.Covers(0, 9, Bold(), MaskWeight) {
		t.Error("bold must not cover [0,9)")
	}
	if s.Covers(0, 8, Italic(), MaskItalic) {
		t.Error("italic must not cover [0,8)")
	}
}

func TestShiftInsert(t *testing.T) {
	var s Set
	s.Apply(0, 3, Bold(), MaskWeight)
	s.Apply(5, 8, Italic(), MaskItalic)

	// Inside the first range: it grows, the second moves.
	s.ShiftInsert(1, 2)
	expectRanges(t, s,
		Range{Start: 0, End: 5, Attrs: Bold()},
		Range{Start: 7, End: 10, Attrs: Italic()},
	)

	// Exactly at a range start: the range moves.
	s.ShiftInsert(7, 1)
	expectRanges(t, s,
		Range{Start: 0, End: 5, Attrs: Bold()},
		Range{Start: 8, End: 11, Attrs: Italic()},
	)

	// Exactly at a range end: the range is unchanged.
	s.ShiftInsert(5, 1)
	expectRanges(t, s,
		Range{Start: 0, End: 5, Attrs: Bold()},
		Range{Start: 9, End: 12, Attrs: Italic()},
	)
}

func TestShiftDelete(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		want       []Range
	}{
		{"before", 0, 2, []Range{{Start: 2, End: 6, Attrs: Bold()}}},
		{"after", 8, 10, []Range{{Start: 4, End: 8, Attrs: Bold()}}},
		{"fully covering", 3, 9, nil},
		{"exactly covering", 4, 8, nil},
		{"left overlap", 2, 6, []Range{{Start: 2, End: 4, Attrs: Bold()}}},
		{"right overlap", 6, 10, []Range{{Start: 4, End: 6, Attrs: Bold()}}},
		{"inside", 5, 7, []Range{{Start: 4, End: 6, Attrs: Bold()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSet(t, 12, Range{Start: 4, End: 8, Attrs: Bold()})
			s.ShiftDelete(tt.start, tt.end)
			expectRanges(t, s, tt.want...)
			if err := s.Validate(12 - (tt.end - tt.start)); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestShiftDeleteCoalesces(t *testing.T) {
	var s Set
	s.Apply(0, 2, Bold(), MaskWeight)
	s.Apply(4, 6, Bold(), MaskWeight)
	s.ShiftDelete(2, 4)
	expectRanges(t, s, Range{Start: 0, End: 4, Attrs: Bold()})
}

func TestSplit(t *testing.T) {
	var s Set
	s.Apply(0, 5, Bold(), MaskWeight)
	s.Apply(7, 11, Italic(), MaskItalic)

	left, right := s.Split(5)
	expectRanges(t, left, Range{Start: 0, End: 5, Attrs: Bold()})
	expectRanges(t, right, Range{Start: 2, End: 6, Attrs: Italic()})

	left, right = s.Split(9)
	expectRanges(t, left,
		Range{Start: 0, End: 5, Attrs: Bold()},
		Range{Start: 7, End: 9, Attrs: Italic()},
	)
	expectRanges(t, right, Range{Start: 0, End: 2, Attrs: Italic()})
}

func TestSplitThenAppendRestores(t *testing.T) {
	var s Set
	s.Apply(0, 5, Bold(), MaskWeight)
	s.Apply(3, 10, Italic(), MaskItalic)
	s.Apply(12, 14, Attributes{CommentID: "c1"}, MaskComment)

	for offset := 0; offset <= 14; offset++ {
		left, right := s.Split(offset)
		left.Append(right, offset)
		if !left.Equal(s) {
			t.Errorf("split at %d then append: expected %v, got %v", offset, s.Ranges(), left.Ranges())
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	var s Set
	s.Apply(0, 4, Bold(), MaskWeight)
	c := s.Clone()
	s.ShiftInsert(0, 3)
	expectRanges(t, c, Range{Start: 0, End: 4, Attrs: Bold()})
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		in, want string
		err      bool
	}{
		{"", "", false},
		{"#FF0000", "#ff0000", false},
		{"#0f0", "#00ff00", false},
		{"red", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeColor(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("NormalizeColor(%q): unexpected error state %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeColor(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestAttributesString(t *testing.T) {
	a := Attributes{Weight: WeightBold, Italic: true, CommentID: "c1"}
	if got := a.String(); got != "bold+italic+comment=c1" {
		t.Errorf("unexpected string %q", got)
	}
	if got := (Attributes{}).String(); got != "plain" {
		t.Errorf("unexpected string %q", got)
	}
}

func TestNewTagIDUnique(t *testing.T) {
	if NewTagID() == NewTagID() {
		t.Error("tag ids should be unique")
	}
}
