// Package format stores the inline character formatting of a paragraph.
//
// A paragraph's formatting is a Set of non-overlapping Ranges. Each Range
// covers a half-open rune interval [Start, End) and carries one Attributes
// bundle: weight, italic, underline, strikethrough, vertical alignment,
// color, and the comment/TODO/footnote tags that anchor annotations to text.
//
// Formatting is applied and removed field by field using a Mask:
//
//	var s format.Set
//	s.Apply(0, 5, format.Bold(), format.MaskWeight)
//	s.Apply(3, 9, format.Italic(), format.MaskItalic)
//	// [0:3)bold [3:5)bold+italic [5:9)italic
//
// Text edits are mirrored with ShiftInsert and ShiftDelete, and paragraph
// splits and merges with Split and Append. All of them leave the set in
// canonical form: sorted, non-overlapping, no empty or attribute-less
// ranges, and adjacent identical ranges coalesced.
package format
