package format

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
)

// Weight is a font weight. The zero value is the regular weight.
type Weight uint16

// Common font weights.
const (
	WeightNormal Weight = 0
	WeightLight  Weight = 300
	WeightMedium Weight = 500
	WeightBold   Weight = 700
	WeightBlack  Weight = 900
)

// VerticalAlign positions text relative to the baseline.
type VerticalAlign uint8

const (
	AlignBaseline VerticalAlign = iota
	AlignSuperscript
	AlignSubscript
)

// String returns the name of the alignment.
func (v VerticalAlign) String() string {
	switch v {
	case AlignSuperscript:
		return "superscript"
	case AlignSubscript:
		return "subscript"
	default:
		return "baseline"
	}
}

// Mask selects which fields of an Attributes value an operation touches.
type Mask uint16

const (
	MaskWeight Mask = 1 << iota
	MaskItalic
	MaskUnderline
	MaskStrikethrough
	MaskVerticalAlign
	MaskColor
	MaskComment
	MaskTodo
	MaskFootnote

	// MaskStyle covers the visual character formatting.
	MaskStyle = MaskWeight | MaskItalic | MaskUnderline | MaskStrikethrough | MaskVerticalAlign | MaskColor
	// MaskTags covers the metadata tags.
	MaskTags = MaskComment | MaskTodo | MaskFootnote
	// MaskAll covers every field.
	MaskAll = MaskStyle | MaskTags
)

// Attributes is the formatting and metadata bundle carried by a Range.
// The zero value means "no formatting" and is never stored in a Set.
type Attributes struct {
	Weight        Weight
	Italic        bool
	Underline     bool
	Strikethrough bool
	VerticalAlign VerticalAlign
	Color         string // normalized "#rrggbb", empty for the default color

	CommentID  string
	TodoID     string
	FootnoteID string
}

// Bold returns attributes with the bold weight set.
func Bold() Attributes { return Attributes{Weight: WeightBold} }

// Italic returns attributes with italic set.
func Italic() Attributes { return Attributes{Italic: true} }

// IsZero reports whether no field is set.
func (a Attributes) IsZero() bool {
	return a == Attributes{}
}

// IsBold reports whether the weight is at least semi-bold.
func (a Attributes) IsBold() bool {
	return a.Weight >= 600
}

// Fields returns the mask of fields that are set.
func (a Attributes) Fields() Mask {
	var m Mask
	if a.Weight != WeightNormal {
		m |= MaskWeight
	}
	if a.Italic {
		m |= MaskItalic
	}
	if a.Underline {
		m |= MaskUnderline
	}
	if a.Strikethrough {
		m |= MaskStrikethrough
	}
	if a.VerticalAlign != AlignBaseline {
		m |= MaskVerticalAlign
	}
	if a.Color != "" {
		m |= MaskColor
	}
	if a.CommentID != "" {
		m |= MaskComment
	}
	if a.TodoID != "" {
		m |= MaskTodo
	}
	if a.FootnoteID != "" {
		m |= MaskFootnote
	}
	return m
}

// Merge returns a copy of a with the fields selected by mask taken from patch.
func (a Attributes) Merge(patch Attributes, mask Mask) Attributes {
	if mask&MaskWeight != 0 {
		a.Weight = patch.Weight
	}
	if mask&MaskItalic != 0 {
		a.Italic = patch.Italic
	}
	if mask&MaskUnderline != 0 {
		a.Underline = patch.Underline
	}
	if mask&MaskStrikethrough != 0 {
		a.Strikethrough = patch.Strikethrough
	}
	if mask&MaskVerticalAlign != 0 {
		a.VerticalAlign = patch.VerticalAlign
	}
	if mask&MaskColor != 0 {
		a.Color = patch.Color
	}
	if mask&MaskComment != 0 {
		a.CommentID = patch.CommentID
	}
	if mask&MaskTodo != 0 {
		a.TodoID = patch.TodoID
	}
	if mask&MaskFootnote != 0 {
		a.FootnoteID = patch.FootnoteID
	}
	return a
}

// Clear returns a copy of a with the fields selected by mask reset.
func (a Attributes) Clear(mask Mask) Attributes {
	return a.Merge(Attributes{}, mask)
}

// String returns a compact description such as "bold+italic+comment=c1".
func (a Attributes) String() string {
	if a.IsZero() {
		return "plain"
	}
	var parts []string
	if a.Weight != WeightNormal {
		if a.Weight == WeightBold {
			parts = append(parts, "bold")
		} else {
			parts = append(parts, fmt.Sprintf("weight=%d", a.Weight))
		}
	}
	if a.Italic {
		parts = append(parts, "italic")
	}
	if a.Underline {
		parts = append(parts, "underline")
	}
	if a.Strikethrough {
		parts = append(parts, "strike")
	}
	if a.VerticalAlign != AlignBaseline {
		parts = append(parts, a.VerticalAlign.String())
	}
	if a.Color != "" {
		parts = append(parts, "color="+a.Color)
	}
	if a.CommentID != "" {
		parts = append(parts, "comment="+a.CommentID)
	}
	if a.TodoID != "" {
		parts = append(parts, "todo="+a.TodoID)
	}
	if a.FootnoteID != "" {
		parts = append(parts, "footnote="+a.FootnoteID)
	}
	return strings.Join(parts, "+")
}

// NormalizeColor parses a hex color ("#f00", "#ff0000") and returns it in
// lowercase "#rrggbb" form. An empty string stays empty.
func NormalizeColor(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if len(s) == 4 && s[0] == '#' {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("color %q: %w", s, err)
	}
	return c.Hex(), nil
}

// NewTagID returns a fresh identifier for a comment, TODO or footnote tag.
func NewTagID() string {
	return uuid.NewString()
}
