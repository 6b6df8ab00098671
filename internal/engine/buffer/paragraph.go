package buffer

import (
	"strings"

	"github.com/dshills/quire/internal/engine/format"
)

// HeightState records whether a paragraph's stored height reflects its
// current content.
type HeightState uint8

const (
	// HeightDirty means the stored height is provisional and the paragraph
	// must be laid out before its height can be trusted.
	HeightDirty HeightState = iota
	// HeightClean means the stored height was measured from the current
	// content.
	HeightClean
)

// String returns the name of the state.
func (s HeightState) String() string {
	if s == HeightClean {
		return "clean"
	}
	return "dirty"
}

// Paragraph is one block of text with its inline formatting.
//
// Paragraphs are owned by a Buffer and can only be changed through it. The
// ID is stable for the paragraph's lifetime; the revision increases on every
// mutation, so (ID, Revision) identifies one exact content version.
type Paragraph struct {
	id       uint64
	text     []rune
	formats  format.Set
	revision uint64
	height   HeightState
}

// ID returns the paragraph's stable identity.
func (p *Paragraph) ID() uint64 {
	return p.id
}

// Revision returns the content version, bumped on every mutation.
func (p *Paragraph) Revision() uint64 {
	return p.revision
}

// Text returns the paragraph text.
func (p *Paragraph) Text() string {
	return string(p.text)
}

// Len returns the paragraph length in runes.
func (p *Paragraph) Len() int {
	return len(p.text)
}

// IsEmpty returns true if the paragraph has no text.
func (p *Paragraph) IsEmpty() bool {
	return len(p.text) == 0
}

// Slice returns the text of runes [start, end), clamped to the paragraph.
func (p *Paragraph) Slice(start, end int) string {
	start = max(0, min(start, len(p.text)))
	end = max(start, min(end, len(p.text)))
	return string(p.text[start:end])
}

// Formats returns a copy of the paragraph's format ranges.
func (p *Paragraph) Formats() []format.Range {
	return p.formats.Ranges()
}

// FormatSet returns a copy of the paragraph's format set.
func (p *Paragraph) FormatSet() format.Set {
	return p.formats.Clone()
}

// HeightState reports whether the stored height is current.
func (p *Paragraph) HeightState() HeightState {
	return p.height
}

// touch records a mutation.
func (p *Paragraph) touch() {
	p.revision++
	p.height = HeightDirty
}

// isParagraphBreak reports whether r ends a paragraph. U+2028 LINE
// SEPARATOR is a forced line break inside a paragraph and is allowed.
func isParagraphBreak(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2029'
}

func containsParagraphBreak(s string) bool {
	return strings.ContainsFunc(s, isParagraphBreak)
}

// SplitParagraphs splits text into paragraph strings on "\r\n", "\n", "\r"
// and U+2029. The result always holds at least one element.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.Map(func(r rune) rune {
		if isParagraphBreak(r) {
			return '\n'
		}
		return r
	}, text)
	return strings.Split(text, "\n")
}
