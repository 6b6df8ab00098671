package buffer

import (
	"strings"

	"github.com/dshills/quire/internal/engine/format"
)

// ParagraphSnapshot is an immutable copy of one paragraph.
type ParagraphSnapshot struct {
	ID      uint64
	Text    string
	Formats []format.Range
}

// Snapshot is a read-only copy of a buffer at a specific revision. It is
// safe to hand to other goroutines and never changes, even if the buffer is
// modified afterwards.
type Snapshot struct {
	revision   uint64
	paragraphs []ParagraphSnapshot
}

// Snapshot copies the current document state.
func (b *Buffer) Snapshot() *Snapshot {
	s := &Snapshot{
		revision:   b.revision,
		paragraphs: make([]ParagraphSnapshot, len(b.paragraphs)),
	}
	for i, p := range b.paragraphs {
		s.paragraphs[i] = ParagraphSnapshot{
			ID:      p.id,
			Text:    p.Text(),
			Formats: p.Formats(),
		}
	}
	return s
}

// Revision returns the buffer revision the snapshot was taken at.
func (s *Snapshot) Revision() uint64 {
	return s.revision
}

// Count returns the number of paragraphs.
func (s *Snapshot) Count() int {
	return len(s.paragraphs)
}

// Text returns the text of paragraph index, or "" if out of range.
func (s *Snapshot) Text(index int) string {
	if index < 0 || index >= len(s.paragraphs) {
		return ""
	}
	return s.paragraphs[index].Text
}

// Paragraph returns the paragraph copy at index.
func (s *Snapshot) Paragraph(index int) (ParagraphSnapshot, bool) {
	if index < 0 || index >= len(s.paragraphs) {
		return ParagraphSnapshot{}, false
	}
	return s.paragraphs[index], true
}

// ForEachText calls fn with each paragraph's text until fn returns false.
func (s *Snapshot) ForEachText(fn func(index int, text string) bool) {
	for i, p := range s.paragraphs {
		if !fn(i, p.Text) {
			return
		}
	}
}

// PlainText returns the text with paragraphs joined by "\n".
func (s *Snapshot) PlainText() string {
	var sb strings.Builder
	for i, p := range s.paragraphs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}
