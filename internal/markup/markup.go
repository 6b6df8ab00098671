// Package markup holds what the import and export formats share: the
// decoded paragraph representation and a builder that turns nested inline
// formatting into flat format ranges.
package markup

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/quire/internal/engine/buffer"
	"github.com/dshills/quire/internal/engine/format"
)

// Paragraph is one decoded paragraph: its text and format ranges, with
// rune offsets.
type Paragraph struct {
	Text   string
	Ranges []format.Range
}

// Load replaces the content of buf with paragraphs. No paragraphs yields a
// single empty one.
func Load(buf *buffer.Buffer, paragraphs []Paragraph) error {
	texts := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		texts[i] = p.Text
	}
	buf.Reset(texts)
	for i, p := range paragraphs {
		if len(p.Ranges) == 0 {
			continue
		}
		if err := buf.SetFormats(i, p.Ranges); err != nil {
			return fmt.Errorf("load paragraph %d: %w", i, err)
		}
	}
	return nil
}

// Builder accumulates a paragraph from text written under a stack of
// inline attributes. The zero value is ready to use.
type Builder struct {
	text   strings.Builder
	length int
	ranges []format.Range
	stack  []format.Attributes
}

// Attrs returns the attributes in effect.
func (b *Builder) Attrs() format.Attributes {
	if len(b.stack) == 0 {
		return format.Attributes{}
	}
	return b.stack[len(b.stack)-1]
}

// Push enters an inline element with the given effective attributes.
func (b *Builder) Push(attrs format.Attributes) {
	b.stack = append(b.stack, attrs)
}

// PushMerged enters an inline element that sets the fields of patch
// selected by mask on top of the current attributes.
func (b *Builder) PushMerged(patch format.Attributes, mask format.Mask) {
	b.Push(b.Attrs().Merge(patch, mask))
}

// Pop leaves the innermost inline element.
func (b *Builder) Pop() {
	if len(b.stack) > 0 {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

// Depth returns the number of open inline elements.
func (b *Builder) Depth() int {
	return len(b.stack)
}

// Write appends s under the current attributes.
func (b *Builder) Write(s string) {
	if s == "" {
		return
	}
	n := utf8.RuneCountInString(s)
	if a := b.Attrs(); !a.IsZero() {
		b.ranges = append(b.ranges, format.Range{Start: b.length, End: b.length + n, Attrs: a})
	}
	b.text.WriteString(s)
	b.length += n
}

// Len returns the rune length written so far.
func (b *Builder) Len() int {
	return b.length
}

// Finish returns the paragraph and resets the builder.
func (b *Builder) Finish() Paragraph {
	p := Paragraph{Text: b.text.String(), Ranges: b.ranges}
	*b = Builder{}
	return p
}
