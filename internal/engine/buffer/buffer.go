package buffer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dshills/quire/internal/engine/format"
	"github.com/dshills/quire/internal/engine/heightindex"
)

// Buffer is an ordered sequence of paragraphs addressed by 0-based index.
//
// A Buffer always holds at least one paragraph; an empty document is a
// single empty paragraph. The buffer owns the paragraph height index so that
// height slots are created and destroyed in lockstep with paragraphs.
//
// Buffer is not safe for concurrent use. All mutation happens on the editing
// goroutine; other goroutines read through Snapshot.
type Buffer struct {
	paragraphs []*Paragraph
	heights    *heightindex.Index
	estimator  Estimator
	nextID     uint64
	revision   uint64
}

// NewBuffer creates a buffer holding one empty paragraph.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		estimator: ConstantEstimator(DefaultParagraphHeight),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.paragraphs = []*Paragraph{b.newParagraph(nil)}
	b.heights = heightindex.New(1, b.estimate(""))
	return b
}

// NewBufferFromString creates a buffer with one paragraph per line of text.
func NewBufferFromString(text string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.Reset(SplitParagraphs(text))
	return b
}

// Reset replaces the whole document with unformatted paragraphs.
// An empty slice yields a single empty paragraph.
func (b *Buffer) Reset(texts []string) {
	if len(texts) == 0 {
		texts = []string{""}
	}
	b.paragraphs = make([]*Paragraph, len(texts))
	heights := make([]float64, len(texts))
	for i, text := range texts {
		text = strings.Map(func(r rune) rune {
			if isParagraphBreak(r) {
				return ' '
			}
			return r
		}, text)
		b.paragraphs[i] = b.newParagraph([]rune(text))
		heights[i] = b.estimate(text)
	}
	b.heights = heightindex.FromHeights(heights)
	b.revision++
}

// SetEstimator replaces the provisional height estimator used for
// paragraphs created from now on.
func (b *Buffer) SetEstimator(e Estimator) {
	if e != nil {
		b.estimator = e
	}
}

func (b *Buffer) newParagraph(text []rune) *Paragraph {
	b.nextID++
	return &Paragraph{id: b.nextID, text: text, height: HeightDirty}
}

func (b *Buffer) estimate(text string) float64 {
	return b.estimator.EstimateHeight(text)
}

// touch records a mutation of p.
func (b *Buffer) touch(p *Paragraph) {
	p.touch()
	b.revision++
}

// Read Operations

// Count returns the number of paragraphs. It is never less than one.
func (b *Buffer) Count() int {
	return len(b.paragraphs)
}

// Revision returns a counter that increases on every mutation.
func (b *Buffer) Revision() uint64 {
	return b.revision
}

// Paragraph returns the paragraph at index.
func (b *Buffer) Paragraph(index int) (*Paragraph, error) {
	if index < 0 || index >= len(b.paragraphs) {
		return nil, fmt.Errorf("%w: %d of %d", ErrOutOfRange, index, len(b.paragraphs))
	}
	return b.paragraphs[index], nil
}

// Text returns the text of paragraph index, or "" if out of range.
func (b *Buffer) Text(index int) string {
	if index < 0 || index >= len(b.paragraphs) {
		return ""
	}
	return b.paragraphs[index].Text()
}

// Len returns the rune length of paragraph index, or 0 if out of range.
func (b *Buffer) Len(index int) int {
	if index < 0 || index >= len(b.paragraphs) {
		return 0
	}
	return b.paragraphs[index].Len()
}

// Formats returns a copy of the format ranges of paragraph index.
func (b *Buffer) Formats(index int) []format.Range {
	if index < 0 || index >= len(b.paragraphs) {
		return nil
	}
	return b.paragraphs[index].Formats()
}

// FormatsAt returns the attributes in effect at pos.
func (b *Buffer) FormatsAt(pos Position) format.Attributes {
	if pos.Paragraph < 0 || pos.Paragraph >= len(b.paragraphs) {
		return format.Attributes{}
	}
	return b.paragraphs[pos.Paragraph].formats.At(pos.Offset)
}

// TextIn returns the text covered by a single-paragraph range.
func (b *Buffer) TextIn(r Range) (string, error) {
	p, err := b.checkSpan(r)
	if err != nil {
		return "", err
	}
	return string(p.text[r.Start.Offset:r.End.Offset]), nil
}

// PlainText returns the document text with paragraphs joined by "\n".
func (b *Buffer) PlainText() string {
	var sb strings.Builder
	for i, p := range b.paragraphs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(p.text))
	}
	return sb.String()
}

// ForEachParagraph calls fn for each paragraph in order until fn returns
// false. The ranges slice is a copy owned by fn.
func (b *Buffer) ForEachParagraph(fn func(index int, text string, ranges []format.Range) bool) {
	for i, p := range b.paragraphs {
		if !fn(i, p.Text(), p.Formats()) {
			return
		}
	}
}

// End returns the position after the last character of the document.
func (b *Buffer) End() Position {
	last := len(b.paragraphs) - 1
	return Position{Paragraph: last, Offset: b.paragraphs[last].Len()}
}

// Clamp returns the nearest valid position to pos.
func (b *Buffer) Clamp(pos Position) Position {
	if pos.Paragraph < 0 {
		return Position{}
	}
	if pos.Paragraph >= len(b.paragraphs) {
		return b.End()
	}
	pos.Offset = max(0, min(pos.Offset, b.paragraphs[pos.Paragraph].Len()))
	return pos
}

// Structural Operations

// InsertParagraph inserts a new paragraph holding text at index, shifting
// later paragraphs down. index may equal Count to append.
func (b *Buffer) InsertParagraph(index int, text string) error {
	if index < 0 || index > len(b.paragraphs) {
		return fmt.Errorf("insert paragraph %d of %d: %w", index, len(b.paragraphs), ErrOutOfRange)
	}
	if containsParagraphBreak(text) {
		return fmt.Errorf("insert paragraph %d: %w", index, ErrParagraphBreak)
	}
	p := b.newParagraph([]rune(text))
	b.paragraphs = slices.Insert(b.paragraphs, index, p)
	if err := b.heights.Insert(index, b.estimate(text)); err != nil {
		return err
	}
	b.revision++
	return nil
}

// AppendParagraph adds a paragraph at the end of the document.
func (b *Buffer) AppendParagraph(text string) error {
	return b.InsertParagraph(len(b.paragraphs), text)
}

// SplitParagraph splits the paragraph at pos into two at pos.Offset. Format
// ranges before the split stay with the first half, ranges after it move to
// the second half re-based to zero, and a range straddling the split is cut
// in two.
func (b *Buffer) SplitParagraph(pos Position) error {
	p, err := b.checkPosition(pos)
	if err != nil {
		return fmt.Errorf("split paragraph: %w", err)
	}
	off := pos.Offset
	left, right := p.formats.Split(off)

	next := b.newParagraph(slices.Clone(p.text[off:]))
	next.formats = right
	p.text = slices.Clip(p.text[:off])
	p.formats = left
	b.touch(p)

	b.paragraphs = slices.Insert(b.paragraphs, pos.Paragraph+1, next)
	return b.heights.Insert(pos.Paragraph+1, b.estimate(next.Text()))
}

// MergeParagraphs joins paragraph index+1 onto the end of paragraph index.
// The second paragraph's format ranges are shifted by the first paragraph's
// length.
func (b *Buffer) MergeParagraphs(index int) error {
	if index < 0 || index+1 >= len(b.paragraphs) {
		return fmt.Errorf("merge paragraphs %d and %d of %d: %w", index, index+1, len(b.paragraphs), ErrOutOfRange)
	}
	first, second := b.paragraphs[index], b.paragraphs[index+1]
	shift := first.Len()
	first.text = append(first.text, second.text...)
	first.formats.Append(second.formats, shift)
	b.touch(first)

	h1, _ := b.heights.Height(index)
	h2, _ := b.heights.Height(index + 1)
	b.paragraphs = slices.Delete(b.paragraphs, index+1, index+2)
	if err := b.heights.Remove(index + 1); err != nil {
		return err
	}
	return b.heights.Update(index, h1+h2)
}

// DeleteParagraph removes the paragraph at index. Deleting the only
// paragraph empties it instead, so the document never has zero paragraphs.
func (b *Buffer) DeleteParagraph(index int) error {
	if index < 0 || index >= len(b.paragraphs) {
		return fmt.Errorf("delete paragraph %d of %d: %w", index, len(b.paragraphs), ErrOutOfRange)
	}
	if len(b.paragraphs) == 1 {
		p := b.paragraphs[0]
		p.text = nil
		p.formats = format.Set{}
		b.touch(p)
		return b.heights.Update(0, b.estimate(""))
	}
	b.paragraphs = slices.Delete(b.paragraphs, index, index+1)
	b.revision++
	return b.heights.Remove(index)
}

// checkIndex validates a paragraph index.
func (b *Buffer) checkIndex(index int) (*Paragraph, error) {
	if index < 0 || index >= len(b.paragraphs) {
		return nil, fmt.Errorf("%w: paragraph %d of %d", ErrOutOfRange, index, len(b.paragraphs))
	}
	return b.paragraphs[index], nil
}

// checkPosition validates a position, allowing the offset after the last
// character.
func (b *Buffer) checkPosition(pos Position) (*Paragraph, error) {
	p, err := b.checkIndex(pos.Paragraph)
	if err != nil {
		return nil, err
	}
	if pos.Offset < 0 || pos.Offset > p.Len() {
		return nil, fmt.Errorf("%w: %s, paragraph length %d", ErrInvalidOffset, pos, p.Len())
	}
	return p, nil
}

// checkSpan validates a normalized range confined to one paragraph.
func (b *Buffer) checkSpan(r Range) (*Paragraph, error) {
	if !r.IsNormalized() {
		return nil, fmt.Errorf("%w: %s is reversed", ErrInvalidRange, r)
	}
	if !r.SingleParagraph() {
		return nil, fmt.Errorf("%w: %s spans paragraphs", ErrInvalidRange, r)
	}
	p, err := b.checkPosition(r.Start)
	if err != nil {
		return nil, err
	}
	if r.End.Offset > p.Len() {
		return nil, fmt.Errorf("%w: %s, paragraph length %d", ErrInvalidOffset, r.End, p.Len())
	}
	return p, nil
}
