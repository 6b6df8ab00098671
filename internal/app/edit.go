package app

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/quire/internal/engine/buffer"
	"github.com/dshills/quire/internal/engine/format"
	"github.com/dshills/quire/internal/engine/history"
)

// Insert types text at the caret. Line breaks in text split the paragraph,
// so pasting several lines is one undoable edit.
func (d *Document) Insert(text string) error {
	if d.closed {
		return ErrClosed
	}
	if text == "" {
		return nil
	}
	at := d.caret
	lines := buffer.SplitParagraphs(text)
	caret := at
	err := d.hist.Transaction(d.buf, "Insert", func() error {
		for i, line := range lines {
			if i > 0 {
				if err := d.hist.Execute(d.buf, history.Split(caret)); err != nil {
					return err
				}
				caret = buffer.Pos(caret.Paragraph+1, 0)
			}
			if line == "" {
				continue
			}
			if err := d.hist.Execute(d.buf, history.InsertText(caret, line)); err != nil {
				return err
			}
			caret.Offset += utf8.RuneCountInString(line)
		}
		return nil
	})
	if err != nil {
		return opError("insert", at.String(), err)
	}
	d.edited("insert", caret)
	return nil
}

// SplitParagraph breaks the paragraph at the caret.
func (d *Document) SplitParagraph() error {
	return d.execute("split", history.Split(d.caret), buffer.Pos(d.caret.Paragraph+1, 0))
}

// Backspace deletes the grapheme cluster before the caret, or joins the
// paragraph with the previous one when the caret is at its start.
func (d *Document) Backspace() error {
	if d.closed {
		return ErrClosed
	}
	c := d.caret
	if c.Offset > 0 {
		start := prevBoundary(d.buf.Text(c.Paragraph), c.Offset)
		return d.execute("delete", history.DeleteText(buffer.SpanIn(c.Paragraph, start, c.Offset)), buffer.Pos(c.Paragraph, start))
	}
	if c.Paragraph == 0 {
		return nil
	}
	prevLen := d.buf.Len(c.Paragraph - 1)
	return d.execute("merge", history.Merge(c.Paragraph-1), buffer.Pos(c.Paragraph-1, prevLen))
}

// Delete deletes the grapheme cluster after the caret, or joins the next
// paragraph when the caret is at the end.
func (d *Document) Delete() error {
	if d.closed {
		return ErrClosed
	}
	c := d.caret
	if c.Offset < d.buf.Len(c.Paragraph) {
		end := nextBoundary(d.buf.Text(c.Paragraph), c.Offset)
		return d.execute("delete", history.DeleteText(buffer.SpanIn(c.Paragraph, c.Offset, end)), c)
	}
	if c.Paragraph+1 >= d.buf.Count() {
		return nil
	}
	return d.execute("merge", history.Merge(c.Paragraph), c)
}

// DeleteRange deletes r, which may span paragraphs. The paragraphs at either
// end are joined.
func (d *Document) DeleteRange(r buffer.Range) error {
	if d.closed {
		return ErrClosed
	}
	r = r.Normalize()
	if r.IsEmpty() {
		return nil
	}
	if r.SingleParagraph() {
		return d.execute("delete", history.DeleteText(r), r.Start)
	}
	if r.End.Paragraph >= d.buf.Count() || r.End.Offset > d.buf.Len(r.End.Paragraph) {
		return opError("delete", r.String(), buffer.ErrInvalidRange)
	}

	first, last := r.Start.Paragraph, r.End.Paragraph
	err := d.hist.Transaction(d.buf, "Delete", func() error {
		if r.End.Offset > 0 {
			if err := d.hist.Execute(d.buf, history.DeleteText(buffer.SpanIn(last, 0, r.End.Offset))); err != nil {
				return err
			}
		}
		for i := last - 1; i > first; i-- {
			if err := d.hist.Execute(d.buf, history.DeleteParagraph(i)); err != nil {
				return err
			}
		}
		if n := d.buf.Len(first); r.Start.Offset < n {
			if err := d.hist.Execute(d.buf, history.DeleteText(buffer.SpanIn(first, r.Start.Offset, n))); err != nil {
				return err
			}
		}
		return d.hist.Execute(d.buf, history.Merge(first))
	})
	if err != nil {
		return opError("delete", r.String(), err)
	}
	d.edited("delete", r.Start)
	return nil
}

// ApplyFormat sets the fields of attrs selected by mask over r, which may
// span paragraphs.
func (d *Document) ApplyFormat(r buffer.Range, attrs format.Attributes, mask format.Mask) error {
	return d.formatSpans("format", r, func(span buffer.Range) *history.Command {
		return history.FormatApply(span, attrs, mask)
	})
}

// RemoveFormat clears the fields selected by mask over r.
func (d *Document) RemoveFormat(r buffer.Range, mask format.Mask) error {
	return d.formatSpans("unformat", r, func(span buffer.Range) *history.Command {
		return history.FormatRemove(span, mask)
	})
}

// ToggleFormat removes attrs over r if r is entirely covered by them and
// applies them otherwise, like a bold button.
func (d *Document) ToggleFormat(r buffer.Range, attrs format.Attributes, mask format.Mask) error {
	r = r.Normalize()
	for _, span := range d.spans(r) {
		p, err := d.buf.Paragraph(span.Start.Paragraph)
		if err != nil {
			return opError("format", r.String(), err)
		}
		if !p.FormatSet().Covers(span.Start.Offset, span.End.Offset, attrs, mask) {
			return d.ApplyFormat(r, attrs, mask)
		}
	}
	return d.RemoveFormat(r, mask)
}

func (d *Document) formatSpans(op string, r buffer.Range, cmd func(buffer.Range) *history.Command) error {
	if d.closed {
		return ErrClosed
	}
	r = r.Normalize()
	if r.End.Paragraph >= d.buf.Count() {
		return opError(op, r.String(), buffer.ErrOutOfRange)
	}
	err := d.hist.Transaction(d.buf, "Format", func() error {
		for _, span := range d.spans(r) {
			if err := d.hist.Execute(d.buf, cmd(span)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return opError(op, r.String(), err)
	}
	d.edited(op, d.caret)
	return nil
}

// spans splits r into non-empty single-paragraph ranges.
func (d *Document) spans(r buffer.Range) []buffer.Range {
	var out []buffer.Range
	for i := r.Start.Paragraph; i <= r.End.Paragraph; i++ {
		start, end := 0, d.buf.Len(i)
		if i == r.Start.Paragraph {
			start = r.Start.Offset
		}
		if i == r.End.Paragraph {
			end = r.End.Offset
		}
		if start < end {
			out = append(out, buffer.SpanIn(i, start, end))
		}
	}
	return out
}

// Undo reverts the last edit and moves the caret to it.
func (d *Document) Undo() error {
	if d.closed {
		return ErrClosed
	}
	pos, err := d.hist.Undo(d.buf)
	if err != nil {
		return opError("undo", "", err)
	}
	d.edited("undo", pos)
	return nil
}

// Redo reapplies the last undone edit.
func (d *Document) Redo() error {
	if d.closed {
		return ErrClosed
	}
	pos, err := d.hist.Redo(d.buf)
	if err != nil {
		return opError("redo", "", err)
	}
	d.edited("redo", pos)
	return nil
}

func (d *Document) execute(op string, cmd *history.Command, caret buffer.Position) error {
	if d.closed {
		return ErrClosed
	}
	if err := d.hist.Execute(d.buf, cmd); err != nil {
		return opError(op, d.caret.String(), err)
	}
	d.edited(op, caret)
	return nil
}

// edited runs after every successful edit.
func (d *Document) edited(op string, caret buffer.Position) {
	d.modified = true
	d.caret = d.buf.Clamp(caret)
	d.view.Sync()
	d.reveal()
	d.log.Debug("%s at %s, %d dirty, revision %d", op, d.caret, d.buf.DirtyCount(), d.buf.Revision())
}

// prevBoundary returns the rune offset of the grapheme cluster boundary
// before offset.
func prevBoundary(text string, offset int) int {
	prev, pos := 0, 0
	state := -1
	var cluster string
	for text != "" && pos < offset {
		prev = pos
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		pos += utf8.RuneCountInString(cluster)
	}
	return prev
}

// nextBoundary returns the rune offset of the grapheme cluster boundary
// after offset.
func nextBoundary(text string, offset int) int {
	pos := 0
	state := -1
	var cluster string
	for text != "" {
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		pos += utf8.RuneCountInString(cluster)
		if pos > offset {
			return pos
		}
	}
	return pos
}
