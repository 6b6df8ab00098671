package history

import (
	"fmt"
	"unicode/utf8"

	"github.com/dshills/quire/internal/engine/buffer"
	"github.com/dshills/quire/internal/engine/format"
)

// Kind identifies the edit a Command performs.
type Kind uint8

const (
	// KindInsertText inserts text inside one paragraph.
	KindInsertText Kind = iota
	// KindDeleteText deletes a span inside one paragraph.
	KindDeleteText
	// KindInsertParagraph inserts a whole paragraph.
	KindInsertParagraph
	// KindDeleteParagraph deletes a whole paragraph.
	KindDeleteParagraph
	// KindSplit splits a paragraph in two.
	KindSplit
	// KindMerge joins a paragraph with the next one.
	KindMerge
	// KindFormatApply applies attributes over a span.
	KindFormatApply
	// KindFormatRemove removes attributes over a span.
	KindFormatRemove
)

var kindNames = [...]string{
	KindInsertText:      "insert-text",
	KindDeleteText:      "delete-text",
	KindInsertParagraph: "insert-paragraph",
	KindDeleteParagraph: "delete-paragraph",
	KindSplit:           "split",
	KindMerge:           "merge",
	KindFormatApply:     "format-apply",
	KindFormatRemove:    "format-remove",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Command is one undoable edit. The fields used depend on Kind; use the
// constructors rather than building a Command by hand.
//
// Applying a command captures the state it needs to revert, so a command
// can be applied and reverted any number of times in alternation.
type Command struct {
	Kind  Kind
	Pos   buffer.Position   // InsertText, Split
	Range buffer.Range      // DeleteText, FormatApply, FormatRemove
	Index int               // InsertParagraph, DeleteParagraph, Merge
	Text  string            // InsertText, InsertParagraph
	Attrs format.Attributes // FormatApply
	Mask  format.Mask       // FormatApply, FormatRemove

	// Captured on apply.
	oldText    string
	oldFormats []format.Range
	oldNext    []format.Range
	splitAt    int
	wasOnly    bool
}

// InsertText returns a command inserting text at pos.
func InsertText(pos buffer.Position, text string) *Command {
	return &Command{Kind: KindInsertText, Pos: pos, Text: text}
}

// DeleteText returns a command deleting the span r.
func DeleteText(r buffer.Range) *Command {
	return &Command{Kind: KindDeleteText, Range: r}
}

// InsertParagraph returns a command inserting a paragraph at index.
func InsertParagraph(index int, text string) *Command {
	return &Command{Kind: KindInsertParagraph, Index: index, Text: text}
}

// DeleteParagraph returns a command deleting the paragraph at index.
func DeleteParagraph(index int) *Command {
	return &Command{Kind: KindDeleteParagraph, Index: index}
}

// Split returns a command splitting the paragraph at pos.
func Split(pos buffer.Position) *Command {
	return &Command{Kind: KindSplit, Pos: pos}
}

// Merge returns a command joining paragraph index+1 onto paragraph index.
func Merge(index int) *Command {
	return &Command{Kind: KindMerge, Index: index}
}

// FormatApply returns a command applying the masked attributes over r.
func FormatApply(r buffer.Range, attrs format.Attributes, mask format.Mask) *Command {
	return &Command{Kind: KindFormatApply, Range: r, Attrs: attrs, Mask: mask}
}

// FormatRemove returns a command removing the masked attributes over r.
func FormatRemove(r buffer.Range, mask format.Mask) *Command {
	return &Command{Kind: KindFormatRemove, Range: r, Mask: mask}
}

// apply performs the edit on buf and captures what revert needs.
func (c *Command) apply(buf *buffer.Buffer) error {
	switch c.Kind {
	case KindInsertText:
		c.oldFormats = buf.Formats(c.Pos.Paragraph)
		return buf.InsertText(c.Pos, c.Text)

	case KindDeleteText:
		text, err := buf.TextIn(c.Range)
		if err != nil {
			return err
		}
		c.oldText = text
		c.oldFormats = buf.Formats(c.Range.Start.Paragraph)
		return buf.DeleteText(c.Range)

	case KindInsertParagraph:
		return buf.InsertParagraph(c.Index, c.Text)

	case KindDeleteParagraph:
		p, err := buf.Paragraph(c.Index)
		if err != nil {
			return err
		}
		c.oldText = p.Text()
		c.oldFormats = p.Formats()
		c.wasOnly = buf.Count() == 1
		return buf.DeleteParagraph(c.Index)

	case KindSplit:
		c.oldFormats = buf.Formats(c.Pos.Paragraph)
		return buf.SplitParagraph(c.Pos)

	case KindMerge:
		if c.Index < 0 || c.Index+1 >= buf.Count() {
			return fmt.Errorf("merge %d: %w", c.Index, buffer.ErrOutOfRange)
		}
		c.splitAt = buf.Len(c.Index)
		c.oldFormats = buf.Formats(c.Index)
		c.oldNext = buf.Formats(c.Index + 1)
		return buf.MergeParagraphs(c.Index)

	case KindFormatApply:
		c.oldFormats = buf.Formats(c.Range.Start.Paragraph)
		return buf.ApplyFormat(c.Range, c.Attrs, c.Mask)

	case KindFormatRemove:
		c.oldFormats = buf.Formats(c.Range.Start.Paragraph)
		return buf.RemoveFormat(c.Range, c.Mask)
	}
	return fmt.Errorf("apply: unknown command %s", c.Kind)
}

// revert undoes a previously applied command, restoring text and format
// ranges exactly.
func (c *Command) revert(buf *buffer.Buffer) error {
	switch c.Kind {
	case KindInsertText:
		n := utf8.RuneCountInString(c.Text)
		if err := buf.DeleteText(buffer.SpanIn(c.Pos.Paragraph, c.Pos.Offset, c.Pos.Offset+n)); err != nil {
			return err
		}
		return buf.SetFormats(c.Pos.Paragraph, c.oldFormats)

	case KindDeleteText:
		if err := buf.InsertText(c.Range.Start, c.oldText); err != nil {
			return err
		}
		return buf.SetFormats(c.Range.Start.Paragraph, c.oldFormats)

	case KindInsertParagraph:
		return buf.DeleteParagraph(c.Index)

	case KindDeleteParagraph:
		if c.wasOnly {
			if err := buf.InsertText(buffer.Pos(0, 0), c.oldText); err != nil {
				return err
			}
		} else if err := buf.InsertParagraph(c.Index, c.oldText); err != nil {
			return err
		}
		return buf.SetFormats(c.Index, c.oldFormats)

	case KindSplit:
		if err := buf.MergeParagraphs(c.Pos.Paragraph); err != nil {
			return err
		}
		return buf.SetFormats(c.Pos.Paragraph, c.oldFormats)

	case KindMerge:
		if err := buf.SplitParagraph(buffer.Pos(c.Index, c.splitAt)); err != nil {
			return err
		}
		if err := buf.SetFormats(c.Index, c.oldFormats); err != nil {
			return err
		}
		return buf.SetFormats(c.Index+1, c.oldNext)

	case KindFormatApply, KindFormatRemove:
		return buf.SetFormats(c.Range.Start.Paragraph, c.oldFormats)
	}
	return fmt.Errorf("revert: unknown command %s", c.Kind)
}

// caretBefore is where the caret belongs once the command is reverted.
func (c *Command) caretBefore() buffer.Position {
	switch c.Kind {
	case KindInsertText, KindSplit:
		return c.Pos
	case KindDeleteText:
		return c.Range.End
	case KindInsertParagraph, KindDeleteParagraph:
		return buffer.Pos(c.Index, 0)
	case KindMerge:
		return buffer.Pos(c.Index+1, 0)
	default:
		return c.Range.Start
	}
}

// caretAfter is where the caret belongs once the command is applied.
func (c *Command) caretAfter() buffer.Position {
	switch c.Kind {
	case KindInsertText:
		return buffer.Pos(c.Pos.Paragraph, c.Pos.Offset+utf8.RuneCountInString(c.Text))
	case KindDeleteText:
		return c.Range.Start
	case KindInsertParagraph:
		return buffer.Pos(c.Index, utf8.RuneCountInString(c.Text))
	case KindDeleteParagraph:
		return buffer.Pos(max(0, c.Index-1), 0)
	case KindSplit:
		return buffer.Pos(c.Pos.Paragraph+1, 0)
	case KindMerge:
		return buffer.Pos(c.Index, c.splitAt)
	default:
		return c.Range.End
	}
}

// Description returns a human-readable description.
func (c *Command) Description() string {
	switch c.Kind {
	case KindInsertText:
		if n := utf8.RuneCountInString(c.Text); n > 20 {
			return fmt.Sprintf("Insert %d characters", n)
		}
		return fmt.Sprintf("Insert %q", c.Text)
	case KindDeleteText:
		return fmt.Sprintf("Delete %d characters", c.Range.Len())
	case KindInsertParagraph:
		return "Insert paragraph"
	case KindDeleteParagraph:
		return "Delete paragraph"
	case KindSplit:
		return "Split paragraph"
	case KindMerge:
		return "Merge paragraphs"
	case KindFormatApply:
		return fmt.Sprintf("Format %s", c.Attrs.Clear(^c.Mask))
	case KindFormatRemove:
		return "Clear formatting"
	}
	return c.Kind.String()
}
