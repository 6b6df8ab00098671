package buffer

import (
	"fmt"
	"slices"

	"github.com/dshills/quire/internal/engine/format"
)

// Text Operations

// InsertText inserts text at pos. The text must not contain a paragraph
// break; split the paragraph for multi-paragraph input. Format ranges at or
// after the insertion point shift right; a range straddling it grows.
func (b *Buffer) InsertText(pos Position, text string) error {
	p, err := b.checkPosition(pos)
	if err != nil {
		return fmt.Errorf("insert text: %w", err)
	}
	if containsParagraphBreak(text) {
		return fmt.Errorf("insert text at %s: %w", pos, ErrParagraphBreak)
	}
	if text == "" {
		return nil
	}
	runes := []rune(text)
	p.text = slices.Insert(p.text, pos.Offset, runes...)
	p.formats.ShiftInsert(pos.Offset, len(runes))
	b.touch(p)
	return nil
}

// DeleteText removes the text covered by r, which must be normalized and
// confined to one paragraph. Format ranges after the deletion shift left,
// partially covered ranges are truncated and fully covered ranges removed.
func (b *Buffer) DeleteText(r Range) error {
	p, err := b.checkSpan(r)
	if err != nil {
		return fmt.Errorf("delete text: %w", err)
	}
	if r.IsEmpty() {
		return nil
	}
	p.text = slices.Delete(p.text, r.Start.Offset, r.End.Offset)
	p.formats.ShiftDelete(r.Start.Offset, r.End.Offset)
	b.touch(p)
	return nil
}

// ReplaceText replaces the text covered by r with text.
func (b *Buffer) ReplaceText(r Range, text string) error {
	if _, err := b.checkSpan(r); err != nil {
		return fmt.Errorf("replace text: %w", err)
	}
	if containsParagraphBreak(text) {
		return fmt.Errorf("replace text in %s: %w", r, ErrParagraphBreak)
	}
	if err := b.DeleteText(r); err != nil {
		return err
	}
	return b.InsertText(r.Start, text)
}

// Format Operations

// ApplyFormat sets the attribute fields selected by mask over r.
func (b *Buffer) ApplyFormat(r Range, attrs format.Attributes, mask format.Mask) error {
	p, err := b.checkSpan(r)
	if err != nil {
		return fmt.Errorf("apply format: %w", err)
	}
	if mask&format.MaskColor != 0 {
		color, err := format.NormalizeColor(attrs.Color)
		if err != nil {
			return fmt.Errorf("apply format: %w: %v", ErrInvalidAttributes, err)
		}
		attrs.Color = color
	}
	if r.IsEmpty() || mask == 0 {
		return nil
	}
	p.formats.Apply(r.Start.Offset, r.End.Offset, attrs, mask)
	b.touch(p)
	return nil
}

// RemoveFormat resets the attribute fields selected by mask over r.
func (b *Buffer) RemoveFormat(r Range, mask format.Mask) error {
	p, err := b.checkSpan(r)
	if err != nil {
		return fmt.Errorf("remove format: %w", err)
	}
	if r.IsEmpty() || mask == 0 {
		return nil
	}
	p.formats.Remove(r.Start.Offset, r.End.Offset, mask)
	b.touch(p)
	return nil
}

// ClearFormats removes all formatting over r.
func (b *Buffer) ClearFormats(r Range) error {
	return b.RemoveFormat(r, format.MaskAll)
}

// ToggleFormat applies attrs over r unless every character already carries
// them, in which case the fields are removed. It reports whether the
// formatting is now applied.
func (b *Buffer) ToggleFormat(r Range, attrs format.Attributes, mask format.Mask) (bool, error) {
	p, err := b.checkSpan(r)
	if err != nil {
		return false, fmt.Errorf("toggle format: %w", err)
	}
	if p.formats.Covers(r.Start.Offset, r.End.Offset, attrs, mask) {
		return false, b.RemoveFormat(r, mask)
	}
	return true, b.ApplyFormat(r, attrs, mask)
}

// SetFormats replaces the format ranges of paragraph index. The ranges must
// fit the paragraph and must not overlap.
func (b *Buffer) SetFormats(index int, ranges []format.Range) error {
	p, err := b.checkIndex(index)
	if err != nil {
		return fmt.Errorf("set formats: %w", err)
	}
	set, err := format.NewSet(p.Len(), ranges...)
	if err != nil {
		return fmt.Errorf("set formats on paragraph %d: %w: %v", index, ErrInvalidRange, err)
	}
	p.formats = set
	b.touch(p)
	return nil
}
