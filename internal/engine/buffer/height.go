package buffer

import "fmt"

// Height Operations

// SetHeight records the measured height of paragraph index and marks it
// clean. Call it right after laying the paragraph out.
func (b *Buffer) SetHeight(index int, height float64) error {
	p, err := b.checkIndex(index)
	if err != nil {
		return fmt.Errorf("set height: %w", err)
	}
	if err := b.heights.Update(index, height); err != nil {
		return err
	}
	p.height = HeightClean
	return nil
}

// Height returns the stored height of paragraph index, measured or
// provisional, or 0 if out of range.
func (b *Buffer) Height(index int) float64 {
	h, err := b.heights.Height(index)
	if err != nil {
		return 0
	}
	return h
}

// HeightState reports whether paragraph index has a measured height.
// Out-of-range indices report HeightDirty.
func (b *Buffer) HeightState(index int) HeightState {
	if index < 0 || index >= len(b.paragraphs) {
		return HeightDirty
	}
	return b.paragraphs[index].height
}

// MarkDirty flags paragraph index for re-layout without changing its text.
func (b *Buffer) MarkDirty(index int) {
	if index >= 0 && index < len(b.paragraphs) {
		b.paragraphs[index].height = HeightDirty
	}
}

// MarkAllDirty flags every paragraph for re-layout, as after a wrap width
// change. Stored heights stay as provisional values until re-measured.
func (b *Buffer) MarkAllDirty() {
	for _, p := range b.paragraphs {
		p.height = HeightDirty
	}
}

// DirtyCount returns the number of paragraphs awaiting layout.
func (b *Buffer) DirtyCount() int {
	n := 0
	for _, p := range b.paragraphs {
		if p.height == HeightDirty {
			n++
		}
	}
	return n
}

// OffsetOf returns the vertical offset of the top edge of paragraph index.
// OffsetOf(Count()) is the total height.
func (b *Buffer) OffsetOf(index int) float64 {
	return b.heights.PrefixSum(index)
}

// FindByOffset returns the paragraph containing the vertical offset and the
// offset's distance from that paragraph's top edge.
func (b *Buffer) FindByOffset(offset float64) (int, float64) {
	return b.heights.FindByOffset(offset)
}

// TotalHeight returns the sum of all paragraph heights.
func (b *Buffer) TotalHeight() float64 {
	return b.heights.Total()
}

// Heights returns a copy of the height index for readers outside the
// editing goroutine.
func (b *Buffer) Heights() []float64 {
	return b.heights.Heights()
}
