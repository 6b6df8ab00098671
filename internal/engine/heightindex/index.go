// Package heightindex maps paragraph indices to cumulative vertical offsets.
//
// Index is an array-backed Fenwick (binary indexed) tree over per-paragraph
// heights. Point updates, prefix sums and offset lookups run in O(log N).
// Inserting or removing a slot rebuilds the tree in O(N); structural edits
// are paced by user interaction, so the linear rebuild is preferred over a
// balanced order-statistics tree.
//
// Prefix sums are accumulated in the same node order by PrefixSum and
// FindByOffset, so FindByOffset(PrefixSum(i)) lands exactly on a paragraph
// boundary even with fractional heights.
package heightindex

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"
)

// ErrIndexOutOfRange is returned when a slot index is outside the index.
var ErrIndexOutOfRange = errors.New("height index out of range")

// Index holds one non-negative height per paragraph.
type Index struct {
	heights []float64
	tree    []float64 // 1-based Fenwick nodes, len(heights)+1
}

// New creates an index of n slots, each with the given height.
func New(n int, height float64) *Index {
	if n < 0 {
		n = 0
	}
	height = clamp(height)
	heights := make([]float64, n)
	for i := range heights {
		heights[i] = height
	}
	return FromHeights(heights)
}

// FromHeights creates an index over a copy of heights.
func FromHeights(heights []float64) *Index {
	idx := &Index{heights: make([]float64, len(heights))}
	for i, h := range heights {
		idx.heights[i] = clamp(h)
	}
	idx.rebuild()
	return idx
}

// Len returns the number of slots.
func (idx *Index) Len() int {
	return len(idx.heights)
}

// Height returns the height stored at index.
func (idx *Index) Height(index int) (float64, error) {
	if index < 0 || index >= len(idx.heights) {
		return 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(idx.heights))
	}
	return idx.heights[index], nil
}

// Heights returns a copy of all stored heights.
func (idx *Index) Heights() []float64 {
	return slices.Clone(idx.heights)
}

// Update replaces the height at index. Negative heights are stored as zero.
func (idx *Index) Update(index int, height float64) error {
	if index < 0 || index >= len(idx.heights) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(idx.heights))
	}
	height = clamp(height)
	delta := height - idx.heights[index]
	if delta == 0 {
		return nil
	}
	idx.heights[index] = height
	n := len(idx.heights)
	for i := index + 1; i <= n; i += i & -i {
		idx.tree[i] += delta
	}
	return nil
}

// PrefixSum returns the total height of slots [0, index), the vertical offset
// of the top edge of paragraph index. index is clamped to [0, Len()].
func (idx *Index) PrefixSum(index int) float64 {
	n := len(idx.heights)
	if index <= 0 || n == 0 {
		return 0
	}
	if index > n {
		index = n
	}
	// Walk the set bits from the highest down so the summation order matches
	// the descent in FindByOffset.
	var sum float64
	pos := 0
	for mask := highBit(n); mask > 0; mask >>= 1 {
		if index&mask != 0 {
			pos += mask
			sum += idx.tree[pos]
		}
	}
	return sum
}

// Total returns the sum of all heights.
func (idx *Index) Total() float64 {
	return idx.PrefixSum(len(idx.heights))
}

// FindByOffset returns the slot containing offset and the distance from the
// slot's top edge. An offset on a boundary belongs to the slot that begins
// there. Offsets below zero clamp to slot 0; offsets at or beyond the total
// clamp to the last slot, with the remainder capped at its height. An empty
// index returns (0, 0).
func (idx *Index) FindByOffset(offset float64) (int, float64) {
	n := len(idx.heights)
	if n == 0 || offset <= 0 {
		return 0, 0
	}
	pos := 0
	var sum float64
	for mask := highBit(n); mask > 0; mask >>= 1 {
		next := pos + mask
		if next <= n && sum+idx.tree[next] <= offset {
			pos = next
			sum += idx.tree[next]
		}
	}
	if pos >= n {
		last := n - 1
		top := idx.PrefixSum(last)
		return last, min(offset-top, idx.heights[last])
	}
	return pos, offset - sum
}

// Insert adds a slot at index, shifting later slots up by one.
func (idx *Index) Insert(index int, height float64) error {
	if index < 0 || index > len(idx.heights) {
		return fmt.Errorf("%w: insert at %d of %d", ErrIndexOutOfRange, index, len(idx.heights))
	}
	idx.heights = slices.Insert(idx.heights, index, clamp(height))
	idx.rebuild()
	return nil
}

// Remove deletes the slot at index, shifting later slots down by one.
func (idx *Index) Remove(index int) error {
	if index < 0 || index >= len(idx.heights) {
		return fmt.Errorf("%w: remove %d of %d", ErrIndexOutOfRange, index, len(idx.heights))
	}
	idx.heights = slices.Delete(idx.heights, index, index+1)
	idx.rebuild()
	return nil
}

// Clone returns an independent copy, for readers outside the editing thread.
func (idx *Index) Clone() *Index {
	return &Index{
		heights: slices.Clone(idx.heights),
		tree:    slices.Clone(idx.tree),
	}
}

// rebuild recomputes the Fenwick nodes from the heights in O(N).
func (idx *Index) rebuild() {
	n := len(idx.heights)
	if cap(idx.tree) >= n+1 {
		idx.tree = idx.tree[:n+1]
		clear(idx.tree)
	} else {
		idx.tree = make([]float64, n+1)
	}
	for i := 1; i <= n; i++ {
		idx.tree[i] += idx.heights[i-1]
		if parent := i + (i & -i); parent <= n {
			idx.tree[parent] += idx.tree[i]
		}
	}
}

func highBit(n int) int {
	if n <= 0 {
		return 0
	}
	return 1 << (bits.Len(uint(n)) - 1)
}

func clamp(h float64) float64 {
	if h < 0 || h != h {
		return 0
	}
	return h
}
