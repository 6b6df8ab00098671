// Package buffer provides the paragraph-indexed text buffer at the center of
// the manuscript editor.
//
// A Buffer is an ordered sequence of Paragraphs. Each paragraph holds
// Unicode text and a format.Set of non-overlapping inline format ranges.
// Offsets are rune offsets within a paragraph; a Position pairs a paragraph
// index with such an offset.
//
// The buffer provides:
//
//   - Structural edits: InsertParagraph, SplitParagraph, MergeParagraphs,
//     DeleteParagraph
//   - Text edits confined to one paragraph: InsertText, DeleteText
//   - Format edits: ApplyFormat, RemoveFormat, ToggleFormat, SetFormats
//   - A height index kept in lockstep with the paragraphs, answering
//     offset-to-paragraph queries in O(log N)
//   - Immutable snapshots for background readers
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("Hello world")
//	buf.ApplyFormat(buffer.SpanIn(0, 0, 5), format.Bold(), format.MaskWeight)
//	buf.SplitParagraph(buffer.Pos(0, 5))
//	// paragraph 0: "Hello" bold, paragraph 1: " world"
//
// Height Tracking:
//
// Every mutation marks the affected paragraph HeightDirty and bumps its
// revision. New paragraphs receive a provisional height from the configured
// Estimator. The layout layer measures dirty paragraphs on demand and
// records the result with SetHeight, which marks them HeightClean.
//
// Concurrency:
//
// Buffer is owned by a single editing goroutine and has no internal
// locking. Background work reads a Snapshot instead of the live buffer.
package buffer
