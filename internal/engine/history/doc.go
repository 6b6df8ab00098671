// Package history provides undo/redo for the paragraph buffer.
//
// # Commands
//
// Every edit is a Command value tagged with a Kind:
//   - KindInsertText, KindDeleteText: text inside one paragraph
//   - KindInsertParagraph, KindDeleteParagraph: whole paragraphs
//   - KindSplit, KindMerge: paragraph boundaries
//   - KindFormatApply, KindFormatRemove: inline formatting
//
// Applying a command captures the text and format ranges it replaces, so
// reverting restores the paragraph exactly, formatting included.
//
// # History Stack
//
//	h := NewHistory(1000)
//	h.Execute(buf, InsertText(buffer.Pos(0, 5), ","))
//	h.Undo(buf)
//	h.Redo(buf)
//
// # Command Grouping
//
// Multiple commands can be grouped as a single undo unit:
//
//	h.BeginGroup("Replace All")
//	// ... multiple edits ...
//	h.EndGroup()
package history
