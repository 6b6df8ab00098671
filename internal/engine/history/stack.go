package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/quire/internal/engine/buffer"
)

// DefaultMaxEntries is the undo depth used when none is configured.
const DefaultMaxEntries = 1000

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// entry is one undo unit: a single command or a closed group.
type entry struct {
	name      string
	commands  []*Command
	timestamp time.Time
}

func (e *entry) description() string {
	if e.name != "" {
		return e.name
	}
	if len(e.commands) == 1 {
		return e.commands[0].Description()
	}
	return fmt.Sprintf("%d edits", len(e.commands))
}

// OperationInfo describes an undo or redo entry.
type OperationInfo struct {
	Description string
	Commands    int
	Timestamp   time.Time
}

// History manages undo/redo state for a buffer.
//
// History is not safe for concurrent use; it runs on the editing goroutine
// alongside the buffer it edits.
type History struct {
	undoStack []*entry
	redoStack []*entry

	// Grouping state
	groupDepth int
	groupName  string
	groupCmds  []*Command

	maxEntries int
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Execute applies cmd to buf and records it. A failed command leaves the
// history unchanged.
func (h *History) Execute(buf *buffer.Buffer, cmd *Command) error {
	if err := cmd.apply(buf); err != nil {
		return fmt.Errorf("%s: %w", cmd.Kind, err)
	}
	if h.groupDepth > 0 {
		h.groupCmds = append(h.groupCmds, cmd)
		return nil
	}
	h.push(&entry{commands: []*Command{cmd}, timestamp: time.Now()})
	return nil
}

// push adds an entry to the undo stack and clears the redo stack.
func (h *History) push(e *entry) {
	h.undoStack = append(h.undoStack, e)
	h.redoStack = nil
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverts the most recent entry and returns the caret position from
// before it was applied.
func (h *History) Undo(buf *buffer.Buffer) (buffer.Position, error) {
	if len(h.undoStack) == 0 {
		return buffer.Position{}, ErrNothingToUndo
	}
	e := h.undoStack[len(h.undoStack)-1]
	for i := len(e.commands) - 1; i >= 0; i-- {
		if err := e.commands[i].revert(buf); err != nil {
			return buffer.Position{}, fmt.Errorf("undo %s: %w", e.description(), err)
		}
	}
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, e)
	return buf.Clamp(e.commands[0].caretBefore()), nil
}

// Redo re-applies the most recently undone entry and returns the caret
// position after it.
func (h *History) Redo(buf *buffer.Buffer) (buffer.Position, error) {
	if len(h.redoStack) == 0 {
		return buffer.Position{}, ErrNothingToRedo
	}
	e := h.redoStack[len(h.redoStack)-1]
	for _, cmd := range e.commands {
		if err := cmd.apply(buf); err != nil {
			return buffer.Position{}, fmt.Errorf("redo %s: %w", e.description(), err)
		}
	}
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, e)
	return buf.Clamp(e.commands[len(e.commands)-1].caretAfter()), nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries available.
func (h *History) UndoCount() int {
	return len(h.undoStack)
}

// RedoCount returns the number of redo entries available.
func (h *History) RedoCount() int {
	return len(h.redoStack)
}

// BeginGroup starts a command group. Commands executed until the matching
// EndGroup undo as one unit. Nested groups fold into the outermost one.
func (h *History) BeginGroup(name string) {
	if h.groupDepth == 0 {
		h.groupName = name
		h.groupCmds = nil
	}
	h.groupDepth++
}

// EndGroup closes a command group. Closing the outermost group records the
// collected commands as one entry; an empty group records nothing.
func (h *History) EndGroup() {
	if h.groupDepth == 0 {
		return
	}
	h.groupDepth--
	if h.groupDepth > 0 {
		return
	}
	if len(h.groupCmds) > 0 {
		h.push(&entry{name: h.groupName, commands: h.groupCmds, timestamp: time.Now()})
	}
	h.groupCmds = nil
}

// CancelGroup reverts every command executed in the open group and
// discards it.
func (h *History) CancelGroup(buf *buffer.Buffer) error {
	cmds := h.groupCmds
	h.groupDepth = 0
	h.groupCmds = nil
	for i := len(cmds) - 1; i >= 0; i-- {
		if err := cmds[i].revert(buf); err != nil {
			return fmt.Errorf("cancel group: %w", err)
		}
	}
	return nil
}

// IsGrouping returns true if a command group is open.
func (h *History) IsGrouping() bool {
	return h.groupDepth > 0
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
	h.groupDepth = 0
	h.groupCmds = nil
}

// UndoInfo returns info about available undo entries, oldest first.
func (h *History) UndoInfo() []OperationInfo {
	return infos(h.undoStack)
}

// RedoInfo returns info about available redo entries, oldest first.
func (h *History) RedoInfo() []OperationInfo {
	return infos(h.redoStack)
}

// PeekUndo returns info about the next undo entry without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}
	return info(h.undoStack[len(h.undoStack)-1]), true
}

func infos(stack []*entry) []OperationInfo {
	result := make([]OperationInfo, len(stack))
	for i, e := range stack {
		result[i] = info(e)
	}
	return result
}

func info(e *entry) OperationInfo {
	return OperationInfo{
		Description: e.description(),
		Commands:    len(e.commands),
		Timestamp:   e.timestamp,
	}
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	h.maxEntries = max
	if len(h.undoStack) > max {
		h.undoStack = h.undoStack[len(h.undoStack)-max:]
	}
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	return h.maxEntries
}
