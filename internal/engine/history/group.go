package history

import "github.com/dshills/quire/internal/engine/buffer"

// GroupScope provides a convenient way to group commands using defer.
// Usage:
//
//	func replaceAll(h *History, buf *buffer.Buffer) {
//	    defer h.GroupScope("Replace All").End()
//	    // ... multiple edits ...
//	}
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope.
// Call End() or use with defer to properly close the group.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{history: h, active: true}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Transaction runs fn inside a command group. If fn fails, the edits it
// made are reverted and nothing is recorded.
func (h *History) Transaction(buf *buffer.Buffer, name string, fn func() error) error {
	nested := h.IsGrouping()
	h.BeginGroup(name)
	if err := fn(); err != nil {
		if nested {
			h.EndGroup()
			return err
		}
		if cerr := h.CancelGroup(buf); cerr != nil {
			return cerr
		}
		return err
	}
	h.EndGroup()
	return nil
}

// ExecuteGrouped executes multiple commands as a single undo unit.
func (h *History) ExecuteGrouped(buf *buffer.Buffer, name string, cmds ...*Command) error {
	if len(cmds) == 0 {
		return nil
	}
	return h.Transaction(buf, name, func() error {
		for _, cmd := range cmds {
			if err := h.Execute(buf, cmd); err != nil {
				return err
			}
		}
		return nil
	})
}
