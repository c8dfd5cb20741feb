package action

import (
	"fmt"
	"strings"
)

// Action is a command posted by a UI button or a global hotkey.
type Action int

const (
	None Action = iota
	New
	Save
	Undo
	Redo
	Cancel
)

// All lists the postable actions in code order.
var All = []Action{New, Save, Undo, Redo, Cancel}

func (a Action) String() string {
	switch a {
	case None:
		return "none"
	case New:
		return "new"
	case Save:
		return "save"
	case Undo:
		return "undo"
	case Redo:
		return "redo"
	case Cancel:
		return "cancel"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Valid reports whether a is one of the five postable actions.
func (a Action) Valid() bool {
	return a >= New && a <= Cancel
}

// Parse maps a name like "undo" back to its Action.
func Parse(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return New, nil
	case "save":
		return Save, nil
	case "undo":
		return Undo, nil
	case "redo":
		return Redo, nil
	case "cancel":
		return Cancel, nil
	default:
		return None, fmt.Errorf("unknown action %q", s)
	}
}
