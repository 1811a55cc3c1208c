package state

import "fmt"

// Change classifies a window event for the event loop.
type Change int

const (
	ChangeIgnored Change = iota
	ChangeFocus
	ChangeClose
)

func (c Change) String() string {
	switch c {
	case ChangeIgnored:
		return "ignored"
	case ChangeFocus:
		return "focus"
	case ChangeClose:
		return "close"
	default:
		return fmt.Sprintf("change(%d)", int(c))
	}
}

// ParseChange maps a sway window change string onto a Change. Every change
// sway documents is listed; anything else is an error so new kinds surface
// instead of being dropped silently.
func ParseChange(raw string) (Change, error) {
	switch raw {
	case "focus":
		return ChangeFocus, nil
	case "close":
		return ChangeClose, nil
	case "new", "title", "fullscreen_mode", "move", "floating", "urgent", "mark":
		return ChangeIgnored, nil
	default:
		return ChangeIgnored, fmt.Errorf("unknown window change %q", raw)
	}
}

// WindowEvent is a window change notification.
type WindowEvent struct {
	Change    string `json:"change"`
	Container Node   `json:"container"`
}
