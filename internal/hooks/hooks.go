package hooks

import (
	"context"
	"fmt"
)

// Commander sends a single command string to the compositor.
type Commander interface {
	RunCommand(ctx context.Context, command string) error
}

// Templates are the user-configured hook commands. Empty means unset.
type Templates struct {
	OnWindowFocus      string
	OnWindowFocusLeave string
	OnExit             string
}

// Dispatcher sends hook commands through a Commander.
type Dispatcher struct {
	cmd       Commander
	templates Templates
}

// New returns a dispatcher for the given templates.
func New(cmd Commander, templates Templates) *Dispatcher {
	return &Dispatcher{cmd: cmd, templates: templates}
}

// Scoped prefixes command with a con_id criteria so it applies only to the
// container with the given id.
func Scoped(id int64, command string) string {
	return fmt.Sprintf("[con_id=%d] %s", id, command)
}

// HasLeave reports whether a focus-leave hook is configured.
func (d *Dispatcher) HasLeave() bool { return d.templates.OnWindowFocusLeave != "" }

// HasEnter reports whether a focus hook is configured.
func (d *Dispatcher) HasEnter() bool { return d.templates.OnWindowFocus != "" }

// HasExit reports whether an exit hook is configured.
func (d *Dispatcher) HasExit() bool { return d.templates.OnExit != "" }

// Leave runs the focus-leave hook against container id. The container may
// already be gone; the compositor then matches nothing.
func (d *Dispatcher) Leave(ctx context.Context, id int64) error {
	if !d.HasLeave() {
		return nil
	}
	return d.cmd.RunCommand(ctx, Scoped(id, d.templates.OnWindowFocusLeave))
}

// Enter runs the focus hook unscoped.
func (d *Dispatcher) Enter(ctx context.Context) error {
	if !d.HasEnter() {
		return nil
	}
	return d.cmd.RunCommand(ctx, d.templates.OnWindowFocus)
}

// Exit runs the exit hook unscoped.
func (d *Dispatcher) Exit(ctx context.Context) error {
	if !d.HasExit() {
		return nil
	}
	return d.cmd.RunCommand(ctx, d.templates.OnExit)
}
