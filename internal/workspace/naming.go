// Package workspace renames the focused workspace after the application
// running in it, keeping the workspace number as a stable prefix.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/persway/persway/internal/layout"
	"github.com/persway/persway/internal/state"
)

var ErrNoFocusedWorkspace = errors.New("no focused workspace")

// Source fetches a fresh workspace list.
type Source interface {
	GetWorkspaces(ctx context.Context) ([]state.Workspace, error)
}

// Number returns the part of a workspace name before the first colon, or
// the whole name when there is none. Applying it to a name it produced
// yields the same prefix again.
func Number(name string) string {
	num, _, _ := strings.Cut(name, ":")
	return num
}

// NormalizeApp lower-cases an application identity and strips leading and
// trailing hyphens.
func NormalizeApp(app string) string {
	return strings.ToLower(strings.Trim(app, "-"))
}

// Name computes the desired name for ws given the window from the
// triggering event. ok is false when nothing should be renamed.
func Name(ws state.Workspace, window *state.Node) (name string, ok bool) {
	num := Number(ws.Name)
	if ws.IsEmpty() {
		return num, true
	}
	app := window.AppName()
	if app == "" {
		return "", false
	}
	return fmt.Sprintf("%s: %s", num, NormalizeApp(app)), true
}

// RenamePlan builds the rename command for ws, if any.
func RenamePlan(ws state.Workspace, window *state.Node) layout.Plan {
	var p layout.Plan
	if name, ok := Name(ws, window); ok {
		p.Add("rename workspace to " + name)
	}
	return p
}

// Rename fetches the focused workspace and renames it after the window in ev.
func Rename(ctx context.Context, src Source, cmd layout.Commander, ev state.WindowEvent) error {
	workspaces, err := src.GetWorkspaces(ctx)
	if err != nil {
		return err
	}
	ws, ok := state.FocusedWorkspace(workspaces)
	if !ok {
		return ErrNoFocusedWorkspace
	}
	return RenamePlan(ws, &ev.Container).Execute(ctx, cmd)
}
