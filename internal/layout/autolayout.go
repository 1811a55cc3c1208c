package layout

import (
	"context"
	"errors"

	"github.com/persway/persway/internal/state"
)

var (
	ErrNoFocusedNode = errors.New("no focused node")
	ErrNoParent      = errors.New("no parent")
)

// TreeSource fetches a fresh container tree.
type TreeSource interface {
	GetTree(ctx context.Context) (*state.Node, error)
}

// Decide returns the split to impose on the focused container of tree. The
// plan is empty when the focused container is floating or fullscreen, or
// when its parent stacks or tabs its children.
func Decide(tree *state.Node) (Plan, error) {
	focused := tree.FocusedNode()
	if focused == nil {
		return Plan{}, ErrNoFocusedNode
	}
	parent := tree.FocusedParent()
	if parent == nil {
		return Plan{}, ErrNoParent
	}
	if focused.IsFloating() || focused.IsFullscreen() {
		return Plan{}, nil
	}
	if parent.Layout == state.LayoutStacked || parent.Layout == state.LayoutTabbed {
		return Plan{}, nil
	}
	return Split(SplitDirection(focused.Rect)), nil
}

// SplitDirection splits tall containers vertically and everything else
// horizontally, which alternates orientation as windows get subdivided.
func SplitDirection(r state.Rect) Direction {
	if r.Height > r.Width {
		return SplitVertical
	}
	return SplitHorizontal
}

// Autolayout fetches the tree and applies the split decision for the
// focused container.
func Autolayout(ctx context.Context, src TreeSource, cmd Commander) error {
	tree, err := src.GetTree(ctx)
	if err != nil {
		return err
	}
	plan, err := Decide(tree)
	if err != nil {
		return err
	}
	return plan.Execute(ctx, cmd)
}
