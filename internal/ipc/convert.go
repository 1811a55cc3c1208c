package ipc

import (
	sway "github.com/joshuarubin/go-sway"

	"github.com/persway/persway/internal/state"
)

func fromNode(n *sway.Node) *state.Node {
	if n == nil {
		return nil
	}
	out := &state.Node{
		ID:      n.ID,
		Name:    n.Name,
		Type:    state.NodeType(n.Type),
		Layout:  state.Layout(n.Layout),
		Percent: n.Percent,
		Rect: state.Rect{
			X:      int(n.Rect.X),
			Y:      int(n.Rect.Y),
			Width:  int(n.Rect.Width),
			Height: int(n.Rect.Height),
		},
		Focused: n.Focused,
		Focus:   n.Focus,
		AppID:   n.AppID,
	}
	if p := n.WindowProperties; p != nil {
		out.WindowProperties = &state.WindowProperties{
			Class:    p.Class,
			Instance: p.Instance,
			Title:    p.Title,
		}
	}
	out.Nodes = fromNodes(n.Nodes)
	out.FloatingNodes = fromNodes(n.FloatingNodes)
	return out
}

func fromNodes(nodes []*sway.Node) []*state.Node {
	var out []*state.Node
	for _, n := range nodes {
		if n != nil {
			out = append(out, fromNode(n))
		}
	}
	return out
}
