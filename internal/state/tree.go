package state

// NodeType is the sway container type.
type NodeType string

const (
	NodeRoot        NodeType = "root"
	NodeOutput      NodeType = "output"
	NodeWorkspace   NodeType = "workspace"
	NodeCon         NodeType = "con"
	NodeFloatingCon NodeType = "floating_con"
)

// Layout is the split mode a container applies to its children.
type Layout string

const (
	LayoutSplitH  Layout = "splith"
	LayoutSplitV  Layout = "splitv"
	LayoutStacked Layout = "stacked"
	LayoutTabbed  Layout = "tabbed"
	LayoutOutput  Layout = "output"
	LayoutNone    Layout = "none"
)

// Rect is a container geometry in layout pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowProperties holds the X11 properties of an Xwayland window.
type WindowProperties struct {
	Class    string `json:"class"`
	Instance string `json:"instance"`
	Title    string `json:"title"`
}

// Node is a container in a tree snapshot.
type Node struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Type             NodeType          `json:"type"`
	Layout           Layout            `json:"layout"`
	Percent          *float64          `json:"percent"`
	Rect             Rect              `json:"rect"`
	Focused          bool              `json:"focused"`
	Focus            []int64           `json:"focus"`
	Nodes            []*Node           `json:"nodes"`
	FloatingNodes    []*Node           `json:"floating_nodes"`
	AppID            *string           `json:"app_id"`
	WindowProperties *WindowProperties `json:"window_properties"`
}

// IsFloating reports whether the container floats above the tiling layer.
func (n *Node) IsFloating() bool {
	return n.Type == NodeFloatingCon
}

// IsFullscreen reports whether the container covers more than its share of
// the parent. An absent percent counts as 1.0.
func (n *Node) IsFullscreen() bool {
	if n.Percent == nil {
		return false
	}
	return *n.Percent > 1.0
}

// AppName returns the application identity of a window: the Wayland app_id
// when set, otherwise the X11 window class. Empty when neither is known.
func (n *Node) AppName() string {
	if n.AppID != nil && *n.AppID != "" {
		return *n.AppID
	}
	if n.WindowProperties != nil {
		return n.WindowProperties.Class
	}
	return ""
}

// HasChild reports whether any direct tiling or floating child satisfies pred.
func (n *Node) HasChild(pred func(*Node) bool) bool {
	for _, c := range n.Nodes {
		if pred(c) {
			return true
		}
	}
	for _, c := range n.FloatingNodes {
		if pred(c) {
			return true
		}
	}
	return false
}

// child returns the direct child with the given id.
func (n *Node) child(id int64) *Node {
	for _, c := range n.Nodes {
		if c.ID == id {
			return c
		}
	}
	for _, c := range n.FloatingNodes {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// FindFocused walks the focus path from n and returns the first node that
// satisfies pred, or nil when the path ends without a match.
func (n *Node) FindFocused(pred func(*Node) bool) *Node {
	for cur := n; cur != nil; {
		if pred(cur) {
			return cur
		}
		if len(cur.Focus) == 0 {
			return nil
		}
		cur = cur.child(cur.Focus[0])
	}
	return nil
}

// FocusedNode returns the focused leaf on the focus path.
func (n *Node) FocusedNode() *Node {
	return n.FindFocused(func(c *Node) bool { return c.Focused })
}

// FocusedParent returns the node on the focus path whose direct children
// include the focused node. Floating children count, so a focused floating
// window yields its workspace instead of no parent at all. Searching tiling
// children only would report no parent there. Autolayout is a no-op either
// way.
func (n *Node) FocusedParent() *Node {
	return n.FindFocused(func(c *Node) bool {
		return c.HasChild(func(cc *Node) bool { return cc.Focused })
	})
}

// Workspace is a workspace as reported by GET_WORKSPACES.
type Workspace struct {
	ID      int64   `json:"id"`
	Num     int     `json:"num"`
	Name    string  `json:"name"`
	Focused bool    `json:"focused"`
	Visible bool    `json:"visible"`
	Output  string  `json:"output"`
	Focus   []int64 `json:"focus"`
}

// IsEmpty reports whether the workspace holds no window.
func (w Workspace) IsEmpty() bool {
	return len(w.Focus) == 0
}

// FocusedWorkspace returns the focused workspace, if any.
func FocusedWorkspace(workspaces []Workspace) (Workspace, bool) {
	for _, ws := range workspaces {
		if ws.Focused {
			return ws, true
		}
	}
	return Workspace{}, false
}
