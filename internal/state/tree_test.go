package state

import (
	"encoding/json"
	"testing"
)

const sampleTree = `{
  "id": 1, "type": "root", "layout": "splith", "focus": [3],
  "nodes": [
    {"id": 3, "type": "output", "name": "eDP-1", "layout": "output", "focus": [4],
     "nodes": [
       {"id": 4, "type": "workspace", "name": "1", "layout": "splith", "focus": [6, 5],
        "nodes": [
          {"id": 5, "type": "con", "layout": "none", "percent": 0.5, "app_id": "foot",
           "rect": {"x": 0, "y": 0, "width": 960, "height": 1080}, "focus": [], "nodes": []},
          {"id": 6, "type": "con", "layout": "none", "percent": 0.5, "focused": true, "app_id": null,
           "window_properties": {"class": "Firefox"},
           "rect": {"x": 960, "y": 0, "width": 960, "height": 1080}, "focus": [], "nodes": []}
        ],
        "floating_nodes": [
          {"id": 7, "type": "floating_con", "app_id": "pavucontrol", "focus": [], "nodes": []}
        ]}
     ]}
  ]
}`

func decodeTree(t *testing.T, raw string) *Node {
	t.Helper()
	var root Node
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		t.Fatalf("decode tree: %v", err)
	}
	return &root
}

func TestFocusedNodeAndParent(t *testing.T) {
	root := decodeTree(t, sampleTree)

	focused := root.FocusedNode()
	if focused == nil || focused.ID != 6 {
		t.Fatalf("FocusedNode = %+v, want id 6", focused)
	}
	parent := root.FocusedParent()
	if parent == nil || parent.ID != 4 {
		t.Fatalf("FocusedParent = %+v, want id 4", parent)
	}
	if got := focused.AppName(); got != "Firefox" {
		t.Fatalf("AppName fallback = %q, want Firefox", got)
	}
}

func TestFindFocusedFollowsFloatingChildren(t *testing.T) {
	root := decodeTree(t, sampleTree)
	ws := root.Nodes[0].Nodes[0]
	ws.Focus = []int64{7, 6, 5}
	ws.Nodes[1].Focused = false
	ws.FloatingNodes[0].Focused = true

	focused := root.FocusedNode()
	if focused == nil || !focused.IsFloating() {
		t.Fatalf("expected floating focused node, got %+v", focused)
	}
	if parent := root.FocusedParent(); parent == nil || parent.ID != 4 {
		t.Fatalf("FocusedParent = %+v, want workspace 4", parent)
	}
}

func TestFindFocusedWithoutFocus(t *testing.T) {
	root := &Node{ID: 1, Type: NodeRoot}
	if n := root.FocusedNode(); n != nil {
		t.Fatalf("expected nil focused node, got %+v", n)
	}
	if n := root.FocusedParent(); n != nil {
		t.Fatalf("expected nil parent, got %+v", n)
	}

	root.Focused = true
	if n := root.FocusedParent(); n != nil {
		t.Fatalf("focused root has no parent, got %+v", n)
	}
}

func TestIsFullscreen(t *testing.T) {
	pct := func(v float64) *float64 { return &v }
	tests := []struct {
		percent *float64
		want    bool
	}{
		{nil, false},
		{pct(0.5), false},
		{pct(1.0), false},
		{pct(1.01), true},
	}
	for _, tt := range tests {
		n := &Node{Percent: tt.percent}
		if got := n.IsFullscreen(); got != tt.want {
			t.Fatalf("IsFullscreen(%v) = %v, want %v", tt.percent, got, tt.want)
		}
	}
}

func TestAppName(t *testing.T) {
	str := func(s string) *string { return &s }
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"app id wins", Node{AppID: str("foot"), WindowProperties: &WindowProperties{Class: "XTerm"}}, "foot"},
		{"empty app id falls back", Node{AppID: str(""), WindowProperties: &WindowProperties{Class: "XTerm"}}, "XTerm"},
		{"class only", Node{WindowProperties: &WindowProperties{Class: "Slack"}}, "Slack"},
		{"nothing", Node{}, ""},
	}
	for _, tt := range tests {
		if got := tt.node.AppName(); got != tt.want {
			t.Fatalf("%s: AppName = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFocusedWorkspace(t *testing.T) {
	workspaces := []Workspace{{Name: "1"}, {Name: "2", Focused: true, Focus: []int64{9}}}
	ws, ok := FocusedWorkspace(workspaces)
	if !ok || ws.Name != "2" || ws.IsEmpty() {
		t.Fatalf("FocusedWorkspace = %+v, %v", ws, ok)
	}
	if _, ok := FocusedWorkspace(workspaces[:1]); ok {
		t.Fatalf("expected no focused workspace")
	}
}

func TestParseChange(t *testing.T) {
	tests := map[string]Change{
		"focus":           ChangeFocus,
		"close":           ChangeClose,
		"new":             ChangeIgnored,
		"title":           ChangeIgnored,
		"fullscreen_mode": ChangeIgnored,
		"move":            ChangeIgnored,
		"floating":        ChangeIgnored,
		"urgent":          ChangeIgnored,
		"mark":            ChangeIgnored,
	}
	for raw, want := range tests {
		got, err := ParseChange(raw)
		if err != nil {
			t.Fatalf("ParseChange(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseChange(%q) = %v, want %v", raw, got, want)
		}
	}
	if _, err := ParseChange("teleport"); err == nil {
		t.Fatalf("expected error for unknown change")
	}
}
