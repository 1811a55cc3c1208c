package ipc

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sway "github.com/joshuarubin/go-sway"

	"github.com/persway/persway/internal/state"
)

// CommandError reports a command the compositor parsed or executed unsuccessfully.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q rejected: %s", e.Command, e.Message)
}

// Conn is a command and query connection. Calls on one Conn are serialized.
type Conn struct {
	mu     sync.Mutex
	client sway.Client
	cancel context.CancelFunc
}

// Dial opens a connection to the compositor socket at path. The connection
// is closed when ctx is done or Close is called.
func Dial(ctx context.Context, path string) (*Conn, error) {
	connCtx, cancel := context.WithCancel(ctx)
	client, err := sway.New(connCtx, sway.WithSocketPath(path))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("connect ipc socket: %w", err)
	}
	return &Conn{client: client, cancel: cancel}, nil
}

// Close releases the socket.
func (c *Conn) Close() error {
	c.cancel()
	return nil
}

// RunCommand sends a command string. A compositor-side rejection is returned
// as *CommandError; any other error means the connection failed.
func (c *Conn) RunCommand(ctx context.Context, command string) error {
	c.mu.Lock()
	replies, err := c.client.RunCommand(ctx, command)
	c.mu.Unlock()

	var failures []string
	for _, r := range replies {
		if r.Success {
			continue
		}
		msg := r.Error
		if msg == "" {
			msg = "unknown error"
		}
		failures = append(failures, msg)
	}
	if len(failures) > 0 {
		return &CommandError{Command: command, Message: strings.Join(failures, "; ")}
	}
	if err != nil {
		return fmt.Errorf("run command %q: %w", command, err)
	}
	return nil
}

// GetTree returns a fresh snapshot of the container tree.
func (c *Conn) GetTree(ctx context.Context) (*state.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	root, err := c.client.GetTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("get tree: %w", err)
	}
	return fromNode(root), nil
}

// GetWorkspaces returns a fresh list of workspaces. The workspace reply
// carries no focus list, so it is taken from the matching workspace node of
// the tree.
func (c *Conn) GetWorkspaces(ctx context.Context) ([]state.Workspace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	workspaces, err := c.client.GetWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("get workspaces: %w", err)
	}
	root, err := c.client.GetTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("get tree: %w", err)
	}
	out := make([]state.Workspace, 0, len(workspaces))
	for _, ws := range workspaces {
		w := state.Workspace{
			Num:     int(ws.Num),
			Name:    ws.Name,
			Focused: ws.Focused,
			Visible: ws.Visible,
			Output:  ws.Output,
		}
		if node := workspaceNode(root, ws.Name); node != nil {
			w.ID = node.ID
			w.Focus = node.Focus
		}
		out = append(out, w)
	}
	return out, nil
}

func workspaceNode(root *sway.Node, name string) *sway.Node {
	if root == nil {
		return nil
	}
	return root.TraverseNodes(func(n *sway.Node) bool {
		return n.Type == sway.NodeWorkspace && n.Name == name
	})
}
