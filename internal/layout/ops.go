package layout

import (
	"context"
	"fmt"
)

// Commander sends a single command string to the compositor.
type Commander interface {
	RunCommand(ctx context.Context, command string) error
}

// Plan is an ordered list of compositor commands.
type Plan struct {
	Commands []string
}

// Add appends a command.
func (p *Plan) Add(command string) {
	p.Commands = append(p.Commands, command)
}

// Direction is a split orientation.
type Direction string

const (
	SplitHorizontal Direction = "h"
	SplitVertical   Direction = "v"
)

// Split imposes a split direction on the focused container.
func Split(dir Direction) Plan {
	var p Plan
	p.Add(fmt.Sprintf("split %s", dir))
	return p
}

// Execute applies the plan sequentially, stopping at the first failure.
func (p Plan) Execute(ctx context.Context, c Commander) error {
	for _, cmd := range p.Commands {
		if err := c.RunCommand(ctx, cmd); err != nil {
			return fmt.Errorf("dispatch %s: %w", cmd, err)
		}
	}
	return nil
}
