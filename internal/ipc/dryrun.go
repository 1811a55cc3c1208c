package ipc

import (
	"context"

	"github.com/persway/persway/internal/util"
)

// DryRunCommander logs commands instead of sending them.
type DryRunCommander struct {
	Logger *util.Logger
}

// RunCommand records the command at info level and reports success.
func (d DryRunCommander) RunCommand(_ context.Context, command string) error {
	if d.Logger != nil {
		d.Logger.Infof("dry-run: %s", command)
	}
	return nil
}
