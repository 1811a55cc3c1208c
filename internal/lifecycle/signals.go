// Package lifecycle runs the exit hook when the daemon is asked to stop.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sys/unix"

	"github.com/persway/persway/internal/hooks"
	"github.com/persway/persway/internal/ipc"
	"github.com/persway/persway/internal/util"
)

// Signals is the set of signals that stop the daemon.
var Signals = []os.Signal{unix.SIGHUP, unix.SIGINT, unix.SIGQUIT, unix.SIGTERM}

const defaultShutdownTimeout = 5 * time.Second

// CommandConn is a dedicated command connection.
type CommandConn interface {
	hooks.Commander
	Close() error
}

// Coordinator waits for a termination signal, runs the exit hook on its own
// connection and ends the process. It shares nothing with the event loop.
type Coordinator struct {
	Dial    func(ctx context.Context) (CommandConn, error)
	OnExit  string
	Logger  *util.Logger
	Exit    func(code int)
	Timeout time.Duration
}

// Notify registers for Signals and returns the delivery channel together with
// a func that stops delivery.
func Notify() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, Signals...)
	return ch, func() { signal.Stop(ch) }
}

// Run blocks until a signal arrives on sigs or ctx is done. On a
// termination signal it runs the exit hook and calls Exit; it returns only
// when ctx ends or sigs is closed.
func (c *Coordinator) Run(ctx context.Context, sigs <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigs:
			if !ok {
				return
			}
			switch sig {
			case unix.SIGHUP, unix.SIGINT, unix.SIGQUIT, unix.SIGTERM:
				c.exit(c.shutdown(sig))
				return
			default:
				panic(fmt.Sprintf("unexpected signal %v", sig))
			}
		}
	}
}

func (c *Coordinator) shutdown(sig os.Signal) int {
	logger := c.Logger
	if logger == nil {
		logger = util.Discard()
	}
	logger.Infof("received %s, shutting down", sig)

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, err := c.Dial(ctx)
	if err != nil {
		logger.Errorf("exit hook: %v", err)
		return 1
	}
	defer conn.Close()

	err = hooks.New(conn, hooks.Templates{OnExit: c.OnExit}).Exit(ctx)
	var cmdErr *ipc.CommandError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &cmdErr):
		logger.Warnf("exit hook: %v", err)
		return 0
	default:
		logger.Errorf("exit hook: %v", err)
		return 1
	}
}

func (c *Coordinator) exit(code int) {
	if c.Exit != nil {
		c.Exit(code)
		return
	}
	os.Exit(code)
}
