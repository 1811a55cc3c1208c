package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/persway/persway/internal/hooks"
	"github.com/persway/persway/internal/ipc"
	"github.com/persway/persway/internal/layout"
	"github.com/persway/persway/internal/state"
	"github.com/persway/persway/internal/util"
	"github.com/persway/persway/internal/workspace"
)

// Querier fetches fresh compositor state.
type Querier interface {
	layout.TreeSource
	workspace.Source
}

// EventSource yields window events in order.
type EventSource interface {
	Next(ctx context.Context) (state.WindowEvent, error)
}

// Options selects the automations the engine runs.
type Options struct {
	Autolayout        bool
	WorkspaceRenaming bool
	Hooks             hooks.Templates
}

// Engine reacts to window events by dispatching hooks, renaming workspaces
// and imposing split directions. It is driven by a single goroutine.
type Engine struct {
	query    Querier
	commands layout.Commander
	hooks    *hooks.Dispatcher
	logger   *util.Logger
	opts     Options

	focus focusTracker
}

// New creates an engine. Queries go through query and every command goes
// through commands; both are normally the same command connection.
func New(query Querier, commands layout.Commander, logger *util.Logger, opts Options) *Engine {
	if logger == nil {
		logger = util.Discard()
	}
	cmd := loggingCommander{next: commands, logger: logger}
	return &Engine{
		query:    query,
		commands: cmd,
		hooks:    hooks.New(cmd, opts.Hooks),
		logger:   logger,
		opts:     opts,
	}
}

// Run handles events until the stream ends or a fatal error occurs. It
// always returns a non-nil error.
func (e *Engine) Run(ctx context.Context, events EventSource) error {
	for {
		ev, err := events.Next(ctx)
		if err != nil {
			return fmt.Errorf("event stream: %w", err)
		}
		if err := e.HandleEvent(ctx, ev); err != nil {
			return err
		}
	}
}

// HandleEvent processes a single window event. Only hook transport failures
// are returned; layout and rename failures are logged.
func (e *Engine) HandleEvent(ctx context.Context, ev state.WindowEvent) error {
	change, err := state.ParseChange(ev.Change)
	if err != nil {
		e.logger.Warnf("skipping window event: %v", err)
		return nil
	}
	e.trace("event.received", map[string]any{
		"change":    ev.Change,
		"container": ev.Container.ID,
		"app":       ev.Container.AppName(),
	})
	switch change {
	case state.ChangeFocus:
		return e.onFocus(ctx, ev)
	case state.ChangeClose:
		return e.onClose(ctx, ev)
	case state.ChangeIgnored:
		return nil
	default:
		panic(fmt.Sprintf("unhandled window change %v", change))
	}
}

// PreviousFocus returns the container that held focus before the current
// event, if it has not been closed since.
func (e *Engine) PreviousFocus() (int64, bool) {
	return e.focus.previous()
}

func (e *Engine) onFocus(ctx context.Context, ev state.WindowEvent) error {
	if err := e.leave(ctx); err != nil {
		return err
	}
	if err := hookResult(e.logger, "focus", e.hooks.Enter(ctx)); err != nil {
		return err
	}
	e.renameWorkspace(ctx, ev)
	if e.opts.Autolayout {
		if err := layout.Autolayout(ctx, e.query, e.commands); err != nil {
			e.logger.Errorf("autolayout failed: %v", err)
		}
	}
	e.focus.set(ev.Container.ID)
	return nil
}

func (e *Engine) onClose(ctx context.Context, ev state.WindowEvent) error {
	if err := e.leave(ctx); err != nil {
		return err
	}
	e.renameWorkspace(ctx, ev)
	e.focus.clear()
	return nil
}

// leave targets the container focused before this event, so it must run
// before the tracker is updated.
func (e *Engine) leave(ctx context.Context) error {
	id, ok := e.focus.previous()
	if !ok {
		return nil
	}
	return hookResult(e.logger, "focus-leave", e.hooks.Leave(ctx, id))
}

func (e *Engine) renameWorkspace(ctx context.Context, ev state.WindowEvent) {
	if !e.opts.WorkspaceRenaming {
		return
	}
	if err := workspace.Rename(ctx, e.query, e.commands, ev); err != nil {
		e.logger.Errorf("workspace rename failed: %v", err)
	}
}

// hookResult downgrades compositor rejections to warnings. Anything else
// means the command connection is unusable.
func hookResult(logger *util.Logger, name string, err error) error {
	if err == nil {
		return nil
	}
	var cmdErr *ipc.CommandError
	if errors.As(err, &cmdErr) {
		logger.Warnf("%s hook: %v", name, err)
		return nil
	}
	return fmt.Errorf("%s hook: %w", name, err)
}

type focusTracker struct {
	id    int64
	valid bool
}

func (f *focusTracker) previous() (int64, bool) {
	return f.id, f.valid
}

func (f *focusTracker) set(id int64) {
	f.id, f.valid = id, true
}

func (f *focusTracker) clear() {
	f.id, f.valid = 0, false
}

type loggingCommander struct {
	next   layout.Commander
	logger *util.Logger
}

func (c loggingCommander) RunCommand(ctx context.Context, command string) error {
	err := c.next.RunCommand(ctx, command)
	if err != nil {
		c.logger.Debugf("dispatch failed: %s: %v", command, err)
		return err
	}
	c.logger.Debugf("dispatched: %s", command)
	return nil
}

func (e *Engine) trace(event string, fields map[string]any) {
	if !e.logger.Enabled(util.LevelTrace) {
		return
	}
	e.logger.Tracef("%s %s", event, formatTraceFields(fields))
}

func formatTraceFields(fields map[string]any) string {
	if len(fields) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		val, err := json.Marshal(fields[k])
		if err != nil {
			b.WriteString(strconv.Quote(fmt.Sprintf("<marshal error: %v>", err)))
			continue
		}
		b.Write(val)
	}
	b.WriteByte('}')
	return b.String()
}
