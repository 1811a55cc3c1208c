package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	sway "github.com/joshuarubin/go-sway"

	"github.com/persway/persway/internal/state"
)

// ErrStreamClosed is returned by EventStream.Next once the compositor closes
// the subscription socket.
var ErrStreamClosed = errors.New("event stream closed")

// EventStream yields window events from a dedicated subscription connection.
type EventStream struct {
	events chan state.WindowEvent
	done   chan struct{}
	err    error
	cancel context.CancelFunc
}

// Subscribe opens a subscription connection to the socket at path and starts
// streaming window events. Connection and subscription failures are reported
// by Next.
//
// sway.Subscribe only dials $SWAYSOCK, so the variable is pointed at path
// first.
func Subscribe(ctx context.Context, path string) (*EventStream, error) {
	if os.Getenv("SWAYSOCK") != path {
		if err := os.Setenv("SWAYSOCK", path); err != nil {
			return nil, fmt.Errorf("set SWAYSOCK: %w", err)
		}
	}
	subCtx, cancel := context.WithCancel(ctx)
	s := &EventStream{
		events: make(chan state.WindowEvent),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	h := windowHandler{EventHandler: sway.NoOpEventHandler(), events: s.events}
	go func() {
		defer close(s.done)
		s.err = sway.Subscribe(subCtx, h, sway.EventTypeWindow)
	}()
	return s, nil
}

// Next blocks until the next window event arrives. It returns
// ErrStreamClosed when the compositor ends the stream.
func (s *EventStream) Next(ctx context.Context) (state.WindowEvent, error) {
	select {
	case ev := <-s.events:
		return ev, nil
	case <-s.done:
		return state.WindowEvent{}, s.closeErr()
	case <-ctx.Done():
		return state.WindowEvent{}, ctx.Err()
	}
}

func (s *EventStream) closeErr() error {
	switch {
	case s.err == nil,
		errors.Is(s.err, io.EOF),
		errors.Is(s.err, io.ErrUnexpectedEOF),
		errors.Is(s.err, net.ErrClosed):
		return ErrStreamClosed
	case errors.Is(s.err, context.Canceled), errors.Is(s.err, context.DeadlineExceeded):
		return s.err
	default:
		return fmt.Errorf("window subscription: %w", s.err)
	}
}

// Close ends the subscription and waits for its reader to stop.
func (s *EventStream) Close() error {
	s.cancel()
	<-s.done
	return nil
}

// windowHandler forwards window events in arrival order. Delivery blocks
// until Next takes the event.
type windowHandler struct {
	sway.EventHandler
	events chan<- state.WindowEvent
}

func (h windowHandler) Window(ctx context.Context, e sway.WindowEvent) {
	ev := state.WindowEvent{Change: string(e.Change), Container: *fromNode(&e.Container)}
	select {
	case h.events <- ev:
	case <-ctx.Done():
	}
}
