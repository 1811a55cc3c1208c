package ipc

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/persway/persway/internal/hooks"
)

var _ hooks.Commander = (*Conn)(nil)

const (
	typeRunCommand    uint32 = 0
	typeGetWorkspaces uint32 = 1
	typeSubscribe     uint32 = 2
	typeGetTree       uint32 = 4
	typeWorkspaceEvt  uint32 = 0x80000000
	typeWindowEvt     uint32 = 0x80000003
)

type request struct {
	typ     uint32
	payload string
}

func readFrame(r io.Reader) (uint32, []byte, error) {
	var header [14]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, err
	}
	if !bytes.Equal(header[:6], []byte("i3-ipc")) {
		return 0, nil, fmt.Errorf("bad magic %q", header[:6])
	}
	payload := make([]byte, binary.LittleEndian.Uint32(header[6:]))
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return binary.LittleEndian.Uint32(header[10:]), payload, nil
}

func writeFrame(w io.Writer, typ uint32, payload string) error {
	buf := make([]byte, 14+len(payload))
	copy(buf, "i3-ipc")
	binary.LittleEndian.PutUint32(buf[6:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(buf[10:], typ)
	copy(buf[14:], payload)
	_, err := w.Write(buf)
	return err
}

// fakeSway accepts a single connection and answers each request with the
// reply produced by respond. Requests are recorded on the returned channel.
func fakeSway(t *testing.T, respond func(net.Conn, request)) (string, <-chan request) {
	t.Helper()
	dir, err := os.MkdirTemp("", "persway")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "sway.sock")
	listener, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	requests := make(chan request, 16)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			typ, payload, err := readFrame(conn)
			if err != nil {
				return
			}
			req := request{typ: typ, payload: string(payload)}
			requests <- req
			respond(conn, req)
		}
	}()
	return path, requests
}

func reply(t *testing.T, conn net.Conn, typ uint32, payload string) {
	if err := writeFrame(conn, typ, payload); err != nil {
		t.Errorf("write reply: %v", err)
	}
}

func dialTest(t *testing.T, path string) *Conn {
	t.Helper()
	conn, err := Dial(context.Background(), path)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRunCommandSuccessAndRejection(t *testing.T) {
	path, requests := fakeSway(t, func(conn net.Conn, req request) {
		if req.payload == "split v" {
			reply(t, conn, typeRunCommand, `[{"success":true}]`)
			return
		}
		reply(t, conn, typeRunCommand, `[{"success":false,"parse_error":false,"error":"No matching node."}]`)
	})
	conn := dialTest(t, path)
	ctx := context.Background()

	if err := conn.RunCommand(ctx, "split v"); err != nil {
		t.Fatalf("RunCommand: %v", err)
	}
	got := <-requests
	if got.typ != typeRunCommand || got.payload != "split v" {
		t.Fatalf("unexpected request %+v", got)
	}

	err := conn.RunCommand(ctx, "[con_id=7] mark --add _prev")
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if cmdErr.Command != "[con_id=7] mark --add _prev" || cmdErr.Message != "No matching node." {
		t.Fatalf("unexpected CommandError %+v", cmdErr)
	}
}

func TestRunCommandTransportFailure(t *testing.T) {
	path, _ := fakeSway(t, func(conn net.Conn, req request) {
		conn.Close()
	})
	conn := dialTest(t, path)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := conn.RunCommand(ctx, "split v")
	if err == nil {
		t.Fatalf("expected error from closed socket")
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		t.Fatalf("transport failure reported as rejection: %v", err)
	}
}

func TestDialMissingSocket(t *testing.T) {
	if _, err := Dial(context.Background(), filepath.Join(t.TempDir(), "missing.sock")); err == nil {
		t.Fatalf("expected dial error")
	}
}

func TestGetTreeAndWorkspaces(t *testing.T) {
	const tree = `{"id":1,"type":"root","focus":[5],"nodes":[
		{"id":5,"type":"output","name":"DP-1","focus":[10,11],"nodes":[
			{"id":10,"type":"workspace","name":"3: firefox","focus":[2],"nodes":[
				{"id":2,"type":"con","focused":true,"app_id":"firefox","rect":{"width":800,"height":1000}}]},
			{"id":11,"type":"workspace","name":"4","focus":[]}]}]}`
	path, _ := fakeSway(t, func(conn net.Conn, req request) {
		switch req.typ {
		case typeGetTree:
			reply(t, conn, typeGetTree, tree)
		case typeGetWorkspaces:
			reply(t, conn, typeGetWorkspaces, `[{"num":3,"name":"3: firefox","focused":true,"output":"DP-1"},{"num":4,"name":"4","output":"DP-1"}]`)
		}
	})
	conn := dialTest(t, path)
	ctx := context.Background()

	root, err := conn.GetTree(ctx)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	focused := root.FocusedNode()
	if focused == nil || focused.ID != 2 || focused.Rect.Height != 1000 || focused.AppName() != "firefox" {
		t.Fatalf("unexpected focused node %+v", focused)
	}
	if parent := root.FocusedParent(); parent == nil || parent.ID != 10 {
		t.Fatalf("unexpected focused parent %+v", parent)
	}

	workspaces, err := conn.GetWorkspaces(ctx)
	if err != nil {
		t.Fatalf("GetWorkspaces: %v", err)
	}
	type summary struct {
		ID    int64
		Num   int
		Name  string
		Empty bool
	}
	var got []summary
	for _, ws := range workspaces {
		got = append(got, summary{ws.ID, ws.Num, ws.Name, ws.IsEmpty()})
	}
	want := []summary{
		{ID: 10, Num: 3, Name: "3: firefox", Empty: false},
		{ID: 11, Num: 4, Name: "4", Empty: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("workspaces mismatch (-want +got):\n%s", diff)
	}
}

func TestSubscribeStreamsWindowEvents(t *testing.T) {
	path, requests := fakeSway(t, func(conn net.Conn, req request) {
		if req.typ != typeSubscribe {
			return
		}
		reply(t, conn, typeSubscribe, `{"success":true}`)
		reply(t, conn, typeWorkspaceEvt, `{"change":"focus","current":{}}`)
		reply(t, conn, typeWindowEvt, `{"change":"focus","container":{"id":7,"app_id":"Firefox"}}`)
		reply(t, conn, typeWindowEvt, `{"change":"close","container":{"id":7}}`)
		conn.Close()
	})
	t.Setenv("SWAYSOCK", "")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stream, err := Subscribe(ctx, path)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer stream.Close()

	ev, err := stream.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ev.Change != "focus" || ev.Container.ID != 7 || ev.Container.AppName() != "Firefox" {
		t.Fatalf("unexpected first event %+v", ev)
	}
	if req := <-requests; req.payload != `["window"]` {
		t.Fatalf("unexpected subscribe payload %q", req.payload)
	}
	ev, err = stream.Next(ctx)
	if err != nil || ev.Change != "close" {
		t.Fatalf("unexpected second event %+v, %v", ev, err)
	}
	if _, err := stream.Next(ctx); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed, got %v", err)
	}
}

func TestNextHonoursCancellation(t *testing.T) {
	path, _ := fakeSway(t, func(conn net.Conn, req request) {
		reply(t, conn, typeSubscribe, `{"success":true}`)
	})
	t.Setenv("SWAYSOCK", "")
	stream, err := Subscribe(context.Background(), path)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer stream.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := stream.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestSubscribeRefused(t *testing.T) {
	path, _ := fakeSway(t, func(conn net.Conn, req request) {
		reply(t, conn, typeSubscribe, `{"success":false}`)
	})
	t.Setenv("SWAYSOCK", "")
	stream, err := Subscribe(context.Background(), path)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer stream.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = stream.Next(ctx)
	if err == nil || errors.Is(err, ErrStreamClosed) || errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected refused subscription error, got %v", err)
	}
}
