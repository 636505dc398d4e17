package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"pkt.systems/termclock/core"
	"pkt.systems/termclock/internal/command"
	"pkt.systems/termclock/schema"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

type plainFixture struct {
	session   *core.Session
	lifecycle *Lifecycle
	input     *io.PipeWriter
	cfg       PlainConfig
}

func newPlainFixture(t *testing.T) *plainFixture {
	t.Helper()
	lifecycle := NewLifecycle(nil)
	session, err := core.NewSession("plain", schema.SessionConfig{}, core.SessionDeps{
		Interpreter: command.NewHandler(command.HandlerConfig{DisableAuditLogging: true}),
		Lifecycle:   lifecycle,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	reader, writer := io.Pipe()
	t.Cleanup(func() { _ = writer.Close() })
	return &plainFixture{
		session:   session,
		lifecycle: lifecycle,
		input:     writer,
		cfg: PlainConfig{
			Session:       session,
			Lifecycle:     lifecycle,
			In:            reader,
			Out:           &syncBuffer{},
			CountdownTick: time.Millisecond,
		},
	}
}

func TestRunPlainCtrlDIsRejectedCloseRequest(t *testing.T) {
	f := newPlainFixture(t)
	go func() { _, _ = io.WriteString(f.input, "\x04") }()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	code, err := RunPlain(ctx, f.cfg)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected console to keep running until the deadline, got code=%d err=%v", code, err)
	}
	if _, exited := f.lifecycle.Exited(); exited {
		t.Fatalf("expected no termination")
	}
	if f.session.State() != schema.StateNormal {
		t.Fatalf("expected normal state, got %v", f.session.State())
	}
	if !containsLine(f.session.Lines(), "can only be closed with the 'EXIT' command") {
		t.Fatalf("expected close rejection, got %q", f.session.Lines())
	}
}

func TestRunPlainExitAfterCtrlD(t *testing.T) {
	f := newPlainFixture(t)
	go func() {
		_, _ = io.WriteString(f.input, "\x04")
		time.Sleep(20 * time.Millisecond)
		_, _ = io.WriteString(f.input, "exit\n")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	code, err := RunPlain(ctx, f.cfg)
	if err != nil || code != 0 {
		t.Fatalf("expected clean exit, got code=%d err=%v", code, err)
	}
	if !containsLine(f.session.Lines(), "can only be closed") {
		t.Fatalf("expected close rejection before exit, got %q", f.session.Lines())
	}
}

func TestRunPlainInputClosed(t *testing.T) {
	f := newPlainFixture(t)
	go func() { _ = f.input.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	code, err := RunPlain(ctx, f.cfg)
	if !errors.Is(err, ErrInputClosed) || code != 1 {
		t.Fatalf("expected ErrInputClosed with code 1, got code=%d err=%v", code, err)
	}
}

func TestFilterCloseKeys(t *testing.T) {
	if r, ok := filterCloseKeys(4); r != 3 || !ok {
		t.Fatalf("expected Ctrl+D mapped to interrupt, got %d %v", r, ok)
	}
	if r, ok := filterCloseKeys('a'); r != 'a' || !ok {
		t.Fatalf("expected rune unchanged, got %q %v", r, ok)
	}
}
