package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"pkt.systems/termclock/core"
	"pkt.systems/termclock/internal/command"
	"pkt.systems/termclock/schema"
)

var errExec = errors.New("exec failed")

type fakeRestarter struct {
	calls int
	err   error
}

func (f *fakeRestarter) Restart(context.Context) error {
	f.calls++
	return f.err
}

func TestLifecycleTerminateRecordsFirstCode(t *testing.T) {
	l := NewLifecycle(nil)
	if _, exited := l.Exited(); exited {
		t.Fatalf("expected fresh lifecycle not exited")
	}
	l.Terminate(0)
	l.Terminate(3)
	if code, exited := l.Exited(); !exited || code != 0 {
		t.Fatalf("expected first code 0, got %d %v", code, exited)
	}
}

func TestLifecycleRestartWithoutRestarter(t *testing.T) {
	l := NewLifecycle(nil)
	if err := l.Restart(context.Background()); !errors.Is(err, schema.ErrRestartUnavailable) {
		t.Fatalf("expected ErrRestartUnavailable, got %v", err)
	}
}

func TestLifecycleRestartFailureResumes(t *testing.T) {
	restarter := &fakeRestarter{err: errExec}
	l := NewLifecycle(restarter)
	var flushed, suspended, resumed int
	l.attachFlush(func() { flushed++ })
	l.attachTerminal(
		func() error { suspended++; return nil },
		func() error { resumed++; return nil },
	)
	if err := l.Restart(context.Background()); !errors.Is(err, errExec) {
		t.Fatalf("expected exec error, got %v", err)
	}
	if flushed != 1 || resumed != 1 || restarter.calls != 1 {
		t.Fatalf("unexpected hooks flushed=%d resumed=%d calls=%d", flushed, resumed, restarter.calls)
	}
	if err := l.Suspend(); err != nil || suspended != 1 {
		t.Fatalf("expected suspend hook, got %v (%d)", err, suspended)
	}
}

func TestPlainHostFlushSkipsEchoAndStripsMarkers(t *testing.T) {
	session, err := core.NewSession("plain", schema.SessionConfig{}, core.SessionDeps{
		Interpreter: command.NewHandler(command.HandlerConfig{DisableAuditLogging: true}),
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	out := &bytes.Buffer{}
	host := &plainHost{session: session, out: out}

	session.Handle(context.Background(), "sqrt -4")
	host.flush()
	if got := out.String(); got != "ERROR: Square root of a negative number is not defined.\n" {
		t.Fatalf("unexpected plain output %q", got)
	}

	out.Reset()
	session.Handle(context.Background(), "cls")
	session.Handle(context.Background(), "echo hi")
	host.flush()
	if got := out.String(); got != "hi\n" {
		t.Fatalf("expected only new output after clear, got %q", got)
	}

	out.Reset()
	host.flush()
	if out.Len() != 0 {
		t.Fatalf("expected nothing on second flush, got %q", out.String())
	}
}

func TestPlainHostStatusDuringCountdown(t *testing.T) {
	session, err := core.NewSession("plain", schema.SessionConfig{}, core.SessionDeps{
		Interpreter: command.NewHandler(command.HandlerConfig{DisableAuditLogging: true}),
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	out := &bytes.Buffer{}
	host := &plainHost{session: session, out: out}
	host.status()
	if out.Len() != 0 {
		t.Fatalf("expected no status outside countdown")
	}
	session.Handle(context.Background(), "exit")
	session.Tick(context.Background())
	host.status()
	if !strings.Contains(out.String(), "Termination in 9 second(s)") {
		t.Fatalf("unexpected status %q", out.String())
	}
}
