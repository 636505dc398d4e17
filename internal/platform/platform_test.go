package platform

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

type fakeSignals struct {
	notified chan<- os.Signal
	signals  []os.Signal
	stopped  int
}

func newTestLockdown(f *fakeSignals) *Lockdown {
	l := NewLockdown(nil)
	l.notify = func(c chan<- os.Signal, sig ...os.Signal) {
		f.notified = c
		f.signals = sig
	}
	l.stop = func(chan<- os.Signal) {
		f.stopped++
	}
	return l
}

func TestLockdownForwardsSignals(t *testing.T) {
	f := &fakeSignals{}
	l := newTestLockdown(f)
	if err := l.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if !l.Active() {
		t.Fatalf("expected active lockdown")
	}
	if len(f.signals) != len(LockdownSignals) {
		t.Fatalf("expected %d signals, got %v", len(LockdownSignals), f.signals)
	}
	f.notified <- syscall.SIGTERM
	select {
	case sig := <-l.Requests():
		if sig != syscall.SIGTERM {
			t.Fatalf("unexpected signal %v", sig)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected close request")
	}
}

func TestLockdownEnableDisableIdempotent(t *testing.T) {
	f := &fakeSignals{}
	l := newTestLockdown(f)
	_ = l.Enable()
	first := f.notified
	_ = l.Enable()
	if f.notified != first {
		t.Fatalf("expected second Enable to be a no-op")
	}
	_ = l.Disable()
	_ = l.Disable()
	if f.stopped != 1 {
		t.Fatalf("expected one stop, got %d", f.stopped)
	}
	if l.Active() {
		t.Fatalf("expected inactive lockdown")
	}
}

func TestAutostartRegisterIfAbsent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "autostart")
	a := NewAutostart(dir, "/opt/term clock/termclock", nil)
	if a.Registered() {
		t.Fatalf("expected no entry yet")
	}
	if err := a.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	data, err := os.ReadFile(a.Path())
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if !strings.Contains(string(data), `Exec="/opt/term clock/termclock"`) {
		t.Fatalf("unexpected entry:\n%s", data)
	}

	if err := os.WriteFile(a.Path(), []byte("custom"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := a.Enable(); err != nil {
		t.Fatalf("Enable again: %v", err)
	}
	data, _ = os.ReadFile(a.Path())
	if string(data) != "custom" {
		t.Fatalf("expected existing entry to be kept, got %q", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected no temp files, got %d entries", len(entries))
	}

	if err := a.Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if a.Registered() {
		t.Fatalf("expected entry removed")
	}
	if err := a.Disable(); err != nil {
		t.Fatalf("Disable missing: %v", err)
	}
}

func TestAutostartRequiresPaths(t *testing.T) {
	if err := NewAutostart("", "/bin/termclock", nil).Enable(); err == nil {
		t.Fatalf("expected error without dir")
	}
}

func TestQuoteExec(t *testing.T) {
	if got := quoteExec("/usr/bin/termclock"); got != "/usr/bin/termclock" {
		t.Fatalf("unexpected %q", got)
	}
	if got := quoteExec(`/a b/$x`); got != `"/a b/\$x"` {
		t.Fatalf("unexpected %q", got)
	}
}

func TestDefaultAutostartDirUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	dir, err := DefaultAutostartDir()
	if err != nil || dir != "/xdg/autostart" {
		t.Fatalf("unexpected dir %q %v", dir, err)
	}
}

func TestAutostartEntryRunsInTerminal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "custom-autostart")
	a := NewAutostart(dir, "/usr/bin/termclock", nil)
	if err := a.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, AutostartFile))
	if err != nil {
		t.Fatalf("expected entry in configured dir: %v", err)
	}
	for _, want := range []string{"Terminal=true\n", "Exec=/usr/bin/termclock\n", "Type=Application\n"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %q in entry:\n%s", want, data)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the desktop entry, found %d files", len(entries))
	}
}
