package console

import (
	"context"
	"errors"

	"pkt.systems/termclock/schema"
)

// Restarter replaces the running process. It only returns on failure.
type Restarter interface {
	Restart(ctx context.Context) error
}

// Lifecycle is the core.Lifecycle of a console host. It records the first
// termination request for the host loop and brackets restarts with the
// host's terminal hooks.
type Lifecycle struct {
	// Restarter is nil when the host cannot restart, as in SSH sessions.
	Restarter Restarter

	exited bool
	code   int

	flush   func()
	suspend func() error
	resume  func() error
}

// NewLifecycle returns a lifecycle that restarts with r.
func NewLifecycle(r Restarter) *Lifecycle {
	return &Lifecycle{Restarter: r}
}

// Terminate records code. Only the first call counts.
func (l *Lifecycle) Terminate(code int) {
	if l.exited {
		return
	}
	l.exited = true
	l.code = code
}

// Exited returns the recorded exit code once Terminate was called.
func (l *Lifecycle) Exited() (int, bool) {
	return l.code, l.exited
}

// Restart shows the pending frame and hands over to the Restarter. The host
// terminal is resumed when the restart fails.
func (l *Lifecycle) Restart(ctx context.Context) error {
	if l.Restarter == nil {
		return schema.ErrRestartUnavailable
	}
	if l.flush != nil {
		l.flush()
	}
	err := l.Restarter.Restart(ctx)
	if err != nil && l.resume != nil {
		if rerr := l.resume(); rerr != nil {
			return errors.Join(err, rerr)
		}
	}
	return err
}

// Suspend releases the host terminal right before the process image is
// replaced. It is meant as the Before hook of selfupdate.ExecRestarter.
func (l *Lifecycle) Suspend() error {
	if l.suspend == nil {
		return nil
	}
	return l.suspend()
}

func (l *Lifecycle) attachFlush(flush func()) {
	l.flush = flush
}

func (l *Lifecycle) attachTerminal(suspend, resume func() error) {
	l.suspend = suspend
	l.resume = resume
}
