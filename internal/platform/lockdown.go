// Package platform implements the host integrations a console can switch on
// and off: signal lockdown and login autostart.
package platform

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"pkt.systems/pslog"
)

// LockdownSignals are intercepted while lockdown is enabled.
var LockdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGHUP,
	syscall.SIGQUIT,
	syscall.SIGTSTP,
}

// Lockdown intercepts termination signals and turns them into close requests
// so the console can refuse them. While disabled the signals keep their
// default behaviour.
type Lockdown struct {
	mu       sync.Mutex
	log      pslog.Logger
	signals  []os.Signal
	requests chan os.Signal
	sigCh    chan os.Signal
	done     chan struct{}

	notify func(c chan<- os.Signal, sig ...os.Signal)
	stop   func(c chan<- os.Signal)
}

// NewLockdown returns a disabled lockdown.
func NewLockdown(log pslog.Logger) *Lockdown {
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	return &Lockdown{
		log:      log,
		signals:  LockdownSignals,
		requests: make(chan os.Signal, 1),
		notify:   signal.Notify,
		stop:     signal.Stop,
	}
}

// Requests delivers intercepted signals. A request is dropped when the
// previous one has not been consumed yet.
func (l *Lockdown) Requests() <-chan os.Signal {
	return l.requests
}

// Active reports whether signals are currently intercepted.
func (l *Lockdown) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sigCh != nil
}

// Enable starts intercepting signals. Enabling twice is a no-op.
func (l *Lockdown) Enable() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sigCh != nil {
		return nil
	}
	sigCh := make(chan os.Signal, len(l.signals))
	done := make(chan struct{})
	l.notify(sigCh, l.signals...)
	l.sigCh, l.done = sigCh, done
	go l.forward(sigCh, done)
	l.log.Debug("lockdown enabled", "signals", len(l.signals))
	return nil
}

// Disable restores default signal handling. Disabling twice is a no-op.
func (l *Lockdown) Disable() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sigCh == nil {
		return nil
	}
	l.stop(l.sigCh)
	close(l.done)
	l.sigCh, l.done = nil, nil
	l.log.Debug("lockdown disabled")
	return nil
}

func (l *Lockdown) forward(sigCh <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case sig := <-sigCh:
			l.log.Info("close request intercepted", "signal", sig.String())
			select {
			case l.requests <- sig:
			default:
			}
		}
	}
}
