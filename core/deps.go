package core

import (
	"context"

	"pkt.systems/pslog"
	"pkt.systems/termclock/schema"
)

// Interpreter turns one input line into output and an optional transition.
type Interpreter interface {
	Execute(ctx context.Context, line string) schema.CommandResult
}

// Updater checks for and installs a replacement executable.
type Updater interface {
	CheckForUpdate(ctx context.Context) schema.UpdateCheck
	PerformUpdate(ctx context.Context) error
}

// Toggle is an idempotent platform switch. Errors are logged, never surfaced.
type Toggle interface {
	Enable() error
	Disable() error
}

// Lifecycle is implemented by the host that owns the process or channel.
type Lifecycle interface {
	// Terminate ends the host loop with the given exit code.
	Terminate(code int)
	// Restart replaces the running process with the canonical executable.
	// It only returns on failure.
	Restart(ctx context.Context) error
}

// SessionDeps captures the collaborators of a session. Interpreter is required.
type SessionDeps struct {
	Interpreter Interpreter
	Updater     Updater
	Lockdown    Toggle
	Autostart   Toggle
	Lifecycle   Lifecycle
	Logger      pslog.Logger
}

type nopToggle struct{}

func (nopToggle) Enable() error  { return nil }
func (nopToggle) Disable() error { return nil }

type nopLifecycle struct{}

func (nopLifecycle) Terminate(int) {}

func (nopLifecycle) Restart(context.Context) error { return schema.ErrRestartUnavailable }
