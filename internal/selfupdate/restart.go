package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// ExecRestarter replaces the current process image with Path after Delay.
// The process keeps its PID and controlling terminal.
type ExecRestarter struct {
	Path  string
	Args  []string
	Env   []string
	Delay time.Duration
	// Before runs after Delay, right before exec. An error aborts the restart.
	Before func() error

	exec func(argv0 string, argv []string, envv []string) error
}

// Restart waits Delay and execs Path. It only returns on failure.
func (r ExecRestarter) Restart(ctx context.Context) error {
	if r.Path == "" {
		return errors.New("restart path is required")
	}
	if r.Delay > 0 {
		timer := time.NewTimer(r.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	if r.Before != nil {
		if err := r.Before(); err != nil {
			return fmt.Errorf("prepare restart: %w", err)
		}
	}
	args := r.Args
	if len(args) == 0 {
		args = os.Args
	}
	argv := []string{r.Path}
	if len(args) > 1 {
		argv = append(argv, args[1:]...)
	}
	env := r.Env
	if env == nil {
		env = os.Environ()
	}
	execFn := r.exec
	if execFn == nil {
		execFn = unix.Exec
	}
	if err := execFn(r.Path, argv, env); err != nil {
		return fmt.Errorf("exec %s: %w", r.Path, err)
	}
	return nil
}
