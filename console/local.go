package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"pkt.systems/termclock/core"
	"pkt.systems/termclock/schema"
)

// ErrNotTerminal is returned by RunLocal when stdin is not a terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// LocalConfig configures the fullscreen console on the controlling terminal.
type LocalConfig struct {
	Session       *core.Session
	Lifecycle     *Lifecycle
	Theme         schema.ThemeName
	Title         string
	CloseRequests <-chan os.Signal
	// In and Out default to os.Stdin and os.Stdout.
	In  *os.File
	Out *os.File
}

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// RunLocal puts the terminal in raw mode and runs the console until the
// session terminates. The terminal is restored on return and around
// restart attempts.
func RunLocal(ctx context.Context, cfg LocalConfig) (int, error) {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	fd := int(cfg.In.Fd())
	if !term.IsTerminal(fd) {
		return 1, ErrNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return 1, fmt.Errorf("enter raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, state) }()

	width, height, err := term.GetSize(int(cfg.Out.Fd()))
	if err != nil {
		width, height = 80, 24
	}

	resize := make(chan Size, 1)
	winch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(winch, syscall.SIGWINCH)
	defer func() {
		signal.Stop(winch)
		close(done)
	}()
	go forwardResize(int(cfg.Out.Fd()), winch, resize, done)

	terminal, err := NewTerminal(TerminalConfig{
		Session:       cfg.Session,
		Lifecycle:     cfg.Lifecycle,
		In:            cfg.In,
		Out:           cfg.Out,
		Theme:         cfg.Theme,
		Title:         cfg.Title,
		Size:          Size{Width: width, Height: height},
		Resize:        resize,
		CloseRequests: cfg.CloseRequests,
	})
	if err != nil {
		return 1, err
	}
	cfg.Lifecycle.attachTerminal(
		func() error {
			terminal.screen.ExitAltScreen()
			return term.Restore(fd, state)
		},
		func() error {
			next, err := term.MakeRaw(fd)
			if err != nil {
				return fmt.Errorf("re-enter raw mode: %w", err)
			}
			state = next
			terminal.screen.EnterAltScreen()
			return nil
		},
	)
	return terminal.Run(ctx)
}

func forwardResize(fd int, winch <-chan os.Signal, out chan Size, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-winch:
			width, height, err := term.GetSize(fd)
			if err != nil {
				continue
			}
			offerSize(out, Size{Width: width, Height: height})
		}
	}
}

// offerSize replaces any pending size in out, which has a buffer of one and
// a single writer.
func offerSize(out chan Size, size Size) {
	select {
	case out <- size:
	default:
		select {
		case <-out:
		default:
		}
		out <- size
	}
}
