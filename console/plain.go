package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"pkt.systems/pslog"
	"pkt.systems/termclock/core"
	"pkt.systems/termclock/internal/logx"
	"pkt.systems/termclock/schema"
)

// PlainConfig configures the line-mode host used when no fullscreen
// terminal is wanted or available.
type PlainConfig struct {
	Session       *core.Session
	Lifecycle     *Lifecycle
	CloseRequests <-chan os.Signal
	// In and Out default to os.Stdin and os.Stdout.
	In            io.ReadCloser
	Out           io.Writer
	HistoryLimit  int
	CountdownTick time.Duration
}

type readResult struct {
	line string
	err  error
}

type plainHost struct {
	session *core.Session
	out     io.Writer
	mark    int
}

// RunPlain runs the session with line editing from readline and prints new
// output after every line. Ctrl+C and Ctrl+D are close requests; end of
// input exits with code 1.
func RunPlain(ctx context.Context, cfg PlainConfig) (int, error) {
	if cfg.Session == nil || cfg.Lifecycle == nil {
		return 1, errors.New("session and lifecycle are required")
	}
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.CountdownTick <= 0 {
		cfg.CountdownTick = defaultCountdownTick
	}
	ctx = logx.ContextWithSession(ctx, cfg.Session.ID())
	log := pslog.Ctx(ctx)

	rlCfg := &readline.Config{
		Prompt:              cfg.Session.View(0).Prompt,
		Stdin:               cfg.In,
		Stdout:              cfg.Out,
		InterruptPrompt:     "^C",
		HistoryLimit:        cfg.HistoryLimit,
		FuncFilterInputRune: filterCloseKeys,
	}
	if f, ok := cfg.In.(*os.File); !ok || !IsTerminal(f) {
		rlCfg.FuncIsTerminal = func() bool { return false }
		rlCfg.FuncMakeRaw = func() error { return nil }
		rlCfg.FuncExitRaw = func() error { return nil }
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return 1, fmt.Errorf("start line editor: %w", err)
	}
	defer func() { _ = rl.Close() }()
	// rl.Close waits for any read still blocked on In.
	defer func() { _ = cfg.In.Close() }()

	host := &plainHost{session: cfg.Session, out: rl.Stdout()}
	cfg.Lifecycle.attachFlush(host.flush)

	cfg.Session.Start(ctx)
	host.flush()
	log.Info("console start", "mode", "plain")

	reads := make(chan readResult)
	next := make(chan struct{}, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-next:
			}
			line, err := rl.Readline()
			select {
			case reads <- readResult{line: line, err: err}:
			case <-done:
				return
			}
		}
	}()
	next <- struct{}{}

	closeRequests := cfg.CloseRequests
	var countdownC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return 1, ctx.Err()
		case r := <-reads:
			switch {
			case errors.Is(r.err, readline.ErrInterrupt):
				cfg.Session.RequestClose(ctx)
			case r.err != nil:
				log.Info("console input closed", "err", r.err)
				return 1, ErrInputClosed
			default:
				cfg.Session.Handle(ctx, r.line)
			}
			host.flush()
			if cfg.Session.State() == schema.StateCountdownActive {
				if countdownC == nil {
					ticker := time.NewTicker(cfg.CountdownTick)
					defer ticker.Stop()
					countdownC = ticker.C
					host.status()
				}
			} else {
				rl.SetPrompt(cfg.Session.View(0).Prompt)
				next <- struct{}{}
			}
		case sig, ok := <-closeRequests:
			if !ok {
				closeRequests = nil
				break
			}
			log.Debug("close request", "signal", sig.String())
			cfg.Session.RequestClose(ctx)
			host.flush()
			rl.Refresh()
		case <-countdownC:
			cfg.Session.Tick(ctx)
			host.status()
		}
		if code, exited := cfg.Lifecycle.Exited(); exited {
			log.Info("console exit", "exit_code", code)
			return code, nil
		}
	}
}

// filterCloseKeys turns Ctrl+D into an interrupt so it reaches the session
// as a close request instead of ending the input. Only a closed input
// stream ends the console.
func filterCloseKeys(r rune) (rune, bool) {
	if r == readline.CharDelete {
		return readline.CharInterrupt, true
	}
	return r, true
}

// flush prints the output appended since the last flush. Echo lines are
// skipped since the line editor already shows what was typed.
func (p *plainHost) flush() {
	lines, mark := p.session.LinesSince(p.mark)
	p.mark = mark
	var b strings.Builder
	for _, line := range lines {
		if strings.HasPrefix(line, schema.EchoMarker) {
			continue
		}
		b.WriteString(sanitizeOutputLine(schema.StripMarkers(line)))
		b.WriteString("\n")
	}
	if b.Len() > 0 {
		_, _ = io.WriteString(p.out, b.String())
	}
}

func (p *plainHost) status() {
	if status := p.session.View(0).Status; status != "" {
		_, _ = io.WriteString(p.out, status+"\n")
	}
}
