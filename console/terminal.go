// Package console hosts core sessions: a fullscreen ANSI terminal loop for
// local ttys and SSH channels, a plain line-mode host and an SSH server.
package console

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/termclock/core"
	"pkt.systems/termclock/internal/logx"
	"pkt.systems/termclock/schema"
)

// ErrInputClosed is returned when the terminal input ends before the
// session terminated.
var ErrInputClosed = errors.New("console input closed")

const (
	defaultDisplayTick   = 500 * time.Millisecond
	defaultCountdownTick = time.Second
	defaultTitle         = "TERMINAL CLOCK"
	clockLayout          = "Mon 02.01.2006  15:04:05"
)

// Size is a terminal size in cells.
type Size struct {
	Width  int
	Height int
}

// TerminalConfig configures a fullscreen console loop.
type TerminalConfig struct {
	Session   *core.Session
	Lifecycle *Lifecycle
	In        io.Reader
	Out       io.Writer
	Theme     schema.ThemeName
	Title     string
	Size      Size
	Resize    <-chan Size
	// CloseRequests carries intercepted termination signals.
	CloseRequests <-chan os.Signal
	Now           func() time.Time
	DisplayTick   time.Duration
	CountdownTick time.Duration
}

// Terminal drives one core.Session from a key stream and paints it.
type Terminal struct {
	cfg    TerminalConfig
	screen *screen
	theme  tuiTheme
	ctx    context.Context

	width  int
	height int
	blink  bool
	dirty  bool
}

// NewTerminal validates cfg and returns a terminal.
func NewTerminal(cfg TerminalConfig) (*Terminal, error) {
	if cfg.Session == nil {
		return nil, errors.New("session is required")
	}
	if cfg.Lifecycle == nil {
		return nil, errors.New("lifecycle is required")
	}
	if cfg.In == nil || cfg.Out == nil {
		return nil, errors.New("terminal input and output are required")
	}
	if cfg.Title == "" {
		cfg.Title = defaultTitle
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DisplayTick <= 0 {
		cfg.DisplayTick = defaultDisplayTick
	}
	if cfg.CountdownTick <= 0 {
		cfg.CountdownTick = defaultCountdownTick
	}
	theme := themeForName(cfg.Theme)
	t := &Terminal{
		cfg:    cfg,
		theme:  theme,
		screen: newScreen(cfg.Out, theme.base()),
		blink:  true,
	}
	t.SetSize(cfg.Size.Width, cfg.Size.Height)
	return t, nil
}

func (t *Terminal) log() pslog.Logger {
	ctx := t.ctx
	if ctx == nil {
		ctx = logx.ContextWithSession(context.Background(), t.cfg.Session.ID())
	}
	return pslog.Ctx(ctx)
}

// SetSize updates the viewport, falling back to 80x24.
func (t *Terminal) SetSize(width, height int) {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	t.width = width
	t.height = height
}

// Run starts the session and processes input until the session terminates,
// the input ends or ctx is done. It returns the session's exit code.
func (t *Terminal) Run(ctx context.Context) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logx.ContextWithSession(ctx, t.cfg.Session.ID())
	t.ctx = ctx
	t.cfg.Lifecycle.attachFlush(t.render)

	t.screen.EnterAltScreen()
	defer t.screen.ExitAltScreen()

	t.cfg.Session.Start(ctx)
	t.render()
	t.log().Info("console start", "width", t.width, "height", t.height)

	keys := make(chan key, 16)
	done := make(chan struct{})
	defer close(done)
	go readKeys(t.cfg.In, keys, done)

	display := time.NewTicker(t.cfg.DisplayTick)
	defer display.Stop()
	resize := t.cfg.Resize
	closeRequests := t.cfg.CloseRequests
	var countdown *time.Ticker
	var countdownC <-chan time.Time
	defer func() {
		if countdown != nil {
			countdown.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return 1, ctx.Err()
		case k, ok := <-keys:
			if !ok {
				t.log().Info("console input closed")
				return 1, ErrInputClosed
			}
			t.handleKey(k)
		case size, ok := <-resize:
			if !ok {
				resize = nil
				break
			}
			t.SetSize(size.Width, size.Height)
			t.dirty = true
			t.log().Debug("console resize", "width", t.width, "height", t.height)
		case sig, ok := <-closeRequests:
			if !ok {
				closeRequests = nil
				break
			}
			t.log().Debug("close request", "signal", sig.String())
			t.cfg.Session.RequestClose(ctx)
			t.dirty = true
		case <-display.C:
			t.blink = !t.blink
			t.dirty = true
		case <-countdownC:
			t.cfg.Session.Tick(ctx)
			t.dirty = true
		}

		if countdown == nil && t.cfg.Session.State() == schema.StateCountdownActive {
			countdown = time.NewTicker(t.cfg.CountdownTick)
			countdownC = countdown.C
		}
		if code, exited := t.cfg.Lifecycle.Exited(); exited {
			t.render()
			t.log().Info("console exit", "exit_code", code)
			return code, nil
		}
		if t.dirty {
			t.render()
			t.dirty = false
		}
	}
}

func (t *Terminal) handleKey(k key) {
	s := t.cfg.Session
	switch k.kind {
	case keyRune:
		s.Insert(k.r)
	case keyEnter:
		s.Submit(t.ctx)
		t.blink = true
	case keyBackspace:
		s.Backspace()
	case keyDelete:
		s.Delete()
	case keyLeft:
		s.MoveLeft()
	case keyRight:
		s.MoveRight()
	case keyHome, keyCtrlA:
		s.MoveStart()
	case keyEnd, keyCtrlE:
		s.MoveEnd()
	case keyCtrlW:
		s.DeleteWordBackward()
	case keyCtrlU:
		s.KillLineStart()
	case keyEscape:
		s.ClearInput()
	case keyUp:
		s.HistoryUp()
	case keyDown:
		s.HistoryDown()
	case keyPageUp:
		s.Scroll(1)
	case keyPageDown:
		s.Scroll(-1)
	case keyCtrlC, keyCtrlD, keyCtrlZ:
		s.RequestClose(t.ctx)
	}
	t.dirty = true
}

// frame builds the full screen: title bar, output viewport and the prompt
// or status rows. cursorRow is 0 when the cursor is hidden.
func (t *Terminal) frame() (lines []string, cursorRow, cursorCol int) {
	width, height := t.width, t.height
	title := renderTitleBar(t.cfg.Title, t.cfg.Now().Format(clockLayout), width, t.theme)
	bodyHeight := max(0, height-1)

	view := t.cfg.Session.View(bodyHeight)
	var footer []string
	footerCursorRow, footerCursorCol := 0, 0
	switch {
	case view.Status != "":
		footer = wrapStyledLines(view.Status, width, ansiBold+ansiFgRGB(t.theme.StatusFG), t.theme.base())
	case view.ShowPrompt:
		prefix := ansiFgRGB(t.theme.PromptFG) + view.Prompt + t.theme.base()
		footer, footerCursorRow, footerCursorCol = renderInputLines(prefix, view.Input, view.Cursor, width)
	}
	if len(footer) > bodyHeight {
		footer = footer[len(footer)-bodyHeight:]
		footerCursorRow = min(footerCursorRow, len(footer))
	}

	outputRows := bodyHeight - len(footer)
	rendered := make([]string, 0, outputRows)
	for _, raw := range view.Lines {
		rendered = append(rendered, renderLines(raw, width, t.theme)...)
	}
	if len(rendered) > outputRows {
		rendered = rendered[len(rendered)-outputRows:]
	}

	lines = make([]string, 0, height)
	lines = append(lines, title)
	lines = append(lines, rendered...)
	lines = append(lines, footer...)
	if footerCursorRow > 0 && t.blink {
		cursorRow = 1 + len(rendered) + footerCursorRow
		cursorCol = footerCursorCol
	}
	return lines, cursorRow, cursorCol
}

func (t *Terminal) render() {
	lines, row, col := t.frame()
	if err := t.screen.Render(lines, row, col); err != nil {
		t.log().Debug("console render failed", "err", err)
	}
}
