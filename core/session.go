package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pkt.systems/pslog"
	"pkt.systems/termclock/internal/logx"
	"pkt.systems/termclock/schema"
)

// Session holds the output buffer, input line and interpreter state of one
// running console. It is owned by a single event loop and is not safe for
// concurrent use.
type Session struct {
	id   schema.SessionID
	cfg  schema.SessionConfig
	deps SessionDeps

	buffer  *buffer
	input   inputBuffer
	history *historyBuffer

	state      schema.SessionState
	countdown  int
	terminated bool
}

// View is what a host needs to paint one frame.
type View struct {
	Lines        []string
	TotalLines   int
	ScrollOffset int
	AtBottom     bool
	State        schema.SessionState
	Prompt       string
	Input        string
	Cursor       int
	// ShowPrompt is false while scrolled back or counting down.
	ShowPrompt bool
	// Status replaces the prompt line while counting down.
	Status string
}

// NewSession constructs a session in the Normal state.
func NewSession(id schema.SessionID, cfg schema.SessionConfig, deps SessionDeps) (*Session, error) {
	if deps.Interpreter == nil {
		return nil, errors.New("interpreter is required")
	}
	cfg, err := schema.NormalizeSessionConfig(cfg)
	if err != nil {
		return nil, err
	}
	if deps.Lockdown == nil {
		deps.Lockdown = nopToggle{}
	}
	if deps.Autostart == nil {
		deps.Autostart = nopToggle{}
	}
	if deps.Lifecycle == nil {
		deps.Lifecycle = nopLifecycle{}
	}
	return &Session{
		id:      id,
		cfg:     cfg,
		deps:    deps,
		buffer:  newBuffer(cfg.BufferMaxLines),
		history: newHistory(cfg.HistoryMax),
		state:   schema.StateNormal,
	}, nil
}

func (s *Session) log(ctx context.Context) pslog.Logger {
	if s.deps.Logger != nil {
		return logx.WithSession(s.deps.Logger, s.id)
	}
	if id, ok := logx.SessionFromContext(ctx); ok && id == s.id {
		return pslog.Ctx(ctx)
	}
	return logx.WithSession(pslog.Ctx(ctx), s.id)
}

// ID returns the session id.
func (s *Session) ID() schema.SessionID { return s.id }

// State returns the current interpreter state.
func (s *Session) State() schema.SessionState { return s.state }

// Countdown returns the remaining countdown seconds.
func (s *Session) Countdown() int { return s.countdown }

// Terminated reports whether termination has been requested.
func (s *Session) Terminated() bool { return s.terminated }

// Lines returns every line in the output buffer.
func (s *Session) Lines() []string {
	return append([]string(nil), s.buffer.lines...)
}

// LinesSince returns the output appended since mark and the next mark.
// Hosts that print incrementally start with mark 0.
func (s *Session) LinesSince(mark int) ([]string, int) {
	return s.buffer.Since(mark)
}

// Start prints the banner and arms the platform toggles.
func (s *Session) Start(ctx context.Context) {
	if s.cfg.Banner {
		s.buffer.Append(schema.Banner...)
	}
	log := s.log(ctx)
	if err := s.deps.Lockdown.Enable(); err != nil {
		log.Warn("lockdown enable failed", "err", err)
	}
	if err := s.deps.Autostart.Enable(); err != nil {
		log.Warn("autostart registration failed", "err", err)
	}
	log.Info("session started")
}

// Submit takes the current input line, clears it and handles it.
func (s *Session) Submit(ctx context.Context) {
	if s.state == schema.StateCountdownActive {
		return
	}
	line := s.input.String()
	s.input.Clear()
	if s.state == schema.StateNormal {
		s.history.Append(strings.TrimSpace(line))
	}
	s.Handle(ctx, line)
}

// Handle interprets one submitted line according to the current state.
func (s *Session) Handle(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	log := s.log(ctx)
	switch s.state {
	case schema.StateCountdownActive:
		log.Trace("input ignored", "reason", "countdown active")
		return
	case schema.StateAwaitingUpdateConfirmation:
		s.echo(line)
		s.handleConfirmation(ctx, line)
		return
	}

	s.echo(line)
	result := s.deps.Interpreter.Execute(logx.ContextWithSession(ctx, s.id), line)
	if len(result.Lines) > 0 {
		s.buffer.Append(result.Lines...)
	}
	switch result.Action {
	case schema.ActionClear:
		s.buffer.Clear()
	case schema.ActionCheckUpdate:
		s.checkForUpdate(ctx)
	case schema.ActionExit:
		s.startCountdown(ctx)
	}
}

// Tick advances the countdown by one second. Termination is requested
// exactly once, on the tick that reaches zero.
func (s *Session) Tick(ctx context.Context) {
	if s.state != schema.StateCountdownActive || s.terminated {
		return
	}
	if s.countdown > 0 {
		s.countdown--
	}
	if s.countdown > 0 {
		return
	}
	s.terminated = true
	log := s.log(ctx)
	if err := s.deps.Lockdown.Disable(); err != nil {
		log.Warn("lockdown disable failed", "err", err)
	}
	log.Info("countdown finished", "exit_code", 0)
	s.deps.Lifecycle.Terminate(0)
}

// RequestClose handles an attempt to close the console from outside the
// interpreter. Only the countdown may end the process, so outside the
// countdown the request is rejected with a message.
func (s *Session) RequestClose(ctx context.Context) {
	if s.state == schema.StateCountdownActive {
		return
	}
	s.input.Clear()
	s.buffer.Append(schema.ErrorMarker + s.cfg.Prompt + "ERROR: This application can only be closed with the 'EXIT' command.")
	s.log(ctx).Info("close request rejected", "state", s.state)
}

// Scroll moves the view by steps pages of ScrollStep lines; positive is back in history.
func (s *Session) Scroll(steps int) {
	s.buffer.ScrollBy(steps * s.cfg.ScrollStep)
}

func (s *Session) editable() bool {
	return s.state != schema.StateCountdownActive
}

// Insert types r at the cursor.
func (s *Session) Insert(r rune) {
	if !s.editable() {
		return
	}
	s.input.InsertRune(r)
}

// Backspace deletes the rune before the cursor.
func (s *Session) Backspace() {
	if s.editable() {
		s.input.Backspace()
	}
}

// Delete deletes the rune under the cursor.
func (s *Session) Delete() {
	if s.editable() {
		s.input.Delete()
	}
}

func (s *Session) MoveLeft() {
	if s.editable() {
		s.input.MoveLeft()
	}
}

func (s *Session) MoveRight() {
	if s.editable() {
		s.input.MoveRight()
	}
}

func (s *Session) MoveStart() {
	if s.editable() {
		s.input.MoveStart()
	}
}

func (s *Session) MoveEnd() {
	if s.editable() {
		s.input.MoveEnd()
	}
}

func (s *Session) DeleteWordBackward() {
	if s.editable() {
		s.input.DeleteWordBackward()
	}
}

func (s *Session) KillLineStart() {
	if s.editable() {
		s.input.KillLineStart()
	}
}

// ClearInput discards the current input line.
func (s *Session) ClearInput() {
	if s.editable() {
		s.input.Clear()
	}
}

// HistoryUp replaces the input with the previous history entry.
func (s *Session) HistoryUp() {
	if s.state != schema.StateNormal {
		return
	}
	if entry, ok := s.history.Prev(s.input.String()); ok {
		s.input.SetString(entry)
	}
}

// HistoryDown replaces the input with the next history entry or the draft.
func (s *Session) HistoryDown() {
	if s.state != schema.StateNormal {
		return
	}
	if entry, ok := s.history.Next(); ok {
		s.input.SetString(entry)
	}
}

// View returns the frame for a viewport of limit output lines.
func (s *Session) View(limit int) View {
	snap := s.buffer.Snapshot(limit)
	view := View{
		Lines:        snap.Lines,
		TotalLines:   snap.TotalLines,
		ScrollOffset: snap.ScrollOffset,
		AtBottom:     snap.AtBottom,
		State:        s.state,
		Prompt:       s.cfg.Prompt,
		Input:        s.input.String(),
		Cursor:       s.input.Cursor(),
	}
	switch {
	case s.state == schema.StateCountdownActive:
		view.Status = countdownStatus(s.countdown)
	case snap.AtBottom:
		view.ShowPrompt = true
	}
	return view
}

func countdownStatus(remaining int) string {
	if remaining > 0 {
		return fmt.Sprintf("EXIT.BAT: Termination in %d second(s)...", remaining)
	}
	return "EXIT.BAT: SYSTEM SHUTDOWN. Goodbye."
}

func (s *Session) echo(line string) {
	s.buffer.Append(schema.EchoMarker + s.cfg.Prompt + line)
}

func (s *Session) appendError(message string) {
	s.buffer.Append(schema.ErrorMarker + "ERROR: " + message)
}

func (s *Session) startCountdown(ctx context.Context) {
	s.state = schema.StateCountdownActive
	s.countdown = schema.CountdownSeconds
	s.input.Clear()
	s.buffer.Append("EXIT.BAT: Termination started. Please wait...")
	s.log(ctx).Info("countdown started", "seconds", s.countdown)
}

func (s *Session) checkForUpdate(ctx context.Context) {
	log := s.log(ctx)
	s.buffer.Append("Checking for updates...")
	if s.deps.Updater == nil {
		s.appendError(schema.ErrUpdateUnavailable.Error())
		return
	}
	check := s.deps.Updater.CheckForUpdate(ctx)
	switch check.Status {
	case schema.UpdateAvailable:
		s.buffer.Append(
			fmt.Sprintf("Update found! (%d bytes, installed %d bytes)", check.RemoteSize, check.LocalSize),
			"Do you want to update now? (Y/N)",
		)
		s.state = schema.StateAwaitingUpdateConfirmation
		log.Info("update available", "remote_size", check.RemoteSize, "local_size", check.LocalSize)
	case schema.UpdateUpToDate:
		s.buffer.Append("Your version is up to date.")
		log.Info("update check up to date", "size", check.LocalSize)
	default:
		reason := "unknown error"
		if check.Err != nil {
			reason = check.Err.Error()
		}
		s.appendError("update check failed: " + reason)
		log.Warn("update check failed", "err", check.Err)
	}
}

func (s *Session) handleConfirmation(ctx context.Context, answer string) {
	yes, ok := schema.NormalizeYesNo(answer)
	if !ok {
		s.buffer.Append("Please enter 'Y' or 'N'.")
		return
	}
	s.state = schema.StateNormal
	if !yes {
		s.buffer.Append("Update cancelled.")
		s.log(ctx).Info("update cancelled")
		return
	}
	s.performUpdate(ctx)
}

func (s *Session) performUpdate(ctx context.Context) {
	log := s.log(ctx)
	if s.deps.Updater == nil {
		s.appendError(schema.ErrUpdateUnavailable.Error())
		return
	}
	s.buffer.Append("Downloading update...")
	if err := s.deps.Updater.PerformUpdate(ctx); err != nil {
		if errors.Is(err, schema.ErrRollbackFailed) {
			s.buffer.Append(schema.ErrorMarker + "FATAL: " + err.Error())
			log.Error("update rollback failed", "err", err)
			return
		}
		s.appendError(err.Error())
		log.Warn("update failed", "err", err)
		return
	}
	s.buffer.Append("Update successful! The application will now restart...")
	log.Info("update installed")

	if err := s.deps.Lockdown.Disable(); err != nil {
		log.Warn("lockdown disable failed", "err", err)
	}
	if err := s.deps.Lifecycle.Restart(ctx); err != nil {
		if err := s.deps.Lockdown.Enable(); err != nil {
			log.Warn("lockdown enable failed", "err", err)
		}
		s.appendError("Restart failed. Please restart manually.")
		log.Warn("restart failed", "err", err)
	}
}
