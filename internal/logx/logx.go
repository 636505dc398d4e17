package logx

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"
	"pkt.systems/termclock/schema"
)

type contextKey int

const (
	sessionKey contextKey = iota
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithSession annotates the logger with a session id when available.
func WithSession(log pslog.Logger, sessionID schema.SessionID) pslog.Logger {
	if sessionID != "" {
		log = log.With("session", sessionID)
	}
	return log
}

// ContextWithSession attaches a session-annotated logger and the session marker
// to ctx. Annotating twice with the same id is a no-op.
func ContextWithSession(ctx context.Context, sessionID schema.SessionID) context.Context {
	if ctx == nil || sessionID == "" {
		return ctx
	}
	if current, ok := ctx.Value(sessionKey).(schema.SessionID); ok && current == sessionID {
		return ctx
	}
	log := WithSession(pslog.Ctx(ctx), sessionID)
	ctx = pslog.ContextWithLogger(ctx, log)
	return context.WithValue(ctx, sessionKey, sessionID)
}

// SessionFromContext returns the session marker stored on ctx.
func SessionFromContext(ctx context.Context) (schema.SessionID, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(sessionKey).(schema.SessionID)
	return id, ok && id != ""
}

// Options returns structured logger options for a level name
// (trace, debug, info, warn or error). Unknown names fall back to info.
func Options(level string) pslog.Options {
	opts := pslog.Options{
		Mode:    pslog.ModeStructured,
		NoColor: true,
	}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		opts.MinLevel = pslog.TraceLevel
	case "debug":
		opts.MinLevel = pslog.DebugLevel
	case "warn", "warning":
		opts.MinLevel = pslog.WarnLevel
	case "error":
		opts.MinLevel = pslog.ErrorLevel
	default:
		opts.MinLevel = pslog.InfoLevel
	}
	return opts
}

// OpenFile returns a structured logger appending to path. The fullscreen
// console owns the terminal, so it logs here instead of stderr.
func OpenFile(path, level string) (pslog.Logger, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil, fmt.Errorf("log file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return pslog.NewWithOptions(file, Options(level)), file, nil
}
