package schema

import (
	"errors"
	"strings"
)

// SessionConfig defines defaults and limits for a console session.
type SessionConfig struct {
	Prompt         string
	BufferMaxLines int
	ScrollStep     int
	HistoryMax     int
	Banner         bool
}

// DefaultScrollStep is the number of lines PageUp/PageDown move the view.
const DefaultScrollStep = 10

// DefaultHistoryMax bounds the input history per session.
const DefaultHistoryMax = 200

// NormalizeSessionConfig applies defaults and validates the config.
func NormalizeSessionConfig(cfg SessionConfig) (SessionConfig, error) {
	if cfg.Prompt == "" {
		cfg.Prompt = Prompt
	}
	if strings.ContainsAny(cfg.Prompt, "\r\n") {
		return SessionConfig{}, errors.New("prompt must be a single line")
	}
	if cfg.BufferMaxLines < 0 {
		return SessionConfig{}, errors.New("buffer max lines must not be negative")
	}
	if cfg.ScrollStep <= 0 {
		cfg.ScrollStep = DefaultScrollStep
	}
	if cfg.HistoryMax <= 0 {
		cfg.HistoryMax = DefaultHistoryMax
	}
	return cfg, nil
}
