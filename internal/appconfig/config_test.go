package appconfig

import (
	"testing"

	"pkt.systems/termclock/schema"
)

func TestDefaultConfigSessionSettings(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	session := cfg.SessionConfig()
	if session.Prompt != schema.Prompt {
		t.Fatalf("expected default prompt, got %q", session.Prompt)
	}
	if session.BufferMaxLines != 0 {
		t.Fatalf("expected unlimited buffer by default, got %d", session.BufferMaxLines)
	}
	if session.ScrollStep != 10 {
		t.Fatalf("expected scroll step 10, got %d", session.ScrollStep)
	}
	if cfg.Update.RestartDelay().Seconds() != 2 {
		t.Fatalf("expected 2s restart delay, got %v", cfg.Update.RestartDelay())
	}
	if !cfg.Platform.Lockdown || cfg.Platform.Autostart {
		t.Fatalf("expected lockdown on and autostart off, got %+v", cfg.Platform)
	}
}
