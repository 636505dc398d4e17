package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"serve": false, "update": false, "config": false, "doctor": false, "version": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("expected %q subcommand", name)
		}
	}
	for _, flag := range []string{"config", "plain"} {
		if root.Flags().Lookup(flag) == nil {
			t.Fatalf("expected root flag %q", flag)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "console exit", err: exitCodeError{code: 3}, want: 3},
		{name: "wrapped console exit", err: errors.Join(errors.New("ctx"), exitCodeError{code: 2}), want: 2},
		{name: "failure", err: errors.New("boom"), want: 1},
	}
	for _, tc := range tests {
		if got := exitCode(context.Background(), tc.err); got != tc.want {
			t.Fatalf("%s: exitCode = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "termclock") {
		t.Fatalf("expected module in version output, got %q", out.String())
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"config", "init", "-c", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config written: %v", err)
	}

	root = newRootCmd()
	root.SetArgs([]string{"config", "init", "-c", path})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected init to refuse overwriting without --force")
	}

	root = newRootCmd()
	out.Reset()
	root.SetOut(out)
	root.SetArgs([]string{"config", "show", "-c", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out.String(), "config_version: 1") {
		t.Fatalf("expected effective config, got %q", out.String())
	}
}
