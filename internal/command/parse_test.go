package command

import "testing"

func TestParseUppercasesNameOnly(t *testing.T) {
	cmd, ok := Parse("  echo Hello  World ")
	if !ok {
		t.Fatalf("expected command")
	}
	if cmd.Name != "ECHO" {
		t.Fatalf("unexpected name %q", cmd.Name)
	}
	if cmd.Arg(0) != "Hello" || cmd.Arg(1) != "World" || cmd.Arg(2) != "" {
		t.Fatalf("unexpected args %q", cmd.Args)
	}
	if cmd.Remainder != "Hello  World" {
		t.Fatalf("unexpected remainder %q", cmd.Remainder)
	}
	if cmd.Raw != "echo Hello  World" {
		t.Fatalf("unexpected raw %q", cmd.Raw)
	}
}

func TestParseBlank(t *testing.T) {
	if _, ok := Parse(" \t "); ok {
		t.Fatalf("expected blank input to be rejected")
	}
}

func TestParseNoArguments(t *testing.T) {
	cmd, ok := Parse("ver")
	if !ok || cmd.Name != "VER" || len(cmd.Args) != 0 || cmd.Remainder != "" {
		t.Fatalf("unexpected command %+v", cmd)
	}
	if cmd.Arg(-1) != "" {
		t.Fatalf("expected empty arg for negative index")
	}
}
