package console

import (
	"strings"
	"testing"

	"pkt.systems/termclock/schema"
)

func TestRenderLinesColorsMarkers(t *testing.T) {
	theme := themeForName("dos")
	errLines := renderLines(schema.ErrorMarker+"ERROR: Missing parameter.", 80, theme)
	if len(errLines) != 1 || !strings.Contains(errLines[0], ansiFgRGB(theme.ErrorFG)) {
		t.Fatalf("expected error color, got %q", errLines)
	}
	if strings.Contains(errLines[0], schema.ErrorMarker) {
		t.Fatalf("error marker should be stripped: %q", errLines[0])
	}
	echo := renderLines(schema.EchoMarker+`C:\> dir`, 80, theme)
	if len(echo) != 1 || !strings.Contains(echo[0], ansiFgRGB(theme.EchoFG)) {
		t.Fatalf("expected echo color, got %q", echo)
	}
	plain := renderLines("hello", 80, theme)
	if len(plain) != 1 || plain[0] != "hello" {
		t.Fatalf("expected plain line untouched, got %q", plain)
	}
}

func TestWrapPlainLinesKeepsIndentAndWraps(t *testing.T) {
	lines := wrapPlainLines("  HELP  - Show this help.", 12)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %q", lines)
	}
	if !strings.HasPrefix(lines[0], "  HELP") {
		t.Fatalf("expected leading indent kept, got %q", lines[0])
	}
	for _, line := range lines {
		if visibleWidth(line) > 12 {
			t.Fatalf("line exceeds width: %q", line)
		}
	}
	long := wrapPlainLines(strings.Repeat("x", 25), 10)
	if len(long) != 3 || long[2] != "xxxxx" {
		t.Fatalf("expected hard wrap of long word, got %q", long)
	}
}

func TestSanitizeOutputLineStripsAnsiAndControl(t *testing.T) {
	got := sanitizeOutputLine("\x1b[2Jhello\rworld\x1b[0m\tend")
	if got != "helloworld    end" {
		t.Fatalf("unexpected sanitized line %q", got)
	}
}

func TestTrimANSIToWidthKeepsEscapes(t *testing.T) {
	styled := "\x1b[1mabcdef\x1b[0m"
	got := trimANSIToWidth(styled, 3)
	if visibleWidth(got) != 3 || !strings.HasPrefix(got, "\x1b[1m") {
		t.Fatalf("unexpected trim %q", got)
	}
}

func TestRenderInputLinesCursor(t *testing.T) {
	lines, row, col := renderInputLines(`C:\> `, "dir", 3, 80)
	if len(lines) != 1 || lines[0] != `C:\> dir` || row != 1 || col != 9 {
		t.Fatalf("unexpected layout %q row=%d col=%d", lines, row, col)
	}

	lines, row, col = renderInputLines(`C:\> `, "", 0, 80)
	if len(lines) != 1 || row != 1 || col != 6 {
		t.Fatalf("unexpected empty layout %q row=%d col=%d", lines, row, col)
	}

	lines, row, col = renderInputLines(`C:\> `, "abcde", 5, 10)
	if len(lines) != 2 || lines[0] != `C:\> abcde` || lines[1] != "" || row != 2 || col != 1 {
		t.Fatalf("unexpected wrap at width %q row=%d col=%d", lines, row, col)
	}

	lines, row, col = renderInputLines(`C:\> `, "abcdefgh", 2, 10)
	if len(lines) != 2 || lines[1] != "fgh" || row != 1 || col != 8 {
		t.Fatalf("unexpected mid-line cursor %q row=%d col=%d", lines, row, col)
	}
}

func TestRenderTitleBarFullWidth(t *testing.T) {
	theme := themeForName("amber")
	bar := renderTitleBar("TERMINAL CLOCK", "Mon 01.01.2024  12:00:00", 60, theme)
	if got := visibleWidth(bar); got != 60 {
		t.Fatalf("expected width 60, got %d", got)
	}
	if !strings.Contains(bar, ansiBgRGB(theme.TitleBG)) {
		t.Fatalf("expected title background")
	}
	narrow := renderTitleBar("TERMINAL CLOCK", "12:00:00", 10, theme)
	if got := visibleWidth(narrow); got != 10 {
		t.Fatalf("expected narrow width 10, got %d", got)
	}
	if !strings.Contains(narrow, "12:00:00") {
		t.Fatalf("expected clock kept when narrow, got %q", narrow)
	}
}

func TestThemeFallsBackToDefault(t *testing.T) {
	if got := themeForName("unknown").Name; got != schema.DefaultTheme {
		t.Fatalf("expected default theme, got %q", got)
	}
	if got := themeForName("phosphor").Name; got != "phosphor" {
		t.Fatalf("expected phosphor theme, got %q", got)
	}
}
