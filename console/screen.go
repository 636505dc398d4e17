package console

import (
	"fmt"
	"io"
	"strings"
)

type screen struct {
	out io.Writer
	bg  string
}

// newScreen paints on out; base is re-applied after every line.
func newScreen(out io.Writer, base string) *screen {
	return &screen{out: out, bg: base}
}

func (s *screen) EnterAltScreen() {
	_, _ = io.WriteString(s.out, "\x1b[?1049h"+s.bg+"\x1b[H\x1b[2J")
}

func (s *screen) ExitAltScreen() {
	_, _ = io.WriteString(s.out, ansiReset+"\x1b[0 q\x1b[?1049l\x1b[?25h")
}

// Render repaints the whole frame. A cursorRow below 1 hides the cursor.
func (s *screen) Render(lines []string, cursorRow, cursorCol int) error {
	var b strings.Builder
	b.WriteString("\x1b[?25l")
	b.WriteString(s.bg)
	b.WriteString("\x1b[H\x1b[2J")
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString(line)
		b.WriteString(s.bg)
	}
	if cursorRow >= 1 {
		if cursorCol < 1 {
			cursorCol = 1
		}
		b.WriteString(fmt.Sprintf("\x1b[%d;%dH", cursorRow, cursorCol))
		b.WriteString("\x1b[4 q\x1b[?25h")
	}
	_, err := io.WriteString(s.out, b.String())
	return err
}
