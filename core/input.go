package core

// inputBuffer is the not-yet-submitted line with an edit cursor.
type inputBuffer struct {
	buf    []rune
	cursor int
}

func (e *inputBuffer) String() string {
	return string(e.buf)
}

func (e *inputBuffer) Len() int {
	return len(e.buf)
}

func (e *inputBuffer) Cursor() int {
	return e.cursor
}

func (e *inputBuffer) Clear() {
	e.buf = nil
	e.cursor = 0
}

func (e *inputBuffer) SetString(value string) {
	if value == "" {
		e.Clear()
		return
	}
	e.buf = []rune(value)
	e.cursor = len(e.buf)
}

func (e *inputBuffer) InsertRune(r rune) {
	if e.cursor < 0 {
		e.cursor = 0
	}
	if e.cursor > len(e.buf) {
		e.cursor = len(e.buf)
	}
	e.buf = append(e.buf[:e.cursor], append([]rune{r}, e.buf[e.cursor:]...)...)
	e.cursor++
}

func (e *inputBuffer) Backspace() {
	if e.cursor <= 0 {
		return
	}
	e.buf = append(e.buf[:e.cursor-1], e.buf[e.cursor:]...)
	e.cursor--
}

func (e *inputBuffer) Delete() {
	if e.cursor < 0 || e.cursor >= len(e.buf) {
		return
	}
	e.buf = append(e.buf[:e.cursor], e.buf[e.cursor+1:]...)
}

func (e *inputBuffer) MoveLeft() {
	if e.cursor > 0 {
		e.cursor--
	}
}

func (e *inputBuffer) MoveRight() {
	if e.cursor < len(e.buf) {
		e.cursor++
	}
}

func (e *inputBuffer) MoveStart() {
	e.cursor = 0
}

func (e *inputBuffer) MoveEnd() {
	e.cursor = len(e.buf)
}

func (e *inputBuffer) DeleteWordBackward() {
	if e.cursor <= 0 {
		return
	}
	start := e.cursor
	for start > 0 && isBlank(e.buf[start-1]) {
		start--
	}
	for start > 0 && !isBlank(e.buf[start-1]) {
		start--
	}
	e.buf = append(e.buf[:start], e.buf[e.cursor:]...)
	e.cursor = start
}

func (e *inputBuffer) KillLineStart() {
	if e.cursor <= 0 {
		return
	}
	e.buf = append([]rune(nil), e.buf[e.cursor:]...)
	e.cursor = 0
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t'
}
