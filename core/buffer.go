package core

import "strings"

// BufferView is a snapshot of the output buffer's visible state.
type BufferView struct {
	Lines        []string
	TotalLines   int
	ScrollOffset int
	AtBottom     bool
}

// buffer stores output lines and scroll state.
// scrollOffset is the number of lines back from the newest line; 0 means at bottom.
// base counts the lines dropped by trimming or clearing, so base+i is the
// absolute position of lines[i] since the buffer was created.
type buffer struct {
	lines        []string
	scrollOffset int
	maxLines     int
	base         int
}

// newBuffer returns a buffer. maxLines <= 0 keeps every line.
func newBuffer(maxLines int) *buffer {
	if maxLines < 0 {
		maxLines = 0
	}
	return &buffer{maxLines: maxLines}
}

// Append splits each text on line breaks, appends the segments and returns
// the view to the bottom.
func (b *buffer) Append(texts ...string) {
	for _, text := range texts {
		b.lines = append(b.lines, splitLines(text)...)
	}
	b.scrollOffset = 0
	if b.maxLines > 0 && len(b.lines) > b.maxLines {
		trim := len(b.lines) - b.maxLines
		b.lines = append([]string(nil), b.lines[trim:]...)
		b.base += trim
	}
}

// Clear drops every line and resets the scroll offset.
func (b *buffer) Clear() {
	b.base += len(b.lines)
	b.lines = nil
	b.scrollOffset = 0
}

// ScrollBy adjusts the scroll offset by delta. Positive delta scrolls back
// to older lines, negative delta towards the newest line.
func (b *buffer) ScrollBy(delta int) {
	b.scrollOffset = clampScroll(b.scrollOffset+delta, len(b.lines))
}

// Since returns the lines appended at or after absolute position mark that
// are still stored, and the mark to pass next time.
func (b *buffer) Since(mark int) ([]string, int) {
	start := max(0, mark-b.base)
	next := b.base + len(b.lines)
	if start >= len(b.lines) {
		return nil, next
	}
	return append([]string(nil), b.lines[start:]...), next
}

// Len returns the number of stored lines.
func (b *buffer) Len() int {
	return len(b.lines)
}

// ScrollOffset returns the current distance from the newest line.
func (b *buffer) ScrollOffset() int {
	return b.scrollOffset
}

// Snapshot returns at most limit lines ending scrollOffset lines before the
// newest one. limit <= 0 returns every line up to that point.
func (b *buffer) Snapshot(limit int) BufferView {
	total := len(b.lines)
	b.scrollOffset = clampScroll(b.scrollOffset, total)

	end := total - b.scrollOffset
	start := 0
	if limit > 0 && end-limit > 0 {
		start = end - limit
	}

	lines := make([]string, end-start)
	copy(lines, b.lines[start:end])

	return BufferView{
		Lines:        lines,
		TotalLines:   total,
		ScrollOffset: b.scrollOffset,
		AtBottom:     b.scrollOffset == 0,
	}
}

func maxScroll(total int) int {
	if total <= 1 {
		return 0
	}
	return total - 1
}

func clampScroll(offset, total int) int {
	max := maxScroll(total)
	if offset < 0 {
		return 0
	}
	if offset > max {
		return max
	}
	return offset
}

// splitLines splits on \r\n, \n and \r. An empty text yields one empty line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
