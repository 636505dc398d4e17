package core

import "strings"

// historyBuffer keeps submitted lines and a browse cursor.
// index == len(entries) means the user is editing a fresh line.
type historyBuffer struct {
	entries []string
	max     int
	index   int
	draft   string
}

func newHistory(max int) *historyBuffer {
	if max <= 0 {
		max = 200
	}
	return &historyBuffer{max: max}
}

// Append records entry and resets browsing. Blank lines and immediate
// repeats are not recorded.
func (h *historyBuffer) Append(entry string) bool {
	defer h.reset()
	if strings.TrimSpace(entry) == "" {
		return false
	}
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == entry {
		return false
	}
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
	return true
}

// Prev moves to the previous entry. current is the line being edited and is
// kept as the draft when browsing starts.
func (h *historyBuffer) Prev(current string) (string, bool) {
	if len(h.entries) == 0 || h.index == 0 {
		return "", false
	}
	if h.index == len(h.entries) {
		h.draft = current
	}
	h.index--
	return h.entries[h.index], true
}

// Next moves towards the newest entry and finally back to the draft.
func (h *historyBuffer) Next() (string, bool) {
	if h.index >= len(h.entries) {
		return "", false
	}
	h.index++
	if h.index == len(h.entries) {
		return h.draft, true
	}
	return h.entries[h.index], true
}

func (h *historyBuffer) Entries() []string {
	return append([]string(nil), h.entries...)
}

func (h *historyBuffer) reset() {
	h.index = len(h.entries)
	h.draft = ""
}
