package command

import (
	"strings"
)

// Command represents a parsed input line.
type Command struct {
	// Name is the first token, upper-cased.
	Name string
	// Args are the tokens after the name in their original case.
	Args []string
	Raw  string
	// Remainder is the untouched text after the name.
	Remainder string
}

// Parse splits a line into a command. ok is false for blank input.
func Parse(input string) (Command, bool) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, false
	}
	fields := strings.Fields(raw)
	name := strings.ToUpper(fields[0])
	args := []string{}
	if len(fields) > 1 {
		args = fields[1:]
	}
	return Command{
		Name:      name,
		Args:      args,
		Raw:       raw,
		Remainder: remainderAfterTokens(raw, 1),
	}, true
}

// Arg returns the i-th argument or "" when absent.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

func remainderAfterTokens(raw string, count int) string {
	i := 0
	remaining := count
	for remaining > 0 && i < len(raw) {
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		for i < len(raw) && !isSpace(raw[i]) {
			i++
		}
		remaining--
	}
	if i >= len(raw) {
		return ""
	}
	// Only the single separator after the name is dropped so ECHO keeps inner spacing.
	if isSpace(raw[i]) {
		i++
	}
	return raw[i:]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
