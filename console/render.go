package console

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"pkt.systems/termclock/schema"
)

type lineKind int

const (
	linePlain lineKind = iota
	lineError
	lineEcho
)

func classifyLine(raw string) (lineKind, string) {
	switch {
	case strings.HasPrefix(raw, schema.ErrorMarker):
		return lineError, raw[len(schema.ErrorMarker):]
	case strings.HasPrefix(raw, schema.EchoMarker):
		return lineEcho, raw[len(schema.EchoMarker):]
	default:
		return linePlain, raw
	}
}

// renderLines wraps one buffer line to width and colors it by its marker.
func renderLines(raw string, width int, theme tuiTheme) []string {
	if width <= 0 {
		return []string{""}
	}
	kind, text := classifyLine(raw)
	switch kind {
	case lineError:
		return wrapStyledLines(text, width, ansiBold+ansiFgRGB(theme.ErrorFG), theme.base())
	case lineEcho:
		return wrapStyledLines(text, width, ansiFgRGB(theme.EchoFG), theme.base())
	default:
		return wrapPlainLines(text, width)
	}
}

// renderTitleBar draws a full-width bar with title on the left and clock on the right.
func renderTitleBar(title, clock string, width int, theme tuiTheme) string {
	if width <= 0 {
		return ""
	}
	left := " " + title
	right := clock + " "
	gap := width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	var text string
	if gap < 1 {
		text = trimToWidth(right, width)
		if pad := width - utf8.RuneCountInString(text); pad > 0 {
			text = strings.Repeat(" ", pad) + text
		}
	} else {
		text = left + strings.Repeat(" ", gap) + right
	}
	return ansiBold + ansiBgRGB(theme.TitleBG) + ansiFgRGB(theme.TitleFG) + text + theme.base()
}

type textToken struct {
	text  string
	space bool
}

func tokenizeText(text string) []textToken {
	if text == "" {
		return nil
	}
	var tokens []textToken
	var buf strings.Builder
	inSpace := false
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		tokens = append(tokens, textToken{text: buf.String(), space: inSpace})
		buf.Reset()
	}
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !inSpace {
				flush()
				inSpace = true
			}
			buf.WriteRune(' ')
			continue
		}
		if inSpace {
			flush()
			inSpace = false
		}
		buf.WriteRune(r)
	}
	flush()
	return tokens
}

func wrapPlainLines(text string, width int) []string {
	if width <= 0 {
		return []string{""}
	}
	sanitized := sanitizeOutputLine(text)
	if sanitized == "" {
		return []string{""}
	}
	tokens := tokenizeText(sanitized)
	lines := make([]string, 0, 4)
	var b strings.Builder
	visible := 0
	suppressLeadingSpace := false
	flush := func(wrapped bool) {
		if b.Len() == 0 {
			return
		}
		lines = append(lines, trimToWidth(b.String(), width))
		b.Reset()
		visible = 0
		suppressLeadingSpace = wrapped
	}
	for _, token := range tokens {
		if token.text == "" {
			continue
		}
		if token.space {
			if visible == 0 && suppressLeadingSpace {
				continue
			}
			spaceLen := len([]rune(token.text))
			if visible+spaceLen > width {
				flush(true)
				continue
			}
			b.WriteString(token.text)
			visible += spaceLen
			continue
		}
		wordRunes := []rune(token.text)
		wordLen := len(wordRunes)
		if wordLen > width {
			if visible > 0 {
				flush(true)
			}
			for start := 0; start < wordLen; start += width {
				end := min(start+width, wordLen)
				b.WriteString(string(wordRunes[start:end]))
				visible += end - start
				if visible >= width {
					flush(true)
				}
			}
			continue
		}
		if visible+wordLen > width && visible > 0 {
			flush(true)
		}
		b.WriteString(token.text)
		visible += wordLen
		suppressLeadingSpace = false
	}
	flush(false)
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

func wrapStyledLines(text string, width int, style, reset string) []string {
	lines := wrapPlainLines(text, width)
	if len(lines) == 1 && lines[0] == "" {
		return lines
	}
	styled := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			styled = append(styled, line)
			continue
		}
		styled = append(styled, style+line+reset)
	}
	return styled
}

// renderInputLines lays out prefix+input over as many rows as needed and
// returns the 1-based cursor position relative to the first row.
func renderInputLines(prefix, input string, cursor, width int) ([]string, int, int) {
	inputRunes := []rune(input)
	cursor = max(0, min(cursor, len(inputRunes)))
	prefixWidth := visibleWidth(prefix)
	if width <= 0 {
		width = prefixWidth + len(inputRunes) + 1
	}
	prefixVisible := prefix
	if prefixWidth > width {
		prefixVisible = trimANSIToWidth(prefix, width)
		prefixWidth = visibleWidth(prefixVisible)
	}
	availableFirst := max(1, width-prefixWidth)

	lines := []string{}
	lineRunes := make([]rune, 0, availableFirst)
	row := 0
	col := 0
	cursorRow := 1
	cursorCol := prefixWidth + 1
	currentAvailable := availableFirst
	rowStart := prefixWidth

	flushLine := func() {
		head := prefixVisible
		if row > 0 {
			head = ""
		}
		lines = append(lines, head+string(lineRunes))
		row++
		lineRunes = lineRunes[:0]
		col = 0
		currentAvailable = width
		rowStart = 0
	}

	for i, r := range inputRunes {
		if col >= currentAvailable {
			flushLine()
		}
		if i == cursor {
			cursorRow = row + 1
			cursorCol = rowStart + col + 1
		}
		lineRunes = append(lineRunes, r)
		col++
	}
	if cursor == len(inputRunes) {
		if col >= currentAvailable {
			flushLine()
		}
		cursorRow = row + 1
		cursorCol = rowStart + col + 1
	}
	if len(lineRunes) > 0 || row == 0 || cursorRow > row {
		flushLine()
	}
	cursorCol = max(1, min(cursorCol, width))
	return lines, cursorRow, cursorCol
}

func sanitizeOutputLine(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(text); {
		ch := text[i]
		if ch == 0x1b {
			i = skipEscape(text, i+1)
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			i++
			continue
		}
		if r == '\t' {
			b.WriteString("    ")
			i += size
			continue
		}
		if r < 0x20 || r == 0x7f {
			i += size
			continue
		}
		b.WriteRune(r)
		i += size
	}
	return b.String()
}

func skipEscape(text string, i int) int {
	if i >= len(text) {
		return i
	}
	switch text[i] {
	case '[':
		return skipCSI(text, i+1)
	case ']':
		return skipOSC(text, i+1)
	default:
		return i + 1
	}
}

func skipCSI(text string, i int) int {
	for i < len(text) {
		b := text[i]
		if b >= 0x40 && b <= 0x7e {
			return i + 1
		}
		i++
	}
	return i
}

func skipOSC(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case 0x07:
			return i + 1
		case 0x1b:
			if i+1 < len(text) && text[i+1] == '\\' {
				return i + 2
			}
		}
		i++
	}
	return i
}

func visibleWidth(text string) int {
	width := 0
	for i := 0; i < len(text); {
		if text[i] == 0x1b {
			i = skipEscape(text, i+1)
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 {
			break
		}
		i += size
		width++
	}
	return width
}

func trimANSIToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	visible := 0
	for i := 0; i < len(text); {
		if text[i] == 0x1b {
			start := i
			i = skipEscape(text, i+1)
			b.WriteString(text[start:i])
			continue
		}
		if visible >= width {
			break
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 {
			break
		}
		b.WriteRune(r)
		i += size
		visible++
	}
	return b.String()
}

func trimToWidth(value string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	return string(runes[:width])
}
