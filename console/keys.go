package console

import (
	"bufio"
	"io"
	"unicode"
	"unicode/utf8"
)

type keyKind int

const (
	keyRune keyKind = iota
	keyEnter
	keyBackspace
	keyDelete
	keyLeft
	keyRight
	keyHome
	keyEnd
	keyUp
	keyDown
	keyPageUp
	keyPageDown
	keyCtrlA
	keyCtrlE
	keyCtrlU
	keyCtrlW
	keyCtrlC
	keyCtrlD
	keyCtrlZ
	keyEscape
)

type key struct {
	kind keyKind
	r    rune
}

type keyReader struct {
	br      *bufio.Reader
	out     chan<- key
	done    <-chan struct{}
	stopped bool
}

func (kr *keyReader) emit(k key) {
	if kr.stopped {
		return
	}
	select {
	case kr.out <- k:
	case <-kr.done:
		kr.stopped = true
	}
}

// readKeys decodes terminal input into keys until r fails or done is
// closed. out is closed on return.
func readKeys(r io.Reader, out chan<- key, done <-chan struct{}) {
	defer close(out)
	kr := &keyReader{br: bufio.NewReader(r), out: out, done: done}
	br := kr.br
	lastWasCR := false
	for !kr.stopped {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		if lastWasCR {
			lastWasCR = false
			if b == '\n' {
				continue
			}
		}
		switch b {
		case 0x1b:
			kr.readEscape()
		case '\r':
			kr.emit(key{kind: keyEnter})
			lastWasCR = true
		case '\n':
			kr.emit(key{kind: keyEnter})
		case 0x7f, 0x08:
			kr.emit(key{kind: keyBackspace})
		case 0x01:
			kr.emit(key{kind: keyCtrlA})
		case 0x05:
			kr.emit(key{kind: keyCtrlE})
		case 0x15:
			kr.emit(key{kind: keyCtrlU})
		case 0x17:
			kr.emit(key{kind: keyCtrlW})
		case 0x03:
			kr.emit(key{kind: keyCtrlC})
		case 0x04:
			kr.emit(key{kind: keyCtrlD})
		case 0x1a:
			kr.emit(key{kind: keyCtrlZ})
		case 0x09:
			kr.emit(key{kind: keyRune, r: ' '})
		default:
			if b < 0x20 {
				continue
			}
			if b < utf8.RuneSelf {
				kr.emit(key{kind: keyRune, r: rune(b)})
				continue
			}
			_ = br.UnreadByte()
			rn, _, err := br.ReadRune()
			if err != nil {
				return
			}
			if rn == utf8.RuneError {
				continue
			}
			kr.emit(key{kind: keyRune, r: rn})
		}
	}
}

func (kr *keyReader) readEscape() {
	br := kr.br
	if br.Buffered() == 0 {
		kr.emit(key{kind: keyEscape})
		return
	}
	b, err := br.ReadByte()
	if err != nil {
		return
	}
	switch b {
	case '[':
		kr.readCSI()
	case 'O':
		kr.readSS3()
	case 0x1b:
		kr.emit(key{kind: keyEscape})
		_ = br.UnreadByte()
	}
}

func (kr *keyReader) readCSI() {
	br := kr.br
	seq := []byte{}
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		seq = append(seq, b)
		if b == '~' || unicode.IsLetter(rune(b)) {
			break
		}
		if len(seq) > 8 {
			return
		}
	}
	switch string(seq) {
	case "A":
		kr.emit(key{kind: keyUp})
	case "B":
		kr.emit(key{kind: keyDown})
	case "C":
		kr.emit(key{kind: keyRight})
	case "D":
		kr.emit(key{kind: keyLeft})
	case "H", "1~", "7~":
		kr.emit(key{kind: keyHome})
	case "F", "4~", "8~":
		kr.emit(key{kind: keyEnd})
	case "5~":
		kr.emit(key{kind: keyPageUp})
	case "6~":
		kr.emit(key{kind: keyPageDown})
	case "3~":
		kr.emit(key{kind: keyDelete})
	}
}

func (kr *keyReader) readSS3() {
	br := kr.br
	b, err := br.ReadByte()
	if err != nil {
		return
	}
	switch b {
	case 'A':
		kr.emit(key{kind: keyUp})
	case 'B':
		kr.emit(key{kind: keyDown})
	case 'C':
		kr.emit(key{kind: keyRight})
	case 'D':
		kr.emit(key{kind: keyLeft})
	case 'H':
		kr.emit(key{kind: keyHome})
	case 'F':
		kr.emit(key{kind: keyEnd})
	}
}
