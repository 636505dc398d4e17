package console

import (
	"strings"
	"testing"
	"time"
)

func decodeKeys(t *testing.T, input string) []key {
	t.Helper()
	keys := make(chan key, 64)
	readKeys(strings.NewReader(input), keys, nil)
	var out []key
	for k := range keys {
		out = append(out, k)
	}
	return out
}

func TestReadKeysSequences(t *testing.T) {
	cases := []struct {
		input string
		want  keyKind
	}{
		{"\x1b[A", keyUp},
		{"\x1b[B", keyDown},
		{"\x1b[C", keyRight},
		{"\x1b[D", keyLeft},
		{"\x1b[H", keyHome},
		{"\x1bOF", keyEnd},
		{"\x1b[5~", keyPageUp},
		{"\x1b[6~", keyPageDown},
		{"\x1b[3~", keyDelete},
		{"\x7f", keyBackspace},
		{"\x03", keyCtrlC},
		{"\x04", keyCtrlD},
		{"\x1a", keyCtrlZ},
		{"\x1b", keyEscape},
	}
	for _, tc := range cases {
		keys := decodeKeys(t, tc.input)
		if len(keys) != 1 || keys[0].kind != tc.want {
			t.Fatalf("%q: expected kind %v, got %+v", tc.input, tc.want, keys)
		}
	}
}

func TestReadKeysCRLFIsOneEnter(t *testing.T) {
	keys := decodeKeys(t, "a\r\nb\n")
	if len(keys) != 4 {
		t.Fatalf("expected 4 keys, got %+v", keys)
	}
	if keys[0].r != 'a' || keys[1].kind != keyEnter || keys[2].r != 'b' || keys[3].kind != keyEnter {
		t.Fatalf("unexpected keys %+v", keys)
	}
}

func TestReadKeysUTF8AndTab(t *testing.T) {
	keys := decodeKeys(t, "ö\t")
	if len(keys) != 2 || keys[0].r != 'ö' || keys[1].r != ' ' {
		t.Fatalf("unexpected keys %+v", keys)
	}
}

func TestReadKeysStopsWhenDone(t *testing.T) {
	keys := make(chan key)
	done := make(chan struct{})
	close(done)
	finished := make(chan struct{})
	go func() {
		readKeys(strings.NewReader("exit\rexit\r"), keys, done)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected reader to stop without a consumer")
	}
	if _, ok := <-keys; ok {
		t.Fatalf("expected keys channel closed")
	}
}
