package core

import (
	"strings"
	"testing"
)

func TestBufferAppendSplitsOnLineBreaks(t *testing.T) {
	b := newBuffer(0)
	b.Append("one\ntwo", "three\r\nfour\rfive", "")
	want := []string{"one", "two", "three", "four", "five", ""}
	if b.Len() != len(want) {
		t.Fatalf("expected %d lines, got %d (%+v)", len(want), b.Len(), b.lines)
	}
	for i := range want {
		if b.lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], b.lines[i])
		}
	}
}

func TestBufferLineCountMatchesSegments(t *testing.T) {
	texts := []string{"a", "b\nc", "\n", "d\r\ne\nf", "", "g\rh"}
	b := newBuffer(0)
	expected := 0
	for _, text := range texts {
		b.Append(text)
		expected += len(strings.Split(strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n"), "\n"))
		if b.Len() != expected {
			t.Fatalf("after %q: expected %d lines, got %d", text, expected, b.Len())
		}
	}
}

func TestBufferAppendResetsScroll(t *testing.T) {
	b := newBuffer(0)
	b.Append("one", "two", "three", "four", "five")
	b.ScrollBy(2)
	if b.ScrollOffset() != 2 {
		t.Fatalf("expected scroll offset 2, got %d", b.ScrollOffset())
	}
	b.Append("six")
	if b.ScrollOffset() != 0 {
		t.Fatalf("expected scroll offset 0 after append, got %d", b.ScrollOffset())
	}
}

func TestBufferScrollClampsToBounds(t *testing.T) {
	deltas := []int{-100, -1, 0, 1, 3, 4, 5, 10, 1000}
	for _, total := range []int{0, 1, 2, 5} {
		for _, delta := range deltas {
			b := newBuffer(0)
			for i := 0; i < total; i++ {
				b.Append("line")
			}
			b.ScrollBy(delta)
			max := total - 1
			if max < 0 {
				max = 0
			}
			if b.ScrollOffset() < 0 || b.ScrollOffset() > max {
				t.Fatalf("total=%d delta=%d: offset %d outside [0,%d]", total, delta, b.ScrollOffset(), max)
			}
		}
	}

	b := newBuffer(0)
	b.Append("one", "two", "three", "four", "five")
	b.ScrollBy(10)
	if b.ScrollOffset() != 4 {
		t.Fatalf("expected scroll offset 4, got %d", b.ScrollOffset())
	}
	b.ScrollBy(-10)
	if b.ScrollOffset() != 0 {
		t.Fatalf("expected scroll offset 0, got %d", b.ScrollOffset())
	}
}

func TestBufferClear(t *testing.T) {
	b := newBuffer(0)
	b.Append("one", "two", "three")
	b.ScrollBy(1)
	b.Clear()
	if b.Len() != 0 || b.ScrollOffset() != 0 {
		t.Fatalf("expected empty buffer at bottom, got len=%d offset=%d", b.Len(), b.ScrollOffset())
	}
}

func TestBufferSnapshotWindow(t *testing.T) {
	b := newBuffer(0)
	b.Append("one", "two", "three", "four", "five")

	view := b.Snapshot(3)
	if !view.AtBottom || len(view.Lines) != 3 || view.Lines[0] != "three" || view.Lines[2] != "five" {
		t.Fatalf("unexpected bottom view: %+v", view)
	}

	b.ScrollBy(2)
	view = b.Snapshot(3)
	if view.AtBottom {
		t.Fatalf("expected view not at bottom")
	}
	if len(view.Lines) != 3 || view.Lines[0] != "one" || view.Lines[2] != "three" {
		t.Fatalf("unexpected scrolled view: %+v", view.Lines)
	}

	b.ScrollBy(2)
	view = b.Snapshot(3)
	if len(view.Lines) != 1 || view.Lines[0] != "one" {
		t.Fatalf("expected only oldest line at max scroll, got %+v", view.Lines)
	}
	if view.TotalLines != 5 {
		t.Fatalf("expected total 5, got %d", view.TotalLines)
	}
}

func TestBufferRespectsMaxLines(t *testing.T) {
	b := newBuffer(3)
	b.Append("one", "two", "three", "four", "five")
	view := b.Snapshot(10)
	if view.TotalLines != 3 {
		t.Fatalf("expected total lines 3, got %d", view.TotalLines)
	}
	if view.Lines[0] != "three" || view.Lines[2] != "five" {
		t.Fatalf("unexpected lines: %+v", view.Lines)
	}
}

func TestBufferSinceTracksTrimAndClear(t *testing.T) {
	b := newBuffer(3)
	b.Append("one", "two")
	lines, mark := b.Since(0)
	if len(lines) != 2 || mark != 2 {
		t.Fatalf("unexpected first read %q mark %d", lines, mark)
	}

	b.Append("three", "four", "five")
	lines, mark = b.Since(mark)
	if len(lines) != 3 || lines[0] != "three" || mark != 5 {
		t.Fatalf("unexpected read after trim %q mark %d", lines, mark)
	}

	b.Clear()
	b.Append("six")
	lines, mark = b.Since(mark)
	if len(lines) != 1 || lines[0] != "six" || mark != 6 {
		t.Fatalf("unexpected read after clear %q mark %d", lines, mark)
	}
	if lines, _ := b.Since(mark); len(lines) != 0 {
		t.Fatalf("expected nothing new, got %q", lines)
	}
}
