package vt

import "testing"

func TestVisibleIsRowMajor(t *testing.T) {
	e := New(2, 3)
	e.Write([]byte("ab\r\ncd"))
	var got []GridCell
	for gc := range e.Visible() {
		got = append(got, gc)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 cells, got %d", len(got))
	}
	for i, gc := range got {
		if gc.Line != i/3 || gc.Column != i%3 {
			t.Fatalf("cell %d at (%d,%d), want (%d,%d)", i, gc.Line, gc.Column, i/3, i%3)
		}
	}
	if got[0].Cell.Ch != 'a' || got[4].Cell.Ch != 'd' {
		t.Fatalf("unexpected content %q %q", got[0].Cell.Ch, got[4].Cell.Ch)
	}
}

func TestVisibleSkipsWideSpacer(t *testing.T) {
	e := New(1, 3)
	e.Write([]byte("世"))
	n := 0
	for range e.Visible() {
		n++
	}
	if n != 2 {
		t.Fatalf("expected 2 cells with the spacer skipped, got %d", n)
	}
}

func TestScrollShowsScrollbackWithNegativeLines(t *testing.T) {
	e := New(2, 4)
	e.Write([]byte("one\r\ntwo\r\nthr"))
	if e.ScrollbackLen() != 1 {
		t.Fatalf("expected 1 scrollback line, got %d", e.ScrollbackLen())
	}
	e.Scroll(5)
	if e.DisplayOffset() != 1 {
		t.Fatalf("expected offset clamped to 1, got %d", e.DisplayOffset())
	}
	var first GridCell
	for gc := range e.Visible() {
		first = gc
		break
	}
	if first.Line != -1 || first.DisplayOffset != 1 || first.Cell.Ch != 'o' {
		t.Fatalf("unexpected first cell %+v", first)
	}
	e.Scroll(-3)
	if e.DisplayOffset() != 0 {
		t.Fatalf("expected offset clamped to 0, got %d", e.DisplayOffset())
	}
}

func TestScrollDisabledOnAltScreen(t *testing.T) {
	e := New(2, 4)
	e.Write([]byte("a\r\nb\r\nc"))
	e.Write([]byte("\x1b[?1049h"))
	e.Scroll(1)
	if e.DisplayOffset() != 0 {
		t.Fatalf("expected no scrolling on alt screen, got offset %d", e.DisplayOffset())
	}
}
