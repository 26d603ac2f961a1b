package vt

import "iter"

// GridCell is a cell of the visible grid with its position.
//
// Line is relative to the top of the live screen, so rows pulled from
// scrollback have negative lines; Line+DisplayOffset is the viewport row.
type GridCell struct {
	Line          int
	Column        int
	Cell          Cell
	DisplayOffset int
}

// Visible iterates the viewport row-major from its top-left corner. The
// placeholder column behind a wide rune is skipped.
func (e *Engine) Visible() iter.Seq[GridCell] {
	return func(yield func(GridCell) bool) {
		off := e.viewOffset
		for r := 0; r < e.rows; r++ {
			line := r - off
			row := e.rowAt(line)
			for c := 0; c < e.cols; c++ {
				cell := blankCell
				if c < len(row) {
					cell = row[c]
				}
				if cell.Style.Flags.Has(FlagWideSpacer) {
					continue
				}
				if !yield(GridCell{Line: line, Column: c, Cell: cell, DisplayOffset: off}) {
					return
				}
			}
		}
	}
}

// rowAt returns the row for a line number; negative lines index back into
// the scrollback.
func (e *Engine) rowAt(line int) []Cell {
	if line >= 0 {
		if line < len(e.cells) {
			return e.cells[line]
		}
		return nil
	}
	idx := len(e.scrollback) + line
	if idx < 0 {
		return nil
	}
	return e.scrollback[idx].cells
}

// Scroll moves the view by delta lines into the scrollback (positive is up,
// towards older output). The alternate screen has no scrollback.
func (e *Engine) Scroll(delta int) {
	if e.altActive {
		return
	}
	e.viewOffset += delta
	if e.viewOffset > len(e.scrollback) {
		e.viewOffset = len(e.scrollback)
	}
	if e.viewOffset < 0 {
		e.viewOffset = 0
	}
}

// ScrollToBottom returns the view to the live screen.
func (e *Engine) ScrollToBottom() { e.viewOffset = 0 }

func (e *Engine) Size() (rows, cols int) { return e.rows, e.cols }

// Cursor returns the cursor position on the live screen.
func (e *Engine) Cursor() (row, col int) {
	col = e.curCol
	if col >= e.cols {
		col = e.cols - 1
	}
	return e.curRow, col
}

func (e *Engine) CursorVisible() bool { return !e.cursorHidden }

func (e *Engine) Title() string { return e.title }

func (e *Engine) DisplayOffset() int { return e.viewOffset }

func (e *Engine) ScrollbackLen() int { return len(e.scrollback) }

func (e *Engine) AltScreen() bool { return e.altActive }

func (e *Engine) BracketedPaste() bool { return e.bracketedPaste }

func (e *Engine) AppCursorKeys() bool { return e.appCursorKeys }
