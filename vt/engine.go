// Package vt maintains the screen grid of a terminal from the byte stream a
// program writes to it.
package vt

import (
	"io"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const maxScrollback = 10000

type parserState int

const (
	stateNormal parserState = iota
	stateEscape
	stateCharset
	stateCSI
	stateOSC
)

type scrollbackLine struct {
	cells   []Cell
	wrapped bool // true if this line was soft-wrapped (not a hard newline)
}

// Engine is a terminal-state machine: it interprets text and escape
// sequences and keeps the resulting grid, cursor and scrollback.
//
// An Engine is not safe for concurrent use; callers serialize access.
type Engine struct {
	cells     [][]Cell
	wrapped   []bool // per-row: true = this row soft-wrapped (no hard newline)
	curRow    int
	curCol    int
	rows      int
	cols      int
	scrollTop int
	scrollBot int

	// Parser state
	state    parserState
	csiBuf   []byte
	oscBuf   []byte
	utf8Buf  []byte
	curStyle Style

	scrollback []scrollbackLine
	viewOffset int // 0 = live, >0 = scrolled up into scrollback

	// Alternate screen buffer
	mainCells    [][]Cell
	mainWrapped  []bool
	altActive    bool
	cursorHidden bool

	// Saved cursor state (DECSC/DECRC)
	savedCurRow int
	savedCurCol int
	savedStyle  Style

	bracketedPaste bool
	appCursorKeys  bool

	title string

	// responder receives replies to status queries (DSR, DA).
	responder io.Writer
}

// New returns an engine with a blank grid of the given size.
func New(rows, cols int) *Engine {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	e := &Engine{
		rows:      rows,
		cols:      cols,
		curStyle:  DefaultStyle,
		scrollBot: rows - 1,
	}
	e.cells = blankGrid(rows, cols)
	e.wrapped = make([]bool, rows)
	return e
}

// SetResponder sets where replies to device status queries are written,
// normally the input side of the pty.
func (e *Engine) SetResponder(w io.Writer) { e.responder = w }

func blankRow(cols int) []Cell {
	row := make([]Cell, cols)
	for j := range row {
		row[j] = blankCell
	}
	return row
}

func blankGrid(rows, cols int) [][]Cell {
	g := make([][]Cell, rows)
	for i := range g {
		g[i] = blankRow(cols)
	}
	return g
}

// Write feeds p through the parser. It never fails.
func (e *Engine) Write(p []byte) (int, error) {
	for _, b := range p {
		e.Advance(b)
	}
	return len(p), nil
}

// Advance feeds a single byte through the parser. Multi-byte UTF-8
// sequences may be split across calls.
func (e *Engine) Advance(b byte) {
	switch e.state {
	case stateNormal:
		e.advanceNormal(b)
	case stateEscape:
		e.advanceEscape(b)
	case stateCharset:
		// Charset designation, the byte names the set and is dropped
		e.state = stateNormal
	case stateCSI:
		switch {
		case b == 0x1b:
			e.csiBuf = e.csiBuf[:0]
			e.state = stateEscape
		case b >= 0x40 && b <= 0x7e:
			// Final byte
			e.csiBuf = append(e.csiBuf, b)
			e.processCSI()
			e.state = stateNormal
		case b < 0x20:
			// C0 controls are executed in the middle of a sequence
			e.execute(b)
		default:
			e.csiBuf = append(e.csiBuf, b)
		}
	case stateOSC:
		switch b {
		case 0x07:
			e.processOSC()
			e.state = stateNormal
		case 0x1b:
			// ESC \ (ST) ends the string; the backslash is consumed by the
			// escape state.
			e.processOSC()
			e.state = stateEscape
		default:
			e.oscBuf = append(e.oscBuf, b)
		}
	}
}

func (e *Engine) advanceNormal(b byte) {
	if len(e.utf8Buf) > 0 {
		if b&0xc0 == 0x80 {
			e.utf8Buf = append(e.utf8Buf, b)
			if utf8.FullRune(e.utf8Buf) {
				r, _ := utf8.DecodeRune(e.utf8Buf)
				e.utf8Buf = e.utf8Buf[:0]
				if r != utf8.RuneError {
					e.putChar(r)
				}
			}
			return
		}
		// Truncated sequence; drop it and handle b on its own.
		e.utf8Buf = e.utf8Buf[:0]
	}

	switch {
	case b == 0x1b:
		e.state = stateEscape
	case b < 0x20 || b == 0x7f:
		e.execute(b)
	case b < 0x80:
		e.putChar(rune(b))
	case b >= 0xc0 && b < 0xf8:
		e.utf8Buf = append(e.utf8Buf, b)
	default:
		// Stray continuation or invalid lead byte
	}
}

// execute runs a C0 control character.
func (e *Engine) execute(b byte) {
	switch b {
	case '\r':
		e.curCol = 0
	case '\n', 0x0b, 0x0c:
		e.lineFeed()
	case '\b':
		if e.curCol >= e.cols {
			e.curCol = e.cols - 1
		}
		if e.curCol > 0 {
			e.curCol--
		}
	case '\t':
		next := ((e.curCol / 8) + 1) * 8
		if next >= e.cols {
			next = e.cols - 1
		}
		e.curCol = next
	case 0x07, 0x00, 0x0e, 0x0f, 0x7f: // BEL, NUL, SO, SI, DEL - ignore
	}
}

func (e *Engine) advanceEscape(b byte) {
	e.state = stateNormal
	switch b {
	case '[':
		e.state = stateCSI
		e.csiBuf = e.csiBuf[:0]
	case ']':
		e.state = stateOSC
		e.oscBuf = e.oscBuf[:0]
	case '(', ')', '*', '+':
		e.state = stateCharset
	case 'M': // Reverse index
		e.reverseIndex()
	case 'D': // Index
		e.index()
	case 'E': // Next line
		e.curCol = 0
		e.lineFeed()
	case '7': // DECSC - save cursor
		e.saveCursor()
	case '8': // DECRC - restore cursor
		e.restoreCursor()
	case 'c': // RIS - full reset
		e.reset()
	}
}

func (e *Engine) reset() {
	e.cells = blankGrid(e.rows, e.cols)
	e.wrapped = make([]bool, e.rows)
	e.mainCells = nil
	e.mainWrapped = nil
	e.altActive = false
	e.curRow, e.curCol = 0, 0
	e.curStyle = DefaultStyle
	e.scrollTop, e.scrollBot = 0, e.rows-1
	e.cursorHidden = false
	e.bracketedPaste = false
	e.appCursorKeys = false
	e.viewOffset = 0
}

func (e *Engine) saveCursor() {
	e.savedCurRow = e.curRow
	e.savedCurCol = e.curCol
	e.savedStyle = e.curStyle
}

func (e *Engine) restoreCursor() {
	e.curRow = e.savedCurRow
	e.curCol = e.savedCurCol
	e.curStyle = e.savedStyle
	e.clampCursor()
}

func (e *Engine) clampCursor() {
	if e.curRow >= e.rows {
		e.curRow = e.rows - 1
	}
	if e.curRow < 0 {
		e.curRow = 0
	}
	if e.curCol >= e.cols {
		e.curCol = e.cols - 1
	}
	if e.curCol < 0 {
		e.curCol = 0
	}
}

func (e *Engine) putChar(ch rune) {
	width := runewidth.RuneWidth(ch)
	if width == 0 {
		// Combining marks are not composed into the previous cell.
		return
	}
	if width > 2 {
		width = 2
	}
	if e.curRow < 0 || e.curRow >= e.rows || e.curCol < 0 {
		return
	}
	if e.curCol+width > e.cols {
		if width > e.cols {
			return
		}
		// Mark current row as soft-wrapped
		e.wrapped[e.curRow] = true
		e.curCol = 0
		e.index()
	}
	style := e.curStyle
	if width == 2 {
		style.Flags |= FlagWide
		spacer := e.curStyle
		spacer.Flags |= FlagWideSpacer
		e.cells[e.curRow][e.curCol+1] = Cell{Ch: ' ', Style: spacer}
	}
	e.cells[e.curRow][e.curCol] = Cell{Ch: ch, Style: style}
	e.curCol += width
}

func (e *Engine) lineFeed() {
	// Current row has a hard newline (not wrapped)
	if e.curRow >= 0 && e.curRow < len(e.wrapped) {
		e.wrapped[e.curRow] = false
	}
	e.index()
}

// index moves the cursor down one row, scrolling at the bottom margin.
func (e *Engine) index() {
	if e.curRow == e.scrollBot {
		e.scrollUp()
	} else if e.curRow < e.rows-1 {
		e.curRow++
	}
}

func (e *Engine) reverseIndex() {
	if e.curRow == e.scrollTop {
		e.scrollDown()
	} else if e.curRow > 0 {
		e.curRow--
	}
}

func (e *Engine) scrollUp() {
	// Save top line to scrollback (only in main screen with a full-height
	// region, not alt screen)
	if !e.altActive && e.scrollTop == 0 {
		saved := make([]Cell, len(e.cells[e.scrollTop]))
		copy(saved, e.cells[e.scrollTop])
		e.scrollback = append(e.scrollback, scrollbackLine{cells: saved, wrapped: e.wrapped[e.scrollTop]})
		if len(e.scrollback) > maxScrollback {
			e.scrollback = e.scrollback[1:]
		} else if e.viewOffset > 0 {
			// Keep a scrolled-back view anchored on the same content.
			e.viewOffset++
		}
	}

	for i := e.scrollTop; i < e.scrollBot; i++ {
		e.cells[i] = e.cells[i+1]
		e.wrapped[i] = e.wrapped[i+1]
	}
	e.cells[e.scrollBot] = blankRow(e.cols)
	e.wrapped[e.scrollBot] = false
}

func (e *Engine) scrollDown() {
	for i := e.scrollBot; i > e.scrollTop; i-- {
		e.cells[i] = e.cells[i-1]
		e.wrapped[i] = e.wrapped[i-1]
	}
	e.cells[e.scrollTop] = blankRow(e.cols)
	e.wrapped[e.scrollTop] = false
}

func (e *Engine) enterAltScreen() {
	if e.altActive {
		return
	}
	e.mainCells = e.cells
	e.mainWrapped = e.wrapped
	e.cells = blankGrid(e.rows, e.cols)
	e.wrapped = make([]bool, e.rows)
	e.altActive = true
	e.viewOffset = 0
	e.scrollTop = 0
	e.scrollBot = e.rows - 1
}

func (e *Engine) exitAltScreen() {
	if !e.altActive {
		return
	}
	e.cells = e.mainCells
	e.wrapped = e.mainWrapped
	e.mainCells = nil
	e.mainWrapped = nil
	e.altActive = false
	e.scrollTop = 0
	e.scrollBot = e.rows - 1
}

func (e *Engine) respond(s string) {
	if e.responder != nil {
		io.WriteString(e.responder, s)
	}
}
