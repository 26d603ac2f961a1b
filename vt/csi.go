package vt

import (
	"fmt"
	"strings"
)

func (e *Engine) processCSI() {
	if len(e.csiBuf) == 0 {
		return
	}
	final := e.csiBuf[len(e.csiBuf)-1]
	params := string(e.csiBuf[:len(e.csiBuf)-1])

	// Private parameter markers other than '?' select sequences this engine
	// does not implement (e.g. CSI > 4;1 m).
	if strings.HasPrefix(params, ">") || strings.HasPrefix(params, "<") || strings.HasPrefix(params, "=") {
		if final == 'c' && strings.HasPrefix(params, ">") {
			e.respond("\x1b[>0;0;0c")
		}
		return
	}
	// Intermediate bytes (e.g. CSI ! p, CSI SP q) select sequences that are
	// accepted and ignored.
	if strings.ContainsAny(params, " !\"$'") {
		return
	}
	if strings.HasPrefix(params, "?") {
		switch final {
		case 'h', 'l':
			e.processMode(params[1:], final == 'h')
		}
		return
	}

	switch final {
	case 'm': // SGR
		e.processSGR(params)
	case 'A': // Cursor up
		e.curRow -= parseParam(params, 1)
		e.clampCursor()
	case 'B', 'e': // Cursor down
		e.curRow += parseParam(params, 1)
		e.clampCursor()
	case 'C', 'a': // Cursor forward
		e.curCol += parseParam(params, 1)
		e.clampCursor()
	case 'D': // Cursor back
		e.clampCursor()
		e.curCol -= parseParam(params, 1)
		e.clampCursor()
	case 'H', 'f': // Cursor position
		row, col := parseParamPair(params, 1, 1)
		e.curRow = row - 1
		e.curCol = col - 1
		e.clampCursor()
	case 'J': // Erase display
		e.eraseDisplay(parseParam(params, 0))
	case 'K': // Erase line
		e.eraseLine(parseParam(params, 0))
	case 'r': // Set scroll region
		top, bot := parseParamPair(params, 1, e.rows)
		if top < 1 {
			top = 1
		}
		if bot > e.rows {
			bot = e.rows
		}
		if top >= bot {
			return
		}
		e.scrollTop = top - 1
		e.scrollBot = bot - 1
		e.curRow, e.curCol = 0, 0
	case 'L': // Insert lines
		if e.curRow < e.scrollTop || e.curRow > e.scrollBot {
			return
		}
		top := e.scrollTop
		e.scrollTop = e.curRow
		for i := 0; i < parseParam(params, 1) && i <= e.scrollBot-e.scrollTop; i++ {
			e.scrollDown()
		}
		e.scrollTop = top
	case 'M': // Delete lines
		if e.curRow < e.scrollTop || e.curRow > e.scrollBot {
			return
		}
		top := e.scrollTop
		e.scrollTop = e.curRow
		for i := 0; i < parseParam(params, 1) && i <= e.scrollBot-e.scrollTop; i++ {
			e.shiftUp()
		}
		e.scrollTop = top
	case 'G', '`': // Cursor horizontal absolute
		e.curCol = parseParam(params, 1) - 1
		e.clampCursor()
	case 'd': // Cursor vertical absolute
		e.curRow = parseParam(params, 1) - 1
		e.clampCursor()
	case 's': // Save cursor position (ANSI)
		e.saveCursor()
	case 'u': // Restore cursor position (ANSI)
		e.restoreCursor()
	case 'S': // Scroll up N lines
		for i := 0; i < parseParam(params, 1) && i < e.rows; i++ {
			e.scrollUp()
		}
	case 'T': // Scroll down N lines
		for i := 0; i < parseParam(params, 1) && i < e.rows; i++ {
			e.scrollDown()
		}
	case 'E': // Cursor next line
		e.curRow += parseParam(params, 1)
		e.curCol = 0
		e.clampCursor()
	case 'F': // Cursor previous line
		e.curRow -= parseParam(params, 1)
		e.curCol = 0
		e.clampCursor()
	case 'n': // Device status report
		switch parseParam(params, 0) {
		case 5:
			e.respond("\x1b[0n")
		case 6:
			col := e.curCol
			if col >= e.cols {
				col = e.cols - 1
			}
			e.respond(fmt.Sprintf("\x1b[%d;%dR", e.curRow+1, col+1))
		}
	case 'c': // Primary device attributes
		e.respond("\x1b[?6c")
	case 'P': // Delete chars
		e.deleteChars(parseParam(params, 1))
	case '@': // Insert chars
		e.insertChars(parseParam(params, 1))
	case 'X': // Erase chars
		if e.curCol >= e.cols {
			return
		}
		n := parseParam(params, 1)
		for i := e.curCol; i < e.curCol+n && i < e.cols; i++ {
			e.cells[e.curRow][i] = e.clearCell()
		}
	}
}

// shiftUp scrolls the region up without saving to scrollback; used for
// deleting lines inside the screen.
func (e *Engine) shiftUp() {
	for i := e.scrollTop; i < e.scrollBot; i++ {
		e.cells[i] = e.cells[i+1]
		e.wrapped[i] = e.wrapped[i+1]
	}
	e.cells[e.scrollBot] = blankRow(e.cols)
	e.wrapped[e.scrollBot] = false
}

func (e *Engine) deleteChars(n int) {
	if e.curCol >= e.cols {
		return
	}
	if n > e.cols-e.curCol {
		n = e.cols - e.curCol
	}
	row := e.cells[e.curRow]
	copy(row[e.curCol:], row[e.curCol+n:])
	for i := e.cols - n; i < e.cols; i++ {
		row[i] = e.clearCell()
	}
}

func (e *Engine) insertChars(n int) {
	if e.curCol >= e.cols {
		return
	}
	if n > e.cols-e.curCol {
		n = e.cols - e.curCol
	}
	row := e.cells[e.curRow]
	copy(row[e.curCol+n:], row[e.curCol:e.cols-n])
	for i := e.curCol; i < e.curCol+n; i++ {
		row[i] = e.clearCell()
	}
}

// clearCell is the blank left behind by erase operations: it keeps the
// current background so "clear to end of line" paints colored bars.
func (e *Engine) clearCell() Cell {
	return Cell{Ch: ' ', Style: Style{FG: DefaultFG, BG: e.curStyle.BG}}
}

func (e *Engine) processMode(params string, set bool) {
	for _, code := range splitParams(params) {
		switch code {
		case 1: // DECCKM - application cursor keys
			e.appCursorKeys = set
		case 25: // DECTCEM - cursor visibility
			e.cursorHidden = !set
		case 47, 1047: // Alternate screen buffer
			if set {
				e.enterAltScreen()
			} else {
				e.exitAltScreen()
			}
		case 1049: // Alternate screen buffer with save/restore cursor
			if set {
				e.saveCursor()
				e.enterAltScreen()
			} else {
				e.exitAltScreen()
				e.restoreCursor()
			}
		case 2004: // Bracketed paste mode
			e.bracketedPaste = set
		}
	}
}

func (e *Engine) processOSC() {
	s := string(e.oscBuf)
	e.oscBuf = e.oscBuf[:0]
	// OSC format: "code;content"
	idx := strings.IndexByte(s, ';')
	if idx < 0 {
		return
	}
	switch s[:idx] {
	case "0", "1", "2": // Window / icon title
		e.title = s[idx+1:]
	}
}

func (e *Engine) processSGR(params string) {
	if params == "" {
		e.curStyle = DefaultStyle
		return
	}

	codes := splitParams(params)
	for i := 0; i < len(codes); i++ {
		c := codes[i]
		switch {
		case c == 0:
			e.curStyle = DefaultStyle
		case c == 1:
			e.curStyle.Flags |= FlagBold
		case c == 2:
			e.curStyle.Flags |= FlagDim
		case c == 3:
			e.curStyle.Flags |= FlagItalic
		case c == 4:
			e.curStyle.Flags |= FlagUnderline
		case c == 7:
			e.curStyle.Flags |= FlagInverse
		case c == 8:
			e.curStyle.Flags |= FlagHidden
		case c == 9:
			e.curStyle.Flags |= FlagStrike
		case c == 22:
			e.curStyle.Flags &^= FlagBold | FlagDim
		case c == 23:
			e.curStyle.Flags &^= FlagItalic
		case c == 24:
			e.curStyle.Flags &^= FlagUnderline
		case c == 27:
			e.curStyle.Flags &^= FlagInverse
		case c == 28:
			e.curStyle.Flags &^= FlagHidden
		case c == 29:
			e.curStyle.Flags &^= FlagStrike
		case c >= 30 && c <= 37:
			e.curStyle.FG = Named(Black + NamedColor(c-30))
		case c == 38:
			col, used := extendedColor(codes[i+1:])
			e.curStyle.FG = col
			i += used
		case c == 39:
			e.curStyle.FG = DefaultFG
		case c >= 40 && c <= 47:
			e.curStyle.BG = Named(Black + NamedColor(c-40))
		case c == 48:
			col, used := extendedColor(codes[i+1:])
			e.curStyle.BG = col
			i += used
		case c == 49:
			e.curStyle.BG = DefaultBG
		case c >= 90 && c <= 97:
			e.curStyle.FG = Named(BrightBlack + NamedColor(c-90))
		case c >= 100 && c <= 107:
			e.curStyle.BG = Named(BrightBlack + NamedColor(c-100))
		}
	}
}

// extendedColor decodes the arguments following SGR 38/48: "5;n" for an
// indexed color or "2;r;g;b" for a direct color. It returns how many
// arguments were consumed.
func extendedColor(args []int) (Color, int) {
	if len(args) == 0 {
		return Color{Kind: ColorUnknown}, 0
	}
	switch args[0] {
	case 5:
		if len(args) < 2 {
			return Color{Kind: ColorUnknown}, len(args)
		}
		return indexedColor(args[1]), 2
	case 2:
		if len(args) < 4 {
			return Color{Kind: ColorUnknown}, len(args)
		}
		r, g, b := args[1], args[2], args[3]
		if r > 255 || g > 255 || b > 255 {
			return Color{Kind: ColorUnknown}, 4
		}
		return RGB(uint8(r), uint8(g), uint8(b)), 4
	}
	return Color{Kind: ColorUnknown}, 1
}

func (e *Engine) eraseDisplay(mode int) {
	switch mode {
	case 0: // Below
		e.eraseLine(0)
		for i := e.curRow + 1; i < e.rows; i++ {
			e.clearRow(i)
		}
	case 1: // Above
		e.eraseLine(1)
		for i := 0; i < e.curRow; i++ {
			e.clearRow(i)
		}
	case 2: // All
		for i := 0; i < e.rows; i++ {
			e.clearRow(i)
		}
	case 3: // All plus scrollback
		for i := 0; i < e.rows; i++ {
			e.clearRow(i)
		}
		e.scrollback = nil
		e.viewOffset = 0
	}
}

func (e *Engine) clearRow(i int) {
	for j := 0; j < e.cols; j++ {
		e.cells[i][j] = e.clearCell()
	}
	e.wrapped[i] = false
}

func (e *Engine) eraseLine(mode int) {
	switch mode {
	case 0: // Right
		for j := e.curCol; j < e.cols; j++ {
			e.cells[e.curRow][j] = e.clearCell()
		}
		// Erasing to end of line breaks the wrap
		e.wrapped[e.curRow] = false
	case 1: // Left
		for j := 0; j <= e.curCol && j < e.cols; j++ {
			e.cells[e.curRow][j] = e.clearCell()
		}
	case 2: // All
		e.clearRow(e.curRow)
	}
}
