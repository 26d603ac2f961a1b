package vt

// Resize changes the grid to rows × cols. The main screen is reflowed so
// soft-wrapped lines re-wrap at the new width; the alternate screen is
// truncated or padded. Resizing to the current size is a no-op.
func (e *Engine) Resize(rows, cols int) {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	oldRows := e.rows
	oldCols := e.cols
	if oldRows == rows && oldCols == cols {
		return
	}

	e.rows = rows
	e.cols = cols
	e.scrollTop = 0
	e.scrollBot = rows - 1

	if e.altActive {
		// Alt screen: simple resize without reflow (like vim, htop)
		e.cells = copyGrid(e.cells, rows, cols)
		e.wrapped = make([]bool, rows)
		e.mainCells = copyGrid(e.mainCells, rows, cols)
		e.mainWrapped = make([]bool, rows)
	} else {
		e.reflow(rows, cols, oldRows)
	}

	if e.viewOffset > len(e.scrollback) {
		e.viewOffset = len(e.scrollback)
	}
	if e.savedCurRow >= rows {
		e.savedCurRow = rows - 1
	}
	if e.savedCurCol >= cols {
		e.savedCurCol = cols - 1
	}
	if e.curCol > cols {
		e.curCol = cols
	}
	if e.curRow >= rows {
		e.curRow = rows - 1
	}
}

// copyGrid copies the overlapping top-left region of src into a blank
// rows × cols grid.
func copyGrid(src [][]Cell, rows, cols int) [][]Cell {
	dst := blankGrid(rows, cols)
	for i := 0; i < rows && i < len(src); i++ {
		copy(dst[i], src[i])
	}
	return dst
}

// logicalLine represents a full line of terminal content (may span multiple screen rows)
type logicalLine struct {
	cells []Cell
}

// reflow reconstructs logical lines from scrollback+cells and re-wraps them
// at the new width, keeping the cursor on the same character.
func (e *Engine) reflow(rows, cols, oldRows int) {
	// Step 1: live rows are everything up to the cursor plus any rows below
	// it that have content
	liveRows := e.curRow + 1
	if liveRows > len(e.cells) {
		liveRows = len(e.cells)
	}
	for r := liveRows; r < len(e.cells) && r < oldRows; r++ {
		if len(trimTrailingSpaces(e.cells[r])) > 0 {
			liveRows = r + 1
		}
	}

	// Step 2: build logical lines from scrollback + live cells, and locate
	// the cursor inside them
	var lines []logicalLine
	var current []Cell
	for _, sb := range e.scrollback {
		current = append(current, trimTrailingSpaces(sb.cells)...)
		if !sb.wrapped {
			lines = append(lines, logicalLine{cells: current})
			current = nil
		}
	}

	cursorLine, cursorCol := -1, 0
	for r := 0; r < liveRows; r++ {
		if r == e.curRow {
			cursorLine = len(lines)
			cursorCol = len(current) + e.curCol
		}
		current = append(current, trimTrailingSpaces(e.cells[r])...)
		if !e.wrapped[r] {
			lines = append(lines, logicalLine{cells: current})
			current = nil
		}
	}
	// Flush any remaining content
	if len(current) > 0 || cursorLine == len(lines) {
		lines = append(lines, logicalLine{cells: current})
	}

	// Step 3: re-wrap logical lines at the new width
	var newRows [][]Cell
	var newWrapped []bool
	newCurRow, newCurCol := -1, 0

	for idx, ll := range lines {
		lineLen := len(ll.cells)
		start := len(newRows)
		if lineLen == 0 {
			newRows = append(newRows, blankRow(cols))
			newWrapped = append(newWrapped, false)
		}
		for charIdx := 0; charIdx < lineLen; charIdx += cols {
			endIdx := charIdx + cols
			if endIdx > lineLen {
				endIdx = lineLen
			}
			row := blankRow(cols)
			copy(row, ll.cells[charIdx:endIdx])
			newRows = append(newRows, row)
			newWrapped = append(newWrapped, endIdx < lineLen)
		}
		if idx == cursorLine {
			// Cursor may sit past the content (e.g. after a prompt's
			// trailing space); place it by its logical column.
			newCurRow = start + cursorCol/cols
			newCurCol = cursorCol % cols
			for newCurRow >= len(newRows) {
				newRows = append(newRows, blankRow(cols))
				newWrapped = append(newWrapped, false)
			}
		}
	}
	if newCurRow < 0 {
		newCurRow = len(newRows) - 1
		if newCurRow < 0 {
			newCurRow = 0
		}
		newCurCol = 0
	}

	// Step 4: the last `rows` rows (keeping the cursor visible) form the
	// screen, everything before goes to scrollback
	total := len(newRows)
	screenStart := total - rows
	if screenStart < 0 {
		screenStart = 0
	}
	if newCurRow < screenStart {
		screenStart = newCurRow
	}
	if newCurRow >= screenStart+rows {
		screenStart = newCurRow - rows + 1
	}

	scrollback := make([]scrollbackLine, 0, screenStart)
	for i := 0; i < screenStart; i++ {
		scrollback = append(scrollback, scrollbackLine{cells: newRows[i], wrapped: newWrapped[i]})
	}
	if len(scrollback) > maxScrollback {
		scrollback = scrollback[len(scrollback)-maxScrollback:]
	}

	cells := make([][]Cell, rows)
	wrapped := make([]bool, rows)
	for i := 0; i < rows; i++ {
		src := screenStart + i
		if src < total {
			cells[i] = newRows[src]
			wrapped[i] = newWrapped[src]
		} else {
			cells[i] = blankRow(cols)
		}
	}

	e.scrollback = scrollback
	e.cells = cells
	e.wrapped = wrapped
	e.curRow = newCurRow - screenStart
	e.curCol = newCurCol
	e.clampCursor()
}

// trimTrailingSpaces removes trailing blank cells from a row. Colored
// blanks are kept.
func trimTrailingSpaces(cells []Cell) []Cell {
	end := len(cells)
	for end > 0 && (cells[end-1].Ch == ' ' || cells[end-1].Ch == 0) {
		if cells[end-1].Style != DefaultStyle {
			break
		}
		end--
	}
	result := make([]Cell, end)
	copy(result, cells[:end])
	return result
}
