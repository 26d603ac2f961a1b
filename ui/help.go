package ui

import (
	"github.com/gdamore/tcell/v2"

	"termcanvas/config"
)

var keybindings = []struct {
	category string
	key      string
	desc     string
}{
	{"SESSION", "", ""},
	{"", "Ctrl+Q", "Quit"},
	{"", "F12", "Save a capture of the screen"},
	{"", "F1", "Toggle help"},
	{"", "", ""},
	{"HISTORY", "", ""},
	{"", "Shift+PgUp/PgDn", "Scroll one page"},
	{"", "Mouse wheel", "Scroll three lines"},
	{"", "Any typing", "Back to the live screen"},
}

// HelpOverlay lists the host key bindings over the terminal area.
type HelpOverlay struct {
	Visible bool
	Theme   *config.ColorScheme
}

// HandleKey reports whether the overlay consumed ev. While visible it
// consumes every key so nothing reaches the shell.
func (h *HelpOverlay) HandleKey(ev *tcell.EventKey) bool {
	if !h.Visible {
		return false
	}
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyF1 {
		h.Visible = false
	}
	return true
}

func (h *HelpOverlay) Render(screen tcell.Screen, x, y, width, height int) {
	if !h.Visible {
		return
	}
	theme := h.Theme
	if theme == nil {
		theme = config.Themes["gruvbox"]
	}
	bg := tcell.GetColor(theme.Black)
	bgStyle := tcell.StyleDefault.Background(bg).Foreground(tcell.GetColor(theme.Foreground))
	borderStyle := bgStyle.Foreground(tcell.GetColor(theme.BrightBlack))
	titleStyle := tcell.StyleDefault.Background(tcell.GetColor(theme.Blue)).Foreground(tcell.GetColor(theme.BrightWhite)).Bold(true)
	categoryStyle := bgStyle.Foreground(tcell.GetColor(theme.Cyan)).Bold(true)
	keyStyle := bgStyle.Foreground(tcell.GetColor(theme.Yellow))
	footerStyle := bgStyle.Foreground(tcell.GetColor(theme.BrightBlack)).Italic(true)

	dialogW := 50
	dialogH := len(keybindings) + 5
	if dialogW > width-2 {
		dialogW = width - 2
	}
	if dialogH > height-2 {
		dialogH = height - 2
	}
	if dialogW < 4 || dialogH < 3 {
		return
	}
	dialogX := x + (width-dialogW)/2
	dialogY := y + (height-dialogH)/2

	for dy := 0; dy < dialogH; dy++ {
		for dx := 0; dx < dialogW; dx++ {
			screen.SetContent(dialogX+dx, dialogY+dy, ' ', nil, bgStyle)
		}
	}
	for dx := 0; dx < dialogW; dx++ {
		screen.SetContent(dialogX+dx, dialogY+dialogH-1, '─', nil, borderStyle)
	}
	for dy := 0; dy < dialogH; dy++ {
		screen.SetContent(dialogX, dialogY+dy, '│', nil, borderStyle)
		screen.SetContent(dialogX+dialogW-1, dialogY+dy, '│', nil, borderStyle)
	}
	screen.SetContent(dialogX, dialogY+dialogH-1, '└', nil, borderStyle)
	screen.SetContent(dialogX+dialogW-1, dialogY+dialogH-1, '┘', nil, borderStyle)

	// Title bar fills the top border
	for dx := 0; dx < dialogW; dx++ {
		screen.SetContent(dialogX+dx, dialogY, ' ', nil, titleStyle)
	}
	title := []rune(" Keys ")
	titleX := dialogX + (dialogW-len(title))/2
	for i, ch := range title {
		screen.SetContent(titleX+i, dialogY, ch, nil, titleStyle)
	}

	right := dialogX + dialogW - 2
	put := func(col, row int, s string, style tcell.Style) {
		for _, ch := range s {
			if col >= right {
				return
			}
			screen.SetContent(col, row, ch, nil, style)
			col++
		}
	}

	row := dialogY + 2
	for _, kb := range keybindings {
		if row >= dialogY+dialogH-2 {
			break
		}
		switch {
		case kb.category != "":
			put(dialogX+2, row, kb.category, categoryStyle)
		case kb.key != "":
			put(dialogX+4, row, kb.key, keyStyle)
			put(dialogX+22, row, kb.desc, bgStyle)
		}
		row++
	}

	footer := []rune("Esc or F1 to close")
	footerX := dialogX + (dialogW-len(footer))/2
	if footerX > dialogX {
		put(footerX, dialogY+dialogH-2, string(footer), footerStyle)
	}
}
