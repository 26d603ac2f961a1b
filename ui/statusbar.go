package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"termcanvas/config"
)

type StatusBar struct {
	Mode    string // "TERM", "SCROLL" or "ENDED"
	Title   string // window title set by the shell
	Shell   string
	Rows    int
	Cols    int
	Offset  int    // lines scrolled back
	Message string // temporary status message
	IsError bool
	Theme   *config.ColorScheme
}

func NewStatusBar() *StatusBar {
	return &StatusBar{
		Mode: "TERM",
	}
}

func (s *StatusBar) Render(screen tcell.Screen, x, y, width, height int) {
	theme := s.Theme
	if theme == nil {
		theme = config.Themes["gruvbox"]
	}

	style := tcell.StyleDefault.Background(tcell.GetColor(theme.BrightBlack)).Foreground(tcell.GetColor(theme.Foreground))
	modeBg := theme.Blue
	if s.Mode == "ENDED" {
		modeBg = theme.Red
	}
	modeStyle := tcell.StyleDefault.Background(tcell.GetColor(modeBg)).Foreground(tcell.GetColor(theme.BrightWhite)).Bold(true)

	// Clear the line
	for cx := x; cx < x+width; cx++ {
		screen.SetContent(cx, y, ' ', nil, style)
	}

	col := x

	// Mode
	mode := " " + s.Mode + " "
	for _, ch := range mode {
		if col < x+width {
			screen.SetContent(col, y, ch, nil, modeStyle)
			col++
		}
	}

	// Separator
	if col < x+width {
		screen.SetContent(col, y, ' ', nil, style)
		col++
	}

	// If there's a temporary message, show that instead
	if s.Message != "" {
		msgStyle := style
		if s.IsError {
			msgStyle = style.Foreground(tcell.GetColor(theme.BrightRed))
		}
		for _, ch := range s.Message {
			if col < x+width {
				screen.SetContent(col, y, ch, nil, msgStyle)
				col++
			}
		}
		return
	}

	// Title
	title := s.Title
	if title == "" {
		title = s.Shell
	}
	for _, ch := range title {
		if col < x+width {
			screen.SetContent(col, y, ch, nil, style)
			col++
		}
	}

	// Right-aligned info
	right := fmt.Sprintf("%d×%d │ %s ", s.Cols, s.Rows, theme.Name)
	if s.Offset > 0 {
		right = fmt.Sprintf("↑%d │ %s", s.Offset, right)
	}
	rightRunes := []rune(right)
	rightStart := x + width - len(rightRunes)
	if rightStart > col+2 {
		for i, ch := range rightRunes {
			screen.SetContent(rightStart+i, y, ch, nil, style)
		}
	}
}
