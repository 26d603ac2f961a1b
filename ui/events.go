package ui

import (
	"github.com/gdamore/tcell/v2"

	"termcanvas/config"
)

// FrameEvent tells the event loop a new frame was published.
type FrameEvent struct {
	tcell.EventTime
}

// SessionEndedEvent carries the shell's exit status to the event loop.
type SessionEndedEvent struct {
	tcell.EventTime
	Err error
}

// ConfigEvent carries reloaded settings to the event loop.
type ConfigEvent struct {
	tcell.EventTime
	Config *config.Config
}
