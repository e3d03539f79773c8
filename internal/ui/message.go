package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameInterval is how often the host redraws.
const FrameInterval = 250 * time.Millisecond

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgFrame MsgKind = iota
)

// frameMsg is the constructor for [MsgFrame]
func frameMsg(at time.Time) Msg {
	return Msg{kind: MsgFrame, data: at}
}

// tick schedules the next frame.
func tick() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
