package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/raffle/internal/draw"
)

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
	MsgDrawEvent MsgKind = iota
	MsgDrawDone
)

// drawEventMsg is the constructor for [MsgDrawEvent]
func drawEventMsg(ev draw.Event) Msg {
	return Msg{kind: MsgDrawEvent, data: ev}
}

// drawDoneMsg is the constructor for [MsgDrawDone], sent once the event channel closes
func drawDoneMsg() Msg {
	return Msg{kind: MsgDrawDone}
}
