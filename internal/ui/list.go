package ui

import (
	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = participantItem{}
	_ list.Item = winnerItem{}
)

// participantItem is a roster entry, annotated with the latest prize when the participant has won.
type participantItem struct {
	name  string
	prize string
	won   bool
}

func (i participantItem) FilterValue() string { return i.name }
func (i participantItem) Title() string       { return i.name }
func (i participantItem) Description() string {
	if i.won {
		return "won " + i.prize
	}
	return "eligible"
}

// winnerItem is one name within a prize group.
type winnerItem struct {
	name  string
	prize string
}

func (i winnerItem) FilterValue() string { return i.name }
func (i winnerItem) Title() string       { return i.name }
func (i winnerItem) Description() string { return i.prize }

func newPanelList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}
