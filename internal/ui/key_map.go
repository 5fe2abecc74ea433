package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	next    key.Binding
	prev    key.Binding
	up      key.Binding
	down    key.Binding
	add     key.Binding
	search  key.Binding
	remove  key.Binding
	clear   key.Binding
	prize   key.Binding
	spin    key.Binding
	filter  key.Binding
	reenter key.Binding
	submit  key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
		prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev panel")),
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		remove:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		clear:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete all")),
		prize:   key.NewBinding(key.WithKeys("p", "enter"), key.WithHelp("p", "prize")),
		spin:    key.NewBinding(key.WithKeys("s", " "), key.WithHelp("s", "spin")),
		filter:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter prize")),
		reenter: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "re-enter")),
		submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev, k.up, k.down},
		{k.add, k.search, k.remove, k.clear},
		{k.prize, k.spin, k.filter, k.reenter},
		{k.back, k.quit},
	}
}

// contextual returns the bindings that apply to panel in mode.
func (k keyMap) contextual(panel Panel, mode Mode) []key.Binding {
	switch mode {
	case addMode, searchMode, prizeMode:
		return []key.Binding{k.submit, k.back}
	case confirmMode:
		return []key.Binding{k.yes, k.no}
	}

	switch panel {
	case ParticipantsPanel:
		return []key.Binding{k.add, k.search, k.remove, k.clear, k.back, k.next, k.quit}
	case RafflePanel:
		return []key.Binding{k.prize, k.spin, k.back, k.next, k.quit}
	case WinnersPanel:
		return []key.Binding{k.filter, k.reenter, k.next, k.quit}
	default:
		return k.ShortHelp()
	}
}
