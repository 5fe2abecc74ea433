package ui

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/raffle/internal/draw"
	"github.com/desertthunder/raffle/internal/ledger"
)

const reelSize = 5

// Raffle is the session the TUI drives. [raffle.Session] satisfies it.
type Raffle interface {
	Participants() []string
	Search(query string) []string
	AddParticipant(name string) error
	RemoveParticipant(name string) bool
	RemoveAllParticipants()
	EligiblePool() []string
	StartDraw(prize string) (<-chan draw.Event, bool)
	CancelDraw()
	Dismiss() bool
	Status() draw.Status
	ReEnterFrom(name, prize string) bool
	Winners() ledger.Groups
	TotalWinners() int
	CurrentPrizeOf(name string) (string, bool)
	Policy() draw.Policy
}

// Panel is the focused panel.
type Panel int

const (
	ParticipantsPanel Panel = iota
	RafflePanel
	WinnersPanel
)

// Mode is the input mode of the focused panel.
type Mode int

const (
	browseMode Mode = iota
	addMode
	searchMode
	prizeMode
	confirmMode
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusErr
)

// Model represents the TUI application state.
type Model struct {
	raffle       Raffle
	panel        Panel
	mode         Mode
	width        int
	height       int
	participants list.Model
	winners      list.Model
	nameInput    textinput.Model
	searchInput  textinput.Model
	prizeInput   textinput.Model
	query        string
	filter       string
	reel         [reelSize]string
	pool         []string
	events       <-chan draw.Event
	status       string
	statusKind   statusKind
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model driving r.
func NewModel(r Raffle) *Model {
	m := &Model{
		raffle:       r,
		participants: newPanelList("Participants"),
		winners:      newPanelList("Winners"),
		nameInput:    newInput("Participant name", 64),
		searchInput:  newInput("Search name or prize", 64),
		prizeInput:   newInput("Enter prize name (e.g., Mug)", 64),
		width:        120,
		height:       32,
		help:         help.New(),
		keys:         newKeyMap(),
	}
	m.resize()
	m.refresh()
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return ti
}

// Init implements [tea.Model].
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		switch msg.kind {
		case MsgDrawEvent:
			m.applyEvent(msg.data.(draw.Event))
			return m, m.waitForDraw()
		case MsgDrawDone:
			m.events = nil
			m.refresh()
			return m, nil
		}
	}

	return m, nil
}

// View renders the three panels, the status line and contextual help.
func (m *Model) View() string {
	title := styles.title.Render(fmt.Sprintf("Raffle • %d participants • %d winners • %s",
		len(m.raffle.Participants()), m.raffle.TotalWinners(), m.raffle.Policy()))

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		m.frame(ParticipantsPanel, m.renderParticipants()),
		m.frame(RafflePanel, m.renderRaffle()),
		m.frame(WinnersPanel, m.renderWinners()),
	)

	helpView := m.help.ShortHelpView(m.keys.contextual(m.panel, m.mode))
	return fmt.Sprintf("%s\n%s\n%s\n%s", title, panels, m.renderStatus(), helpView)
}

// Spinning reports whether a draw is in flight.
func (m *Model) Spinning() bool {
	return m.events != nil
}

func (m *Model) panelWidth() int {
	return max(m.width/3-4, 20)
}

func (m *Model) resize() {
	w := m.panelWidth()
	h := max(m.height-12, 6)
	m.participants.SetSize(w, h)
	m.winners.SetSize(w, h)
	m.nameInput.Width = w - 4
	m.searchInput.Width = w - 4
	m.prizeInput.Width = w - 4
	m.help.Width = m.width
}

func (m *Model) setStatus(kind statusKind, format string, args ...any) {
	m.statusKind = kind
	m.status = fmt.Sprintf(format, args...)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.mode {
	case addMode:
		return m.handleAddKeys(msg)
	case searchMode:
		return m.handleSearchKeys(msg)
	case prizeMode:
		return m.handlePrizeKeys(msg)
	case confirmMode:
		return m.handleConfirmKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.next):
		m.panel = (m.panel + 1) % 3
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.panel = (m.panel + 2) % 3
		return m, nil
	}

	switch m.panel {
	case ParticipantsPanel:
		return m.handleParticipantsKeys(msg)
	case RafflePanel:
		return m.handleRaffleKeys(msg)
	case WinnersPanel:
		return m.handleWinnersKeys(msg)
	}
	return m, nil
}

// quit cancels any in-flight draw so no winner is recorded after the UI is gone.
func (m *Model) quit() (tea.Model, tea.Cmd) {
	if m.Spinning() {
		m.raffle.CancelDraw()
	}
	return m, tea.Quit
}

func (m *Model) handleParticipantsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.add):
		m.mode = addMode
		m.nameInput.Reset()
		return m, m.nameInput.Focus()
	case key.Matches(msg, m.keys.search):
		m.mode = searchMode
		m.searchInput.SetValue(m.query)
		return m, m.searchInput.Focus()
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.participants.SelectedItem().(participantItem); ok {
			if m.raffle.RemoveParticipant(item.name) {
				m.setStatus(statusOK, "Participant %s removed", item.name)
			}
			m.refreshParticipants()
		}
		return m, nil
	case key.Matches(msg, m.keys.clear):
		if len(m.raffle.Participants()) == 0 {
			m.setStatus(statusWarn, "No participants to delete")
			return m, nil
		}
		m.mode = confirmMode
		m.setStatus(statusWarn, "Delete all %d participants? (y/n)", len(m.raffle.Participants()))
		return m, nil
	case key.Matches(msg, m.keys.back):
		if m.query != "" {
			m.query = ""
			m.searchInput.Reset()
			m.refreshParticipants()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.participants, cmd = m.participants.Update(msg)
	return m, cmd
}

func (m *Model) handleAddKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.mode = browseMode
		m.nameInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		name := m.nameInput.Value()
		if err := m.raffle.AddParticipant(name); err != nil {
			m.setStatus(statusErr, "Cannot add %q: %v", strings.TrimSpace(name), err)
			return m, nil
		}
		m.setStatus(statusOK, "Participant %s added successfully!", name)
		m.mode = browseMode
		m.nameInput.Blur()
		m.nameInput.Reset()
		m.refreshParticipants()
		return m, nil
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.mode = browseMode
		m.query = ""
		m.searchInput.Blur()
		m.searchInput.Reset()
		m.refreshParticipants()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		m.mode = browseMode
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.query = m.searchInput.Value()
	m.refreshParticipants()
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.raffle.RemoveAllParticipants()
		m.setStatus(statusOK, "All participants deleted")
		m.mode = browseMode
		m.refreshParticipants()
	case key.Matches(msg, m.keys.no):
		m.setStatus(statusInfo, "Delete cancelled")
		m.mode = browseMode
	}
	return m, nil
}

func (m *Model) handleRaffleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		if m.Spinning() {
			m.raffle.CancelDraw()
		} else if m.raffle.Dismiss() {
			m.reel = [reelSize]string{}
		}
		return m, nil
	case key.Matches(msg, m.keys.spin):
		return m, m.spin()
	case key.Matches(msg, m.keys.prize):
		if m.Spinning() {
			return m, nil
		}
		m.mode = prizeMode
		return m, m.prizeInput.Focus()
	}
	return m, nil
}

func (m *Model) handlePrizeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.mode = browseMode
		m.prizeInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		m.mode = browseMode
		m.prizeInput.Blur()
		return m, m.spin()
	}

	var cmd tea.Cmd
	m.prizeInput, cmd = m.prizeInput.Update(msg)
	return m, cmd
}

func (m *Model) handleWinnersKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.filter):
		m.cycleFilter()
		return m, nil
	case key.Matches(msg, m.keys.reenter):
		if item, ok := m.winners.SelectedItem().(winnerItem); ok {
			if m.raffle.ReEnterFrom(item.name, item.prize) {
				m.setStatus(statusOK, "%s re-entered the draw", item.name)
			}
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.winners, cmd = m.winners.Update(msg)
	return m, cmd
}

// spin validates the prize and pool, then starts a draw and begins listening for its events.
func (m *Model) spin() tea.Cmd {
	if m.Spinning() {
		return nil
	}

	prize := strings.TrimSpace(m.prizeInput.Value())
	if prize == "" {
		m.setStatus(statusErr, "Please enter a prize")
		return nil
	}

	pool := m.raffle.EligiblePool()
	if len(pool) == 0 {
		m.setStatus(statusErr, "No eligible participants. Add participants to start spinning")
		return nil
	}

	events, ok := m.raffle.StartDraw(prize)
	if !ok {
		m.setStatus(statusWarn, "A winner is still being recorded")
		return nil
	}

	m.pool = pool
	m.events = events
	for i := range m.reel {
		m.reel[i] = m.filler()
	}
	m.setStatus(statusInfo, "Spinning for %s...", prize)
	return m.waitForDraw()
}

func (m *Model) waitForDraw() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		if events == nil {
			return drawDoneMsg()
		}
		ev, ok := <-events
		if !ok {
			return drawDoneMsg()
		}
		return drawEventMsg(ev)
	}
}

func (m *Model) applyEvent(ev draw.Event) {
	switch ev.Phase {
	case draw.PhaseSpin, draw.PhaseReveal:
		m.shiftReel(ev.Name)
		if ev.Phase == draw.PhaseReveal {
			m.setStatus(statusOK, "🎉 %s", ev.Message)
		}
	case draw.PhaseCommit:
		if ev.Err != nil {
			m.setStatus(statusErr, "%s", ev.Message)
		}
		m.refresh()
	case draw.PhaseCancel:
		m.reel = [reelSize]string{}
		m.setStatus(statusWarn, "%s", ev.Message)
	}
}

// shiftReel scrolls the reel down one slot so that name lands in the center.
func (m *Model) shiftReel(name string) {
	center := reelSize / 2
	copy(m.reel[center+1:], m.reel[center:reelSize-1])
	m.reel[center] = name
	for i := range center {
		m.reel[i] = m.filler()
	}
}

// filler picks a decorative name for the off-center slots.
func (m *Model) filler() string {
	if len(m.pool) == 0 {
		return ""
	}
	return m.pool[rand.IntN(len(m.pool))]
}

func (m *Model) cycleFilter() {
	prizes := m.raffle.Winners().Prizes()
	options := append([]string{""}, prizes...)

	i := slices.Index(options, m.filter)
	m.filter = options[(i+1)%len(options)]
	m.refreshWinners()
}

func (m *Model) refresh() {
	m.refreshParticipants()
	m.refreshWinners()
}

func (m *Model) refreshParticipants() {
	names := m.raffle.Search(m.query)
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		prize, won := m.raffle.CurrentPrizeOf(name)
		items = append(items, participantItem{name: name, prize: prize, won: won})
	}
	m.participants.SetItems(items)
	if m.query != "" {
		m.participants.Title = fmt.Sprintf("Participants (%d/%d)", len(names), len(m.raffle.Participants()))
	} else {
		m.participants.Title = fmt.Sprintf("Participants (%d)", len(names))
	}
}

func (m *Model) refreshWinners() {
	groups := m.raffle.Winners()
	if m.filter != "" && !slices.Contains(groups.Prizes(), m.filter) {
		m.filter = ""
	}

	var items []list.Item
	for prize, names := range groups.All() {
		if m.filter != "" && prize != m.filter {
			continue
		}
		for _, name := range names {
			items = append(items, winnerItem{name: name, prize: prize})
		}
	}
	m.winners.SetItems(items)

	switch {
	case m.filter != "":
		m.winners.Title = fmt.Sprintf("Winners • %s (%d)", m.filter, len(items))
	default:
		m.winners.Title = fmt.Sprintf("Winners (%d)", groups.Total())
	}
}

func (m *Model) frame(p Panel, content string) string {
	style := styles.panel
	if m.panel == p {
		style = styles.focused
	}
	return style.Width(m.panelWidth()).Render(content)
}

func (m *Model) renderParticipants() string {
	var input string
	switch m.mode {
	case addMode:
		input = m.nameInput.View()
	case searchMode:
		input = m.searchInput.View()
	default:
		if m.query != "" {
			input = styles.help.Render("search: " + m.query)
		}
	}
	if input == "" {
		return m.participants.View()
	}
	return fmt.Sprintf("%s\n%s", input, m.participants.View())
}

func (m *Model) renderRaffle() string {
	w := m.panelWidth() - 2
	var b strings.Builder
	b.WriteString(styles.title.Render("Spin the Raffle"))
	b.WriteString("\n")

	for i, name := range m.reel {
		if name == "" {
			name = "?"
		}
		if i == reelSize/2 {
			b.WriteString(styles.center.Width(w).Render(name))
		} else {
			b.WriteString(styles.slot.Width(w).Render(name))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.prizeInput.View())
	b.WriteString("\n\n")

	st := m.raffle.Status()
	switch {
	case m.Spinning() && st.State == draw.Drawing:
		b.WriteString(styles.warn.Render(fmt.Sprintf("Spinning... %d/%d", st.Step, st.Total)))
	case st.State == draw.Revealed:
		b.WriteString(styles.ok.Render(fmt.Sprintf("%s won %s!", st.Winner, st.Prize)))
	case len(m.raffle.Participants()) == 0:
		b.WriteString(styles.help.Render("Add participants to start spinning"))
	default:
		b.WriteString(styles.help.Render(fmt.Sprintf("%d eligible", len(m.raffle.EligiblePool()))))
	}
	return b.String()
}

func (m *Model) renderWinners() string {
	if m.raffle.TotalWinners() == 0 {
		return fmt.Sprintf("%s\n\n%s", styles.title.Render("Winners"), styles.help.Render("No winners yet"))
	}
	return m.winners.View()
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	switch m.statusKind {
	case statusOK:
		return styles.ok.Render(m.status)
	case statusWarn:
		return styles.warn.Render(m.status)
	case statusErr:
		return styles.err.Render(m.status)
	default:
		return m.status
	}
}
