// Package tui is the presentation collaborator for a session: it renders
// states delivered by the session's OnStateChange callback and dispatches
// user intents back into it. The game core never touches display state, and
// card/target selection lives only in this model, never in the shared
// serialized state.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/fruitbowl/fruitbowl/internal/card"
	"github.com/fruitbowl/fruitbowl/internal/game"
	"github.com/fruitbowl/fruitbowl/internal/session"
)

// StateMsg carries a fresh game state into the Bubble Tea loop
type StateMsg game.State

type actionErrMsg struct{ err error }

type refreshDoneMsg struct{}

const eventLogHeight = 6

// Model is the Bubble Tea model for the game client
type Model struct {
	ctx    context.Context
	sess   *session.Session
	logger *log.Logger
	states chan game.State

	// Current shared state, replaced wholesale on every StateMsg
	state     game.State
	haveState bool

	// Selection is client-local by design; it is handed to the session
	// only as PassCard arguments
	selectedCard   int
	selectedTarget int

	errText string
	events  []string
	logView viewport.Model
	spin    spinner.Model

	width       int
	height      int
	initialized bool
	quitting    bool
}

// New creates a model bound to sess. The session's OnStateChange callback
// is registered here; states flow through an internal channel so renders
// happen on the Bubble Tea goroutine.
func New(ctx context.Context, sess *session.Session, logger *log.Logger) *Model {
	states := make(chan game.State, 32)
	sess.OnStateChange(func(st game.State) {
		select {
		case states <- st:
		default:
			// Drop when the UI lags; the next poll delivers a newer state
		}
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	vp := viewport.New(60, eventLogHeight)

	return &Model{
		ctx:            ctx,
		sess:           sess,
		logger:         logger.WithPrefix("tui"),
		states:         states,
		selectedCard:   -1,
		selectedTarget: -1,
		spin:           sp,
		logView:        vp,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.waitForState())
}

func (m *Model) waitForState() tea.Cmd {
	return func() tea.Msg {
		return StateMsg(<-m.states)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = max(20, msg.Width-4)
		m.logView.Height = eventLogHeight
		m.initialized = true
		return m, nil

	case StateMsg:
		m.applyState(game.State(msg))
		return m, m.waitForState()

	case actionErrMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		return m, nil

	case refreshDoneMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) applyState(st game.State) {
	if m.haveState {
		for _, ev := range diffEvents(m.state, st) {
			m.events = append(m.events, ev)
		}
	} else {
		m.events = append(m.events, fmt.Sprintf("connected to room %s", st.RoomCode))
	}
	oldTurn := m.state.CurrentPlayer
	m.state = st
	m.haveState = true

	m.logView.SetContent(EventLogStyle.Render(strings.Join(m.events, "\n")))
	m.logView.GotoBottom()

	// A turn change or game end invalidates any pending selection
	if st.Over || st.CurrentPlayer != oldTurn {
		m.selectedCard = -1
		m.selectedTarget = -1
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" || key == "q" {
		m.quitting = true
		return m, tea.Sequence(m.leaveCmd(), tea.Quit)
	}

	if !m.haveState {
		return m, nil
	}

	switch {
	case m.state.Over:
		if key == "enter" {
			m.quitting = true
			return m, tea.Sequence(m.leaveCmd(), tea.Quit)
		}

	case !m.state.Started:
		switch key {
		case "s":
			if m.sess.IsHost() {
				m.errText = ""
				return m, m.startCmd()
			}
			m.errText = "only the host can start the game"
		case "r":
			return m, m.refreshCmd()
		}

	default:
		return m.handleGameKey(key)
	}

	return m, nil
}

func (m *Model) handleGameKey(key string) (tea.Model, tea.Cmd) {
	hand := m.myHand()

	switch key {
	case "1", "2", "3", "4":
		idx := int(key[0] - '1')
		if idx < len(hand) {
			m.selectedCard = idx
			m.errText = ""
		}
	case "left", "h":
		if len(hand) > 0 {
			if m.selectedCard <= 0 {
				m.selectedCard = len(hand) - 1
			} else {
				m.selectedCard--
			}
		}
	case "right", "l":
		if len(hand) > 0 {
			m.selectedCard = (m.selectedCard + 1) % len(hand)
		}
	case "tab", "t":
		m.cycleTarget()
	case "enter", " ":
		if m.selectedCard < 0 {
			m.errText = "select a card first"
			return m, nil
		}
		m.errText = ""
		if m.selectedTarget >= 0 {
			return m, m.passCmd(m.selectedCard, m.selectedTarget)
		}
		return m, m.passToNextCmd(m.selectedCard)
	case "n":
		if m.selectedCard < 0 {
			m.errText = "select a card first"
			return m, nil
		}
		m.errText = ""
		return m, m.passToNextCmd(m.selectedCard)
	}

	return m, nil
}

// cycleTarget steps the pass target through the other players' seats
func (m *Model) cycleTarget() {
	me, ok := m.state.FindPlayer(m.sess.PlayerID())
	if !ok || len(m.state.Players) < 2 {
		return
	}
	target := m.selectedTarget
	for range m.state.Players {
		if target < 0 {
			target = 0
		} else {
			target = (target + 1) % len(m.state.Players)
		}
		if target != me {
			m.selectedTarget = target
			return
		}
	}
}

func (m *Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.sess.Start(m.ctx); err != nil {
			return actionErrMsg{err}
		}
		return nil
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		m.sess.Refresh(m.ctx)
		return refreshDoneMsg{}
	}
}

func (m *Model) passCmd(cardIndex, targetIndex int) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.sess.PassCard(m.ctx, cardIndex, targetIndex); err != nil {
			return actionErrMsg{err}
		}
		return nil
	}
}

func (m *Model) passToNextCmd(cardIndex int) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.sess.PassToNext(m.ctx, cardIndex); err != nil {
			return actionErrMsg{err}
		}
		return nil
	}
}

func (m *Model) leaveCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.sess.Leave(m.ctx); err != nil {
			m.logger.Warn("leaving room", "error", err)
		}
		return nil
	}
}

func (m *Model) myHand() []card.Kind {
	idx, ok := m.state.FindPlayer(m.sess.PlayerID())
	if !ok {
		return nil
	}
	return m.state.Players[idx].Cards
}
