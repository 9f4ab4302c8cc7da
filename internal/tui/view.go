package tui

import (
	"fmt"
	"strings"

	"github.com/fruitbowl/fruitbowl/internal/card"
	"github.com/fruitbowl/fruitbowl/internal/game"
)

func (m *Model) View() string {
	if m.quitting {
		return "Thanks for playing!\n"
	}
	if !m.haveState {
		return fmt.Sprintf("\n  %s Connecting...\n", m.spin.View())
	}

	switch {
	case m.state.Over:
		return m.viewGameOver()
	case m.state.Started:
		return m.viewGame()
	default:
		return m.viewLobby()
	}
}

func (m *Model) viewLobby() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("FRUIT BOWL"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  Room code: %s\n\n", RoomCodeStyle.Render(m.state.RoomCode)))

	b.WriteString("  Players:\n")
	for _, p := range m.state.Players {
		marker := " "
		if p.ID == m.sess.PlayerID() {
			marker = ">"
		}
		name := p.Name
		if p.IsHost {
			name += " (host)"
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", marker, name))
	}
	b.WriteString("\n")

	need := game.MaxPlayers - len(m.state.Players)
	if need > 0 {
		b.WriteString(fmt.Sprintf("  %s Waiting for %d more player(s)...\n", m.spin.View(), need))
	} else if m.sess.IsHost() {
		b.WriteString(SuccessStyle.Render("  Table is full, press [s] to start!"))
		b.WriteString("\n")
	} else {
		b.WriteString(fmt.Sprintf("  %s Waiting for the host to start...\n", m.spin.View()))
	}

	if m.errText != "" {
		b.WriteString("\n  " + ErrorStyle.Render(m.errText) + "\n")
	}

	b.WriteString("\n")
	if m.sess.IsHost() {
		b.WriteString(HelpStyle.Render("  [s] start  [r] refresh  [q] leave"))
	} else {
		b.WriteString(HelpStyle.Render("  [r] refresh  [q] leave"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *Model) viewGame() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("FRUIT BOWL"))
	b.WriteString(fmt.Sprintf("  room %s\n\n", RoomCodeStyle.Render(m.state.RoomCode)))

	if current, ok := m.state.CurrentTurn(); ok {
		if m.sess.IsMyTurn() {
			b.WriteString(TurnStyle.Render("  Your turn! Pick a card to pass."))
		} else {
			b.WriteString(fmt.Sprintf("  %s Waiting for %s to play...", m.spin.View(), current.Name))
		}
		b.WriteString("\n\n")
	}

	me, _ := m.state.FindPlayer(m.sess.PlayerID())
	for i, p := range m.state.Players {
		if i == me {
			continue
		}
		turn := " "
		if i == m.state.CurrentPlayer {
			turn = "*"
		}
		target := ""
		if i == m.selectedTarget {
			target = SuccessStyle.Render("  <- pass here")
		}
		b.WriteString(fmt.Sprintf("  %s %-12s %d cards%s\n", turn, p.Name, len(p.Cards), target))
	}

	b.WriteString("\n  Your hand:\n  ")
	hand := m.myHand()
	for i, k := range hand {
		label := fmt.Sprintf("%d:%s %s", i+1, k.Emoji(), k.String())
		if i == m.selectedCard {
			b.WriteString(SelectedCardStyle.Render(label))
		} else {
			b.WriteString(KindStyle(k).Render(label))
		}
		b.WriteString(" ")
	}
	b.WriteString("\n\n")

	if len(m.events) > 0 {
		b.WriteString(m.logView.View())
		b.WriteString("\n")
	}

	if m.errText != "" {
		b.WriteString("  " + ErrorStyle.Render(m.errText) + "\n")
	}

	b.WriteString(HelpStyle.Render("  [1-4/←→] select  [tab] target  [enter] pass  [n] pass to next  [q] leave"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) viewGameOver() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("GAME OVER"))
	b.WriteString("\n\n")

	if winner, ok := m.state.Winner(); ok {
		if winner.ID == m.sess.PlayerID() {
			b.WriteString(SuccessStyle.Render("  🎉 Congratulations! You won! 🎉"))
		} else {
			b.WriteString(SuccessStyle.Render(fmt.Sprintf("  🏆 %s won the game! 🏆", winner.Name)))
		}
		b.WriteString("\n\n")
	}

	b.WriteString("  Final results:\n")
	for _, p := range m.state.Players {
		kind := "no cards"
		if len(p.Cards) > 0 {
			kind = majorityKind(p.Cards).Label()
		}
		b.WriteString(fmt.Sprintf("    %-12s %d cards (%s)\n", p.Name, len(p.Cards), kind))
	}

	b.WriteString("\n")
	if m.sess.IsHost() {
		b.WriteString(HelpStyle.Render("  Run 'fruitbowl create' to host another game."))
	} else {
		b.WriteString(HelpStyle.Render("  Ask the host for a new room code to play again."))
	}
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("  [enter/q] exit"))
	b.WriteString("\n")
	return b.String()
}

// majorityKind returns the most common kind in a hand
func majorityKind(hand []card.Kind) card.Kind {
	counts := make(map[card.Kind]int, len(hand))
	best := hand[0]
	for _, k := range hand {
		counts[k]++
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best
}

// diffEvents describes the transition from old to new as log lines for the
// event pane. The sync protocol only ships whole states, so who-did-what is
// reconstructed from hand sizes and membership changes.
func diffEvents(prev, next game.State) []string {
	var events []string

	oldByID := make(map[string]game.Player, len(prev.Players))
	for _, p := range prev.Players {
		oldByID[p.ID] = p
	}
	newByID := make(map[string]game.Player, len(next.Players))
	for _, p := range next.Players {
		newByID[p.ID] = p
	}

	for _, p := range next.Players {
		if _, ok := oldByID[p.ID]; !ok {
			events = append(events, fmt.Sprintf("%s joined the room", p.Name))
		}
	}
	for _, p := range prev.Players {
		if _, ok := newByID[p.ID]; !ok {
			events = append(events, fmt.Sprintf("%s left the room", p.Name))
		}
	}

	if !prev.Started && next.Started {
		events = append(events, "cards dealt, game on!")
	}

	if prev.Started && next.Started {
		var sender, receiver string
		for _, p := range next.Players {
			before, ok := oldByID[p.ID]
			if !ok {
				continue
			}
			switch {
			case len(p.Cards) < len(before.Cards):
				sender = p.Name
			case len(p.Cards) > len(before.Cards):
				receiver = p.Name
			}
		}
		if sender != "" && receiver != "" {
			events = append(events, fmt.Sprintf("%s passed a card to %s", sender, receiver))
		}
	}

	if !prev.Over && next.Over {
		if winner, ok := next.Winner(); ok {
			events = append(events, fmt.Sprintf("%s wins with four of a kind!", winner.Name))
		}
	}

	return events
}
