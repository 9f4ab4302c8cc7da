package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/fruitbowl/fruitbowl/internal/card"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	RoomCodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	TurnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	SelectedCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#7D56F4")).
				Bold(true).
				Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	EventLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B0B0B0"))
)

// kindColors maps each card kind to its display color
var kindColors = map[card.Kind]lipgloss.Color{
	card.Apple:  lipgloss.Color("#FF6B6B"),
	card.Banana: lipgloss.Color("#FFEAA7"),
	card.Orange: lipgloss.Color("#FFA94D"),
	card.Mango:  lipgloss.Color("#96CEB4"),
}

// KindStyle returns the style for rendering a card of the given kind,
// degrading gracefully on terminals without color support
func KindStyle(k card.Kind) lipgloss.Style {
	if termenv.ColorProfile() == termenv.Ascii {
		return CardStyle
	}
	return CardStyle.Foreground(kindColors[k]).Bold(true)
}
