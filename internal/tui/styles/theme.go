package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("#0B8FD1")
	Accent    = lipgloss.Color("#38BDF8")
	Secondary = lipgloss.Color("#10B981")
	Warning   = lipgloss.Color("#F59E0B")
	Error     = lipgloss.Color("#EF4444")
	Muted     = lipgloss.Color("#6B7280")
	Border    = lipgloss.Color("#374151")
	White     = lipgloss.Color("#FFFFFF")
	Black     = lipgloss.Color("#000000")
	LightGray = lipgloss.Color("#E5E7EB")

	// Message Styles
	UserMessage = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(White).
			Bold(true)

	UserLabel = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	BotMessage = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(LightGray)

	BotLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	Timestamp = lipgloss.NewStyle().
			Foreground(Muted)

	// Cards
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	CardSelected = Card.
			BorderForeground(Primary)

	CardTitle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	CardMeta = lipgloss.NewStyle().
			Foreground(Muted)

	Bar = lipgloss.NewStyle().
		Foreground(Accent)

	// Input Styles
	InputBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	InputDisabled = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1)

	// Dialogs
	Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Padding(1, 2)

	DialogTitle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Key = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(Muted)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)

	// Status Bar Styles
	StatusBar = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	StatusBarBusy = lipgloss.NewStyle().
			Foreground(Primary).
			Padding(0, 1)

	StatusBarError = lipgloss.NewStyle().
			Foreground(Error).
			Padding(0, 1)

	// Header
	Header = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true).
		Padding(0, 1)
)

// KeyHint renders "key action" pairs separated by bullets.
func KeyHint(pairs ...string) string {
	var out string
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			out += Hint.Render(" • ")
		}
		out += Key.Render(pairs[i]) + Hint.Render(" "+pairs[i+1])
	}
	return out
}
