package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"graphchat/internal/state"
	"graphchat/internal/tui/styles"
)

// EmptyState is shown when there are no messages
var EmptyState = lipgloss.NewStyle().
	Foreground(styles.Muted).
	Align(lipgloss.Center).
	Padding(2, 0)

// WelcomeText is shown before the first message.
var WelcomeText = "Welcome to Data Exploration\n\n" +
	"Start by asking questions about your data. I can help you explore patterns,\n" +
	"create visualizations, and generate insights from your Neo4j database.\n\n" +
	"Try asking: \"" + strings.Join(state.ExampleQuestions[:2], "\" or \"") + "\""
