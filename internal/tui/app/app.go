// Package app is the root bubbletea model: the upload screen, then the chat
// and dashboard views over a shared state.App.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"graphchat/internal/logging"
	"graphchat/internal/state"
	"graphchat/internal/tui/components/chat"
	"graphchat/internal/tui/components/configedit"
	"graphchat/internal/tui/components/dashboard"
	"graphchat/internal/tui/components/input"
	"graphchat/internal/tui/components/prompt"
	"graphchat/internal/tui/components/tabs"
	"graphchat/internal/tui/components/toast"
	"graphchat/internal/tui/components/upload"
	"graphchat/internal/tui/styles"
)

// Option configures the model.
type Option func(*Model)

// WithExportDir sets where downloads are written.
func WithExportDir(dir string) Option {
	return func(m *Model) { m.exportDir = dir }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock overrides the time used for archive names.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// Model is the main application model
type Model struct {
	app       *state.App
	backend   state.Backend
	exportDir string
	log       *logging.Logger
	now       func() time.Time

	tabs    tabs.Model
	chat    chat.Model
	input   input.Model
	dash    dashboard.Model
	upload  upload.Model
	toast   toast.Model
	spinner spinner.Model
	editor  *configedit.Model
	rename  *prompt.Model

	snap         state.Snapshot
	cancel       context.CancelFunc
	uploadCancel context.CancelFunc
	width        int
	height       int
	ready        bool
}

// New creates a new application model
func New(a *state.App, b state.Backend, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	m := Model{
		app:       a,
		backend:   b,
		exportDir: ".",
		log:       logging.Nop(),
		now:       time.Now,
		tabs: tabs.New([]tabs.Tab{
			{ID: string(state.ViewChat), Title: "Chat"},
			{ID: string(state.ViewDashboard), Title: "Dashboard"},
		}),
		chat:    chat.New(80, 20),
		input:   input.New(80, state.ExampleQuestions),
		dash:    dashboard.New(80, 20),
		upload:  upload.New(a.Extension()),
		toast:   toast.New(),
		spinner: sp,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.sync()
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return m.input.Init()
}
