// Package app hosts the terminal program: it wires the session to the
// screens and drives both from the Bubble Tea event loop.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/coderush/internal/config"
	"github.com/abhisek/coderush/internal/game"
	"github.com/abhisek/coderush/internal/gateway"
	"github.com/abhisek/coderush/internal/loop"
	"github.com/abhisek/coderush/internal/metrics"
	"github.com/abhisek/coderush/internal/phase"
	"github.com/abhisek/coderush/internal/screen"
	"github.com/abhisek/coderush/internal/store"
	"github.com/abhisek/coderush/internal/ui/layout"
)

// Options configures the terminal program.
type Options struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *metrics.Set

	// History records finished sets and lists recent ones. Optional.
	History store.SessionRepo

	// AutoStart skips the title and lobby and starts a session with
	// Config.Game.Nickname.
	AutoStart bool
}

// AppModel is the root Bubble Tea model. Its Update is the session's
// dispatcher: every posted completion runs there.
type AppModel struct {
	game    *game.Orchestrator
	phases  *phase.Controller
	gateway *gateway.Async
	logger  zerolog.Logger

	autoStart string
	mounted   phase.Surface
	width     int
	height    int
}

var _ tea.Model = (*AppModel)(nil)

func (m *AppModel) Init() tea.Cmd {
	m.phases.Start()
	if m.autoStart != "" {
		if err := m.game.StartSession(m.autoStart); err != nil {
			m.logger.Warn().Err(err).Msg("auto start failed")
		}
	}
	return m.syncMount()
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dispatchMsg:
		msg.fn()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		cmd = m.updateActive(msg)

	default:
		cmd = m.updateActive(msg)
	}

	return m, tea.Batch(cmd, m.syncMount())
}

func (m *AppModel) updateActive(msg tea.Msg) tea.Cmd {
	if s := m.activeScreen(); s != nil {
		return s.Update(msg)
	}
	return nil
}

// syncMount runs Init of a screen the phase controller mounted since the
// last call.
func (m *AppModel) syncMount() tea.Cmd {
	active := m.phases.Active()
	if active == m.mounted {
		return nil
	}
	m.mounted = active
	if s, ok := active.(screen.Screen); ok {
		return s.Init()
	}
	return nil
}

func (m *AppModel) activeScreen() screen.Screen {
	s, _ := m.phases.Active().(screen.Screen)
	return s
}

// Phase returns the current game phase.
func (m *AppModel) Phase() phase.Phase {
	return m.phases.Current()
}

// Game returns the session orchestrator.
func (m *AppModel) Game() *game.Orchestrator {
	return m.game
}

// Close cancels in-flight requests.
func (m *AppModel) Close() {
	m.gateway.Close()
}

func (m *AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current terminal size.
func (m *AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.activeScreen()
	title := ""
	if active != nil {
		title = active.Title()
	}

	status := ""
	switch m.phases.Current() {
	case phase.InGame, phase.Result:
		snap := m.game.Snapshot()
		status = layout.ScoreStatus(snap.Correct, snap.Answered)
	}
	header := layout.RenderHeader(title, status, m.width)

	footerHints := []layout.KeyHint{
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := ""
	if active != nil {
		content = active.View(m.width, contentHeight)
	}
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	d := &programDispatcher{}
	m, err := New(opts, d)
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m)
	d.attach(p)

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}

var _ loop.Dispatcher = (*programDispatcher)(nil)
