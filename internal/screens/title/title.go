// Package title implements the title screen: the banner, the main menu and
// the most recent recorded sessions.
package title

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coderush/internal/phase"
	"github.com/abhisek/coderush/internal/screen"
	"github.com/abhisek/coderush/internal/store"
	"github.com/abhisek/coderush/internal/ui/components"
	"github.com/abhisek/coderush/internal/ui/layout"
	"github.com/abhisek/coderush/internal/ui/theme"
)

// recentLimit is how many past sessions the title screen lists.
const recentLimit = 5

// HistoryFunc returns up to limit recorded sessions, newest first.
type HistoryFunc func(ctx context.Context, limit int) ([]store.SessionRecord, error)

type historyLoadedMsg struct {
	owner    *TitleScreen
	Sessions []store.SessionRecord
	Err      error
}

// TitleScreen is the surface of the Title phase.
type TitleScreen struct {
	game    screen.Game
	history HistoryFunc
	menu    components.Menu

	recent []store.SessionRecord
	loaded bool
	errMsg string
}

var _ screen.Screen = (*TitleScreen)(nil)
var _ screen.KeyHintProvider = (*TitleScreen)(nil)

// New creates a TitleScreen. history may be nil when no store is open.
func New(g screen.Game, history HistoryFunc) *TitleScreen {
	s := &TitleScreen{game: g, history: history}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "Play", Key: "p", Action: s.play},
		{Label: "Quit", Key: "q", Action: func() tea.Cmd { return tea.Quit }},
	})
	return s
}

func (s *TitleScreen) Mount()   {}
func (s *TitleScreen) Unmount() {}

func (s *TitleScreen) Init() tea.Cmd {
	if s.history == nil {
		return nil
	}
	history := s.history
	return func() tea.Msg {
		sessions, err := history(context.Background(), recentLimit)
		return historyLoadedMsg{owner: s, Sessions: sessions, Err: err}
	}
}

func (s *TitleScreen) Title() string {
	return ""
}

func (s *TitleScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *TitleScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.owner != s {
			return nil
		}
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return nil
		}
		s.recent = msg.Sessions
		return nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return cmd
	}
	return nil
}

func (s *TitleScreen) play() tea.Cmd {
	s.game.SetGamePhase(phase.Lobby)
	return nil
}

func (s *TitleScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, RenderBanner(width), "")
	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Render("Spot the bug. Pick the answer. Beat the clock."))
	sections = append(sections, "", s.menu.View())

	if recent := s.renderRecent(width); recent != "" {
		sections = append(sections, recent)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *TitleScreen) renderRecent(width int) string {
	if s.history == nil || !s.loaded {
		return ""
	}
	if s.errMsg != "" {
		return lipgloss.NewStyle().Foreground(theme.Error).
			Render("History unavailable: " + s.errMsg)
	}
	if len(s.recent) == 0 {
		return theme.Hint.Render("No sessions yet. Press p to play!")
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Recent sessions"))
	b.WriteString("\n")
	for _, rec := range s.recent {
		b.WriteString(formatRecord(rec))
		b.WriteString("\n")
	}
	return components.Card(strings.TrimRight(b.String(), "\n"), components.ContentWidth(width))
}

func formatRecord(rec store.SessionRecord) string {
	dur := rec.FinishedAt.Sub(rec.StartedAt)
	if dur < 0 {
		dur = 0
	}
	mins := int(dur.Minutes())
	secs := int(dur.Seconds()) % 60

	score := fmt.Sprintf("%d/%d", rec.Correct, rec.Total)
	scoreStyle := lipgloss.NewStyle().Foreground(theme.Text)
	if rec.Total > 0 && rec.Correct == rec.Total {
		scoreStyle = scoreStyle.Foreground(theme.Success)
	}

	return fmt.Sprintf("%s  %-12s  %s  %3.0f%%  %d:%02d",
		rec.FinishedAt.Local().Format("Jan 02 15:04"),
		truncate(rec.Nickname, 12),
		scoreStyle.Render(fmt.Sprintf("%-7s", score)),
		rec.Accuracy()*100,
		mins, secs,
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
