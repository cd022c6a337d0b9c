// Package result implements the end-of-set summary screen.
package result

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coderush/internal/phase"
	"github.com/abhisek/coderush/internal/screen"
	"github.com/abhisek/coderush/internal/session"
	"github.com/abhisek/coderush/internal/ui/components"
	"github.com/abhisek/coderush/internal/ui/layout"
	"github.com/abhisek/coderush/internal/ui/theme"
)

// maxMissedShown caps the missed problem list.
const maxMissedShown = 5

// ResultScreen displays the summary of the finished set.
type ResultScreen struct {
	game    screen.Game
	summary *session.Summary
	menu    components.Menu
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a ResultScreen.
func New(g screen.Game) *ResultScreen {
	s := &ResultScreen{game: g}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "Play again", Key: "p", Action: func() tea.Cmd {
			s.game.SetGamePhase(phase.Lobby)
			return nil
		}},
		{Label: "Back to title", Key: "t", Action: func() tea.Cmd {
			s.game.ResetGameState()
			return nil
		}},
	})
	return s
}

// Mount takes the summary of the set that just ended.
func (s *ResultScreen) Mount() {
	s.summary = s.game.LastSummary()
}

func (s *ResultScreen) Unmount() {}

func (s *ResultScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultScreen) Title() string {
	return "Results"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Title"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) tea.Cmd {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if kmsg.String() == "esc" {
		s.game.ResetGameState()
		return nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(kmsg)
	return cmd
}

func (s *ResultScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder

	b.WriteString(theme.Title.Width(cw).Render("Set complete!"))
	b.WriteString("\n\n")

	sum := s.summary
	if sum == nil {
		b.WriteString(theme.Hint.Render("No answers were recorded."))
		b.WriteString("\n\n")
		b.WriteString(s.menu.View())
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
	}

	dur := sum.Duration()
	mins := int(dur.Minutes())
	secs := int(dur.Seconds()) % 60
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s  ·  %d:%02d", sum.Nickname, mins, secs)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(
		fmt.Sprintf("Problems: %d    Answered: %d    Correct: %d",
			sum.Total, sum.Answered, sum.Correct)))
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("Accuracy", sum.Accuracy, cw).View())
	b.WriteString("\n\n")

	if len(sum.Missed) > 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Review these"))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)))
		b.WriteString("\n")
		for i, p := range sum.Missed {
			if i == maxMissedShown {
				b.WriteString(theme.Hint.Render(fmt.Sprintf("  ...and %d more", len(sum.Missed)-maxMissedShown)))
				b.WriteString("\n")
				break
			}
			title := p.Title
			if title == "" {
				title = fmt.Sprintf("Problem %d", p.ID)
			}
			line := fmt.Sprintf("  ✗ %s (%s)", title, strings.ToUpper(p.Category))
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	} else if sum.Answered > 0 && sum.Correct == sum.Answered {
		b.WriteString(theme.Correct.Render("Flawless run!"))
		b.WriteString("\n\n")
	}

	b.WriteString(s.menu.View())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}
