package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/coderush/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	// CompactHeightThreshold is the height below which screens drop
	// decorative spacing.
	CompactHeightThreshold = 30
)

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactHeight(height int) bool {
	return height < CompactHeightThreshold
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage fills the terminal with a resize request.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("Terminal too small (%d x %d)\n\nCodeRush needs at least %d x %d.",
		width, height, MinWidth, MinHeight)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(msg))
}

func bar() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// RenderHeader draws the brand on the left, title centered and status on
// the right.
func RenderHeader(title, status string, width int) string {
	inner := width - 2
	if inner < 0 {
		inner = 0
	}

	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(" CodeRush")
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status + " ")

	// The title is centered on the whole bar, then the side columns are
	// laid over its padding.
	side := lipgloss.Width(brand)
	if w := lipgloss.Width(right); w > side {
		side = w
	}
	middle := inner - 2*side
	if middle < 0 {
		middle = 0
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(side).Render(brand),
		lipgloss.NewStyle().Width(middle).Align(lipgloss.Center).Foreground(theme.Text).Render(title),
		lipgloss.NewStyle().Width(side).Align(lipgloss.Right).Render(right),
	)
	return bar().Width(width).Render(row)
}

// ScoreStatus formats the header status for a running session.
func ScoreStatus(correct, answered int) string {
	return fmt.Sprintf("✔ %d/%d", correct, answered)
}

// RenderFooter lists key hints separated by dots.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	sep := descStyle.Render("  ·  ")

	var b strings.Builder
	b.WriteString(" ")
	for i, h := range hints {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(keyStyle.Render(h.Key))
		b.WriteString(" ")
		b.WriteString(descStyle.Render(h.Description))
	}
	return bar().Width(width).Render(b.String())
}

// RenderFrame stacks header, content and footer, giving the content all
// remaining rows.
func RenderFrame(header, content, footer string, width, height int) string {
	rows := height - lipgloss.Height(header) - lipgloss.Height(footer)
	if rows < 0 {
		rows = 0
	}
	body := lipgloss.NewStyle().Width(width).Height(rows).MaxHeight(rows).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
