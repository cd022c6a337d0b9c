// Package theme holds the CodeRush palette and shared styles.
package theme

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Palette. Everything is tuned for a dark terminal background.
var (
	Primary   = lipgloss.Color("#38BDF8") // sky
	Secondary = lipgloss.Color("#14B8A6") // teal
	Accent    = lipgloss.Color("#FACC15") // amber
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#0F172A")
	BgCard    = lipgloss.Color("#1E293B")
	BgCode    = lipgloss.Color("#111827")
	Border    = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().Foreground(Primary).Bold(true).Align(lipgloss.Center)
	Hint  = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	// Code is the snippet panel. Its background sets code apart from prose.
	Code = lipgloss.NewStyle().Foreground(Text).Background(BgCode).Padding(0, 1)

	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)

	// Verdict styles. Pending marks an answer the server has not judged yet.
	Correct   = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Pending   = lipgloss.NewStyle().Foreground(Accent)

	ProgressFilled = lipgloss.NewStyle().Background(Secondary)
	ProgressEmpty  = lipgloss.NewStyle().Background(Border)

	ButtonActive   = lipgloss.NewStyle().Background(Primary).Foreground(BgDark).Bold(true).Padding(0, 2)
	ButtonInactive = lipgloss.NewStyle().
			Background(BgCard).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)

// categoryColors picks a badge color per problem category. Unknown
// categories use Secondary.
var categoryColors = map[string]lipgloss.Style{
	"BUGFIX":          lipgloss.NewStyle().Background(Error),
	"OX":              lipgloss.NewStyle().Background(Primary),
	"TRUE_FALSE":      lipgloss.NewStyle().Background(Primary),
	"MULTIPLE_CHOICE": lipgloss.NewStyle().Background(Accent),
	"SUBJECTIVE":      lipgloss.NewStyle().Background(Success),
}

// CategoryBadge renders a category as an upper-case label on a colored
// background.
func CategoryBadge(category string) string {
	label := strings.ToUpper(strings.TrimSpace(category))
	if label == "" {
		label = "PROBLEM"
	}
	style, ok := categoryColors[label]
	if !ok {
		style = lipgloss.NewStyle().Background(Secondary)
	}
	return style.Foreground(BgDark).Bold(true).Padding(0, 1).Render(label)
}
