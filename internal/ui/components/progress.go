package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/coderush/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar with a trailing caption.
type ProgressBar struct {
	Label   string
	Percent float64
	Caption string
	Width   int
}

// NewProgressBar creates a bar showing percent as "NN%".
func NewProgressBar(label string, percent float64, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: percent,
		Caption: fmt.Sprintf("%d%%", int(clamp01(percent)*100)),
		Width:   width,
	}
}

// NewStepBar creates a bar for step done of total, captioned "done/total".
func NewStepBar(label string, done, total, width int) ProgressBar {
	var pct float64
	if total > 0 {
		pct = float64(done) / float64(total)
	}
	return ProgressBar{
		Label:   label,
		Percent: pct,
		Caption: fmt.Sprintf("%d/%d", done, total),
		Width:   width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	captionWidth := 0
	if p.Caption != "" {
		captionWidth = len(p.Caption) + 2
	}

	barWidth := p.Width - lipgloss.Width(result) - captionWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * clamp01(p.Percent))
	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	if p.Caption != "" {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render("  " + p.Caption)
	}

	return result
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
