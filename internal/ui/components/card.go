package components

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/coderush/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for cards so that
// stacked boxes line up.
func ContentWidth(frameWidth int) int {
	// Leave room for the card border (2) + inner padding (4)
	w := frameWidth - 6
	if w > 76 {
		w = 76
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded-border card at the given content width.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(1, 2).
		Render(content)
}

// CodeBlock renders a code snippet with line numbers. Tabs are expanded so
// the block keeps its width.
func CodeBlock(code string, cw int) string {
	code = strings.TrimRight(strings.ReplaceAll(code, "\t", "    "), "\n")
	if code == "" {
		return ""
	}

	lines := strings.Split(code, "\n")
	numStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(numStyle.Render(lipgloss.NewStyle().Width(3).Align(lipgloss.Right).Render(strconv.Itoa(i + 1))))
		b.WriteString("  ")
		b.WriteString(line)
	}

	return theme.Code.Width(cw).Render(b.String())
}
