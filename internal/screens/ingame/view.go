package ingame

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/coderush/internal/problem"
	"github.com/abhisek/coderush/internal/ui/components"
	"github.com/abhisek/coderush/internal/ui/layout"
	"github.com/abhisek/coderush/internal/ui/theme"
)

func (s *InGameScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Waiting for the problem set...")
	}

	cw := components.ContentWidth(width)
	var b strings.Builder

	// Info line.
	p := s.current
	infoLeft := theme.CategoryBadge(p.Category)
	if p.Type != "" {
		infoLeft += lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + p.Type)
	}
	b.WriteString(infoLeft)
	b.WriteString("\n")
	b.WriteString(components.NewStepBar("", s.index+1, s.total, cw).View())
	b.WriteString("\n\n")

	if p.Title != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(cw).Render(p.Title))
		b.WriteString("\n\n")
	}
	if p.Description != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Width(cw).Render(p.Description))
		b.WriteString("\n\n")
	}
	if code := components.CodeBlock(p.TargetSnippet, cw); code != "" {
		b.WriteString(code)
		b.WriteString("\n\n")
	}

	b.WriteString(s.renderAnswerArea(cw))

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
		b.WriteString("\n")
	}

	if s.awaiting {
		b.WriteString("\n")
		b.WriteString(theme.Pending.Render("Checking your answer..."))
		b.WriteString("\n")
	}
	if s.verdict != nil {
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(cw))
	}

	content := b.String()
	if !layout.IsCompactHeight(height) {
		content = "\n" + content
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, content)
}

func (s *InGameScreen) renderAnswerArea(cw int) string {
	var b strings.Builder
	p := s.current

	if len(p.Choices) > 0 && p.Kind() != problem.KindSubjective {
		b.WriteString(s.choices.View(s.verdict))
	}

	switch p.Kind() {
	case problem.KindBugfix:
		label := "Fix: "
		if s.focus == focusInput {
			label = theme.Selected.Render("Fix: ")
		}
		b.WriteString("\n")
		b.WriteString(label + s.input.View())
		b.WriteString("\n")
	case problem.KindSubjective:
		b.WriteString("Answer: " + s.input.View())
		b.WriteString("\n")
	}
	return b.String()
}

func (s *InGameScreen) renderFeedback(cw int) string {
	var b strings.Builder
	p := s.current

	if *s.verdict {
		b.WriteString(theme.Correct.Render("Correct!"))
	} else {
		b.WriteString(theme.Incorrect.Render("Not quite"))
		switch {
		case p.Kind() == problem.KindBugfix && p.CorrectFix != "":
			b.WriteString("\n\n")
			b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Reference fix:"))
			b.WriteString("\n")
			b.WriteString(components.CodeBlock(p.CorrectFix, cw))
		case p.Answer != "":
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
				Render(fmt.Sprintf("Correct answer: %s", p.Answer)))
		}
	}

	next := "Press n for the next problem"
	if s.index+1 >= s.total {
		next = "Press n to see your results"
	}
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render(next))
	return b.String()
}
