package api

import (
	"strings"

	"github.com/abhisek/coderush/internal/problem"
)

// Submission is one answer on its way to the server. It is built from the
// current problem and the player's input and never stored.
type Submission struct {
	ProblemID int
	Category  string

	// Subjective selects the free-text body shape.
	Subjective bool

	SelectedChoice string
	WrittenAnswer  string
	TargetSnippet  string
	FixAttempt     string
}

// NewObjectiveSubmission builds a choice submission. fixAttempt is only sent
// for BUGFIX problems.
func NewObjectiveSubmission(p problem.Problem, selectedChoice, fixAttempt string) Submission {
	return Submission{
		ProblemID:      p.ID,
		Category:       p.Category,
		SelectedChoice: selectedChoice,
		TargetSnippet:  p.TargetSnippet,
		FixAttempt:     fixAttempt,
	}
}

// NewSubjectiveSubmission builds a free-text submission.
func NewSubjectiveSubmission(p problem.Problem, writtenAnswer string) Submission {
	return Submission{
		ProblemID:     p.ID,
		Category:      p.Category,
		Subjective:    true,
		WrittenAnswer: writtenAnswer,
		TargetSnippet: p.TargetSnippet,
	}
}

// IsBugfix reports whether the category is BUGFIX, ignoring case.
func (s Submission) IsBugfix() bool {
	return strings.EqualFold(strings.TrimSpace(s.Category), problem.CategoryBugfix)
}

// Body returns the JSON body for the submit endpoint.
//
// Objective bodies always carry problemId and selectedChoice, plus
// targetSnippet and fixAttempt for BUGFIX. Subjective bodies carry the
// written answer under fixAttempt and an empty selectedChoice, which the
// server requires even though it is unused.
func (s Submission) Body() map[string]any {
	if s.Subjective {
		return map[string]any{
			"problemId":      s.ProblemID,
			"targetSnippet":  s.TargetSnippet,
			"fixAttempt":     s.WrittenAnswer,
			"selectedChoice": "",
		}
	}
	body := map[string]any{
		"problemId":      s.ProblemID,
		"selectedChoice": s.SelectedChoice,
	}
	if s.IsBugfix() {
		body["targetSnippet"] = s.TargetSnippet
		body["fixAttempt"] = s.FixAttempt
	}
	return body
}
