package problem

import (
	"encoding/json"
	"strings"
)

// UnknownID is assigned when the server omits the id or sends one that
// cannot be read as an integer.
const UnknownID = -1

// CategoryBugfix is the category whose submissions carry the code under
// test and the player's fix alongside the selected choice.
const CategoryBugfix = "BUGFIX"

// Problem is one challenge of a problem set. It is immutable once parsed.
type Problem struct {
	// ID is the server id, or UnknownID.
	ID int

	// Category discriminates the submission shape (e.g. "BUGFIX",
	// "MULTIPLE_CHOICE", "SUBJECTIVE"). Compared case-insensitively.
	Category string

	// Type is the server's free-form problem type.
	Type string

	Title string

	// Description is the human-readable statement with any embedded code
	// block removed.
	Description string

	// TargetSnippet is the code under test, either sent explicitly or
	// extracted from the description.
	TargetSnippet string

	// CorrectFix is the reference fix for bugfix problems, or "".
	CorrectFix string

	// Answer is the canonical correct value for objective problems.
	Answer string

	// Choices lists candidate answers in server order. Never nil.
	Choices []string
}

// Kind groups categories by how answers are collected and submitted.
type Kind string

const (
	// KindObjective problems are answered by picking one of Choices.
	KindObjective Kind = "objective"

	// KindSubjective problems are answered with free text.
	KindSubjective Kind = "subjective"

	// KindBugfix problems are objective problems that also carry a fix attempt.
	KindBugfix Kind = "bugfix"
)

// Kind derives the answer kind from the category. Unknown categories fall
// back to objective when choices are present and subjective otherwise.
func (p Problem) Kind() Kind {
	switch strings.ToUpper(strings.TrimSpace(p.Category)) {
	case CategoryBugfix:
		return KindBugfix
	case "SUBJECTIVE", "SHORT_ANSWER", "ESSAY", "CODING":
		return KindSubjective
	case "OBJECTIVE", "MULTIPLE_CHOICE", "OX", "TRUE_FALSE":
		return KindObjective
	}
	if len(p.Choices) > 0 {
		return KindObjective
	}
	return KindSubjective
}

// IsBugfix reports whether the category is BUGFIX, ignoring case.
func (p Problem) IsBugfix() bool {
	return strings.EqualFold(strings.TrimSpace(p.Category), CategoryBugfix)
}

// wireProblem is the canonical JSON shape of a problem.
type wireProblem struct {
	ID            int      `json:"id"`
	Category      string   `json:"category"`
	Type          string   `json:"type"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	TargetSnippet string   `json:"targetSnippet"`
	CorrectFix    string   `json:"correctFix"`
	Answer        string   `json:"answer"`
	Choices       []string `json:"choices"`
}

// Raw returns the canonical JSON form of p. Normalizing it yields p again.
func (p Problem) Raw() json.RawMessage {
	choices := p.Choices
	if choices == nil {
		choices = []string{}
	}
	b, err := json.Marshal(wireProblem{
		ID:            p.ID,
		Category:      p.Category,
		Type:          p.Type,
		Title:         p.Title,
		Description:   p.Description,
		TargetSnippet: p.TargetSnippet,
		CorrectFix:    p.CorrectFix,
		Answer:        p.Answer,
		Choices:       choices,
	})
	if err != nil {
		// Only strings and ints are marshaled.
		return json.RawMessage("{}")
	}
	return b
}
