// Package ingame implements the screen that presents the current problem,
// collects an answer and shows the server's verdict.
package ingame

import (
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coderush/internal/api"
	"github.com/abhisek/coderush/internal/events"
	"github.com/abhisek/coderush/internal/game"
	"github.com/abhisek/coderush/internal/phase"
	"github.com/abhisek/coderush/internal/problem"
	"github.com/abhisek/coderush/internal/screen"
	"github.com/abhisek/coderush/internal/ui/components"
	"github.com/abhisek/coderush/internal/ui/layout"
)

// maxAnswer bounds free-text answers and fixes.
const maxAnswer = 2000

// focus says which widget receives keys on a bugfix problem.
type focus int

const (
	focusChoices focus = iota
	focusInput
)

// InGameScreen is the surface of the InGame phase.
type InGameScreen struct {
	game screen.Game

	current problem.Problem
	index   int
	total   int
	loaded  bool

	choices components.MultiChoice
	input   components.TextInput
	focus   focus

	// awaiting is set between Submit and the verdict.
	awaiting bool
	verdict  *bool
	errMsg   string

	unsubscribe []func()
}

var _ screen.Screen = (*InGameScreen)(nil)
var _ screen.KeyHintProvider = (*InGameScreen)(nil)

// New creates an InGameScreen.
func New(g screen.Game) *InGameScreen {
	return &InGameScreen{game: g}
}

// Mount shows the current problem and follows problem changes, verdicts
// and submission failures.
func (s *InGameScreen) Mount() {
	bus := s.game.Events()
	s.unsubscribe = append(s.unsubscribe,
		bus.ProblemChanged.Subscribe(s.onProblemChanged),
		bus.AnswerResult.Subscribe(s.onAnswerResult),
		bus.Failure.Subscribe(s.onFailure),
	)

	snap := s.game.Snapshot()
	if snap.HasCurrent {
		s.show(snap.Current, snap.Index, snap.Total)
	}
}

func (s *InGameScreen) Unmount() {
	for _, u := range s.unsubscribe {
		u()
	}
	s.unsubscribe = nil
}

func (s *InGameScreen) onProblemChanged(e events.ProblemChanged) {
	s.show(e.Problem, e.Index, e.Total)
}

func (s *InGameScreen) onAnswerResult(e events.AnswerResult) {
	if !s.awaiting || e.ProblemID != s.current.ID {
		return
	}
	correct := e.Correct
	s.awaiting = false
	s.verdict = &correct
	s.input.SetVerdict(correct)
}

func (s *InGameScreen) onFailure(f events.Failure) {
	if f.Op != api.OpSubmitAnswer || !s.awaiting {
		return
	}
	s.awaiting = false
	s.errMsg = "Submission failed, try again."
	switch {
	case errors.Is(f.Err, api.ErrNoUser):
		s.errMsg = "No player is registered for this session."
	case errors.Is(f.Err, api.ErrEmptyCategory):
		s.errMsg = "This problem has no category, so it cannot be graded. Press Esc to end the set."
	}
	s.choices.Reopen()
	s.input.Reopen()
}

// show resets the widgets for p.
func (s *InGameScreen) show(p problem.Problem, index, total int) {
	s.current = p
	s.index = index
	s.total = total
	s.loaded = true
	s.awaiting = false
	s.verdict = nil
	s.errMsg = ""

	s.choices = components.NewMultiChoice(p.Choices)
	placeholder := "type your answer"
	if p.Kind() == problem.KindBugfix {
		placeholder = "describe or paste your fix"
	}
	s.input = components.NewTextInput(placeholder, maxAnswer)

	s.focus = focusChoices
	if len(p.Choices) == 0 || p.Kind() == problem.KindSubjective {
		s.focus = focusInput
	}
	if s.focus == focusChoices {
		s.input.Blur()
	}
}

func (s *InGameScreen) Init() tea.Cmd {
	if s.focus == focusInput {
		return s.input.Init()
	}
	return nil
}

func (s *InGameScreen) Title() string {
	return "Problem"
}

func (s *InGameScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.verdict != nil:
		label := "Next"
		if s.index+1 >= s.total {
			label = "Results"
		}
		return []layout.KeyHint{
			{Key: "n", Description: label},
			{Key: "Esc", Description: "End set"},
		}
	case s.current.Kind() == problem.KindBugfix && len(s.current.Choices) > 0:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Tab", Description: "Switch to fix"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "End set"},
		}
	case s.focus == focusChoices:
		return []layout.KeyHint{
			{Key: "↑↓/A-Z", Description: "Choose"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "End set"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "End set"},
		}
	}
}

func (s *InGameScreen) Update(msg tea.Msg) tea.Cmd {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if s.focus == focusInput {
			var cmd tea.Cmd
			s.input, cmd = s.input.Update(msg)
			return cmd
		}
		return nil
	}

	key := kmsg.String()
	if key == "esc" {
		s.game.SetGamePhase(phase.Result)
		return nil
	}
	if !s.loaded || s.awaiting {
		return nil
	}

	if s.verdict != nil {
		switch key {
		case "n", "enter", "space":
			s.game.GoToNextProblem()
		}
		return nil
	}

	switch key {
	case "enter":
		s.submit()
		return nil
	case "tab", "shift+tab":
		return s.toggleFocus()
	}

	var cmd tea.Cmd
	if s.focus == focusChoices {
		s.choices, cmd = s.choices.Update(kmsg)
	} else {
		s.input, cmd = s.input.Update(kmsg)
	}
	return cmd
}

// toggleFocus moves between choices and the fix input on bugfix problems.
func (s *InGameScreen) toggleFocus() tea.Cmd {
	if s.current.Kind() != problem.KindBugfix || len(s.current.Choices) == 0 {
		return nil
	}
	if s.focus == focusChoices {
		s.focus = focusInput
		return s.input.Focus()
	}
	s.focus = focusChoices
	s.input.Blur()
	return nil
}

func (s *InGameScreen) submit() {
	var answer game.Answer
	switch s.current.Kind() {
	case problem.KindSubjective:
		answer.Text = s.input.Value()
		if answer.Text == "" {
			s.errMsg = "Write an answer first."
			return
		}
		s.input.Submit()
	default:
		bugfix := s.current.Kind() == problem.KindBugfix
		typed := bugfix || len(s.current.Choices) == 0
		switch {
		case len(s.current.Choices) > 0:
			s.choices.Choose()
			answer.Choice, _ = s.choices.Chosen()
		case !bugfix:
			// An objective problem without options takes the typed text as
			// its choice.
			answer.Choice = s.input.Value()
		}
		if bugfix {
			answer.Fix = s.input.Value()
		}
		if answer.Choice == "" && answer.Fix == "" {
			s.errMsg = "Pick an answer first."
			s.choices.Reopen()
			return
		}
		if typed {
			s.input.Submit()
		}
	}

	s.errMsg = ""
	s.awaiting = true
	if err := s.game.Submit(answer); err != nil {
		s.awaiting = false
		s.errMsg = err.Error()
		s.choices.Reopen()
		s.input.Reopen()
	}
}

// Current returns the problem on screen.
func (s *InGameScreen) Current() problem.Problem {
	return s.current
}

// Awaiting reports whether a verdict is pending.
func (s *InGameScreen) Awaiting() bool {
	return s.awaiting
}

// Verdict returns the verdict for the current problem, if known.
func (s *InGameScreen) Verdict() (correct, known bool) {
	if s.verdict == nil {
		return false, false
	}
	return *s.verdict, true
}
