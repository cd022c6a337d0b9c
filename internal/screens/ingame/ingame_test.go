package ingame

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coderush/internal/api"
	"github.com/abhisek/coderush/internal/events"
	"github.com/abhisek/coderush/internal/phase"
	"github.com/abhisek/coderush/internal/problem"
	"github.com/abhisek/coderush/internal/screen/screentest"
	"github.com/abhisek/coderush/internal/session"
)

var (
	oxProblem = problem.Problem{
		ID:       1,
		Category: "OX",
		Title:    "Nil maps",
		Choices:  []string{"O", "X"},
		Answer:   "O",
	}
	bugfixProblem = problem.Problem{
		ID:            2,
		Category:      "BUGFIX",
		Title:         "Off by one",
		Description:   "Fix the loop bound.",
		TargetSnippet: "for i := 0; i <= n; i++ {}",
		CorrectFix:    "for i := 0; i < n; i++ {}",
		Choices:       []string{"line 1", "line 2"},
	}
	essayProblem = problem.Problem{
		ID:       3,
		Category: "SUBJECTIVE",
		Title:    "Explain defer",
		Choices:  []string{},
	}
)

func mounted(p problem.Problem, index, total int) (*InGameScreen, *screentest.Game) {
	g := screentest.New()
	g.Current = phase.InGame
	g.Snap = session.Snapshot{Index: index, Total: total, Current: p, HasCurrent: true}
	s := New(g)
	s.Mount()
	return s, g
}

func press(s *InGameScreen, keys ...tea.KeyPressMsg) {
	for _, k := range keys {
		s.Update(k)
	}
}

func runes(text string) []tea.KeyPressMsg {
	var out []tea.KeyPressMsg
	for _, r := range text {
		out = append(out, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return out
}

var (
	enter = tea.KeyPressMsg{Code: tea.KeyEnter}
	down  = tea.KeyPressMsg{Code: tea.KeyDown}
	tab   = tea.KeyPressMsg{Code: tea.KeyTab}
	next  = tea.KeyPressMsg{Code: 'n', Text: "n"}
)

func TestMountShowsCurrentProblem(t *testing.T) {
	s, _ := mounted(oxProblem, 0, 3)
	defer s.Unmount()

	if s.Current().ID != 1 {
		t.Fatalf("current = %d, want 1", s.Current().ID)
	}
	view := s.View(100, 40)
	if !strings.Contains(view, "Nil maps") {
		t.Errorf("view missing title:\n%s", view)
	}
	if !strings.Contains(view, "1/3") {
		t.Errorf("view missing progress:\n%s", view)
	}
}

func TestObjectiveSubmitAndVerdict(t *testing.T) {
	s, g := mounted(oxProblem, 0, 2)
	defer s.Unmount()

	press(s, down, enter)
	if len(g.Answers) != 1 || g.Answers[0].Choice != "X" {
		t.Fatalf("answers = %+v, want one with choice X", g.Answers)
	}
	if !s.Awaiting() {
		t.Fatal("expected to await the verdict")
	}

	// Keys other than esc are ignored while waiting.
	press(s, enter)
	if len(g.Answers) != 1 {
		t.Errorf("resubmitted while waiting: %d answers", len(g.Answers))
	}

	g.Bus.AnswerResult.Publish(events.AnswerResult{ProblemID: 1, Correct: false})
	correct, known := s.Verdict()
	if !known || correct {
		t.Fatalf("verdict = %v/%v, want false/true", correct, known)
	}
	if view := s.View(100, 40); !strings.Contains(view, "Correct answer: O") {
		t.Errorf("feedback missing answer:\n%s", view)
	}

	press(s, next)
	if g.Nexts != 1 {
		t.Errorf("GoToNextProblem calls = %d, want 1", g.Nexts)
	}
}

func TestLetterKeysSelectChoice(t *testing.T) {
	s, g := mounted(oxProblem, 0, 1)
	defer s.Unmount()

	press(s, runes("b")...)
	press(s, enter)
	if len(g.Answers) != 1 || g.Answers[0].Choice != "X" {
		t.Errorf("answers = %+v", g.Answers)
	}
}

func TestVerdictForOtherProblemIgnored(t *testing.T) {
	s, _ := mounted(oxProblem, 0, 2)
	defer s.Unmount()

	press(s, enter)
	s.game.Events().AnswerResult.Publish(events.AnswerResult{ProblemID: 99, Correct: true})
	if _, known := s.Verdict(); known {
		t.Error("verdict for another problem should be ignored")
	}
}

func TestBugfixSendsChoiceAndFix(t *testing.T) {
	s, g := mounted(bugfixProblem, 1, 2)
	defer s.Unmount()

	press(s, down, tab)
	press(s, runes("i < n")...)
	press(s, enter)

	if len(g.Answers) != 1 {
		t.Fatalf("answers = %d, want 1", len(g.Answers))
	}
	a := g.Answers[0]
	if a.Choice != "line 2" || a.Fix != "i < n" {
		t.Errorf("answer = %+v", a)
	}

	g.Bus.AnswerResult.Publish(events.AnswerResult{ProblemID: 2, Correct: false})
	view := s.View(100, 40)
	if !strings.Contains(view, "Reference fix") {
		t.Errorf("feedback missing reference fix:\n%s", view)
	}
	if !strings.Contains(view, "see your results") {
		t.Errorf("last problem should point to results:\n%s", view)
	}
}

func TestSubjectiveNeedsText(t *testing.T) {
	s, g := mounted(essayProblem, 0, 1)
	defer s.Unmount()

	press(s, enter)
	if len(g.Answers) != 0 {
		t.Fatal("empty answer should not be submitted")
	}
	if s.errMsg == "" {
		t.Error("expected a prompt to write an answer")
	}

	press(s, runes("runs at return")...)
	press(s, enter)
	if len(g.Answers) != 1 || g.Answers[0].Text != "runs at return" {
		t.Errorf("answers = %+v", g.Answers)
	}
}

func TestObjectiveWithoutChoicesTakesTypedAnswer(t *testing.T) {
	bare := problem.Problem{ID: 4, Category: "MULTIPLE_CHOICE", Title: "Zero value of a slice"}
	s, g := mounted(bare, 0, 1)
	defer s.Unmount()

	if s.focus != focusInput {
		t.Fatal("input should take focus when there are no options")
	}
	press(s, enter)
	if len(g.Answers) != 0 {
		t.Fatal("empty answer should not be submitted")
	}
	if s.input.Submitted() {
		t.Error("input should stay editable after an empty submit")
	}

	press(s, runes("nil")...)
	press(s, enter)
	if len(g.Answers) != 1 || g.Answers[0].Choice != "nil" {
		t.Errorf("answers = %+v", g.Answers)
	}
	if !s.Awaiting() {
		t.Error("expected to await a verdict")
	}
}

func TestSubmitFailureReopens(t *testing.T) {
	s, g := mounted(oxProblem, 0, 1)
	defer s.Unmount()

	press(s, enter)
	g.Bus.Failure.Publish(events.Failure{Op: api.OpSubmitAnswer, Err: api.ErrNoUser})
	if s.Awaiting() {
		t.Fatal("should stop waiting after a failure")
	}
	if s.errMsg == "" {
		t.Error("expected an error message")
	}

	press(s, enter)
	if len(g.Answers) != 2 {
		t.Errorf("answers = %d, want 2 after resubmitting", len(g.Answers))
	}
}

func TestUngradableProblemExplainsFailure(t *testing.T) {
	untagged := problem.Problem{ID: 5, Title: "untagged", Choices: []string{"a", "b"}}
	s, g := mounted(untagged, 0, 1)
	defer s.Unmount()

	press(s, enter)
	if len(g.Answers) != 1 {
		t.Fatalf("answers = %d, want 1", len(g.Answers))
	}
	g.Bus.Failure.Publish(events.Failure{Op: api.OpSubmitAnswer, Err: api.ErrEmptyCategory})
	if !strings.Contains(s.errMsg, "no category") {
		t.Errorf("errMsg = %q", s.errMsg)
	}
}

func TestProblemChangedResets(t *testing.T) {
	s, g := mounted(oxProblem, 0, 2)
	defer s.Unmount()

	press(s, enter)
	g.Bus.AnswerResult.Publish(events.AnswerResult{ProblemID: 1, Correct: true})
	g.Bus.ProblemChanged.Publish(events.ProblemChanged{Index: 1, Total: 2, Problem: essayProblem})

	if s.Current().ID != 3 {
		t.Fatalf("current = %d, want 3", s.Current().ID)
	}
	if _, known := s.Verdict(); known {
		t.Error("verdict should reset for the new problem")
	}
	if s.focus != focusInput {
		t.Error("subjective problem should focus the input")
	}
}

func TestEscEndsSet(t *testing.T) {
	s, g := mounted(oxProblem, 0, 2)
	defer s.Unmount()

	press(s, tea.KeyPressMsg{Code: tea.KeyEscape})
	if len(g.Phases) != 1 || g.Phases[0] != phase.Result {
		t.Errorf("phase requests = %v, want [result]", g.Phases)
	}
}

func TestUnmountUnsubscribes(t *testing.T) {
	s, g := mounted(oxProblem, 0, 1)
	s.Unmount()

	if n := g.Bus.ProblemChanged.Len() + g.Bus.AnswerResult.Len() + g.Bus.Failure.Len(); n != 0 {
		t.Errorf("subscribers left = %d", n)
	}
}
