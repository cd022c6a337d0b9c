package phase

import (
	"testing"

	"github.com/rs/zerolog"
)

// stubSurface records its lifecycle into a shared log.
type stubSurface struct {
	name string
	log  *[]string
}

func (s *stubSurface) Mount()   { *s.log = append(*s.log, "mount "+s.name) }
func (s *stubSurface) Unmount() { *s.log = append(*s.log, "unmount "+s.name) }

func newTestController(log *[]string) *Controller {
	factory := func(name string) Factory {
		return func() Surface { return &stubSurface{name: name, log: log} }
	}
	return NewController(map[Phase]Factory{
		Title:   factory("title"),
		Lobby:   factory("lobby"),
		Loading: factory("loading"),
		InGame:  factory("ingame"),
		Result:  factory("result"),
	}, zerolog.Nop())
}

func TestStartMountsTitle(t *testing.T) {
	var log []string
	c := newTestController(&log)
	c.Start()
	c.Start()

	if c.Current() != Title {
		t.Errorf("expected Title, got %s", c.Current())
	}
	if len(log) != 1 || log[0] != "mount title" {
		t.Errorf("expected a single title mount, got %v", log)
	}
}

func TestSetUnmountsBeforeMount(t *testing.T) {
	var log []string
	c := newTestController(&log)
	c.Start()

	if !c.Set(Lobby) {
		t.Fatal("expected transition to Lobby")
	}
	want := []string{"mount title", "unmount title", "mount lobby"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("step %d: expected %q, got %q", i, want[i], log[i])
		}
	}
	if s, ok := c.Active().(*stubSurface); !ok || s.name != "lobby" {
		t.Errorf("expected lobby surface active, got %#v", c.Active())
	}
}

func TestSetSamePhaseIsNoop(t *testing.T) {
	var log []string
	c := newTestController(&log)
	c.Start()

	if c.Set(Title) {
		t.Error("expected re-entering Title to be a no-op")
	}
	if len(log) != 1 {
		t.Errorf("expected no lifecycle calls, got %v", log)
	}
}

func TestSetUnknownPhaseIgnored(t *testing.T) {
	var log []string
	c := newTestController(&log)
	c.Start()

	if c.Set(Phase(42)) {
		t.Error("expected unknown phase to be rejected")
	}
	if c.Current() != Title {
		t.Errorf("expected Title to stay current, got %s", c.Current())
	}
}

func TestOnChangeNotified(t *testing.T) {
	var log []string
	c := newTestController(&log)

	var seen []Transition
	stop := c.OnChange(func(tr Transition) { seen = append(seen, tr) })

	c.Set(Loading)
	c.Set(InGame)
	stop()
	c.Set(Result)

	if len(seen) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(seen))
	}
	if seen[0] != (Transition{From: Title, To: Loading}) {
		t.Errorf("unexpected first transition %+v", seen[0])
	}
	if seen[1] != (Transition{From: Loading, To: InGame}) {
		t.Errorf("unexpected second transition %+v", seen[1])
	}
}

func TestMissingFactoryLeavesNoSurface(t *testing.T) {
	c := NewController(nil, zerolog.Nop())
	c.Start()
	if !c.Set(InGame) {
		t.Fatal("expected transition without factories")
	}
	if c.Active() != nil {
		t.Errorf("expected no surface, got %#v", c.Active())
	}
}

func TestString(t *testing.T) {
	if InGame.String() != "InGame" {
		t.Errorf("unexpected String: %s", InGame)
	}
	if Phase(9).String() != "Phase(9)" {
		t.Errorf("unexpected String for unknown phase: %s", Phase(9))
	}
}
