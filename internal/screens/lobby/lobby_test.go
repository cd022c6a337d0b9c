package lobby

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/coderush/internal/game"
	"github.com/abhisek/coderush/internal/phase"
	"github.com/abhisek/coderush/internal/screen/screentest"
)

func typeText(s *LobbyScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func TestEnterStartsSessionWithNickname(t *testing.T) {
	g := screentest.New()
	s := New(g, "")
	s.Mount()

	typeText(s, "trinity")
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if len(g.Nicknames) != 1 || g.Nicknames[0] != "trinity" {
		t.Errorf("StartSession calls = %v, want [trinity]", g.Nicknames)
	}
}

func TestPrefilledNickname(t *testing.T) {
	g := screentest.New()
	s := New(g, "neo")
	if s.Nickname() != "neo" {
		t.Errorf("Nickname = %q, want neo", s.Nickname())
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if len(g.Nicknames) != 1 || g.Nicknames[0] != "neo" {
		t.Errorf("StartSession calls = %v", g.Nicknames)
	}
}

func TestEmptyNicknameShowsError(t *testing.T) {
	g := screentest.New()
	g.StartErr = game.ErrEmptyNickname
	s := New(g, "")

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if s.errMsg == "" {
		t.Fatal("expected an error message")
	}

	// Typing clears it.
	typeText(s, "x")
	if s.errMsg != "" {
		t.Errorf("error not cleared: %q", s.errMsg)
	}
}

func TestEscReturnsToTitle(t *testing.T) {
	g := screentest.New()
	g.Current = phase.Lobby
	s := New(g, "")

	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if g.Current != phase.Title {
		t.Errorf("phase = %v, want title", g.Current)
	}
}

func TestViewAndHints(t *testing.T) {
	s := New(screentest.New(), "")
	if s.Title() != "Lobby" {
		t.Errorf("Title = %q", s.Title())
	}
	if view := s.View(100, 30); view == "" {
		t.Error("expected non-empty view")
	}
	if len(s.KeyHints()) != 3 {
		t.Errorf("KeyHints length = %d, want 3", len(s.KeyHints()))
	}
}
