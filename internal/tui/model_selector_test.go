package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/geminichat/internal/catalog"
	"github.com/diogo/geminichat/internal/models"
)

func testSelection(t *testing.T) catalog.Selection {
	t.Helper()
	cat, err := catalog.Builtin()
	if err != nil {
		t.Fatalf("catalog.Builtin() error: %v", err)
	}
	return catalog.BuildSelection(cat.Models)
}

func TestModelSelector_StartsOnCurrent(t *testing.T) {
	s := newModelSelector(testSelection(t), models.Model25Pro)

	rows := s.rows()
	if rows[s.cursor].option.ID != models.Model25Pro {
		t.Errorf("cursor on %q, want %q", rows[s.cursor].option.ID, models.Model25Pro)
	}
}

func TestModelSelector_MoveWraps(t *testing.T) {
	s := newModelSelector(testSelection(t), models.Model25Flash)
	total := len(s.rows())

	s.Update(tea.KeyMsg{Type: tea.KeyUp})
	if s.cursor != total-1 {
		t.Errorf("cursor = %d, want last row %d", s.cursor, total-1)
	}
	s.Update(tea.KeyMsg{Type: tea.KeyDown})
	if s.cursor != 0 {
		t.Errorf("cursor = %d, want 0", s.cursor)
	}
}

func TestModelSelector_Filter(t *testing.T) {
	s := newModelSelector(testSelection(t), models.Model25Flash)

	s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("tts")})
	rows := s.rows()
	if len(rows) == 0 {
		t.Fatal("expected matches for 'tts'")
	}
	if !strings.HasSuffix(rows[0].option.ID, "-tts") {
		t.Errorf("top match = %q, want a TTS model", rows[0].option.ID)
	}

	s.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if s.filter != "tt" {
		t.Errorf("filter = %q after backspace", s.filter)
	}
}

func TestModelSelector_EnterAndEscape(t *testing.T) {
	s := newModelSelector(testSelection(t), models.Model25Flash)
	s.Update(tea.KeyMsg{Type: tea.KeyDown})
	s.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if !s.done || s.cancelled || s.chosen != models.Model25FlashLite {
		t.Errorf("done=%v cancelled=%v chosen=%q", s.done, s.cancelled, s.chosen)
	}

	s = newModelSelector(testSelection(t), models.Model25Flash)
	s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !s.done || !s.cancelled {
		t.Error("escape should cancel")
	}
}

func TestModelSelector_PlaceholderIsNotSelectable(t *testing.T) {
	s := newModelSelector(catalog.ErrorSelection("Error loading models"), models.DefaultModel)
	s.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if s.done {
		t.Error("the disabled placeholder must not be chosen")
	}
}

func TestModelSelector_View(t *testing.T) {
	s := newModelSelector(testSelection(t), models.Model25Flash)

	view := s.View(40, 40)
	if view == "" {
		t.Fatal("empty view")
	}
	if !strings.Contains(view, "Select Model") || !strings.Contains(view, models.PreferredGroupLabel) {
		t.Errorf("view missing headings:\n%s", view)
	}
}

