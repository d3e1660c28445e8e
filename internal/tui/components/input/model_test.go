package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeText(m Model, s string) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestHistory(t *testing.T) {
	m := New(80, nil)
	m = typeText(m, "first")
	if got := m.Submit(); got != "first" {
		t.Fatalf("submit = %q", got)
	}
	m = typeText(m, "second")
	m.Submit()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.Value() != "second" {
		t.Errorf("up = %q, want second", m.Value())
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.Value() != "first" {
		t.Errorf("up = %q, want first", m.Value())
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.Value() != "" {
		t.Errorf("down past newest should clear, got %q", m.Value())
	}
}

func TestSuggestions(t *testing.T) {
	m := New(80, []string{"one", "two"})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.Value() != "one" {
		t.Fatalf("tab = %q", m.Value())
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.Value() != "one" {
		t.Errorf("suggestions should wrap, got %q", m.Value())
	}

	m = typeText(m, "!")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.Value() == "two" {
		t.Error("tab should not replace edited text")
	}
}

func TestSubmitBlank(t *testing.T) {
	m := New(80, nil)
	m = typeText(m, "   ")
	if got := m.Submit(); got != "" {
		t.Errorf("blank submit = %q", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.Value() != "" {
		t.Error("blank input should not enter history")
	}
}
