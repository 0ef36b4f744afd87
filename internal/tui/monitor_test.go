package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestMonitorProgress(t *testing.T) {
	ch := make(chan Progress, 2)
	var m tea.Model = NewMonitor("GA", ch, nil)

	if !strings.Contains(m.View(), "waiting") {
		t.Error("expected waiting view before first update")
	}

	ch <- Progress{Generation: 1, Gains: []float64{1.5, 0.25, 0}, Fitness: 42}
	ch <- Progress{Generation: 2, Gains: []float64{2, 0.5, 0.1}, Fitness: 60}
	close(ch)

	cmd := m.Init()
	for i := 0; i < 3; i++ {
		msg := cmd()
		m, cmd = m.Update(msg)
		if _, ok := msg.(doneMsg); ok {
			break
		}
	}

	mm := m.(model)
	if !mm.done {
		t.Error("expected done after channel close")
	}
	if mm.last.Generation != 2 || len(mm.history) != 2 {
		t.Errorf("got generation %d history %v", mm.last.Generation, mm.history)
	}
	view := m.View()
	for _, want := range []string{"Kp", "2.0000", "best fitness", "done"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestMonitorQuitCancels(t *testing.T) {
	cancelled := false
	m := NewMonitor("PSO", make(chan Progress), func() { cancelled = true })

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !cancelled {
		t.Error("expected cancel on quit")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Error("expected empty view after quit")
	}
}
