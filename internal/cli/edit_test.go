package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/flowcanvas/pkg/geom"
)

func press(t *testing.T, m editorModel, key tea.KeyMsg) editorModel {
	t.Helper()
	next, _ := m.Update(key)
	return next.(editorModel)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestEditor(t *testing.T) editorModel {
	t.Helper()
	cv, err := loadCanvas(testContext(), "")
	if err != nil {
		t.Fatal(err)
	}
	return newEditorModel(cv)
}

func TestEditorItems(t *testing.T) {
	m := newTestEditor(t)
	want := []string{"trigger-1", "trigger-1-output", "if-1", "if-1-input", "if-1-output-true"}
	for i, id := range want {
		if m.items[i].id != id {
			t.Errorf("items[%d] = %q, want %q", i, m.items[i].id, id)
		}
	}
	if len(m.items) != 10 {
		t.Errorf("len(items) = %d, want 10", len(m.items))
	}
}

func TestEditorNudgeBlock(t *testing.T) {
	m := newTestEditor(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftRight})
	m = press(t, m, runes("j"))

	b, _ := m.canvas.Block("trigger-1")
	if b.Position != geom.Pt(110, 101) {
		t.Errorf("trigger-1 at %v, want (110, 101)", b.Position)
	}
	j, _, _ := m.canvas.Joint("trigger-1-output")
	if j.Position != geom.Pt(210, 151) {
		t.Errorf("trigger-1-output at %v, want (210, 151)", j.Position)
	}
	if m.status != "dragging block trigger-1" {
		t.Errorf("status = %q", m.status)
	}
	if m.tracker.Gesture().Active() {
		t.Error("gesture still active after nudge")
	}
}

func TestEditorNudgeJointSnaps(t *testing.T) {
	m := newTestEditor(t)
	for range 3 {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	if sel, _ := m.selected(); sel.id != "if-1-input" {
		t.Fatalf("selected %q, want if-1-input", sel.id)
	}

	m = press(t, m, runes("K"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})

	j, _, _ := m.canvas.Joint("if-1-input")
	if j.Position != geom.Pt(300, 140) {
		t.Errorf("if-1-input at %v, want (300, 140) on the left face", j.Position)
	}
}

func TestEditorCursorWraps(t *testing.T) {
	m := newTestEditor(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if sel, _ := m.selected(); sel.id != "command-2-input" {
		t.Errorf("shift+tab from first item selected %q, want command-2-input", sel.id)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}
}

func TestEditorQuit(t *testing.T) {
	m := newTestEditor(t)
	for _, key := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}, runes("q")} {
		if _, cmd := m.Update(key); cmd == nil {
			t.Errorf("Update(%s) returned no command", key)
		}
	}
	if _, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24}); cmd != nil {
		t.Error("non-key message produced a command")
	}
}

func TestEditorView(t *testing.T) {
	m := newTestEditor(t)
	m = press(t, m, runes("l"))

	view := m.View()
	for _, want := range []string{"Workflow Editor", "▸ trigger-1", "if-1-output-true", "conn-2", "last: dragging block trigger-1"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}
