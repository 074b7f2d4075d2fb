package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ppiankov/truthslies/internal/app"
	"github.com/ppiankov/truthslies/internal/model"
	"github.com/ppiankov/truthslies/internal/present"
)

type fakeController struct {
	sourceID string
	board    *present.Board
	outcome  app.Outcome
	err      error
	inputs   []app.Input
	saved    []string
	reveals  int
}

func newFakeController() *fakeController {
	return &fakeController{sourceID: "saved-id", board: present.NewBoard()}
}

func (f *fakeController) SourceID() string { return f.sourceID }

func (f *fakeController) Generate(_ context.Context, in app.Input) (app.Outcome, error) {
	f.inputs = append(f.inputs, in)
	if f.err == nil {
		f.board.Append(f.outcome.Statements)
	}
	return f.outcome, f.err
}

func (f *fakeController) Reveal()               { f.reveals++; f.board.Reveal() }
func (f *fakeController) Clear()                { f.board.Clear() }
func (f *fakeController) Save(id string) error  { f.saved = append(f.saved, id); return nil }
func (f *fakeController) Board() *present.Board { return f.board }

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

// press feeds msg and resolves a resulting action command once
func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			switch out.(type) {
			case generatedMsg, savedMsg:
				next, _ = m.Update(out)
				m = next.(Model)
			}
		}
	}
	return m
}

func TestNew_PrefillsSource(t *testing.T) {
	m := New(context.Background(), newFakeController(), false)
	if got := m.inputs[fieldSource].Value(); got != "saved-id" {
		t.Errorf("Expected source field saved-id, got %q", got)
	}
	if m.focus != fieldSource {
		t.Errorf("Expected focus on source field, got %d", m.focus)
	}
}

func TestGenerate_RendersBoard(t *testing.T) {
	ctrl := newFakeController()
	ctrl.outcome = app.Outcome{Statements: []model.Statement{
		{Statement: "A", Truth: true},
		{Statement: "B", Truth: false},
	}}
	m := New(context.Background(), ctrl, false)

	m.inputs[fieldTruths].SetValue("1")
	m.inputs[fieldLies].SetValue("1")
	m = press(t, m, key(tea.KeyTab))
	if m.focus != fieldTruths {
		t.Fatalf("Expected focus on truths, got %d", m.focus)
	}
	m = press(t, m, key(tea.KeyEnter))

	if len(ctrl.inputs) != 1 {
		t.Fatalf("Expected 1 generate call, got %d", len(ctrl.inputs))
	}
	want := app.Input{SourceID: "saved-id", Truths: "1", Lies: "1"}
	if ctrl.inputs[0] != want {
		t.Errorf("Expected input %+v, got %+v", want, ctrl.inputs[0])
	}

	view := m.View()
	for _, s := range []string{"2. A", "1. B", "Generated 2 statements"} {
		if !strings.Contains(view, s) {
			t.Errorf("Expected view to contain %q:\n%s", s, view)
		}
	}
}

func TestGenerate_SourceFailureRefocusesSource(t *testing.T) {
	ctrl := newFakeController()
	ctrl.outcome = app.Outcome{SourceField: "saved-id (not found)", ReopenConfig: true}
	ctrl.err = fmt.Errorf("%w: boom", app.ErrSourceUnavailable)
	m := New(context.Background(), ctrl, false)

	m = press(t, m, key(tea.KeyTab))
	m = press(t, m, key(tea.KeyCtrlG))

	if m.focus != fieldSource {
		t.Errorf("Expected focus back on source, got %d", m.focus)
	}
	if got := m.inputs[fieldSource].Value(); got != "saved-id (not found)" {
		t.Errorf("Unexpected source field %q", got)
	}
	if !m.failed {
		t.Error("Expected failed status")
	}
	if ctrl.board.Len() != 0 {
		t.Error("Board should stay empty")
	}
}

func TestGenerate_StaleResultIgnored(t *testing.T) {
	ctrl := newFakeController()
	m := New(context.Background(), ctrl, false)
	m.status = "Generating..."

	next, _ := m.Update(generatedMsg{err: app.ErrStale})
	m = next.(Model)
	if m.status != "Generating..." || m.failed {
		t.Errorf("Stale result changed status to %q", m.status)
	}
}

func TestGenerate_ServiceError(t *testing.T) {
	ctrl := newFakeController()
	ctrl.err = fmt.Errorf("%w: unavailable", app.ErrGeneration)
	m := New(context.Background(), ctrl, false)

	m = press(t, m, key(tea.KeyEnter))
	if !m.failed || !strings.Contains(m.status, "unavailable") {
		t.Errorf("Unexpected status %q", m.status)
	}
}

func TestRevealClearSave(t *testing.T) {
	ctrl := newFakeController()
	ctrl.board.Append([]model.Statement{{Statement: "A", Truth: true}, {Statement: "B"}})
	m := New(context.Background(), ctrl, false)

	m = press(t, m, key(tea.KeyCtrlR))
	if ctrl.reveals != 1 {
		t.Errorf("Expected 1 reveal, got %d", ctrl.reveals)
	}
	if view := m.View(); !strings.Contains(view, "[T] 2. A") || !strings.Contains(view, "[L] 1. B") {
		t.Errorf("Expected revealed markers:\n%s", view)
	}

	m = press(t, m, key(tea.KeyCtrlL))
	if ctrl.board.Len() != 0 {
		t.Error("Expected empty board after clear")
	}

	m = press(t, m, key(tea.KeyCtrlS))
	if len(ctrl.saved) != 1 || ctrl.saved[0] != "saved-id" {
		t.Errorf("Unexpected saves: %v", ctrl.saved)
	}
	if !strings.Contains(m.status, "Saved") {
		t.Errorf("Unexpected status %q", m.status)
	}
}

func TestQuit(t *testing.T) {
	m := New(context.Background(), newFakeController(), false)
	_, cmd := m.Update(key(tea.KeyEsc))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestApplyOutcome_UnwrapsPlainErrors(t *testing.T) {
	m := New(context.Background(), newFakeController(), false)
	m = m.applyOutcome(generatedMsg{err: errors.New("x")})
	if m.status != "Error: x" {
		t.Errorf("Unexpected status %q", m.status)
	}
}
