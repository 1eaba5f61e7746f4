package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/fretmastery/internal/diagram"
	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/tasks"
)

type fakeCatalog struct {
	exercises []*models.ExerciseWithRating
	err       error
}

func (f *fakeCatalog) Search(context.Context, models.ExerciseFilter) ([]*models.ExerciseWithRating, error) {
	return f.exercises, f.err
}

type fakeDiagrams struct {
	lastFlats bool
}

func (f *fakeDiagrams) Text(noteRange string, o diagram.Options) (string, error) {
	f.lastFlats = o.Flats
	return "board " + noteRange, nil
}

type fakeEngine struct {
	ids []int64
}

func (f *fakeEngine) Rebuild(_ context.Context, progress chan<- tasks.ProgressUpdate, opts tasks.RebuildOpts) (*tasks.RebuildResult, error) {
	f.ids = opts.IDs
	progress <- tasks.ProgressUpdate{Phase: tasks.StoreDiagrams, Step: 1, Total: 1, Message: "Stored"}
	return &tasks.RebuildResult{
		Total:     1,
		Succeeded: 1,
		Items:     []tasks.RebuildItem{{ExerciseID: opts.IDs[0], Path: "/static/diagrams/exercise-1-E2-A2.svg"}},
	}, nil
}

func keyPress(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and feeds its message back until no command remains.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 20; i++ {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func newTestModel(engine Rebuilder) (*Model, *fakeDiagrams) {
	avg := 4.0
	catalog := &fakeCatalog{exercises: []*models.ExerciseWithRating{
		{Exercise: models.Exercise{ID: 1, Title: "Low E Major", NoteRange: "E2-A2", MusicalConcept: "Scales"}, AvgRating: &avg, SessionCount: 1},
	}}
	diagrams := &fakeDiagrams{}
	m := NewModel(context.Background(), catalog, diagrams, engine)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, diagrams
}

func TestModel_Browse(t *testing.T) {
	m, diagrams := newTestModel(nil)
	drain(t, m, m.Init())

	if !strings.Contains(m.View(), "Low E Major") {
		t.Fatalf("list view missing exercise:\n%s", m.View())
	}

	_, cmd := m.Update(keyPress("enter"))
	if m.view != DetailView {
		t.Fatalf("expected detail view, got %d", m.view)
	}
	drain(t, m, cmd)

	view := m.View()
	for _, want := range []string{"Range: E2-A2", "Concept: Scales", "4.00", "board E2-A2"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q:\n%s", want, view)
		}
	}

	_, cmd = m.Update(keyPress("f"))
	drain(t, m, cmd)
	if !diagrams.lastFlats {
		t.Error("expected f to switch to flats")
	}

	_, _ = m.Update(keyPress("b"))
	if m.view != DetailView {
		t.Error("rebuild should be unavailable without an engine")
	}

	m.Update(keyPress("esc"))
	if m.view != ExerciseListView {
		t.Errorf("expected list view after esc, got %d", m.view)
	}
}

func TestModel_Rebuild(t *testing.T) {
	engine := &fakeEngine{}
	m, _ := newTestModel(engine)
	drain(t, m, m.Init())

	_, cmd := m.Update(keyPress("enter"))
	drain(t, m, cmd)

	m.Update(keyPress("b"))
	if m.view != ConfirmView {
		t.Fatalf("expected confirm view, got %d", m.view)
	}

	m.Update(keyPress("n"))
	if m.view != DetailView {
		t.Fatalf("expected n to return to detail view, got %d", m.view)
	}

	m.Update(keyPress("b"))
	_, cmd = m.Update(keyPress("y"))
	if m.view != RebuildView {
		t.Fatalf("expected rebuild view, got %d", m.view)
	}
	drain(t, m, cmd)

	if m.view != ResultView {
		t.Fatalf("expected result view, got %d", m.view)
	}
	if len(engine.ids) != 1 || engine.ids[0] != 1 {
		t.Errorf("expected rebuild of exercise 1, got %v", engine.ids)
	}
	if !strings.Contains(m.View(), "Rebuilt: 1/1") {
		t.Errorf("result view missing summary:\n%s", m.View())
	}

	_, cmd = m.Update(keyPress("r"))
	if m.view != ExerciseListView || cmd == nil {
		t.Error("expected r to reload the list")
	}
}

func TestModel_FetchError(t *testing.T) {
	m := NewModel(context.Background(), &fakeCatalog{err: errors.New("db locked")}, &fakeDiagrams{}, nil)
	drain(t, m, m.Init())

	if !strings.Contains(m.View(), "db locked") {
		t.Errorf("expected error view, got:\n%s", m.View())
	}
}
