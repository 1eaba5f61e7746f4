package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/fretmastery/internal/assets"
	"github.com/desertthunder/fretmastery/internal/diagram"
	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/services"
	"github.com/desertthunder/fretmastery/internal/shared"
	tu "github.com/desertthunder/fretmastery/internal/testing"
)

type mockSource struct {
	exercises []*models.Exercise
	listErr   error
	renderErr map[int64]error
	storeErr  map[int64]error

	mu       sync.Mutex
	stored   []int64
	storing  int32
	overlap  bool
	rendered atomic.Int32
}

func (m *mockSource) List(context.Context) ([]*models.Exercise, error) {
	return m.exercises, m.listErr
}

func (m *mockSource) Render(e *models.Exercise) (*diagram.Document, error) {
	m.rendered.Add(1)
	if err := m.renderErr[e.ID]; err != nil {
		return nil, err
	}
	svg := fmt.Sprintf("<svg>%s</svg>", e.NoteRange)
	return &diagram.Document{SVG: svg, Length: len(svg)}, nil
}

func (m *mockSource) StoreDiagram(_ context.Context, e *models.Exercise, _ *diagram.Document) (string, error) {
	if !atomic.CompareAndSwapInt32(&m.storing, 0, 1) {
		m.overlap = true
	}
	defer atomic.StoreInt32(&m.storing, 0)

	if err := m.storeErr[e.ID]; err != nil {
		return "", err
	}
	m.mu.Lock()
	m.stored = append(m.stored, e.ID)
	m.mu.Unlock()
	return fmt.Sprintf("/static/diagrams/exercise-%d.svg", e.ID), nil
}

func exercises(n int) []*models.Exercise {
	out := make([]*models.Exercise, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, &models.Exercise{ID: int64(i), Title: fmt.Sprintf("Exercise %d", i), NoteRange: "E2-A2"})
	}
	return out
}

func TestDiagramEngine_Rebuild(t *testing.T) {
	ctx := context.Background()

	t.Run("AllSucceed", func(t *testing.T) {
		src := &mockSource{exercises: exercises(10)}
		result, err := NewDiagramEngine(src).Rebuild(ctx, nil, RebuildOpts{NumWorkers: 3, RateLimit: 1000})
		if err != nil {
			t.Fatalf("Rebuild failed: %v", err)
		}

		if result.Total != 10 || result.Succeeded != 10 || result.Failed != 0 {
			t.Errorf("unexpected counts: %+v", result)
		}
		if len(src.stored) != 10 {
			t.Errorf("expected 10 stores, got %d", len(src.stored))
		}
		if src.overlap {
			t.Error("StoreDiagram calls overlapped")
		}
		for i, item := range result.Items {
			if item.ExerciseID != int64(i+1) {
				t.Fatalf("items not ordered by ID: %v", result.Items)
			}
			if item.Bytes == 0 || item.Path == "" {
				t.Errorf("item %d missing output: %+v", i, item)
			}
		}
	})

	t.Run("PartialFailures", func(t *testing.T) {
		src := &mockSource{
			exercises: exercises(5),
			renderErr: map[int64]error{2: errors.New("bad range")},
			storeErr:  map[int64]error{4: errors.New("disk full")},
		}
		result, err := NewDiagramEngine(src).Rebuild(ctx, nil, RebuildOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("Rebuild failed: %v", err)
		}

		if result.Succeeded != 3 || result.Failed != 2 {
			t.Errorf("expected 3 ok and 2 failed, got %+v", result)
		}
		failures := result.Failures()
		if len(failures) != 2 || failures[0].ExerciseID != 2 || failures[1].ExerciseID != 4 {
			t.Errorf("unexpected failures: %+v", failures)
		}
	})

	t.Run("SelectedIDs", func(t *testing.T) {
		src := &mockSource{exercises: exercises(5)}
		result, err := NewDiagramEngine(src).Rebuild(ctx, nil, RebuildOpts{IDs: []int64{4, 2, 4}, RateLimit: 1000})
		if err != nil {
			t.Fatalf("Rebuild failed: %v", err)
		}
		if result.Total != 2 || result.Items[0].ExerciseID != 2 || result.Items[1].ExerciseID != 4 {
			t.Errorf("unexpected items: %+v", result.Items)
		}
	})

	t.Run("UnknownID", func(t *testing.T) {
		src := &mockSource{exercises: exercises(2)}
		_, err := NewDiagramEngine(src).Rebuild(ctx, nil, RebuildOpts{IDs: []int64{9}})
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if src.rendered.Load() != 0 {
			t.Error("nothing should render when an ID is unknown")
		}
	})

	t.Run("DryRun", func(t *testing.T) {
		src := &mockSource{exercises: exercises(3)}
		result, err := NewDiagramEngine(src).Rebuild(ctx, nil, RebuildOpts{DryRun: true, RateLimit: 1000})
		if err != nil {
			t.Fatalf("Rebuild failed: %v", err)
		}
		if len(src.stored) != 0 {
			t.Errorf("dry run stored %d diagrams", len(src.stored))
		}
		if result.Succeeded != 3 {
			t.Errorf("expected 3 rendered, got %d", result.Succeeded)
		}
	})

	t.Run("ListError", func(t *testing.T) {
		src := &mockSource{listErr: errors.New("db down")}
		if _, err := NewDiagramEngine(src).Rebuild(ctx, nil, RebuildOpts{}); err == nil {
			t.Error("expected list error")
		}
	})

	t.Run("Empty", func(t *testing.T) {
		result, err := NewDiagramEngine(&mockSource{}).Rebuild(ctx, nil, RebuildOpts{})
		if err != nil {
			t.Fatalf("Rebuild failed: %v", err)
		}
		if result.Total != 0 {
			t.Errorf("expected empty result, got %+v", result)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		src := &mockSource{exercises: exercises(20)}
		result, err := NewDiagramEngine(src).Rebuild(cctx, nil, RebuildOpts{RateLimit: 1})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.Succeeded == 20 {
			t.Errorf("cancelled run should be partial, got %+v", result)
		}
	})
}

func TestProgressUpdate_NonBlocking(t *testing.T) {
	src := &mockSource{exercises: exercises(5)}
	progress := make(chan ProgressUpdate, 1)

	if _, err := NewDiagramEngine(src).Rebuild(context.Background(), progress, RebuildOpts{RateLimit: 1000}); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	select {
	case update := <-progress:
		if update.Phase != LoadExercises {
			t.Errorf("expected first update from %s, got %s", LoadExercises, update.Phase)
		}
	default:
		t.Error("expected at least one progress update")
	}
}

func TestProgressUpdate_Phases(t *testing.T) {
	src := &mockSource{exercises: exercises(2)}
	progress := make(chan ProgressUpdate, 32)

	if _, err := NewDiagramEngine(src).Rebuild(context.Background(), progress, RebuildOpts{RateLimit: 1000}); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	close(progress)

	var last ProgressUpdate
	stores := 0
	for update := range progress {
		if update.Phase == StoreDiagrams {
			stores++
		}
		last = update
	}
	if stores != 2 {
		t.Errorf("expected 2 store updates, got %d", stores)
	}
	if last.Phase != Finished || last.Phase.String() != "finished" {
		t.Errorf("expected final update to be finished, got %s", last.Phase)
	}
}

func TestDiagramEngine_WithExerciseService(t *testing.T) {
	ctx := context.Background()
	cfg := tu.NewTestConfig(t)
	db := tu.NewTestDB(t)
	store := assets.NewFileStore(cfg.Diagram.Dir, cfg.Diagram.URLPrefix)
	svc := services.New(services.Options{Config: cfg, DB: db, Store: store})

	admin, err := svc.Users.Register(ctx, services.RegisterInput{Username: "instructor", Email: "instructor@example.com", Password: "password123"}, true)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	p := models.PrincipalFor(admin)

	var created []*models.Exercise
	for i, r := range []string{"E2-A2", "A2-D3", "C4-G4"} {
		e, err := svc.Exercises.Create(ctx, p, services.ExerciseInput{Title: fmt.Sprintf("Exercise %d", i), NoteRange: r})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		created = append(created, e)
	}

	for _, e := range created {
		name, _ := store.NameOf(e.DiagramPath)
		if err := os.Remove(filepath.Join(store.Dir(), name)); err != nil {
			t.Fatalf("failed to remove diagram: %v", err)
		}
	}

	result, err := NewDiagramEngine(svc.Exercises).Rebuild(ctx, nil, RebuildOpts{NumWorkers: 2, RateLimit: 1000})
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if result.Succeeded != 3 {
		t.Fatalf("expected 3 rebuilt, got %+v", result.Failures())
	}

	for _, e := range created {
		name, _ := store.NameOf(e.DiagramPath)
		tu.AssertFileExists(t, filepath.Join(store.Dir(), name))
	}
}
