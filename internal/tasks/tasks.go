// package tasks implements batch jobs over the exercise library.
//
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/time/rate"

	"github.com/desertthunder/fretmastery/internal/diagram"
	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/shared"
)

const (
	defaultWorkers   = 4
	maxWorkers       = 16
	defaultRateLimit = 50.0
)

// DiagramSource lists exercises, renders their diagrams and stores the result.
// services.ExerciseService implements it.
type DiagramSource interface {
	List(ctx context.Context) ([]*models.Exercise, error)
	Render(e *models.Exercise) (*diagram.Document, error)
	StoreDiagram(ctx context.Context, e *models.Exercise, doc *diagram.Document) (string, error)
}

// RebuildOpts configures [DiagramEngine.Rebuild].
type RebuildOpts struct {
	IDs        []int64 // Only rebuild these exercises; empty means all
	NumWorkers int     // Concurrent renderers (default: 4, max 16)
	RateLimit  float64 // Exercises dispatched per second (default: 50)
	DryRun     bool    // Render without writing anything
}

// RebuildItem is the outcome for one exercise.
type RebuildItem struct {
	ExerciseID int64
	Title      string
	NoteRange  string
	Path       string // Public path of the stored diagram
	Bytes      int    // Size of the rendered SVG
	Error      error
}

// RebuildResult summarises a rebuild.
type RebuildResult struct {
	Items     []RebuildItem // Ordered by exercise ID
	Total     int
	Succeeded int
	Failed    int
}

// Failures returns the items that did not rebuild.
func (r *RebuildResult) Failures() []RebuildItem {
	var failed []RebuildItem
	for _, item := range r.Items {
		if item.Error != nil {
			failed = append(failed, item)
		}
	}
	return failed
}

// DiagramEngine regenerates stored diagrams.
type DiagramEngine struct {
	source DiagramSource
}

// NewDiagramEngine creates a [DiagramEngine] over source.
func NewDiagramEngine(source DiagramSource) *DiagramEngine {
	return &DiagramEngine{source: source}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *DiagramEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

type rendered struct {
	exercise *models.Exercise
	doc      *diagram.Document
	err      error
}

// Rebuild renders every selected exercise on a worker pool and stores the diagrams sequentially.
//
// Unknown IDs in opts.IDs fail with [shared.NotFoundError] before any work starts. When ctx is cancelled the partial
// result is returned along with ctx.Err().
func (e *DiagramEngine) Rebuild(ctx context.Context, progress chan<- ProgressUpdate, opts RebuildOpts) (*RebuildResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	e.sendProgress(progress, loadingUpdate())
	exercises, err := e.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}

	exercises, err = selectExercises(exercises, opts.IDs)
	if err != nil {
		return nil, err
	}
	total := len(exercises)
	e.sendProgress(progress, loadedUpdate(total))

	result := &RebuildResult{Total: total, Items: make([]RebuildItem, 0, total)}
	if total == 0 {
		e.sendProgress(progress, finishedUpdate(result))
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan *models.Exercise)
	results := make(chan rendered, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.renderWorker(ctx, &wg, jobs, results)
	}

	go func() {
		defer close(jobs)
		for i, ex := range exercises {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case jobs <- ex:
				e.sendProgress(progress, renderingUpdate(i+1, total, ex.Title))
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	done := 0
	for r := range results {
		done++
		item := RebuildItem{
			ExerciseID: r.exercise.ID,
			Title:      r.exercise.Title,
			NoteRange:  r.exercise.NoteRange,
			Error:      r.err,
		}

		if item.Error == nil {
			item.Bytes = r.doc.Length
			if opts.DryRun {
				item.Path = r.exercise.DiagramPath
			} else {
				item.Path, item.Error = e.source.StoreDiagram(ctx, r.exercise, r.doc)
			}
		}

		if item.Error != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
		result.Items = append(result.Items, item)
		e.sendProgress(progress, storedUpdate(done, total, item))
	}

	slices.SortFunc(result.Items, func(a, b RebuildItem) int {
		switch {
		case a.ExerciseID < b.ExerciseID:
			return -1
		case a.ExerciseID > b.ExerciseID:
			return 1
		default:
			return 0
		}
	})

	if err := ctx.Err(); err != nil {
		return result, err
	}

	e.sendProgress(progress, finishedUpdate(result))
	return result, nil
}

// renderWorker renders exercises from jobs until the channel closes.
func (e *DiagramEngine) renderWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan *models.Exercise, results chan<- rendered) {
	defer wg.Done()
	for ex := range jobs {
		if ctx.Err() != nil {
			return
		}
		doc, err := e.source.Render(ex)
		results <- rendered{exercise: ex, doc: doc, err: err}
	}
}

func selectExercises(all []*models.Exercise, ids []int64) ([]*models.Exercise, error) {
	if len(ids) == 0 {
		return all, nil
	}

	byID := make(map[int64]*models.Exercise, len(all))
	for _, ex := range all {
		byID[ex.ID] = ex
	}

	selected := make([]*models.Exercise, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		ex, ok := byID[id]
		if !ok {
			return nil, shared.NewNotFoundError("exercise", id)
		}
		selected = append(selected, ex)
	}
	return selected, nil
}
