package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"

	"github.com/desertthunder/fretmastery/internal/assets"
	"github.com/desertthunder/fretmastery/internal/diagram"
	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/pitch"
	"github.com/desertthunder/fretmastery/internal/repositories"
	"github.com/desertthunder/fretmastery/internal/shared"
)

// ExerciseInput is the editable part of an exercise.
type ExerciseInput struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	NoteRange      string `json:"note_range"`
	MusicalConcept string `json:"musical_concept"`
}

// ExerciseService authors exercises and keeps their diagrams in step with their note ranges.
type ExerciseService struct {
	db        *sqlx.DB
	exercises *repositories.ExerciseRepository
	store     *assets.FileStore
	board     pitch.Fretboard
	opts      diagram.Options
	logger    *log.Logger
}

// NewExerciseService creates an [ExerciseService] that renders on board with opts and writes diagrams to store.
func NewExerciseService(db *sqlx.DB, store *assets.FileStore, board pitch.Fretboard, opts diagram.Options, logger *log.Logger) *ExerciseService {
	opts.MaxFret = board.MaxFret
	return &ExerciseService{
		db:        db,
		exercises: repositories.NewExerciseRepository(db),
		store:     store,
		board:     board,
		opts:      opts,
		logger:    logger,
	}
}

// Fretboard returns the fretboard note ranges are resolved on.
func (s *ExerciseService) Fretboard() pitch.Fretboard { return s.board }

// Render resolves an exercise's range and draws its diagram, titled with the range.
//
// Parse and range failures come back as a [shared.ValidationError] on note_range that wraps the pitch error.
func (s *ExerciseService) Render(e *models.Exercise) (*diagram.Document, error) {
	positions, err := s.board.ResolveString(e.NoteRange)
	if err != nil {
		return nil, shared.NewValidationError(e.Entity(), "note_range", err.Error()).WithCause(err)
	}

	opts := s.opts
	opts.Title = e.NoteRange
	return diagram.Generate(positions, opts)
}

// Create validates, renders and stores a new exercise.
//
// The row insert, the diagram write and the path update commit together: on any failure neither the row nor the
// file remains.
func (s *ExerciseService) Create(ctx context.Context, p models.Principal, in ExerciseInput) (*models.Exercise, error) {
	if err := requireAdmin(p, "create exercises"); err != nil {
		return nil, err
	}

	exercise := models.NewExercise(in.Title, in.Description, in.NoteRange, in.MusicalConcept, p.UserID)
	if err := exercise.Validate(); err != nil {
		return nil, err
	}

	doc, err := s.Render(exercise)
	if err != nil {
		return nil, err
	}

	var written string
	err = shared.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.checkAuthor(ctx, tx, p); err != nil {
			return err
		}

		repo := repositories.NewExerciseRepository(tx)
		if err := repo.Create(ctx, exercise); err != nil {
			return err
		}

		path, err := s.store.Save(assets.FileName(exercise.ID, exercise.NoteRange), doc.Bytes())
		if err != nil {
			return err
		}
		written = path

		exercise.DiagramPath = path
		return repo.SetDiagramPath(ctx, exercise.ID, path)
	})
	if err != nil {
		s.discard(written)
		return nil, err
	}

	s.logger.Info("created exercise", "id", exercise.ID, "title", exercise.Title, "range", exercise.NoteRange, "diagram", exercise.DiagramPath)
	return exercise, nil
}

// Update replaces an exercise's fields and regenerates its diagram.
func (s *ExerciseService) Update(ctx context.Context, p models.Principal, id int64, in ExerciseInput) (*models.Exercise, error) {
	if err := requireAdmin(p, "edit exercises"); err != nil {
		return nil, err
	}

	current, err := s.exercises.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	edit := models.NewExercise(in.Title, in.Description, in.NoteRange, in.MusicalConcept, current.CreatedBy)
	updated.Title = edit.Title
	updated.Description = edit.Description
	updated.NoteRange = edit.NoteRange
	updated.MusicalConcept = edit.MusicalConcept
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	doc, err := s.Render(&updated)
	if err != nil {
		return nil, err
	}

	name := assets.FileName(updated.ID, updated.NoteRange)
	previous, _ := s.store.Read(name)

	var written string
	err = shared.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.checkAuthor(ctx, tx, p); err != nil {
			return err
		}

		path, err := s.store.Save(name, doc.Bytes())
		if err != nil {
			return err
		}
		written = path

		updated.DiagramPath = path
		return repositories.NewExerciseRepository(tx).Update(ctx, &updated)
	})
	if err != nil {
		switch {
		case written == "":
		case written == current.DiagramPath && previous != nil:
			if _, rerr := s.store.Save(name, previous); rerr != nil {
				s.logger.Warn("failed to restore diagram", "path", written, "error", rerr)
			}
		default:
			s.discard(written)
		}
		return nil, err
	}

	if current.DiagramPath != "" && current.DiagramPath != updated.DiagramPath {
		s.discard(current.DiagramPath)
	}

	s.logger.Info("updated exercise", "id", updated.ID, "range", updated.NoteRange, "diagram", updated.DiagramPath)
	return &updated, nil
}

// Delete removes an exercise, its sessions (by cascade) and its diagram file.
func (s *ExerciseService) Delete(ctx context.Context, p models.Principal, id int64) error {
	if err := requireAdmin(p, "delete exercises"); err != nil {
		return err
	}

	exercise, err := s.exercises.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.exercises.Delete(ctx, id); err != nil {
		return err
	}
	s.discard(exercise.DiagramPath)

	s.logger.Info("deleted exercise", "id", id, "title", exercise.Title)
	return nil
}

// Get returns an exercise with its average rating.
func (s *ExerciseService) Get(ctx context.Context, id int64) (*models.ExerciseWithRating, error) {
	return s.exercises.GetWithRating(ctx, id)
}

// List returns every exercise, newest first.
func (s *ExerciseService) List(ctx context.Context) ([]*models.Exercise, error) {
	return s.exercises.List(ctx, nil)
}

// Search filters the exercise library. See [repositories.ExerciseRepository.Search].
func (s *ExerciseService) Search(ctx context.Context, filter models.ExerciseFilter) ([]*models.ExerciseWithRating, error) {
	return s.exercises.Search(ctx, filter)
}

// AverageRating returns the mean difficulty of an exercise, nil when nobody has practised it.
func (s *ExerciseService) AverageRating(ctx context.Context, id int64) (*float64, error) {
	return s.exercises.AverageRating(ctx, id)
}

// Concepts lists the musical concepts in use.
func (s *ExerciseService) Concepts(ctx context.Context) ([]string, error) {
	return s.exercises.Concepts(ctx)
}

// StoreDiagram writes a rendered diagram for an existing exercise and records its path.
func (s *ExerciseService) StoreDiagram(ctx context.Context, e *models.Exercise, doc *diagram.Document) (string, error) {
	path, err := s.store.Save(assets.FileName(e.ID, e.NoteRange), doc.Bytes())
	if err != nil {
		return "", err
	}

	if err := s.exercises.SetDiagramPath(ctx, e.ID, path); err != nil {
		if path != e.DiagramPath {
			s.discard(path)
		}
		return "", err
	}

	if e.DiagramPath != "" && e.DiagramPath != path {
		s.discard(e.DiagramPath)
	}
	e.DiagramPath = path
	return path, nil
}

// checkAuthor confirms, inside the transaction, that the principal still exists and is still an admin.
func (s *ExerciseService) checkAuthor(ctx context.Context, tx *sqlx.Tx, p models.Principal) error {
	author, err := repositories.NewUserRepository(tx).Get(ctx, p.UserID)
	if err != nil {
		return err
	}
	if !author.IsAdmin {
		return fmt.Errorf("%w: %s is not an admin", shared.ErrForbidden, author.Username)
	}
	return nil
}

func (s *ExerciseService) discard(path string) {
	if path == "" {
		return
	}
	if err := s.store.Remove(path); err != nil {
		s.logger.Warn("failed to remove diagram", "path", path, "error", err)
	}
}
