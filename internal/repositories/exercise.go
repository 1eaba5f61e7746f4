package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/pitch"
	"github.com/desertthunder/fretmastery/internal/shared"
)

const exerciseColumns = `
	e.id AS id,
	e.title AS title,
	e.description AS description,
	e.note_range AS note_range,
	e.musical_concept AS musical_concept,
	e.svg_diagram_path AS svg_diagram_path,
	e.created_by AS created_by,
	e.created_at AS created_at`

const ratingColumns = `
	AVG(s.difficulty_rating) AS avg_rating,
	COUNT(s.id) AS session_count`

// ExerciseRepository implements [models.Repository] for [models.Exercise] persistence.
type ExerciseRepository struct {
	db DBTX
}

// NewExerciseRepository creates a new [ExerciseRepository] with the given database connection or transaction
func NewExerciseRepository(db DBTX) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

// Create validates and inserts an exercise, setting its ID.
//
// A duplicate title is a [shared.ValidationError]; an unknown creator is a [shared.NotFoundError].
func (r *ExerciseRepository) Create(ctx context.Context, exercise *models.Exercise) error {
	if err := exercise.Validate(); err != nil {
		return err
	}
	if err := r.checkTitle(ctx, exercise); err != nil {
		return err
	}

	query := `
		INSERT INTO exercises (title, description, note_range, musical_concept, svg_diagram_path, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		exercise.Title,
		exercise.Description,
		exercise.NoteRange,
		exercise.MusicalConcept,
		exercise.DiagramPath,
		exercise.CreatedBy,
		exercise.CreatedAt,
	)
	if err != nil {
		return r.translate(exercise, err, "insert")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read exercise id: %w", err)
	}
	exercise.ID = id

	return nil
}

// Get retrieves an exercise by ID
func (r *ExerciseRepository) Get(ctx context.Context, id int64) (*models.Exercise, error) {
	var exercise models.Exercise
	query := `SELECT ` + exerciseColumns + ` FROM exercises e WHERE e.id = ?`
	if err := getOne(ctx, r.db, &exercise, "exercise", id, query, id); err != nil {
		return nil, err
	}
	return &exercise, nil
}

// GetWithRating retrieves an exercise with its average rating and session count.
func (r *ExerciseRepository) GetWithRating(ctx context.Context, id int64) (*models.ExerciseWithRating, error) {
	var exercise models.ExerciseWithRating
	query := `
		SELECT ` + exerciseColumns + `, ` + ratingColumns + `
		FROM exercises e
		LEFT JOIN practice_sessions s ON s.exercise_id = e.id
		WHERE e.id = ?
		GROUP BY e.id
	`
	if err := getOne(ctx, r.db, &exercise, "exercise", id, query, id); err != nil {
		return nil, err
	}
	return &exercise, nil
}

// Update modifies an existing exercise, including its diagram path
func (r *ExerciseRepository) Update(ctx context.Context, exercise *models.Exercise) error {
	if err := exercise.Validate(); err != nil {
		return err
	}
	if err := r.checkTitle(ctx, exercise); err != nil {
		return err
	}

	query := `
		UPDATE exercises
		SET title = ?, description = ?, note_range = ?, musical_concept = ?, svg_diagram_path = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		exercise.Title,
		exercise.Description,
		exercise.NoteRange,
		exercise.MusicalConcept,
		exercise.DiagramPath,
		exercise.ID,
	)
	if err != nil {
		return r.translate(exercise, err, "update")
	}

	return requireAffected(result, exercise.Entity(), exercise.ID)
}

// SetDiagramPath records where the exercise's diagram was stored.
func (r *ExerciseRepository) SetDiagramPath(ctx context.Context, id int64, path string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE exercises SET svg_diagram_path = ? WHERE id = ?`, path, id)
	if err != nil {
		return fmt.Errorf("failed to update diagram path: %w", err)
	}

	return requireAffected(result, "exercise", id)
}

// Delete removes an exercise. Its practice sessions are removed by cascade.
func (r *ExerciseRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM exercises WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete exercise: %w", err)
	}

	return requireAffected(result, "exercise", id)
}

// List retrieves all exercises matching the given criteria, newest first.
//
// Supported criteria: "created_by" (int64), "concept" (string), "title" (string).
func (r *ExerciseRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Exercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM exercises e WHERE 1 = 1`
	args := []any{}

	if createdBy, ok := criteria["created_by"].(int64); ok && createdBy != 0 {
		query += " AND e.created_by = ?"
		args = append(args, createdBy)
	}

	if concept, ok := criteria["concept"].(string); ok && concept != "" {
		query += " AND e.musical_concept = ? COLLATE NOCASE"
		args = append(args, concept)
	}

	if title, ok := criteria["title"].(string); ok && title != "" {
		query += " AND e.title = ?"
		args = append(args, title)
	}

	query += " ORDER BY e.created_at DESC, e.id DESC"

	var exercises []*models.Exercise
	if err := r.db.SelectContext(ctx, &exercises, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query exercises: %w", err)
	}

	return exercises, nil
}

// Exists reports whether an exercise with the given ID is stored.
func (r *ExerciseRepository) Exists(ctx context.Context, id int64) (bool, error) {
	found, err := exists(ctx, r.db, "exercises", id)
	if err != nil {
		return false, fmt.Errorf("failed to check exercise: %w", err)
	}
	return found, nil
}

// AverageRating returns the mean difficulty rating of an exercise's sessions.
//
// The result is nil when the exercise has no sessions, and a [shared.NotFoundError] when the exercise is missing.
func (r *ExerciseRepository) AverageRating(ctx context.Context, id int64) (*float64, error) {
	found, err := r.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, shared.NewNotFoundError("exercise", id)
	}

	var avg *float64
	query := `SELECT AVG(difficulty_rating) FROM practice_sessions WHERE exercise_id = ?`
	if err := r.db.GetContext(ctx, &avg, query, id); err != nil {
		return nil, fmt.Errorf("failed to average ratings: %w", err)
	}
	return avg, nil
}

// Concepts lists the distinct non-empty musical concepts, alphabetically.
func (r *ExerciseRepository) Concepts(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT musical_concept
		FROM exercises
		WHERE musical_concept <> ''
		ORDER BY musical_concept COLLATE NOCASE ASC
	`

	var concepts []string
	if err := r.db.SelectContext(ctx, &concepts, query); err != nil {
		return nil, fmt.Errorf("failed to query concepts: %w", err)
	}
	return concepts, nil
}

// Search returns exercises matching every set field of filter, newest first, with their ratings.
//
// Text, concept, creator and rating filters run in SQL. NoteRangeContains is checked against each parsed range
// afterwards and fails with a parse error when the filter itself is malformed.
func (r *ExerciseRepository) Search(ctx context.Context, filter models.ExerciseFilter) ([]*models.ExerciseWithRating, error) {
	var want *pitch.NoteRange
	if strings.TrimSpace(filter.NoteRangeContains) != "" {
		span, err := pitch.ParseSpan(filter.NoteRangeContains)
		if err != nil {
			return nil, err
		}
		want = &span
	}

	query := `
		SELECT ` + exerciseColumns + `, ` + ratingColumns + `
		FROM exercises e
		LEFT JOIN practice_sessions s ON s.exercise_id = e.id
		WHERE 1 = 1`
	args := []any{}

	if q := strings.TrimSpace(filter.Query); q != "" {
		query += ` AND (e.title LIKE ? ESCAPE '\' OR e.description LIKE ? ESCAPE '\')`
		args = append(args, likePattern(q), likePattern(q))
	}

	if concept := strings.TrimSpace(filter.Concept); concept != "" {
		query += " AND e.musical_concept = ? COLLATE NOCASE"
		args = append(args, concept)
	}

	if filter.CreatedBy != 0 {
		query += " AND e.created_by = ?"
		args = append(args, filter.CreatedBy)
	}

	query += " GROUP BY e.id"

	if filter.MinAvgRating != nil {
		query += " HAVING AVG(s.difficulty_rating) >= ?"
		args = append(args, *filter.MinAvgRating)
	}

	query += " ORDER BY e.created_at DESC, e.id DESC"

	var rows []*models.ExerciseWithRating
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search exercises: %w", err)
	}

	results := make([]*models.ExerciseWithRating, 0, len(rows))
	for _, row := range rows {
		if want != nil {
			span, err := row.Range()
			if err != nil || !span.Covers(*want) {
				continue
			}
		}
		results = append(results, row)
		if filter.Limit > 0 && len(results) == filter.Limit {
			break
		}
	}

	return results, nil
}

// checkTitle rejects a title held by another exercise before anything is written.
// The unique index still catches a concurrent insert, via translate.
func (r *ExerciseRepository) checkTitle(ctx context.Context, exercise *models.Exercise) error {
	var taken bool
	query := `SELECT EXISTS(SELECT 1 FROM exercises WHERE title = ? AND id != ?)`
	if err := r.db.GetContext(ctx, &taken, query, exercise.Title, exercise.ID); err != nil {
		return fmt.Errorf("failed to check exercise title: %w", err)
	}
	if taken {
		return shared.NewValidationError(exercise.Entity(), "title", "an exercise with this title already exists")
	}
	return nil
}

func (r *ExerciseRepository) translate(exercise *models.Exercise, err error, op string) error {
	if field, ok := uniqueViolation(err); ok {
		return shared.NewValidationError(exercise.Entity(), field, fmt.Sprintf("an exercise with this %s already exists", field))
	}
	if foreignKeyViolation(err) {
		return shared.NewNotFoundError("user", exercise.CreatedBy)
	}
	return fmt.Errorf("failed to %s exercise: %w", op, err)
}
