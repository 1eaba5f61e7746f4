package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/shared"
)

const sessionColumns = `
	s.id AS id,
	s.user_id AS user_id,
	s.exercise_id AS exercise_id,
	s.difficulty_rating AS difficulty_rating,
	s.session_notes AS session_notes,
	s.practice_date AS practice_date,
	s.created_at AS created_at`

// SessionRepository implements [models.Repository] for [models.PracticeSession] persistence.
type SessionRepository struct {
	db DBTX
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection or transaction
func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create validates and inserts a session, setting its ID.
//
// The rating is checked before anything is written, and the user and exercise must already exist.
func (r *SessionRepository) Create(ctx context.Context, session *models.PracticeSession) error {
	if err := session.Validate(); err != nil {
		return err
	}
	if err := r.checkReferences(ctx, session); err != nil {
		return err
	}

	query := `
		INSERT INTO practice_sessions (user_id, exercise_id, difficulty_rating, session_notes, practice_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		session.UserID,
		session.ExerciseID,
		session.DifficultyRating,
		session.SessionNotes,
		session.Date(),
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert practice session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read practice session id: %w", err)
	}
	session.ID = id

	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id int64) (*models.PracticeSession, error) {
	var session models.PracticeSession
	query := `SELECT ` + sessionColumns + ` FROM practice_sessions s WHERE s.id = ?`
	if err := getOne(ctx, r.db, &session, "practice session", id, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetWithExercise retrieves a session joined with its exercise's title and range.
func (r *SessionRepository) GetWithExercise(ctx context.Context, id int64) (*models.SessionWithExercise, error) {
	var session models.SessionWithExercise
	query := `
		SELECT ` + sessionColumns + `, e.title AS exercise_title, e.note_range AS note_range
		FROM practice_sessions s
		JOIN exercises e ON e.id = s.exercise_id
		WHERE s.id = ?
	`
	if err := getOne(ctx, r.db, &session, "practice session", id, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// Update modifies a session's rating, notes and date
func (r *SessionRepository) Update(ctx context.Context, session *models.PracticeSession) error {
	if err := session.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE practice_sessions
		SET difficulty_rating = ?, session_notes = ?, practice_date = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, session.DifficultyRating, session.SessionNotes, session.Date(), session.ID)
	if err != nil {
		return fmt.Errorf("failed to update practice session: %w", err)
	}

	return requireAffected(result, session.Entity(), session.ID)
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM practice_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete practice session: %w", err)
	}

	return requireAffected(result, "practice session", id)
}

// List retrieves all sessions matching the given criteria, most recent practice first.
//
// Supported criteria: "user_id" (int64), "exercise_id" (int64).
func (r *SessionRepository) List(ctx context.Context, criteria map[string]any) ([]*models.PracticeSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM practice_sessions s WHERE 1 = 1`
	args := []any{}

	if userID, ok := criteria["user_id"].(int64); ok && userID != 0 {
		query += " AND s.user_id = ?"
		args = append(args, userID)
	}

	if exerciseID, ok := criteria["exercise_id"].(int64); ok && exerciseID != 0 {
		query += " AND s.exercise_id = ?"
		args = append(args, exerciseID)
	}

	query += " ORDER BY s.practice_date DESC, s.id DESC"

	var sessions []*models.PracticeSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query practice sessions: %w", err)
	}

	return sessions, nil
}

// ListByUser returns a user's practice log joined with exercise titles, most recent practice first.
// A limit of zero returns every session.
func (r *SessionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.SessionWithExercise, error) {
	query := `
		SELECT ` + sessionColumns + `, e.title AS exercise_title, e.note_range AS note_range
		FROM practice_sessions s
		JOIN exercises e ON e.id = s.exercise_id
		WHERE s.user_id = ?
		ORDER BY s.practice_date DESC, s.id DESC
	`
	args := []any{userID}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var sessions []*models.SessionWithExercise
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query practice log: %w", err)
	}

	return sessions, nil
}

func (r *SessionRepository) checkReferences(ctx context.Context, session *models.PracticeSession) error {
	found, err := exists(ctx, r.db, "users", session.UserID)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !found {
		return shared.NewNotFoundError("user", session.UserID)
	}

	found, err = exists(ctx, r.db, "exercises", session.ExerciseID)
	if err != nil {
		return fmt.Errorf("failed to check exercise: %w", err)
	}
	if !found {
		return shared.NewNotFoundError("exercise", session.ExerciseID)
	}

	return nil
}
