package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"

	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/repositories"
	"github.com/desertthunder/fretmastery/internal/shared"
)

// SessionInput is the payload for logging or editing a practice session.
// An empty PracticeDate means today.
type SessionInput struct {
	ExerciseID       int64  `json:"exercise_id"`
	DifficultyRating int    `json:"difficulty_rating"`
	SessionNotes     string `json:"session_notes"`
	PracticeDate     string `json:"practice_date"`
}

// SessionService manages users' practice logs.
type SessionService struct {
	sessions *repositories.SessionRepository
	logger   *log.Logger
}

// NewSessionService creates a [SessionService].
func NewSessionService(db *sqlx.DB, logger *log.Logger) *SessionService {
	return &SessionService{
		sessions: repositories.NewSessionRepository(db),
		logger:   logger,
	}
}

// Record logs a session for the principal.
//
// A rating outside 1..5 is a [shared.ValidationError]; an unknown exercise is a [shared.NotFoundError].
func (s *SessionService) Record(ctx context.Context, p models.Principal, in SessionInput) (*models.PracticeSession, error) {
	if err := requireUser(p, "log practice"); err != nil {
		return nil, err
	}

	date, err := models.ParseDate(in.PracticeDate)
	if err != nil {
		return nil, err
	}

	session := models.NewPracticeSession(p.UserID, in.ExerciseID, in.DifficultyRating, in.SessionNotes, date)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Debug("recorded session", "id", session.ID, "user_id", p.UserID, "exercise_id", in.ExerciseID, "rating", in.DifficultyRating)
	return session, nil
}

// Get returns a session with its exercise title. Only the owner or an admin may read it.
func (s *SessionService) Get(ctx context.Context, p models.Principal, id int64) (*models.SessionWithExercise, error) {
	if err := requireUser(p, "view practice sessions"); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetWithExercise(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canAccess(p, &session.PracticeSession); err != nil {
		return nil, err
	}
	return session, nil
}

// Update changes the rating, notes and date of the principal's own session.
// The exercise of a session cannot be changed.
func (s *SessionService) Update(ctx context.Context, p models.Principal, id int64, in SessionInput) (*models.PracticeSession, error) {
	if err := requireUser(p, "edit practice sessions"); err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.UserID != p.UserID {
		return nil, fmt.Errorf("%w: session %d belongs to another user", shared.ErrForbidden, id)
	}

	date, err := models.ParseDate(in.PracticeDate)
	if err != nil {
		return nil, err
	}

	edit := models.NewPracticeSession(session.UserID, session.ExerciseID, in.DifficultyRating, in.SessionNotes, date)
	session.DifficultyRating = edit.DifficultyRating
	session.SessionNotes = edit.SessionNotes
	session.PracticeDate = edit.PracticeDate

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Delete removes a session owned by the principal. Admins may delete any session.
func (s *SessionService) Delete(ctx context.Context, p models.Principal, id int64) error {
	if err := requireUser(p, "delete practice sessions"); err != nil {
		return err
	}

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := canAccess(p, session); err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("deleted session", "id", id, "user_id", session.UserID)
	return nil
}

// Log returns the principal's sessions, most recent practice first. A limit of zero returns all of them.
func (s *SessionService) Log(ctx context.Context, p models.Principal, limit int) ([]*models.SessionWithExercise, error) {
	if err := requireUser(p, "view your practice log"); err != nil {
		return nil, err
	}
	return s.sessions.ListByUser(ctx, p.UserID, limit)
}

func canAccess(p models.Principal, session *models.PracticeSession) error {
	if p.IsAdmin || session.UserID == p.UserID {
		return nil
	}
	return fmt.Errorf("%w: session %d belongs to another user", shared.ErrForbidden, session.ID)
}
