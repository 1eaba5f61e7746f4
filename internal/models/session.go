package models

import (
	"strings"
	"time"

	"github.com/desertthunder/fretmastery/internal/shared"
)

const (
	MinRating = 1
	MaxRating = 5
)

// PracticeSession records one user practising one exercise on a given day.
type PracticeSession struct {
	ID               int64     `db:"id" json:"id"`
	UserID           int64     `db:"user_id" json:"user_id" validate:"required"`
	ExerciseID       int64     `db:"exercise_id" json:"exercise_id" validate:"required"`
	DifficultyRating int       `db:"difficulty_rating" json:"difficulty_rating" validate:"gte=1,lte=5"`
	SessionNotes     string    `db:"session_notes" json:"session_notes" validate:"max=2000"`
	PracticeDate     time.Time `db:"practice_date" json:"practice_date" validate:"required"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// NewPracticeSession truncates date to the day it falls on.
func NewPracticeSession(userID, exerciseID int64, rating int, notes string, date time.Time) *PracticeSession {
	return &PracticeSession{
		UserID:           userID,
		ExerciseID:       exerciseID,
		DifficultyRating: rating,
		SessionNotes:     strings.TrimSpace(notes),
		PracticeDate:     TruncateDate(date),
		CreatedAt:        time.Now().UTC(),
	}
}

func (s *PracticeSession) Entity() string { return "practice session" }
func (s *PracticeSession) Key() int64     { return s.ID }

func (s *PracticeSession) Validate() error {
	return shared.ValidateStruct(s.Entity(), s)
}

// Date returns the practice date formatted with [DateLayout].
func (s *PracticeSession) Date() string {
	return s.PracticeDate.Format(DateLayout)
}

// SessionWithExercise is a session joined with the exercise it practised.
type SessionWithExercise struct {
	PracticeSession
	ExerciseTitle string `db:"exercise_title" json:"exercise_title"`
	NoteRange     string `db:"note_range" json:"note_range"`
}

// ParseDate parses a [DateLayout] date. An empty string means today.
func ParseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return TruncateDate(time.Now()), nil
	}
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, shared.NewValidationError("practice session", "practice_date", "practice_date must look like 2006-01-02").WithCause(err)
	}
	return d, nil
}

// TruncateDate drops the time of day, keeping the calendar date in t's location as a UTC midnight.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
