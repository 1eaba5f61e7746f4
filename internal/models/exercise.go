package models

import (
	"strings"
	"time"

	"github.com/desertthunder/fretmastery/internal/pitch"
	"github.com/desertthunder/fretmastery/internal/shared"
)

// Exercise is a practice drill over a note range, with a diagram generated from that range.
type Exercise struct {
	ID             int64     `db:"id" json:"id"`
	Title          string    `db:"title" json:"title" validate:"required,notblank,max=200"`
	Description    string    `db:"description" json:"description" validate:"max=2000"`
	NoteRange      string    `db:"note_range" json:"note_range" validate:"required"`
	MusicalConcept string    `db:"musical_concept" json:"musical_concept" validate:"max=100"`
	DiagramPath    string    `db:"svg_diagram_path" json:"svg_diagram_path"`
	CreatedBy      int64     `db:"created_by" json:"created_by" validate:"required"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// NewExercise trims free-text fields and stamps the creation time.
func NewExercise(title, description, noteRange, concept string, createdBy int64) *Exercise {
	return &Exercise{
		Title:          strings.TrimSpace(title),
		Description:    strings.TrimSpace(description),
		NoteRange:      strings.TrimSpace(noteRange),
		MusicalConcept: strings.TrimSpace(concept),
		CreatedBy:      createdBy,
		CreatedAt:      time.Now().UTC(),
	}
}

func (e *Exercise) Entity() string { return "exercise" }
func (e *Exercise) Key() int64     { return e.ID }

// Validate checks field constraints and that the note range is well formed.
// Whether the range fits the fretboard is decided by the caller, which knows the configured neck.
func (e *Exercise) Validate() error {
	if err := shared.ValidateStruct(e.Entity(), e); err != nil {
		return err
	}
	if _, err := pitch.ParseRange(e.NoteRange); err != nil {
		return shared.NewValidationError(e.Entity(), "note_range", err.Error()).WithCause(err)
	}
	return nil
}

// Range parses the stored note range.
func (e *Exercise) Range() (pitch.NoteRange, error) {
	return pitch.ParseRange(e.NoteRange)
}

// ExerciseWithRating is an exercise with its derived average difficulty.
//
// AvgRating is nil when nobody has logged a session.
type ExerciseWithRating struct {
	Exercise
	AvgRating    *float64 `db:"avg_rating" json:"avg_rating"`
	SessionCount int      `db:"session_count" json:"session_count"`
}

// ExerciseFilter narrows an exercise search. Set fields combine with AND; zero values impose nothing.
type ExerciseFilter struct {
	Query             string   // substring of title or description
	Concept           string   // exact musical concept
	NoteRangeContains string   // a note ("G3") or range ("E2-A2") the exercise must cover
	MinAvgRating      *float64 // exercises without sessions never match
	CreatedBy         int64
	Limit             int
}
