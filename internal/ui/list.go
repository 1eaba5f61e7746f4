package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/fretmastery/internal/formatter"
	"github.com/desertthunder/fretmastery/internal/models"
)

var (
	_ list.Item = exerciseItem{}
)

// exerciseItem wraps [models.ExerciseWithRating] to implement [list.Item].
type exerciseItem struct {
	exercise *models.ExerciseWithRating
}

func (i exerciseItem) FilterValue() string {
	return i.exercise.Title + " " + i.exercise.MusicalConcept + " " + i.exercise.NoteRange
}
func (i exerciseItem) Title() string { return i.exercise.Title }
func (i exerciseItem) Description() string {
	desc := fmt.Sprintf("%s • rating %s", i.exercise.NoteRange, formatter.Rating(i.exercise.AvgRating))
	if i.exercise.MusicalConcept != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.exercise.MusicalConcept)
	}
	return desc
}
