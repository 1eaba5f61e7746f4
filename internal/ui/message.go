package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgExercisesFetched MsgKind = iota
	MsgDiagramRendered
	MsgProgressUpdate
	MsgRebuildComplete
)

type exercisesFetched struct {
	exercises []*models.ExerciseWithRating
	err       error
}

type diagramRendered struct {
	id   int64
	text string
	err  error
}

type rebuildComplete struct {
	result *tasks.RebuildResult
	err    error
}

// exercisesFetchedMsg is the constructor for [MsgExercisesFetched]
func exercisesFetchedMsg(exercises []*models.ExerciseWithRating, err error) Msg {
	return Msg{kind: MsgExercisesFetched, data: exercisesFetched{exercises, err}}
}

// diagramRenderedMsg is the constructor for [MsgDiagramRendered]
func diagramRenderedMsg(id int64, text string, err error) Msg {
	return Msg{kind: MsgDiagramRendered, data: diagramRendered{id, text, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// rebuildCompleteMsg is the constructor for [MsgRebuildComplete]
func rebuildCompleteMsg(result *tasks.RebuildResult, err error) Msg {
	return Msg{kind: MsgRebuildComplete, data: rebuildComplete{result, err}}
}
