package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadExercises Phase = iota
	RenderDiagrams
	StoreDiagrams
	Finished
)

func (p Phase) String() string {
	switch p {
	case LoadExercises:
		return "load_exercises"
	case RenderDiagrams:
		return "render_diagrams"
	case StoreDiagrams:
		return "store_diagrams"
	case Finished:
		return "finished"
	default:
		return ""
	}
}

func loadingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadExercises,
		Step:    0,
		Total:   1,
		Message: "Loading exercises...",
	}
}

func loadedUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadExercises,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d exercises", count),
		Data:    count,
	}
}

func renderingUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderDiagrams,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Rendering %s", title),
	}
}

func storedUpdate(step, total int, item RebuildItem) ProgressUpdate {
	msg := fmt.Sprintf("Stored %s", item.Path)
	if item.Error != nil {
		msg = fmt.Sprintf("Failed %s: %v", item.Title, item.Error)
	}
	return ProgressUpdate{
		Phase:   StoreDiagrams,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    item,
	}
}

func finishedUpdate(result *RebuildResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finished,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Rebuilt %d of %d diagrams (%d failed)", result.Succeeded, result.Total, result.Failed),
		Data:    result,
	}
}
