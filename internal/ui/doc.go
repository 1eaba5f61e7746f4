// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing the exercise library:
//  1. [ExerciseListView] : Browse and filter exercises with their average ratings
//  2. [DetailView] : Show an exercise with its fretboard drawn in text
//  3. [ConfirmView] : Confirm regenerating the exercise's stored diagram
//  4. [RebuildView] : Monitor real-time progress updates
//  5. [ResultView] : Display the rebuild outcome
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the DiagramEngine, providing non-blocking status reporting during rebuilds.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
