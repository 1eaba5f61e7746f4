package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/fretmastery/internal/diagram"
	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ExerciseListView ViewState = iota
	DetailView
	ConfirmView
	RebuildView
	ResultView
)

// Catalog searches the exercise library.
type Catalog interface {
	Search(ctx context.Context, filter models.ExerciseFilter) ([]*models.ExerciseWithRating, error)
}

// Diagrammer draws a note range as text.
type Diagrammer interface {
	Text(noteRange string, override diagram.Options) (string, error)
}

// Rebuilder regenerates stored diagrams.
type Rebuilder interface {
	Rebuild(ctx context.Context, progress chan<- tasks.ProgressUpdate, opts tasks.RebuildOpts) (*tasks.RebuildResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	catalog      Catalog
	diagrams     Diagrammer
	engine       Rebuilder
	width        int
	height       int
	exerciseList list.Model
	selected     *models.ExerciseWithRating
	diagramText  string
	flats        bool
	progress     tasks.ProgressUpdate
	progressChan <-chan tasks.ProgressUpdate
	doneChan     <-chan Msg
	result       *tasks.RebuildResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies. A nil engine disables rebuilding.
func NewModel(ctx context.Context, catalog Catalog, diagrams Diagrammer, engine Rebuilder) *Model {
	return &Model{
		ctx:          ctx,
		view:         ExerciseListView,
		catalog:      catalog,
		diagrams:     diagrams,
		engine:       engine,
		exerciseList: newExerciseList(nil),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

func newExerciseList(exercises []*models.ExerciseWithRating) list.Model {
	items := make([]list.Item, len(exercises))
	for i, e := range exercises {
		items[i] = exerciseItem{exercise: e}
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Exercise Library"
	return l
}

// Init initializes the TUI by loading the exercise library.
func (m *Model) Init() tea.Cmd {
	return m.fetchExercises()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.exerciseList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ExerciseListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgExercisesFetched:
		data := msg.data.(exercisesFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.exerciseList = newExerciseList(data.exercises)
		m.exerciseList.SetSize(m.width-4, m.height-8)
		return m, nil

	case MsgDiagramRendered:
		data := msg.data.(diagramRendered)
		if m.selected == nil || data.id != m.selected.ID {
			return m, nil
		}
		if data.err != nil {
			m.diagramText = styles.err.Render(data.err.Error())
			return m, nil
		}
		m.diagramText = data.text
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		if m.progressChan == nil {
			return m, nil
		}
		return m, waitForProgress(m.progressChan, m.doneChan)

	case MsgRebuildComplete:
		data := msg.data.(rebuildComplete)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan, m.doneChan = nil, nil
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ExerciseListView:
		return m.renderList()
	case DetailView:
		return m.renderDetail()
	case ConfirmView:
		return m.renderConfirm()
	case RebuildView:
		return m.renderRebuild()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.exerciseList.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.exerciseList.SelectedItem().(exerciseItem); ok {
			m.selected = item.exercise
			m.diagramText = ""
			m.view = DetailView
			return m, m.renderDiagram()
		}
	}

	return m.updateList(msg)
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ExerciseListView
		return m, nil
	case key.Matches(msg, m.keys.flats):
		m.flats = !m.flats
		return m, m.renderDiagram()
	case key.Matches(msg, m.keys.rebuild):
		if m.engine != nil {
			m.view = ConfirmView
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.back):
		m.view = DetailView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = RebuildView
		m.progress = tasks.ProgressUpdate{}
		return m, m.startRebuild()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = ExerciseListView
		m.selected = nil
		m.result = nil
		m.err = nil
		return m, m.fetchExercises()
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != ExerciseListView {
		return m, nil
	}
	var cmd tea.Cmd
	m.exerciseList, cmd = m.exerciseList.Update(msg)
	return m, cmd
}

func (m *Model) fetchExercises() tea.Cmd {
	return func() tea.Msg {
		exercises, err := m.catalog.Search(m.ctx, models.ExerciseFilter{})
		return exercisesFetchedMsg(exercises, err)
	}
}

func (m *Model) renderDiagram() tea.Cmd {
	id, noteRange, flats := m.selected.ID, m.selected.NoteRange, m.flats
	return func() tea.Msg {
		text, err := m.diagrams.Text(noteRange, diagram.Options{Flats: flats})
		return diagramRenderedMsg(id, text, err)
	}
}

func (m *Model) startRebuild() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	id := m.selected.ID

	m.progressChan, m.doneChan = progress, done

	go func() {
		result, err := m.engine.Rebuild(m.ctx, progress, tasks.RebuildOpts{IDs: []int64{id}, NumWorkers: 1})
		close(progress)
		done <- rebuildCompleteMsg(result, err)
	}()

	return waitForProgress(progress, done)
}

// waitForProgress relays one progress update, or the final result once the channel closes.
func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan Msg) tea.Cmd {
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.exerciseList.View(), helpView)
}

func (m *Model) renderDetail() string {
	e := m.selected
	title := styles.title.Render(e.Title)

	var b strings.Builder
	fmt.Fprintf(&b, "Range: %s\n", e.NoteRange)
	if e.MusicalConcept != "" {
		fmt.Fprintf(&b, "Concept: %s\n", e.MusicalConcept)
	}
	fmt.Fprintf(&b, "Average rating: %s (%d sessions)\n", renderRating(e.AvgRating), e.SessionCount)
	if e.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", e.Description)
	}

	diagramView := styles.help.Render("Rendering...")
	if m.diagramText != "" {
		diagramView = styles.board.Render(strings.TrimRight(m.diagramText, "\n"))
	}

	helpKeys := []key.Binding{m.keys.flats, m.keys.back, m.keys.quit}
	if m.engine != nil {
		helpKeys = append(helpKeys, m.keys.rebuild)
	}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, b.String(), diagramView, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Regenerate the diagram for '%s'?", m.selected.Title))
	info := fmt.Sprintf("\nRange: %s\nStored at: %s\n", m.selected.NoteRange, m.selected.DiagramPath)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderRebuild() string {
	title := styles.title.Render("Rebuilding Diagram")

	var phase string
	switch m.progress.Phase {
	case tasks.LoadExercises:
		phase = "Loading exercises..."
	case tasks.RenderDiagrams:
		phase = fmt.Sprintf("Rendering (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.StoreDiagrams:
		phase = fmt.Sprintf("Storing (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Rebuild failed: %v\n\nPress r to go back, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to go back, q to quit")
	}

	title := styles.ok.Render("✓ Rebuild Complete!")
	info := fmt.Sprintf("\nRebuilt: %d/%d", m.result.Succeeded, m.result.Total)

	var failed string
	if m.result.Failed > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed to rebuild %d diagrams:", m.result.Failed)))
		for _, item := range m.result.Failures() {
			failed += fmt.Sprintf("\n  • %s (%s): %v", item.Title, item.NoteRange, item.Error)
		}
	} else {
		for _, item := range m.result.Items {
			info += fmt.Sprintf("\n%s", item.Path)
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
