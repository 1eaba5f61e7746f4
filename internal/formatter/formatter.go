// package formatter exports practice logs and the exercise catalog to CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/shared"
)

// Format names an export format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "md"
	Text     Format = "txt"
)

// ParseFormat accepts "csv", "md"/"markdown" and "txt"/"text".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "md", "markdown":
		return Markdown, nil
	case "txt", "text", "":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want csv, md or txt)", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string { return "." + string(f) }

// PracticeLog is one user's sessions, most recent first.
type PracticeLog struct {
	Username string
	Sessions []*models.SessionWithExercise
}

// Average returns the mean rating across the log, zero when it is empty.
func (l *PracticeLog) Average() float64 {
	if len(l.Sessions) == 0 {
		return 0
	}
	total := 0
	for _, s := range l.Sessions {
		total += s.DifficultyRating
	}
	return float64(total) / float64(len(l.Sessions))
}

// Align is a column alignment for [Table].
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table renders rows as a rounded box table. Short rows are padded.
func Table(headers []string, rows [][]string, aligns []Align) string {
	tw := newTable(headers, rows, aligns)
	if tw == nil {
		return ""
	}
	tw.SetStyle(table.StyleRounded)
	return tw.Render()
}

func newTable(headers []string, rows [][]string, aligns []Align) table.Writer {
	columns := len(headers)
	if columns == 0 {
		return nil
	}

	tw := table.NewWriter()

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

// Rating formats an optional average rating, "-" when there is none.
func Rating(avg *float64) string {
	if avg == nil {
		return "-"
	}
	return strconv.FormatFloat(*avg, 'f', 2, 64)
}

var (
	sessionHeaders  = []string{"Date", "Exercise", "Range", "Rating", "Notes"}
	sessionAligns   = []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft}
	exerciseHeaders = []string{"ID", "Title", "Range", "Concept", "Avg Rating", "Sessions"}
	exerciseAligns  = []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight}
)

// SessionRows flattens sessions into table rows matching the session headers.
func SessionRows(sessions []*models.SessionWithExercise) [][]string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.Date(),
			s.ExerciseTitle,
			s.NoteRange,
			strconv.Itoa(s.DifficultyRating),
			s.SessionNotes,
		})
	}
	return rows
}

// ExerciseRows flattens exercises into table rows matching the exercise headers.
func ExerciseRows(exercises []*models.ExerciseWithRating) [][]string {
	rows := make([][]string, 0, len(exercises))
	for _, e := range exercises {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Title,
			e.NoteRange,
			e.MusicalConcept,
			Rating(e.AvgRating),
			strconv.Itoa(e.SessionCount),
		})
	}
	return rows
}

// SessionTable renders sessions as a terminal table.
func SessionTable(sessions []*models.SessionWithExercise) string {
	return Table(sessionHeaders, SessionRows(sessions), sessionAligns)
}

// ExerciseTable renders exercises as a terminal table.
func ExerciseTable(exercises []*models.ExerciseWithRating) string {
	return Table(exerciseHeaders, ExerciseRows(exercises), exerciseAligns)
}

func toCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, record := range rows {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// SessionsToCSV writes columns Date, Exercise, Range, Rating, Notes.
func SessionsToCSV(log *PracticeLog) ([]byte, error) {
	return toCSV(sessionHeaders, SessionRows(log.Sessions))
}

// SessionsToMarkdown renders a practice log with a summary and a session table.
func SessionsToMarkdown(log *PracticeLog) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Practice log: %s\n\n", log.Username)
	fmt.Fprintf(&buf, "**Sessions**: %d\n", len(log.Sessions))
	if len(log.Sessions) > 0 {
		fmt.Fprintf(&buf, "**Average rating**: %.2f\n", log.Average())
	}
	buf.WriteString("\n")

	if len(log.Sessions) > 0 {
		buf.WriteString("## Sessions\n\n")
		buf.WriteString(newTable(sessionHeaders, SessionRows(log.Sessions), sessionAligns).RenderMarkdown())
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// SessionsToText renders a practice log as numbered lines.
func SessionsToText(log *PracticeLog) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Practice log: %s\n", log.Username)
	fmt.Fprintf(&buf, "Sessions: %d\n\n", len(log.Sessions))

	for i, s := range log.Sessions {
		fmt.Fprintf(&buf, "%d. %s  %s (%s)  rating %d/%d\n", i+1, s.Date(), s.ExerciseTitle, s.NoteRange, s.DifficultyRating, models.MaxRating)
		if s.SessionNotes != "" {
			fmt.Fprintf(&buf, "   %s\n", s.SessionNotes)
		}
	}
	return buf.Bytes(), nil
}

// ExercisesToCSV writes columns ID, Title, Range, Concept, Avg Rating, Sessions.
func ExercisesToCSV(exercises []*models.ExerciseWithRating) ([]byte, error) {
	return toCSV(exerciseHeaders, ExerciseRows(exercises))
}

// ExercisesToMarkdown renders the catalog with one section per exercise and its diagram embedded.
func ExercisesToMarkdown(exercises []*models.ExerciseWithRating) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Exercise catalog\n\n")
	fmt.Fprintf(&buf, "**Exercises**: %d\n\n", len(exercises))

	for _, e := range exercises {
		fmt.Fprintf(&buf, "## %s\n\n", e.Title)
		fmt.Fprintf(&buf, "**Range**: %s\n", e.NoteRange)
		if e.MusicalConcept != "" {
			fmt.Fprintf(&buf, "**Concept**: %s\n", e.MusicalConcept)
		}
		fmt.Fprintf(&buf, "**Average rating**: %s (%d sessions)\n\n", Rating(e.AvgRating), e.SessionCount)
		if e.Description != "" {
			fmt.Fprintf(&buf, "%s\n\n", e.Description)
		}
		if e.DiagramPath != "" {
			fmt.Fprintf(&buf, "![%s](%s)\n\n", e.NoteRange, e.DiagramPath)
		}
	}
	return buf.Bytes(), nil
}

// ExercisesToText renders the catalog as a table.
func ExercisesToText(exercises []*models.ExerciseWithRating) ([]byte, error) {
	return []byte(ExerciseTable(exercises) + "\n"), nil
}

// ExportSessions renders log in format f.
func ExportSessions(log *PracticeLog, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return SessionsToCSV(log)
	case Markdown:
		return SessionsToMarkdown(log)
	default:
		return SessionsToText(log)
	}
}

// ExportExercises renders exercises in format f.
func ExportExercises(exercises []*models.ExerciseWithRating, f Format) ([]byte, error) {
	switch f {
	case CSV:
		return ExercisesToCSV(exercises)
	case Markdown:
		return ExercisesToMarkdown(exercises)
	default:
		return ExercisesToText(exercises)
	}
}

// WriteExport writes data to path, creating parent directories.
//
// An empty path defaults to base plus the format's extension.
func WriteExport(data []byte, path, base string, f Format) (string, error) {
	if path == "" {
		path = base + f.Extension()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
