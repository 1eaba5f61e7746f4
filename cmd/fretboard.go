package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/fretmastery/internal/diagram"
	"github.com/desertthunder/fretmastery/internal/formatter"
	"github.com/desertthunder/fretmastery/internal/pitch"
	"github.com/desertthunder/fretmastery/internal/tasks"
)

type positionRow struct {
	String int    `json:"string"`
	Fret   int    `json:"fret"`
	Note   string `json:"note"`
}

func drawOptions(cmd *cli.Command) diagram.Options {
	return diagram.Options{
		Flats:      cmd.Bool("flats"),
		ShowOctave: cmd.Bool("octave"),
		StartFret:  cmd.Int("start"),
		FretCount:  cmd.Int("frets"),
	}
}

// Fretboard lists every position of a range, low string first, then draws them.
func (r *Runner) Fretboard(ctx context.Context, cmd *cli.Command) error {
	noteRange, err := requireArg(cmd, "range")
	if err != nil {
		return err
	}

	diagrams := r.diagrams()
	positions, err := diagrams.Resolve(noteRange)
	if err != nil {
		return err
	}

	opts := drawOptions(cmd)
	rows := make([]positionRow, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, positionRow{
			String: pitch.StringCount - p.StringIndex,
			Fret:   p.Fret,
			Note:   p.Pitch.Label(!opts.Flats, true),
		})
	}
	if cmd.Bool("json") {
		return r.writeJSON(rows, true)
	}

	board, err := diagrams.Text(noteRange, opts)
	if err != nil {
		return err
	}

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{strconv.Itoa(row.String), strconv.Itoa(row.Fret), row.Note})
	}
	aligns := []formatter.Align{formatter.AlignRight, formatter.AlignRight}
	r.writePlain("%s\n\n", formatter.Table([]string{"String", "Fret", "Note"}, table, aligns))
	r.writePlain("%s\n", strings.TrimRight(board, "\n"))
	return r.writePlain("%d positions for %s\n", len(positions), noteRange)
}

// Diagram renders a range to an SVG file without touching the database.
func (r *Runner) Diagram(ctx context.Context, cmd *cli.Command) error {
	noteRange, err := requireArg(cmd, "range")
	if err != nil {
		return err
	}

	opts := drawOptions(cmd)
	opts.Width = cmd.Int("width")
	opts.Height = cmd.Int("height")
	opts.Title = cmd.String("title")

	doc, _, err := r.diagrams().Render(ctx, noteRange, opts)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "-" {
		return r.writePlain("%s\n", doc.SVG)
	}
	if output == "" {
		output = strings.NewReplacer("#", "s", "/", "_").Replace(noteRange) + ".svg"
	}

	if err := os.WriteFile(output, doc.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write diagram: %w", err)
	}
	r.logger.Debug("wrote diagram", "range", noteRange, "path", output, "bytes", doc.Length)
	return r.writePlain("✓ Wrote %s (%d bytes)\n", output, doc.Length)
}

// DiagramsRebuild regenerates stored diagrams, printing progress as exercises are stored.
func (r *Runner) DiagramsRebuild(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.open(ctx); err != nil {
		return err
	}

	opts := tasks.RebuildOpts{
		IDs:        cmd.Int64Slice("id"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		DryRun:     cmd.Bool("dry-run"),
	}

	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			switch update.Phase {
			case tasks.StoreDiagrams:
				r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
			default:
				r.logger.Debug(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
			}
		}
	}()

	result, err := r.engine.Rebuild(ctx, progress, opts)
	close(progress)
	<-done
	if err != nil && result == nil {
		return err
	}

	if opts.DryRun {
		r.writePlainln("Dry run: nothing was written")
	}
	r.writePlainln("Rebuilt %d of %d diagrams", result.Succeeded, result.Total)

	if failed := result.Failures(); len(failed) > 0 {
		rows := make([][]string, 0, len(failed))
		for _, item := range failed {
			rows = append(rows, []string{strconv.FormatInt(item.ExerciseID, 10), item.Title, item.NoteRange, item.Error.Error()})
		}
		r.writePlain("%s\n", formatter.Table([]string{"ID", "Title", "Range", "Error"}, rows, []formatter.Align{formatter.AlignRight}))
		if err == nil {
			err = fmt.Errorf("%d of %d diagrams failed to rebuild", result.Failed, result.Total)
		}
	}
	return err
}
