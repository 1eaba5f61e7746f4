package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/fretmastery/internal/diagram"
	"github.com/desertthunder/fretmastery/internal/formatter"
	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/services"
)

// ExerciseCreate adds an exercise as an admin and stores its diagram.
func (r *Runner) ExerciseCreate(ctx context.Context, cmd *cli.Command) error {
	p, err := r.actingAs(ctx, cmd.String("as"), true)
	if err != nil {
		return err
	}

	in := services.ExerciseInput{
		Title:          cmd.String("title"),
		Description:    cmd.String("description"),
		NoteRange:      cmd.String("range"),
		MusicalConcept: cmd.String("concept"),
	}
	e, err := r.svc.Exercises.Create(ctx, p, in)
	if err != nil {
		return err
	}

	r.writePlain("✓ Created exercise %d: %s\n", e.ID, e.Title)
	return r.writePlain("  Diagram: %s\n", e.DiagramPath)
}

// ExerciseList searches the catalog and prints it as a table, an export format or JSON.
func (r *Runner) ExerciseList(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.open(ctx)
	if err != nil {
		return err
	}

	filter := models.ExerciseFilter{
		Query:             cmd.String("query"),
		Concept:           cmd.String("concept"),
		NoteRangeContains: cmd.String("contains"),
		Limit:             cmd.Int("limit"),
	}
	if cmd.IsSet("min-rating") {
		rating := cmd.Float("min-rating")
		filter.MinAvgRating = &rating
	}
	if login := cmd.String("created-by"); login != "" {
		author, err := svc.Users.Find(ctx, login)
		if err != nil {
			return err
		}
		filter.CreatedBy = author.ID
	}

	exercises, err := svc.Exercises.Search(ctx, filter)
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(exercises, true)
	case cmd.IsSet("format"):
		f, err := formatter.ParseFormat(cmd.String("format"))
		if err != nil {
			return err
		}
		data, err := formatter.ExportExercises(exercises, f)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case len(exercises) == 0:
		return r.writePlain("No exercises match.\n")
	default:
		return r.writePlain("%s\n", formatter.ExerciseTable(exercises))
	}
}

// ExerciseShow prints one exercise with a text fretboard of its range.
func (r *Runner) ExerciseShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}

	svc, err := r.open(ctx)
	if err != nil {
		return err
	}

	e, err := svc.Exercises.Get(ctx, id)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(e, true)
	}

	board, err := svc.Diagrams.Text(e.NoteRange, diagram.Options{Flats: cmd.Bool("flats")})
	if err != nil {
		return err
	}

	r.writePlainHeader(e.Title)
	if e.Description != "" {
		r.writePlain("%s\n\n", e.Description)
	}
	rows := [][]string{
		{"ID", strconv.FormatInt(e.ID, 10)},
		{"Range", e.NoteRange},
		{"Concept", e.MusicalConcept},
		{"Average rating", formatter.Rating(e.AvgRating)},
		{"Sessions", strconv.Itoa(e.SessionCount)},
		{"Diagram", e.DiagramPath},
		{"Created", e.CreatedAt.Format(models.DateLayout)},
	}
	r.writePlain("%s\n\n", formatter.Table([]string{"Field", "Value"}, rows, nil))
	return r.writePlain("%s\n", strings.TrimRight(board, "\n"))
}

// ExerciseUpdate edits the fields given on the command line and keeps the rest.
func (r *Runner) ExerciseUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}

	p, err := r.actingAs(ctx, cmd.String("as"), true)
	if err != nil {
		return err
	}

	current, err := r.svc.Exercises.Get(ctx, id)
	if err != nil {
		return err
	}

	in := services.ExerciseInput{
		Title:          current.Title,
		Description:    current.Description,
		NoteRange:      current.NoteRange,
		MusicalConcept: current.MusicalConcept,
	}
	for flag, dst := range map[string]*string{
		"title":       &in.Title,
		"description": &in.Description,
		"range":       &in.NoteRange,
		"concept":     &in.MusicalConcept,
	} {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}

	e, err := r.svc.Exercises.Update(ctx, p, id, in)
	if err != nil {
		return err
	}

	r.writePlain("✓ Updated exercise %d: %s\n", e.ID, e.Title)
	return r.writePlain("  Diagram: %s\n", e.DiagramPath)
}

// ExerciseDelete removes an exercise with its sessions and diagram.
func (r *Runner) ExerciseDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}

	p, err := r.actingAs(ctx, cmd.String("as"), true)
	if err != nil {
		return err
	}

	if err := r.svc.Exercises.Delete(ctx, p, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted exercise %d\n", id)
}

// ExerciseConcepts lists the distinct musical concepts.
func (r *Runner) ExerciseConcepts(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.open(ctx)
	if err != nil {
		return err
	}

	concepts, err := svc.Exercises.Concepts(ctx)
	if err != nil {
		return err
	}
	for _, c := range concepts {
		r.writePlain("%s\n", c)
	}
	return nil
}
