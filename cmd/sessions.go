package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/fretmastery/internal/formatter"
	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/services"
	"github.com/desertthunder/fretmastery/internal/shared"
)

// SessionLog records a practice session for --user.
func (r *Runner) SessionLog(ctx context.Context, cmd *cli.Command) error {
	p, err := r.actingAs(ctx, cmd.String("user"), false)
	if err != nil {
		return err
	}

	exerciseID, err := strconv.ParseInt(cmd.String("exercise"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: exercise %q is not an ID", shared.ErrInvalidArgument, cmd.String("exercise"))
	}

	in := services.SessionInput{
		ExerciseID:       exerciseID,
		DifficultyRating: cmd.Int("rating"),
		SessionNotes:     cmd.String("notes"),
		PracticeDate:     cmd.String("date"),
	}
	session, err := r.svc.Sessions.Record(ctx, p, in)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Logged session %d on %s (rating %d/%d)\n", session.ID, session.Date(), session.DifficultyRating, models.MaxRating)
}

// SessionList prints a user's practice log.
func (r *Runner) SessionList(ctx context.Context, cmd *cli.Command) error {
	p, err := r.actingAs(ctx, cmd.String("user"), false)
	if err != nil {
		return err
	}

	sessions, err := r.svc.Sessions.Log(ctx, p, cmd.Int("limit"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(sessions, true)
	}
	if len(sessions) == 0 {
		return r.writePlain("No practice sessions for %s.\n", p.Username)
	}

	rows := formatter.SessionRows(sessions)
	for i, s := range sessions {
		rows[i] = append([]string{strconv.FormatInt(s.ID, 10)}, rows[i]...)
	}
	headers := []string{"ID", "Date", "Exercise", "Range", "Rating", "Notes"}
	aligns := []formatter.Align{formatter.AlignRight, formatter.AlignLeft, formatter.AlignLeft, formatter.AlignLeft, formatter.AlignRight}
	r.writePlain("%s\n", formatter.Table(headers, rows, aligns))

	log := formatter.PracticeLog{Username: p.Username, Sessions: sessions}
	return r.writePlain("%d sessions, average rating %.2f\n", len(sessions), log.Average())
}

// SessionUpdate changes the rating, notes or date of one of the user's sessions.
func (r *Runner) SessionUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}

	p, err := r.actingAs(ctx, cmd.String("user"), false)
	if err != nil {
		return err
	}

	current, err := r.svc.Sessions.Get(ctx, p, id)
	if err != nil {
		return err
	}

	in := services.SessionInput{
		DifficultyRating: current.DifficultyRating,
		SessionNotes:     current.SessionNotes,
		PracticeDate:     current.Date(),
	}
	if cmd.IsSet("rating") {
		in.DifficultyRating = cmd.Int("rating")
	}
	if cmd.IsSet("notes") {
		in.SessionNotes = cmd.String("notes")
	}
	if cmd.IsSet("date") {
		in.PracticeDate = cmd.String("date")
	}

	session, err := r.svc.Sessions.Update(ctx, p, id, in)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Updated session %d on %s (rating %d/%d)\n", session.ID, session.Date(), session.DifficultyRating, models.MaxRating)
}

// SessionDelete removes a session. Admins may delete anyone's.
func (r *Runner) SessionDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := requireID(cmd)
	if err != nil {
		return err
	}

	p, err := r.actingAs(ctx, cmd.String("user"), false)
	if err != nil {
		return err
	}

	if err := r.svc.Sessions.Delete(ctx, p, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted session %d\n", id)
}

// SessionExport writes a user's whole practice log in the requested format.
func (r *Runner) SessionExport(ctx context.Context, cmd *cli.Command) error {
	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	p, err := r.actingAs(ctx, cmd.String("user"), false)
	if err != nil {
		return err
	}

	sessions, err := r.svc.Sessions.Log(ctx, p, 0)
	if err != nil {
		return err
	}

	data, err := formatter.ExportSessions(&formatter.PracticeLog{Username: p.Username, Sessions: sessions}, f)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "-" {
		return r.writePlain("%s", data)
	}

	path, err := formatter.WriteExport(data, output, "practice-"+p.Username, f)
	if err != nil {
		return err
	}
	r.logger.Info("exported practice log", "user", p.Username, "sessions", len(sessions), "path", path)
	return r.writePlain("✓ Exported %d sessions to %s\n", len(sessions), path)
}
