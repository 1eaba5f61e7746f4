package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/services"
	"github.com/desertthunder/fretmastery/internal/shared"
)

type seedUser struct {
	input services.RegisterInput
	admin bool
}

type seedSession struct {
	user     int // index into seedUsers
	exercise int // index into seedExercises
	rating   int
	notes    string
	date     string
}

var seedUsers = []seedUser{
	{services.RegisterInput{Username: "admin", Email: "admin@example.com", Password: "admin123"}, true},
	{services.RegisterInput{Username: "john_guitarist", Email: "john@example.com", Password: "password123"}, false},
	{services.RegisterInput{Username: "sarah_bass", Email: "sarah@example.com", Password: "password123"}, false},
}

var seedExercises = []services.ExerciseInput{
	{Title: "C Major Scale - Position 1", Description: "Learn the C Major scale in first position", NoteRange: "C3-G4", MusicalConcept: "scales"},
	{Title: "E Minor Pentatonic", Description: "Essential pentatonic scale for blues and rock", NoteRange: "E2-E4", MusicalConcept: "scales"},
	{Title: "Open C Chord", Description: "Basic open C major chord voicing", NoteRange: "C3-E4", MusicalConcept: "chords"},
	{Title: "Perfect Fifth Intervals", Description: "Practice recognizing perfect fifths on adjacent strings", NoteRange: "E2-A4", MusicalConcept: "intervals"},
}

var seedSessions = []seedSession{
	{1, 0, 3, "Found this challenging at first, but getting smoother", "2025-11-20"},
	{1, 0, 2, "Much easier after a few days of practice", "2025-11-25"},
	{1, 1, 4, "Really tough to get clean notes on all strings", "2025-11-21"},
	{2, 0, 2, "Easy scale, good for warming up", "2025-11-22"},
	{2, 2, 3, "Finger placement took some time to figure out", "2025-11-23"},
	{2, 3, 5, "Very difficult! Need more practice with intervals", "2025-11-24"},
}

// Seed fills an empty database with sample accounts, exercises (with diagrams) and practice sessions.
func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.open(ctx)
	if err != nil {
		return err
	}

	existing, err := svc.Users.List(ctx, false)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: database already has %d users, seed only runs on an empty database", shared.ErrInvalidArgument, len(existing))
	}

	principals := make([]models.Principal, 0, len(seedUsers))
	for _, su := range seedUsers {
		user, err := svc.Users.Register(ctx, su.input, su.admin)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", su.input.Username, err)
		}
		principals = append(principals, models.PrincipalFor(user))
	}

	exerciseIDs := make([]int64, 0, len(seedExercises))
	for _, in := range seedExercises {
		e, err := svc.Exercises.Create(ctx, principals[0], in)
		if err != nil {
			return fmt.Errorf("failed to seed exercise %q: %w", in.Title, err)
		}
		exerciseIDs = append(exerciseIDs, e.ID)
	}

	for _, ss := range seedSessions {
		in := services.SessionInput{
			ExerciseID:       exerciseIDs[ss.exercise],
			DifficultyRating: ss.rating,
			SessionNotes:     ss.notes,
			PracticeDate:     ss.date,
		}
		if _, err := svc.Sessions.Record(ctx, principals[ss.user], in); err != nil {
			return fmt.Errorf("failed to seed session: %w", err)
		}
	}

	r.logger.Info("seeded database", "users", len(seedUsers), "exercises", len(seedExercises), "sessions", len(seedSessions))

	r.writePlainHeader("Sample data loaded")
	r.writePlain("%d users, %d exercises, %d practice sessions\n", len(seedUsers), len(seedExercises), len(seedSessions))
	r.writePlainln("Sample logins:")
	for _, su := range seedUsers {
		role := "user"
		if su.admin {
			role = "admin"
		}
		r.writePlain("  %-16s %-12s (%s)\n", su.input.Username, su.input.Password, role)
	}
	return nil
}
