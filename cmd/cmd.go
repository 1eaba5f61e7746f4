// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles database and configuration setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Where to write the file (default: the --config path)",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "status",
				Usage:  "Show applied migrations",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// seedCommand loads sample users, exercises and sessions.
func seedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "seed",
		Usage:  "Load sample users, exercises and practice sessions into an empty database",
		Action: r.Seed,
	}
}

// serveCommand runs the JSON API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to bind (default: server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (default: server.port)",
			},
		},
		Action: r.Serve,
	}
}

// userCommand manages accounts.
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "user",
		Aliases: []string{"users"},
		Usage:   "Manage accounts",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Account name", Required: true},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address", Required: true},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Initial password",
						Sources:  cli.EnvVars("FRETMASTERY_PASSWORD"),
						Required: true,
					},
					&cli.BoolFlag{Name: "admin", Usage: "Allow the account to manage exercises"},
				},
				Action: r.UserCreate,
			},
			{
				Name:  "list",
				Usage: "List accounts",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "admins", Usage: "Only list admins"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.UserList,
			},
			{
				Name:      "delete",
				Usage:     "Delete an account with its exercises and sessions",
				Arguments: []cli.Argument{&cli.StringArg{Name: "login"}},
				Action:    r.UserDelete,
			},
			{
				Name:      "passwd",
				Usage:     "Reset an account's password",
				Arguments: []cli.Argument{&cli.StringArg{Name: "login"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "New password",
						Sources:  cli.EnvVars("FRETMASTERY_PASSWORD"),
						Required: true,
					},
				},
				Action: r.UserPasswd,
			},
		},
	}
}

func actorFlag(usage string) cli.Flag {
	return &cli.StringFlag{Name: "as", Usage: usage}
}

func exerciseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Exercise title"},
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "What to practise"},
		&cli.StringFlag{Name: "range", Aliases: []string{"r"}, Usage: "Note range, e.g. E2-G2"},
		&cli.StringFlag{Name: "concept", Usage: "Musical concept, e.g. scales"},
		actorFlag("Admin username or email to act as (default: first admin)"),
	}
}

// exerciseCommand manages the exercise catalog.
func exerciseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "exercise",
		Aliases: []string{"ex", "exercises"},
		Usage:   "Manage the exercise catalog",
		Commands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Create an exercise and generate its diagram",
				Flags:  exerciseFlags(),
				Action: r.ExerciseCreate,
			},
			{
				Name:  "list",
				Usage: "Search exercises",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Text in the title or description"},
					&cli.StringFlag{Name: "concept", Usage: "Exact musical concept"},
					&cli.StringFlag{Name: "contains", Usage: "A note or range the exercise must cover"},
					&cli.FloatFlag{Name: "min-rating", Usage: "Minimum average difficulty rating"},
					&cli.StringFlag{Name: "created-by", Usage: "Author username or email"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of results"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Print as csv, md or txt instead of a table"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.ExerciseList,
			},
			{
				Name:      "show",
				Usage:     "Show an exercise with its fretboard",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "flats", Usage: "Spell accidentals as flats"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.ExerciseShow,
			},
			{
				Name:      "update",
				Usage:     "Change an exercise, regenerating its diagram",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     exerciseFlags(),
				Action:    r.ExerciseUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete an exercise and its practice sessions",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{actorFlag("Admin username or email to act as (default: first admin)")},
				Action:    r.ExerciseDelete,
			},
			{
				Name:   "concepts",
				Usage:  "List the musical concepts in use",
				Action: r.ExerciseConcepts,
			},
		},
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "Username or email the sessions belong to",
		Sources:  cli.EnvVars("FRETMASTERY_USER"),
		Required: true,
	}
}

func sessionFlags() []cli.Flag {
	return []cli.Flag{
		userFlag(),
		&cli.IntFlag{Name: "rating", Usage: "Difficulty from 1 (easy) to 5 (hard)"},
		&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
		&cli.StringFlag{Name: "date", Usage: "Practice date as YYYY-MM-DD (default: today)"},
	}
}

// sessionCommand manages practice sessions.
func sessionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "session",
		Aliases: []string{"sessions"},
		Usage:   "Record and review practice sessions",
		Commands: []*cli.Command{
			{
				Name:  "log",
				Usage: "Record a practice session",
				Flags: append(sessionFlags(),
					&cli.StringFlag{Name: "exercise", Aliases: []string{"e"}, Usage: "Exercise ID", Required: true},
				),
				Action: r.SessionLog,
			},
			{
				Name:  "list",
				Usage: "Show a practice log, most recent first",
				Flags: []cli.Flag{
					userFlag(),
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of sessions"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.SessionList,
			},
			{
				Name:      "update",
				Usage:     "Change a session's rating, notes or date",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     sessionFlags(),
				Action:    r.SessionUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a practice session",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{userFlag()},
				Action:    r.SessionDelete,
			},
			{
				Name:  "export",
				Usage: "Export a practice log to CSV, Markdown or text",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "csv, md or txt", Value: "csv"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file (default: practice-<user>.<ext>, - for stdout)"},
				},
				Action: r.SessionExport,
			},
		},
	}
}

func drawFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "flats", Usage: "Spell accidentals as flats"},
		&cli.BoolFlag{Name: "octave", Usage: "Label notes with their octave"},
		&cli.IntFlag{Name: "start", Usage: "First fret of the window"},
		&cli.IntFlag{Name: "frets", Usage: "Number of frets in the window"},
	}
}

// fretboardCommand prints where a range lies on the neck.
func fretboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "fretboard",
		Aliases:   []string{"fb"},
		Usage:     "List the positions of a note range and draw them as text",
		Arguments: []cli.Argument{&cli.StringArg{Name: "range"}},
		Flags: append(drawFlags(),
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		),
		Action: r.Fretboard,
	}
}

// diagramCommand writes a single SVG.
func diagramCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "diagram",
		Usage:     "Render a note range to an SVG file",
		Arguments: []cli.Argument{&cli.StringArg{Name: "range"}},
		Flags: append(drawFlags(),
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file (default: <range>.svg, - for stdout)"},
			&cli.StringFlag{Name: "title", Usage: "Caption drawn above the fretboard"},
			&cli.IntFlag{Name: "width", Usage: "Image width in pixels"},
			&cli.IntFlag{Name: "height", Usage: "Image height in pixels"},
		),
		Action: r.Diagram,
	}
}

// diagramsCommand handles stored diagram maintenance.
func diagramsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "diagrams",
		Usage: "Stored diagram maintenance",
		Commands: []*cli.Command{
			{
				Name:  "rebuild",
				Usage: "Regenerate stored diagrams for every exercise",
				Flags: []cli.Flag{
					&cli.Int64SliceFlag{Name: "id", Usage: "Only rebuild these exercise IDs"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent renderers", Value: 4},
					&cli.FloatFlag{Name: "rate", Usage: "Exercises dispatched per second", Value: 50},
					&cli.BoolFlag{Name: "dry-run", Usage: "Render without writing files or updating exercises"},
				},
				Action: r.DiagramsRebuild,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for browsing exercises.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse exercises and their fretboards interactively",
		Action:  r.TUI,
	}
}
