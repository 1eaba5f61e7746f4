package services

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"

	"github.com/desertthunder/fretmastery/internal/assets"
	"github.com/desertthunder/fretmastery/internal/diagram"
	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/pitch"
	"github.com/desertthunder/fretmastery/internal/shared"
)

// Services bundles every use case for the CLI and the HTTP server.
type Services struct {
	Users     *UserService
	Exercises *ExerciseService
	Sessions  *SessionService
	Diagrams  *DiagramService
	Tokens    *TokenIssuer
}

// Options carries the dependencies shared by all services.
type Options struct {
	Config *shared.Config
	DB     *sqlx.DB
	Store  *assets.FileStore
	Cache  assets.Cache
	Logger *log.Logger
}

// New builds all services from opts. A nil Cache disables render caching.
func New(opts Options) *Services {
	cfg := opts.Config
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Cache == nil {
		opts.Cache = assets.NopCache{}
	}

	board := pitch.Standard(cfg.Fretboard.MaxFret)
	render := DiagramOptions(cfg)
	tokens := NewTokenIssuer(cfg.Server.JWTSecret, cfg.Server.TokenTTLMinutes)

	return &Services{
		Users:     NewUserService(opts.DB, opts.Store, cfg.Server.BcryptCost, tokens, opts.Logger),
		Exercises: NewExerciseService(opts.DB, opts.Store, board, render, opts.Logger),
		Sessions:  NewSessionService(opts.DB, opts.Logger),
		Diagrams:  NewDiagramService(board, render, opts.Cache, cfg.Cache.TTLDuration(), opts.Logger),
		Tokens:    tokens,
	}
}

// DiagramOptions maps the diagram and fretboard config sections onto renderer options.
func DiagramOptions(cfg *shared.Config) diagram.Options {
	return diagram.Options{
		Width:      cfg.Diagram.Width,
		Height:     cfg.Diagram.Height,
		MaxFret:    cfg.Fretboard.MaxFret,
		ShowOctave: cfg.Diagram.ShowOctave,
		Flats:      !cfg.Fretboard.PreferSharps,
	}
}

func requireAdmin(p models.Principal, action string) error {
	if !p.Authenticated() {
		return fmt.Errorf("%w: sign in to %s", shared.ErrNotAuthenticated, action)
	}
	if !p.IsAdmin {
		return fmt.Errorf("%w: only admins can %s", shared.ErrForbidden, action)
	}
	return nil
}

func requireUser(p models.Principal, action string) error {
	if !p.Authenticated() {
		return fmt.Errorf("%w: sign in to %s", shared.ErrNotAuthenticated, action)
	}
	return nil
}
