package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/fretmastery/internal/assets"
	"github.com/desertthunder/fretmastery/internal/models"
	"github.com/desertthunder/fretmastery/internal/pitch"
	"github.com/desertthunder/fretmastery/internal/services"
	"github.com/desertthunder/fretmastery/internal/shared"
	"github.com/desertthunder/fretmastery/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and services are opened on first use so commands that only draw diagrams never touch SQLite.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer

	db     *sqlx.DB
	ownsDB bool
	store  *assets.FileStore
	cache  assets.Cache
	svc    *services.Services
	engine *tasks.DiagramEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sqlx.DB // Optional, the runner opens Config.Database.Path when nil
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
}

// command builds the root command.
func (r *Runner) command() *cli.Command {
	return &cli.Command{
		Name:    "fretmastery",
		Usage:   "Guitar fretboard exercises, diagrams and practice logs",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("FRETMASTERY_CONFIG"),
			},
		},
		Before:   r.Load,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, seedCommand, serveCommand, userCommand, exerciseCommand, sessionCommand,
		fretboardCommand, diagramCommand, diagramsCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Load reads the configuration named by --config. A config handed to [NewRunner] is kept unless --config is set
// explicitly.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config != nil && !cmd.IsSet("config") {
		return ctx, nil
	}

	path := cmd.String("config")
	config, err := shared.LoadConfigOrDefault(path)
	if err != nil {
		return ctx, err
	}
	if err := config.Validate(); err != nil {
		return ctx, err
	}

	r.config = config
	r.configPath = path
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(config.App.LogLevel))
	r.logger.Debug("loaded config", "path", path, "env", config.App.Env)
	return ctx, nil
}

// SetLogger swaps the logger used by the runner and anything it opens afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// database opens the configured database without migrating it.
func (r *Runner) database() (*sqlx.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, err
	}
	if !isMemoryPath(r.config.Database.Path) {
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	}

	r.db = db
	r.ownsDB = true
	return db, nil
}

// open migrates the database and builds the services on first call.
func (r *Runner) open(ctx context.Context) (*services.Services, error) {
	if r.svc != nil {
		return r.svc, nil
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}
	if err := shared.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cache, err := assets.NewCache(ctx, r.config.Cache)
	if err != nil {
		r.logger.Warn("diagram cache unavailable, using in-process cache", "error", err)
		cache = assets.NewMemoryCache()
	}

	r.cache = cache
	r.store = assets.NewFileStore(r.config.Diagram.Dir, r.config.Diagram.URLPrefix)
	r.svc = services.New(services.Options{
		Config: r.config,
		DB:     db,
		Store:  r.store,
		Cache:  cache,
		Logger: r.logger,
	})
	r.engine = tasks.NewDiagramEngine(r.svc.Exercises)
	return r.svc, nil
}

// diagrams builds a database-free diagram service for the drawing commands.
func (r *Runner) diagrams() *services.DiagramService {
	board := pitch.Standard(r.config.Fretboard.MaxFret)
	return services.NewDiagramService(board, services.DiagramOptions(r.config), assets.NopCache{}, 0, r.logger)
}

// Close releases the database and cache connections the runner opened.
func (r *Runner) Close() error {
	if c, ok := r.cache.(io.Closer); ok {
		c.Close()
	}
	if r.db != nil && r.ownsDB {
		return r.db.Close()
	}
	return nil
}

// actingAs resolves the principal a command runs for. With no login, admin commands fall back to the first admin
// account.
func (r *Runner) actingAs(ctx context.Context, login string, admin bool) (models.Principal, error) {
	svc, err := r.open(ctx)
	if err != nil {
		return models.Principal{}, err
	}

	if login != "" {
		user, err := svc.Users.Find(ctx, login)
		if err != nil {
			return models.Principal{}, err
		}
		return models.PrincipalFor(user), nil
	}

	if !admin {
		return models.Principal{}, fmt.Errorf("%w: --user is required", shared.ErrMissingArgument)
	}

	admins, err := svc.Users.List(ctx, true)
	if err != nil {
		return models.Principal{}, err
	}
	if len(admins) == 0 {
		return models.Principal{}, fmt.Errorf("%w: no admin account, run 'fretmastery user create --admin' first", shared.ErrMissingArgument)
	}
	return models.PrincipalFor(admins[0]), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

func isMemoryPath(path string) bool {
	return path == ":memory:"
}
