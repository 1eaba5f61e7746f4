package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/fretmastery/internal/formatter"
	"github.com/desertthunder/fretmastery/internal/server"
	"github.com/desertthunder/fretmastery/internal/shared"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.database()
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)

	return r.SetupStatus(ctx, cmd)
}

// SetupConfig writes the example configuration, refusing to overwrite an existing file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if path == "" {
		path = r.configPath
	}
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Wrote %s\n", path)
}

// SetupStatus prints the applied migrations.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	applied, err := shared.MigrationStatus(db)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return r.writePlain("No migrations applied. Run 'fretmastery setup database'.\n")
	}

	rows := make([][]string, 0, len(applied))
	for _, m := range applied {
		rows = append(rows, []string{strconv.Itoa(m.Version), m.AppliedAt.Format("2006-01-02 15:04:05")})
	}
	return r.writePlain("%s\n", formatter.Table([]string{"Version", "Applied"}, rows, []formatter.Align{formatter.AlignRight}))
}

// SetupRollback reverts the newest migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}
	r.logger.Info("rolled back latest migration")
	return r.SetupStatus(ctx, cmd)
}

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.open(ctx)
	if err != nil {
		return err
	}

	config := *r.config
	if cmd.IsSet("host") {
		config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		config.Server.Port = cmd.Int("port")
	}

	srv := server.New(server.Options{
		Config:   &config,
		Services: svc,
		Store:    r.store,
		DB:       r.db,
		Logger:   r.logger,
	})

	err = srv.ListenAndServe(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
