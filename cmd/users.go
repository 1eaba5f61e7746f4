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

// UserCreate registers an account. This is the only way to create admins.
func (r *Runner) UserCreate(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.open(ctx)
	if err != nil {
		return err
	}

	in := services.RegisterInput{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	}
	user, err := svc.Users.Register(ctx, in, cmd.Bool("admin"))
	if err != nil {
		return err
	}

	role := "user"
	if user.IsAdmin {
		role = "admin"
	}
	return r.writePlain("✓ Created %s %s (id %d)\n", role, user.Username, user.ID)
}

// UserList prints accounts.
func (r *Runner) UserList(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.open(ctx)
	if err != nil {
		return err
	}

	users, err := svc.Users.List(ctx, cmd.Bool("admins"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(users, true)
	}
	if len(users) == 0 {
		return r.writePlain("No users.\n")
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		admin := ""
		if u.IsAdmin {
			admin = "yes"
		}
		rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.Username, u.Email, admin, u.CreatedAt.Format(models.DateLayout)})
	}
	headers := []string{"ID", "Username", "Email", "Admin", "Created"}
	return r.writePlain("%s\n", formatter.Table(headers, rows, []formatter.Align{formatter.AlignRight}))
}

// UserDelete removes an account and everything it owns.
func (r *Runner) UserDelete(ctx context.Context, cmd *cli.Command) error {
	login, err := requireArg(cmd, "login")
	if err != nil {
		return err
	}

	svc, err := r.open(ctx)
	if err != nil {
		return err
	}

	user, err := svc.Users.Find(ctx, login)
	if err != nil {
		return err
	}
	if err := svc.Users.Delete(ctx, user.ID); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", user.Username)
}

// UserPasswd sets an account's password without the current one.
func (r *Runner) UserPasswd(ctx context.Context, cmd *cli.Command) error {
	login, err := requireArg(cmd, "login")
	if err != nil {
		return err
	}

	svc, err := r.open(ctx)
	if err != nil {
		return err
	}

	user, err := svc.Users.Find(ctx, login)
	if err != nil {
		return err
	}
	if err := svc.Users.SetPassword(ctx, user.ID, cmd.String("password")); err != nil {
		return err
	}
	return r.writePlain("✓ Password updated for %s\n", user.Username)
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := cmd.StringArg(name)
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}

func requireID(cmd *cli.Command) (int64, error) {
	raw, err := requireArg(cmd, "id")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q is not a positive integer", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}
