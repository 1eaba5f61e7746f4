// package repositories provides persistence layer implementations for all model types.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/desertthunder/fretmastery/internal/shared"
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx.
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

var (
	_ DBTX = (*sqlx.DB)(nil)
	_ DBTX = (*sqlx.Tx)(nil)
)

// getOne runs a single-row query, turning sql.ErrNoRows into a [shared.NotFoundError].
func getOne(ctx context.Context, db DBTX, dest any, entity string, id int64, query string, args ...any) error {
	err := db.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return shared.NewNotFoundError(entity, id)
	}
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", entity, err)
	}
	return nil
}

// exists reports whether table has a row with the given id.
func exists(ctx context.Context, db DBTX, table string, id int64) (bool, error) {
	var found bool
	err := db.GetContext(ctx, &found, "SELECT EXISTS(SELECT 1 FROM "+table+" WHERE id = ?)", id)
	return found, err
}

// requireAffected turns a zero-row update or delete into a [shared.NotFoundError].
func requireAffected(result sql.Result, entity string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return shared.NewNotFoundError(entity, id)
	}
	return nil
}

// uniqueViolation reports the column named by a UNIQUE constraint failure, e.g. "email" for
// "UNIQUE constraint failed: users.email".
func uniqueViolation(err error) (string, bool) {
	var serr sqlite3.Error
	if !errors.As(err, &serr) || serr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return "", false
	}

	msg := serr.Error()
	idx := strings.LastIndex(msg, ".")
	if idx < 0 {
		return "", true
	}
	return strings.TrimSpace(msg[idx+1:]), true
}

func foreignKeyViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// likePattern wraps s for a substring LIKE match with "\" as the escape character.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
