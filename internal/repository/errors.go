package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrProviderAlreadyLinked = errors.New("provider already linked to a different identity")
	ErrNoAuthMethod          = errors.New("account has no password and no linked provider")
)

// ConflictError reports a unique constraint violation on Field
// (email, username, google_id or github_id).
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return "account already exists"
	}
	return fmt.Sprintf("%s already exists", e.Field)
}

var uniqueColumns = []string{"email", "username", "google_id", "github_id"}

// asConflict converts a unique violation into a *ConflictError and returns
// any other error unchanged.
func asConflict(err error) error {
	field, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	return &ConflictError{Field: field}
}

func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return columnFrom(sqliteErr.Error()), true
		}
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return columnFrom(pgErr.ConstraintName + " " + pgErr.Detail), true
		}
		return "", false
	}

	// Drivers wrapped by something that hides the typed error
	errStr := err.Error()
	if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
		return columnFrom(errStr), true
	}
	return "", false
}

// columnFrom picks the unique column named in a driver message such as
// "UNIQUE constraint failed: users.email" or "users_google_id_key".
func columnFrom(msg string) string {
	for _, col := range uniqueColumns {
		if strings.Contains(msg, "users."+col) || strings.Contains(msg, "users_"+col+"_key") || strings.Contains(msg, "("+col+")") {
			return col
		}
	}
	return ""
}
