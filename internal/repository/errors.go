package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	// ErrNotFound is returned by Find* methods when no row matches.
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrDuplicate marks a unique index violation; see DuplicateError for the index.
	ErrDuplicate = errors.New("duplicate key")
	// ErrReferenced marks a delete blocked by a foreign key.
	ErrReferenced = errors.New("row is still referenced")
)

// DuplicateError names the unique index that rejected a write.
type DuplicateError struct {
	Constraint string
	Err        error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate key on %s", e.Constraint)
}

func (e *DuplicateError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDuplicate}
	}
	return []error{ErrDuplicate, e.Err}
}

// IsDuplicateOn reports whether err is a unique violation of the named index.
func IsDuplicateOn(err error, constraint string) bool {
	var dup *DuplicateError
	return errors.As(err, &dup) && dup.Constraint == constraint
}

// translateError converts driver errors into the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &DuplicateError{Constraint: pgErr.ConstraintName, Err: err}
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrReferenced, pgErr.ConstraintName)
		}
	}
	return err
}
