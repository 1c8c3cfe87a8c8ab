package service

import (
	"errors"

	"github.com/google/uuid"

	"pharmaproc/internal/apperr"
	"pharmaproc/internal/repository"
)

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s id %q", what, raw)
	}
	return id, nil
}

// notFound turns a repository miss into a NotFound error and passes anything
// else through untouched.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Wrap(apperr.ErrNotFound, err, format, args...)
	}
	return err
}
