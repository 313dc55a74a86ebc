package service

import (
	"errors"
	"fmt"

	"Itemizer/internal/repository/rdb"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// translate maps storage errors onto the service sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case rdb.IsNotFound(err):
		return ErrNotFound
	case rdb.IsDuplicate(err):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func forbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}
