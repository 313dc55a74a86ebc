package model

import (
	"errors"
	"fmt"
	"strings"
)

// Op tells a validator which write is being checked.
type Op int

const (
	OpCreate Op = iota
	OpPatch
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpPatch:
		return "patch"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

const MinPasswordLength = 8

// ValidationError is returned for a field that breaks an entity rule.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s - %s", e.Field, e.Msg)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Validator is implemented by every persisted entity.
type Validator interface {
	Validate(op Op) error
}

// Record is what the generic resource needs from an entity.
type Record interface {
	Validator
	GetID() uint64
	// Patchable lists the json keys a PATCH may change.
	Patchable() []string
}

// OrgScoped is implemented by entities that belong to one organization.
type OrgScoped interface {
	OrgID() uint64
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "must be a non-empty string.")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return invalid("password", fmt.Sprintf("must be at least %d characters long.", MinPasswordLength))
	}
	return nil
}
