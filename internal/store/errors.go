package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// NotFoundError reports an absent entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// ConflictError reports a unique-constraint violation.
type ConflictError struct {
	Entity string
	ID     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Entity, e.ID)
}

// StoreError wraps any other persistence failure. Retrying is the caller's
// concern; the store surfaces the raw cause.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// translate maps gorm errors into the store taxonomy.
func translate(op, entity, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &NotFoundError{Entity: entity, ID: id}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ConflictError{Entity: entity, ID: id}
	default:
		return &StoreError{Op: op, Err: err}
	}
}
