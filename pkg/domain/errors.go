package domain

import (
	"errors"
	"fmt"
)

// ErrUnitNotFound is returned when a unit id is not present in the store.
var ErrUnitNotFound = errors.New("unit not found")

// ErrUnitExists is returned when creating or renaming onto an id that is already taken.
var ErrUnitExists = errors.New("unit already exists")

// ErrInvalidUnitID is returned for ids that cannot be used as storage keys.
var ErrInvalidUnitID = errors.New("invalid unit id")

// ErrInvalidHandle is returned when a handle cannot address an edge of the unit.
var ErrInvalidHandle = errors.New("invalid handle")

// ErrInvalidStyle is returned for unknown style fields or values.
var ErrInvalidStyle = errors.New("invalid visual style")

// ParseError reports a unit document that does not coerce into the model.
// It is isolated to that unit: graph construction continues without its edges.
type ParseError struct {
	UnitID string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("unit %q: %s", e.UnitID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err (or anything it wraps) is a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// StoreError wraps a persistence failure raised while serving a user action.
type StoreError struct {
	Op     string // list, read, write, delete, rename
	UnitID string
	Err    error
}

func (e *StoreError) Error() string {
	if e.UnitID == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %q: %v", e.Op, e.UnitID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err (or anything it wraps) is a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
