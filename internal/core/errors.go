package core

import (
	"errors"
	"fmt"
)

// ValidationError marks a precondition failure on user input. It is always
// recoverable by correcting the input; callers surface it without retrying.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Invalid(msg string) *ValidationError { return &ValidationError{Msg: msg} }

var (
	ErrInvalidDate       = Invalid("date must be in YYYY-MM-DD form")
	ErrInvalidType       = Invalid("type must be debit, credit or cash")
	ErrInvalidAmount     = Invalid("amount must be greater than zero")
	ErrEmptyDescription  = Invalid("description cannot be empty")
	ErrEmptyCategoryName = Invalid("category name cannot be empty")
	ErrDuplicateCategory = Invalid("category name already exists")
)

// StoreError wraps a failure of the backing store. The triggering mutation is
// treated as not applied; the user re-triggers the action, no automatic retry.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

func StoreFailure(op string, err error) *StoreError { return &StoreError{Op: op, Err: err} }

// NotFoundError reports an operation against a record that no longer exists.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Kind, e.ID) }

func NotFound(kind, id string) *NotFoundError { return &NotFoundError{Kind: kind, ID: id} }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsStore(err error) bool {
	var s *StoreError
	return errors.As(err, &s)
}
