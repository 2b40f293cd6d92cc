package querybuilder

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIdentifier matches *IdentifierError.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrInvalidLimit matches *LimitError.
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrInvalidSort matches *SortError.
	ErrInvalidSort = errors.New("invalid sort")
	// ErrQueryFailed matches *StoreError.
	ErrQueryFailed = errors.New("query failed")
)

// IdentifierError reports a table, column or order-by name that is not a bare
// word token.
type IdentifierError struct {
	Value string
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("Invalid identifier: %s", e.Value)
}

func (e *IdentifierError) Is(target error) bool {
	return target == ErrInvalidIdentifier
}

// LimitError reports a limit that is not strictly positive.
type LimitError struct {
	Value int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("Invalid limit: %d", e.Value)
}

func (e *LimitError) Is(target error) bool {
	return target == ErrInvalidLimit
}

// SortError reports a sort direction other than ASC or DESC.
type SortError struct {
	Value string
}

func (e *SortError) Error() string {
	return fmt.Sprintf("Invalid sort: %s", e.Value)
}

func (e *SortError) Is(target error) bool {
	return target == ErrInvalidSort
}

// StoreError wraps any failure reported by the database: connectivity,
// syntax or constraint violations.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, ErrQueryFailed)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrQueryFailed, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrQueryFailed
}

func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
