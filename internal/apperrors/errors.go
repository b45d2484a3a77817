package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// Pipeline error kinds. Typed errors below match these via errors.Is.
var (
	ErrFetch       = errors.New("fetch error")
	ErrParse       = errors.New("parse error")
	ErrPersistence = errors.New("persistence error")
	ErrMissingRate = errors.New("missing exchange rate")
)

// FetchError reports that the rate feed was unreachable or answered with a non-success status.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error        { return e.Err }
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// NewFetchError wraps a transport failure.
func NewFetchError(url string, err error) *FetchError {
	return &FetchError{URL: url, Err: err}
}

// NewStatusError reports a non-success HTTP status.
func NewStatusError(url string, status int) *FetchError {
	return &FetchError{URL: url, StatusCode: status}
}

// ParseError reports a feed body that does not have the expected structure.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse feed: %s: %v", e.Reason, e.Err)
	}
	return "parse feed: " + e.Reason
}

func (e *ParseError) Unwrap() error        { return e.Err }
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// NewParseError creates a ParseError; err may be nil.
func NewParseError(reason string, err error) *ParseError {
	return &ParseError{Reason: reason, Err: err}
}

// PersistenceError reports a failed database write.
type PersistenceError struct {
	Op           string
	CurrencyCode string
	Err          error
}

func (e *PersistenceError) Error() string {
	if e.CurrencyCode != "" {
		return fmt.Sprintf("%s (%s): %v", e.Op, e.CurrencyCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error        { return e.Err }
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// NewPersistenceError wraps a database failure for the given operation.
func NewPersistenceError(op, currencyCode string, err error) *PersistenceError {
	return &PersistenceError{Op: op, CurrencyCode: currencyCode, Err: err}
}

// MissingRateError reports an order whose currency has no stored rate.
type MissingRateError struct {
	OrderID      string
	CurrencyCode string
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("order %s: no exchange rate for currency %q", e.OrderID, e.CurrencyCode)
}

func (e *MissingRateError) Is(target error) bool { return target == ErrMissingRate }

// NewValidationError wraps ErrValidation with a message.
func NewValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
