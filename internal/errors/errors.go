// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNoData         = errors.New("no valid input data")
	ErrInvalidSeries  = errors.New("invalid series")
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrConfigInvalid  = errors.New("invalid configuration")
	ErrDataNotFound   = errors.New("data not found")
	ErrDatabaseError  = errors.New("database error")
)

// SeriesError represents a failure to scan one symbol's series. It isolates
// the failed symbol so the rest of the scan can continue.
type SeriesError struct {
	Symbol    string
	Timeframe string
	Reason    string
	Err       error
}

func (e *SeriesError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("series error [%s/%s]: %s: %v", e.Symbol, e.Timeframe, e.Reason, e.Err)
	}
	return fmt.Sprintf("series error [%s/%s]: %s", e.Symbol, e.Timeframe, e.Reason)
}

func (e *SeriesError) Unwrap() error {
	return e.Err
}

// NewSeriesError creates a new SeriesError.
func NewSeriesError(symbol, timeframe, reason string, err error) *SeriesError {
	return &SeriesError{
		Symbol:    symbol,
		Timeframe: timeframe,
		Reason:    reason,
		Err:       err,
	}
}

// DataError represents a data ingestion error for a single source file.
type DataError struct {
	File    string
	Message string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s]: %s: %v", e.File, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s]: %s", e.File, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(file, message string, err error) *DataError {
	return &DataError{
		File:    file,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
