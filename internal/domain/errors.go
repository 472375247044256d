package domain

import (
	"errors"
	"fmt"
)

// MissingFieldError reports a required statement field that was absent for a
// period. It is fatal to that period's valuation only - batch runners catch it,
// log it, and move on.
type MissingFieldError struct {
	Field string
	Date  string
}

func (e *MissingFieldError) Error() string {
	if e.Date == "" {
		return fmt.Sprintf("missing required field %q", e.Field)
	}
	return fmt.Sprintf("missing required field %q for period %s", e.Field, e.Date)
}

// DivisionByZeroError reports a degenerate denominator (zero pretax income,
// zero shares outstanding, or discount rate not exceeding perpetual growth).
type DivisionByZeroError struct {
	Op string
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero in %s", e.Op)
}

// InvalidGrowthSpecError reports a malformed growth-rate override. This is a
// caller error and always fatal.
type InvalidGrowthSpecError struct {
	Reason string
}

func (e *InvalidGrowthSpecError) Error() string {
	return fmt.Sprintf("invalid growth specification: %s", e.Reason)
}

// ErrNonConvergence signals that an iterative numeric routine failed to
// converge. Callers recover by falling back to a configured rate; it never
// propagates out of the return-metrics layer.
var ErrNonConvergence = errors.New("numeric routine did not converge")

// IsMissingField reports whether err wraps a MissingFieldError.
func IsMissingField(err error) bool {
	var target *MissingFieldError
	return errors.As(err, &target)
}

// IsDivisionByZero reports whether err wraps a DivisionByZeroError.
func IsDivisionByZero(err error) bool {
	var target *DivisionByZeroError
	return errors.As(err, &target)
}

// IsInvalidGrowthSpec reports whether err wraps an InvalidGrowthSpecError.
func IsInvalidGrowthSpec(err error) bool {
	var target *InvalidGrowthSpecError
	return errors.As(err, &target)
}
