/*
errors.go - Centralized error types for the roster engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Storage errors - Rule persistence failures (load, save, schema)
  2. Validation errors - Malformed dates, periods, priority models
  3. Merge errors - Pathological configuration trees

RECOVERY:
  Almost nothing in this module is fatal. Rule stores convert storage
  errors into in-memory fallbacks and only log them; imports report a
  boolean. These errors exist so that the fallback paths can tell the
  cases apart and so that adapters (API, CLI) can map them to statuses.

USAGE:
    if errors.Is(err, generic.ErrSchemaMissing) {
        // upgrade the schema and retry once
    }

SEE ALSO:
  - store.go: RuleStorage contract returning these errors
  - rules/store.go: Fallback handling
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSchemaMissing is returned by a RuleStorage when the backing table or
	// keyspace has not been created yet. Callers upgrade the schema and retry.
	ErrSchemaMissing = errors.New("rule storage schema missing")

	// ErrMergeTooDeep is returned when a configuration tree nests deeper than
	// the merge depth bound.
	ErrMergeTooDeep = errors.New("configuration tree exceeds merge depth")

	// ErrUnknownDomain is returned for a rule domain identifier that is not
	// one of the four known domains.
	ErrUnknownDomain = errors.New("unknown rule domain")

	// ErrInvalidDate is returned when a date string is not a calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidPeriod is returned when a period is malformed (month outside
	// 1-12, or end before start).
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidPriorityModel is returned when the scheduling order is not a
	// permutation of the known rules or a weight is negative.
	ErrInvalidPriorityModel = errors.New("invalid priority model")

	// ErrStaffNotFound is returned when a referenced staff member doesn't exist.
	ErrStaffNotFound = errors.New("staff not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StorageError records which storage operation failed for which domain.
type StorageError struct {
	Op     string // "load", "save", "upgrade"
	Domain DomainID
	Err    error
}

func (e *StorageError) Error() string {
	if e.Domain == "" {
		return fmt.Sprintf("rule storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("rule storage %s %s: %v", e.Op, e.Domain, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// PriorityModelError explains why a priority model was rejected.
type PriorityModelError struct {
	Reason string
}

func (e *PriorityModelError) Error() string {
	return "invalid priority model: " + e.Reason
}

func (e *PriorityModelError) Unwrap() error {
	return ErrInvalidPriorityModel
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrUnknownDomain) ||
		errors.Is(err, ErrInvalidPriorityModel) ||
		errors.Is(err, ErrMergeTooDeep)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStaffNotFound)
}
