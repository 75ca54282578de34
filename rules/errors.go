package rules

import (
	"errors"
	"fmt"

	"github.com/warp/roster-engine/generic"
)

// ErrInvalidRules is wrapped by every ValidationError.
var ErrInvalidRules = errors.New("invalid rules")

// ErrUnknownFunction is returned for a function id outside the taxonomy.
var ErrUnknownFunction = errors.New("unknown function")

// ValidationError names the field of a rule tree that broke an invariant.
type ValidationError struct {
	Domain generic.DomainID
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s rules: %s %s", e.Domain, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRules
}
