/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Input errors - Rejected before any mutation (400)
  2. Registry errors - Unknown or duplicate custom fields and balances (404/409)
  3. Integrity errors - Replayed history disagrees with stored balances

USAGE:
    if errors.Is(err, generic.ErrUnknownBalance) {
        var ub *generic.UnknownBalanceError
        errors.As(err, &ub) // ub.Suggestion holds the closest known key
    }

SEE ALSO:
  - leave/rules.go: Produces InvalidInputError
  - leave/engine.go: Produces registry errors
  - leave/invariants.go: Produces DriftError
*/
package generic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned when raw entry input fails sanity checks.
	// Nothing is mutated when it is returned.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownCustomField is returned when a referenced custom field is not
	// registered.
	ErrUnknownCustomField = errors.New("unknown custom field")

	// ErrUnknownBalance is returned when a manual adjustment targets a balance
	// that neither is well-known nor exists in the map.
	ErrUnknownBalance = errors.New("unknown balance")

	// ErrDuplicateCustomField is returned when registering an id twice.
	ErrDuplicateCustomField = errors.New("duplicate custom field")

	// ErrCustomFieldInUse is returned by deregistration when the in-use guard
	// is enabled and active entries still reference the field.
	ErrCustomFieldInUse = errors.New("custom field in use")

	// ErrInconsistentLedger is returned when replaying the history does not
	// reproduce the stored balances.
	ErrInconsistentLedger = errors.New("inconsistent ledger")

	// ErrEntityNotFound is returned when a referenced record doesn't exist.
	ErrEntityNotFound = errors.New("entity not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidInputError names the offending field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// UnknownBalanceError carries the closest known key, if any is near enough.
type UnknownBalanceError struct {
	Key        string
	Suggestion string
}

func (e *UnknownBalanceError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown balance %q (did you mean %q?)", e.Key, e.Suggestion)
	}
	return fmt.Sprintf("unknown balance %q", e.Key)
}

func (e *UnknownBalanceError) Unwrap() error {
	return ErrUnknownBalance
}

// NewUnknownBalanceError picks the candidate with the smallest edit
// distance to key. Candidates further than half the key length are ignored.
func NewUnknownBalanceError(key string, candidates []string) *UnknownBalanceError {
	return &UnknownBalanceError{Key: key, Suggestion: ClosestKey(key, candidates)}
}

// ClosestKey returns the candidate nearest to key, or "" if none is close.
func ClosestKey(key string, candidates []string) string {
	if key == "" {
		return ""
	}
	limit := len(key)/2 + 1
	best, bestDist := "", limit+1
	needle := strings.ToLower(key)
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist > limit {
		return ""
	}
	return best
}

// UnknownCustomFieldError names the missing field.
type UnknownCustomFieldError struct {
	ID string
}

func (e *UnknownCustomFieldError) Error() string {
	return fmt.Sprintf("unknown custom field %q", e.ID)
}

func (e *UnknownCustomFieldError) Unwrap() error {
	return ErrUnknownCustomField
}

// DuplicateCustomFieldError names the conflicting id. WellKnown is set when
// the id collides with a fixed balance rather than another field.
type DuplicateCustomFieldError struct {
	ID        string
	WellKnown bool
}

func (e *DuplicateCustomFieldError) Error() string {
	if e.WellKnown {
		return fmt.Sprintf("custom field id %q collides with a built-in balance", e.ID)
	}
	return fmt.Sprintf("custom field %q already registered", e.ID)
}

func (e *DuplicateCustomFieldError) Unwrap() error {
	return ErrDuplicateCustomField
}

// CustomFieldInUseError lists the entries still referencing a field.
type CustomFieldInUseError struct {
	ID       string
	EntryIDs []string
}

func (e *CustomFieldInUseError) Error() string {
	return fmt.Sprintf("custom field %q is referenced by %d active entries", e.ID, len(e.EntryIDs))
}

func (e *CustomFieldInUseError) Unwrap() error {
	return ErrCustomFieldInUse
}

// DriftError reports the balances that replay could not reproduce.
type DriftError struct {
	Keys     []string
	Expected Balances // from replay
	Actual   Balances // stored
}

func (e *DriftError) Error() string {
	parts := make([]string, 0, len(e.Keys))
	for _, k := range e.Keys {
		parts = append(parts, fmt.Sprintf("%s: stored %s, replayed %s", k, e.Actual.Get(k), e.Expected.Get(k)))
	}
	return "ledger drift: " + strings.Join(parts, "; ")
}

func (e *DriftError) Unwrap() error {
	return ErrInconsistentLedger
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnknownBalance)
}

// IsConflict returns true if the request clashes with current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateCustomField) ||
		errors.Is(err, ErrCustomFieldInUse)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownCustomField) ||
		errors.Is(err, ErrEntityNotFound)
}
