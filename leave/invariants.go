/*
invariants.go - Replay checker for the balance/history invariant

PURPOSE:
  The balances are maintained incrementally, so nothing recomputes them
  from scratch during normal operation. Replay does: it starts from the
  default balances plus every registered custom field's initial balance,
  applies the active history oldest-first through the same effect table,
  and compares the result with the stored map.

WHEN DRIFT IS EXPECTED:
  Documents edited by hand, or written by versions that reversed custom
  entries against a deleted key, can legitimately disagree. The checker
  reports; it never repairs.

SEE ALSO:
  - engine.go: The incremental path being checked
  - api/handlers.go: GET /api/consistency
  - cmd/marinalog: marinalog check
*/
package leave

import (
	"github.com/marinalog/ledger/generic"
)

// Replay recomputes the balances a document's history implies.
func Replay(d Document) generic.Balances {
	d = d.Normalize()
	fields := NewRegistry(d.CustomFields)

	balances := DefaultBalances()
	for _, f := range fields.List() {
		balances = balances.With(f.ID, f.Initial())
	}
	history := generic.NewHistory(d.History)
	for _, e := range history.Chronological() {
		balances = balances.Apply(EffectOf(e, fields, balances))
	}
	return balances
}

// CheckConsistency returns a *DriftError when replaying the history does
// not reproduce the stored balances.
func CheckConsistency(d Document) error {
	d = d.Normalize()
	replayed := Replay(d)
	if diff := replayed.Diff(d.Balances); len(diff) > 0 {
		return &generic.DriftError{Keys: diff, Expected: replayed, Actual: d.Balances}
	}
	return nil
}
