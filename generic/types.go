/*
Package generic provides the domain-agnostic balance engine primitives.

PURPOSE:
  This package contains the building blocks every ledger in this module is
  made of: decimal amounts, typed balance keys, an immutable balance map, the
  signed deltas an entry produces, and an ordered history of records.
  Nothing here knows about leave types, guard duty or overtime; the leave
  package supplies those rules and plugs them into these types.

KEY CONCEPTS IN THIS FILE (types.go):
  - Unit: days, hours or currency

DESIGN PRINCIPLES:
  1. Immutability: Balances and History are values; every change returns a copy
  2. Precision: Uses decimal.Decimal to avoid floating-point drift on round trips
  3. Type Safety: Balance keys are tagged (well-known vs custom), not bare strings
  4. Invertibility: Every effect is a list of deltas that can be negated exactly

USAGE:
  bal := generic.NewBalances(nil).Apply(generic.Effect{
      {Key: generic.WellKnown("hoursBank"), Value: decimal.NewFromInt(8)},
  })

SEE ALSO:
  - balance.go: BalanceKey, Balances, Delta, Effect
  - history.go: Ordered, id-keyed record history
  - registry.go: Well-known balance key registration
*/
package generic

// =============================================================================
// UNITS
// =============================================================================

// Unit is what a balance is counted in.
type Unit string

const (
	UnitDays     Unit = "days"
	UnitHours    Unit = "hours"
	UnitCurrency Unit = "currency"
)

