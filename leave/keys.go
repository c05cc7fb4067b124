// Package leave implements the leave and overtime ledger for military
// personnel on top of the generic balance engine: entry types, the rule
// evaluator, the canonical effect table and the service that persists it.
package leave

import (
	"github.com/marinalog/ledger/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// WELL-KNOWN BALANCES
// =============================================================================

const (
	KeyOrdinaria      = "ordinaria"
	KeyLegge937       = "legge937"
	KeyMalattia       = "malattia"
	KeyHoursBank      = "hoursBank"
	KeyMoneyBank      = "moneyBank"
	KeyRecuperoRiposo = "recuperoRiposo"
)

var wellKnownKeys = []generic.KeyDef{
	{ID: KeyOrdinaria, Label: "Licenza ordinaria", Unit: generic.UnitDays, Order: 1},
	{ID: KeyLegge937, Label: "Legge 937/77", Unit: generic.UnitDays, Order: 2},
	{ID: KeyMalattia, Label: "Malattia", Unit: generic.UnitDays, Order: 3},
	{ID: KeyHoursBank, Label: "Banca ore", Unit: generic.UnitHours, Order: 4},
	{ID: KeyMoneyBank, Label: "Indennità", Unit: generic.UnitCurrency, Order: 5},
	{ID: KeyRecuperoRiposo, Label: "Recupero riposo", Unit: generic.UnitDays, Order: 6},
}

// Register all leave balances with the generic registry
func init() {
	for _, def := range wellKnownKeys {
		generic.RegisterWellKnown(def)
	}
}

// DefaultBalances is the state after Reset and for a fresh document.
func DefaultBalances() generic.Balances {
	return generic.NewBalances(map[string]decimal.Decimal{
		KeyOrdinaria:      decimal.NewFromInt(39),
		KeyLegge937:       decimal.NewFromInt(4),
		KeyMalattia:       decimal.NewFromInt(45),
		KeyHoursBank:      decimal.Zero,
		KeyMoneyBank:      decimal.Zero,
		KeyRecuperoRiposo: decimal.Zero,
	})
}

// WellKnownIDs lists the fixed balance ids in display order.
func WellKnownIDs() []string {
	out := make([]string, len(wellKnownKeys))
	for i, def := range wellKnownKeys {
		out[i] = def.ID
	}
	return out
}
