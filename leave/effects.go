/*
effects.go - The canonical effect table: entry type to balance deltas

PURPOSE:
  One table says what every entry type does to the balances. The engine
  applies the deltas when an entry is recorded and applies their inverse
  when it is deleted. There is no second, hand-written reversal table, so
  apply-then-delete is exactly a no-op.

TABLE:
  ordinaria       ordinaria      -q
  legge937        legge937       -q
  malattia        malattia       -q
  guardia         hoursBank      +q,  moneyBank +money
  straordinario   hoursBank      +q,  recuperoRiposo +bonus (rest days only)
  recupero        hoursBank      -q
  permesso        hoursBank      -q
  rettifica       <target>       +q   (q already signed)
  custom          <field>        +q add, -q subtract, nothing for none

ORPHANS:
  A custom entry whose field is gone, or an adjustment whose custom target
  key no longer exists, resolves to an empty effect. Reversing it changes
  nothing and does not bring the key back.

SEE ALSO:
  - rules.go: Where q, money and the bonus flag come from
  - engine.go: Applies and reverses these effects
*/
package leave

import (
	"github.com/marinalog/ledger/generic"
	"github.com/shopspring/decimal"
)

// FieldLookup resolves registered custom fields.
type FieldLookup interface {
	Field(id string) (CustomField, bool)
}

type effectFunc func(e Entry, env effectEnv) generic.Effect

type effectEnv struct {
	fields   FieldLookup
	balances generic.Balances
}

// restBonusDays is credited to recuperoRiposo by overtime on a rest day.
// It is fixed so that reversal never depends on the loaded rule set.
var restBonusDays = decimal.NewFromInt(1)

var effectTable = map[EntryType]effectFunc{
	TypeOrdinaria: consume(KeyOrdinaria),
	TypeLegge937:  consume(KeyLegge937),
	TypeMalattia:  consume(KeyMalattia),
	TypeGuardia: func(e Entry, _ effectEnv) generic.Effect {
		return generic.Effect{
			{Key: generic.WellKnown(KeyHoursBank), Value: e.Quantity},
			{Key: generic.WellKnown(KeyMoneyBank), Value: e.MoneyAccrued},
		}
	},
	TypeStraordinario: func(e Entry, _ effectEnv) generic.Effect {
		eff := generic.Effect{{Key: generic.WellKnown(KeyHoursBank), Value: e.Quantity}}
		if e.IsWeekendBonus {
			eff = append(eff, generic.Delta{Key: generic.WellKnown(KeyRecuperoRiposo), Value: restBonusDays})
		}
		return eff
	},
	TypeRecupero: consume(KeyHoursBank),
	TypePermesso: consume(KeyHoursBank),
	TypeRettifica: func(e Entry, env effectEnv) generic.Effect {
		key, ok := resolveTarget(e.TargetBalance, env.balances)
		if !ok {
			return nil
		}
		return generic.Effect{{Key: key, Value: e.Quantity}}
	},
	TypeCustom: func(e Entry, env effectEnv) generic.Effect {
		field, ok := env.fields.Field(e.CustomFieldID)
		if !ok {
			return nil
		}
		switch field.BalanceEffect {
		case EffectAdd:
			return generic.Effect{{Key: field.Key(), Value: e.Quantity}}
		case EffectSubtract:
			return generic.Effect{{Key: field.Key(), Value: e.Quantity.Neg()}}
		}
		return nil
	},
}

func consume(id string) effectFunc {
	return func(e Entry, _ effectEnv) generic.Effect {
		return generic.Effect{{Key: generic.WellKnown(id), Value: e.Quantity.Neg()}}
	}
}

// resolveTarget types a manual-adjustment target. Well-known keys always
// resolve; anything else must currently exist in the balance map.
func resolveTarget(id string, balances generic.Balances) (generic.BalanceKey, bool) {
	key := generic.ResolveKey(id)
	if !key.IsCustom() || balances.Has(id) {
		return key, true
	}
	return key, false
}

// EffectOf returns the deltas recording e produces against the given
// fields and balances. Unknown types produce no effect.
func EffectOf(e Entry, fields FieldLookup, balances generic.Balances) generic.Effect {
	fn, ok := effectTable[e.Type]
	if !ok {
		return nil
	}
	return fn(e, effectEnv{fields: fields, balances: balances})
}
