package leave

import (
	"time"

	"github.com/marinalog/ledger/generic"
	"github.com/shopspring/decimal"
)

// Preview is what an entry would do if recorded now.
type Preview struct {
	Evaluation
	Type             EntryType                  `json:"type"`
	IsSaturday       bool                       `json:"isSaturday"`
	IsSunday         bool                       `json:"isSunday"`
	RecoveryDeadline *generic.TimePoint         `json:"recoveryDeadline,omitempty"`
	Effect           map[string]decimal.Decimal `json:"effect"`
}

// Preview evaluates in against the current state without recording it.
// It fails exactly when Record would for a fresh id.
func (l Ledger) Preview(in Input) (Preview, error) {
	entry, err := l.build(in, Stamp{})
	if err != nil {
		return Preview{}, err
	}

	p := Preview{
		Evaluation: Evaluation{
			Date:           entry.Date,
			Quantity:       entry.Quantity,
			Money:          entry.MoneyAccrued,
			IsWeekendBonus: entry.IsWeekendBonus,
		},
		Type:       entry.Type,
		IsSaturday: entry.Date.Weekday() == time.Saturday,
		IsSunday:   entry.Date.Weekday() == time.Sunday,
		Effect:     make(map[string]decimal.Decimal),
	}
	if entry.Type.IsAccrual() {
		deadline := l.rules.RecoveryDeadline(entry.Date)
		p.RecoveryDeadline = &deadline
	}
	for _, d := range EffectOf(entry, l.fields, l.balances) {
		p.Effect[d.Key.ID] = p.Effect[d.Key.ID].Add(d.Value)
	}
	return p, nil
}
