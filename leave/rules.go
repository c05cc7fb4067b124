/*
rules.go - Rule evaluator: raw input to (quantity, money, weekend bonus)

PURPOSE:
  Turns the form data for one entry into the numbers the ledger records.
  This is a pure function of the input and the RuleSet; it never reads
  balances and never mutates anything.

RULE TABLE (default RuleSet):
  ordinaria / legge937 / malattia   1 day
  guardia                           24h + 90 on Sat/Sun, 8h + 30 otherwise
  straordinario                     caller hours; Sunday sets the rest bonus
  recupero                          8h Mon-Thu, 4h Friday, 0 at the weekend
  permesso                          max(0, end - start) in hours
  rettifica                         +qty for add, -qty for subtract
  custom                            1 unless the caller supplies a quantity

DAY CLASSIFICATION:
  Only the entry date decides which row applies. The day tables live on
  RuleSet as named values so they can be loaded from a rules file and
  tested directly.

SEE ALSO:
  - effects.go: What the evaluated quantities do to balances
  - factory/rules.go: Loading a RuleSet from TOML
*/
package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/marinalog/ledger/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// RULE SET
// =============================================================================

type RuleSet struct {
	// GuardWeekendDays pay the weekend guard rate.
	GuardWeekendDays  []time.Weekday
	GuardWeekendHours decimal.Decimal
	GuardWeekendPay   decimal.Decimal
	GuardWeekdayHours decimal.Decimal
	GuardWeekdayPay   decimal.Decimal

	// RestRecoveryDays grant one recuperoRiposo day on overtime.
	RestRecoveryDays []time.Weekday

	// RecoveryHours is the hours debited by a recupero day. Missing days
	// debit nothing.
	RecoveryHours map[time.Weekday]decimal.Decimal

	LeaveDayQuantity      decimal.Decimal
	CustomDefaultQuantity decimal.Decimal

	// RecoveryDeadlineYears is how many years after the accrual year the
	// compensatory time stays usable (until 31 December).
	RecoveryDeadlineYears int
}

func DefaultRuleSet() RuleSet {
	eight := decimal.NewFromInt(8)
	return RuleSet{
		GuardWeekendDays:  []time.Weekday{time.Saturday, time.Sunday},
		GuardWeekendHours: decimal.NewFromInt(24),
		GuardWeekendPay:   decimal.NewFromInt(90),
		GuardWeekdayHours: eight,
		GuardWeekdayPay:   decimal.NewFromInt(30),

		RestRecoveryDays: []time.Weekday{time.Sunday},

		RecoveryHours: map[time.Weekday]decimal.Decimal{
			time.Monday:    eight,
			time.Tuesday:   eight,
			time.Wednesday: eight,
			time.Thursday:  eight,
			time.Friday:    decimal.NewFromInt(4),
		},

		LeaveDayQuantity:      decimal.NewFromInt(1),
		CustomDefaultQuantity: decimal.NewFromInt(1),
		RecoveryDeadlineYears: 1,
	}
}

// IsGuardWeekend reports whether guard duty on date pays the weekend rate.
func (r RuleSet) IsGuardWeekend(date generic.TimePoint) bool {
	return date.IsOneOf(r.GuardWeekendDays)
}

// IsRestRecoveryDay reports whether overtime on date earns a rest day.
func (r RuleSet) IsRestRecoveryDay(date generic.TimePoint) bool {
	return date.IsOneOf(r.RestRecoveryDays)
}

// RecoveryHoursFor returns the hours a recupero on date consumes.
func (r RuleSet) RecoveryHoursFor(date generic.TimePoint) decimal.Decimal {
	if h, ok := r.RecoveryHours[date.Weekday()]; ok {
		return h
	}
	return decimal.Zero
}

// RecoveryDeadline is the last day compensatory time accrued on date can
// be used.
func (r RuleSet) RecoveryDeadline(date generic.TimePoint) generic.TimePoint {
	return generic.EndOfYear(date.Year() + r.RecoveryDeadlineYears)
}

// =============================================================================
// EVALUATE
// =============================================================================

// Evaluate applies the rule table to in. It returns an *InvalidInputError
// for malformed or out-of-range input.
func (r RuleSet) Evaluate(in Input) (Evaluation, error) {
	if !in.Type.Valid() {
		return Evaluation{}, &generic.InvalidInputError{Field: "type", Reason: fmt.Sprintf("unknown entry type %q", in.Type)}
	}
	date, err := generic.ParseDate(in.Date)
	if err != nil {
		return Evaluation{}, err
	}
	ev := Evaluation{Date: date, Quantity: decimal.Zero, Money: decimal.Zero}

	switch in.Type {
	case TypeOrdinaria, TypeLegge937, TypeMalattia:
		ev.Quantity = r.LeaveDayQuantity

	case TypeGuardia:
		if r.IsGuardWeekend(date) {
			ev.Quantity, ev.Money = r.GuardWeekendHours, r.GuardWeekendPay
		} else {
			ev.Quantity, ev.Money = r.GuardWeekdayHours, r.GuardWeekdayPay
		}

	case TypeStraordinario:
		if !in.OvertimeHours.IsPositive() {
			return Evaluation{}, &generic.InvalidInputError{Field: "overtimeHours", Reason: "must be greater than zero"}
		}
		ev.Quantity = in.OvertimeHours
		ev.IsWeekendBonus = r.IsRestRecoveryDay(date)

	case TypeRecupero:
		ev.Quantity = r.RecoveryHoursFor(date)

	case TypePermesso:
		hours, err := permitHours(in.StartTime, in.EndTime)
		if err != nil {
			return Evaluation{}, err
		}
		ev.Quantity = hours

	case TypeRettifica:
		if strings.TrimSpace(in.TargetBalance) == "" {
			return Evaluation{}, &generic.InvalidInputError{Field: "targetBalance", Reason: "required"}
		}
		if !in.ManualQty.IsPositive() {
			return Evaluation{}, &generic.InvalidInputError{Field: "manualQty", Reason: "must be greater than zero"}
		}
		switch in.ManualOp {
		case OpAdd:
			ev.Quantity = in.ManualQty
		case OpSubtract:
			ev.Quantity = in.ManualQty.Neg()
		default:
			return Evaluation{}, &generic.InvalidInputError{Field: "manualOp", Reason: fmt.Sprintf("unknown operation %q", in.ManualOp)}
		}

	case TypeCustom:
		if strings.TrimSpace(in.CustomFieldID) == "" {
			return Evaluation{}, &generic.InvalidInputError{Field: "customFieldId", Reason: "required"}
		}
		ev.Quantity = r.CustomDefaultQuantity
		if in.Quantity.Valid {
			if !in.Quantity.Decimal.IsPositive() {
				return Evaluation{}, &generic.InvalidInputError{Field: "quantity", Reason: "must be greater than zero"}
			}
			ev.Quantity = in.Quantity.Decimal
		}
	}
	return ev, nil
}

// permitHours is the clamped length of an HH:mm interval in hours.
func permitHours(start, end string) (decimal.Decimal, error) {
	s, err := generic.ParseClock(start)
	if err != nil {
		return decimal.Zero, &generic.InvalidInputError{Field: "startTime", Reason: fmt.Sprintf("%q is not an HH:mm time", start)}
	}
	e, err := generic.ParseClock(end)
	if err != nil {
		return decimal.Zero, &generic.InvalidInputError{Field: "endTime", Reason: fmt.Sprintf("%q is not an HH:mm time", end)}
	}
	minutes := e.Minutes() - s.Minutes()
	if minutes <= 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60)), nil
}
