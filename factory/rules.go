/*
Package factory provides TOML to Go rule set conversion.

PURPOSE:
  Converts a rules file into a leave.RuleSet. The day tables and rates
  (guard duty, rest recovery, recovery hours) are regulatory values that
  change with contracts, so they can be edited without a rebuild.

TOML SCHEMA:
  [guard]
  weekend_days  = ["saturday", "sunday"]
  weekend_hours = 24
  weekend_pay   = 90
  weekday_hours = 8
  weekday_pay   = 30

  [overtime]
  rest_recovery_days = ["sunday"]

  [recovery]
  deadline_years = 1
  [recovery.hours]
  monday = 8
  friday = 4

  [quantities]
  leave_day      = 1
  custom_default = 1

DEFAULTS:
  Every omitted key keeps its leave.DefaultRuleSet value. A [recovery.hours]
  table, when present, replaces the whole default table: days it does not
  list debit nothing.

USAGE:
  rules, err := factory.LoadRuleSet("rules.toml")
  svc, err := leave.NewService(ctx, store, rules)

SEE ALSO:
  - leave/rules.go: RuleSet and the evaluator
  - config/config.go: rules.path points here
*/
package factory

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/marinalog/ledger/generic"
	"github.com/marinalog/ledger/leave"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TOML SCHEMA TYPES
// =============================================================================

// RuleSetTOML is the file representation of a rule set. Pointers tell an
// omitted key from an explicit zero.
type RuleSetTOML struct {
	Guard      GuardTOML      `toml:"guard"`
	Overtime   OvertimeTOML   `toml:"overtime"`
	Recovery   RecoveryTOML   `toml:"recovery"`
	Quantities QuantitiesTOML `toml:"quantities"`
}

type GuardTOML struct {
	WeekendDays  []string `toml:"weekend_days,omitempty"`
	WeekendHours *float64 `toml:"weekend_hours,omitempty"`
	WeekendPay   *float64 `toml:"weekend_pay,omitempty"`
	WeekdayHours *float64 `toml:"weekday_hours,omitempty"`
	WeekdayPay   *float64 `toml:"weekday_pay,omitempty"`
}

type OvertimeTOML struct {
	RestRecoveryDays []string `toml:"rest_recovery_days,omitempty"`
}

type RecoveryTOML struct {
	DeadlineYears *int               `toml:"deadline_years,omitempty"`
	Hours         map[string]float64 `toml:"hours,omitempty"`
}

type QuantitiesTOML struct {
	LeaveDay      *float64 `toml:"leave_day,omitempty"`
	CustomDefault *float64 `toml:"custom_default,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// LoadRuleSet reads a rules file. An empty path yields the default rules.
func LoadRuleSet(path string) (leave.RuleSet, error) {
	if path == "" {
		return leave.DefaultRuleSet(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return leave.RuleSet{}, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRuleSet(string(data))
}

// ParseRuleSet parses TOML into a RuleSet, starting from the defaults.
func ParseRuleSet(tomlStr string) (leave.RuleSet, error) {
	var rt RuleSetTOML
	if _, err := toml.Decode(tomlStr, &rt); err != nil {
		return leave.RuleSet{}, fmt.Errorf("failed to parse rules TOML: %w", err)
	}
	return FromTOML(rt)
}

// FromTOML converts RuleSetTOML to a leave.RuleSet.
func FromTOML(rt RuleSetTOML) (leave.RuleSet, error) {
	rules := leave.DefaultRuleSet()

	if rt.Guard.WeekendDays != nil {
		days, err := parseWeekdays("guard.weekend_days", rt.Guard.WeekendDays)
		if err != nil {
			return leave.RuleSet{}, err
		}
		rules.GuardWeekendDays = days
	}
	if rt.Overtime.RestRecoveryDays != nil {
		days, err := parseWeekdays("overtime.rest_recovery_days", rt.Overtime.RestRecoveryDays)
		if err != nil {
			return leave.RuleSet{}, err
		}
		rules.RestRecoveryDays = days
	}

	amounts := []struct {
		field string
		src   *float64
		dst   *decimal.Decimal
	}{
		{"guard.weekend_hours", rt.Guard.WeekendHours, &rules.GuardWeekendHours},
		{"guard.weekend_pay", rt.Guard.WeekendPay, &rules.GuardWeekendPay},
		{"guard.weekday_hours", rt.Guard.WeekdayHours, &rules.GuardWeekdayHours},
		{"guard.weekday_pay", rt.Guard.WeekdayPay, &rules.GuardWeekdayPay},
		{"quantities.leave_day", rt.Quantities.LeaveDay, &rules.LeaveDayQuantity},
		{"quantities.custom_default", rt.Quantities.CustomDefault, &rules.CustomDefaultQuantity},
	}
	for _, a := range amounts {
		if a.src == nil {
			continue
		}
		v, err := nonNegative(a.field, *a.src)
		if err != nil {
			return leave.RuleSet{}, err
		}
		*a.dst = v
	}

	if rt.Recovery.Hours != nil {
		table := make(map[time.Weekday]decimal.Decimal, len(rt.Recovery.Hours))
		for name, hours := range rt.Recovery.Hours {
			day, err := generic.ParseWeekday(name)
			if err != nil {
				return leave.RuleSet{}, &generic.InvalidInputError{Field: "recovery.hours", Reason: fmt.Sprintf("unknown weekday %q", name)}
			}
			v, err := nonNegative("recovery.hours."+name, hours)
			if err != nil {
				return leave.RuleSet{}, err
			}
			table[day] = v
		}
		rules.RecoveryHours = table
	}
	if rt.Recovery.DeadlineYears != nil {
		if *rt.Recovery.DeadlineYears < 0 {
			return leave.RuleSet{}, &generic.InvalidInputError{Field: "recovery.deadline_years", Reason: "must not be negative"}
		}
		rules.RecoveryDeadlineYears = *rt.Recovery.DeadlineYears
	}

	return rules, nil
}

// ToTOML converts a RuleSet back to its file representation, every key set.
func ToTOML(rules leave.RuleSet) RuleSetTOML {
	f := func(d decimal.Decimal) *float64 {
		v, _ := d.Float64()
		return &v
	}
	years := rules.RecoveryDeadlineYears

	rt := RuleSetTOML{
		Guard: GuardTOML{
			WeekendDays:  weekdayNames(rules.GuardWeekendDays),
			WeekendHours: f(rules.GuardWeekendHours),
			WeekendPay:   f(rules.GuardWeekendPay),
			WeekdayHours: f(rules.GuardWeekdayHours),
			WeekdayPay:   f(rules.GuardWeekdayPay),
		},
		Overtime: OvertimeTOML{RestRecoveryDays: weekdayNames(rules.RestRecoveryDays)},
		Recovery: RecoveryTOML{
			DeadlineYears: &years,
			Hours:         make(map[string]float64, len(rules.RecoveryHours)),
		},
		Quantities: QuantitiesTOML{
			LeaveDay:      f(rules.LeaveDayQuantity),
			CustomDefault: f(rules.CustomDefaultQuantity),
		},
	}
	for day, hours := range rules.RecoveryHours {
		v, _ := hours.Float64()
		rt.Recovery.Hours[strings.ToLower(day.String())] = v
	}
	return rt
}

// EncodeRuleSet renders rules as a TOML document.
func EncodeRuleSet(rules leave.RuleSet) (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(ToTOML(rules)); err != nil {
		return "", fmt.Errorf("encode rules: %w", err)
	}
	return buf.String(), nil
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseWeekdays(field string, names []string) ([]time.Weekday, error) {
	seen := make(map[time.Weekday]bool, len(names))
	days := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		day, err := generic.ParseWeekday(name)
		if err != nil {
			return nil, &generic.InvalidInputError{Field: field, Reason: fmt.Sprintf("unknown weekday %q", name)}
		}
		if seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}
	return days, nil
}

func weekdayNames(days []time.Weekday) []string {
	sorted := append([]time.Weekday(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	names := make([]string, len(sorted))
	for i, d := range sorted {
		names[i] = strings.ToLower(d.String())
	}
	return names
}

func nonNegative(field string, v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, &generic.InvalidInputError{Field: field, Reason: "must be a finite number"}
	}
	if v < 0 {
		return decimal.Zero, &generic.InvalidInputError{Field: field, Reason: "must not be negative"}
	}
	return decimal.NewFromFloat(v), nil
}
