package leave

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marinalog/ledger/generic"
	"github.com/shopspring/decimal"
)

// Persisted documents carry plain JSON numbers for every amount.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// =============================================================================
// ENTRY TYPE
// =============================================================================

// EntryType is the wire identifier of an entry kind.
type EntryType string

const (
	TypeOrdinaria     EntryType = "ordinaria"     // ordinary leave day
	TypeLegge937      EntryType = "legge937"      // special-law leave day
	TypeMalattia      EntryType = "malattia"      // sick day
	TypeGuardia       EntryType = "guardia"       // guard duty shift
	TypeStraordinario EntryType = "straordinario" // overtime
	TypeRecupero      EntryType = "recupero"      // compensatory rest taken
	TypePermesso      EntryType = "permesso"      // hourly permit
	TypeRettifica     EntryType = "rettifica"     // manual adjustment
	TypeCustom        EntryType = "custom"        // user-defined category
)

var entryTypes = []EntryType{
	TypeOrdinaria, TypeLegge937, TypeMalattia, TypeGuardia, TypeStraordinario,
	TypeRecupero, TypePermesso, TypeRettifica, TypeCustom,
}

// EntryTypes lists every known entry type.
func EntryTypes() []EntryType {
	out := make([]EntryType, len(entryTypes))
	copy(out, entryTypes)
	return out
}

func (t EntryType) Valid() bool {
	for _, et := range entryTypes {
		if et == t {
			return true
		}
	}
	return false
}

// IsAccrual reports whether the type credits compensatory hours or rest.
func (t EntryType) IsAccrual() bool {
	return t == TypeGuardia || t == TypeStraordinario
}

// =============================================================================
// ENTRY - An immutable ledger record
// =============================================================================

// Entry is one recorded event. It is never edited; deleting it reverses
// its effect.
type Entry struct {
	ID             string            `json:"id"`
	Date           generic.TimePoint `json:"date"`
	Type           EntryType         `json:"type"`
	Quantity       decimal.Decimal   `json:"quantity"`
	MoneyAccrued   decimal.Decimal   `json:"moneyAccrued"`
	Notes          string            `json:"notes"`
	Timestamp      int64             `json:"timestamp"` // unix ms
	TargetBalance  string            `json:"targetBalance,omitempty"`
	CustomFieldID  string            `json:"customFieldId,omitempty"`
	StartTime      string            `json:"startTime,omitempty"`
	EndTime        string            `json:"endTime,omitempty"`
	IsWeekendBonus bool              `json:"isWeekendBonus,omitempty"`
}

func (e Entry) RecordID() string { return e.ID }

var _ generic.Record = Entry{}

// =============================================================================
// CUSTOM FIELD
// =============================================================================

// FieldUnit is the unit a custom balance is counted in.
type FieldUnit string

const (
	FieldDays  FieldUnit = "days"
	FieldHours FieldUnit = "hours"
)

// ParseFieldUnit accepts the current names and the legacy Italian ones.
func ParseFieldUnit(s string) (FieldUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "days", "giorni", "":
		return FieldDays, nil
	case "hours", "ore":
		return FieldHours, nil
	}
	return "", &generic.InvalidInputError{Field: "unit", Reason: fmt.Sprintf("unknown unit %q", s)}
}

func (u *FieldUnit) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode unit: %w", err)
	}
	parsed, err := ParseFieldUnit(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func (u FieldUnit) Unit() generic.Unit {
	if u == FieldHours {
		return generic.UnitHours
	}
	return generic.UnitDays
}

// BalanceEffect is the direction a custom entry moves its balance.
type BalanceEffect string

const (
	EffectAdd      BalanceEffect = "add"
	EffectSubtract BalanceEffect = "subtract"
	EffectNone     BalanceEffect = "none"
)

func (b BalanceEffect) Valid() bool {
	return b == EffectAdd || b == EffectSubtract || b == EffectNone
}

const DefaultFieldColor = "#10b981"

// CustomField is a user-defined category with its own balance.
type CustomField struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Unit           FieldUnit           `json:"unit"`
	BalanceEffect  BalanceEffect       `json:"balanceEffect"`
	InitialBalance decimal.NullDecimal `json:"initialBalance"`
	Color          string              `json:"color"`
}

// Initial returns the starting balance, 0 when unset.
func (f CustomField) Initial() decimal.Decimal {
	if f.InitialBalance.Valid {
		return f.InitialBalance.Decimal
	}
	return decimal.Zero
}

func (f CustomField) Key() generic.BalanceKey { return generic.Custom(f.ID) }

// =============================================================================
// USER PROFILE
// =============================================================================

type User struct {
	Name      string `json:"name"`
	Rank      string `json:"rank"`
	AvatarURL string `json:"avatarUrl"`
}

func DefaultUser() User {
	return User{
		Name:      "Mario Rossi",
		Rank:      "Capo di 1ª Classe",
		AvatarURL: "https://picsum.photos/200",
	}
}

// =============================================================================
// INPUT / EVALUATION
// =============================================================================

// ManualOp is the direction of a manual adjustment.
type ManualOp string

const (
	OpAdd      ManualOp = "add"
	OpSubtract ManualOp = "subtract"
)

// Input is the raw form data for a new entry. Only the fields relevant to
// Type are read.
type Input struct {
	Type          EntryType           `json:"type"`
	Date          string              `json:"date"`
	StartTime     string              `json:"startTime,omitempty"`
	EndTime       string              `json:"endTime,omitempty"`
	OvertimeHours decimal.Decimal     `json:"overtimeHours,omitempty"`
	ManualOp      ManualOp            `json:"manualOp,omitempty"`
	ManualQty     decimal.Decimal     `json:"manualQty,omitempty"`
	TargetBalance string              `json:"targetBalance,omitempty"`
	CustomFieldID string              `json:"customFieldId,omitempty"`
	Quantity      decimal.NullDecimal `json:"quantity,omitempty"`
	Notes         string              `json:"notes,omitempty"`
}

// Evaluation is what the rule evaluator derives from an Input.
type Evaluation struct {
	Date           generic.TimePoint `json:"date"`
	Quantity       decimal.Decimal   `json:"quantity"`
	Money          decimal.Decimal   `json:"moneyAccrued"`
	IsWeekendBonus bool              `json:"isWeekendBonus"`
}
