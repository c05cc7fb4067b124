/*
balance.go - Typed balance keys and the immutable balance map

PURPOSE:
  A balance is a named running total (days, hours or currency). Some names
  are fixed by the domain (well-known keys), others are created at runtime
  by user-defined categories (custom keys). Balances holds all of them and
  is never mutated in place: Apply, With and Without return a new map.

KEY INSIGHT:
  An entry's effect is a list of deltas. Applying the effect adds every
  delta; reversing it applies Effect.Inverse(). Because both directions go
  through the same list, apply-then-reverse is exactly a no-op.

ABSENT KEYS:
  Reading an absent key yields zero. Older persisted documents may miss
  keys that were added later; they behave as if the key held 0.

EXAMPLE:
  b := NewBalances(map[string]decimal.Decimal{"ordinaria": decimal.NewFromInt(39)})
  eff := Effect{{Key: WellKnown("ordinaria"), Value: decimal.NewFromInt(-1)}}
  after := b.Apply(eff)            // ordinaria = 38
  back := after.Apply(eff.Inverse()) // ordinaria = 39, b unchanged

SEE ALSO:
  - registry.go: which ids are well-known
  - history.go: the ordered record log
*/
package generic

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BALANCE KEY - WellKnown(id) | Custom(id)
// =============================================================================

type KeyKind int

const (
	KeyWellKnown KeyKind = iota
	KeyCustom
)

func (k KeyKind) String() string {
	if k == KeyCustom {
		return "custom"
	}
	return "well-known"
}

// BalanceKey identifies one balance. Two keys with the same ID address the
// same slot of the map regardless of kind; the kind records where the key
// came from and whether it can disappear.
type BalanceKey struct {
	Kind KeyKind
	ID   string
}

func WellKnown(id string) BalanceKey { return BalanceKey{Kind: KeyWellKnown, ID: id} }
func Custom(id string) BalanceKey    { return BalanceKey{Kind: KeyCustom, ID: id} }

func (k BalanceKey) IsCustom() bool { return k.Kind == KeyCustom }
func (k BalanceKey) String() string { return k.ID }

// =============================================================================
// DELTA / EFFECT
// =============================================================================

// Delta is a signed change to one balance.
type Delta struct {
	Key   BalanceKey
	Value decimal.Decimal
}

// Effect is the full set of deltas one record produces.
type Effect []Delta

// Inverse returns the effect with every delta negated.
func (e Effect) Inverse() Effect {
	out := make(Effect, len(e))
	for i, d := range e {
		out[i] = Delta{Key: d.Key, Value: d.Value.Neg()}
	}
	return out
}

// IsEmpty reports whether the effect changes nothing.
func (e Effect) IsEmpty() bool {
	for _, d := range e {
		if !d.Value.IsZero() {
			return false
		}
	}
	return true
}

// Keys returns the distinct keys touched by the effect.
func (e Effect) Keys() []BalanceKey {
	seen := make(map[string]bool, len(e))
	var keys []BalanceKey
	for _, d := range e {
		if seen[d.Key.ID] {
			continue
		}
		seen[d.Key.ID] = true
		keys = append(keys, d.Key)
	}
	return keys
}

// =============================================================================
// BALANCES - Immutable key -> amount map
// =============================================================================

// Balances is a copy-on-write map from balance id to amount.
// The zero value is an empty map and is ready to use.
type Balances struct {
	values map[string]decimal.Decimal
}

// NewBalances copies values into a new Balances.
func NewBalances(values map[string]decimal.Decimal) Balances {
	cp := make(map[string]decimal.Decimal, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Balances{values: cp}
}

// Get returns the amount for id, or zero when absent.
func (b Balances) Get(id string) decimal.Decimal {
	if v, ok := b.values[id]; ok {
		return v
	}
	return decimal.Zero
}

// Has reports whether id is present in the map.
func (b Balances) Has(id string) bool {
	_, ok := b.values[id]
	return ok
}

func (b Balances) Len() int { return len(b.values) }

// With returns a copy with id set to value.
func (b Balances) With(id string, value decimal.Decimal) Balances {
	out := NewBalances(b.values)
	out.values[id] = value
	return out
}

// WithDefault returns a copy with id set to value only if id is absent.
func (b Balances) WithDefault(id string, value decimal.Decimal) Balances {
	if b.Has(id) {
		return b
	}
	return b.With(id, value)
}

// Without returns a copy with id removed.
func (b Balances) Without(id string) Balances {
	if !b.Has(id) {
		return b
	}
	out := NewBalances(b.values)
	delete(out.values, id)
	return out
}

// Apply returns a copy with every delta of eff added.
func (b Balances) Apply(eff Effect) Balances {
	if len(eff) == 0 {
		return b
	}
	out := NewBalances(b.values)
	for _, d := range eff {
		out.values[d.Key.ID] = out.Get(d.Key.ID).Add(d.Value)
	}
	return out
}

// Keys returns the ids present, sorted.
func (b Balances) Keys() []string {
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the underlying values.
func (b Balances) Map() map[string]decimal.Decimal {
	return NewBalances(b.values).values
}

// Equal compares two maps numerically. A key absent on one side equals a
// zero on the other.
func (b Balances) Equal(other Balances) bool {
	return len(b.Diff(other)) == 0
}

// Diff returns the ids whose amounts differ, sorted.
func (b Balances) Diff(other Balances) []string {
	ids := make(map[string]bool)
	for k := range b.values {
		ids[k] = true
	}
	for k := range other.values {
		ids[k] = true
	}
	var diff []string
	for id := range ids {
		if !b.Get(id).Equal(other.Get(id)) {
			diff = append(diff, id)
		}
	}
	sort.Strings(diff)
	return diff
}

func (b Balances) String() string {
	parts := make([]string, 0, len(b.values))
	for _, k := range b.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%s", k, b.values[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (b Balances) MarshalJSON() ([]byte, error) {
	if b.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(b.values)
}

func (b *Balances) UnmarshalJSON(data []byte) error {
	var values map[string]decimal.Decimal
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("decode balances: %w", err)
	}
	*b = NewBalances(values)
	return nil
}
