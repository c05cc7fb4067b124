/*
engine.go - The ledger engine: apply, reverse, custom fields, reset

PURPOSE:
  Ledger holds the three pieces of state that must move together: the
  balance map, the history of active entries and the custom field
  registry. Every operation returns a new Ledger; the receiver is never
  modified, so a caller that fails to persist can keep the old value.

FLOW:
  Record:  Input -> RuleSet.Evaluate -> stamp id/timestamp -> Apply
  Apply:   EffectOf(entry) added to balances, entry prepended to history
  Reverse: lookup id -> EffectOf(entry).Inverse() -> remove from history

CRITICAL INVARIANTS:
  1. ROUND-TRIP: Apply(e) then Reverse(e.ID) leaves every balance unchanged
  2. IDEMPOTENT DELETE: Reverse of an unknown id changes nothing
  3. REPLAY: History().Chronological() replayed over the defaults and the
     custom fields' initial balances reproduces Balances()
  4. NO RESURRECTION: reversing an orphaned entry never recreates a key

ENTRY LIFECYCLE:
  Active (in history, counted in balances) -> Deleted (gone, reversed).
  There is no way back; re-recording creates a new id.

SEE ALSO:
  - effects.go: The effect table
  - service.go: Serialisation and persistence around Ledger
  - invariants.go: Replay checker for invariant 3
*/
package leave

import (
	"fmt"

	"github.com/marinalog/ledger/generic"
)

// =============================================================================
// LEDGER
// =============================================================================

type Ledger struct {
	balances generic.Balances
	history  generic.History[Entry]
	fields   Registry
	rules    RuleSet
}

// NewLedger returns a ledger at the default balances with no history.
func NewLedger(rules RuleSet) Ledger {
	return Ledger{
		balances: DefaultBalances(),
		history:  generic.NewHistory[Entry](nil),
		rules:    rules,
	}
}

func (l Ledger) Balances() generic.Balances      { return l.balances }
func (l Ledger) History() generic.History[Entry] { return l.history }
func (l Ledger) Fields() Registry                { return l.fields }
func (l Ledger) Rules() RuleSet                  { return l.rules }
func (l Ledger) Entry(id string) (Entry, bool)   { return l.history.Get(id) }

// Stamp carries the identity the caller assigns to a new entry.
type Stamp struct {
	ID        string
	Timestamp int64 // unix ms
}

// Record evaluates in, stamps it and applies it.
func (l Ledger) Record(in Input, stamp Stamp) (Ledger, Entry, error) {
	entry, err := l.build(in, stamp)
	if err != nil {
		return l, Entry{}, err
	}
	next, err := l.Apply(entry)
	if err != nil {
		return l, Entry{}, err
	}
	return next, entry, nil
}

// build evaluates in into an entry without touching the history.
func (l Ledger) build(in Input, stamp Stamp) (Entry, error) {
	ev, err := l.rules.Evaluate(in)
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{
		ID:             stamp.ID,
		Date:           ev.Date,
		Type:           in.Type,
		Quantity:       ev.Quantity,
		MoneyAccrued:   ev.Money,
		Notes:          in.Notes,
		Timestamp:      stamp.Timestamp,
		IsWeekendBonus: ev.IsWeekendBonus,
	}
	switch in.Type {
	case TypeRettifica:
		entry.TargetBalance = in.TargetBalance
		if _, ok := resolveTarget(in.TargetBalance, l.balances); !ok {
			return Entry{}, generic.NewUnknownBalanceError(in.TargetBalance, l.balances.Keys())
		}
	case TypeCustom:
		entry.CustomFieldID = in.CustomFieldID
	case TypePermesso:
		entry.StartTime, entry.EndTime = in.StartTime, in.EndTime
	}
	return entry, nil
}

// Apply adds an already evaluated entry. It rejects a duplicate id and a
// manual adjustment whose target does not exist. A custom entry whose field
// is not registered is recorded with no effect.
func (l Ledger) Apply(e Entry) (Ledger, error) {
	if e.ID == "" {
		return l, &generic.InvalidInputError{Field: "id", Reason: "required"}
	}
	if l.history.Contains(e.ID) {
		return l, &generic.InvalidInputError{Field: "id", Reason: fmt.Sprintf("entry %q already recorded", e.ID)}
	}
	if e.Type == TypeRettifica {
		if _, ok := resolveTarget(e.TargetBalance, l.balances); !ok {
			return l, generic.NewUnknownBalanceError(e.TargetBalance, l.balances.Keys())
		}
	}

	eff := EffectOf(e, l.fields, l.balances)
	history, _ := l.history.Prepend(e)

	next := l
	next.balances = l.balances.Apply(eff)
	next.history = history
	return next, nil
}

// Reverse deletes the entry with id and subtracts its effect. found is
// false, and the ledger unchanged, when no such entry is active.
func (l Ledger) Reverse(id string) (next Ledger, removed Entry, found bool) {
	entry, ok := l.history.Get(id)
	if !ok {
		return l, Entry{}, false
	}
	eff := EffectOf(entry, l.fields, l.balances)
	history, _, _ := l.history.Remove(id)

	next = l
	next.balances = l.balances.Apply(eff.Inverse())
	next.history = history
	return next, entry, true
}

// =============================================================================
// CUSTOM FIELDS
// =============================================================================

// RegisterCustomField adds f and creates its balance at the initial value.
func (l Ledger) RegisterCustomField(f CustomField) (Ledger, error) {
	f, err := ValidateField(f)
	if err != nil {
		return l, err
	}
	if generic.IsWellKnown(f.ID) {
		return l, &generic.DuplicateCustomFieldError{ID: f.ID, WellKnown: true}
	}
	if _, ok := l.fields.Field(f.ID); ok {
		return l, &generic.DuplicateCustomFieldError{ID: f.ID}
	}
	// Entries orphaned by an earlier field with this id must stay orphaned.
	if refs := l.referencing(f.ID); len(refs) > 0 {
		return l, &generic.DuplicateCustomFieldError{ID: f.ID}
	}

	next := l
	next.fields = l.fields.with(f)
	next.balances = l.balances.With(f.ID, f.Initial())
	return next, nil
}

// DeregisterCustomField removes the field and its balance. History is
// untouched; entries referencing the field become orphaned. With
// blockInUse set, the call fails while active entries reference it.
func (l Ledger) DeregisterCustomField(id string, blockInUse bool) (Ledger, error) {
	if _, ok := l.fields.Field(id); !ok {
		return l, &generic.UnknownCustomFieldError{ID: id}
	}
	if blockInUse {
		if refs := l.referencing(id); len(refs) > 0 {
			return l, &generic.CustomFieldInUseError{ID: id, EntryIDs: refs}
		}
	}

	next := l
	next.fields = l.fields.without(id)
	next.balances = l.balances.Without(id)
	return next, nil
}

// referencing lists active entries that point at balance id, newest first.
func (l Ledger) referencing(id string) []string {
	var refs []string
	for _, e := range l.history.List() {
		if (e.Type == TypeCustom && e.CustomFieldID == id) ||
			(e.Type == TypeRettifica && e.TargetBalance == id) {
			refs = append(refs, e.ID)
		}
	}
	return refs
}

// Reset returns a ledger at the defaults with no history and no fields.
// The rule set is kept.
func (l Ledger) Reset() Ledger {
	return NewLedger(l.rules)
}
