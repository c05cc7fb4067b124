package leave

import (
	"fmt"
	"strings"

	"github.com/marinalog/ledger/generic"
)

// =============================================================================
// CUSTOM FIELD REGISTRY
// =============================================================================

// Registry is the ordered set of custom fields. Like Balances it is a value:
// With and Without return copies.
type Registry struct {
	fields []CustomField
}

func NewRegistry(fields []CustomField) Registry {
	r := Registry{}
	for _, f := range fields {
		if _, ok := r.Field(f.ID); ok {
			continue
		}
		r.fields = append(r.fields, f)
	}
	return r
}

// Field implements FieldLookup.
func (r Registry) Field(id string) (CustomField, bool) {
	for _, f := range r.fields {
		if f.ID == id {
			return f, true
		}
	}
	return CustomField{}, false
}

func (r Registry) Len() int { return len(r.fields) }

// List returns the fields in registration order.
func (r Registry) List() []CustomField {
	out := make([]CustomField, len(r.fields))
	copy(out, r.fields)
	return out
}

func (r Registry) with(f CustomField) Registry {
	return Registry{fields: append(r.List(), f)}
}

func (r Registry) without(id string) Registry {
	out := Registry{fields: make([]CustomField, 0, len(r.fields))}
	for _, f := range r.fields {
		if f.ID != id {
			out.fields = append(out.fields, f)
		}
	}
	return out
}

var _ FieldLookup = Registry{}

// ValidateField normalises a field for registration: trims the name,
// defaults unit, effect and color, and rejects what cannot be stored.
func ValidateField(f CustomField) (CustomField, error) {
	f.ID = strings.TrimSpace(f.ID)
	f.Name = strings.TrimSpace(f.Name)
	if f.ID == "" {
		return f, &generic.InvalidInputError{Field: "id", Reason: "required"}
	}
	if f.Name == "" {
		return f, &generic.InvalidInputError{Field: "name", Reason: "required"}
	}
	unit, err := ParseFieldUnit(string(f.Unit))
	if err != nil {
		return f, err
	}
	f.Unit = unit
	if f.BalanceEffect == "" {
		f.BalanceEffect = EffectSubtract
	}
	if !f.BalanceEffect.Valid() {
		return f, &generic.InvalidInputError{Field: "balanceEffect", Reason: fmt.Sprintf("unknown effect %q", f.BalanceEffect)}
	}
	if f.Color == "" {
		f.Color = DefaultFieldColor
	}
	return f, nil
}
