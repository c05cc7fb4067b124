/*
registry.go - Well-known balance key registration and lookup

PURPOSE:
  Provides a registry for domain packages to declare their fixed balance
  keys. Anything not registered is treated as a custom key. This lets the
  generic engine resolve a raw string (from JSON, a form, a manual
  adjustment target) into a typed BalanceKey without knowing the domain.

HOW IT WORKS:
  1. Domain packages describe their keys with a KeyDef
  2. They register them from init()
  3. ResolveKey("hoursBank") returns WellKnown("hoursBank");
     ResolveKey("custom_17") returns Custom("custom_17")

USAGE:
  // In leave/keys.go
  func init() {
      generic.RegisterWellKnown(generic.KeyDef{ID: "ordinaria", Unit: generic.UnitDays})
  }

SEE ALSO:
  - balance.go: BalanceKey definition
  - leave/keys.go: The leave domain's fixed keys
*/
package generic

import (
	"sort"
	"sync"
)

// =============================================================================
// KEY REGISTRY
// =============================================================================

// KeyDef describes a well-known balance.
type KeyDef struct {
	ID    string
	Label string
	Unit  Unit
	// Order is the display position; lower first.
	Order int
}

func (d KeyDef) Key() BalanceKey { return WellKnown(d.ID) }

var (
	keyRegistry = make(map[string]KeyDef)
	registryMu  sync.RWMutex
)

// RegisterWellKnown adds a key definition to the global registry.
// Call this from domain package init() functions.
func RegisterWellKnown(def KeyDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	keyRegistry[def.ID] = def
}

// LookupWellKnown finds a registered key definition by id.
func LookupWellKnown(id string) (KeyDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := keyRegistry[id]
	return def, ok
}

// IsWellKnown reports whether id names a registered key.
func IsWellKnown(id string) bool {
	_, ok := LookupWellKnown(id)
	return ok
}

// ListWellKnown returns all registered definitions in display order.
func ListWellKnown() []KeyDef {
	registryMu.RLock()
	defer registryMu.RUnlock()
	defs := make([]KeyDef, 0, len(keyRegistry))
	for _, d := range keyRegistry {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Order != defs[j].Order {
			return defs[i].Order < defs[j].Order
		}
		return defs[i].ID < defs[j].ID
	})
	return defs
}

// ResolveKey types a raw id: registered ids are well-known, everything else
// is custom.
func ResolveKey(id string) BalanceKey {
	if IsWellKnown(id) {
		return WellKnown(id)
	}
	return Custom(id)
}
