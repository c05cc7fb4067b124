/*
Package worklog is the maintenance journal: what work was done on which
boat, when, and for how long.

PURPOSE:
  Journal entries are informational. Their hours never reach the leave
  balances; overtime has to be recorded separately as a ledger entry.

OPERATIONS:
  Add     validates and stamps a new entry
  Update  replaces an entry's fields, keeping its id
  Delete  removes an entry (unknown ids are a no-op)
  Filter  boat substring, work type, inclusive date range; newest date first

EXAMPLE:
  j := worklog.NewJournal(nil)
  j, e, err := j.Add(worklog.Input{Date: "2025-03-10", BoatName: "CP 301",
      WorkType: worklog.Maintenance, Description: "Cambio filtri", Hours: dec(3)}, stamp)
  logs := j.Filter(worklog.Filter{Boat: "cp"})
*/
package worklog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/marinalog/ledger/generic"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TYPES
// =============================================================================

type WorkType string

const (
	Maintenance WorkType = "Manutenzione"
	Cleaning    WorkType = "Pulizia"
	Repair      WorkType = "Riparazione"
	Inspection  WorkType = "Ispezione"
	Other       WorkType = "Altro"
)

var workTypes = []WorkType{Maintenance, Cleaning, Repair, Inspection, Other}

func WorkTypes() []WorkType {
	out := make([]WorkType, len(workTypes))
	copy(out, workTypes)
	return out
}

func (w WorkType) Valid() bool {
	for _, t := range workTypes {
		if t == w {
			return true
		}
	}
	return false
}

type Entry struct {
	ID          string            `json:"id"`
	Date        generic.TimePoint `json:"date"`
	BoatName    string            `json:"boatName"`
	WorkType    WorkType          `json:"workType"`
	Description string            `json:"description"`
	Hours       decimal.Decimal   `json:"hours"`
	Notes       string            `json:"notes,omitempty"`
	Timestamp   int64             `json:"timestamp"` // unix ms, last modification
}

func (e Entry) RecordID() string { return e.ID }

// Input is the form data for Add and Update.
type Input struct {
	Date        string          `json:"date"`
	BoatName    string          `json:"boatName"`
	WorkType    WorkType        `json:"workType"`
	Description string          `json:"description"`
	Hours       decimal.Decimal `json:"hours"`
	Notes       string          `json:"notes,omitempty"`
}

// Stamp is the identity assigned by the caller.
type Stamp struct {
	ID        string
	Timestamp int64
}

// Filter selects journal entries. Empty fields match everything.
type Filter struct {
	Boat     string
	WorkType WorkType
	From     string // YYYY-MM-DD, inclusive
	To       string // YYYY-MM-DD, inclusive
}

// =============================================================================
// JOURNAL
// =============================================================================

// Journal is an immutable collection of entries.
type Journal struct {
	entries generic.History[Entry]
}

func NewJournal(entries []Entry) Journal {
	return Journal{entries: generic.NewHistory(entries)}
}

func (j Journal) Len() int { return j.entries.Len() }

func (j Journal) Get(id string) (Entry, bool) { return j.entries.Get(id) }

// List returns entries in insertion order, newest first.
func (j Journal) List() []Entry { return j.entries.List() }

func (j Journal) Add(in Input, stamp Stamp) (Journal, Entry, error) {
	e, err := build(in, stamp)
	if err != nil {
		return j, Entry{}, err
	}
	next, ok := j.entries.Prepend(e)
	if !ok {
		return j, Entry{}, &generic.InvalidInputError{Field: "id", Reason: fmt.Sprintf("work log %q already exists", e.ID)}
	}
	return Journal{entries: next}, e, nil
}

// Update replaces the entry with stamp.ID, keeping its position.
func (j Journal) Update(in Input, stamp Stamp) (Journal, Entry, error) {
	if !j.entries.Contains(stamp.ID) {
		return j, Entry{}, fmt.Errorf("work log %q: %w", stamp.ID, generic.ErrEntityNotFound)
	}
	e, err := build(in, stamp)
	if err != nil {
		return j, Entry{}, err
	}
	items := j.entries.List()
	for i := range items {
		if items[i].ID == e.ID {
			items[i] = e
		}
	}
	return Journal{entries: generic.NewHistory(items)}, e, nil
}

// Delete removes the entry with id. found is false for unknown ids.
func (j Journal) Delete(id string) (Journal, bool) {
	next, _, ok := j.entries.Remove(id)
	return Journal{entries: next}, ok
}

// Filter returns the matching entries sorted by date, newest first. Entries
// on the same date keep their insertion order.
func (j Journal) Filter(f Filter) []Entry {
	boat := strings.ToLower(strings.TrimSpace(f.Boat))
	out := j.entries.Filter(func(e Entry) bool {
		if boat != "" && !strings.Contains(strings.ToLower(e.BoatName), boat) {
			return false
		}
		if f.WorkType != "" && e.WorkType != f.WorkType {
			return false
		}
		day := e.Date.String()
		if f.From != "" && day < f.From {
			return false
		}
		if f.To != "" && day > f.To {
			return false
		}
		return true
	})
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Date.After(out[b].Date)
	})
	return out
}

// TotalHours sums the hours of entries.
func TotalHours(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Hours)
	}
	return total
}

func build(in Input, stamp Stamp) (Entry, error) {
	if strings.TrimSpace(in.BoatName) == "" {
		return Entry{}, &generic.InvalidInputError{Field: "boatName", Reason: "required"}
	}
	if strings.TrimSpace(in.Description) == "" {
		return Entry{}, &generic.InvalidInputError{Field: "description", Reason: "required"}
	}
	if strings.TrimSpace(in.Date) == "" {
		return Entry{}, &generic.InvalidInputError{Field: "date", Reason: "required"}
	}
	date, err := generic.ParseDate(in.Date)
	if err != nil {
		return Entry{}, err
	}
	wt := in.WorkType
	if wt == "" {
		wt = Maintenance
	}
	if !wt.Valid() {
		return Entry{}, &generic.InvalidInputError{Field: "workType", Reason: fmt.Sprintf("unknown work type %q", in.WorkType)}
	}
	if in.Hours.IsNegative() {
		return Entry{}, &generic.InvalidInputError{Field: "hours", Reason: "must not be negative"}
	}
	return Entry{
		ID:          stamp.ID,
		Date:        date,
		BoatName:    strings.TrimSpace(in.BoatName),
		WorkType:    wt,
		Description: strings.TrimSpace(in.Description),
		Hours:       in.Hours,
		Notes:       in.Notes,
		Timestamp:   stamp.Timestamp,
	}, nil
}
