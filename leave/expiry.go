package leave

import (
	"sort"

	"github.com/marinalog/ledger/generic"
)

// =============================================================================
// RECOVERY DEADLINES
// =============================================================================

// ExpiringEntry is an accrual whose compensatory time must be used soon.
type ExpiringEntry struct {
	Entry    Entry             `json:"entry"`
	Deadline generic.TimePoint `json:"deadline"`
	DaysLeft int               `json:"daysLeft"`
}

// Expiring lists active guard and overtime entries whose recovery deadline
// falls within windowDays of asOf (both ends inclusive), earliest deadline
// first. Nothing here changes a balance.
func Expiring(entries []Entry, rules RuleSet, asOf generic.TimePoint, windowDays int) []ExpiringEntry {
	limit := asOf.AddDays(windowDays)
	var out []ExpiringEntry
	for _, e := range entries {
		if !e.Type.IsAccrual() || !e.Quantity.IsPositive() {
			continue
		}
		deadline := rules.RecoveryDeadline(e.Date)
		if deadline.Before(asOf) || deadline.After(limit) {
			continue
		}
		out = append(out, ExpiringEntry{
			Entry:    e,
			Deadline: deadline,
			DaysLeft: generic.DaysBetween(asOf, deadline),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Deadline.Equal(out[j].Deadline) {
			return out[i].Deadline.Before(out[j].Deadline)
		}
		return out[i].Entry.Date.Before(out[j].Entry.Date)
	})
	return out
}
