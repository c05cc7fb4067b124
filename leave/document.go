package leave

import (
	"github.com/marinalog/ledger/generic"
	"github.com/marinalog/ledger/worklog"
	"github.com/shopspring/decimal"
)

// =============================================================================
// DOCUMENT - The persisted state
// =============================================================================

// Document is the full persisted state. Its JSON shape is the one older
// versions wrote, so every field is optional on load.
type Document struct {
	Balances     generic.Balances `json:"balances"`
	History      []Entry          `json:"history"`
	CustomFields []CustomField    `json:"customFields"`
	User         User             `json:"user"`
	WorkLogs     []worklog.Entry  `json:"workLogs"`
}

// NewDocument is the state of a fresh install.
func NewDocument() Document {
	return Document{
		Balances:     DefaultBalances(),
		History:      []Entry{},
		CustomFields: []CustomField{},
		User:         DefaultUser(),
		WorkLogs:     []worklog.Entry{},
	}
}

// Normalize fills what older documents may lack: well-known keys read as
// zero, nil slices become empty, custom fields without a balance key get
// their initial balance, and an empty user gets the defaults.
func (d Document) Normalize() Document {
	out := d
	balances := d.Balances
	for _, id := range WellKnownIDs() {
		balances = balances.WithDefault(id, decimal.Zero)
	}

	fields := make([]CustomField, 0, len(d.CustomFields))
	for _, f := range d.CustomFields {
		if f.Color == "" {
			f.Color = DefaultFieldColor
		}
		if f.Unit == "" {
			f.Unit = FieldDays
		}
		if f.BalanceEffect == "" {
			f.BalanceEffect = EffectSubtract
		}
		balances = balances.WithDefault(f.ID, f.Initial())
		fields = append(fields, f)
	}
	out.Balances = balances
	out.CustomFields = NewRegistry(fields).List()

	if out.History == nil {
		out.History = []Entry{}
	}
	if out.WorkLogs == nil {
		out.WorkLogs = []worklog.Entry{}
	}
	if out.User == (User{}) {
		out.User = DefaultUser()
	}
	return out
}

// LedgerFromDocument rebuilds the engine state. The document is normalised
// first; stored balances are taken as they are.
func LedgerFromDocument(d Document, rules RuleSet) Ledger {
	d = d.Normalize()
	return Ledger{
		balances: d.Balances,
		history:  generic.NewHistory(d.History),
		fields:   NewRegistry(d.CustomFields),
		rules:    rules,
	}
}

// Snapshot captures the engine state into a document alongside the given
// profile and work logs.
func (l Ledger) Snapshot(user User, logs worklog.Journal) Document {
	return Document{
		Balances:     l.balances,
		History:      l.history.List(),
		CustomFields: l.fields.List(),
		User:         user,
		WorkLogs:     logs.List(),
	}
}
