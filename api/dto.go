/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Entry input, custom
  fields, the user profile and work logs are accepted in their document
  shape (leave.Input, leave.CustomField, leave.User, worklog.Input), so the
  types here are the responses and the few request bodies that have no
  domain counterpart.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/marinalog/ledger/generic"
	"github.com/marinalog/ledger/leave"
	"github.com/marinalog/ledger/worklog"
	"github.com/shopspring/decimal"
)

// =============================================================================
// BALANCES
// =============================================================================

// BalanceDTO is one balance with what a client needs to display it.
type BalanceDTO struct {
	ID     string          `json:"id"`
	Label  string          `json:"label"`
	Unit   generic.Unit    `json:"unit"`
	Value  decimal.Decimal `json:"value"`
	Custom bool            `json:"custom"`
	Color  string          `json:"color,omitempty"`
}

type BalancesResponse struct {
	Balances generic.Balances `json:"balances"`
	Items    []BalanceDTO     `json:"items"`
}

// =============================================================================
// ENTRIES
// =============================================================================

type ApplyEntryResponse struct {
	Entry    leave.Entry      `json:"entry"`
	Balances generic.Balances `json:"balances"`
}

type DeleteEntryResponse struct {
	ID       string           `json:"id"`
	Deleted  bool             `json:"deleted"`
	Balances generic.Balances `json:"balances"`
}

type HistoryResponse struct {
	Entries []leave.Entry `json:"entries"`
	Total   int           `json:"total"`
}

type ExpiringResponse struct {
	AsOf       string                `json:"asOf"`
	WindowDays int                   `json:"windowDays"`
	Entries    []leave.ExpiringEntry `json:"entries"`
}

// =============================================================================
// CONSISTENCY
// =============================================================================

type DriftDTO struct {
	Key      string          `json:"key"`
	Expected decimal.Decimal `json:"expected"`
	Actual   decimal.Decimal `json:"actual"`
}

type ConsistencyResponse struct {
	Consistent bool       `json:"consistent"`
	Drift      []DriftDTO `json:"drift"`
}

// =============================================================================
// ADVISOR
// =============================================================================

type AdvisorRequest struct {
	Query string `json:"query"`
}

type AdvisorResponse struct {
	Answer string `json:"answer"`
}

// =============================================================================
// WORK LOGS
// =============================================================================

type WorkLogsResponse struct {
	Entries    []worklog.Entry `json:"entries"`
	TotalHours decimal.Decimal `json:"totalHours"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}
