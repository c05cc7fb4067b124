/*
handlers.go - HTTP API handlers for the leave ledger

PURPOSE:
  Exposes the ledger service via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to leave.Service.

ENDPOINTS:
  State:
    GET    /api/state                  Full document (balances, history, fields, user, work logs)
    GET    /api/balances               Balance map plus display rows
    GET    /api/consistency            Replay the history and report drift
    POST   /api/reset                  Back to the fresh-install state

  Entries:
    GET    /api/history                Active entries, newest first (?type=&limit=)
    POST   /api/entries                Evaluate and record an entry
    POST   /api/entries/preview        Evaluate without recording
    DELETE /api/entries/{id}           Delete and reverse (idempotent)
    GET    /api/expiring               Accruals near their recovery deadline (?asOf=&window=)

  Custom fields:
    GET    /api/custom-fields          List
    POST   /api/custom-fields          Register
    DELETE /api/custom-fields/{id}     Deregister

  Profile, advisor, work logs:
    GET    /api/user, PUT /api/user
    POST   /api/advisor
    GET    /api/worklogs               (?boat=&type=&from=&to=)
    POST   /api/worklogs, PUT /api/worklogs/{id}, DELETE /api/worklogs/{id}

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, unknown balance key
  - 404: Unknown custom field or work log
  - 409: Duplicate custom field, field still in use
  - 502: Advisor model failed
  - 503: Advisor not configured
  - 500: Storage errors

SECURITY NOTE:
  No authentication. The ledger is single-user and meant to run locally.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marinalog/ledger/advisor"
	"github.com/marinalog/ledger/generic"
	"github.com/marinalog/ledger/leave"
	"github.com/marinalog/ledger/worklog"
)

// DefaultExpiryWindowDays is used when /api/expiring has no window.
const DefaultExpiryWindowDays = 60

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *leave.Service
	Advisor *advisor.Advisor

	ExpiryWindowDays int
	now              func() time.Time
}

// NewHandler creates a new handler around svc. adv may be nil.
func NewHandler(svc *leave.Service, adv *advisor.Advisor) *Handler {
	return &Handler{
		Service:          svc,
		Advisor:          adv,
		ExpiryWindowDays: DefaultExpiryWindowDays,
		now:              time.Now,
	}
}

// =============================================================================
// STATE HANDLERS
// =============================================================================

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Snapshot())
}

func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	balances := h.Service.Balances()
	writeJSON(w, http.StatusOK, BalancesResponse{
		Balances: balances,
		Items:    BalanceItems(balances, h.Service.CustomFields()),
	})
}

// BalanceItems lists well-known balances in display order, then custom
// ones in registration order.
func BalanceItems(balances generic.Balances, fields []leave.CustomField) []BalanceDTO {
	items := make([]BalanceDTO, 0, balances.Len())
	for _, def := range generic.ListWellKnown() {
		if !balances.Has(def.ID) {
			continue
		}
		items = append(items, BalanceDTO{
			ID:    def.ID,
			Label: def.Label,
			Unit:  def.Unit,
			Value: balances.Get(def.ID),
		})
	}
	for _, f := range fields {
		if !balances.Has(f.ID) {
			continue
		}
		items = append(items, BalanceDTO{
			ID:     f.ID,
			Label:  f.Name,
			Unit:   f.Unit.Unit(),
			Value:  balances.Get(f.ID),
			Custom: true,
			Color:  f.Color,
		})
	}
	return items
}

func (h *Handler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	resp := ConsistencyResponse{Consistent: true, Drift: []DriftDTO{}}

	err := h.Service.Check()
	var drift *generic.DriftError
	switch {
	case err == nil:
	case errors.As(err, &drift):
		resp.Consistent = false
		for _, key := range drift.Keys {
			resp.Drift = append(resp.Drift, DriftDTO{
				Key:      key,
				Expected: drift.Expected.Get(key),
				Actual:   drift.Actual.Get(key),
			})
		}
	default:
		writeError(w, http.StatusInternalServerError, "Failed to check consistency", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reset clears the ledger, the profile and the work logs.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Reset(r.Context()); err != nil {
		writeDomainError(w, "Failed to reset ledger", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Snapshot())
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries := h.Service.History()
	total := len(entries)

	if raw := r.URL.Query().Get("type"); raw != "" {
		typ := leave.EntryType(raw)
		if !typ.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid entry type", fmt.Errorf("%q is not one of %v", raw, leave.EntryTypes()))
			return
		}
		filtered := make([]leave.Entry, 0, len(entries))
		for _, e := range entries {
			if e.Type == typ {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		if limit < len(entries) {
			entries = entries[:limit]
		}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries, Total: total})
}

// ApplyEntry records a new entry.
func (h *Handler) ApplyEntry(w http.ResponseWriter, r *http.Request) {
	var in leave.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entry, balances, err := h.Service.ApplyEntry(r.Context(), in)
	if err != nil {
		writeDomainError(w, "Failed to apply entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, ApplyEntryResponse{Entry: entry, Balances: balances})
}

func (h *Handler) PreviewEntry(w http.ResponseWriter, r *http.Request) {
	var in leave.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	preview, err := h.Service.Preview(in)
	if err != nil {
		writeDomainError(w, "Failed to preview entry", err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// DeleteEntry reverses an entry. Deleting an unknown id succeeds with
// deleted=false.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.Service.ReverseEntry(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to delete entry", err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteEntryResponse{
		ID:       id,
		Deleted:  deleted,
		Balances: h.Service.Balances(),
	})
}

func (h *Handler) GetExpiring(w http.ResponseWriter, r *http.Request) {
	asOf := generic.DateOf(h.now())
	if raw := r.URL.Query().Get("asOf"); raw != "" {
		parsed, err := generic.ParseDate(raw)
		if err != nil {
			writeDomainError(w, "Invalid asOf", err)
			return
		}
		asOf = parsed
	}
	window := h.ExpiryWindowDays
	if raw := r.URL.Query().Get("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid window", err)
			return
		}
		window = n
	}

	entries := h.Service.Expiring(asOf, window)
	if entries == nil {
		entries = []leave.ExpiringEntry{}
	}
	writeJSON(w, http.StatusOK, ExpiringResponse{
		AsOf:       asOf.String(),
		WindowDays: window,
		Entries:    entries,
	})
}

// =============================================================================
// CUSTOM FIELD HANDLERS
// =============================================================================

func (h *Handler) ListCustomFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.CustomFields())
}

func (h *Handler) CreateCustomField(w http.ResponseWriter, r *http.Request) {
	var f leave.CustomField
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	created, err := h.Service.RegisterCustomField(r.Context(), f)
	if err != nil {
		writeDomainError(w, "Failed to create custom field", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) DeleteCustomField(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Service.DeregisterCustomField(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete custom field", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "deleted",
		"id":       id,
		"balances": h.Service.Balances(),
	})
}

// =============================================================================
// USER HANDLERS
// =============================================================================

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.User())
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var u leave.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	updated, err := h.Service.UpdateUser(r.Context(), u)
	if err != nil {
		writeDomainError(w, "Failed to update user", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// =============================================================================
// ADVISOR HANDLER
// =============================================================================

// AskAdvisor answers a regulatory question against the current balances.
func (h *Handler) AskAdvisor(w http.ResponseWriter, r *http.Request) {
	var req AdvisorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	answer, err := h.Advisor.Ask(r.Context(), req.Query, h.Service.User(), h.Service.Balances())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, AdvisorResponse{Answer: answer})
	case errors.Is(err, advisor.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Advisor not configured", err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid question", err)
	default:
		writeError(w, http.StatusBadGateway, "Advisor failed", err)
	}
}

// =============================================================================
// WORK LOG HANDLERS
// =============================================================================

func (h *Handler) ListWorkLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries := h.Service.WorkLogs(worklog.Filter{
		Boat:     q.Get("boat"),
		WorkType: worklog.WorkType(q.Get("type")),
		From:     q.Get("from"),
		To:       q.Get("to"),
	})
	writeJSON(w, http.StatusOK, WorkLogsResponse{
		Entries:    entries,
		TotalHours: worklog.TotalHours(entries),
	})
}

func (h *Handler) CreateWorkLog(w http.ResponseWriter, r *http.Request) {
	var in worklog.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entry, err := h.Service.AddWorkLog(r.Context(), in)
	if err != nil {
		writeDomainError(w, "Failed to create work log", err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) UpdateWorkLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in worklog.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entry, err := h.Service.UpdateWorkLog(r.Context(), id, in)
	if err != nil {
		writeDomainError(w, "Failed to update work log", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteWorkLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.Service.DeleteWorkLog(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to delete work log", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": deleted})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error's classification.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case generic.IsClientError(err):
		status = http.StatusBadRequest
	case generic.IsNotFound(err):
		status = http.StatusNotFound
	case generic.IsConflict(err):
		status = http.StatusConflict
	}

	resp := ErrorResponse{Error: message, Details: err.Error()}
	var unknown *generic.UnknownBalanceError
	if errors.As(err, &unknown) {
		resp.Suggestion = unknown.Suggestion
	}
	writeJSON(w, status, resp)
}
