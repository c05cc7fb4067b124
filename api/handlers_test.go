/*
handlers_test.go - Tests for the HTTP API

Tests for:
- Entry lifecycle (apply, preview, delete, history)
- Error mapping (400 with suggestion, 404, 409, 503, 502)
- Custom fields, user profile, work logs
- Expiring accruals and the consistency check
- Metrics observed through the service
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/marinalog/ledger/advisor"
	mock_advisor "github.com/marinalog/ledger/advisor/mocks"
	"github.com/marinalog/ledger/generic"
	"github.com/marinalog/ledger/leave"
	"github.com/marinalog/ledger/store/memory"
	"github.com/marinalog/ledger/worklog"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

type testServer struct {
	router  http.Handler
	service *leave.Service
	metrics *Metrics
	store   *memory.Memory
}

func newTestServer(t *testing.T, adv *advisor.Advisor) *testServer {
	t.Helper()
	return newTestServerWithStore(t, memory.New(), adv)
}

func newTestServerWithStore(t *testing.T, store *memory.Memory, adv *advisor.Advisor) *testServer {
	t.Helper()
	metrics := NewMetrics()
	svc, err := leave.NewService(context.Background(), store, leave.DefaultRuleSet(),
		leave.WithClock(func() time.Time { return testNow }),
		leave.WithObserver(metrics),
	)
	require.NoError(t, err)

	h := NewHandler(svc, adv)
	h.now = func() time.Time { return testNow }

	return &testServer{
		router:  NewRouter(h, metrics, nil),
		service: svc,
		metrics: metrics,
		store:   store,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// =============================================================================
// ENTRIES
// =============================================================================

func TestApplyEntry_LeaveDay(t *testing.T) {
	// GIVEN: A fresh ledger
	s := newTestServer(t, nil)

	// WHEN: A leave day is recorded
	rec := s.do(t, http.MethodPost, "/api/entries", map[string]any{"type": "ordinaria", "date": "2025-03-03"})

	// THEN: The entry is created and one day consumed
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[ApplyEntryResponse](t, rec)
	assert.NotEmpty(t, resp.Entry.ID)
	assert.Equal(t, leave.TypeOrdinaria, resp.Entry.Type)
	assert.True(t, resp.Balances.Get(leave.KeyOrdinaria).Equal(d("38")))
	assert.Equal(t, 1, s.store.Saves())
}

func TestApplyEntry_SundayOvertimeThenDelete(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/entries", map[string]any{
		"type": "straordinario", "date": "2025-03-09", "overtimeHours": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[ApplyEntryResponse](t, rec)
	assert.True(t, created.Entry.IsWeekendBonus)
	assert.True(t, created.Balances.Get(leave.KeyHoursBank).Equal(d("3")))
	assert.True(t, created.Balances.Get(leave.KeyRecuperoRiposo).Equal(d("1")))

	rec = s.do(t, http.MethodDelete, "/api/entries/"+created.Entry.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	deleted := decode[DeleteEntryResponse](t, rec)
	assert.True(t, deleted.Deleted)
	assert.True(t, deleted.Balances.Get(leave.KeyHoursBank).IsZero())
	assert.True(t, deleted.Balances.Get(leave.KeyRecuperoRiposo).IsZero())
}

func TestDeleteEntry_UnknownIsIdempotent(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodDelete, "/api/entries/nope", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[DeleteEntryResponse](t, rec)
	assert.False(t, resp.Deleted)
	assert.Equal(t, "nope", resp.ID)
	assert.Equal(t, 0, s.store.Saves())
}

func TestApplyEntry_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		suggestion string
	}{
		{
			name:       "malformed body",
			body:       "not an object",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown type",
			body:       map[string]any{"type": "vacanza", "date": "2025-03-03"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad date",
			body:       map[string]any{"type": "ordinaria", "date": "03/03/2025"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "misspelled adjustment target",
			body: map[string]any{
				"type": "rettifica", "date": "2025-03-03",
				"manualOp": "add", "manualQty": 2, "targetBalance": "ordinara",
			},
			wantStatus: http.StatusBadRequest,
			suggestion: "ordinaria",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)

			rec := s.do(t, http.MethodPost, "/api/entries", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			resp := decode[ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.suggestion, resp.Suggestion)
			assert.Equal(t, 0, s.store.Saves())
			assert.Empty(t, s.service.History())
		})
	}
}

func TestPreviewEntry_RecordsNothing(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/entries/preview", map[string]any{"type": "guardia", "date": "2025-03-08"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var preview map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Equal(t, true, preview["isSaturday"])
	assert.Equal(t, "2026-12-31", preview["recoveryDeadline"])
	assert.Empty(t, s.service.History())
	assert.Equal(t, 0, s.store.Saves())
}

func TestGetHistory_FilterAndLimit(t *testing.T) {
	s := newTestServer(t, nil)
	for _, body := range []map[string]any{
		{"type": "ordinaria", "date": "2025-03-03"},
		{"type": "malattia", "date": "2025-03-04"},
		{"type": "ordinaria", "date": "2025-03-05"},
	} {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/entries", body).Code)
	}

	rec := s.do(t, http.MethodGet, "/api/history?type=ordinaria&limit=1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[HistoryResponse](t, rec)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, leave.TypeOrdinaria, resp.Entries[0].Type)

	rec = s.do(t, http.MethodGet, "/api/history?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHistory_UnknownTypeRejected(t *testing.T) {
	// GIVEN a ledger with one entry
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/entries",
		map[string]any{"type": "ordinaria", "date": "2025-03-03"}).Code)

	// WHEN the history is filtered on a type that does not exist
	rec := s.do(t, http.MethodGet, "/api/history?type=ordinari", nil)

	// THEN the request is rejected and the valid types are listed
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Invalid entry type", resp.Error)
	for _, typ := range leave.EntryTypes() {
		assert.Contains(t, resp.Details, string(typ))
	}
}

// =============================================================================
// BALANCES / STATE
// =============================================================================

func TestGetBalances_ItemsInDisplayOrder(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/api/custom-fields", map[string]any{
		"id": "custom_corso", "name": "Corso", "unit": "hours", "balanceEffect": "add", "color": "#ff0000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/balances", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[BalancesResponse](t, rec)
	require.Len(t, resp.Items, 7)
	assert.Equal(t, leave.KeyOrdinaria, resp.Items[0].ID)
	assert.Equal(t, "Licenza ordinaria", resp.Items[0].Label)
	assert.False(t, resp.Items[0].Custom)

	last := resp.Items[6]
	assert.Equal(t, "custom_corso", last.ID)
	assert.Equal(t, "Corso", last.Label)
	assert.Equal(t, generic.UnitHours, last.Unit)
	assert.Equal(t, "#ff0000", last.Color)
	assert.True(t, last.Custom)
	assert.True(t, resp.Balances.Has("custom_corso"))
}

func TestGetState_DocumentShape(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/state", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	for _, key := range []string{"balances", "history", "customFields", "user", "workLogs"} {
		assert.Contains(t, doc, key)
	}
	assert.JSONEq(t, `[]`, string(doc["history"]))
}

func TestReset_RestoresFreshState(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodPost, "/api/entries", map[string]any{"type": "ordinaria", "date": "2025-03-03"})
	s.do(t, http.MethodPut, "/api/user", map[string]any{"name": "Luca Ferri", "rank": "Sergente"})

	rec := s.do(t, http.MethodPost, "/api/reset", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, s.service.History())
	assert.True(t, s.service.Balances().Equal(leave.DefaultBalances()))
	assert.Equal(t, leave.DefaultUser(), s.service.User())
}

// =============================================================================
// CUSTOM FIELDS
// =============================================================================

func TestCustomFields_Lifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	// WHEN: A field is registered without an id
	rec := s.do(t, http.MethodPost, "/api/custom-fields", map[string]any{
		"name": "Corso", "unit": "days", "balanceEffect": "add", "initialBalance": 5,
	})

	// THEN: An id is generated from the clock and the balance seeded
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	field := decode[leave.CustomField](t, rec)
	assert.Equal(t, "custom_1741599000000", field.ID)
	assert.True(t, s.service.Balances().Get(field.ID).Equal(d("5")))

	// WHEN: The same id is registered again
	rec = s.do(t, http.MethodPost, "/api/custom-fields", map[string]any{"id": field.ID, "name": "Altro"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// WHEN: It is listed and then deleted
	rec = s.do(t, http.MethodGet, "/api/custom-fields", nil)
	require.Len(t, decode[[]leave.CustomField](t, rec), 1)

	rec = s.do(t, http.MethodDelete, "/api/custom-fields/"+field.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, s.service.Balances().Has(field.ID))

	// THEN: Deleting it again is a 404
	rec = s.do(t, http.MethodDelete, "/api/custom-fields/"+field.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// USER
// =============================================================================

func TestUser_GetAndUpdate(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/user", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, leave.DefaultUser(), decode[leave.User](t, rec))

	rec = s.do(t, http.MethodPut, "/api/user", map[string]any{"rank": "Sergente"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[leave.User](t, rec)
	assert.Equal(t, "Sergente", updated.Rank)
	assert.Equal(t, leave.DefaultUser().Name, updated.Name)
}

// =============================================================================
// EXPIRING / CONSISTENCY
// =============================================================================

func TestGetExpiring(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodPost, "/api/entries", map[string]any{"type": "guardia", "date": "2025-03-08"})

	rec := s.do(t, http.MethodGet, "/api/expiring?asOf=2026-11-15&window=60", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[ExpiringResponse](t, rec)
	assert.Equal(t, "2026-11-15", resp.AsOf)
	assert.Equal(t, 60, resp.WindowDays)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "2026-12-31", resp.Entries[0].Deadline.String())
	assert.Equal(t, 46, resp.Entries[0].DaysLeft)

	// Default window from "now" (2025-03-10) sees nothing yet
	rec = s.do(t, http.MethodGet, "/api/expiring", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[ExpiringResponse](t, rec).Entries)

	rec = s.do(t, http.MethodGet, "/api/expiring?asOf=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckConsistency(t *testing.T) {
	t.Run("consistent", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.do(t, http.MethodPost, "/api/entries", map[string]any{"type": "guardia", "date": "2025-03-08"})

		rec := s.do(t, http.MethodGet, "/api/consistency", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[ConsistencyResponse](t, rec)
		assert.True(t, resp.Consistent)
		assert.Empty(t, resp.Drift)
	})

	t.Run("drift reported", func(t *testing.T) {
		doc := leave.NewDocument()
		doc.Balances = doc.Balances.With(leave.KeyMoneyBank, d("100"))
		store, err := memory.NewWithDocument(doc)
		require.NoError(t, err)
		s := newTestServerWithStore(t, store, nil)

		rec := s.do(t, http.MethodGet, "/api/consistency", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[ConsistencyResponse](t, rec)
		assert.False(t, resp.Consistent)
		require.Len(t, resp.Drift, 1)
		assert.Equal(t, leave.KeyMoneyBank, resp.Drift[0].Key)
		assert.True(t, resp.Drift[0].Expected.IsZero())
		assert.True(t, resp.Drift[0].Actual.Equal(d("100")))
	})
}

// =============================================================================
// WORK LOGS
// =============================================================================

func TestWorkLogs_Lifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/worklogs", map[string]any{
		"date": "2025-03-10", "boatName": "Vega", "workType": "Manutenzione",
		"description": "Cambio olio", "hours": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decode[worklog.Entry](t, rec)

	s.do(t, http.MethodPost, "/api/worklogs", map[string]any{
		"date": "2025-03-11", "boatName": "Orione", "workType": "Pulizia",
		"description": "Lavaggio ponte", "hours": 2.5,
	})

	rec = s.do(t, http.MethodGet, "/api/worklogs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[WorkLogsResponse](t, rec)
	assert.Len(t, all.Entries, 2)
	assert.True(t, all.TotalHours.Equal(d("6.5")))

	rec = s.do(t, http.MethodGet, "/api/worklogs?boat=Vega", nil)
	assert.Len(t, decode[WorkLogsResponse](t, rec).Entries, 1)

	rec = s.do(t, http.MethodPut, "/api/worklogs/"+entry.ID, map[string]any{
		"date": "2025-03-10", "boatName": "Vega", "workType": "Riparazione",
		"description": "Pompa di sentina", "hours": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, worklog.Repair, decode[worklog.Entry](t, rec).WorkType)

	rec = s.do(t, http.MethodPut, "/api/worklogs/missing", map[string]any{
		"date": "2025-03-10", "boatName": "Vega", "description": "x",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/worklogs", map[string]any{"date": "2025-03-10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/worklogs/"+entry.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, s.service.WorkLogs(worklog.Filter{}), 1)
}

// =============================================================================
// ADVISOR
// =============================================================================

func TestAskAdvisor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		completer  func() advisor.Completer
		query      string
		wantStatus int
		wantAnswer string
	}{
		{
			name: "answered",
			completer: func() advisor.Completer {
				m := mock_advisor.NewMockCompleter(ctrl)
				m.EXPECT().Complete(gomock.Any(), gomock.Any(), "Quanto recupero ho?").Return("Comandi. Zero giorni.", nil)
				return m
			},
			query:      "Quanto recupero ho?",
			wantStatus: http.StatusOK,
			wantAnswer: "Comandi. Zero giorni.",
		},
		{
			name:       "not configured",
			completer:  func() advisor.Completer { return nil },
			query:      "Domanda",
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name: "blank question",
			completer: func() advisor.Completer {
				return mock_advisor.NewMockCompleter(ctrl)
			},
			query:      "   ",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "model failure",
			completer: func() advisor.Completer {
				m := mock_advisor.NewMockCompleter(ctrl)
				m.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("quota exceeded"))
				return m
			},
			query:      "Domanda",
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, advisor.New(tt.completer(), time.Second))

			rec := s.do(t, http.MethodPost, "/api/advisor", AdvisorRequest{Query: tt.query})

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantAnswer != "" {
				assert.Equal(t, tt.wantAnswer, decode[AdvisorResponse](t, rec).Answer)
			}
		})
	}
}

// =============================================================================
// METRICS / SCHEDULER
// =============================================================================

func TestMetrics_ObserveServiceEvents(t *testing.T) {
	s := newTestServer(t, nil)

	s.do(t, http.MethodPost, "/api/entries", map[string]any{"type": "ordinaria", "date": "2025-03-03"})
	rec := s.do(t, http.MethodPost, "/api/entries", map[string]any{"type": "guardia", "date": "2025-03-08"})
	guard := decode[ApplyEntryResponse](t, rec)
	s.do(t, http.MethodDelete, "/api/entries/"+guard.Entry.ID, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.EntriesApplied.WithLabelValues("ordinaria")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.EntriesReversed.WithLabelValues("guardia")))
	assert.Equal(t, 38.0, testutil.ToFloat64(s.metrics.Balance.WithLabelValues(leave.KeyOrdinaria)))

	rec = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marinalog_ledger_entries_applied_total")
}

func TestExpiryScheduler_RunNow(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodPost, "/api/entries", map[string]any{"type": "guardia", "date": "2025-03-08"})
	s.do(t, http.MethodPost, "/api/entries", map[string]any{"type": "straordinario", "date": "2025-03-03", "overtimeHours": 2})

	sched := NewExpiryScheduler(s.service, s.metrics)
	sched.now = func() time.Time { return time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC) }

	found := sched.RunNow()

	assert.Len(t, found, 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.Expiring))
}

func TestExpiryScheduler_StartStop(t *testing.T) {
	s := newTestServer(t, nil)
	sched := NewExpiryScheduler(s.service, nil)
	sched.CheckInterval = time.Hour

	sched.Start()
	sched.Stop()
	sched.Stop()

	disabled := NewExpiryScheduler(s.service, nil)
	disabled.Enabled = false
	disabled.Start()
	disabled.Stop()
}

func TestExpiryScheduler_NextRunTime(t *testing.T) {
	s := newTestServer(t, nil)
	sched := NewExpiryScheduler(s.service, nil)
	sched.CheckInterval = 6 * time.Hour
	sched.now = func() time.Time { return time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC) }

	assert.Equal(t, time.Date(2026, time.March, 1, 15, 0, 0, 0, time.UTC), sched.GetNextRunTime())
}

// =============================================================================
// CORS
// =============================================================================

func preflight(router http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/reset", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCORS_DefaultAllowsLocalClientOnly(t *testing.T) {
	// GIVEN: A router built without configured origins
	s := newTestServer(t, nil)

	// WHEN: A foreign page sends a preflight for a destructive call
	foreign := preflight(s.router, "https://evil.example")

	// THEN: No CORS grant is returned
	assert.Empty(t, foreign.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, foreign.Header().Get("Access-Control-Allow-Credentials"))

	// AND: The local web client is still allowed
	local := preflight(s.router, "http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", local.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardNeverAllowsCredentials(t *testing.T) {
	s := newTestServer(t, nil)
	router := NewRouter(NewHandler(s.service, nil), nil, []string{"*"})

	rec := preflight(router, "https://evil.example")

	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}
