package leave_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/marinalog/ledger/generic"
	"github.com/marinalog/ledger/leave"
	"github.com/marinalog/ledger/store/memory"
	"github.com/marinalog/ledger/worklog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var fixedNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestService(t *testing.T, store leave.Store, opts ...leave.Option) *leave.Service {
	t.Helper()
	opts = append([]leave.Option{
		leave.WithClock(func() time.Time { return fixedNow }),
		leave.WithIDGenerator(sequentialIDs()),
	}, opts...)
	svc, err := leave.NewService(context.Background(), store, leave.DefaultRuleSet(), opts...)
	require.NoError(t, err)
	return svc
}

// flakyStore wraps a memory store and fails Save while failing is set.
type flakyStore struct {
	*memory.Memory
	failing bool
}

var errDiskFull = errors.New("disk full")

func (s *flakyStore) Save(ctx context.Context, doc leave.Document) error {
	if s.failing {
		return errDiskFull
	}
	return s.Memory.Save(ctx, doc)
}

type recordingObserver struct {
	events []leave.Event
}

func (o *recordingObserver) Observe(e leave.Event) { o.events = append(o.events, e) }

// =============================================================================
// LOAD
// =============================================================================

func TestNewService_FreshInstall(t *testing.T) {
	store := memory.New()

	svc := newTestService(t, store)

	assert.True(t, svc.Balances().Equal(leave.DefaultBalances()))
	assert.Empty(t, svc.History())
	assert.Empty(t, svc.CustomFields())
	assert.Equal(t, leave.DefaultUser(), svc.User())
	assert.Equal(t, 0, store.Saves())
}

func TestNewService_LegacyDocument(t *testing.T) {
	// GIVEN: A document as an older version wrote it: no recuperoRiposo,
	// Italian units, ISO timestamps, no work logs and no user
	raw := []byte(`{
		"balances": {"ordinaria": 37, "legge937": 4, "malattia": 45, "hoursBank": 3, "moneyBank": 0},
		"history": [
			{"id": "a", "date": "2024-06-02T00:00:00.000Z", "type": "straordinario", "quantity": 3, "moneyAccrued": 0, "timestamp": 2},
			{"id": "b", "date": "2024-06-01", "type": "ordinaria", "quantity": 1, "moneyAccrued": 0, "timestamp": 1}
		],
		"customFields": [
			{"id": "custom_1", "name": "Turni", "unit": "ore", "balanceEffect": "add", "initialBalance": 2},
			{"id": "custom_2", "name": "Vecchio"}
		]
	}`)
	store := memory.NewFromJSON(raw)

	// WHEN: The service loads it
	svc := newTestService(t, store)

	// THEN: Missing pieces are filled in
	b := svc.Balances()
	assert.True(t, b.Get(leave.KeyOrdinaria).Equal(dec("37")))
	assert.True(t, b.Has(leave.KeyRecuperoRiposo))
	assert.True(t, b.Get(leave.KeyRecuperoRiposo).IsZero())
	assert.True(t, b.Get("custom_1").Equal(dec("2")))
	assert.True(t, b.Get("custom_2").IsZero())

	fields := svc.CustomFields()
	require.Len(t, fields, 2)
	assert.Equal(t, leave.FieldHours, fields[0].Unit)
	assert.Equal(t, leave.FieldDays, fields[1].Unit)
	assert.Equal(t, leave.EffectSubtract, fields[1].BalanceEffect)
	assert.Equal(t, leave.DefaultFieldColor, fields[1].Color)

	history := svc.History()
	require.Len(t, history, 2)
	assert.Equal(t, "2024-06-02", history[0].Date.String())
	assert.Equal(t, leave.DefaultUser(), svc.User())
	assert.Empty(t, svc.WorkLogs(worklog.Filter{}))

	// Deleting an old entry still undoes it
	found, err := svc.ReverseEntry(context.Background(), "b")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, svc.Balances().Get(leave.KeyOrdinaria).Equal(dec("38")))
}

func TestNewService_CorruptDocument(t *testing.T) {
	store := memory.NewFromJSON([]byte(`{"balances": [1, 2]}`))

	_, err := leave.NewService(context.Background(), store, leave.DefaultRuleSet())

	assert.Error(t, err)
}

// =============================================================================
// PERSISTENCE AND ROLLBACK
// =============================================================================

func TestApplyEntry_PersistsAndStamps(t *testing.T) {
	store := memory.New()
	svc := newTestService(t, store)

	entry, balances, err := svc.ApplyEntry(context.Background(), leave.Input{Type: leave.TypeOrdinaria, Date: monday})

	require.NoError(t, err)
	assert.Equal(t, "id-1", entry.ID)
	assert.Equal(t, fixedNow.UnixMilli(), entry.Timestamp)
	assert.True(t, balances.Get(leave.KeyOrdinaria).Equal(dec("38")))
	assert.Equal(t, 1, store.Saves())

	doc, found, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, doc.History, 1)
	assert.True(t, doc.Balances.Get(leave.KeyOrdinaria).Equal(dec("38")))
}

func TestApplyEntry_InvalidInputSavesNothing(t *testing.T) {
	store := memory.New()
	svc := newTestService(t, store)

	_, balances, err := svc.ApplyEntry(context.Background(), leave.Input{Type: leave.TypeStraordinario, Date: monday})

	assert.ErrorIs(t, err, generic.ErrInvalidInput)
	assert.True(t, balances.Equal(leave.DefaultBalances()))
	assert.Equal(t, 0, store.Saves())
}

func TestApplyEntry_RollsBackWhenSaveFails(t *testing.T) {
	// GIVEN: A service whose store starts failing
	store := &flakyStore{Memory: memory.New()}
	svc := newTestService(t, store)
	_, _, err := svc.ApplyEntry(context.Background(), leave.Input{Type: leave.TypeOrdinaria, Date: monday})
	require.NoError(t, err)
	store.failing = true

	// WHEN: Another entry is applied
	_, balances, err := svc.ApplyEntry(context.Background(), leave.Input{Type: leave.TypeGuardia, Date: saturday})

	// THEN: The error surfaces and memory still matches storage
	assert.ErrorIs(t, err, errDiskFull)
	assert.True(t, balances.Get(leave.KeyHoursBank).IsZero())
	assert.True(t, svc.Balances().Get(leave.KeyHoursBank).IsZero())
	assert.Len(t, svc.History(), 1)

	doc, _, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, doc.Balances.Equal(svc.Balances()))
}

func TestMutations_RollBackWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Memory: memory.New()}
	svc := newTestService(t, store)
	entry, _, err := svc.ApplyEntry(ctx, leave.Input{Type: leave.TypeOrdinaria, Date: monday})
	require.NoError(t, err)
	_, err = svc.RegisterCustomField(ctx, leave.CustomField{ID: "custom_1", Name: "Uno"})
	require.NoError(t, err)
	_, err = svc.AddWorkLog(ctx, worklog.Input{Date: monday, BoatName: "CP 301", Description: "Cambio olio", Hours: dec("1")})
	require.NoError(t, err)
	before := svc.Snapshot()
	store.failing = true

	_, err = svc.ReverseEntry(ctx, entry.ID)
	assert.ErrorIs(t, err, errDiskFull)
	err = svc.DeregisterCustomField(ctx, "custom_1")
	assert.ErrorIs(t, err, errDiskFull)
	_, err = svc.RegisterCustomField(ctx, leave.CustomField{ID: "custom_2", Name: "Due"})
	assert.ErrorIs(t, err, errDiskFull)
	err = svc.Reset(ctx)
	assert.ErrorIs(t, err, errDiskFull)
	_, err = svc.UpdateUser(ctx, leave.User{Name: "Nuovo"})
	assert.ErrorIs(t, err, errDiskFull)
	_, err = svc.AddWorkLog(ctx, worklog.Input{Date: monday, BoatName: "CP 302", Description: "Pulizia scafo"})
	assert.ErrorIs(t, err, errDiskFull)

	after := svc.Snapshot()
	assert.True(t, after.Balances.Equal(before.Balances))
	assert.Equal(t, before.History, after.History)
	assert.Equal(t, before.CustomFields, after.CustomFields)
	assert.Equal(t, before.User, after.User)
	assert.Equal(t, before.WorkLogs, after.WorkLogs)
}

func TestReverseEntry_UnknownIDSavesNothing(t *testing.T) {
	store := memory.New()
	svc := newTestService(t, store)

	found, err := svc.ReverseEntry(context.Background(), "missing")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, store.Saves())
}

// =============================================================================
// CUSTOM FIELDS
// =============================================================================

func TestRegisterCustomField_GeneratesID(t *testing.T) {
	svc := newTestService(t, memory.New())

	f, err := svc.RegisterCustomField(context.Background(), leave.CustomField{Name: "Turni"})

	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("custom_%d", fixedNow.UnixMilli()), f.ID)
	assert.Equal(t, leave.FieldDays, f.Unit)
}

func TestRegisterCustomField_GeneratedIDCollision(t *testing.T) {
	// GIVEN: The clock does not move between two registrations
	svc := newTestService(t, memory.New())
	first, err := svc.RegisterCustomField(context.Background(), leave.CustomField{Name: "Uno"})
	require.NoError(t, err)

	// WHEN: A second field is registered without an id
	second, err := svc.RegisterCustomField(context.Background(), leave.CustomField{Name: "Due"})

	// THEN: It gets a distinct id
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, svc.CustomFields(), 2)
}

func TestDeregisterCustomField_ServiceGuard(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New(), leave.WithFieldDeleteGuard(true))
	_, err := svc.RegisterCustomField(ctx, leave.CustomField{ID: "custom_1", Name: "Uno"})
	require.NoError(t, err)
	_, _, err = svc.ApplyEntry(ctx, leave.Input{Type: leave.TypeCustom, Date: monday, CustomFieldID: "custom_1"})
	require.NoError(t, err)

	err = svc.DeregisterCustomField(ctx, "custom_1")

	assert.ErrorIs(t, err, generic.ErrCustomFieldInUse)
	assert.Len(t, svc.CustomFields(), 1)
}

// =============================================================================
// RESET, USER, OBSERVER
// =============================================================================

func TestReset_ClearsEverything(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New())
	_, _, err := svc.ApplyEntry(ctx, leave.Input{Type: leave.TypeGuardia, Date: saturday})
	require.NoError(t, err)
	_, err = svc.RegisterCustomField(ctx, leave.CustomField{ID: "custom_1", Name: "Uno"})
	require.NoError(t, err)
	_, err = svc.UpdateUser(ctx, leave.User{Name: "Marco Neri"})
	require.NoError(t, err)
	_, err = svc.AddWorkLog(ctx, worklog.Input{Date: monday, BoatName: "CP 301", Description: "Tagliando"})
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx))

	assert.True(t, svc.Balances().Equal(leave.DefaultBalances()))
	assert.Empty(t, svc.History())
	assert.Empty(t, svc.CustomFields())
	assert.Equal(t, leave.DefaultUser(), svc.User())
	assert.Empty(t, svc.WorkLogs(worklog.Filter{}))
}

func TestUpdateUser_KeepsEmptyFields(t *testing.T) {
	svc := newTestService(t, memory.New())
	original := svc.User()

	u, err := svc.UpdateUser(context.Background(), leave.User{Rank: "Capo di 1a classe"})

	require.NoError(t, err)
	assert.Equal(t, "Capo di 1a classe", u.Rank)
	assert.Equal(t, original.Name, u.Name)
	assert.Equal(t, original.AvatarURL, u.AvatarURL)
}

func TestObserver_ReceivesEvents(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	svc := newTestService(t, memory.New(), leave.WithObserver(obs))

	entry, _, err := svc.ApplyEntry(ctx, leave.Input{Type: leave.TypeStraordinario, Date: sunday, OvertimeHours: dec("2")})
	require.NoError(t, err)
	_, err = svc.ReverseEntry(ctx, entry.ID)
	require.NoError(t, err)
	_, err = svc.RegisterCustomField(ctx, leave.CustomField{ID: "custom_1", Name: "Uno"})
	require.NoError(t, err)
	require.NoError(t, svc.DeregisterCustomField(ctx, "custom_1"))
	require.NoError(t, svc.Reset(ctx))

	require.Len(t, obs.events, 5)
	assert.Equal(t, leave.EventEntryApplied, obs.events[0].Kind)
	assert.Equal(t, leave.TypeStraordinario, obs.events[0].EntryType)
	assert.True(t, obs.events[0].Balances.Get(leave.KeyRecuperoRiposo).Equal(dec("1")))
	assert.Equal(t, leave.EventEntryReversed, obs.events[1].Kind)
	assert.Equal(t, leave.EventFieldRegistered, obs.events[2].Kind)
	assert.Equal(t, leave.EventFieldDeregistered, obs.events[3].Kind)
	assert.Equal(t, leave.EventReset, obs.events[4].Kind)
}

// =============================================================================
// WORK JOURNAL
// =============================================================================

func TestWorkLogs_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New())

	entry, err := svc.AddWorkLog(ctx, worklog.Input{
		Date: monday, BoatName: "CP 301", WorkType: worklog.Inspection, Description: "Controllo estintori", Hours: dec("1.5"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateWorkLog(ctx, entry.ID, worklog.Input{
		Date: tuesday, BoatName: "CP 301", WorkType: worklog.Inspection, Description: "Controllo estintori e razzi", Hours: dec("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, entry.ID, updated.ID)
	assert.Equal(t, tuesday, updated.Date.String())

	logs := svc.WorkLogs(worklog.Filter{Boat: "cp 301"})
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Hours.Equal(dec("2")))

	_, err = svc.UpdateWorkLog(ctx, "missing", worklog.Input{Date: monday, BoatName: "X", Description: "Y"})
	assert.ErrorIs(t, err, generic.ErrEntityNotFound)

	found, err := svc.DeleteWorkLog(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, found)
	found, err = svc.DeleteWorkLog(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, found)

	// Work logs never touch the balances
	assert.True(t, svc.Balances().Equal(leave.DefaultBalances()))
}

// =============================================================================
// READS
// =============================================================================

func TestService_CheckAfterMixedOperations(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New())
	_, err := svc.RegisterCustomField(ctx, leave.CustomField{ID: "custom_1", Name: "Uno", BalanceEffect: leave.EffectAdd, InitialBalance: decimal.NewNullDecimal(dec("3"))})
	require.NoError(t, err)
	for _, in := range []leave.Input{
		{Type: leave.TypeGuardia, Date: saturday},
		{Type: leave.TypeStraordinario, Date: sunday, OvertimeHours: dec("4")},
		{Type: leave.TypeCustom, Date: monday, CustomFieldID: "custom_1"},
		{Type: leave.TypeRettifica, Date: monday, ManualOp: leave.OpSubtract, ManualQty: dec("1"), TargetBalance: "custom_1"},
	} {
		_, _, err := svc.ApplyEntry(ctx, in)
		require.NoError(t, err)
	}
	require.NoError(t, svc.DeregisterCustomField(ctx, "custom_1"))

	assert.NoError(t, svc.Check())
}

func TestService_Preview(t *testing.T) {
	store := memory.New()
	svc := newTestService(t, store)

	p, err := svc.Preview(leave.Input{Type: leave.TypeGuardia, Date: sunday})

	require.NoError(t, err)
	assert.True(t, p.IsSunday)
	assert.True(t, p.Effect[leave.KeyHoursBank].Equal(dec("24")))
	assert.Empty(t, svc.History())
	assert.Equal(t, 0, store.Saves())
}
