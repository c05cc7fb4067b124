/*
service.go - Serialised, persistent front door to the ledger

PURPOSE:
  Service is what the HTTP API and the CLI talk to. It owns the current
  Ledger value together with the user profile and the work journal, and
  turns every public operation into: compute the next state, save it,
  then publish it.

CONCURRENCY:
  One mutex serialises every operation, reads included. The engine itself
  does no locking and no I/O.

ATOMICITY:
  The next state is built as a new value. If Store.Save fails the service
  keeps the previous value and returns the error, so a failed operation
  changes neither memory nor storage.

IDENTITY:
  Entry ids come from the id generator (uuid by default); timestamps come
  from the clock in unix milliseconds. Both are injectable for tests.

SEE ALSO:
  - engine.go: The state transitions
  - store.go: Persistence contract
*/
package leave

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marinalog/ledger/generic"
	"github.com/marinalog/ledger/worklog"
)

// =============================================================================
// OBSERVER - Notified after a mutation is saved
// =============================================================================

type EventKind string

const (
	EventEntryApplied      EventKind = "entry_applied"
	EventEntryReversed     EventKind = "entry_reversed"
	EventFieldRegistered   EventKind = "field_registered"
	EventFieldDeregistered EventKind = "field_deregistered"
	EventReset             EventKind = "reset"
)

type Event struct {
	Kind      EventKind
	EntryType EntryType // set for entry events
	Balances  generic.Balances
}

// Observer receives events synchronously, under the service lock. It must
// not call back into the Service.
type Observer interface {
	Observe(Event)
}

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	mu sync.Mutex

	store    Store
	ledger   Ledger
	user     User
	journal  worklog.Journal
	observer Observer

	blockInUseFieldDelete bool
	now                   func() time.Time
	newID                 func() string
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces uuid.NewString.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithFieldDeleteGuard rejects deregistering a custom field that active
// entries still reference.
func WithFieldDeleteGuard(enabled bool) Option {
	return func(s *Service) { s.blockInUseFieldDelete = enabled }
}

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// NewService loads the saved document, or starts from a fresh one.
func NewService(ctx context.Context, store Store, rules RuleSet, opts ...Option) (*Service, error) {
	s := &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, found, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if !found {
		doc = NewDocument()
	}
	doc = doc.Normalize()
	s.ledger = LedgerFromDocument(doc, rules)
	s.user = doc.User
	s.journal = worklog.NewJournal(doc.WorkLogs)
	return s, nil
}

type state struct {
	ledger  Ledger
	user    User
	journal worklog.Journal
}

func (s *Service) current() state {
	return state{ledger: s.ledger, user: s.user, journal: s.journal}
}

// commit saves next and makes it current. Callers hold s.mu.
func (s *Service) commit(ctx context.Context, next state) error {
	doc := next.ledger.Snapshot(next.user, next.journal)
	if err := s.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	s.ledger, s.user, s.journal = next.ledger, next.user, next.journal
	return nil
}

func (s *Service) publish(kind EventKind, t EntryType) {
	if s.observer == nil {
		return
	}
	s.observer.Observe(Event{Kind: kind, EntryType: t, Balances: s.ledger.Balances()})
}

func (s *Service) stamp() Stamp {
	return Stamp{ID: s.newID(), Timestamp: s.now().UnixMilli()}
}

// =============================================================================
// LEDGER OPERATIONS
// =============================================================================

// ApplyEntry evaluates, records and saves a new entry.
func (s *Service) ApplyEntry(ctx context.Context, in Input) (Entry, generic.Balances, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current()
	ledger, entry, err := s.ledger.Record(in, s.stamp())
	if err != nil {
		return Entry{}, s.ledger.Balances(), err
	}
	next.ledger = ledger
	if err := s.commit(ctx, next); err != nil {
		return Entry{}, s.ledger.Balances(), err
	}
	s.publish(EventEntryApplied, entry.Type)
	return entry, s.ledger.Balances(), nil
}

// ReverseEntry deletes an entry and undoes its effect. Deleting an id that
// is not active is a no-op reporting found=false.
func (s *Service) ReverseEntry(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, removed, found := s.ledger.Reverse(id)
	if !found {
		return false, nil
	}
	next := s.current()
	next.ledger = ledger
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	s.publish(EventEntryReversed, removed.Type)
	return true, nil
}

// Preview evaluates in against the current state without recording it.
func (s *Service) Preview(in Input) (Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Preview(in)
}

// RegisterCustomField adds a field. An empty id is generated as
// custom_<unix ms>.
func (s *Service) RegisterCustomField(ctx context.Context, f CustomField) (CustomField, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	generated := f.ID == ""
	if generated {
		f.ID = "custom_" + strconv.FormatInt(s.now().UnixMilli(), 10)
	}
	ledger, err := s.ledger.RegisterCustomField(f)
	if generated && errors.Is(err, generic.ErrDuplicateCustomField) {
		f.ID = "custom_" + s.newID()
		ledger, err = s.ledger.RegisterCustomField(f)
	}
	if err != nil {
		return CustomField{}, err
	}

	next := s.current()
	next.ledger = ledger
	if err := s.commit(ctx, next); err != nil {
		return CustomField{}, err
	}
	s.publish(EventFieldRegistered, "")
	registered, _ := s.ledger.Fields().Field(f.ID)
	return registered, nil
}

// DeregisterCustomField removes a field and its balance.
func (s *Service) DeregisterCustomField(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.ledger.DeregisterCustomField(id, s.blockInUseFieldDelete)
	if err != nil {
		return err
	}
	next := s.current()
	next.ledger = ledger
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.publish(EventFieldDeregistered, "")
	return nil
}

// Reset returns everything to the fresh-install state.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := state{
		ledger:  s.ledger.Reset(),
		user:    DefaultUser(),
		journal: worklog.NewJournal(nil),
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.publish(EventReset, "")
	return nil
}

// =============================================================================
// READS
// =============================================================================

func (s *Service) Balances() generic.Balances {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Balances()
}

// History returns active entries, newest first.
func (s *Service) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.History().List()
}

func (s *Service) CustomFields() []CustomField {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Fields().List()
}

// Snapshot returns the full document as it would be saved.
func (s *Service) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Snapshot(s.user, s.journal)
}

func (s *Service) Rules() RuleSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Rules()
}

// Expiring lists accruals whose recovery deadline is within windowDays.
func (s *Service) Expiring(asOf generic.TimePoint, windowDays int) []ExpiringEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Expiring(s.ledger.History().List(), s.ledger.Rules(), asOf, windowDays)
}

// Check replays the history and reports drift.
func (s *Service) Check() error {
	return CheckConsistency(s.Snapshot())
}

// =============================================================================
// USER PROFILE
// =============================================================================

func (s *Service) User() User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// UpdateUser replaces the non-empty fields of the profile.
func (s *Service) UpdateUser(ctx context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current()
	if u.Name != "" {
		next.user.Name = u.Name
	}
	if u.Rank != "" {
		next.user.Rank = u.Rank
	}
	if u.AvatarURL != "" {
		next.user.AvatarURL = u.AvatarURL
	}
	if err := s.commit(ctx, next); err != nil {
		return User{}, err
	}
	return s.user, nil
}

// =============================================================================
// WORK JOURNAL
// =============================================================================

func (s *Service) AddWorkLog(ctx context.Context, in worklog.Input) (worklog.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	journal, entry, err := s.journal.Add(in, worklog.Stamp{ID: s.newID(), Timestamp: s.now().UnixMilli()})
	if err != nil {
		return worklog.Entry{}, err
	}
	next := s.current()
	next.journal = journal
	if err := s.commit(ctx, next); err != nil {
		return worklog.Entry{}, err
	}
	return entry, nil
}

func (s *Service) UpdateWorkLog(ctx context.Context, id string, in worklog.Input) (worklog.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	journal, entry, err := s.journal.Update(in, worklog.Stamp{ID: id, Timestamp: s.now().UnixMilli()})
	if err != nil {
		return worklog.Entry{}, err
	}
	next := s.current()
	next.journal = journal
	if err := s.commit(ctx, next); err != nil {
		return worklog.Entry{}, err
	}
	return entry, nil
}

// DeleteWorkLog removes a journal entry; unknown ids report found=false.
func (s *Service) DeleteWorkLog(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	journal, found := s.journal.Delete(id)
	if !found {
		return false, nil
	}
	next := s.current()
	next.journal = journal
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) WorkLogs(f worklog.Filter) []worklog.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal.Filter(f)
}
