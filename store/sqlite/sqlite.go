/*
Package sqlite provides a SQLite-backed implementation of leave.Store.

PURPOSE:
  Persists the ledger document in normalised tables so the data can be
  inspected and queried with plain SQL, while the service still sees one
  document that is loaded once and saved after every mutation.

KEY TABLES:
  ledger_state:   One row once a document has been saved
  balances:       Balance map, amounts as decimal strings
  entries:        Active history; position 0 is the newest entry
  custom_fields:  Registered custom fields in registration order
  user_profile:   Single-row profile
  work_logs:      Maintenance journal

SAVE SEMANTICS:
  Save replaces the whole document inside one SQL transaction. A failure
  at any statement rolls back to the previously saved document.

MIGRATIONS:
  Versioned SQL files under migrations/ are embedded in the binary and
  applied with golang-migrate on New(). The schema version lives in the
  schema_migrations table.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.
  ":memory:" databases are pinned to a single connection, since every new
  connection would otherwise see an empty database.

USAGE:
  store, err := sqlite.New("./data/marinalog.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  svc, err := leave.NewService(ctx, store, rules)

SEE ALSO:
  - leave/store.go: Interface definition
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/marinalog/ledger/generic"
	"github.com/marinalog/ledger/leave"
	"github.com/marinalog/ledger/worklog"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements leave.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies the embedded migrations. The migrate instance is not
// closed: closing it would close s.db too.
func (s *Store) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// SchemaVersion returns the applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_migrations LIMIT 1").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads the saved document. found is false on a fresh database.
func (s *Store) Load(ctx context.Context) (leave.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var savedAt string
	err := s.db.QueryRowContext(ctx, "SELECT saved_at FROM ledger_state WHERE id = 1").Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return leave.Document{}, false, nil
	}
	if err != nil {
		return leave.Document{}, false, fmt.Errorf("failed to read ledger state: %w", err)
	}

	var doc leave.Document
	if doc.Balances, err = s.loadBalances(ctx); err != nil {
		return leave.Document{}, false, err
	}
	if doc.History, err = s.loadEntries(ctx); err != nil {
		return leave.Document{}, false, err
	}
	if doc.CustomFields, err = s.loadFields(ctx); err != nil {
		return leave.Document{}, false, err
	}
	if doc.User, err = s.loadUser(ctx); err != nil {
		return leave.Document{}, false, err
	}
	if doc.WorkLogs, err = s.loadWorkLogs(ctx); err != nil {
		return leave.Document{}, false, err
	}
	return doc, true, nil
}

func (s *Store) loadBalances(ctx context.Context) (generic.Balances, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM balances")
	if err != nil {
		return generic.Balances{}, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	values := make(map[string]decimal.Decimal)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return generic.Balances{}, fmt.Errorf("failed to scan balance: %w", err)
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return generic.Balances{}, fmt.Errorf("balance %s: %w", key, err)
		}
		values[key] = d
	}
	return generic.NewBalances(values), rows.Err()
}

func (s *Store) loadEntries(ctx context.Context) ([]leave.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, type, quantity, money_accrued, notes, timestamp,
		       target_balance, custom_field_id, start_time, end_time, is_weekend_bonus
		FROM entries
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []leave.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (leave.Entry, error) {
	var (
		e             leave.Entry
		date          string
		entryType     string
		quantity      string
		money         string
		targetBalance sql.NullString
		customFieldID sql.NullString
		startTime     sql.NullString
		endTime       sql.NullString
	)
	err := rows.Scan(
		&e.ID, &date, &entryType, &quantity, &money, &e.Notes, &e.Timestamp,
		&targetBalance, &customFieldID, &startTime, &endTime, &e.IsWeekendBonus,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}
	if e.Date, err = generic.ParseDate(date); err != nil {
		return e, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	e.Type = leave.EntryType(entryType)
	if e.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return e, fmt.Errorf("entry %s quantity: %w", e.ID, err)
	}
	if e.MoneyAccrued, err = decimal.NewFromString(money); err != nil {
		return e, fmt.Errorf("entry %s money accrued: %w", e.ID, err)
	}
	e.TargetBalance = targetBalance.String
	e.CustomFieldID = customFieldID.String
	e.StartTime = startTime.String
	e.EndTime = endTime.String
	return e, nil
}

func (s *Store) loadFields(ctx context.Context) ([]leave.CustomField, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, unit, balance_effect, initial_balance, color
		FROM custom_fields
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom fields: %w", err)
	}
	defer rows.Close()

	fields := []leave.CustomField{}
	for rows.Next() {
		var (
			f       leave.CustomField
			unit    string
			effect  string
			initial sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.Name, &unit, &effect, &initial, &f.Color); err != nil {
			return nil, fmt.Errorf("failed to scan custom field: %w", err)
		}
		if f.Unit, err = leave.ParseFieldUnit(unit); err != nil {
			return nil, fmt.Errorf("custom field %s: %w", f.ID, err)
		}
		f.BalanceEffect = leave.BalanceEffect(effect)
		if initial.Valid {
			d, err := decimal.NewFromString(initial.String)
			if err != nil {
				return nil, fmt.Errorf("custom field %s initial balance: %w", f.ID, err)
			}
			f.InitialBalance = decimal.NewNullDecimal(d)
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

func (s *Store) loadUser(ctx context.Context) (leave.User, error) {
	var u leave.User
	err := s.db.QueryRowContext(ctx,
		"SELECT name, rank, avatar_url FROM user_profile WHERE id = 1",
	).Scan(&u.Name, &u.Rank, &u.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return leave.User{}, nil
	}
	if err != nil {
		return leave.User{}, fmt.Errorf("failed to read user profile: %w", err)
	}
	return u, nil
}

func (s *Store) loadWorkLogs(ctx context.Context) ([]worklog.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, boat_name, work_type, description, hours, notes, timestamp
		FROM work_logs
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query work logs: %w", err)
	}
	defer rows.Close()

	logs := []worklog.Entry{}
	for rows.Next() {
		var (
			w     worklog.Entry
			date  string
			wt    string
			hours string
		)
		if err := rows.Scan(&w.ID, &date, &w.BoatName, &wt, &w.Description, &hours, &w.Notes, &w.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan work log: %w", err)
		}
		if w.Date, err = generic.ParseDate(date); err != nil {
			return nil, fmt.Errorf("work log %s: %w", w.ID, err)
		}
		w.WorkType = worklog.WorkType(wt)
		if w.Hours, err = decimal.NewFromString(hours); err != nil {
			return nil, fmt.Errorf("work log %s hours: %w", w.ID, err)
		}
		logs = append(logs, w)
	}
	return logs, rows.Err()
}

// =============================================================================
// SAVE
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Save atomically replaces the stored document.
func (s *Store) Save(ctx context.Context, doc leave.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, table := range []string{"balances", "entries", "custom_fields", "user_profile", "work_logs"} {
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := saveBalances(ctx, sqlTx, doc.Balances); err != nil {
		return err
	}
	if err := saveEntries(ctx, sqlTx, doc.History); err != nil {
		return err
	}
	if err := saveFields(ctx, sqlTx, doc.CustomFields); err != nil {
		return err
	}
	if _, err := sqlTx.ExecContext(ctx,
		"INSERT INTO user_profile (id, name, rank, avatar_url) VALUES (1, ?, ?, ?)",
		doc.User.Name, doc.User.Rank, doc.User.AvatarURL,
	); err != nil {
		return fmt.Errorf("failed to save user profile: %w", err)
	}
	if err := saveWorkLogs(ctx, sqlTx, doc.WorkLogs); err != nil {
		return err
	}
	if _, err := sqlTx.ExecContext(ctx, `
		INSERT INTO ledger_state (id, saved_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at
	`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to mark ledger state: %w", err)
	}

	return sqlTx.Commit()
}

func saveBalances(ctx context.Context, db execer, b generic.Balances) error {
	for _, key := range b.Keys() {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO balances (key, value) VALUES (?, ?)",
			key, b.Get(key).String(),
		); err != nil {
			return fmt.Errorf("failed to save balance %s: %w", key, err)
		}
	}
	return nil
}

func saveEntries(ctx context.Context, db execer, entries []leave.Entry) error {
	query := `
		INSERT INTO entries
		(id, position, date, type, quantity, money_accrued, notes, timestamp,
		 target_balance, custom_field_id, start_time, end_time, is_weekend_bonus)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, e := range entries {
		_, err := db.ExecContext(ctx, query,
			e.ID,
			i,
			e.Date.String(),
			string(e.Type),
			e.Quantity.String(),
			e.MoneyAccrued.String(),
			e.Notes,
			e.Timestamp,
			nullString(e.TargetBalance),
			nullString(e.CustomFieldID),
			nullString(e.StartTime),
			nullString(e.EndTime),
			e.IsWeekendBonus,
		)
		if err != nil {
			return fmt.Errorf("failed to save entry %s: %w", e.ID, err)
		}
	}
	return nil
}

func saveFields(ctx context.Context, db execer, fields []leave.CustomField) error {
	query := `
		INSERT INTO custom_fields
		(id, position, name, unit, balance_effect, initial_balance, color)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for i, f := range fields {
		var initial sql.NullString
		if f.InitialBalance.Valid {
			initial = sql.NullString{String: f.InitialBalance.Decimal.String(), Valid: true}
		}
		if _, err := db.ExecContext(ctx, query,
			f.ID, i, f.Name, string(f.Unit), string(f.BalanceEffect), initial, f.Color,
		); err != nil {
			return fmt.Errorf("failed to save custom field %s: %w", f.ID, err)
		}
	}
	return nil
}

func saveWorkLogs(ctx context.Context, db execer, logs []worklog.Entry) error {
	query := `
		INSERT INTO work_logs
		(id, position, date, boat_name, work_type, description, hours, notes, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, w := range logs {
		if _, err := db.ExecContext(ctx, query,
			w.ID, i, w.Date.String(), w.BoatName, string(w.WorkType), w.Description,
			w.Hours.String(), w.Notes, w.Timestamp,
		); err != nil {
			return fmt.Errorf("failed to save work log %s: %w", w.ID, err)
		}
	}
	return nil
}

// =============================================================================
// QUERIES - Read-only helpers for reporting
// =============================================================================

// CountEntriesByType returns how many active entries each type has.
func (s *Store) CountEntriesByType(ctx context.Context) (map[leave.EntryType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT type, COUNT(*) FROM entries GROUP BY type")
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	defer rows.Close()

	counts := make(map[leave.EntryType]int)
	for rows.Next() {
		var (
			t string
			n int
		)
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[leave.EntryType(t)] = n
	}
	return counts, rows.Err()
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ leave.Store = (*Store)(nil)
