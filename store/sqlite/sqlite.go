/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Keeps everything the roster engine persists in one SQLite file: the rule
  override trees, their audit trail, admin-maintained lunar holidays and the
  staff roster with its personal requests.

INTERFACES IMPLEMENTED:
  generic.RuleStorage:   Rule override trees (rules.go)
  generic.AuditLog:      Rule change audit (rules.go)
  calendar.LunarSource:  Admin-maintained holidays (holidays.go)
  vacation.RequestStore: Staff and personal requests (staff.go)

KEY TABLES:
  rule_overrides:    One row per domain, full tree as JSON, version counter
  rule_audit:        Append-only record of rule writes
  holidays:          Movable holidays keyed by date
  staff:             Roster members
  personal_requests: (staff, date) -> leave type

SCHEMA MISSING:
  New migrates immediately. Open does not: a rule store reading from a
  database opened with Open gets an error wrapping generic.ErrSchemaMissing
  and calls UpgradeSchema, which runs the same migration.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Rule writes are last-writer-wins;
  the version column counts writes but is never compared.

USAGE:
  store, err := sqlite.New("./data/roster.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  registry := rules.NewRegistry(store, rules.WithAuditLog(store))

SEE ALSO:
  - generic/store.go: RuleStorage and AuditLog contracts
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/roster-engine/generic"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens the database at dbPath and migrates it.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	store, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.migrate(context.Background()); err != nil {
		store.db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Open opens the database without touching its schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every ":memory:" connection is its own database.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection, for health probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// UpgradeSchema creates any missing table.
func (s *Store) UpgradeSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.migrate(ctx); err != nil {
		return &generic.StorageError{Op: "upgrade", Err: err}
	}
	return nil
}

// migrate creates the database schema.
func (s *Store) migrate(ctx context.Context) error {
	schema := `
	-- Rule overrides: one full tree per domain
	CREATE TABLE IF NOT EXISTS rule_overrides (
		domain TEXT PRIMARY KEY,
		tree_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	);

	-- Rule audit (append-only)
	CREATE TABLE IF NOT EXISTS rule_audit (
		id TEXT PRIMARY KEY,
		domain TEXT NOT NULL,
		action TEXT NOT NULL,
		tree_json TEXT NOT NULL,
		persisted BOOLEAN NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rule_audit_domain_created
		ON rule_audit(domain, created_at DESC);

	-- Movable holidays maintained by admins
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Staff roster
	CREATE TABLE IF NOT EXISTS staff (
		id TEXT PRIMARY KEY,
		staff_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		sex TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_staff_staff_id
		ON staff(staff_id) WHERE staff_id <> '';

	-- Personal requests: at most one leave type per person and day
	CREATE TABLE IF NOT EXISTS personal_requests (
		staff_key TEXT NOT NULL REFERENCES staff(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (staff_key, date)
	);

	CREATE INDEX IF NOT EXISTS idx_personal_requests_date
		ON personal_requests(date);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"personal_requests", "staff", "holidays", "rule_audit", "rule_overrides"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// ResetRoster clears staff and their requests, keeping rules and holidays.
func (s *Store) ResetRoster(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"personal_requests", "staff"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// storageError wraps err, marking "no such table" as a missing schema.
func storageError(op string, domain generic.DomainID, err error) error {
	if isNoSuchTableError(err) {
		err = fmt.Errorf("%w: %v", generic.ErrSchemaMissing, err)
	}
	return &generic.StorageError{Op: op, Domain: domain, Err: err}
}

func isNoSuchTableError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
