/*
store.go - Persistence contract for rule trees

PURPOSE:
  Defines the interface between the rule stores and whatever keeps their
  override trees between runs. The rule stores never depend on a concrete
  database: they are handed a RuleStorage at construction.

KEY INTERFACES:
  RuleStorage: Load/save one override tree per domain, upgrade the schema
  AuditLog:    Append-only record of rule changes

LOAD CONTRACT:
  LoadRules returns (nil, nil) when nothing was saved for the domain yet.
  A backend whose table/keyspace does not exist yet returns an error that
  wraps ErrSchemaMissing; the caller then invokes UpgradeSchema and retries
  once.

SAVE CONTRACT:
  SaveRules always receives the full current tree, never a partial one.
  Backends overwrite the previous tree (last writer wins).

IMPLEMENTATIONS:
  - generic/store/memory.go: In-memory for tests and the "memory" driver
  - store/sqlite/sqlite.go:  SQLite
  - store/redis/redis.go:    Redis

SEE ALSO:
  - rules/store.go: The consumer of this contract
*/
package generic

import (
	"context"
	"time"
)

// =============================================================================
// RULE STORAGE
// =============================================================================

// RuleStorage persists one override tree per rule domain.
type RuleStorage interface {
	// LoadRules returns the saved tree, or nil when none was saved.
	LoadRules(ctx context.Context, domain DomainID) (Tree, error)

	// SaveRules replaces the saved tree for the domain.
	SaveRules(ctx context.Context, domain DomainID, tree Tree) error

	// UpgradeSchema creates or migrates whatever the backend needs.
	UpgradeSchema(ctx context.Context) error
}

// =============================================================================
// AUDIT LOG - Who changed which rule tree when
// =============================================================================

type AuditAction string

const (
	AuditRulesUpdated  AuditAction = "update"
	AuditRulesReset    AuditAction = "reset"
	AuditRulesImported AuditAction = "import"
)

// AuditEntry records a rule change together with the resulting tree.
type AuditEntry struct {
	ID        string
	Timestamp time.Time
	Domain    DomainID
	Action    AuditAction
	Tree      Tree
	Persisted bool
}

// AuditLog stores audit entries. Append-only.
type AuditLog interface {
	AppendAudit(ctx context.Context, entry AuditEntry) error
	QueryAudit(ctx context.Context, domain DomainID, limit int) ([]AuditEntry, error)
}
