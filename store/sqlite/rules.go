package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/warp/roster-engine/generic"
)

// timestampLayout has a fixed width so timestamps sort as strings.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	_ generic.RuleStorage = (*Store)(nil)
	_ generic.AuditLog    = (*Store)(nil)
)

// =============================================================================
// RULE STORAGE (generic.RuleStorage interface)
// =============================================================================

// LoadRules returns the saved tree of domain, or nil when none was saved.
func (s *Store) LoadRules(ctx context.Context, domain generic.DomainID) (generic.Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var treeJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT tree_json FROM rule_overrides WHERE domain = ?",
		string(domain),
	).Scan(&treeJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("load", domain, err)
	}

	tree, err := generic.ParseTree([]byte(treeJSON))
	if err != nil {
		return nil, storageError("load", domain, err)
	}
	return tree, nil
}

// SaveRules replaces the saved tree of domain and bumps its version.
func (s *Store) SaveRules(ctx context.Context, domain generic.DomainID, tree generic.Tree) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return storageError("save", domain, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO rule_overrides (domain, tree_json, version, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(domain) DO UPDATE SET
			tree_json = excluded.tree_json,
			version = rule_overrides.version + 1,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		string(domain), string(data), time.Now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return storageError("save", domain, err)
	}
	return nil
}

// RuleVersion returns how many times domain was saved (0 = never).
func (s *Store) RuleVersion(ctx context.Context, domain generic.DomainID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var version int
	err := s.db.QueryRowContext(ctx,
		"SELECT version FROM rule_overrides WHERE domain = ?", string(domain),
	).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, storageError("load", domain, err)
	}
	return version, nil
}

// =============================================================================
// AUDIT LOG (generic.AuditLog interface)
// =============================================================================

func (s *Store) AppendAudit(ctx context.Context, e generic.AuditEntry) error {
	data, err := json.Marshal(e.Tree)
	if err != nil {
		return storageError("audit", e.Domain, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rule_audit (id, domain, action, tree_json, persisted, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		e.ID, string(e.Domain), string(e.Action), string(data), e.Persisted,
		e.Timestamp.UTC().Format(timestampLayout),
	)
	if err != nil {
		return storageError("audit", e.Domain, err)
	}
	return nil
}

// QueryAudit returns the newest entries first. An empty domain matches all
// domains; limit <= 0 means no limit.
func (s *Store) QueryAudit(ctx context.Context, domain generic.DomainID, limit int) ([]generic.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, domain, action, tree_json, persisted, created_at
		FROM rule_audit
		WHERE ? = '' OR domain = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, string(domain), string(domain), limit)
	if err != nil {
		return nil, storageError("audit", domain, err)
	}
	defer rows.Close()

	var entries []generic.AuditEntry
	for rows.Next() {
		var e generic.AuditEntry
		var d, action, treeJSON, createdAt string
		if err := rows.Scan(&e.ID, &d, &action, &treeJSON, &e.Persisted, &createdAt); err != nil {
			return nil, err
		}
		e.Domain = generic.DomainID(d)
		e.Action = generic.AuditAction(action)
		e.Timestamp, _ = time.Parse(timestampLayout, createdAt)
		if tree, err := generic.ParseTree([]byte(treeJSON)); err == nil {
			e.Tree = tree
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
