// Package store provides RuleStorage implementations.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/roster-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	trees    map[generic.DomainID]generic.Tree
	audit    []generic.AuditEntry
	hasTable bool

	// Injected failures, for exercising fallback paths.
	loadErr error
	saveErr error

	upgrades int
}

func NewMemory() *Memory {
	return &Memory{
		trees:    make(map[generic.DomainID]generic.Tree),
		hasTable: true,
	}
}

// NewMemoryWithoutSchema returns a store that reports ErrSchemaMissing until
// UpgradeSchema is called, like a database opened before its first migration.
func NewMemoryWithoutSchema() *Memory {
	m := NewMemory()
	m.hasTable = false
	return m
}

// FailLoads makes every LoadRules call return err (nil clears it).
func (m *Memory) FailLoads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// FailSaves makes every SaveRules call return err (nil clears it).
func (m *Memory) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// Upgrades reports how many times UpgradeSchema ran.
func (m *Memory) Upgrades() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.upgrades
}

func (m *Memory) LoadRules(_ context.Context, domain generic.DomainID) (generic.Tree, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.hasTable {
		return nil, &generic.StorageError{Op: "load", Domain: domain, Err: generic.ErrSchemaMissing}
	}
	if m.loadErr != nil {
		return nil, &generic.StorageError{Op: "load", Domain: domain, Err: m.loadErr}
	}
	t, ok := m.trees[domain]
	if !ok {
		return nil, nil
	}
	return generic.Clone(t)
}

func (m *Memory) SaveRules(_ context.Context, domain generic.DomainID, tree generic.Tree) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasTable {
		return &generic.StorageError{Op: "save", Domain: domain, Err: generic.ErrSchemaMissing}
	}
	if m.saveErr != nil {
		return &generic.StorageError{Op: "save", Domain: domain, Err: m.saveErr}
	}
	c, err := generic.Clone(tree)
	if err != nil {
		return fmt.Errorf("cloning tree: %w", err)
	}
	m.trees[domain] = c
	return nil
}

func (m *Memory) UpgradeSchema(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasTable = true
	m.upgrades++
	return nil
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (m *Memory) AppendAudit(_ context.Context, entry generic.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entry)
	return nil
}

// QueryAudit returns the newest entries first.
func (m *Memory) QueryAudit(_ context.Context, domain generic.DomainID, limit int) ([]generic.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []generic.AuditEntry
	for i := len(m.audit) - 1; i >= 0; i-- {
		e := m.audit[i]
		if domain != "" && e.Domain != domain {
			continue
		}
		result = append(result, e)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}
