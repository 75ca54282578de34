/*
Package generic provides the domain-agnostic core of the roster engine.

PURPOSE:
  This package contains the types and algorithms shared by every rule
  domain and every persistence backend: rule domain identifiers, the
  untyped configuration Tree, the deep-merge primitive, date helpers and
  the RuleStorage contract. Whether a tree describes night-shift limits or
  function balancing, the same merge and the same storage contract apply.

KEY CONCEPTS IN THIS FILE (types.go):
  - DomainID: Identifies one independently persisted rule tree
  - Tree: A JSON-shaped configuration value (objects are map[string]any)
  - UpdateResult: Outcome of a write that never blocks on storage

DESIGN PRINCIPLES:
  1. Domains never share mutable state; each owns one Tree
  2. Trees are plain JSON values so every backend stores them the same way
  3. Type Safety: DomainID is a distinct string type

SEE ALSO:
  - merge.go: DeepMerge, the load-bearing merge primitive
  - store.go: RuleStorage persistence contract
  - time.go: Date helpers
*/
package generic

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// RULE DOMAINS
// =============================================================================

// DomainID identifies a rule domain.
type DomainID string

const (
	DomainDayShift        DomainID = "day_shift"
	DomainNightShift      DomainID = "night_shift"
	DomainFunctionBalance DomainID = "function_balance"
	DomainSchedulingOrder DomainID = "scheduling_order"
)

// Domains lists every known rule domain in a stable order.
func Domains() []DomainID {
	return []DomainID{
		DomainDayShift,
		DomainNightShift,
		DomainFunctionBalance,
		DomainSchedulingOrder,
	}
}

// ParseDomain validates a domain identifier.
func ParseDomain(s string) (DomainID, error) {
	for _, d := range Domains() {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
}

// =============================================================================
// TREE - JSON-shaped configuration value
// =============================================================================

// Tree is a configuration object. Nested objects are map[string]any, lists
// are []any, leaves are JSON scalars.
type Tree map[string]any

// ToTree converts a typed configuration value into a Tree by round-tripping
// it through JSON.
func ToTree(v any) (Tree, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding tree: %w", err)
	}
	var t Tree
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decoding tree: %w", err)
	}
	return t, nil
}

// FromTree decodes a Tree into a typed configuration value.
func FromTree[T any](t Tree) (T, error) {
	var out T
	raw, err := json.Marshal(t)
	if err != nil {
		return out, fmt.Errorf("encoding tree: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decoding tree: %w", err)
	}
	return out, nil
}

// ParseTree parses a JSON object into a Tree.
func ParseTree(data []byte) (Tree, error) {
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("expected a JSON object")
	}
	return t, nil
}

// =============================================================================
// UPDATE RESULT
// =============================================================================

// UpdateResult reports the outcome of a rule write. Applied is always true
// for accepted writes; Persisted is false when the in-memory state changed
// but the storage write failed.
type UpdateResult struct {
	Applied   bool `json:"applied"`
	Persisted bool `json:"persisted"`
}
