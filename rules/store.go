/*
Package rules holds the layered rule configuration of the four rule
domains: day shift, night shift, function balance and scheduling order.

PURPOSE:
  Each domain has compile-time defaults and a persisted override tree. The
  value consumers read is always defaults deep-merged with the overrides.
  One generic Store carries the load / update / reset / import / export
  lifecycle; the domain files only declare the typed tree, its defaults
  and domain accessors.

LIFECYCLE:
  Init:          current = merge(defaults, load())
  UpdateRules:   current = merge(current, partial); save(current)
  ResetToDefault current = defaults;                save(current)
  ImportRules:   current = merge(defaults, parsed); save(current)

STORAGE FAILURES:
  Storage never blocks a caller and never fails an operation:
  - Load fails with ErrSchemaMissing -> UpgradeSchema, retry once
  - Load still fails                 -> current = defaults, WARN log
  - Save fails                       -> current stays updated,
                                        Persisted=false, domain dirty
  A dirty domain is re-saved by FlushDirty (see api/scheduler.go).

CONCURRENCY:
  Every Store serialises its own read-modify-write with a mutex. Writes
  from several processes to the same backend are last-writer-wins.

SEE ALSO:
  - generic/merge.go: DeepMerge
  - registry.go:      The four stores of one session
*/
package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/roster-engine/generic"
)

// DefaultStorageTimeout bounds each storage call.
const DefaultStorageTimeout = 5 * time.Second

// InitOutcome says where the current tree came from after Init.
type InitOutcome string

const (
	InitFromStorage  InitOutcome = "storage"  // overrides loaded and merged
	InitDefaults     InitOutcome = "defaults" // nothing saved yet
	InitFallback     InitOutcome = "fallback" // load failed, defaults used
	InitDefaultsOnly InitOutcome = "lazy"     // Rules() before Init
)

// =============================================================================
// OPTIONS
// =============================================================================

type options struct {
	logger  *zap.Logger
	audit   generic.AuditLog
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Store or Registry.
type Option func(*options)

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

func WithAuditLog(a generic.AuditLog) Option { return func(o *options) { o.audit = a } }

func WithStorageTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

func buildOptions(opts []Option) options {
	o := options{timeout: DefaultStorageTimeout, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.timeout <= 0 {
		o.timeout = DefaultStorageTimeout
	}
	return o
}

// =============================================================================
// STORE
// =============================================================================

// Store is the rule configuration of one domain.
type Store[T any] struct {
	domain   generic.DomainID
	defaults func() T
	storage  generic.RuleStorage
	opts     options
	logger   *zap.Logger

	// normalize runs on every decoded tree (e.g. set semantics);
	// validate rejects trees that break a domain invariant.
	normalize func(T) T
	validate  func(T) error

	mu      sync.Mutex
	current generic.Tree
	ready   bool
	dirty   bool
}

// NewStore creates the store of one domain. defaults must return a fresh
// value on every call.
func NewStore[T any](domain generic.DomainID, defaults func() T, storage generic.RuleStorage, opts ...Option) *Store[T] {
	o := buildOptions(opts)
	return &Store[T]{
		domain:   domain,
		defaults: defaults,
		storage:  storage,
		opts:     o,
		logger:   o.logger.With(zap.String("domain", string(domain))),
	}
}

func (s *Store[T]) ID() generic.DomainID { return s.domain }

// Init loads the persisted overrides and merges them onto the defaults.
// It never fails: any load problem ends in the defaults.
func (s *Store[T]) Init(ctx context.Context) InitOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	overrides, err := s.load(ctx)
	if errors.Is(err, generic.ErrSchemaMissing) && s.storage != nil {
		s.logger.Warn("rule storage schema missing, upgrading", zap.Error(err))
		if uerr := s.upgrade(ctx); uerr != nil {
			s.logger.Warn("rule storage schema upgrade failed", zap.Error(uerr))
		} else {
			overrides, err = s.load(ctx)
		}
	}
	if err != nil {
		s.logger.Warn("loading rules failed, using defaults", zap.Error(err))
		s.resetLocked()
		return InitFallback
	}
	if overrides == nil {
		s.resetLocked()
		return InitDefaults
	}

	tree, err := s.mergeOnto(s.defaultTree(), overrides)
	if err != nil {
		s.logger.Warn("stored rules rejected, using defaults", zap.Error(err))
		s.resetLocked()
		return InitFallback
	}
	s.current = tree
	s.ready = true
	s.dirty = false
	s.logger.Debug("rules loaded")
	return InitFromStorage
}

// Rules returns the current rules. Before Init it falls back to the
// defaults without touching storage.
func (s *Store[T]) Rules() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked()

	out, err := generic.FromTree[T](s.current)
	if err != nil {
		s.logger.Error("current rules do not decode", zap.Error(err))
		return s.defaults()
	}
	return out
}

// Tree returns a copy of the current rules as an untyped tree.
func (s *Store[T]) Tree() generic.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked()

	c, _ := generic.Clone(s.current)
	return c
}

// UpdateRules merges partial onto the current rules and saves the result.
// A partial that cannot be merged or does not fit the domain's shape is
// rejected with an error and nothing changes. A failed save does not undo
// the update; it is reported as Persisted=false.
func (s *Store[T]) UpdateRules(ctx context.Context, partial generic.Tree) (generic.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked()

	tree, err := s.mergeOnto(s.current, partial)
	if err != nil {
		return generic.UpdateResult{}, err
	}
	s.current = tree
	return s.persistLocked(ctx, generic.AuditRulesUpdated), nil
}

// ResetToDefault discards every override.
func (s *Store[T]) ResetToDefault(ctx context.Context) generic.UpdateResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	return s.persistLocked(ctx, generic.AuditRulesReset)
}

// ExportRules returns the current rules as indented JSON.
func (s *Store[T]) ExportRules() (string, error) {
	rules := s.Rules()
	out, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return "", fmt.Errorf("exporting %s rules: %w", s.domain, err)
	}
	return string(out), nil
}

// ImportRules replaces the current rules with data merged onto fresh
// defaults. It returns false and changes nothing when data is not a valid
// rule tree for this domain.
func (s *Store[T]) ImportRules(ctx context.Context, data string) bool {
	parsed, err := generic.ParseTree([]byte(data))
	if err != nil {
		s.logger.Info("import rejected: not a JSON object", zap.Error(err))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.mergeOnto(s.defaultTree(), parsed)
	if err != nil {
		s.logger.Info("import rejected", zap.Error(err))
		return false
	}
	s.current = tree
	s.ready = true
	s.persistLocked(ctx, generic.AuditRulesImported)
	return true
}

// Dirty reports whether the last write failed to reach storage.
func (s *Store[T]) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Flush re-saves the current rules if the last save failed. It returns
// true when the domain is clean afterwards.
func (s *Store[T]) Flush(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty || !s.ready {
		return true
	}
	if err := s.save(ctx, s.current); err != nil {
		s.logger.Warn("flushing rules failed", zap.Error(err))
		return false
	}
	s.dirty = false
	s.logger.Info("unsaved rules flushed")
	return true
}

// =============================================================================
// INTERNALS (mu held)
// =============================================================================

func (s *Store[T]) ensureLocked() {
	if !s.ready {
		s.resetLocked()
	}
}

func (s *Store[T]) resetLocked() {
	s.current = s.defaultTree()
	s.ready = true
}

// defaultTree encodes the compile-time defaults.
func (s *Store[T]) defaultTree() generic.Tree {
	tree, err := s.canonical(s.defaults())
	if err != nil {
		panic(fmt.Sprintf("rules: defaults of %s do not encode: %v", s.domain, err))
	}
	return tree
}

// mergeOnto merges overrides onto base and returns the canonical tree of
// the decoded, normalized and validated result.
func (s *Store[T]) mergeOnto(base, overrides generic.Tree) (generic.Tree, error) {
	merged, err := generic.DeepMerge(base, overrides)
	if err != nil {
		return nil, err
	}
	typed, err := generic.FromTree[T](merged)
	if err != nil {
		return nil, s.shapeError(err)
	}
	return s.canonical(typed)
}

// shapeError turns a decode failure of a merged tree into a ValidationError
// naming the offending field.
func (s *Store[T]) shapeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "tree"
		}
		return &ValidationError{Domain: s.domain, Field: field, Reason: "must be " + typeErr.Type.String() + ", got " + typeErr.Value}
	}
	return &ValidationError{Domain: s.domain, Field: "tree", Reason: err.Error()}
}

func (s *Store[T]) canonical(v T) (generic.Tree, error) {
	if s.normalize != nil {
		v = s.normalize(v)
	}
	if s.validate != nil {
		if err := s.validate(v); err != nil {
			return nil, err
		}
	}
	return generic.ToTree(v)
}

func (s *Store[T]) persistLocked(ctx context.Context, action generic.AuditAction) generic.UpdateResult {
	result := generic.UpdateResult{Applied: true, Persisted: true}
	if err := s.save(ctx, s.current); err != nil {
		s.logger.Warn("saving rules failed, keeping them in memory",
			zap.String("action", string(action)), zap.Error(err))
		result.Persisted = false
		s.dirty = true
	} else {
		s.dirty = false
	}
	s.recordAudit(ctx, action, result.Persisted)
	return result
}

func (s *Store[T]) recordAudit(ctx context.Context, action generic.AuditAction, persisted bool) {
	if s.opts.audit == nil {
		return
	}
	tree, _ := generic.Clone(s.current)
	entry := generic.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: s.opts.now().UTC(),
		Domain:    s.domain,
		Action:    action,
		Tree:      tree,
		Persisted: persisted,
	}
	actx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()
	if err := s.opts.audit.AppendAudit(actx, entry); err != nil {
		s.logger.Warn("writing rule audit entry failed", zap.Error(err))
	}
}

func (s *Store[T]) load(ctx context.Context) (generic.Tree, error) {
	if s.storage == nil {
		return nil, nil
	}
	lctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()
	return s.storage.LoadRules(lctx, s.domain)
}

func (s *Store[T]) save(ctx context.Context, tree generic.Tree) error {
	if s.storage == nil {
		return nil
	}
	sctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()
	return s.storage.SaveRules(sctx, s.domain, tree)
}

func (s *Store[T]) upgrade(ctx context.Context) error {
	uctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()
	return s.storage.UpgradeSchema(uctx)
}
