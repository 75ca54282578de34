/*
Package redis provides a Redis-backed RuleStorage and AuditLog.

KEYS (all under the configured prefix):
  schema                 Schema marker, set by UpgradeSchema
  rules:<domain>         Full override tree as JSON
  rules:<domain>:version Write counter, never compared
  audit                  List of audit entries as JSON, newest first

SCHEMA MISSING:
  Redis has no tables. A keyspace without the schema marker is treated as
  unmigrated: loads and saves return an error wrapping
  generic.ErrSchemaMissing until UpgradeSchema writes the marker. This
  keeps the rule stores' upgrade-and-retry path identical across backends.

SEE ALSO:
  - generic/store.go: RuleStorage and AuditLog contracts
  - store/sqlite: The default backend
*/
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/warp/roster-engine/config"
	"github.com/warp/roster-engine/generic"
)

// SchemaVersion is written to the schema marker.
const SchemaVersion = "1"

// MaxAuditEntries caps the audit list.
const MaxAuditEntries = 1000

var (
	_ generic.RuleStorage = (*Store)(nil)
	_ generic.AuditLog    = (*Store)(nil)
)

// Store keeps rule trees in Redis.
type Store struct {
	rdb    *goredis.Client
	prefix string
	logger *zap.Logger
}

// Open connects to Redis and pings it.
func Open(cfg config.RedisConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))
	return New(rdb, cfg.Prefix, logger), nil
}

// New wraps an existing client.
func New(rdb *goredis.Client, prefix string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{rdb: rdb, prefix: prefix, logger: logger}
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) schemaKey() string { return s.prefix + "schema" }

func (s *Store) rulesKey(d generic.DomainID) string { return s.prefix + "rules:" + string(d) }

func (s *Store) versionKey(d generic.DomainID) string { return s.rulesKey(d) + ":version" }

func (s *Store) auditKey() string { return s.prefix + "audit" }

// =============================================================================
// RULE STORAGE
// =============================================================================

func (s *Store) UpgradeSchema(ctx context.Context) error {
	if err := s.rdb.Set(ctx, s.schemaKey(), SchemaVersion, 0).Err(); err != nil {
		return &generic.StorageError{Op: "upgrade", Err: err}
	}
	s.logger.Info("redis keyspace initialised", zap.String("prefix", s.prefix))
	return nil
}

func (s *Store) checkSchema(ctx context.Context, op string, domain generic.DomainID) error {
	n, err := s.rdb.Exists(ctx, s.schemaKey()).Result()
	if err != nil {
		return &generic.StorageError{Op: op, Domain: domain, Err: err}
	}
	if n == 0 {
		return &generic.StorageError{Op: op, Domain: domain, Err: generic.ErrSchemaMissing}
	}
	return nil
}

// LoadRules returns the saved tree, or nil when none was saved.
func (s *Store) LoadRules(ctx context.Context, domain generic.DomainID) (generic.Tree, error) {
	if err := s.checkSchema(ctx, "load", domain); err != nil {
		return nil, err
	}
	data, err := s.rdb.Get(ctx, s.rulesKey(domain)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &generic.StorageError{Op: "load", Domain: domain, Err: err}
	}
	tree, err := generic.ParseTree(data)
	if err != nil {
		return nil, &generic.StorageError{Op: "load", Domain: domain, Err: err}
	}
	return tree, nil
}

// SaveRules replaces the tree and bumps its version in one transaction.
func (s *Store) SaveRules(ctx context.Context, domain generic.DomainID, tree generic.Tree) error {
	if err := s.checkSchema(ctx, "save", domain); err != nil {
		return err
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return &generic.StorageError{Op: "save", Domain: domain, Err: err}
	}
	_, err = s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, s.rulesKey(domain), data, 0)
		p.Incr(ctx, s.versionKey(domain))
		return nil
	})
	if err != nil {
		return &generic.StorageError{Op: "save", Domain: domain, Err: err}
	}
	return nil
}

// RuleVersion returns how many times domain was saved.
func (s *Store) RuleVersion(ctx context.Context, domain generic.DomainID) (int, error) {
	n, err := s.rdb.Get(ctx, s.versionKey(domain)).Int()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return n, err
}

// =============================================================================
// AUDIT LOG
// =============================================================================

type auditRecord struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Domain    string       `json:"domain"`
	Action    string       `json:"action"`
	Tree      generic.Tree `json:"tree"`
	Persisted bool         `json:"persisted"`
}

func (s *Store) AppendAudit(ctx context.Context, e generic.AuditEntry) error {
	data, err := json.Marshal(auditRecord{
		ID:        e.ID,
		Timestamp: e.Timestamp.UTC(),
		Domain:    string(e.Domain),
		Action:    string(e.Action),
		Tree:      e.Tree,
		Persisted: e.Persisted,
	})
	if err != nil {
		return &generic.StorageError{Op: "audit", Domain: e.Domain, Err: err}
	}
	_, err = s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.LPush(ctx, s.auditKey(), data)
		p.LTrim(ctx, s.auditKey(), 0, MaxAuditEntries-1)
		return nil
	})
	if err != nil {
		return &generic.StorageError{Op: "audit", Domain: e.Domain, Err: err}
	}
	return nil
}

// QueryAudit returns the newest entries first. An empty domain matches all
// domains; limit <= 0 means no limit.
func (s *Store) QueryAudit(ctx context.Context, domain generic.DomainID, limit int) ([]generic.AuditEntry, error) {
	raw, err := s.rdb.LRange(ctx, s.auditKey(), 0, -1).Result()
	if err != nil {
		return nil, &generic.StorageError{Op: "audit", Domain: domain, Err: err}
	}
	var entries []generic.AuditEntry
	for _, item := range raw {
		var rec auditRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			s.logger.Warn("skipping unreadable audit entry", zap.Error(err))
			continue
		}
		if domain != "" && rec.Domain != string(domain) {
			continue
		}
		entries = append(entries, generic.AuditEntry{
			ID:        rec.ID,
			Timestamp: rec.Timestamp,
			Domain:    generic.DomainID(rec.Domain),
			Action:    generic.AuditAction(rec.Action),
			Tree:      rec.Tree,
			Persisted: rec.Persisted,
		})
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries, nil
}
