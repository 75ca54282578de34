/*
Package factory builds the storage backends from configuration.

PURPOSE:
  Turns config.StorageConfig into the concrete stores the process needs:
  rule storage, the audit log, the roster store, the admin holiday store
  and the layered lunar source. The server and the CLI share this wiring.

DRIVERS:
  sqlite  Rules, audit, roster and holidays in one database file
  redis   Rules and audit in Redis; roster kept in memory
  memory  Everything in memory (demos and tests)

LUNAR SOURCES (later wins on the same date):
  1. calendar.BuiltinLunarTable
  2. calendar.lunar_file, when configured
  3. Admin-maintained holidays (sqlite only)

USAGE:
  backend, err := factory.Open(ctx, cfg, logger)
  defer backend.Close()
  reg := backend.Registry(rules.WithStorageTimeout(cfg.Storage.Timeout))

SEE ALSO:
  - config/config.go: StorageConfig
  - store/sqlite, store/redis, generic/store: The drivers
*/
package factory

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/warp/roster-engine/calendar"
	"github.com/warp/roster-engine/config"
	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/generic/store"
	"github.com/warp/roster-engine/rules"
	"github.com/warp/roster-engine/store/redis"
	"github.com/warp/roster-engine/store/sqlite"
	"github.com/warp/roster-engine/vacation"
)

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend is the set of stores opened for one process.
type Backend struct {
	Driver string
	Rules  generic.RuleStorage
	Audit  generic.AuditLog
	Roster vacation.RequestStore
	Lunar  calendar.LunarSource
	Health Pinger

	// SQLite is set for the sqlite driver only; it also maintains the
	// admin holidays.
	SQLite *sqlite.Store

	logger  *zap.Logger
	closers []func() error
}

// Open builds the backend selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Backend{Driver: cfg.Storage.Driver, logger: logger}

	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := sqlite.New(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.Rules, b.Audit, b.Roster, b.Health, b.SQLite = db, db, db, db, db
		b.closers = append(b.closers, db.Close)
		logger.Info("storage opened", zap.String("driver", "sqlite"), zap.String("path", cfg.Storage.SQLitePath))

	case config.DriverRedis:
		rs, err := redis.Open(cfg.Storage.Redis, logger)
		if err != nil {
			return nil, err
		}
		b.Rules, b.Audit, b.Health = rs, rs, rs
		b.Roster = vacation.NewMemoryStore()
		b.closers = append(b.closers, rs.Close)
		logger.Warn("redis driver keeps the roster in memory; staff and requests are lost on restart")

	case config.DriverMemory:
		mem := store.NewMemory()
		b.Rules, b.Audit = mem, mem
		b.Roster = vacation.NewMemoryStore()
		logger.Info("storage opened", zap.String("driver", "memory"))

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	lunar, err := LunarSource(cfg.Calendar, b.SQLite)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Lunar = lunar
	return b, nil
}

// LunarSource layers the built-in table, the configured file and the
// admin-maintained holidays. db may be nil.
func LunarSource(cfg config.CalendarConfig, db *sqlite.Store) (calendar.LunarSource, error) {
	sources := calendar.MergedLunarSource{calendar.BuiltinLunarTable}
	if cfg.LunarFile != "" {
		file, err := calendar.LoadLunarFile(cfg.LunarFile)
		if err != nil {
			return nil, err
		}
		sources = append(sources, file)
	}
	if db != nil {
		sources = append(sources, db)
	}
	return sources, nil
}

// Registry creates the rule registry over this backend, with its audit
// log and logger already applied.
func (b *Backend) Registry(opts ...rules.Option) *rules.Registry {
	base := []rules.Option{rules.WithLogger(b.logger), rules.WithAuditLog(b.Audit)}
	return rules.NewRegistry(b.Rules, append(base, opts...)...)
}

// Resolver creates a calendar resolver over the layered lunar source.
func (b *Backend) Resolver() *calendar.Resolver {
	return calendar.NewResolver(b.Lunar)
}

// Close releases every opened store.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
