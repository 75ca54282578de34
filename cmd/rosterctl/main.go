package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/warp/roster-engine/cli"
	"github.com/warp/roster-engine/config"
	"github.com/warp/roster-engine/factory"
	"github.com/warp/roster-engine/logging"
	"github.com/warp/roster-engine/rules"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Config path: ROSTER_CONFIG or the default search path
	cfg, err := config.Load(os.Getenv("ROSTER_CONFIG"))
	if err != nil {
		return err
	}

	// Operator output goes to stdout; keep the logger quiet unless asked.
	if os.Getenv("ROSTER_LOG_LEVEL") == "" {
		cfg.Log.Level = "warn"
	}
	cfg.Log.Format = "console"
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()
	backend, err := factory.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer backend.Close()

	reg := backend.Registry(rules.WithStorageTimeout(cfg.Storage.Timeout))
	for domain, outcome := range reg.InitAll(ctx) {
		logger.Debug("rule domain initialised", zap.String("domain", string(domain)), zap.String("outcome", string(outcome)))
	}

	app := &cli.App{
		Rules:    reg,
		Calendar: backend.Resolver(),
		Roster:   backend.Roster,
		FullRest: cfg,
	}

	return cli.NewRootCmd(app).Execute()
}
