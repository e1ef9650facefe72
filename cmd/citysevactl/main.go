// Command citysevactl runs the offline data tasks against the configured
// stores:
//
//	citysevactl migrate [--postgres_dsn ... --mongo_uri ...]
//	citysevactl verify  [--mongo_uri ...]
//
// Configuration is read the same way as the server (flags, CITYSEVA_*
// environment variables, config files).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalemusser/cityseva/internal/app/bootstrap"
	"github.com/dalemusser/cityseva/internal/app/migration"
	"github.com/dalemusser/cityseva/internal/app/sqlstore"
	"github.com/dalemusser/cityseva/internal/app/store/importer"
	"github.com/dalemusser/cityseva/internal/app/verify"
	"go.uber.org/zap"
)

const usage = "usage: citysevactl <migrate|verify> [config flags]"

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	cmd := os.Args[1]
	if cmd != "migrate" && cmd != "verify" {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	// Leave only config flags for the config loader.
	os.Args = append(os.Args[:1], os.Args[2:]...)

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	coreCfg, appCfg, err := bootstrap.LoadConfig(logger)
	if err != nil {
		logger.Error("load config", zap.Error(err))
		return 1
	}
	if err := bootstrap.ValidateConfig(coreCfg, appCfg, logger); err != nil {
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap.ConnectDB(ctx, coreCfg, appCfg, logger)
	if err != nil {
		logger.Error("connect", zap.Error(err))
		return 1
	}
	defer func() { _ = bootstrap.Shutdown(context.WithoutCancel(ctx), coreCfg, appCfg, deps, logger) }()

	if err := bootstrap.EnsureSchema(ctx, coreCfg, appCfg, deps, logger); err != nil {
		return 1
	}

	switch cmd {
	case "migrate":
		return runMigrate(ctx, appCfg, deps, logger)
	default:
		return runVerify(ctx, deps, logger)
	}
}

type kindSummary struct {
	Kind string `json:"kind"`
	migration.Counts
}

type migrateSummary struct {
	RunID       string        `json:"run_id"`
	Kinds       []kindSummary `json:"kinds"`
	Problems    []string      `json:"problems,omitempty"`
	MappingFile string        `json:"mapping_file,omitempty"`
	Balanced    bool          `json:"balanced"`
}

func runMigrate(ctx context.Context, appCfg bootstrap.AppConfig, deps bootstrap.DBDeps, logger *zap.Logger) int {
	if deps.SQL == nil {
		logger.Error("migrate needs postgres_dsn")
		return 1
	}

	o, err := migration.New(sqlstore.NewSource(deps.SQL), importer.New(deps.MongoDatabase), logger, migration.Config{
		RetryAttempts: uint(max(appCfg.MigrateRetryAttempts, 0)),
		ProgressEvery: appCfg.MigrateProgressEvery,
		MappingFile:   appCfg.MappingFile,
	})
	if err != nil {
		logger.Error("build migration", zap.Error(err))
		return 1
	}

	rep, err := o.Run(ctx)
	if err != nil {
		var connErr *migration.ConnectionError
		if errors.As(err, &connErr) {
			logger.Error("store unreachable, nothing was written", zap.String("store", connErr.Store), zap.Error(connErr.Err))
		} else {
			logger.Error("migration aborted", zap.Error(err))
		}
		return 1
	}

	sum := migrateSummary{RunID: rep.RunID, Balanced: rep.Balanced(), MappingFile: appCfg.MappingFile}
	failed := 0
	for _, k := range rep.Order {
		c := rep.Counts[k]
		sum.Kinds = append(sum.Kinds, kindSummary{Kind: string(k), Counts: *c})
		failed += c.Failed
	}
	for _, p := range rep.Problems {
		sum.Problems = append(sum.Problems, p.Err.Error())
	}
	if err := printJSON(sum); err != nil {
		logger.Error("write summary", zap.Error(err))
	}

	if rep.MappingFileErr != nil {
		logger.Error("mapping file not written", zap.Error(rep.MappingFileErr))
		return 1
	}
	if failed > 0 || !sum.Balanced {
		return 1
	}
	return 0
}

func runVerify(ctx context.Context, deps bootstrap.DBDeps, logger *zap.Logger) int {
	rep, err := verify.New(deps.MongoDatabase, logger).Run(ctx)
	if rep != nil {
		if perr := printJSON(rep); perr != nil {
			logger.Error("write report", zap.Error(perr))
		}
	}
	if err != nil {
		logger.Error("verification aborted", zap.Error(err))
		return 1
	}
	if !rep.Passed {
		for _, c := range rep.Failed() {
			logger.Warn("check failed", zap.String("name", c.Name), zap.String("kind", c.Kind), zap.String("detail", c.Detail))
		}
		return 1
	}
	return 0
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
