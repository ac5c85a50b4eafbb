// Command storehouse-data exports, imports, seeds or clears the Storehouse
// database without going through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/noah-isme/storehouse-api/internal/app"
	"github.com/noah-isme/storehouse-api/internal/service"
	"github.com/noah-isme/storehouse-api/pkg/config"
	"github.com/noah-isme/storehouse-api/pkg/database"
	"github.com/noah-isme/storehouse-api/pkg/logger"
)

const usage = `usage: storehouse-data <command> [args]

commands:
  export <file>   write the full data set as JSON ("-" for stdout)
  import <file>   replace all data with a JSON export
  seed            add demo students and items to an empty database
  clear           delete every student, item and transaction (needs -yes)
`

func main() {
	yes := flag.Bool("yes", false, "confirm destructive commands")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr, flag.Args(), *yes); err != nil {
		logr.Error("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger, args []string, yes bool) error {
	cmd := args[0]
	switch cmd {
	case "export", "import":
		if len(args) < 2 {
			return fmt.Errorf("%s needs a file argument", cmd)
		}
	case "seed":
	case "clear":
		if !yes {
			return fmt.Errorf("clear deletes all data, rerun with -yes")
		}
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close() //nolint:errcheck
	if err := database.Migrate(ctx, db, logr); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	c := app.New(cfg, db, nil, nil, logr)

	switch cmd {
	case "export":
		return exportTo(ctx, c.Transfer, args[1])
	case "import":
		return importFrom(ctx, c.Transfer, logr, args[1])
	case "seed":
		result, err := c.Seed.Seed(ctx)
		if err != nil {
			return err
		}
		logr.Info("seed finished", zap.Bool("skipped", result.Skipped),
			zap.Int("students", result.Students), zap.Int("items", result.Items), zap.Int("awards", result.Awards))
		return nil
	default:
		if err := c.Transfer.Clear(ctx); err != nil {
			return err
		}
		logr.Info("all data cleared")
		return nil
	}
}

func exportTo(ctx context.Context, transfer *service.TransferService, path string) error {
	payload, err := transfer.Export(ctx)
	if err != nil {
		return err
	}
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	body = append(body, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(body)
		return err
	}
	return os.WriteFile(path, body, 0o600)
}

func importFrom(ctx context.Context, transfer *service.TransferService, logr *zap.Logger, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	payload, err := service.DecodeImport(raw)
	if err != nil {
		return err
	}
	result, err := transfer.Import(ctx, payload)
	if err != nil {
		return err
	}
	logr.Info("import finished",
		zap.Int("students", result.Students),
		zap.Int("items", result.Items),
		zap.Int("transactions", result.Transactions),
		zap.Bool("settings_kept", result.SettingsKept))
	return nil
}
