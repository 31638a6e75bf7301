// Package main is the entry point for the glooko analytics tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iricigor/glooko-analytics/internal/config"
	"github.com/iricigor/glooko-analytics/internal/logging"
	"github.com/iricigor/glooko-analytics/internal/storage/sqlite"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		showUsage()
		return
	}

	if os.Args[1] == "help" || os.Args[1] == "-h" || os.Args[1] == "--help" {
		showUsage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	args := os.Args[2:]
	switch os.Args[1] {
	case "import":
		if len(args) < 1 {
			err = usageError("ZIP file required", "glooko import <export.zip>")
			break
		}
		err = a.importArchive(ctx, args[0])
	case "imports":
		err = a.listImports(ctx)
	case "delete":
		if len(args) < 1 {
			err = usageError("import ID required", "glooko delete <id>")
			break
		}
		err = a.deleteImport(ctx, args[0])
	case "report":
		err = a.showReport(ctx, optionalArg(args, 0))
	case "hypos":
		err = a.showHypos(ctx, optionalArg(args, 0))
	case "iob":
		if len(args) < 1 {
			err = usageError("date required", "glooko iob <YYYY-MM-DD> [export.zip]")
			break
		}
		err = a.showIOB(ctx, args[0], optionalArg(args, 1))
	case "agp":
		err = a.showAGP(ctx, optionalArg(args, 0))
	case "export":
		if len(args) < 1 {
			err = usageError("output directory required", "glooko export <dir> [export.zip]")
			break
		}
		err = a.export(ctx, args[0], optionalArg(args, 1))
	case "settings":
		err = a.settings(ctx, args)
	case "config":
		err = a.showConfig(args)
	default:
		showUsage()
		return
	}

	if err != nil {
		a.log.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		a.close()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println("Glooko Analytics - glucose and insulin statistics from Glooko exports")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  glooko import <zip>              - Import a Glooko export into the database")
	fmt.Println("  glooko imports                   - List imports")
	fmt.Println("  glooko delete <id>               - Delete an import and its data")
	fmt.Println("  glooko report [zip]              - Time in range, variability and hypo summary")
	fmt.Println("  glooko hypos [zip]               - Hypoglycemia events with insulin context")
	fmt.Println("  glooko iob <YYYY-MM-DD> [zip]    - Insulin on board through one day")
	fmt.Println("  glooko agp [zip]                 - Ambulatory glucose profile")
	fmt.Println("  glooko export <dir> [zip]        - Write report.json, daily.csv and hypo_events.csv")
	fmt.Println("  glooko settings                  - List stored setting overrides")
	fmt.Println("  glooko settings set <key> <val>  - Store a setting override")
	fmt.Println("  glooko settings unset <key>      - Remove a setting override")
	fmt.Println("  glooko config [env]              - Show effective configuration (or variables)")
	fmt.Println()
	fmt.Println("Without a ZIP argument, data is read from the database.")
	fmt.Println("Configuration comes from GLOOKO_* environment variables or a .env file.")
}

// usageError reports missing arguments through the normal error path so
// the store is closed before exiting.
func usageError(msg, usage string) error {
	return fmt.Errorf("%s\nUsage: %s", msg, usage)
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// app holds what every command needs.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	store *sqlite.Store
	loc   *time.Location
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewFileStore(cfg.DBPath, loc, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.DBPath, err)
	}

	overrides, err := store.GetSettings(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		logger.Warn("ignoring stored settings", zap.Error(err))
	}
	if loc, err = cfg.Location(); err != nil {
		store.Close()
		return nil, err
	}

	logger.Debug("configuration loaded",
		zap.String("db", cfg.DBPath),
		zap.String("timezone", loc.String()),
		zap.Int("mode", cfg.CategoryMode))

	return &app{cfg: cfg, log: logger, store: store, loc: loc}, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	_ = a.log.Sync()
}
