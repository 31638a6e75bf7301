package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iricigor/glooko-analytics/internal/config"
	"github.com/iricigor/glooko-analytics/internal/glooko"
	"github.com/iricigor/glooko-analytics/internal/glucose"
	"github.com/iricigor/glooko-analytics/internal/insulin"
	"github.com/iricigor/glooko-analytics/internal/report"
	"github.com/iricigor/glooko-analytics/internal/storage"
	"go.uber.org/zap"
)

var (
	allTime = time.Time{}
	endTime = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

func (a *app) options() report.Options {
	return report.Options{
		Thresholds:      a.cfg.Thresholds(),
		Mode:            a.cfg.Mode(),
		InsulinDuration: a.cfg.InsulinDuration,
		IOBInterval:     a.cfg.IOBInterval,
		Smooth:          a.cfg.Smooth,
		Location:        a.loc,
	}
}

func (a *app) extractor() *glooko.Extractor {
	return glooko.NewExtractor(a.loc, a.log)
}

// loadData reads the given archive, or everything in the database when
// path is empty.
func (a *app) loadData(ctx context.Context, path string) ([]glucose.Reading, []insulin.Dose, error) {
	if path != "" {
		data, err := a.extractor().ExtractFile(path)
		if err != nil {
			return nil, nil, err
		}
		return data.Glucose, data.Insulin, nil
	}

	readings, err := a.store.QueryGlucose(ctx, allTime, endTime)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load glucose: %w", err)
	}
	doses, err := a.store.QueryInsulin(ctx, allTime, endTime)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load insulin: %w", err)
	}
	if len(readings) == 0 && len(doses) == 0 {
		return nil, nil, fmt.Errorf("database is empty, run 'glooko import <zip>' first")
	}
	return readings, doses, nil
}

func (a *app) buildReport(ctx context.Context, path string) (*report.Report, error) {
	readings, doses, err := a.loadData(ctx, path)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	r, err := report.Build(ctx, readings, doses, a.options())
	if err != nil {
		return nil, err
	}
	a.log.Debug("report built",
		zap.Int("readings", len(readings)),
		zap.Int("doses", len(doses)),
		zap.Int("days", len(r.Days)),
		zap.Duration("took", time.Since(start)))
	return r, nil
}

func (a *app) importArchive(ctx context.Context, path string) error {
	fmt.Printf("Importing %s...\n", path)

	data, err := a.extractor().ExtractFile(path)
	if err != nil {
		return err
	}

	imp := storage.NewImport(filepath.Base(path))
	imp.Skipped = data.Skipped
	if err := a.store.SaveImport(ctx, imp, data.Glucose, data.Insulin); err != nil {
		return err
	}

	fmt.Printf("Imported %d glucose readings and %d insulin records from %d file(s).\n",
		imp.GlucoseCount, imp.InsulinCount, len(data.Files))
	if imp.Skipped > 0 {
		fmt.Printf("Skipped %d unreadable row(s).\n", imp.Skipped)
	}
	fmt.Printf("Import ID: %s\n", imp.ID)
	return nil
}

func (a *app) listImports(ctx context.Context) error {
	imports, err := a.store.GetImports(ctx)
	if err != nil {
		return err
	}
	if len(imports) == 0 {
		fmt.Println("No imports yet.")
		return nil
	}

	fmt.Printf("%-36s  %-16s  %7s  %7s  %s\n", "ID", "Imported", "Glucose", "Insulin", "Source")
	for _, imp := range imports {
		fmt.Printf("%-36s  %-16s  %7d  %7d  %s\n",
			imp.ID, imp.ImportedAt.In(a.loc).Format("2006-01-02 15:04"),
			imp.GlucoseCount, imp.InsulinCount, imp.Source)
	}
	return nil
}

func (a *app) deleteImport(ctx context.Context, id string) error {
	if err := a.store.DeleteImport(ctx, id); err != nil {
		if storage.IsNotFound(err) {
			return fmt.Errorf("no import with ID %s", id)
		}
		return err
	}
	fmt.Printf("Deleted import %s\n", id)
	return nil
}

func (a *app) showReport(ctx context.Context, path string) error {
	r, err := a.buildReport(ctx, path)
	if err != nil {
		return err
	}
	printReport(os.Stdout, r, a.cfg.DisplayUnit())
	return nil
}

func (a *app) showHypos(ctx context.Context, path string) error {
	r, err := a.buildReport(ctx, path)
	if err != nil {
		return err
	}
	printHypoEvents(os.Stdout, r, a.cfg.DisplayUnit())
	return nil
}

func (a *app) showIOB(ctx context.Context, date, path string) error {
	day, err := time.ParseInLocation("2006-01-02", date, a.loc)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	_, doses, err := a.loadData(ctx, path)
	if err != nil {
		return err
	}

	points := insulin.Daily(doses, day, a.cfg.InsulinDuration, a.cfg.IOBInterval)
	printIOB(os.Stdout, date, points, a.loc)
	return nil
}

func (a *app) showAGP(ctx context.Context, path string) error {
	r, err := a.buildReport(ctx, path)
	if err != nil {
		return err
	}
	printAGP(os.Stdout, r.AGP, a.cfg.DisplayUnit())
	return nil
}

func (a *app) export(ctx context.Context, dir, path string) error {
	r, err := a.buildReport(ctx, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	unit := a.cfg.DisplayUnit()
	files := []struct {
		name  string
		write func(f *os.File) error
	}{
		{"report.json", func(f *os.File) error { return report.WriteJSON(f, r) }},
		{"daily.csv", func(f *os.File) error { return report.WriteDailyCSV(f, r, unit) }},
		{"hypo_events.csv", func(f *os.File) error { return report.WriteHypoEventsCSV(f, r.HypoEvents, unit) }},
	}
	for _, file := range files {
		target := filepath.Join(dir, file.name)
		if err := writeFile(target, file.write); err != nil {
			return err
		}
		a.log.Info("exported", zap.String("file", target))
		fmt.Printf("Wrote %s\n", target)
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func (a *app) settings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		stored, err := a.store.GetSettings(ctx)
		if err != nil {
			return err
		}
		printSettings(os.Stdout, stored)
		return nil
	}

	switch args[0] {
	case "set":
		if len(args) < 3 {
			return usageError("key and value required", "glooko settings set <key> <value>")
		}
		key, value := strings.ToLower(args[1]), args[2]
		if !config.IsSettingKey(key) {
			return fmt.Errorf("unknown setting %q (known: %v)", key, config.SettingKeys())
		}
		candidate := *a.cfg
		if err := candidate.ApplyOverrides(map[string]string{key: value}); err != nil {
			return err
		}
		if err := a.store.SetSetting(ctx, key, value); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", key, value)
	case "unset":
		if len(args) < 2 {
			return usageError("key required", "glooko settings unset <key>")
		}
		key := strings.ToLower(args[1])
		if err := a.store.DeleteSetting(ctx, key); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", key)
	default:
		return fmt.Errorf("unknown settings action %q", args[0])
	}
	return nil
}

func (a *app) showConfig(args []string) error {
	if len(args) > 0 && args[0] == "env" {
		return config.Usage()
	}
	printConfig(os.Stdout, a.cfg)
	return nil
}
