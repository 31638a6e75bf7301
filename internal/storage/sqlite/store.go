// Package sqlite provides a SQLite implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iricigor/glooko-analytics/internal/glucose"
	"github.com/iricigor/glooko-analytics/internal/insulin"
	"github.com/iricigor/glooko-analytics/internal/storage"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// Store is a SQLite implementation of storage.Store. Instants read back
// from the database are expressed in the store's location.
type Store struct {
	db  *sql.DB
	loc *time.Location
	log *zap.Logger
}

// NewMemoryStore creates an in-memory SQLite store.
func NewMemoryStore(loc *time.Location, logger *zap.Logger) (*Store, error) {
	return newStore(":memory:", loc, logger)
}

// NewFileStore creates a file-based SQLite store.
func NewFileStore(path string, loc *time.Location, logger *zap.Logger) (*Store, error) {
	return newStore(path, loc, logger)
}

func newStore(dsn string, loc *time.Location, logger *zap.Logger) (*Store, error) {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, loc: loc, log: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).In(s.loc)
}

// Import methods

func (s *Store) SaveImport(ctx context.Context, imp *storage.Import, readings []glucose.Reading, doses []insulin.Dose) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	imp.GlucoseCount = len(readings)
	imp.InsulinCount = len(doses)

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO imports (id, source, glucose_count, insulin_count, skipped, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, imp.ID, imp.Source, imp.GlucoseCount, imp.InsulinCount, imp.Skipped, imp.ImportedAt); err != nil {
		return fmt.Errorf("failed to save import: %w", err)
	}

	readingStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO glucose_readings (import_id, timestamp_ms, value)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer readingStmt.Close()

	for _, r := range readings {
		if _, err := readingStmt.ExecContext(ctx, imp.ID, r.Timestamp.UnixMilli(), r.Value); err != nil {
			return fmt.Errorf("failed to save reading: %w", err)
		}
	}

	doseStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO insulin_doses (import_id, timestamp_ms, units, type)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer doseStmt.Close()

	for _, d := range doses {
		if _, err := doseStmt.ExecContext(ctx, imp.ID, d.Timestamp.UnixMilli(), d.Units, string(d.Type)); err != nil {
			return fmt.Errorf("failed to save dose: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.log.Info("import saved",
		zap.String("id", imp.ID),
		zap.String("source", imp.Source),
		zap.Int("glucose", imp.GlucoseCount),
		zap.Int("insulin", imp.InsulinCount))
	return nil
}

const importColumns = "id, source, glucose_count, insulin_count, skipped, imported_at"

func scanImport(row interface{ Scan(...any) error }) (*storage.Import, error) {
	var imp storage.Import
	err := row.Scan(&imp.ID, &imp.Source, &imp.GlucoseCount, &imp.InsulinCount, &imp.Skipped, &imp.ImportedAt)
	if err != nil {
		return nil, err
	}
	return &imp, nil
}

func (s *Store) GetImport(ctx context.Context, id string) (*storage.Import, error) {
	imp, err := scanImport(s.db.QueryRowContext(ctx,
		"SELECT "+importColumns+" FROM imports WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Resource: "import", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return imp, nil
}

func (s *Store) GetImports(ctx context.Context) ([]*storage.Import, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+importColumns+" FROM imports ORDER BY imported_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imports []*storage.Import
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}

// DeleteImport removes an import together with its readings and doses.
func (s *Store) DeleteImport(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM imports WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound{Resource: "import", ID: id}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM glucose_readings WHERE import_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM insulin_doses WHERE import_id = ?", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("import deleted", zap.String("id", id))
	return nil
}

// Time series methods

func (s *Store) QueryGlucose(ctx context.Context, since, until time.Time) ([]glucose.Reading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp_ms, value FROM glucose_readings
		WHERE timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`, since.UnixMilli(), until.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []glucose.Reading
	for rows.Next() {
		var ms int64
		var r glucose.Reading
		if err := rows.Scan(&ms, &r.Value); err != nil {
			return nil, err
		}
		r.Timestamp = s.fromMillis(ms)
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

func (s *Store) QueryInsulin(ctx context.Context, since, until time.Time) ([]insulin.Dose, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp_ms, units, type FROM insulin_doses
		WHERE timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, type ASC
	`, since.UnixMilli(), until.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doses []insulin.Dose
	for rows.Next() {
		var ms int64
		var typ string
		var d insulin.Dose
		if err := rows.Scan(&ms, &d.Units, &typ); err != nil {
			return nil, err
		}
		if d.Type, err = insulin.ParseType(typ); err != nil {
			return nil, fmt.Errorf("failed to read dose: %w", err)
		}
		d.Timestamp = s.fromMillis(ms)
		doses = append(doses, d)
	}
	return doses, rows.Err()
}

// Settings methods

func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", storage.ErrNotFound{Resource: "setting", ID: key}
	}
	return value, err
}

func (s *Store) GetSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
	`, key, value, time.Now())
	return err
}

func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key)
	return err
}

// Verify interface compliance
var _ storage.Store = (*Store)(nil)
