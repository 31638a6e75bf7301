// Package storage provides storage abstractions for imported glucose and
// insulin data.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/iricigor/glooko-analytics/internal/glucose"
	"github.com/iricigor/glooko-analytics/internal/insulin"
)

// Store is the interface for persistent storage.
type Store interface {
	// Imports. Saving an import stores its readings and doses with it;
	// a reading at an already stored instant replaces the old one.
	SaveImport(ctx context.Context, imp *Import, readings []glucose.Reading, doses []insulin.Dose) error
	GetImport(ctx context.Context, id string) (*Import, error)
	GetImports(ctx context.Context) ([]*Import, error)
	DeleteImport(ctx context.Context, id string) error

	// Time series, chronologically sorted, both bounds inclusive.
	QueryGlucose(ctx context.Context, since, until time.Time) ([]glucose.Reading, error)
	QueryInsulin(ctx context.Context, since, until time.Time) ([]insulin.Dose, error)

	// Settings overrides
	GetSetting(ctx context.Context, key string) (string, error)
	GetSettings(ctx context.Context) (map[string]string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error

	// Lifecycle
	Close() error
}

// Import records one ingested export file.
type Import struct {
	ID           string
	Source       string
	GlucoseCount int
	InsulinCount int
	Skipped      int
	ImportedAt   time.Time
}

// NewImport creates an import record with a fresh ID.
func NewImport(source string) *Import {
	return &Import{
		ID:         uuid.NewString(),
		Source:     source,
		ImportedAt: time.Now(),
	}
}

// ErrNotFound is returned when a record is not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e ErrNotFound) Error() string {
	return e.Resource + " not found: " + e.ID
}

// IsNotFound checks if an error is, or wraps, a not found error.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}
