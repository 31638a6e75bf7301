// Package glooko reads Glooko export archives: a ZIP of CSV files, one
// family per data kind (cgm_data, bg_data, bolus_data, basal_data).
package glooko

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/iricigor/glooko-analytics/internal/glucose"
	"github.com/iricigor/glooko-analytics/internal/insulin"
	"go.uber.org/zap"
)

// ErrNoData is returned when an archive holds none of the known CSV files.
var ErrNoData = errors.New("no glooko data files in archive")

type fileKind int

const (
	kindUnknown fileKind = iota
	kindCGM
	kindBG
	kindBolus
	kindBasal
)

var kindPrefixes = []struct {
	prefix string
	kind   fileKind
}{
	{"cgm_data", kindCGM},
	{"bg_data", kindBG},
	{"bolus_data", kindBolus},
	{"basal_data", kindBasal},
}

func classify(name string) fileKind {
	base := strings.ToLower(path.Base(name))
	if !strings.HasSuffix(base, ".csv") {
		return kindUnknown
	}
	for _, p := range kindPrefixes {
		if strings.HasPrefix(base, p.prefix) {
			return p.kind
		}
	}
	return kindUnknown
}

// Data is the content of one export.
type Data struct {
	Glucose []glucose.Reading
	Insulin []insulin.Dose
	// Files lists the archive entries that were read.
	Files []string
	// Skipped counts rows that could not be parsed.
	Skipped int
}

// Extractor parses exports. Timestamps carry no zone in the CSV files and
// are interpreted in Location.
type Extractor struct {
	Location *time.Location
	Logger   *zap.Logger
}

// NewExtractor creates an extractor. A nil location means time.Local and
// a nil logger disables logging.
func NewExtractor(loc *time.Location, logger *zap.Logger) *Extractor {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{Location: loc, Logger: logger}
}

// ExtractFile reads the archive at path.
func (e *Extractor) ExtractFile(name string) (*Data, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	return e.extract(&zr.Reader)
}

// Extract reads an archive from r.
func (e *Extractor) Extract(r io.ReaderAt, size int64) (*Data, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return e.extract(zr)
}

func (e *Extractor) extract(zr *zip.Reader) (*Data, error) {
	data := &Data{}
	for _, f := range zr.File {
		kind := classify(f.Name)
		if kind == kindUnknown || f.FileInfo().IsDir() {
			continue
		}

		if err := e.readEntry(f, kind, data); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
		data.Files = append(data.Files, f.Name)
	}

	if len(data.Files) == 0 {
		return nil, ErrNoData
	}

	data.Glucose = glucose.Sorted(data.Glucose)
	slices.SortStableFunc(data.Insulin, func(a, b insulin.Dose) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	e.Logger.Info("extracted glooko export",
		zap.Int("files", len(data.Files)),
		zap.Int("glucose", len(data.Glucose)),
		zap.Int("insulin", len(data.Insulin)),
		zap.Int("skipped", data.Skipped))
	return data, nil
}

func (e *Extractor) readEntry(f *zip.File, kind fileKind, data *Data) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	tbl, err := readTable(rc)
	if err != nil {
		return err
	}
	if tbl == nil {
		e.Logger.Warn("no header row", zap.String("file", f.Name))
		return nil
	}

	p := rowParser{loc: e.Location, file: f.Name, log: e.Logger}
	switch kind {
	case kindCGM, kindBG:
		readings, skipped, err := p.glucose(tbl)
		if err != nil {
			return err
		}
		data.Glucose = append(data.Glucose, readings...)
		data.Skipped += skipped
	case kindBolus:
		doses, skipped, err := p.bolus(tbl)
		if err != nil {
			return err
		}
		data.Insulin = append(data.Insulin, doses...)
		data.Skipped += skipped
	case kindBasal:
		doses, skipped, err := p.basal(tbl)
		if err != nil {
			return err
		}
		data.Insulin = append(data.Insulin, doses...)
		data.Skipped += skipped
	}
	return nil
}
