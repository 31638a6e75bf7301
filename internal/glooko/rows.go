package glooko

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/iricigor/glooko-analytics/internal/glucose"
	"github.com/iricigor/glooko-analytics/internal/insulin"
	"go.uber.org/zap"
)

var timestampLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
}

// ParseTimestamp parses a Glooko timestamp in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// parseNumber accepts a decimal point or comma and rejects NaN and Inf.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}

type rowParser struct {
	loc  *time.Location
	file string
	log  *zap.Logger
}

func (p rowParser) skip(line int, reason string, err error) {
	p.log.Debug("skipping row",
		zap.String("file", p.file),
		zap.Int("row", line),
		zap.String("reason", reason),
		zap.Error(err))
}

// glucoseUnit reads the unit from a header such as
// "CGM Glucose Value (mg/dl)". mmol/L is assumed when none is given.
func glucoseUnit(header string) glucose.Unit {
	if strings.Contains(strings.ToLower(header), "mg/dl") {
		return glucose.UnitMgdl
	}
	return glucose.UnitMmol
}

func (p rowParser) glucose(t *table) ([]glucose.Reading, int, error) {
	ts := t.column("Timestamp")
	val := t.column("CGM Glucose Value")
	if val < 0 {
		val = t.column("Glucose Value")
	}
	if val < 0 {
		return nil, 0, fmt.Errorf("missing glucose value column")
	}
	unit := glucoseUnit(t.header[val])

	var out []glucose.Reading
	skipped := 0
	for i, row := range t.rows {
		at, err := ParseTimestamp(cell(row, ts), p.loc)
		if err != nil {
			p.skip(i, "timestamp", err)
			skipped++
			continue
		}
		v, err := parseNumber(cell(row, val))
		if err != nil {
			p.skip(i, "glucose value", err)
			skipped++
			continue
		}
		out = append(out, glucose.Reading{Timestamp: at, Value: glucose.ToCanonical(v, unit)})
	}
	return out, skipped, nil
}

func (p rowParser) bolus(t *table) ([]insulin.Dose, int, error) {
	ts := t.column("Timestamp")
	delivered := t.column("Insulin Delivered")
	if delivered < 0 {
		return nil, 0, fmt.Errorf("missing insulin delivered column")
	}

	var out []insulin.Dose
	skipped := 0
	for i, row := range t.rows {
		at, err := ParseTimestamp(cell(row, ts), p.loc)
		if err != nil {
			p.skip(i, "timestamp", err)
			skipped++
			continue
		}
		units, err := parseNumber(cell(row, delivered))
		if err != nil {
			p.skip(i, "insulin delivered", err)
			skipped++
			continue
		}
		out = append(out, insulin.Dose{Timestamp: at, Units: units, Type: insulin.Bolus})
	}
	return out, skipped, nil
}

// basal uses the delivered amount when present, otherwise the scheduled
// rate (U/h) times the segment duration.
func (p rowParser) basal(t *table) ([]insulin.Dose, int, error) {
	ts := t.column("Timestamp")
	delivered := t.column("Insulin Delivered")
	rate := t.column("Rate")
	duration := t.column("Duration")
	if delivered < 0 && (rate < 0 || duration < 0) {
		return nil, 0, fmt.Errorf("missing basal amount columns")
	}

	var out []insulin.Dose
	skipped := 0
	for i, row := range t.rows {
		at, err := ParseTimestamp(cell(row, ts), p.loc)
		if err != nil {
			p.skip(i, "timestamp", err)
			skipped++
			continue
		}

		units, err := p.basalUnits(row, delivered, rate, duration)
		if err != nil {
			p.skip(i, "basal amount", err)
			skipped++
			continue
		}
		out = append(out, insulin.Dose{Timestamp: at, Units: units, Type: insulin.Basal})
	}
	return out, skipped, nil
}

func (p rowParser) basalUnits(row []string, delivered, rate, duration int) (float64, error) {
	if s := cell(row, delivered); s != "" {
		return parseNumber(s)
	}
	r, err := parseNumber(cell(row, rate))
	if err != nil {
		return 0, err
	}
	minutes, err := parseNumber(cell(row, duration))
	if err != nil {
		return 0, err
	}
	return r * minutes / 60, nil
}
