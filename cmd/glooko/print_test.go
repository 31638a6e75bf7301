package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/iricigor/glooko-analytics/internal/agp"
	"github.com/iricigor/glooko-analytics/internal/glucose"
	"github.com/iricigor/glooko-analytics/internal/insulin"
	"github.com/iricigor/glooko-analytics/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestFormatGlucose(t *testing.T) {
	assert.Equal(t, "5.5 mmol/L", formatGlucose(5.5, glucose.UnitMmol))
	assert.Equal(t, "99 mg/dL", formatGlucose(5.5, glucose.UnitMgdl))
	assert.Equal(t, "-", formatOptionalGlucose(nil, glucose.UnitMmol))
}

func TestAGPBar(t *testing.T) {
	bar := agpBar(agp.Slot{P10: ptr(4), P25: ptr(5), P50: ptr(6), P75: ptr(7), P90: ptr(8)})

	runes := []rune(bar)
	require.Len(t, runes, chartWidth)
	assert.Equal(t, '░', runes[10])
	assert.Equal(t, '▓', runes[12])
	assert.Equal(t, '█', runes[15])
	assert.Equal(t, ' ', runes[0])
	assert.Equal(t, ' ', runes[30])
}

func TestAGPBarClampsOutOfScale(t *testing.T) {
	bar := agpBar(agp.Slot{P10: ptr(-1), P25: ptr(18), P50: ptr(25), P75: ptr(30), P90: ptr(40)})

	runes := []rune(bar)
	require.Len(t, runes, chartWidth)
	assert.Equal(t, '█', runes[chartWidth-1])
}

func TestPrintIOB(t *testing.T) {
	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	points := insulin.Daily(nil, day, 5*time.Hour, time.Hour)

	var buf bytes.Buffer
	printIOB(&buf, "2025-01-06", points, time.UTC)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2+25)
	assert.Contains(t, lines[2], "00:00")
	assert.Contains(t, lines[len(lines)-1], "24:00")
}

func TestIOBLabel(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"ordinary day", time.Date(2025, 6, 1, 0, 0, 0, 0, ny), "24:00"},
		{"spring forward", time.Date(2025, 3, 9, 0, 0, 0, 0, ny), "01:00+1"},
		{"fall back", time.Date(2025, 11, 2, 0, 0, 0, 0, ny), "23:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := insulin.Daily(nil, tt.date, 5*time.Hour, time.Hour)
			first, last := points[0].Time.In(ny), points[len(points)-1].Time.In(ny)
			assert.Equal(t, "00:00", iobLabel(first, first))
			assert.Equal(t, tt.want, iobLabel(last, first))
		})
	}
}

func TestPrintAGPScaleFollowsUnit(t *testing.T) {
	slots := agp.Compute(nil)

	var buf bytes.Buffer
	printAGP(&buf, slots, glucose.UnitMmol)
	assert.Contains(t, buf.String(), "0 .. 20.0 mmol/L")

	buf.Reset()
	printAGP(&buf, slots, glucose.UnitMgdl)
	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Contains(t, header, "0 .. 360 mg/dL")
	assert.NotContains(t, header, "mmol/L")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &report.Report{}, glucose.UnitMmol)
	assert.Equal(t, "No glucose readings.\n", buf.String())

	start := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	readings := []glucose.Reading{
		{Timestamp: start, Value: 6},
		{Timestamp: start.Add(5 * time.Minute), Value: 3.2},
		{Timestamp: start.Add(10 * time.Minute), Value: 6},
	}
	opts := report.DefaultOptions()
	opts.Location = time.UTC
	r, err := report.Build(context.Background(), readings, nil, opts)
	require.NoError(t, err)

	buf.Reset()
	printReport(&buf, r, glucose.UnitMmol)
	out := buf.String()
	assert.Contains(t, out, "Readings: 3")
	assert.Contains(t, out, "Hypoglycemia: 1 event(s), 0 severe")
	assert.Contains(t, out, "Jan 6-12")

	buf.Reset()
	printHypoEvents(&buf, r, glucose.UnitMgdl)
	assert.Contains(t, buf.String(), "E-001")
	assert.Contains(t, buf.String(), "nadir 58 mg/dL")
}
