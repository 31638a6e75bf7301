package glooko

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

const bom = "\ufeff"

// table is the part of a CSV file from the header row on.
type table struct {
	header []string
	rows   [][]string
}

// readTable skips the metadata lines Glooko puts above the header. It
// returns nil when no header row is found.
func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	for i, rec := range records {
		if len(rec) == 0 {
			continue
		}
		first := strings.TrimSpace(strings.TrimPrefix(rec[0], bom))
		if strings.HasPrefix(first, "Timestamp") {
			header := make([]string, len(rec))
			for j, h := range rec {
				header[j] = strings.TrimSpace(strings.TrimPrefix(h, bom))
			}
			return &table{header: header, rows: records[i+1:]}, nil
		}
	}
	return nil, nil
}

// column returns the index of the first header starting with prefix,
// ignoring case, or -1.
func (t *table) column(prefix string) int {
	prefix = strings.ToLower(prefix)
	for i, h := range t.header {
		if strings.HasPrefix(strings.ToLower(h), prefix) {
			return i
		}
	}
	return -1
}

// cell returns the trimmed field at index i, or "" if the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
