package trace

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vr-oj/VasoAnalyzer-sub000/pkg/label"
)

// LoadCSV reads a comma-separated trace file whose first row names the
// columns. The time column is the one named "time" (or the first column when
// none is); every other column becomes a series keyed by its normalized
// header. No delimiter sniffing is attempted.
func LoadCSV(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read trace file: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("trace file %s has no data rows", path)
	}

	header := rows[0]
	timeCol := 0
	for i, name := range header {
		if normalizeKey(name) == "time" {
			timeCol = i
			break
		}
	}

	cols := make([][]float64, len(header))
	vals := make([]float64, len(header))
	for _, row := range rows[1:] {
		if len(row) < len(header) {
			continue
		}
		ok := true
		for i := range header {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			// Rows with any non-numeric cell (units rows, blanks) are
			// dropped whole so every column stays aligned with time.
			continue
		}
		for i := range header {
			cols[i] = append(cols[i], vals[i])
		}
	}

	store := NewStore()
	for i, name := range header {
		if i == timeCol {
			continue
		}
		key := normalizeKey(name)
		if key == "" {
			continue
		}
		store.Put(key, cols[timeCol], cols[i])
	}
	return store, nil
}

// LoadEventsCSV reads an event table with columns
// time,label[,category,priority,pinned]. The header row is optional.
func LoadEventsCSV(path string) ([]label.EventEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read event file: %w", err)
	}

	var events []label.EventEntry
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			// Header or malformed row.
			continue
		}
		e := label.EventEntry{
			Time:  t,
			Text:  strings.TrimSpace(row[1]),
			Index: len(events),
		}
		if len(row) > 2 {
			e.Category = normalizeKey(row[2])
		}
		if len(row) > 3 {
			if p, err := strconv.Atoi(strings.TrimSpace(row[3])); err == nil && p > 0 {
				e.Priority = p
			}
		}
		if len(row) > 4 {
			e.Pinned = parseBool(row[4])
		}
		events = append(events, e)
	}
	return events, nil
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}
