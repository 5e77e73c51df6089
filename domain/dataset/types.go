// Package dataset models the session-local table an analyst works against:
// one date column plus arbitrary numeric columns for channels, controls and
// targets. Tables live in process memory for the session's duration and are
// read-only during a computation pass.
package dataset

import (
	"fmt"
	"strings"
)

// DateLayout is the canonical date rendering for all tables.
const DateLayout = "2006-01-02"

// Row is one dated observation: the normalized date plus a value per column.
type Row struct {
	Date   string             `json:"date"`
	Values map[string]float64 `json:"values"`
}

// Table is an in-memory dataset. Columns lists the numeric columns in header
// order; the date column is kept separate.
type Table struct {
	Name       string   `json:"name"`
	DateColumn string   `json:"date_column"`
	Columns    []string `json:"columns"`
	Rows       []Row    `json:"rows"`
}

// Roles partitions the numeric columns into the three disjoint selections
// the screens work with.
type Roles struct {
	Features []string `json:"features"`
	Controls []string `json:"controls"`
	Targets  []string `json:"targets"`
}

// DetectDateColumn returns the first header naming a date column: any header
// containing "date" (case-insensitive) or the CJK "日期".
func DetectDateColumn(headers []string) (string, bool) {
	for _, h := range headers {
		if strings.Contains(strings.ToLower(h), "date") || strings.Contains(h, "日期") {
			return h, true
		}
	}
	return "", false
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// DateBounds returns the minimum and maximum row dates. Dates are normalized
// to DateLayout so lexicographic comparison is chronological.
func (t *Table) DateBounds() (min, max string) {
	for _, row := range t.Rows {
		if min == "" || row.Date < min {
			min = row.Date
		}
		if row.Date > max {
			max = row.Date
		}
	}
	return min, max
}

// DefaultRangeKey marks an unfiltered table.
const DefaultRangeKey = "default"

// FilterByDateRange returns the rows inside [from, to] inclusive and the
// range key identifying the filter for seed derivation. Empty bounds mean no
// filtering and the default key.
func (t *Table) FilterByDateRange(from, to string) (*Table, string) {
	if from == "" || to == "" {
		return t, DefaultRangeKey
	}

	filtered := &Table{
		Name:       t.Name,
		DateColumn: t.DateColumn,
		Columns:    t.Columns,
	}
	for _, row := range t.Rows {
		if row.Date >= from && row.Date <= to {
			filtered.Rows = append(filtered.Rows, row)
		}
	}
	return filtered, fmt.Sprintf("%s_%s", from, to)
}

// Column returns all values of one column in row order.
func (t *Table) Column(name string) []float64 {
	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v, ok := row.Values[name]; ok {
			values = append(values, v)
		}
	}
	return values
}

// HasColumn reports whether name is one of the numeric columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Validate checks that every role references an existing column and that the
// three selections are disjoint.
func (r Roles) Validate(t *Table) error {
	seen := make(map[string]string)
	check := func(role string, names []string) error {
		for _, name := range names {
			if !t.HasColumn(name) {
				return fmt.Errorf("%s column %q not in table", role, name)
			}
			if prev, dup := seen[name]; dup {
				return fmt.Errorf("column %q selected as both %s and %s", name, prev, role)
			}
			seen[name] = role
		}
		return nil
	}

	if err := check("feature", r.Features); err != nil {
		return err
	}
	if err := check("control", r.Controls); err != nil {
		return err
	}
	return check("target", r.Targets)
}
