// Package testkit generates the bundled demo dataset: one quarter of daily
// channel spend and outcome columns, seeded so every run produces the same
// table. A fresh session starts on this data until the analyst uploads their
// own.
package testkit

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"amaa/domain/dataset"
)

// DemoConfig controls the generated demo dataset.
type DemoConfig struct {
	StartDate time.Time
	EndDate   time.Time
	Seed      int64
}

// DefaultDemoConfig covers 2024 Q1 with a fixed seed.
func DefaultDemoConfig() DemoConfig {
	return DemoConfig{
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Seed:      42,
	}
}

// demoColumn describes one generated column as a half-open draw range.
type demoColumn struct {
	name     string
	min, max float64
	integer  bool
}

// Channel spend first, outcome metrics last, so the default role selection
// (first columns as features, last as targets) lines up.
var demoColumns = []demoColumn{
	{name: "tiktok_koc", min: 1000, max: 5000, integer: true},
	{name: "tiktok_kol", min: 800, max: 4000, integer: true},
	{name: "weibo_koc", min: 600, max: 3000, integer: true},
	{name: "weibo_kol", min: 500, max: 2500, integer: true},
	{name: "new_users", min: 50, max: 300, integer: true},
	{name: "conversion_rate", min: 0.01, max: 0.05},
	{name: "sales", min: 5000, max: 20000, integer: true},
}

// GenerateDemoTable builds the demo table deterministically from the config.
func GenerateDemoTable(cfg DemoConfig) *dataset.Table {
	rng := rand.New(rand.NewSource(cfg.Seed))

	table := &dataset.Table{
		Name:       "demo",
		DateColumn: "date",
	}
	for _, col := range demoColumns {
		table.Columns = append(table.Columns, col.name)
	}

	for day := cfg.StartDate; !day.After(cfg.EndDate); day = day.AddDate(0, 0, 1) {
		row := dataset.Row{
			Date:   day.Format(dataset.DateLayout),
			Values: make(map[string]float64, len(demoColumns)),
		}
		for _, col := range demoColumns {
			v := col.min + rng.Float64()*(col.max-col.min)
			if col.integer {
				v = float64(int64(v))
			}
			row.Values[col.name] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// WriteCSV persists a table for use as the bundled demo file.
func WriteCSV(t *dataset.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{t.DateColumn}, t.Columns...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range t.Rows {
		record := make([]string, 0, len(header))
		record = append(record, row.Date)
		for _, col := range t.Columns {
			record = append(record, formatValue(row.Values[col]))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
