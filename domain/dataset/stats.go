package dataset

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// ColumnStats summarizes one numeric column over the session table.
type ColumnStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
	Q75    float64 `json:"q75"`
}

// Stats computes summary statistics for every numeric column. The date column
// is excluded by construction since it is not part of Columns.
func (t *Table) Stats() (map[string]ColumnStats, error) {
	if t.IsEmpty() {
		return nil, fmt.Errorf("cannot compute statistics on empty table")
	}

	result := make(map[string]ColumnStats, len(t.Columns))
	for _, column := range t.Columns {
		data := t.Column(column)
		if len(data) == 0 {
			continue
		}

		min, err := stats.Min(data)
		if err != nil {
			return nil, fmt.Errorf("min of %s: %w", column, err)
		}
		max, err := stats.Max(data)
		if err != nil {
			return nil, fmt.Errorf("max of %s: %w", column, err)
		}
		mean, err := stats.Mean(data)
		if err != nil {
			return nil, fmt.Errorf("mean of %s: %w", column, err)
		}
		stdDev, err := stats.StandardDeviation(data)
		if err != nil {
			return nil, fmt.Errorf("stddev of %s: %w", column, err)
		}
		q75, err := stats.Percentile(data, 75)
		if err != nil {
			// Percentile needs more than one sample; degrade to the value itself.
			q75 = data[0]
		}

		result[column] = ColumnStats{
			Min:    min,
			Max:    max,
			Mean:   mean,
			StdDev: stdDev,
			Q75:    q75,
		}
	}
	return result, nil
}
