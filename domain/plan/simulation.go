// Package plan generates the recommended-spend tables behind the future
// simulation and optimal allocation screens. Like the effect sampler, the
// rows are seeded pseudo-random: the same configuration always reproduces
// the same table, and the seeds deliberately exclude the selected targets so
// switching targets re-ranks rows without regenerating them.
package plan

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"amaa/domain/core"
	"amaa/domain/dataset"
	"amaa/ports"
)

// CostRange bounds one feature's spend in the simulation.
type CostRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SpendSimulationConfig configures the future-simulation table.
type SpendSimulationConfig struct {
	Granularity      dataset.Granularity
	Harvest          int
	Features         []string
	CostRanges       map[string]CostRange
	Targets          []string
	AvailableColumns []string
	Stats            map[string]dataset.ColumnStats
	MaxBudget        float64
	Rows             int
}

// SpendRow is one recommended spend combination across all available columns.
type SpendRow struct {
	Values     map[string]float64 `json:"values"`
	TotalSpend float64            `json:"total_spend"`
}

// GaugeReading drives one target gauge: the top row's value against the
// column's historical range and mean.
type GaugeReading struct {
	Target         string  `json:"target"`
	Value          float64 `json:"value"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	Mean           float64 `json:"mean"`
	ImprovementPct float64 `json:"improvement_pct"`
	AboveMean      bool    `json:"above_mean"`
}

// SpendSimulation is the full result for the future-simulation screen.
type SpendSimulation struct {
	Rows          []SpendRow     `json:"rows"`
	Gauges        []GaugeReading `json:"gauges"`
	MaxRowSpend   float64        `json:"max_row_spend"`
	BudgetWarning string         `json:"budget_warning,omitempty"`
}

const defaultSimulationRows = 5

// Simulator generates both plan tables.
type Simulator struct {
	rng ports.RNG
}

// NewSimulator creates a simulator over the given RNG port.
func NewSimulator(rng ports.RNG) *Simulator {
	return &Simulator{rng: rng}
}

// SpendSimulation generates the recommended spend rows. Every available
// column is drawn uniformly from [0, historical max]; the selected features
// are then overridden by draws inside their configured cost ranges. Rows are
// sorted by the mean of the selected targets, descending, and the gauges read
// off the top row so the dashboard and the table never disagree.
//
// A max row spend above the budget produces a warning on the result, never an
// error: the data still displays.
func (s *Simulator) SpendSimulation(cfg SpendSimulationConfig) (*SpendSimulation, error) {
	if len(cfg.Features) == 0 {
		return nil, core.NewEmptySelectionError("no spend channels selected")
	}
	if len(cfg.Targets) == 0 {
		return nil, core.NewEmptySelectionError("no harvest targets selected")
	}

	rows := cfg.Rows
	if rows <= 0 {
		rows = defaultSimulationRows
	}

	// The seed covers everything except the targets, so target switches only
	// re-rank existing rows.
	seed := core.SeedFromParts(
		string(cfg.Granularity),
		strconv.Itoa(cfg.Harvest),
		core.CanonicalSet(cfg.Features),
		canonicalCostRanges(cfg.CostRanges),
	)
	stream := s.rng.Stream("spend-simulation", seed)

	result := &SpendSimulation{Rows: make([]SpendRow, 0, rows)}
	for i := 0; i < rows; i++ {
		row := SpendRow{Values: make(map[string]float64, len(cfg.AvailableColumns))}
		for _, column := range cfg.AvailableColumns {
			row.Values[column] = uniform(stream, 0, cfg.Stats[column].Max)
		}
		for _, feature := range cfg.Features {
			cr := cfg.CostRanges[feature]
			row.Values[feature] = uniform(stream, cr.Min, cr.Max)
		}
		for _, feature := range cfg.Features {
			row.TotalSpend += row.Values[feature]
		}
		result.Rows = append(result.Rows, row)
	}

	sort.SliceStable(result.Rows, func(i, j int) bool {
		return targetMean(result.Rows[i], cfg.Targets) > targetMean(result.Rows[j], cfg.Targets)
	})

	for _, row := range result.Rows {
		if row.TotalSpend > result.MaxRowSpend {
			result.MaxRowSpend = row.TotalSpend
		}
	}
	if result.MaxRowSpend > cfg.MaxBudget {
		result.BudgetWarning = fmt.Sprintf(
			"max row spend %.2f exceeds budget %.2f", result.MaxRowSpend, cfg.MaxBudget)
	}

	top := result.Rows[0]
	for _, target := range cfg.Targets {
		st := cfg.Stats[target]
		value := top.Values[target]
		reading := GaugeReading{
			Target:    target,
			Value:     value,
			Min:       st.Min,
			Max:       st.Max,
			Mean:      st.Mean,
			AboveMean: value >= st.Mean,
		}
		if st.Mean != 0 {
			reading.ImprovementPct = (value - st.Mean) / st.Mean * 100
		}
		result.Gauges = append(result.Gauges, reading)
	}

	return result, nil
}

// ReferenceBudget is the suggested budget default: the sum of the selected
// features' historical mean spend.
func ReferenceBudget(features []string, stats map[string]dataset.ColumnStats) float64 {
	var total float64
	for _, feature := range features {
		total += stats[feature].Mean
	}
	return total
}

// canonicalCostRanges renders the range map stably for seed derivation.
func canonicalCostRanges(ranges map[string]CostRange) string {
	keys := make([]string, 0, len(ranges))
	for k := range ranges {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%.4f..%.4f;", k, ranges[k].Min, ranges[k].Max)
	}
	return b.String()
}

func targetMean(row SpendRow, targets []string) float64 {
	if len(targets) == 0 {
		return 0
	}
	var sum float64
	for _, t := range targets {
		sum += row.Values[t]
	}
	return sum / float64(len(targets))
}

func uniform(r *rand.Rand, min, max float64) float64 {
	return min + r.Float64()*(max-min)
}
