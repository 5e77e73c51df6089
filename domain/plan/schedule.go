package plan

import (
	"fmt"
	"strconv"

	"amaa/domain/core"
	"amaa/domain/dataset"
)

// ScheduleConfig configures the optimal allocation schedule.
type ScheduleConfig struct {
	Granularity dataset.Granularity
	Harvest     int
	Targets     []string
	Features    []string
	Stats       map[string]dataset.ColumnStats
	GlobalLimit float64
}

// ScheduleRow is one period's recommended allocation plus target forecasts.
type ScheduleRow struct {
	Period     int                `json:"period"`
	Label      string             `json:"label"`
	Spend      map[string]float64 `json:"spend"`
	TotalSpend float64            `json:"total_spend"`
	Forecasts  map[string]float64 `json:"forecasts"`
}

// KPISummary compares a target's mean forecast over the schedule against its
// historical mean.
type KPISummary struct {
	Target         string  `json:"target"`
	MeanForecast   float64 `json:"mean_forecast"`
	HistoricalMean float64 `json:"historical_mean"`
	ImprovementPct float64 `json:"improvement_pct"`
	AboveMean      bool    `json:"above_mean"`
}

// Schedule is the full result for the optimal allocation screen.
type Schedule struct {
	Rows []ScheduleRow `json:"rows"`
	KPIs []KPISummary  `json:"kpis"`
}

// OptimalSchedule generates one row per period 1..Harvest. Per-feature spend
// is drawn uniformly from [0, historical max] and then uniformly shrunk so
// the period total respects the global limit; target forecasts are drawn from
// [q75, max] so the recommendation never predicts below the 75th percentile
// of history. The seed covers the sorted targets, sorted features and the
// harvest period, so identical configurations reproduce identical schedules.
func (s *Simulator) OptimalSchedule(cfg ScheduleConfig) (*Schedule, error) {
	if len(cfg.Features) == 0 {
		return nil, core.NewEmptySelectionError("no spend channels selected")
	}
	if len(cfg.Targets) == 0 {
		return nil, core.NewEmptySelectionError("no harvest targets selected")
	}
	if cfg.Harvest <= 0 {
		return nil, core.NewValidationError("harvest", "period count must be positive")
	}

	seed := core.SeedFromParts(
		core.CanonicalSet(cfg.Targets),
		core.CanonicalSet(cfg.Features),
		strconv.Itoa(cfg.Harvest),
	)
	stream := s.rng.Stream("optimal-schedule", seed)

	schedule := &Schedule{Rows: make([]ScheduleRow, 0, cfg.Harvest)}
	forecastSums := make(map[string]float64, len(cfg.Targets))

	for period := 1; period <= cfg.Harvest; period++ {
		row := ScheduleRow{
			Period:    period,
			Label:     fmt.Sprintf("%s %d", cfg.Granularity.PeriodLabel(), period),
			Spend:     make(map[string]float64, len(cfg.Features)),
			Forecasts: make(map[string]float64, len(cfg.Targets)),
		}

		var total float64
		for _, feature := range cfg.Features {
			spend := uniform(stream, 0, cfg.Stats[feature].Max)
			row.Spend[feature] = spend
			total += spend
		}
		if total > 0 {
			scale := cfg.GlobalLimit / total * uniform(stream, 0.8, 1.0)
			if scale > 1 {
				scale = 1
			}
			for feature := range row.Spend {
				row.Spend[feature] *= scale
			}
		}
		for _, feature := range cfg.Features {
			row.TotalSpend += row.Spend[feature]
		}

		for _, target := range cfg.Targets {
			st := cfg.Stats[target]
			forecast := uniform(stream, st.Q75, st.Max)
			row.Forecasts[target] = forecast
			forecastSums[target] += forecast
		}

		schedule.Rows = append(schedule.Rows, row)
	}

	for _, target := range cfg.Targets {
		st := cfg.Stats[target]
		kpi := KPISummary{
			Target:         target,
			MeanForecast:   forecastSums[target] / float64(cfg.Harvest),
			HistoricalMean: st.Mean,
		}
		kpi.AboveMean = kpi.MeanForecast >= st.Mean
		if st.Mean != 0 {
			kpi.ImprovementPct = (kpi.MeanForecast - st.Mean) / st.Mean * 100
		}
		schedule.KPIs = append(schedule.KPIs, kpi)
	}

	return schedule, nil
}
