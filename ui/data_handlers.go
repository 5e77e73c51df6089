package ui

import (
	"io"
	"net/http"
	"strings"

	"amaa/domain/core"
	"amaa/domain/dataset"
	"amaa/domain/effect"
	"amaa/domain/plan"
)

// handleUpload swaps the session table on a successful parse. A parse failure
// leaves the previous table active and reports "could not load data".
func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	state := a.currentSession(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, a.cfg.Data.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeComputeError(w, core.NewValidationError("file", "missing upload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.writeComputeError(w, core.NewValidationError("file", "unreadable upload"))
		return
	}

	table, err := a.reader.Read(header.Filename, data)
	if err != nil {
		a.logger.Warn("[UI] upload rejected, keeping prior table: %v", err)
		a.writeComputeError(w, err)
		return
	}

	if err := a.registry.SetTable(state.ID, table, header.Filename); err != nil {
		a.writeComputeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename":    header.Filename,
		"date_column": table.DateColumn,
		"columns":     table.Columns,
		"rows":        len(table.Rows),
	})
}

// handleColumns describes the session's active table so the screens can
// build their selectors.
func (a *App) handleColumns(w http.ResponseWriter, r *http.Request) {
	state := a.currentSession(w, r)
	table := state.Table

	minDate, maxDate := table.DateBounds()
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename":    state.Filename,
		"default":     state.UsingDefault(),
		"date_column": table.DateColumn,
		"columns":     table.Columns,
		"date_min":    minDate,
		"date_max":    maxDate,
		"rows":        len(table.Rows),
		"table_hash":  tableFingerprint(table).String(),
	})
}

const previewLimit = 200

// handlePreview returns filtered rows with columns ordered date → targets →
// controls → features, mirroring the data preview panel.
func (a *App) handlePreview(w http.ResponseWriter, r *http.Request) {
	state := a.currentSession(w, r)

	filtered, _ := state.Table.FilterByDateRange(
		r.URL.Query().Get("from"), r.URL.Query().Get("to"))

	ordered := orderedColumns(filtered,
		queryList(r, "targets"), queryList(r, "controls"), queryList(r, "features"))

	rows := make([]map[string]interface{}, 0, previewLimit)
	for i, row := range filtered.Rows {
		if i >= previewLimit {
			break
		}
		record := map[string]interface{}{filtered.DateColumn: row.Date}
		for _, col := range ordered[1:] {
			record[col] = row.Values[col]
		}
		rows = append(rows, record)
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"columns": ordered,
		"rows":    rows,
		"total":   len(filtered.Rows),
	})
}

// handleEffects computes the effect tables for the current filter selection.
func (a *App) handleEffects(w http.ResponseWriter, r *http.Request) {
	state := a.currentSession(w, r)

	granularity, err := dataset.ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		a.writeComputeError(w, core.NewValidationError("granularity", err.Error()))
		return
	}
	delays, err := queryInts(r, "delays")
	if err != nil {
		a.writeComputeError(w, err)
		return
	}
	for _, d := range delays {
		if d < 1 || d > granularity.MaxDelay() {
			a.writeComputeError(w, core.NewValidationError("delays",
				"period out of range for granularity"))
			return
		}
	}

	roles := dataset.Roles{
		Features: queryList(r, "features"),
		Controls: queryList(r, "controls"),
		Targets:  queryList(r, "targets"),
	}
	if err := roles.Validate(state.Table); err != nil {
		a.writeComputeError(w, core.NewValidationError("selection", err.Error()))
		return
	}

	filtered, rangeKey := state.Table.FilterByDateRange(
		r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if filtered.IsEmpty() {
		a.writeJSON(w, http.StatusOK, guidanceResponse{
			Guidance: "no data in the selected date range",
		})
		return
	}

	effects, simulation, err := a.sampler.Generate(effect.Params{
		Targets:      roles.Targets,
		Features:     roles.Features,
		Delays:       delays,
		DateRangeKey: rangeKey,
		ControlVars:  roles.Controls,
	})
	if err != nil {
		a.writeComputeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"range_key":  rangeKey,
		"delays":     delays,
		"effects":    effects,
		"simulation": simulation,
		"averages":   effects.Averages(roles.Features),
		"period":     granularity.PeriodLabel(),
	})
}

// handleSimulationTable generates the recommended spend rows plus gauges.
func (a *App) handleSimulationTable(w http.ResponseWriter, r *http.Request) {
	state := a.currentSession(w, r)

	granularity, err := dataset.ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		a.writeComputeError(w, core.NewValidationError("granularity", err.Error()))
		return
	}
	harvest, err := queryInt(r, "harvest", 3)
	if err != nil {
		a.writeComputeError(w, err)
		return
	}

	features := queryList(r, "features")
	targets := queryList(r, "targets")

	stats, err := state.Table.Stats()
	if err != nil {
		a.writeComputeError(w, err)
		return
	}

	ranges, err := parseCostRanges(r.URL.Query().Get("ranges"), features, stats)
	if err != nil {
		a.writeComputeError(w, err)
		return
	}

	budget, err := queryFloat(r, "budget", plan.ReferenceBudget(features, stats))
	if err != nil {
		a.writeComputeError(w, err)
		return
	}

	result, err := a.simulator.SpendSimulation(plan.SpendSimulationConfig{
		Granularity:      granularity,
		Harvest:          harvest,
		Features:         features,
		CostRanges:       ranges,
		Targets:          targets,
		AvailableColumns: state.Table.Columns,
		Stats:            stats,
		MaxBudget:        budget,
	})
	if err != nil {
		a.writeComputeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"budget":     budget,
		"reference":  plan.ReferenceBudget(features, stats),
		"simulation": result,
		"stats":      columnStatsFor(stats, features),
	})
}

// handleOptimizationTable generates the optimal allocation schedule.
func (a *App) handleOptimizationTable(w http.ResponseWriter, r *http.Request) {
	state := a.currentSession(w, r)

	granularity, err := dataset.ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		a.writeComputeError(w, core.NewValidationError("granularity", err.Error()))
		return
	}
	harvest, err := queryInt(r, "harvest", 5)
	if err != nil {
		a.writeComputeError(w, err)
		return
	}

	features := queryList(r, "features")
	targets := queryList(r, "targets")

	stats, err := state.Table.Stats()
	if err != nil {
		a.writeComputeError(w, err)
		return
	}

	limit, err := queryFloat(r, "limit",
		plan.ReferenceBudget(features, stats)*a.cfg.Data.BudgetHeadroom)
	if err != nil {
		a.writeComputeError(w, err)
		return
	}

	schedule, err := a.simulator.OptimalSchedule(plan.ScheduleConfig{
		Granularity: granularity,
		Harvest:     harvest,
		Targets:     targets,
		Features:    features,
		Stats:       stats,
		GlobalLimit: limit,
	})
	if err != nil {
		a.writeComputeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"limit":    limit,
		"schedule": schedule,
	})
}

// parseCostRanges reads "feature:min:max;..." pairs; features without an
// explicit range default to [0, historical mean], matching the slider
// defaults on the simulation screen.
func parseCostRanges(raw string, features []string, stats map[string]dataset.ColumnStats) (map[string]plan.CostRange, error) {
	ranges := make(map[string]plan.CostRange, len(features))
	for _, feature := range features {
		ranges[feature] = plan.CostRange{Min: 0, Max: stats[feature].Mean}
	}
	if raw == "" {
		return ranges, nil
	}

	for _, part := range strings.Split(raw, ";") {
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, core.NewValidationError("ranges", "expected feature:min:max, got "+part)
		}
		min, err1 := parseFloat(fields[1])
		max, err2 := parseFloat(fields[2])
		if err1 != nil || err2 != nil || min > max {
			return nil, core.NewValidationError("ranges", "bad range for "+fields[0])
		}
		ranges[fields[0]] = plan.CostRange{Min: min, Max: max}
	}
	return ranges, nil
}

func orderedColumns(t *dataset.Table, targets, controls, features []string) []string {
	ordered := []string{t.DateColumn}
	seen := map[string]bool{t.DateColumn: true}
	for _, group := range [][]string{targets, controls, features} {
		for _, col := range group {
			if !seen[col] && t.HasColumn(col) {
				ordered = append(ordered, col)
				seen[col] = true
			}
		}
	}
	// Remaining columns keep header order when nothing was selected.
	if len(ordered) == 1 {
		ordered = append(ordered, t.Columns...)
	}
	return ordered
}

// tableFingerprint identifies the active table so the screens can drop
// cached selections when an upload swaps it.
func tableFingerprint(t *dataset.Table) core.Hash {
	headers := append([]string{t.DateColumn}, t.Columns...)
	return core.ComputeTableHash(headers, len(t.Rows))
}

func columnStatsFor(stats map[string]dataset.ColumnStats, columns []string) map[string]dataset.ColumnStats {
	out := make(map[string]dataset.ColumnStats, len(columns))
	for _, col := range columns {
		if st, ok := stats[col]; ok {
			out[col] = st
		}
	}
	return out
}
