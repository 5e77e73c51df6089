package effect

// MetricSample holds the adjusted values generated for one (target, feature)
// pair. Trend has one entry per requested delay period, in delay order.
type MetricSample struct {
	ROI          float64   `json:"roi"`
	Contribution float64   `json:"contribution"`
	Trend        []float64 `json:"trend"`
}

// EffectMetric is the metrics-view projection of a MetricSample.
type EffectMetric struct {
	ROI          float64 `json:"roi"`
	Contribution float64 `json:"contribution"`
}

// EffectTable maps feature → target → {roi, contribution}. It backs the
// metric cards on the history analysis screen.
type EffectTable map[string]map[string]EffectMetric

// SimulationTable maps target → feature → delay-indexed trend. It backs the
// trend charts. EffectTable and SimulationTable are two projections of the
// same sample set and never disagree for the same input key.
type SimulationTable map[string]map[string][]float64

// TargetAverage is the per-target mean of ROI and contribution across the
// selected features, shown beside each metric card.
type TargetAverage struct {
	ROI          float64 `json:"roi"`
	Contribution float64 `json:"contribution"`
}

// Params are the sampler inputs. Targets, Features and ControlVars are sets
// of distinct column names; Delays is an ordered sequence of positive period
// indices; DateRangeKey is an opaque key for the active date filter.
type Params struct {
	Targets      []string
	Features     []string
	Delays       []int
	DateRangeKey string
	ControlVars  []string
}

// Averages computes the per-target mean ROI and contribution over the given
// features. Features absent from the table are skipped.
func (t EffectTable) Averages(features []string) map[string]TargetAverage {
	sums := make(map[string]*TargetAverage)
	counts := make(map[string]int)
	for _, feature := range features {
		for target, m := range t[feature] {
			if sums[target] == nil {
				sums[target] = &TargetAverage{}
			}
			sums[target].ROI += m.ROI
			sums[target].Contribution += m.Contribution
			counts[target]++
		}
	}

	averages := make(map[string]TargetAverage, len(sums))
	for target, sum := range sums {
		n := float64(counts[target])
		averages[target] = TargetAverage{
			ROI:          sum.ROI / n,
			Contribution: sum.Contribution / n,
		}
	}
	return averages
}
