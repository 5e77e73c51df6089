// Package effect generates the deterministic effect data behind the history
// analysis screen. The numbers are seeded pseudo-random, not model output:
// the contract is that identical filter selections always reproduce identical
// tables, so charts and metric cards never drift between redraws.
package effect

import (
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"amaa/domain/core"
	"amaa/ports"
)

// Calibration holds the demo calibration constants. They have no empirical
// justification, so they are parameters rather than package literals; the
// defaults reproduce the original demo behavior.
type Calibration struct {
	TrendMin          float64 // lower bound of a base trend draw
	TrendMax          float64 // upper bound, also the contribution map ceiling
	ContributionFloor float64 // clamp floor for base contribution, percent
	ContributionCeil  float64 // clamp ceiling and map target, percent
	InfluenceMin      float64 // control-variable perturbation lower bound
	InfluenceMax      float64 // upper bound
	ROINoiseMin       float64 // multiplicative ROI noise lower bound
	ROINoiseMax       float64 // upper bound
}

// DefaultCalibration returns the demo calibration.
func DefaultCalibration() Calibration {
	return Calibration{
		TrendMin:          0.5,
		TrendMax:          2.5,
		ContributionFloor: 5,
		ContributionCeil:  30,
		InfluenceMin:      0.85,
		InfluenceMax:      1.15,
		ROINoiseMin:       0.8,
		ROINoiseMax:       1.2,
	}
}

// Sampler produces EffectTable/SimulationTable pairs. It is stateless apart
// from its calibration and reentrant: every draw comes from a stream seeded
// per (target, feature) pair, so concurrent or reordered calls cannot
// interfere.
type Sampler struct {
	rng ports.RNG
	cal Calibration
}

// NewSampler creates a sampler with the given RNG port and calibration.
func NewSampler(rng ports.RNG, cal Calibration) *Sampler {
	return &Sampler{rng: rng, cal: cal}
}

// Generate derives, for every (target, feature) pair, an ROI, a contribution
// percentage and a delay-indexed trend, then assembles the two projections
// from the same adjusted values.
//
// Two seeded streams are consumed per pair: one for the influence factor
// (seeded over feature, target, date range and the sorted control variables)
// and one for the base trend plus ROI noise (control variables excluded).
// Contributions are rescaled per target so they sum to at most 100.
func (s *Sampler) Generate(p Params) (EffectTable, SimulationTable, error) {
	if err := p.validate(); err != nil {
		return nil, nil, err
	}

	controls := core.CanonicalSet(p.ControlVars)

	// target → feature → sample
	samples := make(map[string]map[string]MetricSample, len(p.Targets))
	for _, target := range p.Targets {
		samples[target] = make(map[string]MetricSample, len(p.Features))
		for _, feature := range p.Features {
			samples[target][feature] = s.samplePair(target, feature, p, controls)
		}
	}

	for _, target := range p.Targets {
		rescaleContributions(samples[target])
	}

	effects := make(EffectTable, len(p.Features))
	for _, feature := range p.Features {
		effects[feature] = make(map[string]EffectMetric, len(p.Targets))
		for _, target := range p.Targets {
			sample := samples[target][feature]
			effects[feature][target] = EffectMetric{
				ROI:          sample.ROI,
				Contribution: sample.Contribution,
			}
		}
	}

	simulation := make(SimulationTable, len(p.Targets))
	for _, target := range p.Targets {
		simulation[target] = make(map[string][]float64, len(p.Features))
		for _, feature := range p.Features {
			simulation[target][feature] = samples[target][feature].Trend
		}
	}

	return effects, simulation, nil
}

// samplePair runs the two seeded sessions for one (target, feature) pair.
func (s *Sampler) samplePair(target, feature string, p Params, controls string) MetricSample {
	influenceSeed := core.SeedFromParts(feature, target, p.DateRangeKey, controls)
	influenceStream := s.rng.Stream("influence", influenceSeed)
	influence := uniform(influenceStream, s.cal.InfluenceMin, s.cal.InfluenceMax)

	baseSeed := core.SeedFromParts(feature, target, p.DateRangeKey)
	baseStream := s.rng.Stream("base", baseSeed)

	trend := make([]float64, len(p.Delays))
	for i := range trend {
		trend[i] = uniform(baseStream, s.cal.TrendMin, s.cal.TrendMax)
	}

	trendMean := stat.Mean(trend, nil)
	baseROI := trendMean * uniform(baseStream, s.cal.ROINoiseMin, s.cal.ROINoiseMax)

	baseContribution := (trendMean / s.cal.TrendMax) * s.cal.ContributionCeil
	baseContribution = clamp(baseContribution, s.cal.ContributionFloor, s.cal.ContributionCeil)

	for i := range trend {
		trend[i] *= influence
	}
	return MetricSample{
		ROI:          baseROI * influence,
		Contribution: baseContribution * influence,
		Trend:        trend,
	}
}

func (p Params) validate() error {
	if len(p.Targets) == 0 {
		return core.NewEmptySelectionError("no targets selected")
	}
	if len(p.Features) == 0 {
		return core.NewEmptySelectionError("no features selected")
	}
	if len(p.Delays) == 0 {
		return core.NewEmptySelectionError("no delay periods selected")
	}
	for _, d := range p.Delays {
		if d <= 0 {
			return core.NewValidationError("delays", "periods must be positive")
		}
	}
	return nil
}

// rescaleContributions enforces the per-target bound: when contributions sum
// past 100, every feature's share shrinks by the same factor.
func rescaleContributions(features map[string]MetricSample) {
	var total float64
	for _, sample := range features {
		total += sample.Contribution
	}
	if total <= 100 {
		return
	}
	scale := 100 / total
	for feature, sample := range features {
		sample.Contribution *= scale
		features[feature] = sample
	}
}

func uniform(r *rand.Rand, min, max float64) float64 {
	return min + r.Float64()*(max-min)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
