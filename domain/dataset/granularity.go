package dataset

import "fmt"

// Granularity is the study period unit for delay analysis.
type Granularity string

const (
	GranularityDaily  Granularity = "daily"
	GranularityWeekly Granularity = "weekly"
)

// MaxDelay returns the upper bound of the delay domain: 30 periods for daily
// data, 12 for weekly.
func (g Granularity) MaxDelay() int {
	if g == GranularityWeekly {
		return 12
	}
	return 30
}

// DelayDomain returns the full ordered delay domain 1..MaxDelay.
func (g Granularity) DelayDomain() []int {
	domain := make([]int, g.MaxDelay())
	for i := range domain {
		domain[i] = i + 1
	}
	return domain
}

// PeriodLabel names one period for display ("day"/"week").
func (g Granularity) PeriodLabel() string {
	if g == GranularityWeekly {
		return "week"
	}
	return "day"
}

// ParseGranularity accepts the wire values, defaulting to daily for the
// empty string.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "", string(GranularityDaily):
		return GranularityDaily, nil
	case string(GranularityWeekly):
		return GranularityWeekly, nil
	default:
		return "", fmt.Errorf("unknown granularity %q", s)
	}
}
