package runner

import (
	"math"
	"slices"
)

// Statistic summarizes one metric over all iterations, in milliseconds.
type Statistic struct {
	Samples int     `json:"samples" yaml:"samples"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Mean    float64 `json:"mean" yaml:"mean"`
	Median  float64 `json:"median" yaml:"median"`
	P90     float64 `json:"p90" yaml:"p90"`
}

// Key prefixes keep page-defined user timings apart from navigation metrics.
const (
	MarkPrefix    = "mark:"
	MeasurePrefix = "measure:"
)

// Summarize computes a Statistic for every metric, mark and measure seen in
// the iterations. Metrics are keyed by name, marks by MarkPrefix+name with
// their start time, measures by MeasurePrefix+name with their duration.
func Summarize(iterations []Iteration) map[string]Statistic {
	samples := make(map[string][]float64)
	for _, it := range iterations {
		for name, v := range it.Metrics {
			samples[name] = append(samples[name], v)
		}
		for _, m := range it.Marks {
			key := MarkPrefix + m.Name
			samples[key] = append(samples[key], m.StartTime)
		}
		for _, m := range it.Measures {
			key := MeasurePrefix + m.Name
			samples[key] = append(samples[key], m.Duration)
		}
	}

	stats := make(map[string]Statistic, len(samples))
	for name, values := range samples {
		stats[name] = newStatistic(values)
	}
	return stats
}

func newStatistic(values []float64) Statistic {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return Statistic{
		Samples: n,
		Min:     sorted[0],
		Max:     sorted[n-1],
		Mean:    sum / float64(n),
		Median:  median,
		P90:     percentile(sorted, 90),
	}
}

// percentile uses the nearest-rank method on sorted values.
func percentile(sorted []float64, p float64) float64 {
	rank := int(math.Ceil(p * float64(len(sorted)) / 100))
	return sorted[max(rank-1, 0)]
}
