package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// GenerationStats holds aggregated statistics for one generation, sampled
// just before the rollover culls it.
type GenerationStats struct {
	Generation int `csv:"generation"`
	EndStep    int `csv:"end_step"`
	Population int `csv:"population"`

	// Movement during the generation
	Moves        int     `csv:"moves"`
	MovesPerTick float64 `csv:"moves_per_tick"`

	// Position before selection; higher mean X means heavier culling
	MeanX float64 `csv:"mean_x"`
	StdX  float64 `csv:"std_x"`

	// Brain size distribution
	ConnectionsMean float64 `csv:"connections_mean"`
	ConnectionsStd  float64 `csv:"connections_std"`
	ConnectionsP50  float64 `csv:"connections_p50"`
	ConnectionsMax  int     `csv:"connections_max"`
	InputsMean      float64 `csv:"inputs_mean"`

	// Mutation factor distribution
	MutationMean float64 `csv:"mutation_mean"`
	MutationStd  float64 `csv:"mutation_std"`

	// Oscillator period distribution
	OscPeriodMean float64 `csv:"osc_period_mean"`

	// Lineage
	Founders int `csv:"founders"` // creatures alive since board setup
	Colors   int `csv:"colors"`   // distinct colors
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summarize returns the mean, population standard deviation and median of
// values. All are 0 for an empty slice.
func Summarize(values []float64) (mean, std, p50 float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	p50 = Percentile(sorted, 0.5)

	return mean, std, p50
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("end_step", s.EndStep),
		slog.Int("population", s.Population),
		slog.Int("moves", s.Moves),
		slog.Float64("moves_per_tick", s.MovesPerTick),
		slog.Float64("mean_x", s.MeanX),
		slog.Float64("std_x", s.StdX),
		slog.Float64("connections_mean", s.ConnectionsMean),
		slog.Float64("connections_std", s.ConnectionsStd),
		slog.Float64("connections_p50", s.ConnectionsP50),
		slog.Int("connections_max", s.ConnectionsMax),
		slog.Float64("inputs_mean", s.InputsMean),
		slog.Float64("mutation_mean", s.MutationMean),
		slog.Float64("mutation_std", s.MutationStd),
		slog.Float64("osc_period_mean", s.OscPeriodMean),
		slog.Int("founders", s.Founders),
		slog.Int("colors", s.Colors),
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation",
		"generation", s.Generation,
		"step", s.EndStep,
		"population", s.Population,
		"moves_per_tick", s.MovesPerTick,
		"mean_x", s.MeanX,
		"connections", s.ConnectionsMean,
		"mutation", s.MutationMean,
		"founders", s.Founders,
		"colors", s.Colors,
	)
}
