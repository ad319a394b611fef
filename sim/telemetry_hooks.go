package sim

import (
	"log/slog"

	"github.com/pthm-cable/gridlife/telemetry"
)

// recordGeneration hands the stats of a finished generation to the callback,
// the log and the output files.
func (r *Runner) recordGeneration(stats telemetry.GenerationStats) {
	perfStats := r.perf.Stats()

	// Call stats callback if provided
	if r.opts.StatsCallback != nil {
		r.opts.StatsCallback(stats)
	}

	// Log stats if enabled (console output)
	if r.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Output failures are logged; the run continues.
	if err := r.output.WriteGeneration(stats); err != nil {
		slog.Error("failed to write generation stats", "error", err)
	}
	if err := r.output.WritePerf(perfStats, stats.Generation); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
