package telemetry

import "github.com/pthm-cable/gridlife/board"

// Collector accumulates per-tick events within a generation and produces
// GenerationStats at the rollover.
type Collector struct {
	ticks int
	moves int
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordTick records one completed tick and how many creatures moved in it.
func (c *Collector) RecordTick(moves int) {
	c.ticks++
	c.moves += moves
}

// Flush summarizes the population at the end of generation and resets the
// counters for the next one. members is the population before culling.
func (c *Collector) Flush(generation, step int, members []board.Member) GenerationStats {
	n := len(members)
	xs := make([]float64, 0, n)
	conns := make([]float64, 0, n)
	mutation := make([]float64, 0, n)
	periods := make([]float64, 0, n)

	var inputs, totalConns, founders, maxConns int
	colors := make(map[[3]uint8]struct{})

	for i := range members {
		cr := &members[i].Creature
		xs = append(xs, float64(cr.X))
		periods = append(periods, float64(cr.OscPeriod))
		colors[[3]uint8{cr.Color.R, cr.Color.G, cr.Color.B}] = struct{}{}
		if members[i].Lineage.IsFounder() {
			founders++
		}

		if cr.Brain == nil {
			continue
		}
		k := len(cr.Brain.Connections)
		conns = append(conns, float64(k))
		mutation = append(mutation, cr.Brain.MutationFactor)
		totalConns += k
		maxConns = max(maxConns, k)
		inputs += cr.Brain.InputCount()
	}

	stats := GenerationStats{
		Generation:     generation,
		EndStep:        step,
		Population:     n,
		Moves:          c.moves,
		Founders:       founders,
		Colors:         len(colors),
		ConnectionsMax: maxConns,
	}
	if c.ticks > 0 {
		stats.MovesPerTick = float64(c.moves) / float64(c.ticks)
	}
	if totalConns > 0 {
		stats.InputsMean = float64(inputs) / float64(totalConns)
	}

	stats.MeanX, stats.StdX, _ = Summarize(xs)
	stats.ConnectionsMean, stats.ConnectionsStd, stats.ConnectionsP50 = Summarize(conns)
	stats.MutationMean, stats.MutationStd, _ = Summarize(mutation)
	stats.OscPeriodMean, _, _ = Summarize(periods)

	c.ticks = 0
	c.moves = 0
	return stats
}
