package main

import (
	"context"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/gridlife/board"
	"github.com/pthm-cable/gridlife/config"
	"github.com/pthm-cable/gridlife/sim"
	"github.com/pthm-cable/gridlife/telemetry"
)

// tailGenerations is the number of final generations averaged into fitness.
const tailGenerations = 5

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config

	mu          sync.Mutex
	lastDrift   float64 // mean normalized X from the most recent Evaluate call
	lastFailure error
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
	}
}

// LastDrift returns the mean normalized X of the most recent evaluation.
func (fe *FitnessEvaluator) LastDrift() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastDrift
}

// LastFailure returns the error of the most recent evaluation, if a run
// failed.
func (fe *FitnessEvaluator) LastFailure() error {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastFailure
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	err     error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// The rightmost half is culled every generation, so populations that learn to
// head west score lower mean X. Fitness is the mean normalized X over the
// last generations; a failed run scores 1, the worst possible value.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			stats, err := fe.runSimulation(cfg, s)
			if err != nil {
				results[idx] = seedResult{fitness: 1, err: err}
				return
			}
			results[idx] = seedResult{fitness: computeFitness(stats, cfg.Board.Width)}
		}(i, seed)
	}
	wg.Wait()

	var total float64
	var failure error
	for _, r := range results {
		total += r.fitness
		if r.err != nil && failure == nil {
			failure = r.err
		}
	}
	avg := total / float64(len(results))

	fe.mu.Lock()
	fe.lastDrift = avg
	fe.lastFailure = failure
	fe.mu.Unlock()

	return avg
}

// runSimulation executes a single headless run of fe.generations
// generations and returns the stats of each.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) ([]telemetry.GenerationStats, error) {
	opts := board.NewOptions(cfg)
	opts.Seed = seed
	opts.Workers = 1 // seeds already run in parallel

	b, err := board.New(opts)
	if err != nil {
		return nil, fmt.Errorf("seed %d: %w", seed, err)
	}
	defer b.Close()

	var stats []telemetry.GenerationStats
	r := sim.NewRunner(b, sim.Options{
		Speed:          100,
		MaxGenerations: fe.generations,
		StatsCallback: func(s telemetry.GenerationStats) {
			stats = append(stats, s)
		},
	}, nil)
	if err := r.Run(context.Background()); err != nil {
		return nil, fmt.Errorf("seed %d: %w", seed, err)
	}
	return stats, nil
}

// copyConfig creates a copy of the base config. Config sections hold only
// values, so a struct copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeFitness averages mean X, normalized to [0, 1] by board width, over
// the last tailGenerations generations.
func computeFitness(stats []telemetry.GenerationStats, width int) float64 {
	if len(stats) == 0 || width <= 1 {
		return 1
	}
	tail := stats[max(0, len(stats)-tailGenerations):]
	xs := make([]float64, len(tail))
	for i, s := range tail {
		xs[i] = s.MeanX / float64(width-1)
	}
	return clamp01(stat.Mean(xs, nil))
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 1
	}
	return max(0, min(1, x))
}
