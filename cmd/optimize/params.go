package main

import (
	"math"

	"github.com/pthm-cable/gridlife/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Brain construction and mutation
			{Name: "mutation_factor", Path: "neural.mutation_factor", Min: 1, Max: 30, Default: 10},
			{Name: "extra_connection_chance", Path: "neural.extra_connection_chance", Min: 0, Max: 0.5, Default: 0.1},
			{Name: "extra_input_chance", Path: "neural.extra_input_chance", Min: 0, Max: 0.6, Default: 0.3},
			{Name: "directional_dead_zone", Path: "neural.directional_dead_zone", Min: 0, Max: 0.5, Default: 0},
			// Sensing
			{Name: "population_radius", Path: "sensors.population_radius", Min: 1, Max: 5, Default: 2},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = max(spec.Min, min(spec.Max, v[i]))
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Neural.MutationFactor = clamped[0]
	cfg.Neural.ExtraConnectionChance = clamped[1]
	cfg.Neural.ExtraInputChance = clamped[2]
	cfg.Neural.DirectionalDeadZone = clamped[3]
	cfg.Sensors.PopulationRadius = int(math.Round(clamped[4]))
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Neural.MutationFactor,
		cfg.Neural.ExtraConnectionChance,
		cfg.Neural.ExtraInputChance,
		cfg.Neural.DirectionalDeadZone,
		float64(cfg.Sensors.PopulationRadius),
	}
}
