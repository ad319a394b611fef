package ui

import (
	"fmt"

	"github.com/pthm-cable/gridlife/telemetry"
)

// statsField builds a numeric text field over GenerationStats.
func statsField(id, label, format string, get func(telemetry.GenerationStats) float64) FieldDescriptor {
	return FieldDescriptor{
		ID:     id,
		Label:  label,
		Widget: WidgetText,
		Format: format,
		Getter: func(data any) float64 {
			s, ok := data.(telemetry.GenerationStats)
			if !ok {
				return 0
			}
			return get(s)
		},
	}
}

// StatsSections describes the generation stats readout.
func StatsSections() []SectionDescriptor {
	return []SectionDescriptor{
		{
			ID:    "generation",
			Title: "Last generation",
			Fields: []FieldDescriptor{
				statsField("generation", "gen", "%.0f", func(s telemetry.GenerationStats) float64 { return float64(s.Generation) }),
				statsField("population", "pop", "%.0f", func(s telemetry.GenerationStats) float64 { return float64(s.Population) }),
				statsField("moves_per_tick", "moves/tick", "%.1f", func(s telemetry.GenerationStats) float64 { return s.MovesPerTick }),
				{
					ID:     "mean_x",
					Label:  "mean x",
					Widget: WidgetText,
					TextGetter: func(data any) string {
						s, _ := data.(telemetry.GenerationStats)
						return fmt.Sprintf("%.1f +/- %.1f", s.MeanX, s.StdX)
					},
				},
				{
					ID:     "moved_share",
					Label:  "moving",
					Widget: WidgetBar,
					Visible: func(data any) bool {
						s, _ := data.(telemetry.GenerationStats)
						return s.Population > 0
					},
					Getter: func(data any) float64 {
						s, _ := data.(telemetry.GenerationStats)
						return s.MovesPerTick / float64(s.Population)
					},
				},
			},
		},
		{
			ID:    "brains",
			Title: "Brains",
			Fields: []FieldDescriptor{
				statsField("connections_mean", "conns", "%.2f", func(s telemetry.GenerationStats) float64 { return s.ConnectionsMean }),
				statsField("connections_max", "max conns", "%.0f", func(s telemetry.GenerationStats) float64 { return float64(s.ConnectionsMax) }),
				statsField("inputs_mean", "inputs", "%.2f", func(s telemetry.GenerationStats) float64 { return s.InputsMean }),
				statsField("mutation_mean", "mutation", "%.2f", func(s telemetry.GenerationStats) float64 { return s.MutationMean }),
				statsField("osc_period_mean", "osc", "%.1f", func(s telemetry.GenerationStats) float64 { return s.OscPeriodMean }),
			},
		},
		{
			ID:    "lineage",
			Title: "Lineage",
			Fields: []FieldDescriptor{
				statsField("founders", "founders", "%.0f", func(s telemetry.GenerationStats) float64 { return float64(s.Founders) }),
				statsField("colors", "colors", "%.0f", func(s telemetry.GenerationStats) float64 { return float64(s.Colors) }),
			},
		},
	}
}
