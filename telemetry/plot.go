package telemetry

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// errNoGenerations is returned when there is nothing to plot.
var errNoGenerations = errors.New("no generations recorded")

// series is one line of the generation chart.
type series struct {
	name string
	get  func(GenerationStats) float64
}

// generationSeries lists the lines drawn by PlotGenerations.
var generationSeries = []series{
	{"mean x", func(s GenerationStats) float64 { return s.MeanX }},
	{"moves / tick", func(s GenerationStats) float64 { return s.MovesPerTick }},
	{"connections", func(s GenerationStats) float64 { return s.ConnectionsMean }},
	{"mutation factor", func(s GenerationStats) float64 { return s.MutationMean }},
}

// PlotGenerations draws the per-generation trends of history to path. The
// image format follows the file extension (.png, .svg, .pdf).
func PlotGenerations(history []GenerationStats, path string) error {
	if len(history) == 0 {
		return errNoGenerations
	}

	p := plot.New()
	p.Title.Text = "gridlife generations"
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Value"
	p.Legend.Top = true
	p.Legend.Left = true

	for i, s := range generationSeries {
		pts := make(plotter.XYs, len(history))
		for j, g := range history {
			pts[j].X = float64(g.Generation)
			pts[j].Y = s.get(g)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("plotting %s: %w", s.name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}
