package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/gridlife/board"
	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/creature"
	"github.com/pthm-cable/gridlife/neural"
)

func member(x int, color creature.Color, conns int, mf float64, lin components.Lineage) board.Member {
	brain := &neural.Brain{MutationFactor: mf}
	for i := 0; i < conns; i++ {
		brain.Connections = append(brain.Connections, neural.Connection{
			Inputs:  []neural.Sensor{neural.SensorAge, neural.SensorRandom},
			Weights: []float64{1, 1},
			Output:  neural.ActionMoveX,
		})
	}
	return board.Member{
		Creature: creature.Creature{X: x, OscPeriod: 20, Color: color, Brain: brain},
		Lineage:  lin,
	}
}

func TestCollectorFlush(t *testing.T) {
	red := creature.Color{R: 255}
	blue := creature.Color{B: 255}
	members := []board.Member{
		member(0, red, 1, 10, components.Lineage{ID: 1}),
		member(2, red, 2, 12, components.Lineage{ID: 5, ParentID: 1, BornGeneration: 1}),
		member(4, blue, 3, 14, components.Lineage{ID: 3}),
	}

	c := NewCollector()
	c.RecordTick(4)
	c.RecordTick(2)

	s := c.Flush(2, 30, members)
	t.Logf("stats: %+v", s)

	if s.Generation != 2 || s.EndStep != 30 || s.Population != 3 {
		t.Errorf("header = %d/%d/%d", s.Generation, s.EndStep, s.Population)
	}
	if s.Moves != 6 || s.MovesPerTick != 3 {
		t.Errorf("moves = %d (%v per tick), want 6 (3)", s.Moves, s.MovesPerTick)
	}
	if s.MeanX != 2 {
		t.Errorf("mean x = %v, want 2", s.MeanX)
	}
	if s.ConnectionsMean != 2 || s.ConnectionsP50 != 2 || s.ConnectionsMax != 3 {
		t.Errorf("connections = %v mean, %v median, %d max", s.ConnectionsMean, s.ConnectionsP50, s.ConnectionsMax)
	}
	if s.InputsMean != 2 {
		t.Errorf("inputs per connection = %v, want 2", s.InputsMean)
	}
	if math.Abs(s.MutationMean-12) > 1e-9 {
		t.Errorf("mutation mean = %v, want 12", s.MutationMean)
	}
	if s.OscPeriodMean != 20 {
		t.Errorf("osc period mean = %v, want 20", s.OscPeriodMean)
	}
	if s.Founders != 2 || s.Colors != 2 {
		t.Errorf("founders = %d colors = %d, want 2 and 2", s.Founders, s.Colors)
	}

	// Counters reset for the next generation.
	next := c.Flush(3, 45, members)
	if next.Moves != 0 || next.MovesPerTick != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestCollectorFlushEmpty(t *testing.T) {
	s := NewCollector().Flush(0, 0, nil)
	if s.Population != 0 || s.MeanX != 0 || s.ConnectionsMean != 0 {
		t.Errorf("empty flush = %+v", s)
	}
}

func TestCollectorOnLiveBoard(t *testing.T) {
	b, err := board.New(board.Options{
		Width:              10,
		Height:             10,
		StepsPerGeneration: 3,
		Population:         20,
		Seed:               5,
		Neural:             neural.DefaultParams(),
		Senses:             creature.DefaultSenseOptions(),
		Workers:            1,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	c := NewCollector()
	for i := 0; i < b.StepsPerGeneration(); i++ {
		if err := b.Tick(); err != nil {
			t.Fatal(err)
		}
		c.RecordTick(b.Moves())
	}

	s := c.Flush(b.Generation(), b.Step(), b.Members())
	if s.Population != 20 || s.Founders != 20 {
		t.Errorf("population %d founders %d, want 20 and 20", s.Population, s.Founders)
	}
	if s.ConnectionsMean < 1 {
		t.Errorf("connections mean = %v, every brain has at least one", s.ConnectionsMean)
	}
	if s.MovesPerTick < 0 || s.MovesPerTick > 20 {
		t.Errorf("moves per tick = %v", s.MovesPerTick)
	}
}
