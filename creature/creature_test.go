package creature

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/gridlife/neural"
)

// gridView is a fixed board for sensing tests.
type gridView struct {
	w, h  int
	steps int
	occ   map[Cell]bool
}

func newGridView(w, h int, cells ...Cell) *gridView {
	v := &gridView{w: w, h: h, steps: 10, occ: make(map[Cell]bool)}
	for _, c := range cells {
		v.occ[c] = true
	}
	return v
}

func (v *gridView) Size() (int, int)        { return v.w, v.h }
func (v *gridView) StepsPerGeneration() int { return v.steps }
func (v *gridView) Occupied(x, y int) bool  { return v.occ[Cell{x, y}] }

func newTestCreature(t *testing.T, seed int64, x, y int) *Creature {
	t.Helper()
	c, err := New(rand.New(rand.NewSource(seed)), x, y, Color{200, 40, 40}, 10, neural.DefaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestMoveKeepsStrongest(t *testing.T) {
	c := &Creature{}
	c.Move(neural.Up, 0.4)
	c.Move(neural.Down, 0.4) // tie keeps the first
	c.Move(neural.Left, 0.2)

	m, ok := c.QueuedMove()
	if !ok || m.Dir != neural.Up || m.Strength != 0.4 {
		t.Fatalf("queued = %+v (%v), want up 0.4", m, ok)
	}

	c.Move(neural.Right, 0.9)
	if m, _ := c.QueuedMove(); m.Dir != neural.Right {
		t.Errorf("stronger request did not replace queued move: %+v", m)
	}

	c.ClearMove()
	if _, ok := c.QueuedMove(); ok {
		t.Error("ClearMove left a queued move")
	}
}

func TestOscillator(t *testing.T) {
	c := &Creature{OscPeriod: 20}

	tests := []struct {
		age  int
		want float64
	}{
		{0, 0},
		{5, 0.5},
		{10, 1},
		{15, 0.5},
		{20, 0},
	}
	for _, tt := range tests {
		c.Age = tt.age
		if got := c.Oscillator(); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Oscillator at age %d = %v, want %v", tt.age, got, tt.want)
		}
	}
}

func TestSetOscillatorThenRead(t *testing.T) {
	c := &Creature{}
	for certainty := -1.0; certainty <= 1.0; certainty += 0.05 {
		if err := c.SetOscillator(certainty); err != nil {
			t.Fatalf("SetOscillator(%v): %v", certainty, err)
		}
		if c.OscPeriod < neural.MinOscillatorPeriod || c.OscPeriod > neural.MaxOscillatorPeriod {
			t.Fatalf("period %d out of range", c.OscPeriod)
		}
		for _, age := range []int{0, 1, 7, 1000} {
			c.Age = age
			if v := c.Oscillator(); v < 0 || v > 1 {
				t.Fatalf("oscillator %v out of [0, 1] (period %d, age %d)", v, c.OscPeriod, age)
			}
		}
	}
}

func TestDriftColorOnlyChangesHue(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	c := &Creature{Color: Color{200, 40, 40}}

	changed := 0
	for i := 0; i < 2000; i++ {
		before := c.Color
		c.DriftColor(rng)
		if c.Color != before {
			changed++
		}
	}
	// About 5% of attempts shift the hue.
	if changed == 0 || changed > 300 {
		t.Errorf("color changed %d times out of 2000", changed)
	}
}

func TestReproduce(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	parent := newTestCreature(t, 4, 3, 2)
	parent.Age = 12

	for i := 0; i < 50; i++ {
		n := len(parent.Brain.Connections)
		firstWeight := parent.Brain.Connections[0].Weights[0]

		child, err := parent.Reproduce(rng)
		if err != nil {
			t.Fatalf("Reproduce: %v", err)
		}
		if d := len(child.Brain.Connections) - n; d < -1 || d > 1 {
			t.Fatalf("child has %d connections, parent %d", len(child.Brain.Connections), n)
		}
		if child.Pos() != parent.Pos() {
			t.Errorf("child at %v, parent at %v", child.Pos(), parent.Pos())
		}
		if child.Age != 0 || child.OscPeriod != DefaultOscPeriod {
			t.Errorf("child age %d period %d, want fresh", child.Age, child.OscPeriod)
		}
		if child.Brain == parent.Brain {
			t.Fatal("child shares the parent's brain")
		}

		for j := range child.Brain.Connections {
			for k := range child.Brain.Connections[j].Weights {
				child.Brain.Connections[j].Weights[k] = 1e6
			}
		}
		if parent.Brain.Connections[0].Weights[0] != firstWeight {
			t.Fatal("mutating the child's weights changed the parent")
		}
	}
}

func TestSenseNormalisedValues(t *testing.T) {
	view := newGridView(10, 20)
	c := &Creature{X: 2, Y: 15, Age: 5, OscPeriod: 20, Rotation: neural.Right}
	opts := DefaultSenseOptions()

	tests := []struct {
		sensor neural.Sensor
		want   float64
	}{
		{neural.SensorAge, 0.5},
		{neural.SensorOscillator, 0.5},
		{neural.SensorPositionX, 0.2},
		{neural.SensorPositionY, 0.75},
		{neural.SensorBorderDistanceX, 2 * 2 / 10.0},
		{neural.SensorBorderDistanceY, 4 * 2 / 20.0},
		{neural.SensorBorderForward, 7 / 10.0},
		{neural.SensorCreatureForward, 7 / 10.0},
		{neural.SensorLastMoveX, 1},
		{neural.SensorLastMoveY, 0.5},
		{neural.SensorPopulation, 0},
	}

	for _, tt := range tests {
		t.Run(tt.sensor.String(), func(t *testing.T) {
			got, err := c.Sense(view, opts, tt.sensor)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("%s = %v, want %v", tt.sensor, got, tt.want)
			}
		})
	}

	if _, err := c.Sense(view, opts, neural.NumSensors); err == nil {
		t.Error("expected error for unknown sensor")
	}
}

func TestCreatureDistanceForward(t *testing.T) {
	view := newGridView(10, 10, Cell{5, 4}, Cell{1, 9}, Cell{5, 8})

	tests := []struct {
		name string
		c    Creature
		want float64
	}{
		{"down hits creature", Creature{X: 5, Y: 1, Rotation: neural.Down}, 3 / 10.0},
		{"up sees border", Creature{X: 5, Y: 3, Rotation: neural.Up}, 3 / 10.0},
		{"left sees border", Creature{X: 4, Y: 4, Rotation: neural.Left}, 4 / 10.0},
		{"right adjacent", Creature{X: 4, Y: 4, Rotation: neural.Right}, 1 / 10.0},
		{"off-axis ignored", Creature{X: 0, Y: 7, Rotation: neural.Right}, 9 / 10.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.c.CreatureDistanceForward(view)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPopulationDensity(t *testing.T) {
	view := newGridView(10, 10, Cell{5, 5}, Cell{6, 6}, Cell{7, 7}, Cell{3, 5}, Cell{8, 8})
	c := &Creature{X: 5, Y: 5}

	square := c.PopulationDensity(view, 2, false)
	if want := 3.0 / 16.0; math.Abs(square-want) > 1e-9 {
		t.Errorf("square density = %v, want %v", square, want)
	}

	circle := c.PopulationDensity(view, 2, true)
	if want := 2.0 / (math.Pi * 4); math.Abs(circle-want) > 1e-9 {
		t.Errorf("circular density = %v, want %v", circle, want)
	}

	if d := c.PopulationDensity(view, 0, false); d != 0 {
		t.Errorf("zero radius density = %v", d)
	}
}

func TestThinkCandidate(t *testing.T) {
	forward := neural.Connection{
		Inputs:  []neural.Sensor{neural.SensorAge},
		Weights: []float64{0},
		Bias:    1,
		Output:  neural.ActionMoveForward,
	}

	tests := []struct {
		name string
		c    Creature
		want Cell
		ok   bool
	}{
		{"inside", Creature{X: 1, Y: 1, Rotation: neural.Right}, Cell{2, 1}, true},
		{"off left edge", Creature{X: 0, Y: 1, Rotation: neural.Left}, Cell{}, false},
		{"off bottom edge", Creature{X: 1, Y: 3, Rotation: neural.Down}, Cell{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.c
			c.OscPeriod = DefaultOscPeriod
			c.Brain = &neural.Brain{Connections: []neural.Connection{forward}, Params: neural.DefaultParams()}

			cand, ok, err := c.Think(newGridView(4, 4), DefaultSenseOptions())
			if err != nil {
				t.Fatal(err)
			}
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (cand.Cell != tt.want || cand.Dir != c.Rotation) {
				t.Errorf("candidate = %+v, want %v heading %s", cand, tt.want, c.Rotation)
			}
		})
	}
}

func TestThinkClearsPreviousMove(t *testing.T) {
	c := &Creature{X: 1, Y: 1, OscPeriod: DefaultOscPeriod}
	c.Brain = &neural.Brain{Connections: []neural.Connection{{
		Inputs:  []neural.Sensor{neural.SensorAge},
		Weights: []float64{0},
		Bias:    -1, // never moves
		Output:  neural.ActionMoveForward,
	}}}
	c.Move(neural.Down, 1)

	if _, ok, err := c.Think(newGridView(4, 4), DefaultSenseOptions()); err != nil || ok {
		t.Fatalf("Think = ok %v err %v, want no move", ok, err)
	}
}
