// Package creature holds per-agent state: position, heading, oscillator,
// color and brain, plus the sensing helpers the brain reads.
package creature

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/gridlife/neural"
)

// DefaultOscPeriod is the oscillator period of a newborn creature.
const DefaultOscPeriod = 20

// colorDriftChance is the probability that a single drift attempt actually
// shifts the hue.
const colorDriftChance = 0.05

// maxHueShift is the largest hue change of one drift, in degrees.
const maxHueShift = 0.05 * 360

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// Cell is a grid coordinate.
type Cell struct {
	X, Y int
}

// Move is a pending one-cell move request.
type Move struct {
	Dir      neural.Rotation
	Strength float64
}

// Candidate is the destination a creature wants to step into this tick.
type Candidate struct {
	Cell
	Dir neural.Rotation
}

// Creature is one agent. The board owns creatures; a creature owns its brain
// and its random stream, and neither is shared.
type Creature struct {
	X, Y      int
	Age       int
	Rotation  neural.Rotation // last committed move direction
	OscPeriod int
	Color     Color
	Brain     *neural.Brain

	queued    Move
	hasQueued bool
	rng       *rand.Rand
}

// New creates a creature with a freshly bootstrapped brain. The creature's
// private random stream is seeded from rng.
func New(rng *rand.Rand, x, y int, color Color, mutationFactor float64, params neural.Params) (*Creature, error) {
	c := &Creature{
		X:         x,
		Y:         y,
		Color:     color,
		OscPeriod: DefaultOscPeriod,
		Rotation:  neural.Rotation(rng.Intn(neural.NumRotations)),
		rng:       rand.New(rand.NewSource(rng.Int63())),
	}
	brain, err := neural.NewBrain(rng, nil, mutationFactor, params, c)
	if err != nil {
		return nil, fmt.Errorf("creating brain: %w", err)
	}
	c.Brain = brain
	return c, nil
}

// Pos returns the creature's cell.
func (c *Creature) Pos() Cell {
	return Cell{c.X, c.Y}
}

// SetPos moves the creature without any occupancy check.
func (c *Creature) SetPos(cell Cell) {
	c.X, c.Y = cell.X, cell.Y
}

// Heading implements neural.Body.
func (c *Creature) Heading() neural.Rotation {
	return c.Rotation
}

// Move implements neural.Body. A request replaces the queued one only when
// it is strictly stronger, so ties keep the first request.
func (c *Creature) Move(dir neural.Rotation, strength float64) {
	if !c.hasQueued || c.queued.Strength < strength {
		c.queued = Move{Dir: dir, Strength: strength}
		c.hasQueued = true
	}
}

// QueuedMove returns the pending move, if any.
func (c *Creature) QueuedMove() (Move, bool) {
	return c.queued, c.hasQueued
}

// ClearMove drops the pending move.
func (c *Creature) ClearMove() {
	c.queued = Move{}
	c.hasQueued = false
}

// Oscillator returns the oscillator signal in [0, 1]:
// (1 - cos(2π·phase)) / 2 with phase = (age mod period) / period.
func (c *Creature) Oscillator() float64 {
	period := c.OscPeriod
	if period <= 0 {
		period = DefaultOscPeriod
	}
	phase := float64(c.Age%period) / float64(period)
	v := (-math.Cos(phase*2*math.Pi) + 1) / 2
	return math.Min(1, math.Max(0, v))
}

// SetOscillator implements neural.Body.
func (c *Creature) SetOscillator(certainty float64) error {
	period, err := neural.OscillatorPeriod(certainty)
	if err != nil {
		return err
	}
	c.OscPeriod = period
	return nil
}

// DriftColor implements neural.Drifter. Most attempts do nothing; the rest
// shift the hue by up to ±maxHueShift/2 degrees.
func (c *Creature) DriftColor(rng *rand.Rand) {
	if rng.Float64() >= colorDriftChance {
		return
	}

	col := colorful.Color{
		R: float64(c.Color.R) / 255,
		G: float64(c.Color.G) / 255,
		B: float64(c.Color.B) / 255,
	}
	h, s, v := col.Hsv()
	h += (rng.Float64() - 0.5) * maxHueShift
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	r, g, b := colorful.Hsv(h, s, v).Clamped().RGB255()
	c.Color = Color{r, g, b}
}

// Snapshot returns a copy of c that shares nothing with it. The copy gets its
// own random stream on first use.
func (c *Creature) Snapshot() Creature {
	out := *c
	out.rng = nil
	if c.Brain != nil {
		out.Brain = c.Brain.Clone()
	}
	return out
}

// Reproduce returns a clone of c: same cell and color, a deep copy of the
// connections passed through one mutation pass, and the inherited mutation
// factor. Color drift from the mutation applies to the clone only.
func (c *Creature) Reproduce(rng *rand.Rand) (*Creature, error) {
	child := &Creature{
		X:         c.X,
		Y:         c.Y,
		Color:     c.Color,
		OscPeriod: DefaultOscPeriod,
		Rotation:  neural.Rotation(rng.Intn(neural.NumRotations)),
		rng:       rand.New(rand.NewSource(rng.Int63())),
	}
	brain, err := neural.NewBrain(rng, c.Brain.CloneConnections(), c.Brain.MutationFactor, c.Brain.Params, child)
	if err != nil {
		return nil, fmt.Errorf("cloning brain: %w", err)
	}
	child.Brain = brain
	return child, nil
}
