package creature

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/gridlife/neural"
)

// View is the read-only picture of the board a creature senses during a
// tick. It must not change while creatures are thinking.
type View interface {
	Size() (width, height int)
	StepsPerGeneration() int
	Occupied(x, y int) bool
}

// SenseOptions configures the population density sensor.
type SenseOptions struct {
	PopulationRadius   int  `yaml:"population_radius"`
	PopulationCircular bool `yaml:"population_circular"`
}

// DefaultSenseOptions returns a square neighborhood of radius 2.
func DefaultSenseOptions() SenseOptions {
	return SenseOptions{PopulationRadius: 2}
}

// senses binds a creature to a view for one think pass.
type senses struct {
	c    *Creature
	view View
	opts SenseOptions
}

// Sense implements neural.Senses.
func (s senses) Sense(kind neural.Sensor) (float64, error) {
	c := s.c
	w, h := s.view.Size()

	switch kind {
	case neural.SensorAge:
		return float64(c.Age) / float64(max(1, s.view.StepsPerGeneration())), nil
	case neural.SensorRandom:
		return c.random().Float64(), nil
	case neural.SensorOscillator:
		return c.Oscillator(), nil
	case neural.SensorPopulation:
		return c.PopulationDensity(s.view, s.opts.PopulationRadius, s.opts.PopulationCircular), nil
	case neural.SensorCreatureForward:
		return c.CreatureDistanceForward(s.view)
	case neural.SensorBorderForward:
		return c.BorderDistanceForward(s.view)
	case neural.SensorLastMoveY:
		switch c.Rotation {
		case neural.Down:
			return 0, nil
		case neural.Up:
			return 1, nil
		}
		return 0.5, nil
	case neural.SensorLastMoveX:
		switch c.Rotation {
		case neural.Left:
			return 0, nil
		case neural.Right:
			return 1, nil
		}
		return 0.5, nil
	case neural.SensorBorderDistanceX:
		return float64(min(c.X, w-1-c.X)) * 2 / float64(w), nil
	case neural.SensorBorderDistanceY:
		return float64(min(c.Y, h-1-c.Y)) * 2 / float64(h), nil
	case neural.SensorPositionX:
		return float64(c.X) / float64(w), nil
	case neural.SensorPositionY:
		return float64(c.Y) / float64(h), nil
	}
	return 0, fmt.Errorf("%w: %d", neural.ErrUnknownSensor, kind)
}

// Sense returns the raw value of one sensor against view.
func (c *Creature) Sense(view View, opts SenseOptions, kind neural.Sensor) (float64, error) {
	return senses{c: c, view: view, opts: opts}.Sense(kind)
}

// BorderSteps returns the number of free steps between the creature and the
// border in direction dir.
func (c *Creature) BorderSteps(view View, dir neural.Rotation) (int, error) {
	w, h := view.Size()
	switch dir {
	case neural.Up:
		return c.Y, nil
	case neural.Right:
		return w - 1 - c.X, nil
	case neural.Down:
		return h - 1 - c.Y, nil
	case neural.Left:
		return c.X, nil
	}
	return 0, fmt.Errorf("%w: %d", neural.ErrInvalidRotation, dir)
}

// axisLength returns the board size along the axis of dir.
func axisLength(view View, dir neural.Rotation) int {
	w, h := view.Size()
	if dir == neural.Left || dir == neural.Right {
		return w
	}
	return h
}

// BorderDistanceForward is the distance to the border ahead, normalised by
// the board size along the heading's axis.
func (c *Creature) BorderDistanceForward(view View) (float64, error) {
	steps, err := c.BorderSteps(view, c.Rotation)
	if err != nil {
		return 0, err
	}
	return float64(steps) / float64(axisLength(view, c.Rotation)), nil
}

// CreatureDistanceForward is the distance to the nearest creature straight
// ahead, normalised like BorderDistanceForward. With nobody ahead it is the
// border distance.
func (c *Creature) CreatureDistanceForward(view View) (float64, error) {
	dx, dy, err := c.Rotation.Delta()
	if err != nil {
		return 0, err
	}
	limit, err := c.BorderSteps(view, c.Rotation)
	if err != nil {
		return 0, err
	}

	steps := limit
	for i := 1; i <= limit; i++ {
		if view.Occupied(c.X+dx*i, c.Y+dy*i) {
			steps = i
			break
		}
	}
	return float64(steps) / float64(axisLength(view, c.Rotation)), nil
}

// PopulationDensity counts the other creatures within radius and divides by
// the neighborhood area: (2r)² for a square, πr² for a circle.
func (c *Creature) PopulationDensity(view View, radius int, circular bool) float64 {
	if radius <= 0 {
		return 0
	}
	w, h := view.Size()

	count := 0
	for y := max(0, c.Y-radius); y <= min(h-1, c.Y+radius); y++ {
		for x := max(0, c.X-radius); x <= min(w-1, c.X+radius); x++ {
			if x == c.X && y == c.Y {
				continue
			}
			if circular {
				dx, dy := float64(x-c.X), float64(y-c.Y)
				if math.Sqrt(dx*dx+dy*dy) > float64(radius) {
					continue
				}
			}
			if view.Occupied(x, y) {
				count++
			}
		}
	}

	if circular {
		return float64(count) / (math.Pi * float64(radius*radius))
	}
	side := float64(2 * radius)
	return float64(count) / (side * side)
}

// Think runs the observe phase for one tick: it clears the queued move, lets
// the brain decide against view and returns the destination cell the creature
// asks for. ok is false when no move was queued or the move would leave the
// board or stay in place.
func (c *Creature) Think(view View, opts SenseOptions) (cand Candidate, ok bool, err error) {
	c.ClearMove()
	if err := c.Brain.Think(c.random(), senses{c: c, view: view, opts: opts}, c); err != nil {
		return Candidate{}, false, err
	}

	m, queued := c.QueuedMove()
	if !queued {
		return Candidate{}, false, nil
	}
	dx, dy, err := m.Dir.Delta()
	if err != nil {
		return Candidate{}, false, err
	}

	next := Cell{c.X + dx, c.Y + dy}
	w, h := view.Size()
	if next.X < 0 || next.X >= w || next.Y < 0 || next.Y >= h {
		return Candidate{}, false, nil
	}
	if next == c.Pos() {
		return Candidate{}, false, nil
	}
	return Candidate{Cell: next, Dir: m.Dir}, true, nil
}

// random returns the creature's private stream, creating one for creatures
// built without New.
func (c *Creature) random() *rand.Rand {
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(int64(c.X)<<32 | int64(c.Y)))
	}
	return c.rng
}
