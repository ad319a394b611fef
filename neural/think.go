package neural

import (
	"fmt"
	"math"
	"math/rand"
)

// Senses supplies raw sensory values. Values outside [0, 1] are clamped by
// the brain before they reach a connection.
type Senses interface {
	Sense(s Sensor) (float64, error)
}

// Body is the part of a creature the brain acts on.
type Body interface {
	Heading() Rotation
	// Move requests a one-cell move. Only the strongest request of a tick
	// survives.
	Move(dir Rotation, strength float64)
	SetOscillator(certainty float64) error
}

// Think evaluates every connection against senses and dispatches each
// certainty to its action neuron on body.
func (b *Brain) Think(rng *rand.Rand, senses Senses, body Body) error {
	var buf [NumSensors]float64

	for i := range b.Connections {
		conn := &b.Connections[i]

		values := buf[:0]
		if len(conn.Inputs) > len(buf) {
			values = make([]float64, 0, len(conn.Inputs))
		}
		for _, in := range conn.Inputs {
			v, err := senses.Sense(in)
			if err != nil {
				return fmt.Errorf("sensing %s: %w", in, err)
			}
			values = append(values, clamp01(v))
		}

		certainty, err := conn.Evaluate(values)
		if err != nil {
			return fmt.Errorf("connection %d: %w", i, err)
		}
		if err := b.act(rng, body, conn.Output, certainty); err != nil {
			return fmt.Errorf("connection %d: %w", i, err)
		}
	}
	return nil
}

// act applies one certainty to an action neuron.
func (b *Brain) act(rng *rand.Rand, body Body, action Action, certainty float64) error {
	switch action {
	case ActionSetOscillator:
		if certainty > 0 {
			return body.SetOscillator(certainty)
		}
	case ActionMoveRandom:
		if certainty > 0 {
			body.Move(Rotation(rng.Intn(NumRotations)), certainty)
		}
	case ActionMoveForward:
		if certainty > 0 {
			body.Move(body.Heading(), certainty)
		}
	case ActionMoveReverse:
		if certainty > 0 {
			body.Move(body.Heading().Reverse(), certainty)
		}
	case ActionMoveLeftRight:
		if b.fires(certainty) {
			heading := body.Heading()
			dir := heading.TurnRight()
			if certainty < 0 {
				dir = heading.TurnLeft()
			}
			body.Move(dir, math.Abs(certainty))
		}
	case ActionMoveX:
		if b.fires(certainty) {
			dir := Right
			if certainty < 0 {
				dir = Left
			}
			body.Move(dir, math.Abs(certainty))
		}
	case ActionMoveY:
		if b.fires(certainty) {
			dir := Down
			if certainty < 0 {
				dir = Up
			}
			body.Move(dir, math.Abs(certainty))
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownAction, action)
	}
	return nil
}

// fires reports whether a signed directional certainty clears the dead zone.
func (b *Brain) fires(certainty float64) bool {
	return math.Abs(certainty) >= b.Params.DirectionalDeadZone
}

// OscillatorPeriod maps a certainty to an oscillator period:
// 1 + round(1.5 + e^(7*(tanh(c)+1)/2)). The result always lies in [2, 2048]
// for finite input; anything else is reported as ErrOscillatorRange.
func OscillatorPeriod(certainty float64) (int, error) {
	unit := (math.Tanh(certainty) + 1) / 2
	period := 1 + int(math.Round(1.5+math.Exp(7*unit)))
	if period < MinOscillatorPeriod || period > MaxOscillatorPeriod || math.IsNaN(certainty) {
		return 0, fmt.Errorf("%w: %d from certainty %v", ErrOscillatorRange, period, certainty)
	}
	return period, nil
}

// Oscillator period bounds.
const (
	MinOscillatorPeriod = 2
	MaxOscillatorPeriod = 2048
)

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
