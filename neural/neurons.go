// Package neural provides the evolvable connection brains that drive creatures.
//
// A brain is a flat list of connections. Each connection reads a subset of the
// sensory neurons, squashes their weighted average through tanh and hands the
// result (the certainty) to one action neuron.
package neural

import (
	"errors"
	"fmt"
)

// Construction and evaluation faults. These indicate a programming or
// configuration bug and abort the tick that hit them.
var (
	ErrArityMismatch   = errors.New("connection inputs and weights differ in length")
	ErrUnknownSensor   = errors.New("unknown sensory neuron kind")
	ErrUnknownAction   = errors.New("unknown action neuron kind")
	ErrInvalidRotation = errors.New("invalid rotation")
	ErrOscillatorRange = errors.New("oscillator period out of range")
	ErrEmptyConnection = errors.New("connection has no inputs")
)

// Rotation is a cardinal heading on the grid.
type Rotation uint8

const (
	Up Rotation = iota
	Right
	Down
	Left
)

// NumRotations is the size of the rotation cycle.
const NumRotations = 4

// Valid reports whether r is one of the four headings.
func (r Rotation) Valid() bool {
	return r < NumRotations
}

// Reverse returns the opposite heading.
func (r Rotation) Reverse() Rotation {
	return (r + 2) % NumRotations
}

// TurnLeft returns the heading a quarter turn counter-clockwise.
func (r Rotation) TurnLeft() Rotation {
	return (r + NumRotations - 1) % NumRotations
}

// TurnRight returns the heading a quarter turn clockwise.
func (r Rotation) TurnRight() Rotation {
	return (r + 1) % NumRotations
}

// Delta returns the unit grid step for r. Y grows downwards.
func (r Rotation) Delta() (dx, dy int, err error) {
	switch r {
	case Up:
		return 0, -1, nil
	case Right:
		return 1, 0, nil
	case Down:
		return 0, 1, nil
	case Left:
		return -1, 0, nil
	}
	return 0, 0, fmt.Errorf("%w: %d", ErrInvalidRotation, r)
}

func (r Rotation) String() string {
	switch r {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	}
	return fmt.Sprintf("rotation(%d)", uint8(r))
}

// Sensor identifies one sensory neuron. The order is part of the genome
// encoding and must not change.
type Sensor uint8

const (
	SensorAge Sensor = iota
	SensorRandom
	SensorOscillator
	SensorPopulation
	SensorCreatureForward
	SensorBorderForward
	SensorLastMoveY
	SensorLastMoveX
	SensorBorderDistanceX
	SensorBorderDistanceY
	SensorPositionX
	SensorPositionY

	// NumSensors is the size of the sensory catalog.
	NumSensors = iota
)

var sensorNames = [NumSensors]string{
	"Age", "Rnd", "Osc", "Pop", "Cfd", "Bfd",
	"LMy", "LMx", "BDx", "BDy", "Lx", "Ly",
}

// Valid reports whether s is in the sensory catalog.
func (s Sensor) Valid() bool {
	return s < NumSensors
}

func (s Sensor) String() string {
	if s.Valid() {
		return sensorNames[s]
	}
	return fmt.Sprintf("sensor(%d)", uint8(s))
}

// Action identifies one action neuron.
type Action uint8

const (
	ActionSetOscillator Action = iota
	ActionMoveRandom
	ActionMoveForward
	ActionMoveReverse
	ActionMoveLeftRight
	ActionMoveX
	ActionMoveY

	// NumActions is the size of the action catalog.
	NumActions = iota
)

var actionNames = [NumActions]string{
	"OSC", "Mrn", "Mfd", "Mrv", "MLR", "MX", "MY",
}

// Valid reports whether a is in the action catalog.
func (a Action) Valid() bool {
	return a < NumActions
}

func (a Action) String() string {
	if a.Valid() {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}
