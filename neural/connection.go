package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Connection is a weighted, biased edge from a set of sensory neurons to a
// single action neuron.
type Connection struct {
	Inputs  []Sensor
	Weights []float64 // one per input
	Bias    float64
	Output  Action
}

// NewConnection validates and builds a connection. The slices are stored as
// given, not copied.
func NewConnection(inputs []Sensor, weights []float64, bias float64, output Action) (Connection, error) {
	c := Connection{Inputs: inputs, Weights: weights, Bias: bias, Output: output}
	if err := c.Validate(); err != nil {
		return Connection{}, err
	}
	return c, nil
}

// Validate checks the arity and that every neuron is in its catalog.
func (c *Connection) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrEmptyConnection
	}
	if len(c.Inputs) != len(c.Weights) {
		return fmt.Errorf("%w: %d inputs, %d weights", ErrArityMismatch, len(c.Inputs), len(c.Weights))
	}
	for _, in := range c.Inputs {
		if !in.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownSensor, in)
		}
	}
	if !c.Output.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownAction, c.Output)
	}
	return nil
}

// Evaluate averages the weighted inputs, adds the bias and squashes the
// result with tanh, giving a certainty in (-1, 1).
func (c *Connection) Evaluate(values []float64) (float64, error) {
	if len(values) != len(c.Weights) || len(values) == 0 {
		return 0, fmt.Errorf("%w: %d values, %d weights", ErrArityMismatch, len(values), len(c.Weights))
	}
	sum := floats.Dot(c.Weights, values)
	return math.Tanh(sum/float64(len(values)) + c.Bias), nil
}

// Clone returns a deep copy; the clone shares no slices with c.
func (c Connection) Clone() Connection {
	inputs := make([]Sensor, len(c.Inputs))
	copy(inputs, c.Inputs)
	weights := make([]float64, len(c.Weights))
	copy(weights, c.Weights)
	return Connection{Inputs: inputs, Weights: weights, Bias: c.Bias, Output: c.Output}
}

// randomConnection draws a connection with a random non-empty set of distinct
// inputs. After the first input each further one is taken with probability
// extraInputChance until the catalog runs out.
func randomConnection(rng *rand.Rand, extraInputChance float64) Connection {
	pool := rng.Perm(NumSensors)

	inputs := []Sensor{Sensor(pool[len(pool)-1])}
	weights := []float64{randomUnit(rng)}
	pool = pool[:len(pool)-1]

	for len(pool) > 0 && chance(rng, extraInputChance) {
		inputs = append(inputs, Sensor(pool[len(pool)-1]))
		weights = append(weights, randomUnit(rng))
		pool = pool[:len(pool)-1]
	}

	return Connection{
		Inputs:  inputs,
		Weights: weights,
		Bias:    randomUnit(rng),
		Output:  Action(rng.Intn(NumActions)),
	}
}

// randomUnit returns a uniform value in [-1, 1).
func randomUnit(rng *rand.Rand) float64 {
	return (rng.Float64() - 0.5) * 2
}

// chance returns true with probability p.
func chance(rng *rand.Rand, p float64) bool {
	return p > rng.Float64()
}
