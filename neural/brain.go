package neural

import (
	"fmt"
	"math/rand"
)

// DefaultMutationFactor is used when a brain is created with a zero factor.
const DefaultMutationFactor = 10.0

// Params holds the tunable probabilities of brain construction and decision.
type Params struct {
	// ExtraConnectionChance is the probability of adding another random
	// connection while bootstrapping a fresh brain.
	ExtraConnectionChance float64 `yaml:"extra_connection_chance"`
	// ExtraInputChance is the probability of adding another input to a
	// random connection.
	ExtraInputChance float64 `yaml:"extra_input_chance"`
	// DirectionalDeadZone gates MoveLeftRight, MoveX and MoveY: they fire
	// only when |certainty| >= DirectionalDeadZone. Zero always fires.
	DirectionalDeadZone float64 `yaml:"directional_dead_zone"`
}

// DefaultParams returns the reference probabilities.
func DefaultParams() Params {
	return Params{
		ExtraConnectionChance: 0.1,
		ExtraInputChance:      0.3,
		DirectionalDeadZone:   0,
	}
}

// Drifter receives the color drift attempts a mutation pass makes.
type Drifter interface {
	DriftColor(rng *rand.Rand)
}

// Brain is an ordered list of connections plus the self-adjusting mutation
// factor that controls how strongly the brain changes between generations.
type Brain struct {
	Connections    []Connection
	MutationFactor float64
	Params         Params
}

// NewBrain builds a brain. With no connections it bootstraps one random
// connection and keeps adding more with Params.ExtraConnectionChance. With
// connections (the reproduction path) it takes ownership of the slice and
// runs one mutation pass instead, reporting color drift to d.
func NewBrain(rng *rand.Rand, connections []Connection, mutationFactor float64, params Params, d Drifter) (*Brain, error) {
	if mutationFactor == 0 {
		mutationFactor = DefaultMutationFactor
	}
	b := &Brain{
		Connections:    connections,
		MutationFactor: mutationFactor,
		Params:         params,
	}

	if len(connections) == 0 {
		b.addRandomConnection(rng)
		for chance(rng, params.ExtraConnectionChance) {
			b.addRandomConnection(rng)
		}
		return b, nil
	}

	for i := range b.Connections {
		if err := b.Connections[i].Validate(); err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
	}
	b.Mutate(rng, d)
	return b, nil
}

// Clone deep-copies the brain. The clone's connections share no memory with b.
func (b *Brain) Clone() *Brain {
	return &Brain{
		Connections:    b.CloneConnections(),
		MutationFactor: b.MutationFactor,
		Params:         b.Params,
	}
}

// CloneConnections returns a deep copy of the connection list.
func (b *Brain) CloneConnections() []Connection {
	out := make([]Connection, len(b.Connections))
	for i, c := range b.Connections {
		out[i] = c.Clone()
	}
	return out
}

func (b *Brain) addRandomConnection(rng *rand.Rand) {
	b.Connections = append(b.Connections, randomConnection(rng, b.Params.ExtraInputChance))
}

// Mutate runs one mutation pass:
//   - every weight and bias is scaled by 1 + change*U(-0.5, 0.5), where
//     change = 0.01 * MutationFactor;
//   - with probability 0.01*MutationFactor one connection is removed (never
//     the last one);
//   - with the same probability one random connection is added;
//   - MutationFactor grows by change*U(0, 1).
//
// Each weight perturbation and each topology change makes one color drift
// attempt on d. d may be nil.
func (b *Brain) Mutate(rng *rand.Rand, d Drifter) {
	drift := func() {
		if d != nil {
			d.DriftColor(rng)
		}
	}

	change := 0.01 * b.MutationFactor
	for i := range b.Connections {
		conn := &b.Connections[i]
		for j, w := range conn.Weights {
			conn.Weights[j] = w + w*change*(rng.Float64()-0.5)
			drift()
		}
		conn.Bias += conn.Bias * change * (rng.Float64() - 0.5)
	}

	if chance(rng, 0.01*b.MutationFactor) && len(b.Connections) > 1 {
		drift()
		i := rng.Intn(len(b.Connections))
		b.Connections = append(b.Connections[:i], b.Connections[i+1:]...)
	}

	if chance(rng, 0.01*b.MutationFactor) {
		drift()
		b.addRandomConnection(rng)
	}

	b.MutationFactor += change * rng.Float64()
}

// InputCount returns the total number of sensory inputs over all connections.
func (b *Brain) InputCount() int {
	n := 0
	for _, c := range b.Connections {
		n += len(c.Inputs)
	}
	return n
}
