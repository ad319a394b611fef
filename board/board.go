// Package board owns the grid and its population. Creatures live as entities
// in an ark ECS world; the board runs the per-step tick and the generation
// rollover and is the only writer of creature positions.
package board

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gridlife/components"
	"github.com/pthm-cable/gridlife/config"
	"github.com/pthm-cable/gridlife/creature"
	"github.com/pthm-cable/gridlife/neural"
)

var (
	// ErrBoardFull is returned when a rollover has fewer free cells than
	// creatures to place.
	ErrBoardFull = errors.New("board full")
	// ErrInvalidOptions is returned by New for unusable dimensions or counts.
	ErrInvalidOptions = errors.New("invalid board options")
)

// Options are the construction parameters of a board.
type Options struct {
	Width, Height      int
	StepsPerGeneration int
	Population         int     // rounded down to even
	MutationFactor     float64 // 0 means neural.DefaultMutationFactor
	Seed               int64   // 0 seeds from the clock
	Neural             neural.Params
	Senses             creature.SenseOptions
	Workers            int // observe-phase workers, 0 uses GOMAXPROCS
}

// NewOptions builds board options from a loaded configuration.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Width:              cfg.Board.Width,
		Height:             cfg.Board.Height,
		StepsPerGeneration: cfg.Board.StepsPerGeneration,
		Population:         cfg.Derived.Population,
		MutationFactor:     cfg.Neural.MutationFactor,
		Seed:               cfg.Simulation.Seed,
		Neural: neural.Params{
			ExtraConnectionChance: cfg.Neural.ExtraConnectionChance,
			ExtraInputChance:      cfg.Neural.ExtraInputChance,
			DirectionalDeadZone:   cfg.Neural.DirectionalDeadZone,
		},
		Senses: creature.SenseOptions{
			PopulationRadius:   cfg.Sensors.PopulationRadius,
			PopulationCircular: cfg.Sensors.PopulationCircular,
		},
		Workers: cfg.Simulation.Workers,
	}
}

func (o Options) validate() error {
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidOptions, o.Width, o.Height)
	case o.StepsPerGeneration <= 0:
		return fmt.Errorf("%w: steps per generation %d", ErrInvalidOptions, o.StepsPerGeneration)
	case o.Population < 0 || o.Population > o.Width*o.Height:
		return fmt.Errorf("%w: population %d on %d cells", ErrInvalidOptions, o.Population, o.Width*o.Height)
	case o.MutationFactor < 0:
		return fmt.Errorf("%w: mutation factor %v", ErrInvalidOptions, o.MutationFactor)
	}
	return nil
}

// Phase names reported to a PhaseTimer.
const (
	PhaseSnapshot = "snapshot"
	PhaseObserve  = "observe"
	PhaseCommit   = "commit"
	PhaseRollover = "rollover"
)

// PhaseTimer receives phase boundaries from Tick and TickRound.
type PhaseTimer interface {
	StartPhase(phase string)
}

// Sprite is the drawable part of one creature.
type Sprite struct {
	X, Y  int
	Color creature.Color
}

// Frame is an immutable picture of the board for renderers.
type Frame struct {
	Width, Height  int
	Generation     int
	Step           int // cumulative
	GenerationStep int
	Sprites        []Sprite
}

// Member is a read-only copy of one creature and its lineage.
type Member struct {
	Creature creature.Creature
	Lineage  components.Lineage
}

// Board holds the population and the simulation counters.
type Board struct {
	opts Options
	rng  *rand.Rand

	world  *ecs.World
	mapper *ecs.Map2[creature.Creature, components.Lineage]
	filter *ecs.Filter2[creature.Creature, components.Lineage]

	grid     *grid
	parallel *parallelState
	timer    PhaseTimer

	population int
	generation int
	step       int
	genStep    int
	moves      int // committed moves in the last tick
	nextID     uint32
}

// New creates a board and places the initial population on random free
// cells. Every founder gets a random color and a freshly bootstrapped brain.
func New(opts Options) (*Board, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.MutationFactor == 0 {
		opts.MutationFactor = neural.DefaultMutationFactor
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	world := ecs.NewWorld()
	b := &Board{
		opts:       opts,
		rng:        rand.New(rand.NewSource(seed)),
		world:      world,
		mapper:     ecs.NewMap2[creature.Creature, components.Lineage](world),
		filter:     ecs.NewFilter2[creature.Creature, components.Lineage](world),
		grid:       newGrid(opts.Width, opts.Height, opts.StepsPerGeneration),
		parallel:   newParallelState(opts.Workers),
		population: opts.Population &^ 1,
	}

	free := b.grid.free()
	b.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })

	for i := 0; i < b.population; i++ {
		cell := free[len(free)-1]
		free = free[:len(free)-1]

		color := creature.Color{
			R: uint8(b.rng.Intn(255)),
			G: uint8(b.rng.Intn(255)),
			B: uint8(b.rng.Intn(255)),
		}
		c, err := creature.New(b.rng, cell.X, cell.Y, color, opts.MutationFactor, opts.Neural)
		if err != nil {
			return nil, fmt.Errorf("creating creature %d: %w", i, err)
		}
		lin := components.Lineage{ID: b.newID()}
		b.mapper.NewEntity(c, &lin)
		b.grid.set(cell.X, cell.Y, true)
	}

	return b, nil
}

// SetPhaseTimer installs t to receive phase boundaries. nil disables timing.
func (b *Board) SetPhaseTimer(t PhaseTimer) {
	b.timer = t
}

func (b *Board) phase(name string) {
	if b.timer != nil {
		b.timer.StartPhase(name)
	}
}

func (b *Board) newID() uint32 {
	b.nextID++
	return b.nextID
}

// snapshot gathers the live creatures in insertion order and rebuilds the
// occupancy grid from their positions.
func (b *Board) snapshot() {
	p := b.parallel
	p.reset()
	b.grid.clear()

	query := b.filter.Query()
	for query.Next() {
		c, lin := query.Get()
		p.ids = append(p.ids, lin.ID)
		p.creatures = append(p.creatures, c)
		b.grid.set(c.X, c.Y, true)
	}
}

// Tick advances the board one step. Every creature thinks against the same
// pre-tick grid, then moves are committed one by one in insertion order: a
// move succeeds only if its destination is still free. A brain fault aborts
// the tick before any creature moves.
func (b *Board) Tick() error {
	b.phase(PhaseSnapshot)
	b.snapshot()
	b.phase(PhaseObserve)
	b.observe()

	p := b.parallel
	for i, obs := range p.results {
		if obs.err != nil {
			return fmt.Errorf("creature %d: %w", p.ids[i], obs.err)
		}
	}

	b.phase(PhaseCommit)
	b.moves = 0
	for i, c := range p.creatures {
		obs := p.results[i]
		if obs.ok && !b.grid.Occupied(obs.cand.X, obs.cand.Y) {
			b.grid.set(c.X, c.Y, false)
			b.grid.set(obs.cand.X, obs.cand.Y, true)
			c.SetPos(obs.cand.Cell)
			c.Rotation = obs.cand.Dir
			b.moves++
		}
		c.Age++
	}

	b.step++
	b.genStep++
	return nil
}

// TickRound ends the generation. Creatures are ranked by X descending (ties
// keep insertion order), the rightmost half is culled, and every survivor is
// cloned. Survivor and clone are placed on two distinct random cells and
// start the new generation at age zero. The population is untouched on error.
func (b *Board) TickRound() error {
	b.phase(PhaseRollover)
	members := b.collect()
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Creature.X > members[j].Creature.X
	})

	cull := (len(members) + 1) / 2
	survivors := members[cull:]

	// Everyone is lifted off the board, so every cell is free.
	free := make([]creature.Cell, 0, b.opts.Width*b.opts.Height)
	for x := 0; x < b.opts.Width; x++ {
		for y := 0; y < b.opts.Height; y++ {
			free = append(free, creature.Cell{X: x, Y: y})
		}
	}
	if len(free) < 2*len(survivors) {
		return fmt.Errorf("%w: %d cells for %d creatures", ErrBoardFull, len(free), 2*len(survivors))
	}
	b.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	pop := func() creature.Cell {
		cell := free[len(free)-1]
		free = free[:len(free)-1]
		return cell
	}

	generation := b.generation + 1
	next := make([]Member, 0, 2*len(survivors))
	for i := range survivors {
		s := &survivors[i]
		child, err := s.Creature.Reproduce(b.rng)
		if err != nil {
			return fmt.Errorf("reproducing creature %d: %w", s.Lineage.ID, err)
		}
		child.SetPos(pop())
		s.Creature.SetPos(pop())
		s.Creature.Age = 0
		s.Creature.ClearMove()

		next = append(next, *s, Member{
			Creature: *child,
			Lineage: components.Lineage{
				ID:             b.newID(),
				ParentID:       s.Lineage.ID,
				BornGeneration: generation,
			},
		})
	}

	b.removeAll()
	b.grid.clear()
	for i := range next {
		m := &next[i]
		b.mapper.NewEntity(&m.Creature, &m.Lineage)
		b.grid.set(m.Creature.X, m.Creature.Y, true)
	}

	b.generation = generation
	b.genStep = 0
	return nil
}

// removeAll deletes every creature entity. The query is drained before any
// structural change.
func (b *Board) removeAll() {
	var entities []ecs.Entity
	query := b.filter.Query()
	for query.Next() {
		entities = append(entities, query.Entity())
	}
	for _, e := range entities {
		b.world.RemoveEntity(e)
	}
}

// collect copies the entities out of the world in insertion order. The copies
// keep their brains and random streams, so the originals must be removed
// before the copies are reinserted.
func (b *Board) collect() []Member {
	out := make([]Member, 0, b.population)
	query := b.filter.Query()
	for query.Next() {
		c, lin := query.Get()
		out = append(out, Member{Creature: *c, Lineage: *lin})
	}
	return out
}

// Members returns copies of every creature with its lineage, in insertion
// order. Nothing returned aliases board state.
func (b *Board) Members() []Member {
	out := make([]Member, 0, b.population)
	query := b.filter.Query()
	for query.Next() {
		c, lin := query.Get()
		out = append(out, Member{Creature: c.Snapshot(), Lineage: *lin})
	}
	return out
}

// Creatures returns copies of every creature in insertion order.
func (b *Board) Creatures() []creature.Creature {
	members := b.Members()
	out := make([]creature.Creature, len(members))
	for i := range members {
		out[i] = members[i].Creature
	}
	return out
}

// Frame returns the drawable state of the board.
func (b *Board) Frame() Frame {
	f := Frame{
		Width:          b.opts.Width,
		Height:         b.opts.Height,
		Generation:     b.generation,
		Step:           b.step,
		GenerationStep: b.genStep,
		Sprites:        make([]Sprite, 0, b.population),
	}
	query := b.filter.Query()
	for query.Next() {
		c, _ := query.Get()
		f.Sprites = append(f.Sprites, Sprite{X: c.X, Y: c.Y, Color: c.Color})
	}
	return f
}

// FreeCells lists the unoccupied cells, x outer and y inner.
func (b *Board) FreeCells() []creature.Cell {
	return b.grid.free()
}

// Moves returns the number of creatures that moved in the last tick.
func (b *Board) Moves() int {
	return b.moves
}

// Population returns the number of creatures on the board.
func (b *Board) Population() int {
	return b.population
}

// Size returns the board dimensions.
func (b *Board) Size() (width, height int) {
	return b.opts.Width, b.opts.Height
}

// StepsPerGeneration returns the number of ticks in one generation.
func (b *Board) StepsPerGeneration() int {
	return b.opts.StepsPerGeneration
}

// Generation returns the number of completed rollovers.
func (b *Board) Generation() int {
	return b.generation
}

// Step returns the cumulative tick count.
func (b *Board) Step() int {
	return b.step
}

// GenerationStep returns the ticks run since the last rollover.
func (b *Board) GenerationStep() int {
	return b.genStep
}

// Close stops the worker pool.
func (b *Board) Close() {
	b.parallel.stopWorkers()
}
