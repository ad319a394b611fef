package board

import "github.com/pthm-cable/gridlife/creature"

// grid is the occupancy picture of the board. During the observe phase of a
// tick it is read concurrently and never written; the commit phase owns it
// exclusively.
type grid struct {
	width, height int
	steps         int
	cells         []bool // row-major, y*width + x
}

func newGrid(width, height, steps int) *grid {
	return &grid{
		width:  width,
		height: height,
		steps:  steps,
		cells:  make([]bool, width*height),
	}
}

// Size implements creature.View.
func (g *grid) Size() (int, int) {
	return g.width, g.height
}

// StepsPerGeneration implements creature.View.
func (g *grid) StepsPerGeneration() int {
	return g.steps
}

// Occupied implements creature.View. Cells off the board are never occupied.
func (g *grid) Occupied(x, y int) bool {
	if !g.inBounds(x, y) {
		return false
	}
	return g.cells[y*g.width+x]
}

func (g *grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

func (g *grid) set(x, y int, occupied bool) {
	g.cells[y*g.width+x] = occupied
}

func (g *grid) clear() {
	clear(g.cells)
}

// free lists the unoccupied cells, x outer and y inner.
func (g *grid) free() []creature.Cell {
	out := make([]creature.Cell, 0, len(g.cells))
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			if !g.cells[y*g.width+x] {
				out = append(out, creature.Cell{X: x, Y: y})
			}
		}
	}
	return out
}
