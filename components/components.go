// Package components defines ECS components for the simulation.
package components

// Lineage records where a creature came from.
type Lineage struct {
	ID             uint32
	ParentID       uint32 // 0 for founders
	BornGeneration int
}

// IsFounder reports whether the creature was created at board setup.
func (l Lineage) IsFounder() bool {
	return l.ParentID == 0
}
