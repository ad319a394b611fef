// Package camera maps between grid cells and screen pixels.
package camera

// Camera places a width x height grid on screen with square tiles.
type Camera struct {
	// Screen position of the top-left corner of cell (0, 0)
	OriginX, OriginY int32

	// Pixels per cell side
	TileSize int32

	GridW, GridH int
}

// New creates a camera for a gridW x gridH grid at the screen origin.
func New(gridW, gridH, tileSize int) *Camera {
	return &Camera{
		TileSize: int32(max(1, tileSize)),
		GridW:    gridW,
		GridH:    gridH,
	}
}

// Size returns the grid's on-screen size in pixels.
func (c *Camera) Size() (w, h int32) {
	return c.TileSize * int32(c.GridW), c.TileSize * int32(c.GridH)
}

// CellToScreen returns the screen position of the top-left corner of a cell.
func (c *Camera) CellToScreen(x, y int) (sx, sy int32) {
	return c.OriginX + int32(x)*c.TileSize, c.OriginY + int32(y)*c.TileSize
}

// ScreenToCell returns the cell under a screen position. ok is false outside
// the grid.
func (c *Camera) ScreenToCell(sx, sy int32) (x, y int, ok bool) {
	dx, dy := sx-c.OriginX, sy-c.OriginY
	if dx < 0 || dy < 0 {
		return 0, 0, false
	}
	x, y = int(dx/c.TileSize), int(dy/c.TileSize)
	if x >= c.GridW || y >= c.GridH {
		return 0, 0, false
	}
	return x, y, true
}

// Fit picks the largest tile size at which the grid fits a viewport and
// centers the grid in it. The tile size never drops below one pixel.
func (c *Camera) Fit(viewportW, viewportH int32) {
	if c.GridW <= 0 || c.GridH <= 0 {
		return
	}
	c.TileSize = max(1, min(viewportW/int32(c.GridW), viewportH/int32(c.GridH)))
	w, h := c.Size()
	c.OriginX = max(0, (viewportW-w)/2)
	c.OriginY = max(0, (viewportH-h)/2)
}
