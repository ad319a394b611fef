// Package renderer draws board frames with raylib. It only reads frames
// published by the runner and never touches the board itself.
package renderer

import (
	"fmt"
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridlife/board"
	"github.com/pthm-cable/gridlife/camera"
	"github.com/pthm-cable/gridlife/creature"
)

// GridRenderer keeps the latest frame and draws it as colored tiles.
// Observe may be called from the simulation goroutine while Draw runs on the
// raylib thread.
type GridRenderer struct {
	cam   *camera.Camera
	frame atomic.Pointer[board.Frame]

	Background rl.Color
	Border     rl.Color
	Text       rl.Color
}

// NewGridRenderer creates a renderer placing cells with cam.
func NewGridRenderer(cam *camera.Camera) *GridRenderer {
	return &GridRenderer{
		cam:        cam,
		Background: rl.Color{R: 15, G: 18, B: 22, A: 255},
		Border:     rl.Color{R: 60, G: 70, B: 80, A: 255},
		Text:       rl.RayWhite,
	}
}

// Observe stores f as the frame to draw next.
func (r *GridRenderer) Observe(f board.Frame) {
	r.frame.Store(&f)
}

// Frame returns the latest frame, if any has been published.
func (r *GridRenderer) Frame() (board.Frame, bool) {
	f := r.frame.Load()
	if f == nil {
		return board.Frame{}, false
	}
	return *f, true
}

// Draw renders the latest frame through the camera, then the generation
// counter and, when paused, a paused marker. Call between BeginDrawing and
// EndDrawing.
func (r *GridRenderer) Draw(paused bool) {
	f, ok := r.Frame()
	if !ok {
		return
	}

	ox, oy := r.cam.OriginX, r.cam.OriginY
	w, h := r.cam.Size()
	rl.DrawRectangle(ox, oy, w, h, r.Background)

	tile := r.cam.TileSize
	for _, s := range f.Sprites {
		x, y := r.cam.CellToScreen(s.X, s.Y)
		rl.DrawRectangle(x, y, tile, tile, toRaylib(s.Color))
	}
	rl.DrawRectangleLines(ox, oy, w, h, r.Border)

	rl.DrawText(fmt.Sprintf("gen: %d", f.Generation), ox+4, oy+4, 10, r.Text)
	if paused {
		rl.DrawText("paused", ox+4, oy+16, 10, rl.Yellow)
	}
}

func toRaylib(c creature.Color) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, 255)
}
