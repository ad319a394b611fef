package ui

import (
	"fmt"
	"sync/atomic"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridlife/sim"
	"github.com/pthm-cable/gridlife/telemetry"
)

// Controller is the part of the runner the panel drives.
type Controller interface {
	Send(cmd sim.Command)
	Paused() bool
	Speed() int
}

// ControlPanel renders pause/resume and stop buttons, a speed slider and the
// stats of the last finished generation.
type ControlPanel struct {
	renderer *Renderer
	ctrl     Controller
	x, y     int32
	width    int32
	height   int32

	sections []SectionDescriptor
	stats    atomic.Pointer[telemetry.GenerationStats]

	speed   int
	stopped bool
}

// NewControlPanel creates a panel occupying the given screen rectangle.
func NewControlPanel(ctrl Controller, x, y, width, height int32) *ControlPanel {
	return &ControlPanel{
		renderer: NewRenderer(),
		ctrl:     ctrl,
		x:        x,
		y:        y,
		width:    width,
		height:   height,
		sections: StatsSections(),
		speed:    ctrl.Speed(),
	}
}

// SetStats replaces the displayed generation stats. Safe to call from the
// simulation goroutine.
func (p *ControlPanel) SetStats(s telemetry.GenerationStats) {
	p.stats.Store(&s)
}

// SetBounds moves the panel, e.g. after a window resize.
func (p *ControlPanel) SetBounds(x, y, width, height int32) {
	p.x, p.y, p.width, p.height = x, y, width, height
}

// StopRequested reports whether the stop button has been pressed.
func (p *ControlPanel) StopRequested() bool {
	return p.stopped
}

// Draw renders the panel and sends commands for any control the user
// touched this frame. hover describes the cell under the mouse, or "".
func (p *ControlPanel) Draw(hover string) {
	r := p.renderer
	pad := r.Theme.Padding
	inner := p.width - pad*2
	bh := r.Theme.ButtonHeight

	r.DrawPanel(p.x, p.y, p.width, p.height)
	x, y := p.x+pad, p.y+pad

	rl.DrawText("gridlife", x, y, 16, rl.White)
	y += r.Theme.LineHeight + 8

	half := float32(inner-pad) / 2
	label := "Pause"
	if p.ctrl.Paused() {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: half, Height: float32(bh)}, label) {
		if p.ctrl.Paused() {
			p.ctrl.Send(sim.Resume())
		} else {
			p.ctrl.Send(sim.Pause())
		}
	}
	if gui.Button(rl.Rectangle{X: float32(x) + half + float32(pad), Y: float32(y), Width: half, Height: float32(bh)}, "Stop") && !p.stopped {
		p.stopped = true
		p.ctrl.Send(sim.Stop())
	}
	y += bh + pad

	y = r.DrawSectionHeader(x, y, "Speed")
	v := gui.SliderBar(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(inner - 28), Height: 16},
		"", "",
		float32(p.speed), 0, 100,
	)
	if n := sim.ClampSpeed(int(v + 0.5)); n != p.speed {
		p.speed = n
		p.ctrl.Send(sim.SetSpeed(n))
	}
	rl.DrawText(fmt.Sprintf("%d", p.speed), x+inner-24, y+3, r.Theme.FontSize, r.Theme.ValueColor)
	y += 16 + pad

	if hover != "" {
		y = r.DrawLabelValue(x, y, "cell", hover)
		y += 4
	}

	stats := p.stats.Load()
	if stats == nil {
		r.DrawLabelValue(x, y, "stats", "after gen 0")
		return
	}
	for _, sd := range p.sections {
		y = r.DrawSection(x, y, sd, *stats, inner)
	}
}
