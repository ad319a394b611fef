// Package sim drives a board: it runs ticks and generation rollovers, applies
// control commands between them, publishes frames and records telemetry.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/gridlife/board"
	"github.com/pthm-cable/gridlife/telemetry"
)

// commandBuffer is the number of commands that can queue without blocking
// the sender.
const commandBuffer = 16

// Observer receives a frame after every tick and rollover. Observe is called
// on the runner's goroutine and must not block.
type Observer interface {
	Observe(f board.Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(board.Frame)

// Observe implements Observer.
func (f ObserverFunc) Observe(frame board.Frame) { f(frame) }

// Options configures a Runner.
type Options struct {
	Speed          int  // initial speed, 0-100
	MaxGenerations int  // 0 runs until stopped
	LogStats       bool // log generation and perf stats
	PerfWindow     int  // ticks averaged by the perf collector

	// StatsCallback, if set, receives the stats of every finished generation.
	StatsCallback func(telemetry.GenerationStats)
}

// Runner owns the simulation loop for one board.
type Runner struct {
	board     *board.Board
	opts      Options
	commands  chan Command
	observers []Observer

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager

	speed  atomic.Int32
	paused atomic.Bool
}

// NewRunner creates a runner for b. output may be nil.
func NewRunner(b *board.Board, opts Options, output *telemetry.OutputManager) *Runner {
	window := opts.PerfWindow
	if window <= 0 {
		window = b.StepsPerGeneration() + 1
	}
	r := &Runner{
		board:     b,
		opts:      opts,
		commands:  make(chan Command, commandBuffer),
		collector: telemetry.NewCollector(),
		perf:      telemetry.NewPerfCollector(window),
		output:    output,
	}
	r.speed.Store(int32(ClampSpeed(opts.Speed)))
	b.SetPhaseTimer(r.perf)
	return r
}

// AddObserver registers o. Call before Run.
func (r *Runner) AddObserver(o Observer) {
	r.observers = append(r.observers, o)
}

// Send queues a command. It blocks only when the queue is full.
func (r *Runner) Send(cmd Command) {
	r.commands <- cmd
}

// Paused reports whether the loop is paused.
func (r *Runner) Paused() bool {
	return r.paused.Load()
}

// Speed returns the current speed.
func (r *Runner) Speed() int {
	return int(r.speed.Load())
}

// Run drives the board until Stop, cancellation, MaxGenerations or a fault.
// Commands and ctx are checked only between ticks and before each rollover.
// Run returns nil on Stop and on reaching MaxGenerations, and ctx.Err() on
// cancellation.
func (r *Runner) Run(ctx context.Context) error {
	slog.Info("simulation started",
		"population", r.board.Population(),
		"steps_per_generation", r.board.StepsPerGeneration(),
		"speed", r.Speed(),
		"max_generations", r.opts.MaxGenerations,
	)
	r.publish()

	for {
		stop, err := r.checkpoint(ctx)
		if err != nil {
			return err
		}
		if stop {
			slog.Info("simulation stopped", "generation", r.board.Generation(), "step", r.board.Step())
			return nil
		}

		if r.board.GenerationStep() >= r.board.StepsPerGeneration() {
			if err := r.rollover(); err != nil {
				return err
			}
			r.publish()
			if r.opts.MaxGenerations > 0 && r.board.Generation() >= r.opts.MaxGenerations {
				slog.Info("max generations reached", "generation", r.board.Generation(), "step", r.board.Step())
				return nil
			}
			continue
		}

		if err := r.tick(); err != nil {
			return err
		}
		r.publish()

		if err := r.wait(ctx); err != nil {
			return err
		}
	}
}

func (r *Runner) tick() error {
	r.perf.StartTick()
	if err := r.board.Tick(); err != nil {
		return fmt.Errorf("tick %d: %w", r.board.Step()+1, err)
	}
	r.perf.EndTick()
	r.collector.RecordTick(r.board.Moves())
	return nil
}

// rollover records the finished generation and starts the next one.
func (r *Runner) rollover() error {
	r.perf.StartTick()
	r.perf.StartPhase(telemetry.PhaseTelemetry)
	stats := r.collector.Flush(r.board.Generation(), r.board.Step(), r.board.Members())
	r.recordGeneration(stats)

	if err := r.board.TickRound(); err != nil {
		return fmt.Errorf("generation %d rollover: %w", r.board.Generation(), err)
	}
	r.perf.EndTick()

	slog.Debug("generation rollover", "generation", r.board.Generation(), "step", r.board.Step())
	return nil
}

// checkpoint applies queued commands. While paused it blocks until a command
// or cancellation arrives. stop is true after a Stop command.
func (r *Runner) checkpoint(ctx context.Context) (stop bool, err error) {
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case cmd := <-r.commands:
			if r.apply(cmd) {
				return true, nil
			}
			continue
		default:
		}

		if !r.paused.Load() {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case cmd := <-r.commands:
			if r.apply(cmd) {
				return true, nil
			}
		}
	}
}

// apply handles one command and reports whether it was Stop.
func (r *Runner) apply(cmd Command) bool {
	switch cmd.Kind {
	case CommandPause:
		r.paused.Store(true)
	case CommandResume:
		r.paused.Store(false)
	case CommandStop:
		return true
	case CommandSetSpeed:
		r.speed.Store(int32(ClampSpeed(cmd.Speed)))
	default:
		slog.Warn("ignoring unknown command", "command", cmd.String())
		return false
	}
	slog.Debug("command", "command", cmd.String())
	return false
}

// wait sleeps for the current speed's delay.
func (r *Runner) wait(ctx context.Context) error {
	d := Delay(r.Speed())
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Runner) publish() {
	if len(r.observers) == 0 {
		return
	}
	frame := r.board.Frame()
	for _, o := range r.observers {
		o.Observe(frame)
	}
}
