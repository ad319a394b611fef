package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridlife/board"
	"github.com/pthm-cable/gridlife/camera"
	"github.com/pthm-cable/gridlife/config"
	"github.com/pthm-cable/gridlife/renderer"
	"github.com/pthm-cable/gridlife/sim"
	"github.com/pthm-cable/gridlife/telemetry"
	"github.com/pthm-cable/gridlife/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output generation stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config value, then time-based)")
	maxGenerations := flag.Int("max-generations", 0, "Stop after N generations (0 = config value)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if cfg.Simulation.Seed == 0 {
		cfg.Simulation.Seed = time.Now().UnixNano()
	}
	if *maxGenerations > 0 {
		cfg.Simulation.MaxGenerations = *maxGenerations
	}
	if *outputDir != "" {
		cfg.Telemetry.OutputDir = *outputDir
	}
	if *logStats {
		cfg.Telemetry.LogStats = true
	}

	if err := run(cfg, *headless); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, headless bool) error {
	b, err := board.New(board.NewOptions(cfg))
	if err != nil {
		return fmt.Errorf("creating board: %w", err)
	}
	defer b.Close()

	output, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := output.Close(); err != nil {
			slog.Error("failed to close output files", "error", err)
		}
	}()
	if err := output.WriteConfig(cfg); err != nil {
		return err
	}
	if output != nil {
		slog.Info("writing telemetry", "dir", output.Dir())
	}

	opts := sim.Options{
		Speed:          cfg.Simulation.Speed,
		MaxGenerations: cfg.Simulation.MaxGenerations,
		LogStats:       cfg.Telemetry.LogStats,
	}

	slog.Info("starting simulation",
		"seed", cfg.Simulation.Seed,
		"board", fmt.Sprintf("%dx%d", cfg.Board.Width, cfg.Board.Height),
		"population", b.Population(),
		"headless", headless,
	)

	if headless {
		return runHeadless(b, opts, output)
	}
	return runGraphical(cfg, b, opts, output)
}

// runHeadless runs until Stop, max generations, a fault or SIGINT/SIGTERM.
func runHeadless(b *board.Board, opts sim.Options, output *telemetry.OutputManager) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := sim.NewRunner(b, opts, output)
	err := r.Run(ctx)
	if errors.Is(err, context.Canceled) {
		slog.Info("interrupted", "generation", b.Generation(), "step", b.Step())
		return nil
	}
	return err
}

// runGraphical keeps raylib on the main goroutine and runs the board on its
// own goroutine. Closing the window sends Stop.
func runGraphical(cfg *config.Config, b *board.Board, opts sim.Options, output *telemetry.OutputManager) error {
	screenW := int32(cfg.Derived.ScreenWidth)
	screenH := int32(cfg.Derived.ScreenHeight)
	panelW := int32(cfg.Screen.PanelWidth)

	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(screenW, screenH, "gridlife")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	cam := camera.New(cfg.Board.Width, cfg.Board.Height, cfg.Screen.TileSize)
	cam.Fit(screenW-panelW, screenH)
	grid := renderer.NewGridRenderer(cam)

	var panel *ui.ControlPanel
	opts.StatsCallback = func(s telemetry.GenerationStats) { panel.SetStats(s) }

	r := sim.NewRunner(b, opts, output)
	r.AddObserver(grid)
	panel = ui.NewControlPanel(r, screenW-panelW, 0, panelW, screenH)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	for !rl.WindowShouldClose() {
		select {
		case err := <-done:
			// Keep the last frame on screen until the window closes.
			done = nil
			if err != nil {
				return err
			}
			slog.Info("simulation finished; close the window to exit")
		default:
		}

		hover := ""
		mouse := rl.GetMousePosition()
		if x, y, ok := cam.ScreenToCell(int32(mouse.X), int32(mouse.Y)); ok {
			hover = fmt.Sprintf("%d, %d", x, y)
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		grid.Draw(r.Paused())
		panel.Draw(hover)
		rl.EndDrawing()
	}

	if done == nil {
		return nil
	}
	if !panel.StopRequested() {
		r.Send(sim.Stop())
	}
	// A paused runner only wakes for commands or cancellation.
	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
