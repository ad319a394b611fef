package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/gridlife/board"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few ticks
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(board.PhaseSnapshot)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(board.PhaseObserve)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	// Verify we got timing data
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}

	// Verify phases are tracked
	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[board.PhaseSnapshot]; !ok {
		t.Error("expected snapshot phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[board.PhaseObserve]; !ok {
		t.Error("expected observe phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	// Fill window completely
	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(board.PhaseSnapshot)
		pc.EndTick()
	}

	stats := pc.Stats()

	// Should have data
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}

	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate with uneven phase durations
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	// Slow phase should take more % than fast
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_TimesBoardPhases(t *testing.T) {
	b, err := board.New(board.Options{Width: 8, Height: 8, StepsPerGeneration: 2, Population: 10, Seed: 3, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	pc := NewPerfCollector(10)
	b.SetPhaseTimer(pc)
	for i := 0; i < 3; i++ {
		pc.StartTick()
		if err := b.Tick(); err != nil {
			t.Fatal(err)
		}
		pc.EndTick()
	}

	stats := pc.Stats()
	for _, phase := range []string{board.PhaseSnapshot, board.PhaseObserve, board.PhaseCommit} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("phase %s not tracked", phase)
		}
	}
	if _, ok := stats.PhaseAvg[board.PhaseRollover]; ok {
		t.Error("rollover tracked without a rollover")
	}

	row := stats.ToCSV(4)
	if row.Generation != 4 {
		t.Errorf("csv generation = %d, want 4", row.Generation)
	}
	t.Logf("perf: %+v", row)
}
