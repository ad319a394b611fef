package sim

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CommandKind identifies a control signal.
type CommandKind uint8

const (
	CommandPause CommandKind = iota
	CommandResume
	CommandStop
	CommandSetSpeed
)

// Command is a control signal consumed by the runner between ticks.
type Command struct {
	Kind  CommandKind
	Speed int // CommandSetSpeed only, 0-100
}

// Pause suspends the run loop until Resume or Stop.
func Pause() Command { return Command{Kind: CommandPause} }

// Resume continues a paused run loop.
func Resume() Command { return Command{Kind: CommandResume} }

// Stop ends the run loop after the current tick.
func Stop() Command { return Command{Kind: CommandStop} }

// SetSpeed changes the delay between ticks. See Delay.
func SetSpeed(n int) Command { return Command{Kind: CommandSetSpeed, Speed: n} }

func (c Command) String() string {
	switch c.Kind {
	case CommandPause:
		return "pause"
	case CommandResume:
		return "resume"
	case CommandStop:
		return "stop"
	case CommandSetSpeed:
		return "SPEED" + strconv.Itoa(c.Speed)
	}
	return fmt.Sprintf("command(%d)", c.Kind)
}

// ParseCommand reads the textual form of a command: "pause", "resume",
// "stop" or "SPEED<n>".
func ParseCommand(s string) (Command, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "pause":
		return Pause(), nil
	case "resume":
		return Resume(), nil
	case "stop":
		return Stop(), nil
	}
	if rest, ok := strings.CutPrefix(strings.ToUpper(s), "SPEED"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return Command{}, fmt.Errorf("parsing speed %q: %w", s, err)
		}
		return SetSpeed(n), nil
	}
	return Command{}, fmt.Errorf("unknown command %q", s)
}

// ClampSpeed limits a speed to [0, 100].
func ClampSpeed(n int) int {
	return max(0, min(100, n))
}

// Delay returns the pause between ticks at speed n: (100 - n) * 2ms.
func Delay(n int) time.Duration {
	return time.Duration(100-ClampSpeed(n)) * 2 * time.Millisecond
}
