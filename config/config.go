// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is returned when a loaded configuration cannot drive a board.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Board      BoardConfig      `yaml:"board"`
	Neural     NeuralConfig     `yaml:"neural"`
	Sensors    SensorsConfig    `yaml:"sensors"`
	Simulation SimulationConfig `yaml:"simulation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	TileSize   int `yaml:"tile_size"`   // pixels per grid cell
	TargetFPS  int `yaml:"target_fps"`
	PanelWidth int `yaml:"panel_width"` // control panel to the right of the grid
}

// BoardConfig holds grid dimensions and population size.
type BoardConfig struct {
	Width              int     `yaml:"width"`
	Height             int     `yaml:"height"`
	Population         int     `yaml:"population"`         // absolute count; 0 uses PopulationPercent
	PopulationPercent  float64 `yaml:"population_percent"` // share of cells, 0-100
	StepsPerGeneration int     `yaml:"steps_per_generation"`
}

// NeuralConfig holds brain construction and mutation parameters.
type NeuralConfig struct {
	MutationFactor        float64 `yaml:"mutation_factor"`
	ExtraConnectionChance float64 `yaml:"extra_connection_chance"`
	ExtraInputChance      float64 `yaml:"extra_input_chance"`
	DirectionalDeadZone   float64 `yaml:"directional_dead_zone"` // |certainty| below this never moves
}

// SensorsConfig holds sensing parameters.
type SensorsConfig struct {
	PopulationRadius   int  `yaml:"population_radius"`
	PopulationCircular bool `yaml:"population_circular"`
}

// SimulationConfig holds run loop parameters.
type SimulationConfig struct {
	Seed           int64 `yaml:"seed"`            // 0 seeds from the clock
	Speed          int   `yaml:"speed"`           // 0-100, 100 is no delay
	Workers        int   `yaml:"workers"`         // 0 uses GOMAXPROCS
	MaxGenerations int   `yaml:"max_generations"` // 0 runs until stopped
}

// TelemetryConfig holds statistics output settings.
type TelemetryConfig struct {
	LogStats  bool   `yaml:"log_stats"`
	OutputDir string `yaml:"output_dir"` // empty disables CSV output
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Population   int // effective even population
	Cells        int // Board.Width * Board.Height
	ScreenWidth  int // grid pixels plus panel
	ScreenHeight int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Cells = c.Board.Width * c.Board.Height

	pop := c.Board.Population
	if pop == 0 {
		pop = int(float64(c.Derived.Cells) * c.Board.PopulationPercent / 100)
	}
	c.Derived.Population = pop &^ 1 // round down to even

	c.Derived.ScreenWidth = c.Board.Width*c.Screen.TileSize + c.Screen.PanelWidth
	c.Derived.ScreenHeight = c.Board.Height * c.Screen.TileSize
}

// Validate checks that the configuration describes a runnable board.
// Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Board.Width <= 0 || c.Board.Height <= 0:
		return fmt.Errorf("%w: board is %dx%d", ErrInvalidConfig, c.Board.Width, c.Board.Height)
	case c.Board.StepsPerGeneration <= 0:
		return fmt.Errorf("%w: steps_per_generation %d", ErrInvalidConfig, c.Board.StepsPerGeneration)
	case c.Board.Population < 0:
		return fmt.Errorf("%w: population %d", ErrInvalidConfig, c.Board.Population)
	case c.Board.PopulationPercent < 0 || c.Board.PopulationPercent > 100:
		return fmt.Errorf("%w: population_percent %v", ErrInvalidConfig, c.Board.PopulationPercent)
	case c.Derived.Population < 2:
		return fmt.Errorf("%w: population %d, need at least 2", ErrInvalidConfig, c.Derived.Population)
	case c.Derived.Population > c.Derived.Cells:
		return fmt.Errorf("%w: population %d exceeds %d cells", ErrInvalidConfig, c.Derived.Population, c.Derived.Cells)
	case c.Neural.MutationFactor < 0:
		return fmt.Errorf("%w: mutation_factor %v", ErrInvalidConfig, c.Neural.MutationFactor)
	case c.Sensors.PopulationRadius < 0:
		return fmt.Errorf("%w: population_radius %d", ErrInvalidConfig, c.Sensors.PopulationRadius)
	case c.Simulation.Speed < 0 || c.Simulation.Speed > 100:
		return fmt.Errorf("%w: speed %d not in [0, 100]", ErrInvalidConfig, c.Simulation.Speed)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
