package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"liftsim/src/types"
)

const (
	NumElevators     = 64
	NumFloors        = 3
	CallThreshold    = 13
	TimeUnit         = 1 * time.Second
	SubSteps         = 10
	SubStepUnits     = 0.6
	DwellUnits       = 3.0
	IdleUnits        = 1.0
	TickUnits        = 1.0
	OccupantsMin     = 100
	OccupantsMax     = 999
	CapacityMinUnits = 6
	CapacityMaxUnits = 14
	CapacityUnit     = 50
	BoardingMax      = 4
	EnvPrefix        = "LIFTSIM_"
)

// Config describes one fleet. Zero values are never valid; start from Default.
type Config struct {
	Elevators     int           `yaml:"elevators"`
	FloorsMin     int           `yaml:"floors_min"`
	FloorsMax     int           `yaml:"floors_max"`
	CallThreshold int           `yaml:"call_threshold"`
	TimeUnit      time.Duration `yaml:"time_unit"`
	SubSteps      int           `yaml:"sub_steps"`
	SubStepUnits  float64       `yaml:"sub_step_units"`
	DwellUnits    float64       `yaml:"dwell_units"`
	IdleUnits     float64       `yaml:"idle_units"`
	TickUnits     float64       `yaml:"tick_units"`
	BoardingMax   int           `yaml:"boarding_max"`
	Seed          uint64        `yaml:"seed"`
	LogLevel      string        `yaml:"log_level"`
}

// Timing holds the concrete durations of every suspension point.
type Timing struct {
	SubSteps int
	SubStep  time.Duration
	Dwell    time.Duration
	Idle     time.Duration
	Tick     time.Duration
}

func Default() Config {
	return Config{
		Elevators:     NumElevators,
		FloorsMin:     NumFloors,
		FloorsMax:     NumFloors,
		CallThreshold: CallThreshold,
		TimeUnit:      TimeUnit,
		SubSteps:      SubSteps,
		SubStepUnits:  SubStepUnits,
		DwellUnits:    DwellUnits,
		IdleUnits:     IdleUnits,
		TickUnits:     TickUnits,
		BoardingMax:   BoardingMax,
		LogLevel:      "info",
	}
}

// Load decodes a YAML fleet file on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	switch {
	case cfg.Elevators < 1:
		return fmt.Errorf("elevators = %d: need at least one", cfg.Elevators)
	case cfg.FloorsMin < 2:
		return fmt.Errorf("floors_min = %d: %w", cfg.FloorsMin, types.ErrInvalidFloorCount)
	case cfg.FloorsMax < cfg.FloorsMin:
		return fmt.Errorf("floors_max = %d below floors_min = %d: %w", cfg.FloorsMax, cfg.FloorsMin, types.ErrInvalidFloorCount)
	case cfg.CallThreshold < 0 || cfg.CallThreshold > 100:
		return fmt.Errorf("call_threshold = %d: must be within [0, 100]", cfg.CallThreshold)
	case cfg.TimeUnit <= 0:
		return fmt.Errorf("time_unit = %v: must be positive", cfg.TimeUnit)
	case cfg.SubSteps < 1:
		return fmt.Errorf("sub_steps = %d: must be positive", cfg.SubSteps)
	case cfg.SubStepUnits < 0 || cfg.DwellUnits < 0 || cfg.IdleUnits < 0:
		return fmt.Errorf("negative wait in config")
	case cfg.TickUnits <= 0:
		return fmt.Errorf("tick_units = %v: must be positive", cfg.TickUnits)
	case cfg.BoardingMax < 1:
		return fmt.Errorf("boarding_max = %d: must be positive", cfg.BoardingMax)
	}
	return nil
}

func (cfg Config) Timing() Timing {
	return Timing{
		SubSteps: cfg.SubSteps,
		SubStep:  units(cfg.TimeUnit, cfg.SubStepUnits),
		Dwell:    units(cfg.TimeUnit, cfg.DwellUnits),
		Idle:     units(cfg.TimeUnit, cfg.IdleUnits),
		Tick:     units(cfg.TimeUnit, cfg.TickUnits),
	}
}

func units(unit time.Duration, n float64) time.Duration {
	return time.Duration(float64(unit) * n)
}
