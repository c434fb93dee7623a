package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ApplyEnv overrides cfg with LIFTSIM_* keys, first from the .env file at path (if any)
// and then from the process environment.
func ApplyEnv(cfg Config, path string) (Config, error) {
	vars := map[string]string{}
	if path != "" {
		envFile, err := godotenv.Read(path)
		if err != nil {
			return cfg, fmt.Errorf("read env file %s: %w", path, err)
		}
		vars = envFile
	}
	for _, key := range envKeys {
		if value, ok := os.LookupEnv(EnvPrefix + key); ok {
			vars[EnvPrefix+key] = value
		}
	}
	return applyVars(cfg, vars)
}

var envKeys = []string{"ELEVATORS", "FLOORS_MIN", "FLOORS_MAX", "CALL_THRESHOLD", "TIME_UNIT", "SEED", "LOG_LEVEL"}

func applyVars(cfg Config, vars map[string]string) (Config, error) {
	for _, key := range envKeys {
		value, ok := vars[EnvPrefix+key]
		if !ok || value == "" {
			continue
		}
		var err error
		switch key {
		case "ELEVATORS":
			cfg.Elevators, err = strconv.Atoi(value)
		case "FLOORS_MIN":
			cfg.FloorsMin, err = strconv.Atoi(value)
		case "FLOORS_MAX":
			cfg.FloorsMax, err = strconv.Atoi(value)
		case "CALL_THRESHOLD":
			cfg.CallThreshold, err = strconv.Atoi(value)
		case "TIME_UNIT":
			var d time.Duration
			d, err = time.ParseDuration(value)
			cfg.TimeUnit = d
		case "SEED":
			cfg.Seed, err = strconv.ParseUint(value, 10, 64)
		case "LOG_LEVEL":
			cfg.LogLevel = value
		}
		if err != nil {
			return cfg, fmt.Errorf("%s%s=%q: %w", EnvPrefix, key, value, err)
		}
	}
	return cfg, nil
}
