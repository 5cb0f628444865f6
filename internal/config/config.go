// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/semajyllek/image-transform-app/internal/imaging"
)

// Environment variable names.
const (
	EnvLogLevel             = "IMAGE_TRANSFORM_LOG_LEVEL"
	EnvMaxPixels            = "IMAGE_TRANSFORM_MAX_PIXELS"
	EnvStrict               = "IMAGE_TRANSFORM_STRICT"
	EnvFixedPointHysteresis = "IMAGE_TRANSFORM_HYSTERESIS_FIXED_POINT"
	EnvSeed                 = "IMAGE_TRANSFORM_SEED"
)

// Config holds start-up settings.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// MaxPixels caps the size of any buffer.
	MaxPixels int

	// Strict rejects unknown transform kinds and out-of-range params
	// instead of passing them through.
	Strict bool

	// FixedPointHysteresis iterates Canny hysteresis until stable.
	FixedPointHysteresis bool

	// Seed, when HasSeed is set, makes random color choices reproducible.
	Seed    uint64
	HasSeed bool
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		LogLevel:  "info",
		MaxPixels: imaging.DefaultMaxPixels,
	}
}

// Load builds a Config from getenv (normally os.Getenv). Values that fail
// to parse keep their defaults and are reported in the returned slice.
func Load(getenv func(string) string) (Config, []error) {
	cfg := Default()
	var problems []error

	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getenv(EnvMaxPixels); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			problems = append(problems, fmt.Errorf("%s=%q: want a positive integer", EnvMaxPixels, v))
		} else {
			cfg.MaxPixels = n
		}
	}
	if v := getenv(EnvStrict); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			problems = append(problems, fmt.Errorf("%s=%q: %w", EnvStrict, v, err))
		}
		cfg.Strict = b
	}
	if v := getenv(EnvFixedPointHysteresis); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			problems = append(problems, fmt.Errorf("%s=%q: %w", EnvFixedPointHysteresis, v, err))
		}
		cfg.FixedPointHysteresis = b
	}
	if v := getenv(EnvSeed); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			problems = append(problems, fmt.Errorf("%s=%q: %w", EnvSeed, v, err))
		} else {
			cfg.Seed, cfg.HasSeed = n, true
		}
	}
	return cfg, problems
}
