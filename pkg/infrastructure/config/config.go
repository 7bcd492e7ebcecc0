// Package config loads planner runtime settings from a YAML file, a .env file
// and PLANNER_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PLANNER_"

// Config is the runtime configuration of the planner
type Config struct {
	Solver   SolverConfig   `yaml:"solver"`
	Planning PlanningConfig `yaml:"planning"`
	Rolling  RollingConfig  `yaml:"rolling"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// SolverConfig selects and bounds the solver backend
type SolverConfig struct {
	Backend      string        `yaml:"backend" validate:"oneof=gonum highs"`
	TimeLimit    time.Duration `yaml:"time_limit" validate:"gt=0"`
	GapTolerance float64       `yaml:"gap_tolerance" validate:"gte=0,lt=1"`
	// MaxNodes bounds branch-and-bound in the gonum backend
	MaxNodes int `yaml:"max_nodes" validate:"gte=0"`
}

// PlanningConfig holds the default modelling switches
type PlanningConfig struct {
	AllowShortages   bool `yaml:"allow_shortages"`
	EnforceShelfLife bool `yaml:"enforce_shelf_life"`
	BatchTracking    bool `yaml:"batch_tracking"`
	StrictCalendar   bool `yaml:"strict_calendar"`
}

// RollingConfig sizes rolling-horizon windows
type RollingConfig struct {
	WindowDays  int `yaml:"window_days" validate:"gt=0"`
	CommitDays  int `yaml:"commit_days" validate:"gt=0,ltefield=WindowDays"`
	Parallelism int `yaml:"parallelism" validate:"gt=0"`
}

// LogConfig controls slog output
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
}

// MetricsConfig toggles Prometheus collection
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TracingConfig toggles OpenTelemetry span export to stderr
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Solver: SolverConfig{
			Backend:      "gonum",
			TimeLimit:    2 * time.Minute,
			GapTolerance: 0.01,
			MaxNodes:     200000,
		},
		Planning: PlanningConfig{
			AllowShortages:   true,
			EnforceShelfLife: true,
		},
		Rolling: RollingConfig{
			WindowDays:  28,
			CommitDays:  7,
			Parallelism: 4,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration. A missing .env file or an empty path is not
// an error; a path that does not exist is.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}

	str("SOLVER", &cfg.Solver.Backend)
	if v, ok := lookup("TIME_LIMIT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTIME_LIMIT: %w", EnvPrefix, err))
		} else {
			cfg.Solver.TimeLimit = d
		}
	}
	if v, ok := lookup("MIP_GAP"); ok {
		g, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMIP_GAP: %w", EnvPrefix, err))
		} else {
			cfg.Solver.GapTolerance = g
		}
	}
	integer("MAX_NODES", &cfg.Solver.MaxNodes)
	boolean("ALLOW_SHORTAGES", &cfg.Planning.AllowShortages)
	boolean("ENFORCE_SHELF_LIFE", &cfg.Planning.EnforceShelfLife)
	boolean("BATCH_TRACKING", &cfg.Planning.BatchTracking)
	boolean("STRICT_CALENDAR", &cfg.Planning.StrictCalendar)
	integer("WINDOW_DAYS", &cfg.Rolling.WindowDays)
	integer("COMMIT_DAYS", &cfg.Rolling.CommitDays)
	integer("PARALLELISM", &cfg.Rolling.Parallelism)
	str("LOG_LEVEL", &cfg.Log.Level)
	boolean("LOG_JSON", &cfg.Log.JSON)
	boolean("METRICS", &cfg.Metrics.Enabled)
	boolean("TRACING", &cfg.Tracing.Enabled)

	return errors.Join(errs...)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}
