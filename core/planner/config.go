package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDayStart is the clock time the first session of a day begins.
	DefaultDayStart = "18:00"
	// DefaultBreakMinutes separates consecutive sessions of the same day.
	DefaultBreakMinutes = 10
	// DefaultChunkMinutes is used when the requested chunk is not positive.
	DefaultChunkMinutes = 60
)

// Config defines the planning policy. Zero values select the defaults.
type Config struct {
	Weights             Weights `json:"weights" yaml:"weights"`                             // zero → DefaultWeights
	DayStart            string  `json:"day_start" yaml:"day_start"`                         // "" → 18:00
	BreakMinutes        *int    `json:"break_minutes" yaml:"break_minutes"`                 // nil → 10
	DefaultChunkMinutes int     `json:"default_chunk_minutes" yaml:"default_chunk_minutes"` // 0 → 60
}

func (c Config) withDefaults() Config {
	if c.Weights == (Weights{}) {
		c.Weights = DefaultWeights
	}
	if c.DayStart == "" {
		c.DayStart = DefaultDayStart
	}
	if c.BreakMinutes == nil {
		b := DefaultBreakMinutes
		c.BreakMinutes = &b
	}
	if c.DefaultChunkMinutes == 0 {
		c.DefaultChunkMinutes = DefaultChunkMinutes
	}
	return c
}

// Validate checks the policy after defaults were applied.
func (c Config) Validate() error {
	if c.Weights.Urgency < 0 || c.Weights.Difficulty < 0 || c.Weights.Remaining < 0 {
		return errors.New("planner: weights must not be negative")
	}
	if c.BreakMinutes != nil && *c.BreakMinutes < 0 {
		return fmt.Errorf("planner: break_minutes %d must not be negative", *c.BreakMinutes)
	}
	if c.DefaultChunkMinutes < 0 {
		return fmt.Errorf("planner: default_chunk_minutes %d must be positive", c.DefaultChunkMinutes)
	}
	if c.DayStart != "" {
		if _, err := parseClock(c.DayStart); err != nil {
			return fmt.Errorf("planner: day_start: %w", err)
		}
	}
	return nil
}

// parseClock turns "HH:MM" into an offset from midnight.
func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// LoadConfig loads a planning policy from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	format, err := formatFromPath(path)
	if err != nil {
		return Config{}, err
	}
	return DecodeConfig(f, format)
}

// DecodeConfig reads a planning policy from r.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	if err := decode(r, format, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func formatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".json":
		return "json", nil
	default:
		return "", fmt.Errorf("unsupported config format: %s", ext)
	}
}

func decode(r io.Reader, format string, out any) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.NewDecoder(r).Decode(out)
	case "json":
		return json.NewDecoder(r).Decode(out)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
