package planning

import (
	"fmt"

	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/planner"
)

// DefaultMaxHorizonDays bounds the number of days a single plan may cover.
const DefaultMaxHorizonDays = 366

// Config defines orchestration settings.
type Config struct {
	// DefaultMinutesPerDay seeds the availability row when none is stored.
	DefaultMinutesPerDay int `json:"default_minutes_per_day"`
	// MaxHorizonDays rejects plans whose last exam lies further away.
	MaxHorizonDays int `json:"max_horizon_days"`
	// Policy tunes the planner.
	Policy planner.Config `json:"policy"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.DefaultMinutesPerDay == 0 {
		c.DefaultMinutesPerDay = model.DefaultMinutesPerDay
	}
	if c.MaxHorizonDays == 0 {
		c.MaxHorizonDays = DefaultMaxHorizonDays
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.DefaultMinutesPerDay < 0 {
		return fmt.Errorf("default_minutes_per_day must not be negative")
	}
	if c.MaxHorizonDays < 0 {
		return fmt.Errorf("max_horizon_days must not be negative")
	}
	return c.Policy.Validate()
}
