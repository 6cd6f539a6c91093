package config

import (
	"fmt"

	"github.com/kilianp07/studyplan/internal/eventbus"
)

// EventsConfig sizes the in-process event bus.
type EventsConfig struct {
	// Buffer is the per-subscriber queue length. Events published while a
	// subscriber queue is full are dropped and counted.
	Buffer int `json:"buffer"`
}

func (c *EventsConfig) SetDefaults() {
	if c.Buffer == 0 {
		c.Buffer = eventbus.DefaultBuffer
	}
}

func (c EventsConfig) Validate() error {
	if c.Buffer < 0 {
		return fmt.Errorf("buffer must not be negative, got %d", c.Buffer)
	}
	return nil
}
