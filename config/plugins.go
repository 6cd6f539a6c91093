package config

import (
	"fmt"

	"github.com/kilianp07/studyplan/core/factory"
)

// PluginConfig stores the type name of a pluggable component and the raw
// configuration map decoded by its factory.
type PluginConfig struct {
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
}

// Module converts the plugin config for a factory registry.
func (c PluginConfig) Module() factory.ModuleConfig {
	return factory.ModuleConfig{Type: c.Type, Conf: c.Conf}
}

// DefaultStorePath is the SQLite file used when no store is configured.
const DefaultStorePath = "studyplan.db"

// storeTypes maps each store type to its required conf key.
var storeTypes = map[string]string{
	"memory":   "",
	"sqlite":   "path",
	"postgres": "dsn",
}

// SetStoreDefaults selects the SQLite store when none is configured.
func (c *PluginConfig) SetStoreDefaults() {
	if c.Type == "" {
		c.Type = "sqlite"
	}
	if c.Type == "sqlite" {
		if c.Conf == nil {
			c.Conf = map[string]any{}
		}
		if p, _ := c.Conf["path"].(string); p == "" {
			c.Conf["path"] = DefaultStorePath
		}
	}
}

// ValidateStore checks the store type and its required setting.
func (c PluginConfig) ValidateStore() error {
	key, ok := storeTypes[c.Type]
	if !ok {
		return fmt.Errorf("unknown store type %q", c.Type)
	}
	if key == "" {
		return nil
	}
	if v, _ := c.Conf[key].(string); v == "" {
		return fmt.Errorf("%s store requires conf.%s", c.Type, key)
	}
	return nil
}
