package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/studyplan/core/metrics"
	"github.com/kilianp07/studyplan/core/planning"
	"github.com/kilianp07/studyplan/infra/monitoring"
	"github.com/kilianp07/studyplan/infra/mqtt"
)

// EnvPrefix marks environment variables overriding file settings.
// K_HTTP__ADDR=:9000 sets http.addr.
const EnvPrefix = "K_"

type Config struct {
	HTTP     HTTPConfig              `json:"http"`
	Store    PluginConfig            `json:"store"`
	Planning planning.Config         `json:"planning"`
	Metrics  metrics.Config          `json:"metrics"`
	Logging  LoggingConfig           `json:"logging"`
	MQTT     mqtt.Config             `json:"mqtt"`
	Events   EventsConfig            `json:"events"`
	Sentry   monitoring.SentryConfig `json:"sentry"`
}

// Load reads the configuration file at path, applies K_ environment
// overrides, fills defaults and validates every section. An empty path
// loads defaults and environment overrides only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section with its defaults.
func (c *Config) SetDefaults() {
	c.HTTP.SetDefaults()
	c.Store.SetStoreDefaults()
	c.Planning.SetDefaults()
	c.Logging.SetDefaults()
	c.MQTT.SetDefaults()
	c.Events.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := c.Store.ValidateStore(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Planning.Validate(); err != nil {
		return fmt.Errorf("planning: %w", err)
	}
	for i, s := range c.Metrics.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics: sink %d has no type", i)
		}
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	return c.MQTT.Validate()
}
