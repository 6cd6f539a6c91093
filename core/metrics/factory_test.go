package metrics_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/studyplan/core/factory"
	"github.com/kilianp07/studyplan/core/metrics"
	_ "github.com/kilianp07/studyplan/infra/metrics"
)

func TestNewPlanSink_Builtins(t *testing.T) {
	s, err := metrics.NewPlanSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = metrics.NewPlanSink([]factory.ModuleConfig{{Type: "missing"}})
	assert.Error(t, err)

	assert.Subset(t, metrics.SinkTypes(), []string{"influx", "nop", "prometheus"})
}

func TestNewPlanSink_Multi(t *testing.T) {
	s, err := metrics.NewPlanSink(nil)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)

	s, err = metrics.NewPlanSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	require.NoError(t, err)
	m, ok := s.(*metrics.MultiSink)
	require.True(t, ok, "expected MultiSink, got %T", s)
	assert.Len(t, m.Sinks, 2)
}

func TestConfigDecodeYAML(t *testing.T) {
	data := `sinks:
  - type: nop
  - type: nop
prometheus_addr: ":9090"
`
	var cfg metrics.Config
	require.NoError(t, yaml.Unmarshal([]byte(data), &cfg))
	assert.Equal(t, ":9090", cfg.PrometheusAddr)
	s, err := metrics.NewPlanSink(cfg.Sinks)
	require.NoError(t, err)
	assert.IsType(t, &metrics.MultiSink{}, s)
}

func TestConfigDecodeJSON_Invalid(t *testing.T) {
	var cfg metrics.Config
	require.NoError(t, json.Unmarshal([]byte(`{"sinks":[{"type":"missing"}]}`), &cfg))
	_, err := metrics.NewPlanSink(cfg.Sinks)
	assert.Error(t, err)
}

type closingSink struct {
	metrics.NopSink
	closed *int
}

func (c closingSink) Close() error {
	*c.closed++
	return nil
}

func TestNewPlanSink_ClosesBuiltSinksOnError(t *testing.T) {
	closed := 0
	require.NoError(t, metrics.RegisterPlanSink("closing", func(map[string]any) (metrics.PlanSink, error) {
		return closingSink{closed: &closed}, nil
	}))

	_, err := metrics.NewPlanSink([]factory.ModuleConfig{
		{Type: "closing"}, {Type: "closing"}, {Type: "missing"}, {Type: "closing"},
	})
	require.Error(t, err)
	assert.Equal(t, 2, closed)
}
