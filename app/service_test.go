package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/studyplan/config"
	"github.com/kilianp07/studyplan/core/factory"
	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/planlog"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		HTTP:    config.HTTPConfig{Addr: "127.0.0.1:0"},
		Store:   config.PluginConfig{Type: "sqlite", Conf: map[string]any{"path": filepath.Join(dir, "study.db")}},
		Logging: config.LoggingConfig{Backend: "jsonl", Path: filepath.Join(dir, "plans.jsonl")},
	}
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestServiceEndToEnd(t *testing.T) {
	ctx := context.Background()
	svc, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	defer func() { require.NoError(t, svc.Close()) }()

	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/subjects", "application/json",
		strings.NewReader(`{"name":"Maths","examDate":"2025-01-08","difficulty":3,"hoursRequired":2}`))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/plan/generate", "application/json",
		strings.NewReader(`{"startDate":"2025-01-06"}`))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sessions, err := svc.Planning.Sessions(ctx, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, 60, sessions[0].Minutes)
	assert.Equal(t, model.StatusPlanned, sessions[0].Status)

	recs, err := svc.Planning.PlanLogs(ctx, planlog.LogQuery{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestNewUnknownStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Type = "mongo"
	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown store type")
}

func TestRunStopsOnCancel(t *testing.T) {
	svc, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}
