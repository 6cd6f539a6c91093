package plugins

import (
	"context"
	"fmt"
	"sort"

	"github.com/kilianp07/studyplan/core/factory"
	"github.com/kilianp07/studyplan/core/planlog"
	"github.com/kilianp07/studyplan/core/store"
	"github.com/kilianp07/studyplan/core/store/memory"
	"github.com/kilianp07/studyplan/infra/store/postgres"
	"github.com/kilianp07/studyplan/infra/store/sqlite"
)

type storeConf struct {
	Path string `json:"path"`
	DSN  string `json:"dsn"`
}

type logConf struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

func init() {
	RegisterStore("memory", func(context.Context, map[string]any) (store.Store, error) {
		return memory.New(), nil
	})
	RegisterStore("sqlite", func(ctx context.Context, conf map[string]any) (store.Store, error) {
		var c storeConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return sqlite.New(ctx, c.Path)
	})
	RegisterStore("postgres", func(ctx context.Context, conf map[string]any) (store.Store, error) {
		var c storeConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, c.DSN); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return postgres.New(ctx, c.DSN)
	})

	RegisterLogStore("none", func(map[string]any) (planlog.LogStore, error) {
		return planlog.NopStore{}, nil
	})
	RegisterLogStore("jsonl", func(conf map[string]any) (planlog.LogStore, error) {
		var c logConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return planlog.NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
	RegisterLogStore("sqlite", func(conf map[string]any) (planlog.LogStore, error) {
		var c logConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return planlog.NewSQLiteStore(c.Path)
	})
}

// NewStore creates the backend registered under typ.
func NewStore(ctx context.Context, typ string, conf map[string]any) (store.Store, error) {
	f, ok := Stores[typ]
	if !ok {
		names := make([]string, 0, len(Stores))
		for n := range Stores {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown store type %q (known: %v)", typ, names)
	}
	return f(ctx, conf)
}
