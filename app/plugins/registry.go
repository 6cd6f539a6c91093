package plugins

import (
	"context"

	"github.com/kilianp07/studyplan/core/factory"
	"github.com/kilianp07/studyplan/core/planlog"
	"github.com/kilianp07/studyplan/core/store"
)

// StoreFactory builds a persistence backend from raw config. Backends that
// connect to a server use ctx for the initial connection and migration.
type StoreFactory func(ctx context.Context, conf map[string]any) (store.Store, error)

var (
	// Stores holds the persistence backends keyed by type.
	Stores = map[string]StoreFactory{}
	// LogStores builds plan log stores keyed by backend.
	LogStores = factory.NewRegistry[planlog.LogStore]()
)

func RegisterStore(name string, f StoreFactory) { Stores[name] = f }

func RegisterLogStore(name string, f factory.Factory[planlog.LogStore]) {
	LogStores.MustRegister(name, f)
}
