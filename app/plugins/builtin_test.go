package plugins

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/studyplan/core/factory"
	"github.com/kilianp07/studyplan/core/planlog"
)

func TestStoresRegistered(t *testing.T) {
	for _, name := range []string{"memory", "sqlite", "postgres"} {
		assert.Contains(t, Stores, name)
	}
	assert.Equal(t, []string{"jsonl", "none", "sqlite"}, LogStores.Names())
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	st, err := NewStore(ctx, "memory", nil)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = NewStore(ctx, "sqlite", map[string]any{"path": filepath.Join(t.TempDir(), "s.db")})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = NewStore(ctx, "mongo", nil)
	assert.ErrorContains(t, err, "unknown store type")
}

func TestLogStores(t *testing.T) {
	ls, err := LogStores.Create(factory.ModuleConfig{Type: "none"})
	require.NoError(t, err)
	assert.IsType(t, planlog.NopStore{}, ls)

	ls, err = LogStores.Create(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{
		"path": filepath.Join(t.TempDir(), "plan.jsonl"), "max_size_mb": "1",
	}})
	require.NoError(t, err)
	assert.IsType(t, &planlog.RotatingJSONLStore{}, ls)
	require.NoError(t, ls.Close())
}
