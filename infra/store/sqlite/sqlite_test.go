package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/store"
	"github.com/kilianp07/studyplan/core/store/storetest"
	"github.com/kilianp07/studyplan/infra/store/migrations"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "plan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, newStore)
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "plan.db")
	s, err := New(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.SetAvailability(ctx, availability(75)))
	require.NoError(t, s.Close())

	s, err = New(ctx, path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	a, ok, err := s.GetAvailability(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 75, a.MinutesPerDay)

	v, err := migrations.Version(ctx, s.db, goose.DialectSQLite3)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
}

func availability(n int) model.Availability { return model.Availability{MinutesPerDay: n} }
