package planlog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/studyplan/core/events"
	"github.com/kilianp07/studyplan/core/planner"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func record(ts time.Time, trigger events.Trigger, subjects ...string) LogRecord {
	rec := LogRecord{
		Timestamp:        ts,
		Trigger:          trigger,
		StartDate:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		DailyBudget:      120,
		ChunkMinutes:     60,
		MinutesBySubject: map[string]int{},
	}
	for _, s := range subjects {
		rec.Workloads = append(rec.Workloads, planner.SubjectWorkload{ID: s, RemainingMinutes: 60})
		rec.Allocations = append(rec.Allocations, planner.Allocation{SubjectID: s, Date: rec.StartDate, Minutes: 60})
		rec.MinutesBySubject[s] = 60
	}
	return rec
}

func testStore(t *testing.T, s LogStore) {
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, record(t0, events.TriggerGenerate, "math")))
	require.NoError(t, s.Append(ctx, record(t0.Add(time.Hour), events.TriggerReschedule, "math", "phys")))
	require.NoError(t, s.Append(ctx, record(t0.Add(2*time.Hour), events.TriggerGenerate, "chem")))

	all, err := s.Query(ctx, LogQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Timestamp.Equal(t0))
	assert.Equal(t, 60, all[1].MinutesBySubject["phys"])

	bySubject, err := s.Query(ctx, LogQuery{SubjectID: "math"})
	require.NoError(t, err)
	assert.Len(t, bySubject, 2)

	byTrigger, err := s.Query(ctx, LogQuery{Trigger: events.TriggerReschedule})
	require.NoError(t, err)
	require.Len(t, byTrigger, 1)
	assert.Len(t, byTrigger[0].Allocations, 2)

	window, err := s.Query(ctx, LogQuery{Start: t0.Add(30 * time.Minute), End: t0.Add(90 * time.Minute)})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, events.TriggerReschedule, window[0].Trigger)
}

func TestRotatingJSONLStore(t *testing.T) {
	s, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "logs", "plan.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	testStore(t, s)
}

func TestRotatingJSONLStore_QueryAcrossBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.jsonl")
	s, err := NewRotatingJSONLStore(path, 1, 5, 1)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	rec := record(t0, events.TriggerGenerate, strings.Repeat("x", 1024))
	for i := 0; i < 400; i++ {
		rec.Timestamp = t0.Add(time.Duration(i) * time.Second)
		require.NoError(t, s.Append(ctx, rec))
	}
	files, err := filepath.Glob(backupPattern(path))
	require.NoError(t, err)
	assert.NotEmpty(t, files, "expected rotated backups")

	out, err := s.Query(ctx, LogQuery{})
	require.NoError(t, err)
	require.Len(t, out, 400)
	assert.True(t, out[0].Timestamp.Equal(t0))
	assert.True(t, out[399].Timestamp.Equal(t0.Add(399*time.Second)))
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "plan_logs.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	testStore(t, s)
}

func TestLogQuery_Matches(t *testing.T) {
	rec := record(t0, events.TriggerGenerate, "math")
	cases := []struct {
		q    LogQuery
		want bool
	}{
		{LogQuery{}, true},
		{LogQuery{SubjectID: "math"}, true},
		{LogQuery{SubjectID: "bio"}, false},
		{LogQuery{Trigger: events.TriggerReschedule}, false},
		{LogQuery{Start: t0.Add(time.Second)}, false},
		{LogQuery{End: t0.Add(-time.Second)}, false},
		{LogQuery{Start: t0, End: t0}, true},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.q.Matches(rec))
		})
	}
}

func TestNopStore(t *testing.T) {
	var s LogStore = NopStore{}
	require.NoError(t, s.Append(context.Background(), LogRecord{}))
	out, err := s.Query(context.Background(), LogQuery{})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, s.Close())
}
