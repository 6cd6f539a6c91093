// Package storetest holds a conformance suite run against every Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/store"
)

var base = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return base.AddDate(0, 0, n) }

func session(id, subject string, d, hour, minutes int, status model.SessionStatus) model.StudySession {
	return model.StudySession{
		ID:        id,
		SubjectID: subject,
		Date:      day(d),
		Start:     day(d).Add(time.Duration(hour) * time.Hour),
		Minutes:   minutes,
		Status:    status,
	}
}

// Run exercises s against the Store contract. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("Subjects", func(t *testing.T) { testSubjects(t, newStore(t)) })
	t.Run("ReplacePlanned", func(t *testing.T) { testReplacePlanned(t, newStore(t)) })
	t.Run("MarkMissed", func(t *testing.T) { testMarkMissed(t, newStore(t)) })
	t.Run("CompleteSession", func(t *testing.T) { testCompleteSession(t, newStore(t)) })
	t.Run("Availability", func(t *testing.T) { testAvailability(t, newStore(t)) })
	t.Run("DeleteCascades", func(t *testing.T) { testDeleteCascades(t, newStore(t)) })
	t.Run("CreationOrder", func(t *testing.T) { testCreationOrder(t, newStore(t)) })
}

func seed(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	subjects := []model.Subject{
		{ID: "chem", Name: "Chemistry", ExamDate: day(9), Difficulty: 2, HoursRequired: 4},
		{ID: "math", Name: "Maths", ExamDate: day(5), Difficulty: 3, HoursRequired: 6},
		{ID: "phys", Name: "Physics", ExamDate: day(5), Difficulty: 5, HoursRequired: 3, MinutesDone: 30},
	}
	for _, sub := range subjects {
		require.NoError(t, s.CreateSubject(ctx, sub))
	}
}

func testCreationOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s)
	require.NoError(t, s.CreateSubject(ctx, model.Subject{ID: "art", Name: "Art", ExamDate: day(1), Difficulty: 1, HoursRequired: 1}))
	require.NoError(t, s.DeleteSubject(ctx, "math"))
	require.NoError(t, s.CreateSubject(ctx, model.Subject{ID: "bio", Name: "Biology", ExamDate: day(3), Difficulty: 4, HoursRequired: 2}))

	list, err := s.ListSubjectsByCreation(ctx)
	require.NoError(t, err)
	var ids []string
	for _, sub := range list {
		ids = append(ids, sub.ID)
	}
	assert.Equal(t, []string{"chem", "phys", "art", "bio"}, ids)
}

func testSubjects(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s)

	list, err := s.ListSubjects(ctx)
	require.NoError(t, err)
	var ids []string
	for _, sub := range list {
		ids = append(ids, sub.ID)
	}
	assert.Equal(t, []string{"phys", "math", "chem"}, ids)

	got, err := s.GetSubject(ctx, "phys")
	require.NoError(t, err)
	assert.Equal(t, "Physics", got.Name)
	assert.Equal(t, 30, got.MinutesDone)
	assert.True(t, got.ExamDate.Equal(day(5)))

	_, err = s.GetSubject(ctx, "nope")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	err = s.DeleteSubject(ctx, "nope")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func testReplacePlanned(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s)
	require.NoError(t, s.ReplacePlanned(ctx, day(0), []model.StudySession{
		session("a", "math", 0, 18, 60, model.StatusPlanned),
		session("b", "phys", 1, 18, 60, model.StatusPlanned),
		session("c", "chem", 2, 18, 30, model.StatusPlanned),
	}))
	_, err := s.CompleteSession(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, s.ReplacePlanned(ctx, day(1), []model.StudySession{
		session("d", "chem", 1, 19, 45, model.StatusPlanned),
		session("e", "math", 1, 18, 45, model.StatusPlanned),
	}))

	all, err := s.ListSessions(ctx, day(0), day(10))
	require.NoError(t, err)
	var ids []string
	for _, sess := range all {
		ids = append(ids, sess.ID)
	}
	assert.Equal(t, []string{"a", "e", "d"}, ids)
	assert.Equal(t, model.StatusDone, all[0].Status)
	assert.True(t, all[1].Start.Equal(day(1).Add(18*time.Hour)))

	ranged, err := s.ListSessions(ctx, day(1), day(1))
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	err = s.ReplacePlanned(ctx, day(0), []model.StudySession{session("x", "ghost", 0, 18, 10, model.StatusPlanned)})
	assert.Error(t, err)
	after, err := s.ListSessions(ctx, day(0), day(10))
	require.NoError(t, err)
	assert.Len(t, after, 3, "failed replace must leave sessions untouched")
}

func testMarkMissed(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s)
	require.NoError(t, s.ReplacePlanned(ctx, day(0), []model.StudySession{
		session("a", "math", 0, 18, 60, model.StatusPlanned),
		session("b", "phys", 0, 19, 60, model.StatusPlanned),
		session("c", "chem", 1, 18, 30, model.StatusPlanned),
	}))
	_, err := s.CompleteSession(ctx, "b")
	require.NoError(t, err)

	n, err := s.MarkMissed(ctx, day(0))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	a, err := s.GetSession(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.StatusMissed, a.Status)
	c, err := s.GetSession(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPlanned, c.Status)

	_, err = s.GetSession(ctx, "zzz")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func testCompleteSession(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s)
	require.NoError(t, s.ReplacePlanned(ctx, day(0), []model.StudySession{
		session("a", "phys", 0, 18, 50, model.StatusPlanned),
	}))

	done, err := s.CompleteSession(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, done.Status)

	again, err := s.CompleteSession(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, again.Status)

	sub, err := s.GetSubject(ctx, "phys")
	require.NoError(t, err)
	assert.Equal(t, 80, sub.MinutesDone, "completing twice must count once")

	_, err = s.CompleteSession(ctx, "missing")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func testAvailability(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, ok, err := s.GetAvailability(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetAvailability(ctx, model.Availability{MinutesPerDay: 120}))
	require.NoError(t, s.SetAvailability(ctx, model.Availability{MinutesPerDay: 90}))
	a, ok, err := s.GetAvailability(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 90, a.MinutesPerDay)
}

func testDeleteCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	seed(t, s)
	require.NoError(t, s.ReplacePlanned(ctx, day(0), []model.StudySession{
		session("a", "math", 0, 18, 60, model.StatusPlanned),
		session("b", "phys", 0, 19, 60, model.StatusPlanned),
	}))
	require.NoError(t, s.DeleteSubject(ctx, "math"))

	left, err := s.ListSessions(ctx, day(0), day(0))
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "b", left[0].ID)
}
