package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordSink struct {
	runs     int
	sessions int
	err      error
}

func (r *recordSink) RecordPlanRun(PlanRunEvent) error {
	r.runs++
	return r.err
}

func (r *recordSink) RecordSessionStatus(SessionEvent) error {
	r.sessions++
	return nil
}

type runOnly struct{ runs int }

func (r *runOnly) RecordPlanRun(PlanRunEvent) error {
	r.runs++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &runOnly{}
	m := NewMultiSink(s1, s2)

	assert.NoError(t, m.RecordPlanRun(PlanRunEvent{Sessions: 3}))
	assert.NoError(t, m.RecordSessionStatus(SessionEvent{SessionID: "s"}))
	assert.NoError(t, m.RecordMissedDay(MissedDayEvent{}))
	assert.Equal(t, 1, s1.runs)
	assert.Equal(t, 1, s1.sessions)
	assert.Equal(t, 1, s2.runs)
}

func TestMultiSink_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &runOnly{}
	err := NewMultiSink(s1, s2).RecordPlanRun(PlanRunEvent{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s2.runs)
}

type closingSink struct {
	runOnly
	closed bool
	err    error
}

func (c *closingSink) Close() error {
	c.closed = true
	return c.err
}

func TestMultiSinkClose(t *testing.T) {
	a := &closingSink{}
	b := &closingSink{err: errors.New("flush failed")}
	m := NewMultiSink(a, &runOnly{}, b)
	err := m.Close()
	assert.ErrorContains(t, err, "flush failed")
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}
