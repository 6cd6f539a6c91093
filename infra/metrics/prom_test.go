package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/studyplan/core/events"
	coremetrics "github.com/kilianp07/studyplan/core/metrics"
	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/internal/eventbus"
)

func TestPromSink_RecordPlanRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordPlanRun(coremetrics.PlanRunEvent{
		Trigger:     events.TriggerGenerate,
		Sessions:    4,
		Minutes:     180,
		Unscheduled: 30,
		PerSubject:  map[string]int{"a": 120, "b": 60},
		Duration:    10 * time.Millisecond,
	}))
	require.NoError(t, sink.RecordPlanRun(coremetrics.PlanRunEvent{
		Trigger:    events.TriggerReschedule,
		Sessions:   1,
		Minutes:    60,
		PerSubject: map[string]int{"b": 60},
	}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.runs.WithLabelValues("generate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.runs.WithLabelValues("reschedule")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.sessions))
	assert.Equal(t, 60.0, testutil.ToFloat64(sink.minutes))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.unscheduled))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.perSubject), "stale subjects are reset")
	assert.Equal(t, 60.0, testutil.ToFloat64(sink.perSubject.WithLabelValues("b")))
}

func TestPromSink_SessionsAndMissedDays(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordSessionStatus(coremetrics.SessionEvent{SubjectID: "a", Status: model.StatusDone, Minutes: 45}))
	require.NoError(t, sink.RecordSessionStatus(coremetrics.SessionEvent{SubjectID: "a", Status: model.StatusDone, Minutes: 15}))
	require.NoError(t, sink.RecordMissedDay(coremetrics.MissedDayEvent{Sessions: 3}))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.status.WithLabelValues("DONE")))
	assert.Equal(t, 60.0, testutil.ToFloat64(sink.completed.WithLabelValues("a")))
	assert.Equal(t, 3.0, testutil.ToFloat64(sink.missed))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	s1, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	s2, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, s1.RecordMissedDay(coremetrics.MissedDayEvent{Sessions: 1}))
	require.NoError(t, s2.RecordMissedDay(coremetrics.MissedDayEvent{Sessions: 1}))
	assert.Equal(t, 2.0, testutil.ToFloat64(s2.missed))
}

func TestStartEventCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, sink)

	bus.Publish(events.SessionCompleted{SessionID: "s1", SubjectID: "math", Minutes: 30})
	bus.Publish(events.DayMissed{Sessions: 2})

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(sink.missed) == 2 &&
			testutil.ToFloat64(sink.completed.WithLabelValues("math")) == 30
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestStartEventCollector_NilBus(t *testing.T) {
	done := StartEventCollector(context.Background(), nil, coremetrics.NopSink{})
	_, open := <-done
	assert.False(t, open)
}

func TestRegisterDroppedEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	bus := eventbus.New(eventbus.WithBuffer(1))
	_ = bus.Subscribe()
	for i := 0; i < 3; i++ {
		bus.Publish(events.DayMissed{Sessions: i})
	}
	require.NoError(t, RegisterDroppedEvents(reg, bus.Dropped))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "studyplan_eventbus_dropped_total"))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, 2.0, families[0].GetMetric()[0].GetCounter().GetValue())

	fresh := eventbus.New()
	require.NoError(t, RegisterDroppedEvents(reg, fresh.Dropped))
	families, err = reg.Gather()
	require.NoError(t, err)
	assert.Equal(t, 0.0, families[0].GetMetric()[0].GetCounter().GetValue())
}
