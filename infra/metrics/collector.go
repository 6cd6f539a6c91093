package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/studyplan/core/events"
	coremetrics "github.com/kilianp07/studyplan/core/metrics"
	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records session and
// missed-day events on sinks that support them. It stops when the context is
// canceled or the bus is closed. The returned channel is closed on exit.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.PlanSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
	return done
}

func record(sink coremetrics.PlanSink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.SessionCompleted:
		if r, ok := sink.(coremetrics.SessionRecorder); ok {
			_ = r.RecordSessionStatus(coremetrics.SessionEvent{
				SessionID: e.SessionID,
				SubjectID: e.SubjectID,
				Status:    model.StatusDone,
				Minutes:   e.Minutes,
				Time:      time.Now(),
			})
		}
	case events.DayMissed:
		if r, ok := sink.(coremetrics.MissedDayRecorder); ok {
			_ = r.RecordMissedDay(coremetrics.MissedDayEvent{Date: e.Date, Sessions: e.Sessions, Time: time.Now()})
		}
	}
}
