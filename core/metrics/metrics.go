package metrics

import (
	"time"

	"github.com/kilianp07/studyplan/core/events"
	"github.com/kilianp07/studyplan/core/model"
)

// PlanRunEvent describes one planner invocation.
type PlanRunEvent struct {
	Trigger      events.Trigger
	StartDate    time.Time
	Days         int
	Sessions     int
	Minutes      int
	DailyBudget  int
	ChunkMinutes int
	// Unscheduled is the workload left without a session.
	Unscheduled int
	PerSubject  map[string]int
	Duration    time.Duration
	Time        time.Time
}

// PlanSink records plan runs for observability purposes.
type PlanSink interface {
	RecordPlanRun(ev PlanRunEvent) error
}

// SessionEvent captures a session status change.
type SessionEvent struct {
	SessionID string
	SubjectID string
	Status    model.SessionStatus
	Minutes   int
	Time      time.Time
}

// SessionRecorder is implemented by sinks able to record session changes.
type SessionRecorder interface {
	RecordSessionStatus(ev SessionEvent) error
}

// MissedDayEvent captures a day whose planned sessions were missed.
type MissedDayEvent struct {
	Date     time.Time
	Sessions int
	Time     time.Time
}

// MissedDayRecorder is implemented by sinks able to record missed days.
type MissedDayRecorder interface {
	RecordMissedDay(ev MissedDayEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlanRun(PlanRunEvent) error { return nil }

func (NopSink) RecordSessionStatus(SessionEvent) error { return nil }
func (NopSink) RecordMissedDay(MissedDayEvent) error   { return nil }
