// Package planlog records every plan run so generated schedules can be
// audited and compared later.
package planlog

import (
	"context"
	"time"

	"github.com/kilianp07/studyplan/core/events"
	"github.com/kilianp07/studyplan/core/planner"
)

// LogRecord captures one planner invocation and its output.
type LogRecord struct {
	Timestamp        time.Time                 `json:"timestamp"`
	Trigger          events.Trigger            `json:"trigger"`
	StartDate        time.Time                 `json:"start_date"`
	DailyBudget      int                       `json:"daily_budget"`
	ChunkMinutes     int                       `json:"chunk_minutes"`
	Workloads        []planner.SubjectWorkload `json:"workloads"`
	Allocations      []planner.Allocation      `json:"allocations"`
	MinutesBySubject map[string]int            `json:"minutes_by_subject"`
}

// LogQuery defines filters for retrieving records. Zero fields match everything.
type LogQuery struct {
	Start     time.Time
	End       time.Time
	SubjectID string
	Trigger   events.Trigger
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// Matches reports whether r passes every filter of q.
func (q LogQuery) Matches(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Trigger != "" && r.Trigger != q.Trigger {
		return false
	}
	if q.SubjectID == "" {
		return true
	}
	if _, ok := r.MinutesBySubject[q.SubjectID]; ok {
		return true
	}
	for _, w := range r.Workloads {
		if w.ID == q.SubjectID {
			return true
		}
	}
	return false
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, LogRecord) error { return nil }

func (NopStore) Query(context.Context, LogQuery) ([]LogRecord, error) { return nil, nil }

func (NopStore) Close() error { return nil }
