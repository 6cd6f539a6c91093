// Package planning orchestrates the planner with persistence: it loads
// subjects, generates a plan, replaces the stored planned sessions and keeps
// session statuses and subject progress consistent.
package planning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/studyplan/core/events"
	"github.com/kilianp07/studyplan/core/logger"
	"github.com/kilianp07/studyplan/core/metrics"
	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/monitoring"
	"github.com/kilianp07/studyplan/core/planlog"
	"github.com/kilianp07/studyplan/core/planner"
	"github.com/kilianp07/studyplan/core/report"
	"github.com/kilianp07/studyplan/core/store"
	"github.com/kilianp07/studyplan/internal/eventbus"
)

// Service serialises every read-modify-write on the store.
type Service struct {
	mu      sync.Mutex
	store   store.Store
	planner *planner.Planner
	cfg     Config

	bus     eventbus.EventBus
	sink    metrics.PlanSink
	logs    planlog.LogStore
	monitor monitoring.Monitor
	log     logger.Logger
	now     func() time.Time
	newID   func() string
}

// Option customises a Service.
type Option func(*Service)

// WithEventBus publishes plan and session events on bus.
func WithEventBus(bus eventbus.EventBus) Option { return func(s *Service) { s.bus = bus } }

// WithMetrics records plan runs on sink.
func WithMetrics(sink metrics.PlanSink) Option { return func(s *Service) { s.sink = sink } }

// WithLogStore appends a record of every plan run to logs.
func WithLogStore(logs planlog.LogStore) Option { return func(s *Service) { s.logs = logs } }

// WithMonitor reports store failures to m.
func WithMonitor(m monitoring.Monitor) Option { return func(s *Service) { s.monitor = m } }

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option { return func(s *Service) { s.log = l } }

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithIDGenerator overrides the generator of subject and session ids.
func WithIDGenerator(f func() string) Option { return func(s *Service) { s.newID = f } }

// NewService creates a Service backed by st.
func NewService(st store.Store, cfg Config, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("planning: store is required")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("planning config: %w", err)
	}
	p, err := planner.New(cfg.Policy)
	if err != nil {
		return nil, err
	}
	s := &Service{
		store:   st,
		planner: p,
		cfg:     cfg,
		sink:    metrics.NopSink{},
		logs:    planlog.NopStore{},
		monitor: monitoring.NopMonitor{},
		log:     logger.NopLogger{},
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Availability returns the stored daily budget, creating the default row on first use.
func (s *Service) Availability(ctx context.Context) (model.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availability(ctx)
}

func (s *Service) availability(ctx context.Context) (model.Availability, error) {
	a, ok, err := s.store.GetAvailability(ctx)
	if err != nil {
		return model.Availability{}, s.fail(err, "get_availability")
	}
	if ok {
		return a, nil
	}
	a = model.Availability{MinutesPerDay: s.cfg.DefaultMinutesPerDay}
	if err := s.store.SetAvailability(ctx, a); err != nil {
		return model.Availability{}, s.fail(err, "set_availability")
	}
	return a, nil
}

// SetMinutesPerDay stores a new daily budget. Existing sessions are kept.
func (s *Service) SetMinutesPerDay(ctx context.Context, minutes int) (model.Availability, error) {
	if minutes < 0 {
		return model.Availability{}, fmt.Errorf("%w: minutesPerDay must be >= 0", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := model.Availability{MinutesPerDay: minutes}
	if err := s.store.SetAvailability(ctx, a); err != nil {
		return model.Availability{}, s.fail(err, "set_availability")
	}
	s.log.Infof("daily budget set to %d minutes", minutes)
	return a, nil
}

// ListSubjects returns subjects by exam date, hardest first on ties.
func (s *Service) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	subjects, err := s.store.ListSubjects(ctx)
	if err != nil {
		return nil, s.fail(err, "list_subjects")
	}
	return subjects, nil
}

// CreateSubject validates and stores sub under a fresh id. A negative
// progress is clamped to zero.
func (s *Service) CreateSubject(ctx context.Context, sub model.Subject) (model.Subject, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.ExamDate = model.Day(sub.ExamDate)
	sub.MinutesDone = max(0, sub.MinutesDone)
	if err := sub.Validate(); err != nil {
		return model.Subject{}, err
	}
	sub.ID = s.newID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.CreateSubject(ctx, sub); err != nil {
		return model.Subject{}, s.fail(err, "create_subject")
	}
	s.log.Infow("subject created", map[string]any{"id": sub.ID, "name": sub.Name, "exam_date": sub.ExamDate.Format(model.DateLayout)})
	return sub, nil
}

// DeleteSubject removes the subject and its sessions.
func (s *Service) DeleteSubject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.DeleteSubject(ctx, id); err != nil {
		return s.fail(err, "delete_subject")
	}
	s.log.Infof("subject %s deleted", id)
	return nil
}

// GeneratePlan replaces every planned session from startDate on with a fresh
// plan and returns the new sessions. Done and missed sessions are kept.
func (s *Service) GeneratePlan(ctx context.Context, startDate time.Time, chunkMinutes int) ([]model.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generate(ctx, model.Day(startDate), chunkMinutes, events.TriggerGenerate)
}

func (s *Service) generate(ctx context.Context, start time.Time, chunkMinutes int, trigger events.Trigger) ([]model.StudySession, error) {
	began := s.now()
	subjects, err := s.store.ListSubjectsByCreation(ctx)
	if err != nil {
		return nil, s.fail(err, "list_subjects")
	}
	if len(subjects) == 0 {
		return nil, ErrNoSubjects
	}
	last := start
	for _, sub := range subjects {
		if sub.ExamDate.After(last) {
			last = sub.ExamDate
		}
	}
	if days := model.DaysBetween(start, last); s.cfg.MaxHorizonDays > 0 && days > s.cfg.MaxHorizonDays {
		return nil, fmt.Errorf("%w: %d days from %s exceeds %d", ErrHorizonTooLong,
			days, start.Format(model.DateLayout), s.cfg.MaxHorizonDays)
	}
	avail, err := s.availability(ctx)
	if err != nil {
		return nil, err
	}

	workloads := make([]planner.SubjectWorkload, len(subjects))
	totalRemaining := 0
	for i, sub := range subjects {
		workloads[i] = planner.SubjectWorkload{
			ID:               sub.ID,
			ExamDate:         sub.ExamDate,
			Difficulty:       sub.Difficulty,
			RemainingMinutes: sub.MinutesRemaining(),
		}
		totalRemaining += workloads[i].RemainingMinutes
	}
	chunk := s.planner.ChunkFor(chunkMinutes)
	plan := s.planner.Generate(workloads, start, avail.MinutesPerDay, chunk)

	sessions := make([]model.StudySession, len(plan))
	allocated := 0
	for i, a := range plan {
		sessions[i] = model.StudySession{
			ID:        s.newID(),
			SubjectID: a.SubjectID,
			Date:      a.Date,
			Start:     a.Start,
			Minutes:   a.Minutes,
			Status:    model.StatusPlanned,
		}
		allocated += a.Minutes
	}
	if err := s.store.ReplacePlanned(ctx, start, sessions); err != nil {
		return nil, s.fail(err, "replace_planned")
	}

	perSubject := planner.MinutesBySubject(plan)
	finished := s.now()
	s.log.Infow("plan generated", map[string]any{
		"trigger":    string(trigger),
		"start_date": start.Format(model.DateLayout),
		"sessions":   len(sessions),
		"minutes":    allocated,
		"budget":     avail.MinutesPerDay,
		"chunk":      chunk,
	})
	if s.bus != nil {
		s.bus.Publish(events.PlanGenerated{
			Trigger:      trigger,
			StartDate:    start,
			Sessions:     len(sessions),
			Minutes:      allocated,
			PerSubject:   perSubject,
			GeneratedAt:  finished,
			DailyBudget:  avail.MinutesPerDay,
			ChunkMinutes: chunk,
		})
	}
	if err := s.sink.RecordPlanRun(metrics.PlanRunEvent{
		Trigger:      trigger,
		StartDate:    start,
		Days:         len(planner.MinutesByDay(plan)),
		Sessions:     len(sessions),
		Minutes:      allocated,
		DailyBudget:  avail.MinutesPerDay,
		ChunkMinutes: chunk,
		Unscheduled:  max(0, totalRemaining-allocated),
		PerSubject:   perSubject,
		Duration:     finished.Sub(began),
		Time:         finished,
	}); err != nil {
		s.log.Errorf("metrics error: %v", err)
	}
	if err := s.logs.Append(ctx, planlog.LogRecord{
		Timestamp:        finished,
		Trigger:          trigger,
		StartDate:        start,
		DailyBudget:      avail.MinutesPerDay,
		ChunkMinutes:     chunk,
		Workloads:        workloads,
		Allocations:      plan,
		MinutesBySubject: perSubject,
	}); err != nil {
		s.log.Errorf("plan log append: %v", err)
	}
	return sessions, nil
}

// MissedResult reports what MarkDayMissed changed.
type MissedResult struct {
	Date     time.Time            `json:"date"`
	Missed   int                  `json:"missed"`
	Sessions []model.StudySession `json:"sessions"`
}

// MarkDayMissed flags the planned sessions of date as missed and regenerates
// the plan from the following day so the lost time is redistributed.
func (s *Service) MarkDayMissed(ctx context.Context, date time.Time, chunkMinutes int) (MissedResult, error) {
	day := model.Day(date)
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.store.MarkMissed(ctx, day)
	if err != nil {
		return MissedResult{}, s.fail(err, "mark_missed")
	}
	s.log.Infof("%d sessions on %s marked missed", n, day.Format(model.DateLayout))
	if s.bus != nil {
		s.bus.Publish(events.DayMissed{Date: day, Sessions: n})
	}
	sessions, err := s.generate(ctx, day.AddDate(0, 0, 1), chunkMinutes, events.TriggerReschedule)
	if errors.Is(err, ErrNoSubjects) {
		return MissedResult{Date: day, Missed: n, Sessions: []model.StudySession{}}, nil
	}
	if err != nil {
		return MissedResult{}, err
	}
	return MissedResult{Date: day, Missed: n, Sessions: sessions}, nil
}

// MarkSessionDone marks a planned session done and credits its minutes to
// the subject. Marking a done session again returns it unchanged.
func (s *Service) MarkSessionDone(ctx context.Context, id string) (model.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return model.StudySession{}, s.fail(err, "get_session")
	}
	if sess.Status == model.StatusDone {
		return sess, nil
	}
	if !sess.Status.CanTransition(model.StatusDone) {
		return model.StudySession{}, fmt.Errorf("%w: session %s is %s", ErrInvalidTransition, id, sess.Status)
	}
	done, err := s.store.CompleteSession(ctx, id)
	if err != nil {
		return model.StudySession{}, s.fail(err, "complete_session")
	}
	s.log.Infow("session done", map[string]any{"id": id, "subject_id": done.SubjectID, "minutes": done.Minutes})
	if s.bus != nil {
		s.bus.Publish(events.SessionCompleted{SessionID: done.ID, SubjectID: done.SubjectID, Minutes: done.Minutes})
	}
	return done, nil
}

// Sessions lists sessions dated from..to inclusive.
func (s *Service) Sessions(ctx context.Context, from, to time.Time) ([]model.StudySession, error) {
	from, to = model.Day(from), model.Day(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to %s is before from %s", ErrInvalidInput,
			to.Format(model.DateLayout), from.Format(model.DateLayout))
	}
	sessions, err := s.store.ListSessions(ctx, from, to)
	if err != nil {
		return nil, s.fail(err, "list_sessions")
	}
	return sessions, nil
}

// Report summarises the sessions dated from..to against the current subjects.
func (s *Service) Report(ctx context.Context, from, to time.Time) (report.Report, error) {
	sessions, err := s.Sessions(ctx, from, to)
	if err != nil {
		return report.Report{}, err
	}
	subjects, err := s.ListSubjects(ctx)
	if err != nil {
		return report.Report{}, err
	}
	return report.Summarize(subjects, sessions), nil
}

// PlanLogs queries the plan run audit log.
func (s *Service) PlanLogs(ctx context.Context, q planlog.LogQuery) ([]planlog.LogRecord, error) {
	return s.logs.Query(ctx, q)
}

// fail reports unexpected store errors and wraps them. Not-found errors are
// expected and only wrapped.
func (s *Service) fail(err error, op string) error {
	if !errors.Is(err, store.ErrNotFound) {
		monitoring.Capture(s.monitor, err, op)
		s.log.Errorf("%s: %v", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
