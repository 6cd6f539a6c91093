package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/studyplan/core/metrics"
	"github.com/kilianp07/studyplan/core/model"
)

// PromSink records planning activity in Prometheus metrics.
type PromSink struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	sessions    prometheus.Gauge
	minutes     prometheus.Gauge
	unscheduled prometheus.Gauge
	perSubject  *prometheus.GaugeVec
	status      *prometheus.CounterVec
	completed   *prometheus.CounterVec
	missed      prometheus.Counter
}

var (
	_ coremetrics.PlanSink          = (*PromSink)(nil)
	_ coremetrics.SessionRecorder   = (*PromSink)(nil)
	_ coremetrics.MissedDayRecorder = (*PromSink)(nil)
)

// NewPromSink registers planning metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyplan_plan_runs_total",
			Help: "Total number of planner runs",
		}, []string{"trigger"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studyplan_plan_generation_seconds",
			Help:    "Time spent generating and persisting a plan",
			Buckets: prometheus.DefBuckets,
		}, []string{"trigger"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "studyplan_plan_sessions",
			Help: "Sessions produced by the last plan run",
		}),
		minutes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "studyplan_plan_minutes",
			Help: "Minutes allocated by the last plan run",
		}),
		unscheduled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "studyplan_plan_unscheduled_minutes",
			Help: "Workload minutes the last plan run could not place",
		}),
		perSubject: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "studyplan_plan_subject_minutes",
			Help: "Minutes allocated per subject by the last plan run",
		}, []string{"subject_id"}),
		status: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyplan_session_status_total",
			Help: "Session status transitions",
		}, []string{"status"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyplan_completed_minutes_total",
			Help: "Minutes of study completed per subject",
		}, []string{"subject_id"}),
		missed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyplan_missed_sessions_total",
			Help: "Planned sessions marked missed",
		}),
	}
	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.sessions, err = register(reg, s.sessions); err != nil {
		return nil, err
	}
	if s.minutes, err = register(reg, s.minutes); err != nil {
		return nil, err
	}
	if s.unscheduled, err = register(reg, s.unscheduled); err != nil {
		return nil, err
	}
	if s.perSubject, err = register(reg, s.perSubject); err != nil {
		return nil, err
	}
	if s.status, err = register(reg, s.status); err != nil {
		return nil, err
	}
	if s.completed, err = register(reg, s.completed); err != nil {
		return nil, err
	}
	if s.missed, err = register(reg, s.missed); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPlanRun updates run counters and the last-plan gauges.
func (s *PromSink) RecordPlanRun(ev coremetrics.PlanRunEvent) error {
	trigger := string(ev.Trigger)
	s.runs.WithLabelValues(trigger).Inc()
	s.duration.WithLabelValues(trigger).Observe(ev.Duration.Seconds())
	s.sessions.Set(float64(ev.Sessions))
	s.minutes.Set(float64(ev.Minutes))
	s.unscheduled.Set(float64(ev.Unscheduled))
	s.perSubject.Reset()
	for id, m := range ev.PerSubject {
		s.perSubject.WithLabelValues(id).Set(float64(m))
	}
	return nil
}

// RecordSessionStatus counts the transition and completed minutes.
func (s *PromSink) RecordSessionStatus(ev coremetrics.SessionEvent) error {
	s.status.WithLabelValues(ev.Status.String()).Inc()
	if ev.Status == model.StatusDone {
		s.completed.WithLabelValues(ev.SubjectID).Add(float64(ev.Minutes))
	}
	return nil
}

// RecordMissedDay adds the missed sessions of a day.
func (s *PromSink) RecordMissedDay(ev coremetrics.MissedDayEvent) error {
	s.missed.Add(float64(ev.Sessions))
	return nil
}

// RegisterDroppedEvents exposes the event bus drop count as
// studyplan_eventbus_dropped_total. A counter left by an earlier bus is
// replaced. A nil registerer defaults to the global one.
func RegisterDroppedEvents(reg prometheus.Registerer, dropped func() uint64) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "studyplan_eventbus_dropped_total",
		Help: "Events not delivered because a subscriber queue was full.",
	}, func() float64 { return float64(dropped()) })
	err := reg.Register(c)
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		reg.Unregister(are.ExistingCollector)
		err = reg.Register(c)
	}
	return err
}
