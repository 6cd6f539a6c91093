package metrics

import (
	"errors"
	"io"
)

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []PlanSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...PlanSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlanRun forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordPlanRun(ev PlanRunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlanRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSessionStatus forwards session changes when supported by the sink.
func (m *MultiSink) RecordSessionStatus(ev SessionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SessionRecorder); ok {
			if err := rec.RecordSessionStatus(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordMissedDay forwards missed days when supported by the sink.
func (m *MultiSink) RecordMissedDay(ev MissedDayEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(MissedDayRecorder); ok {
			if err := rec.RecordMissedDay(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink holding resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
