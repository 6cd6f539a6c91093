package metrics

import (
	"errors"

	"github.com/kilianp07/studyplan/core/factory"
)

var sinkRegistry = factory.NewRegistry[PlanSink]()

// RegisterPlanSink adds a sink factory identified by name.
func RegisterPlanSink(name string, f factory.Factory[PlanSink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkTypes lists the registered sink types.
func SinkTypes() []string { return sinkRegistry.Names() }

// NewPlanSink creates a PlanSink from the provided configuration. Sinks
// built before a failing entry are closed.
func NewPlanSink(cfgs []factory.ModuleConfig) (PlanSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]PlanSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			if cerr := NewMultiSink(sinks[:i]...).Close(); cerr != nil {
				return nil, errors.Join(err, cerr)
			}
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}
