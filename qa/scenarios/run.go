package scenarios

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/planning"
	"github.com/kilianp07/studyplan/core/report"
	"github.com/kilianp07/studyplan/core/store/memory"
	"github.com/kilianp07/studyplan/infra/metrics"
)

var horizonEnd = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

func RunScenario(t *testing.T, sc *Scenario) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	n := 0
	svc, err := planning.NewService(memory.New(), planning.Config{},
		planning.WithMetrics(sink),
		planning.WithIDGenerator(func() string { n++; return fmt.Sprintf("s%d", n) }),
	)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	if _, err := svc.SetMinutesPerDay(ctx, sc.MinutesPerDay); err != nil {
		t.Fatalf("availability: %v", err)
	}

	ids := map[string]string{}
	names := map[string]string{}
	for _, def := range sc.Subjects {
		sub, err := def.ToModel()
		if err != nil {
			t.Fatalf("subject: %v", err)
		}
		created, err := svc.CreateSubject(ctx, sub)
		if err != nil {
			t.Fatalf("create %s: %v", def.Name, err)
		}
		ids[def.Name] = created.ID
		names[created.ID] = def.Name
	}

	for i, st := range sc.Steps {
		day, err := model.ParseDate(st.Date)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		switch st.Action {
		case "generate":
			_, err = svc.GeneratePlan(ctx, day, st.Chunk)
		case "missed":
			_, err = svc.MarkDayMissed(ctx, day, st.Chunk)
		case "done":
			var id string
			id, err = plannedOn(ctx, svc, day, ids[st.Subject])
			if err == nil {
				_, err = svc.MarkSessionDone(ctx, id)
			}
		}
		if err != nil {
			t.Fatalf("step %d (%s): %v", i, st.Action, err)
		}
	}

	sessions, err := svc.Sessions(ctx, time.Time{}, horizonEnd)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	planned := map[string]int{}
	missed, done := 0, 0
	for _, s := range sessions {
		switch s.Status {
		case model.StatusPlanned:
			planned[names[s.SubjectID]] += s.Minutes
		case model.StatusMissed:
			missed++
		case model.StatusDone:
			done++
		}
	}
	exp := sc.Expected
	if len(sessions) != exp.Sessions {
		t.Errorf("scenario %s expected %d sessions, got %d", sc.Name, exp.Sessions, len(sessions))
	}
	if missed != exp.Missed || done != exp.Done {
		t.Errorf("scenario %s expected %d missed/%d done, got %d/%d", sc.Name, exp.Missed, exp.Done, missed, done)
	}
	for name, want := range exp.PlannedMinutes {
		if planned[name] != want {
			t.Errorf("scenario %s expected %d planned minutes for %s, got %d", sc.Name, want, name, planned[name])
		}
	}
	subjects, err := svc.ListSubjects(ctx)
	if err != nil {
		t.Fatalf("subjects: %v", err)
	}
	if got := report.Summarize(subjects, sessions).Unscheduled(); got != exp.Unscheduled {
		t.Errorf("scenario %s expected %d unscheduled minutes, got %d", sc.Name, exp.Unscheduled, got)
	}
	if got := counterSum(t, reg, "studyplan_plan_runs_total"); got != float64(exp.PlanRuns) {
		t.Errorf("scenario %s expected %d plan runs, got %v", sc.Name, exp.PlanRuns, got)
	}
}

// plannedOn returns the first planned session of subject on day.
func plannedOn(ctx context.Context, svc *planning.Service, day time.Time, subjectID string) (string, error) {
	sessions, err := svc.Sessions(ctx, day, day)
	if err != nil {
		return "", err
	}
	for _, s := range sessions {
		if s.SubjectID == subjectID && s.Status == model.StatusPlanned {
			return s.ID, nil
		}
	}
	return "", fmt.Errorf("no planned session for %s on %s", subjectID, day.Format(model.DateLayout))
}

func counterSum(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	sum := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}
