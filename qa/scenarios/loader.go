// Package scenarios replays YAML planning scenarios against the planning
// service and checks the resulting sessions and metrics.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/studyplan/core/model"
)

type SubjectDef struct {
	Name       string `yaml:"name"`
	ExamDate   string `yaml:"exam_date"`
	Difficulty int    `yaml:"difficulty"`
	Hours      int    `yaml:"hours"`
	DoneMin    int    `yaml:"minutes_done,omitempty"`
}

func (s SubjectDef) ToModel() (model.Subject, error) {
	exam, err := model.ParseDate(s.ExamDate)
	if err != nil {
		return model.Subject{}, fmt.Errorf("subject %s: %w", s.Name, err)
	}
	return model.Subject{
		Name:          s.Name,
		ExamDate:      exam,
		Difficulty:    s.Difficulty,
		HoursRequired: s.Hours,
		MinutesDone:   s.DoneMin,
	}, nil
}

// Step is one action applied to the service: generate, missed or done.
type Step struct {
	Action string `yaml:"action"`
	Date   string `yaml:"date"`
	Chunk  int    `yaml:"chunk,omitempty"`
	// Subject names the planned session to complete on Date for done steps.
	Subject string `yaml:"subject,omitempty"`
}

type Expected struct {
	Sessions       int            `yaml:"sessions"`
	PlannedMinutes map[string]int `yaml:"planned_minutes"`
	Missed         int            `yaml:"missed"`
	Done           int            `yaml:"done"`
	PlanRuns       int            `yaml:"plan_runs"`
	Unscheduled    int            `yaml:"unscheduled"`
}

type Scenario struct {
	Name          string       `yaml:"name"`
	Description   string       `yaml:"description,omitempty"`
	MinutesPerDay int          `yaml:"minutes_per_day"`
	Subjects      []SubjectDef `yaml:"subjects"`
	Steps         []Step       `yaml:"steps"`
	Expected      Expected     `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	for i, st := range sc.Steps {
		if _, ok := actions[st.Action]; !ok {
			return nil, fmt.Errorf("step %d: unknown action %q", i, st.Action)
		}
	}
	return &sc, nil
}

var actions = map[string]struct{}{"generate": {}, "missed": {}, "done": {}}
