package planner

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kilianp07/studyplan/core/model"
)

// SubjectInput is a workload entry as written in a request file.
type SubjectInput struct {
	ID               string `json:"id" yaml:"id"`
	ExamDate         string `json:"exam_date" yaml:"exam_date"`
	Difficulty       int    `json:"difficulty" yaml:"difficulty"`
	RemainingMinutes int    `json:"remaining_minutes" yaml:"remaining_minutes"`
}

// Request describes a standalone planning run, used by the plan command.
type Request struct {
	StartDate          string         `json:"start_date" yaml:"start_date"`
	DailyBudgetMinutes int            `json:"daily_budget_minutes" yaml:"daily_budget_minutes"`
	ChunkMinutes       int            `json:"chunk_minutes" yaml:"chunk_minutes"`
	Policy             Config         `json:"policy" yaml:"policy"`
	Subjects           []SubjectInput `json:"subjects" yaml:"subjects"`
}

// LoadRequest reads a Request from a JSON or YAML file.
func LoadRequest(path string) (Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return Request{}, err
	}
	defer func() { _ = f.Close() }()
	format, err := formatFromPath(path)
	if err != nil {
		return Request{}, err
	}
	return DecodeRequest(f, format)
}

// DecodeRequest reads a Request from r in the given format.
func DecodeRequest(r io.Reader, format string) (Request, error) {
	var req Request
	if err := decode(r, format, &req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Workloads parses the start date and subject entries of the request.
func (r Request) Workloads() (time.Time, []SubjectWorkload, error) {
	start, err := model.ParseDate(r.StartDate)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("start_date: %w", err)
	}
	out := make([]SubjectWorkload, 0, len(r.Subjects))
	for i, s := range r.Subjects {
		if s.ID == "" {
			return time.Time{}, nil, fmt.Errorf("subject %d: id is required", i)
		}
		exam, err := model.ParseDate(s.ExamDate)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("subject %s: exam_date: %w", s.ID, err)
		}
		if s.RemainingMinutes < 0 {
			return time.Time{}, nil, fmt.Errorf("subject %s: remaining_minutes must not be negative", s.ID)
		}
		out = append(out, SubjectWorkload{
			ID:               s.ID,
			ExamDate:         exam,
			Difficulty:       s.Difficulty,
			RemainingMinutes: s.RemainingMinutes,
		})
	}
	return start, out, nil
}
