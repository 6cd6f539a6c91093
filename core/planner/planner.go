// Package planner allocates daily study time across subjects with upcoming
// exams. It builds a day-by-day sequence of sessions using a greedy
// priority-driven packing over the horizon ending at the last exam.
//
// The planner is a pure function of its inputs: it performs no I/O and holds
// no state between calls, so identical inputs always yield identical plans.
package planner

import (
	"fmt"
	"time"

	"github.com/kilianp07/studyplan/core/model"
)

// SubjectWorkload is the snapshot of a subject consumed by the planner.
type SubjectWorkload struct {
	ID               string    `json:"id" yaml:"id"`
	ExamDate         time.Time `json:"examDate" yaml:"exam_date"`
	Difficulty       int       `json:"difficulty" yaml:"difficulty"`
	RemainingMinutes int       `json:"remainingMinutes" yaml:"remaining_minutes"`
}

// Allocation is one planned block of study time.
type Allocation struct {
	SubjectID string    `json:"subjectId"`
	Date      time.Time `json:"date"`
	Start     time.Time `json:"startTime"`
	Minutes   int       `json:"minutes"`
}

// Planner generates study plans according to its policy.
type Planner struct {
	scorer       Scorer
	dayStart     time.Duration
	breakLen     time.Duration
	defaultChunk int
}

// Option customises a Planner.
type Option func(*Planner)

// WithScorer replaces the weighted scorer built from the config.
func WithScorer(s Scorer) Option {
	return func(p *Planner) {
		if s != nil {
			p.scorer = s
		}
	}
}

// New creates a Planner from cfg. Zero-value fields fall back to defaults.
func New(cfg Config, opts ...Option) (*Planner, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start, err := parseClock(cfg.DayStart)
	if err != nil {
		return nil, fmt.Errorf("planner: day_start: %w", err)
	}
	p := &Planner{
		scorer:       WeightedScorer{Weights: cfg.Weights},
		dayStart:     start,
		breakLen:     time.Duration(*cfg.BreakMinutes) * time.Minute,
		defaultChunk: cfg.DefaultChunkMinutes,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

var defaultPlanner = func() *Planner {
	p, err := New(Config{})
	if err != nil {
		panic(err)
	}
	return p
}()

// Default returns a Planner using the default policy: 18:00 day start,
// 10 minute breaks, 60 minute chunks and weights 10/2/1.
func Default() *Planner { return defaultPlanner }

// ChunkFor returns the chunk size Generate uses for the requested value.
func (p *Planner) ChunkFor(chunkMinutes int) int {
	if chunkMinutes <= 0 {
		return p.defaultChunk
	}
	return chunkMinutes
}

// Generate plans with the default policy. See Planner.Generate.
func Generate(subjects []SubjectWorkload, startDate time.Time, dailyBudgetMinutes, chunkMinutes int) []Allocation {
	return defaultPlanner.Generate(subjects, startDate, dailyBudgetMinutes, chunkMinutes)
}

// Generate allocates study time from startDate through the latest exam date.
//
// Each day the free budget is reset to dailyBudgetMinutes and the subjects
// that still have work left and whose exam has not passed are ranked by
// score. The best subject receives min(chunk, free budget, remaining) minutes
// and is re-ranked with its new remaining workload, so it may win several
// chunks on the same day. Equal scores are resolved in input order.
//
// A non-positive budget or an empty subject list yields an empty plan. A
// non-positive chunk falls back to the default chunk size. Allocations are
// returned ordered by date, then start time.
func (p *Planner) Generate(subjects []SubjectWorkload, startDate time.Time, dailyBudgetMinutes, chunkMinutes int) []Allocation {
	plan := []Allocation{}
	if dailyBudgetMinutes <= 0 || len(subjects) == 0 {
		return plan
	}
	chunkMinutes = p.ChunkFor(chunkMinutes)

	start := model.Day(startDate)
	workloads := normalise(subjects)
	last := start
	for i, w := range workloads {
		if i == 0 || w.ExamDate.After(last) {
			last = w.ExamDate
		}
	}

	remaining := make(map[string]int, len(workloads))
	for _, w := range workloads {
		remaining[w.ID] = w.RemainingMinutes
	}

	for day := start; !day.After(last); day = day.AddDate(0, 0, 1) {
		free := dailyBudgetMinutes
		cursor := day.Add(p.dayStart)

		q := newDayQueue(len(workloads))
		for i := range workloads {
			w := &workloads[i]
			rem := remaining[w.ID]
			if rem <= 0 || day.After(w.ExamDate) {
				continue
			}
			q.add(w, rem, p.scorer.Score(*w, day, rem))
		}

		for free > 0 && q.Len() > 0 {
			top := q.next()
			minutes := min(chunkMinutes, free, top.remaining)
			if minutes <= 0 {
				continue
			}
			plan = append(plan, Allocation{
				SubjectID: top.subject.ID,
				Date:      day,
				Start:     cursor,
				Minutes:   minutes,
			})

			free -= minutes
			left := top.remaining - minutes
			remaining[top.subject.ID] = left
			cursor = cursor.Add(time.Duration(minutes)*time.Minute + p.breakLen)

			if left > 0 {
				q.add(top.subject, left, p.scorer.Score(*top.subject, day, left))
			}
		}
	}
	return plan
}

// normalise copies the workloads with exam dates truncated to calendar days.
// Only the first occurrence of a subject id is kept.
func normalise(subjects []SubjectWorkload) []SubjectWorkload {
	out := make([]SubjectWorkload, 0, len(subjects))
	seen := make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		s.ExamDate = model.Day(s.ExamDate)
		out = append(out, s)
	}
	return out
}
