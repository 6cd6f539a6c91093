package planner

import (
	"time"

	"github.com/kilianp07/studyplan/core/model"
)

// Scorer ranks a subject for a given day. Higher means more urgent.
type Scorer interface {
	Score(w SubjectWorkload, today time.Time, remainingMinutes int) float64
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(w SubjectWorkload, today time.Time, remainingMinutes int) float64

// Score calls f.
func (f ScorerFunc) Score(w SubjectWorkload, today time.Time, remainingMinutes int) float64 {
	return f(w, today, remainingMinutes)
}

// Weights balances the three terms of the weighted score.
type Weights struct {
	Urgency    float64 `json:"urgency" yaml:"urgency"`
	Difficulty float64 `json:"difficulty" yaml:"difficulty"`
	Remaining  float64 `json:"remaining" yaml:"remaining"`
}

// DefaultWeights lets near deadlines dominate, with difficulty second and
// remaining backlog as a small nudge.
var DefaultWeights = Weights{Urgency: 10, Difficulty: 2, Remaining: 1}

// WeightedScorer computes
//
//	urgency/max(daysUntilExam, 1) + difficulty*d + remaining*(minutes/60)
//
// where daysUntilExam is floored at one for exam-day and overdue subjects.
type WeightedScorer struct {
	Weights Weights
}

// Score implements Scorer.
func (s WeightedScorer) Score(w SubjectWorkload, today time.Time, remainingMinutes int) float64 {
	days := model.DaysBetween(today, w.ExamDate)
	if days < 1 {
		days = 1
	}
	urgency := 1.0 / float64(days)
	return s.Weights.Urgency*urgency +
		s.Weights.Difficulty*float64(w.Difficulty) +
		s.Weights.Remaining*(float64(remainingMinutes)/60.0)
}

// Score rates a subject with the default weights.
func Score(w SubjectWorkload, today time.Time, remainingMinutes int) float64 {
	return WeightedScorer{Weights: DefaultWeights}.Score(w, today, remainingMinutes)
}
