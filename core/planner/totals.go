package planner

import (
	"time"

	"github.com/kilianp07/studyplan/core/model"
)

// MinutesBySubject sums allocated minutes per subject id.
func MinutesBySubject(plan []Allocation) map[string]int {
	out := make(map[string]int)
	for _, a := range plan {
		out[a.SubjectID] += a.Minutes
	}
	return out
}

// MinutesByDay sums allocated minutes per calendar day.
func MinutesByDay(plan []Allocation) map[time.Time]int {
	out := make(map[time.Time]int)
	for _, a := range plan {
		out[a.Date] += a.Minutes
	}
	return out
}

// RemainingMinutes sums the workload Generate would consider: duplicate
// ids count once, first occurrence wins.
func RemainingMinutes(subjects []SubjectWorkload) int {
	total := 0
	for _, s := range normalise(subjects) {
		total += s.RemainingMinutes
	}
	return total
}

// HorizonDays is the number of days from start to the latest exam, or 0 when
// every exam is on or before start.
func HorizonDays(subjects []SubjectWorkload, start time.Time) int {
	last := model.Day(start)
	for _, s := range subjects {
		if d := model.Day(s.ExamDate); d.After(last) {
			last = d
		}
	}
	return model.DaysBetween(start, last)
}
