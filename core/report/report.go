// Package report summarises a stored plan: daily load statistics and how
// much of each subject's remaining workload is covered by planned sessions.
package report

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/studyplan/core/model"
)

// DailyLoad is the study time scheduled on one day.
type DailyLoad struct {
	Date    time.Time `json:"date"`
	Minutes int       `json:"minutes"`
}

// SubjectCoverage compares a subject's remaining workload with its sessions.
type SubjectCoverage struct {
	SubjectID          string    `json:"subjectId"`
	Name               string    `json:"name"`
	ExamDate           time.Time `json:"examDate"`
	RemainingMinutes   int       `json:"remainingMinutes"`
	PlannedMinutes     int       `json:"plannedMinutes"`
	DoneMinutes        int       `json:"doneMinutes"`
	MissedMinutes      int       `json:"missedMinutes"`
	UnscheduledMinutes int       `json:"unscheduledMinutes"`
	// Coverage is planned/remaining; 1 when nothing remains.
	Coverage float64 `json:"coverage"`
	Sessions int     `json:"sessions"`
}

// Report aggregates a set of sessions.
type Report struct {
	Days               int               `json:"days"`
	TotalMinutes       int               `json:"totalMinutes"`
	MeanDailyMinutes   float64           `json:"meanDailyMinutes"`
	StdDevDailyMinutes float64           `json:"stdDevDailyMinutes"`
	MaxDailyMinutes    int               `json:"maxDailyMinutes"`
	Daily              []DailyLoad       `json:"daily"`
	Subjects           []SubjectCoverage `json:"subjects"`
}

// Summarize builds a Report. Daily load counts planned and done sessions;
// missed sessions only show up in the per-subject MissedMinutes. Sessions of
// unknown subjects count towards the daily load only.
func Summarize(subjects []model.Subject, sessions []model.StudySession) Report {
	rep := Report{Daily: []DailyLoad{}, Subjects: make([]SubjectCoverage, 0, len(subjects))}

	index := make(map[string]int, len(subjects))
	for _, s := range subjects {
		if _, dup := index[s.ID]; dup {
			continue
		}
		index[s.ID] = len(rep.Subjects)
		rep.Subjects = append(rep.Subjects, SubjectCoverage{
			SubjectID:        s.ID,
			Name:             s.Name,
			ExamDate:         s.ExamDate,
			RemainingMinutes: s.MinutesRemaining(),
		})
	}

	perDay := make(map[time.Time]int)
	for _, sess := range sessions {
		i, known := index[sess.SubjectID]
		if known {
			rep.Subjects[i].Sessions++
		}
		switch sess.Status {
		case model.StatusMissed:
			if known {
				rep.Subjects[i].MissedMinutes += sess.Minutes
			}
			continue
		case model.StatusDone:
			if known {
				rep.Subjects[i].DoneMinutes += sess.Minutes
			}
		default:
			if known {
				rep.Subjects[i].PlannedMinutes += sess.Minutes
			}
		}
		perDay[model.Day(sess.Date)] += sess.Minutes
		rep.TotalMinutes += sess.Minutes
	}

	for i := range rep.Subjects {
		c := &rep.Subjects[i]
		c.UnscheduledMinutes = max(0, c.RemainingMinutes-c.PlannedMinutes)
		if c.RemainingMinutes == 0 {
			c.Coverage = 1
		} else {
			c.Coverage = float64(c.PlannedMinutes) / float64(c.RemainingMinutes)
		}
	}

	for d, m := range perDay {
		rep.Daily = append(rep.Daily, DailyLoad{Date: d, Minutes: m})
	}
	sort.Slice(rep.Daily, func(i, j int) bool { return rep.Daily[i].Date.Before(rep.Daily[j].Date) })

	rep.Days = len(rep.Daily)
	if rep.Days == 0 {
		return rep
	}
	loads := make([]float64, rep.Days)
	for i, d := range rep.Daily {
		loads[i] = float64(d.Minutes)
		rep.MaxDailyMinutes = max(rep.MaxDailyMinutes, d.Minutes)
	}
	rep.MeanDailyMinutes = stat.Mean(loads, nil)
	if rep.Days > 1 {
		rep.StdDevDailyMinutes = stat.StdDev(loads, nil)
	}
	return rep
}

// Unscheduled sums the workload left without a planned session.
func (r Report) Unscheduled() int {
	total := 0
	for _, s := range r.Subjects {
		total += s.UnscheduledMinutes
	}
	return total
}
