package store

import (
	"sort"

	"github.com/kilianp07/studyplan/core/model"
)

// SortSubjects orders subjects by exam date ascending, then difficulty
// descending, then id for stability.
func SortSubjects(subjects []model.Subject) {
	sort.SliceStable(subjects, func(i, j int) bool {
		a, b := subjects[i], subjects[j]
		if !a.ExamDate.Equal(b.ExamDate) {
			return a.ExamDate.Before(b.ExamDate)
		}
		if a.Difficulty != b.Difficulty {
			return a.Difficulty > b.Difficulty
		}
		return a.ID < b.ID
	})
}

// SortSessions orders sessions by date, then start time, then id.
func SortSessions(sessions []model.StudySession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.ID < b.ID
	})
}
