package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidSubject is returned when a subject fails validation.
var ErrInvalidSubject = errors.New("invalid subject")

// Subject is a course with an upcoming exam and a study workload.
type Subject struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ExamDate      time.Time `json:"examDate"`
	Difficulty    int       `json:"difficulty"`    // 1..5, higher means more weight
	HoursRequired int       `json:"hoursRequired"` // total study hours needed
	MinutesDone   int       `json:"minutesDone"`   // progress from completed sessions
}

// MinutesRequired returns the total workload in minutes.
func (s Subject) MinutesRequired() int {
	return s.HoursRequired * 60
}

// MinutesRemaining returns the workload left to cover, never negative.
func (s Subject) MinutesRemaining() int {
	rem := s.MinutesRequired() - s.MinutesDone
	if rem < 0 {
		return 0
	}
	return rem
}

// Validate checks the subject fields accepted on creation.
func (s Subject) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSubject)
	}
	if s.ExamDate.IsZero() {
		return fmt.Errorf("%w: exam date is required", ErrInvalidSubject)
	}
	if s.Difficulty < 1 || s.Difficulty > 5 {
		return fmt.Errorf("%w: difficulty %d out of range [1,5]", ErrInvalidSubject, s.Difficulty)
	}
	if s.HoursRequired < 1 {
		return fmt.Errorf("%w: hours required must be at least 1", ErrInvalidSubject)
	}
	return nil
}
