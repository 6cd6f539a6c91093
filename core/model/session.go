package model

import (
	"fmt"
	"time"
)

// SessionStatus tracks the lifecycle of a study session.
type SessionStatus int

const (
	StatusPlanned SessionStatus = iota
	StatusDone
	StatusMissed
)

// String returns the persisted representation of the status.
func (s SessionStatus) String() string {
	switch s {
	case StatusPlanned:
		return "PLANNED"
	case StatusDone:
		return "DONE"
	case StatusMissed:
		return "MISSED"
	default:
		return "UNKNOWN"
	}
}

// ParseSessionStatus converts the persisted representation back to a status.
func ParseSessionStatus(s string) (SessionStatus, error) {
	switch s {
	case "PLANNED":
		return StatusPlanned, nil
	case "DONE":
		return StatusDone, nil
	case "MISSED":
		return StatusMissed, nil
	default:
		return 0, fmt.Errorf("unknown session status %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s SessionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SessionStatus) UnmarshalText(b []byte) error {
	v, err := ParseSessionStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CanTransition reports whether a session may move from s to next.
// Only planned sessions change state.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	return s == StatusPlanned && (next == StatusDone || next == StatusMissed)
}

// StudySession is a persisted block of study time for one subject.
type StudySession struct {
	ID        string        `json:"id"`
	SubjectID string        `json:"subjectId"`
	Date      time.Time     `json:"date"`
	Start     time.Time     `json:"startTime"`
	Minutes   int           `json:"minutes"`
	Status    SessionStatus `json:"status"`
}

// End returns the instant the session finishes.
func (s StudySession) End() time.Time {
	return s.Start.Add(time.Duration(s.Minutes) * time.Minute)
}

// Availability holds the daily study budget. There is a single row.
type Availability struct {
	MinutesPerDay int `json:"minutesPerDay"`
}

// DefaultMinutesPerDay is used when no availability was stored yet.
const DefaultMinutesPerDay = 180
