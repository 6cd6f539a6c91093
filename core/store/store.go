// Package store defines the persistence contracts used by the plan
// orchestrator. Implementations live in core/store/memory and infra/store.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/studyplan/core/model"
)

// ErrNotFound is returned when a subject or session does not exist.
var ErrNotFound = errors.New("not found")

// SubjectStore persists subjects and their progress.
type SubjectStore interface {
	// ListSubjects returns subjects ordered by exam date, then difficulty descending.
	ListSubjects(ctx context.Context) ([]model.Subject, error)
	// ListSubjectsByCreation returns subjects in the order they were created.
	ListSubjectsByCreation(ctx context.Context) ([]model.Subject, error)
	GetSubject(ctx context.Context, id string) (model.Subject, error)
	CreateSubject(ctx context.Context, s model.Subject) error
	// DeleteSubject removes the subject and all of its sessions.
	DeleteSubject(ctx context.Context, id string) error
}

// SessionStore persists study sessions.
type SessionStore interface {
	// ListSessions returns sessions with from <= date <= to ordered by date then start.
	ListSessions(ctx context.Context, from, to time.Time) ([]model.StudySession, error)
	GetSession(ctx context.Context, id string) (model.StudySession, error)
	// ReplacePlanned deletes every PLANNED session dated on or after from and
	// inserts sessions, atomically.
	ReplacePlanned(ctx context.Context, from time.Time, sessions []model.StudySession) error
	// MarkMissed flags the PLANNED sessions of day as MISSED and returns how many changed.
	MarkMissed(ctx context.Context, day time.Time) (int, error)
	// CompleteSession marks the session DONE and adds its minutes to the
	// subject progress, atomically.
	CompleteSession(ctx context.Context, id string) (model.StudySession, error)
}

// AvailabilityStore persists the single daily budget row.
type AvailabilityStore interface {
	// GetAvailability returns the stored row and whether it exists.
	GetAvailability(ctx context.Context) (model.Availability, bool, error)
	SetAvailability(ctx context.Context, a model.Availability) error
}

// Store groups every persistence contract.
type Store interface {
	SubjectStore
	SessionStore
	AvailabilityStore
	Close() error
}
