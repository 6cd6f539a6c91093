package planning

import (
	"errors"

	"github.com/kilianp07/studyplan/core/store"
)

var (
	// ErrNoSubjects is returned when a plan is requested before any subject exists.
	ErrNoSubjects = errors.New("no subjects found, add subjects first")
	// ErrHorizonTooLong is returned when the last exam is too far from the start date.
	ErrHorizonTooLong = errors.New("planning horizon too long")
	// ErrInvalidTransition is returned when a session cannot change to the requested status.
	ErrInvalidTransition = errors.New("invalid session status transition")
	// ErrInvalidInput flags rejected arguments.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is store.ErrNotFound, re-exported for callers of the service.
	ErrNotFound = store.ErrNotFound
)
