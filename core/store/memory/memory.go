// Package memory provides an in-process Store, used by tests and the
// "memory" backend.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/store"
)

// Store keeps subjects, sessions and availability in maps.
type Store struct {
	mu           sync.Mutex
	subjects     map[string]model.Subject
	order        []string
	sessions     map[string]model.StudySession
	availability *model.Availability
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		subjects: map[string]model.Subject{},
		sessions: map[string]model.StudySession{},
	}
}

var _ store.Store = (*Store)(nil)

func (s *Store) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Subject, 0, len(s.subjects))
	for _, sub := range s.subjects {
		out = append(out, sub)
	}
	store.SortSubjects(out)
	return out, nil
}

func (s *Store) ListSubjectsByCreation(ctx context.Context) ([]model.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Subject, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.subjects[id])
	}
	return out, nil
}

func (s *Store) GetSubject(ctx context.Context, id string) (model.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subjects[id]
	if !ok {
		return model.Subject{}, fmt.Errorf("subject %s: %w", id, store.ErrNotFound)
	}
	return sub, nil
}

func (s *Store) CreateSubject(ctx context.Context, sub model.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[sub.ID]; ok {
		return fmt.Errorf("subject %s already exists", sub.ID)
	}
	sub.ExamDate = model.Day(sub.ExamDate)
	s.subjects[sub.ID] = sub
	s.order = append(s.order, sub.ID)
	return nil
}

func (s *Store) DeleteSubject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[id]; !ok {
		return fmt.Errorf("subject %s: %w", id, store.ErrNotFound)
	}
	delete(s.subjects, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	for sid, sess := range s.sessions {
		if sess.SubjectID == id {
			delete(s.sessions, sid)
		}
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context, from, to time.Time) ([]model.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, to = model.Day(from), model.Day(to)
	var out []model.StudySession
	for _, sess := range s.sessions {
		if sess.Date.Before(from) || sess.Date.After(to) {
			continue
		}
		out = append(out, sess)
	}
	store.SortSessions(out)
	return out, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (model.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return model.StudySession{}, fmt.Errorf("session %s: %w", id, store.ErrNotFound)
	}
	return sess, nil
}

func (s *Store) ReplacePlanned(ctx context.Context, from time.Time, sessions []model.StudySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range sessions {
		if _, ok := s.subjects[sess.SubjectID]; !ok {
			return fmt.Errorf("session %s references subject %s: %w", sess.ID, sess.SubjectID, store.ErrNotFound)
		}
	}
	from = model.Day(from)
	for id, sess := range s.sessions {
		if sess.Status == model.StatusPlanned && !sess.Date.Before(from) {
			delete(s.sessions, id)
		}
	}
	for _, sess := range sessions {
		sess.Date = model.Day(sess.Date)
		s.sessions[sess.ID] = sess
	}
	return nil
}

func (s *Store) MarkMissed(ctx context.Context, day time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day = model.Day(day)
	n := 0
	for id, sess := range s.sessions {
		if sess.Status == model.StatusPlanned && sess.Date.Equal(day) {
			sess.Status = model.StatusMissed
			s.sessions[id] = sess
			n++
		}
	}
	return n, nil
}

func (s *Store) CompleteSession(ctx context.Context, id string) (model.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return model.StudySession{}, fmt.Errorf("session %s: %w", id, store.ErrNotFound)
	}
	if sess.Status == model.StatusDone {
		return sess, nil
	}
	sub, ok := s.subjects[sess.SubjectID]
	if !ok {
		return model.StudySession{}, fmt.Errorf("subject %s: %w", sess.SubjectID, store.ErrNotFound)
	}
	sess.Status = model.StatusDone
	sub.MinutesDone += sess.Minutes
	s.sessions[id] = sess
	s.subjects[sub.ID] = sub
	return sess, nil
}

func (s *Store) GetAvailability(ctx context.Context) (model.Availability, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.availability == nil {
		return model.Availability{}, false, nil
	}
	return *s.availability, true, nil
}

func (s *Store) SetAvailability(ctx context.Context, a model.Availability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.availability = &a
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
