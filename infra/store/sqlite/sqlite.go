// Package sqlite implements store.Store on SQLite using modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/store"
	"github.com/kilianp07/studyplan/infra/store/migrations"
)

// Store persists planner data in a SQLite database.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New opens or creates the database at path and migrates the schema.
func New(ctx context.Context, path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(ctx, db, goose.DialectSQLite3); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (migrate err: %w)", cerr, err)
		}
		return nil, err
	}
	return &Store{db: db}, nil
}

// Open opens the database with foreign keys enforced. SQLite allows a
// single writer so the pool is limited to one connection.
func Open(path string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", path+sep+"_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

const subjectColumns = `id, name, exam_date, difficulty, hours_required, minutes_done`

const sessionColumns = `id, subject_id, session_date, start_unix, minutes, status`

type scanner interface {
	Scan(dest ...any) error
}

func scanSubject(row scanner) (model.Subject, error) {
	var s model.Subject
	var exam string
	if err := row.Scan(&s.ID, &s.Name, &exam, &s.Difficulty, &s.HoursRequired, &s.MinutesDone); err != nil {
		return model.Subject{}, err
	}
	d, err := model.ParseDate(exam)
	if err != nil {
		return model.Subject{}, fmt.Errorf("subject %s exam_date: %w", s.ID, err)
	}
	s.ExamDate = d
	return s, nil
}

func scanSession(row scanner) (model.StudySession, error) {
	var s model.StudySession
	var date, status string
	var start int64
	if err := row.Scan(&s.ID, &s.SubjectID, &date, &start, &s.Minutes, &status); err != nil {
		return model.StudySession{}, err
	}
	d, err := model.ParseDate(date)
	if err != nil {
		return model.StudySession{}, fmt.Errorf("session %s date: %w", s.ID, err)
	}
	st, err := model.ParseSessionStatus(status)
	if err != nil {
		return model.StudySession{}, err
	}
	s.Date = d
	s.Start = time.Unix(start, 0).UTC()
	s.Status = st
	return s, nil
}

func (s *Store) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	return s.listSubjects(ctx, `exam_date ASC, difficulty DESC, seq ASC, id ASC`)
}

func (s *Store) ListSubjectsByCreation(ctx context.Context) ([]model.Subject, error) {
	return s.listSubjects(ctx, `seq ASC, id ASC`)
}

func (s *Store) listSubjects(ctx context.Context, order string) ([]model.Subject, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+subjectColumns+` FROM subjects ORDER BY `+order)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Subject
	for rows.Next() {
		sub, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, sub)
	}
	return res, rows.Err()
}

func (s *Store) GetSubject(ctx context.Context, id string) (model.Subject, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = ?`, id)
	sub, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Subject{}, fmt.Errorf("subject %s: %w", id, store.ErrNotFound)
	}
	return sub, err
}

func (s *Store) CreateSubject(ctx context.Context, sub model.Subject) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO subjects (`+subjectColumns+`, seq)
        VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM subjects))`,
		sub.ID, sub.Name, sub.ExamDate.Format(model.DateLayout), sub.Difficulty, sub.HoursRequired, sub.MinutesDone)
	return err
}

func (s *Store) DeleteSubject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("subject %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context, from, to time.Time) ([]model.StudySession, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM study_sessions
        WHERE session_date >= ? AND session_date <= ?
        ORDER BY session_date ASC, start_unix ASC, id ASC`,
		from.Format(model.DateLayout), to.Format(model.DateLayout))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.StudySession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, sess)
	}
	return res, rows.Err()
}

func (s *Store) GetSession(ctx context.Context, id string) (model.StudySession, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM study_sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StudySession{}, fmt.Errorf("session %s: %w", id, store.ErrNotFound)
	}
	return sess, err
}

func (s *Store) ReplacePlanned(ctx context.Context, from time.Time, sessions []model.StudySession) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM study_sessions WHERE status = ? AND session_date >= ?`,
			model.StatusPlanned.String(), from.Format(model.DateLayout)); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO study_sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()
		for _, sess := range sessions {
			if _, err := stmt.ExecContext(ctx, sess.ID, sess.SubjectID, sess.Date.Format(model.DateLayout),
				sess.Start.Unix(), sess.Minutes, sess.Status.String()); err != nil {
				return fmt.Errorf("insert session %s: %w", sess.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) MarkMissed(ctx context.Context, day time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE study_sessions SET status = ? WHERE status = ? AND session_date = ?`,
		model.StatusMissed.String(), model.StatusPlanned.String(), day.Format(model.DateLayout))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *Store) CompleteSession(ctx context.Context, id string) (model.StudySession, error) {
	var out model.StudySession
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM study_sessions WHERE id = ?`, id)
		sess, err := scanSession(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("session %s: %w", id, store.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if sess.Status == model.StatusDone {
			out = sess
			return nil
		}
		if _, err := tx.ExecContext(ctx, `UPDATE study_sessions SET status = ? WHERE id = ?`,
			model.StatusDone.String(), id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE subjects SET minutes_done = minutes_done + ? WHERE id = ?`,
			sess.Minutes, sess.SubjectID); err != nil {
			return err
		}
		sess.Status = model.StatusDone
		out = sess
		return nil
	})
	return out, err
}

func (s *Store) GetAvailability(ctx context.Context) (model.Availability, bool, error) {
	var a model.Availability
	err := s.db.QueryRowContext(ctx, `SELECT minutes_per_day FROM availability WHERE id = 1`).Scan(&a.MinutesPerDay)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Availability{}, false, nil
	}
	if err != nil {
		return model.Availability{}, false, err
	}
	return a, true, nil
}

func (s *Store) SetAvailability(ctx context.Context, a model.Availability) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO availability (id, minutes_per_day) VALUES (1, ?)
        ON CONFLICT(id) DO UPDATE SET minutes_per_day = excluded.minutes_per_day`, a.MinutesPerDay)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("rollback: %v (tx err: %w)", rerr, err)
		}
		return err
	}
	return tx.Commit()
}
