// Package postgres implements store.Store on PostgreSQL using a pgx pool.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/store"
	"github.com/kilianp07/studyplan/infra/store/migrations"
)

// Store persists planner data in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New migrates the schema at dsn and opens a connection pool.
func New(ctx context.Context, dsn string) (*Store, error) {
	if err := Migrate(ctx, dsn); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Migrate applies the embedded migrations through the pgx database/sql driver.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("postgres open: %w", err)
	}
	defer func() { _ = db.Close() }()
	return migrations.Up(ctx, db, goose.DialectPostgres)
}

const subjectColumns = `id, name, exam_date, difficulty, hours_required, minutes_done`

const sessionColumns = `id, subject_id, session_date, start_unix, minutes, status`

func scanSubject(row pgx.Row) (model.Subject, error) {
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

func scanSession(row pgx.Row) (model.StudySession, error) {
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
	rows, err := s.pool.Query(ctx, `SELECT `+subjectColumns+` FROM subjects ORDER BY `+order)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
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
	sub, err := scanSubject(s.pool.QueryRow(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Subject{}, fmt.Errorf("subject %s: %w", id, store.ErrNotFound)
	}
	return sub, err
}

func (s *Store) CreateSubject(ctx context.Context, sub model.Subject) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO subjects (`+subjectColumns+`, seq)
		VALUES ($1, $2, $3, $4, $5, $6, (SELECT COALESCE(MAX(seq), 0) + 1 FROM subjects))`,
		sub.ID, sub.Name, sub.ExamDate.Format(model.DateLayout), sub.Difficulty, sub.HoursRequired, sub.MinutesDone)
	return err
}

func (s *Store) DeleteSubject(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subject %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context, from, to time.Time) ([]model.StudySession, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+sessionColumns+` FROM study_sessions
		WHERE session_date >= $1 AND session_date <= $2
		ORDER BY session_date ASC, start_unix ASC, id ASC`,
		from.Format(model.DateLayout), to.Format(model.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
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
	sess, err := scanSession(s.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM study_sessions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.StudySession{}, fmt.Errorf("session %s: %w", id, store.ErrNotFound)
	}
	return sess, err
}

func (s *Store) ReplacePlanned(ctx context.Context, from time.Time, sessions []model.StudySession) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM study_sessions WHERE status = $1 AND session_date >= $2`,
			model.StatusPlanned.String(), from.Format(model.DateLayout)); err != nil {
			return err
		}
		if len(sessions) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for _, sess := range sessions {
			batch.Queue(`INSERT INTO study_sessions (`+sessionColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
				sess.ID, sess.SubjectID, sess.Date.Format(model.DateLayout), sess.Start.Unix(), sess.Minutes, sess.Status.String())
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (s *Store) MarkMissed(ctx context.Context, day time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE study_sessions SET status = $1 WHERE status = $2 AND session_date = $3`,
		model.StatusMissed.String(), model.StatusPlanned.String(), day.Format(model.DateLayout))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) CompleteSession(ctx context.Context, id string) (model.StudySession, error) {
	var out model.StudySession
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		sess, err := scanSession(tx.QueryRow(ctx, `SELECT `+sessionColumns+` FROM study_sessions WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("session %s: %w", id, store.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if sess.Status == model.StatusDone {
			out = sess
			return nil
		}
		if _, err := tx.Exec(ctx, `UPDATE study_sessions SET status = $1 WHERE id = $2`,
			model.StatusDone.String(), id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE subjects SET minutes_done = minutes_done + $1 WHERE id = $2`,
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
	err := s.pool.QueryRow(ctx, `SELECT minutes_per_day FROM availability WHERE id = 1`).Scan(&a.MinutesPerDay)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Availability{}, false, nil
	}
	if err != nil {
		return model.Availability{}, false, err
	}
	return a, true, nil
}

func (s *Store) SetAvailability(ctx context.Context, a model.Availability) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO availability (id, minutes_per_day) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET minutes_per_day = EXCLUDED.minutes_per_day`, a.MinutesPerDay)
	return err
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
