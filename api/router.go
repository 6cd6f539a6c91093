// Package api exposes the planning service over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/studyplan/api/logs"
	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/planning"
	"github.com/kilianp07/studyplan/core/report"
)

// Service is the planning surface served by the API.
type Service interface {
	logs.Querier
	Availability(ctx context.Context) (model.Availability, error)
	SetMinutesPerDay(ctx context.Context, minutes int) (model.Availability, error)
	ListSubjects(ctx context.Context) ([]model.Subject, error)
	CreateSubject(ctx context.Context, sub model.Subject) (model.Subject, error)
	DeleteSubject(ctx context.Context, id string) error
	GeneratePlan(ctx context.Context, startDate time.Time, chunkMinutes int) ([]model.StudySession, error)
	MarkDayMissed(ctx context.Context, date time.Time, chunkMinutes int) (planning.MissedResult, error)
	MarkSessionDone(ctx context.Context, id string) (model.StudySession, error)
	Sessions(ctx context.Context, from, to time.Time) ([]model.StudySession, error)
	Report(ctx context.Context, from, to time.Time) (report.Report, error)
}

var _ Service = (*planning.Service)(nil)

// Options tunes the router.
type Options struct {
	// Token enables bearer authentication on /api routes when set.
	Token string
	// Metrics serves the default Prometheus registry on /metrics.
	Metrics bool
}

// NewRouter builds the HTTP routes.
func NewRouter(svc Service, opts Options) http.Handler {
	h := &handler{svc: svc}
	api := http.NewServeMux()
	api.HandleFunc("GET /api/subjects", h.listSubjects)
	api.HandleFunc("POST /api/subjects", h.createSubject)
	api.HandleFunc("DELETE /api/subjects/{id}", h.deleteSubject)
	api.HandleFunc("GET /api/plan/availability", h.getAvailability)
	api.HandleFunc("POST /api/plan/availability", h.setAvailability)
	api.HandleFunc("POST /api/plan/generate", h.generate)
	api.HandleFunc("GET /api/plan/report", h.report)
	api.Handle("GET /api/plan/logs", logs.NewLogHandler(svc))
	api.HandleFunc("GET /api/sessions", h.listSessions)
	api.HandleFunc("GET /api/sessions/export", h.exportSessions)
	api.HandleFunc("POST /api/sessions/missed", h.markMissed)
	api.HandleFunc("POST /api/sessions/{id}/done", h.markDone)

	mux := http.NewServeMux()
	mux.Handle("/api/", requireToken(opts.Token, api))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	return mux
}

// requireToken rejects requests without "Authorization: Bearer <token>"
// when token is non-empty.
func requireToken(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type handler struct {
	svc Service
}
