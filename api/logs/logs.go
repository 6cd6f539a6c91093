package logs

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/studyplan/core/events"
	"github.com/kilianp07/studyplan/core/planlog"
)

// Querier reads plan run records.
type Querier interface {
	PlanLogs(ctx context.Context, q planlog.LogQuery) ([]planlog.LogRecord, error)
}

// NewLogHandler returns an HTTP handler exposing plan logs via GET /api/plan/logs.
// start and end are RFC3339 instants; subject_id and trigger filter records.
func NewLogHandler(src Querier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := planlog.LogQuery{}
		for key, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
			s := r.URL.Query().Get(key)
			if s == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				http.Error(w, "invalid "+key+": expected RFC3339", http.StatusBadRequest)
				return
			}
			*dst = t
		}
		q.SubjectID = r.URL.Query().Get("subject_id")
		if tr := r.URL.Query().Get("trigger"); tr != "" {
			v, ok := triggerFromString(tr)
			if !ok {
				http.Error(w, "unknown trigger "+tr, http.StatusBadRequest)
				return
			}
			q.Trigger = v
		}
		records, err := src.PlanLogs(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []planlog.LogRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func triggerFromString(s string) (events.Trigger, bool) {
	switch events.Trigger(s) {
	case events.TriggerGenerate:
		return events.TriggerGenerate, true
	case events.TriggerReschedule:
		return events.TriggerReschedule, true
	default:
		return "", false
	}
}
