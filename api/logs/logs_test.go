package logs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kilianp07/studyplan/core/events"
	"github.com/kilianp07/studyplan/core/planlog"
)

type memStore struct {
	recs []planlog.LogRecord
	last planlog.LogQuery
}

func (m *memStore) PlanLogs(_ context.Context, q planlog.LogQuery) ([]planlog.LogRecord, error) {
	m.last = q
	var res []planlog.LogRecord
	for _, r := range m.recs {
		if q.Matches(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func TestLogHandler_Filters(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &memStore{recs: []planlog.LogRecord{
		{Timestamp: now, Trigger: events.TriggerGenerate, MinutesBySubject: map[string]int{"math": 60}},
		{Timestamp: now.Add(time.Hour), Trigger: events.TriggerReschedule, MinutesBySubject: map[string]int{"bio": 30}},
	}}
	h := NewLogHandler(store)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/plan/logs?trigger=reschedule&start=2025-03-01T00:00:00Z", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []planlog.LogRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Trigger != events.TriggerReschedule {
		t.Fatalf("unexpected output %#v", out)
	}
	if !store.last.Start.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start not parsed: %v", store.last.Start)
	}
}

func TestLogHandler_Empty(t *testing.T) {
	rr := httptest.NewRecorder()
	NewLogHandler(&memStore{}).ServeHTTP(rr, httptest.NewRequest("GET", "/api/plan/logs", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "[]\n" {
		t.Fatalf("unexpected response %d %q", rr.Code, rr.Body.String())
	}
}

func TestLogHandler_BadParams(t *testing.T) {
	for _, q := range []string{"?start=yesterday", "?end=2025-01-01", "?trigger=cron"} {
		rr := httptest.NewRecorder()
		NewLogHandler(&memStore{}).ServeHTTP(rr, httptest.NewRequest("GET", "/api/plan/logs"+q, nil))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", q, rr.Code)
		}
	}
}
