package api

import (
	"fmt"
	"net/http"

	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/pkg/export"
)

type missedRequest struct {
	Date string `json:"date"`
}

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sessions, err := h.svc.Sessions(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sessions == nil {
		sessions = []model.StudySession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *handler) exportSessions(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(export.FormatCSV)
	}
	format, err := export.ParseFormat(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sessions, err := h.svc.Sessions(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	subjects, err := h.svc.ListSubjects(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	names := make(map[string]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sessions-%s-%s.%s"`,
		from.Format(model.DateLayout), to.Format(model.DateLayout), format))
	if err := export.Write(w, format, export.FromSessions(sessions, names)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *handler) markMissed(w http.ResponseWriter, r *http.Request) {
	chunkMinutes, err := chunkQuery(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req missedRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	day, err := parseDay("date", req.Date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := h.svc.MarkDayMissed(r.Context(), day, chunkMinutes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) markDone(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.MarkSessionDone(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
