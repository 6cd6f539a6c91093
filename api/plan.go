package api

import (
	"net/http"

	"github.com/kilianp07/studyplan/core/model"
)

type availabilityRequest struct {
	MinutesPerDay *int `json:"minutesPerDay"`
}

type generateRequest struct {
	StartDate    string `json:"startDate"`
	ChunkMinutes *int   `json:"chunkMinutes"`
}

func (h *handler) getAvailability(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Availability(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handler) setAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if req.MinutesPerDay == nil {
		writeError(w, http.StatusBadRequest, "minutesPerDay is required")
		return
	}
	a, err := h.svc.SetMinutesPerDay(r.Context(), *req.MinutesPerDay)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	start, err := parseDay("startDate", req.StartDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	chunkMinutes, err := chunk(req.ChunkMinutes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sessions, err := h.svc.GeneratePlan(r.Context(), start, chunkMinutes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sessions == nil {
		sessions = []model.StudySession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *handler) report(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rep, err := h.svc.Report(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
