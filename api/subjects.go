package api

import (
	"net/http"
	"strings"

	"github.com/kilianp07/studyplan/core/model"
)

type subjectRequest struct {
	Name          string `json:"name"`
	ExamDate      string `json:"examDate"`
	Difficulty    int    `json:"difficulty"`
	HoursRequired int    `json:"hoursRequired"`
	MinutesDone   int    `json:"minutesDone"`
}

func (h *handler) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.svc.ListSubjects(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if subjects == nil {
		subjects = []model.Subject{}
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (h *handler) createSubject(w http.ResponseWriter, r *http.Request) {
	var req subjectRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	exam, err := parseDay("examDate", strings.TrimSpace(req.ExamDate))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sub, err := h.svc.CreateSubject(r.Context(), model.Subject{
		Name:          req.Name,
		ExamDate:      exam,
		Difficulty:    req.Difficulty,
		HoursRequired: req.HoursRequired,
		MinutesDone:   req.MinutesDone,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *handler) deleteSubject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSubject(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
