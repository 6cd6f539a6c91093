package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/planner"
	"github.com/kilianp07/studyplan/core/planning"
)

// MinChunkMinutes is the smallest session length accepted from clients.
const MinChunkMinutes = 15

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, planning.ErrInvalidInput), errors.Is(err, model.ErrInvalidSubject):
		return http.StatusBadRequest
	case errors.Is(err, planning.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, planning.ErrNoSubjects), errors.Is(err, planning.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, planning.ErrHorizonTooLong):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: body: %v", planning.ErrInvalidInput, err)
	}
	return nil
}

func parseDay(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", planning.ErrInvalidInput, name)
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", planning.ErrInvalidInput, name)
	}
	return d, nil
}

// dateRange reads the required from and to query parameters.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := parseDay("from", r.URL.Query().Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDay("to", r.URL.Query().Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// chunk applies the default and lower bound to a requested session length.
func chunk(v *int) (int, error) {
	if v == nil {
		return planner.DefaultChunkMinutes, nil
	}
	if *v < MinChunkMinutes {
		return 0, fmt.Errorf("%w: chunkMinutes must be at least %d", planning.ErrInvalidInput, MinChunkMinutes)
	}
	return *v, nil
}

// chunkQuery reads the reschedule chunk. Unlike the generate body it has no
// lower bound: values <= 0 fall back to the planner default.
func chunkQuery(r *http.Request) (int, error) {
	s := r.URL.Query().Get("chunkMinutes")
	if s == "" {
		return planner.DefaultChunkMinutes, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: chunkMinutes must be an integer", planning.ErrInvalidInput)
	}
	return max(n, 0), nil
}
