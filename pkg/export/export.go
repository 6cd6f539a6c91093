// Package export writes study plans as JSON, CSV or XLSX.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/studyplan/core/model"
	"github.com/kilianp07/studyplan/core/planner"
)

// Row is one exported study block.
type Row struct {
	SubjectID string    `json:"subjectId"`
	Subject   string    `json:"subject,omitempty"`
	Date      string    `json:"date"`
	Start     time.Time `json:"startTime"`
	End       time.Time `json:"endTime"`
	Minutes   int       `json:"minutes"`
	Status    string    `json:"status"`
	SessionID string    `json:"sessionId,omitempty"`
}

// FromSessions converts stored sessions. names maps subject ids to display
// names and may be nil.
func FromSessions(sessions []model.StudySession, names map[string]string) []Row {
	rows := make([]Row, len(sessions))
	for i, s := range sessions {
		rows[i] = Row{
			SubjectID: s.SubjectID,
			Subject:   names[s.SubjectID],
			Date:      s.Date.Format(model.DateLayout),
			Start:     s.Start,
			End:       s.End(),
			Minutes:   s.Minutes,
			Status:    s.Status.String(),
			SessionID: s.ID,
		}
	}
	return rows
}

// FromAllocations converts planner output, which is always planned.
func FromAllocations(plan []planner.Allocation, names map[string]string) []Row {
	rows := make([]Row, len(plan))
	for i, a := range plan {
		rows[i] = Row{
			SubjectID: a.SubjectID,
			Subject:   names[a.SubjectID],
			Date:      a.Date.Format(model.DateLayout),
			Start:     a.Start,
			End:       a.Start.Add(time.Duration(a.Minutes) * time.Minute),
			Minutes:   a.Minutes,
			Status:    model.StatusPlanned.String(),
		}
	}
	return rows
}

// Format selects an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts json, csv or xlsx, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Write encodes rows to w in format f.
func Write(w io.Writer, f Format, rows []Row) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteJSON writes the plan to w as a JSON array.
func WriteJSON(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

var header = []string{"subject_id", "subject", "date", "start", "end", "minutes", "status", "session_id"}

func (r Row) record() []string {
	return []string{
		r.SubjectID,
		r.Subject,
		r.Date,
		r.Start.Format(time.RFC3339),
		r.End.Format(time.RFC3339),
		strconv.Itoa(r.Minutes),
		r.Status,
		r.SessionID,
	}
}

// WriteCSV writes the plan to w as CSV with a header row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
