package export

import (
	"io"
	"sort"

	"github.com/xuri/excelize/v2"
)

const (
	planSheet    = "Plan"
	summarySheet = "Summary"
)

// WriteXLSX writes the plan to w as a workbook with a Plan sheet listing
// every block and a Summary sheet with minutes per subject.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), planSheet); err != nil {
		return err
	}
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(planSheet, "A1", &head); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		rec := r.record()
		line := []any{rec[0], rec[1], rec[2], rec[3], rec[4], r.Minutes, rec[6], rec[7]}
		if err := f.SetSheetRow(planSheet, cell, &line); err != nil {
			return err
		}
	}
	if err := writeSummary(f, rows); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

func writeSummary(f *excelize.File, rows []Row) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	totals := map[string]int{}
	names := map[string]string{}
	for _, r := range rows {
		totals[r.SubjectID] += r.Minutes
		if r.Subject != "" {
			names[r.SubjectID] = r.Subject
		}
	}
	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	head := []any{"subject_id", "subject", "minutes"}
	if err := f.SetSheetRow(summarySheet, "A1", &head); err != nil {
		return err
	}
	for i, id := range ids {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		line := []any{id, names[id], totals[id]}
		if err := f.SetSheetRow(summarySheet, cell, &line); err != nil {
			return err
		}
	}
	return nil
}
