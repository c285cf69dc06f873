package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/studyplan/internal/study"
	"github.com/sadopc/studyplan/internal/summary"
)

const (
	entriesSheet  = "Entries"
	subjectsSheet = "Subjects"
)

// ToXLSX writes a workbook with one row per entry and a per-subject sheet
// of planned and actual minutes.
func ToXLSX(entries []study.Entry, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", entriesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(entriesSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range entries {
		row := []any{
			e.ID,
			e.DateStr,
			e.Subject,
			e.Content,
			e.PlannedMinutes,
			e.ActualMinutes,
			study.ClockMinutes(e.ActualMinutes),
			e.IsDone,
		}
		if err := f.SetSheetRow(entriesSheet, cellName(1, i+2), &row); err != nil {
			return fmt.Errorf("write entry row: %w", err)
		}
	}

	if _, err := f.NewSheet(subjectsSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if err := f.SetSheetRow(subjectsSheet, "A1", &[]any{"Subject", "Planned (min)", "Actual (min)", "Achievement (%)"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range summary.Active(summary.BySubject(entries)) {
		var rate any = ""
		if v, ok := r.AchievementRate(); ok {
			rate = int(v)
		}
		row := []any{r.Subject, r.Planned, r.Actual, rate}
		if err := f.SetSheetRow(subjectsSheet, cellName(1, i+2), &row); err != nil {
			return fmt.Errorf("write subject row: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write xlsx file: %w", err)
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
