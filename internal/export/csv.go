package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/studyplan/internal/study"
)

var csvHeader = []string{"ID", "Date", "Subject", "Content", "Planned (min)", "Actual (min)", "Actual", "Done"}

func ToCSV(entries []study.Entry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range entries {
		row := []string{
			e.ID,
			e.DateStr,
			e.Subject,
			e.Content,
			strconv.Itoa(e.PlannedMinutes),
			strconv.Itoa(e.ActualMinutes),
			study.ClockMinutes(e.ActualMinutes),
			strconv.FormatBool(e.IsDone),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
