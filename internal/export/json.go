package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studyplan/internal/study"
	"github.com/sadopc/studyplan/internal/summary"
)

type jsonExport struct {
	ExportedAt     string      `json:"exported_at"`
	Count          int         `json:"count"`
	PlannedMinutes int         `json:"planned_minutes"`
	ActualMinutes  int         `json:"actual_minutes"`
	Entries        []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	Subject        string `json:"subject"`
	Content        string `json:"content,omitempty"`
	PlannedMinutes int    `json:"planned_minutes"`
	ActualMinutes  int    `json:"actual_minutes"`
	Actual         string `json:"actual"`
	Done           bool   `json:"done"`
}

func ToJSON(entries []study.Entry, path string) error {
	totals := summary.Global(entries)
	export := jsonExport{
		ExportedAt:     time.Now().UTC().Format(time.RFC3339),
		Count:          len(entries),
		PlannedMinutes: totals.TotalPlanned,
		ActualMinutes:  totals.TotalActual,
	}

	for _, e := range entries {
		export.Entries = append(export.Entries, jsonEntry{
			ID:             e.ID,
			Date:           e.DateStr,
			Subject:        e.Subject,
			Content:        e.Content,
			PlannedMinutes: e.PlannedMinutes,
			ActualMinutes:  e.ActualMinutes,
			Actual:         study.ClockMinutes(e.ActualMinutes),
			Done:           e.IsDone,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
