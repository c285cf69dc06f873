// Package export writes study entries to CSV, JSON or XLSX files.
package export

import (
	"fmt"
	"strings"

	"github.com/sadopc/studyplan/internal/study"
)

// Formats lists the accepted format names.
var Formats = []string{"csv", "json", "xlsx"}

// Write exports entries to path in the named format.
func Write(format string, entries []study.Entry, path string) error {
	switch strings.ToLower(format) {
	case "csv":
		return ToCSV(entries, path)
	case "json":
		return ToJSON(entries, path)
	case "xlsx":
		return ToXLSX(entries, path)
	default:
		return fmt.Errorf("unknown export format %q (want %s)", format, strings.Join(Formats, ", "))
	}
}
