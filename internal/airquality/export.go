package airquality

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var fileNameReplacer = strings.NewReplacer("/", "-", "\\", "-")

// ExportRecord is the single-row table offered as a CSV download.
type ExportRecord struct {
	Columns  []string
	Values   []string
	FileName string
}

// NewExportRecord projects a report onto a flat row: City, Timestamp and one
// column per present pollutant in canonical order.
func NewExportRecord(r Report) ExportRecord {
	cols := make([]string, 0, len(r.Concentrations)+2)
	vals := make([]string, 0, len(r.Concentrations)+2)

	cols = append(cols, "City", "Timestamp")
	vals = append(vals, r.DisplayCity, r.Timestamp)

	for _, c := range r.Concentrations {
		cols = append(cols, string(c.Code))
		vals = append(vals, strconv.FormatFloat(c.Value, 'f', -1, 64))
	}

	return ExportRecord{
		Columns:  cols,
		Values:   vals,
		FileName: fmt.Sprintf("air_quality_%s_%s.csv", fileNameReplacer.Replace(r.DisplayCity), r.LocalTime.Format(fileTimestampLayout)),
	}
}

// Value returns the cell for column name.
func (e ExportRecord) Value(column string) (string, bool) {
	for i, c := range e.Columns {
		if c == column {
			return e.Values[i], true
		}
	}
	return "", false
}

// WriteCSV writes the header and the single data row.
func (e ExportRecord) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(e.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.Write(e.Values); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
