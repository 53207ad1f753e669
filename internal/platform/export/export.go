// Package export renders tabular report data for file download. Two formats
// are supported: standard CSV and a tab-separated format that spreadsheet
// applications open directly.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// Supported export formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
)

// ErrUnknownFormat is returned for format values other than csv or excel.
var ErrUnknownFormat = fmt.Errorf("unknown export format")

// ValidFormat reports whether the given format name is supported.
func ValidFormat(format string) bool {
	return format == FormatCSV || format == FormatExcel
}

// WriteCSV writes the header and rows as RFC 4180 CSV. Cell values are
// guarded against spreadsheet formula injection before writing.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range rows {
		guarded := make([]string, len(row))
		for i, cell := range row {
			guarded[i] = escapeFormula(cell)
		}
		if err := cw.Write(guarded); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteExcel writes the header and rows as tab-separated lines. Cell values
// are sanitized so embedded tabs, newlines, and quotes cannot break the
// table structure.
func WriteExcel(w io.Writer, header []string, rows [][]string) error {
	if err := writeTabLine(w, header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeTabLine(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeTabLine(w io.Writer, cells []string) error {
	cleaned := make([]string, len(cells))
	for i, cell := range cells {
		cleaned[i] = cleanCell(cell)
	}
	_, err := io.WriteString(w, strings.Join(cleaned, "\t")+"\r\n")
	return err
}

// cleanCell escapes characters that would corrupt a tab-separated table.
// Tabs and newlines become their escape sequences; values containing double
// quotes are wrapped in quotes with internal quotes doubled.
func cleanCell(s string) string {
	s = escapeFormula(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", `\t`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	if strings.Contains(s, `"`) {
		s = `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// escapeFormula neutralizes cells that a spreadsheet would execute as a
// formula. Export data contains user-entered text (names, messages,
// addresses), so a leading =, +, - or @ gets a single-quote prefix.
func escapeFormula(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}

// Filename builds a dated attachment filename for the given format.
func Filename(prefix, format string, now time.Time) string {
	ext := "csv"
	if format == FormatExcel {
		ext = "xls"
	}
	return fmt.Sprintf("%s-%s.%s", prefix, now.Format("20060102"), ext)
}

// ContentType returns the MIME type to serve for the given format.
func ContentType(format string) string {
	if format == FormatExcel {
		return "application/vnd.ms-excel"
	}
	return "text/csv"
}
