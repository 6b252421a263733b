package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string // Column name for dates (default: "date")
	ValueColumn string // Column name for values (default: last column)
	Name        string // Series name (default: ValueColumn)
	DateFormat  string // Preferred date layout (default: "2006-01-02")
	Delimiter   rune   // Field delimiter (default: ',')
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateColumn: "date",
		DateFormat: DateLayout,
		Delimiter:  ',',
	}
}

// missingMarkers are cells treated as absent observations. FRED uses ".".
var missingMarkers = map[string]bool{
	"":     true,
	".":    true,
	"NA":   true,
	"NaN":  true,
	"null": true,
}

// LoadCSV loads a dated series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a dated series from an io.Reader with a header row.
// Rows whose value is a missing marker are skipped; unparseable values or dates are errors.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	dateColumn := opts.DateColumn
	if dateColumn == "" {
		dateColumn = "date"
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	valueIdx, dateIdx := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(h, "\""))
		switch {
		case opts.ValueColumn != "" && strings.EqualFold(h, opts.ValueColumn):
			valueIdx = i
		case strings.EqualFold(h, dateColumn) || strings.EqualFold(h, "observation_date"):
			if dateIdx == -1 {
				dateIdx = i
			}
		}
	}
	if dateIdx == -1 {
		return nil, fmt.Errorf("date column %q not found", dateColumn)
	}
	if valueIdx == -1 {
		if opts.ValueColumn != "" {
			return nil, fmt.Errorf("value column %q not found", opts.ValueColumn)
		}
		// Default to last column if not specified
		valueIdx = len(header) - 1
	}

	name := opts.Name
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(header[valueIdx]))
	}

	series := &Series{Name: name}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, err
		}
		if valueIdx >= len(record) || dateIdx >= len(record) {
			return nil, fmt.Errorf("line %d: expected at least %d fields", line, max(valueIdx, dateIdx)+1)
		}

		valStr := strings.TrimSpace(strings.Trim(record[valueIdx], "\""))
		if missingMarkers[valStr] {
			continue
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse value %q: %w", line, valStr, err)
		}

		ts, err := ParseDate(strings.TrimSpace(strings.Trim(record[dateIdx], "\"")), opts.DateFormat)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		series.Timestamps = append(series.Timestamps, ts)
		series.Values = append(series.Values, val)
	}

	if series.Len() == 0 {
		return nil, errors.New("no valid data found in CSV")
	}
	return series, nil
}

// ParseDate parses a calendar date, trying layout first and then common alternatives.
func ParseDate(s, layout string) (time.Time, error) {
	formats := []string{
		layout,
		DateLayout,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006/01/02",
		"01/02/2006",
		"2006-01",
	}
	for _, f := range formats {
		if f == "" {
			continue
		}
		if ts, err := time.Parse(f, s); err == nil {
			return Date(ts), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// WriteCSV writes the series as a two-column "date,<name>" table.
func WriteCSV(w io.Writer, series *Series) error {
	writer := csv.NewWriter(w)

	name := series.Name
	if name == "" {
		name = "value"
	}
	if err := writer.Write([]string{"date", name}); err != nil {
		return err
	}
	for i, v := range series.Values {
		date := ""
		if i < len(series.Timestamps) {
			date = series.Timestamps[i].Format(DateLayout)
		}
		if err := writer.Write([]string{date, FormatFloat(v)}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// FormatFloat renders v with the shortest exact representation; NaN becomes an empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
