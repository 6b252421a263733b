package timeseries

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestLoadCSVFromReader(t *testing.T) {
	csvData := `date,cpi
2020-01-01,258.682
2020-02-01,259.007
2020-03-01,258.165`

	series, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	if series.Len() != 3 {
		t.Errorf("Expected 3 observations, got %d", series.Len())
	}
	if series.Name != "cpi" {
		t.Errorf("Expected series name 'cpi', got %q", series.Name)
	}

	expected := []float64{258.682, 259.007, 258.165}
	for i, v := range expected {
		if series.Values[i] != v {
			t.Errorf("Value at index %d: expected %f, got %f", i, v, series.Values[i])
		}
	}
	if !series.Timestamps[1].Equal(month(2020, 2)) {
		t.Errorf("Unexpected timestamp %s", series.Timestamps[1])
	}
}

func TestLoadCSVFredGraphHeader(t *testing.T) {
	// fredgraph.csv names the columns observation_date,<SERIES_ID>
	csvData := `observation_date,PCE
2020-01-01,14769.9
2020-02-01,.
2020-03-01,14218.7`

	opts := DefaultCSVOptions()
	opts.Name = "pce"

	series, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	if series.Len() != 2 {
		t.Errorf("Expected 2 observations (missing marker skipped), got %d", series.Len())
	}
	if series.Name != "pce" {
		t.Errorf("Expected name 'pce', got %q", series.Name)
	}
}

func TestLoadCSVWithNAValues(t *testing.T) {
	csvData := `date,value
2020-01-01,100
2020-02-01,NA
2020-03-01,102
2020-04-01,NaN
2020-05-01,104`

	series, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	expected := []float64{100, 102, 104}
	if series.Len() != len(expected) {
		t.Fatalf("Expected %d observations (NA values skipped), got %d", len(expected), series.Len())
	}
	for i, v := range expected {
		if series.Values[i] != v {
			t.Errorf("Value at index %d: expected %f, got %f", i, v, series.Values[i])
		}
	}
}

func TestLoadCSVMultipleColumns(t *testing.T) {
	csvData := `date,cpi,pce
2020-01-01,258.6,14769.9
2020-02-01,259.0,14802.3`

	opts := DefaultCSVOptions()
	opts.ValueColumn = "PCE"

	series, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	expected := []float64{14769.9, 14802.3}
	for i, v := range expected {
		if series.Values[i] != v {
			t.Errorf("Value at index %d: expected %f, got %f", i, v, series.Values[i])
		}
	}
}

func TestLoadCSVErrors(t *testing.T) {
	testCases := []struct {
		name    string
		csvData string
		opts    *CSVOptions
	}{
		{"no date column", "when,cpi\n2020-01-01,1", nil},
		{"missing value column", "date,cpi\n2020-01-01,1", &CSVOptions{ValueColumn: "pce"}},
		{"bad number", "date,cpi\n2020-01-01,abc", nil},
		{"bad date", "date,cpi\nJanuary,1", nil},
		{"only missing", "date,cpi\n2020-01-01,.", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadCSVFromReader(strings.NewReader(tc.csvData), tc.opts); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestLoadCSVDateFormats(t *testing.T) {
	testCases := []struct {
		name    string
		csvData string
	}{
		{"ISO format", "date,y\n2020-01-01,100\n2020-02-01,101"},
		{"timestamp", "date,y\n2020-01-01 00:00:00,100\n2020-02-01 00:00:00,101"},
		{"year-month", "date,y\n2020-01,100\n2020-02,101"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			series, err := LoadCSVFromReader(strings.NewReader(tc.csvData), nil)
			if err != nil {
				t.Fatalf("Failed to load CSV: %v", err)
			}
			if !series.Timestamps[1].Equal(month(2020, 2)) {
				t.Errorf("Unexpected timestamp %s", series.Timestamps[1])
			}
		})
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	s := Monthly("cpi", month(2020, 1), []float64{258.682, math.NaN(), 258.165})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, s); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	expected := "date,cpi\n2020-01-01,258.682\n2020-02-01,\n2020-03-01,258.165\n"
	if buf.String() != expected {
		t.Errorf("Unexpected CSV:\n%s", buf.String())
	}

	loaded, err := LoadCSVFromReader(&buf, nil)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("Expected the empty cell to be skipped, got %d rows", loaded.Len())
	}
}

func TestDefaultCSVOptions(t *testing.T) {
	opts := DefaultCSVOptions()

	if opts.DateColumn != "date" {
		t.Errorf("Expected default date column 'date', got '%s'", opts.DateColumn)
	}
	if opts.DateFormat != "2006-01-02" {
		t.Errorf("Expected default date format '2006-01-02', got '%s'", opts.DateFormat)
	}
	if opts.Delimiter != ',' {
		t.Errorf("Expected default delimiter ',', got '%c'", opts.Delimiter)
	}
}
