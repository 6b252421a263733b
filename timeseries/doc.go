// Package timeseries provides the dated series type used by every stage of the study.
//
// A Series pairs calendar dates with float64 observations. Missing observations
// are represented as NaN, never as zero.
//
// # Creating a Series
//
//	cpi := timeseries.Monthly("cpi", start, values)
//	pce, err := timeseries.NewWithTimestamps("pce", dates, values)
//
// # Loading from CSV
//
// Raw series are stored as two-column "date,<name>" files. FRED's fredgraph
// export ("observation_date,<SERIES_ID>") loads the same way:
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.Name = "pce"
//	series, err := timeseries.LoadCSV("data/raw/pce.csv", opts)
//
// Cells holding ".", "NA", "NaN", "null" or nothing are skipped.
//
// # Row-offset transformations
//
//	lag1 := series.Shift(1)      // value from the previous row, NaN first
//	yoy := series.PctChange(12)  // percent change versus 12 rows earlier
//
// Both work on row positions, not calendar arithmetic, so a series with a
// missing month yields misaligned results. Gap detection belongs to the
// quality package.
package timeseries
