package panel

import (
	"encoding/csv"
	"io"

	"github.com/sartorproj/pcestudy/timeseries"
)

// Records renders the enriched panel as string rows in Columns order,
// header first. Missing values become empty cells.
func (e *Enriched) Records() [][]string {
	records := make([][]string, 0, e.Len()+1)
	records = append(records, append([]string(nil), Columns...))
	for i := 0; i < e.Len(); i++ {
		records = append(records, []string{
			e.Dates[i].Format(timeseries.DateLayout),
			timeseries.FormatFloat(e.CPI[i]),
			timeseries.FormatFloat(e.PCE[i]),
			timeseries.FormatFloat(e.CPIIndex[i]),
			timeseries.FormatFloat(e.RealPCE[i]),
			timeseries.FormatFloat(e.CPIYoY[i]),
			timeseries.FormatFloat(e.PCEYoY[i]),
			timeseries.FormatFloat(e.RealPCEYoY[i]),
		})
	}
	return records
}

// WriteCSV writes the enriched panel as the integrated dataset.
func (e *Enriched) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(e.Records()); err != nil {
		return err
	}
	return writer.Error()
}
