package panel

import (
	"fmt"
	"time"

	"github.com/sartorproj/pcestudy/errs"
	"github.com/sartorproj/pcestudy/timeseries"
)

// MinModelObs is the smallest model panel the pipeline accepts:
// the lagged specification's regressor count plus one.
const MinModelObs = 5

// ModelPanel holds the complete rows used for estimation.
type ModelPanel struct {
	Dates      []time.Time
	RealPCE    []float64
	CPIYoY     []float64
	CPIYoYLag1 []float64
	CPIYoYLag2 []float64
}

// Len returns the number of rows.
func (m *ModelPanel) Len() int {
	return len(m.Dates)
}

// Column returns the named column.
func (m *ModelPanel) Column(name string) ([]float64, error) {
	switch name {
	case ColRealPCE:
		return m.RealPCE, nil
	case ColCPIYoY:
		return m.CPIYoY, nil
	case ColCPIYoYLag1:
		return m.CPIYoYLag1, nil
	case ColCPIYoYLag2:
		return m.CPIYoYLag2, nil
	}
	return nil, fmt.Errorf("%w: %q", errs.ErrUnknownColumn, name)
}

// Prepare adds one- and two-row lags of cpi_yoy_pct and keeps only rows where
// the dependent variable, the contemporaneous rate and both lags are present.
func Prepare(e *Enriched, minObs int) (*ModelPanel, error) {
	if e == nil {
		return nil, errs.ErrEmptyResult
	}

	yoy := &timeseries.Series{Values: e.CPIYoY}
	lag1 := yoy.Shift(1).Values
	lag2 := yoy.Shift(2).Values

	m := &ModelPanel{}
	for i := 0; i < e.Len(); i++ {
		if IsMissing(e.RealPCE[i]) || IsMissing(e.CPIYoY[i]) || IsMissing(lag1[i]) || IsMissing(lag2[i]) {
			continue
		}
		m.Dates = append(m.Dates, e.Dates[i])
		m.RealPCE = append(m.RealPCE, e.RealPCE[i])
		m.CPIYoY = append(m.CPIYoY, e.CPIYoY[i])
		m.CPIYoYLag1 = append(m.CPIYoYLag1, lag1[i])
		m.CPIYoYLag2 = append(m.CPIYoYLag2, lag2[i])
	}

	if m.Len() < minObs {
		return nil, fmt.Errorf("%w: %d complete rows, need %d", errs.ErrInsufficientData, m.Len(), minObs)
	}
	return m, nil
}
