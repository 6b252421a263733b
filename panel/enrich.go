package panel

import (
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/pcestudy/errs"
	"github.com/sartorproj/pcestudy/timeseries"
)

// Column names shared with the regression, quality and persistence layers.
const (
	ColDate       = "date"
	ColCPI        = "cpi"
	ColPCE        = "pce"
	ColCPIIndex   = "cpi_index"
	ColRealPCE    = "real_pce"
	ColCPIYoY     = "cpi_yoy_pct"
	ColPCEYoY     = "pce_yoy_pct"
	ColRealPCEYoY = "real_pce_yoy_pct"
	ColCPIYoYLag1 = "cpi_yoy_pct_lag1"
	ColCPIYoYLag2 = "cpi_yoy_pct_lag2"
)

// YoYPeriods is the row offset used for year-over-year changes on monthly data.
const YoYPeriods = 12

// IndexBase is the value the price index takes at the anchor date.
const IndexBase = 100.0

// Columns lists the enriched panel's columns in export order.
var Columns = []string{ColDate, ColCPI, ColPCE, ColCPIIndex, ColRealPCE, ColCPIYoY, ColPCEYoY, ColRealPCEYoY}

// IsMissing reports whether v is an absent observation.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Enriched is the aligned panel plus derived columns.
type Enriched struct {
	Anchor     time.Time
	Dates      []time.Time
	CPI        []float64
	PCE        []float64
	CPIIndex   []float64
	RealPCE    []float64
	CPIYoY     []float64
	PCEYoY     []float64
	RealPCEYoY []float64
}

// Len returns the number of rows.
func (e *Enriched) Len() int {
	return len(e.Dates)
}

// Column returns the named numeric column. The slice is shared, not copied.
func (e *Enriched) Column(name string) ([]float64, error) {
	switch name {
	case ColCPI:
		return e.CPI, nil
	case ColPCE:
		return e.PCE, nil
	case ColCPIIndex:
		return e.CPIIndex, nil
	case ColRealPCE:
		return e.RealPCE, nil
	case ColCPIYoY:
		return e.CPIYoY, nil
	case ColPCEYoY:
		return e.PCEYoY, nil
	case ColRealPCEYoY:
		return e.RealPCEYoY, nil
	}
	return nil, fmt.Errorf("%w: %q", errs.ErrUnknownColumn, name)
}

// Series returns a copy of the named column as a dated series.
func (e *Enriched) Series(name string) (*timeseries.Series, error) {
	col, err := e.Column(name)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(col))
	copy(values, col)
	dates := make([]time.Time, len(e.Dates))
	copy(dates, e.Dates)
	return timeseries.NewWithTimestamps(name, dates, values)
}

// Enricher derives the index, real spending and growth columns.
type Enricher struct {
	anchor time.Time
}

// NewEnricher creates an Enricher that rebases CPI to 100 at anchor.
func NewEnricher(anchor time.Time) *Enricher {
	return &Enricher{anchor: timeseries.Date(anchor)}
}

// Anchor returns the rebasing date.
func (en *Enricher) Anchor() time.Time {
	return en.anchor
}

// Enrich computes cpi_index, real_pce and the three year-over-year columns.
func (en *Enricher) Enrich(a *Aligned) (*Enriched, error) {
	if a == nil || a.Len() == 0 {
		return nil, errs.ErrEmptyResult
	}
	if len(a.CPI) != a.Len() || len(a.PCE) != a.Len() {
		return nil, fmt.Errorf("%w: aligned columns differ in length", errs.ErrMalformedSeries)
	}

	index, err := NormalizeIndex(a, en.anchor)
	if err != nil {
		return nil, err
	}
	realPCE := RealPCE(a.PCE, index)

	e := &Enriched{
		Anchor:     en.anchor,
		Dates:      make([]time.Time, a.Len()),
		CPI:        make([]float64, a.Len()),
		PCE:        make([]float64, a.Len()),
		CPIIndex:   index,
		RealPCE:    realPCE,
		CPIYoY:     YoYPct(a.CPI),
		PCEYoY:     YoYPct(a.PCE),
		RealPCEYoY: YoYPct(realPCE),
	}
	copy(e.Dates, a.Dates)
	copy(e.CPI, a.CPI)
	copy(e.PCE, a.PCE)
	return e, nil
}

// NormalizeIndex rebases CPI so the anchor row equals 100 exactly.
func NormalizeIndex(a *Aligned, anchor time.Time) ([]float64, error) {
	key := timeseries.DateKey(anchor)
	pos := -1
	for i, ts := range a.Dates {
		if timeseries.DateKey(ts) == key {
			pos = i
			break
		}
	}
	if pos == -1 {
		return nil, fmt.Errorf("%w: %s", errs.ErrAnchorNotFound, key)
	}

	base := a.CPI[pos]
	if IsMissing(base) || base == 0 {
		return nil, fmt.Errorf("%w: cpi at %s is %v", errs.ErrAnchorNotFound, key, base)
	}

	index := make([]float64, len(a.CPI))
	for i, v := range a.CPI {
		index[i] = v / base * IndexBase
	}
	index[pos] = IndexBase
	return index, nil
}

// RealPCE deflates nominal spending by the rebased index.
func RealPCE(pce, cpiIndex []float64) []float64 {
	out := make([]float64, len(pce))
	for i := range pce {
		if i >= len(cpiIndex) {
			out[i] = math.NaN()
			continue
		}
		out[i] = pce[i] / (cpiIndex[i] / IndexBase)
	}
	return out
}

// YoYPct returns the percent change versus YoYPeriods rows earlier.
func YoYPct(values []float64) []float64 {
	s := &timeseries.Series{Values: values}
	return s.PctChange(YoYPeriods).Values
}
