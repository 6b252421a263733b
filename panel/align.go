package panel

import (
	"fmt"
	"time"

	"github.com/sartorproj/pcestudy/errs"
	"github.com/sartorproj/pcestudy/timeseries"
)

// Aligned holds CPI and PCE observed on the same dates, ascending and unique.
type Aligned struct {
	Dates []time.Time
	CPI   []float64
	PCE   []float64
}

// Len returns the number of rows.
func (a *Aligned) Len() int {
	return len(a.Dates)
}

// Align joins cpi and pce on exact calendar-date equality.
// Dates present in only one input are dropped. Inputs are not modified.
func Align(cpi, pce *timeseries.Series) (*Aligned, error) {
	if cpi == nil || pce == nil {
		return nil, fmt.Errorf("%w: nil input series", errs.ErrMalformedSeries)
	}
	for _, s := range []*timeseries.Series{cpi, pce} {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	left := cpi.Sorted()
	right := pce.Sorted()

	byDate := make(map[string]int, right.Len())
	for i, ts := range right.Timestamps {
		byDate[timeseries.DateKey(ts)] = i
	}

	out := &Aligned{}
	for i, ts := range left.Timestamps {
		j, ok := byDate[timeseries.DateKey(ts)]
		if !ok {
			continue
		}
		out.Dates = append(out.Dates, ts)
		out.CPI = append(out.CPI, left.Values[i])
		out.PCE = append(out.PCE, right.Values[j])
	}

	if out.Len() == 0 {
		return nil, fmt.Errorf("%w: %s and %s share no dates", errs.ErrEmptyResult, cpi.Name, pce.Name)
	}
	return out, nil
}
