package timeseries

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sartorproj/pcestudy/errs"
)

// DateLayout is the calendar-date layout used for keys, CSV cells and config.
const DateLayout = "2006-01-02"

// Series represents a dated sequence of observations.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// NewWithTimestamps creates a named series with explicit timestamps.
func NewWithTimestamps(name string, timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, fmt.Errorf("%w: %d timestamps, %d values", errs.ErrMalformedSeries, len(timestamps), len(values))
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       name,
	}, nil
}

// Monthly creates a series of consecutive first-of-month observations starting at start.
func Monthly(name string, start time.Time, values []float64) *Series {
	start = Date(start)
	start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	timestamps := make([]time.Time, len(values))
	for i := range values {
		timestamps[i] = start.AddDate(0, i, 0)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       name,
	}
}

// Date truncates t to its calendar date in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey returns the calendar-date key of t, used for exact date matching.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Validate checks that timestamps and values line up and that no date repeats.
func (s *Series) Validate() error {
	if len(s.Timestamps) != len(s.Values) {
		return fmt.Errorf("%w: %s has %d timestamps and %d values",
			errs.ErrMalformedSeries, s.Name, len(s.Timestamps), len(s.Values))
	}
	seen := make(map[string]struct{}, len(s.Timestamps))
	for _, ts := range s.Timestamps {
		key := DateKey(ts)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s repeats %s", errs.ErrDuplicateDate, s.Name, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Sorted returns a copy of the series ordered by ascending date.
// The sort is stable so equal dates keep their input order.
func (s *Series) Sorted() *Series {
	c := s.Copy()
	idx := make([]int, c.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.Timestamps[idx[a]].Before(s.Timestamps[idx[b]])
	})
	for i, j := range idx {
		c.Timestamps[i] = Date(s.Timestamps[j])
		c.Values[i] = s.Values[j]
	}
	return c
}

// Min returns the minimum non-missing value in the series.
func (s *Series) Min() float64 {
	min := math.NaN()
	for _, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(min) || v < min {
			min = v
		}
	}
	return min
}

// Max returns the maximum non-missing value in the series.
func (s *Series) Max() float64 {
	max := math.NaN()
	for _, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	return max
}

// Shift moves values k rows later, keeping the length; the first k entries become NaN.
// Timestamps are unchanged, so row t carries the value observed at row t-k.
func (s *Series) Shift(k int) *Series {
	result := make([]float64, len(s.Values))
	for i := range result {
		if k < 0 || i < k {
			result[i] = math.NaN()
			continue
		}
		result[i] = s.Values[i-k]
	}

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       fmt.Sprintf("%s_lag%d", s.Name, k),
	}
}

// PctChange returns (v[t] - v[t-k]) / v[t-k] * 100 by row offset.
// The first k entries are NaN; a NaN on either side propagates.
func (s *Series) PctChange(k int) *Series {
	result := make([]float64, len(s.Values))
	for i := range result {
		if k <= 0 || i < k {
			result[i] = math.NaN()
			continue
		}
		prev := s.Values[i-k]
		result[i] = (s.Values[i] - prev) / prev * 100
	}

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + "_pct",
	}
}

// Window returns the observations dated within [from, to]; a zero bound is open.
func (s *Series) Window(from, to time.Time) *Series {
	out := &Series{Name: s.Name}
	for i, ts := range s.Timestamps {
		if !from.IsZero() && ts.Before(from) {
			continue
		}
		if !to.IsZero() && ts.After(to) {
			continue
		}
		out.Timestamps = append(out.Timestamps, ts)
		out.Values = append(out.Values, s.Values[i])
	}
	return out
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}
