// Package quality audits the enriched panel before any model is fitted.
package quality

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sartorproj/pcestudy/panel"
	"github.com/sartorproj/pcestudy/timeseries"
)

// Report statuses.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// Thresholds configures the checks.
type Thresholds struct {
	CPIMin     float64
	CPIMax     float64
	PCEMin     float64
	PCEMax     float64
	MaxGapDays int
	// FailOnGap turns a calendar gap into an error instead of a warning.
	FailOnGap bool
}

// DefaultThresholds returns ranges suited to CPIAUCSL and PCE since the 1990s.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CPIMin:     100,
		CPIMax:     500,
		PCEMin:     1000,
		PCEMax:     30000,
		MaxGapDays: 35,
		FailOnGap:  true,
	}
}

// DateRange summarizes temporal coverage.
type DateRange struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	TotalMonths int    `json:"total_months"`
}

// ValueRange is the observed span of one column.
type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	OK  bool    `json:"ok"`
}

// Checks holds the individual check outcomes.
type Checks struct {
	MissingValues   map[string]int        `json:"missing_values"`
	DuplicateDates  int                   `json:"duplicate_dates"`
	DateRange       DateRange             `json:"date_range"`
	MaxIntervalDays int                   `json:"max_interval_days"`
	ValueRanges     map[string]ValueRange `json:"value_ranges"`
}

// Report is the persisted quality assessment.
type Report struct {
	Status   string   `json:"status"`
	Checks   Checks   `json:"checks"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

// Passed reports whether modeling may proceed.
func (r *Report) Passed() bool {
	return r.Status == StatusPass
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Status = StatusFail
}

// Checker runs the quality checks.
type Checker struct {
	thresholds Thresholds
}

// NewChecker creates a Checker.
func NewChecker(t Thresholds) *Checker {
	return &Checker{thresholds: t}
}

// Check audits e for missing values, duplicate dates, calendar gaps and
// implausible levels.
func (c *Checker) Check(e *panel.Enriched) *Report {
	r := &Report{
		Status:   StatusPass,
		Warnings: []string{},
		Errors:   []string{},
		Checks: Checks{
			MissingValues: map[string]int{},
			ValueRanges:   map[string]ValueRange{},
		},
	}
	if e == nil || e.Len() == 0 {
		r.fail("panel is empty")
		return r
	}

	c.checkMissing(e, r)
	c.checkDates(e, r)
	c.checkRange(e, r, panel.ColCPI, c.thresholds.CPIMin, c.thresholds.CPIMax)
	c.checkRange(e, r, panel.ColPCE, c.thresholds.PCEMin, c.thresholds.PCEMax)
	return r
}

func (c *Checker) checkMissing(e *panel.Enriched, r *Report) {
	for _, name := range panel.Columns[1:] {
		col, err := e.Column(name)
		if err != nil {
			r.fail("column %s: %v", name, err)
			continue
		}
		missing := 0
		for _, v := range col {
			if panel.IsMissing(v) {
				missing++
			}
		}
		if missing == 0 {
			continue
		}
		r.Checks.MissingValues[name] = missing

		// The first year of a growth column has no base to compare against.
		if strings.HasSuffix(name, "_yoy_pct") && missing <= min(panel.YoYPeriods, e.Len()) {
			continue
		}
		r.warn("%s has %d missing values", name, missing)
	}
}

func (c *Checker) checkDates(e *panel.Enriched, r *Report) {
	seen := make(map[string]int, e.Len())
	for _, d := range e.Dates {
		seen[timeseries.DateKey(d)]++
	}
	for _, n := range seen {
		if n > 1 {
			r.Checks.DuplicateDates += n - 1
		}
	}
	if r.Checks.DuplicateDates > 0 {
		r.fail("%d duplicate dates", r.Checks.DuplicateDates)
	}

	dates := make([]time.Time, len(e.Dates))
	copy(dates, e.Dates)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	r.Checks.DateRange = DateRange{
		Start:       dates[0].Format(timeseries.DateLayout),
		End:         dates[len(dates)-1].Format(timeseries.DateLayout),
		TotalMonths: len(dates),
	}

	maxDays := 0
	for i := 1; i < len(dates); i++ {
		days := int(dates[i].Sub(dates[i-1]).Hours() / 24)
		if days > maxDays {
			maxDays = days
		}
	}
	r.Checks.MaxIntervalDays = maxDays

	if maxDays > c.thresholds.MaxGapDays {
		msg := "potential gap detected: max interval is %d days"
		if c.thresholds.FailOnGap {
			r.fail(msg, maxDays)
		} else {
			r.warn(msg, maxDays)
		}
	}
}

func (c *Checker) checkRange(e *panel.Enriched, r *Report, name string, lo, hi float64) {
	s, err := e.Series(name)
	if err != nil {
		r.fail("column %s: %v", name, err)
		return
	}
	vr := ValueRange{Min: s.Min(), Max: s.Max()}
	vr.OK = vr.Min >= lo && vr.Max <= hi
	if panel.IsMissing(vr.Min) {
		vr.Min, vr.Max = 0, 0
	}
	r.Checks.ValueRanges[name] = vr
	if !vr.OK {
		r.warn("%s has unexpected range %.2f - %.2f (expected %.0f - %.0f)", name, vr.Min, vr.Max, lo, hi)
	}
}
