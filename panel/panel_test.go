package panel

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/pcestudy/errs"
	"github.com/sartorproj/pcestudy/timeseries"
)

var anchor = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

// compounding builds n monthly observations growing by rate per month from start.
func compounding(name string, start float64, rate float64, n int) *timeseries.Series {
	values := make([]float64, n)
	for i := range values {
		values[i] = start * math.Pow(1+rate, float64(i))
	}
	return timeseries.Monthly(name, anchor, values)
}

func enrichedFixture(t *testing.T, n int) *Enriched {
	t.Helper()
	cpi := compounding("cpi", 233.7, 0.002, n)
	pce := compounding("pce", 12000, 0.004, n)
	for i := range pce.Values {
		pce.Values[i] += 15 * math.Sin(float64(i))
	}

	aligned, err := Align(cpi, pce)
	require.NoError(t, err)
	e, err := NewEnricher(anchor).Enrich(aligned)
	require.NoError(t, err)
	return e
}

func TestAlignInnerJoin(t *testing.T) {
	cpi := timeseries.Monthly("cpi", anchor, []float64{1, 2, 3, 4, 5})
	pce := timeseries.Monthly("pce", anchor.AddDate(0, 2, 0), []float64{30, 40, 50, 60})

	a, err := Align(cpi, pce)
	require.NoError(t, err)

	require.Equal(t, 3, a.Len())
	assert.Equal(t, []float64{3, 4, 5}, a.CPI)
	assert.Equal(t, []float64{30, 40, 50}, a.PCE)
	assert.True(t, a.Dates[0].Equal(anchor.AddDate(0, 2, 0)))
}

func TestAlignSortsWithoutMutating(t *testing.T) {
	cpi, err := timeseries.NewWithTimestamps("cpi",
		[]time.Time{anchor.AddDate(0, 1, 0), anchor},
		[]float64{2, 1})
	require.NoError(t, err)
	pce := timeseries.Monthly("pce", anchor, []float64{10, 20})

	a, err := Align(cpi, pce)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2}, a.CPI)
	assert.Equal(t, []float64{10, 20}, a.PCE)
	assert.Equal(t, []float64{2, 1}, cpi.Values)
}

func TestAlignErrors(t *testing.T) {
	dup, err := timeseries.NewWithTimestamps("cpi",
		[]time.Time{anchor, anchor.AddDate(0, 1, 0), anchor.AddDate(0, 1, 0)},
		[]float64{1, 2, 3})
	require.NoError(t, err)

	tests := []struct {
		name string
		cpi  *timeseries.Series
		pce  *timeseries.Series
		want error
	}{
		{
			name: "disjoint dates",
			cpi:  timeseries.Monthly("cpi", anchor, []float64{1, 2}),
			pce:  timeseries.Monthly("pce", anchor.AddDate(1, 0, 0), []float64{1, 2}),
			want: errs.ErrEmptyResult,
		},
		{
			name: "duplicate date",
			cpi:  dup,
			pce:  timeseries.Monthly("pce", anchor, []float64{1, 2, 3}),
			want: errs.ErrDuplicateDate,
		},
		{
			name: "malformed",
			cpi:  &timeseries.Series{Name: "cpi", Timestamps: []time.Time{anchor}, Values: []float64{1, 2}},
			pce:  timeseries.Monthly("pce", anchor, []float64{1}),
			want: errs.ErrMalformedSeries,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Align(tt.cpi, tt.pce)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEnrichAnchorIsExactlyBase(t *testing.T) {
	e := enrichedFixture(t, 30)

	idx := -1
	for i, d := range e.Dates {
		if d.Equal(anchor) {
			idx = i
		}
	}
	require.NotEqual(t, -1, idx)
	assert.Equal(t, 100.0, e.CPIIndex[idx])
}

func TestEnrichRealPCEIdentity(t *testing.T) {
	e := enrichedFixture(t, 30)

	for i := 0; i < e.Len(); i++ {
		reconstructed := e.RealPCE[i] * e.CPIIndex[i] / 100
		assert.InEpsilon(t, e.PCE[i], reconstructed, 1e-9, "row %d", i)
	}
}

func TestEnrichYoYMissingForFirstYear(t *testing.T) {
	e := enrichedFixture(t, 30)

	for _, col := range []string{ColCPIYoY, ColPCEYoY, ColRealPCEYoY} {
		values, err := e.Column(col)
		require.NoError(t, err)
		for i := 0; i < YoYPeriods; i++ {
			assert.True(t, IsMissing(values[i]), "%s row %d", col, i)
		}
		for i := YoYPeriods; i < e.Len(); i++ {
			assert.False(t, IsMissing(values[i]), "%s row %d", col, i)
		}
	}
}

func TestEnrichDeterministic(t *testing.T) {
	first := enrichedFixture(t, 36)
	second := enrichedFixture(t, 36)

	var a, b bytes.Buffer
	require.NoError(t, first.WriteCSV(&a))
	require.NoError(t, second.WriteCSV(&b))
	assert.Equal(t, a.String(), b.String())
}

func TestEnrichOnePercentMonthlyInflation(t *testing.T) {
	cpi := compounding("cpi", 100, 0.01, 13)
	pce := compounding("pce", 1000, 0, 13)

	a, err := Align(cpi, pce)
	require.NoError(t, err)
	e, err := NewEnricher(anchor).Enrich(a)
	require.NoError(t, err)

	assert.InDelta(t, 112.6825, e.CPIIndex[12], 1e-3)
	assert.InDelta(t, 12.6825, e.CPIYoY[12], 1e-3)
	assert.InDelta(t, 0.0, e.PCEYoY[12], 1e-12)
	assert.InDelta(t, 1000/1.126825, e.RealPCE[12], 1e-2)
}

func TestEnrichAnchorNotFound(t *testing.T) {
	a, err := Align(
		timeseries.Monthly("cpi", anchor.AddDate(1, 0, 0), []float64{1, 2}),
		timeseries.Monthly("pce", anchor.AddDate(1, 0, 0), []float64{1, 2}),
	)
	require.NoError(t, err)

	_, err = NewEnricher(anchor).Enrich(a)
	assert.ErrorIs(t, err, errs.ErrAnchorNotFound)
}

func TestEnrichDoesNotMutateInput(t *testing.T) {
	a, err := Align(compounding("cpi", 200, 0.01, 14), compounding("pce", 1000, 0.01, 14))
	require.NoError(t, err)
	before := append([]float64(nil), a.CPI...)

	e, err := NewEnricher(anchor).Enrich(a)
	require.NoError(t, err)
	e.CPI[0] = -1

	assert.Equal(t, before, a.CPI)
}

func TestColumnUnknown(t *testing.T) {
	e := enrichedFixture(t, 13)
	_, err := e.Column("gdp")
	assert.ErrorIs(t, err, errs.ErrUnknownColumn)
}

func TestPrepareDropsIncompleteRows(t *testing.T) {
	e := enrichedFixture(t, 24)

	m, err := Prepare(e, MinModelObs)
	require.NoError(t, err)

	require.Equal(t, 10, m.Len())
	assert.True(t, m.Dates[0].Equal(e.Dates[14]))
	assert.Equal(t, e.CPIYoY[13], m.CPIYoYLag1[0])
	assert.Equal(t, e.CPIYoY[12], m.CPIYoYLag2[0])
	for _, col := range []string{ColRealPCE, ColCPIYoY, ColCPIYoYLag1, ColCPIYoYLag2} {
		values, err := m.Column(col)
		require.NoError(t, err)
		for i, v := range values {
			assert.False(t, IsMissing(v), "%s row %d", col, i)
		}
	}
}

func TestPrepareInsufficientData(t *testing.T) {
	e := enrichedFixture(t, 17)

	_, err := Prepare(e, MinModelObs)
	assert.ErrorIs(t, err, errs.ErrInsufficientData)
}

func TestWriteCSVMissingCellsEmpty(t *testing.T) {
	e := enrichedFixture(t, 13)

	var buf bytes.Buffer
	require.NoError(t, e.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 14)
	assert.Equal(t, strings.Join(Columns, ","), lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",,,"), lines[1])
	assert.False(t, strings.HasSuffix(lines[13], ","), lines[13])
}
