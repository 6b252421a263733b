package regression

import (
	"fmt"

	"github.com/sartorproj/pcestudy/errs"
	"github.com/sartorproj/pcestudy/stats"
)

// Coefficient is the estimate and inference for one term.
type Coefficient struct {
	Term       string
	Estimate   float64
	StdError   float64
	TStatistic float64
	PValue     float64
	CILower    float64
	CIUpper    float64
}

// Significant reports whether the two-sided p-value is below alpha.
func (c Coefficient) Significant(alpha float64) bool {
	return c.PValue < alpha
}

// Model is a fitted specification. It is immutable after Fit returns.
type Model struct {
	Spec         string
	Dependent    string
	Terms        []string
	Coefficients map[string]Coefficient

	NObs    int
	DFResid int
	DFModel int

	RSquared      float64
	AdjRSquared   float64
	FStatistic    float64
	FPValue       float64
	LogLikelihood float64
	AIC           float64
	BIC           float64
	DurbinWatson  float64

	// LjungBox is nil when there are too few residuals to test.
	LjungBox        *stats.LjungBoxResult
	ResidualACFLags []int

	residuals []float64
	fitted    []float64
}

// Coefficient looks up a term by name.
func (m *Model) Coefficient(term string) (Coefficient, error) {
	c, ok := m.Coefficients[term]
	if !ok {
		return Coefficient{}, fmt.Errorf("%w: %s has no term %q", errs.ErrMissingCoefficient, m.Spec, term)
	}
	return c, nil
}

// Residuals returns a copy of the residuals in observation order.
func (m *Model) Residuals() []float64 {
	return append([]float64(nil), m.residuals...)
}

// Fitted returns a copy of the fitted values in observation order.
func (m *Model) Fitted() []float64 {
	return append([]float64(nil), m.fitted...)
}
