package regression

import (
	"github.com/sartorproj/pcestudy/panel"
)

// InterceptTerm is the name of the constant regressor.
const InterceptTerm = "const"

// Spec names a dependent variable and its ordered regressors. The intercept is implicit.
type Spec struct {
	Name       string
	Dependent  string
	Regressors []string
}

// Terms returns the coefficient names in design-matrix order.
func (s Spec) Terms() []string {
	return append([]string{InterceptTerm}, s.Regressors...)
}

var (
	// Baseline regresses real PCE on contemporaneous inflation.
	Baseline = Spec{
		Name:       "baseline",
		Dependent:  panel.ColRealPCE,
		Regressors: []string{panel.ColCPIYoY},
	}

	// Lagged adds one- and two-month lags of inflation.
	Lagged = Spec{
		Name:       "lagged",
		Dependent:  panel.ColRealPCE,
		Regressors: []string{panel.ColCPIYoY, panel.ColCPIYoYLag1, panel.ColCPIYoYLag2},
	}
)

// Columns is the data a model is fitted on.
type Columns interface {
	Column(name string) ([]float64, error)
	Len() int
}
