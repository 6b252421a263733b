// Package regression fits ordinary least squares models of real spending on inflation.
//
// Two specifications are defined:
//
//	real_pce ~ const + cpi_yoy_pct                                         (Baseline)
//	real_pce ~ const + cpi_yoy_pct + cpi_yoy_pct_lag1 + cpi_yoy_pct_lag2   (Lagged)
//
// Fit solves the least-squares problem through a thin singular value
// decomposition and reports the usual inference statistics:
//
//	model, err := regression.Fit(regression.Baseline, modelPanel)
//	if errors.Is(err, errs.ErrSingularMatrix) {
//	    // regressors are collinear
//	}
//	c, _ := model.Coefficient("cpi_yoy_pct")
//	fmt.Println(c.Estimate, c.PValue)
//	fmt.Print(model.Summary())
//
// Information criteria follow the Gaussian likelihood with k counting every
// coefficient including the intercept.
package regression
