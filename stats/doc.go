// Package stats provides residual diagnostics, descriptive statistics and unit root tests.
//
// # Residual Diagnostics
//
// Test regression residuals for autocorrelation:
//
//	// Durbin-Watson: d ≈ 2 means no first-order autocorrelation
//	dw := stats.DurbinWatson(residuals)
//
//	// Ljung-Box: H0 is no autocorrelation up to the given lag
//	lb := stats.LjungBox(residuals, stats.DefaultLjungBoxLags, 0)
//	if lb.Rejects(0.05) {
//	    // residuals are autocorrelated
//	}
//
//	// Autocorrelation with 95% bounds
//	acf := stats.ACFWithConfidence(residuals, 12)
//	lags := acf.Significant()
//
// # Descriptive Statistics
//
// Summaries run on the rows where every requested column is present:
//
//	df, err := stats.CompleteFrame(enriched, "cpi_yoy_pct", "pce_yoy_pct", "real_pce_yoy_pct")
//	desc, err := stats.Describe(df)
//	corr, err := stats.Correlations(df)
//
// # Stationarity
//
// ADF (H0: unit root) and KPSS (H0: stationary) run together; the verdict is
// only conclusive when they agree:
//
//	results, err := stats.Stationarity(enriched, "cpi_yoy_pct", "real_pce_yoy_pct")
package stats
