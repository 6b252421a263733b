// Package pcestudy measures how inflation relates to real consumer spending.
//
// A run downloads the Consumer Price Index (CPIAUCSL) and nominal Personal
// Consumption Expenditures (PCE) from FRED, deflates spending into a real
// series anchored at a configurable base month, and regresses real spending
// growth on inflation. Two nested specifications are compared:
//
//	baseline: real_pce_yoy_pct ~ const + cpi_yoy_pct
//	lagged:   real_pce_yoy_pct ~ const + cpi_yoy_pct + cpi_yoy_pct_lag1 + cpi_yoy_pct_lag2
//
// # Packages
//
//   - timeseries: dated series, CSV loading and monthly helpers
//   - panel: alignment, CPI index, real PCE, YoY growth and lag construction
//   - quality: data quality checks on the integrated panel
//   - stats: descriptive statistics, correlations, autocorrelation and unit root tests
//   - regression: OLS fits with diagnostics and summaries
//   - analysis: model comparison and plain-language interpretation
//   - fred: FRED API and fredgraph CSV client with retries
//   - config: layered configuration (file, environment, defaults)
//   - pipeline: the end-to-end run with persisted artifacts
//   - errs: stage-tagged errors and sentinels
//
// The pcestudy command in cmd/pcestudy wires these together.
package pcestudy
