// Package panel turns the two raw monthly series into the tables the study models.
//
// The flow is strictly linear:
//
//	aligned, err := panel.Align(cpi, pce)         // inner join on calendar date
//	enriched, err := panel.NewEnricher(anchor).Enrich(aligned)
//	model, err := panel.Prepare(enriched, panel.MinModelObs)
//
// Every step returns a fresh value and leaves its input untouched. Missing
// values are NaN and IsMissing is the only test for them. Year-over-year
// changes and lags use row offsets, so a monthly panel with a gap gives
// misaligned comparisons; the quality package reports such gaps.
package panel
