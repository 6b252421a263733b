package regression

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/sartorproj/pcestudy/stats"
)

// Summary renders the model as a plain-text report.
func (m *Model) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "OLS Regression Results: %s\n", m.Spec)
	b.WriteString(strings.Repeat("=", 72) + "\n")

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Dep. Variable:\t%s\tR-squared:\t%.4f\n", m.Dependent, m.RSquared)
	fmt.Fprintf(w, "No. Observations:\t%d\tAdj. R-squared:\t%.4f\n", m.NObs, m.AdjRSquared)
	fmt.Fprintf(w, "Df Residuals:\t%d\tF-statistic:\t%.4f\n", m.DFResid, m.FStatistic)
	fmt.Fprintf(w, "Df Model:\t%d\tProb (F-statistic):\t%.4g\n", m.DFModel, m.FPValue)
	fmt.Fprintf(w, "Log-Likelihood:\t%.4f\tAIC:\t%.4f\n", m.LogLikelihood, m.AIC)
	fmt.Fprintf(w, "Durbin-Watson:\t%.4f\tBIC:\t%.4f\n", m.DurbinWatson, m.BIC)
	w.Flush()

	b.WriteString(strings.Repeat("-", 72) + "\n")

	w = tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "\tcoef\tstd err\tt\tP>|t|\t[0.025\t0.975]\t")
	for _, term := range m.Terms {
		c := m.Coefficients[term]
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.3f\t%.4f\t%.4f\t%.4f\t\n",
			term, c.Estimate, c.StdError, c.TStatistic, c.PValue, c.CILower, c.CIUpper)
	}
	w.Flush()

	b.WriteString(strings.Repeat("-", 72) + "\n")
	if m.LjungBox != nil {
		fmt.Fprintf(&b, "Ljung-Box Q(%d): %.4f (p=%.4f)\n", m.LjungBox.Lags, m.LjungBox.Statistic, m.LjungBox.PValue)
		if m.LjungBox.Rejects(0.05) {
			b.WriteString("Ljung-Box rejects white-noise residuals at the 5% level\n")
		}
	} else {
		b.WriteString("Ljung-Box: too few residuals\n")
	}
	dw := stats.DurbinWatsonResult{Statistic: m.DurbinWatson}
	if a := dw.Autocorrelation(); a != "none" {
		fmt.Fprintf(&b, "Durbin-Watson suggests %s first-order autocorrelation\n", a)
	}
	if len(m.ResidualACFLags) > 0 {
		fmt.Fprintf(&b, "Residual autocorrelation outside 95%% bounds at lags %v\n", m.ResidualACFLags)
	}

	return b.String()
}
