package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Stationarity verdicts.
const (
	VerdictStationary    = "stationary"
	VerdictNonStationary = "non-stationary"
	VerdictInconclusive  = "inconclusive"
)

// ADFResult represents the result of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic    float64            `json:"statistic"`
	PValue       float64            `json:"p_value"`
	Lags         int                `json:"lags"`
	NObs         int                `json:"n_obs"`
	CriticalVals map[string]float64 `json:"critical_values"` // Critical values at 1%, 5%, 10%
	IsStationary bool               `json:"is_stationary"`
}

// ADF performs the Augmented Dickey-Fuller test for unit root.
// The null hypothesis is that the series has a unit root (is non-stationary).
// If p-value < 0.05, we reject the null and conclude the series is stationary.
func ADF(values []float64, maxLag int) *ADFResult {
	n := len(values)
	if n < 10 {
		return nil
	}

	// Use default lag selection (floor of (n-1)^(1/3))
	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Pow(float64(n-1), 1.0/3.0)))
	}
	if maxLag >= n-1 {
		maxLag = n - 2
	}

	// diff[t] = y[t] - y[t-1], defined from t = 1
	diff := make([]float64, n)
	for t := 1; t < n; t++ {
		diff[t] = values[t] - values[t-1]
	}

	// delta_y_t = alpha + beta*y_{t-1} + sum(gamma_i * delta_y_{t-i}) + epsilon
	// We're testing if beta = 0 (unit root) vs beta < 0 (stationary)
	nObs := n - maxLag - 1
	if nObs < 10 {
		return nil
	}

	k := 2 + maxLag
	y := make([]float64, nObs)
	x := mat.NewDense(nObs, k, nil)
	for i := 0; i < nObs; i++ {
		t := i + maxLag + 1
		y[i] = diff[t]
		x.Set(i, 0, 1)
		x.Set(i, 1, values[t-1])
		for j := 1; j <= maxLag; j++ {
			x.Set(i, 1+j, diff[t-j])
		}
	}

	coeffs, se := olsRegression(x, y)
	if coeffs == nil {
		return nil
	}

	// Test statistic is t-stat for the lagged level coefficient
	tStat := coeffs[1] / se[1]
	pValue := mackinnonPValue(tStat)

	return &ADFResult{
		Statistic: tStat,
		PValue:    pValue,
		Lags:      maxLag,
		NObs:      nObs,
		// Critical values for ADF test (with constant, no trend)
		CriticalVals: map[string]float64{
			"1%":  -3.43,
			"5%":  -2.86,
			"10%": -2.57,
		},
		IsStationary: pValue < 0.05,
	}
}

// KPSSResult represents the result of a KPSS test.
type KPSSResult struct {
	Statistic    float64            `json:"statistic"`
	PValue       float64            `json:"p_value"`
	Lags         int                `json:"lags"`
	CriticalVals map[string]float64 `json:"critical_values"`
	IsStationary bool               `json:"is_stationary"`
}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test for stationarity.
// The null hypothesis is that the series is level stationary.
func KPSS(values []float64, nlags int) *KPSSResult {
	n := len(values)
	if n < 10 {
		return nil
	}

	if nlags <= 0 {
		nlags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if nlags >= n {
		nlags = n - 1
	}

	residuals := make([]float64, n)
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)
	for i, v := range values {
		residuals[i] = v - mean
	}

	// Long-run variance, Newey-West with Bartlett weights
	s2 := 0.0
	for _, r := range residuals {
		s2 += r * r
	}
	s2 /= float64(n)
	for l := 1; l <= nlags; l++ {
		cov := 0.0
		for i := l; i < n; i++ {
			cov += residuals[i] * residuals[i-l]
		}
		cov /= float64(n)
		s2 += 2 * (1.0 - float64(l)/float64(nlags+1)) * cov
	}
	if s2 <= 0 {
		s2 = 1e-10
	}

	cumSum := 0.0
	etaSq := 0.0
	for _, r := range residuals {
		cumSum += r
		etaSq += cumSum * cumSum
	}
	kpssStat := etaSq / (float64(n) * float64(n) * s2)

	pValue := kpssPValue(kpssStat)

	return &KPSSResult{
		Statistic:    kpssStat,
		PValue:       pValue,
		Lags:         nlags,
		CriticalVals: map[string]float64{"10%": 0.347, "5%": 0.463, "1%": 0.739},
		IsStationary: pValue >= 0.05,
	}
}

// StationarityResult combines both tests for one column.
type StationarityResult struct {
	Column  string      `json:"column"`
	NObs    int         `json:"n_obs"`
	ADF     *ADFResult  `json:"adf"`
	KPSS    *KPSSResult `json:"kpss"`
	Verdict string      `json:"verdict"`
}

// Stationarity runs ADF and KPSS on each named column, skipping missing values.
// The verdict is conclusive only when both tests agree.
func Stationarity(src ColumnSource, names ...string) ([]StationarityResult, error) {
	results := make([]StationarityResult, 0, len(names))
	for _, name := range names {
		col, err := src.Column(name)
		if err != nil {
			return nil, err
		}
		values := make([]float64, 0, len(col))
		for _, v := range col {
			if !math.IsNaN(v) {
				values = append(values, v)
			}
		}

		r := StationarityResult{
			Column: name,
			NObs:   len(values),
			ADF:    ADF(values, 0),
			KPSS:   KPSS(values, 0),
		}
		if r.ADF == nil || r.KPSS == nil {
			return nil, fmt.Errorf("column %q: %d observations are too few for unit root tests", name, len(values))
		}
		r.Verdict = verdict(r.ADF.IsStationary, r.KPSS.IsStationary)
		results = append(results, r)
	}
	return results, nil
}

func verdict(adf, kpss bool) string {
	switch {
	case adf && kpss:
		return VerdictStationary
	case !adf && !kpss:
		return VerdictNonStationary
	default:
		return VerdictInconclusive
	}
}

// olsRegression returns coefficients and standard errors, or nil when XᵀX is singular.
func olsRegression(x *mat.Dense, y []float64) (coeffs, stdErrors []float64) {
	n, k := x.Dims()
	if n <= k {
		return nil, nil
	}

	var xtx, inv mat.Dense
	xtx.Mul(x.T(), x)
	if err := inv.Inverse(&xtx); err != nil {
		return nil, nil
	}

	yv := mat.NewVecDense(n, y)
	var xty, beta, fitted mat.VecDense
	xty.MulVec(x.T(), yv)
	beta.MulVec(&inv, &xty)
	fitted.MulVec(x, &beta)

	ssr := 0.0
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		ssr += r * r
	}
	sigma2 := ssr / float64(n-k)

	coeffs = make([]float64, k)
	stdErrors = make([]float64, k)
	for j := 0; j < k; j++ {
		coeffs[j] = beta.AtVec(j)
		stdErrors[j] = math.Sqrt(sigma2 * inv.At(j, j))
	}
	return coeffs, stdErrors
}

// mackinnonKnots maps ADF statistics (constant, no trend) to p-values. The
// 1%, 5% and 10% points are MacKinnon's asymptotic critical values.
var mackinnonKnots = []struct{ stat, p float64 }{
	{-3.96, 0.001},
	{-3.43, 0.01},
	{-2.86, 0.05},
	{-2.57, 0.10},
	{-1.94, 0.25},
	{-1.62, 0.50},
}

// mackinnonPValue interpolates linearly between the knots, so a statistic
// beyond a critical value always gets a p-value below that level.
func mackinnonPValue(stat float64) float64 {
	first := mackinnonKnots[0]
	if stat <= first.stat {
		return first.p
	}
	for i := 1; i < len(mackinnonKnots); i++ {
		lo, hi := mackinnonKnots[i-1], mackinnonKnots[i]
		if stat <= hi.stat {
			return lo.p + (stat-lo.stat)/(hi.stat-lo.stat)*(hi.p-lo.p)
		}
	}
	// Linear interpolation towards 1
	return math.Min(0.5+(stat+1.62)*0.25, 0.99)
}

// kpssPValue interpolates between the level-stationarity critical values
// (10% 0.347, 5% 0.463, 1% 0.739).
func kpssPValue(stat float64) float64 {
	switch {
	case stat >= 0.739:
		return 0.01
	case stat >= 0.463:
		return 0.05 - (stat-0.463)/(0.739-0.463)*0.04
	case stat >= 0.347:
		return 0.10 - (stat-0.347)/(0.463-0.347)*0.05
	default:
		return 0.10 + (0.347-stat)*0.5
	}
}
