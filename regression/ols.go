package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/pcestudy/errs"
	"github.com/sartorproj/pcestudy/stats"
)

// rankTolerance is the singular-value cutoff relative to the largest one.
const rankTolerance = 1e-10

// confidenceLevel is the two-sided coverage of coefficient intervals.
const confidenceLevel = 0.95

// Fit estimates spec on data by ordinary least squares.
// Failures are returned as *errs.StageError naming the specification.
func Fit(spec Spec, data Columns) (*Model, error) {
	m, err := fit(spec, data)
	if err != nil {
		return nil, errs.WrapSpec(errs.StageRegress, spec.Name, err)
	}
	return m, nil
}

func fit(spec Spec, data Columns) (*Model, error) {
	terms := spec.Terms()
	n, k := data.Len(), len(terms)
	if n <= k {
		return nil, fmt.Errorf("%w: %d observations for %d coefficients", errs.ErrInsufficientData, n, k)
	}

	y, err := column(data, spec.Dependent, n)
	if err != nil {
		return nil, err
	}

	x := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
	}
	for j, name := range spec.Regressors {
		col, err := column(data, name, n)
		if err != nil {
			return nil, err
		}
		x.SetCol(j+1, col)
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: SVD factorization failed", errs.ErrSingularMatrix)
	}
	if rank := svd.Rank(rankTolerance); rank < k {
		return nil, fmt.Errorf("%w: rank %d < %d regressors", errs.ErrSingularMatrix, rank, k)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sv := svd.Values(nil)

	// beta = V Σ⁻¹ Uᵀ y
	uty := make([]float64, k)
	for j := 0; j < k; j++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += u.At(i, j) * y[i]
		}
		uty[j] = sum / sv[j]
	}
	beta := make([]float64, k)
	// diag((XᵀX)⁻¹) = diag(V Σ⁻² Vᵀ)
	unscaled := make([]float64, k)
	for p := 0; p < k; p++ {
		for j := 0; j < k; j++ {
			vpj := v.At(p, j)
			beta[p] += vpj * uty[j]
			unscaled[p] += vpj * vpj / (sv[j] * sv[j])
		}
	}

	fitted := make([]float64, n)
	residuals := make([]float64, n)
	meanY := 0.0
	for _, yi := range y {
		meanY += yi
	}
	meanY /= float64(n)

	ssr, sst := 0.0, 0.0
	for i := 0; i < n; i++ {
		f := 0.0
		for p := 0; p < k; p++ {
			f += x.At(i, p) * beta[p]
		}
		fitted[i] = f
		residuals[i] = y[i] - f
		ssr += residuals[i] * residuals[i]
		d := y[i] - meanY
		sst += d * d
	}

	dfResid := n - k
	dfModel := k - 1
	sigma2 := ssr / float64(dfResid)

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dfResid)}
	tCrit := tDist.Quantile(1 - (1-confidenceLevel)/2)

	coefs := make(map[string]Coefficient, k)
	for p, term := range terms {
		se := math.Sqrt(sigma2 * unscaled[p])
		t := beta[p] / se
		coefs[term] = Coefficient{
			Term:       term,
			Estimate:   beta[p],
			StdError:   se,
			TStatistic: t,
			PValue:     2 * tDist.Survival(math.Abs(t)),
			CILower:    beta[p] - tCrit*se,
			CIUpper:    beta[p] + tCrit*se,
		}
	}

	m := &Model{
		Spec:         spec.Name,
		Dependent:    spec.Dependent,
		Terms:        terms,
		Coefficients: coefs,
		NObs:         n,
		DFResid:      dfResid,
		DFModel:      dfModel,
		residuals:    residuals,
		fitted:       fitted,
	}

	m.RSquared = 1 - ssr/sst
	m.AdjRSquared = 1 - (1-m.RSquared)*float64(n-1)/float64(dfResid)

	m.FStatistic, m.FPValue = math.NaN(), math.NaN()
	if dfModel > 0 {
		m.FStatistic = ((sst - ssr) / float64(dfModel)) / sigma2
		fDist := distuv.F{D1: float64(dfModel), D2: float64(dfResid)}
		m.FPValue = fDist.Survival(m.FStatistic)
	}

	nf := float64(n)
	m.LogLikelihood = -nf / 2 * (math.Log(2*math.Pi) + math.Log(ssr/nf) + 1)
	m.AIC = -2*m.LogLikelihood + 2*float64(k)
	m.BIC = -2*m.LogLikelihood + float64(k)*math.Log(nf)

	m.DurbinWatson = math.NaN()
	if dw := stats.DurbinWatson(residuals); dw != nil {
		m.DurbinWatson = dw.Statistic
	}
	m.LjungBox = stats.LjungBox(residuals, stats.DefaultLjungBoxLags, 0)
	if acf := stats.ACFWithConfidence(residuals, stats.DefaultLjungBoxLags); acf != nil {
		m.ResidualACFLags = acf.Significant()
	}

	return m, nil
}

func column(data Columns, name string, n int) ([]float64, error) {
	col, err := data.Column(name)
	if err != nil {
		return nil, err
	}
	if len(col) != n {
		return nil, fmt.Errorf("%w: column %q has %d rows, want %d", errs.ErrMalformedSeries, name, len(col), n)
	}
	for i, v := range col {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: column %q row %d is not finite", errs.ErrMalformedSeries, name, i)
		}
	}
	return col, nil
}
