package analysis

import (
	"github.com/sartorproj/pcestudy/regression"
)

// Winner labels.
const (
	LabelBaseline = "baseline"
	LabelLagged   = "lagged"
	LabelTie      = "tie"
)

// Metrics are the fit statistics compared across models.
type Metrics struct {
	RSquared      regression.Float `json:"r_squared"`
	AdjRSquared   regression.Float `json:"adj_r_squared"`
	AIC           regression.Float `json:"aic"`
	BIC           regression.Float `json:"bic"`
	FStatistic    regression.Float `json:"f_statistic"`
	FPValue       regression.Float `json:"f_pvalue"`
	NObservations int              `json:"n_observations"`
}

func metricsOf(m *regression.Model) Metrics {
	return Metrics{
		RSquared:      regression.Float(m.RSquared),
		AdjRSquared:   regression.Float(m.AdjRSquared),
		AIC:           regression.Float(m.AIC),
		BIC:           regression.Float(m.BIC),
		FStatistic:    regression.Float(m.FStatistic),
		FPValue:       regression.Float(m.FPValue),
		NObservations: m.NObs,
	}
}

// Winners holds the better model per criterion. RSquared is informational
// and never counted toward the recommendation.
type Winners struct {
	RSquared    string `json:"r_squared"`
	AdjRSquared string `json:"adj_r_squared"`
	AIC         string `json:"aic"`
	BIC         string `json:"bic"`
}

// Comparison is the outcome of Compare.
type Comparison struct {
	Baseline    Metrics        `json:"baseline"`
	Lagged      Metrics        `json:"lagged"`
	Winners     Winners        `json:"winners"`
	Wins        map[string]int `json:"wins"`
	Recommended string         `json:"recommended_model"`
}

// Compare ranks the baseline and lagged fits on adjusted R², AIC and BIC.
// The lagged model is recommended only when it wins at least two of the three.
func Compare(baseline, lagged *regression.Model) Comparison {
	c := Comparison{
		Baseline: metricsOf(baseline),
		Lagged:   metricsOf(lagged),
		Wins:     map[string]int{LabelBaseline: 0, LabelLagged: 0},
	}

	c.Winners.RSquared = higher(baseline.RSquared, lagged.RSquared)
	c.Winners.AdjRSquared = higher(baseline.AdjRSquared, lagged.AdjRSquared)
	c.Winners.AIC = lower(baseline.AIC, lagged.AIC)
	c.Winners.BIC = lower(baseline.BIC, lagged.BIC)

	for _, w := range []string{c.Winners.AdjRSquared, c.Winners.AIC, c.Winners.BIC} {
		if w != LabelTie {
			c.Wins[w]++
		}
	}

	c.Recommended = LabelBaseline
	if c.Wins[LabelLagged] >= 2 {
		c.Recommended = LabelLagged
	}
	return c
}

func higher(baseline, lagged float64) string {
	switch {
	case baseline > lagged:
		return LabelBaseline
	case lagged > baseline:
		return LabelLagged
	}
	return LabelTie
}

func lower(baseline, lagged float64) string {
	return higher(lagged, baseline)
}
