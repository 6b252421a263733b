package regression

import (
	"encoding/json"
	"math"
)

// Float marshals non-finite values as JSON null.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// CoefficientRecord is the persisted form of a Coefficient.
type CoefficientRecord struct {
	Estimate   Float `json:"estimate"`
	StdError   Float `json:"std_error"`
	TStatistic Float `json:"t_statistic"`
	PValue     Float `json:"p_value"`
	CILower    Float `json:"ci_lower"`
	CIUpper    Float `json:"ci_upper"`
}

// Record is the persisted form of a Model.
type Record struct {
	ModelName         string                       `json:"model_name"`
	DependentVariable string                       `json:"dependent_variable"`
	NObservations     int                          `json:"n_observations"`
	RSquared          Float                        `json:"r_squared"`
	AdjRSquared       Float                        `json:"adj_r_squared"`
	FStatistic        Float                        `json:"f_statistic"`
	FPValue           Float                        `json:"f_pvalue"`
	AIC               Float                        `json:"aic"`
	BIC               Float                        `json:"bic"`
	DurbinWatson      Float                        `json:"durbin_watson"`
	LogLikelihood     Float                        `json:"log_likelihood"`
	LjungBoxPValue    *Float                       `json:"ljung_box_pvalue,omitempty"`
	Coefficients      map[string]CoefficientRecord `json:"coefficients"`
}

// Record converts the model to its persisted form.
func (m *Model) Record() Record {
	r := Record{
		ModelName:         m.Spec,
		DependentVariable: m.Dependent,
		NObservations:     m.NObs,
		RSquared:          Float(m.RSquared),
		AdjRSquared:       Float(m.AdjRSquared),
		FStatistic:        Float(m.FStatistic),
		FPValue:           Float(m.FPValue),
		AIC:               Float(m.AIC),
		BIC:               Float(m.BIC),
		DurbinWatson:      Float(m.DurbinWatson),
		LogLikelihood:     Float(m.LogLikelihood),
		Coefficients:      make(map[string]CoefficientRecord, len(m.Coefficients)),
	}
	if m.LjungBox != nil {
		p := Float(m.LjungBox.PValue)
		r.LjungBoxPValue = &p
	}
	for term, c := range m.Coefficients {
		r.Coefficients[term] = CoefficientRecord{
			Estimate:   Float(c.Estimate),
			StdError:   Float(c.StdError),
			TStatistic: Float(c.TStatistic),
			PValue:     Float(c.PValue),
			CILower:    Float(c.CILower),
			CIUpper:    Float(c.CIUpper),
		}
	}
	return r
}
