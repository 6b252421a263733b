package analysis

import (
	"github.com/sartorproj/pcestudy/regression"
)

// Results is the document persisted as model_results.json.
type Results struct {
	BaselineModel   regression.Record `json:"baseline_model"`
	LaggedModel     regression.Record `json:"lagged_model"`
	ModelComparison Comparison        `json:"model_comparison"`
	Interpretation  Interpretation    `json:"interpretation"`
}

// Analyze compares the models and interprets them.
func Analyze(baseline, lagged *regression.Model) (*Results, error) {
	cmp := Compare(baseline, lagged)
	in, err := Interpret(baseline, lagged, cmp)
	if err != nil {
		return nil, err
	}
	return &Results{
		BaselineModel:   baseline.Record(),
		LaggedModel:     lagged.Record(),
		ModelComparison: cmp,
		Interpretation:  in,
	}, nil
}
