package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/pcestudy/errs"
	"github.com/sartorproj/pcestudy/panel"
	"github.com/sartorproj/pcestudy/regression"
)

type fit struct {
	r2, adj, aic, bic float64
}

func model(name string, f fit, coefs map[string]regression.Coefficient) *regression.Model {
	return &regression.Model{
		Spec:         name,
		Dependent:    panel.ColRealPCE,
		Coefficients: coefs,
		NObs:         100,
		RSquared:     f.r2,
		AdjRSquared:  f.adj,
		AIC:          f.aic,
		BIC:          f.bic,
		FStatistic:   12,
		FPValue:      0.001,
	}
}

func coef(term string, estimate, p float64) regression.Coefficient {
	return regression.Coefficient{Term: term, Estimate: estimate, PValue: p}
}

func baselineWith(estimate, p, r2 float64) *regression.Model {
	return model("baseline", fit{r2: r2, adj: r2, aic: 100, bic: 105}, map[string]regression.Coefficient{
		regression.InterceptTerm: coef(regression.InterceptTerm, 500, 0),
		panel.ColCPIYoY:          coef(panel.ColCPIYoY, estimate, p),
	})
}

func laggedWith(f fit, lag1P, lag2P float64) *regression.Model {
	return model("lagged", f, map[string]regression.Coefficient{
		regression.InterceptTerm: coef(regression.InterceptTerm, 500, 0),
		panel.ColCPIYoY:          coef(panel.ColCPIYoY, -3, 0.01),
		panel.ColCPIYoYLag1:      coef(panel.ColCPIYoYLag1, -1, lag1P),
		panel.ColCPIYoYLag2:      coef(panel.ColCPIYoYLag2, -1, lag2P),
	})
}

func TestCompare(t *testing.T) {
	base := fit{r2: 0.50, adj: 0.49, aic: 100, bic: 105}

	tests := []struct {
		name        string
		lagged      fit
		winners     Winners
		lagWins     int
		recommended string
	}{
		{
			name:        "lagged wins all",
			lagged:      fit{r2: 0.60, adj: 0.58, aic: 90, bic: 99},
			winners:     Winners{LabelLagged, LabelLagged, LabelLagged, LabelLagged},
			lagWins:     3,
			recommended: LabelLagged,
		},
		{
			name:        "lagged wins two of three",
			lagged:      fit{r2: 0.55, adj: 0.52, aic: 98, bic: 110},
			winners:     Winners{LabelLagged, LabelLagged, LabelLagged, LabelBaseline},
			lagWins:     2,
			recommended: LabelLagged,
		},
		{
			name:        "raw r-squared does not count",
			lagged:      fit{r2: 0.55, adj: 0.48, aic: 101, bic: 110},
			winners:     Winners{LabelLagged, LabelBaseline, LabelBaseline, LabelBaseline},
			lagWins:     0,
			recommended: LabelBaseline,
		},
		{
			name:        "one win each and a tie defaults to baseline",
			lagged:      fit{r2: 0.55, adj: 0.52, aic: 100, bic: 110},
			winners:     Winners{LabelLagged, LabelLagged, LabelTie, LabelBaseline},
			lagWins:     1,
			recommended: LabelBaseline,
		},
		{
			name:        "identical fits",
			lagged:      base,
			winners:     Winners{LabelTie, LabelTie, LabelTie, LabelTie},
			lagWins:     0,
			recommended: LabelBaseline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := model("baseline", base, nil)
			l := model("lagged", tt.lagged, nil)

			c := Compare(b, l)
			assert.Equal(t, tt.winners, c.Winners)
			assert.Equal(t, tt.lagWins, c.Wins[LabelLagged])
			assert.Equal(t, tt.recommended, c.Recommended)
			assert.Equal(t, regression.Float(12), c.Lagged.FStatistic)
		})
	}
}

func TestInterpretSignificantNegative(t *testing.T) {
	b := baselineWith(-42.5, 0.001, 0.45)
	l := laggedWith(fit{adj: 0.3, aic: 120, bic: 130}, 0.4, 0.6)

	in, err := Interpret(b, l, Compare(b, l))
	require.NoError(t, err)

	assert.Contains(t, in.Summary, "statistically significant negative relationship")
	require.Len(t, in.KeyFindings, 3)
	assert.Contains(t, in.KeyFindings[0], "$-42.50 billion change")
	assert.Contains(t, in.KeyFindings[1], "45.0% of the variance")
	assert.Contains(t, in.KeyFindings[2], "contemporaneously")

	assert.Equal(t, QuestionSpending, in.ResearchQuestions["q1"].Question)
	assert.Contains(t, in.ResearchQuestions["q1"].Answer, "negative relationship")
	assert.Contains(t, in.ResearchQuestions["q2"].Answer, "0.450")
	assert.Contains(t, in.ResearchQuestions["q2"].Answer, "moderate")
	assert.Contains(t, in.ResearchQuestions["q3"].Answer, "contemporaneous rather than lagged")
}

func TestInterpretNotSignificant(t *testing.T) {
	b := baselineWith(3, 0.4, 0.02)
	l := laggedWith(fit{adj: 0.3, aic: 90, bic: 95}, 0.01, 0.6)

	cmp := Compare(b, l)
	require.Equal(t, LabelLagged, cmp.Recommended)

	in, err := Interpret(b, l, cmp)
	require.NoError(t, err)

	assert.Contains(t, in.Summary, "not statistically significant at the 0.05 level")
	require.Len(t, in.KeyFindings, 2)
	assert.Contains(t, in.KeyFindings[1], "delayed impacts")
	assert.Contains(t, in.ResearchQuestions["q1"].Answer, "limited direct impact")
	assert.Contains(t, in.ResearchQuestions["q2"].Answer, "weak")
	assert.Contains(t, in.ResearchQuestions["q3"].Answer, "lagged model performs better")
}

func TestInterpretBaselinePreferredWithSignificantLag(t *testing.T) {
	b := baselineWith(5, 0.01, 0.5)
	l := laggedWith(fit{adj: 0.3, aic: 120, bic: 130}, 0.6, 0.02)

	in, err := Interpret(b, l, Compare(b, l))
	require.NoError(t, err)
	assert.Contains(t, in.Summary, "positive")
	assert.Contains(t, in.ResearchQuestions["q3"].Answer, "cannot be ruled out")
}

func TestInterpretMissingCoefficient(t *testing.T) {
	b := baselineWith(5, 0.01, 0.5)
	l := laggedWith(fit{}, 0.5, 0.5)
	delete(l.Coefficients, panel.ColCPIYoYLag2)

	_, err := Interpret(b, l, Compare(b, l))
	assert.ErrorIs(t, err, errs.ErrMissingCoefficient)

	b2 := model("baseline", fit{}, map[string]regression.Coefficient{})
	_, err = Analyze(b2, laggedWith(fit{}, 0.5, 0.5))
	assert.ErrorIs(t, err, errs.ErrMissingCoefficient)
}

func TestAnalyzeJSONKeys(t *testing.T) {
	b := baselineWith(-10, 0.01, 0.4)
	l := laggedWith(fit{r2: 0.41, adj: 0.39, aic: 101, bic: 110}, 0.3, 0.3)

	res, err := Analyze(b, l)
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	for _, key := range []string{"baseline_model", "lagged_model", "model_comparison", "interpretation"} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, "baseline", doc["model_comparison"]["recommended_model"])
	assert.Contains(t, doc["interpretation"], "research_questions")
	assert.Equal(t, "lagged", doc["lagged_model"]["model_name"])
}
