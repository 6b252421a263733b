package analysis

import (
	"fmt"

	"github.com/sartorproj/pcestudy/panel"
	"github.com/sartorproj/pcestudy/regression"
)

// Alpha is the significance level used for every finding.
const Alpha = 0.05

// Research questions answered by Interpret.
const (
	QuestionSpending = "How has rising inflation since 2020 affected real consumer spending?"
	QuestionRelation = "What is the statistical relationship between CPI and PCE?"
	QuestionTiming   = "Does inflation affect spending immediately or with a time lag?"
)

// moderateR2 separates "moderate" from "weak" explanatory power.
const moderateR2 = 0.3

// Answer pairs a research question with its generated answer.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Interpretation is the written result of the study.
type Interpretation struct {
	Summary           string            `json:"summary"`
	KeyFindings       []string          `json:"key_findings"`
	ResearchQuestions map[string]Answer `json:"research_questions"`
}

// Interpret derives the summary, findings and research answers.
// A model lacking one of the expected inflation terms is an error.
func Interpret(baseline, lagged *regression.Model, cmp Comparison) (Interpretation, error) {
	cpi, err := baseline.Coefficient(panel.ColCPIYoY)
	if err != nil {
		return Interpretation{}, err
	}
	lag1, err := lagged.Coefficient(panel.ColCPIYoYLag1)
	if err != nil {
		return Interpretation{}, err
	}
	lag2, err := lagged.Coefficient(panel.ColCPIYoYLag2)
	if err != nil {
		return Interpretation{}, err
	}

	var in Interpretation
	significant := cpi.Significant(Alpha)
	direction := "positive"
	if cpi.Estimate < 0 {
		direction = "negative"
	}

	if significant {
		in.Summary = fmt.Sprintf("There is a statistically significant %s relationship between "+
			"inflation and real consumer spending (p < %.2f).", direction, Alpha)
		in.KeyFindings = append(in.KeyFindings, fmt.Sprintf("A 1 percentage point increase in inflation "+
			"is associated with a $%.2f billion change in real PCE.", cpi.Estimate))
	} else {
		in.Summary = fmt.Sprintf("The relationship between inflation and real consumer spending "+
			"is not statistically significant at the %.2f level.", Alpha)
	}

	r2 := baseline.RSquared
	in.KeyFindings = append(in.KeyFindings, fmt.Sprintf("The baseline model explains %.1f%% of the variance in real PCE.", r2*100))

	delayed := lag1.Significant(Alpha) || lag2.Significant(Alpha)
	if delayed {
		in.KeyFindings = append(in.KeyFindings, "Lagged inflation effects show some statistical significance, "+
			"suggesting delayed impacts on consumer spending.")
	} else {
		in.KeyFindings = append(in.KeyFindings, "Lagged inflation effects are not statistically significant, "+
			"suggesting inflation impacts spending contemporaneously rather than with a delay.")
	}

	q1 := "The weak relationship suggests inflation has limited direct impact on real consumer spending patterns."
	if significant {
		q1 = fmt.Sprintf("The %s relationship suggests inflation significantly impacts real consumer spending patterns.", direction)
	}

	strength := "weak"
	if r2 > moderateR2 {
		strength = "moderate"
	}
	q2 := fmt.Sprintf("The baseline model shows an R-squared of %.3f, indicating %s explanatory power.", r2, strength)

	in.ResearchQuestions = map[string]Answer{
		"q1": {Question: QuestionSpending, Answer: q1},
		"q2": {Question: QuestionRelation, Answer: q2},
		"q3": {Question: QuestionTiming, Answer: timingAnswer(cmp.Recommended, delayed)},
	}
	return in, nil
}

func timingAnswer(recommended string, delayed bool) string {
	switch {
	case recommended == LabelLagged:
		return "Based on model comparison (AIC/BIC), the lagged model performs better, " +
			"suggesting inflation affects spending with a delay of one to two months."
	case delayed:
		return "Based on model comparison (AIC/BIC), the baseline model without lags performs better, " +
			"although individual lag coefficients are significant, so some delayed effect cannot be ruled out."
	default:
		return "Based on model comparison (AIC/BIC), the baseline model without lags performs better, " +
			"suggesting contemporaneous rather than lagged effects."
	}
}
