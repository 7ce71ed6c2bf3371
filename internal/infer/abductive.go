package infer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/vaultgate/internal/model"
)

// Hypothesis is one candidate explanation of an observed effect
type Hypothesis struct {
	Explanation string
	Likelihood  float64
	Evidence    []string
	Testable    string
}

var nightAccessHypotheses = []Hypothesis{
	{
		Explanation: "Unauthorized access from different timezone",
		Likelihood:  0.7,
		Evidence:    []string{"Night access unusual for the typical pattern"},
		Testable:    "Check if access locations match different timezones",
	},
	{
		Explanation: "Legitimate deadline-driven work",
		Likelihood:  0.3,
		Evidence:    []string{"Owner may be working late to meet a deadline"},
		Testable:    "Check for temporal clustering near known deadlines",
	},
}

var impossibleTravelHypotheses = []Hypothesis{
	{
		Explanation: "Account credentials compromised",
		Likelihood:  0.8,
		Evidence:    []string{"Multiple locations simultaneously impossible"},
		Testable:    "Check for other unauthorized activity indicators",
	},
	{
		Explanation: "VPN or location spoofing",
		Likelihood:  0.15,
		Evidence:    []string{"Technical methods can fake location"},
		Testable:    "Analyze network metadata",
	},
	{
		Explanation: "GPS error or system bug",
		Likelihood:  0.05,
		Evidence:    []string{"Technical glitches possible but rare"},
		Testable:    "Verify with other location data points",
	},
}

// Abductive picks the most likely explanation for detected effects
func (e *Engine) Abductive(_ []model.Fact, observations []model.Observation) []model.Inference {
	var out []model.Inference

	night := 0
	for _, obs := range observations {
		if obs.Property != model.PropertyAccessTime {
			continue
		}
		if hour, err := strconv.Atoi(strings.TrimSpace(obs.Value)); err == nil && isNightHour(hour) {
			night++
		}
	}
	if night >= e.cfg.NightAccessMinimum {
		best := BestHypothesis(nightAccessHypotheses)
		out = append(out, model.Inference{
			Kind:        model.LogicAbductive,
			Method:      "Inference to Best Explanation",
			Premise:     fmt.Sprintf("Effect observed: %d night access events", night),
			Observation: fmt.Sprintf("Most likely explanation: %s", best.Explanation),
			Conclusion:  best.Explanation,
			Confidence:  best.Likelihood,
			Formula:     "Q observed, P→Q plausible ⊢ P (probably)",
			Actionable:  fmt.Sprintf("Investigate: %s", best.Testable),
		})
	}

	if hasObservation(observations, model.PropertyImpossibleTravel, "true") {
		best := BestHypothesis(impossibleTravelHypotheses)
		out = append(out, model.Inference{
			Kind:        model.LogicAbductive,
			Method:      "Diagnostic Reasoning",
			Premise:     "Impossible travel detected",
			Observation: fmt.Sprintf("Best explanation analysis: %d hypotheses considered", len(impossibleTravelHypotheses)),
			Conclusion:  fmt.Sprintf("Most likely cause: %s (likelihood: %d%%)", best.Explanation, int(best.Likelihood*100)),
			Confidence:  best.Likelihood,
			Formula:     "Symptom→Cause: P(Cause|Effect) = max",
			Actionable:  fmt.Sprintf("CRITICAL: %s. If confirmed, change all credentials immediately.", best.Testable),
		})
	}

	return out
}

// BestHypothesis returns the most likely hypothesis; ties go to the one
// declared first.
func BestHypothesis(hypotheses []Hypothesis) Hypothesis {
	best := hypotheses[0]
	for _, h := range hypotheses[1:] {
		if h.Likelihood > best.Likelihood {
			best = h
		}
	}
	return best
}

func isNightHour(hour int) bool {
	if hour < 0 || hour > 23 {
		return false
	}
	return hour < 6 || hour > 22
}

func hasObservation(observations []model.Observation, property, value string) bool {
	for _, obs := range observations {
		if obs.Property == property && obs.Value == value {
			return true
		}
	}
	return false
}
