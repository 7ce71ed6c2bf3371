package infer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/ppiankov/vaultgate/internal/model"
)

// z-score of a two-sided 95% interval
const z95 = 1.96

// Statistical applies a Bayesian breach update when any breach indicator is
// present, and a 95% confidence interval over numeric access hours.
func (e *Engine) Statistical(_ []model.Fact, observations []model.Observation) []model.Inference {
	var out []model.Inference

	if indicators := breachIndicators(observations); len(indicators) > 0 {
		prior := e.cfg.BreachPrior
		posterior := Posterior(prior, e.cfg.LikelihoodIfBreach, e.cfg.LikelihoodIfNoBreach)

		actionable := "Monitor closely for additional indicators."
		if posterior > 0.5 {
			actionable = "High probability of breach. Initiate incident response immediately."
		}
		out = append(out, model.Inference{
			Kind:        model.LogicStatistical,
			Method:      "Bayesian Inference",
			Premise:     fmt.Sprintf("Base rate of security breaches: %s", percent(prior)),
			Observation: fmt.Sprintf("Detected %d breach indicator(s): %s", len(indicators), strings.Join(indicators, ", ")),
			Conclusion:  fmt.Sprintf("Probability of active breach: %s", percent(posterior)),
			Confidence:  posterior,
			Formula:     "P(H|E) = P(E|H)·P(H) / [P(E|H)·P(H) + P(E|¬H)·P(¬H)]",
			Actionable:  actionable,
		})
	}

	var hours []float64
	for _, obs := range observations {
		if obs.Property != model.PropertyAccessHour {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(obs.Value), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			hours = append(hours, v)
		}
	}
	if len(hours) >= e.cfg.IntervalMinSample && len(hours) > 0 {
		mean, stdDev, margin := ConfidenceInterval(hours)
		low, high := mean-margin, mean+margin
		out = append(out, model.Inference{
			Kind:        model.LogicStatistical,
			Method:      "Confidence Interval",
			Premise:     fmt.Sprintf("Analyzed %d access events", len(hours)),
			Observation: fmt.Sprintf("Mean access hour: %.1f, standard deviation: %.1f hours", mean, stdDev),
			Conclusion:  fmt.Sprintf("95%% confidence interval: %.1f to %.1f", low, high),
			Confidence:  0.95,
			Formula:     "CI = μ ± (1.96 × σ/√n)",
			Actionable:  fmt.Sprintf("Access outside the %.1f-%.1f window should trigger alerts", low, high),
		})
	}

	return out
}

// Posterior applies Bayes' rule:
// P(H|E) = P(E|H)·P(H) / [P(E|H)·P(H) + P(E|¬H)·(1-P(H))]
func Posterior(prior, likelihoodIfH, likelihoodIfNotH float64) float64 {
	numerator := likelihoodIfH * prior
	denominator := numerator + likelihoodIfNotH*(1-prior)
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// ConfidenceInterval returns the mean, population standard deviation and
// the 95% margin of error (1.96·σ/√n) of values. values must be non-empty.
func ConfidenceInterval(values []float64) (mean, stdDev, margin float64) {
	n := float64(len(values))
	for _, v := range values {
		mean += v
	}
	mean /= n

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= n
	stdDev = math.Sqrt(variance)
	margin = z95 * stdDev / math.Sqrt(n)
	return mean, stdDev, margin
}

// breachIndicators lists which of the four breach indicators are present
func breachIndicators(observations []model.Observation) []string {
	var found []string
	if hasObservation(observations, model.PropertyNightAccess, "high") {
		found = append(found, "high night access")
	}
	if hasObservation(observations, model.PropertyImpossibleTravel, "true") {
		found = append(found, "impossible travel")
	}
	if failedAttempts(observations) > 5 {
		found = append(found, "repeated failed attempts")
	}
	if hasObservation(observations, model.PropertyRapidDeletion, "true") {
		found = append(found, "rapid deletion")
	}
	return found
}

// failedAttempts takes the larger of an explicit failed_attempts count and
// the number of observations whose value is "failed".
func failedAttempts(observations []model.Observation) int {
	reported, tallied := 0, 0
	for _, obs := range observations {
		if obs.Property == model.PropertyFailedAttempts {
			if n := extractCount(obs.Value); n > reported {
				reported = n
			}
		}
		if strings.EqualFold(obs.Value, string(model.AccessFailed)) {
			tallied++
		}
	}
	if tallied > reported {
		return tallied
	}
	return reported
}

// extractCount reads the digits of a value, e.g. "7 attempts" → 7
func extractCount(value string) int {
	var digits strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

func percent(p float64) string {
	return strconv.FormatFloat(p*100, 'f', 1, 64) + "%"
}
