package infer

import (
	"fmt"

	"github.com/ppiankov/vaultgate/internal/model"
)

// Temporal derives "always P → eventually Q" conclusions: a document that is
// always confidential will eventually need dual-key protection.
func (e *Engine) Temporal(_ []model.Fact, observations []model.Observation) []model.Inference {
	var out []model.Inference
	for _, obs := range observations {
		if obs.Property != model.PropertyConfidential || obs.Value != "true" {
			continue
		}
		out = append(out, model.Inference{
			Kind:        model.LogicTemporal,
			Method:      "Temporal Necessity",
			Premise:     fmt.Sprintf("Document %s is always confidential (□P)", obs.Subject),
			Observation: "Confidential documents eventually require enhanced protection",
			Conclusion:  fmt.Sprintf("Eventually, %s will require dual-key protection (◇Q)", obs.Subject),
			Confidence:  0.85,
			Formula:     "□P → ◇Q",
			Actionable:  "Proactively enable dual-key before it becomes critical",
		})
	}
	return out
}

// Modal derives necessity and possibility conclusions.
func (e *Engine) Modal(_ []model.Fact, observations []model.Observation) []model.Inference {
	var out []model.Inference

	if hasObservation(observations, model.PropertyTopic, "medical") {
		out = append(out, model.Inference{
			Kind:        model.LogicModal,
			Method:      "Necessity",
			Premise:     "Vault contains medical records",
			Observation: "HIPAA regulations apply to all medical data",
			Conclusion:  "HIPAA compliance is NECESSARY (□P)",
			Confidence:  1.0,
			Formula:     "Medical → □(HIPAA)",
			Actionable:  "Enable audit logging, dual-key and compliance reviews",
		})
	}

	if hasObservation(observations, model.PropertyGeographicAnomaly, "true") {
		out = append(out, model.Inference{
			Kind:        model.LogicModal,
			Method:      "Possibility",
			Premise:     "Geographic anomaly detected",
			Observation: "Anomalous patterns can indicate security issues",
			Conclusion:  "Account compromise is POSSIBLE (◇P)",
			Confidence:  0.6,
			Formula:     "Anomaly → ◇(Threat)",
			Actionable:  "Investigate further. Enable additional monitoring.",
		})
	}

	return out
}
