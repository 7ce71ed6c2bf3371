package infer

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ppiankov/vaultgate/internal/model"
)

// inductiveCeiling keeps generalizations strictly below certainty
const inductiveCeiling = 0.99

// Inductive generalizes repeated evidence. Enumerative induction groups
// observations by the person named in the subject; statistical
// generalization checks how often documents of one topic carry dual-key
// protection.
func (e *Engine) Inductive(_ []model.Fact, observations []model.Observation) []model.Inference {
	var out []model.Inference

	counts := make(map[string]map[string]int) // person → property → count
	totals := make(map[string]int)
	for _, obs := range observations {
		person, ok := personName(obs.Subject)
		if !ok {
			continue
		}
		if counts[person] == nil {
			counts[person] = make(map[string]int)
		}
		counts[person][obs.Property]++
		totals[person]++
	}

	for _, person := range sortedKeys(counts) {
		props := counts[person]
		for _, property := range sortedKeys(props) {
			count := props[property]
			if count < e.cfg.InductionMinSample {
				continue
			}
			ratio := float64(count) / float64(totals[person])
			if ratio < e.cfg.InductionSupport {
				continue
			}
			out = append(out, model.Inference{
				Kind:        model.LogicInductive,
				Method:      "Enumerative Induction",
				Premise:     fmt.Sprintf("Observed %d out of %d documents from %s", count, totals[person], person),
				Observation: fmt.Sprintf("%d%% have property: %s", int(ratio*100), property),
				Conclusion:  fmt.Sprintf("Pattern: %s typically creates/sends %s documents", person, property),
				Confidence:  math.Min(0.7+ratio*0.3, inductiveCeiling),
				Formula:     "∀x∈Sample P(x) → ∀x∈Population P(x) (probably)",
				Actionable:  fmt.Sprintf("Tag future %s documents with %s by default", person, property),
			})
		}
	}

	if inf, ok := e.populationGeneralization(observations); ok {
		out = append(out, inf)
	}
	return out
}

func (e *Engine) populationGeneralization(observations []model.Observation) (model.Inference, bool) {
	topic := e.cfg.PopulationTopic
	if topic == "" {
		return model.Inference{}, false
	}

	protected := make(map[string]bool)
	for _, obs := range observations {
		if obs.Property == model.PropertyHasDualKey {
			protected[obs.Subject] = true
		}
	}

	sample, withDualKey := 0, 0
	for _, obs := range observations {
		if obs.Property != model.PropertyTopic || obs.Value != topic {
			continue
		}
		sample++
		if protected[obs.Subject] {
			withDualKey++
		}
	}
	if sample < e.cfg.PopulationMinSample {
		return model.Inference{}, false
	}

	ratio := float64(withDualKey) / float64(sample)
	if ratio < e.cfg.PopulationSupport {
		return model.Inference{}, false
	}
	pct := int(ratio * 100)
	return model.Inference{
		Kind:        model.LogicInductive,
		Method:      "Statistical Generalization",
		Premise:     fmt.Sprintf("%d out of %d %s documents have dual-key protection", withDualKey, sample, topic),
		Observation: fmt.Sprintf("Ratio: %d%%", pct),
		Conclusion:  fmt.Sprintf("Pattern established: %s documents typically require dual-key protection", topic),
		Confidence:  math.Min(ratio, inductiveCeiling),
		Formula:     fmt.Sprintf("P(Sample) = %d%% → P(Population) ≈ %d%%", pct, pct),
		Actionable:  fmt.Sprintf("Apply dual-key to all %s documents by default", topic),
	}, true
}

// personName treats a subject whose first of at least two words is
// capitalized as naming a person, e.g. "Jane Doe contract.pdf" → "Jane Doe".
func personName(subject string) (string, bool) {
	parts := strings.Fields(subject)
	if len(parts) < 2 {
		return "", false
	}
	first := []rune(parts[0])[0]
	if !unicode.IsUpper(first) {
		return "", false
	}
	return parts[0] + " " + parts[1], true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
