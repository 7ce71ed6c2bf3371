package infer

import (
	"fmt"
	"sort"

	"github.com/ppiankov/vaultgate/internal/model"
)

// subjectProfile is everything observed about one subject
type subjectProfile struct {
	pairs        map[string]struct{} // "property:value"
	properties   map[string]struct{}
	observations []model.Observation // insertion order
}

// Analogical transfers properties between similar subjects. For every pair
// whose Jaccard similarity reaches the threshold, each property one subject
// has and the other lacks is proposed for the other, discounted relative to
// the raw similarity.
func (e *Engine) Analogical(_ []model.Fact, observations []model.Observation) []model.Inference {
	profiles := buildProfiles(observations)
	subjects := make([]string, 0, len(profiles))
	for s := range profiles {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	var out []model.Inference
	for i, a := range subjects {
		for _, b := range subjects[i+1:] {
			sim := Jaccard(profiles[a].pairs, profiles[b].pairs)
			if sim < e.cfg.SimilarityThreshold {
				continue
			}
			out = append(out, e.transfer(a, b, profiles[a], profiles[b], sim)...)
			out = append(out, e.transfer(b, a, profiles[b], profiles[a], sim)...)
		}
	}
	return out
}

// transfer proposes the properties of source that target lacks
func (e *Engine) transfer(target, source string, tp, sp *subjectProfile, sim float64) []model.Inference {
	var out []model.Inference
	seen := make(map[string]struct{})
	for _, obs := range sp.observations {
		if _, has := tp.properties[obs.Property]; has {
			continue
		}
		if _, dup := seen[obs.Pair()]; dup {
			continue
		}
		seen[obs.Pair()] = struct{}{}
		out = append(out, model.Inference{
			Kind:        model.LogicAnalogical,
			Method:      "Analogical Transfer",
			Premise:     fmt.Sprintf("%s is %d%% similar to %s", target, int(sim*100+0.5), source),
			Observation: fmt.Sprintf("%s has property: %s = %s", source, obs.Property, obs.Value),
			Conclusion:  fmt.Sprintf("%s likely has: %s = %s", target, obs.Property, obs.Value),
			Confidence:  sim * e.cfg.AnalogicalDiscount,
			Formula:     "Sim(A,B) ∧ P(B) → P(A) (probably)",
			Actionable:  fmt.Sprintf("Verify and apply %s to %s", obs.Property, target),
		})
	}
	return out
}

// Similarity returns the Jaccard similarity of two subjects' observation sets
func Similarity(observations []model.Observation, a, b string) float64 {
	profiles := buildProfiles(observations)
	pa, pb := profiles[a], profiles[b]
	if pa == nil || pb == nil {
		return 0
	}
	return Jaccard(pa.pairs, pb.pairs)
}

// Jaccard returns |A∩B| / |A∪B|, or 0 when both sets are empty
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func buildProfiles(observations []model.Observation) map[string]*subjectProfile {
	profiles := make(map[string]*subjectProfile)
	for _, obs := range observations {
		p := profiles[obs.Subject]
		if p == nil {
			p = &subjectProfile{
				pairs:      make(map[string]struct{}),
				properties: make(map[string]struct{}),
			}
			profiles[obs.Subject] = p
		}
		p.pairs[obs.Pair()] = struct{}{}
		p.properties[obs.Property] = struct{}{}
		p.observations = append(p.observations, obs)
	}
	return profiles
}
