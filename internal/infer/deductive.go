package infer

import (
	"fmt"
	"math"

	"github.com/ppiankov/vaultgate/internal/model"
)

// Deductive applies modus ponens, modus tollens and hypothetical syllogism.
// Schema conclusions are certain (1.0); a syllogism over facts is only as
// certain as its weakest premise.
func (e *Engine) Deductive(facts []model.Fact, observations []model.Observation) []model.Inference {
	var out []model.Inference

	// Modus ponens: confidential → requires protection
	for _, obs := range observations {
		if obs.Property != model.PropertyConfidential || obs.Value != "true" {
			continue
		}
		out = append(out, model.Inference{
			Kind:        model.LogicDeductive,
			Method:      "Modus Ponens",
			Premise:     "If a document is confidential, then it requires dual-key protection",
			Observation: fmt.Sprintf("Document '%s' is confidential", obs.Subject),
			Conclusion:  fmt.Sprintf("Document '%s' requires dual-key protection", obs.Subject),
			Confidence:  1.0,
			Formula:     "P→Q, P ⊢ Q",
			Actionable:  fmt.Sprintf("Enable dual-key authentication for %s", obs.Subject),
		})
	}

	// Modus tollens: secure → no breach; breach observed → not secure
	for _, obs := range observations {
		if obs.Property == model.PropertyBreachDetected && obs.Value == "true" {
			out = append(out, model.Inference{
				Kind:        model.LogicDeductive,
				Method:      "Modus Tollens",
				Premise:     "If the vault is secure, then no breaches occur",
				Observation: "Breach was detected",
				Conclusion:  "Vault security is compromised",
				Confidence:  1.0,
				Formula:     "P→Q, ¬Q ⊢ ¬P",
				Actionable:  "Immediate security audit required. Change all vault credentials.",
			})
			break
		}
	}

	// Hypothetical syllogism: (A works_at B) ∧ (B located_in C) ⊢ (A located_in C)
	for _, worksAt := range facts {
		if worksAt.Predicate != model.PredicateWorksAt {
			continue
		}
		for _, locatedIn := range facts {
			if locatedIn.Predicate != model.PredicateLocatedIn || locatedIn.Subject != worksAt.Object {
				continue
			}
			out = append(out, model.Inference{
				Kind:   model.LogicDeductive,
				Method: "Hypothetical Syllogism",
				Premise: fmt.Sprintf("If %s works at %s, and %s is located in %s",
					worksAt.Subject, worksAt.Object, worksAt.Object, locatedIn.Object),
				Observation: "Both premises are recorded",
				Conclusion:  fmt.Sprintf("%s is located in %s", worksAt.Subject, locatedIn.Object),
				Confidence:  math.Min(worksAt.Confidence, locatedIn.Confidence),
				Formula:     "P→Q, Q→R ⊢ P→R",
			})
		}
	}

	return out
}
