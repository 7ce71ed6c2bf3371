// Package decision turns risk signals into binary, auditable access
// decisions and runs the full request flow around them.
package decision

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ppiankov/vaultgate/internal/model"
)

// Engine applies the weighted composite and the approval threshold.
// It is pure: the same signals always yield the same decision.
type Engine struct {
	cfg model.DecisionConfig
}

// NewEngine creates an engine with fixed weights and threshold
func NewEngine(cfg model.DecisionConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Composite returns the weighted sum of the three signals
func (e *Engine) Composite(sig model.RiskSignal) float64 {
	return e.cfg.ThreatWeight*sig.ThreatScore +
		e.cfg.GeoWeight*sig.GeoRisk +
		e.cfg.BehaviorWeight*sig.BehaviorScore
}

// Decide approves when the composite is strictly below the threshold and
// denies otherwise. A signal outside [0,100] aborts with ErrInvalidSignal;
// it is never clamped.
func (e *Engine) Decide(sig model.RiskSignal, at time.Time) (model.Decision, error) {
	if err := validate(sig); err != nil {
		return model.Decision{}, err
	}

	composite := e.Composite(sig)
	action := model.ActionDeny
	confidence := composite / 100
	if composite < e.cfg.ApproveThreshold {
		action = model.ActionApprove
		confidence = 1 - composite/100
	}

	return model.Decision{
		Action:         action,
		CompositeScore: composite,
		Confidence:     confidence,
		Rationale:      e.rationale(sig, composite, action),
		Timestamp:      at,
		Signals:        sig,
	}, nil
}

// Unavailable is the fail-closed denial used when signals cannot be computed
func (e *Engine) Unavailable(cause error, at time.Time) model.Decision {
	return model.Decision{
		Action:             model.ActionDeny,
		CompositeScore:     0,
		Confidence:         0,
		Rationale:          fmt.Sprintf("Access denied: signals unavailable (%v). Risk could not be evaluated.", cause),
		Timestamp:          at,
		SignalsUnavailable: true,
	}
}

// Advise appends high-confidence inferences from report to the rationale.
// The action, score and confidence are left untouched.
func (e *Engine) Advise(d model.Decision, report *model.Report) model.Decision {
	if report == nil {
		return d
	}
	var notes []string
	for _, inf := range report.All() {
		if inf.Confidence >= e.cfg.AdvisoryMinimum {
			notes = append(notes, fmt.Sprintf("%s (%s, %s)", inf.Conclusion, inf.Method, inf.CertaintyLevel()))
		}
	}
	if len(notes) == 0 {
		return d
	}
	d.Rationale += " Advisories: " + strings.Join(notes, "; ") + "."
	return d
}

func validate(sig model.RiskSignal) error {
	for _, s := range []struct {
		name  string
		value float64
	}{
		{"threat score", sig.ThreatScore},
		{"geo risk", sig.GeoRisk},
		{"behavior score", sig.BehaviorScore},
	} {
		if math.IsNaN(s.value) || s.value < 0 || s.value > 100 {
			return fmt.Errorf("%w: %s = %v", model.ErrInvalidSignal, s.name, s.value)
		}
	}
	return nil
}
