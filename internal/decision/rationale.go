package decision

import (
	"fmt"
	"strings"

	"github.com/ppiankov/vaultgate/internal/model"
)

// rationale is a deterministic explanation built only from its inputs
func (e *Engine) rationale(sig model.RiskSignal, composite float64, action model.Action) string {
	named := []struct {
		label string
		value float64
	}{
		{"threat", sig.ThreatScore},
		{"location", sig.GeoRisk},
		{"behavior", sig.BehaviorScore},
	}

	var b strings.Builder
	if action == model.ActionApprove {
		fmt.Fprintf(&b, "Access approved: composite risk %.1f is below the %.1f threshold.",
			composite, e.cfg.ApproveThreshold)
	} else {
		fmt.Fprintf(&b, "Access denied: composite risk %.1f meets or exceeds the %.1f threshold.",
			composite, e.cfg.ApproveThreshold)
	}

	for _, s := range named {
		fmt.Fprintf(&b, " %s risk %s (%.1f).", capitalize(s.label), model.BandFor(s.value), s.value)
	}

	if action == model.ActionDeny {
		var exceeded []string
		for _, s := range named {
			if s.value > 50 {
				exceeded = append(exceeded, fmt.Sprintf("%s (%.1f)", s.label, s.value))
			}
		}
		if len(exceeded) > 0 {
			fmt.Fprintf(&b, " Signals above 50: %s.", strings.Join(exceeded, ", "))
		} else {
			b.WriteString(" No single signal exceeded 50; the combined score reached the threshold.")
		}
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
