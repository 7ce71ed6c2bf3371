package decision

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/vaultgate/internal/model"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(model.DefaultConfig().Decision)
}

func TestDecide_NewResourceApproves(t *testing.T) {
	d, err := newTestEngine().Decide(model.RiskSignal{ThreatScore: 10, GeoRisk: 30, BehaviorScore: 20}, fixedTime)
	require.NoError(t, err)

	assert.Equal(t, model.ActionApprove, d.Action)
	assert.InDelta(t, 20.0, d.CompositeScore, 1e-9)
	assert.InDelta(t, 0.8, d.Confidence, 1e-9)
	assert.Equal(t, fixedTime, d.Timestamp)
	assert.Equal(t, "Access approved: composite risk 20.0 is below the 50.0 threshold."+
		" Threat risk Low (10.0). Location risk Moderate (30.0). Behavior risk Low (20.0).", d.Rationale)
}

func TestDecide_FailedAttemptsFarAwayDenies(t *testing.T) {
	d, err := newTestEngine().Decide(model.RiskSignal{ThreatScore: 60, GeoRisk: 60, BehaviorScore: 15}, fixedTime)
	require.NoError(t, err)

	assert.Equal(t, model.ActionDeny, d.Action)
	assert.InDelta(t, 51.0, d.CompositeScore, 1e-9)
	assert.InDelta(t, 0.51, d.Confidence, 1e-9)
	assert.Contains(t, d.Rationale, "Signals above 50: threat (60.0), location (60.0).")
}

func TestDecide_BoundaryDenies(t *testing.T) {
	d, err := newTestEngine().Decide(model.RiskSignal{ThreatScore: 50, GeoRisk: 50, BehaviorScore: 50}, fixedTime)
	require.NoError(t, err)

	assert.Equal(t, 50.0, d.CompositeScore)
	assert.Equal(t, model.ActionDeny, d.Action)
	assert.Contains(t, d.Rationale, "No single signal exceeded 50")
}

func TestDecide_CompositeFormula(t *testing.T) {
	e := newTestEngine()
	for threat := 0.0; threat <= 100; threat += 12.5 {
		for geo := 0.0; geo <= 100; geo += 12.5 {
			for behavior := 0.0; behavior <= 100; behavior += 25 {
				sig := model.RiskSignal{ThreatScore: threat, GeoRisk: geo, BehaviorScore: behavior}
				d, err := e.Decide(sig, fixedTime)
				require.NoError(t, err)

				want := 0.4*threat + 0.4*geo + 0.2*behavior
				assert.InDelta(t, want, d.CompositeScore, 1e-9)
				assert.GreaterOrEqual(t, d.CompositeScore, 0.0)
				assert.LessOrEqual(t, d.CompositeScore, 100.0)
				assert.GreaterOrEqual(t, d.Confidence, 0.0)
				assert.LessOrEqual(t, d.Confidence, 1.0)
			}
		}
	}
}

func TestDecide_Monotonic(t *testing.T) {
	e := newTestEngine()
	raise := []func(model.RiskSignal, float64) model.RiskSignal{
		func(s model.RiskSignal, v float64) model.RiskSignal { s.ThreatScore = v; return s },
		func(s model.RiskSignal, v float64) model.RiskSignal { s.GeoRisk = v; return s },
		func(s model.RiskSignal, v float64) model.RiskSignal { s.BehaviorScore = v; return s },
	}

	for _, set := range raise {
		for a := 0.0; a <= 100; a += 20 {
			for b := 0.0; b <= 100; b += 20 {
				base := model.RiskSignal{ThreatScore: a, GeoRisk: b, BehaviorScore: a}
				denied := false
				for v := 0.0; v <= 100; v += 5 {
					d, err := e.Decide(set(base, v), fixedTime)
					require.NoError(t, err)
					if denied {
						assert.Equal(t, model.ActionDeny, d.Action, "raising a signal turned deny into approve")
					}
					denied = denied || d.Action == model.ActionDeny
				}
			}
		}
	}
}

func TestDecide_InvalidSignal(t *testing.T) {
	e := newTestEngine()
	for _, sig := range []model.RiskSignal{
		{ThreatScore: -1},
		{GeoRisk: 100.5},
		{BehaviorScore: math.NaN()},
	} {
		_, err := e.Decide(sig, fixedTime)
		assert.ErrorIs(t, err, model.ErrInvalidSignal)
	}
}

func TestDecide_RationaleIsReproducible(t *testing.T) {
	e := newTestEngine()
	sig := model.RiskSignal{ThreatScore: 40, GeoRisk: 70, BehaviorScore: 35}
	first, err := e.Decide(sig, fixedTime)
	require.NoError(t, err)
	second, err := e.Decide(sig, fixedTime.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first.Rationale, second.Rationale)
	assert.Contains(t, first.Rationale, "Location risk High (70.0)")
	assert.Contains(t, first.Rationale, "Behavior risk Moderate (35.0)")
}

func TestUnavailable(t *testing.T) {
	d := newTestEngine().Unavailable(model.ErrInputUnavailable, fixedTime)

	assert.Equal(t, model.ActionDeny, d.Action)
	assert.True(t, d.SignalsUnavailable)
	assert.Equal(t, 0.0, d.Confidence)
	assert.Contains(t, d.Rationale, "signals unavailable")
}

func TestAdvise(t *testing.T) {
	e := newTestEngine()
	d, err := e.Decide(model.RiskSignal{ThreatScore: 10, GeoRisk: 10, BehaviorScore: 10}, fixedTime)
	require.NoError(t, err)

	report := model.NewReport(map[model.LogicType][]model.Inference{
		model.LogicDeductive: {{
			Kind:       model.LogicDeductive,
			Method:     "Modus Tollens",
			Conclusion: "Vault security is compromised",
			Confidence: 1.0,
		}},
		model.LogicAnalogical: {{
			Kind:       model.LogicAnalogical,
			Method:     "Analogical Transfer",
			Conclusion: "A likely has: topic = legal",
			Confidence: 0.64,
		}},
	})

	advised := e.Advise(d, &report)
	assert.Equal(t, d.Action, advised.Action)
	assert.Equal(t, d.CompositeScore, advised.CompositeScore)
	assert.Equal(t, d.Confidence, advised.Confidence)
	assert.Contains(t, advised.Rationale, "Advisories: Vault security is compromised (Modus Tollens, Certain (100%)).")
	assert.NotContains(t, advised.Rationale, "topic = legal")

	assert.Equal(t, d, e.Advise(d, nil))
}
