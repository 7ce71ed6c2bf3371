package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.4, cfg.Decision.ThreatWeight)
	assert.Equal(t, 0.4, cfg.Decision.GeoWeight)
	assert.Equal(t, 0.2, cfg.Decision.BehaviorWeight)
	assert.Equal(t, 50.0, cfg.Decision.ApproveThreshold)
	assert.Equal(t, 0.05, cfg.Inference.BreachPrior)
	assert.Equal(t, 0.7, cfg.Inference.SimilarityThreshold)
	assert.Equal(t, 0.8, cfg.Inference.InductionSupport)
	assert.Equal(t, 3, cfg.Inference.InductionMinSample)
}

func TestConfig_Validate_RejectsBadWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Decision.BehaviorWeight = 0.3
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Decision.ThreatWeight = -0.1
	cfg.Decision.GeoWeight = 0.9
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Decision.ApproveThreshold = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Inference.BreachPrior = 1.5
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		value float64
		want  RiskBand
	}{
		{0, BandLow},
		{29.9, BandLow},
		{30, BandModerate},
		{59.9, BandModerate},
		{60, BandHigh},
		{100, BandHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.value), "value %v", tt.value)
	}
	assert.True(t, BandLow < BandModerate && BandModerate < BandHigh)
	assert.Equal(t, "Moderate", BandModerate.String())
}

func TestNewReport_Buckets(t *testing.T) {
	report := NewReport(map[LogicType][]Inference{
		LogicDeductive:   {{Kind: LogicDeductive, Confidence: 1.0}},
		LogicInductive:   {{Kind: LogicInductive, Confidence: 0.94}},
		LogicAnalogical:  {{Kind: LogicAnalogical, Confidence: 0.64}},
		LogicStatistical: {{Kind: LogicStatistical, Confidence: 0.95}},
	})

	assert.Equal(t, 4, report.Total)
	assert.Len(t, report.Certain, 2)
	assert.Len(t, report.Probable, 1)
	assert.Len(t, report.Possible, 1)
	assert.NotNil(t, report.Abductive, "core kinds are always present")
	assert.Nil(t, report.Temporal)
	assert.False(t, report.Empty())

	// Pass order is preserved in All()
	all := report.All()
	require.Len(t, all, 4)
	assert.Equal(t, LogicDeductive, all[0].Kind)
	assert.Equal(t, LogicStatistical, all[3].Kind)
}

func TestNewReport_Empty(t *testing.T) {
	report := NewReport(nil)
	assert.True(t, report.Empty())
	assert.Empty(t, report.All())
}

func TestInference_CertaintyLevel(t *testing.T) {
	assert.Equal(t, "Certain (100%)", Inference{Kind: LogicDeductive, Confidence: 1}.CertaintyLevel())
	assert.Equal(t, "By Analogy (64%)", Inference{Kind: LogicAnalogical, Confidence: 0.64}.CertaintyLevel())
	assert.Equal(t, "Necessary", Inference{Kind: LogicModal, Confidence: 1}.CertaintyLevel())
	assert.Equal(t, "Possible", Inference{Kind: LogicModal, Confidence: 0.6}.CertaintyLevel())
}

func TestAccessHistoryEntry_Position(t *testing.T) {
	lat, lon := 40.7, -74.0
	_, ok := AccessHistoryEntry{Latitude: &lat}.Position()
	assert.False(t, ok)

	pos, ok := AccessHistoryEntry{Latitude: &lat, Longitude: &lon}.Position()
	require.True(t, ok)
	assert.Equal(t, Position{Latitude: 40.7, Longitude: -74.0}, pos)
}

func TestPosition_Valid(t *testing.T) {
	assert.True(t, Position{Latitude: -90, Longitude: 180}.Valid())
	assert.False(t, Position{Latitude: math.NaN(), Longitude: 0}.Valid())
	assert.False(t, Position{Latitude: 0, Longitude: math.Inf(1)}.Valid())
	assert.False(t, Position{Latitude: 90.5, Longitude: 0}.Valid())

	nan, lon := math.NaN(), 2.0
	_, ok := AccessHistoryEntry{Latitude: &nan, Longitude: &lon}.Position()
	assert.False(t, ok)
}

func TestLogicType_TextRoundTrip(t *testing.T) {
	for _, kind := range AllLogicTypes() {
		text, err := kind.MarshalText()
		require.NoError(t, err)

		var got LogicType
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, kind, got)
	}

	var bad LogicType
	assert.Error(t, bad.UnmarshalText([]byte("intuitive")))
}
