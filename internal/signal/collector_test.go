package signal

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ppiankov/vaultgate/internal/model"
)

var (
	berlin = model.Position{Latitude: 52.5200, Longitude: 13.4050}
	paris  = model.Position{Latitude: 48.8566, Longitude: 2.3522}
	base   = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newTestCollector() *Collector {
	return NewCollector(model.DefaultConfig().Signals)
}

func entry(at time.Time, kind model.AccessType, pos *model.Position) model.AccessHistoryEntry {
	e := model.AccessHistoryEntry{Timestamp: at, AccessType: kind, UserID: "u1"}
	if pos != nil {
		lat, lon := pos.Latitude, pos.Longitude
		e.Latitude, e.Longitude = &lat, &lon
	}
	return e
}

// hourly returns n entries one hour apart, oldest first
func hourly(n int, kind model.AccessType, pos *model.Position) []model.AccessHistoryEntry {
	out := make([]model.AccessHistoryEntry, n)
	for i := range out {
		out[i] = entry(base.Add(time.Duration(i)*time.Hour), kind, pos)
	}
	return out
}

func TestCollect_EmptyHistoryUnknownPosition(t *testing.T) {
	defer goleak.VerifyNone(t)

	sig, err := newTestCollector().Collect(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, model.RiskSignal{ThreatScore: 10, GeoRisk: 30, BehaviorScore: 20}, sig)
}

func TestCollect_FailedAttemptsFarAway(t *testing.T) {
	defer goleak.VerifyNone(t)

	history := hourly(10, model.AccessOpened, &berlin)
	for i := 4; i < 10; i++ {
		history[i].AccessType = model.AccessFailed
	}

	sig, err := newTestCollector().Collect(context.Background(), history, &paris)
	require.NoError(t, err)
	assert.Equal(t, 60.0, sig.ThreatScore)
	assert.Equal(t, 60.0, sig.GeoRisk)
	assert.Equal(t, 15.0, sig.BehaviorScore)
}

func TestCollect_CanceledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestCollector().Collect(ctx, hourly(3, model.AccessOpened, nil), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestThreatScore(t *testing.T) {
	c := newTestCollector()

	assert.Equal(t, 0.0, c.ThreatScore(hourly(5, model.AccessOpened, nil)))
	assert.Equal(t, 100.0, c.ThreatScore(hourly(12, model.AccessFailed, nil)))

	// failures older than the ten most recent entries are ignored
	history := append(hourly(3, model.AccessFailed, nil), entriesAfter(3, 10, model.AccessViewed)...)
	assert.Equal(t, 0.0, c.ThreatScore(history))
}

func TestThreatScore_CountsNewestRegardlessOfInputOrder(t *testing.T) {
	c := newTestCollector()
	history := append(entriesAfter(3, 10, model.AccessViewed), hourly(3, model.AccessFailed, nil)...)
	assert.Equal(t, 0.0, c.ThreatScore(history))
}

func entriesAfter(offsetHours, n int, kind model.AccessType) []model.AccessHistoryEntry {
	out := make([]model.AccessHistoryEntry, n)
	for i := range out {
		out[i] = entry(base.Add(time.Duration(offsetHours+i)*time.Hour), kind, nil)
	}
	return out
}

func TestGeoRisk(t *testing.T) {
	c := newTestCollector()
	near := model.Position{Latitude: 52.5210, Longitude: 13.4050}
	broken := model.Position{Latitude: math.NaN(), Longitude: 13.4050}

	tests := []struct {
		name    string
		history []model.AccessHistoryEntry
		current *model.Position
		want    float64
	}{
		{"unknown position", hourly(3, model.AccessOpened, &berlin), nil, 30},
		{"no positioned entries", hourly(3, model.AccessOpened, nil), &berlin, 25},
		{"same place", hourly(3, model.AccessOpened, &berlin), &near, 5},
		{"far away", hourly(3, model.AccessOpened, &berlin), &paris, 60},
		{
			name:    "non-finite entry skipped",
			history: append(hourly(3, model.AccessOpened, &berlin), entry(base.Add(5*time.Hour), model.AccessOpened, &broken)),
			current: &berlin,
			want:    5,
		},
		{"non-finite current position", hourly(3, model.AccessOpened, &berlin), &broken, 30},
		{
			name:    "positioned entry outside window",
			history: append(hourly(1, model.AccessOpened, &berlin), entriesAfter(1, 20, model.AccessViewed)...),
			current: &berlin,
			want:    25,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.GeoRisk(tt.history, tt.current))
		})
	}
}

func TestDistanceRisk(t *testing.T) {
	assert.Equal(t, 5.0, DistanceRisk(0.5))
	assert.Equal(t, 10.0, DistanceRisk(1))
	assert.Equal(t, 20.0, DistanceRisk(10))
	assert.Equal(t, 40.0, DistanceRisk(50))
	assert.Equal(t, 60.0, DistanceRisk(200))
}

func TestHaversine(t *testing.T) {
	assert.InDelta(t, 878, Haversine(berlin, paris), 5)
	assert.InDelta(t, Haversine(berlin, paris), Haversine(paris, berlin), 1e-9)
	assert.Equal(t, 0.0, Haversine(berlin, berlin))
}

func TestBehaviorScore(t *testing.T) {
	c := newTestCollector()

	assert.Equal(t, 20.0, c.BehaviorScore(hourly(2, model.AccessOpened, nil)))
	assert.Equal(t, 15.0, c.BehaviorScore(hourly(10, model.AccessOpened, nil)))

	burst := make([]model.AccessHistoryEntry, 5)
	for i := range burst {
		burst[i] = entry(base.Add(time.Duration(i)*time.Minute), model.AccessViewed, nil)
	}
	assert.Equal(t, 35.0, c.BehaviorScore(burst))

	// five rapid entries among otherwise hourly traffic
	mixed := append(hourly(5, model.AccessOpened, nil), burst...)
	for i := range mixed[5:] {
		mixed[5+i].Timestamp = base.Add(10*time.Hour + time.Duration(i)*10*time.Second)
	}
	assert.Equal(t, 35.0, c.BehaviorScore(mixed))

	// exactly five minutes across five entries is not rapid
	slow := make([]model.AccessHistoryEntry, 5)
	for i := range slow {
		slow[i] = entry(base.Add(time.Duration(i)*75*time.Second), model.AccessViewed, nil)
	}
	assert.Equal(t, 15.0, c.BehaviorScore(slow))
}

func TestNewestFirst_DoesNotMutateInput(t *testing.T) {
	history := hourly(3, model.AccessOpened, nil)
	sorted := NewestFirst(history)

	assert.True(t, sorted[0].Timestamp.After(sorted[2].Timestamp))
	assert.True(t, history[0].Timestamp.Before(history[2].Timestamp))
}
