// Package signal computes the three risk signals that feed an access
// decision. Each signal is a pure function of an access history snapshot.
package signal

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/vaultgate/internal/model"
)

// Collector computes threat, geospatial and behavioral risk
type Collector struct {
	cfg model.SignalsConfig
}

// NewCollector creates a collector with the given baselines and windows
func NewCollector(cfg model.SignalsConfig) *Collector {
	return &Collector{cfg: cfg}
}

// Collect computes all three signals concurrently. current may be nil when
// the requester's position is unknown. The history slice is not modified.
func (c *Collector) Collect(ctx context.Context, history []model.AccessHistoryEntry, current *model.Position) (model.RiskSignal, error) {
	recent := NewestFirst(history)

	var sig model.RiskSignal
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := egCtx.Err(); err != nil {
			return err
		}
		sig.ThreatScore = c.threat(recent)
		return nil
	})
	eg.Go(func() error {
		if err := egCtx.Err(); err != nil {
			return err
		}
		sig.GeoRisk = c.geo(recent, current)
		return nil
	})
	eg.Go(func() error {
		if err := egCtx.Err(); err != nil {
			return err
		}
		sig.BehaviorScore = c.behavior(recent)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return model.RiskSignal{}, fmt.Errorf("collect signals: %w", err)
	}
	return sig, nil
}

// ThreatScore is 10 points per failed access among the most recent entries,
// capped at 100. An empty history scores the new-resource baseline.
func (c *Collector) ThreatScore(history []model.AccessHistoryEntry) float64 {
	return c.threat(NewestFirst(history))
}

// GeoRisk maps the distance from current to the nearest recent positioned
// entry onto a risk tier.
func (c *Collector) GeoRisk(history []model.AccessHistoryEntry, current *model.Position) float64 {
	return c.geo(NewestFirst(history), current)
}

// BehaviorScore flags bursts of rapid access among the most recent entries.
func (c *Collector) BehaviorScore(history []model.AccessHistoryEntry) float64 {
	return c.behavior(NewestFirst(history))
}

func (c *Collector) threat(recent []model.AccessHistoryEntry) float64 {
	if len(recent) == 0 {
		return c.cfg.NewResourceThreat
	}
	failed := 0
	for _, e := range window(recent, c.cfg.ThreatWindow) {
		if e.AccessType == model.AccessFailed {
			failed++
		}
	}
	return math.Min(float64(failed)*c.cfg.FailedAttemptWeight, 100)
}

func (c *Collector) geo(recent []model.AccessHistoryEntry, current *model.Position) float64 {
	if current == nil || !current.Valid() {
		return c.cfg.UnknownLocationRisk
	}

	nearest := math.Inf(1)
	for _, e := range window(recent, c.cfg.GeoWindow) {
		if pos, ok := e.Position(); ok {
			nearest = math.Min(nearest, Haversine(*current, pos))
		}
	}
	if math.IsInf(nearest, 1) {
		return c.cfg.FirstLocationRisk
	}
	return DistanceRisk(nearest)
}

// behavior slides a RapidAccessCount-wide window over the most recent
// entries; any window spanning less than RapidAccessSpan is a burst.
func (c *Collector) behavior(recent []model.AccessHistoryEntry) float64 {
	if len(recent) < c.cfg.MinBehaviorHistory {
		return c.cfg.BaselineBehavior
	}
	w := window(recent, c.cfg.BehaviorWindow)
	n := c.cfg.RapidAccessCount
	if n < 1 {
		n = 1
	}
	for i := 0; i+n <= len(w); i++ {
		span := w[i].Timestamp.Sub(w[i+n-1].Timestamp)
		if span < 0 {
			span = -span
		}
		if span < c.cfg.RapidAccessSpan {
			return c.cfg.RapidAccessRisk
		}
	}
	return c.cfg.NormalCadenceRisk
}

// DistanceRisk maps a distance in km to its geospatial risk tier
func DistanceRisk(km float64) float64 {
	switch {
	case km < 1:
		return 5
	case km < 10:
		return 10
	case km < 50:
		return 20
	case km < 200:
		return 40
	default:
		return 60
	}
}

// NewestFirst returns a copy of history ordered by descending timestamp.
// Entries with equal timestamps keep their original order.
func NewestFirst(history []model.AccessHistoryEntry) []model.AccessHistoryEntry {
	out := make([]model.AccessHistoryEntry, len(history))
	copy(out, history)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func window(entries []model.AccessHistoryEntry, n int) []model.AccessHistoryEntry {
	if n < len(entries) {
		return entries[:n]
	}
	return entries
}
