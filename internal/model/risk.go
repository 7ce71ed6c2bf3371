package model

import (
	"fmt"
	"math"
	"time"
)

// AccessType classifies a vault access log entry
type AccessType string

const (
	AccessOpened   AccessType = "opened"
	AccessClosed   AccessType = "closed"
	AccessViewed   AccessType = "viewed"
	AccessModified AccessType = "modified"
	AccessDeleted  AccessType = "deleted"
	AccessFailed   AccessType = "failed"
)

// Position is a WGS84 latitude/longitude pair in degrees
type Position struct {
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lon" yaml:"lon"`
}

// Valid reports whether both coordinates are finite and in range
func (p Position) Valid() bool {
	return !math.IsNaN(p.Latitude) && !math.IsNaN(p.Longitude) &&
		p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// AccessHistoryEntry is one record of the external access log. Read-only here.
type AccessHistoryEntry struct {
	Timestamp  time.Time  `json:"timestamp" yaml:"timestamp"`
	AccessType AccessType `json:"access_type" yaml:"access_type"`
	Latitude   *float64   `json:"lat,omitempty" yaml:"lat,omitempty"`
	Longitude  *float64   `json:"lon,omitempty" yaml:"lon,omitempty"`
	UserID     string     `json:"user_id,omitempty" yaml:"user_id,omitempty"`
}

// Position returns the entry location, if it carries both coordinates and
// they form a valid position
func (e AccessHistoryEntry) Position() (Position, bool) {
	if e.Latitude == nil || e.Longitude == nil {
		return Position{}, false
	}
	pos := Position{Latitude: *e.Latitude, Longitude: *e.Longitude}
	return pos, pos.Valid()
}

// RiskSignal holds the three independent risk values, each in [0,100]
type RiskSignal struct {
	ThreatScore   float64 `json:"threat_score"`
	GeoRisk       float64 `json:"geo_risk"`
	BehaviorScore float64 `json:"behavior_score"`
}

// RiskBand is an ordered qualitative band for a 0-100 risk value
type RiskBand int

const (
	BandLow      RiskBand = iota // < 30
	BandModerate                 // 30-59
	BandHigh                     // >= 60
)

// BandFor maps a 0-100 value to its band
func BandFor(value float64) RiskBand {
	switch {
	case value >= 60:
		return BandHigh
	case value >= 30:
		return BandModerate
	default:
		return BandLow
	}
}

func (b RiskBand) String() string {
	switch b {
	case BandLow:
		return "Low"
	case BandModerate:
		return "Moderate"
	case BandHigh:
		return "High"
	default:
		return fmt.Sprintf("band(%d)", int(b))
	}
}

// Action is the binary outcome of an access decision
type Action string

const (
	ActionApprove Action = "approve"
	ActionDeny    Action = "deny"
)

// Decision is the immutable record of one access request outcome
type Decision struct {
	Action         Action     `json:"action"`
	CompositeScore float64    `json:"composite_score"` // [0,100]
	Confidence     float64    `json:"confidence"`      // [0,1], derived from the score
	Rationale      string     `json:"rationale"`
	Timestamp      time.Time  `json:"timestamp"`
	Signals        RiskSignal `json:"signals"`

	// SignalsUnavailable marks a fail-closed denial caused by missing input
	// rather than by risk.
	SignalsUnavailable bool `json:"signals_unavailable,omitempty"`
}

// Approved reports whether the decision grants access
func (d Decision) Approved() bool {
	return d.Action == ActionApprove
}
