package model

import "time"

// Fact is a subject-predicate-object triple reported by a collaborator
// (e.g., "Jane Doe" works_at "Acme").
type Fact struct {
	Subject    string  `json:"subject" yaml:"subject"`
	Predicate  string  `json:"predicate" yaml:"predicate"`
	Object     string  `json:"object" yaml:"object"`
	Source     string  `json:"source,omitempty" yaml:"source,omitempty"` // Opaque provenance id (document, feed)
	Confidence float64 `json:"confidence" yaml:"confidence"`             // [0,1]
}

// Observation is a single measured attribute of a subject
// (e.g., "Document-A" is_confidential = "true").
type Observation struct {
	Subject    string    `json:"subject" yaml:"subject"`
	Property   string    `json:"property" yaml:"property"`
	Value      string    `json:"value" yaml:"value"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Confidence float64   `json:"confidence" yaml:"confidence"` // [0,1]
}

// Pair serializes the observation as "property:value", the unit used for
// similarity between subjects.
func (o Observation) Pair() string {
	return o.Property + ":" + o.Value
}

// Well-known predicates and properties the inference strategies react to.
const (
	PredicateWorksAt   = "works_at"
	PredicateLocatedIn = "located_in"

	PropertyConfidential      = "is_confidential"
	PropertyBreachDetected    = "breach_detected"
	PropertyAccessTime        = "access_time"
	PropertyAccessHour        = "access_hour"
	PropertyAccessType        = "access_type"
	PropertyImpossibleTravel  = "impossible_travel"
	PropertyNightAccess       = "night_access"
	PropertyFailedAttempts    = "failed_attempts"
	PropertyRapidDeletion     = "rapid_deletion"
	PropertyTopic             = "topic"
	PropertyHasDualKey        = "has_dual_key"
	PropertyGeographicAnomaly = "geographic_anomaly"
)
