package model

import "time"

// AuditKind distinguishes what an audit entry records
type AuditKind string

const (
	AuditDecision        AuditKind = "decision"
	AuditInferenceReport AuditKind = "inference_report"
)

// AuditEntry is one append-only audit record. Decision entries carry the raw
// signals and composite score; report entries carry the full Report.
type AuditEntry struct {
	ID          string    `json:"id"`
	Kind        AuditKind `json:"kind"`
	Timestamp   time.Time `json:"timestamp"`
	ResourceID  string    `json:"resource_id,omitempty"`
	RequesterID string    `json:"requester_id,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`

	Signals        *RiskSignal `json:"signals,omitempty"`
	CompositeScore float64     `json:"composite_score,omitempty"`
	Decision       *Decision   `json:"decision,omitempty"`

	// Executed is false when an approval could not open the resource.
	Executed       bool   `json:"executed"`
	ExecutionError string `json:"execution_error,omitempty"`

	Report *Report `json:"report,omitempty"`
	// Facts and Observations record the inputs of an inference pass.
	Facts        int `json:"facts,omitempty"`
	Observations int `json:"observations,omitempty"`
}
