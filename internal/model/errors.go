package model

import "errors"

var (
	// ErrInputUnavailable means history or knowledge could not be read.
	// Decisions fail closed to Deny.
	ErrInputUnavailable = errors.New("input unavailable")

	// ErrInvalidSignal means a computed risk signal fell outside [0,100].
	// This is a bug; the decision is aborted rather than clamped.
	ErrInvalidSignal = errors.New("invalid risk signal")

	// ErrInvalidConfidence rejects a Fact or Observation at insertion.
	ErrInvalidConfidence = errors.New("confidence out of range [0,1]")

	// ErrDecisionInFlight rejects a concurrent request for the same
	// (resource, requester) key.
	ErrDecisionInFlight = errors.New("decision already in flight")

	// ErrRateLimited rejects a request that exceeds the requester's rate.
	ErrRateLimited = errors.New("request rate exceeded")

	// ErrResourceLock wraps failures of the resource lock collaborator.
	ErrResourceLock = errors.New("resource lock failed")

	// ErrAuditSink wraps failures of the audit sink.
	ErrAuditSink = errors.New("audit sink failed")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)
