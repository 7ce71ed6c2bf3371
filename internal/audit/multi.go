package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ppiankov/vaultgate/internal/model"
)

// Sink receives audit entries
type Sink interface {
	RecordAudit(ctx context.Context, entry model.AuditEntry) error
}

// MultiSink fans one entry out to several sinks (e.g. memory + file).
// Every sink is attempted; failures are joined.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a fan-out sink
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// RecordAudit assigns the entry one ID so every sink stores the same record
func (m *MultiSink) RecordAudit(ctx context.Context, entry model.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordAudit(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", model.ErrAuditSink, errors.Join(errs...))
	}
	return nil
}
