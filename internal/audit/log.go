// Package audit records every decision and inference report. Entries are
// append-only: nothing here removes or rewrites a recorded entry.
package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ppiankov/vaultgate/internal/model"
)

// Log is an in-memory append-only audit log safe for concurrent use
type Log struct {
	mu      sync.RWMutex
	entries []model.AuditEntry
}

// NewLog creates an empty log
func NewLog() *Log {
	return &Log{}
}

// RecordAudit appends an entry, assigning an ID if it has none
func (l *Log) RecordAudit(_ context.Context, entry model.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// Entries returns a copy of all entries in append order
func (l *Log) Entries() []model.AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded entries
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
