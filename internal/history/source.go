// Package history supplies access logs to the decision gate.
package history

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/vaultgate/internal/model"
)

// Static serves access logs held in memory. Unknown resources have an
// empty history.
type Static struct {
	mu      sync.RWMutex
	entries map[string][]model.AccessHistoryEntry
}

// NewStatic creates an empty source
func NewStatic() *Static {
	return &Static{entries: make(map[string][]model.AccessHistoryEntry)}
}

// Set replaces the history of a resource
func (s *Static) Set(resourceID string, entries []model.AccessHistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[resourceID] = append([]model.AccessHistoryEntry(nil), entries...)
}

// Append records one more access for a resource
func (s *Static) Append(resourceID string, entry model.AccessHistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[resourceID] = append(s.entries[resourceID], entry)
}

// History returns a copy of the resource's log
func (s *Static) History(ctx context.Context, resourceID string) ([]model.AccessHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.AccessHistoryEntry(nil), s.entries[resourceID]...), nil
}

// Failing is a source that always fails, e.g. to rehearse fail-closed
// behavior from a scenario file
type Failing struct {
	Reason string
}

// History always returns an error
func (f Failing) History(context.Context, string) ([]model.AccessHistoryEntry, error) {
	return nil, fmt.Errorf("history source failed: %s", f.Reason)
}

// File reads a resource→entries YAML (or JSON) document on every call, so
// edits are picked up without a restart.
type File struct {
	Path string
}

// History loads the file and returns the resource's entries
func (f File) History(ctx context.Context, resourceID string) ([]model.AccessHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	var doc map[string][]model.AccessHistoryEntry
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", f.Path, err)
	}
	return doc[resourceID], nil
}
