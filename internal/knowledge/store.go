// Package knowledge holds the append-only Fact/Observation store that feeds
// one inference pass.
package knowledge

import (
	"fmt"
	"math"
	"sync"

	"github.com/ppiankov/vaultgate/internal/model"
)

// Store is a mutex-guarded, append-only collection of facts and observations.
// Duplicate triples are kept and count as independent evidence.
type Store struct {
	mu           sync.RWMutex
	facts        []model.Fact
	observations []model.Observation
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// AddFact appends a fact after checking its confidence bounds
func (s *Store) AddFact(f model.Fact) error {
	if err := checkConfidence(f.Confidence); err != nil {
		return fmt.Errorf("fact %q %s %q: %w", f.Subject, f.Predicate, f.Object, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts = append(s.facts, f)
	return nil
}

// AddObservation appends an observation after checking its confidence bounds
func (s *Store) AddObservation(o model.Observation) error {
	if err := checkConfidence(o.Confidence); err != nil {
		return fmt.Errorf("observation %q %s=%q: %w", o.Subject, o.Property, o.Value, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observations = append(s.observations, o)
	return nil
}

// AllFacts returns a copy of every fact in insertion order
func (s *Store) AllFacts() []model.Fact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Fact, len(s.facts))
	copy(out, s.facts)
	return out
}

// AllObservations returns a copy of every observation in insertion order
func (s *Store) AllObservations() []model.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Observation, len(s.observations))
	copy(out, s.observations)
	return out
}

// Snapshot returns consistent copies of both collections
func (s *Store) Snapshot() ([]model.Fact, []model.Observation) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	facts := make([]model.Fact, len(s.facts))
	copy(facts, s.facts)
	obs := make([]model.Observation, len(s.observations))
	copy(obs, s.observations)
	return facts, obs
}

// Len returns the number of facts and observations
func (s *Store) Len() (facts, observations int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts), len(s.observations)
}

// Clear drops everything so the store can be rebuilt for the next run
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts = nil
	s.observations = nil
}

func checkConfidence(c float64) error {
	if math.IsNaN(c) || c < 0 || c > 1 {
		return fmt.Errorf("%w: %v", model.ErrInvalidConfidence, c)
	}
	return nil
}
