package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/vaultgate/internal/knowledge"
	"github.com/ppiankov/vaultgate/internal/model"
)

// Source supplies the access log of a resource
type Source interface {
	History(ctx context.Context, resourceID string) ([]model.AccessHistoryEntry, error)
}

// Scenario is a self-contained access request: who asks for what, from
// where, with the resource's access log and an optional knowledge feed.
type Scenario struct {
	Name        string                     `yaml:"name"`
	ResourceID  string                     `yaml:"resource_id"`
	RequesterID string                     `yaml:"requester_id"`
	Position    *model.Position            `yaml:"position,omitempty"`
	History     []model.AccessHistoryEntry `yaml:"history"`
	Knowledge   knowledge.Feed             `yaml:"knowledge"`

	// HistoryError makes the scenario's history source fail with this reason
	HistoryError string `yaml:"history_error,omitempty"`
	// Expect is the outcome the scenario should produce, if stated
	Expect model.Action `yaml:"expect,omitempty"`
}

// Source returns the history source the scenario describes
func (s *Scenario) Source() Source {
	if s.HistoryError != "" {
		return Failing{Reason: s.HistoryError}
	}
	src := NewStatic()
	src.Set(s.ResourceID, s.History)
	return src
}

// LoadScenario reads a scenario file (YAML or JSON). A missing name
// defaults to the file's base name.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read scenario: %v", model.ErrInputUnavailable, err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// ParseScenario decodes and checks a scenario document
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if s.ResourceID == "" {
		return nil, fmt.Errorf("parse scenario: resource_id is required")
	}
	if s.RequesterID == "" {
		return nil, fmt.Errorf("parse scenario: requester_id is required")
	}
	switch s.Expect {
	case "", model.ActionApprove, model.ActionDeny:
	default:
		return nil, fmt.Errorf("parse scenario: expect must be approve or deny, got %q", s.Expect)
	}
	for i, e := range s.History {
		if e.Timestamp.IsZero() {
			return nil, fmt.Errorf("parse scenario: history[%d] has no timestamp", i)
		}
		if (e.Latitude == nil) != (e.Longitude == nil) {
			return nil, fmt.Errorf("parse scenario: history[%d] needs both lat and lon", i)
		}
		if e.Latitude != nil {
			if _, ok := e.Position(); !ok {
				return nil, fmt.Errorf("parse scenario: history[%d] has invalid coordinates %v,%v", i, *e.Latitude, *e.Longitude)
			}
		}
	}
	if s.Position != nil && !s.Position.Valid() {
		return nil, fmt.Errorf("parse scenario: position %v,%v is invalid", s.Position.Latitude, s.Position.Longitude)
	}
	return &s, nil
}
