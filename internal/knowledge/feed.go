package knowledge

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/vaultgate/internal/model"
)

// Feed is the on-disk form of a knowledge feed (YAML or JSON)
type Feed struct {
	Facts        []model.Fact        `yaml:"facts"`
	Observations []model.Observation `yaml:"observations"`
}

// LoadFeed reads a feed file. Missing confidences default to 1.0.
func LoadFeed(path string) (*Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read feed: %v", model.ErrInputUnavailable, err)
	}
	return ParseFeed(data)
}

// ParseFeed decodes a feed document
func ParseFeed(data []byte) (*Feed, error) {
	feed := &Feed{}
	if err := yaml.Unmarshal(data, feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// UnmarshalYAML decodes a feed, defaulting missing confidences to 1.0, so
// a feed can also be embedded in larger documents.
func (f *Feed) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Facts        []rawFact        `yaml:"facts"`
		Observations []rawObservation `yaml:"observations"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*f = Feed{}
	for _, fact := range raw.Facts {
		f.Facts = append(f.Facts, model.Fact{
			Subject:    fact.Subject,
			Predicate:  fact.Predicate,
			Object:     fact.Object,
			Source:     fact.Source,
			Confidence: valueOr(fact.Confidence, 1.0),
		})
	}
	for _, o := range raw.Observations {
		f.Observations = append(f.Observations, model.Observation{
			Subject:    o.Subject,
			Property:   o.Property,
			Value:      o.Value,
			Timestamp:  o.Timestamp,
			Confidence: valueOr(o.Confidence, 1.0),
		})
	}
	return nil
}

// Empty reports whether the feed carries nothing
func (f *Feed) Empty() bool {
	return f == nil || len(f.Facts)+len(f.Observations) == 0
}

type rawFact struct {
	Subject    string   `yaml:"subject"`
	Predicate  string   `yaml:"predicate"`
	Object     string   `yaml:"object"`
	Source     string   `yaml:"source"`
	Confidence *float64 `yaml:"confidence"`
}

type rawObservation struct {
	Subject    string    `yaml:"subject"`
	Property   string    `yaml:"property"`
	Value      string    `yaml:"value"`
	Timestamp  time.Time `yaml:"timestamp"`
	Confidence *float64  `yaml:"confidence"`
}

// Load appends every entry of the feed, stopping at the first rejected one
func (s *Store) Load(feed *Feed) error {
	for _, f := range feed.Facts {
		if err := s.AddFact(f); err != nil {
			return err
		}
	}
	for _, o := range feed.Observations {
		if err := s.AddObservation(o); err != nil {
			return err
		}
	}
	return nil
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
