package model

import (
	"fmt"
	"math"
	"time"
)

// Config is the complete static configuration. Engines copy the values they
// need at construction; nothing here is consulted per call.
type Config struct {
	Decision    DecisionConfig    `yaml:"decision" mapstructure:"decision"`
	Signals     SignalsConfig     `yaml:"signals" mapstructure:"signals"`
	Inference   InferenceConfig   `yaml:"inference" mapstructure:"inference"`
	Gate        GateConfig        `yaml:"gate" mapstructure:"gate"`
	Audit       AuditConfig       `yaml:"audit" mapstructure:"audit"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// DecisionConfig holds composite weights and the approval threshold
type DecisionConfig struct {
	ThreatWeight     float64 `yaml:"threat_weight" mapstructure:"threat_weight"`
	GeoWeight        float64 `yaml:"geo_weight" mapstructure:"geo_weight"`
	BehaviorWeight   float64 `yaml:"behavior_weight" mapstructure:"behavior_weight"`
	ApproveThreshold float64 `yaml:"approve_threshold" mapstructure:"approve_threshold"` // approve when composite < threshold
	AdvisoryMinimum  float64 `yaml:"advisory_minimum" mapstructure:"advisory_minimum"`   // inference confidence folded into rationale
}

// SignalsConfig holds the named baselines and windows of the signal collector
type SignalsConfig struct {
	NewResourceThreat   float64       `yaml:"new_resource_threat" mapstructure:"new_resource_threat"`
	FailedAttemptWeight float64       `yaml:"failed_attempt_weight" mapstructure:"failed_attempt_weight"`
	ThreatWindow        int           `yaml:"threat_window" mapstructure:"threat_window"`
	UnknownLocationRisk float64       `yaml:"unknown_location_risk" mapstructure:"unknown_location_risk"`
	FirstLocationRisk   float64       `yaml:"first_location_risk" mapstructure:"first_location_risk"`
	GeoWindow           int           `yaml:"geo_window" mapstructure:"geo_window"`
	BaselineBehavior    float64       `yaml:"baseline_behavior" mapstructure:"baseline_behavior"`
	MinBehaviorHistory  int           `yaml:"min_behavior_history" mapstructure:"min_behavior_history"`
	BehaviorWindow      int           `yaml:"behavior_window" mapstructure:"behavior_window"`
	RapidAccessCount    int           `yaml:"rapid_access_count" mapstructure:"rapid_access_count"`
	RapidAccessSpan     time.Duration `yaml:"rapid_access_span" mapstructure:"rapid_access_span"`
	RapidAccessRisk     float64       `yaml:"rapid_access_risk" mapstructure:"rapid_access_risk"`
	NormalCadenceRisk   float64       `yaml:"normal_cadence_risk" mapstructure:"normal_cadence_risk"`
}

// InferenceConfig holds the thresholds of the reasoning strategies
type InferenceConfig struct {
	BreachPrior          float64 `yaml:"breach_prior" mapstructure:"breach_prior"`
	LikelihoodIfBreach   float64 `yaml:"likelihood_if_breach" mapstructure:"likelihood_if_breach"`
	LikelihoodIfNoBreach float64 `yaml:"likelihood_if_no_breach" mapstructure:"likelihood_if_no_breach"`
	SimilarityThreshold  float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	AnalogicalDiscount   float64 `yaml:"analogical_discount" mapstructure:"analogical_discount"`
	InductionSupport     float64 `yaml:"induction_support" mapstructure:"induction_support"`
	InductionMinSample   int     `yaml:"induction_min_sample" mapstructure:"induction_min_sample"`
	PopulationMinSample  int     `yaml:"population_min_sample" mapstructure:"population_min_sample"`
	PopulationSupport    float64 `yaml:"population_support" mapstructure:"population_support"`
	PopulationTopic      string  `yaml:"population_topic" mapstructure:"population_topic"`
	NightAccessMinimum   int     `yaml:"night_access_minimum" mapstructure:"night_access_minimum"`
	IntervalMinSample    int     `yaml:"interval_min_sample" mapstructure:"interval_min_sample"`
	Extended             bool    `yaml:"extended" mapstructure:"extended"` // temporal/modal pass
}

// GateConfig configures request handling around the decision engine
type GateConfig struct {
	PendingTTL      time.Duration `yaml:"pending_ttl" mapstructure:"pending_ttl"`
	RequestsPerHour float64       `yaml:"requests_per_hour" mapstructure:"requests_per_hour"` // 0 disables limiting
	Burst           int           `yaml:"burst" mapstructure:"burst"`
}

// AuditConfig configures the durable audit sink
type AuditConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // JSONL file; empty keeps the log in memory only
}

// ConcurrencyConfig configures batch workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LLMConfig configures optional narrative generation
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	Strict    bool   `yaml:"strict" mapstructure:"strict"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`

	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// OutputConfig configures rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the standard configuration
func DefaultConfig() *Config {
	return &Config{
		Decision: DecisionConfig{
			ThreatWeight:     0.4,
			GeoWeight:        0.4,
			BehaviorWeight:   0.2,
			ApproveThreshold: 50.0,
			AdvisoryMinimum:  CertainThreshold,
		},
		Signals: SignalsConfig{
			NewResourceThreat:   10,
			FailedAttemptWeight: 10,
			ThreatWindow:        10,
			UnknownLocationRisk: 30,
			FirstLocationRisk:   25,
			GeoWindow:           20,
			BaselineBehavior:    20,
			MinBehaviorHistory:  3,
			BehaviorWindow:      10,
			RapidAccessCount:    5,
			RapidAccessSpan:     300 * time.Second,
			RapidAccessRisk:     35,
			NormalCadenceRisk:   15,
		},
		Inference: InferenceConfig{
			BreachPrior:          0.05,
			LikelihoodIfBreach:   0.90,
			LikelihoodIfNoBreach: 0.10,
			SimilarityThreshold:  0.7,
			AnalogicalDiscount:   0.8,
			InductionSupport:     0.8,
			InductionMinSample:   3,
			PopulationMinSample:  5,
			PopulationSupport:    0.7,
			PopulationTopic:      "legal",
			NightAccessMinimum:   5,
			IntervalMinSample:    10,
			Extended:             false,
		},
		Gate: GateConfig{
			PendingTTL:      24 * time.Hour,
			RequestsPerHour: 0,
			Burst:           5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		LLM: LLMConfig{
			Timeout:   30,
			Strict:    true,
			MaxTokens: 800,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

// Validate checks that the configuration describes a usable decision policy
func (c *Config) Validate() error {
	d := c.Decision
	for name, w := range map[string]float64{
		"threat_weight":   d.ThreatWeight,
		"geo_weight":      d.GeoWeight,
		"behavior_weight": d.BehaviorWeight,
	} {
		if math.IsNaN(w) || w < 0 || w > 1 {
			return fmt.Errorf("%w: decision.%s = %v outside [0,1]", ErrInvalidConfig, name, w)
		}
	}
	if sum := d.ThreatWeight + d.GeoWeight + d.BehaviorWeight; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%w: decision weights sum to %v, want 1", ErrInvalidConfig, sum)
	}
	if d.ApproveThreshold <= 0 || d.ApproveThreshold > 100 {
		return fmt.Errorf("%w: decision.approve_threshold = %v outside (0,100]", ErrInvalidConfig, d.ApproveThreshold)
	}

	in := c.Inference
	for name, p := range map[string]float64{
		"breach_prior":            in.BreachPrior,
		"likelihood_if_breach":    in.LikelihoodIfBreach,
		"likelihood_if_no_breach": in.LikelihoodIfNoBreach,
		"similarity_threshold":    in.SimilarityThreshold,
		"analogical_discount":     in.AnalogicalDiscount,
		"induction_support":       in.InductionSupport,
		"population_support":      in.PopulationSupport,
	} {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: inference.%s = %v outside [0,1]", ErrInvalidConfig, name, p)
		}
	}
	if in.InductionMinSample < 1 {
		return fmt.Errorf("%w: inference.induction_min_sample must be >= 1", ErrInvalidConfig)
	}

	s := c.Signals
	if s.ThreatWindow < 1 || s.GeoWindow < 1 || s.BehaviorWindow < 1 {
		return fmt.Errorf("%w: signal windows must be >= 1", ErrInvalidConfig)
	}
	return nil
}
