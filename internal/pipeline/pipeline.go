// Package pipeline wires knowledge, inference, signals, decisions, audit and
// narratives into the two end-to-end flows the CLI exposes: analyzing a
// knowledge feed and deciding an access scenario.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/vaultgate/internal/cache"
	"github.com/ppiankov/vaultgate/internal/decision"
	"github.com/ppiankov/vaultgate/internal/history"
	"github.com/ppiankov/vaultgate/internal/infer"
	"github.com/ppiankov/vaultgate/internal/knowledge"
	"github.com/ppiankov/vaultgate/internal/llm"
	"github.com/ppiankov/vaultgate/internal/model"
	"github.com/ppiankov/vaultgate/internal/worker"
)

// Pipeline orchestrates analysis and decisions. It is safe for concurrent
// use; batch workers share one Pipeline.
type Pipeline struct {
	config   *model.Config
	infer    *infer.Engine
	lock     decision.ResourceLock
	audit    decision.AuditSink
	store    cache.Cache
	limiter  *worker.Limiter
	narrator *llm.Narrator // nil when narratives are disabled
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithNarrator replaces the narrator built from the LLM config
func WithNarrator(n *llm.Narrator) Option {
	return func(p *Pipeline) { p.narrator = n }
}

// WithClock replaces time.Now for decisions and audit entries
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline. A narrator that fails to initialize is
// logged and skipped; narratives never block a decision.
func NewPipeline(cfg *model.Config, lock decision.ResourceLock, audit decision.AuditSink, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		config: cfg,
		lock:   lock,
		audit:  audit,
		store:  cache.NewMemoryCache(cfg.Gate.PendingTTL, 10*time.Minute),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.infer = infer.NewEngine(cfg.Inference, p.logger.Named("infer"))
	if cfg.Gate.RequestsPerHour > 0 {
		p.limiter = worker.NewLimiter(cfg.Gate.RequestsPerHour, cfg.Gate.Burst)
	}

	if p.narrator == nil && cfg.LLM.Provider != "" {
		n, err := llm.NewNarrator(llm.ConfigFromModel(cfg.LLM), p.logger)
		if err != nil {
			p.logger.Warn("narratives disabled", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		} else {
			p.narrator = n
		}
	}
	return p, nil
}

// gate builds a gate over one history source. Gates share the pipeline's
// cache and limiter, so in-flight guards, pending requests and rates hold
// across scenarios.
func (p *Pipeline) gate(src history.Source) *decision.Gate {
	return decision.NewGate(p.config, src, p.lock, p.audit,
		decision.WithLogger(p.logger.Named("gate")),
		decision.WithClock(p.now),
		decision.WithCache(p.store),
		decision.WithLimiter(p.limiter),
	)
}

// Analysis is the outcome of one inference pass
type Analysis struct {
	ResourceID   string           `json:"resource_id,omitempty"`
	Facts        int              `json:"facts"`
	Observations int              `json:"observations"`
	Report       model.Report     `json:"report"`
	Narrative    *model.Narrative `json:"narrative,omitempty"`
}

// Analyze runs every reasoning strategy over feed and audits the report
func (p *Pipeline) Analyze(ctx context.Context, feed *knowledge.Feed, resourceID string) (*Analysis, error) {
	a, err := p.analyze(ctx, p.gate(history.NewStatic()), feed, resourceID)
	if err != nil {
		return a, err
	}
	p.narrate(ctx, a.Report, nil, &a.Narrative)
	return a, nil
}

func (p *Pipeline) analyze(ctx context.Context, g *decision.Gate, feed *knowledge.Feed, resourceID string) (*Analysis, error) {
	store := knowledge.NewStore()
	if err := store.Load(feed); err != nil {
		return nil, fmt.Errorf("load knowledge: %w", err)
	}

	report := p.infer.PerformCompleteAnalysis(store)
	facts, observations := store.Len()
	a := &Analysis{
		ResourceID:   resourceID,
		Facts:        facts,
		Observations: observations,
		Report:       report,
	}

	if err := g.RecordReport(ctx, resourceID, report, facts, observations); err != nil {
		return a, err
	}
	return a, nil
}

// Outcome is everything produced for one scenario
type Outcome struct {
	Scenario  string           `json:"scenario"`
	Resource  string           `json:"resource_id"`
	Requester string           `json:"requester_id"`
	RequestID string           `json:"request_id"`
	Decision  *model.Decision  `json:"decision,omitempty"`
	Analysis  *Analysis        `json:"analysis,omitempty"`
	Narrative *model.Narrative `json:"narrative,omitempty"`
	Expect    model.Action     `json:"expect,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Run decides one scenario. When the scenario carries knowledge, its
// inference report is audited first and high-confidence conclusions are
// folded into the rationale as advisories. The decision itself only ever
// depends on the risk signals.
func (p *Pipeline) Run(ctx context.Context, s *history.Scenario) (*Outcome, error) {
	out := &Outcome{
		Scenario:  s.Name,
		Resource:  s.ResourceID,
		Requester: s.RequesterID,
		Expect:    s.Expect,
	}
	g := p.gate(s.Source())

	var report *model.Report
	if !s.Knowledge.Empty() {
		a, err := p.analyze(ctx, g, &s.Knowledge, s.ResourceID)
		if err != nil && a == nil {
			// unusable knowledge is not a reason to deny; decide without advisories
			p.logger.Warn("knowledge rejected", zap.String("scenario", s.Name), zap.Error(err))
		} else {
			out.Analysis = a
			report = &a.Report
			if err != nil {
				p.logger.Warn("inference report not audited", zap.String("scenario", s.Name), zap.Error(err))
			}
		}
	}

	req := g.Submit(decision.Request{
		ResourceID:  s.ResourceID,
		RequesterID: s.RequesterID,
		Position:    s.Position,
		Report:      report,
	})
	out.RequestID = req.ID

	d, err := g.Decide(ctx, req)
	if d.Action != "" {
		out.Decision = &d
	}
	if err != nil {
		out.Error = err.Error()
	}
	if out.Decision == nil {
		return out, err
	}

	var r model.Report
	if report != nil {
		r = *report
	}
	p.narrate(ctx, r, out.Decision, &out.Narrative)
	return out, err
}

// DecideScenario implements worker.Decider
func (p *Pipeline) DecideScenario(ctx context.Context, s *history.Scenario) (*model.Decision, error) {
	out, err := p.Run(ctx, s)
	return out.Decision, err
}

// narrate fills dst when a narrator is configured
func (p *Pipeline) narrate(ctx context.Context, report model.Report, d *model.Decision, dst **model.Narrative) {
	if !p.narrator.IsEnabled() {
		return
	}
	n, err := p.narrator.Narrate(ctx, report, d)
	if err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Warn("narrative failed", zap.Error(err))
	}
	*dst = n
}

// NarratorEnabled reports whether narratives will be generated
func (p *Pipeline) NarratorEnabled() bool {
	return p.narrator.IsEnabled()
}
