package decision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/vaultgate/internal/cache"
	"github.com/ppiankov/vaultgate/internal/model"
	"github.com/ppiankov/vaultgate/internal/signal"
	"github.com/ppiankov/vaultgate/internal/worker"
)

// HistorySource supplies the access log of a resource
type HistorySource interface {
	History(ctx context.Context, resourceID string) ([]model.AccessHistoryEntry, error)
}

// ResourceLock owns the lock state of resources
type ResourceLock interface {
	OpenResource(ctx context.Context, resourceID string) error
}

// AuditSink durably records audit entries
type AuditSink interface {
	RecordAudit(ctx context.Context, entry model.AuditEntry) error
}

// Gate runs the full request flow: rate limit, in-flight guard, history,
// signals, decision, resource lock, pending cleanup and audit.
type Gate struct {
	engine    *Engine
	collector *signal.Collector
	history   HistorySource
	lock      ResourceLock
	audit     AuditSink

	pending *Registry
	store   cache.Cache // pending requests and in-flight guards
	limiter *worker.Limiter

	limiterSet bool

	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Gate
type Option func(*Gate)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithCache shares a cache for pending requests and in-flight guards
func WithCache(c cache.Cache) Option {
	return func(g *Gate) { g.store = c }
}

// WithLimiter shares a per-requester limiter across gates. A nil limiter
// disables rate limiting.
func WithLimiter(l *worker.Limiter) Option {
	return func(g *Gate) {
		g.limiter = l
		g.limiterSet = true
	}
}

// NewGate wires the engines from cfg to the three collaborators
func NewGate(cfg *model.Config, history HistorySource, lock ResourceLock, audit AuditSink, opts ...Option) *Gate {
	g := &Gate{
		engine:    NewEngine(cfg.Decision),
		collector: signal.NewCollector(cfg.Signals),
		history:   history,
		lock:      lock,
		audit:     audit,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.store == nil {
		g.store = cache.NewMemoryCache(cfg.Gate.PendingTTL, 10*time.Minute)
	}
	g.pending = NewRegistry(g.store, cfg.Gate.PendingTTL)
	if !g.limiterSet && cfg.Gate.RequestsPerHour > 0 {
		g.limiter = worker.NewLimiter(cfg.Gate.RequestsPerHour, cfg.Gate.Burst)
	}
	return g
}

// Submit registers a pending request and returns it with its ID
func (g *Gate) Submit(req Request) Request {
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = g.now()
	}
	req = g.pending.Add(req)
	g.logger.Debug("request submitted",
		zap.String("request_id", req.ID),
		zap.String("resource", req.ResourceID),
		zap.String("requester", req.RequesterID),
	)
	return req
}

// Pending lists the requester's pending requests for a resource
func (g *Gate) Pending(resourceID, requesterID string) []Request {
	return g.pending.List(resourceID, requesterID)
}

// Decide evaluates req and applies the outcome.
//
// Errors:
//   - ErrRateLimited, ErrDecisionInFlight: rejected before evaluation, nothing audited
//   - ErrInvalidSignal: evaluation aborted, nothing audited
//   - ErrInputUnavailable: returned with the fail-closed Deny, which is audited
//   - ErrResourceLock, ErrAuditSink: returned with the decision that was made
func (g *Gate) Decide(ctx context.Context, req Request) (model.Decision, error) {
	if g.limiter != nil && !g.limiter.Allow(req.RequesterID) {
		return model.Decision{}, fmt.Errorf("%w: requester %s", model.ErrRateLimited, req.RequesterID)
	}

	// The guard lives until this call returns, however long the
	// collaborators take.
	guard := cache.Key("inflight", req.ResourceID, req.RequesterID)
	token := uuid.NewString()
	if err := g.store.Add(guard, token, cache.NoExpiration); err != nil {
		return model.Decision{}, fmt.Errorf("%w: resource %s requester %s",
			model.ErrDecisionInFlight, req.ResourceID, req.RequesterID)
	}
	defer g.release(guard, token)

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	// single-use: whatever the outcome, this request is no longer pending
	g.pending.Remove(req)

	history, err := g.history.History(ctx, req.ResourceID)
	if err != nil {
		return g.failClosed(ctx, req, fmt.Errorf("%w: history: %v", model.ErrInputUnavailable, err))
	}
	sig, err := g.collector.Collect(ctx, history, req.Position)
	if err != nil {
		return g.failClosed(ctx, req, fmt.Errorf("%w: %v", model.ErrInputUnavailable, err))
	}

	decision, err := g.engine.Decide(sig, g.now())
	if err != nil {
		g.logger.Error("decision aborted",
			zap.String("resource", req.ResourceID),
			zap.String("requester", req.RequesterID),
			zap.Error(err),
		)
		return model.Decision{}, err
	}
	decision = g.engine.Advise(decision, req.Report)

	entry := g.entry(req, decision)
	var errs []error
	if decision.Approved() {
		if err := g.lock.OpenResource(ctx, req.ResourceID); err != nil {
			lockErr := fmt.Errorf("%w: %v", model.ErrResourceLock, err)
			entry.Executed = false
			entry.ExecutionError = lockErr.Error()
			errs = append(errs, lockErr)
		} else if n := g.pending.Clear(req.ResourceID, req.RequesterID); n > 0 {
			g.logger.Debug("cleared pending requests",
				zap.String("resource", req.ResourceID),
				zap.String("requester", req.RequesterID),
				zap.Int("count", n),
			)
		}
	}

	if err := g.record(ctx, entry); err != nil {
		errs = append(errs, err)
	}

	g.logger.Info("access decision",
		zap.String("request_id", req.ID),
		zap.String("resource", req.ResourceID),
		zap.String("requester", req.RequesterID),
		zap.String("action", string(decision.Action)),
		zap.Float64("composite", decision.CompositeScore),
		zap.Float64("threat", sig.ThreatScore),
		zap.Float64("geo", sig.GeoRisk),
		zap.Float64("behavior", sig.BehaviorScore),
		zap.Bool("executed", entry.Executed),
	)
	return decision, errors.Join(errs...)
}

// RecordReport audits one inference report together with its input sizes
func (g *Gate) RecordReport(ctx context.Context, resourceID string, report model.Report, facts, observations int) error {
	return g.record(ctx, model.AuditEntry{
		ID:           uuid.NewString(),
		Kind:         model.AuditInferenceReport,
		Timestamp:    g.now(),
		ResourceID:   resourceID,
		Report:       &report,
		Executed:     true,
		Facts:        facts,
		Observations: observations,
	})
}

// release drops the in-flight guard only if this call still owns it
func (g *Gate) release(guard, token string) {
	if owner, ok := g.store.Get(guard); ok && owner == token {
		g.store.Delete(guard)
	}
}

func (g *Gate) failClosed(ctx context.Context, req Request, cause error) (model.Decision, error) {
	decision := g.engine.Unavailable(cause, g.now())
	g.logger.Warn("signals unavailable, denying",
		zap.String("request_id", req.ID),
		zap.String("resource", req.ResourceID),
		zap.String("requester", req.RequesterID),
		zap.Error(cause),
	)
	entry := g.entry(req, decision)
	entry.Signals = nil
	if err := g.record(ctx, entry); err != nil {
		return decision, errors.Join(cause, err)
	}
	return decision, cause
}

func (g *Gate) entry(req Request, decision model.Decision) model.AuditEntry {
	sig := decision.Signals
	return model.AuditEntry{
		ID:             uuid.NewString(),
		Kind:           model.AuditDecision,
		Timestamp:      decision.Timestamp,
		ResourceID:     req.ResourceID,
		RequesterID:    req.RequesterID,
		RequestID:      req.ID,
		Signals:        &sig,
		CompositeScore: decision.CompositeScore,
		Decision:       &decision,
		Executed:       true,
	}
}

func (g *Gate) record(ctx context.Context, entry model.AuditEntry) error {
	if err := g.audit.RecordAudit(ctx, entry); err != nil {
		g.logger.Error("audit write failed",
			zap.String("entry_id", entry.ID),
			zap.String("kind", string(entry.Kind)),
			zap.Error(err),
		)
		if errors.Is(err, model.ErrAuditSink) {
			return err
		}
		return fmt.Errorf("%w: %v", model.ErrAuditSink, err)
	}
	return nil
}
