// Package infer derives ranked conclusions from a knowledge snapshot using
// deductive, inductive, abductive, analogical and statistical reasoning.
//
// Every strategy is a pure function of (facts, observations): no I/O, no
// mutation, deterministic output order. Two passes over the same snapshot
// produce identical reports.
package infer

import (
	"go.uber.org/zap"

	"github.com/ppiankov/vaultgate/internal/knowledge"
	"github.com/ppiankov/vaultgate/internal/model"
)

// Engine runs the reasoning strategies with a fixed configuration
type Engine struct {
	cfg    model.InferenceConfig
	logger *zap.Logger
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(cfg model.InferenceConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// PerformCompleteAnalysis runs a full pass over a snapshot of the store.
// The store is only read.
func (e *Engine) PerformCompleteAnalysis(store *knowledge.Store) model.Report {
	facts, observations := store.Snapshot()
	return e.Analyze(facts, observations)
}

// Analyze runs Deductive → Inductive → Abductive → Analogical → Statistical,
// then the temporal/modal pass when enabled, and aggregates the results.
// An empty snapshot yields an empty report.
func (e *Engine) Analyze(facts []model.Fact, observations []model.Observation) model.Report {
	byKind := map[model.LogicType][]model.Inference{
		model.LogicDeductive:   e.Deductive(facts, observations),
		model.LogicInductive:   e.Inductive(facts, observations),
		model.LogicAbductive:   e.Abductive(facts, observations),
		model.LogicAnalogical:  e.Analogical(facts, observations),
		model.LogicStatistical: e.Statistical(facts, observations),
	}
	if e.cfg.Extended {
		byKind[model.LogicTemporal] = e.Temporal(facts, observations)
		byKind[model.LogicModal] = e.Modal(facts, observations)
	}

	report := model.NewReport(byKind)

	e.logger.Debug("inference pass complete",
		zap.Int("facts", len(facts)),
		zap.Int("observations", len(observations)),
		zap.Int("deductive", len(report.Deductive)),
		zap.Int("inductive", len(report.Inductive)),
		zap.Int("abductive", len(report.Abductive)),
		zap.Int("analogical", len(report.Analogical)),
		zap.Int("statistical", len(report.Statistical)),
		zap.Int("total", report.Total),
	)
	return report
}
