package audit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/vaultgate/internal/model"
)

func decisionEntry(resource string) model.AuditEntry {
	return model.AuditEntry{
		Kind:           model.AuditDecision,
		ResourceID:     resource,
		RequesterID:    "alice",
		Signals:        &model.RiskSignal{ThreatScore: 10, GeoRisk: 30, BehaviorScore: 20},
		CompositeScore: 20,
		Decision:       &model.Decision{Action: model.ActionApprove, CompositeScore: 20, Confidence: 0.8},
		Executed:       true,
	}
}

func TestLog_AppendsInOrder(t *testing.T) {
	log := NewLog()
	ctx := context.Background()

	require.NoError(t, log.RecordAudit(ctx, decisionEntry("v1")))
	require.NoError(t, log.RecordAudit(ctx, decisionEntry("v2")))

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "v1", entries[0].ResourceID)
	assert.Equal(t, "v2", entries[1].ResourceID)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)

	entries[0].ResourceID = "mutated"
	assert.Equal(t, "v1", log.Entries()[0].ResourceID)
}

func TestLog_ConcurrentAppends(t *testing.T) {
	log := NewLog()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = log.RecordAudit(context.Background(), decisionEntry(fmt.Sprintf("v%d", i)))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, log.Len())
}

func TestFileSink_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.jsonl")
	sink, err := NewFileSink(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.RecordAudit(ctx, decisionEntry("v1")))
	require.NoError(t, sink.RecordAudit(ctx, model.AuditEntry{
		Kind:   model.AuditInferenceReport,
		Report: &model.Report{Total: 0},
	}))
	require.NoError(t, sink.Close())

	entries, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.AuditDecision, entries[0].Kind)
	assert.Equal(t, 20.0, entries[0].CompositeScore)
	assert.Equal(t, model.ActionApprove, entries[0].Decision.Action)
	assert.Equal(t, model.AuditInferenceReport, entries[1].Kind)
	assert.NotNil(t, entries[1].Report)
}

func TestFileSink_AppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	for i := 0; i < 2; i++ {
		sink, err := NewFileSink(path)
		require.NoError(t, err)
		require.NoError(t, sink.RecordAudit(context.Background(), decisionEntry("v1")))
		require.NoError(t, sink.Close())
	}

	entries, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFileSink_WriteAfterClose(t *testing.T) {
	sink, err := NewFileSink(filepath.Join(t.TempDir(), "audit.jsonl"))
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	err = sink.RecordAudit(context.Background(), decisionEntry("v1"))
	assert.ErrorIs(t, err, model.ErrAuditSink)
}

type failingSink struct{}

func (failingSink) RecordAudit(context.Context, model.AuditEntry) error {
	return errors.New("disk full")
}

func TestMultiSink_SharesIDAndJoinsErrors(t *testing.T) {
	a, b := NewLog(), NewLog()
	multi := NewMultiSink(a, failingSink{}, b)

	err := multi.RecordAudit(context.Background(), decisionEntry("v1"))
	assert.ErrorIs(t, err, model.ErrAuditSink)
	assert.Contains(t, err.Error(), "disk full")

	require.Equal(t, 1, a.Len())
	require.Equal(t, 1, b.Len())
	assert.Equal(t, a.Entries()[0].ID, b.Entries()[0].ID)
}
