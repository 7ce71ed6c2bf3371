package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/vaultgate/internal/model"
)

// Narrator wraps a provider and packages its output as a model.Narrative.
// A Narrator with no provider is valid and produces disabled narratives.
type Narrator struct {
	provider Provider
	config   Config
	logger   *zap.Logger
}

// NewNarrator builds the configured provider
func NewNarrator(config Config, logger *zap.Logger) (*Narrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider, err := NewProvider(config, logger)
	if err != nil {
		return nil, err
	}
	return &Narrator{provider: provider, config: config, logger: logger}, nil
}

// NewNarratorWithProvider uses an existing provider
func NewNarratorWithProvider(provider Provider, config Config) *Narrator {
	return &Narrator{provider: provider, config: config, logger: zap.NewNop()}
}

// IsEnabled reports whether a provider is configured
func (n *Narrator) IsEnabled() bool {
	return n != nil && n.provider != nil
}

// ProviderName returns the provider name, or "" when disabled
func (n *Narrator) ProviderName() string {
	if !n.IsEnabled() {
		return ""
	}
	return n.provider.Name()
}

// Narrate explains report and, when non-nil, decision. Failures are returned
// alongside a narrative carrying the failure as a warning, so callers may
// keep going without one.
func (n *Narrator) Narrate(ctx context.Context, report model.Report, decision *model.Decision) (*model.Narrative, error) {
	if !n.IsEnabled() {
		return &model.Narrative{Enabled: false}, nil
	}

	narrative := &model.Narrative{
		Enabled:  true,
		Provider: n.provider.Name(),
		Strict:   n.config.Strict,
	}
	if report.Empty() {
		narrative.Warnings = append(narrative.Warnings, "The knowledge base produced no inferences.")
	}
	if !n.config.Strict {
		narrative.Warnings = append(narrative.Warnings, "Strict mode is off: quoted figures were not checked against the report.")
	}

	timeout := time.Duration(n.config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := n.provider.Narrate(ctx, NarrateRequest{
		Report:    report,
		Decision:  decision,
		Model:     n.config.Model,
		MaxTokens: n.config.MaxTokens,
	})
	if err != nil {
		n.logger.Warn("narrative generation failed",
			zap.String("provider", narrative.Provider), zap.Error(err))
		narrative.Warnings = append(narrative.Warnings, fmt.Sprintf("Narrative unavailable: %v", err))
		return narrative, fmt.Errorf("narrate: %w", err)
	}

	n.logger.Debug("narrative generated",
		zap.String("provider", narrative.Provider),
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.TokensUsed),
		zap.Duration("elapsed", time.Since(start)))

	narrative.Model = resp.Model
	narrative.SummaryMD = resp.Text
	narrative.TokensUsed = resp.TokensUsed
	return narrative, nil
}

// RenderMarkdown renders a narrative as a standalone section
func RenderMarkdown(n *model.Narrative) string {
	if n == nil || !n.Enabled {
		return ""
	}

	var b strings.Builder
	b.WriteString("# Narrative\n\n")
	fmt.Fprintf(&b, "> Written by %s", n.Provider)
	if n.Model != "" {
		fmt.Fprintf(&b, " (%s)", n.Model)
	}
	b.WriteString(". Access decisions are determined independently by the risk engine; this text is advisory.\n\n")

	if n.SummaryMD != "" {
		b.WriteString(n.SummaryMD)
		b.WriteString("\n")
	}

	if len(n.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range n.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}
