// Package llm writes optional plain-language narratives of inference
// reports and decisions. Narratives are advisory: nothing here feeds back
// into a decision.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/vaultgate/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Narrate explains a report (and optionally a decision) in prose
	Narrate(ctx context.Context, req NarrateRequest) (*NarrateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// NarrateRequest contains the input for narrative generation
type NarrateRequest struct {
	Report   model.Report
	Decision *model.Decision

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	MaxTokens int
}

// NarrateResponse contains the generated narrative
type NarrateResponse struct {
	Text string

	// Figures are the percentages the narrative quotes
	Figures []string

	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  int // seconds

	// Strict rejects narratives quoting percentages absent from the input
	Strict    bool
	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:   30,
		Strict:    true,
		MaxTokens: 800,
	}
}

const systemPrompt = "You explain vault access decisions and security inferences to operators. " +
	"You never change, soften or second-guess a decision."

// maxPromptInferences bounds how many inferences the prompt lists
const maxPromptInferences = 12

// BuildPrompt constructs the default narrative prompt
func BuildPrompt(report model.Report, decision *model.Decision) string {
	var b strings.Builder
	b.WriteString(`You are explaining the output of a deterministic vault access engine.

RULES:
1. Only quote percentages and scores that appear below. Do not compute new ones.
2. The decision is final. Describe why it was made; never suggest it should differ.
3. Deductive conclusions are certain; every other kind is an estimate. Say so.
4. If there is little evidence, state that explicitly.
`)

	if decision != nil {
		fmt.Fprintf(&b, "\nDecision: %s (composite risk %.1f/100, confidence %d%%)\n",
			decision.Action, decision.CompositeScore, int(decision.Confidence*100))
		fmt.Fprintf(&b, "Rationale: %s\n", decision.Rationale)
	}

	fmt.Fprintf(&b, "\nInferences: %d total (%d certain, %d probable, %d possible)\n",
		report.Total, len(report.Certain), len(report.Probable), len(report.Possible))
	for i, inf := range report.All() {
		if i >= maxPromptInferences {
			fmt.Fprintf(&b, "... and %d more\n", report.Total-maxPromptInferences)
			break
		}
		fmt.Fprintf(&b, "- [%s] %s: %s (%s)\n", inf.Kind, inf.Method, inf.Conclusion, inf.CertaintyLevel())
	}
	if report.Empty() {
		b.WriteString("(no inferences: the knowledge base was empty)\n")
	}

	b.WriteString("\nWrite 3-5 sentences for a security operator.")
	return b.String()
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func pickInt(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
