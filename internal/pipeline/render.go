package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/vaultgate/internal/llm"
	"github.com/ppiankov/vaultgate/internal/model"
	"github.com/ppiankov/vaultgate/internal/worker"
)

// Renderer writes outcomes and analyses as JSON and Markdown
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

const footer = "\n---\n\nGenerated by vaultgate. Access decisions depend only on threat, location and behavior signals; inferences and narratives are advisory.\n"

// RenderJSON writes v as indented JSON to path
func (r *Renderer) RenderJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// WriteJSON writes v as indented JSON to w
func (r *Renderer) WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// RenderMarkdown writes markdown to path, adding the footer if configured
func (r *Renderer) RenderMarkdown(markdown, path string) error {
	if r.includeFooter {
		markdown += footer
	}
	return writeFile(path, []byte(markdown))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// OutcomeMarkdown renders one scenario outcome
func OutcomeMarkdown(o *Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Access Decision: %s\n\n", o.Scenario)
	fmt.Fprintf(&b, "- Resource: `%s`\n", o.Resource)
	fmt.Fprintf(&b, "- Requester: `%s`\n", o.Requester)
	if o.RequestID != "" {
		fmt.Fprintf(&b, "- Request: `%s`\n", o.RequestID)
	}

	if d := o.Decision; d != nil {
		fmt.Fprintf(&b, "\n## Outcome: %s\n\n", strings.ToUpper(string(d.Action)))
		fmt.Fprintf(&b, "%s\n\n", d.Rationale)
		b.WriteString("| Signal | Score | Band |\n|---|---|---|\n")
		for _, row := range []struct {
			name  string
			value float64
		}{
			{"Threat", d.Signals.ThreatScore},
			{"Location", d.Signals.GeoRisk},
			{"Behavior", d.Signals.BehaviorScore},
		} {
			fmt.Fprintf(&b, "| %s | %.1f | %s |\n", row.name, row.value, model.BandFor(row.value))
		}
		fmt.Fprintf(&b, "| **Composite** | **%.1f** | |\n", d.CompositeScore)
		fmt.Fprintf(&b, "\nConfidence: %.2f\n", d.Confidence)
		if d.SignalsUnavailable {
			b.WriteString("\n> Signals were unavailable; the request was denied by default.\n")
		}
	}

	if o.Error != "" {
		fmt.Fprintf(&b, "\n**Error:** %s\n", o.Error)
	}
	if o.Analysis != nil {
		b.WriteString("\n")
		b.WriteString(reportSection(o.Analysis.Report, "##"))
	}
	if o.Narrative != nil {
		b.WriteString("\n")
		b.WriteString(strings.Replace(llm.RenderMarkdown(o.Narrative), "# Narrative", "## Narrative", 1))
	}
	return b.String()
}

// AnalysisMarkdown renders an inference report
func AnalysisMarkdown(a *Analysis) string {
	var b strings.Builder
	b.WriteString("# Inference Report\n\n")
	if a.ResourceID != "" {
		fmt.Fprintf(&b, "- Resource: `%s`\n", a.ResourceID)
	}
	fmt.Fprintf(&b, "- Facts: %d\n- Observations: %d\n\n", a.Facts, a.Observations)
	b.WriteString(reportSection(a.Report, "##"))
	if a.Narrative != nil {
		b.WriteString("\n")
		b.WriteString(strings.Replace(llm.RenderMarkdown(a.Narrative), "# Narrative", "## Narrative", 1))
	}
	return b.String()
}

func reportSection(r model.Report, h string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Inferences\n\n", h)
	if r.Empty() {
		b.WriteString("No inferences: the knowledge base was empty.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d total: %d certain, %d probable, %d possible.\n",
		r.Total, len(r.Certain), len(r.Probable), len(r.Possible))

	for _, kind := range model.AllLogicTypes() {
		var list []model.Inference
		for _, inf := range r.All() {
			if inf.Kind == kind {
				list = append(list, inf)
			}
		}
		if len(list) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s# %s\n\n", h, capitalizeWord(kind.String()))
		for _, inf := range list {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", inf.Method, inf.CertaintyLevel(), inf.Conclusion)
			if inf.Formula != "" {
				fmt.Fprintf(&b, "  - `%s`\n", inf.Formula)
			}
			if inf.Actionable != "" {
				fmt.Fprintf(&b, "  - Action: %s\n", inf.Actionable)
			}
		}
	}
	return b.String()
}

func capitalizeWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// PrintOutcome writes a one-screen summary of an outcome
func PrintOutcome(w io.Writer, o *Outcome) {
	if o.Decision == nil {
		fmt.Fprintf(w, "✗ %s: %s\n", o.Scenario, o.Error)
		return
	}
	d := o.Decision
	mark := "✓"
	if !d.Approved() {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s: %s (composite %.1f, threat %.1f, location %.1f, behavior %.1f)\n",
		mark, o.Scenario, strings.ToUpper(string(d.Action)), d.CompositeScore,
		d.Signals.ThreatScore, d.Signals.GeoRisk, d.Signals.BehaviorScore)
	fmt.Fprintf(w, "  %s\n", d.Rationale)
	if o.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", o.Error)
	}
}

// BatchSummary tallies batch results
type BatchSummary struct {
	Total      int `json:"total"`
	Approved   int `json:"approved"`
	Denied     int `json:"denied"`
	Failed     int `json:"failed"`
	Mismatched int `json:"mismatched"`
}

// Summarize tallies results. A fail-closed denial counts as denied and
// failed.
func Summarize(results []*worker.DecisionResult) BatchSummary {
	s := BatchSummary{Total: len(results)}
	for _, r := range results {
		if r.Error != nil {
			s.Failed++
		}
		if r.Decision != nil {
			if r.Decision.Approved() {
				s.Approved++
			} else {
				s.Denied++
			}
		}
		if !r.Matches() {
			s.Mismatched++
		}
	}
	return s
}
