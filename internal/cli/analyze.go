package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/vaultgate/internal/knowledge"
	"github.com/ppiankov/vaultgate/internal/llm"
	"github.com/ppiankov/vaultgate/internal/pipeline"
)

var (
	analyzeJSON     string
	analyzeMD       string
	analyzeResource string
	analyzeExtended bool
	analyzeTimeout  time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <feed.yaml>",
	Short: "Run every reasoning strategy over a knowledge feed",
	Long: `Analyze loads facts and observations from a feed and runs the
deductive, inductive, abductive, analogical and statistical passes
(plus temporal and modal with --extended). The report is audited.

Example:
  vaultgate analyze feed.yaml
  vaultgate analyze feed.yaml --resource vault-7 --md report.md
  vaultgate analyze feed.yaml --extended --llm ollama --llm-model llama3.1:8b`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeJSON, "json", "", "output JSON path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeMD, "md", "", "output Markdown path")
	analyzeCmd.Flags().StringVar(&analyzeResource, "resource", "", "resource the feed describes, recorded in the audit entry")
	analyzeCmd.Flags().BoolVar(&analyzeExtended, "extended", false, "also run the temporal and modal passes")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", time.Minute, "analysis timeout (includes narrative generation)")
	addOutputFlags(analyzeCmd)
	addLLMFlags(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) (err error) {
	feed, err := knowledge.LoadFeed(args[0])
	if err != nil {
		return err
	}

	s, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
	defer cancel()

	a, err := s.pipeline.Analyze(ctx, feed, analyzeResource)
	if err != nil {
		return err
	}

	r := a.Report
	fmt.Fprintf(os.Stderr, "✓ %d inferences (%d certain, %d probable, %d possible) from %d facts, %d observations\n",
		r.Total, len(r.Certain), len(r.Probable), len(r.Possible), a.Facts, a.Observations)

	if analyzeJSON == "" {
		if err := s.renderer.WriteJSON(os.Stdout, a); err != nil {
			return err
		}
	} else if err := s.renderer.RenderJSON(a, analyzeJSON); err != nil {
		return fmt.Errorf("render JSON: %w", err)
	}

	if analyzeMD != "" {
		if err := s.renderer.RenderMarkdown(pipeline.AnalysisMarkdown(a), analyzeMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}
	if a.Narrative != nil && a.Narrative.Enabled && analyzeMD == "" {
		fmt.Fprintln(os.Stderr, llm.RenderMarkdown(a.Narrative))
	}
	return nil
}
