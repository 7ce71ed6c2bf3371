package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/vaultgate/internal/model"
	"github.com/ppiankov/vaultgate/internal/pipeline"
	"github.com/ppiankov/vaultgate/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	pacePerHour  float64
	paceBurst    int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Decide many scenarios from a list file in parallel",
	Long: `Batch decides many access scenarios concurrently:
- Read scenario paths from the input file (one per line, # comments allowed)
- Decide scenarios in parallel with a configurable worker count
- Optionally pace each requester with --pace-per-hour
- Write one decision file per scenario plus a summary

Scenarios that state an expected outcome are checked against it.

Example:
  vaultgate batch scenarios.txt
  vaultgate batch scenarios.txt --concurrency 8 --output-dir ./decisions
  vaultgate batch scenarios.txt --pace-per-hour 60 --burst 2`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./vaultgate-decisions", "output directory for decisions")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64Var(&pacePerHour, "pace-per-hour", 0, "wait so each requester makes at most this many requests per hour (0 disables)")
	batchCmd.Flags().IntVar(&paceBurst, "burst", 5, "requests a requester may make before pacing applies")
	addOutputFlags(batchCmd)
	addLLMFlags(batchCmd)
}

// batchRecord is the per-scenario line of the batch summary
type batchRecord struct {
	Name     string          `json:"name"`
	Path     string          `json:"path"`
	Decision *model.Decision `json:"decision,omitempty"`
	Expect   model.Action    `json:"expect,omitempty"`
	Matches  bool            `json:"matches"`
	Error    string          `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	file := args[0]

	paths, err := worker.ReadPathsFromFile(file)
	if err != nil {
		return fmt.Errorf("read scenario list: %w", err)
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
	if cmd.Flags().Changed("concurrency") || s.cfg.Concurrency.Workers <= 0 {
		s.cfg.Concurrency.Workers = concurrency
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  vaultgate Batch Decisions\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s (%d scenarios)\n", file, len(paths))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", s.cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if s.pipeline.NarratorEnabled() {
		fmt.Fprintf(os.Stderr, "  Narratives:   %s\n", s.cfg.LLM.Provider)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(s.pipeline, s.cfg.Concurrency.Workers, pacePerHour, paceBurst)
	results := processor.ProcessFiles(ctx, paths)

	records := make([]batchRecord, 0, len(results))
	for _, result := range results {
		rec := batchRecord{
			Name:     result.Name,
			Path:     result.Path,
			Decision: result.Decision,
			Expect:   result.Expect,
			Matches:  result.Matches(),
		}
		if result.Error != nil {
			rec.Error = result.Error.Error()
		}
		records = append(records, rec)

		if result.Decision != nil {
			out := filepath.Join(outputDir, sanitizeFilename(result.Name)+".json")
			if err := s.renderer.RenderJSON(rec, out); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: failed to write decision: %v\n", result.Name, err)
			}
		}

		switch {
		case result.Decision == nil:
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Name, result.Error)
		case !rec.Matches:
			fmt.Fprintf(os.Stderr, "! %s: %s (expected %s, composite %.1f)\n",
				result.Name, actionLabel(result.Decision), strings.ToUpper(string(result.Expect)), result.Decision.CompositeScore)
		default:
			fmt.Fprintf(os.Stderr, "✓ %s: %s (composite %.1f)\n",
				result.Name, actionLabel(result.Decision), result.Decision.CompositeScore)
		}
	}

	summary := pipeline.Summarize(results)
	if err := s.renderer.RenderJSON(struct {
		Summary   pipeline.BatchSummary `json:"summary"`
		Decisions []batchRecord         `json:"decisions"`
	}{summary, records}, filepath.Join(outputDir, "summary.json")); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:       %d scenarios\n", summary.Total)
	fmt.Fprintf(os.Stderr, "  Approved:    %d\n", summary.Approved)
	fmt.Fprintf(os.Stderr, "  Denied:      %d\n", summary.Denied)
	fmt.Fprintf(os.Stderr, "  Failures:    %d\n", summary.Failed)
	fmt.Fprintf(os.Stderr, "  Mismatched:  %d\n", summary.Mismatched)
	fmt.Fprintf(os.Stderr, "  Output:      %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if summary.Mismatched > 0 {
		return fmt.Errorf("%d scenario(s) did not produce their expected outcome", summary.Mismatched)
	}
	return nil
}

// sanitizeFilename makes a scenario name safe to use as a file name
func sanitizeFilename(s string) string {
	s = strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	).Replace(strings.TrimSpace(s))

	if s == "" || s == "." || s == ".." || s == "summary" {
		s = "_" + s
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
