package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/vaultgate/internal/history"
	"github.com/ppiankov/vaultgate/internal/model"
	"github.com/ppiankov/vaultgate/internal/pipeline"
)

var (
	decideJSON    string
	decideMD      string
	decideTimeout time.Duration
	failOnDeny    bool
)

// errDenied is returned with --fail-on-deny so scripts can branch on it
var errDenied = errors.New("access denied")

// decideCmd represents the decide command
var decideCmd = &cobra.Command{
	Use:   "decide <scenario.yaml>",
	Short: "Decide one access request",
	Long: `Decide evaluates one access scenario end to end:
- Collect threat, location and behavior signals from the access history
- Combine them into a composite risk score and approve or deny
- Fold high-confidence inferences from the scenario's knowledge into the rationale
- Open the resource on approval and audit the outcome

A scenario whose history cannot be read is denied.

Example:
  vaultgate decide request.yaml
  vaultgate decide request.yaml --json decision.json --md decision.md
  vaultgate decide request.yaml --audit audit.jsonl --fail-on-deny`,
	Args: cobra.ExactArgs(1),
	RunE: runDecide,
}

func init() {
	rootCmd.AddCommand(decideCmd)

	decideCmd.Flags().StringVar(&decideJSON, "json", "", "output JSON path")
	decideCmd.Flags().StringVar(&decideMD, "md", "", "output Markdown path")
	decideCmd.Flags().DurationVar(&decideTimeout, "timeout", 30*time.Second, "decision timeout")
	decideCmd.Flags().BoolVar(&failOnDeny, "fail-on-deny", false, "exit non-zero when access is denied")
	addOutputFlags(decideCmd)
	addLLMFlags(decideCmd)
}

func runDecide(cmd *cobra.Command, args []string) (err error) {
	scenario, err := history.LoadScenario(args[0])
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

	ctx, cancel := context.WithTimeout(cmd.Context(), decideTimeout)
	defer cancel()

	out, runErr := s.pipeline.Run(ctx, scenario)
	pipeline.PrintOutcome(os.Stderr, out)

	if err := writeOutcome(s, out, decideJSON, decideMD); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if failOnDeny && out.Decision != nil && !out.Decision.Approved() {
		return errDenied
	}
	return nil
}

func writeOutcome(s *session, out *pipeline.Outcome, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := s.renderer.RenderJSON(out, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if s.cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}
	if mdPath != "" {
		if err := s.renderer.RenderMarkdown(pipeline.OutcomeMarkdown(out), mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if s.cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}
	return nil
}

// actionLabel renders a decision for one-line summaries
func actionLabel(d *model.Decision) string {
	if d == nil {
		return "NONE"
	}
	return strings.ToUpper(string(d.Action))
}
