package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/vaultgate/internal/audit"
	"github.com/ppiankov/vaultgate/internal/model"
)

var (
	auditKind     string
	auditResource string
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect audit logs",
}

var auditShowCmd = &cobra.Command{
	Use:   "show <audit.jsonl>",
	Short: "List the entries of an audit file",
	Long: `Show lists audit entries in the order they were written.

Example:
  vaultgate audit show audit.jsonl
  vaultgate audit show audit.jsonl --kind decision --resource vault-7`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := audit.ReadFile(args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tKIND\tRESOURCE\tREQUESTER\tOUTCOME\tCOMPOSITE\tEXECUTED")
		shown := 0
		for _, e := range entries {
			if auditKind != "" && string(e.Kind) != auditKind {
				continue
			}
			if auditResource != "" && e.ResourceID != auditResource {
				continue
			}
			shown++
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.1f\t%t\n",
				e.Timestamp.Format("2006-01-02T15:04:05Z07:00"), e.Kind, dash(e.ResourceID), dash(e.RequesterID),
				outcome(e), e.CompositeScore, e.Executed)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%d of %d entries\n", shown, len(entries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditShowCmd)

	auditShowCmd.Flags().StringVar(&auditKind, "kind", "", "only entries of this kind (decision, inference_report)")
	auditShowCmd.Flags().StringVar(&auditResource, "resource", "", "only entries for this resource")
}

func outcome(e model.AuditEntry) string {
	switch {
	case e.Decision != nil && e.Decision.SignalsUnavailable:
		return actionLabel(e.Decision) + " (unavailable)"
	case e.Decision != nil:
		return actionLabel(e.Decision)
	case e.Report != nil:
		return fmt.Sprintf("%d inferences", e.Report.Total)
	default:
		return "-"
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
