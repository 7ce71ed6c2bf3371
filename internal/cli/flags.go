package cli

import (
	"github.com/spf13/cobra"

	"github.com/ppiankov/vaultgate/internal/model"
)

// Flags shared by decide, analyze and batch
var (
	llmProvider string
	llmModel    string
	llmLenient  bool
	auditPath   string
	noFooter    bool
)

func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&llmProvider, "llm", "", "narrative provider (openai, anthropic, ollama); overrides llm.provider")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "narrative model name")
	cmd.Flags().BoolVar(&llmLenient, "llm-lenient", false, "accept narratives quoting figures absent from the report")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&auditPath, "audit", "", "append audit entries to this JSONL file (overrides audit.path)")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

// applyFlags overrides configuration with the flags the user set
func applyFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("llm") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if flags.Changed("llm-lenient") {
		cfg.LLM.Strict = !llmLenient
	}
	if flags.Changed("audit") {
		cfg.Audit.Path = auditPath
	}
	if flags.Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	if flags.Changed("extended") {
		cfg.Inference.Extended = analyzeExtended
	}
	if verbose {
		cfg.Output.Verbose = true
	}
}
