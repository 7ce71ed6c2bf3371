package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/vaultgate/internal/llm"
	"github.com/ppiankov/vaultgate/internal/model"
	"github.com/ppiankov/vaultgate/internal/pipeline"
	"github.com/ppiankov/vaultgate/internal/vault"
)

// session bundles what a command needs to run the pipeline
type session struct {
	cfg      *model.Config
	logger   *zap.Logger
	pipeline *pipeline.Pipeline
	renderer *pipeline.Renderer
	lock     *vault.Lock
	close    func() error
}

func setup(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)

	logger, err := newLogger(cfg.Output.Verbose)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	sink, closeAudit, err := openAudit(cfg.Audit)
	if err != nil {
		return nil, err
	}

	var opts []pipeline.Option
	opts = append(opts, pipeline.WithLogger(logger))
	if cfg.LLM.Provider != "" {
		// a broken provider is a usage error on the command line
		n, err := llm.NewNarrator(llm.ConfigFromModel(cfg.LLM), logger)
		if err != nil {
			_ = closeAudit()
			return nil, err
		}
		opts = append(opts, pipeline.WithNarrator(n))
	}

	lock := vault.NewLock()
	p, err := pipeline.NewPipeline(cfg, lock, sink, opts...)
	if err != nil {
		_ = closeAudit()
		return nil, err
	}

	return &session{
		cfg:      cfg,
		logger:   logger,
		pipeline: p,
		renderer: pipeline.NewRenderer(cfg.Output.IncludeFooter),
		lock:     lock,
		close: func() error {
			_ = logger.Sync()
			return closeAudit()
		},
	}, nil
}
