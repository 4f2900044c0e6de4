package main

import (
	"fmt"
	"io"

	"github.com/iwvelando/givewise/internal/config"
	"github.com/iwvelando/givewise/pkg/constants"
	"github.com/iwvelando/givewise/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath   string
	logLevel     string
	outputFormat string
}

// session is what every subcommand needs after flags are parsed.
type session struct {
	conf         *config.Configuration
	logger       *zap.Logger
	outputFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "givewise",
		Short: "Estimate the after-tax cost of a charitable donation in Canada",
		Long: `givewise estimates the federal and provincial charitable donation tax
credit for a gift, and the capital gains tax avoided by donating appreciated
securities directly instead of selling them first.

Rates are 2024 estimates. Results are approximations, not tax advice.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file (\"-\" reads it from stdin)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")

	cmd.AddCommand(
		newEstimateCmd(opts),
		newCompareCmd(opts),
		newProvincesCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

const stdinConfigPath = "-"

// loadConfiguration reads the configuration file, or stdin when the path is "-".
func (o *rootOptions) loadConfiguration(stdin io.Reader) (*config.Configuration, error) {
	if o.configPath == stdinConfigPath {
		conf, err := config.LoadConfigurationFromReader(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration from stdin: %w", err)
		}
		return conf, nil
	}

	conf, err := config.LoadConfiguration(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", o.configPath, err)
	}
	return conf, nil
}

func (o *rootOptions) open(stdin io.Reader) (*session, error) {
	conf, err := o.loadConfiguration(stdin)
	if err != nil {
		return nil, err
	}

	logger, err := initializeLogger(conf.Logging, o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if o.outputFormat != "" {
		outputFormat = o.outputFormat
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		_ = logger.Sync()
		return nil, err
	}

	logConfigWarnings(logger, conf, "main")

	return &session{conf: conf, logger: logger, outputFormat: outputFormat}, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func logConfigWarnings(logger *zap.Logger, conf *config.Configuration, op string) {
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", op),
		)
	}
}
