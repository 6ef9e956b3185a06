package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/ncclreplay/pkg/config"
	"github.com/ccollicutt/ncclreplay/pkg/output"
	"github.com/ccollicutt/ncclreplay/pkg/parser"
	"github.com/ccollicutt/ncclreplay/pkg/pipeline"
)

// Flag names shared by the generate and decode commands.
const (
	flagLog              = "nccl-debug-log"
	flagOutputScriptName = "output-script-name"
	flagUnique           = "unique"
	flagConfig           = "config"
	flagBinaryPrefix     = "binary-prefix"
	flagWarnInexact      = "warn-inexact"
)

// GenerateOptions holds command-line options for script generation.
type GenerateOptions struct {
	Logs             []string
	OutputScriptName string
	Unique           bool
	ConfigFile       string
	BinaryPrefix     string
	WarnInexact      bool
	Report           string
	Verbose          bool
}

// NewGenerateCommand creates the command that converts logs into
// benchmark scripts. It is used as the root command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "ncclreplay --nccl-debug-log <path> [flags]",
		Short: "Turn NCCL/RCCL debug logs into nccl-tests benchmark commands",
		Long: `Extract collective calls from a log produced with
NCCL_DEBUG=INFO NCCL_DEBUG_SUBSYS=INIT,COLL and write an nccl-tests /
rccl-tests command for each one.

Files written (base name from --output-script-name):
  <name>.sh           one command per decoded call, in log order
  <name>_unique.sh    distinct commands, first-seen order (--unique)
  <name>_counts.csv   command|count table, counts divided by rank count (--unique)

Unknown operations, datatypes or reduction ops abort the run before any
file is written.

Example:
  ncclreplay --nccl-debug-log rank0.log
  ncclreplay --nccl-debug-log 'logs/*.log' --unique --output-script-name llama70b`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Logs, flagLog, nil, "Log from an app run with NCCL_DEBUG=INFO NCCL_DEBUG_SUBSYS=INIT,COLL (glob allowed, can be repeated)")
	cmd.Flags().StringVar(&opts.OutputScriptName, flagOutputScriptName, config.DefaultOutputScriptName, "Base name of the output files")
	cmd.Flags().BoolVar(&opts.Unique, flagUnique, false, "Also write unique commands and their normalized counts")
	cmd.Flags().StringVarP(&opts.ConfigFile, flagConfig, "c", "", "YAML configuration file")
	cmd.Flags().StringVar(&opts.BinaryPrefix, flagBinaryPrefix, config.DefaultBinaryPrefix, "Path prepended to benchmark binaries")
	cmd.Flags().BoolVar(&opts.WarnInexact, flagWarnInexact, false, "Warn when a command's count is not divisible by its rank count")
	cmd.Flags().StringVar(&opts.Report, "report", "", "Print a run report (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "List every inexact count in the report")
	_ = cmd.MarkFlagRequired(flagLog)

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, cmd, opts)
	if err != nil {
		return err
	}

	// Build the formatter first so a bad --report value fails before any
	// file is written.
	var formatter output.Formatter
	if opts.Report != "" {
		formatter, err = output.NewFormatter(opts.Report, output.FormatOptions{Verbose: opts.Verbose})
		if err != nil {
			return err
		}
	}

	files, err := expandLogs(opts.Logs)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
	runner, err := pipeline.New(cfg,
		pipeline.WithMessages(cmd.OutOrStdout()),
		pipeline.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}

	report, err := runner.Run(ctx, files)
	if err != nil {
		return err
	}

	if formatter != nil {
		if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("formatting report: %w", err)
		}
	}

	return nil
}

// loadConfig loads the optional config file and applies flags the user
// set explicitly on top of it.
func loadConfig(ctx context.Context, cmd *cobra.Command, opts *GenerateOptions) (*config.Config, error) {
	cfg, err := config.Load(ctx, opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed(flagOutputScriptName) {
		cfg.OutputScriptName = opts.OutputScriptName
	}
	if flags.Changed(flagUnique) {
		cfg.Unique = opts.Unique
	}
	if flags.Changed(flagBinaryPrefix) {
		cfg.BinaryPrefix = opts.BinaryPrefix
	}
	if flags.Changed(flagWarnInexact) {
		cfg.WarnInexact = opts.WarnInexact
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func expandLogs(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, errors.New("--" + flagLog + " is required")
	}

	files, err := parser.ExpandGlobs(patterns)
	if err != nil {
		return nil, fmt.Errorf("expanding log sources: %w", err)
	}
	return files, nil
}
