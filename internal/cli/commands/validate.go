package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/ncclreplay/pkg/config"
	"github.com/ccollicutt/ncclreplay/pkg/output"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate an ncclreplay configuration file without reading any log.

Checks:
  - YAML syntax and unknown keys
  - Output base name
  - Variant prefixes
  - Environment variable expansion in binary_prefix`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	mode := output.ModePassThrough
	if cfg.Unique {
		mode = output.ModeUnique
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Mode:             %s\n", mode)
	fmt.Fprintf(w, "  Binary prefix:    %s\n", cfg.BinaryPrefix)
	fmt.Fprintf(w, "  Variant prefixes: %s\n", strings.Join(cfg.VariantPrefixes, ", "))
	fmt.Fprintf(w, "  Warn inexact:     %t\n", cfg.WarnInexact)

	fmt.Fprintf(w, "\nFiles that would be written:\n")
	fmt.Fprintf(w, "  - %s%s\n", cfg.OutputScriptName, output.ScriptSuffix)
	if cfg.Unique {
		fmt.Fprintf(w, "  - %s%s\n", cfg.OutputScriptName, output.UniqueScriptSuffix)
		fmt.Fprintf(w, "  - %s%s\n", cfg.OutputScriptName, output.CountsSuffix)
	}

	return nil
}
