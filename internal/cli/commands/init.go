package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/ncclreplay/pkg/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init <config-file>",
		Short: "Write a starter configuration file",
		Long: `Write a configuration file holding the default settings, ready to edit.

An existing file is never overwritten.

Example:
  ncclreplay init ncclreplay.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeStarterConfig(cmd, args[0])
		},
	}
}

func writeStarterConfig(cmd *cobra.Command, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(generateStarterConfig(config.DefaultConfig())), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote starter config to: %s\n", configPath)
	return nil
}

// generateStarterConfig renders cfg as a commented YAML template.
func generateStarterConfig(cfg *config.Config) string {
	var prefixes strings.Builder
	for _, p := range cfg.VariantPrefixes {
		fmt.Fprintf(&prefixes, "  - %s\n", p)
	}

	return fmt.Sprintf(`# ncclreplay configuration
# Flags given on the command line override these values.

# Base name of the generated files. A directory prefix is allowed.
#   <name>.sh, and with unique: true also <name>_unique.sh and <name>_counts.csv
output_script_name: %s

# Deduplicate commands and write normalized counts.
unique: %t

# Where the nccl-tests / rccl-tests binaries live. $VAR and ${VAR} are expanded.
# Overridden by %s.
binary_prefix: %s

# Method-name prefixes stripped before the operation lookup.
variant_prefixes:
%s
# Log a warning when a command's count is not divisible by its rank count.
warn_inexact: %t
`, cfg.OutputScriptName, cfg.Unique, config.EnvBinaryPrefix, cfg.BinaryPrefix, prefixes.String(), cfg.WarnInexact)
}
