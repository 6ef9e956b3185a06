package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/ncclreplay/pkg/collective"
)

// Version is set via ldflags at build time.
var Version = "dev"

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var tables bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the version of ncclreplay, optionally with its lookup tables.",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ncclreplay %s\n", Version)
			if !tables {
				return
			}

			fmt.Fprintln(w, "\nOperations:")
			for _, op := range collective.Ops() {
				fmt.Fprintf(w, "  %-14s %s\n", op, op.Binary())
			}
			fmt.Fprintln(w, "\nDatatypes:")
			for _, dt := range collective.DataTypes() {
				fmt.Fprintf(w, "  %d  %-9s %d byte(s)\n", int(dt), dt.Name(), dt.Width())
			}
			fmt.Fprintln(w, "\nReduction ops:")
			for _, op := range collective.ReduceOps() {
				fmt.Fprintf(w, "  %d  %s\n", int(op), op.Name())
			}
		},
	}

	cmd.Flags().BoolVar(&tables, "tables", false, "Also print the supported operations, datatypes and reduction ops")

	return cmd
}
