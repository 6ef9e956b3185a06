package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/ncclreplay/pkg/config"
	"github.com/ccollicutt/ncclreplay/pkg/decoder"
	"github.com/ccollicutt/ncclreplay/pkg/parser"
	"github.com/ccollicutt/ncclreplay/pkg/synth"
)

// DecodeOptions holds command-line options for the decode command.
type DecodeOptions struct {
	Output       string
	ConfigFile   string
	BinaryPrefix string
	ShowRejected bool
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand() *cobra.Command {
	opts := &DecodeOptions{}

	cmd := &cobra.Command{
		Use:   "decode <log-file>...",
		Short: "Show the collective calls decoded from a log",
		Long: `Decode collective-call lines and print every field, including the
buffer, communicator and stream handles that script generation ignores.

Nothing is written to disk. Calls whose codes are not in the lookup tables
are listed with the lookup error instead of aborting.

With --config the binary prefix and variant prefixes come from the same
YAML file generation uses, so the commands shown match the script.

Example:
  ncclreplay decode rank0.log
  ncclreplay decode -c ncclreplay.yaml rank0.log
  ncclreplay decode --rejected -o json 'logs/*.log'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVarP(&opts.ConfigFile, flagConfig, "c", "", "YAML configuration file")
	cmd.Flags().StringVar(&opts.BinaryPrefix, flagBinaryPrefix, config.DefaultBinaryPrefix, "Path prepended to benchmark binaries")
	cmd.Flags().BoolVar(&opts.ShowRejected, "rejected", false, "Also list marker lines that did not decode")

	return cmd
}

// DecodedCall is one decoded line in decode output.
type DecodedCall struct {
	Source     string `json:"source"`
	Line       int    `json:"line"`
	Method     string `json:"method"`
	OpCount    int64  `json:"op_count"`
	Count      int64  `json:"count"`
	DataType   string `json:"datatype"`
	Op         string `json:"op"`
	Root       int64  `json:"root"`
	NRanks     int64  `json:"nranks"`
	Comm       string `json:"comm"`
	Stream     string `json:"stream"`
	Task       int64  `json:"task"`
	GlobalRank int64  `json:"globalrank"`
	Command    string `json:"command,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RejectedLine is a candidate line that did not match the record pattern.
type RejectedLine struct {
	Source  string `json:"source"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}

// DecodeOutput is the full decode result.
type DecodeOutput struct {
	Calls    []DecodedCall  `json:"calls"`
	Rejected []RejectedLine `json:"rejected,omitempty"`
}

func runDecode(cmd *cobra.Command, args []string, opts *DecodeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	cfg, err := config.Load(ctx, opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed(flagBinaryPrefix) {
		cfg.BinaryPrefix = opts.BinaryPrefix
	}

	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("expanding log sources: %w", err)
	}

	lines, err := parser.ReadLogs(ctx, files)
	if err != nil {
		return err
	}

	s := synth.New(
		synth.WithBinaryPrefix(cfg.BinaryPrefix),
		synth.WithVariantPrefixes(cfg.VariantPrefixes),
	)
	out := decodeLines(parser.Filter(lines), s, opts.ShowRejected)

	if opts.Output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}
	return outputDecodeText(cmd.OutOrStdout(), out, opts)
}

func decodeLines(candidates []parser.LogLine, s *synth.Synthesizer, showRejected bool) *DecodeOutput {
	out := &DecodeOutput{Calls: make([]DecodedCall, 0)}

	for _, line := range candidates {
		rec, ok := decoder.Decode(line.Content)
		if !ok {
			if showRejected {
				out.Rejected = append(out.Rejected, RejectedLine{
					Source:  line.Source,
					Line:    line.LineNum,
					Content: line.Content,
				})
			}
			continue
		}

		call := DecodedCall{
			Source:     line.Source,
			Line:       line.LineNum,
			Method:     rec.Method,
			OpCount:    rec.OpCount,
			Count:      rec.Count,
			DataType:   rec.DataType,
			Op:         rec.Op,
			Root:       rec.Root,
			NRanks:     rec.NRanks,
			Comm:       rec.Comm,
			Stream:     rec.Stream,
			Task:       rec.Task,
			GlobalRank: rec.GlobalRank,
		}
		if c, err := s.Synthesize(rec); err != nil {
			call.Error = err.Error()
		} else {
			call.Command = c.Text
		}
		out.Calls = append(out.Calls, call)
	}

	return out
}

func outputDecodeText(w io.Writer, out *DecodeOutput, opts *DecodeOptions) error {
	fmt.Fprintf(w, "=== Decoded collective calls: %d ===\n", len(out.Calls))
	fmt.Fprintln(w)

	if len(out.Calls) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "LINE\tGLOBALRANK\tMETHOD\tOPCOUNT\tCOUNT\tDTYPE\tOP\tROOT\tNRANKS\tCOMM\tCOMMAND")
		for _, c := range out.Calls {
			command := c.Command
			if c.Error != "" {
				command = "ERROR: " + c.Error
			}
			fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
				c.Line, c.GlobalRank, c.Method, c.OpCount, c.Count, c.DataType, c.Op, c.Root, c.NRanks, c.Comm, command)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if opts.ShowRejected && len(out.Rejected) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "--- Marker lines that did not decode: %d ---\n", len(out.Rejected))
		for _, r := range out.Rejected {
			fmt.Fprintf(w, "%s:%d: %s\n", r.Source, r.Line, r.Content)
		}
	}

	return nil
}
