package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/ncclreplay/pkg/detector"
	"github.com/ccollicutt/ncclreplay/pkg/parser"
)

// ErrNotReady is returned by detect --strict when the logs cannot produce
// any benchmark command.
var ErrNotReady = errors.New("logs contain no decodable collective records")

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output     string
	SampleSize int
	ShowAll    bool
	Strict     bool
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>...",
		Short: "Check what debug output a log contains",
		Long: `Sample NCCL/RCCL debug logs and report which kinds of debug output
they hold before generating scripts.

Reports:
  - Library (NCCL or RCCL) and version from the init banner
  - Collective call records and MSCCL variant calls
  - Global ranks seen against the communicator size
  - Hints when NCCL_DEBUG_SUBSYS is missing INIT or COLL

Pass every rank's log at once so rank coverage can be checked.

Example:
  ncclreplay detect rank0.log
  ncclreplay detect --sample 50000 'logs/*.log'
  ncclreplay detect --strict -o json 'logs/*.log'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample per file")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show a sample line for every signature")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Exit with an error if no benchmark command could be generated")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("expanding log sources: %w", err)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))
	result, err := d.DetectFromFiles(ctx, files)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	switch opts.Output {
	case "json":
		err = outputDetectJSON(cmd.OutOrStdout(), result, files)
	default:
		err = outputDetectText(cmd.OutOrStdout(), result, files, opts)
	}
	if err != nil {
		return err
	}

	if opts.Strict && !result.Ready() {
		return ErrNotReady
	}
	return nil
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, files []string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== NCCL Debug Log Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files: %s\n", strings.Join(files, ", "))
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Collective records: %d\n", result.Records)

	if result.Library != "" {
		fmt.Fprintf(w, "Library: %s %s\n", result.Library, result.Version)
	} else {
		fmt.Fprintln(w, "Library: unknown")
	}
	if result.MaxNRanks > 0 {
		fmt.Fprintf(w, "Ranks: %d of %d seen\n", len(result.GlobalRanks), result.MaxNRanks)
	}
	fmt.Fprintln(w)

	if len(result.Matches) > 0 {
		fmt.Fprintln(w, "--- Debug output found ---")
		for _, m := range result.Matches {
			fmt.Fprintf(w, "  %-24s %6d lines  (%.1f%%)", m.Signature.Name, m.MatchCount, m.Confidence*100)
			if m.Signature.Subsystem != "" {
				fmt.Fprintf(w, "  [%s]", m.Signature.Subsystem)
			}
			fmt.Fprintln(w)
			if opts.ShowAll {
				fmt.Fprintf(w, "      %s\n", m.SampleLine)
			}
		}
		fmt.Fprintln(w)
	}

	for _, h := range result.Hints {
		fmt.Fprintf(w, "Hint: %s\n", h)
	}

	if result.Ready() {
		fmt.Fprintln(w, "Ready: yes")
	} else {
		fmt.Fprintln(w, "Ready: no")
	}

	return nil
}

// JSONMatch represents a signature match in JSON output.
type JSONMatch struct {
	Name       string  `json:"name"`
	Pattern    string  `json:"pattern"`
	Subsystem  string  `json:"subsystem,omitempty"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	SampleLine string  `json:"sample_line"`
}

// DetectJSONOutput represents the full JSON output.
type DetectJSONOutput struct {
	Files        []string    `json:"files"`
	Ready        bool        `json:"ready"`
	Library      string      `json:"library,omitempty"`
	Version      string      `json:"version,omitempty"`
	SampledLines int         `json:"sampled_lines"`
	Records      int         `json:"records"`
	GlobalRanks  []int64     `json:"global_ranks"`
	MaxNRanks    int64       `json:"max_nranks"`
	Matches      []JSONMatch `json:"matches"`
	Missing      []string    `json:"missing,omitempty"`
	Hints        []string    `json:"hints,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, files []string) error {
	out := DetectJSONOutput{
		Files:        files,
		Ready:        result.Ready(),
		Library:      result.Library,
		Version:      result.Version,
		SampledLines: result.SampledLines,
		Records:      result.Records,
		GlobalRanks:  result.GlobalRanks,
		MaxNRanks:    result.MaxNRanks,
		Matches:      make([]JSONMatch, 0, len(result.Matches)),
		Missing:      result.Missing,
		Hints:        result.Hints,
	}
	if out.GlobalRanks == nil {
		out.GlobalRanks = []int64{}
	}

	for _, m := range result.Matches {
		out.Matches = append(out.Matches, JSONMatch{
			Name:       m.Signature.Name,
			Pattern:    m.Signature.PatternStr,
			Subsystem:  m.Signature.Subsystem,
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			SampleLine: m.SampleLine,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
