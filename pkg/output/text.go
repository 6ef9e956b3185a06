package output

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	s := report.Summary

	fmt.Fprintln(w, "=== ncclreplay Run Report ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Mode: %s\n", report.Metadata.Mode)
	fmt.Fprintf(w, "Sources: %d file(s)\n", len(report.Metadata.Sources))
	for _, src := range report.Metadata.Sources {
		fmt.Fprintf(w, "  - %s\n", src)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Lines read:       %d\n", s.LinesRead)
	fmt.Fprintf(w, "Candidate lines:  %d\n", s.CandidateLines)
	fmt.Fprintf(w, "Decoded records:  %d\n", s.Records)
	fmt.Fprintf(w, "Commands:         %d\n", s.Commands)
	if report.Metadata.Mode == ModeUnique {
		fmt.Fprintf(w, "Unique commands:  %d\n", s.UniqueCommands)
	}

	if len(report.Files) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Files:")
		for _, file := range report.Files {
			fmt.Fprintf(w, "  [%s] %s (%d lines)\n", file.Kind, file.Path, file.Lines)
		}
	}

	if len(report.Sizes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Message sizes (bytes):")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  BINARY\tCALLS\tMIN\tMEDIAN\tP90\tMAX\tTOTAL")
		for _, sz := range report.Sizes {
			fmt.Fprintf(tw, "  %s\t%d\t%.0f\t%.0f\t%.0f\t%.0f\t%d\n",
				sz.Binary, sz.Calls, sz.Min, sz.Median, sz.P90, sz.Max, sz.Total)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if report.HasInexact() {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Inexact counts: %d command(s) seen a number of times not divisible by their rank count\n",
			len(report.Inexact))
		if f.opts.Verbose {
			for _, row := range report.Inexact {
				fmt.Fprintf(w, "  - %s (seen %d, ranks %d, count %d)\n",
					row.Command, row.Occurrences, row.NRanks, row.Count)
			}
		}
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))

	return nil
}
