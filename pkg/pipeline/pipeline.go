// Package pipeline runs the log-to-benchmark-script conversion end to end.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ccollicutt/ncclreplay/pkg/aggregate"
	"github.com/ccollicutt/ncclreplay/pkg/config"
	"github.com/ccollicutt/ncclreplay/pkg/decoder"
	"github.com/ccollicutt/ncclreplay/pkg/output"
	"github.com/ccollicutt/ncclreplay/pkg/parser"
	"github.com/ccollicutt/ncclreplay/pkg/synth"
)

// Runner converts NCCL debug logs into benchmark scripts.
type Runner struct {
	cfg    *config.Config
	writer *output.FileWriter
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithMessages sets where per-file confirmation lines are printed.
func WithMessages(w io.Writer) Option {
	return func(r *Runner) {
		r.writer = output.NewFileWriter(w)
	}
}

// WithLogger sets the logger used for diagnostic warnings.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Runner for the given configuration.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	r := &Runner{
		cfg:    cfg,
		writer: output.NewFileWriter(io.Discard),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run reads every source, synthesizes all commands, and only then writes
// the output files. A lookup failure therefore leaves no output behind.
func (r *Runner) Run(ctx context.Context, sources []string) (*output.Report, error) {
	start := r.now()

	report := &output.Report{
		Metadata: output.Metadata{
			Sources: sources,
			Mode:    output.ModePassThrough,
		},
	}
	if r.cfg.Unique {
		report.Metadata.Mode = output.ModeUnique
	}

	lines, err := parser.ReadLogs(ctx, sources)
	if err != nil {
		return nil, err
	}
	report.Summary.LinesRead = len(lines)

	candidates := parser.Filter(lines)
	report.Summary.CandidateLines = len(candidates)

	records := decoder.DecodeAll(candidates)
	report.Summary.Records = len(records)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := synth.New(
		synth.WithBinaryPrefix(r.cfg.BinaryPrefix),
		synth.WithVariantPrefixes(r.cfg.VariantPrefixes),
	)
	cmds, err := s.SynthesizeAll(records)
	if err != nil {
		return nil, fmt.Errorf("synthesizing commands: %w", err)
	}
	report.Summary.Commands = len(cmds)
	report.Sizes = aggregate.Sizes(cmds)

	var table *aggregate.Table
	if r.cfg.Unique {
		table, err = aggregate.Unique(cmds)
		if err != nil {
			return nil, fmt.Errorf("aggregating commands: %w", err)
		}
		report.Summary.UniqueCommands = len(table.Rows)
		report.Inexact = table.Inexact()

		if r.cfg.WarnInexact {
			for _, row := range report.Inexact {
				r.logger.Warn("count not divisible by rank count",
					"command", row.Command,
					"occurrences", row.Occurrences,
					"nranks", row.NRanks,
					"count", row.Count)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.write(report, cmds, table); err != nil {
		return nil, err
	}

	report.Metadata.GeneratedAt = r.now()
	report.Metadata.Duration = report.Metadata.GeneratedAt.Sub(start)
	return report, nil
}

func (r *Runner) write(report *output.Report, cmds []synth.Command, table *aggregate.Table) error {
	base := r.cfg.OutputScriptName
	for _, suffix := range []string{output.ScriptSuffix, output.CountsSuffix} {
		if strings.HasSuffix(base, suffix) {
			r.logger.Warn("output name already ends in a file suffix; suffixes are appended to it",
				"output_script_name", base,
				"suffix", suffix,
				"script", base+output.ScriptSuffix)
			break
		}
	}

	all := aggregate.PassThrough(cmds)
	scriptPath := base + output.ScriptSuffix
	if err := r.writer.Script(scriptPath, all); err != nil {
		return err
	}
	report.Files = append(report.Files, output.WrittenFile{
		Kind: output.FileKindScript, Path: scriptPath, Lines: len(all),
	})

	if table == nil {
		return nil
	}

	uniquePath := base + output.UniqueScriptSuffix
	if err := r.writer.Script(uniquePath, table.Commands()); err != nil {
		return err
	}
	report.Files = append(report.Files, output.WrittenFile{
		Kind: output.FileKindUniqueScript, Path: uniquePath, Lines: len(table.Rows),
	})

	countsPath := base + output.CountsSuffix
	if err := r.writer.Counts(countsPath, table); err != nil {
		return err
	}
	report.Files = append(report.Files, output.WrittenFile{
		Kind: output.FileKindCounts, Path: countsPath, Lines: len(table.Rows) + 1,
	})

	return nil
}
