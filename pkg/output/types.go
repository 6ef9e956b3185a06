// Package output writes benchmark scripts and count tables, and renders
// run reports.
package output

import (
	"time"

	"github.com/ccollicutt/ncclreplay/pkg/aggregate"
)

// Mode names how commands were aggregated.
type Mode string

const (
	ModePassThrough Mode = "all"
	ModeUnique      Mode = "unique"
)

// FileKind labels a written file.
type FileKind string

const (
	FileKindScript       FileKind = "script"
	FileKindUniqueScript FileKind = "unique_script"
	FileKindCounts       FileKind = "counts"
)

// Report summarizes one run.
type Report struct {
	// Summary holds per-stage line and command counts.
	Summary Summary

	// Files lists the files written, in write order.
	Files []WrittenFile

	// Inexact lists unique commands whose tally is not a multiple of
	// their rank count. Empty outside unique mode.
	Inexact []aggregate.Row

	// Sizes profiles message sizes per benchmark binary.
	Sizes []aggregate.SizeStats

	// Metadata provides context about the run.
	Metadata Metadata
}

// Summary provides per-stage statistics.
type Summary struct {
	// LinesRead is the number of log lines read across all sources.
	LinesRead int

	// CandidateLines is the number of lines carrying both record markers.
	CandidateLines int

	// Records is the number of lines that decoded into a record.
	Records int

	// Commands is the number of synthesized commands.
	Commands int

	// UniqueCommands is the number of distinct commands (unique mode only).
	UniqueCommands int
}

// WrittenFile is a file produced by the run.
type WrittenFile struct {
	Kind  FileKind
	Path  string
	Lines int
}

// Metadata provides context about the run.
type Metadata struct {
	// Sources lists the log files that were read.
	Sources []string

	// Mode is the aggregation mode.
	Mode Mode

	// GeneratedAt is when the run finished.
	GeneratedAt time.Time

	// Duration is how long the run took.
	Duration time.Duration
}

// HasInexact returns true if any normalized count was truncated.
func (r *Report) HasInexact() bool {
	return len(r.Inexact) > 0
}
