// Package detector samples NCCL/RCCL debug logs and reports which kinds
// of debug output they hold, so a missing NCCL_DEBUG_SUBSYS setting or an
// incomplete set of rank logs shows up before scripts are generated.
package detector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/ccollicutt/ncclreplay/pkg/decoder"
	"github.com/ccollicutt/ncclreplay/pkg/parser"
)

// DefaultSampleSize is the number of lines read from each file. Collective
// records follow the init output, so the sample must reach past it.
const DefaultSampleSize = 10000

// Library names reported in DetectionResult.Library.
const (
	LibraryNCCL = "NCCL"
	LibraryRCCL = "RCCL"
)

// DetectionResult holds the result of analyzing log lines.
type DetectionResult struct {
	Matches      []SignatureMatch // Signatures that matched, most frequent first
	SampledLines int              // Number of lines sampled
	Records      int              // Lines that decoded into a collective record
	Library      string           // LibraryNCCL, LibraryRCCL or empty
	Version      string           // Library version from the banner
	GlobalRanks  []int64          // Distinct global ranks seen in records, ascending
	MaxNRanks    int64            // Largest communicator size seen in records
	Missing      []string         // Required signatures that never matched
	Hints        []string         // Suggestions for the user
}

// SignatureMatch is a signature with the lines it matched.
type SignatureMatch struct {
	Signature  *Signature
	Confidence float64 // Fraction of sampled lines matched
	MatchCount int
	SampleLine string
}

// Detector analyzes log lines for known debug output.
type Detector struct {
	signatures []*Signature
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample per file.
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// New creates a new Detector with the default signatures.
func New(opts ...Option) *Detector {
	d := &Detector{
		signatures: DefaultSignatures(),
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFiles samples each file and analyzes the combined lines.
// Rank coverage only makes sense across all of a job's logs.
func (d *Detector) DetectFromFiles(ctx context.Context, paths []string) (*DetectionResult, error) {
	var lines []string
	for _, path := range paths {
		sample, err := d.sampleFile(ctx, path)
		if err != nil {
			return nil, err
		}
		lines = append(lines, sample...)
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines analyzes a slice of log lines.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{
		SampledLines: len(lines),
	}

	if len(lines) == 0 {
		result.Missing = d.missing(nil)
		result.Hints = append(result.Hints, "The log is empty.")
		return result
	}

	type sigStats struct {
		sig        *Signature
		matchCount int
		sampleLine string
	}
	stats := make(map[string]*sigStats)
	ranks := make(map[int64]struct{})

	for _, line := range lines {
		for _, sig := range d.signatures {
			m := sig.Pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			s := stats[sig.Name]
			if s == nil {
				s = &sigStats{sig: sig, sampleLine: line}
				stats[sig.Name] = s
			}
			s.matchCount++

			if result.Library == "" && len(m) > 1 {
				switch sig.Name {
				case SigNCCLBanner:
					result.Library, result.Version = LibraryNCCL, m[1]
				case SigRCCLBanner:
					result.Library, result.Version = LibraryRCCL, m[1]
				}
			}
		}

		if rec, ok := decoder.Decode(line); ok {
			result.Records++
			ranks[rec.GlobalRank] = struct{}{}
			if rec.NRanks > result.MaxNRanks {
				result.MaxNRanks = rec.NRanks
			}
		}
	}

	for _, s := range stats {
		result.Matches = append(result.Matches, SignatureMatch{
			Signature:  s.sig,
			Confidence: float64(s.matchCount) / float64(len(lines)),
			MatchCount: s.matchCount,
			SampleLine: s.sampleLine,
		})
	}

	// Most frequent first, then by name so output is stable
	sort.Slice(result.Matches, func(i, j int) bool {
		if result.Matches[i].MatchCount != result.Matches[j].MatchCount {
			return result.Matches[i].MatchCount > result.Matches[j].MatchCount
		}
		return result.Matches[i].Signature.Name < result.Matches[j].Signature.Name
	})

	for r := range ranks {
		result.GlobalRanks = append(result.GlobalRanks, r)
	}
	sort.Slice(result.GlobalRanks, func(i, j int) bool {
		return result.GlobalRanks[i] < result.GlobalRanks[j]
	})

	result.Missing = d.missing(result)
	result.Hints = d.hints(result)
	return result
}

func (d *Detector) missing(r *DetectionResult) []string {
	var out []string
	for _, sig := range d.signatures {
		if sig.Required && (r == nil || !r.Has(sig.Name)) {
			out = append(out, sig.Name)
		}
	}
	return out
}

func (d *Detector) hints(r *DetectionResult) []string {
	var hints []string

	if !r.Has(SigCollective) {
		hints = append(hints, "No collective call records found. Rerun the application with NCCL_DEBUG=INFO NCCL_DEBUG_SUBSYS=INIT,COLL.")
	} else if r.Records == 0 {
		hints = append(hints, "Collective lines were found but none decoded. The log may come from an unsupported NCCL/RCCL version.")
	}

	if r.Library == "" && r.Records > 0 {
		hints = append(hints, "No version banner found. NCCL_DEBUG_SUBSYS probably lacks INIT.")
	}

	if r.MaxNRanks > 0 && int64(len(r.GlobalRanks)) < r.MaxNRanks {
		hints = append(hints, fmt.Sprintf(
			"Records from %d of %d ranks. Pass every rank's log, or counts in _counts.csv will be low.",
			len(r.GlobalRanks), r.MaxNRanks))
	}

	if r.Has(SigWarn) {
		hints = append(hints, "The log contains NCCL WARN lines. The run may not have completed normally.")
	}

	return hints
}

// sampleFile reads up to sampleSize lines from a file.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	file, err := parser.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	lr := parser.NewLineReader(file)

	for len(lines) < d.sampleSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := lr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines, nil
}

// Has returns true if the named signature matched at least once.
func (r *DetectionResult) Has(name string) bool {
	return r.Match(name) != nil
}

// Match returns the match for the named signature, or nil.
func (r *DetectionResult) Match(name string) *SignatureMatch {
	for i := range r.Matches {
		if r.Matches[i].Signature.Name == name {
			return &r.Matches[i]
		}
	}
	return nil
}

// Ready returns true if every required signature matched and at least one
// record decoded.
func (r *DetectionResult) Ready() bool {
	return len(r.Missing) == 0 && r.Records > 0
}
