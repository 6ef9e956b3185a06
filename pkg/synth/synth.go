// Package synth turns decoded collective calls into nccl-tests benchmark
// command lines.
package synth

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ccollicutt/ncclreplay/pkg/collective"
	"github.com/ccollicutt/ncclreplay/pkg/decoder"
)

// DefaultBinaryPrefix is where nccl-tests/rccl-tests put their binaries
// after `make`.
const DefaultBinaryPrefix = "./build/"

// ErrSizeOverflow is returned when count × width does not fit in int64.
var ErrSizeOverflow = errors.New("message size overflows int64")

// Command is one synthesized benchmark invocation.
type Command struct {
	// Text is the full command line.
	Text string

	// NRanks is the rank count of the call, used to normalize tallies.
	NRanks int64

	// Binary is the benchmark binary name without the prefix.
	Binary string

	// Bytes is the message size passed to -b and -e.
	Bytes int64
}

// Synthesizer formats benchmark commands.
type Synthesizer struct {
	binaryPrefix    string
	variantPrefixes []string
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithBinaryPrefix sets the path prepended to every benchmark binary.
func WithBinaryPrefix(prefix string) Option {
	return func(s *Synthesizer) {
		s.binaryPrefix = prefix
	}
}

// WithVariantPrefixes sets the method-name prefixes stripped before lookup.
func WithVariantPrefixes(prefixes []string) Option {
	return func(s *Synthesizer) {
		s.variantPrefixes = prefixes
	}
}

// New creates a Synthesizer.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		binaryPrefix:    DefaultBinaryPrefix,
		variantPrefixes: decoder.DefaultVariantPrefixes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize builds the command for a single record.
func (s *Synthesizer) Synthesize(rec *decoder.Record) (Command, error) {
	op, err := collective.ParseOp(rec.BaseMethod(s.variantPrefixes))
	if err != nil {
		return Command{}, err
	}
	dt, err := collective.ParseDataType(rec.DataType)
	if err != nil {
		return Command{}, err
	}
	redop, err := collective.ParseReduceOp(rec.Op)
	if err != nil {
		return Command{}, err
	}

	if rec.Count > math.MaxInt64/dt.Width() {
		return Command{}, fmt.Errorf("%w: count %d of %s", ErrSizeOverflow, rec.Count, dt)
	}
	size := rec.Count * dt.Width()
	totalBytes := strconv.FormatInt(size, 10)

	var b strings.Builder
	b.WriteString(s.binaryPrefix)
	b.WriteString(op.Binary())
	b.WriteString(" -d ")
	b.WriteString(dt.Name())
	b.WriteString(" -b ")
	b.WriteString(totalBytes)
	b.WriteString(" -e ")
	b.WriteString(totalBytes)
	b.WriteString(" -o ")
	b.WriteString(redop.Name())
	b.WriteString(" -g ")
	b.WriteString(strconv.FormatInt(rec.NRanks, 10))

	return Command{Text: b.String(), NRanks: rec.NRanks, Binary: op.Binary(), Bytes: size}, nil
}

// SynthesizeAll builds commands for every record in order. The first
// lookup failure aborts and is reported with the line it came from.
func (s *Synthesizer) SynthesizeAll(records []*decoder.Record) ([]Command, error) {
	cmds := make([]Command, 0, len(records))
	for _, rec := range records {
		cmd, err := s.Synthesize(rec)
		if err != nil {
			if rec.Source != "" {
				return nil, fmt.Errorf("%s:%d: %w", rec.Source, rec.LineNum, err)
			}
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}
