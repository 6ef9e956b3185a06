// Package aggregate collapses synthesized commands into output lists.
package aggregate

import (
	"errors"
	"fmt"

	"github.com/ccollicutt/ncclreplay/pkg/synth"
)

// ErrTableMismatch means a unique command ended up without exactly one
// tally and one rank count. It indicates a bug, not bad input.
var ErrTableMismatch = errors.New("count table and rank table disagree")

// Row is one unique command and its tallies.
type Row struct {
	Command string

	// Occurrences is the raw number of times the command was seen.
	Occurrences int64

	// NRanks is the rank count of the first occurrence.
	NRanks int64

	// Count is Occurrences / NRanks, truncated. Every rank logs its own
	// copy of a collective call, so this approximates the number of calls.
	Count int64
}

// Exact reports whether Occurrences is a multiple of NRanks.
func (r Row) Exact() bool {
	return r.Occurrences%r.NRanks == 0
}

// Table holds unique commands in first-seen order.
type Table struct {
	Rows []Row
}

// Commands returns the unique command strings in order.
func (t *Table) Commands() []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Command
	}
	return out
}

// Inexact returns the rows whose tally is not a multiple of their rank
// count. This usually means the log holds only some ranks' output.
func (t *Table) Inexact() []Row {
	var out []Row
	for _, row := range t.Rows {
		if !row.Exact() {
			out = append(out, row)
		}
	}
	return out
}

// PassThrough returns every command string unchanged.
func PassThrough(cmds []synth.Command) []string {
	out := make([]string, len(cmds))
	for i, cmd := range cmds {
		out[i] = cmd.Text
	}
	return out
}

// Unique deduplicates commands and normalizes their tallies.
func Unique(cmds []synth.Command) (*Table, error) {
	var order []string
	counts := make(map[string]int64)
	nranks := make(map[string]int64)

	for _, cmd := range cmds {
		if _, ok := counts[cmd.Text]; !ok {
			order = append(order, cmd.Text)
			nranks[cmd.Text] = cmd.NRanks
		}
		counts[cmd.Text]++
	}

	if len(counts) != len(nranks) || len(counts) != len(order) {
		return nil, fmt.Errorf("%w: %d tallies, %d rank counts, %d commands",
			ErrTableMismatch, len(counts), len(nranks), len(order))
	}

	table := &Table{Rows: make([]Row, 0, len(order))}
	for _, text := range order {
		n := nranks[text]
		if n < 1 {
			return nil, fmt.Errorf("%w: %q has rank count %d", ErrTableMismatch, text, n)
		}
		table.Rows = append(table.Rows, Row{
			Command:     text,
			Occurrences: counts[text],
			NRanks:      n,
			Count:       counts[text] / n,
		})
	}
	return table, nil
}
