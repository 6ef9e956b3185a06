package aggregate

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ccollicutt/ncclreplay/pkg/synth"
)

// SizeStats profiles the message sizes, in bytes, of every call that maps
// to one benchmark binary.
type SizeStats struct {
	Binary string
	Calls  int
	Total  int64
	Min    float64
	Median float64
	P90    float64
	Max    float64
	Mean   float64
}

// Sizes groups commands by benchmark binary, in first-seen order, and
// profiles their message sizes. Every rank's copy of a call is counted.
func Sizes(cmds []synth.Command) []SizeStats {
	var order []string
	byBinary := make(map[string][]float64)
	// Totals stay integral; float64 sums lose bytes past 2^53.
	totals := make(map[string]int64)
	for _, cmd := range cmds {
		if _, ok := byBinary[cmd.Binary]; !ok {
			order = append(order, cmd.Binary)
		}
		byBinary[cmd.Binary] = append(byBinary[cmd.Binary], float64(cmd.Bytes))
		totals[cmd.Binary] += cmd.Bytes
	}

	out := make([]SizeStats, 0, len(order))
	for _, bin := range order {
		xs := byBinary[bin]
		// stat.Quantile requires sorted input.
		sort.Float64s(xs)
		out = append(out, SizeStats{
			Binary: bin,
			Calls:  len(xs),
			Total:  totals[bin],
			Min:    xs[0],
			Median: stat.Quantile(0.5, stat.Empirical, xs, nil),
			P90:    stat.Quantile(0.9, stat.Empirical, xs, nil),
			Max:    xs[len(xs)-1],
			Mean:   stat.Mean(xs, nil),
		})
	}
	return out
}
