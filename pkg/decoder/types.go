// Package decoder extracts collective-call records from NCCL INFO lines.
package decoder

import "strings"

// DefaultVariantPrefixes are method-name prefixes added by NCCL derivatives.
// MSCCL logs its calls as mscclFuncAllReduce and so on.
var DefaultVariantPrefixes = []string{"mscclFunc"}

// Record is one decoded collective call.
//
// Method, Count, DataType, Op, Root and NRanks drive command synthesis.
// The remaining fields are kept for diagnostics only.
type Record struct {
	Method   string
	Count    int64
	DataType string
	Op       string
	Root     int64
	NRanks   int64

	Header     string
	OpCount    int64
	SendBuff   string
	RecvBuff   string
	Comm       string
	Stream     string
	Task       int64
	GlobalRank int64

	// Source and LineNum locate the line the record came from.
	// They are zero when the record was decoded from a bare string.
	Source  string
	LineNum int
}

// BaseMethod returns Method with the first matching variant prefix removed.
func (r *Record) BaseMethod(prefixes []string) string {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(r.Method, p) {
			return strings.TrimPrefix(r.Method, p)
		}
	}
	return r.Method
}
