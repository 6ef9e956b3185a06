// Package collective defines the fixed lookup tables that map NCCL/RCCL
// debug log codes onto nccl-tests benchmark flags.
//
// Every table is keyed by a typed enumeration. The Parse functions are the
// only way to obtain a value from log text, so a value that exists always
// has a table entry.
package collective

import (
	"errors"
	"fmt"
	"strconv"
)

// Lookup failures. These are fatal for a run: guessing a mapping would
// produce a benchmark command that does not match the observed call.
var (
	ErrUnknownOp       = errors.New("unknown collective operation")
	ErrUnknownDataType = errors.New("unknown datatype code")
	ErrUnknownReduceOp = errors.New("unknown reduction op code")
)

// Op is a collective operation as named in NCCL INFO lines.
type Op string

const (
	OpBroadcast     Op = "Broadcast"
	OpReduce        Op = "Reduce"
	OpAllGather     Op = "AllGather"
	OpReduceScatter Op = "ReduceScatter"
	OpAllReduce     Op = "AllReduce"
	OpGather        Op = "Gather"
	OpScatter       Op = "Scatter"
	OpAllToAll      Op = "AllToAll"
	OpAllToAllv     Op = "AllToAllv"
	OpSend          Op = "Send"
	OpRecv          Op = "Recv"
)

// opBinaries maps each operation to its benchmark binary.
// Send and Recv share the point-to-point benchmark.
var opBinaries = map[Op]string{
	OpBroadcast:     "broadcast_perf",
	OpReduce:        "reduce_perf",
	OpAllGather:     "all_gather_perf",
	OpReduceScatter: "reduce_scatter_perf",
	OpAllReduce:     "all_reduce_perf",
	OpGather:        "gather_perf",
	OpScatter:       "scatter_perf",
	OpAllToAll:      "alltoall_perf",
	OpAllToAllv:     "alltoallv_perf",
	OpSend:          "sendrecv_perf",
	OpRecv:          "sendrecv_perf",
}

// ParseOp returns the operation for a method name.
func ParseOp(name string) (Op, error) {
	op := Op(name)
	if _, ok := opBinaries[op]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOp, name)
	}
	return op, nil
}

// Binary returns the benchmark binary name for the operation.
func (o Op) Binary() string {
	return opBinaries[o]
}

// Ops returns all known operations in a stable order.
func Ops() []Op {
	return []Op{
		OpBroadcast, OpReduce, OpAllGather, OpReduceScatter, OpAllReduce,
		OpGather, OpScatter, OpAllToAll, OpAllToAllv, OpSend, OpRecv,
	}
}

// DataType is an ncclDataType_t code.
type DataType int

const (
	Int8 DataType = iota
	Uint8
	Int32
	Uint32
	Int64
	Uint64
	Half
	Float
	Double
	BFloat16

	numDataTypes
)

type dataTypeInfo struct {
	name  string
	width int64
}

var dataTypes = [numDataTypes]dataTypeInfo{
	Int8:     {"int8", 1},
	Uint8:    {"uint8", 1},
	Int32:    {"int32", 4},
	Uint32:   {"uint32", 4},
	Int64:    {"int64", 8},
	Uint64:   {"uint64", 8},
	Half:     {"half", 2},
	Float:    {"float", 4},
	Double:   {"double", 8},
	BFloat16: {"bfloat16", 2},
}

// parseCode accepts only the canonical decimal form NCCL prints, so "07"
// or "+7" is unknown rather than an alias of 7.
func parseCode(code string) (int, bool) {
	n, err := strconv.Atoi(code)
	if err != nil || strconv.Itoa(n) != code {
		return 0, false
	}
	return n, true
}

// ParseDataType parses a decimal datatype code.
func ParseDataType(code string) (DataType, error) {
	n, ok := parseCode(code)
	if !ok || n < 0 || n >= int(numDataTypes) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDataType, code)
	}
	return DataType(n), nil
}

// Name returns the benchmark -d flag value.
func (d DataType) Name() string {
	return dataTypes[d].name
}

// Width returns the element size in bytes.
func (d DataType) Width() int64 {
	return dataTypes[d].width
}

func (d DataType) String() string {
	return d.Name()
}

// ReduceOp is an ncclRedOp_t code.
type ReduceOp int

const (
	Sum ReduceOp = iota
	Prod
	Max
	Min
	// All is reported by RCCL for operations that carry no reduction.
	All

	numReduceOps
)

var reduceOpNames = [numReduceOps]string{
	Sum:  "sum",
	Prod: "prod",
	Max:  "max",
	Min:  "min",
	All:  "all",
}

// ParseReduceOp parses a decimal reduction op code.
func ParseReduceOp(code string) (ReduceOp, error) {
	n, ok := parseCode(code)
	if !ok || n < 0 || n >= int(numReduceOps) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownReduceOp, code)
	}
	return ReduceOp(n), nil
}

// Name returns the benchmark -o flag value.
func (r ReduceOp) Name() string {
	return reduceOpNames[r]
}

func (r ReduceOp) String() string {
	return r.Name()
}

// DataTypes returns all known datatypes in code order.
func DataTypes() []DataType {
	out := make([]DataType, numDataTypes)
	for i := range out {
		out[i] = DataType(i)
	}
	return out
}

// ReduceOps returns all known reduction ops in code order.
func ReduceOps() []ReduceOp {
	out := make([]ReduceOp, numReduceOps)
	for i := range out {
		out[i] = ReduceOp(i)
	}
	return out
}
