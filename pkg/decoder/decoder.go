package decoder

import (
	"regexp"
	"strconv"

	"github.com/ccollicutt/ncclreplay/pkg/parser"
)

// Pattern matches the COLL debug line NCCL and RCCL print for every
// collective when NCCL_DEBUG=INFO and NCCL_DEBUG_SUBSYS includes COLL.
const Pattern = `^(?P<header>.+)NCCL INFO (?P<method>\w+):` +
	` opCount (?P<opcount>\d+)` +
	` sendbuff (?P<sendbuff>\w+)` +
	` recvbuff (?P<recvbuff>\w+)` +
	` count (?P<count>\d+)` +
	` datatype (?P<datatype>\d+)` +
	` op (?P<op>\d+)` +
	` root (?P<root>\d+)` +
	` comm (?P<comm>\w+)` +
	` \[nranks=(?P<nranks>\d+)\]` +
	` stream (?P<stream>\w+)` +
	` task (?P<task>\d+)` +
	` globalrank (?P<globalrank>\d+)`

var (
	lineRe = regexp.MustCompile(Pattern)

	groupHeader     = lineRe.SubexpIndex("header")
	groupMethod     = lineRe.SubexpIndex("method")
	groupOpCount    = lineRe.SubexpIndex("opcount")
	groupSendBuff   = lineRe.SubexpIndex("sendbuff")
	groupRecvBuff   = lineRe.SubexpIndex("recvbuff")
	groupCount      = lineRe.SubexpIndex("count")
	groupDataType   = lineRe.SubexpIndex("datatype")
	groupOp         = lineRe.SubexpIndex("op")
	groupRoot       = lineRe.SubexpIndex("root")
	groupComm       = lineRe.SubexpIndex("comm")
	groupNRanks     = lineRe.SubexpIndex("nranks")
	groupStream     = lineRe.SubexpIndex("stream")
	groupTask       = lineRe.SubexpIndex("task")
	groupGlobalRank = lineRe.SubexpIndex("globalrank")
)

// Decode matches a single line. It reports false when the line is not a
// complete collective-call record; that is expected for most log lines.
func Decode(line string) (*Record, bool) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	rec := &Record{
		Header:   m[groupHeader],
		Method:   m[groupMethod],
		SendBuff: m[groupSendBuff],
		RecvBuff: m[groupRecvBuff],
		DataType: m[groupDataType],
		Op:       m[groupOp],
		Comm:     m[groupComm],
		Stream:   m[groupStream],
	}

	ints := []struct {
		dst   *int64
		group int
	}{
		{&rec.OpCount, groupOpCount},
		{&rec.Count, groupCount},
		{&rec.Root, groupRoot},
		{&rec.NRanks, groupNRanks},
		{&rec.Task, groupTask},
		{&rec.GlobalRank, groupGlobalRank},
	}
	for _, f := range ints {
		n, err := strconv.ParseInt(m[f.group], 10, 64)
		if err != nil {
			// Digits too long for int64 cannot come from a real run.
			return nil, false
		}
		*f.dst = n
	}

	if rec.NRanks < 1 {
		return nil, false
	}

	return rec, true
}

// DecodeAll decodes each line and drops the ones that do not match.
func DecodeAll(lines []parser.LogLine) []*Record {
	var records []*Record
	for _, line := range lines {
		rec, ok := Decode(line.Content)
		if !ok {
			continue
		}
		rec.Source = line.Source
		rec.LineNum = line.LineNum
		records = append(records, rec)
	}
	return records
}
