// Package parser reads NCCL debug logs and selects the lines that record
// collective calls.
package parser

// LogLine is a raw log line with its origin.
type LogLine struct {
	// Content is the line text with trailing whitespace removed.
	Content string

	// Source is the file path this line came from.
	Source string

	// LineNum is the 1-based line number in the source file.
	LineNum int
}

// Markers that every collective-call record carries. A line missing
// either one is never a candidate for decoding.
const (
	MarkerOpCount  = "opCount"
	MarkerSendBuff = "sendbuff"
)
