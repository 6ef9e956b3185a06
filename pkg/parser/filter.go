package parser

import "strings"

// IsCandidate reports whether a line carries both collective-call markers.
func IsCandidate(content string) bool {
	return strings.Contains(content, MarkerOpCount) && strings.Contains(content, MarkerSendBuff)
}

// Filter returns the lines that carry both markers, in input order.
func Filter(lines []LogLine) []LogLine {
	var out []LogLine
	for _, line := range lines {
		if IsCandidate(line.Content) {
			out = append(out, line)
		}
	}
	return out
}
