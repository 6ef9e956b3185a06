package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadLog reads an entire log file into memory. Compressed files are
// handled as described in Open.
func ReadLog(ctx context.Context, path string) ([]LogLine, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines, err := ReadLines(ctx, f, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

// ReadLogs reads each file in order and concatenates their lines.
func ReadLogs(ctx context.Context, paths []string) ([]LogLine, error) {
	var all []LogLine
	for _, path := range paths {
		lines, err := ReadLog(ctx, path)
		if err != nil {
			return nil, err
		}
		all = append(all, lines...)
	}
	return all, nil
}

// ReadLines reads every line from r. source is recorded on each line.
// Lines may be of any length.
func ReadLines(ctx context.Context, r io.Reader, source string) ([]LogLine, error) {
	lr := NewLineReader(r)

	var lines []LogLine
	lineNum := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := lr.Next()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lineNum++
		lines = append(lines, LogLine{
			Content: text,
			Source:  source,
			LineNum: lineNum,
		})
	}
}

// LineReader returns newline-separated lines with trailing whitespace
// removed. Unlike bufio.Scanner it has no line length limit, so an
// oversized line of application output is read like any other.
type LineReader struct {
	br *bufio.Reader
}

// NewLineReader creates a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{br: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next line. It returns io.EOF once the input is
// exhausted; a final line without a newline is still returned.
func (lr *LineReader) Next() (string, error) {
	line, err := lr.br.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) || line == "" {
			return "", err
		}
	}
	return strings.TrimRightFunc(line, isTrailingSpace), nil
}

func isTrailingSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\v' || r == '\f'
}
