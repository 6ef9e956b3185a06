package parser

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadLog(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "rank0.log")
	content := "host:1:1 [0] NCCL INFO Bootstrap : Using eth0\r\n" +
		"host:1:1 [0] NCCL INFO AllReduce: opCount 0 sendbuff 0x1   \n" +
		"\n" +
		"last line without newline"
	if err := os.WriteFile(logFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadLog(context.Background(), logFile)
	if err != nil {
		t.Fatalf("ReadLog() error = %v", err)
	}

	if len(lines) != 4 {
		t.Fatalf("Got %d lines, want 4", len(lines))
	}
	if lines[0].Content != "host:1:1 [0] NCCL INFO Bootstrap : Using eth0" {
		t.Errorf("CRLF not stripped: %q", lines[0].Content)
	}
	if strings.HasSuffix(lines[1].Content, " ") {
		t.Errorf("trailing spaces not stripped: %q", lines[1].Content)
	}
	if lines[3].LineNum != 4 {
		t.Errorf("LineNum = %d, want 4", lines[3].LineNum)
	}
	if lines[0].Source != logFile {
		t.Errorf("Source = %q, want %q", lines[0].Source, logFile)
	}
}

func TestReadLog_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "empty.log")
	if err := os.WriteFile(logFile, nil, 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadLog(context.Background(), logFile)
	if err != nil {
		t.Fatalf("ReadLog() error = %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("Got %d lines, want 0", len(lines))
	}
}

func TestReadLog_FileNotFound(t *testing.T) {
	_, err := ReadLog(context.Background(), "/nonexistent/file.log")
	if err == nil {
		t.Error("ReadLog() expected error for missing file")
	}
}

func TestReadLogs_PreservesFileOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "b.log")
	second := filepath.Join(dir, "a.log")
	if err := os.WriteFile(first, []byte("from b\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("from a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadLogs(context.Background(), []string{first, second})
	if err != nil {
		t.Fatalf("ReadLogs() error = %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Got %d lines, want 2", len(lines))
	}
	if lines[0].Content != "from b" || lines[1].Content != "from a" {
		t.Errorf("lines out of order: %+v", lines)
	}
}

func TestReadLogs_StopsOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.log")
	if err := os.WriteFile(ok, []byte("line\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadLogs(context.Background(), []string{ok, filepath.Join(dir, "missing.log")})
	if err == nil {
		t.Error("ReadLogs() expected error for missing file")
	}
}

func TestReadLines_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadLines(ctx, strings.NewReader("a\nb\n"), "test")
	if err != context.Canceled {
		t.Errorf("ReadLines() error = %v, want context.Canceled", err)
	}
}

func TestReadLines_LineLongerThanScannerLimit(t *testing.T) {
	record := "host:1:1 [0] NCCL INFO AllReduce: opCount 0 sendbuff 0x1"
	long := strings.Repeat("x", 2*1024*1024)
	input := record + "\n" + long + "\n" + record + "\n"

	lines, err := ReadLines(context.Background(), strings.NewReader(input), "rank0.log")
	if err != nil {
		t.Fatalf("ReadLines() error = %v", err)
	}

	if len(lines) != 3 {
		t.Fatalf("Got %d lines, want 3", len(lines))
	}
	if len(lines[1].Content) != len(long) {
		t.Errorf("long line length = %d, want %d", len(lines[1].Content), len(long))
	}
	if lines[2].Content != record || lines[2].LineNum != 3 {
		t.Errorf("line after long line = %+v", lines[2])
	}
}

func TestLineReader_Next(t *testing.T) {
	lr := NewLineReader(strings.NewReader("one  \r\n\ntwo"))

	var got []string
	for {
		line, err := lr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		got = append(got, line)
	}

	want := []string{"one", "", "two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
}
