package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/ncclreplay/pkg/aggregate"
)

func TestWriteScript(t *testing.T) {
	var buf bytes.Buffer
	err := WriteScript(&buf, []string{"b", "a", "b"})
	if err != nil {
		t.Fatalf("WriteScript() error = %v", err)
	}
	if buf.String() != "b\na\nb\n" {
		t.Errorf("WriteScript() wrote %q", buf.String())
	}
}

func TestWriteScript_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteScript(&buf, nil); err != nil {
		t.Fatalf("WriteScript() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("WriteScript(nil) wrote %q, want nothing", buf.String())
	}
}

func TestWriteCounts(t *testing.T) {
	table := &aggregate.Table{Rows: []aggregate.Row{
		{Command: "./build/all_reduce_perf -d float -b 4 -e 4 -o sum -g 8", Occurrences: 16, NRanks: 8, Count: 2},
		{Command: "./build/broadcast_perf -d int8 -b 1 -e 1 -o sum -g 8", Occurrences: 3, NRanks: 8, Count: 0},
	}}

	var buf bytes.Buffer
	if err := WriteCounts(&buf, table); err != nil {
		t.Fatalf("WriteCounts() error = %v", err)
	}

	want := "sep=|\n" +
		"./build/all_reduce_perf -d float -b 4 -e 4 -o sum -g 8|2\n" +
		"./build/broadcast_perf -d int8 -b 1 -e 1 -o sum -g 8|0\n"
	if buf.String() != want {
		t.Errorf("WriteCounts() wrote\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestFileWriter_Script(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.sh")

	var msgs bytes.Buffer
	fw := NewFileWriter(&msgs)
	if err := fw.Script(path, []string{"cmd one", "cmd two"}); err != nil {
		t.Fatalf("Script() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "cmd one\ncmd two\n" {
		t.Errorf("file content = %q", data)
	}

	want := "INFO: Dumped out the commands in a script named: " + path + "\n"
	if msgs.String() != want {
		t.Errorf("confirmation = %q, want %q", msgs.String(), want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0111 != 0 {
		t.Errorf("script is executable (%v), want plain file", info.Mode())
	}
}

func TestFileWriter_Counts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out_counts.csv")
	table := &aggregate.Table{Rows: []aggregate.Row{{Command: "x", Occurrences: 1, NRanks: 1, Count: 1}}}

	var msgs bytes.Buffer
	if err := NewFileWriter(&msgs).Counts(path, table); err != nil {
		t.Fatalf("Counts() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "sep=|\nx|1\n" {
		t.Errorf("file content = %q", data)
	}
	if !strings.Contains(msgs.String(), "count of each command") || !strings.Contains(msgs.String(), path) {
		t.Errorf("confirmation = %q", msgs.String())
	}
}

func TestFileWriter_UnwritablePath(t *testing.T) {
	var msgs bytes.Buffer
	err := NewFileWriter(&msgs).Script(filepath.Join(t.TempDir(), "missing", "out.sh"), []string{"x"})
	if err == nil {
		t.Fatal("Script() expected error for missing directory")
	}
	if msgs.Len() != 0 {
		t.Errorf("confirmation printed on failure: %q", msgs.String())
	}
}

func TestNewFileWriter_NilMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sh")
	if err := NewFileWriter(nil).Script(path, []string{"x"}); err != nil {
		t.Fatalf("Script() error = %v", err)
	}
}

func TestWriteCounts_QuotesSeparatorInCommand(t *testing.T) {
	table := &aggregate.Table{Rows: []aggregate.Row{
		{Command: "/opt/a|b/all_reduce_perf -g 2", Occurrences: 2, NRanks: 2, Count: 1},
	}}

	var buf bytes.Buffer
	if err := WriteCounts(&buf, table); err != nil {
		t.Fatalf("WriteCounts() error = %v", err)
	}

	want := "sep=|\n\"/opt/a|b/all_reduce_perf -g 2\"|1\n"
	if buf.String() != want {
		t.Errorf("WriteCounts() = %q, want %q", buf.String(), want)
	}
}
