package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const bannerLine = "node01:1234:1234 [0] NCCL INFO NCCL version 2.18.3+cuda12.2"

func TestNewDetectCommand(t *testing.T) {
	cmd := NewDetectCommand()

	if cmd.Use != "detect <log-file>..." {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
	for _, flag := range []string{"output", "sample", "all", "strict"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestRunDetect_Text(t *testing.T) {
	dir := t.TempDir()
	logPath := writeFile(t, dir, "nccl.log", bannerLine+"\n"+allReduceLine+"\n")

	cmd := NewDetectCommand()
	cmd.SetArgs([]string{"--all", logPath})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Library: NCCL 2.18.3+cuda12.2", "Collective records: 1", "Ranks: 1 of 8 seen", "Hint: Records from 1 of 8 ranks", "Ready: yes", allReduceLine} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunDetect_JSON(t *testing.T) {
	dir := t.TempDir()
	logPath := writeFile(t, dir, "nccl.log", bannerLine+"\n")

	cmd := NewDetectCommand()
	cmd.SetArgs([]string{"-o", "json", logPath})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	var out DetectJSONOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Ready {
		t.Error("log without records reported ready")
	}
	if out.Library != "NCCL" || len(out.Missing) != 1 {
		t.Errorf("unexpected output: %+v", out)
	}
}

func TestRunDetect_Strict(t *testing.T) {
	dir := t.TempDir()
	logPath := writeFile(t, dir, "nccl.log", bannerLine+"\n")

	cmd := NewDetectCommand()
	cmd.SetArgs([]string{"--strict", logPath})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("error = %v, want ErrNotReady", err)
	}
}

func TestRunDetect_BadFormat(t *testing.T) {
	dir := t.TempDir()
	logPath := writeFile(t, dir, "nccl.log", bannerLine+"\n")

	cmd := NewDetectCommand()
	cmd.SetArgs([]string{"-o", "yaml", logPath})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("expected error for unknown output format")
	}
}
