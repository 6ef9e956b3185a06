package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()

	want := map[string]bool{"decode": false, "detect": false, "init": false, "validate": false, "version": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestRun_Generate(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "nccl.log")
	line := "h NCCL INFO Broadcast: opCount 0 sendbuff 0x1 recvbuff 0x1 count 8 datatype 4 op 0 root 0 comm 0x1 [nranks=2] stream 0x2 task 0 globalrank 0\n"
	if err := os.WriteFile(logPath, []byte(line), 0644); err != nil {
		t.Fatal(err)
	}

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)

	code := run(root, []string{"--nccl-debug-log", logPath, "--output-script-name", filepath.Join(dir, "net")})
	if code != ExitOK {
		t.Fatalf("exit code = %d, want %d", code, ExitOK)
	}

	data, err := os.ReadFile(filepath.Join(dir, "net.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "./build/broadcast_perf -d int64 -b 64 -e 64 -o sum -g 2\n" {
		t.Errorf("script = %q", data)
	}
}

func TestRun_ErrorExitCode(t *testing.T) {
	root := NewRootCommand()
	var errBuf bytes.Buffer
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&errBuf)

	code := run(root, []string{"--nccl-debug-log", "/nonexistent/nccl.log", "--output-script-name", filepath.Join(t.TempDir(), "x")})
	if code != ExitError {
		t.Errorf("exit code = %d, want %d", code, ExitError)
	}
	if !strings.HasPrefix(errBuf.String(), "Error: ") {
		t.Errorf("stderr = %q", errBuf.String())
	}
}

func TestRun_VersionDoesNotNeedLog(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)

	if code := run(root, []string{"version"}); code != ExitOK {
		t.Fatalf("exit code = %d, want %d", code, ExitOK)
	}
	if !strings.HasPrefix(out.String(), "ncclreplay ") {
		t.Errorf("stdout = %q", out.String())
	}
}
