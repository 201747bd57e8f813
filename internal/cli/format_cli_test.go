package cli

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	// internal/cli -> repo root
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func goExe() string {
	if runtime.GOOS == "windows" {
		return "go.exe"
	}
	return "go"
}

func buildBinary(t *testing.T) string {
	t.Helper()

	outPath := filepath.Join(t.TempDir(), "adeconsole-test")
	if runtime.GOOS == "windows" {
		outPath += ".exe"
	}

	cmd := exec.Command(goExe(), "build", "-o", outPath, "./cmd/adeconsole")
	cmd.Dir = repoRoot(t)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build adeconsole binary: %v; output=%s", err, string(out))
	}

	return outPath
}

// withoutADEEnv drops ADE_CONSOLE_* and NO_COLOR so a developer's shell
// cannot change the outcome.
func withoutADEEnv() []string {
	var out []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "ADE_CONSOLE_") || strings.HasPrefix(e, "NO_COLOR=") {
			continue
		}
		out = append(out, e)
	}
	return out
}

func exitCode(t *testing.T, err error, out []byte) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %T: %v; output=%s", err, err, string(out))
	}
	return exitErr.ProcessState.ExitCode()
}

const cliStream = `{"type":"build.complete","status":"succeeded","created_at":"2026-03-01T10:00:00Z"}
{"event":"run.error","timestamp":"2026-03-01T10:00:05Z","data":{"message":"boom","exit_code":1}}
`

func TestFormat_ExitCodes(t *testing.T) {
	binary := buildBinary(t)
	dir := t.TempDir()
	events := filepath.Join(dir, "events.ndjson")
	if err := os.WriteFile(events, []byte(cliStream), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		name     string
		args     []string
		env      []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "clean",
			args:     []string{"format", "--timezone", "UTC", events},
			wantCode: 0,
			wantOut:  "10:00:00 [success] build: Build succeeded",
		},
		{
			name:     "fail on error",
			args:     []string{"format", "--fail-on-error", events},
			wantCode: 1,
		},
		{
			name:     "missing input",
			args:     []string{"format", events, filepath.Join(dir, "missing.ndjson")},
			wantCode: 2,
		},
		{
			name:     "bad console format",
			args:     []string{"format", "--console-format", "xml", events},
			wantCode: 3,
			wantOut:  "unsupported --console-format",
		},
		{
			name:     "out format cannot be inferred",
			args:     []string{"format", "--out", "results.unknown", events},
			wantCode: 3,
			wantOut:  "cannot infer output format",
		},
		{
			name:     "bad env value",
			args:     []string{"format", events},
			env:      []string{"ADE_CONSOLE_TIMEZONE=Nowhere/Land"},
			wantCode: 3,
			wantOut:  "--timezone",
		},
		{
			name:     "flag beats env",
			args:     []string{"format", "--timezone", "UTC", events},
			env:      []string{"ADE_CONSOLE_TIMEZONE=Nowhere/Land"},
			wantCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binary, tt.args...)
			cmd.Env = append(withoutADEEnv(), tt.env...)
			out, err := cmd.CombinedOutput()
			if code := exitCode(t, err, out); code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d; output=%s", code, tt.wantCode, string(out))
			}
			if tt.wantOut != "" && !strings.Contains(string(out), tt.wantOut) {
				t.Fatalf("output missing %q; output=%s", tt.wantOut, string(out))
			}
		})
	}
}

func TestFormat_ReadsStdin(t *testing.T) {
	binary := buildBinary(t)
	cmd := exec.Command(binary, "format", "--timezone", "UTC", "-")
	cmd.Env = withoutADEEnv()
	cmd.Stdin = strings.NewReader(cliStream + "not json\n")

	out, err := cmd.Output()
	if code := exitCode(t, err, out); code != 0 {
		t.Fatalf("exit code = %d; output=%s", code, string(out))
	}
	want := "10:00:00 [success] build: Build succeeded\n" +
		"10:00:05 [error] run: Run failed: boom (exit code 1)\n" +
		"[info] raw: not json\n"
	if string(out) != want {
		t.Fatalf("stdout =\n%s\nwant\n%s", out, want)
	}
}

func TestFormat_Help_DocumentsOutputAndExitCodes(t *testing.T) {
	binary := buildBinary(t)
	cmd := exec.Command(binary, "format", "--help")

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("expected zero exit; err=%v; output=%s", err, string(out))
	}

	s := string(out)
	// Command help must document machine-readable output and exit status.
	required := []string{
		"Output:",
		"Exit codes:",
		"NDJSON mode emits",
		"replay.started",
		"source.failed",
		"replay.finished",
		"ADE_CONSOLE_TIMEZONE",
	}
	for _, r := range required {
		if !strings.Contains(s, r) {
			t.Fatalf("expected format --help to contain %q; output=%s", r, s)
		}
	}
}
