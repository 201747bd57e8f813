package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/console"
)

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, console.RunTable())
	out := buf.String()

	for _, want := range []string{
		"RUN EVENTS (",
		"engine.table.summary",
		"run.complete",
		"Prefix families (in match order):",
		"  config.*",
		"  engine.transform.*",
		"  run.column_detector.*",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("printTable output missing %q\n%s", want, out)
		}
	}
	if strings.Index(out, "  config.*") > strings.Index(out, "  engine.config.*") {
		t.Errorf("prefixes out of match order:\n%s", out)
	}
}

func TestPrintTable_BuildHasNoPrefixes(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, console.BuildTable())
	out := buf.String()
	if !strings.Contains(out, "BUILD EVENTS (7)") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	if strings.Contains(out, "Prefix families") {
		t.Fatalf("build table should list no prefixes:\n%s", out)
	}
}

func TestEventsListCmd_Quiet(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"events", "list", "--quiet"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		eventsListQuiet = false
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := len(console.BuildTable().Names()) + len(console.RunTable().Names()) + len(console.RunTable().Prefixes())
	if len(lines) != want {
		t.Fatalf("got %d lines, want %d", len(lines), want)
	}
	if lines[0] != "build.complete" {
		t.Fatalf("first line = %q, want build.complete", lines[0])
	}
	if lines[len(lines)-1] != "run.row_detector.*" {
		t.Fatalf("last line = %q, want run.row_detector.*", lines[len(lines)-1])
	}
}

func TestVersionCmd(t *testing.T) {
	SetBuildInfo("1.2.3", "abc123", "2026-03-01")
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	want := "adeconsole 1.2.3\ncommit: abc123\nbuilt:  2026-03-01\n"
	if buf.String() != want {
		t.Fatalf("version output = %q, want %q", buf.String(), want)
	}
}
