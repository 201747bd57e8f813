package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/console"
)

func TestNewFileSink_InferFormat(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.json", "out.ndjson", "out.jsonl"} {
		s, err := NewFileSink(filepath.Join(dir, name), "")
		if err != nil {
			t.Fatalf("NewFileSink(%s) error: %v", name, err)
		}
		_ = s.Close()
	}
}

func TestNewFileSink_UnknownExtension_Errors_WhenFormatOmitted(t *testing.T) {
	_, err := NewFileSink(filepath.Join(t.TempDir(), "out.unknown"), "")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "cannot infer output format") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFileSink_UnsupportedFormat_Errors(t *testing.T) {
	_, err := NewFileSink(filepath.Join(t.TempDir(), "out.json"), "xml")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported output format") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFileSink_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.ndjson")
	s, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
}

func TestFileSink_JSON_AggregatesRecords_AndIgnoresEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	s, err := NewFileSink(path, "json")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	if err := s.Write(Event{Type: EventReplayStarted}); err != nil {
		t.Fatalf("Write event failed: %v", err)
	}
	if err := s.Write(testRecord("a", 1, console.LevelSuccess, "Build succeeded")); err != nil {
		t.Fatalf("Write record failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var got []Record
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, b)
	}
	if len(got) != 1 || got[0].Message != "Build succeeded" {
		t.Fatalf("unexpected records: %+v", got)
	}
}
