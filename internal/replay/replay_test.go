package replay

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/console"
	"github.com/clac-ca/automatic-data-extractor-sub007/internal/output"
)

type captureSink struct {
	mu    sync.Mutex
	items []any
}

func (s *captureSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, v)
	return nil
}

func (s *captureSink) Close() error { return nil }

func (s *captureSink) records() []output.Record {
	var out []output.Record
	for _, v := range s.items {
		if r, ok := v.(output.Record); ok {
			out = append(out, r)
		}
	}
	return out
}

func (s *captureSink) events(typ string) []output.Event {
	var out []output.Event
	for _, v := range s.items {
		if e, ok := v.(output.Event); ok && e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestReplayer(t *testing.T, opts ...Option) *Replayer {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	r, err := New(console.New(console.WithLocation(time.UTC)), opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return r
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func writeGzip(t *testing.T, dir, name, content string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return writeFile(t, dir, name, buf.String())
}

const buildStream = `{"type":"build.started","created_at":"2026-03-01T10:00:00Z"}

{"type":"build.complete","status":"succeeded"}
`

func TestNew_RequiresNormalizer(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil normalizer")
	}
}

func TestReplay_SingleReaderSkipsBlankLines(t *testing.T) {
	r := newTestReplayer(t)
	sink := &captureSink{}

	stats, err := r.Replay(context.Background(), []Source{ReaderSource("-", strings.NewReader(buildStream))}, sink)
	if err != nil {
		t.Fatalf("Replay() error: %v", err)
	}

	recs := sink.records()
	if len(recs) != 2 {
		t.Fatalf("want 2 records, got %d", len(recs))
	}
	if recs[0].Seq != 1 || recs[1].Seq != 3 {
		t.Fatalf("seq = %d, %d; want 1, 3", recs[0].Seq, recs[1].Seq)
	}
	if recs[0].Timestamp != "10:00:00" || recs[0].Origin != console.OriginBuild {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[1].Message != "Build succeeded" || recs[1].Level != console.LevelSuccess {
		t.Fatalf("unexpected second record: %+v", recs[1])
	}

	fin := sink.events(output.EventSourceFinished)
	if len(fin) != 1 || fin[0].Path != "-" || fin[0].LineCount != 2 {
		t.Fatalf("source.finished = %+v", fin)
	}
	if stats.Lines != 2 || stats.Levels[console.LevelSuccess] != 1 || stats.Failed != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestReplay_MultipleSourcesKeepInputOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, name := range []string{"a.ndjson", "b.ndjson", "c.ndjson", "d.ndjson"} {
		var b strings.Builder
		for j := 0; j <= i*20; j++ {
			b.WriteString(`{"event":"run.queued","data":{"mode":"` + name + `"}}` + "\n")
		}
		paths = append(paths, writeFile(t, dir, name, b.String()))
	}
	paths = append(paths, writeGzip(t, dir, "e.ndjson.gz", `{"event":"run.error","data":{"message":"boom"}}`+"\n"))

	r := newTestReplayer(t, WithConcurrency(3))
	sink := &captureSink{}
	stats, err := r.Replay(context.Background(), Sources(paths, nil), sink)
	if err != nil {
		t.Fatalf("Replay() error: %v", err)
	}

	recs := sink.records()
	if want := 1 + 21 + 41 + 61 + 1; len(recs) != want {
		t.Fatalf("want %d records, got %d", want, len(recs))
	}
	srcIdx := 0
	lastSeq := 0
	for _, rec := range recs {
		for rec.Source != paths[srcIdx] {
			srcIdx++
			lastSeq = 0
			if srcIdx == len(paths) {
				t.Fatalf("record from %s out of order", rec.Source)
			}
		}
		if rec.Seq <= lastSeq {
			t.Fatalf("%s: seq %d after %d", rec.Source, rec.Seq, lastSeq)
		}
		lastSeq = rec.Seq
	}

	last := recs[len(recs)-1]
	if last.Level != console.LevelError || last.Body.Kind != console.BodyRunComplete {
		t.Fatalf("gzip source not decoded: %+v", last)
	}
	if stats.Sources != 5 || stats.Levels[console.LevelError] != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if got := len(sink.events(output.EventSourceFinished)); got != 5 {
		t.Fatalf("source.finished events = %d, want 5", got)
	}
}

func TestReplay_MissingSourceContinues(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.ndjson", buildStream)
	missing := filepath.Join(dir, "missing.ndjson")

	r := newTestReplayer(t, WithConcurrency(2))
	sink := &captureSink{}
	stats, err := r.Replay(context.Background(), Sources([]string{missing, good}, nil), sink)

	var serr *SourceError
	if !errors.As(err, &serr) || serr.Path != missing {
		t.Fatalf("error = %v, want SourceError for %s", err, missing)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error should wrap ErrNotExist: %v", err)
	}
	if stats.Failed != 1 || len(sink.records()) != 2 {
		t.Fatalf("stats = %+v, records = %d", stats, len(sink.records()))
	}
	failed := sink.events(output.EventSourceFailed)
	if len(failed) != 1 || failed[0].Path != missing || failed[0].Error == "" {
		t.Fatalf("source.failed = %+v", failed)
	}
}

func TestReplay_FailFast(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.ndjson")
	good := writeFile(t, dir, "good.ndjson", buildStream)

	r := newTestReplayer(t, WithConcurrency(1), WithFailFast(true))
	sink := &captureSink{}
	_, err := r.Replay(context.Background(), Sources([]string{missing, good}, nil), sink)

	var serr *SourceError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want SourceError", err)
	}
	if got := len(sink.records()); got != 0 {
		t.Fatalf("records after fail-fast stop = %d, want 0", got)
	}
}

func TestReplay_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestReplayer(t)
	_, err := r.Replay(ctx, []Source{ReaderSource("-", strings.NewReader(buildStream))}, &captureSink{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestReplay_NilSink(t *testing.T) {
	r := newTestReplayer(t)
	if _, err := r.Replay(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error for nil sink")
	}
}

func TestReplay_LogsWireFormatPerSource(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := newTestReplayer(t, WithLogger(logger), WithConcurrency(2))

	sources := []Source{
		ReaderSource("flat.ndjson", strings.NewReader(buildStream)),
		ReaderSource("enveloped.ndjson", strings.NewReader(`{"event":"run.queued","data":{}}`+"\n")),
	}
	if _, err := r.Replay(context.Background(), sources, &captureSink{}); err != nil {
		t.Fatalf("Replay() error: %v", err)
	}

	out := logs.String()
	for _, want := range []string{
		"path=flat.ndjson wire=flat",
		"path=enveloped.ndjson wire=enveloped",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("logs missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "source wire format"); n != 2 {
		t.Errorf("wire format logged %d times, want once per source", n)
	}
}
