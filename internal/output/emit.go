package output

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// EmitSink writes an additional machine-readable stream next to the console.
// Unlike ConsoleSink it never filters.
//
//   - json: every Record, as one array written on Close
//   - ndjson: every Event and Record as it arrives
type EmitSink struct {
	writer  io.Writer
	format  string
	mu      sync.Mutex
	records []Record
}

func NewEmitSink(w io.Writer, format string) (*EmitSink, error) {
	if w == nil {
		return nil, errors.New("emit sink writer must not be nil")
	}
	if format != "json" && format != "ndjson" {
		return nil, fmt.Errorf("unsupported emit format: %s", format)
	}
	return &EmitSink{writer: w, format: format}, nil
}

func (s *EmitSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "ndjson" {
		return writeNDJSON(s.writer, v)
	}
	if r, ok := v.(Record); ok {
		s.records = append(s.records, r)
	}
	return nil
}

func (s *EmitSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format != "json" {
		return nil
	}
	return writeRecordArray(s.writer, s.records)
}
