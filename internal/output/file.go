package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/config"
)

// FileSink writes structured output to a file. Encoding is delegated to an
// EmitSink over a buffered writer.
type FileSink struct {
	path string
	file *os.File
	buf  *bufio.Writer
	emit *EmitSink
}

func NewFileSink(path string, format string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("output path required")
	}

	// Infer format if not provided
	if format == "" {
		inferred, err := config.InferOutFormat(path)
		if err != nil {
			return nil, err
		}
		format = inferred
	}

	if format != "json" && format != "ndjson" {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	buf := bufio.NewWriter(f)
	emit, err := NewEmitSink(buf, format)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &FileSink{path: path, file: f, buf: buf, emit: emit}, nil
}

func (s *FileSink) Write(v any) error {
	return s.emit.Write(v)
}

func (s *FileSink) Close() error {
	err := s.emit.Close()
	if flushErr := s.buf.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	if closeErr := s.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
