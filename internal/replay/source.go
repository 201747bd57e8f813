package replay

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// StdinPath names the standard input source.
const StdinPath = "-"

// maxLineBytes bounds a single event line.
const maxLineBytes = 16 << 20

// Source is one NDJSON event stream.
type Source struct {
	Path string
	open func() (io.ReadCloser, error)
}

// FileSource reads path from disk; ".gz" files are decompressed.
func FileSource(path string) Source {
	return Source{Path: path, open: func() (io.ReadCloser, error) { return openFile(path) }}
}

// ReaderSource wraps an already open stream such as stdin. It is not closed.
func ReaderSource(name string, r io.Reader) Source {
	return Source{Path: name, open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil }}
}

// Sources maps CLI paths to sources; "-" is stdin.
func Sources(paths []string, stdin io.Reader) []Source {
	out := make([]Source, 0, len(paths))
	for _, p := range paths {
		if p == StdinPath {
			out = append(out, ReaderSource(StdinPath, stdin))
			continue
		}
		out = append(out, FileSource(p))
	}
	return out
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g gzipFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("gzip %s: %w", path, err)
	}
	return gzipFile{Reader: zr, f: f}, nil
}

// scanLines calls fn for every non-blank line of src with its 1-based line
// number. The byte slice is only valid during the call.
func scanLines(ctx context.Context, src Source, fn func(seq int, line []byte) error) error {
	rc, err := src.open()
	if err != nil {
		return err
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	seq := 0
	for sc.Scan() {
		seq++
		if err := ctx.Err(); err != nil {
			return err
		}
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := fn(seq, line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("line %d: %w", seq+1, err)
	}
	return nil
}
