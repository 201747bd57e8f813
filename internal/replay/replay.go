// Package replay formats recorded NDJSON event streams into console records.
package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/console"
	"github.com/clac-ca/automatic-data-extractor-sub007/internal/envelope"
	"github.com/clac-ca/automatic-data-extractor-sub007/internal/output"
)

// SourceError reports an input that could not be read to the end.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Stats summarises a replay.
type Stats struct {
	Sources int
	Failed  int
	Lines   int
	Levels  map[console.Level]int
}

func (s *Stats) count(level console.Level) {
	s.Lines++
	s.Levels[level]++
}

// Replayer formats sources with a Normalizer and writes records to a sink.
// Records are written in source order, and in line order within a source,
// regardless of how many sources are read concurrently.
type Replayer struct {
	normalizer  *console.Normalizer
	concurrency int
	failFast    bool
	logger      *slog.Logger
}

type Option func(*Replayer)

// WithConcurrency bounds how many sources are read at once.
func WithConcurrency(n int) Option {
	return func(r *Replayer) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithFailFast stops at the first unreadable source.
func WithFailFast(on bool) Option {
	return func(r *Replayer) { r.failFast = on }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Replayer) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(n *console.Normalizer, opts ...Option) (*Replayer, error) {
	if n == nil {
		return nil, errors.New("normalizer is nil")
	}
	r := &Replayer{normalizer: n, concurrency: 1, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Replay writes one output.Record per non-blank input line to sink, followed
// by a source.finished or source.failed event per source. Unreadable sources
// are joined into the returned error as *SourceError values; with fail-fast
// the first one stops the replay.
func (r *Replayer) Replay(ctx context.Context, sources []Source, sink output.Sink) (Stats, error) {
	stats := Stats{Sources: len(sources), Levels: make(map[console.Level]int)}
	if sink == nil {
		return stats, errors.New("sink is nil")
	}
	if len(sources) == 1 {
		err := r.stream(ctx, sources[0], sink, &stats)
		return stats, err
	}
	return r.fanOut(ctx, sources, sink, &stats)
}

// stream formats a single source line by line so live input shows up as it
// arrives.
func (r *Replayer) stream(ctx context.Context, src Source, sink output.Sink, stats *Stats) error {
	lines := 0
	var writeErr error
	readErr := scanLines(ctx, src, func(seq int, line []byte) error {
		rec := r.record(src, seq, line, lines == 0)
		lines++
		stats.count(rec.Level)
		if err := sink.Write(rec); err != nil {
			writeErr = err
			return err
		}
		return nil
	})
	if writeErr != nil {
		return writeErr
	}
	return r.finish(src, lines, readErr, sink, stats)
}

type sourceResult struct {
	records []output.Record
	err     error
	done    chan struct{}
}

// fanOut reads sources concurrently and writes each one's records once it
// and every source before it have completed.
func (r *Replayer) fanOut(ctx context.Context, sources []Source, sink output.Sink, stats *Stats) (Stats, error) {
	results := make([]*sourceResult, len(sources))
	for i := range results {
		results[i] = &sourceResult{done: make(chan struct{})}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	go func() {
		for i, src := range sources {
			src := src
			res := results[i]
			g.Go(func() error {
				defer close(res.done)
				if err := gctx.Err(); err != nil {
					res.err = err
					return nil
				}
				res.err = scanLines(gctx, src, func(seq int, line []byte) error {
					res.records = append(res.records, r.record(src, seq, line, len(res.records) == 0))
					return nil
				})
				if res.err != nil && r.failFast {
					return &SourceError{Path: src.Path, Err: res.err}
				}
				return nil
			})
		}
	}()

	var errs []error
	stopped := false
	for i, src := range sources {
		res := results[i]
		<-res.done
		if stopped {
			continue
		}
		for _, rec := range res.records {
			stats.count(rec.Level)
			if err := sink.Write(rec); err != nil {
				errs = append(errs, err)
			}
		}
		if err := r.finish(src, len(res.records), res.err, sink, stats); err != nil {
			if r.failFast {
				stopped = true
				var serr *SourceError
				if errors.As(err, &serr) {
					// g.Wait reports the first failure.
					continue
				}
			}
			errs = append(errs, err)
		}
	}

	// Every done channel is closed, so every g.Go call has been made.
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}
	return *stats, errors.Join(errs...)
}

// record formats one input line. The first record of a source also logs
// which wire shape the stream is written in.
func (r *Replayer) record(src Source, seq int, line []byte, first bool) output.Record {
	if first {
		if ev, ok := envelope.Decode(line); ok {
			r.logger.Debug("source wire format", "path", src.Path, "wire", ev.Version().String())
		}
	}
	return output.Record{Source: src.Path, Seq: seq, Line: r.normalizer.Format(line)}
}

// finish records the end of one source.
func (r *Replayer) finish(src Source, lines int, readErr error, sink output.Sink, stats *Stats) error {
	if readErr != nil {
		stats.Failed++
		serr := &SourceError{Path: src.Path, Err: readErr}
		r.logger.Warn("source failed", "path", src.Path, "lines", lines, "error", readErr)
		if err := sink.Write(output.Event{Type: output.EventSourceFailed, Path: src.Path, LineCount: lines, Error: readErr.Error()}); err != nil {
			return errors.Join(serr, err)
		}
		return serr
	}
	r.logger.Debug("source replayed", "path", src.Path, "lines", lines)
	return sink.Write(output.Event{Type: output.EventSourceFinished, Path: src.Path, LineCount: lines})
}
