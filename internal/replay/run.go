package replay

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/config"
	"github.com/clac-ca/automatic-data-extractor-sub007/internal/console"
	"github.com/clac-ca/automatic-data-extractor-sub007/internal/output"
)

// Exit codes.
const (
	ExitClean      = 0
	ExitErrorLines = 1
	ExitInput      = 2
	ExitFatal      = 3
)

func exitCodeForRun(fatal, inputErrors, errorLines bool) int {
	// 0 = clean replay
	// 1 = error lines produced and --fail-on-error set
	// 2 = some input could not be read
	// 3 = fatal error (replay did not run)
	if fatal {
		return ExitFatal
	}
	if inputErrors {
		return ExitInput
	}
	if errorLines {
		return ExitErrorLines
	}
	return ExitClean
}

// NewNormalizer builds the console normalizer described by cfg.Render.
func NewNormalizer(cfg *config.Config) *console.Normalizer {
	return console.New(
		console.WithLocation(cfg.Render.Location),
		console.WithTimeLayout(cfg.Render.TimeLayout),
		console.WithDownloadBase(cfg.Render.DownloadBase),
	)
}

func setupOutputManager(cfg *config.Config, stdout io.Writer) (*output.Manager, error) {
	outMgr := output.NewManager()
	add := func(name string, s output.Sink, err error) error {
		if err == nil {
			err = outMgr.AddSink(name, s)
		}
		if err != nil {
			_ = outMgr.Close()
		}
		return err
	}

	// Console Sink
	if !cfg.Output.NoConsole {
		filter := output.Filter{Levels: cfg.Output.ConsoleFilterLevel, Origins: cfg.Output.Origin}
		sink := output.NewConsoleSink(stdout, cfg.Output.ConsoleFormat, filter, !cfg.Render.NoColor)
		if err := add("console", sink, nil); err != nil {
			return nil, err
		}
	}

	// Emit Sinks (additional structured streams)
	for _, emit := range cfg.Output.Emit {
		es, err := output.NewEmitSink(stdout, emit)
		if err := add("emit "+emit, es, err); err != nil {
			return nil, err
		}
	}

	// File Sink
	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err := add("file "+cfg.Output.Out, fs, err); err != nil {
			return nil, err
		}
	}

	// Report Sink
	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report)
		if err := add("report "+cfg.Output.Report, rs, err); err != nil {
			return nil, err
		}
	}
	return outMgr, nil
}

// Run replays cfg.Input.Paths through every configured sink and returns the
// process exit code. cfg must already be validated.
func Run(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout io.Writer, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Runtime.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Runtime.Timeout)
		defer cancel()
	}

	r, err := New(NewNormalizer(cfg),
		WithConcurrency(cfg.Runtime.Concurrency),
		WithFailFast(cfg.Runtime.FailFast),
		WithLogger(logger),
	)
	if err != nil {
		logger.Error("create replayer", "error", err)
		return exitCodeForRun(true, false, false)
	}

	outMgr, err := setupOutputManager(cfg, stdout)
	if err != nil {
		logger.Error("create output sinks", "error", err)
		return exitCodeForRun(true, false, false)
	}
	if outMgr.Len() == 0 {
		logger.Warn("no output configured; lines are counted but not written")
	}

	sources := Sources(cfg.Input.Paths, stdin)
	_ = outMgr.Write(output.Event{Type: output.EventReplayStarted, Sources: len(sources)})

	stats, replayErr := r.Replay(ctx, sources, outMgr)

	var serr *SourceError
	inputErrors := stats.Failed > 0 || errors.As(replayErr, &serr)
	fatal := replayErr != nil && !inputErrors
	errorLines := cfg.Output.FailOnError && stats.Levels[console.LevelError] > 0
	if replayErr != nil {
		logger.Error("replay finished with errors", "error", replayErr)
	}

	code := exitCodeForRun(fatal, inputErrors, errorLines)
	_ = outMgr.Write(output.Event{
		Type:      output.EventReplayFinished,
		Sources:   stats.Sources,
		LineCount: stats.Lines,
		ExitCode:  code,
	})
	if err := outMgr.Close(); err != nil {
		logger.Error("close output sinks", "error", err)
		return exitCodeForRun(true, false, false)
	}
	logger.Debug("replay complete",
		"sources", stats.Sources,
		"lines", stats.Lines,
		"errors", stats.Levels[console.LevelError],
		"exit_code", code,
	)
	return code
}
