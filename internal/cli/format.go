package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/config"
	"github.com/clac-ca/automatic-data-extractor-sub007/internal/flags"
	"github.com/clac-ca/automatic-data-extractor-sub007/internal/logging"
	"github.com/clac-ca/automatic-data-extractor-sub007/internal/replay"
)

var cfg = config.New()

var formatCmd = &cobra.Command{
	Use:   "format [FILE|-]...",
	Short: "Format recorded event streams as console lines",
	Long: `Format one or more NDJSON event streams as console lines.

Each argument is a file with one JSON event per line; "-" (or no argument)
reads stdin. Files ending in .gz are decompressed. Blank lines are skipped.
Several files are read concurrently (see --concurrency) but their lines are
always written in argument order.

Both wire versions are accepted:
	flat:      {"type": "build.complete", "created_at": "...", "status": "succeeded"}
	enveloped: {"event": "run.complete", "timestamp": "...", "data": {...}}

Output:
	Console output is controlled by --console-format (default: text).
	Structured outputs can be written via:
	- --out / --out-format: write an aggregate JSON array or NDJSON stream to a file
	- --emit: write an additional structured stream to stdout (json or ndjson)
	- --report: write a Markdown summary of levels, origins, sources and errors
	- --no-console: suppress the console sink (use with --emit/--out for machine output)

	NDJSON mode emits one JSON object per line. Objects are lifecycle Events with a
	"type" field (replay.started, line, source.finished, source.failed,
	replay.finished). Console lines are Events with type "line" carrying the
	line's level, message, timestamp, origin and body.

Environment:
	ADE_CONSOLE_TIMEZONE       default for --timezone
	ADE_CONSOLE_TIME_LAYOUT    default for --time-layout
	ADE_CONSOLE_DOWNLOAD_BASE  default for --download-base
	ADE_CONSOLE_CONCURRENCY    default for --concurrency
	ADE_CONSOLE_LOG_LEVEL      default for --log-level
	NO_COLOR                   any non-empty value disables colour
	Flags given on the command line win over the environment.

Exit codes:
	0 = all input formatted
	1 = error lines were produced and --fail-on-error is set
	2 = some input could not be read
	3 = fatal error (invalid flags or unwritable output)

Examples:
  # Format a recorded run
  adeconsole format run-42.ndjson

  # Only show problems, in UTC with full dates
  adeconsole format --console-filter-level error,warning --timezone UTC \
    --time-layout "2006-01-02 15:04:05" build.ndjson run.ndjson.gz

  # CI: fail the job when the run produced error lines
  adeconsole format --fail-on-error --report console-report.md events.ndjson

  # AI Agent: stream machine-readable lines to stdout
  adeconsole format --no-console --emit ndjson events.ndjson
`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runFormat(cmd, args))
	},
}

func runFormat(cmd *cobra.Command, args []string) int {
	stdin := cmd.InOrStdin()
	if len(args) == 0 && cmd.Flags().NFlag() == 0 && isTerminal(stdin) {
		_ = cmd.Help()
		return replay.ExitClean
	}

	cfg.Input.Paths = args
	if err := cfg.ApplyEnv(os.Environ(), cmd.Flags().Changed); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return replay.ExitFatal
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return replay.ExitFatal
	}

	stdout := cmd.OutOrStdout()
	if !isTerminal(stdout) {
		cfg.Render.NoColor = true
	}

	logger := logging.Init(cfg.StructuredStdout(), logging.ParseLevel(cfg.Runtime.LogLevel))
	return replay.Run(cmd.Context(), cfg, stdin, stdout, logger)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func init() {
	rootCmd.AddCommand(formatCmd)

	// Output
	formatCmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson (default: text)")
	formatCmd.Flags().StringSliceVar(&cfg.Output.ConsoleFilterLevel, flags.FlagConsoleFilterLevel, nil, "Filter console output by level (info, warning, success, error). Comma-separated.")
	formatCmd.Flags().StringSliceVar(&cfg.Output.Origin, flags.FlagOrigin, nil, "Filter console output by origin (build, run, raw). Comma-separated.")
	formatCmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	formatCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	formatCmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	formatCmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	formatCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out/--report)")
	formatCmd.Flags().BoolVar(&cfg.Output.FailOnError, flags.FlagFailOnError, false, "Exit 1 when any error line was produced")

	// Rendering
	formatCmd.Flags().BoolVar(&cfg.Render.NoColor, flags.FlagNoColor, false, "Disable level colours in text output")
	formatCmd.Flags().StringVar(&cfg.Render.Timezone, flags.FlagTimezone, "", "IANA time zone for timestamps (default: local)")
	formatCmd.Flags().StringVar(&cfg.Render.TimeLayout, flags.FlagTimeLayout, cfg.Render.TimeLayout, "Go time layout for timestamps")
	formatCmd.Flags().StringVar(&cfg.Render.DownloadBase, flags.FlagDownloadBase, cfg.Render.DownloadBase, "API base for run output download links")

	// Runtime
	formatCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Input files read concurrently")
	formatCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, 0, "Global timeout (default: none)")
	formatCmd.Flags().BoolVar(&cfg.Runtime.FailFast, flags.FlagFailFast, false, "Stop at the first unreadable input (default: false)")
}
