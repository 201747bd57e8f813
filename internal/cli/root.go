package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "adeconsole",
	Short: "Render ADE build and run telemetry as console lines",
	Long: `adeconsole turns recorded ADE build and run events into readable console lines.

Every input record becomes exactly one line with a level (info, warning,
success, error), an origin (build, run, raw) and a timestamp. Unknown events
are shown as their JSON text; malformed records are passed through as raw lines.

Examples:
	# Show available commands and global flags
	adeconsole --help

	# Format a recorded event stream
	adeconsole format events.ndjson

	# Follow a live stream from stdin
	tail -f events.ndjson | adeconsole format -

	# List the event names with dedicated formatting
	adeconsole events list

	# Print build info
	adeconsole version

Output:
	By default, commands write human-readable output to stdout.
	Diagnostics go to stderr (see --log-level).`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfg.Runtime.LogLevel, flags.FlagLogLevel, cfg.Runtime.LogLevel, "Diagnostic log level on stderr: debug|info|warn|error (env: ADE_CONSOLE_LOG_LEVEL)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
