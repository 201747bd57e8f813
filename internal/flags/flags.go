package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// config validation messages, so error text and Cobra wiring cannot drift.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.Render.Timezone, flags.FlagTimezone, "", "...")
//	arg := "--" + flags.FlagTimezone
const (
	// Output
	FlagConsoleFormat      = "console-format"
	FlagConsoleFilterLevel = "console-filter-level"
	FlagOrigin             = "origin"
	FlagReport             = "report"
	FlagOut                = "out"
	FlagOutFormat          = "out-format"
	FlagEmit               = "emit"
	FlagNoConsole          = "no-console"
	FlagFailOnError        = "fail-on-error"

	// Rendering
	FlagNoColor      = "no-color"
	FlagTimezone     = "timezone"
	FlagTimeLayout   = "time-layout"
	FlagDownloadBase = "download-base"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
	FlagFailFast    = "fail-fast"
	FlagLogLevel    = "log-level"

	// events list
	FlagQuiet = "quiet"
)
