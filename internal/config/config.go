package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/console"
	"github.com/clac-ca/automatic-data-extractor-sub007/internal/logging"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep these in sync:
	// - CLI flags in internal/cli/format.go
	// - environment defaults in env.go
	Input   Input
	Render  Render
	Output  Output
	Runtime Runtime
}

type Input struct {
	// Paths lists NDJSON event files to replay (positional args).
	// "-" or an empty list reads stdin. Files ending in .gz are decompressed.
	Paths []string
}

type Render struct {
	// Timezone is an IANA zone name used for line timestamps (see --timezone).
	// Empty or "local" means the host zone.
	Timezone string

	// Location is resolved from Timezone by Validate.
	Location *time.Location

	// TimeLayout is a Go time layout for line timestamps (see --time-layout).
	TimeLayout string

	// DownloadBase prefixes run output links (see --download-base).
	// Either an absolute http(s) URL or a path starting with "/".
	DownloadBase string

	// NoColor disables level colouring in the text console (see --no-color, NO_COLOR).
	NoColor bool
}

type Output struct {
	// ConsoleFormat controls the human-facing console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// ConsoleFilterLevel filters console output by line level (see --console-filter-level).
	// Allowed values: info, warning, success, error.
	ConsoleFilterLevel []string

	// Origin filters console output by line origin (see --origin).
	// Allowed values: build, run, raw.
	Origin []string

	// Report writes a Markdown report to this path (see --report).
	Report string

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out file extension.
	OutFormat string

	// Emit writes an additional structured stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool

	// FailOnError makes the run exit 1 when any error line was produced (see --fail-on-error).
	FailOnError bool
}

type Runtime struct {
	// Concurrency bounds how many input files are read at once (see --concurrency).
	// Must be >= 1.
	Concurrency int

	// Timeout bounds the whole replay (see --timeout). 0 means no timeout.
	Timeout time.Duration

	// FailFast stops at the first unreadable input instead of reporting it and continuing.
	FailFast bool

	// LogLevel is the diagnostic log level on stderr (see --log-level).
	LogLevel string
}

func New() *Config {
	return &Config{
		Render: Render{
			TimeLayout:   console.DefaultTimeLayout,
			DownloadBase: console.DefaultDownloadBase,
		},
		Output: Output{
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			Concurrency: 4,
			LogLevel:    "info",
		},
	}
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Output.ConsoleFilterLevel = normalizeEnumList(c.Output.ConsoleFilterLevel)
	c.Output.Origin = normalizeEnumList(c.Output.Origin)
	c.Output.Emit = normalizeEnumList(c.Output.Emit)

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		return errors.New("--console-format must be one of: text, json, ndjson")
	}
	if !isStructuredFormat(c.Output.ConsoleFormat) && c.Output.ConsoleFormat != "text" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	for i, lvl := range c.Output.ConsoleFilterLevel {
		if lvl == "warn" {
			lvl = string(console.LevelWarning)
			c.Output.ConsoleFilterLevel[i] = lvl
		}
		if !console.Level(lvl).Valid() {
			return fmt.Errorf("unsupported --console-filter-level value: %s (must be one of: info, warning, success, error)", lvl)
		}
	}

	for _, o := range c.Output.Origin {
		switch console.Origin(o) {
		case console.OriginBuild, console.OriginRun, console.OriginRaw:
		default:
			return fmt.Errorf("unsupported --origin value: %s (must be one of: build, run, raw)", o)
		}
	}

	for _, emit := range c.Output.Emit {
		if !isStructuredFormat(emit) {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", emit)
		}
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			format, err := InferOutFormat(c.Output.Out)
			if err != nil {
				return err
			}
			c.Output.OutFormat = format
		} else if !isStructuredFormat(c.Output.OutFormat) {
			return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
		}
	}

	// Rendering validation
	loc, err := loadLocation(c.Render.Timezone)
	if err != nil {
		return fmt.Errorf("invalid --timezone value: %w", err)
	}
	c.Render.Location = loc

	if strings.TrimSpace(c.Render.TimeLayout) == "" {
		c.Render.TimeLayout = console.DefaultTimeLayout
	}

	base, err := normalizeDownloadBase(c.Render.DownloadBase)
	if err != nil {
		return fmt.Errorf("invalid --download-base value: %w", err)
	}
	c.Render.DownloadBase = base

	// Runtime validation
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Timeout < 0 {
		return errors.New("--timeout must be >= 0")
	}
	if !logging.ValidLevel(c.Runtime.LogLevel) {
		return fmt.Errorf("unsupported --log-level: %s (must be one of: debug, info, warn, error)", c.Runtime.LogLevel)
	}

	if len(c.Input.Paths) == 0 {
		c.Input.Paths = []string{"-"}
	}
	stdin := 0
	for _, p := range c.Input.Paths {
		if strings.TrimSpace(p) == "" {
			return errors.New("input path must not be empty")
		}
		if p == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return errors.New("stdin (-) may only be given once")
	}

	return nil
}

// StructuredStdout reports whether any sink writes machine-readable output
// to stdout, in which case diagnostics must stay structured too.
func (c *Config) StructuredStdout() bool {
	if !c.Output.NoConsole && isStructuredFormat(c.Output.ConsoleFormat) {
		return true
	}
	return len(c.Output.Emit) > 0
}

// InferOutFormat maps an --out file extension to json or ndjson.
func InferOutFormat(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return "json", nil
	case ".ndjson", ".jsonl":
		return "ndjson", nil
	case "":
		return "", errors.New("cannot infer output format from file extension (missing extension); use --out-format")
	default:
		return "", fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
	}
}

func isStructuredFormat(v string) bool {
	return v == "json" || v == "ndjson"
}

func loadLocation(raw string) (*time.Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "local") {
		return time.Local, nil
	}
	if strings.EqualFold(raw, "utc") {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(raw)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", raw, err)
	}
	return loc, nil
}

func normalizeDownloadBase(raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		// A bare "/" trims to empty and means the host root.
		return "", nil
	}
	if strings.HasPrefix(raw, "/") {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%q", raw)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%q: must be an http(s) URL or a path starting with /", raw)
	}
	return raw, nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func normalizeEnumList(values []string) []string {
	var out []string
	for _, v := range splitCommaList(values) {
		v = normalizeEnumValue(v)
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
