package console

import (
	"fmt"
	"strings"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/textfmt"
)

const eventConsoleLine = "console.line"

func newBuildTable() *Table {
	t := newTable(OriginBuild)
	t.Register(formatBuildQueued, "build.created", "build.queued")
	t.Register(formatBuildStarted, "build.started")
	t.Register(formatPhaseStart, "build.phase.start")
	t.Register(formatPhaseComplete, "build.phase.complete")
	t.Register(formatBuildComplete, "build.complete")
	t.Register(formatLogLine, eventConsoleLine)
	return t
}

func withReason(base, reason string) string {
	if reason == "" {
		return base
	}
	return fmt.Sprintf("%s (%s)", base, reason)
}

func formatBuildQueued(in Input) Line {
	base := "Build queued"
	if in.Event.Name() == "build.created" {
		base = "Build created"
	}
	if m := in.Message(); m != "" {
		base = m
	}
	return textLine(LevelInfo, withReason(base, in.Payload.String("reason")))
}

func formatBuildStarted(in Input) Line {
	base := "Build started"
	if m := in.Message(); m != "" {
		base = m
	}
	return textLine(LevelInfo, withReason(base, in.Payload.String("reason")))
}

// formatPhaseStart is shared by the build and run namespaces.
func formatPhaseStart(in Input) Line {
	if m := in.Message(); m != "" {
		return textLine(LevelInfo, m)
	}
	phase := in.Payload.String("phase")
	if phase == "" {
		phase = "phase"
	}
	return textLine(LevelInfo, "Starting "+phase)
}

// formatPhaseComplete is shared by the build and run namespaces.
func formatPhaseComplete(in Input) Line {
	status := strings.ToLower(in.Payload.String("status"))
	level := LevelSuccess
	switch status {
	case "failed":
		level = LevelError
	case "skipped":
		level = LevelWarning
	}

	msg := in.Message()
	if msg == "" {
		phase := in.Payload.String("phase")
		if phase == "" {
			phase = "Phase"
		}
		verb := status
		if verb == "" {
			verb = "completed"
		}
		msg = phase + " " + verb
	}
	ms, ok := in.Payload.FirstNumber("duration_ms", "elapsed_ms")
	if d := textfmt.DurationMs(ms, ok); d != "" {
		msg = fmt.Sprintf("%s in %s", msg, d)
	}
	return textLine(level, msg)
}

func formatBuildComplete(in Input) Line {
	p := in.Payload
	status := strings.ToLower(p.String("status"))
	summary := p.String("summary")
	if summary == "" {
		summary = in.Message()
	}
	orDefault := func(def string) string {
		if summary != "" {
			return summary
		}
		return def
	}

	switch status {
	case "succeeded", "ready":
		return textLine(LevelSuccess, orDefault("Build succeeded"))
	case "reused":
		return textLine(LevelSuccess, orDefault("Reused existing build"))
	case "cancelled", "canceled":
		return textLine(LevelWarning, orDefault("Build cancelled"))
	case "failed":
		msg := p.FirstString("failure.message", "error.message", "error")
		if msg == "" {
			msg = orDefault("Build failed")
		}
		if code, ok := p.FirstInt("execution.exit_code", "exit_code"); ok {
			msg = fmt.Sprintf("%s (exit code %d)", msg, code)
		}
		return textLine(LevelError, msg)
	case "skipped":
		return textLine(LevelInfo, orDefault("Build skipped"))
	case "":
		return textLine(LevelInfo, orDefault("Build complete"))
	default:
		raw := p.String("status")
		if summary != "" {
			return textLine(LevelInfo, fmt.Sprintf("%s (status: %s)", summary, raw))
		}
		return textLine(LevelInfo, "Build status: "+raw)
	}
}

// formatLogLine renders a generic console.line event emitted by either stream.
func formatLogLine(in Input) Line {
	p := in.Payload
	msg := p.FirstString("message", "line", "text")
	if msg == "" {
		msg = in.Event.Message()
	}
	level := LevelInfo
	if l, ok := levelFromHint(p.String("level")); ok {
		level = l
	} else if l, ok := levelFromHint(in.Event.Level()); ok {
		level = l
	}
	if msg == "" {
		return Line{Level: level, Message: fallbackLine(in).Message}
	}
	return textLine(level, msg)
}
