package console

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/textfmt"
)

// RunCompleteType discriminates the JSON document carried in Message by
// run completion lines.
const RunCompleteType = "run-complete"

type runCompleteMessage struct {
	Type       string      `json:"type"`
	Headline   string      `json:"headline"`
	Output     *OutputLink `json:"output"`
	EventsPath *string     `json:"eventsPath"`
}

// formatRunComplete handles run.complete and its aliases. Enveloped run
// summaries render as summaries; everything else is a completion.
func formatRunComplete(in Input) Line {
	if IsAdeSummary(in.Payload, "run") {
		return readAdeSummary(in, "Run").line()
	}
	return completionLine(in, "")
}

func formatRunError(in Input) Line {
	return completionLine(in, "failed")
}

func formatRunCancelled(in Input) Line {
	return completionLine(in, "cancelled")
}

func completionLine(in Input, forced string) Line {
	p := in.Payload

	exitCode, hasExit := p.FirstInt("execution.exit_code", "exit_code")
	status := forced
	if status == "" {
		status = strings.ToLower(p.FirstString("status", "run.status", "execution.status"))
	}
	if status == "canceled" {
		status = "cancelled"
	}
	if status == "" {
		switch {
		case hasExit && exitCode != 0:
			status = "failed"
		case hasExit:
			status = "succeeded"
		default:
			status = "completed"
		}
	}

	failure := p.FirstString("failure.message", "error.message", "error", "failure_message")
	if failure == "" && status == "failed" {
		failure = in.Message()
	}

	headline := "Run " + status
	ms, ok := p.FirstNumber("execution.duration_ms", "duration_ms", "elapsed_ms")
	if d := textfmt.DurationMs(ms, ok); d != "" {
		headline += " in " + d
	}
	if failure != "" {
		headline += ": " + failure
	}
	completion := &RunCompletion{Status: status}
	if hasExit {
		code := exitCode
		completion.ExitCode = &code
		if status != "succeeded" || exitCode != 0 {
			headline += " (exit code " + strconv.FormatInt(exitCode, 10) + ")"
		}
	}
	completion.Headline = headline

	runID := firstNonEmpty(in.Event.RunID(), p.String("run_id"))
	if path := p.FirstString("output.path", "output_path", "artifacts.output.path"); path != "" {
		completion.Output = &OutputLink{
			Path: path,
			Name: textfmt.Basename(path),
			URL:  downloadURL(in.downloadBase, runID),
		}
	}
	completion.EventsPath = p.FirstString("events_path", "artifacts.events.path", "paths.events")

	return Line{
		Level:   completionLevel(status),
		Message: encodeCompletion(completion),
		Body:    Body{Kind: BodyRunComplete, Completion: completion},
	}
}

func completionLevel(status string) Level {
	switch status {
	case "failed":
		return LevelError
	case "cancelled":
		return LevelWarning
	case "succeeded":
		return LevelSuccess
	}
	return LevelInfo
}

func downloadURL(base, runID string) string {
	if runID == "" {
		return ""
	}
	return base + "/runs/" + url.PathEscape(runID) + "/output/download"
}

// encodeCompletion renders the legacy JSON form of a completion.
func encodeCompletion(c *RunCompletion) string {
	msg := runCompleteMessage{
		Type:     RunCompleteType,
		Headline: c.Headline,
		Output:   c.Output,
	}
	if c.EventsPath != "" {
		events := c.EventsPath
		msg.EventsPath = &events
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return c.Headline
	}
	return strings.TrimRight(buf.String(), "\n")
}

// ParseRunCompletion decodes a message produced for a run completion line.
// ok is false for prose messages.
func ParseRunCompletion(message string) (headline string, output *OutputLink, eventsPath string, ok bool) {
	if !strings.HasPrefix(strings.TrimSpace(message), "{") {
		return "", nil, "", false
	}
	var msg runCompleteMessage
	if err := json.Unmarshal([]byte(message), &msg); err != nil || msg.Type != RunCompleteType {
		return "", nil, "", false
	}
	if msg.EventsPath != nil {
		eventsPath = *msg.EventsPath
	}
	return msg.Headline, msg.Output, eventsPath, true
}
