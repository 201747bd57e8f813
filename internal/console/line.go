package console

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Valid reports whether l is one of the four console levels.
func (l Level) Valid() bool {
	switch l {
	case LevelInfo, LevelWarning, LevelSuccess, LevelError:
		return true
	}
	return false
}

type Origin string

const (
	OriginBuild Origin = "build"
	OriginRun   Origin = "run"
	OriginRaw   Origin = "raw"
)

type BodyKind string

const (
	BodyText        BodyKind = "text"
	BodyRunComplete BodyKind = "run_complete"
)

// Line is one normalized console line. It is produced once per raw event and
// never mutated afterwards.
type Line struct {
	Level     Level           `json:"level"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
	Origin    Origin          `json:"origin"`
	Raw       json.RawMessage `json:"raw,omitempty"`
	Body      Body            `json:"body"`
}

// Body tells consumers how to render a line without sniffing Message.
//
// For BodyRunComplete, Message still holds the JSON-encoded completion so
// consumers that parse it keep working.
type Body struct {
	Kind       BodyKind       `json:"kind"`
	Completion *RunCompletion `json:"completion,omitempty"`
}

// RunCompletion is the structured result of a finished run.
type RunCompletion struct {
	Status     string      `json:"status"`
	Headline   string      `json:"headline"`
	Output     *OutputLink `json:"output"`
	EventsPath string      `json:"events_path,omitempty"`
	ExitCode   *int64      `json:"exit_code,omitempty"`
}

// OutputLink points at a run's downloadable output artifact.
type OutputLink struct {
	Path string `json:"path"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Lines returns Message split into its display lines.
func (l Line) Lines() []string {
	if l.Body.Kind == BodyRunComplete && l.Body.Completion != nil {
		return []string{l.Body.Completion.Headline}
	}
	return strings.Split(l.Message, "\n")
}

func textLine(level Level, message string) Line {
	return Line{Level: level, Message: message, Body: Body{Kind: BodyText}}
}

func joinLines(lines ...string) string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// rawJSON returns raw as compact JSON, encoding non-JSON input as a string.
func rawJSON(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	if gjson.ValidBytes(raw) {
		return json.RawMessage(pretty.Ugly(raw))
	}
	b, err := json.Marshal(string(raw))
	if err != nil {
		return nil
	}
	return b
}

// levelFromHint maps free-form severity words onto console levels.
func levelFromHint(hint string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "error", "fatal", "critical":
		return LevelError, true
	case "warn", "warning":
		return LevelWarning, true
	case "success", "ok":
		return LevelSuccess, true
	case "info", "debug", "notice":
		return LevelInfo, true
	}
	return "", false
}
