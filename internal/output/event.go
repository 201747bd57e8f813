package output

import "github.com/clac-ca/automatic-data-extractor-sub007/internal/console"

// Record is one formatted console line tagged with where it was read from.
// Seq is the 1-based line number within Source.
type Record struct {
	Source string `json:"source,omitempty"`
	Seq    int    `json:"seq,omitempty"`
	console.Line
}

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line), including:
// - replay.started
// - line
// - source.finished
// - source.failed
// - replay.finished
//
// JSON mode remains an aggregate of Record values.
type Event struct {
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
	*Record
	Sources   int    `json:"sources,omitempty"`
	LineCount int    `json:"lines,omitempty"`
	Error     string `json:"error,omitempty"`
	ExitCode  int    `json:"exit_code,omitempty"`
}

// Lifecycle event types.
const (
	EventReplayStarted  = "replay.started"
	EventLine           = "line"
	EventSourceFinished = "source.finished"
	EventSourceFailed   = "source.failed"
	EventReplayFinished = "replay.finished"
)

func eventFromRecord(r Record) Event {
	return Event{Type: EventLine, Record: &r}
}
