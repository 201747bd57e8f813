// Package console turns raw engine telemetry into console lines.
//
// Every raw event maps to exactly one Line. Formatting is synchronous, keeps
// no state between events and never panics: malformed envelopes come back as
// raw-origin lines and unknown names fall back to their JSON text.
package console

import (
	"strings"
	"time"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/envelope"
)

const (
	DefaultTimeLayout   = "15:04:05"
	DefaultDownloadBase = "/api/v1"
)

var (
	buildTable = newBuildTable()
	runTable   = newRunTable()
)

// BuildTable returns the dispatch table for build.* events.
func BuildTable() *Table { return buildTable }

// RunTable returns the dispatch table for run, engine and config events.
func RunTable() *Table { return runTable }

// Normalizer formats raw events. It is immutable and safe for concurrent use.
type Normalizer struct {
	location     *time.Location
	layout       string
	downloadBase string
}

type Option func(*Normalizer)

// WithLocation renders timestamps in loc.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.location = loc
		}
	}
}

// WithTimeLayout renders timestamps with the given time layout.
func WithTimeLayout(layout string) Option {
	return func(n *Normalizer) {
		if strings.TrimSpace(layout) != "" {
			n.layout = layout
		}
	}
}

// WithDownloadBase sets the API base used to build run output links.
func WithDownloadBase(base string) Option {
	return func(n *Normalizer) {
		n.downloadBase = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		location:     time.Local,
		layout:       DefaultTimeLayout,
		downloadBase: DefaultDownloadBase,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Format routes raw to the build or run table. It always returns a line.
func (n *Normalizer) Format(raw []byte) (line Line) {
	defer func() {
		if r := recover(); r != nil {
			line = rawLine(raw)
		}
	}()

	ev, ok := envelope.Decode(raw)
	if !ok {
		return rawLine(raw)
	}
	in := Input{
		Event:        ev,
		Payload:      ev.Payload(),
		Timestamp:    n.timestamp(ev),
		downloadBase: n.downloadBase,
	}
	if isBuildEvent(in) {
		return buildTable.Dispatch(in)
	}
	return runTable.Dispatch(in)
}

func (n *Normalizer) timestamp(ev envelope.Event) string {
	t, ok := ev.Timestamp()
	if !ok {
		return ""
	}
	return t.In(n.location).Format(n.layout)
}

// isBuildEvent classifies build.* events and build-scoped log lines.
func isBuildEvent(in Input) bool {
	name := in.Event.Name()
	if strings.HasPrefix(name, "build.") {
		return true
	}
	return name == eventConsoleLine && in.Payload.String("scope") == "build"
}

func rawLine(raw []byte) Line {
	return Line{
		Level:   LevelInfo,
		Message: envelope.Stringify(raw),
		Origin:  OriginRaw,
		Raw:     rawJSON(raw),
		Body:    Body{Kind: BodyText},
	}
}
