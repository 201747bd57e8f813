package console

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/envelope"
)

// Input is everything a formatter may read. Formatters must not keep it.
type Input struct {
	Event     envelope.Event
	Payload   envelope.Payload
	Timestamp string

	downloadBase string
}

// Message returns the explicit message carried by the payload or envelope.
func (in Input) Message() string {
	if m := in.Payload.String("message"); m != "" {
		return m
	}
	return in.Event.Message()
}

// Handler formats one event. Origin, timestamp and raw are filled in by the table.
type Handler func(in Input) Line

// PrefixHandler formats an event from a prefix family; suffix is the event
// name with the family prefix removed.
type PrefixHandler func(in Input, suffix string) Line

type prefixEntry struct {
	prefix  string
	handler PrefixHandler
}

// Table dispatches events for one sub-stream: exact names first, then the
// registered prefixes in registration order, then a JSON fallback.
type Table struct {
	origin   Origin
	exact    map[string]Handler
	prefixes []prefixEntry
}

func newTable(origin Origin) *Table {
	return &Table{origin: origin, exact: make(map[string]Handler)}
}

// Register binds handler to each of names.
func (t *Table) Register(handler Handler, names ...string) {
	for _, name := range names {
		if _, exists := t.exact[name]; exists {
			panic(fmt.Sprintf("%s event %s already registered", t.origin, name))
		}
		t.exact[name] = handler
	}
}

// RegisterPrefix appends a prefix family. Earlier prefixes win.
func (t *Table) RegisterPrefix(prefix string, handler PrefixHandler) {
	for _, p := range t.prefixes {
		if p.prefix == prefix {
			panic(fmt.Sprintf("%s prefix %s already registered", t.origin, prefix))
		}
	}
	t.prefixes = append(t.prefixes, prefixEntry{prefix: prefix, handler: handler})
}

// Origin returns the sub-stream the table produces lines for.
func (t *Table) Origin() Origin { return t.origin }

// Names returns the exact event names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.exact))
	for name := range t.exact {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prefixes returns the prefix families in match order.
func (t *Table) Prefixes() []string {
	out := make([]string, 0, len(t.prefixes))
	for _, p := range t.prefixes {
		out = append(out, p.prefix)
	}
	return out
}

// Dispatch formats in and stamps the result with the table's origin.
func (t *Table) Dispatch(in Input) Line {
	name := in.Event.Name()

	var line Line
	if h, ok := t.exact[name]; ok {
		line = h(in)
	} else if p, ok := t.matchPrefix(name); ok {
		line = p.handler(in, strings.TrimPrefix(name, p.prefix))
	} else {
		line = fallbackLine(in)
	}

	if !line.Level.Valid() {
		line.Level = LevelInfo
	}
	if line.Body.Kind == "" {
		line.Body.Kind = BodyText
	}
	line.Origin = t.origin
	line.Timestamp = in.Timestamp
	line.Raw = rawJSON(in.Event.Raw())
	return line
}

func (t *Table) matchPrefix(name string) (prefixEntry, bool) {
	for _, p := range t.prefixes {
		if strings.HasPrefix(name, p.prefix) && len(name) > len(p.prefix) {
			return p, true
		}
	}
	return prefixEntry{}, false
}

func fallbackLine(in Input) Line {
	return textLine(LevelInfo, envelope.Stringify(in.Event.Raw()))
}
