// Package envelope decodes raw engine events into a single normalized Event,
// hiding the difference between the two wire versions the engine emits:
//
//	flat (v1):      {"type": "run.started", "created_at": "...", "mode": "execute"}
//	enveloped (v2): {"event": "run.started", "timestamp": "...", "data": {"mode": "execute"}}
//
// Both shapes yield the same Name, Payload, Message and Timestamp.
package envelope

import (
	"math"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Version identifies which wire shape an event arrived in.
type Version int

const (
	VersionUnknown Version = iota
	VersionFlat
	VersionEnveloped
)

func (v Version) String() string {
	switch v {
	case VersionFlat:
		return "flat"
	case VersionEnveloped:
		return "enveloped"
	default:
		return "unknown"
	}
}

// flatEnvelopeKeys are stripped from a flat event when deriving its payload.
var flatEnvelopeKeys = map[string]bool{
	"type":       true,
	"created_at": true,
	"created":    true,
	"timestamp":  true,
	"level":      true,
}

// Event is the normalized view of one raw engine event.
type Event struct {
	name    string
	payload Payload
	message string
	level   string
	runID   string
	ts      gjson.Result
	version Version
	raw     []byte
}

// IsRecord reports whether raw is a JSON object. Only records are decoded;
// anything else is rendered verbatim by callers.
func IsRecord(raw []byte) bool {
	if !gjson.ValidBytes(raw) {
		return false
	}
	return gjson.ParseBytes(raw).IsObject()
}

// Decode maps raw into an Event. ok is false when raw is not a record.
func Decode(raw []byte) (Event, bool) {
	if !IsRecord(raw) {
		return Event{raw: raw}, false
	}
	doc := gjson.ParseBytes(raw)

	// "type" outranks "name": flat events commonly carry a "name" payload field.
	if name, ok := firstString(doc, "event"); ok {
		return decodeEnveloped(doc, name, raw), true
	}
	if name, ok := firstString(doc, "type"); ok {
		return decodeFlat(doc, name, raw), true
	}
	name, _ := firstString(doc, "name")
	return decodeEnveloped(doc, name, raw), true
}

func decodeEnveloped(doc gjson.Result, name string, raw []byte) Event {
	payload := emptyPayload
	for _, key := range []string{"data", "payload"} {
		if v := doc.Get(key); v.IsObject() {
			payload = Payload{r: v}
			break
		}
	}
	ev := Event{
		name:    strings.TrimSpace(name),
		payload: payload,
		message: stringField(doc, "message"),
		level:   stringField(doc, "level"),
		runID:   stringField(doc, "run_id"),
		ts:      firstPresent(doc, "timestamp", "created_at"),
		version: VersionEnveloped,
		raw:     raw,
	}
	if ev.runID == "" {
		ev.runID = payload.String("run_id")
	}
	return ev
}

func decodeFlat(doc gjson.Result, name string, raw []byte) Event {
	var payload Payload
	if v := doc.Get("payload"); v.IsObject() {
		payload = Payload{r: v}
	} else {
		payload = ParsePayload(stripKeys(doc, flatEnvelopeKeys))
	}
	return Event{
		name:    strings.TrimSpace(name),
		payload: payload,
		message: stringField(doc, "message"),
		level:   stringField(doc, "level"),
		runID:   stringField(doc, "run_id"),
		ts:      firstPresent(doc, "created_at", "timestamp", "created"),
		version: VersionFlat,
		raw:     raw,
	}
}

// stripKeys re-encodes the object doc without the given keys, preserving the
// order and raw encoding of everything else.
func stripKeys(doc gjson.Result, drop map[string]bool) string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	doc.ForEach(func(key, value gjson.Result) bool {
		if drop[key.String()] {
			return true
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(key.Raw)
		b.WriteByte(':')
		b.WriteString(value.Raw)
		return true
	})
	b.WriteByte('}')
	return b.String()
}

// Name returns the canonical event name, or "" when the record has none.
func (e Event) Name() string { return e.name }

// Payload returns the event payload; it is an empty object when absent.
func (e Event) Payload() Payload {
	if !e.payload.r.Exists() {
		return emptyPayload
	}
	return e.payload
}

// Message returns the envelope-level human message, if any.
func (e Event) Message() string { return e.message }

// Level returns the envelope-level severity hint, if any.
func (e Event) Level() string { return e.level }

// RunID returns the run identifier from the envelope or, failing that, the payload.
func (e Event) RunID() string { return e.runID }

// Version reports the wire shape the event was decoded from.
func (e Event) Version() Version { return e.version }

// Raw returns the bytes the event was decoded from.
func (e Event) Raw() []byte { return e.raw }

// Timestamp parses the event timestamp. Strings are read as RFC 3339 (with or
// without zone); numbers as epoch seconds, or milliseconds when large enough.
func (e Event) Timestamp() (time.Time, bool) {
	return parseTimestamp(e.ts)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(v gjson.Result) (time.Time, bool) {
	switch v.Type {
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case gjson.Number:
		n := v.Float()
		if math.IsNaN(n) || n < 0 {
			return time.Time{}, false
		}
		if n >= 1e12 {
			return time.UnixMilli(int64(n)), true
		}
		sec := int64(n)
		return time.Unix(sec, int64((n-float64(sec))*1e9)), true
	default:
		return time.Time{}, false
	}
}

// Stringify renders raw as compact JSON, or verbatim when it is not JSON.
func Stringify(raw []byte) string {
	if gjson.ValidBytes(raw) {
		return string(pretty.Ugly(raw))
	}
	return strings.TrimSpace(string(raw))
}

func firstString(doc gjson.Result, keys ...string) (string, bool) {
	for _, key := range keys {
		if v := doc.Get(key); v.Type == gjson.String {
			return v.Str, true
		}
	}
	return "", false
}

func firstPresent(doc gjson.Result, keys ...string) gjson.Result {
	for _, key := range keys {
		if v := doc.Get(key); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func stringField(doc gjson.Result, key string) string {
	if v := doc.Get(key); v.Type == gjson.String {
		return strings.TrimSpace(v.Str)
	}
	return ""
}
