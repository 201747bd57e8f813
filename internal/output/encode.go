package output

import (
	"encoding/json"
	"io"
)

type flusher interface {
	Flush() error
}

func flushIfPossible(w io.Writer) error {
	f, ok := w.(flusher)
	if !ok {
		return nil
	}
	return f.Flush()
}

// writeNDJSON writes v as a single event line and flushes. Records become
// "line" events; values that are neither Record nor Event are dropped.
func writeNDJSON(w io.Writer, v any) error {
	var ev Event
	switch t := v.(type) {
	case Event:
		ev = t
	case Record:
		ev = eventFromRecord(t)
	default:
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ev); err != nil {
		return err
	}
	return flushIfPossible(w)
}

// writeRecordArray writes records as one indented JSON array, [] when empty.
func writeRecordArray(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return flushIfPossible(w)
}
