package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/console"
)

type ConsoleSink struct {
	writer  io.Writer
	format  string // "text", "json", "ndjson"
	mu      sync.Mutex
	records []Record // For JSON array output
	filter  compiledFilter
	palette palette
}

// NewConsoleSink writes records for humans (text) or machines (json, ndjson).
// useColor only affects text output.
func NewConsoleSink(w io.Writer, format string, filter Filter, useColor bool) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}
	return &ConsoleSink{
		writer:  w,
		format:  format,
		filter:  filter.compile(),
		palette: newPalette(useColor),
	}
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	if !s.filter.match(v) {
		return nil
	}

	switch s.format {
	case "json":
		r, ok := v.(Record)
		if !ok {
			// Ignore lifecycle events in JSON console mode.
			return nil
		}
		s.records = append(s.records, r)
		return nil
	case "ndjson":
		return writeNDJSON(s.writer, v)
	case "text":
		r, ok := v.(Record)
		if !ok {
			// Ignore events in text mode.
			return nil
		}
		if _, err := io.WriteString(s.writer, s.palette.render(r)); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		return writeRecordArray(s.writer, s.records)
	}
	if s.format != "text" && s.format != "ndjson" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return nil
}

// palette colours the level tag of text lines.
type palette struct {
	levels map[console.Level]*color.Color
	dim    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		levels: map[console.Level]*color.Color{
			console.LevelInfo:    color.New(color.FgCyan),
			console.LevelWarning: color.New(color.FgYellow),
			console.LevelSuccess: color.New(color.FgGreen),
			console.LevelError:   color.New(color.FgRed, color.Bold),
		},
		dim: color.New(color.Faint),
	}
	for _, c := range append(p.colors(), p.dim) {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) colors() []*color.Color {
	out := make([]*color.Color, 0, len(p.levels))
	for _, c := range p.levels {
		out = append(out, c)
	}
	return out
}

// render formats r as one or more text lines:
//
//	10:00:00 [success] run: Run succeeded in 1m 5s
//	         output: normalized.xlsx <url>
func (p palette) render(r Record) string {
	var head strings.Builder
	if r.Timestamp != "" {
		head.WriteString(p.dim.Sprint(r.Timestamp))
		head.WriteByte(' ')
	}
	tag := "[" + string(r.Level) + "]"
	if c, ok := p.levels[r.Level]; ok {
		tag = c.Sprint(tag)
	}
	head.WriteString(tag)
	head.WriteByte(' ')
	head.WriteString(string(r.Origin))
	head.WriteString(": ")

	body := textBody(r.Line)
	indent := strings.Repeat(" ", len(r.Timestamp)+1)
	if r.Timestamp == "" {
		indent = "  "
	}

	var b strings.Builder
	for i, l := range body {
		if i == 0 {
			b.WriteString(head.String())
		} else {
			b.WriteString(indent)
		}
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// textBody returns the display lines of l. Completions render their headline
// and artifact links instead of the JSON message.
func textBody(l console.Line) []string {
	if l.Body.Kind == console.BodyRunComplete && l.Body.Completion != nil {
		c := l.Body.Completion
		lines := []string{c.Headline}
		if c.Output != nil {
			out := "output: " + c.Output.Name
			if c.Output.URL != "" {
				out += " <" + c.Output.URL + ">"
			}
			lines = append(lines, out)
		}
		if c.EventsPath != "" {
			lines = append(lines, "events: "+c.EventsPath)
		}
		return lines
	}
	lines := l.Lines()
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
