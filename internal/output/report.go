package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/console"
	"github.com/clac-ca/automatic-data-extractor-sub007/internal/textfmt"
)

// maxReportedLines caps each of the error and warning listings.
const maxReportedLines = 50

type ReportSink struct {
	path         string
	file         *os.File
	mu           sync.Mutex
	records      []Record
	sources      map[string]*sourceStats
	exitCode     int
	haveExitCode bool
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &ReportSink{
		path:    path,
		file:    f,
		sources: make(map[string]*sourceStats),
	}, nil
}

func (s *ReportSink) source(name string) *sourceStats {
	if name == "" {
		name = "-"
	}
	st, ok := s.sources[name]
	if !ok {
		st = newSourceStats(name)
		s.sources[name] = st
	}
	return st
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case Record:
		s.records = append(s.records, t)
		s.source(t.Source).add(t)
	case Event:
		switch t.Type {
		case EventSourceFinished:
			s.source(t.Path)
		case EventSourceFailed:
			s.source(t.Path).Failed = t.Error
		case EventReplayFinished:
			s.exitCode = t.ExitCode
			s.haveExitCode = true
		}
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := s.render()
	if _, err := s.file.WriteString(report); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

func (s *ReportSink) render() string {
	byLevel := make(map[console.Level]int)
	byOrigin := make(map[console.Origin]int)
	var errs, warns, completions []Record
	for _, r := range s.records {
		byLevel[r.Level]++
		byOrigin[r.Origin]++
		switch r.Level {
		case console.LevelError:
			errs = append(errs, r)
		case console.LevelWarning:
			warns = append(warns, r)
		}
		if r.Body.Kind == console.BodyRunComplete && r.Body.Completion != nil {
			completions = append(completions, r)
		}
	}

	var failed []string
	for name, st := range s.sources {
		if st.Failed != "" {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)

	var b strings.Builder
	b.WriteString("# ADE Console Report\n\n")

	// --- Overview ---
	b.WriteString("## Overview\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | ---: |\n")
	fmt.Fprintf(&b, "| Sources | %s |\n", textfmt.Count(int64(len(s.sources))))
	fmt.Fprintf(&b, "| Lines | %s |\n", textfmt.Count(int64(len(s.records))))
	fmt.Fprintf(&b, "| Errors | %s |\n", textfmt.Count(int64(byLevel[console.LevelError])))
	fmt.Fprintf(&b, "| Warnings | %s |\n", textfmt.Count(int64(byLevel[console.LevelWarning])))
	if s.haveExitCode {
		fmt.Fprintf(&b, "| Exit code | %d |\n", s.exitCode)
	}
	b.WriteString("\n")
	if len(failed) > 0 {
		fmt.Fprintf(&b, "**Unreadable inputs:** %s\n\n", formatSourceList(failed, 5))
	}

	// --- Breakdown ---
	b.WriteString("## Lines by level\n\n")
	b.WriteString("| Level | Lines |\n")
	b.WriteString("| --- | ---: |\n")
	for _, lvl := range reportLevels {
		fmt.Fprintf(&b, "| %s | %s |\n", lvl, textfmt.Count(int64(byLevel[lvl])))
	}
	b.WriteString("\n")

	b.WriteString("## Lines by origin\n\n")
	b.WriteString("| Origin | Lines |\n")
	b.WriteString("| --- | ---: |\n")
	for _, o := range reportOrigins {
		fmt.Fprintf(&b, "| %s | %s |\n", o, textfmt.Count(int64(byOrigin[o])))
	}
	b.WriteString("\n")

	// --- Per-source status ---
	b.WriteString("## Sources\n\n")
	if len(s.sources) == 0 {
		b.WriteString("No sources.\n\n")
	} else {
		b.WriteString("| Source | Lines | Errors | Warnings | Status |\n")
		b.WriteString("| --- | ---: | ---: | ---: | --- |\n")
		for _, st := range sortedSources(s.sources) {
			status := "ok"
			if st.Failed != "" {
				status = "failed: " + escapeCell(strings.Join(strings.Fields(st.Failed), " "))
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %s |\n",
				escapeCell(st.Source),
				textfmt.Count(int64(st.Lines)),
				st.Levels[console.LevelError],
				st.Levels[console.LevelWarning],
				status,
			)
		}
		b.WriteString("\n")
	}

	// --- Run completions ---
	if len(completions) > 0 {
		b.WriteString("## Run completions\n\n")
		b.WriteString("| Location | Status | Headline | Output |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, r := range completions {
			c := r.Body.Completion
			out := ""
			if c.Output != nil {
				out = escapeCell(c.Output.Name)
				if c.Output.URL != "" {
					out = "[" + out + "](" + c.Output.URL + ")"
				}
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n",
				recordLocation(r), escapeCell(c.Status), escapeCell(c.Headline), out)
		}
		b.WriteString("\n")
	}

	writeListing(&b, "Errors", "No error lines.", errs)
	writeListing(&b, "Warnings", "No warning lines.", warns)
	return b.String()
}

func writeListing(b *strings.Builder, title, empty string, records []Record) {
	fmt.Fprintf(b, "## %s\n\n", title)
	if len(records) == 0 {
		b.WriteString(empty + "\n\n")
		return
	}
	shown := records
	if len(shown) > maxReportedLines {
		shown = shown[:maxReportedLines]
	}
	for _, r := range shown {
		ts := ""
		if r.Timestamp != "" {
			ts = " " + r.Timestamp
		}
		fmt.Fprintf(b, "- `%s`%s %s: %s\n", recordLocation(r), ts, r.Origin, summarizeMessage(r))
	}
	if rest := len(records) - len(shown); rest > 0 {
		fmt.Fprintf(b, "- ... and %s more\n", textfmt.Count(int64(rest)))
	}
	b.WriteString("\n")
}
