package output

import (
	"sort"
	"strconv"
	"strings"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/console"
	"github.com/clac-ca/automatic-data-extractor-sub007/internal/textfmt"
)

var reportLevels = []console.Level{
	console.LevelError,
	console.LevelWarning,
	console.LevelSuccess,
	console.LevelInfo,
}

var reportOrigins = []console.Origin{
	console.OriginBuild,
	console.OriginRun,
	console.OriginRaw,
}

const maxReportMessage = 160

// summarizeMessage collapses a line's first display line to one short cell.
func summarizeMessage(r Record) string {
	first := ""
	if lines := r.Lines(); len(lines) > 0 {
		first = lines[0]
	}
	s := strings.Join(strings.Fields(first), " ")
	if len(s) > maxReportMessage {
		s = s[:maxReportMessage-3] + "..."
	}
	return escapeCell(s)
}

// escapeCell keeps a value from breaking a Markdown table row.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

type sourceStats struct {
	Source string
	Lines  int
	Levels map[console.Level]int
	Failed string
}

func (s *sourceStats) add(r Record) {
	s.Lines++
	s.Levels[r.Level]++
}

func newSourceStats(source string) *sourceStats {
	return &sourceStats{Source: source, Levels: make(map[console.Level]int)}
}

// sortedSources returns sources ordered by errors, then warnings, then name.
func sortedSources(stats map[string]*sourceStats) []*sourceStats {
	out := make([]*sourceStats, 0, len(stats))
	for _, s := range stats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Levels[console.LevelError] != b.Levels[console.LevelError] {
			return a.Levels[console.LevelError] > b.Levels[console.LevelError]
		}
		if a.Levels[console.LevelWarning] != b.Levels[console.LevelWarning] {
			return a.Levels[console.LevelWarning] > b.Levels[console.LevelWarning]
		}
		return a.Source < b.Source
	})
	return out
}

func formatSourceList(sources []string, max int) string {
	if len(sources) == 0 {
		return ""
	}
	return textfmt.Plural(int64(len(sources)), "source") + " (" + textfmt.JoinLimited(sources, max) + ")"
}

func recordLocation(r Record) string {
	src := r.Source
	if src == "" {
		src = "-"
	}
	if r.Seq > 0 {
		return src + ":" + strconv.Itoa(r.Seq)
	}
	return src
}
