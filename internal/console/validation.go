package console

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/textfmt"
)

var severityRank = map[string]int{"info": 1, "warning": 2, "error": 3}

func normalizeSeverity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "fatal", "critical":
		return "error"
	case "warn", "warning":
		return "warning"
	case "info", "notice":
		return "info"
	}
	return ""
}

func formatValidationIssue(in Input) Line {
	p := in.Payload
	severity := normalizeSeverity(p.FirstString("severity", "level"))

	var where []string
	if row, ok := p.FirstInt("row_index", "row"); ok {
		where = append(where, "row "+strconv.FormatInt(row, 10))
	}
	if field := p.FirstString("field", "column"); field != "" {
		where = append(where, field)
	}

	msg := in.Message()
	if msg == "" {
		msg = p.FirstString("code", "rule")
	}
	if msg == "" {
		msg = "Validation issue"
	} else if code := p.String("code"); code != "" && code != msg {
		msg += " (" + code + ")"
	}
	if len(where) > 0 {
		msg = strings.Join(where, " · ") + ": " + msg
	}

	switch severity {
	case "error":
		return textLine(LevelError, msg)
	case "warning":
		return textLine(LevelWarning, msg)
	default:
		return textLine(LevelInfo, msg)
	}
}

func formatValidationSummary(in Input) Line {
	p := in.Payload
	bySeverity := map[string]int64{}
	for sev := range severityRank {
		if n, ok := p.Int("by_severity." + sev); ok && n > 0 {
			bySeverity[sev] = n
		}
	}

	total, ok := p.FirstInt("issues_total", "total", "issue_count")
	if !ok {
		for _, n := range bySeverity {
			total += n
		}
	}

	maxSeverity := normalizeSeverity(p.FirstString("max_severity", "highest_severity"))
	for sev := range bySeverity {
		if severityRank[sev] > severityRank[maxSeverity] {
			maxSeverity = sev
		}
	}

	if total == 0 && maxSeverity == "" {
		return textLine(LevelSuccess, "Validation passed: no issues")
	}

	head := "Validation: " + textfmt.Plural(total, "issue")
	if maxSeverity != "" {
		head += " · max severity " + maxSeverity
	}

	var counts []string
	sevs := make([]string, 0, len(bySeverity))
	for sev := range bySeverity {
		sevs = append(sevs, sev)
	}
	sort.Slice(sevs, func(i, j int) bool { return severityRank[sevs[i]] > severityRank[sevs[j]] })
	for _, sev := range sevs {
		counts = append(counts, fmt.Sprintf("%s %s", sev, textfmt.Count(bySeverity[sev])))
	}
	var detail string
	if len(counts) > 0 {
		detail = "by severity: " + strings.Join(counts, ", ")
	}

	level := LevelSuccess
	switch {
	case maxSeverity == "error":
		level = LevelError
	case total > 0 || maxSeverity == "warning":
		level = LevelWarning
	}
	return textLine(level, joinLines(head, detail))
}
