package console

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/envelope"
	"github.com/clac-ca/automatic-data-extractor-sub007/internal/textfmt"
)

const (
	maxCandidates = 3
	maxSignals    = 3
	checkmark     = " ✓"
)

type candidate struct {
	name     string
	label    string
	score    float64
	hasScore bool
	passed   bool
}

type signal struct {
	name  string
	score float64
}

// decision is a scored choice reported by a column or row detector.
type decision struct {
	subject      string
	chosen       string
	score        float64
	hasScore     bool
	threshold    float64
	hasThreshold bool
	missWord     string
	candidates   []candidate
	signals      []signal
}

func (d decision) passed() bool {
	if d.chosen == "" {
		return false
	}
	if d.hasScore && d.hasThreshold {
		return d.score >= d.threshold
	}
	return true
}

func (d decision) verdict() string {
	if d.passed() {
		if d.hasScore {
			return fmt.Sprintf("%s → %s (%s)", d.subject, d.chosen, textfmt.Score(d.score, true))
		}
		return fmt.Sprintf("%s → %s", d.subject, d.chosen)
	}

	best, ok := d.best()
	if !ok {
		return d.subject + " " + d.missWord
	}
	detail := fmt.Sprintf("best %s %s", best.label, textfmt.Score(best.score, best.hasScore))
	switch {
	case d.hasThreshold && (!best.hasScore || best.score < d.threshold):
		detail += " < " + textfmt.Score(d.threshold, true)
	case d.chosen == "":
		// Nothing was chosen and no threshold explains why.
		detail += ", not selected"
	}
	return fmt.Sprintf("%s %s (%s)", d.subject, d.missWord, detail)
}

// best returns the chosen candidate, or the highest scoring one.
func (d decision) best() (candidate, bool) {
	if d.chosen != "" {
		for _, c := range d.candidates {
			if c.name == d.chosen {
				return c, true
			}
		}
		return candidate{name: d.chosen, label: quoted(d.chosen), score: d.score, hasScore: d.hasScore}, true
	}
	ranked := rankCandidates(d.candidates)
	if len(ranked) == 0 {
		return candidate{}, false
	}
	return ranked[0], true
}

func (d decision) line() Line {
	level := LevelWarning
	if d.passed() {
		level = LevelSuccess
	}
	return textLine(level, joinLines(
		d.verdict(),
		candidatesLine(d.candidates),
		signalsLine(d.signals),
	))
}

func quoted(s string) string {
	return `"` + s + `"`
}

func rankCandidates(in []candidate) []candidate {
	out := append([]candidate(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].hasScore != out[j].hasScore {
			return out[i].hasScore
		}
		return out[i].score > out[j].score
	})
	return out
}

func candidatesLine(cands []candidate) string {
	ranked := rankCandidates(cands)
	if len(ranked) == 0 {
		return ""
	}
	if len(ranked) > maxCandidates {
		ranked = ranked[:maxCandidates]
	}
	parts := make([]string, 0, len(ranked))
	for _, c := range ranked {
		part := c.label + " " + textfmt.Score(c.score, c.hasScore)
		if c.passed {
			part += checkmark
		}
		parts = append(parts, part)
	}
	return "top candidates: " + strings.Join(parts, ", ")
}

func signalsLine(signals []signal) string {
	if len(signals) == 0 {
		return ""
	}
	ranked := append([]signal(nil), signals...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > maxSignals {
		ranked = ranked[:maxSignals]
	}
	parts := make([]string, 0, len(ranked))
	for _, s := range ranked {
		parts = append(parts, textfmt.ShortName(s.name)+" "+textfmt.Score(s.score, true))
	}
	return "signals: " + strings.Join(parts, ", ")
}

func readSignals(items []envelope.Payload) []signal {
	var out []signal
	for _, item := range items {
		name := item.FirstString("detector", "name", "id")
		score, ok := item.FirstNumber("score", "delta")
		if name == "" || !ok {
			continue
		}
		out = append(out, signal{name: name, score: score})
	}
	return out
}

// readCandidates reads a candidates array. nameKeys select the candidate
// identity; threshold decides "passed" when a candidate carries no flag.
func readCandidates(p envelope.Payload, threshold float64, hasThreshold bool, nameKeys ...string) []candidate {
	var out []candidate
	for _, item := range p.Array("candidates") {
		name := item.FirstString(nameKeys...)
		if name == "" {
			continue
		}
		c := candidate{name: name, label: quoted(name)}
		c.score, c.hasScore = item.FirstNumber("score", "total")
		if passed, ok := item.Bool("passed"); ok {
			c.passed = passed
		} else {
			c.passed = c.hasScore && hasThreshold && c.score >= threshold
		}
		out = append(out, c)
	}
	return out
}

// decisionSignals prefers top-level contributions, then the contributions of
// the chosen (or first) candidate.
func decisionSignals(p envelope.Payload, chosen string, nameKeys ...string) []signal {
	if sig := readSignals(p.Array("contributions")); len(sig) > 0 {
		return sig
	}
	items := p.Array("candidates")
	for _, item := range items {
		if chosen != "" && item.FirstString(nameKeys...) == chosen {
			return readSignals(item.Array("contributions"))
		}
	}
	if len(items) > 0 {
		return readSignals(items[0].Array("contributions"))
	}
	return nil
}

func withSheet(p envelope.Payload, subject string) string {
	if sheet := p.FirstString("sheet", "sheet_name"); sheet != "" {
		return sheet + ": " + subject
	}
	return subject
}

func columnSubject(p envelope.Payload) string {
	subject := "Column"
	if idx, ok := p.FirstInt("column_index", "column"); ok {
		subject += " " + strconv.FormatInt(idx, 10)
	}
	if header := p.FirstString("header", "column_header"); header != "" {
		subject += " " + quoted(header)
	}
	return withSheet(p, subject)
}

func columnDecision(p envelope.Payload, missWord string) decision {
	nameKeys := []string{"field", "name"}
	d := decision{
		subject:  columnSubject(p),
		chosen:   p.FirstString("field", "chosen_field", "selected.field"),
		missWord: missWord,
	}
	d.score, d.hasScore = p.FirstNumber("score", "selected.score")
	d.threshold, d.hasThreshold = p.FirstNumber("threshold", "min_score")
	d.candidates = readCandidates(p, d.threshold, d.hasThreshold, nameKeys...)
	if !d.hasScore && d.chosen != "" {
		for _, c := range d.candidates {
			if c.name == d.chosen && c.hasScore {
				d.score, d.hasScore = c.score, true
			}
		}
	}
	d.signals = decisionSignals(p, d.chosen, nameKeys...)
	return d
}

func formatColumnScore(in Input) Line {
	return columnDecision(in.Payload, "unmapped").line()
}

func formatColumnClassification(in Input) Line {
	return columnDecision(in.Payload, "unclassified").line()
}

func formatRowClassification(in Input) Line {
	p := in.Payload
	nameKeys := []string{"classification", "label", "kind"}
	subject := "Row"
	if idx, ok := p.FirstInt("row_index", "row"); ok {
		subject += " " + strconv.FormatInt(idx, 10)
	}
	d := decision{
		subject:  withSheet(p, subject),
		chosen:   p.FirstString(nameKeys...),
		missWord: "unclassified",
	}
	d.score, d.hasScore = p.FirstNumber("score", "confidence")
	d.threshold, d.hasThreshold = p.FirstNumber("threshold", "min_score")
	d.candidates = readCandidates(p, d.threshold, d.hasThreshold, nameKeys...)
	d.signals = decisionSignals(p, d.chosen, nameKeys...)
	return d.line()
}

// formatRowScore reports the header row and data range picked for a table.
func formatRowScore(in Input) Line {
	p := in.Payload

	var head []string
	headerRow, hasHeader := p.FirstInt("header_row_index", "header_row")
	if hasHeader {
		head = append(head, "Header row "+strconv.FormatInt(headerRow, 10))
	} else {
		head = append(head, "No header row detected")
	}
	start, hasStart := p.FirstInt("data_row_start", "data_rows.start")
	end, hasEnd := p.FirstInt("data_row_end", "data_rows.end")
	switch {
	case hasStart && hasEnd:
		head = append(head, fmt.Sprintf("data rows %d–%d", start, end))
	case hasStart:
		head = append(head, fmt.Sprintf("data rows from %d", start))
	}

	below := !hasHeader
	var scores []string
	for _, s := range []struct{ label, score, threshold string }{
		{"header score", "header_score", "header_threshold"},
		{"data score", "data_score", "data_threshold"},
	} {
		v, ok := p.Number(s.score)
		if !ok {
			continue
		}
		text := s.label + " " + textfmt.Score(v, true)
		if thr, ok := p.Number(s.threshold); ok {
			if v < thr {
				below = true
				text += " < " + textfmt.Score(thr, true)
			} else {
				text += " ≥ " + textfmt.Score(thr, true)
			}
		}
		scores = append(scores, text)
	}

	threshold, hasThreshold := p.Number("header_threshold")
	var cands []candidate
	for _, item := range p.Array("candidates") {
		idx, ok := item.FirstInt("row_index", "row")
		if !ok {
			continue
		}
		c := candidate{name: strconv.FormatInt(idx, 10), label: "row " + strconv.FormatInt(idx, 10)}
		c.score, c.hasScore = item.FirstNumber("score", "header_score")
		if passed, ok := item.Bool("passed"); ok {
			c.passed = passed
		} else {
			c.passed = c.hasScore && hasThreshold && c.score >= threshold
		}
		cands = append(cands, c)
	}

	level := LevelInfo
	if below {
		level = LevelWarning
	}
	return textLine(level, joinLines(
		withSheet(p, strings.Join(head, " · ")),
		strings.Join(scores, " · "),
		candidatesLine(cands),
		signalsLine(readSignals(p.Array("contributions"))),
	))
}
