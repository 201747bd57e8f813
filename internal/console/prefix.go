package console

import "strings"

func statusLevel(status string) Level {
	switch strings.ToLower(status) {
	case "failed", "error":
		return LevelError
	case "warning", "skipped":
		return LevelWarning
	}
	return LevelInfo
}

// passThrough builds a prefix-family formatter. The explicit message wins;
// otherwise one is synthesized from the label, the name suffix and status.
func passThrough(label string, spaced bool) PrefixHandler {
	return func(in Input, suffix string) Line {
		p := in.Payload
		status := p.String("status")

		level := statusLevel(status)
		if l, ok := levelFromHint(p.String("level")); ok {
			level = l
		} else if l, ok := levelFromHint(in.Event.Level()); ok {
			level = l
		}

		if m := in.Message(); m != "" {
			return textLine(level, m)
		}
		if spaced {
			suffix = strings.ReplaceAll(suffix, ".", " ")
		}
		msg := label + " " + suffix
		if status != "" {
			msg += ": " + status
		}
		return textLine(level, msg)
	}
}

var (
	formatConfigFamily    = passThrough("Config", true)
	formatTransformFamily = passThrough("Transform", false)
)

// detectorFamily covers the column_detector.* and row_detector.* members that
// have no exact entry. Payloads carrying any of scoreKeys render as a
// detector decision; anything else passes through.
func detectorFamily(score Handler, label string, scoreKeys ...string) PrefixHandler {
	fallback := passThrough(label, true)
	return func(in Input, suffix string) Line {
		for _, k := range scoreKeys {
			if in.Payload.Exists(k) {
				return score(in)
			}
		}
		return fallback(in, suffix)
	}
}

var (
	formatColumnDetectorFamily = detectorFamily(formatColumnScore, "Column detector", "score", "candidates")
	formatRowDetectorFamily    = detectorFamily(formatRowScore, "Row detector", "header_score", "data_score", "candidates")
)
