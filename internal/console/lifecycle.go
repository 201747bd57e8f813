package console

import (
	"strings"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/textfmt"
)

func formatRunQueued(in Input) Line {
	base := in.Message()
	if base == "" {
		base = "Run queued"
	}
	return textLine(LevelInfo, withReason(base, in.Payload.String("mode")))
}

func formatRunWaitingForBuild(in Input) Line {
	p := in.Payload
	base := in.Message()
	if base == "" {
		base = "Waiting for build"
		if id := p.String("build_id"); id != "" {
			base += " " + id
		}
	}
	return textLine(LevelInfo, withReason(base, p.String("reason")))
}

func formatRunStarted(in Input) Line {
	p := in.Payload
	parts := []string{in.Message()}
	if parts[0] == "" {
		parts[0] = "Run started"
	}
	if mode := p.String("mode"); mode != "" {
		parts = append(parts, "mode "+mode)
	}

	reason := p.String("env.reason")
	if reused, ok := p.Bool("env.reused"); ok && reused {
		parts = append(parts, withReason("reusing environment", reason))
	} else if ok {
		parts = append(parts, withReason("new environment", reason))
	} else if reason != "" {
		parts = append(parts, "environment: "+reason)
	}
	return textLine(LevelInfo, strings.Join(parts, " · "))
}

func formatEngineStarted(in Input) Line {
	p := in.Payload
	msg := in.Message()
	if msg == "" {
		msg = "Engine started"
		if v := p.FirstString("engine_version", "version"); v != "" {
			msg += " (v" + strings.TrimPrefix(v, "v") + ")"
		}
	}
	return textLine(LevelInfo, msg)
}

func formatFileStart(in Input) Line {
	if m := in.Message(); m != "" {
		return textLine(LevelInfo, m)
	}
	name := textfmt.Basename(in.Payload.FirstString("path", "file", "source.file"))
	if name == "" {
		return textLine(LevelInfo, "Processing file")
	}
	return textLine(LevelInfo, "Processing file "+name)
}

func formatSheetStart(in Input) Line {
	if m := in.Message(); m != "" {
		return textLine(LevelInfo, m)
	}
	p := in.Payload
	msg := "Processing sheet"
	if sheet := p.FirstString("sheet", "sheet_name", "name"); sheet != "" {
		msg += " " + sheet
	}
	return textLine(LevelInfo, withReason(msg, textfmt.Basename(p.FirstString("file", "path", "source.file"))))
}
