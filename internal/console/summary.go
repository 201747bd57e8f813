package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/clac-ca/automatic-data-extractor-sub007/internal/envelope"
	"github.com/clac-ca/automatic-data-extractor-sub007/internal/textfmt"
)

// SummarySchemaPrefix prefixes the schema_id of enveloped summary payloads.
const SummarySchemaPrefix = "ade.summary"

const maxListedNames = 5

// IsAdeSummary reports whether p uses the enveloped summary schema rather
// than the legacy flat one. Any single marker is enough: a matching scope,
// type "summary", or a schema_id under SummarySchemaPrefix.
func IsAdeSummary(p envelope.Payload, scope string) bool {
	if scope != "" && p.String("scope") == scope {
		return true
	}
	if p.String("type") == "summary" {
		return true
	}
	return strings.HasPrefix(p.String("schema_id"), SummarySchemaPrefix)
}

type optInt struct {
	n  int64
	ok bool
}

func readInt(p envelope.Payload, paths ...string) optInt {
	n, ok := p.FirstInt(paths...)
	return optInt{n: n, ok: ok}
}

// summaryView is the schema-independent shape every summary renders from.
type summaryView struct {
	kind string
	id   string

	files, sheets, tables, rows, columns optInt
	columnsMapped                        optInt
	fieldsTotal, fieldsMapped            optInt
	requiredTotal, requiredMissing       optInt
	unmappedRequired                     []string
	unmappedHeaders                      []string

	headerRow, dataStart, dataEnd optInt
	sourceFile                    string
	sourceBytes                   optInt
}

func summaryID(kind, explicit, sheet string, tableIndex optInt, file, runID string) string {
	if explicit != "" {
		return explicit
	}
	switch kind {
	case "Table":
		switch {
		case sheet != "" && tableIndex.ok:
			return sheet + " #" + strconv.FormatInt(tableIndex.n, 10)
		case tableIndex.ok:
			return "table " + strconv.FormatInt(tableIndex.n, 10)
		default:
			return sheet
		}
	case "Sheet":
		return sheet
	case "File":
		return textfmt.Basename(file)
	case "Run":
		return runID
	}
	return ""
}

// readAdeSummary adapts the enveloped schema: nested source, counts and fields.
func readAdeSummary(in Input, kind string) summaryView {
	p := in.Payload
	v := summaryView{
		kind:          kind,
		files:         readInt(p, "counts.files.total", "counts.files"),
		sheets:        readInt(p, "counts.sheets.total", "counts.sheets"),
		tables:        readInt(p, "counts.tables.total", "counts.tables"),
		rows:          readInt(p, "counts.rows.total", "counts.rows"),
		columns:       readInt(p, "counts.columns.total", "counts.columns", "columns.total"),
		columnsMapped: readInt(p, "counts.columns.mapped", "counts.mapped_columns", "columns.mapped"),
		fieldsTotal:   readInt(p, "fields.total"),
		fieldsMapped:  readInt(p, "fields.mapped"),
		requiredTotal: readInt(p, "fields.required"),
		headerRow:     readInt(p, "source.header_row_index", "source.header_row"),
		dataStart:     readInt(p, "source.data_row_start", "source.data_rows.start"),
		dataEnd:       readInt(p, "source.data_row_end", "source.data_rows.end"),
		sourceFile:    p.FirstString("source.file", "source.path", "source.file_name"),
		sourceBytes:   readInt(p, "source.bytes", "source.size"),
	}
	v.unmappedRequired = p.Strings("fields.unmapped_required")
	v.requiredMissing = readInt(p, "fields.required_unmapped")
	if !v.requiredMissing.ok && len(v.unmappedRequired) > 0 {
		v.requiredMissing = optInt{n: int64(len(v.unmappedRequired)), ok: true}
	}
	v.unmappedHeaders = p.Strings("columns.unmapped_headers")
	if len(v.unmappedHeaders) == 0 {
		v.unmappedHeaders = p.Strings("counts.columns.unmapped_headers")
	}

	v.id = summaryID(kind,
		p.FirstString("id", "name", "source.name"),
		p.FirstString("source.sheet", "source.sheet_name"),
		readInt(p, "source.table_index"),
		v.sourceFile,
		firstNonEmpty(p.FirstString("run_id", "source.run_id"), in.Event.RunID()),
	)
	return v
}

// readLegacySummary adapts the flat schema: *_count fields at the top level.
func readLegacySummary(in Input, kind string) summaryView {
	p := in.Payload
	v := summaryView{
		kind:          kind,
		files:         readInt(p, "file_count"),
		sheets:        readInt(p, "sheet_count"),
		tables:        readInt(p, "table_count"),
		rows:          readInt(p, "row_count"),
		columns:       readInt(p, "column_count"),
		columnsMapped: readInt(p, "mapped_column_count"),
		fieldsTotal:   readInt(p, "field_count"),
		fieldsMapped:  readInt(p, "mapped_field_count"),
		requiredTotal: readInt(p, "required_field_count"),
		headerRow:     readInt(p, "header_row_index", "header_row"),
		dataStart:     readInt(p, "data_row_start"),
		dataEnd:       readInt(p, "data_row_end"),
		sourceFile:    p.FirstString("source_file", "file", "path", "file_name"),
		sourceBytes:   readInt(p, "file_size", "bytes"),
	}
	if !v.columnsMapped.ok && v.columns.ok {
		if unmapped, ok := p.Int("unmapped_column_count"); ok {
			v.columnsMapped = optInt{n: v.columns.n - unmapped, ok: true}
		}
	}
	v.unmappedRequired = p.Strings("missing_required_fields")
	if len(v.unmappedRequired) == 0 {
		v.unmappedRequired = p.Strings("unmapped_required_fields")
	}
	v.requiredMissing = readInt(p, "missing_required_count")
	if !v.requiredMissing.ok && len(v.unmappedRequired) > 0 {
		v.requiredMissing = optInt{n: int64(len(v.unmappedRequired)), ok: true}
	}
	v.unmappedHeaders = p.Strings("unmapped_headers")
	if len(v.unmappedHeaders) == 0 {
		v.unmappedHeaders = p.Strings("unmapped_columns")
	}

	v.id = summaryID(kind,
		p.FirstString("table_id", "name"),
		p.FirstString("sheet_name", "sheet"),
		readInt(p, "table_index"),
		v.sourceFile,
		firstNonEmpty(p.String("run_id"), in.Event.RunID()),
	)
	return v
}

func (v summaryView) headline() string {
	head := v.kind + " summary"
	if v.id != "" {
		head += ": " + v.id
	}
	parts := []string{head}
	for _, c := range []struct {
		val  optInt
		noun string
	}{
		{v.files, "file"},
		{v.sheets, "sheet"},
		{v.tables, "table"},
		{v.rows, "row"},
		{v.columns, "column"},
		{v.fieldsTotal, "field"},
	} {
		if c.val.ok {
			parts = append(parts, textfmt.Plural(c.val.n, c.noun))
		}
	}
	return strings.Join(parts, " · ")
}

func (v summaryView) mappedLine() string {
	var parts []string
	if v.fieldsTotal.ok && v.fieldsMapped.ok {
		parts = append(parts, fmt.Sprintf("mapped fields %d/%d", v.fieldsMapped.n, v.fieldsTotal.n))
	}
	switch {
	case v.requiredTotal.ok:
		parts = append(parts, fmt.Sprintf("required missing %d/%d", v.requiredMissing.n, v.requiredTotal.n))
	case v.requiredMissing.ok && v.requiredMissing.n > 0:
		parts = append(parts, fmt.Sprintf("required missing %d", v.requiredMissing.n))
	}
	if v.columns.ok && v.columnsMapped.ok {
		pct, ok := textfmt.Ratio(float64(v.columnsMapped.n), float64(v.columns.n))
		cov := fmt.Sprintf("columns mapped %d/%d", v.columnsMapped.n, v.columns.n)
		if ok {
			cov += " (" + textfmt.Percent(pct, true) + ")"
		}
		parts = append(parts, cov)
	}
	return strings.Join(parts, " · ")
}

func (v summaryView) detailLine() string {
	var parts []string
	if v.headerRow.ok {
		parts = append(parts, "header row "+strconv.FormatInt(v.headerRow.n, 10))
	}
	switch {
	case v.dataStart.ok && v.dataEnd.ok:
		parts = append(parts, fmt.Sprintf("data rows %d–%d", v.dataStart.n, v.dataEnd.n))
	case v.dataStart.ok:
		parts = append(parts, fmt.Sprintf("data rows from %d", v.dataStart.n))
	}
	if name := textfmt.Basename(v.sourceFile); name != "" {
		if v.sourceBytes.ok {
			name += " (" + textfmt.Bytes(v.sourceBytes.n) + ")"
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, " · ")
}

// level: missing required fields are errors; partial header coverage warns.
func (v summaryView) level() Level {
	if (v.requiredMissing.ok && v.requiredMissing.n > 0) || len(v.unmappedRequired) > 0 {
		return LevelError
	}
	if v.columns.ok && v.columnsMapped.ok && v.columnsMapped.n < v.columns.n {
		return LevelWarning
	}
	if len(v.unmappedHeaders) > 0 {
		return LevelWarning
	}
	return LevelSuccess
}

func (v summaryView) line() Line {
	var required, headers string
	if len(v.unmappedRequired) > 0 {
		required = "unmapped required fields: " + textfmt.JoinLimited(v.unmappedRequired, maxListedNames)
	}
	if len(v.unmappedHeaders) > 0 {
		headers = "unmapped headers: " + textfmt.JoinLimited(v.unmappedHeaders, maxListedNames)
	}
	return textLine(v.level(), joinLines(
		v.headline(),
		v.mappedLine(),
		required,
		headers,
		v.detailLine(),
	))
}

func summaryFormatter(kind, scope string) Handler {
	return func(in Input) Line {
		if IsAdeSummary(in.Payload, scope) {
			return readAdeSummary(in, kind).line()
		}
		return readLegacySummary(in, kind).line()
	}
}

var (
	formatTableSummary = summaryFormatter("Table", "table")
	formatSheetSummary = summaryFormatter("Sheet", "sheet")
	formatFileSummary  = summaryFormatter("File", "file")
)

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
