package ingest

import "strings"

// Row is a single decoded input row: column header → raw text value.
type Row map[string]string

// Decode parses raw uploaded bytes into rows. The first non-blank line is
// the header; each following line is zipped against it positionally. Rows
// whose field count does not match the header are silently dropped.
//
// Decode never fails: malformed input degrades to fewer rows, and anything
// with less than a header plus one data line yields nil. Callers treat a nil
// result as the "empty file" condition.
func Decode(raw []byte) []Row {
	_, rows := DecodeWithHeaders(raw)
	return rows
}

// DecodeWithHeaders is Decode plus the normalized header list in file order,
// for callers that need to re-encode rows deterministically.
func DecodeWithHeaders(raw []byte) ([]string, []Row) {
	lines := splitLines(string(raw))
	if len(lines) < 2 {
		return nil, nil
	}

	headers := splitFields(lines[0])
	for i, h := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := splitFields(line)
		if len(fields) != len(headers) {
			continue
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			row[h] = fields[i]
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// EncodeDelimited renders rows back to delimited text under the given header
// order. Values containing the separator or quotes are double-quoted. Used to
// ship a sampled batch to the scoring service.
func EncodeDelimited(headers []string, rows []Row) string {
	var b strings.Builder
	writeLine := func(fields []string) {
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			if strings.ContainsAny(f, ",\"\n") {
				b.WriteByte('"')
				b.WriteString(strings.ReplaceAll(f, `"`, `""`))
				b.WriteByte('"')
			} else {
				b.WriteString(f)
			}
		}
		b.WriteByte('\n')
	}
	writeLine(headers)
	line := make([]string, len(headers))
	for _, row := range rows {
		for i, h := range headers {
			line[i] = row[h]
		}
		writeLine(line)
	}
	return b.String()
}

// splitLines splits on \n, tolerating \r\n endings, and drops blank lines.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// splitFields splits a line on commas, honoring double-quoted fields: a
// separator inside quotes does not split, and the quotes themselves are
// stripped from the value.
func splitFields(line string) []string {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(field.String()))
	return fields
}
