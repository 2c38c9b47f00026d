// Package csvparse tokenizes the CSV text returned by the extraction model.
//
// It is deliberately not RFC 4180: a quoted field cannot span lines and a
// doubled quote inside a quoted field is not an escape. Both cases degrade
// instead of failing, and Parse never returns an error.
package csvparse

import (
	"regexp"
	"strings"

	"github.com/markdave123-py/pdfcsv/internal/models"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// Parse splits raw into a header row (first line) and data rows (every other
// line). Whitespace-only input yields empty, non-nil Headers and Rows.
func Parse(raw string) models.TabularResult {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.TabularResult{Headers: []string{}, Rows: [][]string{}, RawText: raw}
	}

	lines := lineBreak.Split(trimmed, -1)
	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, ParseLine(line))
	}

	return models.TabularResult{
		Headers: ParseLine(lines[0]),
		Rows:    rows,
		RawText: raw,
	}
}

// ParseLine splits one line on commas that are outside double quotes.
// Quote characters toggle the quoted state and are never kept. Each field is
// trimmed, then loses one leading and one trailing quote if it still has them.
func ParseLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))

	for i, f := range fields {
		f = strings.TrimPrefix(f, `"`)
		fields[i] = strings.TrimSuffix(f, `"`)
	}
	return fields
}
