// Package tabular parses and produces the tabular formats used by the
// bulk import/export flows: comma-delimited text and first-sheet
// spreadsheet row maps.
package tabular

import (
	"errors"
	"strings"
)

// ErrEmptyInput indicates the delimited text held no content at all.
var ErrEmptyInput = errors.New("tabular: empty input")

// Row is one parsed data line. Line is the 1-based line number in the
// original text, so with the header on line 1 the first data row
// reports line 2.
type Row struct {
	Line   int
	Fields []string
}

// Table is the parsed form of a delimited-text document.
type Table struct {
	Header []string
	Rows   []Row
}

// ParseDelimited splits raw comma-separated text into a header and
// data rows. Double quotes delimit fields that contain commas; a
// doubled quote inside a quoted field is a literal quote. Parsing is
// line-oriented: a quote left open runs to the end of its line and is
// kept as literal content rather than rejected. Blank lines are
// skipped as rows but keep their physical line number.
func ParseDelimited(text string) (Table, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	table := Table{}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitLine(line)
		if table.Header == nil {
			for j := range fields {
				fields[j] = strings.TrimSpace(fields[j])
			}
			table.Header = fields
			continue
		}
		table.Rows = append(table.Rows, Row{Line: i + 1, Fields: fields})
	}
	if table.Header == nil {
		return Table{}, ErrEmptyInput
	}
	return table, nil
}

// splitLine separates one line into fields, honouring quoting.
func splitLine(line string) []string {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(ch)
		}
	}
	fields = append(fields, field.String())
	return fields
}
