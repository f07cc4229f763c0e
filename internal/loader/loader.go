package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Options controls how a source is decoded and split
type Options struct {
	// Comma is the field delimiter, ';' when zero.
	Comma rune
	// Encodings are tried in order, DefaultEncodings when empty.
	Encodings []string
}

// Table is a decoded export: one map per data line keyed by trimmed header
type Table struct {
	Name     string
	Headers  []string
	Rows     []map[string]string
	Skipped  int    // Lines dropped for a wrong field count or broken quoting
	Encoding string // Encoding that decoded the source
	Lenient  bool   // Whether the line-by-line pass for broken quoting was needed
}

// Load reads and decodes the export at path.
func Load(path string, opts Options) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Source: filepath.Base(path), Err: fmt.Errorf("reading file: %w", err)}
	}
	return LoadBytes(filepath.Base(path), data, opts)
}

// LoadBytes decodes an export already held in memory. name identifies the
// source in errors.
func LoadBytes(name string, data []byte, opts Options) (*Table, error) {
	if looksLikeHTML(data) {
		err := ErrNotTabular
		if title := pageTitle(data); title != "" {
			err = fmt.Errorf("%w: HTML page %q", ErrNotTabular, title)
		}
		return nil, &SourceError{Source: name, Err: err}
	}

	text, enc, err := decode(data, opts.Encodings)
	if err != nil {
		return nil, &SourceError{Source: name, Err: err}
	}

	comma := opts.Comma
	if comma == 0 {
		comma = ';'
	}

	table, err := parse(text, comma, false)
	if isQuoteError(err) {
		table, err = parse(text, comma, true)
	}
	if err != nil {
		return nil, &SourceError{Source: name, Err: fmt.Errorf("parsing CSV: %w", err)}
	}

	table.Name = name
	table.Encoding = enc
	return table, nil
}

// parse splits text into a table. Lines whose field count differs from the
// header are counted and skipped. Without lenient a quoting error aborts so the
// caller can retry; the lenient pass reads line by line with quotes taken
// literally where a line cannot be read as CSV.
func parse(text string, comma rune, lenient bool) (*Table, error) {
	if lenient {
		return parseLiteral(text, comma), nil
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma

	header, err := r.Read()
	if err == io.EOF {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	table := newTable(header)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				table.Skipped++
				continue
			}
			return nil, err
		}
		table.add(record)
	}

	return table, nil
}

// parseLiteral reads each line on its own, so an unterminated quote cannot
// swallow the lines after it.
func parseLiteral(text string, comma rune) *Table {
	var table *Table
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitLine(line, comma)
		if table == nil {
			table = newTable(fields)
			continue
		}
		if len(fields) != len(table.Headers) {
			table.Skipped++
			continue
		}
		table.add(fields)
	}
	if table == nil {
		table = &Table{}
	}
	table.Lenient = true
	return table
}

// splitLine reads one line as CSV. A line with broken quoting is split on the
// delimiter instead; quote characters stay in the field text except around it.
func splitLine(line string, comma rune) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = comma
	r.FieldsPerRecord = -1
	if record, err := r.Read(); err == nil {
		return record
	}

	fields := strings.Split(line, string(comma))
	for i, f := range fields {
		fields[i] = strings.Trim(strings.TrimSpace(f), `"`)
	}
	return fields
}

func newTable(header []string) *Table {
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = cleanHeader(h)
	}
	return &Table{Headers: headers}
}

// add appends a record whose length matches the header.
func (t *Table) add(record []string) {
	row := make(map[string]string, len(t.Headers))
	for i, h := range t.Headers {
		if h == "" {
			continue
		}
		row[h] = strings.TrimSpace(record[i])
	}
	t.Rows = append(t.Rows, row)
}

func cleanHeader(h string) string {
	return strings.TrimSpace(strings.ReplaceAll(h, "\ufeff", ""))
}

func isQuoteError(err error) bool {
	return errors.Is(err, csv.ErrQuote) || errors.Is(err, csv.ErrBareQuote)
}
