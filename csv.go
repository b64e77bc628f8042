// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"io"
	"strings"
)

// WriteCSV renders rows as CSV: a header row of FIELD names, RFC 4180
// quoting (a field containing sep, a double-quote or a newline is wrapped
// in quotes with internal quotes doubled), UTF-8, trailing newline on
// every row including the header. sep defaults to ',' when 0.
func WriteCSV(w io.Writer, fields []*Field, rows []Row, sep rune) error {
	if sep == 0 {
		sep = ','
	}
	if err := WriteCSVHeader(w, fields, sep); err != nil {
		return err
	}
	return WriteCSVRows(w, rows, sep)
}

// WriteCSVHeader writes just the FIELD-name header line, letting a caller
// that is rendering CSV in chunks (convertParallel's per-chunk workers)
// write it exactly once regardless of how many chunks follow.
func WriteCSVHeader(w io.Writer, fields []*Field, sep rune) error {
	if sep == 0 {
		sep = ','
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return writeCSVRecord(w, names, sep)
}

// WriteCSVRows writes rows as CSV records with no header line.
func WriteCSVRows(w io.Writer, rows []Row, sep rune) error {
	if sep == 0 {
		sep = ','
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.Display()
		}
		if err := writeCSVRecord(w, cells, sep); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVRecord(w io.Writer, cells []string, sep rune) error {
	var sb strings.Builder
	for i, cell := range cells {
		if i > 0 {
			sb.WriteRune(sep)
		}
		sb.WriteString(quoteCSVField(cell, sep))
	}
	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return ioErr(err)
}

func quoteCSVField(s string, sep rune) string {
	if !needsCSVQuoting(s, sep) {
		return s
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		if r == '"' {
			sb.WriteByte('"')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}

func needsCSVQuoting(s string, sep rune) bool {
	return strings.ContainsRune(s, sep) || strings.ContainsRune(s, '"') ||
		strings.ContainsAny(s, "\n\r")
}
