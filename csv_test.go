// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	fields := []*Field{{Name: "ra"}, {Name: "dec"}, {Name: "name"}}
	rows := []Row{
		{Value{Kind: ValueDouble, F: 1.5}, Value{Kind: ValueDouble, F: -2.5}, Value{Kind: ValueString, S: "plain"}},
		{Value{Kind: ValueDouble, F: 3.0}, NullValue(), Value{Kind: ValueString, S: "has,comma"}},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, fields, rows, 0); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0] != "ra,dec,name" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != `3,,"has,comma"` {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestWriteCSVHeaderAndRowsSeparately(t *testing.T) {
	fields := []*Field{{Name: "a"}, {Name: "b"}}
	rows := []Row{{Value{Kind: ValueInt, I: 1}, Value{Kind: ValueInt, I: 2}}}

	var buf bytes.Buffer
	if err := WriteCSVHeader(&buf, fields, ';'); err != nil {
		t.Fatalf("WriteCSVHeader failed: %v", err)
	}
	if err := WriteCSVRows(&buf, rows, ';'); err != nil {
		t.Fatalf("WriteCSVRows failed: %v", err)
	}
	want := "a;b\n1;2\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestQuoteCSVField(t *testing.T) {
	tests := []struct {
		in   string
		sep  rune
		want string
	}{
		{"plain", ',', "plain"},
		{"a,b", ',', `"a,b"`},
		{`has"quote`, ',', `"has""quote"`},
		{"line\nbreak", ',', "\"line\nbreak\""},
		{"a;b", ';', `"a;b"`},
		{"a;b", ',', "a;b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := quoteCSVField(tt.in, tt.sep); got != tt.want {
				t.Errorf("quoteCSVField(%q, %q) = %q, want %q", tt.in, tt.sep, got, tt.want)
			}
		})
	}
}
