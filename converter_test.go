// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bytes"
	"strings"
	"testing"
)

func testFieldsAndSchemas() ([]*Field, []Schema) {
	fields := []*Field{
		{Name: "id", Datatype: DatatypeInt},
		{Name: "flux", Datatype: DatatypeDouble},
	}
	schemas := []Schema{
		{Kind: SchemaScalar, Elem: DatatypeInt},
		{Kind: SchemaScalar, Elem: DatatypeDouble},
	}
	return fields, schemas
}

func testRows(n int) []Row {
	rows := make([]Row, n)
	for i := 0; i < n; i++ {
		rows[i] = Row{
			Value{Kind: ValueInt, I: int64(i)},
			Value{Kind: ValueDouble, F: float64(i) * 1.5},
		}
	}
	return rows
}

func TestConvertCSVSequential(t *testing.T) {
	fields, schemas := testFieldsAndSchemas()
	rows := testRows(3)
	var buf bytes.Buffer
	if err := Convert(&buf, fields, schemas, rows, EncodingCSV, ConvertOptions{}); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4 (header + 3 rows)", len(lines))
	}
	if lines[0] != "id,flux" {
		t.Errorf("header = %q", lines[0])
	}
}

// TestConvertCSVParallelHeaderOnce guards against the header-per-chunk
// regression: with a chunk size smaller than the row count, the header
// line must still appear exactly once.
func TestConvertCSVParallelHeaderOnce(t *testing.T) {
	fields, schemas := testFieldsAndSchemas()
	rows := testRows(20)
	var buf bytes.Buffer
	opts := ConvertOptions{Parallelism: 4, ChunkSize: 3}
	if err := Convert(&buf, fields, schemas, rows, EncodingCSV, opts); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	headerCount := 0
	for _, l := range lines {
		if l == "id,flux" {
			headerCount++
		}
	}
	if headerCount != 1 {
		t.Errorf("header appeared %d times, want 1", headerCount)
	}
	if len(lines) != 21 {
		t.Errorf("got %d lines, want 21", len(lines))
	}
}

func TestConvertCSVCustomSeparator(t *testing.T) {
	fields, schemas := testFieldsAndSchemas()
	rows := testRows(2)
	var buf bytes.Buffer
	opts := ConvertOptions{CSVSeparator: ';'}
	if err := Convert(&buf, fields, schemas, rows, EncodingCSV, opts); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "id;flux\n") {
		t.Errorf("got %q, want semicolon-separated header", buf.String())
	}
}

func TestConvertCSVParallelCustomSeparator(t *testing.T) {
	fields, schemas := testFieldsAndSchemas()
	rows := testRows(10)
	var buf bytes.Buffer
	opts := ConvertOptions{Parallelism: 2, ChunkSize: 4, CSVSeparator: ';'}
	if err := Convert(&buf, fields, schemas, rows, EncodingCSV, opts); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "id;flux\n") {
		t.Errorf("got %q, want semicolon-separated header", buf.String())
	}
	if strings.Contains(buf.String(), ",") {
		t.Errorf("output contains a comma despite custom separator: %q", buf.String())
	}
}

func TestConvertBinaryToBinary2RoundTrip(t *testing.T) {
	_, schemas := testFieldsAndSchemas()
	rows := testRows(5)

	var bin bytes.Buffer
	if err := EncodeBinaryRows(&bin, schemas, rows); err != nil {
		t.Fatalf("EncodeBinaryRows failed: %v", err)
	}
	decoded, err := DecodeBinaryRows(&bin, schemas)
	if err != nil {
		t.Fatalf("DecodeBinaryRows failed: %v", err)
	}

	var bin2 bytes.Buffer
	if err := BinaryToBinary2(&bin2, schemas, decoded); err != nil {
		t.Fatalf("BinaryToBinary2 failed: %v", err)
	}
	roundTripped, err := DecodeBinary2Rows(&bin2, schemas)
	if err != nil {
		t.Fatalf("DecodeBinary2Rows failed: %v", err)
	}
	if len(roundTripped) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(roundTripped), len(rows))
	}
	for i, row := range roundTripped {
		if row[0].I != rows[i][0].I {
			t.Errorf("row %d id = %v, want %v", i, row[0].I, rows[i][0].I)
		}
	}
}

func TestConvertParallelPreservesRowOrderWithinChunk(t *testing.T) {
	fields, schemas := testFieldsAndSchemas()
	rows := testRows(100)
	var sequential, parallel bytes.Buffer
	if err := Convert(&sequential, fields, schemas, rows, EncodingBinary2, ConvertOptions{}); err != nil {
		t.Fatalf("sequential Convert failed: %v", err)
	}
	if err := Convert(&parallel, fields, schemas, rows, EncodingBinary2, ConvertOptions{Parallelism: 4, ChunkSize: 7}); err != nil {
		t.Fatalf("parallel Convert failed: %v", err)
	}
	decodedSeq, err := DecodeBinary2Rows(bytes.NewReader(sequential.Bytes()), schemas)
	if err != nil {
		t.Fatalf("decode sequential failed: %v", err)
	}
	decodedPar, err := DecodeBinary2Rows(bytes.NewReader(parallel.Bytes()), schemas)
	if err != nil {
		t.Fatalf("decode parallel failed: %v", err)
	}
	if len(decodedSeq) != len(decodedPar) {
		t.Fatalf("row count mismatch: %d vs %d", len(decodedSeq), len(decodedPar))
	}
	for i := range decodedSeq {
		if decodedSeq[i][0].I != decodedPar[i][0].I {
			t.Errorf("row %d id mismatch: %v vs %v", i, decodedSeq[i][0].I, decodedPar[i][0].I)
		}
	}
}
