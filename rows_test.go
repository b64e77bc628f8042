// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bytes"
	"testing"
)

func TestRowsFromTableDataWrongFieldCount(t *testing.T) {
	td := &TableData{Rows: []TR{{Cells: []string{"1", "2", "3"}}}}
	schemas := []Schema{{Kind: SchemaScalar, Elem: DatatypeInt}}
	if _, err := RowsFromTableData(td, schemas); err == nil {
		t.Fatal("RowsFromTableData with mismatched cell count succeeded, want error")
	}
}

func TestRowsFromTableDataAndBack(t *testing.T) {
	schemas := []Schema{
		{Kind: SchemaScalar, Elem: DatatypeInt},
		{Kind: SchemaScalar, Elem: DatatypeDouble},
	}
	td := &TableData{Rows: []TR{
		{Cells: []string{"1", "2.5"}},
		{Cells: []string{"", "NaN"}},
	}}
	rows, err := RowsFromTableData(td, schemas)
	if err != nil {
		t.Fatalf("RowsFromTableData failed: %v", err)
	}
	if !rows[1][0].IsNull() {
		t.Errorf("empty int cell did not parse as Null")
	}
	back := RowToTR(rows[0])
	if back.Cells[0] != "1" || back.Cells[1] != "2.5" {
		t.Errorf("RowToTR = %+v", back.Cells)
	}
}

func TestDecodeBinaryRowsStopsCleanlyAtEOF(t *testing.T) {
	schemas := []Schema{{Kind: SchemaScalar, Elem: DatatypeInt}}
	rows := []Row{{Value{Kind: ValueInt, I: 1}}, {Value{Kind: ValueInt, I: 2}}}
	var buf bytes.Buffer
	if err := EncodeBinaryRows(&buf, schemas, rows); err != nil {
		t.Fatalf("EncodeBinaryRows failed: %v", err)
	}
	got, err := DecodeBinaryRows(&buf, schemas)
	if err != nil {
		t.Fatalf("DecodeBinaryRows failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
}

func TestDecodeBinaryRowsTruncatedMidRowIsFatal(t *testing.T) {
	schemas := []Schema{
		{Kind: SchemaScalar, Elem: DatatypeInt},
		{Kind: SchemaScalar, Elem: DatatypeInt},
	}
	rows := []Row{{Value{Kind: ValueInt, I: 1}, Value{Kind: ValueInt, I: 2}}}
	var buf bytes.Buffer
	if err := EncodeBinaryRows(&buf, schemas, rows); err != nil {
		t.Fatalf("EncodeBinaryRows failed: %v", err)
	}
	// Truncate partway through the second field of the one complete row:
	// a clean end of stream would never land here, so this must be a
	// fatal error rather than a silently accepted partial row.
	truncated := buf.Bytes()[:buf.Len()-2]
	if _, err := DecodeBinaryRows(bytes.NewReader(truncated), schemas); err == nil {
		t.Fatal("DecodeBinaryRows over a row truncated mid-field succeeded, want error")
	}
}

func TestDecodeBinaryRowsTruncatedAtRowStartIsFatal(t *testing.T) {
	schemas := []Schema{{Kind: SchemaScalar, Elem: DatatypeInt}}
	rows := []Row{{Value{Kind: ValueInt, I: 1}}, {Value{Kind: ValueInt, I: 2}}}
	var buf bytes.Buffer
	if err := EncodeBinaryRows(&buf, schemas, rows); err != nil {
		t.Fatalf("EncodeBinaryRows failed: %v", err)
	}
	// Leave a single stray byte after the first complete row: there is
	// data left, so the second row's decode must be attempted and its
	// failure must be fatal, not reinterpreted as a clean stop.
	oneRowPlusStrayByte := buf.Bytes()[:4+1]
	if _, err := DecodeBinaryRows(bytes.NewReader(oneRowPlusStrayByte), schemas); err == nil {
		t.Fatal("DecodeBinaryRows with a stray trailing byte succeeded, want error")
	}
}

func TestDecodeBinary2RowsNullBitmap(t *testing.T) {
	schemas := []Schema{
		{Kind: SchemaScalar, Elem: DatatypeInt},
		{Kind: SchemaScalar, Elem: DatatypeInt},
		{Kind: SchemaScalar, Elem: DatatypeInt},
	}
	rows := []Row{{Value{Kind: ValueInt, I: 1}, NullValue(), Value{Kind: ValueInt, I: 3}}}
	var buf bytes.Buffer
	if err := EncodeBinary2Rows(&buf, schemas, rows); err != nil {
		t.Fatalf("EncodeBinary2Rows failed: %v", err)
	}
	got, err := DecodeBinary2Rows(&buf, schemas)
	if err != nil {
		t.Fatalf("DecodeBinary2Rows failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if !got[0][1].IsNull() {
		t.Errorf("bitmap-flagged field decoded as non-null: %+v", got[0][1])
	}
	if got[0][0].I != 1 || got[0][2].I != 3 {
		t.Errorf("non-null fields corrupted: %+v", got[0])
	}
}

func TestTableRowsDispatchesOnDataKind(t *testing.T) {
	schemas := []Schema{{Kind: SchemaScalar, Elem: DatatypeInt}}
	tbl := &Table{Data: &Data{TableData: &TableData{Rows: []TR{{Cells: []string{"7"}}}}}}
	rows, err := tbl.Rows(schemas)
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	if len(rows) != 1 || rows[0][0].I != 7 {
		t.Errorf("got %+v", rows)
	}

	tbl.Data = &Data{Fits: &Fits{}}
	if _, err := tbl.Rows(schemas); err == nil {
		t.Error("Rows() over a FITS payload succeeded, want error")
	}

	tbl.Data = nil
	rows, err = tbl.Rows(schemas)
	if err != nil || rows != nil {
		t.Errorf("Rows() with nil Data = (%v, %v), want (nil, nil)", rows, err)
	}
}

// TestEncodeBinary2BoolIntSentinelRow pins the exact wire bytes for a
// (boolean, int-with-null-sentinel=-1) table: a fully populated row gets
// a zero bitmap byte, and a fully null row gets the top two bits set
// with the bool cell carrying '?' and the int cell carrying the
// sentinel.
func TestEncodeBinary2BoolIntSentinelRow(t *testing.T) {
	sentinel := int64(-1)
	schemas := []Schema{
		{Kind: SchemaScalar, Elem: DatatypeBoolean},
		{Kind: SchemaScalar, Elem: DatatypeInt, NullSentinel: &sentinel},
	}
	rows := []Row{
		{Value{Kind: ValueBool, B: true}, Value{Kind: ValueInt, I: 42}},
		{NullValue(), NullValue()},
	}
	var buf bytes.Buffer
	if err := EncodeBinary2Rows(&buf, schemas, rows); err != nil {
		t.Fatalf("EncodeBinary2Rows failed: %v", err)
	}
	want := []byte{
		0x00, 'T', 0x00, 0x00, 0x00, 0x2A,
		0xC0, '?', 0xFF, 0xFF, 0xFF, 0xFF,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % X, want % X", buf.Bytes(), want)
	}

	got, err := DecodeBinary2Rows(&buf, schemas)
	if err != nil {
		t.Fatalf("DecodeBinary2Rows failed: %v", err)
	}
	if !got[1][0].IsNull() || !got[1][1].IsNull() {
		t.Errorf("null row decoded as %+v", got[1])
	}
}

// TestEncodeBinaryDoubleColumnExactBytes pins the BINARY wire bytes for
// a single double column holding 1.0 then NaN: big-endian IEEE 754 for
// 1.0 followed by the canonical quiet NaN, 16 bytes total, which base64
// encode to a single 24-character line.
func TestEncodeBinaryDoubleColumnExactBytes(t *testing.T) {
	schemas := []Schema{{Kind: SchemaScalar, Elem: DatatypeDouble}}
	one, err := schemas[0].ValueFromStr("1.0")
	if err != nil {
		t.Fatalf("ValueFromStr failed: %v", err)
	}
	rows := []Row{{one}, {NullValue()}}
	var buf bytes.Buffer
	if err := EncodeBinaryRows(&buf, schemas, rows); err != nil {
		t.Fatalf("EncodeBinaryRows failed: %v", err)
	}
	want := []byte{
		0x3F, 0xF0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x7F, 0xF8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % X, want % X", buf.Bytes(), want)
	}

	text := encodeBase64Text(buf.Bytes())
	if text != "P/AAAAAAAAB/+AAAAAAAAA==\n" {
		t.Errorf("base64 text = %q, want one 24-character line", text)
	}
}
