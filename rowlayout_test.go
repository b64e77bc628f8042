// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bytes"
	"testing"
)

func TestPlanRowLayoutCoalescesFixedRuns(t *testing.T) {
	schemas := []Schema{
		{Kind: SchemaScalar, Elem: DatatypeInt},    // fixed, 4 bytes
		{Kind: SchemaScalar, Elem: DatatypeShort},  // fixed, 2 bytes
		{Kind: SchemaVarArray, Elem: DatatypeInt},  // variable
		{Kind: SchemaScalar, Elem: DatatypeDouble}, // fixed, 8 bytes
	}
	plan := PlanRowLayout(schemas)
	if len(plan) != 3 {
		t.Fatalf("got %d plan entries, want 3 (two fixed runs around the variable slot)", len(plan))
	}
	if plan[0].Variable || plan[0].N != 6 {
		t.Errorf("first run = %+v, want Fixed(6)", plan[0])
	}
	if !plan[1].Variable || plan[1].N != 4 {
		t.Errorf("variable slot = %+v, want Variable(elem_size=4)", plan[1])
	}
	if plan[2].Variable || plan[2].N != 8 {
		t.Errorf("last run = %+v, want Fixed(8)", plan[2])
	}
}

func TestReadRawBinaryRowCopiesExactBytes(t *testing.T) {
	schemas := []Schema{
		{Kind: SchemaScalar, Elem: DatatypeInt},
		{Kind: SchemaVarArray, Elem: DatatypeShort},
	}
	rows := []Row{{
		Value{Kind: ValueInt, I: 7},
		Value{Kind: ValueShortArray, ShortArr: []int16{1, 2, 3}},
	}}
	var encoded bytes.Buffer
	if err := EncodeBinaryRows(&encoded, schemas, rows); err != nil {
		t.Fatalf("EncodeBinaryRows failed: %v", err)
	}

	plan := PlanRowLayout(schemas)
	raw, err := ReadRawBinaryRow(bytes.NewReader(encoded.Bytes()), plan)
	if err != nil {
		t.Fatalf("ReadRawBinaryRow failed: %v", err)
	}
	if !bytes.Equal(raw, encoded.Bytes()) {
		t.Errorf("ReadRawBinaryRow copied %v, want %v (byte-identical to the source row)", raw, encoded.Bytes())
	}
}

func TestCopyRawBinaryRowsRoundTrip(t *testing.T) {
	schemas := []Schema{
		{Kind: SchemaScalar, Elem: DatatypeInt},
		{Kind: SchemaScalar, Elem: DatatypeDouble},
	}
	rows := []Row{
		{Value{Kind: ValueInt, I: 1}, Value{Kind: ValueDouble, F: 1.5}},
		{Value{Kind: ValueInt, I: 2}, Value{Kind: ValueDouble, F: 2.5}},
	}
	var encoded bytes.Buffer
	if err := EncodeBinaryRows(&encoded, schemas, rows); err != nil {
		t.Fatalf("EncodeBinaryRows failed: %v", err)
	}

	var copied bytes.Buffer
	n, err := CopyRawBinaryRows(bytes.NewReader(encoded.Bytes()), &copied, schemas)
	if err != nil {
		t.Fatalf("CopyRawBinaryRows failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("got %d rows copied, want 2", n)
	}
	if !bytes.Equal(copied.Bytes(), encoded.Bytes()) {
		t.Errorf("raw copy = %v, want byte-identical to %v", copied.Bytes(), encoded.Bytes())
	}

	// Decoding the bulk-copied bytes must still produce the original rows.
	decoded, err := DecodeBinaryRows(bytes.NewReader(copied.Bytes()), schemas)
	if err != nil {
		t.Fatalf("DecodeBinaryRows on copied bytes failed: %v", err)
	}
	if len(decoded) != 2 || decoded[0][0].I != 1 || decoded[1][0].I != 2 {
		t.Errorf("decoded copied rows = %+v", decoded)
	}
}

func TestCopyRawBinary2RowsPreservesBitmap(t *testing.T) {
	schemas := []Schema{
		{Kind: SchemaScalar, Elem: DatatypeInt},
		{Kind: SchemaScalar, Elem: DatatypeInt},
	}
	rows := []Row{{Value{Kind: ValueInt, I: 5}, NullValue()}}
	var encoded bytes.Buffer
	if err := EncodeBinary2Rows(&encoded, schemas, rows); err != nil {
		t.Fatalf("EncodeBinary2Rows failed: %v", err)
	}

	var copied bytes.Buffer
	if _, err := CopyRawBinary2Rows(bytes.NewReader(encoded.Bytes()), &copied, schemas); err != nil {
		t.Fatalf("CopyRawBinary2Rows failed: %v", err)
	}
	if !bytes.Equal(copied.Bytes(), encoded.Bytes()) {
		t.Errorf("raw copy = %v, want byte-identical to %v", copied.Bytes(), encoded.Bytes())
	}

	decoded, err := DecodeBinary2Rows(bytes.NewReader(copied.Bytes()), schemas)
	if err != nil {
		t.Fatalf("DecodeBinary2Rows on copied bytes failed: %v", err)
	}
	if !decoded[0][1].IsNull() {
		t.Errorf("bitmap-flagged field lost through raw copy: %+v", decoded[0])
	}
}

func TestCopyRawBinaryRowsTruncatedIsFatal(t *testing.T) {
	schemas := []Schema{{Kind: SchemaScalar, Elem: DatatypeInt}}
	rows := []Row{{Value{Kind: ValueInt, I: 1}}, {Value{Kind: ValueInt, I: 2}}}
	var encoded bytes.Buffer
	if err := EncodeBinaryRows(&encoded, schemas, rows); err != nil {
		t.Fatalf("EncodeBinaryRows failed: %v", err)
	}
	truncated := encoded.Bytes()[:encoded.Len()-2]
	var copied bytes.Buffer
	if _, err := CopyRawBinaryRows(bytes.NewReader(truncated), &copied, schemas); err == nil {
		t.Fatal("CopyRawBinaryRows over a truncated stream succeeded, want error")
	}
}
