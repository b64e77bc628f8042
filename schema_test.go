// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bytes"
	"testing"
)

func TestSchemaFromFieldScalar(t *testing.T) {
	s, err := SchemaFromField(DatatypeInt, "", "")
	if err != nil {
		t.Fatalf("SchemaFromField failed: %v", err)
	}
	if s.Kind != SchemaScalar || s.Elem != DatatypeInt {
		t.Errorf("got %+v, want scalar int", s)
	}
	if bl := s.ByteLen(); bl.Kind != ByteLenFixed || bl.N != 4 {
		t.Errorf("ByteLen() = %+v, want fixed 4", bl)
	}
}

func TestSchemaFromFieldNullSentinel(t *testing.T) {
	s, err := SchemaFromField(DatatypeInt, "", "-999")
	if err != nil {
		t.Fatalf("SchemaFromField failed: %v", err)
	}
	if s.NullSentinel == nil || *s.NullSentinel != -999 {
		t.Fatalf("NullSentinel = %v, want -999", s.NullSentinel)
	}

	v, err := s.ValueFromStr("-999")
	if err != nil {
		t.Fatalf("ValueFromStr failed: %v", err)
	}
	if !v.IsNull() {
		t.Errorf("ValueFromStr(sentinel) = %+v, want Null", v)
	}
}

func TestSchemaFromFieldShapes(t *testing.T) {
	tests := []struct {
		name string
		dt   Datatype
		arr  string
		want SchemaKind
	}{
		{"fixed char", DatatypeChar, "8", SchemaFixedString},
		{"var char", DatatypeChar, "*", SchemaVarString},
		{"fixed unicode", DatatypeUnicodeChar, "4", SchemaFixedUnicodeString},
		{"fixed bit", DatatypeBit, "3", SchemaFixedBitArray},
		{"var bit", DatatypeBit, "*", SchemaVarBitArray},
		{"fixed array", DatatypeInt, "3", SchemaFixedArray},
		{"var array", DatatypeDouble, "*", SchemaVarArray},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := SchemaFromField(tt.dt, tt.arr, "")
			if err != nil {
				t.Fatalf("SchemaFromField failed: %v", err)
			}
			if s.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", s.Kind, tt.want)
			}
		})
	}
}

// TestFloatNullCanonicalNaN checks that a Null cell for a Float/Double
// schema serialises to the canonical NaN bit pattern, the same bytes a
// literal "NaN" text cell produces, and that reading those bytes back
// yields Null.
func TestFloatNullCanonicalNaN(t *testing.T) {
	s := Schema{Kind: SchemaScalar, Elem: DatatypeDouble}

	var fromNull, fromText bytes.Buffer
	if err := s.Serialize(&fromNull, NullValue()); err != nil {
		t.Fatalf("Serialize(Null) failed: %v", err)
	}
	nanValue, err := s.ValueFromStr("NaN")
	if err != nil {
		t.Fatalf("ValueFromStr(\"NaN\") failed: %v", err)
	}
	if err := s.Serialize(&fromText, nanValue); err != nil {
		t.Fatalf("Serialize(NaN) failed: %v", err)
	}
	if !bytes.Equal(fromNull.Bytes(), fromText.Bytes()) {
		t.Errorf("Null and text-NaN serialise differently: %x vs %x", fromNull.Bytes(), fromText.Bytes())
	}

	v, err := s.Deserialize(bytes.NewReader(fromNull.Bytes()))
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if !v.IsNull() {
		t.Errorf("Deserialize(canonical NaN) = %+v, want Null", v)
	}
}

func TestSchemaRoundTripScalar(t *testing.T) {
	tests := []struct {
		name string
		s    Schema
		v    Value
	}{
		{"int", Schema{Kind: SchemaScalar, Elem: DatatypeInt}, Value{Kind: ValueInt, I: -17}},
		{"long", Schema{Kind: SchemaScalar, Elem: DatatypeLong}, Value{Kind: ValueLong, I: 1 << 40}},
		{"double", Schema{Kind: SchemaScalar, Elem: DatatypeDouble}, Value{Kind: ValueDouble, F: 3.14159}},
		{"bool", Schema{Kind: SchemaScalar, Elem: DatatypeBoolean}, Value{Kind: ValueBool, B: true}},
		{"char", Schema{Kind: SchemaScalar, Elem: DatatypeChar}, Value{Kind: ValueCharAscii, S: "Q"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.s.Serialize(&buf, tt.v); err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}
			got, err := tt.s.Deserialize(&buf)
			if err != nil {
				t.Fatalf("Deserialize failed: %v", err)
			}
			if got.Kind != tt.v.Kind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.v.Kind)
			}
		})
	}
}

func TestSchemaRoundTripNullInteger(t *testing.T) {
	sentinel := int64(-1)
	s := Schema{Kind: SchemaScalar, Elem: DatatypeInt, NullSentinel: &sentinel}
	var buf bytes.Buffer
	if err := s.Serialize(&buf, NullValue()); err != nil {
		t.Fatalf("Serialize(Null) failed: %v", err)
	}
	got, err := s.Deserialize(&buf)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if !got.IsNull() {
		t.Errorf("Deserialize(sentinel bytes) = %+v, want Null", got)
	}
}

func TestSchemaRoundTripFixedString(t *testing.T) {
	s := Schema{Kind: SchemaFixedString, Elem: DatatypeChar, N: 5}
	var buf bytes.Buffer
	if err := s.Serialize(&buf, Value{Kind: ValueString, S: "ab"}); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if buf.Len() != 5 {
		t.Fatalf("fixed string wrote %d bytes, want 5", buf.Len())
	}
	got, err := s.Deserialize(&buf)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if got.S != "ab" {
		t.Errorf("Deserialize = %q, want %q", got.S, "ab")
	}
}

func TestValueFromStrEmptyStringIsNullForStringKinds(t *testing.T) {
	kinds := []SchemaKind{SchemaFixedString, SchemaVarString, SchemaFixedUnicodeString, SchemaVarUnicodeString}
	for _, k := range kinds {
		s := Schema{Kind: k, Elem: DatatypeChar, N: 5}
		v, err := s.ValueFromStr("")
		if err != nil {
			t.Fatalf("ValueFromStr(%v, \"\") failed: %v", k, err)
		}
		if !v.IsNull() {
			t.Errorf("ValueFromStr(%v, \"\") = %+v, want Null", k, v)
		}
	}
}

func TestSchemaRoundTripVarArray(t *testing.T) {
	s := Schema{Kind: SchemaVarArray, Elem: DatatypeInt}
	v := Value{Kind: ValueIntArray, IntArr: []int32{1, 2, 3, 4}}
	var buf bytes.Buffer
	if err := s.Serialize(&buf, v); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	got, err := s.Deserialize(&buf)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if len(got.IntArr) != 4 || got.IntArr[2] != 3 {
		t.Errorf("Deserialize = %+v, want [1 2 3 4]", got.IntArr)
	}
}

func TestArrayFromStr(t *testing.T) {
	s := Schema{Kind: SchemaFixedArray, Elem: DatatypeDouble, N: 3}
	v, err := s.ValueFromStr("1.0 2.5 3.0")
	if err != nil {
		t.Fatalf("ValueFromStr failed: %v", err)
	}
	if len(v.F64Arr) != 3 || v.F64Arr[1] != 2.5 {
		t.Errorf("ValueFromStr = %+v", v.F64Arr)
	}
}
