// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// canonical NaN bit patterns: writing Null for a Float/Double schema
// produces a canonical NaN bit-pattern, and TABLEDATA "NaN" text
// serialises to the same bytes.
var (
	canonicalNaN32 = math.Float32frombits(0x7FC00000)
	canonicalNaN64 = math.Float64frombits(0x7FF8000000000000)
)

// SchemaKind discriminates the Schema tagged union.
type SchemaKind int

// SchemaKind variants.
const (
	SchemaScalar SchemaKind = iota
	SchemaFixedString
	SchemaFixedUnicodeString
	SchemaVarString
	SchemaVarUnicodeString
	SchemaFixedArray
	SchemaVarArray
	SchemaFixedBitArray
	SchemaVarBitArray
)

// Schema is the per-column layout descriptor derived from a FIELD/PARAM
// declaration: datatype, arraysize, and an optional null sentinel.
type Schema struct {
	Kind         SchemaKind
	Elem         Datatype // underlying/element datatype
	N            int      // fixed char/element/bit count, where applicable
	NullSentinel *int64   // integer NULL sentinel, from VALUES/@null
}

// ByteLenKind discriminates a fixed wire width from a variable one.
type ByteLenKind int

const (
	ByteLenFixed ByteLenKind = iota
	ByteLenVariable
)

// ByteLen is the result of Schema.ByteLen: either an exact byte count, or,
// for variable-length schemas, the length of the length-prefix (the lower
// bound the bulk row reader can rely on before it decodes the prefix).
type ByteLen struct {
	Kind ByteLenKind
	N    int
}

// SchemaFromField builds a Schema from a FIELD/PARAM's datatype, arraysize
// text, and optional VALUES/@null sentinel text.
func SchemaFromField(dt Datatype, arraysizeText string, nullText string) (Schema, error) {
	shape, err := ParseArraySize(arraysizeText)
	if err != nil {
		return Schema{}, err
	}

	var sentinel *int64
	if nullText != "" && dt.IsInteger() {
		n, err := strconv.ParseInt(strings.TrimSpace(nullText), 10, 64)
		if err != nil {
			return Schema{}, &Error{Kind: KindParseInt, Msg: fmt.Sprintf("invalid VALUES/null %q", nullText)}
		}
		sentinel = &n
	}

	if shape.Scalar {
		return Schema{Kind: SchemaScalar, Elem: dt, NullSentinel: sentinel}, nil
	}

	if shape.Variable {
		switch dt {
		case DatatypeChar:
			return Schema{Kind: SchemaVarString, Elem: dt, N: shape.N}, nil
		case DatatypeUnicodeChar:
			return Schema{Kind: SchemaVarUnicodeString, Elem: dt, N: shape.N}, nil
		case DatatypeBit:
			return Schema{Kind: SchemaVarBitArray, Elem: dt, N: shape.N}, nil
		default:
			return Schema{Kind: SchemaVarArray, Elem: dt, N: shape.N, NullSentinel: sentinel}, nil
		}
	}

	switch dt {
	case DatatypeChar:
		return Schema{Kind: SchemaFixedString, Elem: dt, N: shape.N}, nil
	case DatatypeUnicodeChar:
		return Schema{Kind: SchemaFixedUnicodeString, Elem: dt, N: shape.N}, nil
	case DatatypeBit:
		return Schema{Kind: SchemaFixedBitArray, Elem: dt, N: shape.N}, nil
	default:
		return Schema{Kind: SchemaFixedArray, Elem: dt, N: shape.N, NullSentinel: sentinel}, nil
	}
}

// Describe renders a short human-readable description of s, e.g.
// "double[3]" or "char*", used by the edit CLI and error messages.
func (s Schema) Describe() string {
	switch s.Kind {
	case SchemaScalar:
		return s.Elem.String()
	case SchemaFixedString:
		return fmt.Sprintf("char[%d]", s.N)
	case SchemaFixedUnicodeString:
		return fmt.Sprintf("unicodeChar[%d]", s.N)
	case SchemaVarString:
		return "char*"
	case SchemaVarUnicodeString:
		return "unicodeChar*"
	case SchemaFixedArray:
		return fmt.Sprintf("%s[%d]", s.Elem, s.N)
	case SchemaVarArray:
		return s.Elem.String() + "*"
	case SchemaFixedBitArray:
		return fmt.Sprintf("bit[%d]", s.N)
	case SchemaVarBitArray:
		return "bit*"
	default:
		return "?"
	}
}

// ByteLen computes the wire width of s.
func (s Schema) ByteLen() ByteLen {
	switch s.Kind {
	case SchemaScalar:
		return ByteLen{Kind: ByteLenFixed, N: s.Elem.primitiveByteLen()}
	case SchemaFixedString:
		return ByteLen{Kind: ByteLenFixed, N: s.N}
	case SchemaFixedUnicodeString:
		return ByteLen{Kind: ByteLenFixed, N: s.N * 2}
	case SchemaVarString, SchemaVarUnicodeString, SchemaVarArray, SchemaVarBitArray:
		return ByteLen{Kind: ByteLenVariable, N: 4}
	case SchemaFixedArray:
		return ByteLen{Kind: ByteLenFixed, N: s.N * s.Elem.primitiveByteLen()}
	case SchemaFixedBitArray:
		return ByteLen{Kind: ByteLenFixed, N: (s.N + 7) / 8}
	default:
		return ByteLen{Kind: ByteLenVariable, N: 0}
	}
}

// ValueFromStr parses a TABLEDATA <TD> text body into a Value: the
// empty string is Null for every schema kind, as is an integer string
// equal to the schema's configured sentinel and a float or double scalar
// whose text parses as NaN.
func (s Schema) ValueFromStr(text string) (Value, error) {
	if text == "" {
		return NullValue(), nil
	}

	switch s.Kind {
	case SchemaScalar:
		return s.scalarFromStr(s.Elem, text)
	case SchemaFixedString, SchemaVarString, SchemaFixedUnicodeString, SchemaVarUnicodeString:
		return Value{Kind: ValueString, S: text}, nil
	case SchemaFixedBitArray, SchemaVarBitArray:
		return bitsFromStr(text)
	case SchemaFixedArray, SchemaVarArray:
		return s.arrayFromStr(text)
	default:
		return Value{}, &Error{Kind: KindParseDatatype, Msg: "unknown schema kind"}
	}
}

func (s Schema) scalarFromStr(dt Datatype, text string) (Value, error) {
	switch dt {
	case DatatypeBoolean:
		return boolValueFromStr(text), nil
	case DatatypeBit:
		if text == "" {
			return NullValue(), nil
		}
		return Value{Kind: ValueBool, B: text == "1" || strings.EqualFold(text, "T")}, nil
	case DatatypeUnsignedByte, DatatypeShort, DatatypeInt, DatatypeLong:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return Value{}, &Error{Kind: KindParseInt, Msg: fmt.Sprintf("invalid integer %q", text)}
		}
		if s.NullSentinel != nil && n == *s.NullSentinel {
			return NullValue(), nil
		}
		return Value{Kind: kindForInt(dt), I: n}, nil
	case DatatypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 32)
		if err != nil {
			return Value{}, &Error{Kind: KindParseFloat, Msg: fmt.Sprintf("invalid float %q", text)}
		}
		if math.IsNaN(f) {
			return NullValue(), nil
		}
		return Value{Kind: ValueFloat, F: f}, nil
	case DatatypeDouble:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return Value{}, &Error{Kind: KindParseFloat, Msg: fmt.Sprintf("invalid double %q", text)}
		}
		if math.IsNaN(f) {
			return NullValue(), nil
		}
		return Value{Kind: ValueDouble, F: f}, nil
	case DatatypeChar:
		if text == "" {
			return NullValue(), nil
		}
		return Value{Kind: ValueCharAscii, S: text[:1]}, nil
	case DatatypeUnicodeChar:
		if text == "" {
			return NullValue(), nil
		}
		r := []rune(text)
		return Value{Kind: ValueCharUnicode, S: string(r[0])}, nil
	case DatatypeFloatComplex, DatatypeDoubleComplex:
		c, err := complexFromStr(text)
		if err != nil {
			return Value{}, err
		}
		if dt == DatatypeFloatComplex {
			return Value{Kind: ValueComplexFloat, C: c}, nil
		}
		return Value{Kind: ValueComplexDouble, C: c}, nil
	default:
		return Value{}, &Error{Kind: KindParseDatatype, Msg: "unsupported scalar datatype"}
	}
}

func kindForInt(dt Datatype) ValueKind {
	switch dt {
	case DatatypeUnsignedByte:
		return ValueByte
	case DatatypeShort:
		return ValueShort
	case DatatypeInt:
		return ValueInt
	default:
		return ValueLong
	}
}

func boolValueFromStr(text string) Value {
	switch text {
	case "1", "t", "T", "true", "TRUE", "True":
		return Value{Kind: ValueBool, B: true}
	case "0", "f", "F", "false", "FALSE", "False":
		return Value{Kind: ValueBool, B: false}
	default:
		return NullValue()
	}
}

func complexFromStr(text string) (ComplexValue, error) {
	parts := strings.Fields(text)
	if len(parts) != 2 {
		return ComplexValue{}, &Error{Kind: KindParseFloat, Msg: fmt.Sprintf("invalid complex value %q", text)}
	}
	re, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return ComplexValue{}, &Error{Kind: KindParseFloat, Msg: fmt.Sprintf("invalid complex real part %q", parts[0])}
	}
	im, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return ComplexValue{}, &Error{Kind: KindParseFloat, Msg: fmt.Sprintf("invalid complex imaginary part %q", parts[1])}
	}
	return ComplexValue{Re: re, Im: im}, nil
}

func bitsFromStr(text string) (Value, error) {
	fields := strings.Fields(text)
	bits := make([]bool, len(fields))
	for i, f := range fields {
		switch f {
		case "1":
			bits[i] = true
		case "0":
			bits[i] = false
		default:
			return Value{}, &Error{Kind: KindParseBool, Msg: fmt.Sprintf("invalid bit literal %q", f)}
		}
	}
	return Value{Kind: ValueBitArray, BitBits: bits}, nil
}

func (s Schema) arrayFromStr(text string) (Value, error) {
	fields := strings.Fields(text)
	elemSchema := Schema{Kind: SchemaScalar, Elem: s.Elem, NullSentinel: s.NullSentinel}

	switch s.Elem {
	case DatatypeBoolean:
		arr := make([]bool, len(fields))
		for i, f := range fields {
			arr[i] = boolValueFromStr(f).B
		}
		return Value{Kind: ValueBoolArray, BoolArr: arr}, nil
	case DatatypeUnsignedByte:
		arr := make([]byte, len(fields))
		for i, f := range fields {
			v, err := elemSchema.scalarFromStr(s.Elem, f)
			if err != nil {
				return Value{}, err
			}
			arr[i] = byte(v.I)
		}
		return Value{Kind: ValueByteArray, ByteArr: arr}, nil
	case DatatypeShort:
		arr := make([]int16, len(fields))
		for i, f := range fields {
			v, err := elemSchema.scalarFromStr(s.Elem, f)
			if err != nil {
				return Value{}, err
			}
			arr[i] = int16(v.I)
		}
		return Value{Kind: ValueShortArray, ShortArr: arr}, nil
	case DatatypeInt:
		arr := make([]int32, len(fields))
		for i, f := range fields {
			v, err := elemSchema.scalarFromStr(s.Elem, f)
			if err != nil {
				return Value{}, err
			}
			arr[i] = int32(v.I)
		}
		return Value{Kind: ValueIntArray, IntArr: arr}, nil
	case DatatypeLong:
		arr := make([]int64, len(fields))
		for i, f := range fields {
			v, err := elemSchema.scalarFromStr(s.Elem, f)
			if err != nil {
				return Value{}, err
			}
			arr[i] = v.I
		}
		return Value{Kind: ValueLongArray, LongArr: arr}, nil
	case DatatypeFloat:
		arr := make([]float32, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return Value{}, &Error{Kind: KindParseFloat, Msg: fmt.Sprintf("invalid float %q", f)}
			}
			arr[i] = float32(v)
		}
		return Value{Kind: ValueFloatArray, F32Arr: arr}, nil
	case DatatypeDouble:
		arr := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return Value{}, &Error{Kind: KindParseFloat, Msg: fmt.Sprintf("invalid double %q", f)}
			}
			arr[i] = v
		}
		return Value{Kind: ValueDoubleArray, F64Arr: arr}, nil
	case DatatypeFloatComplex, DatatypeDoubleComplex:
		if len(fields)%2 != 0 {
			return Value{}, &Error{Kind: KindParseFloat, Msg: "odd number of components in complex array"}
		}
		out := make([]ComplexValue, len(fields)/2)
		for i := range out {
			c, err := complexFromStr(fields[2*i] + " " + fields[2*i+1])
			if err != nil {
				return Value{}, err
			}
			out[i] = c
		}
		if s.Elem == DatatypeFloatComplex {
			return Value{Kind: ValueComplexFloatArray, CF32Arr: out}, nil
		}
		return Value{Kind: ValueComplexDoubleArray, CF64Arr: out}, nil
	default:
		return Value{}, &Error{Kind: KindParseDatatype, Msg: "unsupported array element datatype"}
	}
}

// numeric width ranks, used to reject narrowing conversions while
// accepting widening ones.
func numericRank(k ValueKind) int {
	switch k {
	case ValueByte:
		return 1
	case ValueShort:
		return 2
	case ValueInt:
		return 4
	case ValueLong:
		return 8
	case ValueFloat:
		return 4
	case ValueDouble:
		return 8
	default:
		return -1
	}
}

func asInt64(v Value) (int64, bool) {
	switch v.Kind {
	case ValueByte, ValueShort, ValueInt, ValueLong:
		return v.I, true
	default:
		return 0, false
	}
}

func asFloat64(v Value) (float64, bool) {
	switch v.Kind {
	case ValueByte, ValueShort, ValueInt, ValueLong:
		return float64(v.I), true
	case ValueFloat, ValueDouble:
		return v.F, true
	default:
		return 0, false
	}
}

// Serialize writes v's big-endian wire representation for schema s,
// rejecting narrowing conversions while accepting widening ones (e.g.
// Byte into Double).
func (s Schema) Serialize(w io.Writer, v Value) error {
	switch s.Kind {
	case SchemaScalar:
		return s.serializeScalar(w, v)
	case SchemaFixedString:
		return serializeFixedString(w, v, s.N, false)
	case SchemaFixedUnicodeString:
		return serializeFixedString(w, v, s.N, true)
	case SchemaVarString:
		return serializeVarString(w, v, false)
	case SchemaVarUnicodeString:
		return serializeVarString(w, v, true)
	case SchemaFixedBitArray:
		return serializeBits(w, v, s.N, false)
	case SchemaVarBitArray:
		return serializeBits(w, v, 0, true)
	case SchemaFixedArray:
		return s.serializeArray(w, v, false)
	case SchemaVarArray:
		return s.serializeArray(w, v, true)
	default:
		return &Error{Kind: KindParseDatatype, Msg: "unknown schema kind"}
	}
}

func (s Schema) serializeScalar(w io.Writer, v Value) error {
	dt := s.Elem
	switch dt {
	case DatatypeBoolean:
		if v.IsNull() {
			return WriteBoolCell(w, BoolCell{Null: true})
		}
		if v.Kind != ValueBool {
			return typeMismatch(s, v)
		}
		return WriteBoolCell(w, BoolCell{Value: v.B})
	case DatatypeBit:
		if v.IsNull() {
			return WriteU8(w, 0)
		}
		if v.B {
			return WriteU8(w, 1)
		}
		return WriteU8(w, 0)
	case DatatypeUnsignedByte, DatatypeShort, DatatypeInt, DatatypeLong:
		n := int64(0)
		if v.IsNull() {
			if s.NullSentinel != nil {
				n = *s.NullSentinel
			}
		} else {
			i, ok := asInt64(v)
			if !ok {
				return typeMismatch(s, v)
			}
			if numericRank(v.Kind) > dt.primitiveByteLen() {
				return typeMismatch(s, v)
			}
			n = i
		}
		return writeIntWidth(w, dt, n)
	case DatatypeFloat:
		f := canonicalFloat32(v)
		if !v.IsNull() {
			fv, ok := asFloat64(v)
			if !ok {
				return typeMismatch(s, v)
			}
			f = float32(fv)
			if math.IsNaN(fv) {
				f = canonicalNaN32
			}
		}
		return WriteF32(w, f)
	case DatatypeDouble:
		f := canonicalNaN64
		if !v.IsNull() {
			fv, ok := asFloat64(v)
			if !ok {
				return typeMismatch(s, v)
			}
			f = fv
			if math.IsNaN(fv) {
				f = canonicalNaN64
			}
		}
		return WriteF64(w, f)
	case DatatypeChar:
		b := byte(0)
		if !v.IsNull() && v.S != "" {
			b = v.S[0]
		}
		return WriteU8(w, b)
	case DatatypeUnicodeChar:
		text := ""
		if !v.IsNull() {
			text = v.S
		}
		enc, err := EncodeUCS2(text, 2)
		if err != nil {
			return err
		}
		_, err = w.Write(enc)
		return ioErr(err)
	case DatatypeFloatComplex:
		c := v.C
		if v.IsNull() {
			c = ComplexValue{Re: math.NaN(), Im: math.NaN()}
		}
		re, im := float32(c.Re), float32(c.Im)
		if math.IsNaN(c.Re) {
			re = canonicalNaN32
		}
		if math.IsNaN(c.Im) {
			im = canonicalNaN32
		}
		if err := WriteF32(w, re); err != nil {
			return err
		}
		return WriteF32(w, im)
	case DatatypeDoubleComplex:
		c := v.C
		if v.IsNull() {
			c = ComplexValue{Re: canonicalNaN64, Im: canonicalNaN64}
		}
		if math.IsNaN(c.Re) {
			c.Re = canonicalNaN64
		}
		if math.IsNaN(c.Im) {
			c.Im = canonicalNaN64
		}
		if err := WriteF64(w, c.Re); err != nil {
			return err
		}
		return WriteF64(w, c.Im)
	default:
		return typeMismatch(s, v)
	}
}

func canonicalFloat32(v Value) float32 { return canonicalNaN32 }

func writeIntWidth(w io.Writer, dt Datatype, n int64) error {
	switch dt {
	case DatatypeUnsignedByte:
		return WriteU8(w, uint8(n))
	case DatatypeShort:
		return WriteI16(w, int16(n))
	case DatatypeInt:
		return WriteI32(w, int32(n))
	default:
		return WriteI64(w, n)
	}
}

func typeMismatch(s Schema, v Value) error {
	return &Error{Kind: KindCustom, Msg: fmt.Sprintf("type mismatch: cannot serialize value kind %d as %s", v.Kind, s.Describe())}
}

func serializeFixedString(w io.Writer, v Value, n int, unicode bool) error {
	text := ""
	if !v.IsNull() {
		text = v.S
	}
	if unicode {
		enc, err := EncodeUCS2(text, n*2)
		if err != nil {
			return err
		}
		_, err = w.Write(enc)
		return ioErr(err)
	}
	buf := make([]byte, n)
	copy(buf, text)
	_, err := w.Write(buf)
	return ioErr(err)
}

func serializeVarString(w io.Writer, v Value, unicode bool) error {
	text := ""
	if !v.IsNull() {
		text = v.S
	}
	runes := []rune(text)
	if err := WriteI32(w, int32(len(runes))); err != nil {
		return err
	}
	if unicode {
		enc, err := EncodeUCS2(text, len(runes)*2)
		if err != nil {
			return err
		}
		_, err = w.Write(enc)
		return ioErr(err)
	}
	_, err := w.Write([]byte(text))
	return ioErr(err)
}

func serializeBits(w io.Writer, v Value, n int, variable bool) error {
	bits := v.BitBits
	if variable {
		if err := WriteI32(w, int32(len(bits))); err != nil {
			return err
		}
		n = len(bits)
	}
	nbytes := (n + 7) / 8
	buf := make([]byte, nbytes)
	for i, b := range bits {
		if i >= n {
			break
		}
		if b {
			buf[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	_, err := w.Write(buf)
	return ioErr(err)
}

func (s Schema) serializeArray(w io.Writer, v Value, variable bool) error {
	n := arrayLen(v)
	if variable {
		if err := WriteI32(w, int32(n)); err != nil {
			return err
		}
	}
	elemSchema := Schema{Kind: SchemaScalar, Elem: s.Elem, NullSentinel: s.NullSentinel}
	for i := 0; i < n; i++ {
		ev := arrayElem(v, i)
		if err := elemSchema.serializeScalar(w, ev); err != nil {
			return err
		}
	}
	return nil
}

func arrayLen(v Value) int {
	switch v.Kind {
	case ValueBoolArray:
		return len(v.BoolArr)
	case ValueByteArray:
		return len(v.ByteArr)
	case ValueShortArray:
		return len(v.ShortArr)
	case ValueIntArray:
		return len(v.IntArr)
	case ValueLongArray:
		return len(v.LongArr)
	case ValueFloatArray:
		return len(v.F32Arr)
	case ValueDoubleArray:
		return len(v.F64Arr)
	case ValueComplexFloatArray:
		return len(v.CF32Arr)
	case ValueComplexDoubleArray:
		return len(v.CF64Arr)
	default:
		return 0
	}
}

func arrayElem(v Value, i int) Value {
	switch v.Kind {
	case ValueBoolArray:
		return Value{Kind: ValueBool, B: v.BoolArr[i]}
	case ValueByteArray:
		return Value{Kind: ValueByte, I: int64(v.ByteArr[i])}
	case ValueShortArray:
		return Value{Kind: ValueShort, I: int64(v.ShortArr[i])}
	case ValueIntArray:
		return Value{Kind: ValueInt, I: int64(v.IntArr[i])}
	case ValueLongArray:
		return Value{Kind: ValueLong, I: v.LongArr[i]}
	case ValueFloatArray:
		return Value{Kind: ValueFloat, F: float64(v.F32Arr[i])}
	case ValueDoubleArray:
		return Value{Kind: ValueDouble, F: v.F64Arr[i]}
	case ValueComplexFloatArray:
		return Value{Kind: ValueComplexFloat, C: v.CF32Arr[i]}
	case ValueComplexDoubleArray:
		return Value{Kind: ValueComplexDouble, C: v.CF64Arr[i]}
	default:
		return NullValue()
	}
}

// Deserialize reads exactly the number of bytes Schema.ByteLen defines
// (decoding a length prefix first for variable-length schemas) and
// classifies the result, converting integer sentinels and non-finite
// floats to Null.
func (s Schema) Deserialize(r io.Reader) (Value, error) {
	switch s.Kind {
	case SchemaScalar:
		return s.deserializeScalar(r)
	case SchemaFixedString:
		return deserializeFixedString(r, s.N, false)
	case SchemaFixedUnicodeString:
		return deserializeFixedString(r, s.N, true)
	case SchemaVarString:
		return deserializeVarString(r, false)
	case SchemaVarUnicodeString:
		return deserializeVarString(r, true)
	case SchemaFixedBitArray:
		return deserializeBits(r, s.N, false)
	case SchemaVarBitArray:
		return deserializeBits(r, 0, true)
	case SchemaFixedArray:
		return s.deserializeArray(r, s.N, false)
	case SchemaVarArray:
		return s.deserializeArray(r, 0, true)
	default:
		return Value{}, &Error{Kind: KindParseDatatype, Msg: "unknown schema kind"}
	}
}

func (s Schema) deserializeScalar(r io.Reader) (Value, error) {
	switch s.Elem {
	case DatatypeBoolean:
		c, err := ReadBoolCell(r)
		if err != nil {
			return Value{}, err
		}
		if c.Null {
			return NullValue(), nil
		}
		return Value{Kind: ValueBool, B: c.Value}, nil
	case DatatypeBit:
		b, err := ReadU8(r)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueBool, B: b != 0}, nil
	case DatatypeUnsignedByte:
		b, err := ReadU8(r)
		if err != nil {
			return Value{}, err
		}
		return sentinelOrInt(s, ValueByte, int64(b)), nil
	case DatatypeShort:
		n, err := ReadI16(r)
		if err != nil {
			return Value{}, err
		}
		return sentinelOrInt(s, ValueShort, int64(n)), nil
	case DatatypeInt:
		n, err := ReadI32(r)
		if err != nil {
			return Value{}, err
		}
		return sentinelOrInt(s, ValueInt, int64(n)), nil
	case DatatypeLong:
		n, err := ReadI64(r)
		if err != nil {
			return Value{}, err
		}
		return sentinelOrInt(s, ValueLong, n), nil
	case DatatypeFloat:
		f, err := ReadF32(r)
		if err != nil {
			return Value{}, err
		}
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return NullValue(), nil
		}
		return Value{Kind: ValueFloat, F: float64(f)}, nil
	case DatatypeDouble:
		f, err := ReadF64(r)
		if err != nil {
			return Value{}, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return NullValue(), nil
		}
		return Value{Kind: ValueDouble, F: f}, nil
	case DatatypeChar:
		b, err := ReadU8(r)
		if err != nil {
			return Value{}, err
		}
		if b == 0 {
			return NullValue(), nil
		}
		return Value{Kind: ValueCharAscii, S: string(rune(b))}, nil
	case DatatypeUnicodeChar:
		buf := make([]byte, 2)
		if err := readFull(r, buf); err != nil {
			return Value{}, err
		}
		s2, err := DecodeUCS2(buf)
		if err != nil {
			return Value{}, err
		}
		if s2 == "" {
			return NullValue(), nil
		}
		return Value{Kind: ValueCharUnicode, S: s2}, nil
	case DatatypeFloatComplex:
		re, err := ReadF32(r)
		if err != nil {
			return Value{}, err
		}
		im, err := ReadF32(r)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueComplexFloat, C: ComplexValue{Re: float64(re), Im: float64(im)}}, nil
	case DatatypeDoubleComplex:
		re, err := ReadF64(r)
		if err != nil {
			return Value{}, err
		}
		im, err := ReadF64(r)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueComplexDouble, C: ComplexValue{Re: re, Im: im}}, nil
	default:
		return Value{}, &Error{Kind: KindParseDatatype, Msg: "unsupported scalar datatype"}
	}
}

func sentinelOrInt(s Schema, kind ValueKind, n int64) Value {
	if s.NullSentinel != nil && n == *s.NullSentinel {
		return NullValue()
	}
	return Value{Kind: kind, I: n}
}

func deserializeFixedString(r io.Reader, n int, unicode bool) (Value, error) {
	width := n
	if unicode {
		width = n * 2
	}
	buf := make([]byte, width)
	if err := readFull(r, buf); err != nil {
		return Value{}, err
	}
	var text string
	var err error
	if unicode {
		text, err = DecodeUCS2(buf)
	} else {
		text, err = decodeAsciiFixed(buf)
	}
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: ValueString, S: text}, nil
}

func decodeAsciiFixed(buf []byte) (string, error) {
	idx := len(buf)
	for i, b := range buf {
		if b == 0 {
			idx = i
			break
		}
	}
	return string(buf[:idx]), nil
}

func deserializeVarString(r io.Reader, unicode bool) (Value, error) {
	n, err := ReadI32(r)
	if err != nil {
		return Value{}, err
	}
	width := int(n)
	if unicode {
		width *= 2
	}
	buf := make([]byte, width)
	if err := readFull(r, buf); err != nil {
		return Value{}, err
	}
	var text string
	if unicode {
		text, err = DecodeUCS2(buf)
	} else {
		text = string(buf)
	}
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: ValueString, S: text}, nil
}

func deserializeBits(r io.Reader, n int, variable bool) (Value, error) {
	if variable {
		count, err := ReadI32(r)
		if err != nil {
			return Value{}, err
		}
		n = int(count)
	}
	nbytes := (n + 7) / 8
	buf := make([]byte, nbytes)
	if err := readFull(r, buf); err != nil {
		return Value{}, err
	}
	bits := make([]bool, n)
	for i := 0; i < n; i++ {
		bits[i] = buf[i/8]&(1<<(7-uint(i%8))) != 0
	}
	return Value{Kind: ValueBitArray, BitBits: bits}, nil
}

func (s Schema) deserializeArray(r io.Reader, n int, variable bool) (Value, error) {
	if variable {
		count, err := ReadI32(r)
		if err != nil {
			return Value{}, err
		}
		n = int(count)
	}
	elemSchema := Schema{Kind: SchemaScalar, Elem: s.Elem, NullSentinel: s.NullSentinel}

	switch s.Elem {
	case DatatypeBoolean:
		arr := make([]bool, n)
		for i := range arr {
			v, err := elemSchema.deserializeScalar(r)
			if err != nil {
				return Value{}, err
			}
			arr[i] = v.B
		}
		return Value{Kind: ValueBoolArray, BoolArr: arr}, nil
	case DatatypeUnsignedByte:
		arr := make([]byte, n)
		for i := range arr {
			v, err := elemSchema.deserializeScalar(r)
			if err != nil {
				return Value{}, err
			}
			arr[i] = byte(v.I)
		}
		return Value{Kind: ValueByteArray, ByteArr: arr}, nil
	case DatatypeShort:
		arr := make([]int16, n)
		for i := range arr {
			v, err := elemSchema.deserializeScalar(r)
			if err != nil {
				return Value{}, err
			}
			arr[i] = int16(v.I)
		}
		return Value{Kind: ValueShortArray, ShortArr: arr}, nil
	case DatatypeInt:
		arr := make([]int32, n)
		for i := range arr {
			v, err := elemSchema.deserializeScalar(r)
			if err != nil {
				return Value{}, err
			}
			arr[i] = int32(v.I)
		}
		return Value{Kind: ValueIntArray, IntArr: arr}, nil
	case DatatypeLong:
		arr := make([]int64, n)
		for i := range arr {
			v, err := elemSchema.deserializeScalar(r)
			if err != nil {
				return Value{}, err
			}
			arr[i] = v.I
		}
		return Value{Kind: ValueLongArray, LongArr: arr}, nil
	case DatatypeFloat:
		arr := make([]float32, n)
		for i := range arr {
			f, err := ReadF32(r)
			if err != nil {
				return Value{}, err
			}
			arr[i] = f
		}
		return Value{Kind: ValueFloatArray, F32Arr: arr}, nil
	case DatatypeDouble:
		arr := make([]float64, n)
		for i := range arr {
			f, err := ReadF64(r)
			if err != nil {
				return Value{}, err
			}
			arr[i] = f
		}
		return Value{Kind: ValueDoubleArray, F64Arr: arr}, nil
	case DatatypeFloatComplex, DatatypeDoubleComplex:
		arr := make([]ComplexValue, n)
		for i := range arr {
			v, err := elemSchema.deserializeScalar(r)
			if err != nil {
				return Value{}, err
			}
			arr[i] = v.C
		}
		if s.Elem == DatatypeFloatComplex {
			return Value{Kind: ValueComplexFloatArray, CF32Arr: arr}, nil
		}
		return Value{Kind: ValueComplexDoubleArray, CF64Arr: arr}, nil
	default:
		return Value{}, &Error{Kind: KindParseDatatype, Msg: "unsupported array element datatype"}
	}
}
