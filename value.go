// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind discriminates the Value tagged union.
type ValueKind int

// ValueKind variants.
const (
	ValueNull ValueKind = iota
	ValueBool
	ValueByte
	ValueShort
	ValueInt
	ValueLong
	ValueFloat
	ValueDouble
	ValueComplexFloat
	ValueComplexDouble
	ValueCharAscii
	ValueCharUnicode
	ValueString
	ValueBitArray
	ValueBoolArray
	ValueByteArray
	ValueShortArray
	ValueIntArray
	ValueLongArray
	ValueFloatArray
	ValueDoubleArray
	ValueComplexFloatArray
	ValueComplexDoubleArray
)

// ComplexValue is a float/double pair, VOTable's floatComplex/doubleComplex.
type ComplexValue struct {
	Re, Im float64
}

// Value is the flat tagged union mirroring Schema: every VOTable scalar or
// array cell value.
type Value struct {
	Kind ValueKind

	B        bool
	I        int64
	F        float64
	C        ComplexValue
	S        string
	BitBits  []bool
	BoolArr  []bool
	ByteArr  []byte
	ShortArr []int16
	IntArr   []int32
	LongArr  []int64
	F32Arr   []float32
	F64Arr   []float64
	CF32Arr  []ComplexValue
	CF64Arr  []ComplexValue
}

// IsNull reports whether v is the Null variant.
func (v Value) IsNull() bool { return v.Kind == ValueNull }

// NullValue constructs the Null variant.
func NullValue() Value { return Value{Kind: ValueNull} }

// Display renders v in the textual form used by TABLEDATA and CSV:
// scalars in natural decimal form, booleans as true/false, bit arrays
// and other arrays space-separated, strings emitted verbatim.
func (v Value) Display() string {
	switch v.Kind {
	case ValueNull:
		return ""
	case ValueBool:
		return strconv.FormatBool(v.B)
	case ValueByte, ValueShort, ValueInt, ValueLong:
		return strconv.FormatInt(v.I, 10)
	case ValueFloat:
		return formatFloat(v.F, 32)
	case ValueDouble:
		return formatFloat(v.F, 64)
	case ValueComplexFloat:
		return formatComplex(v.C, 32)
	case ValueComplexDouble:
		return formatComplex(v.C, 64)
	case ValueCharAscii, ValueCharUnicode, ValueString:
		return v.S
	case ValueBitArray:
		return displayBits(v.BitBits)
	case ValueBoolArray:
		return displayJoin(len(v.BoolArr), func(i int) string { return strconv.FormatBool(v.BoolArr[i]) })
	case ValueByteArray:
		return displayJoin(len(v.ByteArr), func(i int) string { return strconv.FormatUint(uint64(v.ByteArr[i]), 10) })
	case ValueShortArray:
		return displayJoin(len(v.ShortArr), func(i int) string { return strconv.FormatInt(int64(v.ShortArr[i]), 10) })
	case ValueIntArray:
		return displayJoin(len(v.IntArr), func(i int) string { return strconv.FormatInt(int64(v.IntArr[i]), 10) })
	case ValueLongArray:
		return displayJoin(len(v.LongArr), func(i int) string { return strconv.FormatInt(v.LongArr[i], 10) })
	case ValueFloatArray:
		return displayJoin(len(v.F32Arr), func(i int) string { return formatFloat(float64(v.F32Arr[i]), 32) })
	case ValueDoubleArray:
		return displayJoin(len(v.F64Arr), func(i int) string { return formatFloat(v.F64Arr[i], 64) })
	case ValueComplexFloatArray:
		return displayJoin(len(v.CF32Arr), func(i int) string { return formatComplex(v.CF32Arr[i], 32) })
	case ValueComplexDoubleArray:
		return displayJoin(len(v.CF64Arr), func(i int) string { return formatComplex(v.CF64Arr[i], 64) })
	default:
		return ""
	}
}

func displayJoin(n int, at func(int) string) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = at(i)
	}
	return strings.Join(parts, " ")
}

func displayBits(bits []bool) string {
	parts := make([]string, len(bits))
	for i, b := range bits {
		if b {
			parts[i] = "1"
		} else {
			parts[i] = "0"
		}
	}
	return strings.Join(parts, " ")
}

func formatFloat(f float64, bitSize int) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "+Inf"
	}
	if math.IsInf(f, -1) {
		return "-Inf"
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}

func formatComplex(c ComplexValue, bitSize int) string {
	return fmt.Sprintf("%s %s", formatFloat(c.Re, bitSize), formatFloat(c.Im, bitSize))
}
