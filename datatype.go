// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"fmt"
	"strconv"
	"strings"
)

// Datatype is the wire-level scalar type of a FIELD or PARAM: one of the
// twelve VOTable datatype names.
type Datatype int

// Datatype variants.
const (
	DatatypeBoolean Datatype = iota
	DatatypeBit
	DatatypeUnsignedByte
	DatatypeShort
	DatatypeInt
	DatatypeLong
	DatatypeChar
	DatatypeUnicodeChar
	DatatypeFloat
	DatatypeDouble
	DatatypeFloatComplex
	DatatypeDoubleComplex
)

// wire labels for the @datatype attribute.
var datatypeLabels = [...]string{
	DatatypeBoolean:       "boolean",
	DatatypeBit:           "bit",
	DatatypeUnsignedByte:  "unsignedByte",
	DatatypeShort:         "short",
	DatatypeInt:           "int",
	DatatypeLong:          "long",
	DatatypeChar:          "char",
	DatatypeUnicodeChar:   "unicodeChar",
	DatatypeFloat:         "float",
	DatatypeDouble:        "double",
	DatatypeFloatComplex:  "floatComplex",
	DatatypeDoubleComplex: "doubleComplex",
}

var datatypeByLabel = func() map[string]Datatype {
	m := make(map[string]Datatype, len(datatypeLabels))
	for dt, label := range datatypeLabels {
		m[label] = Datatype(dt)
	}
	return m
}()

// String returns the wire label for dt.
func (dt Datatype) String() string {
	if int(dt) < 0 || int(dt) >= len(datatypeLabels) {
		return "unknown"
	}
	return datatypeLabels[dt]
}

// ParseDatatype looks up the Datatype for a wire label (the FIELD/PARAM
// @datatype attribute value). Lookup is case-sensitive: the wire labels
// are fixed strings, not a case-insensitive enum like TIMESYS's
// @timescale.
func ParseDatatype(s string) (Datatype, error) {
	dt, ok := datatypeByLabel[s]
	if !ok {
		return 0, &Error{Kind: KindParseDatatype, Msg: fmt.Sprintf("unrecognised datatype %q", s)}
	}
	return dt, nil
}

// IsNumeric reports whether dt is an integer or floating scalar (excludes
// boolean, bit, char, unicodeChar and the complex pairs).
func (dt Datatype) IsNumeric() bool {
	switch dt {
	case DatatypeUnsignedByte, DatatypeShort, DatatypeInt, DatatypeLong, DatatypeFloat, DatatypeDouble:
		return true
	default:
		return false
	}
}

// IsComplex reports whether dt serialises as a pair of floats/doubles.
func (dt Datatype) IsComplex() bool {
	return dt == DatatypeFloatComplex || dt == DatatypeDoubleComplex
}

// IsInteger reports whether dt is one of the sentinel-nullable integer
// scalar types.
func (dt Datatype) IsInteger() bool {
	switch dt {
	case DatatypeUnsignedByte, DatatypeShort, DatatypeInt, DatatypeLong:
		return true
	default:
		return false
	}
}

// primitiveByteLen returns the fixed wire width of one scalar instance of
// dt, or 0 for bit, whose packed width depends on arraysize and is
// computed elsewhere.
func (dt Datatype) primitiveByteLen() int {
	switch dt {
	case DatatypeBoolean, DatatypeUnsignedByte, DatatypeChar:
		return 1
	case DatatypeShort, DatatypeUnicodeChar:
		return 2
	case DatatypeInt, DatatypeFloat:
		return 4
	case DatatypeLong, DatatypeDouble, DatatypeFloatComplex:
		return 8
	case DatatypeDoubleComplex:
		return 16
	case DatatypeBit:
		return 0
	default:
		return 0
	}
}

// ArraySizeShape is the parsed shape of a FIELD/PARAM @arraysize attribute:
// absent (scalar), "N" (fixed), "N*" (variable with upper bound N), "*"
// (variable unbounded), or "NxMxK..." (multi-dimensional, element count is
// the product).
type ArraySizeShape struct {
	// Scalar is true when arraysize was absent.
	Scalar bool
	// Variable is true when the arraysize carries a trailing "*".
	Variable bool
	// N is the element count: for fixed shapes the exact count, for
	// variable shapes the declared upper bound (0 if "*" is unbounded).
	N int
}

// ParseArraySize parses the @arraysize attribute text into its shape.
// Non-integer dimensions are an error; all dimensions are multiplied
// together for the element count.
func ParseArraySize(text string) (ArraySizeShape, error) {
	if text == "" {
		return ArraySizeShape{Scalar: true}, nil
	}

	variable := strings.HasSuffix(text, "*")
	body := text
	if variable {
		body = text[:len(text)-1]
	}

	if body == "" {
		// "*" — unbounded variable-length.
		return ArraySizeShape{Variable: true}, nil
	}

	dims := strings.Split(body, "x")
	product := 1
	for _, d := range dims {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 {
			return ArraySizeShape{}, &Error{Kind: KindParseInt, Msg: fmt.Sprintf("invalid arraysize dimension %q in %q", d, text)}
		}
		product *= n
	}

	return ArraySizeShape{Variable: variable, N: product}, nil
}
