// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"math"
	"testing"
)

func TestValueDisplay(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", NullValue(), ""},
		{"bool", Value{Kind: ValueBool, B: true}, "true"},
		{"int", Value{Kind: ValueInt, I: -42}, "-42"},
		{"float nan", Value{Kind: ValueFloat, F: float64(math.Float32frombits(0x7FC00000))}, "NaN"},
		{"double", Value{Kind: ValueDouble, F: 1.5}, "1.5"},
		{"string", Value{Kind: ValueString, S: "hi"}, "hi"},
		{"intarray", Value{Kind: ValueIntArray, IntArr: []int32{1, 2, 3}}, "1 2 3"},
		{"bits", Value{Kind: ValueBitArray, BitBits: []bool{true, false, true}}, "1 0 1"},
		{"complexf", Value{Kind: ValueComplexFloat, C: ComplexValue{Re: 1, Im: 2}}, "1 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Display(); got != tt.want {
				t.Errorf("Display() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueIsNull(t *testing.T) {
	if !NullValue().IsNull() {
		t.Error("NullValue().IsNull() = false, want true")
	}
	if (Value{Kind: ValueInt}).IsNull() {
		t.Error("non-null Value reports IsNull() = true")
	}
}

func TestDisplayInfinities(t *testing.T) {
	if got := (Value{Kind: ValueDouble, F: math.Inf(1)}).Display(); got != "+Inf" {
		t.Errorf("+Inf Display() = %q", got)
	}
	if got := (Value{Kind: ValueDouble, F: math.Inf(-1)}).Display(); got != "-Inf" {
		t.Errorf("-Inf Display() = %q", got)
	}
}
