// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"strings"
	"testing"
)

func TestValueToAny(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want any
	}{
		{"null", NullValue(), nil},
		{"int", Value{Kind: ValueInt, I: 5}, int64(5)},
		{"double", Value{Kind: ValueDouble, F: 1.5}, 1.5},
		{"string", Value{Kind: ValueString, S: "hi"}, "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := valueToAny(tt.v); got != tt.want {
				t.Errorf("valueToAny(%+v) = %v (%T), want %v (%T)", tt.v, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestRowsToMaps(t *testing.T) {
	fields := []*Field{{Name: "a"}, {Name: "b"}}
	rows := []Row{{Value{Kind: ValueInt, I: 1}, NullValue()}}
	maps := RowsToMaps(fields, rows)
	if len(maps) != 1 {
		t.Fatalf("got %d maps, want 1", len(maps))
	}
	if maps[0]["a"] != int64(1) {
		t.Errorf("maps[0][\"a\"] = %v, want 1", maps[0]["a"])
	}
	if maps[0]["b"] != nil {
		t.Errorf("maps[0][\"b\"] = %v, want nil", maps[0]["b"])
	}
}

func TestMarshalUnmarshalJSONRoundTrip(t *testing.T) {
	vt, err := ParseVOTable(strings.NewReader(sampleVOTable))
	if err != nil {
		t.Fatalf("ParseVOTable failed: %v", err)
	}
	data, err := MarshalJSON(vt)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	got, err := UnmarshalJSON(data)
	if err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if got.Version != vt.Version {
		t.Errorf("Version = %q, want %q", got.Version, vt.Version)
	}
	if tbl := FirstTable(got); tbl == nil || tbl.Name != "stars" {
		t.Errorf("round-tripped table = %+v", tbl)
	}
}

func TestMarshalUnmarshalYAMLRoundTrip(t *testing.T) {
	vt, err := ParseVOTable(strings.NewReader(sampleVOTable))
	if err != nil {
		t.Fatalf("ParseVOTable failed: %v", err)
	}
	data, err := MarshalYAML(vt)
	if err != nil {
		t.Fatalf("MarshalYAML failed: %v", err)
	}
	got, err := UnmarshalYAML(data)
	if err != nil {
		t.Fatalf("UnmarshalYAML failed: %v", err)
	}
	if tbl := FirstTable(got); tbl == nil || tbl.Name != "stars" {
		t.Errorf("round-tripped table = %+v", tbl)
	}
}

// TestMarshalTOMLNullAsymmetry covers the documented Open Question
// decision: TOML has no null, so a Null cell marshals to an empty string
// rather than round-tripping as Null.
func TestMarshalTOMLNullAsymmetry(t *testing.T) {
	fields := []*Field{{Name: "a"}}
	rows := []Row{{NullValue()}}
	data, err := RowsToTOML(fields, rows)
	if err != nil {
		t.Fatalf("RowsToTOML failed: %v", err)
	}
	if !strings.Contains(string(data), `a = ""`) {
		t.Errorf("got %q, want a Null cell rendered as an empty TOML string", data)
	}
}

func TestTomlSafeReplacesNilRecursively(t *testing.T) {
	in := map[string]any{"a": nil, "b": []any{nil, 1, "x"}}
	out := tomlSafe(in).(map[string]any)
	if out["a"] != "" {
		t.Errorf("top-level nil = %v, want empty string", out["a"])
	}
	arr := out["b"].([]any)
	if arr[0] != "" {
		t.Errorf("nested nil = %v, want empty string", arr[0])
	}
}

func TestRowsToJSONAndTOML(t *testing.T) {
	fields := []*Field{{Name: "id"}, {Name: "name"}}
	rows := []Row{{Value{Kind: ValueInt, I: 1}, Value{Kind: ValueString, S: "a"}}}

	j, err := RowsToJSON(fields, rows)
	if err != nil {
		t.Fatalf("RowsToJSON failed: %v", err)
	}
	if !strings.Contains(string(j), `"id":1`) {
		t.Errorf("got %q", j)
	}

	tm, err := RowsToTOML(fields, rows)
	if err != nil {
		t.Fatalf("RowsToTOML failed: %v", err)
	}
	if !strings.Contains(string(tm), "id = 1") {
		t.Errorf("got %q", tm)
	}
}

func TestRowsToYAML(t *testing.T) {
	fields := []*Field{{Name: "id"}}
	rows := []Row{{Value{Kind: ValueInt, I: 7}}}
	y, err := RowsToYAML(fields, rows)
	if err != nil {
		t.Fatalf("RowsToYAML failed: %v", err)
	}
	if !strings.Contains(string(y), "id: 7") {
		t.Errorf("got %q", y)
	}
}
