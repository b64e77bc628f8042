// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package healpix

import "testing"

func TestFindLonColumnExplicitName(t *testing.T) {
	fields := []FieldInfo{
		{Name: "x", IsFloat: true},
		{Name: "lon_deg", IsFloat: true},
	}
	i, ok := FindLonColumn(fields, "lon_deg")
	if !ok || i != 1 {
		t.Fatalf("FindLonColumn(explicit) = (%d, %v), want (1, true)", i, ok)
	}
}

func TestFindLonColumnExplicitNameRejectsNonFloat(t *testing.T) {
	fields := []FieldInfo{{Name: "ra", IsFloat: false}}
	if _, ok := FindLonColumn(fields, "ra"); ok {
		t.Error("FindLonColumn matched a non-float column by explicit name")
	}
}

func TestFindLonColumnMainUCD(t *testing.T) {
	fields := []FieldInfo{
		{Name: "a", IsFloat: true, UCD: "pos.eq.ra"},
		{Name: "b", IsFloat: true, UCD: "pos.eq.ra;meta.main"},
	}
	i, ok := FindLonColumn(fields, "")
	if !ok || i != 1 {
		t.Fatalf("FindLonColumn(ucd) = (%d, %v), want (1, true) — meta.main takes priority", i, ok)
	}
}

func TestFindLonColumnBareUCD(t *testing.T) {
	fields := []FieldInfo{{Name: "a", IsFloat: true, UCD: "pos.eq.ra"}}
	i, ok := FindLonColumn(fields, "")
	if !ok || i != 0 {
		t.Fatalf("FindLonColumn(bare ucd) = (%d, %v), want (0, true)", i, ok)
	}
}

func TestFindLonColumnNamePrefix(t *testing.T) {
	fields := []FieldInfo{
		{Name: "mag", IsFloat: true},
		{Name: "RAJ2000", IsFloat: true},
	}
	i, ok := FindLonColumn(fields, "")
	if !ok || i != 1 {
		t.Fatalf("FindLonColumn(prefix) = (%d, %v), want (1, true)", i, ok)
	}
}

func TestFindLatColumnNamePrefix(t *testing.T) {
	fields := []FieldInfo{
		{Name: "mag", IsFloat: true},
		{Name: "DEJ2000", IsFloat: true},
	}
	i, ok := FindLatColumn(fields, "")
	if !ok || i != 1 {
		t.Fatalf("FindLatColumn(prefix) = (%d, %v), want (1, true)", i, ok)
	}
}

func TestFindLonColumnNoMatch(t *testing.T) {
	fields := []FieldInfo{{Name: "mag", IsFloat: true}, {Name: "id", IsFloat: false}}
	if _, ok := FindLonColumn(fields, ""); ok {
		t.Error("FindLonColumn matched when no column qualifies")
	}
}

func TestMatchUCDSkipsNonFloatColumns(t *testing.T) {
	fields := []FieldInfo{{Name: "ra_str", IsFloat: false, UCD: "pos.eq.ra;meta.main"}}
	if _, ok := FindLonColumn(fields, ""); ok {
		t.Error("FindLonColumn matched a non-float column via UCD")
	}
}
