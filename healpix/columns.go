// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package healpix

import "strings"

// FieldInfo is the minimal per-column description hpxsort needs to find
// the longitude/latitude pair, independent of the votable package's own
// Field type so this package stays free of an import cycle with it.
type FieldInfo struct {
	Name     string
	UCD      string
	IsFloat  bool // true for a FLOAT or DOUBLE column
}

// FindLonColumn locates the longitude column among fields, following a
// fixed lookup precedence: an explicit column name (must be float-typed)
// takes priority, then a UCD match against the "meta.main" position UCD,
// then a bare position UCD, then a name prefix.
func FindLonColumn(fields []FieldInfo, explicitName string) (int, bool) {
	return findPositionalColumn(fields, explicitName,
		[]string{"pos.eq.ra;meta.main"}, []string{"pos.eq.ra"}, "ra")
}

// FindLatColumn is FindLonColumn's latitude counterpart.
func FindLatColumn(fields []FieldInfo, explicitName string) (int, bool) {
	return findPositionalColumn(fields, explicitName,
		[]string{"pos.eq.dec;meta.main"}, []string{"pos.eq.de"}, "de")
}

func findPositionalColumn(fields []FieldInfo, explicitName string, mainUCDs, bareUCDs []string, namePrefix string) (int, bool) {
	if explicitName != "" {
		for i, f := range fields {
			if f.Name == explicitName && f.IsFloat {
				return i, true
			}
		}
		return -1, false
	}
	if i, ok := matchUCD(fields, mainUCDs); ok {
		return i, true
	}
	if i, ok := matchUCD(fields, bareUCDs); ok {
		return i, true
	}
	for i, f := range fields {
		if f.IsFloat && strings.HasPrefix(strings.ToLower(f.Name), namePrefix) {
			return i, true
		}
	}
	return -1, false
}

func matchUCD(fields []FieldInfo, ucds []string) (int, bool) {
	for i, f := range fields {
		if !f.IsFloat {
			continue
		}
		for _, want := range ucds {
			if strings.EqualFold(f.UCD, want) {
				return i, true
			}
		}
	}
	return -1, false
}
