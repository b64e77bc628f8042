// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"fmt"
	"strings"
)

// VID is a synthetic path string addressing an element by position
// within its parent hierarchy: one segment per element from the root
// down, joined by "/", each a single-character tag code followed by the
// element's 1-based occurrence counter among same-tag siblings.
type VID string

// tagCodes maps each addressable tag name to the single-character code
// used in its VID segment.
var tagCodes = map[string]byte{
	"VOTABLE":     'V',
	"RESOURCE":    'R',
	"TABLE":       'T',
	"FIELD":       'F',
	"PARAM":       'P',
	"GROUP":       'G',
	"COOSYS":      'C',
	"TIMESYS":     'Y',
	"DATA":        'A',
	"LINK":        'L',
	"INFO":        'I',
	"DESCRIPTION": 'D',
	"FIELDref":    'f',
	"PARAMref":    'p',
}

// vidBuilder accumulates VID segments during a traversal descent.
type vidBuilder struct {
	segments []string
	counters []map[string]int
}

func newVIDBuilder() *vidBuilder {
	return &vidBuilder{counters: []map[string]int{{}}}
}

// push enters a new child of the given tag, returning the VID for this
// element and a function that pops back out when traversal of its
// subtree is complete.
func (b *vidBuilder) push(tag string) (VID, func()) {
	top := b.counters[len(b.counters)-1]
	top[tag]++
	n := top[tag]
	code := tagCodes[tag]
	if code == 0 {
		code = '?'
	}
	seg := fmt.Sprintf("%c%d", code, n)
	b.segments = append(b.segments, seg)
	b.counters = append(b.counters, map[string]int{})
	vid := VID(strings.Join(b.segments, "/"))
	return vid, func() {
		b.segments = b.segments[:len(b.segments)-1]
		b.counters = b.counters[:len(b.counters)-1]
	}
}
