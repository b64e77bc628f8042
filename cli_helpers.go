// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

// FirstTable walks vt's resource tree depth-first and returns the first
// TABLE it finds, for CLI tools that stream-convert a single-table
// VOTable.
func FirstTable(vt *VOTable) *Table {
	for _, r := range vt.Resources {
		if t := firstTableInResource(r); t != nil {
			return t
		}
	}
	return nil
}

func firstTableInResource(r *Resource) *Table {
	for _, c := range r.Children {
		if c.Table != nil {
			return c.Table
		}
		if c.Resource != nil {
			if t := firstTableInResource(c.Resource); t != nil {
				return t
			}
		}
	}
	return nil
}
