// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import "github.com/goccy/go-yaml"

// MarshalYAML projects vt into the shared map form and hands it to
// goccy/go-yaml, per the DOMAIN STACK table's YAML assignment.
func MarshalYAML(vt *VOTable) ([]byte, error) {
	b, err := yaml.Marshal(treeToMap(vt))
	if err != nil {
		return nil, (&Error{Kind: KindCustom, Msg: "yaml marshal failed"}).WithCause(err)
	}
	return b, nil
}

// UnmarshalYAML is the inverse of MarshalYAML.
func UnmarshalYAML(data []byte) (*VOTable, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, (&Error{Kind: KindCustom, Msg: "yaml unmarshal failed"}).WithCause(err)
	}
	vt := &VOTable{}
	if err := mapToTree(m, vt); err != nil {
		return nil, err
	}
	return vt, nil
}

// RowsToYAML renders rows as a YAML sequence of mappings keyed by field name.
func RowsToYAML(fields []*Field, rows []Row) ([]byte, error) {
	b, err := yaml.Marshal(RowsToMaps(fields, rows))
	if err != nil {
		return nil, (&Error{Kind: KindCustom, Msg: "yaml marshal failed"}).WithCause(err)
	}
	return b, nil
}
