// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import "github.com/BurntSushi/toml"

// MarshalTOML projects vt into the shared map form and hands it to
// BurntSushi/toml, per the DOMAIN STACK table's TOML assignment. TOML has
// no null, so any nil produced by treeToMap/RowsToMaps is replaced by the
// empty string first — the one-directional asymmetry recorded as an Open
// Question decision in DESIGN.md.
func MarshalTOML(vt *VOTable) ([]byte, error) {
	m := tomlSafe(treeToMap(vt))
	var buf byteSink
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, (&Error{Kind: KindCustom, Msg: "toml marshal failed"}).WithCause(err)
	}
	return buf.b, nil
}

// UnmarshalTOML is the inverse of MarshalTOML. Any cell that was Null
// before serialisation round-trips as the empty string, not Null.
func UnmarshalTOML(data []byte) (*VOTable, error) {
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, (&Error{Kind: KindCustom, Msg: "toml unmarshal failed"}).WithCause(err)
	}
	vt := &VOTable{}
	if err := mapToTree(m, vt); err != nil {
		return nil, err
	}
	return vt, nil
}

// RowsToTOML renders rows as a TOML array of tables keyed by field name.
func RowsToTOML(fields []*Field, rows []Row) ([]byte, error) {
	rowsAny := make([]any, len(rows))
	for i, m := range RowsToMaps(fields, rows) {
		rowsAny[i] = m
	}
	wrapped := map[string]any{"row": tomlSafe(rowsAny)}
	var buf byteSink
	if err := toml.NewEncoder(&buf).Encode(wrapped); err != nil {
		return nil, (&Error{Kind: KindCustom, Msg: "toml marshal failed"}).WithCause(err)
	}
	return buf.b, nil
}

// tomlSafe recursively replaces nil with the empty string, since TOML has
// no null/absent-value representation for a present key.
func tomlSafe(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = tomlSafe(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = tomlSafe(val)
		}
		return out
	default:
		return x
	}
}
