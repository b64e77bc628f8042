// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import "encoding/json"

// MarshalJSON projects vt into the shared map form (treeToMap) and hands
// it to stdlib encoding/json; every other façade below pulls in a
// third-party library for its format instead.
func MarshalJSON(vt *VOTable) ([]byte, error) {
	b, err := json.Marshal(treeToMap(vt))
	if err != nil {
		return nil, (&Error{Kind: KindCustom, Msg: "json marshal failed"}).WithCause(err)
	}
	return b, nil
}

// UnmarshalJSON is the inverse of MarshalJSON.
func UnmarshalJSON(data []byte) (*VOTable, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, (&Error{Kind: KindCustom, Msg: "json unmarshal failed"}).WithCause(err)
	}
	vt := &VOTable{}
	if err := mapToTree(m, vt); err != nil {
		return nil, err
	}
	return vt, nil
}

// RowsToJSON renders rows as a JSON array of objects keyed by field name.
func RowsToJSON(fields []*Field, rows []Row) ([]byte, error) {
	b, err := json.Marshal(RowsToMaps(fields, rows))
	if err != nil {
		return nil, (&Error{Kind: KindCustom, Msg: "json marshal failed"}).WithCause(err)
	}
	return b, nil
}
