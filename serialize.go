// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"reflect"
)

// enumDecoders maps an enum type (Datatype, CooSysFrame, Timescale,
// RefPosition) to the parser that turns its serialised string form back
// into the underlying int, so treeToMap/mapToTree can project every enum
// field as text (readable JSON/YAML/TOML) rather than a bare integer.
var enumDecoders = map[reflect.Type]func(string) (int64, error){
	reflect.TypeOf(Datatype(0)): func(s string) (int64, error) {
		d, err := ParseDatatype(s)
		return int64(d), err
	},
	reflect.TypeOf(CooSysFrame(0)): func(s string) (int64, error) {
		f, err := parseCooSysFrame(s)
		return int64(f), err
	},
	reflect.TypeOf(Timescale(0)): func(s string) (int64, error) {
		t, err := parseTimescale(s)
		return int64(t), err
	},
	reflect.TypeOf(RefPosition(0)): func(s string) (int64, error) {
		p, err := parseRefPosition(s)
		return int64(p), err
	},
}

// treeToMap projects any tag struct (VOTable, Resource, Table, Field, ...)
// into a map[string]any/[]any/scalar tree that the JSON/YAML/TOML façades
// can marshal directly. A struct's `Extra` field (the lax-tag catch-all
// attribute map every tag type carries) is inlined into
// the same map rather than nested under an "Extra" key, so a round trip
// through any of the three formats reproduces the original attribute set
// without a wrapper level. Nil pointers and nil slices/maps are omitted
// entirely rather than emitted as null, keeping output compact; the one
// place "null" matters is individual data cells (see valueToAny), not the
// metadata tree itself.
func treeToMap(v any) any {
	return encodeValue(reflect.ValueOf(v))
}

// mapToTree is the inverse of treeToMap: given the parsed form of a
// previously-serialised map, populate the struct pointed to by out.
func mapToTree(m any, out any) error {
	return decodeValue(m, reflect.ValueOf(out).Elem())
}

func encodeValue(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return encodeValue(v.Elem())
	case reflect.Struct:
		return encodeStruct(v)
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			// []byte: keep as a byte slice: each façade's own marshaler
			// decides the on-wire form (base64 for JSON/YAML; BurntSushi
			// toml's encoder accepts []byte directly).
			return v.Bytes()
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = encodeValue(v.Index(i))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = encodeValue(iter.Value())
		}
		return out
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if dec, ok := enumDecoders[v.Type()]; ok {
			_ = dec
			return v.Interface().(interface{ String() string }).String()
		}
		return v.Int()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	default:
		return v.Interface()
	}
}

func encodeStruct(v reflect.Value) map[string]any {
	out := make(map[string]any)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		fv := v.Field(i)
		if f.Name == "Extra" && fv.Kind() == reflect.Map {
			if fv.IsNil() {
				continue
			}
			iter := fv.MapRange()
			for iter.Next() {
				out[iter.Key().String()] = iter.Value().String()
			}
			continue
		}
		enc := encodeValue(fv)
		if enc == nil {
			continue
		}
		out[f.Name] = enc
	}
	return out
}

func decodeValue(data any, v reflect.Value) error {
	if data == nil {
		return nil
	}
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return decodeValue(data, v.Elem())
	case reflect.Struct:
		m, ok := toStringMap(data)
		if !ok {
			return &Error{Kind: KindCustom, Msg: "expected object decoding struct"}
		}
		return decodeStruct(m, v)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b, ok := data.([]byte)
			if !ok {
				if s, ok2 := data.(string); ok2 {
					v.SetBytes([]byte(s))
					return nil
				}
				return &Error{Kind: KindCustom, Msg: "expected bytes"}
			}
			v.SetBytes(b)
			return nil
		}
		arr, ok := data.([]any)
		if !ok {
			return &Error{Kind: KindCustom, Msg: "expected array"}
		}
		sl := reflect.MakeSlice(v.Type(), len(arr), len(arr))
		for i, elem := range arr {
			if err := decodeValue(elem, sl.Index(i)); err != nil {
				return err
			}
		}
		v.Set(sl)
		return nil
	case reflect.Map:
		m, ok := toStringMap(data)
		if !ok {
			return &Error{Kind: KindCustom, Msg: "expected object decoding map"}
		}
		out := reflect.MakeMapWithSize(v.Type(), len(m))
		for k, val := range m {
			s, ok := val.(string)
			if !ok {
				continue
			}
			out.SetMapIndex(reflect.ValueOf(k), reflect.ValueOf(s))
		}
		v.Set(out)
		return nil
	case reflect.String:
		s, ok := data.(string)
		if !ok {
			return &Error{Kind: KindCustom, Msg: "expected string"}
		}
		v.SetString(s)
		return nil
	case reflect.Bool:
		b, ok := data.(bool)
		if !ok {
			return &Error{Kind: KindCustom, Msg: "expected bool"}
		}
		v.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if dec, ok := enumDecoders[v.Type()]; ok {
			s, ok := data.(string)
			if !ok {
				return &Error{Kind: KindCustom, Msg: "expected enum string"}
			}
			n, err := dec(s)
			if err != nil {
				return err
			}
			v.SetInt(n)
			return nil
		}
		n, err := toInt64(data)
		if err != nil {
			return err
		}
		v.SetInt(n)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(data)
		if err != nil {
			return err
		}
		v.SetFloat(f)
		return nil
	default:
		return nil
	}
}

func decodeStruct(m map[string]any, v reflect.Value) error {
	t := v.Type()
	used := make(map[string]bool, t.NumField())
	var extraField reflect.Value
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		if f.Name == "Extra" {
			extraField = v.Field(i)
			continue
		}
		raw, ok := m[f.Name]
		used[f.Name] = true
		if !ok || raw == nil {
			continue
		}
		if err := decodeValue(raw, v.Field(i)); err != nil {
			return err
		}
	}
	if extraField.IsValid() {
		extra := make(map[string]string)
		for k, val := range m {
			if used[k] {
				continue
			}
			s, ok := val.(string)
			if !ok {
				continue
			}
			extra[k] = s
		}
		if len(extra) > 0 {
			extraField.Set(reflect.ValueOf(extra))
		}
	}
	return nil
}

func toStringMap(data any) (map[string]any, bool) {
	switch m := data.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = v
		}
		return out, true
	default:
		return nil, false
	}
}

func toInt64(data any) (int64, error) {
	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), nil
	default:
		return 0, &Error{Kind: KindCustom, Msg: "expected number"}
	}
}

func toFloat64(data any) (float64, error) {
	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	default:
		return 0, &Error{Kind: KindCustom, Msg: "expected number"}
	}
}

// valueToAny projects one cell Value the same way treeToMap projects a tag
// struct: Null becomes nil (JSON/YAML render it as `null`; the TOML façade
// substitutes the empty string instead, since TOML has no null — see the
// decision recorded in DESIGN.md), arrays become
// []any of their element's Go value, and complex numbers become a
// {"re":...,"im":...} pair since none of the three formats has a native
// complex type.
func valueToAny(v Value) any {
	switch v.Kind {
	case ValueNull:
		return nil
	case ValueBool:
		return v.B
	case ValueByte, ValueShort, ValueInt, ValueLong:
		return v.I
	case ValueFloat, ValueDouble:
		return v.F
	case ValueComplexFloat, ValueComplexDouble:
		return map[string]any{"re": v.C.Re, "im": v.C.Im}
	case ValueCharAscii, ValueCharUnicode, ValueString:
		return v.S
	case ValueBitArray:
		out := make([]any, len(v.BitBits))
		for i, b := range v.BitBits {
			out[i] = b
		}
		return out
	case ValueBoolArray:
		out := make([]any, len(v.BoolArr))
		for i, b := range v.BoolArr {
			out[i] = b
		}
		return out
	case ValueByteArray:
		out := make([]any, len(v.ByteArr))
		for i, b := range v.ByteArr {
			out[i] = b
		}
		return out
	case ValueShortArray:
		out := make([]any, len(v.ShortArr))
		for i, x := range v.ShortArr {
			out[i] = x
		}
		return out
	case ValueIntArray:
		out := make([]any, len(v.IntArr))
		for i, x := range v.IntArr {
			out[i] = x
		}
		return out
	case ValueLongArray:
		out := make([]any, len(v.LongArr))
		for i, x := range v.LongArr {
			out[i] = x
		}
		return out
	case ValueFloatArray:
		out := make([]any, len(v.F32Arr))
		for i, x := range v.F32Arr {
			out[i] = x
		}
		return out
	case ValueDoubleArray:
		out := make([]any, len(v.F64Arr))
		for i, x := range v.F64Arr {
			out[i] = x
		}
		return out
	case ValueComplexFloatArray:
		out := make([]any, len(v.CF32Arr))
		for i, c := range v.CF32Arr {
			out[i] = map[string]any{"re": c.Re, "im": c.Im}
		}
		return out
	case ValueComplexDoubleArray:
		out := make([]any, len(v.CF64Arr))
		for i, c := range v.CF64Arr {
			out[i] = map[string]any{"re": c.Re, "im": c.Im}
		}
		return out
	default:
		return nil
	}
}

// RowsToMaps projects rows into []map[string]any keyed by FIELD name, the
// shared intermediate form every serializer façade's row-output mode
// builds on.
func RowsToMaps(fields []*Field, rows []Row) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		m := make(map[string]any, len(row))
		for j, v := range row {
			name := fields[j].Name
			if name == "" {
				name = fields[j].ID
			}
			m[name] = valueToAny(v)
		}
		out[i] = m
	}
	return out
}
