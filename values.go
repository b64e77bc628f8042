// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import "encoding/xml"

// MinMax is the MIN/MAX child of VALUES: a mandatory value plus an
// optional inclusive flag that round-trips even when absent.
type MinMax struct {
	Value     string
	Inclusive string
}

var minMaxKnownAttrs = []string{"value", "inclusive"}

func readMinMax(tag string, start xml.StartElement) (*MinMax, error) {
	raw := collectAttrs(start.Attr)
	known, _, err := takeAttrs(tag, raw, minMaxKnownAttrs, true)
	if err != nil {
		return nil, err
	}
	v, err := requireAttr(tag, known, "value")
	if err != nil {
		return nil, err
	}
	return &MinMax{Value: v, Inclusive: known["inclusive"]}, nil
}

func (m *MinMax) writeTo(w *xmlWriter, tag string) {
	if m == nil {
		return
	}
	w.Open(tag)
	w.Attr("value", m.Value)
	writeAttrIf(w, "inclusive", m.Inclusive)
	w.CloseSelf()
}

// Option is the OPTION element: value plus an optional name, and may
// nest further OPTIONs.
type Option struct {
	Name    string
	Value   string
	Options []*Option
}

var optionKnownAttrs = []string{"name", "value"}

func readOption(dec *xml.Decoder, start xml.StartElement) (*Option, error) {
	raw := collectAttrs(start.Attr)
	known, _, err := takeAttrs("OPTION", raw, optionKnownAttrs, true)
	if err != nil {
		return nil, err
	}
	v, err := requireAttr("OPTION", known, "value")
	if err != nil {
		return nil, err
	}
	opt := &Option{Name: known["name"], Value: v}
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "OPTION" {
				return nil, &Error{Kind: KindUnexpectedEnd, Tag: "OPTION", Attr: t.Name.Local}
			}
			return opt, nil
		case xml.StartElement:
			if t.Name.Local != "OPTION" {
				return nil, &Error{Kind: KindUnexpectedStart, Tag: "OPTION", Attr: t.Name.Local}
			}
			child, err := readOption(dec, t)
			if err != nil {
				return nil, err
			}
			opt.Options = append(opt.Options, child)
		}
	}
}

func (o *Option) writeTo(w *xmlWriter) {
	w.Open("OPTION")
	writeAttrIf(w, "name", o.Name)
	w.Attr("value", o.Value)
	if len(o.Options) == 0 {
		w.CloseSelf()
		return
	}
	w.CloseOpen()
	for _, c := range o.Options {
		c.writeTo(w)
	}
	w.End("OPTION")
}

// Values is the VALUES element: an optional MIN/MAX pair, zero or more
// OPTIONs, and the attributes that configure the integer null sentinel
// consumed by Schema.
type Values struct {
	ID      string
	Type    string
	Null    string
	Ref     string
	Invalid string
	Min     *MinMax
	Max     *MinMax
	Options []*Option
}

var valuesKnownAttrs = []string{"ID", "type", "null", "ref", "invalid"}

func readValues(dec *xml.Decoder, start xml.StartElement) (*Values, error) {
	raw := collectAttrs(start.Attr)
	known, _, err := takeAttrs("VALUES", raw, valuesKnownAttrs, true)
	if err != nil {
		return nil, err
	}
	vals := &Values{
		ID:      known["ID"],
		Type:    known["type"],
		Null:    known["null"],
		Ref:     known["ref"],
		Invalid: known["invalid"],
	}
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "VALUES" {
				return nil, &Error{Kind: KindUnexpectedEnd, Tag: "VALUES", Attr: t.Name.Local}
			}
			return vals, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "MIN":
				mm, err := readMinMax("MIN", t)
				if err != nil {
					return nil, err
				}
				if err := skipElement(dec, t); err != nil {
					return nil, err
				}
				vals.Min = mm
			case "MAX":
				mm, err := readMinMax("MAX", t)
				if err != nil {
					return nil, err
				}
				if err := skipElement(dec, t); err != nil {
					return nil, err
				}
				vals.Max = mm
			case "OPTION":
				opt, err := readOption(dec, t)
				if err != nil {
					return nil, err
				}
				vals.Options = append(vals.Options, opt)
			default:
				return nil, &Error{Kind: KindUnexpectedStart, Tag: "VALUES", Attr: t.Name.Local}
			}
		}
	}
}

func (v *Values) writeTo(w *xmlWriter) {
	if v == nil {
		return
	}
	w.Open("VALUES")
	writeAttrIf(w, "ID", v.ID)
	writeAttrIf(w, "type", v.Type)
	writeAttrIf(w, "null", v.Null)
	writeAttrIf(w, "ref", v.Ref)
	writeAttrIf(w, "invalid", v.Invalid)
	if v.Min == nil && v.Max == nil && len(v.Options) == 0 {
		w.CloseSelf()
		return
	}
	w.CloseOpen()
	v.Min.writeTo(w, "MIN")
	v.Max.writeTo(w, "MAX")
	for _, o := range v.Options {
		o.writeTo(w)
	}
	w.End("VALUES")
}
