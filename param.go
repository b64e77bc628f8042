// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import "encoding/xml"

// Param is the PARAM element: like FIELD but also mandates value.
type Param struct {
	ID          string
	Name        string
	Datatype    Datatype
	Value       string
	Unit        string
	Precision   string
	Width       string
	Arraysize   string
	UCD         string
	UType       string
	Ref         string
	XType       string
	Description *Description
	Values      *Values
	Links       []*Link
	Extra       map[string]string
}

var paramKnownAttrs = []string{"ID", "name", "datatype", "value", "unit", "precision", "width", "arraysize", "ucd", "utype", "ref", "xtype"}

func readParam(dec *xml.Decoder, start xml.StartElement) (*Param, error) {
	raw := collectAttrs(start.Attr)
	known, extra, err := takeAttrs("PARAM", raw, paramKnownAttrs, false)
	if err != nil {
		return nil, err
	}
	name, err := requireAttr("PARAM", known, "name")
	if err != nil {
		return nil, err
	}
	dtText, err := requireAttr("PARAM", known, "datatype")
	if err != nil {
		return nil, err
	}
	dt, err := ParseDatatype(dtText)
	if err != nil {
		return nil, err
	}
	value, err := requireAttr("PARAM", known, "value")
	if err != nil {
		return nil, err
	}
	p := &Param{
		ID: known["ID"], Name: name, Datatype: dt, Value: value,
		Unit: known["unit"], Precision: known["precision"], Width: known["width"],
		Arraysize: known["arraysize"], UCD: known["ucd"], UType: known["utype"],
		Ref: known["ref"], XType: known["xtype"], Extra: extra,
	}
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "PARAM" {
				return nil, &Error{Kind: KindUnexpectedEnd, Tag: "PARAM", Attr: t.Name.Local}
			}
			return p, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "DESCRIPTION":
				d, err := readDescription(dec, t)
				if err != nil {
					return nil, err
				}
				p.Description = d
			case "VALUES":
				v, err := readValues(dec, t)
				if err != nil {
					return nil, err
				}
				p.Values = v
			case "LINK":
				l, err := readLink(dec, t)
				if err != nil {
					return nil, err
				}
				p.Links = append(p.Links, l)
			default:
				return nil, &Error{Kind: KindUnexpectedStart, Tag: "PARAM", Attr: t.Name.Local}
			}
		}
	}
}

func (p *Param) writeTo(w *xmlWriter) {
	w.Open("PARAM")
	writeAttrIf(w, "ID", p.ID)
	w.Attr("name", p.Name)
	w.Attr("datatype", p.Datatype.String())
	w.Attr("value", p.Value)
	writeAttrIf(w, "unit", p.Unit)
	writeAttrIf(w, "precision", p.Precision)
	writeAttrIf(w, "width", p.Width)
	writeAttrIf(w, "arraysize", p.Arraysize)
	writeAttrIf(w, "ucd", p.UCD)
	writeAttrIf(w, "utype", p.UType)
	writeAttrIf(w, "ref", p.Ref)
	writeAttrIf(w, "xtype", p.XType)
	writeExtra(w, p.Extra)
	if p.Description == nil && p.Values == nil && len(p.Links) == 0 {
		w.CloseSelf()
		return
	}
	w.CloseOpen()
	p.Description.writeTo(w)
	p.Values.writeTo(w)
	for _, l := range p.Links {
		l.writeTo(w)
	}
	w.End("PARAM")
}

// Schema derives this param's wire layout.
func (p *Param) Schema() (Schema, error) {
	nullText := ""
	if p.Values != nil {
		nullText = p.Values.Null
	}
	return SchemaFromField(p.Datatype, p.Arraysize, nullText)
}
