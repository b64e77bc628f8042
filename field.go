// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import "encoding/xml"

// Field is the FIELD element: mandates name and datatype; width,
// precision, arraysize, ucd, utype, unit, ref, xtype are optional. It is
// a lax tag, retaining unrecognised attributes in Extra.
type Field struct {
	ID          string
	Name        string
	Datatype    Datatype
	Unit        string
	Precision   string
	Width       string
	Arraysize   string
	UCD         string
	UType       string
	Ref         string
	XType       string
	Type        string
	Description *Description
	Values      *Values
	Links       []*Link
	Extra       map[string]string
}

var fieldKnownAttrs = []string{"ID", "name", "datatype", "unit", "precision", "width", "arraysize", "ucd", "utype", "ref", "xtype", "type"}

func readField(dec *xml.Decoder, start xml.StartElement) (*Field, error) {
	raw := collectAttrs(start.Attr)
	known, extra, err := takeAttrs("FIELD", raw, fieldKnownAttrs, false)
	if err != nil {
		return nil, err
	}
	name, err := requireAttr("FIELD", known, "name")
	if err != nil {
		return nil, err
	}
	dtText, err := requireAttr("FIELD", known, "datatype")
	if err != nil {
		return nil, err
	}
	dt, err := ParseDatatype(dtText)
	if err != nil {
		return nil, err
	}
	f := &Field{
		ID: known["ID"], Name: name, Datatype: dt,
		Unit: known["unit"], Precision: known["precision"], Width: known["width"],
		Arraysize: known["arraysize"], UCD: known["ucd"], UType: known["utype"],
		Ref: known["ref"], XType: known["xtype"], Type: known["type"], Extra: extra,
	}
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "FIELD" {
				return nil, &Error{Kind: KindUnexpectedEnd, Tag: "FIELD", Attr: t.Name.Local}
			}
			return f, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "DESCRIPTION":
				d, err := readDescription(dec, t)
				if err != nil {
					return nil, err
				}
				f.Description = d
			case "VALUES":
				v, err := readValues(dec, t)
				if err != nil {
					return nil, err
				}
				f.Values = v
			case "LINK":
				l, err := readLink(dec, t)
				if err != nil {
					return nil, err
				}
				f.Links = append(f.Links, l)
			default:
				return nil, &Error{Kind: KindUnexpectedStart, Tag: "FIELD", Attr: t.Name.Local}
			}
		}
	}
}

func (f *Field) writeTo(w *xmlWriter) {
	w.Open("FIELD")
	writeAttrIf(w, "ID", f.ID)
	w.Attr("name", f.Name)
	w.Attr("datatype", f.Datatype.String())
	writeAttrIf(w, "unit", f.Unit)
	writeAttrIf(w, "precision", f.Precision)
	writeAttrIf(w, "width", f.Width)
	writeAttrIf(w, "arraysize", f.Arraysize)
	writeAttrIf(w, "ucd", f.UCD)
	writeAttrIf(w, "utype", f.UType)
	writeAttrIf(w, "ref", f.Ref)
	writeAttrIf(w, "xtype", f.XType)
	writeAttrIf(w, "type", f.Type)
	writeExtra(w, f.Extra)
	if f.Description == nil && f.Values == nil && len(f.Links) == 0 {
		w.CloseSelf()
		return
	}
	w.CloseOpen()
	f.Description.writeTo(w)
	f.Values.writeTo(w)
	for _, l := range f.Links {
		l.writeTo(w)
	}
	w.End("FIELD")
}

// Schema derives this field's wire layout.
func (f *Field) Schema() (Schema, error) {
	nullText := ""
	if f.Values != nil {
		nullText = f.Values.Null
	}
	return SchemaFromField(f.Datatype, f.Arraysize, nullText)
}
