// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import "encoding/xml"

// TableFieldOrParam is one member of TABLE's ordered (FIELD|PARAM|GROUP)*
// child sequence.
type TableFieldOrParam struct {
	Field *Field
	Param *Param
	Group *Group
}

// Table is the TABLE element: a lax tag (its attribute set is not in the
// strict list) holding field/param/group declarations, LINKs, an optional
// DATA payload, and trailing INFOs.
type Table struct {
	ID          string
	Name        string
	Ref         string
	UCD         string
	UType       string
	NRows       string
	Description *Description
	Columns     []TableFieldOrParam
	Links       []*Link
	Data        *Data
	Infos       []*Info
	Extra       map[string]string
}

var tableKnownAttrs = []string{"ID", "name", "ref", "ucd", "utype", "nrows"}

func readTable(dec *xml.Decoder, start xml.StartElement) (*Table, error) {
	raw := collectAttrs(start.Attr)
	known, extra, err := takeAttrs("TABLE", raw, tableKnownAttrs, false)
	if err != nil {
		return nil, err
	}
	tbl := &Table{
		ID: known["ID"], Name: known["name"], Ref: known["ref"],
		UCD: known["ucd"], UType: known["utype"], NRows: known["nrows"], Extra: extra,
	}
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "TABLE" {
				return nil, &Error{Kind: KindUnexpectedEnd, Tag: "TABLE", Attr: t.Name.Local}
			}
			return tbl, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "DESCRIPTION":
				d, err := readDescription(dec, t)
				if err != nil {
					return nil, err
				}
				tbl.Description = d
			case "FIELD":
				f, err := readField(dec, t)
				if err != nil {
					return nil, err
				}
				tbl.Columns = append(tbl.Columns, TableFieldOrParam{Field: f})
			case "PARAM":
				p, err := readParam(dec, t)
				if err != nil {
					return nil, err
				}
				tbl.Columns = append(tbl.Columns, TableFieldOrParam{Param: p})
			case "GROUP":
				g, err := readGroup(dec, t)
				if err != nil {
					return nil, err
				}
				tbl.Columns = append(tbl.Columns, TableFieldOrParam{Group: g})
			case "LINK":
				l, err := readLink(dec, t)
				if err != nil {
					return nil, err
				}
				tbl.Links = append(tbl.Links, l)
			case "DATA":
				d, err := readData(dec, t)
				if err != nil {
					return nil, err
				}
				tbl.Data = d
			case "INFO":
				info, err := readInfo(dec, t)
				if err != nil {
					return nil, err
				}
				tbl.Infos = append(tbl.Infos, info)
			default:
				return nil, &Error{Kind: KindUnexpectedStart, Tag: "TABLE", Attr: t.Name.Local}
			}
		}
	}
}

func (t *Table) writeTo(w *xmlWriter) {
	w.Open("TABLE")
	writeAttrIf(w, "ID", t.ID)
	writeAttrIf(w, "name", t.Name)
	writeAttrIf(w, "ref", t.Ref)
	writeAttrIf(w, "ucd", t.UCD)
	writeAttrIf(w, "utype", t.UType)
	writeAttrIf(w, "nrows", t.NRows)
	writeExtra(w, t.Extra)
	w.CloseOpen()
	t.Description.writeTo(w)
	for _, c := range t.Columns {
		switch {
		case c.Field != nil:
			c.Field.writeTo(w)
		case c.Param != nil:
			c.Param.writeTo(w)
		case c.Group != nil:
			c.Group.writeTo(w)
		}
	}
	for _, l := range t.Links {
		l.writeTo(w)
	}
	if t.Data != nil {
		t.Data.writeTo(w)
	}
	for _, i := range t.Infos {
		i.writeTo(w)
	}
	w.End("TABLE")
}

// Fields returns this table's FIELD declarations in column order,
// skipping PARAMs and GROUPs, for schema-driven row codecs.
func (t *Table) Fields() []*Field {
	var out []*Field
	for _, c := range t.Columns {
		if c.Field != nil {
			out = append(out, c.Field)
		}
	}
	return out
}

// Schemas derives every FIELD's Schema, in column order.
func (t *Table) Schemas() ([]Schema, error) {
	fields := t.Fields()
	out := make([]Schema, len(fields))
	for i, f := range fields {
		s, err := f.Schema()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
