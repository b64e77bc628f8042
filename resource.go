// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import "encoding/xml"

// ResourceElem is one member of RESOURCE's (COOSYS|TIMESYS|GROUP|PARAM|
// LINK)* slot.
type ResourceElem struct {
	CooSys  *CooSys
	TimeSys *TimeSys
	Group   *Group
	Param   *Param
	Link    *Link
}

// ResourceChild is a nested RESOURCE or TABLE.
type ResourceChild struct {
	Resource *Resource
	Table    *Table
}

// Resource is the RESOURCE element: DESCRIPTION?, INFO* (pre),
// (COOSYS|TIMESYS|GROUP|PARAM|LINK)*, (RESOURCE|TABLE)*, INFO* (post).
// It is a lax tag.
type Resource struct {
	ID          string
	Name        string
	Type        string
	UType       string
	Ref         string
	Description *Description
	PreInfos    []*Info
	Elems       []ResourceElem
	Children    []ResourceChild
	PostInfos   []*Info
	Extra       map[string]string
}

var resourceKnownAttrs = []string{"ID", "name", "type", "utype", "ref"}

func readResource(dec *xml.Decoder, start xml.StartElement) (*Resource, error) {
	raw := collectAttrs(start.Attr)
	known, extra, err := takeAttrs("RESOURCE", raw, resourceKnownAttrs, false)
	if err != nil {
		return nil, err
	}
	r := &Resource{
		ID: known["ID"], Name: known["name"], Type: known["type"],
		UType: known["utype"], Ref: known["ref"], Extra: extra,
	}
	seenChild := false
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "RESOURCE" {
				return nil, &Error{Kind: KindUnexpectedEnd, Tag: "RESOURCE", Attr: t.Name.Local}
			}
			return r, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "DESCRIPTION":
				d, err := readDescription(dec, t)
				if err != nil {
					return nil, err
				}
				r.Description = d
			case "INFO":
				info, err := readInfo(dec, t)
				if err != nil {
					return nil, err
				}
				if seenChild {
					r.PostInfos = append(r.PostInfos, info)
				} else {
					r.PreInfos = append(r.PreInfos, info)
				}
			case "COOSYS":
				cs, err := readCooSys(dec, t)
				if err != nil {
					return nil, err
				}
				r.Elems = append(r.Elems, ResourceElem{CooSys: cs})
			case "TIMESYS":
				ts, err := readTimeSys(dec, t)
				if err != nil {
					return nil, err
				}
				r.Elems = append(r.Elems, ResourceElem{TimeSys: ts})
			case "GROUP":
				g, err := readGroup(dec, t)
				if err != nil {
					return nil, err
				}
				r.Elems = append(r.Elems, ResourceElem{Group: g})
			case "PARAM":
				p, err := readParam(dec, t)
				if err != nil {
					return nil, err
				}
				r.Elems = append(r.Elems, ResourceElem{Param: p})
			case "LINK":
				l, err := readLink(dec, t)
				if err != nil {
					return nil, err
				}
				r.Elems = append(r.Elems, ResourceElem{Link: l})
			case "RESOURCE":
				sub, err := readResource(dec, t)
				if err != nil {
					return nil, err
				}
				r.Children = append(r.Children, ResourceChild{Resource: sub})
				seenChild = true
			case "TABLE":
				tbl, err := readTable(dec, t)
				if err != nil {
					return nil, err
				}
				r.Children = append(r.Children, ResourceChild{Table: tbl})
				seenChild = true
			default:
				return nil, &Error{Kind: KindUnexpectedStart, Tag: "RESOURCE", Attr: t.Name.Local}
			}
		}
	}
}

func (r *Resource) writeTo(w *xmlWriter) {
	w.Open("RESOURCE")
	writeAttrIf(w, "ID", r.ID)
	writeAttrIf(w, "name", r.Name)
	writeAttrIf(w, "type", r.Type)
	writeAttrIf(w, "utype", r.UType)
	writeAttrIf(w, "ref", r.Ref)
	writeExtra(w, r.Extra)
	w.CloseOpen()
	r.Description.writeTo(w)
	for _, i := range r.PreInfos {
		i.writeTo(w)
	}
	for _, e := range r.Elems {
		switch {
		case e.CooSys != nil:
			e.CooSys.writeTo(w)
		case e.TimeSys != nil:
			e.TimeSys.writeTo(w)
		case e.Group != nil:
			e.Group.writeTo(w)
		case e.Param != nil:
			e.Param.writeTo(w)
		case e.Link != nil:
			e.Link.writeTo(w)
		}
	}
	for _, c := range r.Children {
		switch {
		case c.Resource != nil:
			c.Resource.writeTo(w)
		case c.Table != nil:
			c.Table.writeTo(w)
		}
	}
	for _, i := range r.PostInfos {
		i.writeTo(w)
	}
	w.End("RESOURCE")
}

// Tables returns every TABLE directly nested under r (not recursing into
// child RESOURCEs).
func (r *Resource) Tables() []*Table {
	var out []*Table
	for _, c := range r.Children {
		if c.Table != nil {
			out = append(out, c.Table)
		}
	}
	return out
}
