// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import "encoding/xml"

// GroupChild is one member of GROUP's ordered child list: PARAMref,
// PARAM, GROUP, or FIELDref. Exactly one of the fields is non-nil.
type GroupChild struct {
	ParamRef *ParamRef
	Param    *Param
	Group    *Group
	FieldRef *FieldRef
}

// Group is the GROUP element: a strict tag whose children are
// DESCRIPTION? then an ordered mix of PARAMref/PARAM/GROUP/FIELDref.
type Group struct {
	ID          string
	Name        string
	UCD         string
	UType       string
	Ref         string
	Description *Description
	Children    []GroupChild
}

var groupKnownAttrs = []string{"ID", "name", "ucd", "utype", "ref"}

func readGroup(dec *xml.Decoder, start xml.StartElement) (*Group, error) {
	raw := collectAttrs(start.Attr)
	known, _, err := takeAttrs("GROUP", raw, groupKnownAttrs, true)
	if err != nil {
		return nil, err
	}
	g := &Group{ID: known["ID"], Name: known["name"], UCD: known["ucd"], UType: known["utype"], Ref: known["ref"]}
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "GROUP" {
				return nil, &Error{Kind: KindUnexpectedEnd, Tag: "GROUP", Attr: t.Name.Local}
			}
			return g, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "DESCRIPTION":
				d, err := readDescription(dec, t)
				if err != nil {
					return nil, err
				}
				g.Description = d
			case "PARAMref":
				pr, err := readParamRef(dec, t)
				if err != nil {
					return nil, err
				}
				g.Children = append(g.Children, GroupChild{ParamRef: pr})
			case "PARAM":
				p, err := readParam(dec, t)
				if err != nil {
					return nil, err
				}
				g.Children = append(g.Children, GroupChild{Param: p})
			case "GROUP":
				sub, err := readGroup(dec, t)
				if err != nil {
					return nil, err
				}
				g.Children = append(g.Children, GroupChild{Group: sub})
			case "FIELDref":
				fr, err := readFieldRef(dec, t)
				if err != nil {
					return nil, err
				}
				g.Children = append(g.Children, GroupChild{FieldRef: fr})
			default:
				return nil, &Error{Kind: KindUnexpectedStart, Tag: "GROUP", Attr: t.Name.Local}
			}
		}
	}
}

func (g *Group) writeTo(w *xmlWriter) {
	w.Open("GROUP")
	writeAttrIf(w, "ID", g.ID)
	writeAttrIf(w, "name", g.Name)
	writeAttrIf(w, "ucd", g.UCD)
	writeAttrIf(w, "utype", g.UType)
	writeAttrIf(w, "ref", g.Ref)
	if g.Description == nil && len(g.Children) == 0 {
		w.CloseSelf()
		return
	}
	w.CloseOpen()
	g.Description.writeTo(w)
	for _, c := range g.Children {
		switch {
		case c.ParamRef != nil:
			c.ParamRef.writeTo(w)
		case c.Param != nil:
			c.Param.writeTo(w)
		case c.Group != nil:
			c.Group.writeTo(w)
		case c.FieldRef != nil:
			c.FieldRef.writeTo(w)
		}
	}
	w.End("GROUP")
}
