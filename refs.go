// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import "encoding/xml"

// ParamRef and FieldRef address a PARAM/FIELD elsewhere in the document
// by ID string, never by memory reference.
type ParamRef struct {
	Ref   string
	UCD   string
	UType string
	Text  string
	Extra map[string]string
}

type FieldRef struct {
	Ref   string
	UCD   string
	UType string
	Text  string
	Extra map[string]string
}

var refKnownAttrs = []string{"ref", "ucd", "utype"}

func readParamRef(dec *xml.Decoder, start xml.StartElement) (*ParamRef, error) {
	raw := collectAttrs(start.Attr)
	known, extra, err := takeAttrs("PARAMref", raw, refKnownAttrs, false)
	if err != nil {
		return nil, err
	}
	ref, err := requireAttr("PARAMref", known, "ref")
	if err != nil {
		return nil, err
	}
	text, err := readText(dec, "PARAMref")
	if err != nil {
		return nil, err
	}
	return &ParamRef{Ref: ref, UCD: known["ucd"], UType: known["utype"], Text: text, Extra: extra}, nil
}

func (p *ParamRef) writeTo(w *xmlWriter) {
	w.Open("PARAMref")
	w.Attr("ref", p.Ref)
	writeAttrIf(w, "ucd", p.UCD)
	writeAttrIf(w, "utype", p.UType)
	writeExtra(w, p.Extra)
	if p.Text == "" {
		w.CloseSelf()
		return
	}
	w.CloseOpen()
	w.Text(p.Text)
	w.End("PARAMref")
}

func readFieldRef(dec *xml.Decoder, start xml.StartElement) (*FieldRef, error) {
	raw := collectAttrs(start.Attr)
	known, extra, err := takeAttrs("FIELDref", raw, refKnownAttrs, false)
	if err != nil {
		return nil, err
	}
	ref, err := requireAttr("FIELDref", known, "ref")
	if err != nil {
		return nil, err
	}
	text, err := readText(dec, "FIELDref")
	if err != nil {
		return nil, err
	}
	return &FieldRef{Ref: ref, UCD: known["ucd"], UType: known["utype"], Text: text, Extra: extra}, nil
}

func (f *FieldRef) writeTo(w *xmlWriter) {
	w.Open("FIELDref")
	w.Attr("ref", f.Ref)
	writeAttrIf(w, "ucd", f.UCD)
	writeAttrIf(w, "utype", f.UType)
	writeExtra(w, f.Extra)
	if f.Text == "" {
		w.CloseSelf()
		return
	}
	w.CloseOpen()
	w.Text(f.Text)
	w.End("FIELDref")
}
