// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import "encoding/xml"

// Link is the LINK element: a lax, content-only tag (text body plus a
// fixed attribute set with an extra map for the rest).
type Link struct {
	ID          string
	ContentRole string
	ContentType string
	Title       string
	Value       string
	Href        string
	Action      string
	Text        string
	Extra       map[string]string
}

var linkKnownAttrs = []string{"ID", "content-role", "content-type", "title", "value", "href", "action"}

func readLink(dec *xml.Decoder, start xml.StartElement) (*Link, error) {
	raw := collectAttrs(start.Attr)
	known, extra, err := takeAttrs("LINK", raw, linkKnownAttrs, false)
	if err != nil {
		return nil, err
	}
	text, err := readText(dec, "LINK")
	if err != nil {
		return nil, err
	}
	return &Link{
		ID:          known["ID"],
		ContentRole: known["content-role"],
		ContentType: known["content-type"],
		Title:       known["title"],
		Value:       known["value"],
		Href:        known["href"],
		Action:      known["action"],
		Text:        text,
		Extra:       extra,
	}, nil
}

func (l *Link) writeTo(w *xmlWriter) {
	w.Open("LINK")
	writeAttrIf(w, "ID", l.ID)
	writeAttrIf(w, "content-role", l.ContentRole)
	writeAttrIf(w, "content-type", l.ContentType)
	writeAttrIf(w, "title", l.Title)
	writeAttrIf(w, "value", l.Value)
	writeAttrIf(w, "href", l.Href)
	writeAttrIf(w, "action", l.Action)
	writeExtra(w, l.Extra)
	if l.Text == "" {
		w.CloseSelf()
		return
	}
	w.CloseOpen()
	w.Text(l.Text)
	w.End("LINK")
}

// Info is the INFO element: same shape as Link but with a name/value pair
// that every VOTable INFO carries.
type Info struct {
	ID    string
	Name  string
	Value string
	Unit  string
	UType string
	XType string
	Ref   string
	Text  string
	Extra map[string]string
}

var infoKnownAttrs = []string{"ID", "name", "value", "unit", "utype", "xtype", "ref"}

func readInfo(dec *xml.Decoder, start xml.StartElement) (*Info, error) {
	raw := collectAttrs(start.Attr)
	known, extra, err := takeAttrs("INFO", raw, infoKnownAttrs, false)
	if err != nil {
		return nil, err
	}
	text, err := readText(dec, "INFO")
	if err != nil {
		return nil, err
	}
	return &Info{
		ID:    known["ID"],
		Name:  known["name"],
		Value: known["value"],
		Unit:  known["unit"],
		UType: known["utype"],
		XType: known["xtype"],
		Ref:   known["ref"],
		Text:  text,
		Extra: extra,
	}, nil
}

func (i *Info) writeTo(w *xmlWriter) {
	w.Open("INFO")
	writeAttrIf(w, "ID", i.ID)
	writeAttrIf(w, "name", i.Name)
	writeAttrIf(w, "value", i.Value)
	writeAttrIf(w, "unit", i.Unit)
	writeAttrIf(w, "utype", i.UType)
	writeAttrIf(w, "xtype", i.XType)
	writeAttrIf(w, "ref", i.Ref)
	writeExtra(w, i.Extra)
	if i.Text == "" {
		w.CloseSelf()
		return
	}
	w.CloseOpen()
	w.Text(i.Text)
	w.End("INFO")
}

func writeAttrIf(w *xmlWriter, name, value string) {
	if value != "" {
		w.Attr(name, value)
	}
}

// writeExtra emits a lax tag's retained unknown attributes. Map iteration
// order is randomised by Go, so callers that need byte-stable output
// across runs should not rely on extra-attribute order: round-tripping a
// document through this codec is only guaranteed up to that ordering.
func writeExtra(w *xmlWriter, extra map[string]string) {
	for k, v := range extra {
		w.Attr(k, v)
	}
}
