// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bytes"
	"encoding/xml"
	"io"
)

// VOTableElem is one member of VOTABLE's pre-RESOURCE
// (COOSYS|TIMESYS|GROUP|PARAM|INFO)* slot.
type VOTableElem struct {
	CooSys  *CooSys
	TimeSys *TimeSys
	Group   *Group
	Param   *Param
	Info    *Info
}

// VOTable is the document root: mandates version (1.3 or 1.4), holds an
// optional DESCRIPTION and DEFINITIONS, the pre-RESOURCE element slot,
// one or more RESOURCEs, trailing INFOs, and an optional opaque VODML
// (MIVOT) subtree.
type VOTable struct {
	Version     string
	ID          string
	Description *Description
	Definitions *Definitions
	Elems       []VOTableElem
	Resources   []*Resource
	PostInfos   []*Info
	Vodml       *Vodml
	Extra       map[string]string
}

var votableKnownAttrs = []string{"version", "ID"}

// ParseVOTable reads one complete VOTable document from r into an
// in-memory tree. For large data blocks prefer the streaming reader in
// streaming.go; ParseVOTable materialises TABLEDATA rows and decodes
// BINARY/BINARY2 base64 payloads into memory in full.
func ParseVOTable(r io.Reader) (*VOTable, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			return nil, unexpectedToken("document", tok)
		}
		if start.Name.Local != "VOTABLE" {
			return nil, &Error{Kind: KindUnexpectedStart, Tag: "document", Attr: start.Name.Local}
		}
		return readVOTable(dec, start)
	}
}

func readVOTable(dec *xml.Decoder, start xml.StartElement) (*VOTable, error) {
	raw := collectAttrs(start.Attr)
	known, extra, err := takeAttrs("VOTABLE", raw, votableKnownAttrs, false)
	if err != nil {
		return nil, err
	}
	version, err := requireAttr("VOTABLE", known, "version")
	if err != nil {
		return nil, err
	}
	vt := &VOTable{Version: version, ID: known["ID"], Extra: extra}
	seenResource := false
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "VOTABLE" {
				return nil, &Error{Kind: KindUnexpectedEnd, Tag: "VOTABLE", Attr: t.Name.Local}
			}
			return vt, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "DESCRIPTION":
				d, err := readDescription(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Description = d
			case "DEFINITIONS":
				defs, err := readDefinitions(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Definitions = defs
			case "COOSYS":
				cs, err := readCooSys(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Elems = append(vt.Elems, VOTableElem{CooSys: cs})
			case "TIMESYS":
				ts, err := readTimeSys(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Elems = append(vt.Elems, VOTableElem{TimeSys: ts})
			case "GROUP":
				g, err := readGroup(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Elems = append(vt.Elems, VOTableElem{Group: g})
			case "PARAM":
				p, err := readParam(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Elems = append(vt.Elems, VOTableElem{Param: p})
			case "INFO":
				info, err := readInfo(dec, t)
				if err != nil {
					return nil, err
				}
				if seenResource {
					vt.PostInfos = append(vt.PostInfos, info)
				} else {
					vt.Elems = append(vt.Elems, VOTableElem{Info: info})
				}
			case "RESOURCE":
				res, err := readResource(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Resources = append(vt.Resources, res)
				seenResource = true
			case "VODML":
				vm, err := readVodml(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Vodml = vm
			default:
				return nil, &Error{Kind: KindUnexpectedStart, Tag: "VOTABLE", Attr: t.Name.Local}
			}
		}
	}
}

// WriteTo serialises vt as a complete XML document, including the
// `<?xml version="1.0" encoding="UTF-8"?>` declaration.
func (vt *VOTable) WriteTo(w io.Writer) error {
	xw := newXMLWriter(w)
	xw.Raw(`<?xml version="1.0" encoding="UTF-8"?>`)
	vt.writeTo(xw)
	return xw.Err()
}

// String renders vt as a complete XML document, for debugging and tests.
func (vt *VOTable) String() string {
	var buf bytes.Buffer
	_ = vt.WriteTo(&buf)
	return buf.String()
}

func (vt *VOTable) writeTo(w *xmlWriter) {
	w.Open("VOTABLE")
	w.Attr("version", vt.Version)
	writeAttrIf(w, "ID", vt.ID)
	writeExtra(w, vt.Extra)
	w.CloseOpen()
	vt.Description.writeTo(w)
	vt.Definitions.writeTo(w)
	for _, e := range vt.Elems {
		switch {
		case e.CooSys != nil:
			e.CooSys.writeTo(w)
		case e.TimeSys != nil:
			e.TimeSys.writeTo(w)
		case e.Group != nil:
			e.Group.writeTo(w)
		case e.Param != nil:
			e.Param.writeTo(w)
		case e.Info != nil:
			e.Info.writeTo(w)
		}
	}
	for _, r := range vt.Resources {
		r.writeTo(w)
	}
	for _, i := range vt.PostInfos {
		i.writeTo(w)
	}
	vt.Vodml.writeTo(w)
	w.End("VOTABLE")
}

// Definitions is the legacy VOTable 1.1 DEFINITIONS element. It predates
// VALUES-based null-sentinel declarations and is kept as a byte-preserving
// opaque passthrough, the same treatment as Vodml, retained only for
// round-tripping old documents.
type Definitions struct {
	Raw []byte
}

func readDefinitions(dec *xml.Decoder, start xml.StartElement) (*Definitions, error) {
	if len(start.Attr) > 0 {
		return nil, &Error{Kind: KindUnexpectedAttr, Tag: "DEFINITIONS", Attr: start.Attr[0].Name.Local}
	}
	raw, err := captureRawSubtree(dec, start)
	if err != nil {
		return nil, err
	}
	return &Definitions{Raw: raw}, nil
}

func (d *Definitions) writeTo(w *xmlWriter) {
	if d == nil {
		return
	}
	w.Open("DEFINITIONS")
	w.CloseOpen()
	w.Raw(string(d.Raw))
	w.End("DEFINITIONS")
}

// Vodml is the MIVOT mapping subtree rooted at VODML. It is opaque to the
// core: captured as a raw token stream and re-emitted verbatim, never
// interpreted.
type Vodml struct {
	Raw []byte
}

func readVodml(dec *xml.Decoder, start xml.StartElement) (*Vodml, error) {
	raw, err := captureRawSubtree(dec, start)
	if err != nil {
		return nil, err
	}
	return &Vodml{Raw: raw}, nil
}

func (v *Vodml) writeTo(w *xmlWriter) {
	if v == nil {
		return
	}
	w.Open("VODML")
	w.CloseOpen()
	w.Raw(string(v.Raw))
	w.End("VODML")
}

// captureRawSubtree re-encodes every token between start's children and
// its matching EndElement back into bytes, preserving an opaque subtree
// without interpreting it.
func captureRawSubtree(dec *xml.Decoder, start xml.StartElement) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, (&Error{Kind: KindPrematureEOF, Tag: start.Name.Local}).WithCause(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if err := enc.EncodeToken(t.Copy()); err != nil {
				return nil, ioErr(err)
			}
		case xml.EndElement:
			depth--
			if depth == 0 {
				continue
			}
			if err := enc.EncodeToken(t); err != nil {
				return nil, ioErr(err)
			}
		default:
			if err := enc.EncodeToken(tok); err != nil {
				return nil, ioErr(err)
			}
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, ioErr(err)
	}
	return buf.Bytes(), nil
}
