// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import "encoding/xml"

// TR is one TABLEDATA row: raw <TD> text content, entity-unescaped by
// encoding/xml already. The tree layer holds it schema-free; interpreting
// a cell's text against a FIELD's datatype happens only when a caller
// asks for typed rows.
type TR struct {
	Cells []string
}

// TableData is the TABLEDATA payload: a sequence of TR.
type TableData struct {
	Rows []TR
}

func readTableData(dec *xml.Decoder, start xml.StartElement) (*TableData, error) {
	if len(start.Attr) > 0 {
		return nil, &Error{Kind: KindUnexpectedAttr, Tag: "TABLEDATA", Attr: start.Attr[0].Name.Local}
	}
	td := &TableData{}
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "TABLEDATA" {
				return nil, &Error{Kind: KindUnexpectedEnd, Tag: "TABLEDATA", Attr: t.Name.Local}
			}
			return td, nil
		case xml.StartElement:
			if t.Name.Local != "TR" {
				return nil, &Error{Kind: KindUnexpectedStart, Tag: "TABLEDATA", Attr: t.Name.Local}
			}
			row, err := readTR(dec, t)
			if err != nil {
				return nil, err
			}
			td.Rows = append(td.Rows, row)
		}
	}
}

func readTR(dec *xml.Decoder, start xml.StartElement) (TR, error) {
	if len(start.Attr) > 0 {
		return TR{}, &Error{Kind: KindUnexpectedAttr, Tag: "TR", Attr: start.Attr[0].Name.Local}
	}
	row := TR{}
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return TR{}, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "TR" {
				return TR{}, &Error{Kind: KindUnexpectedEnd, Tag: "TR", Attr: t.Name.Local}
			}
			return row, nil
		case xml.StartElement:
			if t.Name.Local != "TD" {
				return TR{}, &Error{Kind: KindUnexpectedStart, Tag: "TR", Attr: t.Name.Local}
			}
			text, err := readText(dec, "TD")
			if err != nil {
				return TR{}, err
			}
			row.Cells = append(row.Cells, text)
		}
	}
}

func (td *TableData) writeTo(w *xmlWriter) {
	w.Open("TABLEDATA")
	if len(td.Rows) == 0 {
		w.CloseSelf()
		return
	}
	w.CloseOpen()
	for _, row := range td.Rows {
		w.Open("TR")
		if len(row.Cells) == 0 {
			w.CloseSelf()
			continue
		}
		w.CloseOpen()
		for _, cell := range row.Cells {
			w.Open("TD")
			w.CloseOpen()
			w.Text(cell)
			w.End("TD")
		}
		w.End("TR")
	}
	w.End("TABLEDATA")
}

// Stream is the STREAM element: a base64-encoded byte payload plus its
// transfer-encoding metadata.
type Stream struct {
	Type     string
	Href     string
	Actuate  string
	Encoding string
	Expires  string
	Rights   string
	Data     []byte
}

var streamKnownAttrs = []string{"type", "href", "actuate", "encoding", "expires", "rights"}

func readStream(dec *xml.Decoder, start xml.StartElement) (*Stream, error) {
	raw := collectAttrs(start.Attr)
	known, _, err := takeAttrs("STREAM", raw, streamKnownAttrs, false)
	if err != nil {
		return nil, err
	}
	text, err := readText(dec, "STREAM")
	if err != nil {
		return nil, err
	}
	s := &Stream{
		Type: known["type"], Href: known["href"], Actuate: known["actuate"],
		Encoding: known["encoding"], Expires: known["expires"], Rights: known["rights"],
	}
	if known["href"] == "" {
		data, err := decodeBase64Text(text)
		if err != nil {
			return nil, err
		}
		s.Data = data
	}
	return s, nil
}

func (s *Stream) writeTo(w *xmlWriter) {
	w.Open("STREAM")
	writeAttrIf(w, "type", s.Type)
	writeAttrIf(w, "href", s.Href)
	writeAttrIf(w, "actuate", s.Actuate)
	writeAttrIf(w, "encoding", s.Encoding)
	writeAttrIf(w, "expires", s.Expires)
	writeAttrIf(w, "rights", s.Rights)
	if s.Href != "" {
		w.CloseSelf()
		return
	}
	w.CloseOpen()
	w.Raw(encodeBase64Text(s.Data))
	w.End("STREAM")
}

// Binary is the BINARY payload: one STREAM of big-endian rows with no
// per-row null bitmap.
type Binary struct {
	Stream *Stream
}

func readBinary(dec *xml.Decoder, start xml.StartElement) (*Binary, error) {
	if len(start.Attr) > 0 {
		return nil, &Error{Kind: KindUnexpectedAttr, Tag: "BINARY", Attr: start.Attr[0].Name.Local}
	}
	tr := newTokenReader(dec)
	tok, err := tr.next()
	if err != nil {
		return nil, err
	}
	st, ok := tok.(xml.StartElement)
	if !ok || st.Name.Local != "STREAM" {
		return nil, unexpectedToken("BINARY", tok)
	}
	stream, err := readStream(dec, st)
	if err != nil {
		return nil, err
	}
	if err := expectEnd(tr, "BINARY"); err != nil {
		return nil, err
	}
	return &Binary{Stream: stream}, nil
}

func (b *Binary) writeTo(w *xmlWriter) {
	w.Open("BINARY")
	w.CloseOpen()
	b.Stream.writeTo(w)
	w.End("BINARY")
}

// Binary2 is the BINARY2 payload: one STREAM of rows, each prefixed by
// a null-flag bitmap.
type Binary2 struct {
	Stream *Stream
}

func readBinary2(dec *xml.Decoder, start xml.StartElement) (*Binary2, error) {
	if len(start.Attr) > 0 {
		return nil, &Error{Kind: KindUnexpectedAttr, Tag: "BINARY2", Attr: start.Attr[0].Name.Local}
	}
	tr := newTokenReader(dec)
	tok, err := tr.next()
	if err != nil {
		return nil, err
	}
	st, ok := tok.(xml.StartElement)
	if !ok || st.Name.Local != "STREAM" {
		return nil, unexpectedToken("BINARY2", tok)
	}
	stream, err := readStream(dec, st)
	if err != nil {
		return nil, err
	}
	if err := expectEnd(tr, "BINARY2"); err != nil {
		return nil, err
	}
	return &Binary2{Stream: stream}, nil
}

func (b *Binary2) writeTo(w *xmlWriter) {
	w.Open("BINARY2")
	w.CloseOpen()
	b.Stream.writeTo(w)
	w.End("BINARY2")
}

// Fits is the FITS payload: an out-of-band reference to a FITS binary
// table via its own STREAM. The core treats its bytes opaquely; no FITS
// interpretation is performed.
type Fits struct {
	Extnum string
	Stream *Stream
}

var fitsKnownAttrs = []string{"extnum"}

func readFits(dec *xml.Decoder, start xml.StartElement) (*Fits, error) {
	raw := collectAttrs(start.Attr)
	known, _, err := takeAttrs("FITS", raw, fitsKnownAttrs, true)
	if err != nil {
		return nil, err
	}
	tr := newTokenReader(dec)
	tok, err := tr.next()
	if err != nil {
		return nil, err
	}
	st, ok := tok.(xml.StartElement)
	if !ok || st.Name.Local != "STREAM" {
		return nil, unexpectedToken("FITS", tok)
	}
	stream, err := readStream(dec, st)
	if err != nil {
		return nil, err
	}
	if err := expectEnd(tr, "FITS"); err != nil {
		return nil, err
	}
	return &Fits{Extnum: known["extnum"], Stream: stream}, nil
}

func (f *Fits) writeTo(w *xmlWriter) {
	w.Open("FITS")
	writeAttrIf(w, "extnum", f.Extnum)
	w.CloseOpen()
	f.Stream.writeTo(w)
	w.End("FITS")
}

func expectEnd(tr *tokenReader, tag string) error {
	tok, err := tr.next()
	if err != nil {
		return err
	}
	end, ok := tok.(xml.EndElement)
	if !ok || end.Name.Local != tag {
		return unexpectedToken(tag, tok)
	}
	return nil
}

// Data is the DATA element: exactly one of TABLEDATA/BINARY/BINARY2/FITS
// plus any trailing INFOs.
type Data struct {
	TableData *TableData
	Binary    *Binary
	Binary2   *Binary2
	Fits      *Fits
	Infos     []*Info

	// raw, when set, holds the verbatim <DATA>...</DATA> bytes of the
	// source document and is emitted untouched in place of re-encoding
	// the payload. Set only by ApplyStreaming.
	raw []byte
}

func readData(dec *xml.Decoder, start xml.StartElement) (*Data, error) {
	if len(start.Attr) > 0 {
		return nil, &Error{Kind: KindUnexpectedAttr, Tag: "DATA", Attr: start.Attr[0].Name.Local}
	}
	d := &Data{}
	payloadSeen := false
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "DATA" {
				return nil, &Error{Kind: KindUnexpectedEnd, Tag: "DATA", Attr: t.Name.Local}
			}
			return d, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "TABLEDATA":
				if payloadSeen {
					return nil, &Error{Kind: KindUnexpectedStart, Tag: "DATA", Attr: t.Name.Local}
				}
				td, err := readTableData(dec, t)
				if err != nil {
					return nil, err
				}
				d.TableData = td
				payloadSeen = true
			case "BINARY":
				if payloadSeen {
					return nil, &Error{Kind: KindUnexpectedStart, Tag: "DATA", Attr: t.Name.Local}
				}
				b, err := readBinary(dec, t)
				if err != nil {
					return nil, err
				}
				d.Binary = b
				payloadSeen = true
			case "BINARY2":
				if payloadSeen {
					return nil, &Error{Kind: KindUnexpectedStart, Tag: "DATA", Attr: t.Name.Local}
				}
				b, err := readBinary2(dec, t)
				if err != nil {
					return nil, err
				}
				d.Binary2 = b
				payloadSeen = true
			case "FITS":
				if payloadSeen {
					return nil, &Error{Kind: KindUnexpectedStart, Tag: "DATA", Attr: t.Name.Local}
				}
				f, err := readFits(dec, t)
				if err != nil {
					return nil, err
				}
				d.Fits = f
				payloadSeen = true
			case "INFO":
				info, err := readInfo(dec, t)
				if err != nil {
					return nil, err
				}
				d.Infos = append(d.Infos, info)
			default:
				return nil, &Error{Kind: KindUnexpectedStart, Tag: "DATA", Attr: t.Name.Local}
			}
		}
	}
}

func (d *Data) writeTo(w *xmlWriter) {
	if d.raw != nil {
		w.Raw(string(d.raw))
		return
	}
	w.Open("DATA")
	w.CloseOpen()
	switch {
	case d.TableData != nil:
		d.TableData.writeTo(w)
	case d.Binary != nil:
		d.Binary.writeTo(w)
	case d.Binary2 != nil:
		d.Binary2.writeTo(w)
	case d.Fits != nil:
		d.Fits.writeTo(w)
	}
	for _, info := range d.Infos {
		info.writeTo(w)
	}
	w.End("DATA")
}
