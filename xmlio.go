// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"encoding/xml"
	"fmt"
	"io"
)

// attrMap is the set of attributes collected off a start tag, keyed by
// local name (VOTable attributes carry no namespace prefixes).
type attrMap map[string]string

func collectAttrs(attrs []xml.Attr) attrMap {
	m := make(attrMap, len(attrs))
	for _, a := range attrs {
		m[a.Name.Local] = a.Value
	}
	return m
}

// takeAttrs splits raw into (known, extra) given the tag's recognised
// attribute names. Strict tags (MIN, MAX, VALUES, DEFINITIONS, COOSYS,
// TIMESYS, GROUP) reject any attribute outside known; lax tags retain the
// rest in extra.
func takeAttrs(tag string, raw attrMap, known []string, strict bool) (attrMap, attrMap, error) {
	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
	}
	kept := make(attrMap, len(known))
	extra := make(attrMap)
	for k, v := range raw {
		if knownSet[k] {
			kept[k] = v
			continue
		}
		if strict {
			return nil, nil, &Error{Kind: KindUnexpectedAttr, Tag: tag, Attr: k}
		}
		extra[k] = v
	}
	return kept, extra, nil
}

func requireAttr(tag string, attrs attrMap, name string) (string, error) {
	v, ok := attrs[name]
	if !ok {
		return "", &Error{Kind: KindMissingMandatoryAttr, Tag: tag, Attr: name}
	}
	return v, nil
}

// xmlWriter is a minimal, escaping-aware XML writer giving every tag
// struct full control over attribute order and self-closing form: each
// writeTo method lists its own attributes in a fixed order for stable
// round-tripping, and uses the short self-closing form whenever a tag
// has no children.
type xmlWriter struct {
	w       io.Writer
	err     error
	openTag string
	open    bool
}

func newXMLWriter(w io.Writer) *xmlWriter { return &xmlWriter{w: w} }

func (w *xmlWriter) fail(err error) {
	if w.err == nil && err != nil {
		w.err = ioErr(err)
	}
}

func (w *xmlWriter) raw(s string) {
	if w.err != nil {
		return
	}
	_, err := io.WriteString(w.w, s)
	w.fail(err)
}

// Open begins a start tag: writes "<tag" without closing ">".
func (w *xmlWriter) Open(tag string) {
	if w.open {
		w.raw(">")
	}
	w.raw("<" + tag)
	w.openTag = tag
	w.open = true
}

// Attr writes one escaped attribute onto the currently open start tag.
func (w *xmlWriter) Attr(name, value string) {
	if w.err != nil {
		return
	}
	w.raw(" " + name + `="`)
	w.escape(value, true)
	w.raw(`"`)
}

// CloseSelf finishes the open start tag as self-closing: "/>".
func (w *xmlWriter) CloseSelf() {
	w.raw("/>")
	w.open = false
}

// CloseOpen finishes the open start tag as ">": children or text follow.
func (w *xmlWriter) CloseOpen() {
	w.raw(">")
	w.open = false
}

// End writes a closing tag "</tag>", first closing any pending open tag.
func (w *xmlWriter) End(tag string) {
	if w.open {
		w.CloseOpen()
	}
	w.raw("</" + tag + ">")
}

// Text writes escaped character data. Any pending open tag is closed first.
func (w *xmlWriter) Text(s string) {
	if w.open {
		w.CloseOpen()
	}
	w.escape(s, false)
}

// Raw writes bytes verbatim (used for MIVOT passthrough content), closing
// any pending open tag first.
func (w *xmlWriter) Raw(s string) {
	if w.open {
		w.CloseOpen()
	}
	w.raw(s)
}

func (w *xmlWriter) escape(s string, attr bool) {
	if w.err != nil {
		return
	}
	if err := xml.EscapeText(w.w, []byte(s)); err != nil {
		w.fail(err)
	}
	_ = attr
}

func (w *xmlWriter) Err() error { return w.err }

// tokenReader wraps an *xml.Decoder with the small amount of look-ahead
// and helper logic every read_sub_elements implementation needs: fetch
// the next significant token, skip comments/whitespace-only text, and
// report an unexpected token kind with tag context.
type tokenReader struct {
	dec *xml.Decoder
}

func newTokenReader(dec *xml.Decoder) *tokenReader { return &tokenReader{dec: dec} }

// next returns the next token that is not a pure-whitespace CharData or a
// Comment/ProcInst/Directive, since those never carry structural meaning
// in the VOTable grammar.
func (tr *tokenReader) next() (xml.Token, error) {
	for {
		tok, err := tr.dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, (&Error{Kind: KindPrematureEOF, Msg: "unexpected end of document"}).WithCause(err)
			}
			return nil, (&Error{Kind: KindMalformedXML, Msg: "xml token error"}).WithCause(err)
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst, xml.Directive:
			continue
		case xml.CharData:
			if isAllWhitespace(t) {
				continue
			}
			return t.Copy(), nil
		case xml.StartElement:
			return t.Copy(), nil
		case xml.EndElement:
			return t, nil
		default:
			continue
		}
	}
}

func isAllWhitespace(b []byte) bool {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return false
		}
	}
	return true
}

// unexpectedToken builds the appropriate Error kind for a token that
// wasn't expected in the current read_sub_elements loop.
func unexpectedToken(tag string, tok xml.Token) error {
	switch t := tok.(type) {
	case xml.StartElement:
		return &Error{Kind: KindUnexpectedStart, Tag: tag, Attr: t.Name.Local}
	case xml.EndElement:
		return &Error{Kind: KindUnexpectedEnd, Tag: tag, Attr: t.Name.Local}
	default:
		return &Error{Kind: KindUnexpectedEmpty, Tag: tag}
	}
}

// skipElement consumes and discards an entire subtree rooted at a
// StartElement already read, used when a tag tolerates (and ignores)
// children it does not model.
func skipElement(dec *xml.Decoder, start xml.StartElement) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return (&Error{Kind: KindPrematureEOF, Msg: fmt.Sprintf("eof skipping <%s>", start.Name.Local)}).WithCause(err)
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

// readText collects all CharData until the matching EndElement for a
// content-only tag (DESCRIPTION, INFO, LINK, PARAMref, FIELDref, STREAM),
// concatenating CDATA verbatim.
func readText(dec *xml.Decoder, tag string) (string, error) {
	var sb []byte
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", (&Error{Kind: KindPrematureEOF, Tag: tag}).WithCause(err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb = append(sb, t...)
		case xml.Comment:
			continue
		case xml.EndElement:
			if t.Name.Local != tag {
				return "", &Error{Kind: KindUnexpectedEnd, Tag: tag, Attr: t.Name.Local}
			}
			return string(sb), nil
		case xml.StartElement:
			return "", &Error{Kind: KindUnexpectedStart, Tag: tag, Attr: t.Name.Local}
		}
	}
}
