// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bytes"
	"encoding/xml"
	"io"
)

// ApplyStreaming applies ed's rules to the document in input and writes
// the edited result to w, carrying every DATA element through verbatim:
// each payload's source bytes are spliced into the output untouched
// instead of being decoded and re-encoded. Metadata edits therefore
// leave the data block byte-for-byte identical to the input, whatever
// the source's base64 line breaks or TABLEDATA whitespace looked like.
//
// A rule that removes a TABLE or RESOURCE removes its DATA with it; no
// rule can address the inside of a DATA element, so splicing is always
// safe.
func (ed *Editor) ApplyStreaming(input []byte, w io.Writer) ([]Warning, error) {
	segs, err := findDataSegments(input)
	if err != nil {
		return nil, err
	}
	vt, err := ParseVOTable(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}
	nodes := dataNodesInOrder(vt)
	if len(nodes) != len(segs) {
		return nil, &Error{Kind: KindCustom, Msg: "DATA segment scan disagrees with parsed tree"}
	}
	for i, d := range nodes {
		d.raw = input[segs[i].start:segs[i].end]
	}
	warnings, err := ed.Apply(vt)
	if err != nil {
		return nil, err
	}
	if err := vt.WriteTo(w); err != nil {
		return nil, err
	}
	return warnings, nil
}

type byteSegment struct {
	start, end int64
}

// findDataSegments tokenises input a first time, recording the byte
// range of every <DATA>...</DATA> element. InputOffset between tokens
// marks the start of the next token, so the offset saved just before a
// DATA start tag is the position of its '<'.
func findDataSegments(input []byte) ([]byteSegment, error) {
	dec := xml.NewDecoder(bytes.NewReader(input))
	dec.Strict = false
	var segs []byteSegment
	var start int64
	depth := 0
	for {
		prev := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return segs, nil
			}
			return nil, (&Error{Kind: KindMalformedXML, Msg: "xml token error"}).WithCause(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth > 0 {
				depth++
				continue
			}
			if t.Name.Local == "DATA" {
				off := bytes.IndexByte(input[prev:], '<')
				if off < 0 {
					off = 0
				}
				start = prev + int64(off)
				depth = 1
			}
		case xml.EndElement:
			if depth > 0 {
				depth--
				if depth == 0 {
					segs = append(segs, byteSegment{start: start, end: dec.InputOffset()})
				}
			}
		}
	}
}

// dataNodesInOrder returns every table's *Data in document order, the
// same order findDataSegments discovers them in, since DATA occurs only
// inside TABLE.
func dataNodesInOrder(vt *VOTable) []*Data {
	var nodes []*Data
	for _, r := range vt.Resources {
		nodes = appendResourceDataNodes(nodes, r)
	}
	return nodes
}

func appendResourceDataNodes(nodes []*Data, r *Resource) []*Data {
	for _, c := range r.Children {
		switch {
		case c.Table != nil && c.Table.Data != nil:
			nodes = append(nodes, c.Table.Data)
		case c.Resource != nil:
			nodes = appendResourceDataNodes(nodes, c.Resource)
		}
	}
	return nodes
}
