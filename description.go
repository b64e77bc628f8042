// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import "encoding/xml"

// Description is the DESCRIPTION element: a single consolidated text
// value, CDATA concatenated verbatim. It carries no attributes.
type Description struct {
	Text string
}

func readDescription(dec *xml.Decoder, start xml.StartElement) (*Description, error) {
	if len(start.Attr) > 0 {
		return nil, &Error{Kind: KindUnexpectedAttr, Tag: "DESCRIPTION", Attr: start.Attr[0].Name.Local}
	}
	text, err := readText(dec, "DESCRIPTION")
	if err != nil {
		return nil, err
	}
	return &Description{Text: text}, nil
}

func (d *Description) writeTo(w *xmlWriter) {
	if d == nil {
		return
	}
	w.Open("DESCRIPTION")
	w.CloseOpen()
	w.Text(d.Text)
	w.End("DESCRIPTION")
}

// setDescription replaces dst with a freshly built Description, used by
// the editor's set_desc action.
func setDescription(dst **Description, text string) {
	*dst = &Description{Text: text}
}
